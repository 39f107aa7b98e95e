package lostfoundsdk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"
)

// CreatePostRequest is the report form. Name, Email and Password identify
// an anonymous reporter and are ignored for a signed-in session. Location
// is either a JSON object or a bare address.
type CreatePostRequest struct {
	Name     string
	Email    string
	Password string

	Type         string
	Title        string
	Description  string
	PersonName   string
	Age          *int
	Gender       string
	ItemName     string
	Category     string
	Brand        string
	Color        string
	ContactName  string
	ContactPhone string
	ContactEmail string
	LastSeenDate *time.Time
	Location     string
	Priority     string
	RewardAmount *float64
}

// UploadFile is an image attached to a report. Field is personImages,
// itemImages or profileImage.
type UploadFile struct {
	Field       string
	Filename    string
	ContentType string
	Content     io.Reader
}

// ListPublicPosts returns every public post, newest first.
func (c *SDKClient) ListPublicPosts(ctx context.Context) (*PostsResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/posts", nil, nil)
	if err != nil {
		return nil, err
	}

	var posts PostsResponse
	if err := decodeJSON(resp, &posts, http.StatusOK); err != nil {
		return nil, err
	}

	return &posts, nil
}

// GetPost returns a single public post.
func (c *SDKClient) GetPost(ctx context.Context, id string) (*PostResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}

	var post PostResponse
	if err := decodeJSON(resp, &post, http.StatusOK); err != nil {
		return nil, err
	}

	return &post, nil
}

// GetPublicStats returns the landing page counters.
func (c *SDKClient) GetPublicStats(ctx context.Context) (*PublicStatsResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/posts/stats/public", nil, nil)
	if err != nil {
		return nil, err
	}

	var stats PublicStatsResponse
	if err := decodeJSON(resp, &stats, http.StatusOK); err != nil {
		return nil, err
	}

	return &stats, nil
}

// CreatePost files a report anonymously. The reporter is registered when no
// account exists for req.Email, and the returned session belongs to them.
func (c *SDKClient) CreatePost(ctx context.Context, req CreatePostRequest, files ...UploadFile) (*CreatePostResponse, *Session, error) {
	body, contentType, err := encodePostForm(req, files)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/posts/create", body, map[string]string{
		"Content-Type": contentType,
	})
	if err != nil {
		return nil, nil, err
	}

	token := sessionCookie(resp)

	var created CreatePostResponse
	if err := decodeJSON(resp, &created, http.StatusCreated); err != nil {
		return nil, nil, err
	}
	if token == "" {
		return &created, nil, nil
	}

	return &created, c.NewSession(token), nil
}

type formField struct{ name, value string }

func encodePostForm(req CreatePostRequest, files []UploadFile) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []formField{
		{"name", req.Name},
		{"email", req.Email},
		{"password", req.Password},
		{"type", req.Type},
		{"title", req.Title},
		{"description", req.Description},
		{"personName", req.PersonName},
		{"gender", req.Gender},
		{"itemName", req.ItemName},
		{"category", req.Category},
		{"brand", req.Brand},
		{"color", req.Color},
		{"contactName", req.ContactName},
		{"contactPhone", req.ContactPhone},
		{"contactEmail", req.ContactEmail},
		{"location", req.Location},
		{"priority", req.Priority},
	}
	if req.Age != nil {
		fields = append(fields, formField{"age", strconv.Itoa(*req.Age)})
	}
	if req.LastSeenDate != nil {
		fields = append(fields, formField{"lastSeenDate", req.LastSeenDate.Format(time.RFC3339)})
	}
	if req.RewardAmount != nil {
		fields = append(fields, formField{"rewardAmount", strconv.FormatFloat(*req.RewardAmount, 'f', -1, 64)})
	}

	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("failed to encode form: %w", err)
		}
	}

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		h.Set("Content-Type", f.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode form: %w", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("failed to encode %s: %w", f.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to encode form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
