package lostfoundsdk

import (
	"context"
	"net/http"
	"net/url"
)

// CreatePost files a report as the session user.
func (s *Session) CreatePost(ctx context.Context, req CreatePostRequest, files ...UploadFile) (*CreatePostResponse, error) {
	body, contentType, err := encodePostForm(req, files)
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/api/posts/create", body, map[string]string{
		"Content-Type": contentType,
	})
	if err != nil {
		return nil, err
	}

	var created CreatePostResponse
	if err := decodeJSON(resp, &created, http.StatusCreated); err != nil {
		return nil, err
	}

	return &created, nil
}

// MyPosts returns every post filed by the session user, public or not.
func (s *Session) MyPosts(ctx context.Context) (*PostsResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/posts/mine/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var posts PostsResponse
	if err := decodeJSON(resp, &posts, http.StatusOK); err != nil {
		return nil, err
	}

	return &posts, nil
}

// UpdatePostStatus sets the status of a post owned by the session user.
func (s *Session) UpdatePostStatus(ctx context.Context, id, status string) (*PostResponse, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPatch, "/api/posts/"+url.PathEscape(id)+"/status", UpdatePostStatusRequest{Status: status})
	if err != nil {
		return nil, err
	}

	var post PostResponse
	if err := decodeJSON(resp, &post, http.StatusOK); err != nil {
		return nil, err
	}

	return &post, nil
}
