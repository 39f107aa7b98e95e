package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
)

const postColumns = `p.id, p.user_id, p.type, p.title, p.description,
	p.person_name, p.age, p.gender, p.item_name, p.category, p.brand, p.color,
	p.contact_name, p.contact_phone, p.contact_email, p.last_seen_at,
	p.images, p.location, p.status, p.priority, p.reward_amount, p.is_public,
	p.created_at, p.updated_at,
	u.name, u.email, u.role`

type postsRepo struct {
	db dbtx
}

// imageJSON and locationJSON are the stored shapes of the JSON columns.
type imageJSON struct {
	URL        string `json:"url"`
	Caption    string `json:"caption,omitempty"`
	UploadedAt int64  `json:"uploadedAt"`
}

type locationJSON struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   string   `json:"address,omitempty"`
	City      string   `json:"city,omitempty"`
	Region    string   `json:"region,omitempty"`
	Country   string   `json:"country,omitempty"`
}

func encodeImages(images []domain.Image) (string, error) {
	out := make([]imageJSON, 0, len(images))
	for _, img := range images {
		out = append(out, imageJSON{URL: img.URL, Caption: img.Caption, UploadedAt: toMillis(img.UploadedAt)})
	}
	b, err := json.Marshal(out)
	return string(b), err
}

func decodeImages(raw string) ([]domain.Image, error) {
	var in []imageJSON
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, err
	}
	images := make([]domain.Image, 0, len(in))
	for _, img := range in {
		images = append(images, domain.Image{URL: img.URL, Caption: img.Caption, UploadedAt: fromMillis(img.UploadedAt)})
	}
	return images, nil
}

func encodeLocation(l domain.Location) (string, error) {
	b, err := json.Marshal(locationJSON(l))
	return string(b), err
}

func decodeLocation(raw string) (domain.Location, error) {
	var l locationJSON
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		return domain.Location{}, err
	}
	return domain.Location(l), nil
}

func scanPost(row rowScanner) (domain.PostWithAuthor, error) {
	var (
		p                      domain.PostWithAuthor
		typ, gender            string
		status, priority, role string
		images, location       string
		age                    sql.NullInt64
		reward                 sql.NullFloat64
		lastSeen               sql.NullInt64
		public                 int
		created, updated       int64
	)
	err := row.Scan(&p.ID, &p.UserID, &typ, &p.Title, &p.Description,
		&p.PersonName, &age, &gender, &p.ItemName, &p.Category, &p.Brand, &p.Color,
		&p.ContactName, &p.ContactPhone, &p.ContactEmail, &lastSeen,
		&images, &location, &status, &priority, &reward, &public,
		&created, &updated,
		&p.Author.Name, &p.Author.Email, &role)
	if err != nil {
		return domain.PostWithAuthor{}, err
	}

	p.Type = domain.PostType(typ)
	p.Gender = domain.Gender(gender)
	p.Status = domain.PostStatus(status)
	p.Priority = domain.Priority(priority)
	p.IsPublic = public != 0
	p.LastSeenDate = fromNullMillis(lastSeen)
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	p.Author.ID = p.UserID
	p.Author.Role = domain.Role(role)

	if age.Valid {
		v := int(age.Int64)
		p.Age = &v
	}
	if reward.Valid {
		v := reward.Float64
		p.RewardAmount = &v
	}
	if p.Images, err = decodeImages(images); err != nil {
		return domain.PostWithAuthor{}, fmt.Errorf("decode images of post %s: %w", p.ID, err)
	}
	if p.Location, err = decodeLocation(location); err != nil {
		return domain.PostWithAuthor{}, fmt.Errorf("decode location of post %s: %w", p.ID, err)
	}
	return p, nil
}

func (r *postsRepo) CreatePost(ctx context.Context, p domain.Post) error {
	images, err := encodeImages(p.Images)
	if err != nil {
		return err
	}
	location, err := encodeLocation(p.Location)
	if err != nil {
		return err
	}

	var age sql.NullInt64
	if p.Age != nil {
		age = sql.NullInt64{Int64: int64(*p.Age), Valid: true}
	}
	var reward sql.NullFloat64
	if p.RewardAmount != nil {
		reward = sql.NullFloat64{Float64: *p.RewardAmount, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO posts (
			id, user_id, type, title, description,
			person_name, age, gender, item_name, category, brand, color,
			contact_name, contact_phone, contact_email, last_seen_at,
			images, location, status, priority, reward_amount, is_public,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, string(p.Type), p.Title, p.Description,
		p.PersonName, age, string(p.Gender), p.ItemName, p.Category, p.Brand, p.Color,
		p.ContactName, p.ContactPhone, p.ContactEmail, toNullMillis(p.LastSeenDate),
		images, location, string(p.Status), string(p.Priority), reward, boolInt(p.IsPublic),
		toMillis(p.CreatedAt), toMillis(p.UpdatedAt),
	)
	return mapUnique(err)
}

func (r *postsRepo) GetPostByID(ctx context.Context, id string) (domain.PostWithAuthor, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx, `
		SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.user_id
		WHERE p.id = ?`, id))
	if err != nil {
		return domain.PostWithAuthor{}, mapNotFound(err)
	}
	return p, nil
}

// postPredicate renders q as a WHERE clause over the aliased posts table.
func postPredicate(q domain.PostQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if q.Types != nil {
		if len(q.Types) == 0 {
			conds = append(conds, "0")
		} else {
			marks := strings.TrimSuffix(strings.Repeat("?, ", len(q.Types)), ", ")
			conds = append(conds, "p.type IN ("+marks+")")
			for _, t := range q.Types {
				args = append(args, string(t))
			}
		}
	}

	if q.Search != "" {
		fields := []string{"p.title", "p.description", "p.person_name", "p.item_name", "p.category"}
		ors := make([]string, len(fields))
		pattern := likePattern(q.Search)
		for i, f := range fields {
			ors[i] = "LOWER(" + f + `) LIKE ? ESCAPE '\'`
			args = append(args, pattern)
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	if q.Status != "" {
		conds = append(conds, "p.status = ?")
		args = append(args, string(q.Status))
	}

	if q.OwnerID != "" {
		conds = append(conds, "p.user_id = ?")
		args = append(args, q.OwnerID)
	}

	if q.PublicOnly {
		conds = append(conds, "p.is_public = 1")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *postsRepo) ListPosts(ctx context.Context, q domain.PostQuery) ([]domain.PostWithAuthor, int, error) {
	where, args := postPredicate(q)

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts p`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	query := `SELECT ` + postColumns + ` FROM posts p JOIN users u ON u.id = p.user_id` +
		where + ` ORDER BY p.created_at DESC, p.id DESC`
	if q.Page.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.Page.Limit, q.Page.Offset())
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]domain.PostWithAuthor, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}

func (r *postsRepo) UpdatePostStatus(
	ctx context.Context,
	id string,
	status domain.PostStatus,
	now time.Time,
) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE posts SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), toMillis(now), id))
}

func (r *postsRepo) CountPostsByDay(ctx context.Context, since time.Time) ([]domain.TypeCount, error) {
	return r.countBy(ctx, "%Y-%m-%d", since)
}

func (r *postsRepo) CountPostsByMonth(ctx context.Context, since time.Time) ([]domain.TypeCount, error) {
	return r.countBy(ctx, "%Y-%m", since)
}

func (r *postsRepo) countBy(ctx context.Context, layout string, since time.Time) ([]domain.TypeCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT strftime(?, created_at / 1000, 'unixepoch') AS bucket, type, COUNT(*)
		FROM posts
		WHERE created_at >= ?
		GROUP BY bucket, type
		ORDER BY bucket`,
		layout, toMillis(since))
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	defer rows.Close()

	var out []domain.TypeCount
	for rows.Next() {
		var (
			tc  domain.TypeCount
			typ string
		)
		if err := rows.Scan(&tc.Key, &typ, &tc.Count); err != nil {
			return nil, err
		}
		tc.Type = domain.PostType(typ)
		out = append(out, tc)
	}
	return out, rows.Err()
}

func (r *postsRepo) Stats(ctx context.Context, since time.Time) (domain.PostStats, error) {
	stats := domain.PostStats{ByType: make(map[domain.PostType]int, len(domain.AllPostTypes))}
	for _, t := range domain.AllPostTypes {
		stats.ByType[t] = 0
	}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(status = 'resolved'), 0),
		       COALESCE(SUM(created_at >= ?), 0)
		FROM posts
		WHERE is_public = 1`, toMillis(since)).Scan(&stats.Total, &stats.Resolved, &stats.Last7d)
	if err != nil {
		return domain.PostStats{}, fmt.Errorf("post totals: %w", err)
	}
	stats.Open = stats.Total - stats.Resolved

	rows, err := r.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM posts WHERE is_public = 1 GROUP BY type`)
	if err != nil {
		return domain.PostStats{}, fmt.Errorf("posts by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			typ string
			n   int
		)
		if err := rows.Scan(&typ, &n); err != nil {
			return domain.PostStats{}, err
		}
		stats.ByType[domain.PostType(typ)] = n
	}
	return stats, rows.Err()
}
