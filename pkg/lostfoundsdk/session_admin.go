package lostfoundsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ListUsers pages through accounts, newest first.
// Requires: admin role
func (s *Session) ListUsers(ctx context.Context, q ListQuery) (*UserListResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/admin/users"+q.encode(), nil, nil)
	if err != nil {
		return nil, err
	}

	var list UserListResponse
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}

	return &list, nil
}

// DeleteUser removes an account together with its posts.
// Requires: admin role
func (s *Session) DeleteUser(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/api/admin/users/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}

	var msg MessageResponse
	return decodeJSON(resp, &msg, http.StatusOK)
}

// ListAllPosts pages through every post.
// Requires: admin role
func (s *Session) ListAllPosts(ctx context.Context, q ListQuery) (*PostListResponse, error) {
	return s.listPosts(ctx, "/api/admin/posts", q)
}

// ListLostReports pages through lost person and lost item reports.
// Requires: admin role
func (s *Session) ListLostReports(ctx context.Context, q ListQuery) (*PostListResponse, error) {
	return s.listPosts(ctx, "/api/admin/reports/lost", q)
}

// ListFoundReports pages through found person and found item reports.
// Requires: admin role
func (s *Session) ListFoundReports(ctx context.Context, q ListQuery) (*PostListResponse, error) {
	return s.listPosts(ctx, "/api/admin/reports/found", q)
}

// ListItems pages through lost and found item reports.
// Requires: admin role
func (s *Session) ListItems(ctx context.Context, q ListQuery) (*PostListResponse, error) {
	return s.listPosts(ctx, "/api/admin/items", q)
}

func (s *Session) listPosts(ctx context.Context, path string, q ListQuery) (*PostListResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, path+q.encode(), nil, nil)
	if err != nil {
		return nil, err
	}

	var list PostListResponse
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}

	return &list, nil
}

// WeeklyStats returns lost and found counts for the last seven days,
// oldest first.
// Requires: admin role
func (s *Session) WeeklyStats(ctx context.Context) (*WeeklyStatsResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/admin/stats/weekly", nil, nil)
	if err != nil {
		return nil, err
	}

	var stats WeeklyStatsResponse
	if err := decodeJSON(resp, &stats, http.StatusOK); err != nil {
		return nil, err
	}

	return &stats, nil
}

// MonthlyStats returns lost and found counts for the last twelve months,
// oldest first.
// Requires: admin role
func (s *Session) MonthlyStats(ctx context.Context) (*MonthlyStatsResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/admin/stats/monthly", nil, nil)
	if err != nil {
		return nil, err
	}

	var stats MonthlyStatsResponse
	if err := decodeJSON(resp, &stats, http.StatusOK); err != nil {
		return nil, err
	}

	return &stats, nil
}
