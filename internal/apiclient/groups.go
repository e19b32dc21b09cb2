package apiclient

import (
	"context"
	"net/http"

	"github.com/noah-isme/sma-portal/internal/models"
)

// ListGroups calls GET /groups.
func (c *Client) ListGroups(ctx context.Context) ([]models.Group, error) {
	groups := []models.Group{}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/groups", fallback: "Failed to fetch groups"}, &groups); err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

// GroupStudents calls GET /groups/{id}/students/list.
func (c *Client) GroupStudents(ctx context.Context, groupID string) ([]models.GroupStudent, error) {
	students := []models.GroupStudent{}
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/groups/" + pathEscape(groupID) + "/students/list",
		fallback: "Failed to fetch group students",
	}, &students)
	if err != nil {
		return nil, err
	}
	return students, nil
}
