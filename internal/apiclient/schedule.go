package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/sma-portal/internal/models"
)

// ListSchedule calls GET /schedule, optionally bounded by a date range.
func (c *Client) ListSchedule(ctx context.Context, q models.ScheduleQuery) ([]models.ScheduleEntry, error) {
	query := url.Values{}
	if q.StartDate != "" {
		query.Set("start_date", q.StartDate)
	}
	if q.EndDate != "" {
		query.Set("end_date", q.EndDate)
	}
	var entries []models.ScheduleEntry
	err := c.do(ctx, request{method: http.MethodGet, path: "/schedule", query: query, fallback: "Failed to fetch schedule"}, &entries)
	return nonNilEntries(entries), err
}

// ScheduleByDay calls GET /schedule/day/{day}.
func (c *Client) ScheduleByDay(ctx context.Context, day string) ([]models.ScheduleEntry, error) {
	var entries []models.ScheduleEntry
	err := c.do(ctx, request{method: http.MethodGet, path: "/schedule/day/" + pathEscape(day), fallback: "Failed to fetch schedule for day"}, &entries)
	return nonNilEntries(entries), err
}

// ScheduleByGroup calls GET /schedule/group/{id}.
func (c *Client) ScheduleByGroup(ctx context.Context, groupID string) ([]models.ScheduleEntry, error) {
	var entries []models.ScheduleEntry
	err := c.do(ctx, request{method: http.MethodGet, path: "/schedule/group/" + pathEscape(groupID), fallback: "Failed to fetch schedule for group"}, &entries)
	return nonNilEntries(entries), err
}

// ScheduleToday calls GET /schedule/today.
func (c *Client) ScheduleToday(ctx context.Context) ([]models.ScheduleEntry, error) {
	var entries []models.ScheduleEntry
	err := c.do(ctx, request{method: http.MethodGet, path: "/schedule/today", fallback: "Failed to fetch today's schedule"}, &entries)
	return nonNilEntries(entries), err
}

// CreateSchedule calls POST /schedule.
func (c *Client) CreateSchedule(ctx context.Context, in models.ScheduleInput) (*models.ScheduleEntry, error) {
	var entry models.ScheduleEntry
	if err := c.do(ctx, request{method: http.MethodPost, path: "/schedule", body: in, fallback: "Failed to create schedule entry"}, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateSchedule calls PUT /schedule/{id}.
func (c *Client) UpdateSchedule(ctx context.Context, id string, in models.ScheduleInput) (*models.ScheduleEntry, error) {
	var entry models.ScheduleEntry
	if err := c.do(ctx, request{method: http.MethodPut, path: "/schedule/" + pathEscape(id), body: in, fallback: "Failed to update schedule entry"}, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteSchedule calls DELETE /schedule/{id}.
func (c *Client) DeleteSchedule(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/schedule/" + pathEscape(id), fallback: "Failed to delete schedule entry"}, nil)
}

func nonNilEntries(entries []models.ScheduleEntry) []models.ScheduleEntry {
	if entries == nil {
		return []models.ScheduleEntry{}
	}
	return entries
}
