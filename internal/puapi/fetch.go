package puapi

import (
	"context"
	"encoding/json"

	"pumon/internal/activity"
	"pumon/pkg/logx"
)

// ListItem is the slim record listing endpoints return. The pipeline only
// needs the authoritative ID, the title (for keyword filtering) and the
// status label (for ended subtraction) before the detail fetch.
type ListItem struct {
	ID         activity.ID `json:"id"`
	Name       string      `json:"name"`
	StatusName string      `json:"statusName"`
}

// Tribe is one of the account's joined tribes.
type Tribe struct {
	ID   activity.ID `json:"id"`
	Name string      `json:"name"`
}

// listEnvelope matches the nested data.list shape of every listing call.
// A missing data or list key decodes to nil, which callers treat as empty.
type listEnvelope[T any] struct {
	Data struct {
		List []T `json:"list"`
	} `json:"data"`
}

// ListActivities fetches the global public listing.
func (c *Client) ListActivities(ctx context.Context, limit int) ([]ListItem, error) {
	payload := map[string]any{
		"sort":       0,
		"page":       1,
		"limit":      limit,
		"puType":     0,
		"allowYears": c.allowYears,
	}
	var env listEnvelope[ListItem]
	if err := c.postJSON(ctx, "/activity/list", payload, &env); err != nil {
		return nil, err
	}
	return env.Data.List, nil
}

// ListEnded fetches the ended listing (status 3), used for subtraction.
func (c *Client) ListEnded(ctx context.Context, limit int) ([]ListItem, error) {
	payload := map[string]any{
		"sort":       0,
		"page":       1,
		"limit":      limit,
		"puType":     0,
		"status":     3,
		"allowYears": c.allowYears,
	}
	var env listEnvelope[ListItem]
	if err := c.postJSON(ctx, "/activity/list", payload, &env); err != nil {
		return nil, err
	}
	return env.Data.List, nil
}

// MyTribes fetches the tribes the operating account has joined (type 2).
func (c *Client) MyTribes(ctx context.Context, limit int) ([]Tribe, error) {
	payload := map[string]any{
		"page":  1,
		"limit": limit,
		"type":  2,
	}
	var env listEnvelope[Tribe]
	if err := c.postJSON(ctx, "/tribe/myList", payload, &env); err != nil {
		return nil, err
	}
	return env.Data.List, nil
}

// TribeEvents fetches one tribe's internal activity listing.
func (c *Client) TribeEvents(ctx context.Context, tribeID activity.ID, limit int) ([]ListItem, error) {
	payload := map[string]any{
		"tribeID": tribeID,
		"page":    1,
		"limit":   limit,
	}
	var env listEnvelope[ListItem]
	if err := c.postJSON(ctx, "/tribe/eventList", payload, &env); err != nil {
		return nil, err
	}
	return env.Data.List, nil
}

// ActivityInfo fetches one activity's detail record.
//
// Deployments differ on the response shape: data is either the record itself
// or wraps it in baseInfo. Both are handled; an empty or missing record
// returns (nil, nil) so callers can skip it without treating it as a failure.
func (c *Client) ActivityInfo(ctx context.Context, id activity.ID) (*activity.Detail, error) {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.postJSON(ctx, "/activity/info", map[string]any{"id": id}, &env); err != nil {
		return nil, err
	}
	raw := env.Data
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var wrapped struct {
		BaseInfo json.RawMessage `json:"baseInfo"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil &&
		len(wrapped.BaseInfo) > 0 && string(wrapped.BaseInfo) != "null" {
		raw = wrapped.BaseInfo
	}

	var d activity.Detail
	if err := json.Unmarshal(raw, &d); err != nil {
		c.log.Warn("unparseable activity detail", logx.String("id", id.String()), logx.Err(err))
		return nil, nil
	}
	if d.Name == "" && d.ID == 0 {
		return nil, nil
	}
	return &d, nil
}
