package api

import (
	"context"
	"net/http"
)

// LogClient wraps the /logs resource. Unlike every other resource the body
// is plain text, not JSON.
type LogClient struct {
	c *Client
}

// Tail fetches the activity log as raw text.
func (lc *LogClient) Tail(ctx context.Context) (string, error) {
	raw, err := lc.c.doRaw(ctx, http.MethodGet, "/logs", nil, "failed to fetch logs", true)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
