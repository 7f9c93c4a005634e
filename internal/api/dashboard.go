package api

import (
	"context"
	"net/http"

	"github.com/tablerohq/tablero/internal/models"
)

// DashboardClient wraps the /dashboard resource.
type DashboardClient struct {
	c *Client
}

// Stats fetches the aggregate dashboard report.
func (dc *DashboardClient) Stats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := dc.c.do(ctx, http.MethodGet, "/dashboard/stats", nil, &stats, "failed to fetch dashboard stats"); err != nil {
		return nil, err
	}
	return &stats, nil
}
