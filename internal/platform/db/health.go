package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Health describes the database side of the /health endpoint.
type Health struct {
	Status  string `json:"status"`
	Latency string `json:"latency"`
	Error   string `json:"error,omitempty"`
}

// CheckHealth pings the pool with a short deadline.
func CheckHealth(ctx context.Context, pool *pgxpool.Pool) Health {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := pool.Ping(ctx); err != nil {
		return Health{Status: "unhealthy", Latency: time.Since(start).String(), Error: err.Error()}
	}
	return Health{Status: "healthy", Latency: time.Since(start).String()}
}
