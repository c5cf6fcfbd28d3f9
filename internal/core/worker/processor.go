package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MAAB-FW/quick-cash-server/internal/core/notifications"
)

const (
	pollInterval = 5 * time.Second
	maxAttempts  = 5
)

// StartWebhookWorker delivers queued transfer events in the background
// until ctx is cancelled.
func StartWebhookWorker(ctx context.Context, db *pgxpool.Pool, secret string) {
	go func() {
		slog.Info("webhook worker started")
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Info("webhook worker stopped")
				return
			case <-ticker.C:
				processJobs(ctx, db, secret)
			}
		}
	}()
}

func processJobs(ctx context.Context, db *pgxpool.Pool, secret string) {
	query := `
		SELECT id, url, payload, attempts
		FROM webhook_jobs
		WHERE status = 'PENDING' AND next_run_at <= NOW()
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`

	var (
		id       string
		url      string
		payload  []byte
		attempts int
	)
	if err := db.QueryRow(ctx, query).Scan(&id, &url, &payload, &attempts); err != nil {
		return
	}

	if err := notifications.SendWebhook(url, payload, secret); err != nil {
		slog.Error("webhook delivery failed", "error", err, "job_id", id, "attempts", attempts)
		if attempts+1 >= maxAttempts {
			db.Exec(ctx, "UPDATE webhook_jobs SET status = 'FAILED' WHERE id = $1", id)
			slog.Error("webhook job abandoned", "job_id", id)
			return
		}
		nextRun := time.Now().Add(time.Duration(attempts*10+10) * time.Second)
		db.Exec(ctx,
			"UPDATE webhook_jobs SET attempts = attempts + 1, next_run_at = $2 WHERE id = $1",
			id, nextRun)
		return
	}

	db.Exec(ctx, "UPDATE webhook_jobs SET status = 'COMPLETED' WHERE id = $1", id)
	slog.Info("webhook delivered", "job_id", id)
}
