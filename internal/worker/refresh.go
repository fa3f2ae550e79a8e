package worker

import (
	"context"
	"log"
	"time"

	"geocerca/internal/config"
	"geocerca/internal/service/roster"
)

// StartRefreshWorker starts the worker that re-warms the snapshot caches so
// interactive requests rarely pay the upstream fetch cost.
func StartRefreshWorker() {
	rosterService := roster.GetRosterService()

	ticker := time.NewTicker(config.RefreshWorkerInterval)
	go func() {
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), config.RefreshWorkerInterval)
			rosterService.RefreshAll(ctx)
			cancel()
		}
	}()

	log.Println("Refresh worker started with interval:", config.RefreshWorkerInterval)
}

// StartArchiveWorker starts the worker that flushes dirty snapshots to
// PostgreSQL for warm starts.
func StartArchiveWorker() {
	rosterService := roster.GetRosterService()

	ticker := time.NewTicker(config.PostgresArchiveInterval)
	go func() {
		for range ticker.C {
			if err := rosterService.FlushArchive(); err != nil {
				log.Printf("Error archiving snapshots to PostgreSQL: %v", err)
			}
		}
	}()

	log.Println("Archive worker started with interval:", config.PostgresArchiveInterval)
}
