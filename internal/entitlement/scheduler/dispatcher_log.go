package scheduler

import (
	"context"
	"log/slog"

	"imsse/internal/entitlement/models"
)

// LogDispatcher announces queries in the log only. Without a broker the
// answer is posted back through the HTTP query-result endpoint.
type LogDispatcher struct {
	logger *slog.Logger
}

func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, req models.QueryRequest) error {
	d.logger.InfoContext(ctx, "entitlement query pending",
		"sub_id", req.SubID,
		"query_id", req.ID,
		"requested_at", req.RequestedAt,
	)
	return nil
}
