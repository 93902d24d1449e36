// Package notify delivers new-submission notifications to tenant owners.
package notify

import (
	"context"
	"log/slog"

	"github.com/formpost/formpost/internal/model"
)

// Notifier delivers a submission notification to the owner.
type Notifier interface {
	Send(ctx context.Context, owner *model.Owner, fields model.Fields) error
}

// LogNotifier writes notifications to the log instead of sending them.
// It is used when no mail transport is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "notify")}
}

// Send logs the field names that would have been delivered.
func (n *LogNotifier) Send(ctx context.Context, owner *model.Owner, fields model.Fields) error {
	n.logger.InfoContext(ctx, "submission notification (email disabled)",
		"owner_id", owner.ID,
		"fields", fields.Keys(),
	)
	return nil
}
