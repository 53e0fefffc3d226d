// Package progress appends timestamped status records to a durable log
// observable by the session owner. Reporting is best-effort telemetry:
// a failed write must never abort the pipeline stage that emitted it.
package progress

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// Status tags a progress record.
type Status string

// Progress record statuses.
const (
	StatusStarted    Status = "started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Record is one immutable, append-only progress fact.
type Record struct {
	SessionID          uuid.UUID `json:"session_id"`
	AgentName          string    `json:"agent_name"`
	Status             Status    `json:"status"`
	ProgressPercentage int       `json:"progress_percentage"`
	Message            string    `json:"message"`
}

// Store persists progress records.
type Store interface {
	InsertProgress(ctx context.Context, rec Record) error
}

// Reporter appends progress records to a Store, swallowing write
// failures.
type Reporter struct {
	store Store
}

// NewReporter creates a Reporter backed by the given store.
func NewReporter(store Store) *Reporter {
	return &Reporter{store: store}
}

// Report appends one record. Percentages are clamped to [0, 100].
// Insert failures are logged and discarded.
func (r *Reporter) Report(ctx context.Context, sessionID uuid.UUID, agentName string, percentage int, message string, status Status) {
	if r == nil || r.store == nil {
		return
	}
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}

	rec := Record{
		SessionID:          sessionID,
		AgentName:          agentName,
		Status:             status,
		ProgressPercentage: percentage,
		Message:            message,
	}
	if err := r.store.InsertProgress(ctx, rec); err != nil {
		log.Printf("[%s] failed to record progress (%d%%, %s): %v", agentName, percentage, status, err)
	}
}
