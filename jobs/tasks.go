package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSnapshotRefresh reloads the ledger snapshot and bumps the
	// aggregate cache version.
	TaskSnapshotRefresh = "snapshot:refresh"
)

// SnapshotRefreshPayload parametrizes a snapshot refresh.
type SnapshotRefreshPayload struct {
	// Reason distinguishes scheduled refreshes from manual ones in logs.
	Reason string `json:"reason"`
}

// NewSnapshotRefreshTask constructs an Asynq task.
func NewSnapshotRefreshTask(payload SnapshotRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSnapshotRefresh, data), nil
}
