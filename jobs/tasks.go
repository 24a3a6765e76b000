package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBootCacheWarmup precomputes page/report listings for active users.
	TaskBootCacheWarmup = "boot:cache_warmup"
	// TaskSessionSweep removes expired session rows.
	TaskSessionSweep = "session:sweep"
)

// BootCacheWarmupPayload scopes which users get their listings precomputed.
type BootCacheWarmupPayload struct {
	// ActiveWithinHours limits warmup to users with a session created inside
	// the window. Zero falls back to 72 hours.
	ActiveWithinHours int `json:"active_within_hours"`
}

// NewBootCacheWarmupTask constructs an Asynq task.
func NewBootCacheWarmupTask(payload BootCacheWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBootCacheWarmup, data), nil
}

// NewSessionSweepTask constructs an Asynq task.
func NewSessionSweepTask() *asynq.Task {
	return asynq.NewTask(TaskSessionSweep, nil)
}
