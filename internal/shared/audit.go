package shared

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityLog represents a record stored in activity_logs.
type ActivityLog struct {
	User      string
	Operation string
	Status    string
	IP        string
	At        time.Time
}

// ActivityLogger writes authentication activity into activity_logs.
type ActivityLogger struct {
	pool *pgxpool.Pool
}

// NewActivityLogger returns a new ActivityLogger.
func NewActivityLogger(pool *pgxpool.Pool) *ActivityLogger {
	return &ActivityLogger{pool: pool}
}

// Record persists the log entry. A nil logger drops the record so callers can
// leave activity logging unwired.
func (l *ActivityLogger) Record(ctx context.Context, log ActivityLog) error {
	if l == nil || l.pool == nil {
		return nil
	}
	if log.User == "" || log.Operation == "" {
		return errors.New("activity log requires user and operation")
	}
	if log.At.IsZero() {
		log.At = time.Now().UTC()
	}
	_, err := l.pool.Exec(ctx,
		`INSERT INTO activity_logs (user_name, operation, status, ip, occurred_at) VALUES ($1, $2, $3, $4, $5)`,
		log.User, log.Operation, log.Status, log.IP, log.At)
	return err
}
