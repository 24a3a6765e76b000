package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/atrium-hq/atrium/internal/catalog"
	jobmetrics "github.com/atrium-hq/atrium/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const warmupUserTimeout = 20 * time.Second

// BootCacheWarmupJob recomputes the permission-scoped page and report
// listings for recently active users, so their next boot payload is served
// from a warm cache.
type BootCacheWarmupJob struct {
	Resolver *catalog.Resolver
	Pool     *pgxpool.Pool
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewBootCacheWarmupJob wires dependencies for the warmup handler.
func NewBootCacheWarmupJob(resolver *catalog.Resolver, pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *BootCacheWarmupJob {
	return &BootCacheWarmupJob{
		Resolver: resolver,
		Pool:     pool,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes boot cache warmup tasks.
func (j *BootCacheWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("boot cache warmup: handler not configured")
	}
	var payload BootCacheWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.ActiveWithinHours <= 0 {
		payload.ActiveWithinHours = 72
	}

	tracker := j.metrics().Track(TaskBootCacheWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("active_within_hours", payload.ActiveWithinHours))
	logger.Info("starting boot cache warmup")

	since := j.now().Add(-time.Duration(payload.ActiveWithinHours) * time.Hour)
	userNames, err := j.fetchActiveUsers(ctx, since)
	if err != nil {
		resultErr = err
		logger.Error("load active users", slog.Any("error", err))
		return resultErr
	}
	if len(userNames) == 0 {
		logger.Info("no active users discovered for warmup")
		return resultErr
	}

	start := j.now()
	var warmed atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(4)
	for _, user := range userNames {
		group.Go(func() error {
			if err := j.warmUser(groupCtx, user); err != nil {
				logger.Error("warm user listings", slog.String("user", user), slog.Any("error", err))
				return err
			}
			warmed.Add(1)
			return nil
		})
	}
	resultErr = group.Wait()

	j.metrics().AddWarmedUsers("warmed", int(warmed.Load()))
	if resultErr != nil {
		j.metrics().AddWarmedUsers("failed", len(userNames)-int(warmed.Load()))
		return resultErr
	}

	logger.Info("completed boot cache warmup", slog.Int64("users", warmed.Load()), slog.Duration("duration", time.Since(start)))
	return resultErr
}

// warmUser recomputes both listings, refreshing the cache entries under the
// fixed TTL.
func (j *BootCacheWarmupJob) warmUser(ctx context.Context, user string) error {
	if j.Resolver == nil {
		return nil
	}
	userCtx, cancel := context.WithTimeout(ctx, warmupUserTimeout)
	defer cancel()

	if _, err := j.Resolver.AllowedPages(userCtx, user, catalog.Options{}); err != nil {
		return err
	}
	_, err := j.Resolver.AllowedReports(userCtx, user, catalog.Options{})
	return err
}

func (j *BootCacheWarmupJob) fetchActiveUsers(ctx context.Context, since time.Time) ([]string, error) {
	if j.Pool == nil {
		return nil, errors.New("boot cache warmup: pool not configured")
	}
	rows, err := j.Pool.Query(ctx,
		`SELECT DISTINCT user_name FROM sessions WHERE created_at > $1 ORDER BY user_name`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	userNames := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		userNames = append(userNames, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return userNames, nil
}

func (j *BootCacheWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskBootCacheWarmup))
	}
	return slog.Default().With(slog.String("job", TaskBootCacheWarmup))
}

func (j *BootCacheWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *BootCacheWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
