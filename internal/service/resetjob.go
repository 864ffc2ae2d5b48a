package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/olegmz/verigate/internal/infra"
	"github.com/olegmz/verigate/internal/metrics"
)

// ResetLocker выдает лок «сброс за этот день уже выполнен».
// Нужен, потому что сервис может работать в несколько реплик:
// сам сброс идемпотентен, но двойной прогон портил бы будущий аудит.
type ResetLocker interface {
	AcquireDailyLock(ctx context.Context, day string) (bool, error)
}

// RedisResetLocker — SETNX-лок в Redis с TTL 48 часов.
type RedisResetLocker struct {
	rdb *redis.Client
}

func NewRedisResetLocker(rdb *redis.Client) *RedisResetLocker {
	return &RedisResetLocker{rdb: rdb}
}

func (l *RedisResetLocker) AcquireDailyLock(ctx context.Context, day string) (bool, error) {
	return l.rdb.SetNX(ctx, infra.GetDailyResetLockKey(day), "1", 48*time.Hour).Result()
}

// UsageResetter — то, что джобу нужно от guardrail.
type UsageResetter interface {
	ResetAllUsedLimits(ctx context.Context) (int64, error)
}

// DailyResetJob обнуляет used_limit всех агентов раз в сутки
// в фиксированный час UTC, без джиттера.
type DailyResetJob struct {
	limits UsageResetter
	locker ResetLocker
	m      *metrics.Metrics
	logger *zap.Logger

	hourUTC int
	now     func() time.Time
}

func NewDailyResetJob(limits UsageResetter, locker ResetLocker, m *metrics.Metrics, logger *zap.Logger, hourUTC int) *DailyResetJob {
	if m == nil {
		m = metrics.NewMetrics(nil)
	}
	return &DailyResetJob{
		limits:  limits,
		locker:  locker,
		m:       m,
		logger:  logger.Named("daily-reset"),
		hourUTC: hourUTC,
		now:     time.Now,
	}
}

// Run блокируется до отмены контекста; запускать в отдельной горутине.
func (j *DailyResetJob) Run(ctx context.Context) {
	for {
		next := j.nextRun()
		timer := time.NewTimer(next.Sub(j.now()))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce выполняет один прогон сброса. Лок делает прогон no-op,
// если другая реплика уже сбросила лимиты сегодня.
func (j *DailyResetJob) RunOnce(ctx context.Context) {
	day := j.now().UTC().Format("2006-01-02")

	acquired, err := j.locker.AcquireDailyLock(ctx, day)
	if err != nil {
		// Лок недоступен — сбрасываем без него: сам сброс идемпотентен
		j.logger.Warn("reset lock unavailable, proceeding anyway", zap.Error(err))
	} else if !acquired {
		j.logger.Info("daily reset already done by another replica", zap.String("day", day))
		return
	}

	count, err := j.limits.ResetAllUsedLimits(ctx)
	if err != nil {
		j.logger.Error("daily limit reset failed", zap.Error(err))
		return
	}

	j.m.LimitResetRecords.Set(float64(count))
	j.logger.Info("daily used limits have been reset",
		zap.String("day", day),
		zap.Int64("records", count))
}

func (j *DailyResetJob) nextRun() time.Time {
	now := j.now().UTC()
	run := time.Date(now.Year(), now.Month(), now.Day(), j.hourUTC, 0, 0, 0, time.UTC)
	if !run.After(now) {
		run = run.Add(24 * time.Hour)
	}
	return run
}
