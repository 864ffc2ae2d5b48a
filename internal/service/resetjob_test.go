package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type memLocker struct {
	held map[string]bool
	err  error
}

func (l *memLocker) AcquireDailyLock(_ context.Context, day string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.held[day] {
		return false, nil
	}
	l.held[day] = true
	return true, nil
}

type countingResetter struct {
	runs int
	err  error
}

func (r *countingResetter) ResetAllUsedLimits(_ context.Context) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.runs++
	return 2, nil
}

func newTestJob(locker ResetLocker, resetter UsageResetter) *DailyResetJob {
	job := NewDailyResetJob(resetter, locker, nil, zap.NewNop(), 0)
	job.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return job
}

func TestRunOnceResetsOncePerDay(t *testing.T) {
	locker := &memLocker{held: make(map[string]bool)}
	resetter := &countingResetter{}
	job := newTestJob(locker, resetter)

	job.RunOnce(context.Background())
	job.RunOnce(context.Background()) // вторая реплика в тот же день

	assert.Equal(t, 1, resetter.runs)
}

func TestRunOnceProceedsWhenLockerDown(t *testing.T) {
	locker := &memLocker{err: errors.New("redis down")}
	resetter := &countingResetter{}
	job := newTestJob(locker, resetter)

	job.RunOnce(context.Background())

	// Сброс идемпотентен, поэтому при недоступном локе не останавливаемся
	assert.Equal(t, 1, resetter.runs)
}

func TestRunOnceNextDayResetsAgain(t *testing.T) {
	locker := &memLocker{held: make(map[string]bool)}
	resetter := &countingResetter{}
	job := newTestJob(locker, resetter)

	job.RunOnce(context.Background())
	job.now = func() time.Time { return time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) }
	job.RunOnce(context.Background())

	assert.Equal(t, 2, resetter.runs)
}

func TestNextRunSchedule(t *testing.T) {
	job := newTestJob(&memLocker{held: map[string]bool{}}, &countingResetter{})
	job.hourUTC = 3

	job.now = func() time.Time { return time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC) }
	assert.Equal(t, time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC), job.nextRun())

	// Час уже прошел — следующий прогон завтра
	job.now = func() time.Time { return time.Date(2025, 6, 1, 4, 0, 0, 0, time.UTC) }
	assert.Equal(t, time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC), job.nextRun())
}
