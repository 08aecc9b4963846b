package maintenance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	mu          sync.Mutex
	optimized   int
	vacuumed    int
	optimizeErr error
}

func (f *fakeTarget) Optimize(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.optimized++
	return f.optimizeErr
}

func (f *fakeTarget) Vacuum(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vacuumed++
	return nil
}

func (f *fakeTarget) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.optimized, f.vacuumed
}

func TestRunNow_OptimizeOnly(t *testing.T) {
	target := &fakeTarget{}
	s := NewScheduler(target, Config{})

	result, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Vacuumed)

	optimized, vacuumed := target.counts()
	assert.Equal(t, 1, optimized)
	assert.Equal(t, 0, vacuumed)

	last, lastErr := s.LastRun()
	assert.Same(t, result, last)
	assert.NoError(t, lastErr)
}

func TestRunNow_WithVacuum(t *testing.T) {
	target := &fakeTarget{}
	s := NewScheduler(target, Config{Vacuum: true})

	result, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Vacuumed)

	_, vacuumed := target.counts()
	assert.Equal(t, 1, vacuumed)
}

func TestRunNow_OptimizeFailureSkipsVacuum(t *testing.T) {
	target := &fakeTarget{optimizeErr: errors.New("database is locked")}
	s := NewScheduler(target, Config{Vacuum: true})

	_, err := s.RunNow(context.Background())
	require.Error(t, err)

	_, vacuumed := target.counts()
	assert.Equal(t, 0, vacuumed)

	last, lastErr := s.LastRun()
	assert.Nil(t, last)
	assert.EqualError(t, lastErr, "database is locked")
}

func TestStart_RequiresSchedule(t *testing.T) {
	s := NewScheduler(&fakeTarget{}, Config{})
	assert.Error(t, s.Start())
	assert.False(t, s.IsRunning())
}

func TestStart_InvalidSchedule(t *testing.T) {
	s := NewScheduler(&fakeTarget{}, Config{Schedule: "every tuesday-ish"})
	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid maintenance schedule")
	assert.False(t, s.IsRunning())
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&fakeTarget{}, Config{Schedule: "@daily"})

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.True(t, s.NextRun().After(time.Now()))

	require.NoError(t, s.Start(), "starting twice is a no-op")

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.True(t, s.NextRun().IsZero())

	s.Stop()
}

func TestScheduledRun(t *testing.T) {
	target := &fakeTarget{}
	s := NewScheduler(target, Config{Schedule: "@every 1s"})

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		optimized, _ := target.counts()
		return optimized >= 1
	}, 5*time.Second, 50*time.Millisecond)
}
