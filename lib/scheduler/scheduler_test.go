package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() *Scheduler {
	return New(WithPollInterval(10*time.Millisecond), WithGCInterval(20*time.Millisecond))
}

func TestDelayTaskFires(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	var fired atomic.Bool
	s.DelayTask(30*time.Millisecond, func() { fired.Store(true) })

	require.Eventually(t, fired.Load, time.Second, 5*time.Millisecond)
}

func TestStopTaskPreventsFire(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	var fired atomic.Bool
	id := s.DelayTask(50*time.Millisecond, func() { fired.Store(true) })
	s.StopTask(id)

	time.Sleep(150 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestStopTaskIsIdempotent(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	id := s.DelayTask(time.Second, func() {})
	s.StopTask(id)
	s.StopTask(id) // must not panic or block
}

func TestGetRemainTimeUnknownID(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	assert.Equal(t, 0, s.GetRemainTime(999999))
}

func TestGetRemainTimeBounds(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	id := s.DelayTask(5*time.Second, func() {})
	remain := s.GetRemainTime(id)
	assert.GreaterOrEqual(t, remain, 4)
	assert.LessOrEqual(t, remain, 5)
}

func TestGetRemainTimeAfterFire(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	var fired atomic.Bool
	id := s.DelayTask(20*time.Millisecond, func() { fired.Store(true) })

	require.Eventually(t, fired.Load, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, s.GetRemainTime(id))
}

func TestIDsAreNonzeroAndUnique(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	seen := make(map[uint64]bool)
	for i := 0; i < 50; i++ {
		id := s.DelayTask(time.Minute, func() {})
		require.NotZero(t, id)
		require.False(t, seen[id], "id %d reused", id)
		seen[id] = true
	}
}

func TestCloseStopsPendingWorkersWithoutFiring(t *testing.T) {
	s := newTestScheduler()

	var fired atomic.Bool
	s.DelayTask(time.Minute, func() { fired.Store(true) })

	s.Close()
	assert.False(t, fired.Load())
}

func TestCloseIsIdempotent(t *testing.T) {
	s := newTestScheduler()
	s.Close()
	s.Close() // must not panic or block a second time
}
