package watch

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduler_Notify_BurstCoalescesToOneRebuild(t *testing.T) {
	var builds atomic.Int32
	s := NewScheduler(20*time.Millisecond, func() { builds.Add(1) })

	for i := 0; i < 10; i++ {
		s.Notify()
		time.Sleep(2 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return builds.Load() == 1 },
		time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), builds.Load())
	require.Equal(t, StateIdle, s.State())
}

func TestScheduler_Notify_DuringRebuildQueuesExactlyOneFollowUp(t *testing.T) {
	var builds atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 2)

	s := NewScheduler(5*time.Millisecond, func() {
		builds.Add(1)
		started <- struct{}{}
		<-release
	})

	s.Notify()
	<-started
	require.Equal(t, StateRebuilding, s.State())

	// Several changes land while the first rebuild is in flight.
	s.Notify()
	s.Notify()
	s.Notify()
	release <- struct{}{}

	<-started
	release <- struct{}{}

	require.Eventually(t, func() bool { return s.State() == StateIdle },
		time.Second, 5*time.Millisecond)
	require.Equal(t, int32(2), builds.Load())
}

func TestScheduler_Notify_ResetsDebounceWindow(t *testing.T) {
	var builds atomic.Int32
	s := NewScheduler(50*time.Millisecond, func() { builds.Add(1) })

	s.Notify()
	require.Equal(t, StatePending, s.State())
	time.Sleep(30 * time.Millisecond)
	s.Notify()
	time.Sleep(30 * time.Millisecond)
	// 60ms elapsed but the window was pushed out, so nothing ran yet.
	require.Equal(t, int32(0), builds.Load())

	require.Eventually(t, func() bool { return builds.Load() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestScheduler_Stop_CancelsPendingRebuild(t *testing.T) {
	var builds atomic.Int32
	s := NewScheduler(20*time.Millisecond, func() { builds.Add(1) })

	s.Notify()
	s.Stop()
	require.Equal(t, StateIdle, s.State())

	time.Sleep(60 * time.Millisecond)
	require.Equal(t, int32(0), builds.Load())
}

func TestScheduler_Notify_ConcurrentCallersAreSafe(t *testing.T) {
	var builds atomic.Int32
	s := NewScheduler(10*time.Millisecond, func() { builds.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				s.Notify()
			}
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		return builds.Load() >= 1 && s.State() == StateIdle
	}, time.Second, 5*time.Millisecond)
	require.LessOrEqual(t, builds.Load(), int32(2))
}
