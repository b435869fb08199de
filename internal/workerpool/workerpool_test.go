package workerpool_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iamNilotpal/ignite/internal/workerpool"
	"github.com/iamNilotpal/ignite/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsSubmittedJobs(t *testing.T) {
	pool := workerpool.New(4, logger.Nop())
	defer pool.Close()

	var counter atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		require.NoError(t, pool.Submit(func() {
			defer wg.Done()
			counter.Add(1)
		}))
	}
	wg.Wait()

	require.Equal(t, int32(50), counter.Load())
}

func TestPool_IsolatesPanickingJobs(t *testing.T) {
	pool := workerpool.New(2, logger.Nop())
	defer pool.Close()

	var ran atomic.Bool
	var wg sync.WaitGroup

	wg.Add(1)
	require.NoError(t, pool.Submit(func() {
		defer wg.Done()
		panic("boom")
	}))
	wg.Wait()

	wg.Add(1)
	require.NoError(t, pool.Submit(func() {
		defer wg.Done()
		ran.Store(true)
	}))
	wg.Wait()

	require.True(t, ran.Load(), "pool must keep serving jobs after a panic")
}

func TestPool_CloseRejectsFurtherSubmissions(t *testing.T) {
	pool := workerpool.New(1, logger.Nop())
	pool.Close()

	err := pool.Submit(func() {})
	require.ErrorIs(t, err, workerpool.ErrPoolClosed)
}

func TestPool_CloseWaitsForInFlightJobs(t *testing.T) {
	pool := workerpool.New(1, logger.Nop())

	started := make(chan struct{})
	finished := make(chan struct{})
	require.NoError(t, pool.Submit(func() {
		close(started)
		time.Sleep(20 * time.Millisecond)
		close(finished)
	}))

	<-started
	pool.Close()

	select {
	case <-finished:
	default:
		t.Fatal("Close returned before the in-flight job finished")
	}
}
