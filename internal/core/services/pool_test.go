package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
)

func TestGeneratorPool_AcquireRelease(t *testing.T) {
	h1, h2 := &scriptedLLM{}, &scriptedLLM{}
	pool := NewGeneratorPool([]driven.LLMService{h1, h2}, nil)
	assert.Equal(t, 2, pool.Size())

	ctx := context.Background()
	l1, err := pool.Acquire(ctx)
	require.NoError(t, err)
	l2, err := pool.Acquire(ctx)
	require.NoError(t, err)
	assert.NotSame(t, l1.Generator(), l2.Generator())

	// pool exhausted: acquisition waits for the context
	shortCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = pool.Acquire(shortCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	l1.Release()
	l1.Release() // idempotent

	l3, err := pool.Acquire(ctx)
	require.NoError(t, err)
	assert.Same(t, l1.Generator(), l3.Generator())

	_, err = pool.Acquire(shortCtx)
	assert.Error(t, err, "double release must not add a handle")
}

func TestGeneratorPool_Empty(t *testing.T) {
	_, err := NewGeneratorPool(nil, nil).Acquire(context.Background())
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestGeneratorPool_Close(t *testing.T) {
	h1 := &scriptedLLM{}
	h2 := &scriptedLLM{closeErr: errors.New("boom")}
	pool := NewGeneratorPool([]driven.LLMService{h1, h2}, nil)

	lease, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	err = pool.Close()
	assert.ErrorContains(t, err, "boom")
	assert.True(t, h1.closed)
	assert.True(t, h2.closed)
	assert.NoError(t, pool.Close())

	lease.Release()
	_, err = pool.Acquire(context.Background())
	assert.ErrorIs(t, err, domain.ErrPoolClosed)
}

func TestGeneratorLease_WaitWithoutLimiter(t *testing.T) {
	pool := NewGeneratorPool([]driven.LLMService{&scriptedLLM{}}, nil)
	lease, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer lease.Release()

	assert.NoError(t, lease.Wait(context.Background()))
	lease.Throttled(time.Second) // no limiter, no effect
	assert.NoError(t, lease.Wait(context.Background()))
}

func TestRateLimiter_Unlimited(t *testing.T) {
	r := NewRateLimiter(0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	for i := 0; i < 100; i++ {
		require.NoError(t, r.Wait(ctx))
	}
}

func TestRateLimiter_Paced(t *testing.T) {
	r := NewRateLimiter(60) // one per second, burst one
	require.NoError(t, r.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, r.Wait(ctx))
}

func TestRateLimiter_RecordThrottle(t *testing.T) {
	r := NewRateLimiter(0)
	r.RecordThrottle(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)

	// a shorter throttle never shortens an existing pause
	r.RecordThrottle(time.Millisecond)
	ctx2, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()
	assert.ErrorIs(t, r.Wait(ctx2), context.DeadlineExceeded)
}

func TestGeneratorLease_ThrottledPausesPool(t *testing.T) {
	pool := NewGeneratorPool([]driven.LLMService{&scriptedLLM{}}, NewRateLimiter(0))
	lease, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer lease.Release()

	lease.Throttled(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, lease.Wait(ctx), context.DeadlineExceeded)
}
