package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
)

// GeneratorPool shares a fixed set of generator handles between in-flight
// queries. Each generation attempt leases a handle and returns it on every
// exit path.
type GeneratorPool struct {
	handles   chan driven.LLMService
	all       []driven.LLMService
	limiter   *RateLimiter
	done      chan struct{}
	closeOnce sync.Once
}

// NewGeneratorPool creates a pool over handles. limiter is optional.
func NewGeneratorPool(handles []driven.LLMService, limiter *RateLimiter) *GeneratorPool {
	p := &GeneratorPool{
		handles: make(chan driven.LLMService, len(handles)),
		all:     handles,
		limiter: limiter,
		done:    make(chan struct{}),
	}
	for _, h := range handles {
		p.handles <- h
	}
	return p
}

// Size returns the number of handles owned by the pool.
func (p *GeneratorPool) Size() int {
	return len(p.all)
}

// Acquire blocks until a handle is free, the context ends or the pool closes.
func (p *GeneratorPool) Acquire(ctx context.Context) (*GeneratorLease, error) {
	if len(p.all) == 0 {
		return nil, domain.ErrLLMUnavailable
	}

	select {
	case <-p.done:
		return nil, domain.ErrPoolClosed
	default:
	}

	select {
	case <-p.done:
		return nil, domain.ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case h := <-p.handles:
		return &GeneratorLease{pool: p, handle: h}, nil
	}
}

// Close closes every handle. Outstanding leases may still be released.
func (p *GeneratorPool) Close() error {
	var errs []error
	p.closeOnce.Do(func() {
		close(p.done)
		for _, h := range p.all {
			if err := h.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

// GeneratorLease is a checked-out generator handle.
type GeneratorLease struct {
	pool    *GeneratorPool
	handle  driven.LLMService
	release sync.Once
}

// Generator returns the leased handle.
func (l *GeneratorLease) Generator() driven.LLMService {
	return l.handle
}

// Wait paces the next call through the pool's rate limiter.
func (l *GeneratorLease) Wait(ctx context.Context) error {
	if l.pool.limiter == nil {
		return nil
	}
	return l.pool.limiter.Wait(ctx)
}

// Throttled pauses every caller of the pool for backoff after the provider rate limited us.
func (l *GeneratorLease) Throttled(backoff time.Duration) {
	if l.pool.limiter != nil {
		l.pool.limiter.RecordThrottle(backoff)
	}
}

// Release returns the handle to the pool. Safe to call more than once.
func (l *GeneratorLease) Release() {
	l.release.Do(func() {
		// capacity equals the handle count, so this never blocks
		l.pool.handles <- l.handle
	})
}
