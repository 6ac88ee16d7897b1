package web

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyImports is returned when all import slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyImports = errors.New("too many concurrent imports, please try again later")

// Import limiter defaults. Spreadsheet parsing holds the whole file in
// memory, so parallel imports are capped.
const (
	defaultMaxConcurrentImports = 2
	defaultImportMaxWait        = 10 * time.Second
)

// importLimiter restricts parallel export imports using a semaphore.
type importLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

func newImportLimiter(maxConcurrent int, maxWait time.Duration) *importLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = defaultImportMaxWait
	}
	return &importLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// acquire claims an import slot, waiting up to maxWait. The caller must
// release() exactly once after a nil return.
func (l *importLimiter) acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyImports
	}
}

func (l *importLimiter) release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// activeCount returns how many imports are currently running.
func (l *importLimiter) activeCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}
