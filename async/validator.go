package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/relaycache/httpcache/failure"
)

// RevalidationFunc performs one conditional-request round trip for the
// identifier it was scheduled under. A non-nil error marks the attempt as
// failed for back-off purposes.
type RevalidationFunc func(ctx context.Context) error

// Validator schedules background revalidations for stale-while-revalidate
// hits, deduplicating concurrent requests for the same identifier and
// pacing retries against a failing origin via a BackoffSchedule, per
// spec.md §4.11.
type Validator struct {
	schedule BackoffSchedule
	failures *failure.Cache
	sem      chan struct{}
	log      *slog.Logger

	mu       sync.Mutex
	inFlight map[string]bool
	shutdown bool
	wg       sync.WaitGroup
}

// NewValidator returns a Validator with the given worker concurrency limit
// (maxWorkers <= 0 means unbounded) backed by failures for per-identifier
// failure tracking.
func NewValidator(maxWorkers int, schedule BackoffSchedule, failures *failure.Cache, log *slog.Logger) *Validator {
	var sem chan struct{}
	if maxWorkers > 0 {
		sem = make(chan struct{}, maxWorkers)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Validator{
		schedule: schedule,
		failures: failures,
		sem:      sem,
		log:      log,
		inFlight: make(map[string]bool),
	}
}

// Revalidate schedules fn to run for id after the back-off delay implied by
// id's current failure count. A second call for the same id while one is
// already scheduled or running is a no-op (dedup).
func (v *Validator) Revalidate(id string, fn RevalidationFunc) {
	v.mu.Lock()
	if v.shutdown || v.inFlight[id] {
		v.mu.Unlock()
		return
	}
	v.inFlight[id] = true
	v.mu.Unlock()

	delay := v.schedule.Delay(v.failures.GetCount(id))
	v.wg.Add(1)

	timer := time.AfterFunc(delay, func() {
		defer v.wg.Done()
		defer v.clearInFlight(id)

		v.mu.Lock()
		cancelled := v.shutdown
		v.mu.Unlock()
		if cancelled {
			return
		}

		if v.sem != nil {
			v.sem <- struct{}{}
			defer func() { <-v.sem }()
		}

		if err := fn(context.Background()); err != nil {
			v.failures.Increment(id)
			v.log.Warn("async revalidation failed", "identifier", id, "error", err)
			return
		}
		v.failures.Reset(id)
	})

	// If Shutdown raced us and landed between the dedup check above and
	// here, stop the timer before it fires. If Stop succeeds the callback
	// will never run, so its bookkeeping has to happen here instead.
	v.mu.Lock()
	shutdown := v.shutdown
	v.mu.Unlock()
	if shutdown && timer.Stop() {
		v.wg.Done()
		v.clearInFlight(id)
	}
}

func (v *Validator) clearInFlight(id string) {
	v.mu.Lock()
	delete(v.inFlight, id)
	v.mu.Unlock()
}

// Shutdown refuses new tasks and prevents any delayed task not yet executing
// from running. It returns immediately: it does not wait for tasks already
// executing, which run to completion on their own goroutines.
func (v *Validator) Shutdown() {
	v.mu.Lock()
	v.shutdown = true
	v.mu.Unlock()
}

// Wait blocks until every scheduled task has either executed or been
// cancelled. Intended for tests; production callers need not wait.
func (v *Validator) Wait() {
	v.wg.Wait()
}
