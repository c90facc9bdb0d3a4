package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/relaycache/httpcache/failure"
	"github.com/stretchr/testify/assert"
)

func TestBackoffSchedule_Delay(t *testing.T) {
	b := DefaultBackoffSchedule()

	assert.Equal(t, time.Duration(0), b.Delay(0))
	assert.Equal(t, 6*time.Second, b.Delay(1))
	assert.Equal(t, 60*time.Second, b.Delay(2))
}

func TestBackoffSchedule_CapsAtMaxDelay(t *testing.T) {
	b := BackoffSchedule{InitialDelay: time.Second, Rate: 10, MaxDelay: 5 * time.Second}
	assert.Equal(t, 5*time.Second, b.Delay(10))
}

func TestValidator_DedupsConcurrentRevalidation(t *testing.T) {
	var calls int32
	v := NewValidator(2, BackoffSchedule{}, failure.New(10), nil)

	fn := func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	v.Revalidate("k", fn)
	v.Revalidate("k", fn)
	v.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestValidator_FailureIncrementsCount(t *testing.T) {
	failures := failure.New(10)
	v := NewValidator(1, BackoffSchedule{}, failures, nil)

	v.Revalidate("k", func(ctx context.Context) error {
		return errors.New("boom")
	})
	v.Wait()

	assert.Equal(t, 1, failures.GetCount("k"))
}
