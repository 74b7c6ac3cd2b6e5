package xretry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func TestRetryer_Do(t *testing.T) {
	t.Run("success first attempt", func(t *testing.T) {
		var calls int
		err := NewRetryer().Do(context.Background(), func(context.Context) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("success after retry", func(t *testing.T) {
		var calls int
		r := NewRetryer(WithRetryPolicy(NewFixedRetry(3)), WithBackoffPolicy(NewNoBackoff()))
		err := r.Do(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return errTransient
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausted returns last error", func(t *testing.T) {
		var calls int
		r := NewRetryer(WithRetryPolicy(NewFixedRetry(3)), WithBackoffPolicy(NewNoBackoff()))
		err := r.Do(context.Background(), func(context.Context) error {
			calls++
			return errTransient
		})
		assert.Equal(t, errTransient, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent error stops", func(t *testing.T) {
		var calls int
		r := NewRetryer(WithRetryPolicy(NewFixedRetry(5)), WithBackoffPolicy(NewNoBackoff()))
		err := r.Do(context.Background(), func(context.Context) error {
			calls++
			return NewPermanentError(errTransient)
		})
		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 1, calls)
	})

	t.Run("never retry", func(t *testing.T) {
		var calls int
		r := NewRetryer(WithRetryPolicy(NewNeverRetry()), WithBackoffPolicy(NewNoBackoff()))
		err := r.Do(context.Background(), func(context.Context) error {
			calls++
			return errTransient
		})
		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 1, calls)
	})

	t.Run("zero value retryer", func(t *testing.T) {
		var calls int
		var r Retryer
		r.backoffPolicy = NewNoBackoff()
		err := r.Do(context.Background(), func(context.Context) error {
			calls++
			return errTransient
		})
		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 3, calls)
	})
}

func TestRetryer_Do_Validation(t *testing.T) {
	var r *Retryer
	assert.ErrorIs(t, r.Do(context.Background(), func(context.Context) error { return nil }), ErrNilRetryer)
	assert.ErrorIs(t, NewRetryer().Do(context.Background(), nil), ErrNilFunc)
}

func TestRetryer_OnRetry(t *testing.T) {
	var attempts []int
	r := NewRetryer(
		WithRetryPolicy(NewFixedRetry(3)),
		WithBackoffPolicy(NewNoBackoff()),
		WithOnRetry(func(attempt int, err error) {
			assert.ErrorIs(t, err, errTransient)
			attempts = append(attempts, attempt)
		}),
	)
	_ = r.Do(context.Background(), func(context.Context) error { return errTransient })

	// 最后一次失败不再回调
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestRetryer_BackoffAttemptNumbers(t *testing.T) {
	var seen []int
	backoff := backoffFunc(func(attempt int) time.Duration {
		seen = append(seen, attempt)
		return 0
	})
	r := NewRetryer(WithRetryPolicy(NewFixedRetry(4)), WithBackoffPolicy(backoff))
	_ = r.Do(context.Background(), func(context.Context) error { return errTransient })

	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestRetryer_ConstantBackoffWaits(t *testing.T) {
	r := NewRetryer(WithRetryPolicy(NewFixedRetry(3)), WithBackoffPolicy(NewConstantBackoff(20*time.Millisecond)))

	start := time.Now()
	_ = r.Do(context.Background(), func(context.Context) error { return errTransient })
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRetryer_ContextCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	var calls int
	r := NewRetryer(WithRetryPolicy(NewFixedRetry(10)), WithBackoffPolicy(NewConstantBackoff(time.Second)))
	start := time.Now()
	err := r.Do(ctx, func(context.Context) error {
		calls++
		return errTransient
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

// 自定义策略内嵌内置策略，只排除特定错误
type skipPolicy struct {
	*FixedRetryPolicy
	skip error
}

func (p skipPolicy) ShouldRetry(ctx context.Context, attempt int, err error) bool {
	if errors.Is(err, p.skip) {
		return false
	}
	return p.FixedRetryPolicy.ShouldRetry(ctx, attempt, err)
}

func TestRetryer_CustomPolicy(t *testing.T) {
	errFatal := errors.New("fatal")
	policy := skipPolicy{FixedRetryPolicy: NewFixedRetry(5), skip: errFatal}
	r := NewRetryer(WithRetryPolicy(policy), WithBackoffPolicy(NewNoBackoff()))

	var calls int
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		if calls == 2 {
			return errFatal
		}
		return errTransient
	})
	assert.ErrorIs(t, err, errFatal)
	assert.Equal(t, 2, calls)
}

func TestFixedRetryPolicy(t *testing.T) {
	p := NewFixedRetry(0)
	assert.Equal(t, 1, p.MaxAttempts())

	p = NewFixedRetry(3)
	ctx := context.Background()
	assert.True(t, p.ShouldRetry(ctx, 1, errTransient))
	assert.True(t, p.ShouldRetry(ctx, 2, errTransient))
	assert.False(t, p.ShouldRetry(ctx, 3, errTransient))
	assert.False(t, p.ShouldRetry(ctx, 1, nil))
	assert.False(t, p.ShouldRetry(ctx, 1, NewPermanentError(errTransient)))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.False(t, p.ShouldRetry(canceled, 1, errTransient))
}

func TestPermanentError(t *testing.T) {
	err := NewPermanentError(errTransient)
	assert.Equal(t, "transient", err.Error())
	assert.ErrorIs(t, err, errTransient)
	assert.False(t, IsRetryable(err))
	assert.True(t, IsRetryable(errTransient))
	assert.False(t, IsRetryable(nil))
	assert.Equal(t, "permanent error", NewPermanentError(nil).Error())
}

type backoffFunc func(attempt int) time.Duration

func (f backoffFunc) NextDelay(attempt int) time.Duration { return f(attempt) }
