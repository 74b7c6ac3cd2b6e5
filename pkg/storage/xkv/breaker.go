package xkv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerOption 熔断装饰器配置选项。
type BreakerOption func(*breakerOptions)

type breakerOptions struct {
	name                string
	consecutiveFailures uint32
	timeout             time.Duration
	interval            time.Duration
	maxRequests         uint32
	onStateChange       func(name string, from, to gobreaker.State)
}

func defaultBreakerOptions() *breakerOptions {
	return &breakerOptions{
		name:                "xkv",
		consecutiveFailures: 5,
		timeout:             30 * time.Second,
		maxRequests:         1,
	}
}

// WithBreakerName 设置熔断器名称，用于状态变更回调和日志。
func WithBreakerName(name string) BreakerOption {
	return func(o *breakerOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithConsecutiveFailures 设置触发熔断的连续失败次数。默认 5。
func WithConsecutiveFailures(n uint32) BreakerOption {
	return func(o *breakerOptions) {
		if n > 0 {
			o.consecutiveFailures = n
		}
	}
}

// WithOpenTimeout 设置 Open → HalfOpen 的等待时间。默认 30 秒。
func WithOpenTimeout(d time.Duration) BreakerOption {
	return func(o *breakerOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithInterval 设置 Closed 状态下清空计数的周期。默认 0（不清空）。
func WithInterval(d time.Duration) BreakerOption {
	return func(o *breakerOptions) {
		if d >= 0 {
			o.interval = d
		}
	}
}

// WithHalfOpenRequests 设置 HalfOpen 状态允许通过的请求数。默认 1。
func WithHalfOpenRequests(n uint32) BreakerOption {
	return func(o *breakerOptions) {
		if n > 0 {
			o.maxRequests = n
		}
	}
}

// WithStateChange 设置状态变更回调。
func WithStateChange(fn func(name string, from, to gobreaker.State)) BreakerOption {
	return func(o *breakerOptions) {
		o.onStateChange = fn
	}
}

// Breaker 带熔断保护的 [Store] 装饰器。
//
// 连续失败达到阈值后进入 Open 状态，期间所有调用立即返回 [ErrCircuitOpen]，
// 不再访问存储。调用方的 context 取消不计为存储故障。
//
// 注意：熔断只改变"失败得更快"，不会把失败变成成功，
// 上层的锁/幂等语义保持不变。
type Breaker struct {
	next Store
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreaker 用熔断器包装 store。store 为 nil 时 panic。
func NewBreaker(store Store, opts ...BreakerOption) *Breaker {
	if store == nil {
		panic(ErrNilStore)
	}
	o := defaultBreakerOptions()
	for _, opt := range opts {
		opt(o)
	}

	threshold := o.consecutiveFailures
	settings := gobreaker.Settings{
		Name:        o.name,
		MaxRequests: o.maxRequests,
		Interval:    o.interval,
		Timeout:     o.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: o.onStateChange,
	}

	return &Breaker{
		next: store,
		cb:   gobreaker.NewCircuitBreaker[any](settings),
	}
}

// State 返回熔断器当前状态。
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// execute 通过熔断器执行一次调用，并统一转换熔断错误。
func execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		return zero, err
	}
	v, _ := res.(T)
	return v, nil
}

type getResult struct {
	value string
	found bool
}

// SetNX 实现 [Store]。
func (b *Breaker) SetNX(ctx context.Context, key, value string) (bool, error) {
	return execute(b, func() (bool, error) {
		return b.next.SetNX(ctx, key, value)
	})
}

// GetSet 实现 [Store]。
func (b *Breaker) GetSet(ctx context.Context, key, value string) (string, bool, error) {
	r, err := execute(b, func() (getResult, error) {
		old, found, err := b.next.GetSet(ctx, key, value)
		return getResult{value: old, found: found}, err
	})
	return r.value, r.found, err
}

// Get 实现 [Store]。
func (b *Breaker) Get(ctx context.Context, key string) (string, bool, error) {
	r, err := execute(b, func() (getResult, error) {
		v, found, err := b.next.Get(ctx, key)
		return getResult{value: v, found: found}, err
	})
	return r.value, r.found, err
}

// Del 实现 [Store]。
func (b *Breaker) Del(ctx context.Context, key string) error {
	_, err := execute(b, func() (struct{}, error) {
		return struct{}{}, b.next.Del(ctx, key)
	})
	return err
}

// Expire 实现 [Store]。
func (b *Breaker) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return execute(b, func() (bool, error) {
		return b.next.Expire(ctx, key, ttl)
	})
}

// XAddBounded 实现 [Store]。
func (b *Breaker) XAddBounded(ctx context.Context, stream string, values map[string]any, maxLen int64, approx bool) (string, error) {
	return execute(b, func() (string, error) {
		return b.next.XAddBounded(ctx, stream, values, maxLen, approx)
	})
}

// Publish 实现 [Store]。
func (b *Breaker) Publish(ctx context.Context, channel, payload string) (int64, error) {
	return execute(b, func() (int64, error) {
		return b.next.Publish(ctx, channel, payload)
	})
}

var _ Store = (*Breaker)(nil)
