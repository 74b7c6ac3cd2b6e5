package xretry

import (
	"math"
	"math/rand/v2"
	"time"
)

// ConstantBackoff 固定间隔。
type ConstantBackoff struct {
	delay time.Duration
}

// NewConstantBackoff 创建固定间隔退避，负数按 0 处理。
func NewConstantBackoff(delay time.Duration) *ConstantBackoff {
	return &ConstantBackoff{delay: max(delay, 0)}
}

func (b *ConstantBackoff) NextDelay(int) time.Duration {
	return b.delay
}

// ExponentialBackoff 指数退避：
// delay = min(initial * multiplier^(attempt-1) * (1 ± jitter), maxDelay)
type ExponentialBackoff struct {
	initial    time.Duration
	maxDelay   time.Duration
	multiplier float64
	jitter     float64
}

// ExponentialOption 指数退避选项。
type ExponentialOption func(*ExponentialBackoff)

// WithInitialDelay 设置首次等待，非正数忽略。
func WithInitialDelay(d time.Duration) ExponentialOption {
	return func(b *ExponentialBackoff) {
		if d > 0 {
			b.initial = d
		}
	}
}

// WithMaxDelay 设置等待上限，非正数忽略。
func WithMaxDelay(d time.Duration) ExponentialOption {
	return func(b *ExponentialBackoff) {
		if d > 0 {
			b.maxDelay = d
		}
	}
}

// WithMultiplier 设置增长倍数，小于 1 忽略。
func WithMultiplier(m float64) ExponentialOption {
	return func(b *ExponentialBackoff) {
		if m >= 1 {
			b.multiplier = m
		}
	}
}

// WithJitter 设置抖动比例，截断到 [0, 1]。
func WithJitter(j float64) ExponentialOption {
	return func(b *ExponentialBackoff) {
		b.jitter = min(max(j, 0), 1)
	}
}

// NewExponentialBackoff 创建指数退避。
// 默认首次 100ms、上限 30s、倍数 2、抖动 10%。
func NewExponentialBackoff(opts ...ExponentialOption) *ExponentialBackoff {
	b := &ExponentialBackoff{
		initial:    100 * time.Millisecond,
		maxDelay:   30 * time.Second,
		multiplier: 2,
		jitter:     0.1,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.maxDelay = max(b.maxDelay, b.initial)
	return b
}

func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	attempt = max(attempt, 1)
	delay := float64(b.initial) * math.Pow(b.multiplier, float64(attempt-1))
	if b.jitter > 0 {
		delay *= 1 + (rand.Float64()*2-1)*b.jitter
	}
	// 溢出后可能得到 +Inf 或 NaN
	if math.IsNaN(delay) || delay < 0 || delay >= float64(b.maxDelay) {
		return b.maxDelay
	}
	return time.Duration(delay)
}

// NoBackoff 立即重试。
type NoBackoff struct{}

// NewNoBackoff 创建无等待退避。
func NewNoBackoff() *NoBackoff {
	return &NoBackoff{}
}

func (b *NoBackoff) NextDelay(int) time.Duration { return 0 }

var (
	_ BackoffPolicy = (*ConstantBackoff)(nil)
	_ BackoffPolicy = (*ExponentialBackoff)(nil)
	_ BackoffPolicy = (*NoBackoff)(nil)
)
