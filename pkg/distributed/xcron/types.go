package xcron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/omeyang/xcoord/pkg/resilience/xretry"
)

// JobID 任务唯一标识，直接复用 cron.EntryID。
type JobID = cron.EntryID

// RetryPolicy 任务失败后的重试策略，直接复用 xretry.RetryPolicy。
type RetryPolicy = xretry.RetryPolicy

// BackoffPolicy 重试间隔策略，直接复用 xretry.BackoffPolicy。
//
// 常用实现：
//   - xretry.NewConstantBackoff(delay)
//   - xretry.NewExponentialBackoff(opts...)
type BackoffPolicy = xretry.BackoffPolicy

// Job 定时任务接口。
type Job interface {
	// Run 执行任务。ctx 带有超时控制，任务应响应 ctx.Done()。
	Run(ctx context.Context) error
}

// JobFunc 函数适配器，将普通函数转换为 [Job] 接口。
type JobFunc func(ctx context.Context) error

// Run 实现 [Job] 接口。
func (f JobFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Hook 任务执行钩子。
//
// BeforeJob 在认领成功之后、执行任务之前调用；
// AfterJob 在任务结束后调用，panic 时 err 包装 [ErrJobPanic]。
// 多个钩子的 BeforeJob 按添加顺序执行，AfterJob 逆序执行。
type Hook interface {
	BeforeJob(ctx context.Context, name string) context.Context
	AfterJob(ctx context.Context, name string, duration time.Duration, err error)
}

// HookFunc 函数适配器，字段可为 nil。
type HookFunc struct {
	Before func(ctx context.Context, name string) context.Context
	After  func(ctx context.Context, name string, duration time.Duration, err error)
}

// BeforeJob 实现 [Hook] 接口。
func (h HookFunc) BeforeJob(ctx context.Context, name string) context.Context {
	if h.Before != nil {
		return h.Before(ctx, name)
	}
	return ctx
}

// AfterJob 实现 [Hook] 接口。
func (h HookFunc) AfterJob(ctx context.Context, name string, duration time.Duration, err error) {
	if h.After != nil {
		h.After(ctx, name, duration, err)
	}
}
