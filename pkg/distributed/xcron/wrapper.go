package xcron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/omeyang/xcoord/pkg/observability/xlog"
	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
	"github.com/omeyang/xcoord/pkg/resilience/xretry"
)

const componentName = "xcron"

// jobWrapper 包装原始任务，添加认领、超时、重试等能力。
// 实现 cron.Job 接口，以便被 robfig/cron 调度。
type jobWrapper struct {
	job     Job
	opts    *jobOptions
	sched   *schedulerOptions
	stats   *Stats
	baseCtx context.Context
}

func newJobWrapper(job Job, sched *schedulerOptions, stats *Stats, opts *jobOptions) *jobWrapper {
	return &jobWrapper{
		job:     job,
		opts:    opts,
		sched:   sched,
		stats:   stats,
		baseCtx: context.Background(),
	}
}

// Run 实现 cron.Job 接口
func (w *jobWrapper) Run() {
	ctx := w.baseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	logger := w.sched.logger.With(slog.String("job", w.opts.name))

	// 1. 认领
	if !w.claim(ctx, logger) {
		w.stats.recordSkip(w.opts.name)
		return
	}

	startTime := time.Now()

	// 2. 超时控制
	if w.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.timeout)
		defer cancel()
	}

	// 3. 观测
	ctx, span := xmetrics.Start(ctx, w.sched.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: w.spanName(),
		Kind:      xmetrics.KindInternal,
	})

	// 4. BeforeJob（正序）
	for _, hook := range w.opts.hooks {
		ctx = hook.BeforeJob(ctx, w.opts.name)
	}

	// 5. 执行（可能带重试）
	err := w.execute(ctx, logger)
	duration := time.Since(startTime)

	// 6. AfterJob（逆序）
	for i := len(w.opts.hooks) - 1; i >= 0; i-- {
		w.opts.hooks[i].AfterJob(ctx, w.opts.name, duration, err)
	}

	span.End(xmetrics.Result{Err: err})
	w.stats.recordExecution(w.opts.name, duration, err)

	if err != nil {
		logger.Error(ctx, "job failed", xlog.Err(err), xlog.Duration(duration))
		return
	}
	logger.Debug(ctx, "job completed", xlog.Duration(duration))
}

// claim 返回本实例是否应执行本轮任务
func (w *jobWrapper) claim(ctx context.Context, logger xlog.Logger) bool {
	if w.opts.name == "" || w.sched.claimer == nil {
		return true
	}

	claimCtx, cancel := context.WithTimeout(ctx, w.opts.claimTimeout)
	defer cancel()

	ok, err := w.sched.claimer.TryClaim(claimCtx, w.opts.name, w.sched.identity, w.opts.claimTTL)
	if err != nil {
		logger.Warn(ctx, "claim failed, skipping", xlog.Err(err))
		return false
	}
	if !ok {
		logger.Debug(ctx, "claimed by another instance, skipping")
		return false
	}
	return true
}

func (w *jobWrapper) execute(ctx context.Context, logger xlog.Logger) error {
	if w.opts.retry == nil {
		return w.runOnce(ctx)
	}
	backoff := w.opts.backoff
	if backoff == nil {
		backoff = xretry.NewNoBackoff()
	}
	retryer := xretry.NewRetryer(
		xretry.WithRetryPolicy(panicStopPolicy{w.opts.retry}),
		xretry.WithBackoffPolicy(backoff),
		xretry.WithOnRetry(func(attempt int, err error) {
			logger.Warn(ctx, "job failed, will retry", slog.Int("attempt", attempt), xlog.Err(err))
		}),
	)
	return retryer.Do(ctx, w.runOnce)
}

// panicStopPolicy panic 之后不再重试
type panicStopPolicy struct {
	RetryPolicy
}

func (p panicStopPolicy) ShouldRetry(ctx context.Context, attempt int, err error) bool {
	if errors.Is(err, ErrJobPanic) {
		return false
	}
	return p.RetryPolicy.ShouldRetry(ctx, attempt, err)
}

// runOnce 执行一次任务，panic 转为错误
func (w *jobWrapper) runOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanic, r)
		}
	}()
	return w.job.Run(ctx)
}

func (w *jobWrapper) spanName() string {
	if w.opts.name == "" {
		return "job"
	}
	return w.opts.name
}
