package xcron

import (
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/omeyang/xcoord/pkg/distributed/xidem"
	"github.com/omeyang/xcoord/pkg/observability/xlog"
	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
)

// DefaultClaimTTL 默认认领窗口。
const DefaultClaimTTL = 50 * time.Second

// ===================== Scheduler Options =====================

type schedulerOptions struct {
	claimer  xidem.Claimer
	logger   xlog.Logger
	observer xmetrics.Observer
	identity string
	location *time.Location
	parser   cron.Parser
}

func defaultSchedulerOptions() *schedulerOptions {
	return &schedulerOptions{
		logger:   xlog.Default(),
		observer: xmetrics.NoopObserver{},
		identity: uuid.NewString(),
		location: time.Local,
		parser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

// SchedulerOption 调度器配置选项。
type SchedulerOption func(*schedulerOptions)

// WithClaimer 设置认领器。不设置时命名任务也不做认领，每个实例都会执行。
func WithClaimer(claimer xidem.Claimer) SchedulerOption {
	return func(o *schedulerOptions) {
		o.claimer = claimer
	}
}

// WithLogger 设置日志记录器，默认使用 xlog.Default()。
func WithLogger(logger xlog.Logger) SchedulerOption {
	return func(o *schedulerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver 设置观测器，每次执行创建一个跨度。
func WithObserver(observer xmetrics.Observer) SchedulerOption {
	return func(o *schedulerOptions) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithIdentity 设置本实例的标识，作为认领 token 写入。默认随机 UUID。
//
// 填写主机名或 Pod 名便于排查当前窗口由哪个实例持有。
func WithIdentity(identity string) SchedulerOption {
	return func(o *schedulerOptions) {
		if identity != "" {
			o.identity = identity
		}
	}
}

// WithLocation 设置时区，默认本地时区。
func WithLocation(loc *time.Location) SchedulerOption {
	return func(o *schedulerOptions) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithSeconds 启用秒级精度：
//
//	scheduler.AddFunc("*/5 * * * * *", task) // 每 5 秒执行
func WithSeconds() SchedulerOption {
	return func(o *schedulerOptions) {
		o.parser = cron.NewParser(
			cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		)
	}
}

// ===================== Job Options =====================

type jobOptions struct {
	name         string
	claimTTL     time.Duration
	claimTimeout time.Duration
	timeout      time.Duration
	retry        RetryPolicy
	backoff      BackoffPolicy
	immediate    bool
	hooks        []Hook
}

func defaultJobOptions() *jobOptions {
	return &jobOptions{
		claimTTL:     DefaultClaimTTL,
		claimTimeout: 5 * time.Second,
	}
}

// JobOption 任务配置选项。
type JobOption func(*jobOptions)

// WithName 设置任务名，同时用作认领 key。
func WithName(name string) JobOption {
	return func(o *jobOptions) {
		o.name = name
	}
}

// WithClaimTTL 设置认领窗口，非正数忽略。
func WithClaimTTL(ttl time.Duration) JobOption {
	return func(o *jobOptions) {
		if ttl > 0 {
			o.claimTTL = ttl
		}
	}
}

// WithClaimTimeout 设置单次认领请求的超时，默认 5 秒。
func WithClaimTimeout(timeout time.Duration) JobOption {
	return func(o *jobOptions) {
		if timeout > 0 {
			o.claimTimeout = timeout
		}
	}
}

// WithTimeout 设置任务执行超时，包含重试时间。默认无超时。
func WithTimeout(timeout time.Duration) JobOption {
	return func(o *jobOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithRetry 设置失败重试策略，默认不重试。panic 不会被重试。
//
//	scheduler.AddFunc("@every 1m", task,
//	    xcron.WithRetry(xretry.NewFixedRetry(3)),
//	    xcron.WithBackoff(xretry.NewExponentialBackoff()),
//	)
func WithRetry(policy RetryPolicy) JobOption {
	return func(o *jobOptions) {
		o.retry = policy
	}
}

// WithBackoff 设置重试间隔，未设置时立即重试。
func WithBackoff(policy BackoffPolicy) JobOption {
	return func(o *jobOptions) {
		o.backoff = policy
	}
}

// WithImmediate 注册后立即异步执行一次，同样经过认领。
func WithImmediate() JobOption {
	return func(o *jobOptions) {
		o.immediate = true
	}
}

// WithHook 添加任务执行钩子，可多次调用。
func WithHook(hook Hook) JobOption {
	return func(o *jobOptions) {
		if hook != nil {
			o.hooks = append(o.hooks, hook)
		}
	}
}
