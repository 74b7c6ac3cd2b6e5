package xlease

import (
	"time"

	"github.com/omeyang/xcoord/pkg/observability/xlog"
	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
)

// DefaultLease AcquireDefault 使用的默认租约时长。
const DefaultLease = 1000 * time.Millisecond

// Option 定义 Locker 的配置选项。
type Option func(*options)

type options struct {
	keyPrefix    string
	defaultLease time.Duration
	now          func() time.Time
	logger       xlog.Logger
	observer     xmetrics.Observer
}

func defaultOptions() *options {
	return &options{
		defaultLease: DefaultLease,
		now:          time.Now,
		logger:       xlog.Discard(),
		observer:     xmetrics.NoopObserver{},
	}
}

// WithKeyPrefix 为所有租约 key 加前缀，默认无前缀。
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.keyPrefix = prefix
	}
}

// WithDefaultLease 设置 AcquireDefault 的租约时长，小于 1 毫秒忽略。
func WithDefaultLease(d time.Duration) Option {
	return func(o *options) {
		if d >= time.Millisecond {
			o.defaultLease = d
		}
	}
}

// WithClock 设置时间源，主要用于测试。
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger 设置日志记录器。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver 设置观测器。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}
