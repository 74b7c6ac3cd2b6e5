package xidem

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/omeyang/xcoord/pkg/observability/xlog"
	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
	"github.com/omeyang/xcoord/pkg/storage/xkv"
)

const componentName = "xidem"

// Claimer 窗口内一次性认领。
type Claimer interface {
	// TryClaim 尝试在 ttl 窗口内认领 key，返回是否认领成功。
	TryClaim(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
}

// Option 定义 Guard 的配置选项。
type Option func(*options)

type options struct {
	keyPrefix string
	logger    xlog.Logger
	observer  xmetrics.Observer
}

// WithKeyPrefix 为认领 key 加前缀，默认无前缀。
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.keyPrefix = prefix
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

// Guard 基于 SETNX + EXPIRE 的认领实现。
//
// 同一进程内的 TryClaim 调用串行执行；跨进程的正确性只依赖 SETNX 的原子性。
type Guard struct {
	store xkv.Store
	opts  options
	mu    sync.Mutex
}

// New 创建 Guard。
func New(store xkv.Store, opts ...Option) (*Guard, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	o := options{
		logger:   xlog.Discard(),
		observer: xmetrics.NoopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Guard{store: store, opts: o}, nil
}

// TryClaim 尝试认领 key。
//
// 无论 SETNX 是否成功都会执行 EXPIRE，认领失败也会刷新已有认领的窗口。
// SETNX 返回错误时不执行 EXPIRE。
// SETNX 写入成功但 EXPIRE 返回错误时，结果为 false 与该错误，
// 此时记录没有过期时间，直到之后某次 TryClaim 刷新窗口。
func (g *Guard) TryClaim(ctx context.Context, key, token string, ttl time.Duration) (claimed bool, err error) {
	if strings.TrimSpace(key) == "" {
		return false, ErrEmptyKey
	}
	if ttl <= 0 {
		return false, fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}

	ctx, span := xmetrics.Start(ctx, g.opts.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "claim",
		Kind:      xmetrics.KindClient,
		Attrs:     []xmetrics.Attr{xmetrics.String("key", key)},
	})
	defer func() {
		span.End(xmetrics.Result{Err: err, Attrs: []xmetrics.Attr{xmetrics.Bool("claimed", claimed)}})
	}()

	g.mu.Lock()
	defer g.mu.Unlock()

	fullKey := g.opts.keyPrefix + key
	claimed, err = g.store.SetNX(ctx, fullKey, token)
	if err != nil {
		return false, fmt.Errorf("xidem: claim %q: %w", key, err)
	}
	if _, err := g.store.Expire(ctx, fullKey, ttl); err != nil {
		return false, fmt.Errorf("xidem: expire %q: %w", key, err)
	}

	if claimed {
		g.opts.logger.Debug(ctx, "claim granted", xlog.Key(fullKey), xlog.Duration(ttl))
	} else {
		g.opts.logger.Debug(ctx, "claim held by another caller", xlog.Key(fullKey))
	}
	return claimed, nil
}

var _ Claimer = (*Guard)(nil)
