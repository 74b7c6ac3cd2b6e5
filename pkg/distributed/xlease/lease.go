package xlease

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/omeyang/xcoord/pkg/observability/xlog"
	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
	"github.com/omeyang/xcoord/pkg/storage/xkv"
)

const componentName = "xlease"

// Locker 基于时间戳租约的互斥锁。
//
// Locker 本身无状态，可被多个 goroutine 并发使用。
type Locker struct {
	store xkv.Store
	opts  *options
}

// New 创建 Locker。
func New(store xkv.Store, opts ...Option) (*Locker, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Locker{store: store, opts: o}, nil
}

// Acquire 尝试获取租约，立即返回，不等待。
//
// 返回 false 表示租约被其他调用方持有，不是错误。
// 存储错误原样包装返回，不做重试。
func (l *Locker) Acquire(ctx context.Context, key string, lease time.Duration) (ok bool, err error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	// 租约按毫秒存储，不足 1ms 会被截断为 0
	if lease < time.Millisecond {
		return false, fmt.Errorf("%w: %s", ErrInvalidLease, lease)
	}

	ctx, span := xmetrics.Start(ctx, l.opts.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "acquire",
		Kind:      xmetrics.KindClient,
		Attrs:     []xmetrics.Attr{xmetrics.String("key", key)},
	})
	defer func() {
		span.End(xmetrics.Result{Err: err, Attrs: []xmetrics.Attr{xmetrics.Bool("granted", ok)}})
	}()

	fullKey := l.opts.keyPrefix + key
	now := l.opts.now().UnixMilli()
	expireAt := strconv.FormatInt(now+lease.Milliseconds()+1, 10)

	set, err := l.store.SetNX(ctx, fullKey, expireAt)
	if err != nil {
		return false, fmt.Errorf("xlease: acquire %q: %w", key, err)
	}
	if set {
		l.opts.logger.Debug(ctx, "lease acquired", xlog.Key(fullKey))
		return true, nil
	}

	current, found, err := l.store.Get(ctx, fullKey)
	if err != nil {
		return false, fmt.Errorf("xlease: acquire %q: %w", key, err)
	}
	if !found {
		// SETNX 与 GET 之间被释放，本轮放弃
		return false, nil
	}
	held, perr := parseExpireAt(current)
	if perr != nil {
		l.opts.logger.Warn(ctx, "lease value unparsable",
			xlog.Key(fullKey), slog.String("value", current), xlog.Err(perr))
		return false, nil
	}
	if held > now {
		return false, nil
	}

	// 已过期，抢占。时间戳在 GET 之后重新取值
	now = l.opts.now().UnixMilli()
	next := strconv.FormatInt(now+lease.Milliseconds()+1, 10)
	old, found, err := l.store.GetSet(ctx, fullKey, next)
	if err != nil {
		return false, fmt.Errorf("xlease: acquire %q: %w", key, err)
	}
	if !found {
		l.opts.logger.Debug(ctx, "lease acquired after release", xlog.Key(fullKey))
		return true, nil
	}
	prev, perr := parseExpireAt(old)
	if perr != nil {
		l.opts.logger.Warn(ctx, "lease value unparsable",
			xlog.Key(fullKey), slog.String("value", old), xlog.Err(perr))
		return false, nil
	}
	if prev > now {
		// 其他调用方先完成了抢占
		return false, nil
	}
	l.opts.logger.Debug(ctx, "stale lease taken over", xlog.Key(fullKey), slog.Int64("stale_expire_at", prev))
	return true, nil
}

// AcquireDefault 使用默认租约时长获取租约。
func (l *Locker) AcquireDefault(ctx context.Context, key string) (bool, error) {
	return l.Acquire(ctx, key, l.opts.defaultLease)
}

// Release 删除租约。
//
// 不校验持有者，key 不存在不视为错误。
func (l *Locker) Release(ctx context.Context, key string) (err error) {
	if err := validateKey(key); err != nil {
		return err
	}

	ctx, span := xmetrics.Start(ctx, l.opts.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "release",
		Kind:      xmetrics.KindClient,
		Attrs:     []xmetrics.Attr{xmetrics.String("key", key)},
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	if err := l.store.Del(ctx, l.opts.keyPrefix+key); err != nil {
		return fmt.Errorf("xlease: release %q: %w", key, err)
	}
	return nil
}

// Do 获取租约后执行 fn，结束后释放。
//
// 未获得租约时 fn 不执行，ran 为 false。
// fn 的错误优先返回；释放失败只在 fn 成功时返回。
// 释放使用脱离取消的 ctx，调用方 ctx 超时后仍会尝试删除租约。
func (l *Locker) Do(ctx context.Context, key string, lease time.Duration, fn func(context.Context) error) (ran bool, err error) {
	if fn == nil {
		return false, ErrNilFunc
	}
	ok, err := l.Acquire(ctx, key, lease)
	if err != nil || !ok {
		return false, err
	}

	defer func() {
		if rerr := l.Release(context.WithoutCancel(ctx), key); rerr != nil {
			l.opts.logger.Warn(ctx, "lease release failed", xlog.Key(key), xlog.Err(rerr))
			if err == nil {
				err = rerr
			}
		}
	}()
	return true, fn(ctx)
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}

func parseExpireAt(v string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
}
