package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"github.com/urfave/cli/v3"

	"github.com/omeyang/xcoord/pkg/distributed/xidem"
	"github.com/omeyang/xcoord/pkg/distributed/xlease"
	"github.com/omeyang/xcoord/pkg/mq/xstream"
	"github.com/omeyang/xcoord/pkg/observability/xlog"
	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
	"github.com/omeyang/xcoord/pkg/resilience/xretry"
	"github.com/omeyang/xcoord/pkg/storage/xkv"
)

const retryDelay = 200 * time.Millisecond

// runtime 单条命令的依赖集合。
type runtime struct {
	cfg      coordConfig
	client   *redis.Client
	redis    *xkv.Redis
	store    xkv.Store
	logger   xlog.LoggerWithLevel
	observer xmetrics.Observer
	timeout  time.Duration
	retries  int

	closeLog func() error
}

func newRuntime(cmd *cli.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	builder := xlog.New().
		SetOutput(cmd.Root().ErrWriter).
		SetLevelString(cfg.Log.Level).
		SetFormat(cfg.Log.Format)
	if cfg.Log.File != "" {
		builder.SetRotation(cfg.Log.File)
	}
	logger, closeLog, err := builder.Build()
	if err != nil {
		return nil, newUsageError("%v", err)
	}

	observer, err := xmetrics.NewOTelObserver()
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	retries := cmd.Int("retries")
	if retries < 0 {
		_ = closeLog()
		return nil, newUsageError("--retries must not be negative")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	rs, err := xkv.NewRedis(client)
	if err != nil {
		_ = client.Close()
		_ = closeLog()
		return nil, err
	}

	store := xkv.NewBreaker(rs,
		xkv.WithBreakerName("xcoordctl"),
		xkv.WithStateChange(func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "circuit breaker state changed",
				slog.String("breaker", name), slog.String("from", from.String()), slog.String("to", to.String()))
		}),
	)

	return &runtime{
		cfg:      cfg,
		client:   client,
		redis:    rs,
		store:    store,
		logger:   logger,
		observer: observer,
		timeout:  cmd.Duration("timeout"),
		retries:  retries,
		closeLog: closeLog,
	}, nil
}

func (r *runtime) Close() error {
	return errors.Join(r.client.Close(), r.closeLog())
}

// do 在超时内执行 fn，存储错误按 --retries 重试。
// 参数类错误（空 key、编码失败）不重试。
func (r *runtime) do(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	retryer := xretry.NewRetryer(
		xretry.WithRetryPolicy(commandRetryPolicy{xretry.NewFixedRetry(r.retries + 1)}),
		xretry.WithBackoffPolicy(xretry.NewConstantBackoff(retryDelay)),
		xretry.WithOnRetry(func(attempt int, err error) {
			r.logger.Warn(ctx, "command failed, retrying", slog.Int("attempt", attempt), xlog.Err(err))
		}),
	)
	return retryer.Do(ctx, fn)
}

// commandRetryPolicy 参数错误与熔断打开不重试。
type commandRetryPolicy struct {
	*xretry.FixedRetryPolicy
}

func (p commandRetryPolicy) ShouldRetry(ctx context.Context, attempt int, err error) bool {
	var ue *usageError
	if errors.As(err, &ue) || errors.Is(err, xkv.ErrCircuitOpen) {
		return false
	}
	return p.FixedRetryPolicy.ShouldRetry(ctx, attempt, err)
}

func (r *runtime) locker() (*xlease.Locker, error) {
	return xlease.New(r.store,
		xlease.WithKeyPrefix(r.cfg.Lock.KeyPrefix),
		xlease.WithDefaultLease(r.cfg.Lock.DefaultLease),
		xlease.WithLogger(r.logger),
		xlease.WithObserver(r.observer),
	)
}

func (r *runtime) guard() (*xidem.Guard, error) {
	return xidem.New(r.store,
		xidem.WithKeyPrefix(r.cfg.Claim.KeyPrefix),
		xidem.WithLogger(r.logger),
		xidem.WithObserver(r.observer),
	)
}

func (r *runtime) publisher() (*xstream.Publisher, error) {
	return xstream.New(r.store,
		xstream.WithMaxLen(r.cfg.Stream.MaxLen),
		xstream.WithApproxTrim(r.cfg.Stream.Approx),
		xstream.WithKeyPrefix(r.cfg.Stream.KeyPrefix),
		xstream.WithLogger(r.logger),
		xstream.WithObserver(r.observer),
	)
}

// withRuntime 为命令创建依赖并在结束后释放。
func withRuntime(ctx context.Context, cmd *cli.Command, fn func(ctx context.Context, rt *runtime) error) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			fmt.Fprintf(cmd.Root().ErrWriter, "关闭失败: %v\n", cerr)
		}
	}()
	return fn(ctx, rt)
}
