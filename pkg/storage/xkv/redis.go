package xkv

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis 基于 go-redis 的 [Store] 实现。
//
// 客户端生命周期由调用者管理，Redis 不负责关闭传入的客户端。
type Redis struct {
	client redis.UniversalClient
}

// NewRedis 创建 Redis 存储。
// client 可以是 *redis.Client、*redis.ClusterClient 或 *redis.Ring。
func NewRedis(client redis.UniversalClient) (*Redis, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	return &Redis{client: client}, nil
}

// SetNX 对应 SETNX key value，不附带过期时间。
func (r *Redis) SetNX(ctx context.Context, key, value string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, value, 0).Result()
	if err != nil {
		return false, fmt.Errorf("xkv: setnx %q: %w", key, err)
	}
	return ok, nil
}

// GetSet 对应 GETSET key value。
func (r *Redis) GetSet(ctx context.Context, key, value string) (string, bool, error) {
	old, err := r.client.GetSet(ctx, key, value).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("xkv: getset %q: %w", key, err)
	}
	return old, true, nil
}

// Get 对应 GET key。
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("xkv: get %q: %w", key, err)
	}
	return v, true, nil
}

// Del 对应 DEL key。
func (r *Redis) Del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("xkv: del %q: %w", key, err)
	}
	return nil
}

// Expire 对应 EXPIRE/PEXPIRE key ttl。
// 亚秒精度的 ttl 由 go-redis 自动改用 PEXPIRE。
func (r *Redis) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.Expire(ctx, key, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("xkv: expire %q: %w", key, err)
	}
	return ok, nil
}

// XAddBounded 对应 XADD stream [MAXLEN [~] maxLen] * field value ...。
//
// 精确裁剪直接发送 MAXLEN maxLen，不带 "=" 修饰符，兼容 6.2 之前的 Redis。
func (r *Redis) XAddBounded(ctx context.Context, stream string, values map[string]any, maxLen int64, approx bool) (string, error) {
	if maxLen > 0 && !approx {
		return r.xaddExact(ctx, stream, values, maxLen)
	}
	args := &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}
	if maxLen > 0 {
		args.MaxLen = maxLen
		args.Approx = true
	}
	id, err := r.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("xkv: xadd %q: %w", stream, err)
	}
	return id, nil
}

func (r *Redis) xaddExact(ctx context.Context, stream string, values map[string]any, maxLen int64) (string, error) {
	args := make([]any, 0, 5+2*len(values))
	args = append(args, "XADD", stream, "MAXLEN", maxLen, "*")
	for _, field := range slices.Sorted(maps.Keys(values)) {
		args = append(args, field, values[field])
	}
	id, err := r.client.Do(ctx, args...).Text()
	if err != nil {
		return "", fmt.Errorf("xkv: xadd %q: %w", stream, err)
	}
	return id, nil
}

// Publish 对应 PUBLISH channel payload。
func (r *Redis) Publish(ctx context.Context, channel, payload string) (int64, error) {
	n, err := r.client.Publish(ctx, channel, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("xkv: publish %q: %w", channel, err)
	}
	return n, nil
}

// Health 执行 PING 检查连接。
func (r *Redis) Health(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("xkv: ping: %w", err)
	}
	return nil
}

// Client 返回底层 redis.UniversalClient，用于执行 Store 未覆盖的命令。
func (r *Redis) Client() redis.UniversalClient {
	return r.client
}

var _ Store = (*Redis)(nil)
