package xkv

import (
	"context"
	"time"
)

//go:generate mockgen -source=store.go -destination=mock_store.go -package=xkv

// Store 远程键值存储的原子命令面。
//
// 实现必须保证每个方法对应存储端的单条原子命令；
// 任何方法都可能因网络问题失败，调用方负责决定是否重试。
type Store interface {
	// SetNX 仅在 key 不存在时写入 value，返回是否写入成功。
	SetNX(ctx context.Context, key, value string) (bool, error)

	// GetSet 原子替换 value，返回替换前的值。
	// key 原本不存在时 found 为 false。
	GetSet(ctx context.Context, key, value string) (old string, found bool, err error)

	// Get 读取 value，key 不存在时 found 为 false。
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Del 删除 key，key 不存在不视为错误。
	Del(ctx context.Context, key string) error

	// Expire 设置 key 的存活时间，key 不存在时返回 false。
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// XAddBounded 向流追加一条记录并返回存储分配的记录 ID。
	// maxLen > 0 时要求存储把流裁剪到 maxLen 附近；approx 为 true 时允许近似裁剪。
	XAddBounded(ctx context.Context, stream string, values map[string]any, maxLen int64, approx bool) (string, error)

	// Publish 向频道广播消息，返回当前收到消息的订阅者数量。
	// 无订阅者时消息丢失，返回 0，不视为错误。
	Publish(ctx context.Context, channel, payload string) (int64, error)
}
