// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xkv: 远程键值存储的原子命令面，含 Redis 适配和熔断装饰
package storage
