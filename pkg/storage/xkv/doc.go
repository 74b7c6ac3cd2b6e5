// Package xkv 定义协调原语依赖的远程键值存储命令面，并提供 Redis 实现。
//
// # 设计理念
//
// xlease、xidem、xstream 只依赖 [Store] 接口，不感知具体客户端：
//   - [Store]: 原子命令集（SETNX/GETSET/GET/DEL/EXPIRE/XADD MAXLEN/PUBLISH）
//   - [Redis]: 基于 go-redis 的实现，接受 redis.UniversalClient（单机/哨兵/集群）
//   - [NewBreaker]: 熔断装饰器，存储持续故障时快速失败
//   - [MockStore]: gomock 生成的 mock，用于故障路径测试
//
// # 错误语义
//
// 所有方法都是一次同步往返，不做内部重试。网络或协议错误原样包装返回，
// 可通过 errors.Is 匹配底层错误。"键不存在" 不是错误，以 found=false 表示。
//
// # 用法
//
//	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
//	store, err := xkv.NewRedis(client)
//	if err != nil {
//	    return err
//	}
//	// 可选：加熔断
//	guarded := xkv.NewBreaker(store, xkv.WithBreakerName("coord-redis"))
package xkv
