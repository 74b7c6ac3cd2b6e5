// Package xlease 提供基于远程键值存储的租约锁。
//
// 租约的值是到期时间戳（毫秒，十进制文本），不包含持有者信息：
//
//	ok, err := locker.Acquire(ctx, "order:42", 5*time.Second)
//	if err != nil {
//	    return err
//	}
//	if !ok {
//	    return nil // 其他实例持有
//	}
//	defer locker.Release(context.WithoutCancel(ctx), "order:42")
//
// 获取流程：
//   - SETNX 写入 now+lease+1，成功即获得租约；
//   - 否则读取当前值，若已过期则 GETSET 抢占，替换前的值同样过期才算获得。
//
// 已知限制：
//   - 读取与抢占是两次往返，两个调用方可能同时看到过期值并都获得租约；
//   - Release 不校验持有者，任何调用方都能删除租约；
//   - 没有续期和 fencing token，临界区超过租约时长后互斥不再成立。
//
// 需要严格互斥的场景应在存储侧使用带持有者校验的锁。
package xlease
