// Package xidem 提供按时间窗口的一次性认领检查。
//
// 典型用法是多实例部署的定时任务：每个实例在执行前认领同一个 key，
// 只有认领成功的实例执行，其余实例跳过。
//
//	ok, err := guard.TryClaim(ctx, "report:daily", hostname, 50*time.Second)
//	if err != nil || !ok {
//	    return
//	}
//
// 窗口应短于任务周期，否则下一次调度时认领仍未过期。
//
// 认领失败时同样会刷新 key 的存活时间，持有者的窗口因此被延长；
// 认领频率高于窗口时 key 可能一直不过期。
package xidem
