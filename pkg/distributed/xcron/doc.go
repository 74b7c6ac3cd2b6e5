// Package xcron 提供多实例部署下按窗口去重的定时任务调度。
//
// # 概述
//
// xcron 基于 [robfig/cron/v3] 构建。每次调度触发时，命名任务先通过
// [xidem.Claimer] 认领 "任务名" 这个 key，认领成功的实例执行，其余实例跳过。
// 认领窗口（[WithClaimTTL]，默认 50 秒）过期后下一次调度重新竞争。
//
// # 快速开始
//
//	guard, _ := xidem.New(store, xidem.WithKeyPrefix("cron:"))
//	scheduler := xcron.New(xcron.WithClaimer(guard))
//	scheduler.AddFunc("@every 1m", func(ctx context.Context) error {
//	    return doSomething(ctx)
//	}, xcron.WithName("report"), xcron.WithClaimTTL(50*time.Second))
//	scheduler.Start()
//	defer func() { <-scheduler.Stop().Done() }()
//
// # 窗口选择
//
// 窗口应短于调度周期且长于各实例之间的时钟偏差。
// 窗口长于周期时，下一次调度触发时认领仍未过期，所有实例都会跳过。
// 认领失败同样会刷新窗口，因此各实例的触发时刻必须大致对齐。
//
// 认领不是互斥锁：任务执行时间超过窗口不会阻止下一轮执行。
//
// # 任务选项
//
//   - WithName: 任务名，同时用作认领 key；未设置时不认领
//   - WithClaimTTL: 认领窗口
//   - WithTimeout: 单次执行超时
//   - WithRetry / WithBackoff: 失败重试与间隔（xretry）
//   - WithHook: 执行前后钩子
//   - WithImmediate: 注册后立即执行一次
//
// [robfig/cron/v3]: https://github.com/robfig/cron
package xcron
