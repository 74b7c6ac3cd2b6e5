package xcron

import (
	"context"

	"github.com/robfig/cron/v3"
)

// Scheduler 定时任务调度器接口。
//
// 使用 [New] 创建默认实现。
type Scheduler interface {
	// AddFunc 添加函数任务，spec 是 cron 表达式，如 "@every 1m" 或 "0 * * * *"。
	AddFunc(spec string, cmd func(ctx context.Context) error, opts ...JobOption) (JobID, error)

	// AddJob 添加实现了 [Job] 接口的任务。
	AddJob(spec string, job Job, opts ...JobOption) (JobID, error)

	// Remove 移除任务，正在执行的任务不受影响。
	Remove(id JobID)

	// Start 启动调度器（非阻塞），重复调用无效果。
	Start()

	// Stop 停止调度，返回的 context 在所有运行中的任务完成后 Done。
	Stop() context.Context

	// Entries 返回所有已注册的任务。
	Entries() []cron.Entry

	// Identity 返回本实例写入认领 key 的标识。
	Identity() string

	// Stats 返回执行统计信息，可并发读取。
	Stats() *Stats
}
