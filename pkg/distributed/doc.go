// Package distributed 提供多实例协调相关的子包。
//
// 子包列表：
//   - xlease: 时间戳租约锁
//   - xidem: 按窗口的一次性认领
//   - xcron: 基于认领的定时任务调度
package distributed
