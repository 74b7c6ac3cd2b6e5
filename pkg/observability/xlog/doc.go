// Package xlog 基于 log/slog 的结构化日志。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、文件轮转）
//   - 动态级别调整（运行时生效）
//   - 全局 Logger 便利函数，适用于命令行工具
//   - 协调原语常用属性：[Component]、[Operation]、[Key]、[Err]、[Duration]
//
// # 创建 Logger
//
// Builder 采用 first-error-wins：遇到第一个配置错误后，后续 Set 操作被跳过，
// 错误在 [Builder.Build] 时返回。
//
//	logger, cleanup, err := xlog.New().
//	    SetLevel(xlog.LevelDebug).
//	    SetFormat("json").
//	    SetRotation("/var/log/app.log").
//	    Build()
//	if err != nil {
//	    return err
//	}
//	defer cleanup()
//
// # 库内使用
//
// xlease、xidem、xstream 等包通过 WithLogger 注入 Logger，
// 未注入时使用 [Discard]，不产生任何输出。
package xlog
