// Package xmetrics 提供统一的观测抽象，并以 OpenTelemetry 实现。
//
// 协调原语的每次调用（lease 获取/释放、幂等认领、流追加、频道广播）
// 都包裹在一个 [Span] 中：
//
//	ctx, span := xmetrics.Start(ctx, observer, xmetrics.SpanOptions{
//	    Component: "xlease",
//	    Operation: "acquire",
//	    Kind:      xmetrics.KindClient,
//	})
//	defer func() { span.End(xmetrics.Result{Err: err}) }()
//
// [NewOTelObserver] 为每个跨度创建 trace span，并记录
// xcoord.operation.total（计数）与 xcoord.operation.duration（秒）两个指标，
// 指标维度为 component、operation、status。
//
// 未配置 Observer 时 [Start] 返回 [NoopSpan]，没有额外开销。
package xmetrics
