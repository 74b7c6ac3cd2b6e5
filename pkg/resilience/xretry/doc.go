// Package xretry 提供重试策略、退避策略以及基于 avast/retry-go 的执行器。
//
// RetryPolicy 决定失败后是否继续，BackoffPolicy 决定两次尝试之间等待多久：
//
//	retryer := xretry.NewRetryer(
//	    xretry.WithRetryPolicy(xretry.NewFixedRetry(3)),
//	    xretry.WithBackoffPolicy(xretry.NewExponentialBackoff()),
//	)
//	err := retryer.Do(ctx, func(ctx context.Context) error {
//	    return store.Health(ctx)
//	})
//
// 包装为 [PermanentError] 的错误不会被内置策略重试。
// 自定义策略可以内嵌内置策略，只覆盖 ShouldRetry 以排除特定错误。
package xretry
