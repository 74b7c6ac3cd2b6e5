package xkv

import "errors"

var (
	// ErrNilClient 传入的客户端为 nil。
	ErrNilClient = errors.New("xkv: nil client")

	// ErrNilStore 传入的 Store 为 nil。
	ErrNilStore = errors.New("xkv: nil store")

	// ErrCircuitOpen 熔断器处于打开状态，请求被拒绝。
	// 原始的 gobreaker 错误保留在错误链中。
	ErrCircuitOpen = errors.New("xkv: circuit breaker is open")
)
