package xlease

import "errors"

var (
	// ErrNilStore 传入的 Store 为 nil。
	ErrNilStore = errors.New("xlease: nil store")

	// ErrEmptyKey 租约 key 为空或仅含空白。
	ErrEmptyKey = errors.New("xlease: key must not be empty")

	// ErrInvalidLease 租约时长小于 1 毫秒。
	ErrInvalidLease = errors.New("xlease: lease must be at least 1ms")

	// ErrNilFunc Do 传入的函数为 nil。
	ErrNilFunc = errors.New("xlease: nil func")
)
