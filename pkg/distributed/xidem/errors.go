package xidem

import "errors"

var (
	// ErrNilStore 传入的 Store 为 nil。
	ErrNilStore = errors.New("xidem: nil store")

	// ErrEmptyKey 认领 key 为空或仅含空白。
	ErrEmptyKey = errors.New("xidem: key must not be empty")

	// ErrInvalidTTL 认领窗口不是正数。
	ErrInvalidTTL = errors.New("xidem: ttl must be positive")
)
