package xstream

import "errors"

var (
	// ErrNilStore 传入的 Store 为 nil。
	ErrNilStore = errors.New("xstream: nil store")

	// ErrEmptyKey 流名或频道名为空或仅含空白。
	ErrEmptyKey = errors.New("xstream: stream or channel name must not be empty")

	// ErrEncode 载荷编码失败。
	ErrEncode = errors.New("xstream: encode payload failed")
)
