package xstream

import (
	json "github.com/goccy/go-json"
)

// Codec 载荷编码器。
type Codec interface {
	Encode(v any) ([]byte, error)
}

// CodecFunc 函数适配器。
type CodecFunc func(v any) ([]byte, error)

// Encode 调用 f(v)。
func (f CodecFunc) Encode(v any) ([]byte, error) { return f(v) }

// JSONCodec 默认编码器，输出紧凑 JSON。
type JSONCodec struct{}

// Encode 编码为 JSON。
func (JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}
