package xstream

import (
	"github.com/omeyang/xcoord/pkg/observability/xlog"
	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
)

const (
	// DefaultMaxLen 流的默认长度上限。
	DefaultMaxLen int64 = 100000

	// DefaultKeyPrefix 流 key 的默认前缀。
	DefaultKeyPrefix = "STREAM:"

	// PayloadField 流记录中存放载荷的字段名。
	PayloadField = "payload"
)

// Option 定义 Publisher 的配置选项。
type Option func(*options)

type options struct {
	maxLen    int64
	approx    bool
	keyPrefix string
	codec     Codec
	logger    xlog.Logger
	observer  xmetrics.Observer
}

func defaultOptions() *options {
	return &options{
		maxLen:    DefaultMaxLen,
		keyPrefix: DefaultKeyPrefix,
		codec:     JSONCodec{},
		logger:    xlog.Discard(),
		observer:  xmetrics.NoopObserver{},
	}
}

// WithMaxLen 设置流长度上限，非正数忽略。
func WithMaxLen(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLen = n
		}
	}
}

// WithApproxTrim 使用 MAXLEN ~ 近似裁剪。
func WithApproxTrim(approx bool) Option {
	return func(o *options) {
		o.approx = approx
	}
}

// WithKeyPrefix 设置流 key 前缀，默认 "STREAM:"。空字符串表示不加前缀。
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.keyPrefix = prefix
	}
}

// WithCodec 设置载荷编码器。
func WithCodec(codec Codec) Option {
	return func(o *options) {
		if codec != nil {
			o.codec = codec
		}
	}
}

// WithLogger 设置日志记录器。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver 设置观测器。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}
