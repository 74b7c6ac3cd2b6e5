package xretry

import "errors"

var (
	// ErrNilRetryer 在 nil *Retryer 上调用 Do。
	ErrNilRetryer = errors.New("xretry: nil retryer")

	// ErrNilFunc 传入的执行函数为 nil。
	ErrNilFunc = errors.New("xretry: nil func")
)

// RetryableError 可自行声明是否可重试的错误。
type RetryableError interface {
	error
	Retryable() bool
}

// PermanentError 永久性错误，内置策略不会重试。
type PermanentError struct {
	Err error
}

// NewPermanentError 将 err 标记为不可重试。
func NewPermanentError(err error) *PermanentError {
	return &PermanentError{Err: err}
}

func (e *PermanentError) Error() string {
	if e.Err == nil {
		return "permanent error"
	}
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error { return e.Err }

// Retryable 实现 [RetryableError]。
func (e *PermanentError) Retryable() bool { return false }

// IsRetryable 判断 err 是否可重试。
// nil 不需要重试；实现 [RetryableError] 的错误按其声明；其余错误视为可重试。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}
	return true
}
