package xcron

import "errors"

var (
	// ErrNilJob 任务为 nil。
	ErrNilJob = errors.New("xcron: job cannot be nil")

	// ErrJobPanic 任务执行时 panic，原始 panic 值附在错误信息中。
	ErrJobPanic = errors.New("xcron: job panicked")
)
