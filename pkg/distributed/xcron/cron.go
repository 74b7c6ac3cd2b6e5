package xcron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// cronScheduler 基于 robfig/cron/v3 的调度器实现
type cronScheduler struct {
	cron  *cron.Cron
	opts  *schedulerOptions
	stats *Stats

	immediateWg     sync.WaitGroup
	immediateCtx    context.Context
	immediateCancel context.CancelFunc
}

// New 创建调度器。
//
// 不带参数时不做认领，使用本地时区和分钟级精度。
func New(opts ...SchedulerOption) Scheduler {
	options := defaultSchedulerOptions()
	for _, opt := range opts {
		opt(options)
	}

	c := cron.New(
		cron.WithLocation(options.location),
		cron.WithParser(options.parser),
	)

	immediateCtx, immediateCancel := context.WithCancel(context.Background())

	return &cronScheduler{
		cron:            c,
		opts:            options,
		stats:           newStats(),
		immediateCtx:    immediateCtx,
		immediateCancel: immediateCancel,
	}
}

// AddFunc 添加函数任务
func (s *cronScheduler) AddFunc(spec string, cmd func(ctx context.Context) error, opts ...JobOption) (JobID, error) {
	if cmd == nil {
		return 0, ErrNilJob
	}
	return s.AddJob(spec, JobFunc(cmd), opts...)
}

// AddJob 添加 Job 接口任务
func (s *cronScheduler) AddJob(spec string, job Job, opts ...JobOption) (JobID, error) {
	if job == nil {
		return 0, ErrNilJob
	}

	jobOpts := defaultJobOptions()
	for _, opt := range opts {
		opt(jobOpts)
	}

	if jobOpts.name == "" && s.opts.claimer != nil {
		s.opts.logger.Warn(context.Background(),
			"job has no name, claim will be skipped and every instance runs it",
			slog.String("spec", spec))
	}

	wrapper := newJobWrapper(job, s.opts, s.stats, jobOpts)

	id, err := s.cron.AddJob(spec, wrapper)
	if err != nil {
		return 0, fmt.Errorf("xcron: failed to add job: %w", err)
	}

	if jobOpts.immediate {
		s.immediateWg.Add(1)
		go func() {
			defer s.immediateWg.Done()
			w := *wrapper
			w.baseCtx = s.immediateCtx
			w.Run()
		}()
	}

	return id, nil
}

// Remove 移除任务
func (s *cronScheduler) Remove(id JobID) {
	s.cron.Remove(id)
}

// Start 启动调度器
func (s *cronScheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度。
// 立即执行任务的 ctx 会被取消，Stop 等待它们返回。
func (s *cronScheduler) Stop() context.Context {
	s.immediateCancel()
	ctx := s.cron.Stop()
	s.immediateWg.Wait()
	return ctx
}

// Entries 返回所有已注册的任务
func (s *cronScheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// Identity 返回实例标识
func (s *cronScheduler) Identity() string {
	return s.opts.identity
}

// Stats 返回执行统计信息
func (s *cronScheduler) Stats() *Stats {
	return s.stats
}

var _ Scheduler = (*cronScheduler)(nil)
