package xcron

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats 任务执行统计，线程安全。
//
// 认领失败或认领出错的调度计入 SkipCount，不计入 TotalExecutions。
type Stats struct {
	counters

	jobStats sync.Map // map[string]*JobStats
}

// JobStats 单个任务的执行统计。
type JobStats struct {
	Name string
	counters
}

type counters struct {
	totalExecutions atomic.Int64
	successCount    atomic.Int64
	failureCount    atomic.Int64
	skipCount       atomic.Int64

	mu           sync.RWMutex
	lastExecTime time.Time
	lastDuration time.Duration
	lastError    error
}

func newStats() *Stats {
	return &Stats{}
}

// TotalExecutions 返回执行次数（不含跳过）。
func (c *counters) TotalExecutions() int64 { return c.totalExecutions.Load() }

// SuccessCount 返回成功次数。
func (c *counters) SuccessCount() int64 { return c.successCount.Load() }

// FailureCount 返回失败次数。
func (c *counters) FailureCount() int64 { return c.failureCount.Load() }

// SkipCount 返回因未认领跳过的次数。
func (c *counters) SkipCount() int64 { return c.skipCount.Load() }

// LastExecTime 返回最后一次执行结束的时间。
func (c *counters) LastExecTime() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastExecTime
}

// LastDuration 返回最后一次执行耗时。
func (c *counters) LastDuration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastDuration
}

// LastError 返回最后一次执行错误，nil 表示成功。
func (c *counters) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func (c *counters) record(now time.Time, duration time.Duration, err error) {
	c.totalExecutions.Add(1)
	if err != nil {
		c.failureCount.Add(1)
	} else {
		c.successCount.Add(1)
	}

	c.mu.Lock()
	c.lastExecTime = now
	c.lastDuration = duration
	c.lastError = err
	c.mu.Unlock()
}

// JobStats 返回指定任务的统计，任务从未调度过时返回 nil。
func (s *Stats) JobStats(name string) *JobStats {
	if v, ok := s.jobStats.Load(name); ok {
		if js, ok := v.(*JobStats); ok {
			return js
		}
	}
	return nil
}

// AllJobStats 返回所有任务的统计。
func (s *Stats) AllJobStats() map[string]*JobStats {
	result := make(map[string]*JobStats)
	s.jobStats.Range(func(key, value any) bool {
		if name, ok := key.(string); ok {
			if js, ok := value.(*JobStats); ok {
				result[name] = js
			}
		}
		return true
	})
	return result
}

func (s *Stats) job(name string) *JobStats {
	if name == "" {
		return nil
	}
	v, _ := s.jobStats.LoadOrStore(name, &JobStats{Name: name})
	js, _ := v.(*JobStats)
	return js
}

func (s *Stats) recordExecution(name string, duration time.Duration, err error) {
	now := time.Now()
	s.record(now, duration, err)
	if js := s.job(name); js != nil {
		js.record(now, duration, err)
	}
}

func (s *Stats) recordSkip(name string) {
	s.skipCount.Add(1)
	if js := s.job(name); js != nil {
		js.skipCount.Add(1)
	}
}
