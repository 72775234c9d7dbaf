package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// SchedulerConfig 调度参数
type SchedulerConfig struct {
	Time                 string // "HH:MM" 本地触发时间
	Timezone             string // IANA 时区名，空则本地时区
	RandomizationMinutes int    // 抖动窗口，触发后随机延迟 [0, window]
	SkipWeekends         bool
	RetryOnFailure       bool
	MaxRetries           int
}

// runFunc 适配 Workflow.RunDaily 的函数签名
type runFunc func(ctx context.Context) error

// Scheduler 日度调度器
// 单任务阻塞式驱动：任意时刻最多一次工作流在执行，运行之间不重叠
type Scheduler struct {
	cfg   SchedulerConfig
	run   runFunc
	rng   *rand.Rand
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewScheduler 创建调度器
func NewScheduler(cfg SchedulerConfig, workflow *Workflow, rng *rand.Rand) *Scheduler {
	return &Scheduler{
		cfg: cfg,
		run: func(ctx context.Context) error {
			_, err := workflow.RunDaily(ctx)
			return err
		},
		rng:   rng,
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// sleepCtx 可取消的休眠
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// location 解析配置时区，失败退回本地时区
func (s *Scheduler) location() *time.Location {
	if s.cfg.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		slog.Warn("时区解析失败，使用本地时区", "timezone", s.cfg.Timezone, "error", err)
		return time.Local
	}
	return loc
}

// nextFireTime 下一次触发时刻：今天的配置时间，已过则顺延到明天
func (s *Scheduler) nextFireTime() (time.Time, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s.cfg.Time, "%d:%d", &hour, &minute); err != nil {
		return time.Time{}, fmt.Errorf("解析调度时间 %q 失败: %w", s.cfg.Time, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("调度时间 %q 超出范围", s.cfg.Time)
	}

	loc := s.location()
	now := s.now().In(loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}

// Start 阻塞运行调度循环，ctx 取消时退出
func (s *Scheduler) Start(ctx context.Context) error {
	slog.Info("调度器启动",
		"time", s.cfg.Time,
		"timezone", s.cfg.Timezone,
		"jitter_minutes", s.cfg.RandomizationMinutes,
		"skip_weekends", s.cfg.SkipWeekends,
	)

	for {
		next, err := s.nextFireTime()
		if err != nil {
			return err
		}
		slog.Info("等待下次触发", "next", next.Format(time.RFC3339))

		if err := s.sleep(ctx, next.Sub(s.now())); err != nil {
			slog.Info("调度器退出", "reason", err)
			return nil
		}

		s.fire(ctx)
	}
}

// fire 执行一次触发：抖动 → 周末跳过 → 带重试的工作流执行
func (s *Scheduler) fire(ctx context.Context) {
	// 抖动延迟，避开精确到秒的规律性
	if s.cfg.RandomizationMinutes > 0 {
		delay := time.Duration(s.rng.Intn(s.cfg.RandomizationMinutes*60+1)) * time.Second
		slog.Info("抖动延迟", "delay", delay)
		if err := s.sleep(ctx, delay); err != nil {
			return
		}
	}

	// 周末跳过在抖动之后判断，以延迟后的实际日期为准
	if s.cfg.SkipWeekends {
		weekday := s.now().In(s.location()).Weekday()
		if weekday == time.Saturday || weekday == time.Sunday {
			slog.Info("周末跳过执行")
			return
		}
	}

	maxRetries := 0
	if s.cfg.RetryOnFailure {
		maxRetries = s.cfg.MaxRetries
	}

	// 重试以整个工作流为粒度，线性退避 5min × 次数
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := s.run(ctx)
		if err == nil {
			return
		}
		slog.Error("工作流执行失败",
			"attempt", attempt+1,
			"max_attempts", maxRetries+1,
			"error", err,
		)
		if attempt >= maxRetries {
			slog.Error("达到最大重试次数，今日放弃")
			return
		}
		wait := 5 * time.Minute * time.Duration(attempt+1)
		slog.Info("等待后重试", "wait", wait)
		if err := s.sleep(ctx, wait); err != nil {
			return
		}
	}
}

// RunOnce 跳过等待直接触发一次（抖动与周末跳过仍生效）
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.fire(ctx)
}
