package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

// newTestScheduler 构造注入了时钟与休眠记录的调度器
func newTestScheduler(cfg SchedulerConfig, now time.Time, run runFunc) (*Scheduler, *[]time.Duration) {
	var sleeps []time.Duration
	s := &Scheduler{
		cfg:   cfg,
		run:   run,
		rng:   testRng(),
		now:   func() time.Time { return now },
		sleep: func(ctx context.Context, d time.Duration) error { sleeps = append(sleeps, d); return nil },
	}
	return s, &sleeps
}

func TestNextFireTime(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local) // 周一 08:00

	t.Run("今天还没到点", func(t *testing.T) {
		s, _ := newTestScheduler(SchedulerConfig{Time: "09:30"}, now, nil)
		next, err := s.nextFireTime()
		if err != nil {
			t.Fatalf("nextFireTime: %v", err)
		}
		want := time.Date(2026, 3, 2, 9, 30, 0, 0, time.Local)
		if !next.Equal(want) {
			t.Errorf("next = %v, want %v", next, want)
		}
	})

	t.Run("今天已过点则顺延到明天", func(t *testing.T) {
		s, _ := newTestScheduler(SchedulerConfig{Time: "07:00"}, now, nil)
		next, err := s.nextFireTime()
		if err != nil {
			t.Fatalf("nextFireTime: %v", err)
		}
		want := time.Date(2026, 3, 3, 7, 0, 0, 0, time.Local)
		if !next.Equal(want) {
			t.Errorf("next = %v, want %v", next, want)
		}
	})

	t.Run("非法时间格式", func(t *testing.T) {
		s, _ := newTestScheduler(SchedulerConfig{Time: "not-a-time"}, now, nil)
		if _, err := s.nextFireTime(); err == nil {
			t.Fatal("expected error for invalid time")
		}
	})

	t.Run("超出范围", func(t *testing.T) {
		s, _ := newTestScheduler(SchedulerConfig{Time: "25:00"}, now, nil)
		if _, err := s.nextFireTime(); err == nil {
			t.Fatal("expected error for out-of-range hour")
		}
	})
}

func TestFireJitterWithinWindow(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	ran := 0
	s, sleeps := newTestScheduler(SchedulerConfig{RandomizationMinutes: 120}, now,
		func(ctx context.Context) error { ran++; return nil })

	s.fire(context.Background())

	if ran != 1 {
		t.Fatalf("run count = %d, want 1", ran)
	}
	if len(*sleeps) != 1 {
		t.Fatalf("sleeps = %d, want 1 (jitter)", len(*sleeps))
	}
	jitter := (*sleeps)[0]
	if jitter < 0 || jitter > 120*time.Minute {
		t.Errorf("jitter = %v, outside [0, 120m]", jitter)
	}
}

func TestFireSkipsWeekend(t *testing.T) {
	saturday := time.Date(2026, 3, 7, 9, 0, 0, 0, time.Local)
	ran := 0
	s, _ := newTestScheduler(SchedulerConfig{SkipWeekends: true}, saturday,
		func(ctx context.Context) error { ran++; return nil })

	s.fire(context.Background())

	if ran != 0 {
		t.Errorf("workflow ran on weekend, run count = %d", ran)
	}
}

func TestFireRetriesWithLinearBackoff(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	attempts := 0
	s, sleeps := newTestScheduler(SchedulerConfig{RetryOnFailure: true, MaxRetries: 3}, now,
		func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return errors.New("boom")
			}
			return nil
		})

	s.fire(context.Background())

	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
	// 两次失败后的等待：5min×1、5min×2
	if len(*sleeps) != 2 {
		t.Fatalf("sleeps = %d, want 2", len(*sleeps))
	}
	if (*sleeps)[0] != 5*time.Minute {
		t.Errorf("first wait = %v, want 5m", (*sleeps)[0])
	}
	if (*sleeps)[1] != 10*time.Minute {
		t.Errorf("second wait = %v, want 10m", (*sleeps)[1])
	}
}

func TestFireGivesUpAfterMaxRetries(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	attempts := 0
	s, _ := newTestScheduler(SchedulerConfig{RetryOnFailure: true, MaxRetries: 2}, now,
		func(ctx context.Context) error { attempts++; return errors.New("boom") })

	s.fire(context.Background())

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3 (1 + 2 retries)", attempts)
	}
}

func TestFireNoRetryWhenDisabled(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	attempts := 0
	s, _ := newTestScheduler(SchedulerConfig{RetryOnFailure: false, MaxRetries: 3}, now,
		func(ctx context.Context) error { attempts++; return errors.New("boom") })

	s.fire(context.Background())

	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
