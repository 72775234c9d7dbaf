package service

import (
	"context"
	"testing"
	"time"

	"github.com/yuqie6/CodeForge/internal/schema"
)

type fakeActivityStore struct {
	activities map[string]*schema.DailyActivity
}

func newFakeActivityStore(dates ...string) *fakeActivityStore {
	m := make(map[string]*schema.DailyActivity)
	for _, d := range dates {
		m[d] = &schema.DailyActivity{Date: d}
	}
	return &fakeActivityStore{activities: m}
}

func (f *fakeActivityStore) Upsert(ctx context.Context, activity *schema.DailyActivity) error {
	copy := *activity
	f.activities[activity.Date] = &copy
	return nil
}

func (f *fakeActivityStore) GetByDate(ctx context.Context, date string) (*schema.DailyActivity, error) {
	if a, ok := f.activities[date]; ok {
		copy := *a
		return &copy, nil
	}
	return nil, nil
}

func (f *fakeActivityStore) GetAllDatesDesc(ctx context.Context) ([]string, error) {
	var dates []string
	for d := range f.activities {
		dates = append(dates, d)
	}
	// 倒序
	for i := 0; i < len(dates); i++ {
		for j := i + 1; j < len(dates); j++ {
			if dates[j] > dates[i] {
				dates[i], dates[j] = dates[j], dates[i]
			}
		}
	}
	return dates, nil
}

type fakeAchievementStore struct {
	achievements []schema.Achievement
	saves        int
}

func (f *fakeAchievementStore) GetLocked(ctx context.Context, criteriaType string) ([]schema.Achievement, error) {
	var out []schema.Achievement
	for _, a := range f.achievements {
		if !a.IsUnlocked && a.CriteriaType == criteriaType {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAchievementStore) GetAll(ctx context.Context) ([]schema.Achievement, error) {
	return append([]schema.Achievement(nil), f.achievements...), nil
}

func (f *fakeAchievementStore) Save(ctx context.Context, achievement *schema.Achievement) error {
	for i := range f.achievements {
		if f.achievements[i].Name == achievement.Name {
			f.achievements[i] = *achievement
		}
	}
	f.saves++
	return nil
}

func date(t *testing.T, daysAgo int) string {
	t.Helper()
	return time.Now().AddDate(0, 0, -daysAgo).Format("2006-01-02")
}

func TestCurrentStreak(t *testing.T) {
	ctx := context.Background()

	t.Run("无活动记录", func(t *testing.T) {
		e := NewAchievementEvaluator(nil, nil, nil, newFakeActivityStore())
		streak, err := e.CurrentStreak(ctx)
		if err != nil {
			t.Fatalf("CurrentStreak: %v", err)
		}
		if streak != 0 {
			t.Errorf("streak = %d, want 0", streak)
		}
	})

	t.Run("连续三天到今天", func(t *testing.T) {
		e := NewAchievementEvaluator(nil, nil, nil,
			newFakeActivityStore(date(t, 0), date(t, 1), date(t, 2)))
		streak, err := e.CurrentStreak(ctx)
		if err != nil {
			t.Fatalf("CurrentStreak: %v", err)
		}
		if streak != 3 {
			t.Errorf("streak = %d, want 3", streak)
		}
	})

	t.Run("昨天为锚点", func(t *testing.T) {
		e := NewAchievementEvaluator(nil, nil, nil,
			newFakeActivityStore(date(t, 1), date(t, 2)))
		streak, err := e.CurrentStreak(ctx)
		if err != nil {
			t.Fatalf("CurrentStreak: %v", err)
		}
		if streak != 2 {
			t.Errorf("streak = %d, want 2", streak)
		}
	})

	t.Run("最近记录在前天则中断", func(t *testing.T) {
		e := NewAchievementEvaluator(nil, nil, nil,
			newFakeActivityStore(date(t, 2), date(t, 3)))
		streak, err := e.CurrentStreak(ctx)
		if err != nil {
			t.Fatalf("CurrentStreak: %v", err)
		}
		if streak != 0 {
			t.Errorf("streak = %d, want 0", streak)
		}
	})

	t.Run("中间断档只算到断点", func(t *testing.T) {
		e := NewAchievementEvaluator(nil, nil, nil,
			newFakeActivityStore(date(t, 0), date(t, 1), date(t, 3), date(t, 4)))
		streak, err := e.CurrentStreak(ctx)
		if err != nil {
			t.Fatalf("CurrentStreak: %v", err)
		}
		if streak != 2 {
			t.Errorf("streak = %d, want 2", streak)
		}
	})
}

func TestEvaluateAllUnlocksAndIsIdempotent(t *testing.T) {
	ctx := context.Background()

	achievements := &fakeAchievementStore{achievements: []schema.Achievement{
		{Name: "Hello World", CriteriaType: schema.CriteriaProjectCount, CriteriaValue: 1},
		{Name: "Code Warrior", CriteriaType: schema.CriteriaProjectCount, CriteriaValue: 5},
		{Name: "Novice Coder", CriteriaType: schema.CriteriaSkillLevel, CriteriaValue: 20},
		{Name: "Consistency is Key", CriteriaType: schema.CriteriaStreak, CriteriaValue: 3},
	}}
	projects := &fakeProjectStore{}
	_ = projects.Create(ctx, &schema.Project{Title: "p1"})
	skills := newFakeSkillStore(schema.Skill{Name: "Go", Proficiency: 30})
	activities := newFakeActivityStore(date(t, 0))

	e := NewAchievementEvaluator(achievements, projects, skills, activities)

	unlocked, err := e.EvaluateAll(ctx)
	if err != nil {
		t.Fatalf("EvaluateAll: %v", err)
	}
	// 项目数 1 ≥ 1，平均熟练度 30 ≥ 20；streak=1 < 3，5 个项目未达标
	if len(unlocked) != 2 {
		t.Fatalf("unlocked = %d, want 2", len(unlocked))
	}
	for _, a := range unlocked {
		if !a.IsUnlocked || a.UnlockedAt == nil {
			t.Errorf("achievement %s not marked unlocked", a.Name)
		}
	}

	// 重复评估不再解锁，也不重复写入
	savesBefore := achievements.saves
	unlocked, err = e.EvaluateAll(ctx)
	if err != nil {
		t.Fatalf("EvaluateAll: %v", err)
	}
	if len(unlocked) != 0 {
		t.Errorf("second evaluation unlocked %d, want 0", len(unlocked))
	}
	if achievements.saves != savesBefore {
		t.Errorf("saves changed on idempotent evaluation: %d → %d", savesBefore, achievements.saves)
	}
}

func TestPortfolioScore(t *testing.T) {
	ctx := context.Background()

	projects := &fakeProjectStore{}
	for i := 0; i < 4; i++ {
		p := &schema.Project{Title: "p", Status: schema.StatusCompleted}
		_ = projects.Create(ctx, p)
		_ = projects.Save(ctx, p)
	}
	skills := newFakeSkillStore(
		schema.Skill{Name: "A", Proficiency: 60},
		schema.Skill{Name: "B", Proficiency: 40},
	)
	activities := newFakeActivityStore(date(t, 0), date(t, 1))

	e := NewAchievementEvaluator(nil, projects, skills, activities)

	score, err := e.PortfolioScore(ctx)
	if err != nil {
		t.Fatalf("PortfolioScore: %v", err)
	}
	// 50×0.5 + min(4×5,100)×0.3 + min(2×3.33,100)×0.2 = 25 + 6 + 1.332 → 32.3
	if score != 32.3 {
		t.Errorf("score = %v, want 32.3", score)
	}
}
