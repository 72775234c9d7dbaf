package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/yuqie6/CodeForge/internal/schema"
)

// AchievementEvaluator 成就与连续打卡评估器
// 解锁单向幂等：一旦解锁不再回退，重复评估不产生副作用
type AchievementEvaluator struct {
	achievements AchievementStore
	projects     ProjectStore
	skills       SkillStore
	activities   ActivityStore
	now          func() time.Time
}

// NewAchievementEvaluator 创建评估器
func NewAchievementEvaluator(achievements AchievementStore, projects ProjectStore, skills SkillStore, activities ActivityStore) *AchievementEvaluator {
	return &AchievementEvaluator{
		achievements: achievements,
		projects:     projects,
		skills:       skills,
		activities:   activities,
		now:          time.Now,
	}
}

// EvaluateAll 评估全部判定类型，返回本次新解锁的成就
func (e *AchievementEvaluator) EvaluateAll(ctx context.Context) ([]schema.Achievement, error) {
	var unlocked []schema.Achievement

	projectCount, err := e.projects.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("统计项目数失败: %w", err)
	}
	got, err := e.evaluate(ctx, schema.CriteriaProjectCount, float64(projectCount))
	if err != nil {
		return nil, err
	}
	unlocked = append(unlocked, got...)

	avgProficiency, err := e.skills.AverageProficiency(ctx)
	if err != nil {
		return nil, fmt.Errorf("统计平均熟练度失败: %w", err)
	}
	got, err = e.evaluate(ctx, schema.CriteriaSkillLevel, avgProficiency)
	if err != nil {
		return nil, err
	}
	unlocked = append(unlocked, got...)

	streak, err := e.CurrentStreak(ctx)
	if err != nil {
		return nil, fmt.Errorf("计算连续打卡失败: %w", err)
	}
	got, err = e.evaluate(ctx, schema.CriteriaStreak, float64(streak))
	if err != nil {
		return nil, err
	}
	unlocked = append(unlocked, got...)

	return unlocked, nil
}

// evaluate 对单一判定类型的未解锁成就做阈值比较
func (e *AchievementEvaluator) evaluate(ctx context.Context, criteriaType string, value float64) ([]schema.Achievement, error) {
	locked, err := e.achievements.GetLocked(ctx, criteriaType)
	if err != nil {
		return nil, fmt.Errorf("查询未解锁成就失败: %w", err)
	}

	var unlocked []schema.Achievement
	for i := range locked {
		a := locked[i]
		if value < float64(a.CriteriaValue) {
			continue
		}
		now := e.now()
		a.IsUnlocked = true
		a.UnlockedAt = &now
		if err := e.achievements.Save(ctx, &a); err != nil {
			return nil, fmt.Errorf("保存成就失败: %w", err)
		}
		slog.Info("成就解锁", "name", a.Name, "criteria", a.CriteriaType, "threshold", a.CriteriaValue)
		unlocked = append(unlocked, a)
	}
	return unlocked, nil
}

// CurrentStreak 计算连续打卡天数
// 锚点是今天或昨天：最近一条记录更早则为 0，否则从 1 起逐日向前延伸
func (e *AchievementEvaluator) CurrentStreak(ctx context.Context) (int, error) {
	dates, err := e.activities.GetAllDatesDesc(ctx)
	if err != nil {
		return 0, err
	}
	if len(dates) == 0 {
		return 0, nil
	}

	latest, err := time.ParseInLocation("2006-01-02", dates[0], time.Local)
	if err != nil {
		return 0, fmt.Errorf("解析活动日期失败: %w", err)
	}

	today := e.now()
	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)
	if !latest.Equal(todayDate) && !latest.Equal(todayDate.AddDate(0, 0, -1)) {
		return 0, nil
	}

	streak := 1
	prev := latest
	for _, ds := range dates[1:] {
		d, err := time.ParseInLocation("2006-01-02", ds, time.Local)
		if err != nil {
			return 0, fmt.Errorf("解析活动日期失败: %w", err)
		}
		if !d.Equal(prev.AddDate(0, 0, -1)) {
			break
		}
		streak++
		prev = d
	}
	return streak, nil
}

// PortfolioScore 作品集就绪度评分 (0-100)
// 平均熟练度占 50%，完成项目数占 30%（20 个封顶），连续打卡占 20%（30 天封顶）
func (e *AchievementEvaluator) PortfolioScore(ctx context.Context) (float64, error) {
	avgProficiency, err := e.skills.AverageProficiency(ctx)
	if err != nil {
		return 0, fmt.Errorf("统计平均熟练度失败: %w", err)
	}

	completed, err := e.projects.CountByStatus(ctx, schema.StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("统计完成项目失败: %w", err)
	}

	streak, err := e.CurrentStreak(ctx)
	if err != nil {
		return 0, fmt.Errorf("计算连续打卡失败: %w", err)
	}

	projectScore := math.Min(float64(completed)*5, 100)
	streakScore := math.Min(float64(streak)*3.33, 100)

	score := avgProficiency*0.5 + projectScore*0.3 + streakScore*0.2
	return math.Round(score*10) / 10, nil
}
