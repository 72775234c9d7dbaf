package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/yuqie6/CodeForge/internal/schema"
)

// AdvancementRate 难度阈值档位
type AdvancementRate string

const (
	AdvancementSlow     AdvancementRate = "slow"
	AdvancementModerate AdvancementRate = "moderate"
	AdvancementFast     AdvancementRate = "fast"
)

// GapAnalyzer 技能缺口分析器
// 根据配置的目标权重与当前熟练度，决定下一个项目的分类、目标技能与难度
type GapAnalyzer struct {
	skills  SkillStore
	weights map[schema.ProjectCategory]float64 // 各分类目标权重，合计 100（加载时已校验）
	rate    AdvancementRate
	topN    int
	rng     *rand.Rand
}

// NewGapAnalyzer 创建分析器
func NewGapAnalyzer(skills SkillStore, weights map[schema.ProjectCategory]float64, rate AdvancementRate, rng *rand.Rand) *GapAnalyzer {
	if rate == "" {
		rate = AdvancementModerate
	}
	return &GapAnalyzer{
		skills:  skills,
		weights: weights,
		rate:    rate,
		topN:    3,
		rng:     rng,
	}
}

// GapResult 缺口分析结果
type GapResult struct {
	Category   schema.ProjectCategory
	Skills     []schema.Skill
	Difficulty schema.DifficultyLevel
}

// CategoryGap 单个分类的缺口得分
// gap = weight × (100 − avgProficiency) / 100；权重为 0 的分类缺口恒为 0
func (g *GapAnalyzer) CategoryGap(ctx context.Context, category schema.ProjectCategory) (float64, error) {
	weight := g.weights[category]
	if weight == 0 {
		return 0, nil
	}

	skills, err := g.skills.GetByCategory(ctx, category)
	if err != nil {
		return 0, err
	}

	avg := 0.0
	if len(skills) > 0 {
		sum := 0.0
		for _, s := range skills {
			sum += s.Proficiency
		}
		avg = sum / float64(len(skills))
	}

	return weight * (100 - avg) / 100, nil
}

// Analyze 选出缺口最大的分类及其最需要练习的技能
// 平局按枚举顺序取先者；分类下无技能时从全部技能中均匀随机取一个兜底
func (g *GapAnalyzer) Analyze(ctx context.Context) (*GapResult, error) {
	var (
		bestCategory schema.ProjectCategory
		bestGap      = -1.0
	)
	for _, category := range schema.AllCategories() {
		gap, err := g.CategoryGap(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("计算分类缺口失败: %w", err)
		}
		if gap > bestGap {
			bestGap = gap
			bestCategory = category
		}
	}

	skills, err := g.skills.GetByCategory(ctx, bestCategory)
	if err != nil {
		return nil, fmt.Errorf("查询分类技能失败: %w", err)
	}

	if len(skills) == 0 {
		all, err := g.skills.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("查询技能失败: %w", err)
		}
		if len(all) == 0 {
			return nil, fmt.Errorf("技能表为空，无法分析缺口")
		}
		picked := all[g.rng.Intn(len(all))]
		slog.Warn("分类下无技能，随机兜底", "category", bestCategory, "skill", picked.Name)
		skills = []schema.Skill{picked}
	}

	// GetByCategory 已按 (proficiency ASC, projects_count ASC) 排序
	if len(skills) > g.topN {
		skills = skills[:g.topN]
	}

	result := &GapResult{
		Category:   bestCategory,
		Skills:     skills,
		Difficulty: g.pickDifficulty(skills),
	}
	slog.Info("技能缺口分析完成",
		"category", result.Category,
		"gap", fmt.Sprintf("%.2f", bestGap),
		"skills", len(result.Skills),
		"difficulty", result.Difficulty,
	)
	return result, nil
}

// pickDifficulty 按目标技能的平均熟练度与进阶速率阈值定难度
func (g *GapAnalyzer) pickDifficulty(skills []schema.Skill) schema.DifficultyLevel {
	sum := 0.0
	for _, s := range skills {
		sum += s.Proficiency
	}
	avg := sum / float64(len(skills))

	low, high := difficultyThresholds(g.rate)
	switch {
	case avg < low:
		return schema.DifficultyBeginner
	case avg < high:
		return schema.DifficultyIntermediate
	default:
		return schema.DifficultyAdvanced
	}
}

// difficultyThresholds 各进阶速率对应的 beginner/intermediate 分界
func difficultyThresholds(rate AdvancementRate) (float64, float64) {
	switch rate {
	case AdvancementSlow:
		return 40, 70
	case AdvancementFast:
		return 20, 50
	default:
		return 30, 60
	}
}
