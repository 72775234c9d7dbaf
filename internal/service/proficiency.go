package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuqie6/CodeForge/internal/schema"
)

// ProficiencyPolicy 熟练度增长策略（可替换）
type ProficiencyPolicy interface {
	Gain(current float64, difficulty schema.DifficultyLevel, weight float64) float64
}

// DefaultProficiencyPolicy 默认策略：难度基础增量 × 贡献权重 + 递减收益 + 100 封顶
type DefaultProficiencyPolicy struct{}

// Gain 计算一次项目完成带来的熟练度增量
func (DefaultProficiencyPolicy) Gain(current float64, difficulty schema.DifficultyLevel, weight float64) float64 {
	var base float64
	switch difficulty {
	case schema.DifficultyBeginner:
		base = 2.0
	case schema.DifficultyIntermediate:
		base = 4.0
	case schema.DifficultyAdvanced:
		base = 6.0
	default:
		base = 2.0
	}

	gain := base * weight

	// 递减收益：熟练度越高，同样的项目带来的成长越少
	if current >= 80 {
		gain *= 0.5
	} else if current >= 50 {
		gain *= 0.75
	}

	if current+gain > 100 {
		return 100 - current
	}
	return gain
}

// SkillLedger 技能账本：唯一的熟练度写入口
type SkillLedger struct {
	skills SkillStore
	policy ProficiencyPolicy
	now    func() time.Time
}

// NewSkillLedger 创建账本
func NewSkillLedger(skills SkillStore, policy ProficiencyPolicy) *SkillLedger {
	if policy == nil {
		policy = DefaultProficiencyPolicy{}
	}
	return &SkillLedger{skills: skills, policy: policy, now: time.Now}
}

// ApplyProjectCompletion 对每个目标技能应用一次熟练度更新
// 每个完成项目对每个技能只应用一次，不回溯
func (l *SkillLedger) ApplyProjectCompletion(ctx context.Context, skillNames []string, difficulty schema.DifficultyLevel, weight float64) error {
	if weight <= 0 || weight > 1 {
		weight = 1.0
	}

	for _, name := range skillNames {
		skill, err := l.skills.GetByName(ctx, name)
		if err != nil {
			return fmt.Errorf("查询技能 %s 失败: %w", name, err)
		}
		if skill == nil {
			slog.Warn("目标技能不存在，跳过熟练度更新", "skill", name)
			continue
		}

		gain := l.policy.Gain(skill.Proficiency, difficulty, weight)
		skill.Proficiency += gain
		skill.ProjectsCount++
		now := l.now()
		skill.LastUsed = &now

		if err := l.skills.Save(ctx, skill); err != nil {
			return fmt.Errorf("保存技能 %s 失败: %w", name, err)
		}
		slog.Debug("熟练度更新",
			"skill", name,
			"gain", fmt.Sprintf("%.2f", gain),
			"proficiency", fmt.Sprintf("%.2f", skill.Proficiency),
		)
	}
	return nil
}
