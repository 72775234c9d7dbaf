package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/yuqie6/CodeForge/internal/schema"
)

func openSeededDB(t *testing.T) *Database {
	t.Helper()
	d, err := NewDatabase(filepath.Join(t.TempDir(), "forge.db"))
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestSeedDefaultsIdempotent(t *testing.T) {
	d := openSeededDB(t)
	ctx := context.Background()

	if err := SeedDefaults(ctx, d); err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}

	var skillCount, achievementCount int64
	d.DB.Model(&schema.Skill{}).Count(&skillCount)
	d.DB.Model(&schema.Achievement{}).Count(&achievementCount)
	if skillCount != int64(len(defaultSkills)) {
		t.Errorf("skills = %d, want %d", skillCount, len(defaultSkills))
	}
	if achievementCount != int64(len(defaultAchievements)) {
		t.Errorf("achievements = %d, want %d", achievementCount, len(defaultAchievements))
	}

	// 二次播种不重复、不覆盖既有进度
	skillRepo := NewSkillRepository(d.DB)
	skill, err := skillRepo.GetByName(ctx, "Machine Learning")
	if err != nil || skill == nil {
		t.Fatalf("GetByName: %v, %v", skill, err)
	}
	skill.Proficiency = 42
	if err := skillRepo.Save(ctx, skill); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := SeedDefaults(ctx, d); err != nil {
		t.Fatalf("SeedDefaults(again): %v", err)
	}

	d.DB.Model(&schema.Skill{}).Count(&skillCount)
	if skillCount != int64(len(defaultSkills)) {
		t.Errorf("skills after reseed = %d, want %d", skillCount, len(defaultSkills))
	}
	skill, _ = skillRepo.GetByName(ctx, "Machine Learning")
	if skill.Proficiency != 42 {
		t.Errorf("proficiency overwritten: %v", skill.Proficiency)
	}
}

func TestSeedCoversAllCategories(t *testing.T) {
	d := openSeededDB(t)
	ctx := context.Background()

	if err := SeedDefaults(ctx, d); err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}

	skillRepo := NewSkillRepository(d.DB)
	for _, category := range schema.AllCategories() {
		skills, err := skillRepo.GetByCategory(ctx, category)
		if err != nil {
			t.Fatalf("GetByCategory(%s): %v", category, err)
		}
		if len(skills) == 0 {
			t.Errorf("category %s has no seeded skills", category)
		}
	}
}
