package service

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"github.com/yuqie6/CodeForge/internal/schema"
)

type fakeSkillStore struct {
	skills []schema.Skill
	saved  []*schema.Skill
}

func newFakeSkillStore(skills ...schema.Skill) *fakeSkillStore {
	return &fakeSkillStore{skills: skills}
}

func (f *fakeSkillStore) GetAll(ctx context.Context) ([]schema.Skill, error) {
	out := append([]schema.Skill(nil), f.skills...)
	return out, nil
}

func (f *fakeSkillStore) GetByName(ctx context.Context, name string) (*schema.Skill, error) {
	for i := range f.skills {
		if f.skills[i].Name == name {
			copy := f.skills[i]
			return &copy, nil
		}
	}
	return nil, nil
}

func (f *fakeSkillStore) GetByNames(ctx context.Context, names []string) ([]schema.Skill, error) {
	var out []schema.Skill
	for _, n := range names {
		for i := range f.skills {
			if f.skills[i].Name == n {
				out = append(out, f.skills[i])
			}
		}
	}
	return out, nil
}

func (f *fakeSkillStore) GetByCategory(ctx context.Context, category schema.ProjectCategory) ([]schema.Skill, error) {
	var out []schema.Skill
	for _, s := range f.skills {
		if s.Category == category {
			out = append(out, s)
		}
	}
	// 与仓储排序契约一致：proficiency ASC, projects_count ASC
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Proficiency != out[j].Proficiency {
			return out[i].Proficiency < out[j].Proficiency
		}
		return out[i].ProjectsCount < out[j].ProjectsCount
	})
	return out, nil
}

func (f *fakeSkillStore) Save(ctx context.Context, skill *schema.Skill) error {
	for i := range f.skills {
		if f.skills[i].Name == skill.Name {
			f.skills[i] = *skill
		}
	}
	copy := *skill
	f.saved = append(f.saved, &copy)
	return nil
}

func (f *fakeSkillStore) Count(ctx context.Context) (int64, error) {
	return int64(len(f.skills)), nil
}

func (f *fakeSkillStore) AverageProficiency(ctx context.Context) (float64, error) {
	if len(f.skills) == 0 {
		return 0, nil
	}
	sum := 0.0
	for _, s := range f.skills {
		sum += s.Proficiency
	}
	return sum / float64(len(f.skills)), nil
}

func testRng() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func TestCategoryGap(t *testing.T) {
	store := newFakeSkillStore(
		schema.Skill{Name: "PyTorch", Category: schema.CategoryAIML, Proficiency: 20},
		schema.Skill{Name: "TensorFlow", Category: schema.CategoryAIML, Proficiency: 40},
	)
	weights := map[schema.ProjectCategory]float64{
		schema.CategoryAIML:      40,
		schema.CategoryFullStack: 0,
	}
	analyzer := NewGapAnalyzer(store, weights, AdvancementModerate, testRng())
	ctx := context.Background()

	gap, err := analyzer.CategoryGap(ctx, schema.CategoryAIML)
	if err != nil {
		t.Fatalf("CategoryGap: %v", err)
	}
	// 40 × (100 − 30) / 100 = 28
	if gap != 28 {
		t.Errorf("gap = %v, want 28", gap)
	}

	// 权重为 0 的分类缺口恒为 0
	gap, err = analyzer.CategoryGap(ctx, schema.CategoryFullStack)
	if err != nil {
		t.Fatalf("CategoryGap: %v", err)
	}
	if gap != 0 {
		t.Errorf("zero-weight gap = %v, want 0", gap)
	}
}

func TestAnalyzeTieBreakByEnumOrder(t *testing.T) {
	// 两个分类缺口相同时，按枚举顺序取先者（ai_ml 在 system_design 之前）
	store := newFakeSkillStore(
		schema.Skill{Name: "PyTorch", Category: schema.CategoryAIML, Proficiency: 50},
		schema.Skill{Name: "Redis", Category: schema.CategorySystemDesign, Proficiency: 50},
	)
	weights := map[schema.ProjectCategory]float64{
		schema.CategoryAIML:         50,
		schema.CategorySystemDesign: 50,
	}
	analyzer := NewGapAnalyzer(store, weights, AdvancementModerate, testRng())

	result, err := analyzer.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Category != schema.CategoryAIML {
		t.Errorf("category = %s, want %s", result.Category, schema.CategoryAIML)
	}
}

func TestAnalyzePicksWeakestSkills(t *testing.T) {
	store := newFakeSkillStore(
		schema.Skill{Name: "A", Category: schema.CategoryAIML, Proficiency: 80},
		schema.Skill{Name: "B", Category: schema.CategoryAIML, Proficiency: 10},
		schema.Skill{Name: "C", Category: schema.CategoryAIML, Proficiency: 30},
		schema.Skill{Name: "D", Category: schema.CategoryAIML, Proficiency: 50},
		// 熟练度相同时按项目数升序
		schema.Skill{Name: "E", Category: schema.CategoryAIML, Proficiency: 10, ProjectsCount: 5},
	)
	weights := map[schema.ProjectCategory]float64{schema.CategoryAIML: 100}
	analyzer := NewGapAnalyzer(store, weights, AdvancementModerate, testRng())

	result, err := analyzer.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(result.Skills) != 3 {
		t.Fatalf("skills = %d, want 3", len(result.Skills))
	}
	want := []string{"B", "E", "C"}
	for i, s := range result.Skills {
		if s.Name != want[i] {
			t.Errorf("skills[%d] = %s, want %s", i, s.Name, want[i])
		}
	}
}

func TestAnalyzeFallbackOnEmptyCategory(t *testing.T) {
	// 最大缺口分类下无技能时，从全部技能中随机兜底
	store := newFakeSkillStore(
		schema.Skill{Name: "React", Category: schema.CategoryFullStack, Proficiency: 90},
	)
	weights := map[schema.ProjectCategory]float64{
		schema.CategoryAIML:      80,
		schema.CategoryFullStack: 20,
	}
	analyzer := NewGapAnalyzer(store, weights, AdvancementModerate, testRng())

	result, err := analyzer.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Category != schema.CategoryAIML {
		t.Errorf("category = %s, want %s", result.Category, schema.CategoryAIML)
	}
	if len(result.Skills) != 1 || result.Skills[0].Name != "React" {
		t.Errorf("fallback skills = %v, want [React]", result.Skills)
	}
}

func TestAnalyzeEmptySkillTable(t *testing.T) {
	analyzer := NewGapAnalyzer(newFakeSkillStore(), map[schema.ProjectCategory]float64{
		schema.CategoryAIML: 100,
	}, AdvancementModerate, testRng())

	if _, err := analyzer.Analyze(context.Background()); err == nil {
		t.Fatal("expected error on empty skill table")
	}
}

func TestPickDifficultyThresholds(t *testing.T) {
	tests := []struct {
		rate        AdvancementRate
		proficiency float64
		want        schema.DifficultyLevel
	}{
		{AdvancementSlow, 39, schema.DifficultyBeginner},
		{AdvancementSlow, 40, schema.DifficultyIntermediate},
		{AdvancementSlow, 70, schema.DifficultyAdvanced},
		{AdvancementModerate, 29, schema.DifficultyBeginner},
		{AdvancementModerate, 30, schema.DifficultyIntermediate},
		{AdvancementModerate, 60, schema.DifficultyAdvanced},
		{AdvancementFast, 19, schema.DifficultyBeginner},
		{AdvancementFast, 20, schema.DifficultyIntermediate},
		{AdvancementFast, 50, schema.DifficultyAdvanced},
	}

	for _, tt := range tests {
		analyzer := NewGapAnalyzer(nil, nil, tt.rate, testRng())
		got := analyzer.pickDifficulty([]schema.Skill{{Proficiency: tt.proficiency}})
		if got != tt.want {
			t.Errorf("rate=%s proficiency=%.0f: got %s, want %s", tt.rate, tt.proficiency, got, tt.want)
		}
	}
}
