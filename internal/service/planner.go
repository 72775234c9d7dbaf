package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/yuqie6/CodeForge/internal/ai"
	"github.com/yuqie6/CodeForge/internal/schema"
)

// Brief 完整的项目规格说明，artifact 生成前的最终输入
type Brief struct {
	Title              string                 `json:"title"`
	Description        string                 `json:"description"`
	Category           schema.ProjectCategory `json:"category"`
	Difficulty         schema.DifficultyLevel `json:"difficulty"`
	Technologies       []string               `json:"technologies"`
	PrimaryLanguage    string                 `json:"primary_language"`
	Skills             []string               `json:"skills"`
	LearningObjectives []string               `json:"learning_objectives"`
	Deliverables       []string               `json:"deliverables"`
	EstimatedHours     int                    `json:"estimated_hours"`
	AppType            string                 `json:"app_type"` // script/web/api/system/tool
}

// Planner 项目规划器
// 组合缺口分析、新颖性校验与生成式文本后端，产出项目 Brief 并落库
type Planner struct {
	analyzer *GapAnalyzer
	projects ProjectStore
	skills   SkillStore
	client   TextGenerator
	rng      *rand.Rand
	now      func() time.Time
}

// NewPlanner 创建规划器
func NewPlanner(analyzer *GapAnalyzer, projects ProjectStore, skills SkillStore, client TextGenerator, rng *rand.Rand) *Planner {
	return &Planner{
		analyzer: analyzer,
		projects: projects,
		skills:   skills,
		client:   client,
		rng:      rng,
		now:      time.Now,
	}
}

// GenerateBrief 基于当前技能缺口产出一个项目 Brief
// AI 路径失败时回退到模板，保证总能返回有效 Brief
func (p *Planner) GenerateBrief(ctx context.Context) (*Brief, error) {
	gap, err := p.analyzer.Analyze(ctx)
	if err != nil {
		return nil, fmt.Errorf("缺口分析失败: %w", err)
	}

	skillNames := make([]string, 0, len(gap.Skills))
	for _, s := range gap.Skills {
		skillNames = append(skillNames, s.Name)
	}
	technologies := technologiesForSkills(gap.Skills)

	// 近 7 天项目，用于提示 AI 避免重复
	cutoff := p.now().AddDate(0, 0, -7)
	recent, err := p.projects.GetCreatedSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("查询近期项目失败: %w", err)
	}
	avoidTitles := make([]string, 0, len(recent))
	avoidTechs := make([]string, 0)
	for _, proj := range recent {
		avoidTitles = append(avoidTitles, proj.Title)
		avoidTechs = append(avoidTechs, proj.Technologies...)
	}

	brief := p.generateAIBrief(ctx, gap, skillNames, technologies, avoidTitles, dedupe(avoidTechs))
	if brief == nil {
		brief = p.fallbackBrief(gap.Category, skillNames, technologies, gap.Difficulty)
	}
	return brief, nil
}

// generateAIBrief AI 路径，任何失败返回 nil 交给模板兜底
func (p *Planner) generateAIBrief(ctx context.Context, gap *GapResult, skills, technologies, avoidTitles, avoidTechs []string) *Brief {
	if p.client == nil || !p.client.IsConfigured() {
		return nil
	}

	techPreview := technologies
	if len(techPreview) > 5 {
		techPreview = techPreview[:5]
	}
	avoidT := avoidTitles
	if len(avoidT) > 3 {
		avoidT = avoidT[len(avoidT)-3:]
	}
	avoidTech := avoidTechs
	if len(avoidTech) > 5 {
		avoidTech = avoidTech[len(avoidTech)-5:]
	}

	prompt := fmt.Sprintf(`Generate a unique, portfolio-worthy project idea with the following requirements:

**Category**: %s
**Skills to Develop**: %s
**Difficulty Level**: %s
**Recommended Technologies**: %s

**Constraints**:
- Avoid these recent project titles: %s
- Try to use different technologies than: %s
- Project should be completable in 2-4 hours for initial version
- Must be genuinely useful or educational, not just a toy example
- Should demonstrate industry-relevant skills

**Required Output Format (JSON)**:
{
  "title": "Project title (creative, descriptive, max 60 chars)",
  "description": "2-3 sentence description of what the project does and why it's valuable",
  "technologies": ["tech1", "tech2", "tech3"],
  "primary_language": "main programming language",
  "learning_objectives": ["objective1", "objective2", "objective3"],
  "deliverables": ["file/component1", "file/component2", "README.md", "tests"],
  "estimated_hours": 3,
  "app_type": "script|web|api|system|tool"
}

Generate ONLY the JSON, no additional text.`,
		categoryLabel(gap.Category),
		strings.Join(skills, ", "),
		string(gap.Difficulty),
		strings.Join(techPreview, ", "),
		orNone(avoidT),
		orNone(avoidTech),
	)

	messages := []ai.Message{
		{Role: "system", Content: "You are an expert technical project designer for Computer Science students pursuing careers in AI and software engineering. Generate creative, meaningful project ideas that build real skills and look good in a portfolio."},
		{Role: "user", Content: prompt},
	}

	response, err := ai.ChatWithRetry(ctx, p.client, messages, 0.8, 800, 3)
	if err != nil {
		slog.Warn("AI 生成项目创意失败，使用模板兜底", "error", err)
		return nil
	}

	response = ai.CleanJSONResponse(response)

	var brief Brief
	if err := json.Unmarshal([]byte(response), &brief); err != nil {
		slog.Warn("解析 AI 项目创意失败，使用模板兜底", "error", err)
		return nil
	}
	if strings.TrimSpace(brief.Title) == "" || strings.TrimSpace(brief.Description) == "" {
		slog.Warn("AI 项目创意字段不完整，使用模板兜底")
		return nil
	}

	// 分类、难度、技能由缺口分析决定，不采纳 AI 的值
	brief.Category = gap.Category
	brief.Difficulty = gap.Difficulty
	brief.Skills = skills
	if brief.EstimatedHours <= 0 {
		brief.EstimatedHours = 3
	}
	if !validAppType(brief.AppType) {
		brief.AppType = "script"
	}
	return &brief
}

// briefTemplate 模板兜底项
type briefTemplate struct {
	title       string
	description string
	appType     string
}

// fallbackTemplates 各分类的模板表，{skill}/{tech} 占位
var fallbackTemplates = map[schema.ProjectCategory][]briefTemplate{
	schema.CategoryAIML: {
		{"{skill} Classifier", "Build a classification model using {skill} and {tech} to categorize datasets. Includes data preprocessing, training visualization, and metrics.", "script"},
		{"{skill} Data Analyzer", "A data analysis tool leveraging {skill} to uncover insights. Features pandas integration and matplotlib plotting.", "script"},
		{"Predictive Model with {tech}", "Create a predictive engine using {tech} libraries. Focuses on regression analysis and feature engineering.", "script"},
	},
	schema.CategoryFullStack: {
		{"{skill} Task Manager", "A web-based task management application built with {tech}. Demonstrates CRUD operations and state management.", "web"},
		{"{tech} Dashboard", "Interactive dashboard displaying real-time data using {tech}. Highlights UI/UX principles and component design.", "web"},
		{"{skill} Portfolio API", "RESTful API service for portfolio data, implemented in {tech}. Includes authentication and documentation.", "api"},
	},
	schema.CategorySystemDesign: {
		{"{skill} Load Balancer", "Simulation of a load balancer using {tech}. Demonstrates round-robin and least-connections algorithms.", "system"},
		{"Distributed {skill} Cache", "In-memory caching system designed for distributed environments. Implements LRU eviction and consistency checks.", "system"},
		{"{tech} Rate Limiter", "API rate limiter middleware using {tech}. Explore token bucket and leaky bucket algorithms.", "system"},
	},
	schema.CategorySecurityBlockchain: {
		{"{skill} Encryptor", "File encryption utility using {tech}. Implements AES and RSA standards for secure data storage.", "tool"},
		{"{tech} Vulnerability Scanner", "Automated script to scan for common vulnerabilities. Focuses on {skill} security best practices.", "tool"},
		{"Simple Block Chain in {tech}", "Educational implementation of a blockchain structure. Covers hashing, mining, and transaction validation.", "tool"},
	},
}

// fallbackBrief 模板兜底，永不失败
func (p *Planner) fallbackBrief(category schema.ProjectCategory, skills, technologies []string, difficulty schema.DifficultyLevel) *Brief {
	skillName := "Python"
	if len(skills) > 0 {
		skillName = skills[0]
	}
	tech := "Python"
	if len(technologies) > 0 {
		tech = technologies[0]
	}

	templates, ok := fallbackTemplates[category]
	if !ok {
		templates = fallbackTemplates[schema.CategoryAIML]
	}
	tpl := templates[p.rng.Intn(len(templates))]

	expand := func(s string) string {
		s = strings.ReplaceAll(s, "{skill}", skillName)
		return strings.ReplaceAll(s, "{tech}", tech)
	}

	objectives := make([]string, 0, len(skills)+2)
	for _, s := range skills {
		objectives = append(objectives, "Master "+s)
	}
	objectives = append(objectives, "Understand project structure", "Implement core logic")

	briefTechs := technologies
	if len(briefTechs) > 3 {
		briefTechs = briefTechs[:3]
	}

	return &Brief{
		Title:              expand(tpl.title),
		Description:        expand(tpl.description),
		Category:           category,
		Difficulty:         difficulty,
		Technologies:       briefTechs,
		PrimaryLanguage:    "python",
		Skills:             skills,
		LearningObjectives: objectives,
		Deliverables:       []string{"src/main.py", "README.md", "requirements.txt", "tests/test_core.py"},
		EstimatedHours:     3,
		AppType:            tpl.appType,
	}
}

// ValidateNovelty 新颖性校验
// 历史上存在完全同名项目，或近 30 天内任一标题与候选标题互为子串（忽略大小写）时判为不新颖
func (p *Planner) ValidateNovelty(ctx context.Context, title string) (bool, error) {
	existing, err := p.projects.GetByTitle(ctx, title)
	if err != nil {
		return false, fmt.Errorf("查询同名项目失败: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	cutoff := p.now().AddDate(0, 0, -30)
	recent, err := p.projects.GetCreatedSince(ctx, cutoff)
	if err != nil {
		return false, fmt.Errorf("查询近期项目失败: %w", err)
	}

	titleLower := strings.ToLower(title)
	for _, proj := range recent {
		existingLower := strings.ToLower(proj.Title)
		if strings.Contains(titleLower, existingLower) || strings.Contains(existingLower, titleLower) {
			return false, nil
		}
	}
	return true, nil
}

// CreateProjectRecord 落库：planned 状态的项目记录 + 技能关联
func (p *Planner) CreateProjectRecord(ctx context.Context, brief *Brief) (*schema.Project, error) {
	project := &schema.Project{
		Title:           brief.Title,
		Description:     brief.Description,
		Category:        brief.Category,
		Difficulty:      brief.Difficulty,
		Technologies:    schema.JSONArray(brief.Technologies),
		PrimaryLanguage: brief.PrimaryLanguage,
		Status:          schema.StatusPlanned,
		FileStructure:   schema.JSONStringMap{},
	}
	if err := p.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("创建项目记录失败: %w", err)
	}

	linked, err := p.skills.GetByNames(ctx, brief.Skills)
	if err != nil {
		return nil, fmt.Errorf("查询目标技能失败: %w", err)
	}
	for _, s := range linked {
		link := &schema.ProjectSkill{
			ProjectID:          project.ID,
			SkillID:            s.ID,
			ContributionWeight: 1.0,
		}
		if err := p.projects.LinkSkill(ctx, link); err != nil {
			return nil, fmt.Errorf("关联技能失败: %w", err)
		}
	}

	return project, nil
}

// technologiesForSkills 汇总目标技能的相关技术（去重，保持顺序）
func technologiesForSkills(skills []schema.Skill) []string {
	var techs []string
	for _, s := range skills {
		techs = append(techs, s.RelatedTechnologies...)
	}
	return dedupe(techs)
}

// dedupe 去重并保持首次出现顺序
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

// categoryLabel 分类的展示名（ai_ml → Ai Ml）
func categoryLabel(category schema.ProjectCategory) string {
	parts := strings.Split(string(category), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func validAppType(t string) bool {
	switch t {
	case "script", "web", "api", "system", "tool":
		return true
	}
	return false
}
