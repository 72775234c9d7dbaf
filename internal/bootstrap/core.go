package bootstrap

import (
	"math/rand"
	"time"

	"github.com/yuqie6/CodeForge/internal/ai"
	"github.com/yuqie6/CodeForge/internal/gitops"
	"github.com/yuqie6/CodeForge/internal/hosting"
	"github.com/yuqie6/CodeForge/internal/pkg/config"
	"github.com/yuqie6/CodeForge/internal/repository"
	"github.com/yuqie6/CodeForge/internal/schema"
	"github.com/yuqie6/CodeForge/internal/service"
)

// Core 持有跨二进制共享的核心依赖
// 所有协作方在进程启动时构建一次并显式传递，不做全局查找
type Core struct {
	Cfg *config.Config
	DB  *repository.Database

	Repos struct {
		Skill       *repository.SkillRepository
		Project     *repository.ProjectRepository
		Commit      *repository.CommitRepository
		Activity    *repository.ActivityRepository
		Achievement *repository.AchievementRepository
	}

	Clients struct {
		AI      ai.Client
		Git     *gitops.Client
		Hosting *hosting.GitHubClient
	}

	Services struct {
		Analyzer  *service.GapAnalyzer
		Ledger    *service.SkillLedger
		Planner   *service.Planner
		Generator *service.Generator
		Evaluator *service.AchievementEvaluator
	}

	rng *rand.Rand
}

// NewCore 构建核心依赖
func NewCore(cfgPath string) (*Core, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	config.SetupLogger(cfg.App.LogLevel)

	db, err := repository.NewDatabase(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	c := &Core{Cfg: cfg, DB: db}
	c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))

	// Repos
	c.Repos.Skill = repository.NewSkillRepository(db.DB)
	c.Repos.Project = repository.NewProjectRepository(db.DB)
	c.Repos.Commit = repository.NewCommitRepository(db.DB)
	c.Repos.Activity = repository.NewActivityRepository(db.DB)
	c.Repos.Achievement = repository.NewAchievementRepository(db.DB)

	// Clients：生成式后端在构建期按配置选定，不做运行时类型探测
	switch cfg.AI.Provider {
	case "ollama":
		c.Clients.AI = ai.NewOllamaClient(&ai.OllamaConfig{
			BaseURL: cfg.AI.Ollama.BaseURL,
			Model:   cfg.AI.Ollama.Model,
		})
	default:
		c.Clients.AI = ai.NewDeepSeekClient(&ai.DeepSeekConfig{
			APIKey:  cfg.AI.DeepSeek.APIKey,
			BaseURL: cfg.AI.DeepSeek.BaseURL,
			Model:   cfg.AI.DeepSeek.Model,
		})
	}
	c.Clients.Git = gitops.NewClient(&gitops.Config{
		UserName:  cfg.GitHub.Username,
		UserEmail: cfg.GitHub.Email,
		Token:     cfg.GitHub.Token,
	})
	c.Clients.Hosting = hosting.NewGitHubClient(&hosting.GitHubConfig{
		Token:    cfg.GitHub.Token,
		Username: cfg.GitHub.Username,
	})

	// Services
	weights := make(map[schema.ProjectCategory]float64, len(cfg.Skills.FocusAreas))
	for name, w := range cfg.Skills.FocusAreas {
		weights[schema.ProjectCategory(name)] = w
	}
	c.Services.Analyzer = service.NewGapAnalyzer(c.Repos.Skill, weights, service.AdvancementRate(cfg.Skills.AdvancementRate), c.rng)
	c.Services.Ledger = service.NewSkillLedger(c.Repos.Skill, service.DefaultProficiencyPolicy{})
	c.Services.Planner = service.NewPlanner(c.Services.Analyzer, c.Repos.Project, c.Repos.Skill, c.Clients.AI, c.rng)
	c.Services.Generator = service.NewGenerator(c.Clients.AI, cfg.Projects.OutputDirectory)
	c.Services.Evaluator = service.NewAchievementEvaluator(c.Repos.Achievement, c.Repos.Project, c.Repos.Skill, c.Repos.Activity)

	return c, nil
}

// NewWorkflow 组装一次工作流
// confirm 为 nil 时非 auto 模式下发布被跳过
func (c *Core) NewWorkflow(confirm service.ConfirmFunc, dryRun bool) *service.Workflow {
	var hostingBackend service.HostingBackend
	if c.Clients.Hosting.IsConfigured() {
		hostingBackend = c.Clients.Hosting
	}
	return service.NewWorkflow(
		c.Services.Planner,
		c.Services.Generator,
		c.Services.Ledger,
		c.Services.Evaluator,
		c.Repos.Project,
		c.Repos.Commit,
		c.Repos.Activity,
		c.Clients.Git,
		hostingBackend,
		confirm,
		service.WorkflowConfig{
			Mode:              c.Cfg.Automation.Mode,
			CommitMode:        service.CommitMode(c.Cfg.Automation.CommitStrategy),
			DryRun:            dryRun,
			AuthorName:        c.Cfg.GitHub.Username,
			AuthorEmail:       c.Cfg.GitHub.Email,
			DefaultVisibility: c.Cfg.GitHub.DefaultVisibility,
		},
	)
}

// NewScheduler 组装调度器
func (c *Core) NewScheduler(workflow *service.Workflow) *service.Scheduler {
	return service.NewScheduler(service.SchedulerConfig{
		Time:                 c.Cfg.Scheduling.Time,
		Timezone:             c.Cfg.Scheduling.Timezone,
		RandomizationMinutes: c.Cfg.Scheduling.RandomizationMinutes,
		SkipWeekends:         c.Cfg.Scheduling.SkipWeekends,
		RetryOnFailure:       c.Cfg.Scheduling.RetryOnFailure,
		MaxRetries:           c.Cfg.Scheduling.MaxRetries,
	}, workflow, c.rng)
}

// Close 关闭核心依赖资源
func (c *Core) Close() error {
	if c == nil {
		return nil
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
