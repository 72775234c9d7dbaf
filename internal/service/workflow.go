package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuqie6/CodeForge/internal/hosting"
	"github.com/yuqie6/CodeForge/internal/schema"
)

// WorkflowConfig 工作流运行参数
type WorkflowConfig struct {
	Mode              string     // auto / review / manual
	CommitMode        CommitMode // smart / detailed
	DryRun            bool       // 只本地生成与提交，不发布远端
	AuthorName        string
	AuthorEmail       string
	DefaultVisibility string // public / private
}

// Workflow 日常工作流编排器
// 状态机：planned → in_progress → {completed, failed}，步骤严格顺序执行
type Workflow struct {
	planner   *Planner
	generator *Generator
	ledger    *SkillLedger
	evaluator *AchievementEvaluator

	projects   ProjectStore
	commits    CommitStore
	activities ActivityStore

	vcs     RepoBackend
	hosting HostingBackend
	confirm ConfirmFunc

	cfg WorkflowConfig
	now func() time.Time
}

// NewWorkflow 创建编排器
// confirm 为 nil 时 review/manual 模式下跳过发布
func NewWorkflow(
	planner *Planner,
	generator *Generator,
	ledger *SkillLedger,
	evaluator *AchievementEvaluator,
	projects ProjectStore,
	commits CommitStore,
	activities ActivityStore,
	vcs RepoBackend,
	hostingBackend HostingBackend,
	confirm ConfirmFunc,
	cfg WorkflowConfig,
) *Workflow {
	return &Workflow{
		planner:    planner,
		generator:  generator,
		ledger:     ledger,
		evaluator:  evaluator,
		projects:   projects,
		commits:    commits,
		activities: activities,
		vcs:        vcs,
		hosting:    hostingBackend,
		confirm:    confirm,
		cfg:        cfg,
		now:        time.Now,
	}
}

// RunDaily 执行一次完整的日常工作流
// 任一关键步骤失败即中止后续步骤并返回错误；已创建的项目记录可能停留在
// in_progress（不做补偿流转，留给人工处理）
func (w *Workflow) RunDaily(ctx context.Context) (*schema.Project, error) {
	started := w.now()

	// 步骤 1：生成项目 Brief
	brief, err := w.planner.GenerateBrief(ctx)
	if err != nil {
		return nil, fmt.Errorf("生成项目创意失败: %w", err)
	}
	slog.Info("项目创意生成",
		"title", brief.Title,
		"category", brief.Category,
		"difficulty", brief.Difficulty,
	)

	// 步骤 2：新颖性软校验，不新颖仅告警
	novel, err := w.planner.ValidateNovelty(ctx, brief.Title)
	if err != nil {
		return nil, fmt.Errorf("新颖性校验失败: %w", err)
	}
	if !novel {
		slog.Warn("存在相似项目，继续执行", "title", brief.Title)
	}

	// 步骤 3：落库并流转到 in_progress
	project, err := w.planner.CreateProjectRecord(ctx, brief)
	if err != nil {
		return nil, err
	}
	startedAt := w.now()
	project.Status = schema.StatusInProgress
	project.StartedAt = &startedAt
	if err := w.projects.Save(ctx, project); err != nil {
		return nil, err
	}

	// 步骤 4：生成项目产物
	projectDir, files, err := w.generator.GenerateProject(ctx, brief, project)
	if err != nil {
		return nil, fmt.Errorf("生成项目产物失败: %w", err)
	}
	// 文档步骤：README 已由生成器产出，覆盖率为合成占位值
	project.HasReadme = true
	project.DocumentationCoverage = 100.0
	if err := w.projects.Save(ctx, project); err != nil {
		return nil, err
	}

	// 步骤 5：提交分组并逐组执行
	candidates := w.generator.GenerateCommitMessages(ctx, brief)
	groups := BuildCommitGroups(files, candidates, w.cfg.CommitMode)

	if err := w.vcs.InitRepo(ctx, projectDir); err != nil {
		return nil, fmt.Errorf("初始化本地仓库失败: %w", err)
	}

	commitsMade := 0
	for _, group := range groups {
		hash, err := w.commitGroup(ctx, projectDir, group)
		if err != nil {
			// 单组失败不影响其余分组，部分提交历史是可接受结果
			slog.Warn("提交分组失败，跳过", "message", group.Message, "error", err)
			continue
		}
		record := &schema.CommitRecord{
			ProjectID:     project.ID,
			CommitHash:    hash,
			CommitMessage: group.Message,
			CommitType:    schema.InferCommitType(group.Message),
			FilesChanged:  schema.JSONArray(group.Files),
			Additions:     countFileLines(projectDir, group.Files),
			AuthorName:    w.cfg.AuthorName,
			CommittedAt:   w.now(),
		}
		if err := w.commits.Create(ctx, record); err != nil {
			return nil, err
		}
		commitsMade++
	}

	// 步骤 6：远端发布
	if err := w.publish(ctx, project, projectDir); err != nil {
		return nil, err
	}

	// 步骤 7：熟练度更新
	if err := w.ledger.ApplyProjectCompletion(ctx, brief.Skills, brief.Difficulty, 1.0); err != nil {
		return nil, fmt.Errorf("更新熟练度失败: %w", err)
	}

	// 步骤 8：流转到 completed
	completedAt := w.now()
	project.Status = schema.StatusCompleted
	project.CompletedAt = &completedAt
	project.CodeQualityScore = 75.0 // 合成占位值
	if err := w.projects.Save(ctx, project); err != nil {
		return nil, err
	}

	// 步骤 9：当日活动汇总
	if err := w.logDailyActivity(ctx, project, brief, commitsMade, w.now().Sub(started)); err != nil {
		return nil, fmt.Errorf("记录每日活动失败: %w", err)
	}

	// 步骤 10：成就评估
	unlocked, err := w.evaluator.EvaluateAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("评估成就失败: %w", err)
	}
	for _, a := range unlocked {
		slog.Info("解锁成就", "name", a.Name, "icon", a.Icon)
	}

	slog.Info("工作流执行完成",
		"project_id", project.ID,
		"dir", projectDir,
		"commits", commitsMade,
		"duration", w.now().Sub(started).Round(time.Second),
	)
	return project, nil
}

// commitGroup 执行单个提交组：清空暂存区 → 暂存组内文件 → 提交
func (w *Workflow) commitGroup(ctx context.Context, dir string, group CommitGroup) (string, error) {
	if err := w.vcs.Reset(ctx, dir); err != nil {
		return "", err
	}
	if err := w.vcs.Stage(ctx, dir, group.Files); err != nil {
		return "", err
	}
	return w.vcs.Commit(ctx, dir, group.Message)
}

// publish 决定并执行远端发布
// dry-run 直接跳过；auto 无条件发布；review/manual 需确认，无确认能力时跳过
// 远端失败只告警，本地产物与提交历史保留
func (w *Workflow) publish(ctx context.Context, project *schema.Project, projectDir string) error {
	if w.cfg.DryRun {
		slog.Info("dry-run 模式，跳过远端发布")
		return nil
	}
	if w.hosting == nil {
		slog.Warn("未配置远端托管，跳过发布")
		return nil
	}

	shouldPush := false
	switch w.cfg.Mode {
	case "auto":
		shouldPush = true
	default:
		if w.confirm == nil {
			slog.Warn("非交互环境无法确认，跳过远端发布", "mode", w.cfg.Mode)
			return nil
		}
		ok, err := w.confirm(ctx, fmt.Sprintf("项目已生成于 %s，现在发布到远端吗？", projectDir))
		if err != nil {
			return fmt.Errorf("发布确认失败: %w", err)
		}
		shouldPush = ok
	}
	if !shouldPush {
		slog.Info("发布被跳过，可稍后手动推送")
		return nil
	}

	// 仓库名加时间戳后缀，避免远端与本地唯一索引撞名
	baseName := SanitizeName(project.Title)
	repoName := fmt.Sprintf("%s-%d", baseName, w.now().Unix())
	project.RepositoryName = repoName
	project.IsPrivate = w.cfg.DefaultVisibility == "private"

	remoteURL, err := w.hosting.CreateRepo(ctx, repoName, project.Description, project.IsPrivate)
	if err != nil {
		if errors.Is(err, hosting.ErrRepoExists) {
			slog.Warn("远端仓库已存在，跳过发布", "name", repoName)
			return nil
		}
		slog.Warn("创建远端仓库失败，跳过发布", "error", err)
		return nil
	}
	project.RepositoryURL = remoteURL

	if err := w.vcs.Push(ctx, projectDir, remoteURL, ""); err != nil {
		slog.Warn("推送远端失败，本地提交历史保留", "error", err)
		return nil
	}
	slog.Info("已发布到远端", "url", remoteURL)
	return nil
}

// logDailyActivity upsert 今天的活动汇总行
func (w *Workflow) logDailyActivity(ctx context.Context, project *schema.Project, brief *Brief, commitsMade int, duration time.Duration) error {
	today := w.now().Format("2006-01-02")

	activity, err := w.activities.GetByDate(ctx, today)
	if err != nil {
		return err
	}
	if activity == nil {
		activity = &schema.DailyActivity{Date: today}
	}

	activity.ProjectsCreated++
	activity.ProjectsCompleted++
	activity.CommitsMade += commitsMade
	activity.LinesAdded += project.LinesOfCode
	activity.ExecutionSuccessful = true
	activity.ExecutionSeconds = duration.Seconds()

	activity.SkillsPracticed = schema.JSONArray(dedupe(append([]string(activity.SkillsPracticed), brief.Skills...)))
	activity.TechnologiesUsed = schema.JSONArray(dedupe(append([]string(activity.TechnologiesUsed), project.Technologies...)))

	return w.activities.Upsert(ctx, activity)
}

// countFileLines 估算一组文件的行数，读不到的文件忽略
func countFileLines(baseDir string, files []string) int {
	total := 0
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(baseDir, f))
		if err != nil {
			continue
		}
		total += len(strings.Split(string(data), "\n"))
	}
	return total
}
