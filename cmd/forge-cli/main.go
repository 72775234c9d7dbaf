package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yuqie6/CodeForge/internal/bootstrap"
	"github.com/yuqie6/CodeForge/internal/pkg/buildinfo"
	"github.com/yuqie6/CodeForge/internal/pkg/config"
	"github.com/yuqie6/CodeForge/internal/repository"
	"github.com/yuqie6/CodeForge/internal/schema"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:     "forge",
		Short:   "Forge - 自动化编程成长代理",
		Long:    `Forge 每天挑选一个技能缺口，生成一个小项目并提交到代码仓库，持续积累作品集。`,
		Version: buildinfo.Version,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(skillsCmd())
	rootCmd.AddCommand(achievementsCmd())

	// Ctrl+C 取消正在执行的工作流/调度循环
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// openCore 构建核心依赖并确保种子数据存在
func openCore(ctx context.Context) (*bootstrap.Core, error) {
	core, err := bootstrap.NewCore(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := repository.SeedDefaults(ctx, core.DB); err != nil {
		core.Close()
		return nil, err
	}
	return core, nil
}

// initCmd 初始化配置文件与数据库
func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "初始化配置文件和数据库",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if path == "" {
				var err error
				path, err = config.DefaultConfigPath()
				if err != nil {
					return err
				}
			}

			if _, err := os.Stat(path); err == nil {
				fmt.Printf("⚠️  配置文件已存在: %s\n", path)
			} else {
				if err := config.WriteFile(path, config.Default()); err != nil {
					return err
				}
				fmt.Printf("✅ 已生成配置文件: %s\n", path)
			}

			ctx := context.Background()
			core, err := openCore(ctx)
			if err != nil {
				return err
			}
			defer core.Close()

			fmt.Println("✅ 数据库初始化完成")
			fmt.Println("\n下一步:")
			fmt.Println("  1. 编辑配置文件，填写 GitHub 用户名和 token")
			fmt.Println("  2. 设置环境变量 GITHUB_TOKEN 和 DEEPSEEK_API_KEY")
			fmt.Println("  3. 运行 'forge run --dry-run' 本地验证一次")
			return nil
		},
	}
}

// runCmd 立即执行一次日常工作流
func runCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "立即执行一次日常工作流",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			core, err := openCore(ctx)
			if err != nil {
				return err
			}
			defer core.Close()

			// 交互式确认：review/manual 模式下发布前询问
			confirm := func(ctx context.Context, prompt string) (bool, error) {
				fmt.Printf("%s [y/N]: ", prompt)
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return false, err
				}
				answer := strings.ToLower(strings.TrimSpace(line))
				return answer == "y" || answer == "yes", nil
			}

			workflow := core.NewWorkflow(confirm, dryRun)
			project, err := workflow.RunDaily(ctx)
			if err != nil {
				return err
			}

			fmt.Println("\n═══════════════════════════════════════")
			fmt.Printf("✅ 今日项目完成: %s\n", project.Title)
			fmt.Printf("   分类: %s | 难度: %s | 代码行数: %d\n",
				project.Category, project.Difficulty, project.LinesOfCode)
			if project.RepositoryURL != "" {
				fmt.Printf("   远端仓库: %s\n", project.RepositoryURL)
			}
			fmt.Println("═══════════════════════════════════════")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "只本地生成与提交，不发布远端")

	return cmd
}

// scheduleCmd 前台运行调度循环
func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "前台运行每日调度循环",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			core, err := openCore(ctx)
			if err != nil {
				return err
			}
			defer core.Close()

			if !core.Cfg.Scheduling.Enabled {
				return fmt.Errorf("调度未启用，请在配置中设置 scheduling.enabled: true")
			}

			workflow := core.NewWorkflow(nil, false)
			scheduler := core.NewScheduler(workflow)

			slog.Info("按 Ctrl+C 退出")
			return scheduler.Start(ctx)
		},
	}
}

// statsCmd 查看整体统计
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "查看整体统计与作品集评分",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			core, err := openCore(ctx)
			if err != nil {
				return err
			}
			defer core.Close()

			totalProjects, err := core.Repos.Project.Count(ctx)
			if err != nil {
				return err
			}
			completed, err := core.Repos.Project.CountByStatus(ctx, schema.StatusCompleted)
			if err != nil {
				return err
			}
			avgProficiency, err := core.Repos.Skill.AverageProficiency(ctx)
			if err != nil {
				return err
			}
			streak, err := core.Services.Evaluator.CurrentStreak(ctx)
			if err != nil {
				return err
			}
			score, err := core.Services.Evaluator.PortfolioScore(ctx)
			if err != nil {
				return err
			}
			recentProjects, err := core.Repos.Project.GetRecent(ctx, 5)
			if err != nil {
				return err
			}
			recentActivity, err := core.Repos.Activity.GetRecent(ctx, 7)
			if err != nil {
				return err
			}

			fmt.Println("📊 Forge 统计")
			fmt.Println("═══════════════════════════════════════")
			fmt.Printf("  • 项目总数: %d (完成 %d)\n", totalProjects, completed)
			fmt.Printf("  • 平均熟练度: %.1f\n", avgProficiency)
			fmt.Printf("  • 连续打卡: %d 天\n", streak)
			fmt.Printf("  • 作品集评分: %.1f / 100\n", score)

			if len(recentProjects) > 0 {
				fmt.Println("\n🕐 最近项目")
				for _, p := range recentProjects {
					fmt.Printf("  • %s  %s [%s]\n",
						p.CreatedAt.Format("01-02"), p.Title, p.Status)
				}
			}
			if len(recentActivity) > 0 {
				fmt.Println("\n📅 最近活动")
				for _, a := range recentActivity {
					mark := "✅"
					if !a.ExecutionSuccessful {
						mark = "❌"
					}
					fmt.Printf("  %s %s  提交 %d 次 · +%d 行\n",
						mark, a.Date, a.CommitsMade, a.LinesAdded)
				}
			}
			fmt.Println("═══════════════════════════════════════")
			return nil
		},
	}
}

// skillsCmd 查看技能熟练度
func skillsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skills",
		Short: "查看技能熟练度",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			core, err := openCore(ctx)
			if err != nil {
				return err
			}
			defer core.Close()

			categoryNames := map[schema.ProjectCategory]string{
				schema.CategoryAIML:               "🤖 AI / 机器学习",
				schema.CategoryFullStack:          "🌐 全栈开发",
				schema.CategorySystemDesign:       "⚙️ 系统设计",
				schema.CategorySecurityBlockchain: "🔐 安全与区块链",
			}

			fmt.Println("🌳 技能树")
			fmt.Println("═══════════════════════════════════════")

			for _, category := range schema.AllCategories() {
				skills, err := core.Repos.Skill.GetByCategory(ctx, category)
				if err != nil {
					return err
				}
				if len(skills) == 0 {
					continue
				}

				fmt.Printf("\n%s\n", categoryNames[category])
				for _, skill := range skills {
					barWidth := 20
					filled := int(skill.Proficiency / 100 * float64(barWidth))
					bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
					fmt.Printf("  %-24s [%s] %5.1f  (%d 个项目)\n",
						skill.Name, bar, skill.Proficiency, skill.ProjectsCount)
				}
			}

			fmt.Println("\n═══════════════════════════════════════")
			return nil
		},
	}
}

// achievementsCmd 查看成就解锁情况
func achievementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "查看成就解锁情况",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			core, err := openCore(ctx)
			if err != nil {
				return err
			}
			defer core.Close()

			achievements, err := core.Repos.Achievement.GetAll(ctx)
			if err != nil {
				return err
			}

			unlocked := 0
			for _, a := range achievements {
				if a.IsUnlocked {
					unlocked++
				}
			}

			fmt.Printf("🏆 成就 (%d / %d 已解锁)\n", unlocked, len(achievements))
			fmt.Println("═══════════════════════════════════════")
			for _, a := range achievements {
				status := "🔒"
				when := ""
				if a.IsUnlocked {
					status = a.Icon
					if a.UnlockedAt != nil {
						when = " · " + a.UnlockedAt.Format("2006-01-02")
					}
				}
				fmt.Printf("  %s %s — %s%s\n", status, a.Name, a.Description, when)
			}
			fmt.Println("═══════════════════════════════════════")
			return nil
		},
	}
}
