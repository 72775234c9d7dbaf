package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yuqie6/CodeForge/internal/bootstrap"
	"github.com/yuqie6/CodeForge/internal/pkg/buildinfo"
	"github.com/yuqie6/CodeForge/internal/pkg/config"
	"github.com/yuqie6/CodeForge/internal/repository"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "配置文件路径")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("收到系统退出信号", "signal", sig.String())
		cancel()
	}()

	// 首次运行时落盘默认配置
	if cfgPath == "" {
		if p, err := config.DefaultConfigPath(); err == nil {
			cfgPath = p
			if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
				_ = config.WriteFile(p, config.Default())
			}
		}
	}

	slog.Info("Forge Agent 启动中...", "version", buildinfo.Version, "commit", buildinfo.Commit)

	// 配置变更后整体重建核心依赖再进入下一轮循环
	for {
		restart, err := runAgent(ctx, cfgPath)
		if err != nil {
			slog.Error("Agent 运行失败", "error", err)
			os.Exit(1)
		}
		if !restart {
			break
		}
		slog.Info("配置已变更，重新加载")
	}

	slog.Info("Forge Agent 已退出")
}

// runAgent 构建核心依赖并阻塞运行调度器
// 返回 true 表示配置文件变更，需要重建后继续运行
func runAgent(ctx context.Context, cfgPath string) (bool, error) {
	core, err := bootstrap.NewCore(cfgPath)
	if err != nil {
		return false, err
	}
	defer core.Close()

	if err := repository.SeedDefaults(ctx, core.DB); err != nil {
		return false, err
	}

	if !core.Cfg.Scheduling.Enabled {
		slog.Warn("调度未启用，Agent 退出；可运行 forge run 手动触发")
		return false, nil
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	// 配置热重载：文件写入后取消当前调度循环并重建
	reload := make(chan struct{}, 1)
	if cfgPath != "" {
		watcher, err := watchConfig(cfgPath, reload)
		if err != nil {
			slog.Warn("配置监听启动失败，热重载不可用", "error", err)
		} else {
			defer watcher.Close()
		}
	}

	workflow := core.NewWorkflow(nil, false)
	scheduler := core.NewScheduler(workflow)

	done := make(chan error, 1)
	go func() {
		done <- scheduler.Start(runCtx)
	}()

	select {
	case <-reload:
		cancelRun()
		<-done
		return true, nil
	case err := <-done:
		return false, err
	}
}

// watchConfig 监听配置文件所在目录，文件写入/替换后向 reload 发信号
// 监听目录而不是文件本身，兼容编辑器原子替换写入
func watchConfig(cfgPath string, reload chan<- struct{}) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(cfgPath)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		var debounce *time.Timer
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(cfgPath) {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}
				// 去抖：编辑器保存常触发多次事件
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, func() {
					select {
					case reload <- struct{}{}:
					default:
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("配置监听错误", "error", err)
			}
		}
	}()

	return watcher, nil
}
