package gitops

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Client 基于 git 命令行的本地版本控制后端
type Client struct {
	userName  string
	userEmail string
	token     string
}

// Config 配置
type Config struct {
	UserName  string
	UserEmail string
	Token     string // 推送 HTTPS 远端时注入
}

// NewClient 创建后端
func NewClient(cfg *Config) *Client {
	return &Client{
		userName:  cfg.UserName,
		userEmail: cfg.UserEmail,
		token:     cfg.Token,
	}
}

// run 在指定目录执行 git 命令
func (c *Client) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s 失败: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

// InitRepo 初始化本地仓库并配置提交者身份
func (c *Client) InitRepo(ctx context.Context, dir string) error {
	if _, err := c.run(ctx, dir, "init"); err != nil {
		return err
	}
	if c.userName != "" {
		if _, err := c.run(ctx, dir, "config", "user.name", c.userName); err != nil {
			return err
		}
	}
	if c.userEmail != "" {
		if _, err := c.run(ctx, dir, "config", "user.email", c.userEmail); err != nil {
			return err
		}
	}

	// 保证 .gitignore 存在
	gitignore := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(gitignore); os.IsNotExist(err) {
		content := "__pycache__/\n*.pyc\nvenv/\n.env\n.DS_Store\n"
		if err := os.WriteFile(gitignore, []byte(content), 0644); err != nil {
			return fmt.Errorf("写入 .gitignore 失败: %w", err)
		}
	}
	return nil
}

// Reset 清空暂存区，避免分组提交间互相污染
func (c *Client) Reset(ctx context.Context, dir string) error {
	_, err := c.run(ctx, dir, "reset")
	return err
}

// Stage 暂存指定文件
func (c *Client) Stage(ctx context.Context, dir string, files []string) error {
	for _, f := range files {
		if _, err := c.run(ctx, dir, "add", f); err != nil {
			return err
		}
	}
	return nil
}

// Commit 提交暂存区内容，返回提交哈希
func (c *Client) Commit(ctx context.Context, dir, message string) (string, error) {
	if _, err := c.run(ctx, dir, "commit", "-m", message); err != nil {
		return "", err
	}
	return c.run(ctx, dir, "rev-parse", "HEAD")
}

// CurrentBranch 当前分支名
func (c *Client) CurrentBranch(ctx context.Context, dir string) (string, error) {
	return c.run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
}

// Push 推送当前分支到远端
// HTTPS 地址且配置了 token 时注入凭证
func (c *Client) Push(ctx context.Context, dir, remoteURL, branch string) error {
	pushURL := remoteURL
	if c.token != "" && strings.HasPrefix(remoteURL, "https://") && !strings.Contains(remoteURL, "@") {
		pushURL = strings.Replace(remoteURL, "https://", "https://"+c.token+"@", 1)
	}

	if _, err := c.run(ctx, dir, "remote", "get-url", "origin"); err != nil {
		if _, err := c.run(ctx, dir, "remote", "add", "origin", pushURL); err != nil {
			return err
		}
	} else {
		if _, err := c.run(ctx, dir, "remote", "set-url", "origin", pushURL); err != nil {
			return err
		}
	}

	if branch == "" {
		current, err := c.CurrentBranch(ctx, dir)
		if err != nil {
			return err
		}
		branch = current
	}

	_, err := c.run(ctx, dir, "push", "-u", "origin", branch)
	return err
}
