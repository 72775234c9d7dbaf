package hosting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ErrRepoExists 远端已存在同名仓库
var ErrRepoExists = errors.New("远端仓库已存在")

// GitHubClient GitHub REST API 客户端
type GitHubClient struct {
	token    string
	username string
	baseURL  string
	client   *http.Client
}

// GitHubConfig 配置
type GitHubConfig struct {
	Token    string
	Username string
	BaseURL  string
}

// NewGitHubClient 创建客户端
func NewGitHubClient(cfg *GitHubConfig) *GitHubClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.github.com"
	}
	return &GitHubClient{
		token:    cfg.Token,
		username: cfg.Username,
		baseURL:  cfg.BaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsConfigured 检查是否已配置凭证
func (c *GitHubClient) IsConfigured() bool {
	return c.token != ""
}

// createRepoRequest 建仓请求
type createRepoRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
	HasIssues   bool   `json:"has_issues"`
	HasWiki     bool   `json:"has_wiki"`
	HasProjects bool   `json:"has_projects"`
}

// repoResponse 仓库信息
type repoResponse struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	CloneURL string `json:"clone_url"`
	Private  bool   `json:"private"`
}

// CreateRepo 创建远端仓库，返回 clone URL
// 同名仓库已存在时返回 ErrRepoExists
func (c *GitHubClient) CreateRepo(ctx context.Context, name, description string, private bool) (string, error) {
	body, err := json.Marshal(createRepoRequest{
		Name:        name,
		Description: description,
		Private:     private,
		HasIssues:   true,
		HasWiki:     false,
		HasProjects: false,
	})
	if err != nil {
		return "", fmt.Errorf("序列化请求失败: %w", err)
	}

	respBody, status, err := c.do(ctx, "POST", "/user/repos", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if status == http.StatusUnprocessableEntity {
		return "", ErrRepoExists
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("创建远端仓库失败: HTTP %d: %s", status, string(respBody))
	}

	var repo repoResponse
	if err := json.Unmarshal(respBody, &repo); err != nil {
		return "", fmt.Errorf("解析仓库信息失败: %w", err)
	}
	slog.Info("远端仓库创建成功", "name", repo.FullName, "url", repo.HTMLURL)
	return repo.CloneURL, nil
}

// DeleteRepo 删除远端仓库
func (c *GitHubClient) DeleteRepo(ctx context.Context, name string) error {
	respBody, status, err := c.do(ctx, "DELETE", fmt.Sprintf("/repos/%s/%s", c.username, name), nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return fmt.Errorf("删除远端仓库失败: HTTP %d: %s", status, string(respBody))
	}
	return nil
}

// ListRepos 列出当前用户的仓库名
func (c *GitHubClient) ListRepos(ctx context.Context) ([]string, error) {
	respBody, status, err := c.do(ctx, "GET", "/user/repos?per_page=100&sort=created", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("查询远端仓库失败: HTTP %d: %s", status, string(respBody))
	}

	var repos []repoResponse
	if err := json.Unmarshal(respBody, &repos); err != nil {
		return nil, fmt.Errorf("解析仓库列表失败: %w", err)
	}
	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.Name)
	}
	return names, nil
}

// do 发送请求并读取响应
func (c *GitHubClient) do(ctx context.Context, method, path string, body io.Reader) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("读取响应失败: %w", err)
	}
	return respBody, resp.StatusCode, nil
}
