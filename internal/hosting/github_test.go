package hosting

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateRepo(t *testing.T) {
	var gotReq createRepoRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/repos" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Errorf("Authorization = %q", auth)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(repoResponse{
			Name:     gotReq.Name,
			FullName: "dev/" + gotReq.Name,
			CloneURL: "https://github.com/dev/" + gotReq.Name + ".git",
		})
	}))
	defer server.Close()

	client := NewGitHubClient(&GitHubConfig{Token: "tok", Username: "dev", BaseURL: server.URL})

	url, err := client.CreateRepo(context.Background(), "forge-demo-123", "demo", false)
	if err != nil {
		t.Fatalf("CreateRepo: %v", err)
	}
	if url != "https://github.com/dev/forge-demo-123.git" {
		t.Errorf("url = %q", url)
	}
	if !gotReq.HasIssues || gotReq.HasWiki || gotReq.HasProjects {
		t.Errorf("repo flags = %+v", gotReq)
	}
}

func TestCreateRepoAlreadyExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewGitHubClient(&GitHubConfig{Token: "tok", BaseURL: server.URL})

	_, err := client.CreateRepo(context.Background(), "dup", "", false)
	if !errors.Is(err, ErrRepoExists) {
		t.Fatalf("err = %v, want ErrRepoExists", err)
	}
}

func TestDeleteRepo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/dev/forge-demo-123" || r.Method != http.MethodDelete {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewGitHubClient(&GitHubConfig{Token: "tok", Username: "dev", BaseURL: server.URL})

	if err := client.DeleteRepo(context.Background(), "forge-demo-123"); err != nil {
		t.Fatalf("DeleteRepo: %v", err)
	}
}

func TestDeleteRepoForbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewGitHubClient(&GitHubConfig{Token: "tok", Username: "dev", BaseURL: server.URL})

	if err := client.DeleteRepo(context.Background(), "forge-demo-123"); err == nil {
		t.Fatal("expected error for non-204 response")
	}
}

func TestListRepos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/repos" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]repoResponse{
			{Name: "forge-alpha-1"},
			{Name: "forge-beta-2"},
		})
	}))
	defer server.Close()

	client := NewGitHubClient(&GitHubConfig{Token: "tok", Username: "dev", BaseURL: server.URL})

	names, err := client.ListRepos(context.Background())
	if err != nil {
		t.Fatalf("ListRepos: %v", err)
	}
	if len(names) != 2 || names[0] != "forge-alpha-1" || names[1] != "forge-beta-2" {
		t.Errorf("names = %v", names)
	}
}

func TestIsConfigured(t *testing.T) {
	if NewGitHubClient(&GitHubConfig{}).IsConfigured() {
		t.Error("empty token should not be configured")
	}
	if !NewGitHubClient(&GitHubConfig{Token: "tok"}).IsConfigured() {
		t.Error("token set should be configured")
	}
}
