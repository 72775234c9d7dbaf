package repository

import (
	"context"
	"testing"
	"time"

	"github.com/yuqie6/CodeForge/internal/schema"
	"github.com/yuqie6/CodeForge/internal/testutil"
)

func TestProjectRepositoryGetCreatedSince(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	old := schema.Project{Title: "Old", Description: "d"}
	if err := repo.Create(ctx, &old); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// created_at 回拨到 40 天前
	db.Model(&old).Update("created_at", time.Now().AddDate(0, 0, -40))

	fresh := schema.Project{Title: "Fresh", Description: "d"}
	if err := repo.Create(ctx, &fresh); err != nil {
		t.Fatalf("Create: %v", err)
	}

	projects, err := repo.GetCreatedSince(ctx, time.Now().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("GetCreatedSince: %v", err)
	}
	if len(projects) != 1 || projects[0].Title != "Fresh" {
		t.Errorf("projects = %+v, want [Fresh]", projects)
	}
}

func TestProjectRepositoryGetRecent(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, title := range []string{"First", "Second", "Third"} {
		p := schema.Project{Title: title, Description: "d"}
		if err := repo.Create(ctx, &p); err != nil {
			t.Fatalf("Create: %v", err)
		}
		// 拉开创建时间，保证倒序可判定
		db.Model(&p).Update("created_at", base.Add(time.Duration(i)*time.Minute))
	}

	recent, err := repo.GetRecent(ctx, 2)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent = %d 条, want 2", len(recent))
	}
	if recent[0].Title != "Third" || recent[1].Title != "Second" {
		t.Errorf("recent = [%s, %s], want [Third, Second]", recent[0].Title, recent[1].Title)
	}
}

func TestProjectRepositoryCountByStatus(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	for _, status := range []schema.ProjectStatus{
		schema.StatusCompleted, schema.StatusCompleted, schema.StatusInProgress,
	} {
		p := schema.Project{Title: "p", Description: "d", Status: status}
		if err := repo.Create(ctx, &p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	count, err := repo.CountByStatus(ctx, schema.StatusCompleted)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if count != 2 {
		t.Errorf("completed = %d, want 2", count)
	}
}

func TestProjectRepositorySkillLinks(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	p := schema.Project{Title: "p", Description: "d"}
	if err := repo.Create(ctx, &p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.LinkSkill(ctx, &schema.ProjectSkill{ProjectID: p.ID, SkillID: 1, ContributionWeight: 1.0}); err != nil {
		t.Fatalf("LinkSkill: %v", err)
	}

	links, err := repo.GetSkillLinks(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetSkillLinks: %v", err)
	}
	if len(links) != 1 || links[0].SkillID != 1 {
		t.Errorf("links = %+v", links)
	}
}
