package gh

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"projsync/internal/models"
)

func TestCreatePullRequest(t *testing.T) {
	var payload map[string]interface{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/repos/octocat/hello/pulls" {
			json.NewDecoder(r.Body).Decode(&payload)
			writeJSON(w, 201, map[string]interface{}{
				"number":   5,
				"html_url": "https://github.com/octocat/hello/pull/5",
			})
			return
		}
		writeJSON(w, 404, map[string]string{"message": "Not Found"})
	})

	s, cleanup := setupTest(t, handler)
	defer cleanup()

	project, _ := createConnectedProject(t, s, "alpha")
	task := &models.Task{ProjectID: project.ID, Title: "Fix login", Stage: "In Progress", BranchName: "feature-x"}
	if err := s.db.Create(task).Error; err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	// Empty title and base fall back to task title and default branch
	if err := s.CreatePullRequest(context.Background(), project, task, "", "", ""); err != nil {
		t.Fatalf("CreatePullRequest() error: %v", err)
	}

	if payload["title"] != "Fix login" {
		t.Errorf("title = %v, want Fix login", payload["title"])
	}
	if payload["head"] != "feature-x" {
		t.Errorf("head = %v, want feature-x", payload["head"])
	}
	if payload["base"] != "main" {
		t.Errorf("base = %v, want main", payload["base"])
	}

	var reloaded models.Task
	s.db.Where("id = ?", task.ID).First(&reloaded)
	if reloaded.PullNumber != 5 {
		t.Errorf("pull number = %d, want 5", reloaded.PullNumber)
	}
	if reloaded.PullURL != "https://github.com/octocat/hello/pull/5" {
		t.Errorf("pull url = %s", reloaded.PullURL)
	}
	if reloaded.PullMerged {
		t.Error("new pull request must not be flagged merged")
	}
}

func TestCreatePullRequestNoBranch(t *testing.T) {
	s, cleanup := setupTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer cleanup()

	project, _ := createConnectedProject(t, s, "alpha")
	task := &models.Task{ProjectID: project.ID, Title: "No branch", Stage: "New"}
	if err := s.db.Create(task).Error; err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	err := s.CreatePullRequest(context.Background(), project, task, "", "", "")
	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("CreatePullRequest() error = %v, want StateError", err)
	}
}

func TestMergePullRequest(t *testing.T) {
	var payload map[string]interface{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/repos/octocat/hello/pulls/5/merge" {
			json.NewDecoder(r.Body).Decode(&payload)
			writeJSON(w, 200, map[string]interface{}{
				"merged":  true,
				"message": "Pull Request successfully merged",
			})
			return
		}
		writeJSON(w, 404, map[string]string{"message": "Not Found"})
	})

	s, cleanup := setupTest(t, handler)
	defer cleanup()

	project, _ := createConnectedProject(t, s, "alpha")
	task := &models.Task{
		ProjectID:  project.ID,
		Title:      "Fix login",
		Stage:      "In Progress",
		BranchName: "feature-x",
		PullNumber: 5,
		PullURL:    "https://github.com/octocat/hello/pull/5",
	}
	if err := s.db.Create(task).Error; err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	if err := s.MergePullRequest(context.Background(), project, task); err != nil {
		t.Fatalf("MergePullRequest() error: %v", err)
	}

	if payload["commit_title"] != "Merge pull request #5 from feature-x" {
		t.Errorf("commit title = %v", payload["commit_title"])
	}
	if payload["merge_method"] != "merge" {
		t.Errorf("merge method = %v", payload["merge_method"])
	}

	var reloaded models.Task
	s.db.Where("id = ?", task.ID).First(&reloaded)
	if reloaded.PullNumber != 0 || reloaded.PullURL != "" {
		t.Error("pull reference not cleared after merge")
	}
	if !reloaded.PullMerged {
		t.Error("merged flag not set")
	}

	// The audit entry references the pre-clear url and number
	var audit models.AuditLog
	if err := s.db.Where("task_id = ?", task.ID).First(&audit).Error; err != nil {
		t.Fatalf("audit entry missing: %v", err)
	}
	if audit.Link != "https://github.com/octocat/hello/pull/5" {
		t.Errorf("audit link = %s", audit.Link)
	}
	if audit.Message != "Pull request #5 merged" {
		t.Errorf("audit message = %s", audit.Message)
	}
}

func TestMergePullRequestNotMerged(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]interface{}{
			"merged":  false,
			"message": "Pull Request is not mergeable",
		})
	})

	s, cleanup := setupTest(t, handler)
	defer cleanup()

	project, _ := createConnectedProject(t, s, "alpha")
	task := &models.Task{
		ProjectID:  project.ID,
		Title:      "Conflicted",
		Stage:      "In Progress",
		BranchName: "feature-x",
		PullNumber: 5,
		PullURL:    "https://github.com/octocat/hello/pull/5",
	}
	if err := s.db.Create(task).Error; err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	err := s.MergePullRequest(context.Background(), project, task)
	var rejection *RemoteRejectionError
	if !errors.As(err, &rejection) {
		t.Fatalf("MergePullRequest() error = %v, want RemoteRejectionError", err)
	}
	if rejection.StatusCode != 405 {
		t.Errorf("status = %d, want 405", rejection.StatusCode)
	}

	// References survive a failed merge
	var reloaded models.Task
	s.db.Where("id = ?", task.ID).First(&reloaded)
	if reloaded.PullNumber != 5 || reloaded.PullMerged {
		t.Error("pull state must be unchanged after a failed merge")
	}
}

func TestMergePullRequestWithoutPull(t *testing.T) {
	s, cleanup := setupTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer cleanup()

	project, _ := createConnectedProject(t, s, "alpha")
	task := &models.Task{ProjectID: project.ID, Title: "No PR", Stage: "New"}
	if err := s.db.Create(task).Error; err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	err := s.MergePullRequest(context.Background(), project, task)
	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("MergePullRequest() error = %v, want StateError", err)
	}
}
