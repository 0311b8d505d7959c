package gh

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"projsync/internal/models"
)

func TestPrepareIssueRequest(t *testing.T) {
	task := &models.Task{
		Title:       "Fix login",
		Description: "The login form breaks",
		Stage:       "In Progress",
		Tags:        models.StringSlice{"Bug", "URGENT"},
		Assignees:   models.StringSlice{"octocat"},
	}

	req := PrepareIssueRequest(task)

	if req.GetTitle() != "Fix login" {
		t.Errorf("title = %s", req.GetTitle())
	}
	if req.GetBody() != "The login form breaks" {
		t.Errorf("body = %s", req.GetBody())
	}
	if req.GetState() != "open" {
		t.Errorf("state = %s, want open", req.GetState())
	}
	if req.Labels == nil || len(*req.Labels) != 2 {
		t.Fatalf("labels = %v", req.Labels)
	}
	// Tags are lowercased on the way out
	if (*req.Labels)[0] != "bug" || (*req.Labels)[1] != "urgent" {
		t.Errorf("labels = %v, want [bug urgent]", *req.Labels)
	}
	if req.Assignees == nil || (*req.Assignees)[0] != "octocat" {
		t.Errorf("assignees = %v", req.Assignees)
	}

	// Same input, same payload
	again := PrepareIssueRequest(task)
	if again.GetTitle() != req.GetTitle() || again.GetState() != req.GetState() {
		t.Error("payload is not deterministic")
	}
}

func TestPrepareIssueRequestDefaults(t *testing.T) {
	task := &models.Task{Title: "Bare task", Stage: "Done"}
	req := PrepareIssueRequest(task)

	if req.GetBody() != "No description provided." {
		t.Errorf("body = %q, want placeholder", req.GetBody())
	}
	if req.GetState() != "closed" {
		t.Errorf("state = %s, want closed", req.GetState())
	}
	if req.Labels != nil {
		t.Errorf("labels = %v, want nil", req.Labels)
	}
	if req.Assignees != nil {
		t.Errorf("assignees = %v, want nil", req.Assignees)
	}
}

func TestCreateIssue(t *testing.T) {
	var payload map[string]interface{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/repos/octocat/hello/issues" {
			json.NewDecoder(r.Body).Decode(&payload)
			writeJSON(w, 201, map[string]interface{}{
				"number":   42,
				"html_url": "https://github.com/octocat/hello/issues/42",
			})
			return
		}
		writeJSON(w, 404, map[string]string{"message": "Not Found"})
	})

	s, cleanup := setupTest(t, handler)
	defer cleanup()

	project, _ := createConnectedProject(t, s, "alpha")
	task := &models.Task{ProjectID: project.ID, Title: "Fix login", Stage: "New"}
	if err := s.db.Create(task).Error; err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	if err := s.CreateIssue(context.Background(), project, task); err != nil {
		t.Fatalf("CreateIssue() error: %v", err)
	}

	if payload["state"] != "open" {
		t.Errorf("request state = %v, want open", payload["state"])
	}
	if payload["title"] != "Fix login" {
		t.Errorf("request title = %v", payload["title"])
	}
	if payload["body"] != "No description provided." {
		t.Errorf("request body = %v", payload["body"])
	}

	if task.IssueNumber != 42 {
		t.Errorf("task issue number = %d, want 42", task.IssueNumber)
	}

	var reloaded models.Task
	s.db.Where("id = ?", task.ID).First(&reloaded)
	if reloaded.IssueNumber != 42 {
		t.Errorf("persisted issue number = %d, want 42", reloaded.IssueNumber)
	}
	if reloaded.IssueURL != "https://github.com/octocat/hello/issues/42" {
		t.Errorf("persisted issue url = %s", reloaded.IssueURL)
	}

	var audits int64
	s.db.Model(&models.AuditLog{}).Where("task_id = ?", task.ID).Count(&audits)
	if audits != 1 {
		t.Errorf("audit entries = %d, want 1", audits)
	}
}

func TestCreateIssueEnsuresLabels(t *testing.T) {
	var createdLabel map[string]interface{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/repos/octocat/hello/labels" && r.Method == http.MethodGet:
			writeJSON(w, 200, []map[string]interface{}{{"name": "bug"}})
		case r.URL.Path == "/repos/octocat/hello/labels" && r.Method == http.MethodPost:
			json.NewDecoder(r.Body).Decode(&createdLabel)
			writeJSON(w, 201, map[string]interface{}{"name": createdLabel["name"]})
		case r.URL.Path == "/repos/octocat/hello/issues" && r.Method == http.MethodPost:
			writeJSON(w, 201, map[string]interface{}{
				"number":   8,
				"html_url": "https://github.com/octocat/hello/issues/8",
			})
		default:
			writeJSON(w, 404, map[string]string{"message": "Not Found"})
		}
	})

	s, cleanup := setupTest(t, handler)
	defer cleanup()

	project, _ := createConnectedProject(t, s, "alpha")
	task := &models.Task{
		ProjectID: project.ID,
		Title:     "Tagged task",
		Stage:     "New",
		Tags:      models.StringSlice{"bug", "frontend"},
	}
	if err := s.db.Create(task).Error; err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	if err := s.CreateIssue(context.Background(), project, task); err != nil {
		t.Fatalf("CreateIssue() error: %v", err)
	}

	// Only the unknown label gets created, with the fixed color
	if createdLabel["name"] != "frontend" {
		t.Errorf("created label = %v, want frontend", createdLabel["name"])
	}
	if createdLabel["color"] != "a64d79" {
		t.Errorf("label color = %v, want a64d79", createdLabel["color"])
	}
}

func TestCreateIssueResolvesMilestone(t *testing.T) {
	var issuePayload map[string]interface{}
	milestoneCreated := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/repos/octocat/hello/milestones" && r.Method == http.MethodGet:
			writeJSON(w, 200, []map[string]interface{}{
				{"number": 3, "title": "v1.0"},
			})
		case r.URL.Path == "/repos/octocat/hello/milestones" && r.Method == http.MethodPost:
			milestoneCreated = true
			writeJSON(w, 201, map[string]interface{}{"number": 9, "title": "v2.0"})
		case r.URL.Path == "/repos/octocat/hello/issues" && r.Method == http.MethodPost:
			json.NewDecoder(r.Body).Decode(&issuePayload)
			writeJSON(w, 201, map[string]interface{}{
				"number":   10,
				"html_url": "https://github.com/octocat/hello/issues/10",
			})
		default:
			writeJSON(w, 404, map[string]string{"message": "Not Found"})
		}
	})

	s, cleanup := setupTest(t, handler)
	defer cleanup()

	project, _ := createConnectedProject(t, s, "alpha")

	// Existing milestone resolves without a create
	task := &models.Task{ProjectID: project.ID, Title: "Task A", Stage: "New", Milestone: "v1.0"}
	if err := s.db.Create(task).Error; err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	if err := s.CreateIssue(context.Background(), project, task); err != nil {
		t.Fatalf("CreateIssue() error: %v", err)
	}
	if milestoneCreated {
		t.Error("existing milestone should not be re-created")
	}
	if issuePayload["milestone"].(float64) != 3 {
		t.Errorf("milestone = %v, want 3", issuePayload["milestone"])
	}

	// Unknown milestone gets created
	task2 := &models.Task{ProjectID: project.ID, Title: "Task B", Stage: "New", Milestone: "v2.0"}
	if err := s.db.Create(task2).Error; err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	if err := s.CreateIssue(context.Background(), project, task2); err != nil {
		t.Fatalf("CreateIssue() error: %v", err)
	}
	if !milestoneCreated {
		t.Error("unknown milestone should be created")
	}
	if issuePayload["milestone"].(float64) != 9 {
		t.Errorf("milestone = %v, want 9", issuePayload["milestone"])
	}
}

func TestUpdateIssueClosedStage(t *testing.T) {
	var payload map[string]interface{}
	var method string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/octocat/hello/issues/7" {
			method = r.Method
			json.NewDecoder(r.Body).Decode(&payload)
			writeJSON(w, 200, map[string]interface{}{
				"number":   7,
				"html_url": "https://github.com/octocat/hello/issues/7",
			})
			return
		}
		writeJSON(w, 404, map[string]string{"message": "Not Found"})
	})

	s, cleanup := setupTest(t, handler)
	defer cleanup()

	project, _ := createConnectedProject(t, s, "alpha")
	task := &models.Task{
		ProjectID:   project.ID,
		Title:       "Wrap up",
		Stage:       "Done",
		IssueNumber: 7,
		IssueURL:    "https://github.com/octocat/hello/issues/7",
	}
	if err := s.db.Create(task).Error; err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	if err := s.UpdateIssue(context.Background(), project, task); err != nil {
		t.Fatalf("UpdateIssue() error: %v", err)
	}

	if method != http.MethodPatch {
		t.Errorf("method = %s, want PATCH", method)
	}
	// A closed stage pushes state closed
	if payload["state"] != "closed" {
		t.Errorf("state = %v, want closed", payload["state"])
	}
}

func TestUpdateIssueWithoutLink(t *testing.T) {
	s, cleanup := setupTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer cleanup()

	project, _ := createConnectedProject(t, s, "alpha")
	task := &models.Task{ProjectID: project.ID, Title: "Unlinked", Stage: "New"}
	if err := s.db.Create(task).Error; err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	err := s.UpdateIssue(context.Background(), project, task)
	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("UpdateIssue() error = %v, want StateError", err)
	}
}

func TestCloseIssue(t *testing.T) {
	var payload map[string]interface{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/octocat/hello/issues/7" && r.Method == http.MethodPatch {
			json.NewDecoder(r.Body).Decode(&payload)
			writeJSON(w, 200, map[string]interface{}{"number": 7, "state": "closed"})
			return
		}
		writeJSON(w, 404, map[string]string{"message": "Not Found"})
	})

	s, cleanup := setupTest(t, handler)
	defer cleanup()

	project, _ := createConnectedProject(t, s, "alpha")
	task := &models.Task{
		ProjectID:   project.ID,
		Title:       "Finish",
		Stage:       "Done",
		IssueNumber: 7,
		IssueURL:    "https://github.com/octocat/hello/issues/7",
	}
	if err := s.db.Create(task).Error; err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	if err := s.CloseIssue(context.Background(), project, task); err != nil {
		t.Fatalf("CloseIssue() error: %v", err)
	}

	if payload["state"] != "closed" {
		t.Errorf("state = %v, want closed", payload["state"])
	}

	// The local reference is cleared after the remote close
	var reloaded models.Task
	s.db.Where("id = ?", task.ID).First(&reloaded)
	if reloaded.IssueNumber != 0 || reloaded.IssueURL != "" {
		t.Errorf("issue reference not cleared: #%d %s", reloaded.IssueNumber, reloaded.IssueURL)
	}

	// The audit entry still carries the old URL
	var audit models.AuditLog
	if err := s.db.Where("task_id = ?", task.ID).First(&audit).Error; err != nil {
		t.Fatalf("audit entry missing: %v", err)
	}
	if audit.Link != "https://github.com/octocat/hello/issues/7" {
		t.Errorf("audit link = %s", audit.Link)
	}
}

func TestCloseIssueRemoteFailureKeepsReference(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 500, map[string]string{"message": "boom"})
	})

	s, cleanup := setupTest(t, handler)
	defer cleanup()

	project, _ := createConnectedProject(t, s, "alpha")
	task := &models.Task{
		ProjectID:   project.ID,
		Title:       "Finish",
		Stage:       "Done",
		IssueNumber: 7,
		IssueURL:    "https://github.com/octocat/hello/issues/7",
	}
	if err := s.db.Create(task).Error; err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	err := s.CloseIssue(context.Background(), project, task)
	var rejection *RemoteRejectionError
	if !errors.As(err, &rejection) {
		t.Fatalf("CloseIssue() error = %v, want RemoteRejectionError", err)
	}

	var reloaded models.Task
	s.db.Where("id = ?", task.ID).First(&reloaded)
	if reloaded.IssueNumber != 7 {
		t.Error("issue reference must survive a failed close")
	}
}
