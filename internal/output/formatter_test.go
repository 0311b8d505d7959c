package output

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"projsync/internal/models"
)

func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestNewFormatter(t *testing.T) {
	textFormatter := New(false)
	if _, ok := textFormatter.(*TextFormatter); !ok {
		t.Error("New(false) should return TextFormatter")
	}

	jsonFormatter := New(true)
	if _, ok := jsonFormatter.(*JSONFormatter); !ok {
		t.Error("New(true) should return JSONFormatter")
	}
}

func TestTextFormatterTask(t *testing.T) {
	f := &TextFormatter{}
	task := &models.Task{
		ID:          "pjs-test1234",
		Title:       "Test Task",
		Stage:       models.StageInProgress,
		Description: "Test description",
		IssueURL:    "https://github.com/octocat/hello/issues/12",
		IssueNumber: 12,
	}

	output := captureOutput(func() {
		f.Task(task)
	})

	if !strings.Contains(output, "pjs-test1234") {
		t.Error("output should contain task ID")
	}
	if !strings.Contains(output, "Test Task") {
		t.Error("output should contain task title")
	}
	if !strings.Contains(output, models.StageInProgress) {
		t.Error("output should contain stage")
	}
	if !strings.Contains(output, "#12") {
		t.Error("output should contain issue number")
	}
}

func TestTextFormatterTaskBrief(t *testing.T) {
	f := &TextFormatter{}

	task := &models.Task{
		ID:    "pjs-abc12345",
		Title: "Regular task",
		Stage: models.StageNew,
	}

	output := captureOutput(func() {
		f.TaskBrief(task)
	})

	if !strings.Contains(output, "[pjs-abc12345]") {
		t.Error("output should contain task ID in brackets")
	}
	if strings.Contains(output, "issue #") {
		t.Error("unlinked task should not show an issue reference")
	}

	linked := &models.Task{
		ID:          "pjs-def67890",
		Title:       "Linked task",
		Stage:       models.StageNew,
		IssueURL:    "https://github.com/octocat/hello/issues/3",
		IssueNumber: 3,
	}

	output = captureOutput(func() {
		f.TaskBrief(linked)
	})

	if !strings.Contains(output, "(issue #3)") {
		t.Error("linked task should show its issue number")
	}
}

func TestTextFormatterRepository(t *testing.T) {
	f := &TextFormatter{}
	link := &models.RepositoryLink{
		FullName:      "octocat/hello",
		Description:   "Example",
		Visibility:    "public",
		DefaultBranch: "main",
		StarsCount:    7,
	}

	output := captureOutput(func() {
		f.Repository(link)
	})

	if !strings.Contains(output, "octocat/hello") {
		t.Error("output should contain repository full name")
	}
	if !strings.Contains(output, "main") {
		t.Error("output should contain the default branch")
	}
}

func TestTextFormatterBranchList(t *testing.T) {
	f := &TextFormatter{}
	branches := []models.Branch{
		{Name: "main", IsDefault: true, Protected: true},
		{Name: "feature/x"},
	}

	output := captureOutput(func() {
		f.BranchList(branches)
	})

	if !strings.Contains(output, "main [default] [protected]") {
		t.Errorf("default branch flags missing: %q", output)
	}
	if !strings.Contains(output, "feature/x\n") {
		t.Errorf("plain branch missing: %q", output)
	}
}

func TestTextFormatterCommitList(t *testing.T) {
	f := &TextFormatter{}
	commits := []models.Commit{
		{Hash: "0123456789abcdef", Message: "first line\nsecond line", AuthorName: "Octo Cat"},
	}

	output := captureOutput(func() {
		f.CommitList(commits)
	})

	if !strings.Contains(output, "01234567 ") {
		t.Error("hash should be shortened to 8 chars")
	}
	if strings.Contains(output, "second line") {
		t.Error("only the first message line should be shown")
	}
}

func TestTextFormatterSuccess(t *testing.T) {
	f := &TextFormatter{}

	output := captureOutput(func() {
		f.Success("Operation completed")
	})

	if !strings.Contains(output, "Operation completed") {
		t.Errorf("output = %q, want to contain 'Operation completed'", output)
	}
}

func TestJSONFormatterTask(t *testing.T) {
	f := &JSONFormatter{}
	task := &models.Task{
		ID:    "pjs-json1234",
		Title: "JSON Task",
		Stage: models.StageDone,
	}

	output := captureOutput(func() {
		f.Task(task)
	})

	// Should be valid JSON
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if result["id"] != "pjs-json1234" {
		t.Errorf("id = %v, want pjs-json1234", result["id"])
	}
	if result["title"] != "JSON Task" {
		t.Errorf("title = %v, want JSON Task", result["title"])
	}
}

func TestJSONFormatterTaskList(t *testing.T) {
	f := &JSONFormatter{}
	tasks := []models.Task{
		{ID: "pjs-00000001", Title: "Task 1"},
		{ID: "pjs-00000002", Title: "Task 2"},
	}

	output := captureOutput(func() {
		f.TaskList(tasks, "Test Tasks")
	})

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if result["count"].(float64) != 2 {
		t.Errorf("count = %v, want 2", result["count"])
	}

	tasksList, ok := result["tasks"].([]interface{})
	if !ok {
		t.Fatal("tasks should be an array")
	}
	if len(tasksList) != 2 {
		t.Errorf("tasks length = %d, want 2", len(tasksList))
	}
}

func TestJSONFormatterSuccess(t *testing.T) {
	f := &JSONFormatter{}

	output := captureOutput(func() {
		f.Success("Done!")
	})

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if result["success"] != true {
		t.Errorf("success = %v, want true", result["success"])
	}
	if result["message"] != "Done!" {
		t.Errorf("message = %v, want 'Done!'", result["message"])
	}
}

func TestJSONFormatterError(t *testing.T) {
	f := &JSONFormatter{}

	output := captureOutput(func() {
		f.Error(io.EOF)
	})

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if result["error"] != true {
		t.Errorf("error = %v, want true", result["error"])
	}
	if result["message"] != "EOF" {
		t.Errorf("message = %v, want 'EOF'", result["message"])
	}
}
