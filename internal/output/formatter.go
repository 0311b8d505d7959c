package output

import (
	"encoding/json"
	"fmt"
	"os"

	"projsync/internal/models"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Task(t *models.Task)
	TaskList(tasks []models.Task, title string)
	TaskBrief(t *models.Task)
	Project(p *models.Project)
	ProjectList(projects []models.Project)
	Repository(r *models.RepositoryLink)
	BranchList(branches []models.Branch)
	CommitList(commits []models.Commit)
	Success(msg string)
	Error(err error)
	Info(msg string)
	KeyValue(key, value string)
	Section(title string)
	JSON(v interface{})
}

// TextFormatter outputs human-readable text
type TextFormatter struct{}

// JSONFormatter outputs JSON
type JSONFormatter struct{}

// New returns the appropriate formatter based on json flag
func New(jsonOutput bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &TextFormatter{}
}

// TextFormatter implementations

func (f *TextFormatter) Task(t *models.Task) {
	fmt.Printf("ID:       %s\n", t.ID)
	fmt.Printf("Title:    %s\n", t.Title)
	fmt.Printf("Stage:    %s\n", t.Stage)
	if t.Description != "" {
		fmt.Printf("Desc:     %s\n", t.Description)
	}
	if len(t.Tags) > 0 {
		fmt.Printf("Tags:     %v\n", t.Tags)
	}
	if len(t.Assignees) > 0 {
		fmt.Printf("Assigned: %v\n", t.Assignees)
	}
	if t.Milestone != "" {
		fmt.Printf("Milestone: %s\n", t.Milestone)
	}
	if t.HasIssue() {
		fmt.Printf("Issue:    #%d %s\n", t.IssueNumber, t.IssueURL)
	}
	if t.HasPull() {
		fmt.Printf("PR:       #%d %s\n", t.PullNumber, t.PullURL)
	} else if t.PullMerged {
		fmt.Printf("PR:       (merged)\n")
	}
	if t.BranchName != "" {
		fmt.Printf("Branch:   %s\n", t.BranchName)
	}
	fmt.Printf("Created:  %s\n", t.CreatedAt.Format(models.DateTimeShortFormat))
}

func (f *TextFormatter) TaskList(tasks []models.Task, title string) {
	if title != "" {
		fmt.Printf("%s (%d):\n", title, len(tasks))
	}
	for _, t := range tasks {
		f.TaskBrief(&t)
	}
}

func (f *TextFormatter) TaskBrief(t *models.Task) {
	issue := ""
	if t.HasIssue() {
		issue = fmt.Sprintf(" (issue #%d)", t.IssueNumber)
	}
	fmt.Printf("[%s] %s - %s%s\n", t.ID, t.Stage, t.Title, issue)
}

func (f *TextFormatter) Project(p *models.Project) {
	fmt.Printf("ID:          %d\n", p.ID)
	fmt.Printf("Name:        %s\n", p.Name)
	if p.Description != "" {
		fmt.Printf("Desc:        %s\n", p.Description)
	}
	fmt.Printf("Connected:   %v\n", p.Connected)
	if p.GitHubURL != "" {
		fmt.Printf("GitHub:      %s\n", p.GitHubURL)
	}
	fmt.Printf("Auto-create: %v\n", p.AutoCreateIssues)
	fmt.Printf("Auto-update: %v\n", p.AutoUpdateIssues)
}

func (f *TextFormatter) ProjectList(projects []models.Project) {
	for _, p := range projects {
		connected := ""
		if p.Connected {
			connected = " [connected]"
		}
		fmt.Printf("[%d] %s%s\n", p.ID, p.Name, connected)
	}
}

func (f *TextFormatter) Repository(r *models.RepositoryLink) {
	fmt.Printf("Repository: %s\n", r.FullName)
	if r.Description != "" {
		fmt.Printf("Desc:       %s\n", r.Description)
	}
	fmt.Printf("Visibility: %s\n", r.Visibility)
	fmt.Printf("Default:    %s\n", r.DefaultBranch)
	fmt.Printf("Stars:      %d  Forks: %d  Open Issues: %d\n",
		r.StarsCount, r.ForksCount, r.OpenIssuesCount)
	if r.HTMLURL != "" {
		fmt.Printf("URL:        %s\n", r.HTMLURL)
	}
}

func (f *TextFormatter) BranchList(branches []models.Branch) {
	for _, b := range branches {
		flags := ""
		if b.IsDefault {
			flags += " [default]"
		}
		if b.Protected {
			flags += " [protected]"
		}
		fmt.Printf("%s%s\n", b.Name, flags)
	}
}

func (f *TextFormatter) CommitList(commits []models.Commit) {
	for _, c := range commits {
		short := c.Hash
		if len(short) > 8 {
			short = short[:8]
		}
		fmt.Printf("%s %s (%s)\n", short, firstLine(c.Message), c.AuthorName)
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

func (f *TextFormatter) Success(msg string) {
	fmt.Println(msg)
}

func (f *TextFormatter) Error(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func (f *TextFormatter) Info(msg string) {
	fmt.Println(msg)
}

func (f *TextFormatter) KeyValue(key, value string) {
	fmt.Printf("%s: %s\n", key, value)
}

func (f *TextFormatter) Section(title string) {
	fmt.Printf("\n%s:\n", title)
}

func (f *TextFormatter) JSON(v interface{}) {
	// TextFormatter doesn't output JSON, but provide fallback
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		f.Error(err)
		return
	}
	fmt.Println(string(data))
}

// JSONFormatter implementations

func (f *JSONFormatter) Task(t *models.Task) {
	f.JSON(t)
}

func (f *JSONFormatter) TaskList(tasks []models.Task, title string) {
	f.JSON(map[string]interface{}{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (f *JSONFormatter) TaskBrief(t *models.Task) {
	f.JSON(t)
}

func (f *JSONFormatter) Project(p *models.Project) {
	f.JSON(p)
}

func (f *JSONFormatter) ProjectList(projects []models.Project) {
	f.JSON(map[string]interface{}{
		"count":    len(projects),
		"projects": projects,
	})
}

func (f *JSONFormatter) Repository(r *models.RepositoryLink) {
	f.JSON(r)
}

func (f *JSONFormatter) BranchList(branches []models.Branch) {
	f.JSON(map[string]interface{}{
		"count":    len(branches),
		"branches": branches,
	})
}

func (f *JSONFormatter) CommitList(commits []models.Commit) {
	f.JSON(map[string]interface{}{
		"count":   len(commits),
		"commits": commits,
	})
}

func (f *JSONFormatter) Success(msg string) {
	f.JSON(map[string]interface{}{"success": true, "message": msg})
}

func (f *JSONFormatter) Error(err error) {
	f.JSON(map[string]interface{}{"error": true, "message": err.Error()})
}

func (f *JSONFormatter) Info(msg string) {
	f.JSON(map[string]interface{}{"message": msg})
}

func (f *JSONFormatter) KeyValue(key, value string) {
	f.JSON(map[string]string{key: value})
}

func (f *JSONFormatter) Section(title string) {
	// JSON doesn't need section headers
}

func (f *JSONFormatter) JSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, `{"error": true, "message": "JSON marshal error: %s"}`+"\n", err.Error())
		return
	}
	fmt.Println(string(data))
}
