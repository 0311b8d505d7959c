package models

import (
	"crypto/rand"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Common stage names. Stages are free-form text; these are only the
// defaults offered by the CLI.
const (
	StageNew        = "New"
	StageInProgress = "In Progress"
	StageDone       = "Done"
)

// Date format constants
const (
	DateTimeFormat      = "2006-01-02 15:04:05"
	DateTimeShortFormat = "2006-01-02 15:04"
)

// ID generation constants
const (
	IDByteLength = 4
	IDPrefix     = "pjs-"
)

// closedStageNames are the stage names that map a task to a closed
// GitHub issue. Matching is case-insensitive.
var closedStageNames = map[string]bool{
	"closed":    true,
	"close":     true,
	"done":      true,
	"complete":  true,
	"completed": true,
}

// ID validation pattern for task IDs
var taskIDPattern = regexp.MustCompile(`^pjs-[a-f0-9]{8}$`)

// ValidateTaskID validates that a task ID has the correct format
func ValidateTaskID(id string) bool {
	return taskIDPattern.MatchString(id)
}

// Task is a unit of project work. A task carries at most one GitHub
// issue reference and at most one pull-request reference; both are
// set and cleared by the sync layer, never edited directly.
type Task struct {
	ID          string         `gorm:"primaryKey;size:30" json:"id"`
	ProjectID   uint           `gorm:"index;not null" json:"project_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Stage       string         `gorm:"size:100;default:New;index" json:"stage"`
	Tags        StringSlice    `gorm:"type:text" json:"tags,omitempty"`
	Assignees   StringSlice    `gorm:"type:text" json:"assignees,omitempty"`
	Milestone   string         `gorm:"size:255" json:"milestone,omitempty"`
	IssueURL    string         `gorm:"size:500" json:"issue_url,omitempty"`
	IssueNumber int            `json:"issue_number,omitempty"`
	PullURL     string         `gorm:"size:500" json:"pull_url,omitempty"`
	PullNumber  int            `json:"pull_number,omitempty"`
	PullMerged  bool           `gorm:"default:false" json:"pull_merged"`
	BranchName  string         `gorm:"size:255" json:"branch_name,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// StringSlice is a custom type for storing string slices as JSON in the database
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("StringSlice.Scan: unexpected type %T", value)
		}
		bytes = []byte(str)
	}
	if len(bytes) == 0 {
		*s = []string{}
		return nil
	}
	if err := json.Unmarshal(bytes, s); err != nil {
		return fmt.Errorf("StringSlice.Scan: invalid JSON: %w", err)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	bytes, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// GenerateID creates a new hash-based task ID like "pjs-a1b2c3d4"
func GenerateID() string {
	bytes := make([]byte, IDByteLength)
	if _, err := rand.Read(bytes); err != nil {
		// crypto/rand failure indicates serious system issues - fail fast
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return IDPrefix + hex.EncodeToString(bytes)
}

// BeforeCreate hook to generate ID if not set
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = GenerateID()
	}
	return nil
}

// IsClosedStage reports whether the task's stage maps to a closed
// GitHub issue state.
func (t *Task) IsClosedStage() bool {
	return IsClosedStageName(t.Stage)
}

// IsClosedStageName reports whether a stage name maps to the closed
// issue state. Matching is case-insensitive and ignores surrounding
// whitespace.
func IsClosedStageName(stage string) bool {
	return closedStageNames[strings.ToLower(strings.TrimSpace(stage))]
}

// HasIssue reports whether the task currently references a GitHub issue
func (t *Task) HasIssue() bool {
	return t.IssueURL != "" && t.IssueNumber > 0
}

// HasPull reports whether the task currently references a pull request
func (t *Task) HasPull() bool {
	return t.PullURL != "" && t.PullNumber > 0
}

// AddTag adds a tag if it doesn't already exist
func (t *Task) AddTag(tag string) {
	for _, existing := range t.Tags {
		if existing == tag {
			return
		}
	}
	t.Tags = append(t.Tags, tag)
}

// RemoveTag removes a tag if it exists
func (t *Task) RemoveTag(tag string) {
	for i, existing := range t.Tags {
		if existing == tag {
			t.Tags = append(t.Tags[:i], t.Tags[i+1:]...)
			return
		}
	}
}
