package models

import (
	"time"
)

// Webhook records a GitHub webhook registered for a project's linked
// repository. The remote id is assigned by GitHub on creation; the
// path segment identifies this installation's callback endpoint.
type Webhook struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	RemoteID          int64     `gorm:"index" json:"remote_id"`
	Name              string    `gorm:"size:255;not null" json:"name"`
	ProjectID         uint      `gorm:"uniqueIndex;not null" json:"project_id"`
	RepositoryLinkID  uint      `gorm:"index;not null" json:"repository_link_id"`
	Path              string    `gorm:"size:100" json:"path"`
	Secret            string    `gorm:"size:255" json:"-"`
	PushEvents        bool      `gorm:"default:true" json:"push_events"`
	PullRequestEvents bool      `gorm:"default:false" json:"pull_request_events"`
	IssuesEvents      bool      `gorm:"default:false" json:"issues_events"`
	WorkflowJobEvents bool      `gorm:"default:false" json:"workflow_job_events"`
	SSLVerification   bool      `gorm:"default:false" json:"ssl_verification"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Webhook
func (Webhook) TableName() string {
	return "webhooks"
}

// Events derives the GitHub event list from the boolean flags.
// An empty selection defaults to push events.
func (w *Webhook) Events() []string {
	var events []string
	if w.PushEvents {
		events = append(events, "push")
	}
	if w.PullRequestEvents {
		events = append(events, "pull_request")
	}
	if w.IssuesEvents {
		events = append(events, "issues")
	}
	if w.WorkflowJobEvents {
		events = append(events, "workflow_job")
	}
	if len(events) == 0 {
		events = []string{"push"}
	}
	return events
}
