package models

import (
	"time"
)

// Project groups tasks and carries the GitHub connection for them.
// A project has at most one linked repository; the automation flags
// control whether task changes are pushed to GitHub issues.
type Project struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description      string    `gorm:"type:text" json:"description,omitempty"`
	AutoCreateIssues bool      `gorm:"default:false" json:"auto_create_issues"`
	AutoUpdateIssues bool      `gorm:"default:false" json:"auto_update_issues"`
	Connected        bool      `gorm:"default:false" json:"connected"`
	GitHubURL        string    `gorm:"column:github_url;size:500" json:"github_url,omitempty"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "projects"
}
