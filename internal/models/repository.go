package models

import (
	"time"
)

// RepositoryLink binds one GitHub repository to one project and holds
// a read-mostly snapshot of the remote metadata taken at connect time.
type RepositoryLink struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	RemoteID        int64      `gorm:"index" json:"remote_id"`
	Owner           string     `gorm:"size:255;not null;index:idx_repo_owner_name,unique" json:"owner"`
	Name            string     `gorm:"size:255;not null;index:idx_repo_owner_name,unique" json:"name"`
	FullName        string     `gorm:"size:500;index" json:"full_name"`
	Description     string     `gorm:"type:text" json:"description,omitempty"`
	Private         bool       `json:"private"`
	HTMLURL         string     `gorm:"size:500" json:"html_url,omitempty"`
	CloneURL        string     `gorm:"size:500" json:"clone_url,omitempty"`
	SSHURL          string     `gorm:"size:500" json:"ssh_url,omitempty"`
	Language        string     `gorm:"size:100" json:"language,omitempty"`
	StarsCount      int        `json:"stars_count"`
	ForksCount      int        `json:"forks_count"`
	OpenIssuesCount int        `json:"open_issues_count"`
	Archived        bool       `json:"archived"`
	Disabled        bool       `json:"disabled"`
	Visibility      string     `gorm:"size:20" json:"visibility,omitempty"`
	DefaultBranch   string     `gorm:"size:255" json:"default_branch,omitempty"`
	AvatarURL       string     `gorm:"size:500" json:"avatar_url,omitempty"`
	Avatar          string     `gorm:"type:text" json:"-"` // base64-encoded owner avatar
	Connected       bool       `gorm:"default:false" json:"connected"`
	ProjectID       *uint      `gorm:"uniqueIndex" json:"project_id,omitempty"`
	RemoteCreatedAt *time.Time `json:"remote_created_at,omitempty"`
	RemoteUpdatedAt *time.Time `json:"remote_updated_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Branches []Branch `gorm:"constraint:OnDelete:CASCADE" json:"branches,omitempty"`
}

// TableName specifies the table name for RepositoryLink
func (RepositoryLink) TableName() string {
	return "repository_links"
}
