package models

import (
	"time"
)

// Commit mirrors one GitHub commit. Commits are append-only: once
// created, only the branch-membership set grows. A commit can reach
// the local store via multiple branch scans; uniqueness is on
// (hash, project).
type Commit struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Hash           string    `gorm:"size:64;not null;index:idx_commit_project,unique" json:"hash"`
	ProjectID      uint      `gorm:"not null;index:idx_commit_project,unique" json:"project_id"`
	Message        string    `gorm:"type:text" json:"message,omitempty"`
	AuthorName     string    `gorm:"size:255" json:"author_name,omitempty"`
	AuthorEmail    string    `gorm:"size:255" json:"author_email,omitempty"`
	CommitterName  string    `gorm:"size:255" json:"committer_name,omitempty"`
	CommitterEmail string    `gorm:"size:255" json:"committer_email,omitempty"`
	URL            string    `gorm:"size:500" json:"url,omitempty"`
	CommittedAt    time.Time `json:"committed_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`

	Branches []Branch `gorm:"many2many:commit_branches" json:"branches,omitempty"`
}

// TableName specifies the table name for Commit
func (Commit) TableName() string {
	return "commits"
}

// HasBranch reports whether the commit's loaded membership set
// contains the given branch.
func (c *Commit) HasBranch(branchID uint) bool {
	for _, b := range c.Branches {
		if b.ID == branchID {
			return true
		}
	}
	return false
}
