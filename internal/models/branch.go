package models

import (
	"time"
)

// Branch mirrors one GitHub branch of a linked repository.
type Branch struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:255;not null;index:idx_branch_repo,unique" json:"name"`
	RepositoryLinkID uint      `gorm:"not null;index:idx_branch_repo,unique" json:"repository_link_id"`
	Protected        bool      `gorm:"default:false" json:"protected"`
	IsDefault        bool      `gorm:"default:false" json:"is_default"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Branch
func (Branch) TableName() string {
	return "branches"
}
