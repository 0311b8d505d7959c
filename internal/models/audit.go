package models

import (
	"time"

	"gorm.io/gorm"
)

// AuditLog records sync actions against a project or task, including
// a link to the remote page where one exists.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"index" json:"project_id"`
	TaskID    string    `gorm:"size:30;index" json:"task_id,omitempty"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Link      string    `gorm:"size:500" json:"link,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// PostAudit creates one audit entry for a project-level action
func PostAudit(db *gorm.DB, projectID uint, message, link string) error {
	return db.Create(&AuditLog{ProjectID: projectID, Message: message, Link: link}).Error
}

// PostTaskAudit creates one audit entry for a task-level action
func PostTaskAudit(db *gorm.DB, projectID uint, taskID, message, link string) error {
	return db.Create(&AuditLog{ProjectID: projectID, TaskID: taskID, Message: message, Link: link}).Error
}
