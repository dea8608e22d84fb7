package models

import "time"

// TaskDefinition represents the task_definitions table. Definitions are
// immutable once created and are never deleted.
type TaskDefinition struct {
	TaskID      string    `gorm:"primaryKey;column:task_id" json:"task_id"`
	Title       string    `gorm:"column:title" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table name for TaskDefinition.
func (TaskDefinition) TableName() string {
	return "task_definitions"
}
