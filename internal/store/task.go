package store

import (
	"time"

	"gorm.io/gorm"
)

// TaskRecord is the journal entry of a task. Entries are written when the
// task starts and updated when it finishes.
type TaskRecord struct {
	gorm.Model

	TaskID   string `gorm:"uniqueIndex"`
	Type     string `gorm:"column:task_type;index"`
	Function string `gorm:"column:function_name;index"`
	Action   string `gorm:"column:action_name"`

	// Action parameters (JSON)
	Parameters string `gorm:"type:text"`

	State         string `gorm:"index"`
	ResultStatus  string `gorm:"index"`
	ResultMessage string `gorm:"type:text"`

	// Full task result (JSON)
	Result string `gorm:"type:text"`

	PathResults  int
	FileOK       int
	FileError    int
	FileIgnored  int
	PathNotExist int

	StartedAt  *time.Time
	FinishedAt *time.Time
}
