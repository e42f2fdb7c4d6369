package model

import "time"

// ReclaimTask tracks an orphaned blob scheduled for deletion. Orphans appear
// when a compensating delete fails during upload, when the blob delete after
// a metadata delete fails, or when the sweep finds an unreferenced object.
type ReclaimTask struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Bucket     string `gorm:"column:bucket;type:varchar(64);not null" json:"bucket"`
	ObjectName string `gorm:"column:object_name;type:varchar(512);not null" json:"object_name"`

	// Origin records which path produced the orphan: upload_compensation,
	// delete_cleanup or sweep.
	Origin string `gorm:"column:origin;type:varchar(32);not null" json:"origin"`

	Status      string     `gorm:"column:status;type:varchar(32);index;not null" json:"status"`
	ErrorMsg    string     `gorm:"column:error_msg;type:text" json:"error_msg"`
	RetryCount  int        `gorm:"column:retry_count;default:0" json:"retry_count"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at" json:"next_retry_at"`
	FinishedAt  *time.Time `gorm:"column:finished_at" json:"finished_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (ReclaimTask) TableName() string {
	return "reclaim_task"
}
