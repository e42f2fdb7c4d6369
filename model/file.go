package model

import "time"

// File is one stored file: metadata here, content bytes in the blob store
// under StorageKey. Records are created only after the blob write succeeded
// and are never updated in place.
type File struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	UserID uint64 `gorm:"column:user_id;index;not null" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	StorageKey string `gorm:"column:storage_key;size:512;uniqueIndex;not null" json:"-"`

	OriginalName string `gorm:"column:original_name;size:255;not null" json:"original_name"`

	Size int64 `gorm:"column:size;not null" json:"size"`

	MimeType string `gorm:"column:mime_type;size:255;not null" json:"mime_type"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (File) TableName() string {
	return "user_file"
}
