package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CleanupKind string

const (
	CleanupVideoAsset CleanupKind = "video_asset" // Ref is the video service asset id
	CleanupFile       CleanupKind = "file"        // Ref is the public URL of the stored object
)

// CleanupTask is an external deletion that failed and is waiting to be retried.
type CleanupTask struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Kind      CleanupKind    `gorm:"type:varchar(20);not null" json:"kind"`
	Ref       string         `gorm:"type:text;not null" json:"ref"`
	Attempts  int            `gorm:"not null;default:0" json:"attempts"`
	LastError string         `gorm:"type:text" json:"lastError"`
	Payload   datatypes.JSON `gorm:"type:jsonb" json:"payload"` // where the task came from, for operators
	NextRunAt time.Time      `gorm:"index" json:"nextRunAt"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (t *CleanupTask) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
