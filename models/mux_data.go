package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MuxData links a chapter to its encoded asset on the video service.
type MuxData struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChapterID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"chapterId"`
	AssetID    string    `gorm:"size:255;not null" json:"assetId"`
	PlaybackID string    `gorm:"size:255" json:"playbackId"`
}

func (m *MuxData) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
