package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Chapter struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index:idx_chapters_course_position,priority:1" json:"courseId"`
	Title       string    `gorm:"type:text;not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	VideoURL    *string   `gorm:"column:video_url;type:text" json:"videoUrl"`
	Position    int       `gorm:"not null;index:idx_chapters_course_position,priority:2" json:"position"` // dense 1..n per course
	IsPublished bool      `gorm:"not null;default:false" json:"isPublished"`
	IsFree      bool      `gorm:"not null;default:false" json:"isFree"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	MuxData     *MuxData  `gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE;" json:"muxData,omitempty"`
}

func (ch *Chapter) BeforeCreate(tx *gorm.DB) error {
	if ch.ID == uuid.Nil {
		ch.ID = uuid.New()
	}
	return nil
}
