package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string       `gorm:"size:191;not null;index" json:"userId"` // subject from the identity provider
	Title       string       `gorm:"type:text;not null" json:"title"`
	Slug        string       `gorm:"size:255;index" json:"slug"`
	Description *string      `gorm:"type:text" json:"description"`
	ImageURL    *string      `gorm:"column:image_url;type:text" json:"imageUrl"`
	Price       *float64     `json:"price"`
	IsPublished bool         `gorm:"not null;default:false" json:"isPublished"`
	CategoryID  *uuid.UUID   `gorm:"type:uuid;index" json:"categoryId"`
	Category    *Category    `gorm:"constraint:OnDelete:SET NULL;" json:"category,omitempty"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
	Chapters    []Chapter    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE;" json:"chapters,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE;" json:"attachments,omitempty"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Completion reports how many of the fields a course needs before it can be
// published are filled in.
type Completion struct {
	Completed  int  `json:"completed"`
	Total      int  `json:"total"`
	IsComplete bool `json:"isComplete"`
}

// Completion expects Chapters to be loaded.
func (c *Course) Completion() Completion {
	hasPublishedChapter := false
	for _, ch := range c.Chapters {
		if ch.IsPublished {
			hasPublishedChapter = true
			break
		}
	}
	required := []bool{
		c.Title != "",
		c.Description != nil && *c.Description != "",
		c.ImageURL != nil && *c.ImageURL != "",
		c.Price != nil,
		c.CategoryID != nil,
		hasPublishedChapter,
	}
	done := 0
	for _, ok := range required {
		if ok {
			done++
		}
	}
	return Completion{Completed: done, Total: len(required), IsComplete: done == len(required)}
}
