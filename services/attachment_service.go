package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/models"
	"github.com/vnkhanh/e-course-backend/utils"
)

type AttachmentService struct {
	DB      *gorm.DB
	Cleaner *Cleaner
}

// Create stores an already uploaded file; its name is the URL's last segment.
func (s *AttachmentService) Create(ctx context.Context, userID string, courseID uuid.UUID, url string) (*models.Attachment, error) {
	db := s.DB.WithContext(ctx)
	if _, err := ownedCourse(db, courseID, userID); err != nil {
		return nil, err
	}
	attachment := models.Attachment{
		CourseID: courseID,
		Name:     utils.FileKey(url),
		URL:      url,
	}
	if err := db.Create(&attachment).Error; err != nil {
		return nil, errors.Wrap(err, "create attachment")
	}
	return &attachment, nil
}

// Delete removes the row; the stored file is cleaned up best-effort after commit.
func (s *AttachmentService) Delete(ctx context.Context, userID string, courseID, attachmentID uuid.UUID) (*models.Attachment, error) {
	db := s.DB.WithContext(ctx)
	var attachment models.Attachment
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := ownedCourse(tx, courseID, userID); err != nil {
			return err
		}
		err := tx.Where("id = ? AND course_id = ?", attachmentID, courseID).First(&attachment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return errors.Wrap(err, "load attachment")
		}
		return errors.Wrap(tx.Delete(&models.Attachment{}, "id = ?", attachment.ID).Error, "delete attachment")
	})
	if err != nil {
		return nil, err
	}
	s.Cleaner.File(ctx, db, attachment.URL, map[string]any{"attachmentId": attachment.ID, "courseId": courseID})
	return &attachment, nil
}
