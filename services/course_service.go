package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/models"
)

type CourseService struct {
	DB      *gorm.DB
	Cleaner *Cleaner
	Fields  *FieldSchema
	Log     *zap.Logger
}

func (s *CourseService) Create(ctx context.Context, userID, title string) (*models.Course, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	course := models.Course{
		UserID: userID,
		Title:  title,
		Slug:   slug.Make(title),
	}
	if err := s.DB.WithContext(ctx).Create(&course).Error; err != nil {
		return nil, errors.Wrap(err, "create course")
	}
	return &course, nil
}

// List returns the caller's courses, newest first.
func (s *CourseService) List(ctx context.Context, userID string) ([]models.Course, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	courses := []models.Course{}
	if err := s.DB.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&courses).Error; err != nil {
		return nil, errors.Wrap(err, "list courses")
	}
	return courses, nil
}

// Get loads the course with chapters by position and attachments newest first.
func (s *CourseService) Get(ctx context.Context, userID string, courseID uuid.UUID) (*models.Course, error) {
	db := s.DB.WithContext(ctx)
	if _, err := ownedCourse(db, courseID, userID); err != nil {
		return nil, err
	}
	return loadCourseTree(db, courseID)
}

// Authorize reports whether userID owns the course.
func (s *CourseService) Authorize(ctx context.Context, userID string, courseID uuid.UUID) error {
	_, err := ownedCourse(s.DB.WithContext(ctx), courseID, userID)
	return err
}

func (s *CourseService) Update(ctx context.Context, userID string, courseID uuid.UUID, values map[string]any) (*models.Course, error) {
	db := s.DB.WithContext(ctx)
	if _, err := ownedCourse(db, courseID, userID); err != nil {
		return nil, err
	}

	updates, err := s.Fields.Apply(values)
	if err != nil {
		return nil, err
	}
	if title, ok := updates["title"].(string); ok {
		updates["slug"] = slug.Make(title)
	}
	if categoryID, ok := updates["category_id"].(uuid.UUID); ok {
		var n int64
		if err := db.Model(&models.Category{}).Where("id = ?", categoryID).Count(&n).Error; err != nil {
			return nil, errors.Wrap(err, "check category")
		}
		if n == 0 {
			return nil, &FieldError{Field: "categoryId", Reason: "unknown category"}
		}
	}

	if err := db.Model(&models.Course{}).Where("id = ?", courseID).Updates(updates).Error; err != nil {
		return nil, errors.Wrap(err, "update course")
	}
	return loadCourseTree(db, courseID)
}

// Delete removes the course and everything under it. Stored files and video
// assets are cleaned up best-effort once the rows are gone.
func (s *CourseService) Delete(ctx context.Context, userID string, courseID uuid.UUID) (*models.Course, error) {
	db := s.DB.WithContext(ctx)
	var course *models.Course
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockOwnedCourse(tx, courseID, userID); err != nil {
			return err
		}
		var err error
		if course, err = loadCourseTree(tx.Preload("Chapters.MuxData"), courseID); err != nil {
			return err
		}

		chapterIDs := tx.Model(&models.Chapter{}).Select("id").Where("course_id = ?", courseID)
		if err := tx.Where("chapter_id IN (?)", chapterIDs).Delete(&models.MuxData{}).Error; err != nil {
			return errors.Wrap(err, "delete mux data")
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Chapter{}).Error; err != nil {
			return errors.Wrap(err, "delete chapters")
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Attachment{}).Error; err != nil {
			return errors.Wrap(err, "delete attachments")
		}
		return errors.Wrap(tx.Delete(&models.Course{}, "id = ?", courseID).Error, "delete course")
	})
	if err != nil {
		return nil, err
	}

	origin := map[string]any{"courseId": courseID, "reason": "course deleted"}
	for _, ch := range course.Chapters {
		if ch.MuxData != nil {
			s.Cleaner.VideoAsset(ctx, db, ch.MuxData.AssetID, origin)
		}
		if ch.VideoURL != nil {
			s.Cleaner.File(ctx, db, *ch.VideoURL, origin)
		}
	}
	for _, a := range course.Attachments {
		s.Cleaner.File(ctx, db, a.URL, origin)
	}
	if course.ImageURL != nil {
		s.Cleaner.File(ctx, db, *course.ImageURL, origin)
	}
	return course, nil
}

// Publish requires every field counted by Course.Completion.
func (s *CourseService) Publish(ctx context.Context, userID string, courseID uuid.UUID) (*models.Course, error) {
	db := s.DB.WithContext(ctx)
	if _, err := ownedCourse(db, courseID, userID); err != nil {
		return nil, err
	}
	course, err := loadCourseTree(db, courseID)
	if err != nil {
		return nil, err
	}
	if !course.Completion().IsComplete {
		return nil, ErrIncomplete
	}
	if err := db.Model(course).Update("is_published", true).Error; err != nil {
		return nil, errors.Wrap(err, "publish course")
	}
	course.IsPublished = true
	return course, nil
}

func (s *CourseService) Unpublish(ctx context.Context, userID string, courseID uuid.UUID) (*models.Course, error) {
	db := s.DB.WithContext(ctx)
	course, err := ownedCourse(db, courseID, userID)
	if err != nil {
		return nil, err
	}
	if err := db.Model(course).Update("is_published", false).Error; err != nil {
		return nil, errors.Wrap(err, "unpublish course")
	}
	course.IsPublished = false
	return course, nil
}

func (s *CourseService) Categories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return categories, nil
}

func loadCourseTree(db *gorm.DB, courseID uuid.UUID) (*models.Course, error) {
	var course models.Course
	err := db.
		Preload("Category").
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&course, "id = ?", courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, errors.Wrap(err, "load course")
	}
	return &course, nil
}
