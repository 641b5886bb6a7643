package services

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/e-course-backend/models"
)

// ParseCourseID treats a malformed id like a course the caller does not own.
func ParseCourseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	return id, nil
}

// ParseID is used for ids of records inside a course.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return id, nil
}

// ownedCourse loads the course only when userID owns it. A missing course and a
// course owned by someone else are both ErrUnauthorized.
func ownedCourse(db *gorm.DB, courseID uuid.UUID, userID string) (*models.Course, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	var course models.Course
	err := db.Where("id = ? AND user_id = ?", courseID, userID).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, errors.Wrap(err, "load course")
	}
	return &course, nil
}

// lockOwnedCourse is ownedCourse plus a row lock held until tx ends, so that
// writers touching the same course's chapters run one after another.
func lockOwnedCourse(tx *gorm.DB, courseID uuid.UUID, userID string) (*models.Course, error) {
	return ownedCourse(tx.Clauses(clause.Locking{Strength: "UPDATE"}), courseID, userID)
}
