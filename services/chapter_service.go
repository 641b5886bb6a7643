package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/models"
)

// PositionUpdate is one entry of a reorder request.
type PositionUpdate struct {
	ID       uuid.UUID `json:"id" binding:"required"`
	Position int       `json:"position"`
}

type ChapterService struct {
	DB      *gorm.DB
	Videos  VideoEncoder
	Cleaner *Cleaner
	Fields  *FieldSchema
	Log     *zap.Logger
}

// Create appends a chapter after the current last position, or at 1 when the
// course has no chapters yet.
func (s *ChapterService) Create(ctx context.Context, userID string, courseID uuid.UUID, title string) (*models.Chapter, error) {
	var chapter models.Chapter
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockOwnedCourse(tx, courseID, userID); err != nil {
			return err
		}

		var maxPosition int
		if err := tx.Model(&models.Chapter{}).
			Where("course_id = ?", courseID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPosition).Error; err != nil {
			return errors.Wrap(err, "read last position")
		}

		chapter = models.Chapter{
			CourseID: courseID,
			Title:    title,
			Position: maxPosition + 1,
		}
		return errors.Wrap(tx.Create(&chapter).Error, "create chapter")
	})
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// Reorder writes every submitted position. It does not check that the
// positions form a permutation of 1..n; ids outside the course are skipped.
func (s *ChapterService) Reorder(ctx context.Context, userID string, courseID uuid.UUID, list []PositionUpdate) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockOwnedCourse(tx, courseID, userID); err != nil {
			return err
		}
		for _, item := range list {
			if err := tx.Model(&models.Chapter{}).
				Where("id = ? AND course_id = ?", item.ID, courseID).
				Update("position", item.Position).Error; err != nil {
				return errors.Wrapf(err, "update position of chapter %s", item.ID)
			}
		}
		return nil
	})
}

func (s *ChapterService) Get(ctx context.Context, userID string, courseID, chapterID uuid.UUID) (*models.Chapter, error) {
	db := s.DB.WithContext(ctx)
	if _, err := ownedCourse(db, courseID, userID); err != nil {
		return nil, err
	}
	return findChapter(db.Preload("MuxData"), courseID, chapterID)
}

// Update patches editable fields. A new videoUrl replaces the encoded asset:
// the new asset is created first, rows are swapped in one transaction under
// the course lock and the old asset and file are cleaned up after commit.
func (s *ChapterService) Update(ctx context.Context, userID string, courseID, chapterID uuid.UUID, values map[string]any) (*models.Chapter, error) {
	db := s.DB.WithContext(ctx)
	if _, err := ownedCourse(db, courseID, userID); err != nil {
		return nil, err
	}
	updates, err := s.Fields.Apply(values)
	if err != nil {
		return nil, err
	}
	if _, err := findChapter(db, courseID, chapterID); err != nil {
		return nil, err
	}

	newVideoURL, replacingVideo := updates["video_url"].(string)
	var asset VideoAsset
	if replacingVideo {
		if asset, err = s.Videos.CreateAsset(ctx, newVideoURL); err != nil {
			return nil, errors.Wrap(err, "create video asset")
		}
	}

	var current *models.Chapter
	err = db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockOwnedCourse(tx, courseID, userID); err != nil {
			return err
		}
		// read under the lock so concurrent replacements see each other's asset
		var err error
		if current, err = findChapter(tx.Preload("MuxData"), courseID, chapterID); err != nil {
			return err
		}

		if err := tx.Model(&models.Chapter{}).
			Where("id = ? AND course_id = ?", chapterID, courseID).
			Updates(updates).Error; err != nil {
			return errors.Wrap(err, "update chapter")
		}
		if !replacingVideo {
			return nil
		}
		if err := tx.Where("chapter_id = ?", chapterID).Delete(&models.MuxData{}).Error; err != nil {
			return errors.Wrap(err, "delete mux data")
		}
		mux := models.MuxData{ChapterID: chapterID, AssetID: asset.AssetID, PlaybackID: asset.PlaybackID}
		return errors.Wrap(tx.Create(&mux).Error, "create mux data")
	})
	if err != nil {
		if replacingVideo {
			s.Cleaner.VideoAsset(ctx, db, asset.AssetID, map[string]any{"chapterId": chapterID, "reason": "update rolled back"})
		}
		return nil, err
	}

	if replacingVideo {
		origin := map[string]any{"chapterId": chapterID, "reason": "video replaced"}
		if current.MuxData != nil {
			s.Cleaner.VideoAsset(ctx, db, current.MuxData.AssetID, origin)
		}
		if current.VideoURL != nil && *current.VideoURL != newVideoURL {
			s.Cleaner.File(ctx, db, *current.VideoURL, origin)
		}
	}

	return findChapter(db.Preload("MuxData"), courseID, chapterID)
}

// Delete removes a chapter and closes the gap it leaves: every sibling after
// it moves up by one. The video asset and file are removed after commit; a
// failed removal never undoes the delete.
func (s *ChapterService) Delete(ctx context.Context, userID string, courseID, chapterID uuid.UUID) (*models.Chapter, error) {
	db := s.DB.WithContext(ctx)
	var deleted *models.Chapter
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockOwnedCourse(tx, courseID, userID); err != nil {
			return err
		}

		chapter, err := findChapter(tx.Preload("MuxData"), courseID, chapterID)
		if err != nil {
			return err
		}
		position := chapter.Position

		if err := tx.Where("chapter_id = ?", chapter.ID).Delete(&models.MuxData{}).Error; err != nil {
			return errors.Wrap(err, "delete mux data")
		}
		if err := tx.Delete(&models.Chapter{}, "id = ?", chapter.ID).Error; err != nil {
			return errors.Wrap(err, "delete chapter")
		}

		if err := tx.Model(&models.Chapter{}).
			Where("course_id = ? AND position > ?", courseID, position).
			Update("position", gorm.Expr("position - 1")).Error; err != nil {
			return errors.Wrap(err, "renumber chapters")
		}
		deleted = chapter
		return nil
	})
	if err != nil {
		return nil, err
	}

	if deleted.VideoURL != nil && *deleted.VideoURL != "" {
		origin := map[string]any{"chapterId": deleted.ID, "courseId": courseID, "reason": "chapter deleted"}
		if deleted.MuxData != nil {
			s.Cleaner.VideoAsset(ctx, db, deleted.MuxData.AssetID, origin)
		}
		s.Cleaner.File(ctx, db, *deleted.VideoURL, origin)
	}
	return deleted, nil
}

// Publish sets isPublished without checking the chapter's content.
func (s *ChapterService) Publish(ctx context.Context, userID string, courseID, chapterID uuid.UUID) (*models.Chapter, error) {
	return s.setPublished(ctx, userID, courseID, chapterID, true)
}

// Unpublish also unpublishes the course when this was its last published chapter.
func (s *ChapterService) Unpublish(ctx context.Context, userID string, courseID, chapterID uuid.UUID) (*models.Chapter, error) {
	return s.setPublished(ctx, userID, courseID, chapterID, false)
}

func (s *ChapterService) setPublished(ctx context.Context, userID string, courseID, chapterID uuid.UUID, published bool) (*models.Chapter, error) {
	var chapter *models.Chapter
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockOwnedCourse(tx, courseID, userID); err != nil {
			return err
		}
		res := tx.Model(&models.Chapter{}).
			Where("id = ? AND course_id = ?", chapterID, courseID).
			Update("is_published", published)
		if res.Error != nil {
			return errors.Wrap(res.Error, "update chapter")
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if !published {
			if err := unpublishIfNoPublishedChapters(tx, courseID); err != nil {
				return err
			}
		}
		var err error
		chapter, err = findChapter(tx, courseID, chapterID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return chapter, nil
}

func findChapter(db *gorm.DB, courseID, chapterID uuid.UUID) (*models.Chapter, error) {
	var chapter models.Chapter
	err := db.Where("id = ? AND course_id = ?", chapterID, courseID).First(&chapter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load chapter")
	}
	return &chapter, nil
}

func unpublishIfNoPublishedChapters(tx *gorm.DB, courseID uuid.UUID) error {
	var published int64
	if err := tx.Model(&models.Chapter{}).
		Where("course_id = ? AND is_published = ?", courseID, true).
		Count(&published).Error; err != nil {
		return errors.Wrap(err, "count published chapters")
	}
	if published > 0 {
		return nil
	}
	return errors.Wrap(tx.Model(&models.Course{}).
		Where("id = ?", courseID).
		Update("is_published", false).Error, "unpublish course")
}
