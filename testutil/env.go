package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/models"
	"github.com/vnkhanh/e-course-backend/services"
	"github.com/vnkhanh/e-course-backend/utils"
)

// Env is a fully wired service layer.
type Env struct {
	DB          *gorm.DB
	Log         *zap.Logger
	Videos      *FakeVideos
	Files       *FakeFiles
	Cleaner     *services.Cleaner
	Courses     *services.CourseService
	Chapters    *services.ChapterService
	Attachments *services.AttachmentService
	Uploads     *services.UploadService
}

func NewEnv(t *testing.T) *Env {
	t.Helper()

	db := OpenDB(t)
	log := zaptest.NewLogger(t)
	videos := &FakeVideos{}
	files := &FakeFiles{}
	cleaner := services.NewCleaner(files, videos, log, 3)
	v := utils.Validator()

	return &Env{
		DB:      db,
		Log:     log,
		Videos:  videos,
		Files:   files,
		Cleaner: cleaner,
		Courses: &services.CourseService{
			DB:      db,
			Cleaner: cleaner,
			Fields:  services.CourseFields(v),
			Log:     log,
		},
		Chapters: &services.ChapterService{
			DB:      db,
			Videos:  videos,
			Cleaner: cleaner,
			Fields:  services.ChapterFields(v),
			Log:     log,
		},
		Attachments: &services.AttachmentService{DB: db, Cleaner: cleaner},
		Uploads:     &services.UploadService{Files: files},
	}
}

func (e *Env) Course(t *testing.T, userID, title string) *models.Course {
	t.Helper()
	course, err := e.Courses.Create(context.Background(), userID, title)
	require.NoError(t, err)
	return course
}

// ChaptersFor appends one chapter per title and returns them in creation order.
func (e *Env) ChaptersFor(t *testing.T, userID string, courseID uuid.UUID, titles ...string) []*models.Chapter {
	t.Helper()
	out := make([]*models.Chapter, 0, len(titles))
	for _, title := range titles {
		ch, err := e.Chapters.Create(context.Background(), userID, courseID, title)
		require.NoError(t, err)
		out = append(out, ch)
	}
	return out
}

// Positions returns chapter title -> position for a course.
func (e *Env) Positions(t *testing.T, courseID uuid.UUID) map[string]int {
	t.Helper()
	var chapters []models.Chapter
	require.NoError(t, e.DB.Where("course_id = ?", courseID).Order("position ASC").Find(&chapters).Error)
	out := make(map[string]int, len(chapters))
	for _, ch := range chapters {
		out[ch.Title] = ch.Position
	}
	return out
}

// OrderedTitles lists a course's chapter titles by position.
func (e *Env) OrderedTitles(t *testing.T, courseID uuid.UUID) []string {
	t.Helper()
	var titles []string
	require.NoError(t, e.DB.Model(&models.Chapter{}).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Pluck("title", &titles).Error)
	return titles
}

func (e *Env) CleanupTasks(t *testing.T) []models.CleanupTask {
	t.Helper()
	var tasks []models.CleanupTask
	require.NoError(t, e.DB.Order("created_at ASC").Find(&tasks).Error)
	return tasks
}
