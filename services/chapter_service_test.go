package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/e-course-backend/models"
	"github.com/vnkhanh/e-course-backend/services"
	"github.com/vnkhanh/e-course-backend/testutil"
)

const (
	owner    = "user_owner"
	stranger = "user_stranger"
)

func TestChapterCreateAppends(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	course := env.Course(t, owner, "Go basics")
	other := env.Course(t, owner, "Go advanced")

	chapters := env.ChaptersFor(t, owner, course.ID, "Intro", "Types", "Errors")
	for i, ch := range chapters {
		assert.Equal(t, i+1, ch.Position)
		assert.Equal(t, course.ID, ch.CourseID)
		assert.False(t, ch.IsPublished)
		assert.False(t, ch.IsFree)
	}

	first, err := env.Chapters.Create(ctx, owner, other.ID, "Generics")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Position, "positions are per course")

	assert.Equal(t, map[string]int{"Intro": 1, "Types": 2, "Errors": 3}, env.Positions(t, course.ID))
}

func TestChapterDeleteRenumbers(t *testing.T) {
	tests := []struct {
		name    string
		deleted int
		want    []string
	}{
		{name: "first", deleted: 0, want: []string{"B", "C", "D"}},
		{name: "middle", deleted: 1, want: []string{"A", "C", "D"}},
		{name: "last", deleted: 3, want: []string{"A", "B", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewEnv(t)
			course := env.Course(t, owner, "Course")
			chapters := env.ChaptersFor(t, owner, course.ID, "A", "B", "C", "D")

			deleted, err := env.Chapters.Delete(context.Background(), owner, course.ID, chapters[tt.deleted].ID)
			require.NoError(t, err)
			assert.Equal(t, chapters[tt.deleted].ID, deleted.ID)

			assert.Equal(t, tt.want, env.OrderedTitles(t, course.ID))
			positions := env.Positions(t, course.ID)
			for i, title := range tt.want {
				assert.Equal(t, i+1, positions[title], title)
			}
		})
	}
}

func TestChapterDeleteThenCreate(t *testing.T) {
	env := testutil.NewEnv(t)
	course := env.Course(t, owner, "Course")
	chapters := env.ChaptersFor(t, owner, course.ID, "A", "B", "C")

	_, err := env.Chapters.Delete(context.Background(), owner, course.ID, chapters[0].ID)
	require.NoError(t, err)
	created := env.ChaptersFor(t, owner, course.ID, "D")

	assert.Equal(t, 3, created[0].Position)
	assert.Equal(t, []string{"B", "C", "D"}, env.OrderedTitles(t, course.ID))
}

func TestChapterDeleteNotFound(t *testing.T) {
	env := testutil.NewEnv(t)
	course := env.Course(t, owner, "Course")
	other := env.Course(t, owner, "Other")
	env.ChaptersFor(t, owner, course.ID, "A", "B")
	foreign := env.ChaptersFor(t, owner, other.ID, "X")

	for name, id := range map[string]uuid.UUID{
		"unknown id":         uuid.New(),
		"chapter of another": foreign[0].ID,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := env.Chapters.Delete(context.Background(), owner, course.ID, id)
			assert.ErrorIs(t, err, services.ErrNotFound)
			assert.Equal(t, map[string]int{"A": 1, "B": 2}, env.Positions(t, course.ID))
		})
	}
	assert.Equal(t, map[string]int{"X": 1}, env.Positions(t, other.ID))
}

func TestChapterWritesRequireOwner(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	course := env.Course(t, owner, "Course")
	chapters := env.ChaptersFor(t, owner, course.ID, "A", "B")

	_, err := env.Chapters.Create(ctx, stranger, course.ID, "C")
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	err = env.Chapters.Reorder(ctx, stranger, course.ID, []services.PositionUpdate{
		{ID: chapters[0].ID, Position: 2},
		{ID: chapters[1].ID, Position: 1},
	})
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = env.Chapters.Delete(ctx, stranger, course.ID, chapters[0].ID)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = env.Chapters.Get(ctx, stranger, course.ID, chapters[0].ID)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = env.Chapters.Create(ctx, owner, uuid.New(), "missing course")
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	assert.Equal(t, map[string]int{"A": 1, "B": 2}, env.Positions(t, course.ID))
}

func TestChapterReorder(t *testing.T) {
	env := testutil.NewEnv(t)
	course := env.Course(t, owner, "Course")
	other := env.Course(t, owner, "Other")
	chapters := env.ChaptersFor(t, owner, course.ID, "A", "B", "C")
	foreign := env.ChaptersFor(t, owner, other.ID, "X")

	err := env.Chapters.Reorder(context.Background(), owner, course.ID, []services.PositionUpdate{
		{ID: chapters[0].ID, Position: 3},
		{ID: chapters[1].ID, Position: 1},
		{ID: chapters[2].ID, Position: 2},
		{ID: foreign[0].ID, Position: 7},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C", "A"}, env.OrderedTitles(t, course.ID))
	assert.Equal(t, map[string]int{"X": 1}, env.Positions(t, other.ID), "ids outside the course are ignored")
}

func TestChapterReorderPartialList(t *testing.T) {
	env := testutil.NewEnv(t)
	course := env.Course(t, owner, "Course")
	chapters := env.ChaptersFor(t, owner, course.ID, "A", "B", "C")

	err := env.Chapters.Reorder(context.Background(), owner, course.ID, []services.PositionUpdate{
		{ID: chapters[0].ID, Position: 2},
		{ID: chapters[1].ID, Position: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 2, "B": 1, "C": 3}, env.Positions(t, course.ID))
}

func TestChapterUpdateVideo(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	course := env.Course(t, owner, "Course")
	ch := env.ChaptersFor(t, owner, course.ID, "A")[0]

	updated, err := env.Chapters.Update(ctx, owner, course.ID, ch.ID, map[string]any{
		"videoUrl": "https://files.test/videos/one.mp4",
		"isFree":   true,
		"position": 9,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.MuxData)
	assert.Equal(t, "asset-1", updated.MuxData.AssetID)
	assert.Equal(t, "playback-1", updated.MuxData.PlaybackID)
	assert.True(t, updated.IsFree)
	assert.Equal(t, 1, updated.Position, "position is not editable")

	updated, err = env.Chapters.Update(ctx, owner, course.ID, ch.ID, map[string]any{
		"videoUrl": "https://files.test/videos/two.mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, "asset-2", updated.MuxData.AssetID)
	assert.Equal(t, []string{"asset-1"}, env.Videos.DeletedAssets())
	assert.Equal(t, []string{"https://files.test/videos/one.mp4"}, env.Files.DeletedURLs())

	var muxRows int64
	require.NoError(t, env.DB.Model(&models.MuxData{}).Where("chapter_id = ?", ch.ID).Count(&muxRows).Error)
	assert.EqualValues(t, 1, muxRows)
}

func TestChapterUpdateRejectsInvalid(t *testing.T) {
	env := testutil.NewEnv(t)
	course := env.Course(t, owner, "Course")
	ch := env.ChaptersFor(t, owner, course.ID, "A")[0]

	_, err := env.Chapters.Update(context.Background(), owner, course.ID, ch.ID, map[string]any{
		"title":    "B",
		"videoUrl": "not a url",
	})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	assert.Empty(t, env.Videos.Created)
	assert.Equal(t, []string{"A"}, env.OrderedTitles(t, course.ID))
}

func TestChapterDeleteCleansUpVideo(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	course := env.Course(t, owner, "Course")
	chapters := env.ChaptersFor(t, owner, course.ID, "A", "B")
	_, err := env.Chapters.Update(ctx, owner, course.ID, chapters[0].ID, map[string]any{
		"videoUrl": "https://files.test/videos/a.mp4",
	})
	require.NoError(t, err)

	_, err = env.Chapters.Delete(ctx, owner, course.ID, chapters[0].ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"asset-1"}, env.Videos.DeletedAssets())
	assert.Equal(t, []string{"https://files.test/videos/a.mp4"}, env.Files.DeletedURLs())
	var muxRows int64
	require.NoError(t, env.DB.Model(&models.MuxData{}).Count(&muxRows).Error)
	assert.Zero(t, muxRows)
	assert.Equal(t, map[string]int{"B": 1}, env.Positions(t, course.ID))
	assert.Empty(t, env.CleanupTasks(t))
}

func TestChapterDeleteSurvivesCleanupFailure(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	course := env.Course(t, owner, "Course")
	chapters := env.ChaptersFor(t, owner, course.ID, "A", "B")
	_, err := env.Chapters.Update(ctx, owner, course.ID, chapters[0].ID, map[string]any{
		"videoUrl": "https://files.test/videos/a.mp4",
	})
	require.NoError(t, err)

	env.Videos.FailDeletes(errors.New("video service down"))
	_, err = env.Chapters.Delete(ctx, owner, course.ID, chapters[0].ID)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"B": 1}, env.Positions(t, course.ID))
	tasks := env.CleanupTasks(t)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.CleanupVideoAsset, tasks[0].Kind)
	assert.Equal(t, "asset-1", tasks[0].Ref)
	assert.Equal(t, "video service down", tasks[0].LastError)
}

func TestChapterUnpublishLastUnpublishesCourse(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	course := env.Course(t, owner, "Course")
	chapters := env.ChaptersFor(t, owner, course.ID, "A", "B")
	require.NoError(t, env.DB.Model(&models.Course{}).Where("id = ?", course.ID).Update("is_published", true).Error)

	for _, ch := range chapters {
		published, err := env.Chapters.Publish(ctx, owner, course.ID, ch.ID)
		require.NoError(t, err)
		assert.True(t, published.IsPublished)
	}

	_, err := env.Chapters.Unpublish(ctx, owner, course.ID, chapters[0].ID)
	require.NoError(t, err)
	assert.True(t, coursePublished(t, env, course.ID), "one published chapter is left")

	unpublished, err := env.Chapters.Unpublish(ctx, owner, course.ID, chapters[1].ID)
	require.NoError(t, err)
	assert.False(t, unpublished.IsPublished)
	assert.False(t, coursePublished(t, env, course.ID))
}

func TestChapterPublishNotFound(t *testing.T) {
	env := testutil.NewEnv(t)
	course := env.Course(t, owner, "Course")

	_, err := env.Chapters.Publish(context.Background(), owner, course.ID, uuid.New())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func coursePublished(t *testing.T, env *testutil.Env, courseID uuid.UUID) bool {
	t.Helper()
	var course models.Course
	require.NoError(t, env.DB.First(&course, "id = ?", courseID).Error)
	return course.IsPublished
}

func TestChapterDeleteKeepsCoursePublished(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	course := env.Course(t, owner, "Course")
	chapters := env.ChaptersFor(t, owner, course.ID, "A", "B")
	require.NoError(t, env.DB.Model(&models.Course{}).Where("id = ?", course.ID).Update("is_published", true).Error)
	_, err := env.Chapters.Publish(ctx, owner, course.ID, chapters[0].ID)
	require.NoError(t, err)

	_, err = env.Chapters.Delete(ctx, owner, course.ID, chapters[0].ID)
	require.NoError(t, err)
	assert.True(t, coursePublished(t, env, course.ID), "only unpublishing cascades to the course")
}

func TestChapterDeleteCleansUpAfterCommit(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	course := env.Course(t, owner, "Course")
	ch := env.ChaptersFor(t, owner, course.ID, "A")[0]
	_, err := env.Chapters.Update(ctx, owner, course.ID, ch.ID, map[string]any{
		"videoUrl": "https://files.test/videos/a.mp4",
	})
	require.NoError(t, err)

	// the connection pool holds a single connection, so this query only
	// returns if no transaction is open while the asset is being removed
	var remaining int64 = -1
	env.Videos.OnDelete = func(string) {
		require.NoError(t, env.DB.Model(&models.Chapter{}).Where("id = ?", ch.ID).Count(&remaining).Error)
	}
	_, err = env.Chapters.Delete(ctx, owner, course.ID, ch.ID)
	require.NoError(t, err)

	assert.Zero(t, remaining)
	assert.Equal(t, []string{"asset-1"}, env.Videos.DeletedAssets())
}

func TestChapterUpdateStrangerBeforeValidation(t *testing.T) {
	env := testutil.NewEnv(t)
	course := env.Course(t, owner, "Course")
	ch := env.ChaptersFor(t, owner, course.ID, "A")[0]

	for name, body := range map[string]map[string]any{
		"invalid url":  {"videoUrl": "x"},
		"empty title":  {"title": ""},
		"unknown keys": {"foo": 1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := env.Chapters.Update(context.Background(), stranger, course.ID, ch.ID, body)
			assert.ErrorIs(t, err, services.ErrUnauthorized)
		})
	}
	_, err := env.Chapters.Update(context.Background(), stranger, course.ID, uuid.New(), map[string]any{"title": "B"})
	assert.ErrorIs(t, err, services.ErrUnauthorized, "an unknown chapter is not revealed to a stranger")
	assert.Empty(t, env.Videos.Created)
}

func TestChapterConcurrentVideoUpdates(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	course := env.Course(t, owner, "Course")
	ch := env.ChaptersFor(t, owner, course.ID, "A")[0]
	_, err := env.Chapters.Update(ctx, owner, course.ID, ch.ID, map[string]any{
		"videoUrl": "https://files.test/videos/first.mp4",
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.Chapters.Update(ctx, owner, course.ID, ch.ID, map[string]any{
				"videoUrl": fmt.Sprintf("https://files.test/videos/%d.mp4", i),
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	var rows []models.MuxData
	require.NoError(t, env.DB.Where("chapter_id = ?", ch.ID).Find(&rows).Error)
	require.Len(t, rows, 1)

	created := env.Videos.CreatedCount()
	require.Equal(t, 5, created)
	var orphans []string
	for n := 1; n <= created; n++ {
		if id := fmt.Sprintf("asset-%d", n); id != rows[0].AssetID {
			orphans = append(orphans, id)
		}
	}
	assert.ElementsMatch(t, orphans, env.Videos.DeletedAssets(), "every replaced asset is removed")
	assert.Empty(t, env.CleanupTasks(t))
}
