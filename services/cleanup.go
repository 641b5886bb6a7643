package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/models"
	"github.com/vnkhanh/e-course-backend/utils"
)

const cleanupBatchSize = 50

// Cleaner deletes external objects on a best-effort basis. A failed deletion
// never fails the caller: it is logged and queued as a CleanupTask that the
// cron job retries.
type Cleaner struct {
	Files         utils.FileStore
	Videos        VideoEncoder
	Log           *zap.Logger
	MaxAttempts   int
	RetryInterval time.Duration
	Now           func() time.Time
}

func NewCleaner(files utils.FileStore, videos VideoEncoder, log *zap.Logger, maxAttempts int) *Cleaner {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Cleaner{
		Files:         files,
		Videos:        videos,
		Log:           log,
		MaxAttempts:   maxAttempts,
		RetryInterval: 5 * time.Minute,
		Now:           time.Now,
	}
}

// VideoAsset removes an encoded asset. db is used to queue a retry.
func (c *Cleaner) VideoAsset(ctx context.Context, db *gorm.DB, assetID string, origin map[string]any) {
	if assetID == "" {
		return
	}
	if err := c.Videos.DeleteAsset(ctx, assetID); err != nil {
		c.Log.Warn("video asset cleanup failed", zap.String("asset_id", assetID), zap.Error(err))
		c.enqueue(db, models.CleanupVideoAsset, assetID, err, origin)
	}
}

// File removes a stored upload by its public URL.
func (c *Cleaner) File(ctx context.Context, db *gorm.DB, fileURL string, origin map[string]any) {
	if fileURL == "" {
		return
	}
	if err := c.Files.Delete(ctx, fileURL); err != nil {
		c.Log.Warn("file cleanup failed", zap.String("url", fileURL), zap.Error(err))
		c.enqueue(db, models.CleanupFile, fileURL, err, origin)
	}
}

func (c *Cleaner) enqueue(db *gorm.DB, kind models.CleanupKind, ref string, cause error, origin map[string]any) {
	payload, err := json.Marshal(origin)
	if err != nil {
		payload = []byte("{}")
	}
	task := models.CleanupTask{
		Kind:      kind,
		Ref:       ref,
		Attempts:  1,
		LastError: cause.Error(),
		Payload:   datatypes.JSON(payload),
		NextRunAt: c.Now().Add(c.RetryInterval),
	}
	// Nested so that inside a caller's transaction a failed insert only rolls
	// back to its savepoint.
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&task).Error
	}); err != nil {
		c.Log.Error("cannot queue cleanup task", zap.String("kind", string(kind)), zap.String("ref", ref), zap.Error(err))
	}
}

func (c *Cleaner) run(ctx context.Context, task models.CleanupTask) error {
	switch task.Kind {
	case models.CleanupVideoAsset:
		return c.Videos.DeleteAsset(ctx, task.Ref)
	case models.CleanupFile:
		return c.Files.Delete(ctx, task.Ref)
	default:
		return errors.Errorf("unknown cleanup kind %q", task.Kind)
	}
}

// RunDue retries every task whose time has come. Successful tasks are removed;
// failed ones are pushed back linearly until MaxAttempts is reached.
func (c *Cleaner) RunDue(ctx context.Context, db *gorm.DB) (int, error) {
	now := c.Now()
	var tasks []models.CleanupTask
	if err := db.WithContext(ctx).
		Where("next_run_at <= ? AND attempts < ?", now, c.MaxAttempts).
		Order("next_run_at ASC").
		Limit(cleanupBatchSize).
		Find(&tasks).Error; err != nil {
		return 0, errors.Wrap(err, "load cleanup tasks")
	}

	done := 0
	for _, task := range tasks {
		if err := c.run(ctx, task); err != nil {
			attempts := task.Attempts + 1
			if attempts >= c.MaxAttempts {
				c.Log.Error("cleanup task gave up", zap.String("id", task.ID.String()), zap.String("ref", task.Ref), zap.Error(err))
			}
			if uerr := db.WithContext(ctx).Model(&task).Updates(map[string]any{
				"attempts":    attempts,
				"last_error":  err.Error(),
				"next_run_at": now.Add(time.Duration(attempts) * c.RetryInterval),
			}).Error; uerr != nil {
				return done, errors.Wrap(uerr, "update cleanup task")
			}
			continue
		}
		if err := db.WithContext(ctx).Delete(&task).Error; err != nil {
			return done, errors.Wrap(err, "delete cleanup task")
		}
		done++
	}
	return done, nil
}

// Start schedules RunDue and runs it once immediately.
func (c *Cleaner) Start(db *gorm.DB, schedule string) (*cron.Cron, error) {
	job := func() {
		n, err := c.RunDue(context.Background(), db)
		if err != nil {
			c.Log.Error("cleanup job failed", zap.Error(err))
			return
		}
		if n > 0 {
			c.Log.Info("cleanup job finished", zap.Int("deleted", n))
		}
	}

	cr := cron.New()
	if _, err := cr.AddFunc(schedule, job); err != nil {
		return nil, errors.Wrapf(err, "invalid cleanup schedule %q", schedule)
	}
	go job()
	cr.Start()
	c.Log.Info("cleanup job started", zap.String("schedule", schedule))
	return cr, nil
}
