package service

import (
	"context"
	"fmt"
	"time"

	"storeit/backend/model"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// How long an upload intent may sit before it's considered abandoned.
// Long enough for the slowest plausible multipart upload to finish
const pendingGrace = time.Hour

type objectDeleter interface {
	Delete(ctx context.Context, key string) error
}

// StartUploadReconciler schedules the orphaned blob sweep. Uploads write a
// pending intent before the blob and clear it after the metadata row, so
// any intent older than the grace period with no matching file row points
// at a blob nothing references anymore
func StartUploadReconciler(db *gorm.DB, store objectDeleter, runNow bool) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc("@every 15m", func() {
		ReconcileUploads(db, store)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule upload reconciler, %w", err)
	}

	c.Start()

	if runNow {
		go ReconcileUploads(db, store)
	}

	return c, nil
}

// ReconcileUploads performs a single sweep. Idempotent, deleting an
// already-deleted object is a no-op for S3
func ReconcileUploads(db *gorm.DB, store objectDeleter) {
	var stale []model.PendingUpload

	err := db.
		Where("created_at < ?", time.Now().Add(-pendingGrace)).
		Find(&stale).
		Error
	if err != nil {
		zap.L().Error("Failed to query stale pending uploads", zap.Error(err))
		return
	}

	for _, p := range stale {
		var count int64

		err := db.
			Model(model.File{}).
			Where("bucket_key = ?", p.BucketKey).
			Count(&count).
			Error
		if err != nil {
			zap.L().Error("Failed to check pending upload for a file row", zap.Error(err))
			continue
		}

		// The metadata write landed but the intent wasn't cleared.
		// Just drop the intent
		if count > 0 {
			db.Delete(&p)
			continue
		}

		if err := store.Delete(context.Background(), p.BucketKey); err != nil {
			zap.L().Error("Failed to delete orphaned blob",
				zap.String("bucket_key", p.BucketKey), zap.Error(err))
			continue
		}

		if err := db.Delete(&p).Error; err != nil {
			zap.L().Error("Failed to clear reconciled intent", zap.Error(err))
			continue
		}

		zap.L().Debug("Reclaimed orphaned blob", zap.String("bucket_key", p.BucketKey))
	}
}
