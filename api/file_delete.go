package api

import (
	"context"
	"net/http"
	"time"

	"storeit/backend/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileDelete removes the metadata row first, then the blob. A failed row
// delete never leaves a record without a blob; if the blob delete fails
// afterwards an intent row is written so the reconciler retries it
func (a *API) FileDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	user, ok := a.currentUser(c)
	if !ok {
		return
	}

	fileID := c.Param("id")

	var file model.File

	err := a.DB.
		Where("owner_id = ? AND id = ?", user.ID, fileID).
		First(&file).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File not found. It either doesn't exist or you don't own it",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check if file exists", zap.Error(err))
		return
	}

	if err := a.DB.Delete(&file).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete file record", zap.Error(err))
		return
	}

	if err := a.Store.Delete(context.Background(), file.BucketKey); err != nil {
		zap.L().Error("Failed to delete file from S3", zap.Error(err))

		// Leave a marker so the sweep picks the blob up later. The row
		// is already gone, so the reconciler will see no file for the
		// key and delete the object
		a.DB.Create(&model.PendingUpload{
			BucketKey: file.BucketKey,
			OwnerID:   user.ID,
			CreatedAt: time.Now().Add(-24 * time.Hour),
		})
	}

	bustCache("/api/files/" + fileID + "/view")

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"requestID": requestID,
	})
}
