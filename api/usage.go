package api

import (
	"net/http"
	"time"

	"storeit/backend/internal/filetype"
	"storeit/backend/model"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type spaceBucket struct {
	Size       int64  `json:"size"`
	LatestDate string `json:"latestDate"`
}

type totalSpace struct {
	Image    spaceBucket `json:"image"`
	Document spaceBucket `json:"document"`
	Video    spaceBucket `json:"video"`
	Audio    spaceBucket `json:"audio"`
	Other    spaceBucket `json:"other"`
	Used     int64       `json:"used"`
	All      int64       `json:"all"`
}

// Usage scans the caller's files and reduces them into the five fixed
// category buckets, tracking cumulative size and the most recent update
// per bucket against the configured capacity. Plain O(n) read, per-user
// file counts stay small enough that nothing smarter is warranted
func (a *API) Usage(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	user, ok := a.currentUser(c)
	if !ok {
		return
	}

	var files []model.File

	err := a.DB.
		Where("owner_id = ?", user.ID).
		Find(&files).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to load user files", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	var space totalSpace
	space.All = viper.GetInt64("storage.max_usage")

	// Fixed mapping keyed by the category enum, an unknown stored type
	// can't grow the result shape
	buckets := map[filetype.Category]*spaceBucket{
		filetype.Image:    &space.Image,
		filetype.Document: &space.Document,
		filetype.Video:    &space.Video,
		filetype.Audio:    &space.Audio,
		filetype.Other:    &space.Other,
	}

	latest := map[filetype.Category]time.Time{}

	for _, f := range files {
		category, err := filetype.Parse(f.Type)
		if err != nil {
			// Upload validates the category, a bad row here means
			// someone wrote around the API. Skip it rather than
			// taking the dashboard down
			zap.L().Warn("Skipping file with unknown category",
				zap.String("id", f.ID), zap.String("type", f.Type))
			continue
		}

		b := buckets[category]
		b.Size += f.Size
		space.Used += f.Size

		if f.UpdatedAt.After(latest[category]) {
			latest[category] = f.UpdatedAt
			b.LatestDate = f.UpdatedAt.Format(time.RFC3339)
		}
	}

	c.JSON(http.StatusOK, space)
}
