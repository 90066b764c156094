package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storeit/backend/internal/filetype"
	"storeit/backend/model"
	"storeit/backend/validators"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// FileUpload writes the blob to the bucket and records its metadata.
// The pending intent row brackets the two writes: it's created before the
// blob goes out and cleared after the metadata lands, so a crash in
// between leaves a marker the reconciler can act on. If the metadata
// write fails outright the blob is deleted immediately
func (a *API) FileUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	user, ok := a.currentUser(c)
	if !ok {
		return
	}

	if !strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data") {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to parse multipart form", zap.Error(err))
		return
	}

	files := form.File["file"]
	if len(files) <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})
		return
	}

	fh := files[0]

	code, f, contentType, err := validators.FileValidator(fh, a.DB, user.ID)
	if err != nil {
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate file", zap.Error(err))

			// That's to set the error into a general one for the users
			err = errors.New("internal server error")
		}

		c.AbortWithStatusJSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}
	defer f.Close()

	category, ext := filetype.FromFilename(fh.Filename)

	key, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate bucket key", zap.Error(err))
		return
	}

	bucketKey := key
	if ext != "" {
		bucketKey += "." + ext
	}

	pending := model.PendingUpload{
		BucketKey: bucketKey,
		OwnerID:   user.ID,
		CreatedAt: time.Now(),
	}

	if err := a.DB.Create(&pending).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to record upload intent", zap.Error(err))
		return
	}

	if err := a.Store.Put(c.Request.Context(), bucketKey, f, fh.Size, contentType); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to upload file to S3", zap.Error(err))

		// The blob may or may not exist, try once and let the
		// reconciler keep the intent if it doesn't work out
		if derr := a.Store.Delete(context.Background(), bucketKey); derr == nil {
			a.DB.Delete(&pending)
		}
		return
	}

	fileID, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate file ID", zap.Error(err))
		return
	}

	file := model.File{
		ID:        fileID,
		OwnerID:   user.ID,
		AccountID: user.AccountID,
		BucketKey: bucketKey,
		Name:      fh.Filename,
		URL:       a.Store.ObjectURL(bucketKey),
		Type:      string(category),
		Extension: ext,
		Size:      fh.Size,
		Users:     model.StringSlice{},
	}

	if err := a.DB.Create(&file).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save file record to db", zap.Error(err))

		// Compensate so the bucket doesn't keep a blob no record
		// points at anymore
		if derr := a.Store.Delete(context.Background(), bucketKey); derr != nil {
			zap.L().Error("Failed to cleanup after failed upload", zap.Error(derr))
			return
		}

		a.DB.Delete(&pending)
		return
	}

	if err := a.DB.Delete(&pending).Error; err != nil {
		// Harmless, the reconciler sees the file row and just drops
		// the intent
		zap.L().Debug("Failed to clear upload intent", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"file":      file,
		"requestID": requestID,
	})
}
