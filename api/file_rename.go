package api

import (
	"net/http"
	"strings"

	"storeit/backend/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type renameBody struct {
	Name      string `json:"name"`
	Extension string `json:"extension"`
}

// FileRename recomputes the display name as name.extension and updates
// only that column
func (a *API) FileRename(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	user, ok := a.currentUser(c)
	if !ok {
		return
	}

	fileID := c.Param("id")

	var data renameBody
	if err := c.BindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read JSON body", zap.Error(err))
		return
	}

	if strings.TrimSpace(data.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No new name provided",
			"requestID": requestID,
		})
		return
	}

	var file model.File

	err := a.DB.
		Where("owner_id = ? AND id = ?", user.ID, fileID).
		First(&file).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "File not found. It either doesn't exist or you don't own it",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch file from db", zap.Error(err))
		return
	}

	newName := data.Name
	if data.Extension != "" {
		newName += "." + data.Extension
	}

	if err := a.DB.Model(&file).Update("name", newName).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update file entry", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file":      file,
		"requestID": requestID,
	})
}
