package api

import (
	"net/http"

	"storeit/backend/model"
	"storeit/backend/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type shareBody struct {
	Emails []string `json:"emails"`
}

// FileShare replaces the file's whole sharing list with the supplied
// addresses. Last writer wins, there is no merge
func (a *API) FileShare(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	user, ok := a.currentUser(c)
	if !ok {
		return
	}

	fileID := c.Param("id")

	var data shareBody
	if err := c.BindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read JSON body", zap.Error(err))
		return
	}

	for _, e := range data.Emails {
		if err := validators.EmailValidator(e); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}
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

	file.Users = model.StringSlice(data.Emails)

	if err := a.DB.Model(&file).Update("users", file.Users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update sharing list", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file":      file,
		"requestID": requestID,
	})
}
