package api

import (
	"net/http"

	"storeit/backend/middleware"
	"storeit/backend/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthSignOut revokes the server-side session and clears the cookie. The
// cookie is cleared even when the row delete fails, failing towards
// logged-out is the safe direction
func (a *API) AuthSignOut(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	sessionID := c.MustGet("sessionID").(string)

	err := a.DB.
		Where("id = ?", sessionID).
		Delete(model.Session{}).
		Error
	if err != nil {
		zap.L().Error("Failed to delete session", zap.Error(err), zap.String("requestID", requestID))
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", true, true)

	c.JSON(http.StatusOK, gin.H{
		"redirect":  middleware.SignInPath,
		"requestID": requestID,
	})
}
