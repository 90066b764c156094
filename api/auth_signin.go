package api

import (
	"errors"
	"net/http"

	"storeit/backend/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type signInBody struct {
	Email string `json:"email"`
}

// AuthSignIn re-issues a passcode for an existing account. Sign-in never
// registers, an unknown email answers with a structured not-found body
func (a *API) AuthSignIn(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data signInBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	existing, err := a.getUserByEmail(data.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"accountId": nil,
			"error":     "User not found",
			"requestID": requestID,
		})
		return
	}

	if err := a.issuePasscode(existing.AccountID, existing.Email); err != nil {
		if errors.Is(err, ErrDelivery) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":     "Failed to send email OTP",
				"requestID": requestID,
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})
		}

		zap.L().Error("Failed to issue passcode", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accountId": existing.AccountID,
		"requestID": requestID,
	})
}
