package api

import (
	"errors"
	"net/http"
	"strings"

	"storeit/backend/model"
	"storeit/backend/validators"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const avatarPlaceholderURL = "https://api.dicebear.com/9.x/initials/svg"

type signUpBody struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// AuthSignUp registers a new user and mails the first passcode. A
// duplicate email answers with a structured conflict body instead of an
// opaque error so the form can render it inline
func (a *API) AuthSignUp(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data signUpBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		zap.L().Debug("Invalid email", zap.Error(err), zap.String("requestID", requestID))

		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if strings.TrimSpace(data.FullName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Full name field can't be empty",
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

		zap.L().Error("Failed to check if user is registered", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"accountId": nil,
			"error":     "A user with this credential already exists. Try signing in.",
			"requestID": requestID,
		})
		return
	}

	accountID, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate account ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := a.issuePasscode(accountID, data.Email); err != nil {
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

	userID, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate user ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := a.DB.Create(&model.User{
		ID:        userID,
		AccountID: accountID,
		FullName:  data.FullName,
		Email:     data.Email,
		Avatar:    avatarPlaceholderURL,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accountId": accountID,
		"requestID": requestID,
	})
}
