package api

import (
	"net/http"
	"time"

	"storeit/backend/middleware"
	"storeit/backend/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type verifyBody struct {
	AccountID string `json:"accountId"`
	Password  string `json:"password"`
}

// AuthVerify exchanges a mailed passcode for a session. On success the
// session cookie is set and the new session ID returned, on a wrong or
// expired code nothing about the caller's state changes
func (a *API) AuthVerify(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data verifyBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.AccountID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Account ID field can't be empty",
			"requestID": requestID,
		})
		return
	}

	if data.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Passcode field can't be empty",
			"requestID": requestID,
		})
		return
	}

	var passcode model.Passcode

	err := a.DB.
		Where("account_id = ? AND used = ?", data.AccountID, false).
		Order("created_at desc").
		First(&passcode).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid or expired passcode",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up passcode", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if time.Now().After(passcode.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "Invalid or expired passcode",
			"requestID": requestID,
		})
		return
	}

	ok, err := a.Hasher.Verify(data.Password, passcode.CodeHash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify passcode", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "Invalid or expired passcode",
			"requestID": requestID,
		})
		return
	}

	// Single use, even a correct re-submission must fail from here on
	if err := a.DB.Model(&passcode).Update("used", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to consume passcode", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	sessionID, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate session ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	ttl := time.Duration(viper.GetInt("session.ttl_hours")) * time.Hour
	expiresAt := time.Now().Add(ttl)

	if err := a.DB.Create(&model.Session{
		ID:        sessionID,
		AccountID: data.AccountID,
		ExpiresAt: expiresAt,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create session", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	sessionToken, err := makeToken(&jwt.MapClaims{
		"session_id": sessionID,
		"account_id": data.AccountID,
		"type":       "session",
		"iat":        time.Now().Unix(),
		"exp":        expiresAt.Unix(),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to sign session token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, sessionToken, int(ttl.Seconds()), "/", "", true, true)

	c.JSON(http.StatusOK, gin.H{
		"sessionId": sessionID,
		"requestID": requestID,
	})
}

func makeToken(c *jwt.MapClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString([]byte(viper.GetString("session.jwt_secret")))
}
