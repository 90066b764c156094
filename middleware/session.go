package middleware

import (
	"fmt"
	"net/http"
	"time"

	"storeit/backend/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionCookie is the browser-side credential. HTTP-only, strict
// same-site, secure, scoped to /
const SessionCookie = "storeit-session"

// SignInPath is where unauthenticated callers are pointed to
const SignInPath = "/sign-in"

// resolveSession parses the session cookie and checks the session row
// still exists and hasn't expired. A valid token whose row is gone counts
// as signed out, which is what makes server-side sign-out authoritative
func resolveSession(c *gin.Context, d *gorm.DB) (*model.Session, error) {
	tokenStr, err := c.Cookie(SessionCookie)
	if err != nil {
		return nil, err
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return []byte(viper.GetString("session.jwt_secret")), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}

	sessionID, ok := claims["session_id"].(string)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}

	var session model.Session
	if err := d.Where("id = ?", sessionID).First(&session).Error; err != nil {
		return nil, err
	}

	if time.Now().After(session.ExpiresAt) {
		return nil, jwt.ErrTokenExpired
	}

	return &session, nil
}

// NewSessionMiddleware guards a route group behind a live session. On
// success the request context carries sessionID and accountID
func NewSessionMiddleware(d *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		session, err := resolveSession(c, d)
		if err != nil {
			if err != http.ErrNoCookie && err != gorm.ErrRecordNotFound {
				zap.L().Debug("Rejected session token", zap.Error(err), zap.String("requestID", requestID))
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "unauthorized",
				"redirect":  SignInPath,
				"requestID": requestID,
			})
			return
		}

		c.Set("sessionID", session.ID)
		c.Set("accountID", session.AccountID)
		c.Next()
	}
}
