package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"storeit/backend/middleware"
	"storeit/backend/model"
	"storeit/backend/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const passcodeTTL = 15 * time.Minute

// ErrDelivery means the passcode mail could not be sent. The account
// state is unchanged when this comes back
var ErrDelivery = errors.New("failed to deliver passcode")

// getUserByEmail returns nil without an error when no user exists, the
// sign-up and sign-in flows branch on that rather than on a lookup failure
func (a *API) getUserByEmail(email string) (*model.User, error) {
	var user model.User

	err := a.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}

		return nil, err
	}

	return &user, nil
}

// issuePasscode generates, persists and mails a one-time code for the
// account. A failed send removes the row again so a code that never
// reached a mailbox can't be redeemed
func (a *API) issuePasscode(accountID, email string) error {
	expiresAt := time.Now().Add(passcodeTTL)

	code, passcode, err := security.MakePasscode(a.Hasher, &security.PasscodeOpts{
		AccountID: accountID,
		Email:     email,
		ExpiresAt: &expiresAt,
	})
	if err != nil {
		return err
	}

	if err := a.DB.Create(passcode).Error; err != nil {
		return err
	}

	if err := a.Mail.SendPasscode(email, code); err != nil {
		if derr := a.DB.Delete(passcode).Error; derr != nil {
			zap.L().Error("Failed to remove undeliverable passcode", zap.Error(derr))
		}

		return fmt.Errorf("%w, %v", ErrDelivery, err)
	}

	return nil
}

// currentUser resolves the authenticated session to its user document.
// A session whose user document is gone is answered with the sign-in
// redirect instead of a server error
func (a *API) currentUser(c *gin.Context) (*model.User, bool) {
	requestID := c.MustGet("requestID").(string)
	accountID := c.MustGet("accountID").(string)

	var user model.User

	err := a.DB.Where("account_id = ?", accountID).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "unauthorized",
				"redirect":  middleware.SignInPath,
				"requestID": requestID,
			})
			return nil, false
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to resolve current user", zap.Error(err), zap.String("requestID", requestID))
		return nil, false
	}

	return &user, true
}
