package service

import (
	"time"

	"storeit/backend/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PasscodeCleanup defines a function used to periodically delete
// passcodes that expired or were already redeemed
func PasscodeCleanup(t time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Passcode cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			err := db.
				Where("expires_at < ? OR used = ?", time.Now(), true).
				Delete(model.Passcode{}).
				Error
			if err != nil {
				zap.L().Error("Failed to cleanup expired passcodes", zap.Error(err))
			}
		}
	}()
}

// SessionCleanup periodically drops sessions past their expiry so the
// sessions table doesn't accrete rows for browsers that never signed out
func SessionCleanup(t time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Session cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			err := db.
				Where("expires_at < ?", time.Now()).
				Delete(model.Session{}).
				Error
			if err != nil {
				zap.L().Error("Failed to cleanup expired sessions", zap.Error(err))
			}
		}
	}()
}
