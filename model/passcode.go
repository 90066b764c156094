package model

import "time"

// Passcode is a one-time emailed sign-in code. Only the argon2 hash is
// stored, the plaintext exists solely in the outgoing mail
type Passcode struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID string `gorm:"index;not null" json:"accountId"`
	Email     string `gorm:"not null" json:"email"`
	CodeHash  string `gorm:"not null" json:"-"`
	Used      bool   `gorm:"default:false" json:"used"`

	ExpiresAt time.Time `gorm:"index" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}
