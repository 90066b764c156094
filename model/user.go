package model

import "time"

// User is the database record backing an identity account. AccountID
// correlates it with the account that passcodes and sessions are issued
// against. Created once per email on first sign-up
type User struct {
	ID        string `gorm:"primaryKey" json:"id"`
	AccountID string `gorm:"uniqueIndex;not null" json:"accountId"`
	FullName  string `json:"fullName"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Avatar    string `json:"avatar"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Files []File `gorm:"foreignKey:OwnerID" json:"-"`
}
