package model

import "time"

// Session is the server-side half of a signed-in browser. The cookie only
// carries a signed token naming this row, so deleting the row revokes the
// session no matter what the client still holds
type Session struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	AccountID string    `gorm:"index;not null" json:"accountId"`
	ExpiresAt time.Time `gorm:"index" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}
