package model

import "time"

// PendingUpload marks an object write that has no metadata row yet. The
// row is created before the blob goes out and cleared once the file record
// lands, so anything left behind is an orphan the reconciler may delete
type PendingUpload struct {
	BucketKey string    `gorm:"primaryKey" json:"bucketKey"`
	OwnerID   string    `gorm:"index" json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}
