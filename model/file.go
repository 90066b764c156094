package model

import "time"

type File struct {
	ID      string `gorm:"primaryKey" json:"id"`
	OwnerID string `gorm:"index;not null" json:"ownerId"`
	// Account of the owner at upload time. Kept denormalized so a file row
	// can be resolved without a join
	AccountID string `json:"accountId"`

	// Since different users may upload files with the same name the S3
	// object lives under a generated key instead
	BucketKey string `gorm:"uniqueIndex;not null" json:"bucketFileId"`

	// Display name, including the extension
	Name string `json:"name"`
	URL  string `json:"url"`
	// One of image, document, video, audio, other
	Type      string `gorm:"index" json:"type"`
	Extension string `json:"extension"`
	Size      int64  `json:"size"`

	// Emails granted read access. Whole-list replacement on update,
	// no merge semantics
	Users StringSlice `gorm:"type:text" json:"users"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
