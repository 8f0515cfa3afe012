package models

import "time"

// FileUpload is the attachment store row. The binary itself lives in S3
// under ObjectKey; everything else references the upload by id.
type FileUpload struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ObjectKey string    `gorm:"size:255;not null;uniqueIndex" json:"-"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	URL       string    `gorm:"size:512" json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
