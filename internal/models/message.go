package models

import (
	"time"

	"gorm.io/gorm"
)

// Message is a directed message between two users. Sender and receiver
// are fixed at creation; only the body and read flag are mutable.
type Message struct {
	ID          uint                `gorm:"primarykey" json:"id"`
	SenderID    uint                `gorm:"not null;index" json:"sender_id"`
	Sender      User                `gorm:"foreignKey:SenderID" json:"sender"`
	ReceiverID  uint                `gorm:"not null;index" json:"receiver_id"`
	Receiver    User                `gorm:"foreignKey:ReceiverID" json:"receiver"`
	Message     string              `gorm:"type:text;not null" json:"message"`
	IsRead      bool                `gorm:"not null;default:false" json:"is_read"`
	Attachments []MessageAttachment `gorm:"foreignKey:MessageID" json:"message_attachments"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	DeletedAt   gorm.DeletedAt      `gorm:"index" json:"-"`
}

// MessageAttachment links an uploaded file to a message.
type MessageAttachment struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	MessageID    uint       `gorm:"not null;index" json:"message_id"`
	AttachmentID uint       `gorm:"not null" json:"attachment_id"`
	Attachment   FileUpload `gorm:"foreignKey:AttachmentID" json:"attachment"`
	Caption      *string    `gorm:"size:255" json:"caption"`
	CreatedAt    time.Time  `json:"created_at"`
}
