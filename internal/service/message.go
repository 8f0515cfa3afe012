package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/socialchat/backend/internal/models"
)

var (
	ErrForbidden       = errors.New("sender does not match authenticated user")
	ErrMessageNotFound = errors.New("message not found")
)

// AttachmentInput references an uploaded file to attach to a message.
type AttachmentInput struct {
	AttachmentID uint    `json:"attachment_id" binding:"required"`
	Caption      *string `json:"caption"`
}

// CreateMessageRequest is the payload for sending a message.
type CreateMessageRequest struct {
	SenderID    uint              `json:"sender_id" binding:"required"`
	ReceiverID  uint              `json:"receiver_id" binding:"required"`
	Message     string            `json:"message" binding:"required"`
	Attachments []AttachmentInput `json:"attachments"`
}

// UpdateMessageRequest carries the mutable message fields.
type UpdateMessageRequest struct {
	Message *string `json:"message"`
	IsRead  *bool   `json:"is_read"`
}

// MessageService handles message creation, updates and conversation reads.
type MessageService struct {
	db       *gorm.DB
	notifier *Notifier
}

// NewMessageService creates a new MessageService instance
func NewMessageService(db *gorm.DB, notifier *Notifier) *MessageService {
	return &MessageService{
		db:       db,
		notifier: notifier,
	}
}

// Create inserts a message and bulk-inserts its attachments. The sender
// must be the authenticated caller; a mismatch is rejected before any row
// is written. The attachment insert is a separate statement from the
// message insert, so a crash between the two leaves an attachment-less
// message.
//
// The relay is only notified when a message has no attachments, matching
// the original system.
func (s *MessageService) Create(ctx context.Context, callerID uint, req *CreateMessageRequest) (*models.Message, error) {
	if req.SenderID != callerID {
		return nil, ErrForbidden
	}

	message := models.Message{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Message:    req.Message,
	}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, err
	}

	if len(req.Attachments) > 0 {
		rows := make([]models.MessageAttachment, 0, len(req.Attachments))
		for _, a := range req.Attachments {
			rows = append(rows, models.MessageAttachment{
				MessageID:    message.ID,
				AttachmentID: a.AttachmentID,
				Caption:      a.Caption,
			})
		}
		if err := s.db.Create(&rows).Error; err != nil {
			return nil, err
		}
	} else {
		s.notifier.Notify(ctx, req.Message, req.SenderID, req.ReceiverID)
	}

	return s.Get(message.ID)
}

// Get retrieves a message with sender, receiver and attachments loaded.
func (s *MessageService) Get(messageID uint) (*models.Message, error) {
	var message models.Message
	err := s.db.Preload("Sender").Preload("Receiver").
		Preload("Attachments").Preload("Attachments.Attachment").
		First(&message, messageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// Update applies a partial update to a message's body or read flag.
// Sender and receiver are immutable. Any authenticated user may update a
// message; the receiver has to be able to flip is_read, so there is no
// sender-only check.
func (s *MessageService) Update(messageID uint, req *UpdateMessageRequest) (*models.Message, error) {
	var message models.Message
	if err := s.db.First(&message, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Message != nil {
		updates["message"] = *req.Message
	}
	if req.IsRead != nil {
		updates["is_read"] = *req.IsRead
	}
	if len(updates) > 0 {
		if err := s.db.Model(&message).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.Get(messageID)
}

// ListConversation returns all messages exchanged between the caller and
// another user, oldest first.
func (s *MessageService) ListConversation(callerID, otherID uint) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.Preload("Sender").Preload("Receiver").
		Preload("Attachments").Preload("Attachments.Attachment").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			callerID, otherID, otherID, callerID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
