package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is one directed negotiation message about a listing. Immutable once created.
type Message struct {
	MessageID  uuid.UUID `gorm:"column:message_id;type:uuid;primaryKey" json:"message_id"`
	SenderID   uuid.UUID `gorm:"column:sender_id;type:uuid;not null;index:idx_message_pair" json:"sender_id"`
	ReceiverID uuid.UUID `gorm:"column:receiver_id;type:uuid;not null;index:idx_message_pair" json:"receiver_id"`
	ListingID  uuid.UUID `gorm:"column:listing_id;type:uuid;not null;index" json:"listing_id"`
	Content    string    `gorm:"column:content;type:text;not null" json:"content"`
	Timestamp  time.Time `gorm:"column:timestamp;not null;index" json:"timestamp"`
}

func (Message) TableName() string {
	return "Messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.MessageID == uuid.Nil {
		m.MessageID = uuid.New()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}
