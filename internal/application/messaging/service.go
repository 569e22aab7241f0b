package messaging

import (
	"context"
	"errors"
	"strings"

	"postmarket-backend/internal/application/emails"
	"postmarket-backend/internal/application/events"
	"postmarket-backend/internal/domain"
	"postmarket-backend/internal/infrastructure/metrics"
	"postmarket-backend/internal/pkg/links"
	"postmarket-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Service struct {
	DB          *gorm.DB
	Mailer      emails.Sender
	Publisher   events.Publisher
	SiteBaseURL string
}

// MessageView is a message with the names needed to display it.
type MessageView struct {
	domain.Message
	SenderUsername   string `json:"sender_username"`
	ReceiverUsername string `json:"receiver_username"`
	ListingTitle     string `json:"listing_title"`
}

// ChatView is the conversation between the viewer and one other user about one listing.
type ChatView struct {
	Listing   domain.Listing `json:"listing"`
	OtherUser domain.User    `json:"other_user"`
	Messages  []MessageView  `json:"messages"`
}

// SendMessage stores a message from senderID to receiverID about listingID. Content is
// kept verbatim. The receiver is notified by email on a best-effort basis.
func (s *Service) SendMessage(ctx context.Context, senderID, receiverID, listingID uuid.UUID, content string) (*domain.Message, error) {
	if !validation.Required(content) {
		return nil, ErrContentRequired
	}
	db := s.DB.WithContext(ctx)
	receiver, err := findUser(db, receiverID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, err
	}
	listing, err := findListing(db, listingID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		SenderID:   senderID,
		ReceiverID: receiver.UserID,
		ListingID:  listing.ListingID,
		Content:    content,
	}
	if err := db.Create(msg).Error; err != nil {
		return nil, err
	}

	metrics.RecordMessage()
	log.Info().Str("message_id", msg.MessageID.String()).Str("listing_id", listingID.String()).Msg("message sent")
	events.PublishQuietly(ctx, s.Publisher, events.TopicMessageSent, listingID.String(), events.MessageSent{
		MessageID:  msg.MessageID.String(),
		SenderID:   senderID.String(),
		ReceiverID: receiverID.String(),
		ListingID:  listingID.String(),
	})
	s.notify(ctx, db, msg, receiver, listing)
	return msg, nil
}

func (s *Service) notify(ctx context.Context, db *gorm.DB, msg *domain.Message, receiver *domain.User, listing *domain.Listing) {
	if s.Mailer == nil {
		return
	}
	sender, err := findUser(db, msg.SenderID)
	if err != nil {
		log.Warn().Err(err).Str("message_id", msg.MessageID.String()).Msg("negotiation notice skipped")
		return
	}
	notice := emails.NegotiationNotice{
		ToEmail:      receiver.Email,
		ToUsername:   receiver.Username,
		FromUsername: sender.Username,
		ListingTitle: listing.Title,
		ChatURL:      strings.TrimRight(s.SiteBaseURL, "/") + links.Chat(listing.ListingID, sender.UserID),
	}
	if err := s.Mailer.SendNegotiationNotice(ctx, notice); err != nil {
		log.Warn().Err(err).Str("message_id", msg.MessageID.String()).Msg("negotiation notice failed")
	}
}

// GetThread returns the messages exchanged between userA and userB about listingID in
// either direction, oldest first.
func (s *Service) GetThread(ctx context.Context, userA, userB, listingID uuid.UUID) ([]MessageView, error) {
	db := s.DB.WithContext(ctx)
	var rows []domain.Message
	err := db.Where("listing_id = ?", listingID).
		Where(db.Where("sender_id = ? AND receiver_id = ?", userA, userB).
			Or("sender_id = ? AND receiver_id = ?", userB, userA)).
		Order(`"timestamp" ASC`).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return decorate(db, rows)
}

// GetInbox returns every message userID sent or received, newest first.
func (s *Service) GetInbox(ctx context.Context, userID uuid.UUID) ([]MessageView, error) {
	db := s.DB.WithContext(ctx)
	var rows []domain.Message
	if err := db.Where("sender_id = ? OR receiver_id = ?", userID, userID).Order(`"timestamp" DESC`).Find(&rows).Error; err != nil {
		return nil, err
	}
	return decorate(db, rows)
}

// Chat loads the viewer's thread with otherID about listingID.
func (s *Service) Chat(ctx context.Context, viewerID, listingID, otherID uuid.UUID) (*ChatView, error) {
	db := s.DB.WithContext(ctx)
	listing, err := findListing(db, listingID)
	if err != nil {
		return nil, err
	}
	other, err := findUser(db, otherID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.GetThread(ctx, viewerID, otherID, listingID)
	if err != nil {
		return nil, err
	}
	return &ChatView{Listing: *listing, OtherUser: *other, Messages: msgs}, nil
}

// ChatSend appends a message to the other party of the thread and returns the reloaded thread.
func (s *Service) ChatSend(ctx context.Context, viewerID, listingID, otherID uuid.UUID, content string) (*ChatView, error) {
	if _, err := s.SendMessage(ctx, viewerID, otherID, listingID, content); err != nil {
		if errors.Is(err, ErrReceiverNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.Chat(ctx, viewerID, listingID, otherID)
}

func findUser(db *gorm.DB, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := db.Where("user_id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func findListing(db *gorm.DB, id uuid.UUID) (*domain.Listing, error) {
	var l domain.Listing
	if err := db.Where("listing_id = ?", id).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &l, nil
}

func decorate(db *gorm.DB, rows []domain.Message) ([]MessageView, error) {
	out := make([]MessageView, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	userIDs := make([]uuid.UUID, 0, 2*len(rows))
	listingIDs := make([]uuid.UUID, 0, len(rows))
	for _, m := range rows {
		userIDs = append(userIDs, m.SenderID, m.ReceiverID)
		listingIDs = append(listingIDs, m.ListingID)
	}

	var users []domain.User
	if err := db.Select("user_id", "username").Where("user_id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		names[u.UserID] = u.Username
	}
	var listings []domain.Listing
	if err := db.Select("listing_id", "title").Where("listing_id IN ?", listingIDs).Find(&listings).Error; err != nil {
		return nil, err
	}
	titles := make(map[uuid.UUID]string, len(listings))
	for _, l := range listings {
		titles[l.ListingID] = l.Title
	}

	for _, m := range rows {
		out = append(out, MessageView{
			Message:          m,
			SenderUsername:   names[m.SenderID],
			ReceiverUsername: names[m.ReceiverID],
			ListingTitle:     titles[m.ListingID],
		})
	}
	return out, nil
}
