package messaging

import (
	"context"
	"testing"
	"time"

	"postmarket-backend/internal/application/emails"
	"postmarket-backend/internal/application/events"
	"postmarket-backend/internal/domain"
	"postmarket-backend/internal/infrastructure/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMailer struct {
	notices []emails.NegotiationNotice
}

func (f *fakeMailer) SendWelcome(ctx context.Context, toEmail, username string) error { return nil }

func (f *fakeMailer) SendNegotiationNotice(ctx context.Context, n emails.NegotiationNotice) error {
	f.notices = append(f.notices, n)
	return nil
}

type recordingPublisher struct {
	topics []string
}

func (r *recordingPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	r.topics = append(r.topics, topic)
	return nil
}

type fixture struct {
	s       *Service
	db      *gorm.DB
	mailer  *fakeMailer
	pub     *recordingPublisher
	a, b, c uuid.UUID
	l, m    uuid.UUID
}

func setup(t *testing.T) *fixture {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	f := &fixture{db: db, mailer: &fakeMailer{}, pub: &recordingPublisher{}}
	f.s = &Service{DB: db, Mailer: f.mailer, Publisher: f.pub, SiteBaseURL: "https://market.test/"}

	ids := make([]uuid.UUID, 0, 3)
	for _, name := range []string{"alice", "bob", "carol"} {
		u := &domain.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
		require.NoError(t, db.Create(u).Error)
		ids = append(ids, u.UserID)
	}
	f.a, f.b, f.c = ids[0], ids[1], ids[2]

	l := &domain.Listing{Title: "Bike", Content: "c", AuthorID: f.b}
	m := &domain.Listing{Title: "Lamp", Content: "c", AuthorID: f.b}
	require.NoError(t, db.Create(l).Error)
	require.NoError(t, db.Create(m).Error)
	f.l, f.m = l.ListingID, m.ListingID
	return f
}

func (f *fixture) message(t *testing.T, from, to, listing uuid.UUID, content string, at time.Time) *domain.Message {
	msg := &domain.Message{SenderID: from, ReceiverID: to, ListingID: listing, Content: content, Timestamp: at}
	require.NoError(t, f.db.Create(msg).Error)
	return msg
}

func TestSendMessage_StoresVerbatimAndNotifies(t *testing.T) {
	f := setup(t)
	msg, err := f.s.SendMessage(context.Background(), f.a, f.b, f.l, "  would you take 8?  ")
	require.NoError(t, err)
	assert.Equal(t, "  would you take 8?  ", msg.Content)
	assert.False(t, msg.Timestamp.IsZero())

	require.Len(t, f.mailer.notices, 1)
	n := f.mailer.notices[0]
	assert.Equal(t, "bob@example.com", n.ToEmail)
	assert.Equal(t, "alice", n.FromUsername)
	assert.Equal(t, "Bike", n.ListingTitle)
	assert.Equal(t, "https://market.test/api/v1/messages/chat/"+f.l.String()+"/"+f.a.String(), n.ChatURL)
	assert.Equal(t, []string{events.TopicMessageSent}, f.pub.topics)
}

func TestSendMessage_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.s.SendMessage(ctx, f.a, f.b, f.l, " ")
	assert.Equal(t, ErrContentRequired, err)
	_, err = f.s.SendMessage(ctx, f.a, uuid.New(), f.l, "hi")
	assert.Equal(t, ErrReceiverNotFound, err)
	_, err = f.s.SendMessage(ctx, f.a, f.b, uuid.New(), "hi")
	assert.Equal(t, ErrListingNotFound, err)

	var n int64
	require.NoError(t, f.db.Model(&domain.Message{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Empty(t, f.mailer.notices)
}

func TestGetThread_BothDirectionsOneListing(t *testing.T) {
	f := setup(t)
	base := time.Now().UTC().Add(-time.Hour)
	m1 := f.message(t, f.a, f.b, f.l, "A to B", base)
	m2 := f.message(t, f.b, f.a, f.l, "B to A", base.Add(time.Minute))
	f.message(t, f.a, f.c, f.l, "A to C", base.Add(2*time.Minute))
	f.message(t, f.a, f.b, f.m, "A to B on M", base.Add(3*time.Minute))

	thread, err := f.s.GetThread(context.Background(), f.a, f.b, f.l)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, m1.MessageID, thread[0].MessageID)
	assert.Equal(t, m2.MessageID, thread[1].MessageID)
	assert.Equal(t, "alice", thread[0].SenderUsername)
	assert.Equal(t, "bob", thread[0].ReceiverUsername)

	// symmetric in the two users
	reversed, err := f.s.GetThread(context.Background(), f.b, f.a, f.l)
	require.NoError(t, err)
	require.Len(t, reversed, 2)
	assert.Equal(t, m1.MessageID, reversed[0].MessageID)
}

func TestGetInbox_NewestFirstAcrossThreads(t *testing.T) {
	f := setup(t)
	base := time.Now().UTC().Add(-time.Hour)
	m1 := f.message(t, f.a, f.b, f.l, "one", base)
	m2 := f.message(t, f.c, f.a, f.m, "two", base.Add(time.Minute))
	f.message(t, f.b, f.c, f.l, "not mine", base.Add(2*time.Minute))

	inbox, err := f.s.GetInbox(context.Background(), f.a)
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, m2.MessageID, inbox[0].MessageID)
	assert.Equal(t, m1.MessageID, inbox[1].MessageID)
	assert.Equal(t, "Lamp", inbox[0].ListingTitle)
}

func TestChatSend_AppendsAndReloads(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.message(t, f.b, f.a, f.l, "still available", time.Now().UTC().Add(-time.Minute))

	view, err := f.s.ChatSend(ctx, f.a, f.l, f.b, "great, 8?")
	require.NoError(t, err)
	assert.Equal(t, "Bike", view.Listing.Title)
	assert.Equal(t, "bob", view.OtherUser.Username)
	require.Len(t, view.Messages, 2)
	assert.Equal(t, "great, 8?", view.Messages[1].Content)
	assert.Equal(t, f.b, view.Messages[1].ReceiverID)

	_, err = f.s.Chat(ctx, f.a, uuid.New(), f.b)
	assert.Equal(t, ErrListingNotFound, err)
	_, err = f.s.Chat(ctx, f.a, f.l, uuid.New())
	assert.Equal(t, ErrUserNotFound, err)
	_, err = f.s.ChatSend(ctx, f.a, f.l, uuid.New(), "hi")
	assert.Equal(t, ErrUserNotFound, err)
}
