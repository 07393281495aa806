package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/danghuy/secondcell/internal/domain"
)

// ChatUC is the buyer/admin chat surface. Realtime delivery itself is
// the transport's job; this only owns the documents and the unread bit.
type ChatUC struct {
	Conversations domain.ConversationRepo
	Messages      domain.MessageRepo
	AdminID       string
}

// Open returns the shopper's conversation with the admin, creating it on
// first contact. One conversation per shopper.
func (uc *ChatUC) Open(ctx context.Context, userID, userName, userEmail string) (*domain.Conversation, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.Invalid("userId", "required")
	}
	if c, err := uc.Conversations.GetByUser(ctx, userID); err == nil {
		return c, nil
	} else if err != domain.ErrNotFound {
		return nil, err
	}
	c := &domain.Conversation{
		ID:            uuid.NewString(),
		Participants:  []string{userID, uc.AdminID},
		UserID:        userID,
		UserName:      userName,
		UserEmail:     userEmail,
		LastUpdatedAt: time.Now().UTC(),
	}
	if err := uc.Conversations.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Send appends a message and bumps the conversation's last* fields,
// which is what flips the unread indicator on the other side.
func (uc *ChatUC) Send(ctx context.Context, conversationID, senderID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Invalid("text", "required")
	}
	c, err := uc.Conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	m := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: c.ID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      time.Now().UTC(),
	}
	if err := uc.Messages.Append(ctx, m); err != nil {
		return nil, err
	}
	c.LastMessage = text
	c.LastUpdatedAt = m.CreatedAt
	c.LastRepliedBy = senderID
	if err := uc.Conversations.Save(ctx, c); err != nil {
		return nil, err
	}
	return m, nil
}

func (uc *ChatUC) History(ctx context.Context, conversationID string) ([]domain.Message, error) {
	return uc.Messages.ListByConversation(ctx, conversationID)
}

// HasUnread recomputes the indicator from scratch: no diffing, a full
// re-query per call. For the admin it scans every conversation they
// participate in; for a shopper only their own.
func (uc *ChatUC) HasUnread(ctx context.Context, viewer string) (bool, error) {
	var (
		convs []domain.Conversation
		err   error
	)
	if viewer == uc.AdminID {
		convs, err = uc.Conversations.List(ctx)
	} else {
		convs, err = uc.Conversations.ListByUser(ctx, viewer)
	}
	if err != nil {
		return false, err
	}
	for i := range convs {
		if convs[i].Unread(viewer) {
			return true, nil
		}
	}
	return false, nil
}

// WatchUnread recomputes on every change notification for the
// conversations collection and pushes the fresh value to fn. Blocks
// until ctx is done or the stream fails.
func (uc *ChatUC) WatchUnread(ctx context.Context, viewer string, fn func(bool)) error {
	push := func() {
		unread, err := uc.HasUnread(ctx, viewer)
		if err != nil {
			log.Warn().Err(err).Str("viewer", viewer).Msg("unread recompute failed")
			return
		}
		fn(unread)
	}
	push()
	return uc.Conversations.Watch(ctx, push)
}
