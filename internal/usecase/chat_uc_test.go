package usecase

import (
	"context"
	"testing"

	"github.com/danghuy/secondcell/internal/domain"
)

type fakeConversations struct {
	byID    map[string]domain.Conversation
	watched int
}

func newFakeConversations() *fakeConversations {
	return &fakeConversations{byID: map[string]domain.Conversation{}}
}

func (f *fakeConversations) Save(_ context.Context, c *domain.Conversation) error {
	f.byID[c.ID] = *c
	return nil
}

func (f *fakeConversations) Get(_ context.Context, id string) (*domain.Conversation, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (f *fakeConversations) GetByUser(_ context.Context, userID string) (*domain.Conversation, error) {
	for _, c := range f.byID {
		if c.UserID == userID {
			cc := c
			return &cc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeConversations) List(_ context.Context) ([]domain.Conversation, error) {
	out := make([]domain.Conversation, 0, len(f.byID))
	for _, c := range f.byID {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeConversations) ListByUser(_ context.Context, userID string) ([]domain.Conversation, error) {
	var out []domain.Conversation
	for _, c := range f.byID {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeConversations) Watch(_ context.Context, fn func()) error {
	f.watched++
	fn()
	return nil
}

type fakeMessages struct{ msgs []domain.Message }

func (f *fakeMessages) Append(_ context.Context, m *domain.Message) error {
	f.msgs = append(f.msgs, *m)
	return nil
}

func (f *fakeMessages) ListByConversation(_ context.Context, id string) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range f.msgs {
		if m.ConversationID == id {
			out = append(out, m)
		}
	}
	return out, nil
}

func newChat() (*ChatUC, *fakeConversations, *fakeMessages) {
	convs := newFakeConversations()
	msgs := &fakeMessages{}
	return &ChatUC{Conversations: convs, Messages: msgs, AdminID: "admin-1"}, convs, msgs
}

func TestOpenIsIdempotentPerUser(t *testing.T) {
	uc, convs, _ := newChat()
	ctx := context.Background()

	a, err := uc.Open(ctx, "user-42", "Nam", "nam@example.com")
	if err != nil {
		t.Fatal(err)
	}
	b, err := uc.Open(ctx, "user-42", "Nam", "nam@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != b.ID || len(convs.byID) != 1 {
		t.Fatal("one conversation per shopper")
	}
	if len(a.Participants) != 2 || a.Participants[1] != "admin-1" {
		t.Fatalf("participants = %v, want shopper plus admin", a.Participants)
	}
}

func TestSendBumpsConversation(t *testing.T) {
	uc, convs, msgs := newChat()
	ctx := context.Background()

	c, _ := uc.Open(ctx, "user-42", "Nam", "")
	m, err := uc.Send(ctx, c.ID, "user-42", "is the battery original?")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs.msgs) != 1 || m.ConversationID != c.ID {
		t.Fatal("message not appended")
	}
	updated := convs.byID[c.ID]
	if updated.LastMessage != "is the battery original?" || updated.LastRepliedBy != "user-42" {
		t.Fatalf("conversation not bumped: %+v", updated)
	}
}

func TestHasUnread(t *testing.T) {
	uc, convs, _ := newChat()
	ctx := context.Background()

	convs.byID["c1"] = domain.Conversation{
		ID: "c1", UserID: "user-42",
		Participants:  []string{"user-42", "admin-1"},
		LastRepliedBy: "admin-1",
	}

	cases := []struct {
		viewer string
		want   bool
	}{
		{"admin-1", false}, // admin replied last, nothing new for them
		{"user-42", true},  // shopper has the admin's reply waiting
	}
	for _, c := range cases {
		got, err := uc.HasUnread(ctx, c.viewer)
		if err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Errorf("HasUnread(%q) = %v, want %v", c.viewer, got, c.want)
		}
	}

	// shopper replies; the pendulum swings
	c1 := convs.byID["c1"]
	c1.LastRepliedBy = "user-42"
	convs.byID["c1"] = c1

	if got, _ := uc.HasUnread(ctx, "admin-1"); !got {
		t.Fatal("admin must see the shopper's reply as unread")
	}
	if got, _ := uc.HasUnread(ctx, "user-42"); got {
		t.Fatal("shopper's own reply is not unread for them")
	}
}

func TestHasUnreadIgnoresOthersConversations(t *testing.T) {
	uc, convs, _ := newChat()
	convs.byID["c2"] = domain.Conversation{
		ID: "c2", UserID: "user-7",
		Participants:  []string{"user-7", "admin-1"},
		LastRepliedBy: "admin-1",
	}
	if got, _ := uc.HasUnread(context.Background(), "user-42"); got {
		t.Fatal("someone else's conversation must not light the indicator")
	}
}

func TestWatchUnreadPushesOnChange(t *testing.T) {
	uc, convs, _ := newChat()
	convs.byID["c1"] = domain.Conversation{
		ID: "c1", UserID: "user-42",
		Participants:  []string{"user-42", "admin-1"},
		LastRepliedBy: "user-42",
	}

	var pushes []bool
	err := uc.WatchUnread(context.Background(), "admin-1", func(v bool) {
		pushes = append(pushes, v)
	})
	if err != nil {
		t.Fatal(err)
	}
	// once on start, once per change event from the fake
	if len(pushes) != 2 || !pushes[0] || !pushes[1] {
		t.Fatalf("pushes = %v, want two true values", pushes)
	}
	if convs.watched != 1 {
		t.Fatal("watch must subscribe exactly once")
	}
}
