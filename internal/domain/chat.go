package domain

import "time"

// Conversation pairs one shopper with the shop's admin account. There is
// at most one per shopper; sending into it bumps the last* fields, which
// is all the unread indicator needs.
type Conversation struct {
	ID            string    `bson:"_id" json:"id"`
	Participants  []string  `bson:"participants" json:"participants"`
	UserID        string    `bson:"user_id" json:"userId"`
	UserName      string    `bson:"user_name" json:"userName"`
	UserEmail     string    `bson:"user_email" json:"userEmail"`
	LastMessage   string    `bson:"last_message" json:"lastMessage"`
	LastUpdatedAt time.Time `bson:"last_updated_at" json:"lastUpdatedAt"`
	LastRepliedBy string    `bson:"last_replied_by" json:"lastRepliedBy"`
}

// Unread reports whether viewer has something new to read: the most
// recent message came from somebody else.
func (c *Conversation) Unread(viewer string) bool {
	return c.LastRepliedBy != "" && c.LastRepliedBy != viewer
}

// Message is append-only; the core never updates or deletes one.
type Message struct {
	ID             string    `bson:"_id" json:"id"`
	ConversationID string    `bson:"conversation_id" json:"conversationId"`
	SenderID       string    `bson:"sender_id" json:"senderId"`
	Text           string    `bson:"text" json:"text"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
}
