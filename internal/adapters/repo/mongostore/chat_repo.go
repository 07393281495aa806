package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danghuy/secondcell/internal/domain"
)

type ConversationRepo struct {
	col *mongo.Collection
}

func NewConversationRepo(db *mongo.Database) *ConversationRepo {
	return &ConversationRepo{col: db.Collection(ColConversations)}
}

func (r *ConversationRepo) Save(ctx context.Context, c *domain.Conversation) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": c.ID}, c, opts)
	return domain.NewDocumentError("save conversation", err)
}

func (r *ConversationRepo) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var c domain.Conversation
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.NewDocumentError("get conversation", err)
	}
	return &c, nil
}

func (r *ConversationRepo) GetByUser(ctx context.Context, userID string) (*domain.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var c domain.Conversation
	err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.NewDocumentError("get conversation", err)
	}
	return &c, nil
}

func (r *ConversationRepo) List(ctx context.Context) ([]domain.Conversation, error) {
	return r.list(ctx, bson.M{})
}

func (r *ConversationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	return r.list(ctx, bson.M{"user_id": userID})
}

func (r *ConversationRepo) list(ctx context.Context, filter bson.M) ([]domain.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "last_updated_at", Value: -1}}).SetLimit(100)
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, domain.NewDocumentError("list conversations", err)
	}
	defer cur.Close(ctx)

	var out []domain.Conversation
	if err := cur.All(ctx, &out); err != nil {
		return nil, domain.NewDocumentError("list conversations", err)
	}
	return out, nil
}

// Watch tails the collection's change stream and calls fn once per
// event, whatever it was. Callers re-query; events carry no payload
// worth diffing. Blocks until ctx is cancelled or the stream dies.
func (r *ConversationRepo) Watch(ctx context.Context, fn func()) error {
	stream, err := r.col.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return domain.NewDocumentError("watch conversations", err)
	}
	defer stream.Close(ctx)

	for stream.Next(ctx) {
		fn()
	}
	if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return domain.NewDocumentError("watch conversations", err)
	}
	return nil
}

type MessageRepo struct {
	col *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) *MessageRepo {
	return &MessageRepo{col: db.Collection(ColMessages)}
}

func (r *MessageRepo) Append(ctx context.Context, m *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, m)
	return domain.NewDocumentError("append message", err)
}

func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, domain.NewDocumentError("list messages", err)
	}
	defer cur.Close(ctx)

	var out []domain.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, domain.NewDocumentError("list messages", err)
	}
	return out, nil
}
