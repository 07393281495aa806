package domain

import "context"

// ProductQuery is the bounded list window: equality filters only, newest
// first, capped at Limit documents. Search and price filtering happen
// client-side over the fetched window.
type ProductQuery struct {
	Type  ProductType
	Brand string
	Limit int
}

type ProductRepo interface {
	// Upsert writes by the caller-supplied id: replace when the document
	// exists, insert otherwise. Get-then-write, so two concurrent
	// submitters of the same id race and the last write wins.
	Upsert(ctx context.Context, p *Product) error
	Insert(ctx context.Context, p *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, q ProductQuery) ([]Product, error)
	Delete(ctx context.Context, id string) error
}

type ConversationRepo interface {
	Save(ctx context.Context, c *Conversation) error
	GetByUser(ctx context.Context, userID string) (*Conversation, error)
	Get(ctx context.Context, id string) (*Conversation, error)
	List(ctx context.Context) ([]Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]Conversation, error)
	// Watch invokes fn on every create/update/delete in the collection.
	// fn only re-triggers a poll; no diffs are delivered.
	Watch(ctx context.Context, fn func()) error
}

type MessageRepo interface {
	Append(ctx context.Context, m *Message) error
	ListByConversation(ctx context.Context, conversationID string) ([]Message, error)
}

type SaleRepo interface {
	Append(ctx context.Context, s *Sale) error
	List(ctx context.Context) ([]Sale, error)
}

// ObjectStorage is the S3-compatible blob gateway. Upload returns a
// public URL; Delete takes object keys already stripped of scheme+host.
type ObjectStorage interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, keys []string) error
}

// SalesLedger records a completed sale on an external spreadsheet-backed
// endpoint. The transport cannot observe the result, so implementations
// always report success.
type SalesLedger interface {
	Record(ctx context.Context, s *Sale) error
}

// Recommender is the opaque prompt/response wrapper behind the
// AI-assisted suggestion flow.
type Recommender interface {
	Recommend(ctx context.Context, query string, window []Product) (string, error)
}
