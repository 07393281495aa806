package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danghuy/secondcell/internal/domain"
)

type ProductRepo struct {
	col *mongo.Collection
}

func NewProductRepo(db *mongo.Database) *ProductRepo {
	return &ProductRepo{col: db.Collection(ColProducts)}
}

// Upsert is deliberately get-then-write rather than a native upsert, so
// a missing document reads as "does not exist yet" and two concurrent
// writers of the same id settle on last-write-wins.
func (r *ProductRepo) Upsert(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	prev, err := r.get(ctx, p.ID)
	switch {
	case err == nil:
		p.CreatedAt = prev.CreatedAt
		p.UpdatedAt = time.Now().UTC()
		_, err = r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
		return domain.NewDocumentError("replace", err)
	case errors.Is(err, domain.ErrNotFound):
		_, err = r.col.InsertOne(ctx, p)
		return domain.NewDocumentError("insert", err)
	default:
		return err
	}
}

func (r *ProductRepo) Insert(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, p)
	return domain.NewDocumentError("insert", err)
}

func (r *ProductRepo) Get(ctx context.Context, id string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return r.get(ctx, id)
}

func (r *ProductRepo) get(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.NewDocumentError("get", err)
	}
	return &p, nil
}

// List returns the newest documents first, capped at q.Limit (default
// 100). Anything finer grained happens client-side over this window.
func (r *ProductRepo) List(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout*2)
	defer cancel()

	filter := bson.M{}
	if q.Type != "" {
		filter["type"] = q.Type
	}
	if q.Brand != "" {
		filter["brand"] = q.Brand
	}
	limit := int64(q.Limit)
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, domain.NewDocumentError("list", err)
	}
	defer cur.Close(ctx)

	var out []domain.Product
	if err := cur.All(ctx, &out); err != nil {
		return nil, domain.NewDocumentError("list", err)
	}
	return out, nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return domain.NewDocumentError("delete", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
