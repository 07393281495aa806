package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danghuy/secondcell/internal/domain"
)

type SaleRepo struct {
	col *mongo.Collection
}

func NewSaleRepo(db *mongo.Database) *SaleRepo {
	return &SaleRepo{col: db.Collection(ColSales)}
}

func (r *SaleRepo) Append(ctx context.Context, s *domain.Sale) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, s)
	return domain.NewDocumentError("append sale", err)
}

func (r *SaleRepo) List(ctx context.Context) ([]domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout*2)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "sold_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, domain.NewDocumentError("list sales", err)
	}
	defer cur.Close(ctx)

	var out []domain.Sale
	if err := cur.All(ctx, &out); err != nil {
		return nil, domain.NewDocumentError("list sales", err)
	}
	return out, nil
}
