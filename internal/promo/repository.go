// AngelaMos | 2026
// repository.go

package promo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carterperez-dev/ascend-api/internal/core"
)

const CollectionName = "promo_codes"

type Repository interface {
	Catalog
	Upsert(ctx context.Context, c *Code) (bool, error)
	List(ctx context.Context) ([]Code, error)
	DeleteAll(ctx context.Context) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewRepository(coll *mongo.Collection, queryTimeout time.Duration) Repository {
	return &mongoRepository{
		coll:    coll,
		timeout: queryTimeout,
	}
}

func (r *mongoRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("code_unique"),
	})
	if err != nil {
		return fmt.Errorf("create promo indexes: %w", err)
	}

	return nil
}

func (r *mongoRepository) FindActive(ctx context.Context, code string) (*Code, error) {
	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.D{
		{Key: "code", Value: code},
		{Key: "active", Value: true},
	}

	var c Code
	err := r.coll.FindOne(ctx, filter).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("find promo code: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find promo code: %w", err)
	}

	return &c, nil
}

func (r *mongoRepository) IncrementUsage(ctx context.Context, code string) error {
	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "code", Value: code}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "used_count", Value: 1}}}},
	)
	if err != nil {
		return fmt.Errorf("increment promo usage: %w", err)
	}

	return nil
}

// Upsert writes a catalog entry by code and reports whether it was new.
// used_count is only initialised on insert so reseeding keeps live counts.
func (r *mongoRepository) Upsert(ctx context.Context, c *Code) (bool, error) {
	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	set := bson.D{
		{Key: "reward_kind", Value: c.Kind()},
		{Key: "active", Value: c.Active},
		{Key: "max_uses", Value: c.MaxUses},
	}
	if c.Amount != nil {
		set = append(set, bson.E{Key: "amount", Value: *c.Amount})
	}
	if c.ItemID != "" {
		set = append(set, bson.E{Key: "item_id", Value: c.ItemID})
	}

	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$setOnInsert", Value: bson.D{{Key: "used_count", Value: 0}}},
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "code", Value: c.Code}},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("upsert promo code: %w", err)
	}

	return res.UpsertedCount > 0, nil
}

func (r *mongoRepository) List(ctx context.Context) ([]Code, error) {
	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "code", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list promo codes: %w", err)
	}

	codes := make([]Code, 0)
	if err := cursor.All(ctx, &codes); err != nil {
		return nil, fmt.Errorf("decode promo codes: %w", err)
	}

	return codes, nil
}

func (r *mongoRepository) DeleteAll(ctx context.Context) (int64, error) {
	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("delete promo codes: %w", err)
	}

	return res.DeletedCount, nil
}
