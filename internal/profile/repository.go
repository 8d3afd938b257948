// AngelaMos | 2026
// repository.go

package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carterperez-dev/ascend-api/internal/core"
)

const CollectionName = "users"

type Repository interface {
	FindBySubject(ctx context.Context, subjectID string) (*Profile, error)
	Insert(ctx context.Context, p *Profile) error
	UpdateFields(ctx context.Context, subjectID string, fields Fields) (int64, error)
	// RecordRedemption applies fields and adds code to used_promo_codes only
	// while code is absent from it. A zero count means the guard rejected it.
	RecordRedemption(
		ctx context.Context,
		subjectID, code string,
		fields Fields,
	) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
	now     func() time.Time
}

func NewRepository(coll *mongo.Collection, queryTimeout time.Duration) Repository {
	return &mongoRepository{
		coll:    coll,
		timeout: queryTimeout,
		now:     time.Now,
	}
}

func (r *mongoRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "subject_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("subject_id_unique"),
	})
	if err != nil {
		return fmt.Errorf("create profile indexes: %w", err)
	}

	return nil
}

// FindBySubject loads a profile and, when its stored inventory is missing
// or in the legacy object form, persists the converted sequence before
// returning. Used-code sets stored as null are reset to empty arrays so
// later $addToSet writes apply.
func (r *mongoRepository) FindBySubject(
	ctx context.Context,
	subjectID string,
) (*Profile, error) {
	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.D{{Key: "subject_id", Value: subjectID}}

	raw, err := r.coll.FindOne(ctx, filter).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("find profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}

	var p Profile
	if err := bson.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	p.normalize()

	if !fieldIsArray(raw, "inventory") {
		if err := r.writeBackInventory(ctx, &p); err != nil {
			return nil, err
		}
	}

	if err := r.repairSets(ctx, raw, subjectID); err != nil {
		return nil, err
	}

	return &p, nil
}

// writeBackInventory persists the migrated inventory while the stored
// value is still not an array, so a sequence written concurrently wins.
func (r *mongoRepository) writeBackInventory(ctx context.Context, p *Profile) error {
	p.UpdatedAt = Timestamp{r.now()}

	filter := bson.D{
		{Key: "subject_id", Value: p.SubjectID},
		{Key: "inventory", Value: bson.D{{Key: "$not", Value: bson.D{
			{Key: "$type", Value: "array"},
		}}}},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "inventory", Value: p.Inventory},
		{Key: "updated_at", Value: p.UpdatedAt},
	}}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("persist inventory migration: %w", err)
	}

	slog.Info("migrated legacy inventory",
		"subject_id", p.SubjectID,
		"items", len(p.Inventory),
		"written", res.ModifiedCount > 0,
	)
	return nil
}

var appendOnlySets = []string{"used_promo_codes", "used_inspiration_suggestions"}

func (r *mongoRepository) repairSets(
	ctx context.Context,
	raw bson.Raw,
	subjectID string,
) error {
	for _, key := range appendOnlySets {
		val, err := raw.LookupErr(key)
		if err != nil || val.Type == bson.TypeArray {
			continue
		}

		filter := bson.D{
			{Key: "subject_id", Value: subjectID},
			{Key: key, Value: bson.D{{Key: "$not", Value: bson.D{
				{Key: "$type", Value: "array"},
			}}}},
		}
		update := bson.D{{Key: "$set", Value: bson.D{{Key: key, Value: bson.A{}}}}}

		if _, err := r.coll.UpdateOne(ctx, filter, update); err != nil {
			return fmt.Errorf("reset %s: %w", key, err)
		}
	}

	return nil
}

func fieldIsArray(raw bson.Raw, key string) bool {
	val, err := raw.LookupErr(key)
	if err != nil {
		return false
	}
	return val.Type == bson.TypeArray
}

func (r *mongoRepository) Insert(ctx context.Context, p *Profile) error {
	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert profile: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("insert profile: %w", err)
	}

	return nil
}

func (r *mongoRepository) UpdateFields(
	ctx context.Context,
	subjectID string,
	fields Fields,
) (int64, error) {
	return r.update(ctx, bson.D{{Key: "subject_id", Value: subjectID}}, fields)
}

// RecordRedemption adds code to used_promo_codes with $addToSet in the same
// write as fields, guarded on code being absent.
func (r *mongoRepository) RecordRedemption(
	ctx context.Context,
	subjectID, code string,
	fields Fields,
) (int64, error) {
	filter := bson.D{
		{Key: "subject_id", Value: subjectID},
		{Key: "used_promo_codes", Value: bson.D{{Key: "$ne", Value: code}}},
	}

	withCode := make(Fields, len(fields)+1)
	for k, v := range fields {
		withCode[k] = v
	}
	withCode["used_promo_codes"] = Appended{code}

	return r.update(ctx, filter, withCode)
}

func (r *mongoRepository) update(
	ctx context.Context,
	filter bson.D,
	fields Fields,
) (int64, error) {
	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, filter, buildUpdate(fields))
	if err != nil {
		return 0, fmt.Errorf("update profile: %w", err)
	}

	return res.MatchedCount, nil
}

// buildUpdate renders fields as a $set, moving Appended values into an
// $addToSet with $each.
func buildUpdate(fields Fields) bson.D {
	set := bson.M{}
	addToSet := bson.M{}

	for k, v := range fields {
		if added, ok := v.(Appended); ok {
			addToSet[k] = bson.D{{Key: "$each", Value: []string(added)}}
			continue
		}
		set[k] = v
	}

	update := bson.D{}
	if len(set) > 0 {
		update = append(update, bson.E{Key: "$set", Value: set})
	}
	if len(addToSet) > 0 {
		update = append(update, bson.E{Key: "$addToSet", Value: addToSet})
	}
	return update
}
