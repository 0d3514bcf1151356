package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/prohmpiriya/tienda-api/internal/domain"
)

// DefaultStoreCollection is the collection/table name for stored products
const DefaultStoreCollection = "products"

type mongoProduct struct {
	domain.ProductAttributes `bson:",inline"`

	ID        primitive.ObjectID `bson:"_id,omitempty"`
	IsActive  bool               `bson:"isActive"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *mongoProduct) toDomain() *domain.StoredProduct {
	attrs := d.ProductAttributes
	if attrs.Tags == nil {
		attrs.Tags = []string{}
	}
	return &domain.StoredProduct{
		ID:                d.ID.Hex(),
		ProductAttributes: attrs,
		IsActive:          d.IsActive,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// MongoProductStore implements ProductStore on a MongoDB collection
type MongoProductStore struct {
	coll  *mongo.Collection
	clock Clock
}

// NewMongoProductStore creates a store over coll
func NewMongoProductStore(coll *mongo.Collection) *MongoProductStore {
	return &MongoProductStore{coll: coll}
}

// stamp is millisecond precision, which is what BSON dates hold
func (s *MongoProductStore) stamp() time.Time {
	return s.clock.now().UTC().Truncate(time.Millisecond)
}

// Create inserts a product
func (s *MongoProductStore) Create(ctx context.Context, attrs domain.ProductAttributes) (*domain.StoredProduct, error) {
	valid, err := domain.NewStoredProductAttributes(attrs)
	if err != nil {
		return nil, err
	}

	now := s.stamp()
	doc := &mongoProduct{
		ProductAttributes: valid,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

// Get retrieves a product by its hex ObjectID
func (s *MongoProductStore) Get(ctx context.Context, id string) (*domain.StoredProduct, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}

	var doc mongoProduct
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return doc.toDomain(), nil
}

// Update reads the product, applies the patch and writes the whole record
func (s *MongoProductStore) Update(ctx context.Context, id string, patch *domain.ProductPatch) (*domain.StoredProduct, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := current.ApplyPatch(patch)
	if err != nil {
		return nil, err
	}
	next.UpdatedAt = s.stamp()

	oid, _ := primitive.ObjectIDFromHex(id)
	set := bson.M{
		"title":       next.Title,
		"price":       next.Price,
		"description": next.Description,
		"category":    next.Category,
		"image":       next.Image,
		"rating":      next.Rating,
		"stock":       next.Stock,
		"tags":        next.Tags,
		"brand":       next.Brand,
		"isActive":    next.IsActive,
		"updatedAt":   next.UpdatedAt,
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrProductNotFound
	}
	return next, nil
}

// Delete removes a product
func (s *MongoProductStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrProductNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// List runs an equality-filtered, single-field sorted query
func (s *MongoProductStore) List(ctx context.Context, q *StoreQuery) ([]domain.StoredProduct, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return s.find(ctx, mongoFilter(q), mongoFindOptions(q))
}

// PrefixSearch matches field values between prefix and prefix followed by
// the highest private-use code point
func (s *MongoProductStore) PrefixSearch(ctx context.Context, field, prefix string) ([]domain.StoredProduct, error) {
	if err := validatePrefixField(field); err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: field, Value: 1}})
	return s.find(ctx, mongoPrefixFilter(field, prefix), opts)
}

// Categories lists distinct categories
func (s *MongoProductStore) Categories(ctx context.Context) ([]string, error) {
	values, err := s.coll.Distinct(ctx, "category", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if c, ok := v.(string); ok && c != "" {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (s *MongoProductStore) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]domain.StoredProduct, error) {
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cur.Close(ctx)

	out := []domain.StoredProduct{}
	for cur.Next(ctx) {
		var doc mongoProduct
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		out = append(out, *doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return out, nil
}

func mongoFilter(q *StoreQuery) bson.D {
	filter := bson.D{}
	if q == nil {
		return filter
	}
	if q.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: q.Category})
	}
	if q.Brand != "" {
		filter = append(filter, bson.E{Key: "brand", Value: q.Brand})
	}
	if q.IsActive != nil {
		filter = append(filter, bson.E{Key: "isActive", Value: *q.IsActive})
	}
	return filter
}

func mongoFindOptions(q *StoreQuery) *options.FindOptions {
	field, desc := q.sort()
	dir := 1
	if desc {
		dir = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: field, Value: dir}})
	if q != nil && q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	return opts
}

func mongoPrefixFilter(field, prefix string) bson.D {
	return bson.D{{Key: field, Value: bson.D{
		{Key: "$gte", Value: prefix},
		{Key: "$lte", Value: prefix + "\uf8ff"},
	}}}
}
