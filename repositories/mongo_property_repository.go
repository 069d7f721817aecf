package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/jaykurgat/Nyumba-Finder/domain"
)

// mongoPropertyRepository stores properties as documents in a MongoDB collection.
type mongoPropertyRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoPropertyRepository builds the document store backend. A nil db yields
// a repository whose every call fails with domain.ErrStoreUnavailable.
func NewMongoPropertyRepository(db *mongo.Database, collection string, logger *zap.Logger) PropertyRepository {
	r := &mongoPropertyRepository{logger: logger}
	if db != nil {
		r.collection = db.Collection(collection)
	}
	return r
}

func (r *mongoPropertyRepository) coll() (*mongo.Collection, error) {
	if r.collection == nil {
		return nil, domain.ErrStoreUnavailable
	}
	return r.collection, nil
}

// Get loads a single property by id.
func (r *mongoPropertyRepository) Get(ctx context.Context, id string) (*domain.Property, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, err
	}

	var doc bson.M
	err = coll.FindOne(ctx, bson.M{"_id": documentID(id)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("error finding property %s: %w", id, err)
	}

	delete(doc, "_id")
	p := domain.NormalizeDocument(id, doc)
	return &p, nil
}

// List runs the range predicates server-side and returns normalized documents.
func (r *mongoPropertyRepository) List(ctx context.Context, query PropertyQuery) ([]domain.Property, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: orderField(query), Value: 1}})
	cursor, err := coll.Find(ctx, buildMongoFilter(query), opts)
	if err != nil {
		return nil, fmt.Errorf("error querying properties: %w", err)
	}
	defer cursor.Close(ctx)

	properties := make([]domain.Property, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("error decoding property: %w", err)
		}

		id := idString(doc["_id"])
		delete(doc, "_id")
		if len(doc) == 0 {
			r.logger.Warn("Document has no data, skipping", zap.String("id", id))
			continue
		}
		properties = append(properties, domain.NormalizeDocument(id, doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating properties: %w", err)
	}
	return properties, nil
}

// Create inserts the property and fills in the generated id.
func (r *mongoPropertyRepository) Create(ctx context.Context, property *domain.Property) error {
	coll, err := r.coll()
	if err != nil {
		return err
	}

	res, err := coll.InsertOne(ctx, bson.M(property.Document()))
	if err != nil {
		return fmt.Errorf("error inserting property: %w", err)
	}
	property.ID = idString(res.InsertedID)
	return nil
}

// Update writes only the fields present in the patch.
func (r *mongoPropertyRepository) Update(ctx context.Context, id string, patch domain.PropertyPatch) error {
	coll, err := r.coll()
	if err != nil {
		return err
	}

	update := buildMongoUpdate(patch)
	if len(update) == 0 {
		_, err := r.Get(ctx, id)
		return err
	}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": documentID(id)}, update)
	if err != nil {
		return fmt.Errorf("error updating property %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the document.
func (r *mongoPropertyRepository) Delete(ctx context.Context, id string) error {
	coll, err := r.coll()
	if err != nil {
		return err
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": documentID(id)})
	if err != nil {
		return fmt.Errorf("error deleting property %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Migrate creates the indexes backing the range filters and sort orders.
func (r *mongoPropertyRepository) Migrate(ctx context.Context) error {
	coll, err := r.coll()
	if err != nil {
		return err
	}

	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: domain.FieldPrice, Value: 1}}},
		{Keys: bson.D{{Key: domain.FieldTitle, Value: 1}}},
		{Keys: bson.D{{Key: domain.FieldBedrooms, Value: 1}}},
		{Keys: bson.D{{Key: domain.FieldBathrooms, Value: 1}}},
	}
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("error creating indexes: %w", err)
	}
	return nil
}

func buildMongoFilter(q PropertyQuery) bson.M {
	filter := bson.M{}

	price := bson.M{}
	if q.MinPrice != nil {
		price["$gte"] = *q.MinPrice
	}
	if q.MaxPrice != nil {
		price["$lte"] = *q.MaxPrice
	}
	if len(price) > 0 {
		filter[domain.FieldPrice] = price
	}
	if q.MinBedrooms != nil {
		filter[domain.FieldBedrooms] = bson.M{"$gte": *q.MinBedrooms}
	}
	if q.MinBathrooms != nil {
		filter[domain.FieldBathrooms] = bson.M{"$gte": *q.MinBathrooms}
	}
	return filter
}

func buildMongoUpdate(patch domain.PropertyPatch) bson.M {
	set, unset := patch.Changes()

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = bson.M(set)
	}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, f := range unset {
			fields[f] = ""
		}
		update["$unset"] = fields
	}
	return update
}

// documentID maps an API id to the stored _id: ObjectIDs for generated ids,
// plain strings for anything else.
func documentID(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func idString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}
