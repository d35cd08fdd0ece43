package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/livestock/internal/repository"
)

// MongoDBRepository implements repository.Store on top of a MongoDB database.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

var _ repository.Store = (*MongoDBRepository)(nil)

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("mongodb connected", zap.String("db", dbName))

	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}, nil
}

// Find returns all documents matching the query.
func (r *MongoDBRepository) Find(ctx context.Context, collection string, q repository.Query) ([]repository.Document, error) {
	opts := options.Find()
	if len(q.Sort) > 0 {
		opts.SetSort(sortDocument(q.Sort))
	}

	cursor, err := r.db.Collection(collection).Find(ctx, filterDocument(q.Filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}

	docs := make([]repository.Document, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, normalizeDocument(m))
	}
	return docs, nil
}

// FindOne returns the first matching document or repository.ErrNotFound.
func (r *MongoDBRepository) FindOne(ctx context.Context, collection string, f repository.Filter) (repository.Document, error) {
	var raw bson.M
	err := r.db.Collection(collection).FindOne(ctx, filterDocument(f)).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find one %s: %w", collection, err)
	}
	return normalizeDocument(raw), nil
}

// Insert stores a new document.
func (r *MongoDBRepository) Insert(ctx context.Context, collection string, doc repository.Document) error {
	_, err := r.db.Collection(collection).InsertOne(ctx, bson.M(doc))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert into %s: %w", collection, repository.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return nil
}

// Update applies $set to the first matching document and returns it after the change.
func (r *MongoDBRepository) Update(ctx context.Context, collection string, f repository.Filter, set repository.Document) (repository.Document, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var raw bson.M
	err := r.db.Collection(collection).
		FindOneAndUpdate(ctx, filterDocument(f), bson.M{"$set": bson.M(set)}, opts).
		Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", collection, err)
	}
	return normalizeDocument(raw), nil
}

// Delete removes the first matching document.
func (r *MongoDBRepository) Delete(ctx context.Context, collection string, f repository.Filter) error {
	res, err := r.db.Collection(collection).DeleteOne(ctx, filterDocument(f))
	if err != nil {
		return fmt.Errorf("delete from %s: %w", collection, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Count returns the number of matching documents.
func (r *MongoDBRepository) Count(ctx context.Context, collection string, f repository.Filter) (int64, error) {
	n, err := r.db.Collection(collection).CountDocuments(ctx, filterDocument(f))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

// Distinct returns the unique values of field across matching documents.
func (r *MongoDBRepository) Distinct(ctx context.Context, collection, field string, f repository.Filter) ([]any, error) {
	values, err := r.db.Collection(collection).Distinct(ctx, field, filterDocument(f))
	if err != nil {
		return nil, fmt.Errorf("distinct %s.%s: %w", collection, field, err)
	}
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, normalizeValue(v))
	}
	return out, nil
}

// Sum runs a $match/$group/$sum pipeline.
func (r *MongoDBRepository) Sum(ctx context.Context, collection string, f repository.Filter, amountField, groupField string) ([]repository.Group, error) {
	cursor, err := r.db.Collection(collection).Aggregate(ctx, sumPipeline(f, amountField, groupField))
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", collection, err)
	}

	var rows []struct {
		Key   any     `bson:"_id"`
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode %s aggregate: %w", collection, err)
	}

	groups := make([]repository.Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, repository.Group{Key: normalizeValue(row.Key), Total: row.Total})
	}
	return groups, nil
}

// EnsureUnique creates a unique index on field.
func (r *MongoDBRepository) EnsureUnique(ctx context.Context, collection, field string) error {
	_, err := r.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create unique index %s.%s: %w", collection, field, err)
	}
	r.logger.Debug("unique index ensured", zap.String("collection", collection), zap.String("field", field))
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
