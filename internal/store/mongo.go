package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chartsmith/chartsmith/pkg/types"
)

// ChartsCollection is the collection holding saved charts.
const ChartsCollection = "charts"

// chartDocument is the stored form of a chart. Documents are kept as JSON
// text so decoding matches the other backends exactly.
type chartDocument struct {
	ID         string `bson:"_id"`
	Type       string `bson:"type"`
	Config     string `bson:"config"`
	Dataset    string `bson:"dataset"`
	RowCount   int    `bson:"rowCount"`
	FieldCount int    `bson:"fieldCount"`
	CreatedAt  int64  `bson:"createdAt"`
	UpdatedAt  int64  `bson:"updatedAt"`
}

// MongoStore implements Store on a MongoDB collection. Each mutation is a
// single-document atomic operation.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to uri and uses the charts collection of database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("store: failed to ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(ChartsCollection)
	if err := ensureCreatedAtIndex(ctx, coll); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{client: client, collection: coll}, nil
}

func ensureCreatedAtIndex(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("store: failed to create index: %w", err)
	}
	return nil
}

// Get retrieves a chart by id.
func (m *MongoStore) Get(ctx context.Context, id string) (*types.SavedChart, error) {
	var doc chartDocument
	err := m.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: failed to get chart %s: %w", id, err)
	}
	return doc.chart()
}

// Put creates or replaces a chart, keeping createdAt of an existing document.
func (m *MongoStore) Put(ctx context.Context, chart *types.SavedChart) (*types.SavedChart, error) {
	set, err := mongoSet(chart)
	if err != nil {
		return nil, err
	}
	createdAt := chart.CreatedAt
	if createdAt.IsZero() {
		createdAt = chart.UpdatedAt
	}

	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: createdAt.UnixNano()}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc chartDocument
	if err := m.collection.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: chart.ID}}, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("store: failed to upsert chart %s: %w", chart.ID, err)
	}
	return doc.chart()
}

// Update replaces an existing chart.
func (m *MongoStore) Update(ctx context.Context, chart *types.SavedChart) (*types.SavedChart, error) {
	set, err := mongoSet(chart)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc chartDocument
	err = m.collection.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: chart.ID}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: failed to update chart %s: %w", chart.ID, err)
	}
	return doc.chart()
}

// Delete removes a chart.
func (m *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := m.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("store: failed to delete chart %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every chart ordered by creation time.
func (m *MongoStore) List(ctx context.Context) ([]*types.SavedChart, error) {
	docs, err := m.find(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]*types.SavedChart, 0, len(docs))
	for _, d := range docs {
		c, err := d.chart()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Summaries reads the list view without the document bodies.
func (m *MongoStore) Summaries(ctx context.Context) ([]types.ChartSummary, error) {
	projection := bson.D{{Key: "config", Value: 0}, {Key: "dataset", Value: 0}}
	docs, err := m.find(ctx, projection)
	if err != nil {
		return nil, err
	}
	out := make([]types.ChartSummary, len(docs))
	for i, d := range docs {
		out[i] = types.ChartSummary{
			ID:             d.ID,
			Type:           types.ChartType(d.Type),
			CreatedAt:      time.Unix(0, d.CreatedAt).UTC(),
			UpdatedAt:      time.Unix(0, d.UpdatedAt).UTC(),
			DataPointCount: d.RowCount,
			FieldCount:     d.FieldCount,
		}
	}
	return out, nil
}

// Close disconnects the client.
func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *MongoStore) find(ctx context.Context, projection bson.D) ([]chartDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	if projection != nil {
		opts.SetProjection(projection)
	}

	cursor, err := m.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("store: failed to list charts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []chartDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("store: failed to decode charts: %w", err)
	}
	return docs, nil
}

func mongoSet(c *types.SavedChart) (bson.D, error) {
	config, dataset, err := encodeDocuments(c)
	if err != nil {
		return nil, err
	}
	return bson.D{
		{Key: "type", Value: string(c.Config.Type)},
		{Key: "config", Value: string(config)},
		{Key: "dataset", Value: string(dataset)},
		{Key: "rowCount", Value: len(c.Dataset.Rows)},
		{Key: "fieldCount", Value: len(c.Dataset.Fields)},
		{Key: "updatedAt", Value: c.UpdatedAt.UnixNano()},
	}, nil
}

func (d chartDocument) chart() (*types.SavedChart, error) {
	c := &types.SavedChart{
		ID:        d.ID,
		CreatedAt: time.Unix(0, d.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, d.UpdatedAt).UTC(),
	}
	if err := decodeDocuments(c, []byte(d.Config), []byte(d.Dataset)); err != nil {
		return nil, err
	}
	return c, nil
}
