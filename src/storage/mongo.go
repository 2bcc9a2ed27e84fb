package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"econ-dashboard/src/logger"
	"econ-dashboard/src/models"
)

const defaultMongoDatabase = "econ_dashboard"

// seriesDoc is one cached series. BSON doubles carry NaN so missing values are stored as is.
type seriesDoc struct {
	SeriesID  string      `bson:"_id"`
	Name      string      `bson:"name"`
	Dates     []time.Time `bson:"dates"`
	Values    []float64   `bson:"values"`
	FetchedAt time.Time   `bson:"fetched_at"`
}

// -----------------------------------------------------------------------------

type MongoDB struct {
	Config *models.MConfig
	Client *mongo.Client
	Logger *logger.Logger
	c      *mongo.Collection
}

// -----------------------------------------------------------------------------

func NewMongoDB(cfg *models.MConfig, log *logger.Logger) (*MongoDB, error) {
	if cfg.Storage.DBConnectionString == "" {
		return nil, errors.New("mongo: db_connection_string is required")
	}
	return &MongoDB{Config: cfg, Logger: log}, nil
}

// -----------------------------------------------------------------------------

func (d *MongoDB) Initialize(ctx context.Context) error {
	clientOpts := options.Client().
		ApplyURI(d.Config.Storage.DBConnectionString).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return err
	}

	dbName := d.Config.Storage.DBName
	if dbName == "" {
		dbName = defaultMongoDatabase
	}
	d.Client = client
	d.c = client.Database(dbName).Collection("series_cache")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "fetched_at", Value: 1}},
			Options: options.Index().SetName("idx_series_fetched_at"),
		},
	}
	if _, err := d.c.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	d.Logger.Info("MongoDB initialized successfully (Database: %s)", dbName)
	return nil
}

// -----------------------------------------------------------------------------

func (d *MongoDB) LoadSeries(ctx context.Context, seriesID string) (models.MCacheEntry, bool, error) {
	var doc seriesDoc
	if err := d.c.FindOne(ctx, bson.M{"_id": seriesID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.MCacheEntry{}, false, nil
		}
		return models.MCacheEntry{}, false, err
	}

	series := models.NewSeries(doc.Name)
	for i := range doc.Dates {
		series.Append(doc.Dates[i].UTC(), doc.Values[i])
	}
	return models.MCacheEntry{
		SeriesID:  doc.SeriesID,
		Series:    series,
		FetchedAt: doc.FetchedAt.UTC(),
	}, true, nil
}

// -----------------------------------------------------------------------------

func (d *MongoDB) SaveSeries(ctx context.Context, entry models.MCacheEntry) error {
	doc := seriesDoc{
		SeriesID:  entry.SeriesID,
		Name:      entry.Series.Name,
		Dates:     entry.Series.Dates,
		Values:    entry.Series.Values,
		FetchedAt: entry.FetchedAt.UTC(),
	}
	opts := options.Replace().SetUpsert(true)
	_, err := d.c.ReplaceOne(ctx, bson.M{"_id": entry.SeriesID}, doc, opts)
	return err
}

// -----------------------------------------------------------------------------

func (d *MongoDB) DeleteSeries(ctx context.Context, seriesID string) error {
	_, err := d.c.DeleteOne(ctx, bson.M{"_id": seriesID})
	return err
}

// -----------------------------------------------------------------------------

func (d *MongoDB) Clear(ctx context.Context) error {
	_, err := d.c.DeleteMany(ctx, bson.M{})
	return err
}

// -----------------------------------------------------------------------------

func (d *MongoDB) Close() error {
	if d.Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.Client.Disconnect(ctx)
}
