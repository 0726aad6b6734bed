package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures [NewMongoStore].
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	// ArtifactRoot is the local directory holding run artifacts.
	ArtifactRoot string
}

// MongoStore stores runs in a MongoDB collection.
type MongoStore struct {
	client   *mongo.Client
	coll     *mongo.Collection
	artifact string
}

// NewMongoStore connects to MongoDB, pings the primary and ensures the
// created_at index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "graphmap"
	}
	if cfg.Collection == "" {
		cfg.Collection = "runs"
	}
	if cfg.ArtifactRoot == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		cfg.ArtifactRoot = dir
	}

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(cctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoStore{client: client, coll: coll, artifact: cfg.ArtifactRoot}, nil
}

func (s *MongoStore) Save(ctx context.Context, run *Run) error {
	if !ValidID(run.ID) {
		return fmt.Errorf("%w: %q", ErrInvalidID, run.ID)
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": run.ID}, run, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Run, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	var run Run
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]*Run, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"map": 0})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var runs []*Run
	if err := cur.All(ctx, &runs); err != nil {
		return nil, fmt.Errorf("decode runs: %w", err)
	}
	return runs, nil
}

// ArtifactDir implements [Store].
func (s *MongoStore) ArtifactDir(id string) string {
	return filepath.Join(s.artifact, id)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
