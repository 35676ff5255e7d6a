package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/THE-AGENTVE/Leads-Scrapper/internal/config"
	"github.com/THE-AGENTVE/Leads-Scrapper/pkg/models"
)

// Mongo is the document-store destination. Documents are keyed by
// (name, source); an upsert fully replaces the existing field set.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
	log    *zap.Logger
}

func NewMongo(ctx context.Context, cfg *config.StoreConfig, log *zap.Logger) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("store connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("store ping: %w", err)
	}
	return &Mongo{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		log:    log.With(zap.String("stage", "store")),
	}, nil
}

// UpsertBatch merges a batch into the collection. A single failed row is
// logged and skipped; the batch continues.
func (m *Mongo) UpsertBatch(ctx context.Context, leads []*models.Lead) (upserted, failed int) {
	for _, l := range leads {
		filter := bson.M{"name": l.Name, "source": l.Source}
		_, err := m.coll.ReplaceOne(ctx, filter, l, options.Replace().SetUpsert(true))
		if err != nil {
			failed++
			m.log.Warn("upsert failed", zap.String("name", l.Name), zap.Error(err))
			continue
		}
		upserted++
	}
	return upserted, failed
}

// Fingerprints loads the identity keys of every stored lead for batch-start
// deduplication.
func (m *Mongo) Fingerprints(ctx context.Context) (map[string]bool, error) {
	proj := options.Find().SetProjection(bson.M{"name": 1, "phone": 1, "address": 1})
	cur, err := m.coll.Find(ctx, bson.M{}, proj)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	fps := make(map[string]bool)
	for cur.Next(ctx) {
		var l models.Lead
		if err := cur.Decode(&l); err != nil {
			continue
		}
		fps[l.Fingerprint()] = true
	}
	return fps, cur.Err()
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
