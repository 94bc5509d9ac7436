package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/niksmo/catalog-seed/internal/core/domain"
	"github.com/niksmo/catalog-seed/internal/core/port"
	"github.com/niksmo/catalog-seed/internal/core/projection"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var _ port.Sink = (*Sink)(nil)

const storesCollection = "s_stores"

// Collections a previous seed run may have left behind.
var seededCollections = []string{
	"s_stores", "pc_product_categories", "p_products", "o_offers",
}

// Sink loads store documents with embedded offers into MongoDB.
//
// Categories and products live inside the offers only, so Count
// reports them as -1.
type Sink struct {
	client  *mongo.Client
	db      *mongo.Database
	cleanup bool
}

func New(
	ctx context.Context, uri, database string, timeout time.Duration, cleanup bool,
) (*Sink, error) {
	const op = "mongodb.New"
	log := slog.With("op", op)

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%s: database is unavailable: %w", op, err)
	}
	log.Info("database is available", "database", database)

	return &Sink{
		client:  client,
		db:      client.Database(database),
		cleanup: cleanup,
	}, nil
}

func (s *Sink) Name() string {
	return "mongodb"
}

// EnsureSchema drops the seeded collections when cleanup is enabled
// and creates the store indexes. Failures here are logged, not returned,
// the load proceeds without them.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	const op = "Sink.EnsureSchema"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.cleanup {
		dropped, err := s.dropCollections(ctx, seededCollections)
		if err != nil {
			log.Warn("cleanup failed", "err", err)
		} else {
			log.Info("cleanup done", "dropped", dropped)
		}
	}

	for _, m := range storeIndexes() {
		if _, err := s.stores().Indexes().CreateOne(ctx, m); err != nil {
			log.Warn("failed to create index", "keys", m.Keys, "err", err)
		}
	}
	return nil
}

func (s *Sink) dropCollections(
	ctx context.Context, names []string,
) (dropped []string, err error) {
	existing, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, name := range names {
		if !slices.Contains(existing, name) {
			continue
		}
		if err := s.db.Collection(name).Drop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		dropped = append(dropped, name)
	}
	return dropped, errors.Join(errs...)
}

func storeIndexes() []mongo.IndexModel {
	unique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
	}

	perStoreProduct := unique(bson.D{
		{Key: "id", Value: 1}, {Key: "offers.product.id", Value: 1},
	})
	perStoreProduct.Options.SetSparse(true)

	return []mongo.IndexModel{
		unique(bson.D{{Key: "id", Value: 1}}),
		unique(bson.D{{Key: "name", Value: 1}}),
		unique(bson.D{{Key: "url", Value: 1}}),
		perStoreProduct,
	}
}

// Write inserts the store documents unordered. Documents rejected for
// duplicate keys are skipped, the rest of the batch is still inserted.
func (s *Sink) Write(
	ctx context.Context, snap projection.Snapshot,
) (port.WriteResult, error) {
	const op = "Sink.Write"

	if err := ctx.Err(); err != nil {
		return port.WriteResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if len(snap.Documents) == 0 {
		return port.WriteResult{}, nil
	}

	docs := toInsertable(snap.Documents)
	_, err := s.stores().InsertMany(
		ctx, docs, options.InsertMany().SetOrdered(false),
	)
	res, err := insertResult(len(docs), err)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// insertResult splits an unordered bulk insert outcome into inserted and
// duplicate documents. Only non-duplicate failures are returned as errors.
func insertResult(total int, err error) (port.WriteResult, error) {
	if err == nil {
		return port.WriteResult{Inserted: total}, nil
	}

	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return port.WriteResult{}, err
	}

	var dups int
	for _, we := range bwe.WriteErrors {
		if isDuplicateKeyCode(we.Code) {
			dups++
		}
	}

	res := port.WriteResult{
		Inserted: total - len(bwe.WriteErrors),
		Skipped:  dups,
	}
	if dups != len(bwe.WriteErrors) || bwe.WriteConcernError != nil {
		return res, err
	}
	return res, nil
}

func isDuplicateKeyCode(code int) bool {
	switch code {
	case 11000, 11001, 12582:
		return true
	}
	return false
}

func (s *Sink) Count(ctx context.Context) (domain.Counts, error) {
	const op = "Sink.Count"

	nStores, err := s.stores().CountDocuments(ctx, bson.D{})
	if err != nil {
		return domain.Counts{}, fmt.Errorf("%s: %w", op, err)
	}

	nOffers, err := s.countOffers(ctx)
	if err != nil {
		return domain.Counts{}, fmt.Errorf("%s: %w", op, err)
	}

	return domain.Counts{
		Categories: -1,
		Products:   -1,
		Stores:     nStores,
		Offers:     nOffers,
	}, nil
}

func (s *Sink) countOffers(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$offers"},
			{Key: "preserveNullAndEmptyArrays", Value: false},
		}}},
		{{Key: "$count", Value: "n"}},
	}

	cur, err := s.stores().Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}

	var rs []struct {
		N int64 `bson:"n"`
	}
	if err := cur.All(ctx, &rs); err != nil {
		return 0, err
	}
	if len(rs) == 0 {
		return 0, nil
	}
	return rs[0].N, nil
}

func (s *Sink) Close(ctx context.Context) {
	const op = "Sink.Close"
	log := slog.With("op", op)

	log.Info("disconnecting mongodb client...")
	if err := s.client.Disconnect(ctx); err != nil {
		log.Error("failed to disconnect", "err", err)
		return
	}
	log.Info("mongodb client is disconnected")
}

func (s *Sink) stores() *mongo.Collection {
	return s.db.Collection(storesCollection)
}
