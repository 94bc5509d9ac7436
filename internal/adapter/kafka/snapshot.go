package kafka

import (
	"context"
	"errors"
	"log/slog"

	"github.com/niksmo/catalog-seed/internal/core/domain"
	"github.com/niksmo/catalog-seed/internal/core/port"
	"github.com/niksmo/catalog-seed/internal/core/projection"
	"github.com/niksmo/catalog-seed/pkg/schema"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.Sink = (*SnapshotSink)(nil)

const (
	defaultPartitions        = 3
	defaultReplicationFactor = 1
	deleteCleanupPolicy      = "delete"
)

////////////////////////////////////////////////////////
///////////////           OPTS            //////////////
////////////////////////////////////////////////////////

type SinkOpt func(*sinkOpts) error

type sinkOpts struct {
	cl                ProducerClient
	adm               AdminClient
	encoder           Encoder
	topic             string
	partitions        int32
	replicationFactor int16
}

// SinkClientOpt connects to the brokers and pings them.
// extra is appended to the client options, e.g. [kgo.DialTLSConfig].
func SinkClientOpt(
	ctx context.Context, seedBrokers []string, topic string, extra ...kgo.Opt,
) SinkOpt {
	return func(opts *sinkOpts) error {
		kopts := append([]kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
		}, extra...)
		cl, err := kgo.NewClient(kopts...)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		opts.adm = kadm.NewClient(cl)
		opts.topic = topic
		return nil
	}
}

func SinkEncoderOpt(encoder Encoder) SinkOpt {
	return func(opts *sinkOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

// SinkTopicOpt sets the layout the snapshot topic is created with.
func SinkTopicOpt(partitions int32, replicationFactor int16) SinkOpt {
	return func(opts *sinkOpts) error {
		if partitions <= 0 || replicationFactor <= 0 {
			return errors.New("partitions and replication factor must be positive")
		}
		opts.partitions = partitions
		opts.replicationFactor = replicationFactor
		return nil
	}
}

////////////////////////////////////////////////////////
/////////////           SINK            ////////////////
////////////////////////////////////////////////////////

// A SnapshotSink publishes every store document as one Avro record
// keyed by store id. The topic is append-only, earlier snapshots stay.
//
// Count reports records kept in the topic as stores,
// other entities as -1.
type SnapshotSink struct {
	opPrefix string
	opts     sinkOpts
}

func NewSnapshotSink(opts ...SinkOpt) (*SnapshotSink, error) {
	const op = "NewSnapshotSink"

	options := sinkOpts{
		partitions:        defaultPartitions,
		replicationFactor: defaultReplicationFactor,
	}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, opErr(err, op)
		}
	}

	if options.cl == nil || options.adm == nil || options.encoder == nil {
		return nil, opErr(ErrTooFewOpts, op)
	}

	return &SnapshotSink{opPrefix: "SnapshotSink", opts: options}, nil
}

func (s *SnapshotSink) Name() string {
	return "kafka"
}

func (s *SnapshotSink) EnsureSchema(ctx context.Context) error {
	const op = "EnsureSchema"
	log := slog.With("op", makeOp(s.opPrefix, op))

	cleanupPolicy := deleteCleanupPolicy
	responses, err := s.opts.adm.CreateTopics(
		ctx,
		s.opts.partitions,
		s.opts.replicationFactor,
		map[string]*string{"cleanup.policy": &cleanupPolicy},
		s.opts.topic,
	)
	if err != nil {
		return opErr(err, s.opPrefix, op)
	}

	var errs []error
	for _, res := range responses.Sorted() {
		if res.Err == nil {
			log.Info("topic created", "topic", res.Topic)
			continue
		}
		if errors.Is(res.Err, kerr.TopicAlreadyExists) {
			log.Info("topic already exists", "topic", res.Topic)
			continue
		}
		errs = append(errs, res.Err)
	}

	if err := errors.Join(errs...); err != nil {
		return opErr(err, s.opPrefix, op)
	}
	return nil
}

func (s *SnapshotSink) Write(
	ctx context.Context, snap projection.Snapshot,
) (port.WriteResult, error) {
	const op = "Write"

	if err := ctx.Err(); err != nil {
		return port.WriteResult{}, opErr(err, s.opPrefix, op)
	}

	rs, err := s.createRecords(snap.Documents)
	if err != nil {
		return port.WriteResult{}, opErr(err, s.opPrefix, op)
	}
	if len(rs) == 0 {
		return port.WriteResult{}, nil
	}

	var res port.WriteResult
	results := s.opts.cl.ProduceSync(ctx, rs...)
	for _, r := range results {
		if r.Err == nil {
			res.Inserted++
		}
	}

	if err := results.FirstErr(); err != nil {
		return res, opErr(err, s.opPrefix, op)
	}
	return res, nil
}

func (s *SnapshotSink) createRecords(
	docs []projection.StoreDocument,
) ([]*kgo.Record, error) {
	const op = "createRecords"

	rs := make([]*kgo.Record, 0, len(docs))
	for _, d := range docs {
		b, err := s.opts.encoder.Encode(toSchemaV1(d))
		if err != nil {
			return nil, opErr(err, s.opPrefix, op)
		}
		rs = append(rs, &kgo.Record{
			Topic: s.opts.topic,
			Key:   []byte(d.ID.String()),
			Value: b,
		})
	}
	return rs, nil
}

func (s *SnapshotSink) Count(ctx context.Context) (domain.Counts, error) {
	const op = "Count"

	starts, err := s.opts.adm.ListStartOffsets(ctx, s.opts.topic)
	if err != nil {
		return domain.Counts{}, opErr(err, s.opPrefix, op)
	}
	ends, err := s.opts.adm.ListEndOffsets(ctx, s.opts.topic)
	if err != nil {
		return domain.Counts{}, opErr(err, s.opPrefix, op)
	}

	n, err := retained(starts, ends)
	if err != nil {
		return domain.Counts{}, opErr(err, s.opPrefix, op)
	}

	return domain.Counts{
		Categories: -1,
		Products:   -1,
		Stores:     n,
		Offers:     -1,
	}, nil
}

// retained sums end minus start offsets over all partitions.
func retained(starts, ends kadm.ListedOffsets) (int64, error) {
	var (
		n    int64
		errs []error
	)
	ends.Each(func(end kadm.ListedOffset) {
		if end.Err != nil {
			errs = append(errs, end.Err)
			return
		}
		start, ok := starts.Lookup(end.Topic, end.Partition)
		if !ok || start.Err != nil {
			errs = append(errs, errors.Join(
				errors.New("missing start offset"), start.Err,
			))
			return
		}
		n += end.Offset - start.Offset
	})
	return n, errors.Join(errs...)
}

func (s *SnapshotSink) Close(context.Context) {
	const op = "Close"
	log := slog.With("op", makeOp(s.opPrefix, op))

	log.Info("closing producer...")
	s.opts.cl.Close()
	log.Info("producer is closed")
}

func toSchemaV1(d projection.StoreDocument) schema.StoreSnapshotV1 {
	s := schema.StoreSnapshotV1{
		ID:     d.ID.String(),
		Name:   d.Name,
		URL:    d.URL,
		Offers: make([]schema.OfferV1, len(d.Offers)),
	}
	for i, o := range d.Offers {
		s.Offers[i] = schema.OfferV1{
			Product: schema.ProductV1{
				ID:          o.Product.ID.String(),
				Category:    o.Product.Category,
				EAN:         o.Product.EAN,
				Name:        o.Product.Name,
				RetailPrice: o.Product.RetailPrice.InexactFloat64(),
			},
			Price:  o.Price.InexactFloat64(),
			Amount: o.Amount,
		}
	}
	return s
}
