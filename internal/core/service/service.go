package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/niksmo/catalog-seed/internal/core/domain"
	"github.com/niksmo/catalog-seed/internal/core/generator"
	"github.com/niksmo/catalog-seed/internal/core/port"
	"github.com/niksmo/catalog-seed/internal/core/projection"
	"golang.org/x/sync/errgroup"
)

type Generator interface {
	Generate(generator.Plan) (generator.Result, error)
}

// SinkReport is the outcome of loading one sink.
type SinkReport struct {
	Sink   string
	Result port.WriteResult
	Counts domain.Counts
	Err    error
}

type Report struct {
	Seed        uint64
	Plan        generator.Plan
	Adjustments []generator.Adjustment
	Generated   domain.Counts
	Sinks       []SinkReport
}

// Failed reports whether any sink load failed.
func (r Report) Failed() bool {
	for _, s := range r.Sinks {
		if s.Err != nil {
			return true
		}
	}
	return false
}

type Option func(*Seeder)

// WithParallelSinks loads the sinks concurrently.
func WithParallelSinks(enabled bool) Option {
	return func(s *Seeder) {
		s.parallel = enabled
	}
}

// WithSeed records the seed the generator was built from in reports.
func WithSeed(seed uint64) Option {
	return func(s *Seeder) {
		s.seed = seed
	}
}

// Seeder drives the pipeline: generate, validate, project, load.
type Seeder struct {
	gen      Generator
	sinks    []port.Sink
	parallel bool
	seed     uint64
}

func New(gen Generator, sinks []port.Sink, opts ...Option) Seeder {
	s := Seeder{gen: gen, sinks: sinks}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Seed generates the dataset and loads it into every sink.
//
// A returned error means no sink was touched. Sink failures are
// reported per sink in [Report.Sinks] and never stop the other sinks.
func (s Seeder) Seed(ctx context.Context, plan generator.Plan) (Report, error) {
	const op = "Seeder.Seed"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return Report{}, fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.gen.Generate(plan)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := generator.Validate(res.Dataset); err != nil {
		return Report{}, fmt.Errorf("%s: %w", op, err)
	}

	snap, err := projection.Project(res.Dataset)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", op, err)
	}

	report := Report{
		Seed:        s.seed,
		Plan:        res.Plan,
		Adjustments: res.Adjustments,
		Generated:   res.Dataset.Counts(),
	}

	c := report.Generated
	log.Info("generated",
		"categories", c.Categories, "products", c.Products,
		"stores", c.Stores, "offers", c.Offers,
	)

	report.Sinks = s.load(ctx, snap)
	return report, nil
}

func (s Seeder) load(ctx context.Context, snap projection.Snapshot) []SinkReport {
	reports := make([]SinkReport, len(s.sinks))

	if !s.parallel {
		for i, sink := range s.sinks {
			reports[i] = loadSink(ctx, sink, snap)
		}
		return reports
	}

	var g errgroup.Group
	for i, sink := range s.sinks {
		g.Go(func() error {
			reports[i] = loadSink(ctx, sink, snap)
			return nil
		})
	}
	_ = g.Wait()
	return reports
}

func loadSink(
	ctx context.Context, sink port.Sink, snap projection.Snapshot,
) SinkReport {
	const op = "Seeder.loadSink"
	log := slog.With("op", op, "sink", sink.Name())

	r := SinkReport{Sink: sink.Name()}

	if err := sink.EnsureSchema(ctx); err != nil {
		r.Err = fmt.Errorf("%s: ensure schema: %w", op, err)
		log.Error("failed to ensure schema", "err", err)
		return r
	}

	res, err := sink.Write(ctx, snap)
	r.Result = res
	if err != nil {
		r.Err = fmt.Errorf("%s: write: %w", op, err)
		log.Error("failed to write", "err", err)
		return r
	}
	if res.Skipped != 0 {
		log.Warn("partial write", "inserted", res.Inserted, "skipped", res.Skipped)
	}

	counts, err := sink.Count(ctx)
	if err != nil {
		r.Err = fmt.Errorf("%s: count: %w", op, err)
		log.Error("failed to count", "err", err)
		return r
	}
	r.Counts = counts

	log.Info("loaded",
		"inserted", res.Inserted,
		"categories", counts.Categories, "products", counts.Products,
		"stores", counts.Stores, "offers", counts.Offers,
	)
	return r
}
