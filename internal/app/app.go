package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/niksmo/catalog-seed/config"
	"github.com/niksmo/catalog-seed/internal/adapter"
	"github.com/niksmo/catalog-seed/internal/adapter/kafka"
	"github.com/niksmo/catalog-seed/internal/adapter/mongodb"
	"github.com/niksmo/catalog-seed/internal/adapter/postgresql"
	"github.com/niksmo/catalog-seed/internal/core/generator"
	"github.com/niksmo/catalog-seed/internal/core/port"
	"github.com/niksmo/catalog-seed/internal/core/service"
	"github.com/niksmo/catalog-seed/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sr"
)

const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitPrecondition = 2
)

type App struct {
	ctx     context.Context
	cfg     config.Config
	seed    uint64
	plan    generator.Plan
	planErr error
	sinks   []port.Sink
	failed  []service.SinkReport
	seeder  service.Seeder
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initSeed()
	app.initPlan()
	app.initSinks()
	app.initSeeder()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.Level()}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initSeed() {
	const op = "App.initSeed"

	seed, ok, err := app.cfg.SeedValue()
	if err != nil {
		app.fallDown(op, err)
	}
	if !ok {
		seed = generator.RandomSeed()
	}
	app.seed = seed
	slog.Info("random seed", "op", op, "seed", seed, "drawn", !ok)
}

// initPlan checks the requested counts before any sink is connected.
func (app *App) initPlan() {
	app.plan = generator.Plan{
		Categories: app.cfg.Categories,
		Products:   app.cfg.Products,
		Stores:     app.cfg.Stores,
		Offers:     app.cfg.Offers,
	}
	_, _, app.planErr = app.plan.Normalize()
}

func (app *App) initSinks() {
	const op = "App.initSinks"
	log := slog.With("op", op)

	if app.planErr != nil {
		return
	}

	pg, mongo := app.cfg.Targets()
	if app.cfg.OnlyPostgres && app.cfg.OnlyMongoDB {
		log.Warn("both only flags given, loading postgresql and mongodb")
	}

	if pg {
		app.addSink("postgresql", app.newPostgres)
	}
	if mongo {
		app.addSink("mongodb", app.newMongoDB)
	}
	if app.cfg.Kafka.Enabled {
		app.addSink("kafka", app.newKafka)
	}
}

// addSink connects a sink. A sink that cannot connect is
// reported as failed and left out of the load.
func (app *App) addSink(name string, connect func(context.Context) (port.Sink, error)) {
	const op = "App.addSink"

	ctx, cancel := context.WithTimeout(app.ctx, app.cfg.ConnectTimeout)
	defer cancel()

	sink, err := connect(ctx)
	if err != nil {
		slog.Error("sink is unavailable, skipped", "op", op, "sink", name, "err", err)
		app.failed = append(app.failed, service.SinkReport{
			Sink: name,
			Err:  fmt.Errorf("%s: connect: %w", op, err),
		})
		return
	}
	app.sinks = append(app.sinks, sink)
}

func (app *App) newPostgres(ctx context.Context) (port.Sink, error) {
	return postgresql.New(ctx, app.cfg.Postgres.Address(), app.cfg.Cleanup)
}

func (app *App) newMongoDB(ctx context.Context) (port.Sink, error) {
	c := app.cfg.MongoDB
	return mongodb.New(ctx, c.URI, c.Database, c.Timeout, app.cfg.Cleanup)
}

func (app *App) newKafka(ctx context.Context) (port.Sink, error) {
	c := app.cfg.Kafka

	var extra []kgo.Opt
	if c.TLS.Enabled() {
		tlsConfig, err := adapter.MakeTLSConfig(c.TLS.CA, c.TLS.Cert, c.TLS.Key)
		if err != nil {
			return nil, err
		}
		extra = append(extra, kgo.DialTLSConfig(tlsConfig))
	}

	srClient, err := sr.NewClient(sr.URLs(c.SchemaRegistryURLs...))
	if err != nil {
		return nil, err
	}

	serde, err := schema.NewSerdeStoreSnapshotV1(
		ctx,
		schema.SubjectOpt(c.Topic+"-value"),
		schema.SchemaIdentifierOpt(schema.NewRegistry(srClient)),
	)
	if err != nil {
		return nil, err
	}

	return kafka.NewSnapshotSink(
		kafka.SinkClientOpt(ctx, c.SeedBrokers, c.Topic, extra...),
		kafka.SinkEncoderOpt(serde),
		kafka.SinkTopicOpt(c.Partitions, c.ReplicationFactor),
	)
}

func (app *App) initSeeder() {
	src := generator.NewSource(app.seed)
	gen := generator.New(src, app.cfg.Generator.MaxAttempts)
	app.seeder = service.New(
		gen,
		app.sinks,
		service.WithSeed(app.seed),
		service.WithParallelSinks(app.cfg.ParallelSinks),
	)
}

// Run seeds every connected sink and returns the process exit code.
func (app *App) Run() int {
	const op = "App.Run"
	log := slog.With("op", op)

	if app.planErr != nil {
		log.Error("invalid plan, no sink touched", "err", app.planErr)
		return exitCode(service.Report{}, app.planErr)
	}

	log.Info("seeding is running")

	report, err := app.seeder.Seed(app.ctx, app.plan)
	if err != nil {
		log.Error("seeding aborted, no sink touched", "seed", app.seed, "err", err)
		return exitCode(report, err)
	}

	report.Sinks = append(report.Sinks, app.failed...)
	logReport(report)
	return exitCode(report, nil)
}

func logReport(r service.Report) {
	log := slog.With("op", "app.logReport", "seed", r.Seed)

	for _, s := range r.Sinks {
		if s.Err != nil {
			log.Error("sink failed", "sink", s.Sink, "err", s.Err)
			continue
		}
		log.Info("sink loaded",
			"sink", s.Sink,
			"inserted", s.Result.Inserted, "skipped", s.Result.Skipped,
			"categories", s.Counts.Categories, "products", s.Counts.Products,
			"stores", s.Counts.Stores, "offers", s.Counts.Offers,
		)
	}

	if r.Failed() {
		log.Error("seeding completed with failures")
		return
	}
	log.Info("seeding completed")
}

func exitCode(r service.Report, err error) int {
	switch {
	case errors.Is(err, generator.ErrNoCategories),
		errors.Is(err, generator.ErrNegativeCount):
		return ExitPrecondition
	case err != nil, r.Failed():
		return ExitFailure
	}
	return ExitOK
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	for _, s := range app.sinks {
		s.Close(ctx)
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
