package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/niksmo/catalog-seed/internal/core/domain"
	"github.com/niksmo/catalog-seed/internal/core/port"
	"github.com/niksmo/catalog-seed/internal/core/projection"
)

var _ port.Sink = (*Sink)(nil)

const (
	categoriesTable = "pc_product_categories"
	productsTable   = "p_products"
	storesTable     = "s_stores"
	offersTable     = "o_offers"
)

const (
	insertCategory = `INSERT INTO pc_product_categories (id, name)
		VALUES ($1, $2) ON CONFLICT DO NOTHING;`

	insertProduct = `INSERT INTO p_products (id, categoryId, ean, name, retailPrice)
		VALUES ($1, $2, $3, $4, $5) ON CONFLICT DO NOTHING;`

	insertStore = `INSERT INTO s_stores (id, name, url)
		VALUES ($1, $2, $3) ON CONFLICT DO NOTHING;`

	insertOffer = `INSERT INTO o_offers (storeId, productId, price, amount)
		VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING;`

	truncateAll = `TRUNCATE o_offers, p_products, s_stores, pc_product_categories
		RESTART IDENTITY CASCADE;`
)

type sqldb interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PingContext(ctx context.Context) error
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Close() error
}

type valuer interface {
	Values() []any
}

// Sink loads the relational projection into PostgreSQL.
type Sink struct {
	sqldb   sqldb
	addr    string
	cleanup bool
}

// New opens a connection pool and pings the database.
//
// addr has the form user:password@host:port/database?params.
func New(ctx context.Context, addr string, cleanup bool) (*Sink, error) {
	const op = "postgresql.New"
	log := slog.With("op", op)

	connConfig, err := pgx.ParseConfig("postgres://" + addr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	connStr := stdlib.RegisterConnConfig(connConfig)

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: database is unavailable: %w", op, err)
	}
	log.Info("database is available",
		"host", connConfig.Host, "port", connConfig.Port,
		"database", connConfig.Database, "user", connConfig.User,
	)

	return &Sink{sqldb: db, addr: addr, cleanup: cleanup}, nil
}

func (s *Sink) Name() string {
	return "postgresql"
}

func (s *Sink) EnsureSchema(ctx context.Context) error {
	const op = "Sink.EnsureSchema"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := Migrate(s.addr, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !s.cleanup {
		return nil
	}

	if _, err := s.sqldb.ExecContext(ctx, truncateAll); err != nil {
		return fmt.Errorf("%s: failed to truncate: %w", op, err)
	}
	log.Info("cleanup done, tables truncated")
	return nil
}

// Write inserts every row in one transaction. Rows whose keys
// already exist are left untouched and counted as skipped.
func (s *Sink) Write(
	ctx context.Context, snap projection.Snapshot,
) (res port.WriteResult, writeErr error) {
	const op = "Sink.Write"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if writeErr == nil {
			if err := tx.Commit(); err != nil {
				writeErr = fmt.Errorf("%s: failed to commit: %w", op, err)
				res = port.WriteResult{}
			}
			return
		}

		if err := tx.Rollback(); err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
		res = port.WriteResult{}
	}()

	t := snap.Tables
	steps := []struct {
		table string
		query string
		rows  []valuer
	}{
		{categoriesTable, insertCategory, rowsOf(t.Categories)},
		{productsTable, insertProduct, rowsOf(t.Products)},
		{storesTable, insertStore, rowsOf(t.Stores)},
		{offersTable, insertOffer, rowsOf(t.Offers)},
	}

	for _, step := range steps {
		inserted, err := s.insert(ctx, tx, step.query, step.rows)
		if err != nil {
			return res, fmt.Errorf("%s: %s: %w", op, step.table, err)
		}
		res.Inserted += inserted
		res.Skipped += len(step.rows) - inserted
	}

	return res, nil
}

func (s *Sink) insert(
	ctx context.Context, tx *sql.Tx, query string, rows []valuer,
) (inserted int, err error) {
	const op = "Sink.insert"
	log := slog.With("op", op)

	if len(rows) == 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare stmt: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Error("failed to close prepared stmt", "err", err)
		}
	}()

	for _, row := range rows {
		r, err := stmt.ExecContext(ctx, row.Values()...)
		if err != nil {
			return inserted, fmt.Errorf("failed to exec: %w", describe(err))
		}
		n, err := r.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("failed to read rows affected: %w", err)
		}
		inserted += int(n)
	}
	return inserted, nil
}

func (s *Sink) Count(ctx context.Context) (domain.Counts, error) {
	const op = "Sink.Count"

	var c domain.Counts
	for _, t := range []struct {
		table string
		dst   *int64
	}{
		{categoriesTable, &c.Categories},
		{productsTable, &c.Products},
		{storesTable, &c.Stores},
		{offersTable, &c.Offers},
	} {
		query := "SELECT count(*) FROM " + t.table + ";"
		if err := s.sqldb.QueryRowContext(ctx, query).Scan(t.dst); err != nil {
			return domain.Counts{}, fmt.Errorf("%s: %s: %w", op, t.table, err)
		}
	}
	return c, nil
}

func (s *Sink) Close(context.Context) {
	const op = "Sink.Close"
	log := slog.With("op", op)

	log.Info("closing sql database...")

	if err := s.sqldb.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("sql database is closed")
}

func rowsOf[T valuer](vs []T) []valuer {
	rows := make([]valuer, len(vs))
	for i, v := range vs {
		rows[i] = v
	}
	return rows
}

// describe adds the violated constraint to postgres errors.
func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName != "" {
		return fmt.Errorf("constraint %q: %w", pgErr.ConstraintName, err)
	}
	return err
}
