package postgresql

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrations embed.FS

type migrationLogger struct {
	logger  *slog.Logger
	verbose bool
}

func (ml migrationLogger) Printf(format string, v ...any) {
	ml.logger.Info(fmt.Sprintf(format, v...))
}

func (ml migrationLogger) Verbose() bool {
	return ml.verbose
}

// Migrate applies the embedded catalog schema.
//
// addr has the form user:password@host:port/database?params.
func Migrate(addr string, verbose bool) error {
	const op = "postgresql.Migrate"

	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, "pgx5://"+addr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer closeMigrate(m)

	m.Log = migrationLogger{slog.With("op", op), verbose}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.Log.Printf("no migrations to apply")
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	m.Log.Printf("migration applied")
	return nil
}

func closeMigrate(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		slog.Error("failed to close migrator", "op", "postgresql.closeMigrate", "err", err)
	}
}
