package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/niksmo/catalog-seed/internal/adapter/postgresql"
	"github.com/spf13/pflag"
)

const storagePathFlag = "storage-path"

func main() {
	storagePath := getFlagValue()
	validateFlag(storagePath)
	makeMigrations(storagePath)
}

func getFlagValue() string {
	storagePath := pflag.StringP(storagePathFlag, "s", "",
		"user:password@host:port/database?params")
	pflag.Parse()
	return *storagePath
}

func validateFlag(storagePath string) {
	if storagePath == "" {
		slog.Error("too few args", "err", fmt.Errorf("--%s flag: required", storagePathFlag))
		fallDown()
	}
}

func makeMigrations(storagePath string) {
	if err := postgresql.Migrate(storagePath, true); err != nil {
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}
}

func fallDown() {
	os.Exit(2)
}
