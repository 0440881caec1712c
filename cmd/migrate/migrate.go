// Package migrate implements the migrate command.
package migrate

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/graphing-app/internal/conf"
	"github.com/tphakala/graphing-app/internal/datastore"
	"github.com/tphakala/graphing-app/internal/logger"
)

// migrateTimeout bounds a single schema migration run.
const migrateTimeout = 5 * time.Minute

// Command creates the migrate command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
			defer cancel()
			return Run(ctx, settings)
		},
	}
}

// Run opens the configured database and migrates its schema.
func Run(ctx context.Context, settings *conf.Settings) error {
	log := logger.Global().Module("migrate")

	store, err := datastore.New(settings)
	if err != nil {
		return err
	}
	if err := store.Open(); err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close datastore", logger.Error(err))
		}
	}()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	log.Info("schema is up to date", logger.String("backend", store.Backend()))
	return nil
}
