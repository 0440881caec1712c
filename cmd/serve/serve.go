// Package serve implements the serve command.
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/graphing-app/internal/api"
	"github.com/tphakala/graphing-app/internal/conf"
	"github.com/tphakala/graphing-app/internal/datastore"
	"github.com/tphakala/graphing-app/internal/logger"
	"github.com/tphakala/graphing-app/internal/observability"
	"github.com/tphakala/graphing-app/internal/telemetry"
)

// poolStatsInterval is how often connection pool gauges are refreshed.
const poolStatsInterval = 30 * time.Second

// Command creates the serve command.
func Command(settings *conf.Settings, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, settings)
		},
	}

	if err := setupFlags(cmd, v); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}
	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, v *viper.Viper) error {
	cmd.Flags().String("host", "", "Interface to bind, empty for all")
	cmd.Flags().IntP("port", "p", conf.DefaultPort, "Port to listen on")

	if err := v.BindPFlag("webserver.host", cmd.Flags().Lookup("host")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	if err := v.BindPFlag("webserver.port", cmd.Flags().Lookup("port")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

// Run opens the datastore and serves the API until ctx is cancelled.
func Run(ctx context.Context, settings *conf.Settings) error {
	log := logger.Global().Module("serve")

	if _, err := telemetry.InitSentry(settings); err != nil {
		return err
	}
	defer telemetry.Flush(telemetry.DefaultFlushTimeout)

	m, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	store, err := datastore.New(settings, datastore.WithMetrics(m.Datastore))
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

	srv, err := api.New(settings, api.WithDataStore(store), api.WithMetrics(m))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		monitorPool(gctx, store, log)
		return nil
	})
	return g.Wait()
}

// monitorPool pings the datastore periodically so pool gauges stay current.
func monitorPool(ctx context.Context, store datastore.Interface, log logger.Logger) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, api.DefaultHealthTimeout)
			if err := store.Ping(pingCtx); err != nil {
				log.Warn("datastore ping failed", logger.Error(err))
			}
			cancel()
		}
	}
}
