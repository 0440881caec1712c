// Package cmd assembles the command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/graphing-app/cmd/configcmd"
	"github.com/tphakala/graphing-app/cmd/migrate"
	"github.com/tphakala/graphing-app/cmd/serve"
	"github.com/tphakala/graphing-app/cmd/version"
	"github.com/tphakala/graphing-app/internal/buildinfo"
	"github.com/tphakala/graphing-app/internal/conf"
	"github.com/tphakala/graphing-app/internal/logger"
)

// RootCommand creates and returns the root command
func RootCommand(build *buildinfo.Context) *cobra.Command {
	v := viper.New()
	settings := &conf.Settings{}
	var configFile string
	var central *logger.CentralLogger

	rootCmd := &cobra.Command{
		Use:           "graphing-app",
		Short:         "REST API for datasets, samples, signals and UMAP plot points",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (default: search standard locations)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug output")
	if err := v.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		panic(fmt.Sprintf("binding debug flag: %v", err))
	}

	versionCmd := version.Command(build)
	configCmd := configcmd.Command()
	rootCmd.AddCommand(
		serve.Command(settings, v),
		migrate.Command(settings),
		configCmd,
		versionCmd,
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Commands that must work without a valid config
		if cmd == versionCmd || cmd.Parent() == configCmd {
			return nil
		}

		cl, err := initialize(v, configFile, settings, build)
		if err != nil {
			return err
		}
		central = cl
		return nil
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if central == nil {
			return nil
		}
		return central.Close()
	}

	return rootCmd
}

// initialize loads settings into settings and installs the global logger.
func initialize(v *viper.Viper, configFile string, settings *conf.Settings, build *buildinfo.Context) (*logger.CentralLogger, error) {
	loaded, err := conf.Load(v, configFile)
	if err != nil {
		return nil, err
	}
	*settings = *loaded
	settings.Version = build.GetVersion()
	settings.BuildDate = build.GetBuildDate()

	cl, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return nil, fmt.Errorf("error initializing logger: %w", err)
	}
	logger.SetGlobal(cl)

	if settings.ConfigFile != "" {
		conf.WatchLogLevel(v, cl)
	}

	logger.Global().Module("main").Info("configuration loaded",
		logger.String("config_file", settings.ConfigFile),
		logger.String("version", settings.Version))
	return cl, nil
}
