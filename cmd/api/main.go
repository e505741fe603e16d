package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/puskesmas-merdeka/simpus-api/internal/config"
	"github.com/puskesmas-merdeka/simpus-api/pkg/logger"
)

func main() {
	var configDir string

	rootCmd := &cobra.Command{
		Use:           "simpus",
		Short:         "Puskesmas information system API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "Directory holding config.yml")

	load := func() (*config.Config, zerolog.Logger, error) {
		var paths []string
		if configDir != "" {
			paths = append(paths, configDir)
		}
		cfg, err := config.LoadConfig(paths...)
		if err != nil {
			return nil, zerolog.Nop(), err
		}
		l := logger.NewLogger(&logger.Config{
			Level:      logger.ParseLevel(cfg.Server.LogLevel),
			TimeFormat: time.RFC3339,
			Output:     os.Stdout,
			Console:    !cfg.IsProduction(),
		})
		l.SetGlobal()
		return cfg, *l.Zerolog(), nil
	}

	rootCmd.AddCommand(serveCmd(load))
	rootCmd.AddCommand(migrateCmd(load))
	rootCmd.AddCommand(exportCmd(load))
	rootCmd.AddCommand(eventsCmd(load))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loader reads the configuration and installs the global logger.
type loader func() (*config.Config, zerolog.Logger, error)
