// Package cmd wires configuration, storage and the HTTP server into the
// command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"landslide-monitor/config"
)

// runtime is filled in by the root command before any subcommand runs.
type runtime struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

// RootCommand creates and returns the root command.
func RootCommand() *cobra.Command {
	rt := &runtime{}

	rootCmd := &cobra.Command{
		Use:           "landslide-monitor",
		Short:         "Landslide sensor monitoring backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rt.configPath)
			if err != nil {
				return err
			}
			log, err := config.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			rt.cfg, rt.log = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.log != nil {
				_ = rt.log.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&rt.configPath, "config", "", "Path to a YAML config file")

	rootCmd.AddCommand(
		serveCommand(rt),
		dbCommand(rt),
		moderatorCommand(rt),
	)
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (rt *runtime) openDatabase(ctx context.Context) (*gorm.DB, error) {
	return config.OpenDatabase(ctx, rt.cfg.Database, rt.log)
}
