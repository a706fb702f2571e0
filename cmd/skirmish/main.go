// Package main provides the skirmish command-line tool: it simulates
// encounters between AI-driven combatants, validates content, manages the
// journal schema and lists journaled encounters.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/observability"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries state shared by subcommands once configuration is loaded.
type app struct {
	v      *viper.Viper
	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper("")}
	var configPath string

	root := &cobra.Command{
		Use:           "skirmish",
		Short:         "Turn-based tactical combat simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(configPath, cmd.ErrOrStderr())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to configuration file (defaults and SKIRMISH_* env only when empty)")
	pf.String("log-level", "", "minimum log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: json or console")
	mustBind(a.v, "logging.level", pf.Lookup("log-level"))
	mustBind(a.v, "logging.format", pf.Lookup("log-format"))

	root.AddCommand(newSimulateCmd(a), newValidateCmd(a), newMigrateCmd(a), newHistoryCmd(a))
	return root
}

func (a *app) load(path string, logOut io.Writer) error {
	if path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	cfg, err := config.LoadFromViper(a.v)
	if err != nil {
		return err
	}
	logger, err := observability.NewLoggerTo(cfg.Logging, logOut)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	a.cfg, a.logger = cfg, logger
	return nil
}
