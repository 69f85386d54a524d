package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/BugaPunk/WorkflowS-sub001/internal/config"
	"github.com/BugaPunk/WorkflowS-sub001/internal/factory"
	"github.com/BugaPunk/WorkflowS-sub001/internal/kv"
	"github.com/BugaPunk/WorkflowS-sub001/internal/platform/logger"
	"github.com/BugaPunk/WorkflowS-sub001/internal/store"
)

var (
	driverFlag   string
	sqliteFlag   string
	postgresFlag string
	rootCmd      = &cobra.Command{
		Use:   "workflowctl",
		Short: "Operational tooling for the WorkflowS storage core",
	}
)

// openStore loads config (flags override environment) and wires the store.
func openStore() (store.Store, kv.Engine, *config.Config, zerolog.Logger, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, nil, zerolog.Nop(), err
	}
	if driverFlag != "" {
		cfg.Driver = driverFlag
	}
	if sqliteFlag != "" {
		cfg.SQLitePath = sqliteFlag
		if driverFlag == "" {
			cfg.Driver = "sqlite"
		}
	}
	if postgresFlag != "" {
		cfg.PostgresDSN = postgresFlag
		if driverFlag == "" {
			cfg.Driver = "postgres"
		}
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, nil, nil, zerolog.Nop(), err
	}

	logger.SetLevel(cfg.LogLevel)
	log := logger.New("workflowctl")
	s, eng, err := factory.NewStore(cfg, log)
	if err != nil {
		return nil, nil, nil, zerolog.Nop(), err
	}
	return s, eng, cfg, log, nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&driverFlag, "driver", "d", "", "KV engine driver (memory|sqlite|postgres)")
	rootCmd.PersistentFlags().StringVar(&sqliteFlag, "sqlite", "", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&postgresFlag, "postgres", "", "Postgres DSN")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
