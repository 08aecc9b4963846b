package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/saltyorg/userstore/internal/config"
	"github.com/saltyorg/userstore/internal/database"
	"github.com/saltyorg/userstore/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	v         *viper.Viper
	cfg       *config.Config
	cfgFile   string
	verbosity int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:               "userstore",
		Short:             "userstore - SQLite user repository",
		Long:              `userstore creates, seeds and queries the users table of a SQLite database.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("db", "d", config.DefaultDBPath, "SQLite database path (or set USERSTORE_DB)")
	flags.StringVarP(&a.cfgFile, "config", "c", "", "YAML config file")
	flags.CountVarP(&a.verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	flags.String("log-file", "", "Log file path (default: userstore.log next to the database)")
	flags.Duration("query-timeout", 0, "Deadline for each database statement, 0 disables it")

	// Bound flags only override config and env when set explicitly.
	_ = a.v.BindPFlag("db", flags.Lookup("db"))
	_ = a.v.BindPFlag("log.file", flags.Lookup("log-file"))
	_ = a.v.BindPFlag("timeouts.query", flags.Lookup("query-timeout"))

	rootCmd.AddCommand(
		newMigrateCmd(a),
		newListCmd(a),
		newFindCmd(a),
		newAddCmd(a),
		newMaintainCmd(a),
		newVersionCmd(),
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logging.Apply(logging.LevelForVerbosity(a.verbosity, cfg.LogLevel), cfg.Log, cfg.DBPath)

	log.Debug().
		Str("version", version).
		Str("database", cfg.DBPath).
		Dur("query_timeout", cfg.Timeouts.Query).
		Msg("Configuration loaded")

	return nil
}

// openStore opens the configured database. The caller closes it.
func (a *app) openStore(ctx context.Context) (*database.DB, error) {
	db, err := database.New(ctx, a.cfg.DBPath, database.WithQueryTimeout(a.cfg.Timeouts.Query))
	if err != nil {
		log.Error().Err(err).Str("path", a.cfg.DBPath).Msg("Failed to open database")
		return nil, err
	}
	return db, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// No config or log file needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "userstore %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
