package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tierledger/settle/commission"
	"github.com/tierledger/settle/config"
	"github.com/tierledger/settle/ledger"
	"github.com/tierledger/settle/member"
	"github.com/tierledger/settle/settle"
	"github.com/tierledger/settle/store"
)

// app is the state shared by every subcommand once the configuration has
// been resolved.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     config.Config
	log     *zap.Logger
	svc     *settle.Service
	closer  io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	root := &cobra.Command{
		Use:           "settle",
		Short:         "Multi-level commission settlement",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context(), a.cfgFile)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	def := config.DefaultConfig()
	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default <datadir>/config.yaml)")
	flags.String("datadir", def.DataDir, "directory holding the database and logs")
	flags.String("backend", def.Backend, "storage backend: bolt, firestore or file")
	flags.String("firestore-project", def.FirestoreProject, "Google Cloud project for the firestore backend")
	flags.String("loglevel", def.LogLevel, "minimum log level: debug, info, warn or error")
	flags.String("logfile", def.LogFile, "write logs to this file instead of stderr")
	flags.Float64("tolerance", def.Tolerance, "amounts at or below this are treated as zero")
	for _, name := range []string{"datadir", "backend", "firestore-project", "loglevel", "logfile", "tolerance"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		newMemberCmd(a),
		newRunCmd(a),
		newLogCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup resolves the configuration and opens the configured backend.
func (a *app) setup(ctx context.Context, cfgFile string) error {
	if err := a.resolve(cfgFile); err != nil {
		return err
	}

	members, logs, closer, err := openBackend(ctx, a.cfg)
	if err != nil {
		return err
	}
	a.closer = closer
	a.svc = settle.NewService(a.log.Named("settle"), members, logs,
		settle.WithCalculator(&commission.Calculator{Tolerance: a.cfg.Tolerance}))

	a.log.Debug("backend ready", zap.String("backend", a.cfg.Backend), zap.String("datadir", a.cfg.DataDir))
	return nil
}

// resolve merges defaults, the config file, environment and flags, and
// builds the logger. An explicit --config must exist; the default
// location is optional.
func (a *app) resolve(cfgFile string) error {
	path := cfgFile
	if path == "" {
		path = config.ConfigPath(a.v.GetString("datadir"))
	}
	if err := config.ReadFile(a.v, path); err != nil {
		if cfgFile != "" || !errors.Is(err, config.ErrConfigNotFound) {
			return err
		}
	}

	cfg, err := config.FromViper(a.v)
	if err != nil {
		return err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}
	a.cfg = cfg

	a.log, err = newLogger(cfg.LogLevel, cfg.LogFile)
	return err
}

func (a *app) close() error {
	var err error
	if a.closer != nil {
		err = a.closer.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return err
}

// openBackend opens the member repository and log store for cfg. The file
// backend keeps members in bolt and writes each log as a JSON file.
func openBackend(ctx context.Context, cfg config.Config) (member.Repository, ledger.Store, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendFirestore:
		fs, err := store.NewFirestoreStore(ctx, cfg.FirestoreProject)
		if err != nil {
			return nil, nil, nil, err
		}
		return fs.Members(), fs.Logs(), fs, nil

	case config.BackendBolt, config.BackendFile:
		db, err := store.OpenBoltStore(filepath.Join(cfg.DataDir, "settle.db"))
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.Backend == config.BackendBolt {
			return db.Members(), db.Logs(), db, nil
		}
		files, err := store.NewFileStore(filepath.Join(cfg.DataDir, "logs"))
		if err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		return db.Members(), files, db, nil
	}
	return nil, nil, nil, fmt.Errorf("%w: %q", config.ErrInvalidBackend, cfg.Backend)
}
