package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/roach88/presensi/internal/config"
	"github.com/roach88/presensi/internal/coordinator"
	"github.com/roach88/presensi/internal/pending"
	"github.com/roach88/presensi/internal/store"
)

// app is the wired attendance system shared by run, serve and report.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	pending pending.Store
	redis   *redis.Client
	coord   *coordinator.Coordinator
}

// loadConfig resolves configuration for a command. An explicit path
// overrides --config.
func loadConfig(opts *RootOptions, path string, stderr io.Writer) (*config.Config, error) {
	if path == "" {
		path = opts.ConfigPath
	}
	bootstrap := newLogger(stderr, opts.Verbose, "warn", "text")
	loader := config.NewLoader(bootstrap)
	if opts.LookupEnv != nil {
		loader.LookupEnv = opts.LookupEnv
	}
	cfg, err := loader.Load(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. --verbose always wins over the
// configured level.
func newLogger(w io.Writer, verbose bool, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// openApp opens the store and pending backend described by cfg and wires
// a coordinator over them.
func openApp(ctx context.Context, opts *RootOptions, cfg *config.Config, stderr io.Writer) (*app, error) {
	logger := newLogger(stderr, opts.Verbose, cfg.Log.Level, cfg.Log.Format)

	loc, err := cfg.Location()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid timezone", err)
	}

	logger.Debug("opening database", "path", cfg.Database.Path)
	st, err := store.Open(cfg.Database.Path, store.WithLocation(loc))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	a := &app{cfg: cfg, logger: logger, store: st}

	switch cfg.Pending.Backend {
	case config.BackendRedis:
		r := cfg.Pending.Redis
		client, err := pending.DialRedis(ctx, r.Addr, r.Password, r.DB)
		if err != nil {
			st.Close()
			return nil, WrapExitError(ExitCommandError, "failed to connect to redis", err)
		}
		a.redis = client
		a.pending = pending.NewRedisStore(client, r.KeyPrefix, cfg.Attendance.PendingTTL)
		logger.Debug("pending backend ready", "backend", "redis", "addr", r.Addr)
	default:
		a.pending = pending.NewMemoryStore(cfg.Attendance.PendingTTL, nil)
		logger.Debug("pending backend ready", "backend", "memory")
	}

	a.coord = coordinator.New(st, a.pending, coordinator.Config{
		AdminID: cfg.Admin.UserID,
		Commands: coordinator.Commands{
			Attend: cfg.Attendance.Commands.Attend,
			Report: cfg.Attendance.Commands.Report,
			Start:  cfg.Attendance.Commands.Start,
		},
		Location: loc,
		Logger:   logger,
	})

	if cfg.Admin.UserID == "" {
		logger.Warn("no admin configured; report command is disabled")
	}
	return a, nil
}

// health pings every backing service.
func (a *app) health(ctx context.Context) error {
	if err := a.store.Ping(ctx); err != nil {
		return err
	}
	if a.redis != nil {
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close releases the store and the redis client.
func (a *app) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	errs = append(errs, a.store.Close())
	return errors.Join(errs...)
}
