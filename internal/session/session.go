// Package session wires the long-lived object graph behind a vinyl run:
// config, logger, single-instance lock, store, download scheduler, audio
// sink, and the playback orchestrator. Open builds the graph in dependency
// order; Close tears it down in reverse.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"

	"vinyl/internal/config"
	"vinyl/internal/download"
	"vinyl/internal/logging"
	"vinyl/internal/player"
	"vinyl/internal/store"
)

// ErrAlreadyRunning reports that another vinyl process holds the lock on
// this data directory.
var ErrAlreadyRunning = errors.New("another vinyl instance is already running")

// Option adjusts session construction.
type Option func(*options)

type options struct {
	logger *slog.Logger
	sink   player.Sink
	runner download.Runner
}

// WithLogger replaces the file logger built from the config.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSink replaces the mpv sink. The session will not spawn mpv.
func WithSink(sink player.Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithRunner replaces the yt-dlp runner used by the download scheduler.
func WithRunner(runner download.Runner) Option {
	return func(o *options) {
		o.runner = runner
	}
}

// Session owns the running object graph for one vinyl process.
type Session struct {
	cfg    *config.Config
	logger *slog.Logger

	lockPath string
	lock     *flock.Flock

	store        *store.Store
	scheduler    *download.Scheduler
	sink         player.Sink
	orchestrator *player.Orchestrator

	cancel context.CancelFunc
	closed atomic.Bool
}

// Open builds and starts the session. ctx bounds all background work:
// cancelling it stops the result consumer and kills in-flight downloads.
// A second Open against the same data directory fails with ErrAlreadyRunning.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("session requires a config")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		var err error
		logger, err = logging.NewFromConfig(cfg)
		if err != nil {
			return nil, err
		}
	}

	lockPath := cfg.LockPath()
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire instance lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}

	st, err := store.Open(cfg)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	runner := o.runner
	if runner == nil {
		runner = download.NewYtdlp(download.WithBinary(cfg.Downloads.YtdlpBinary))
	}
	scheduler := download.NewScheduler(cfg.Downloads.MaxConcurrent, runner, logger)

	ctx, cancel := context.WithCancel(ctx)

	sink := o.sink
	if sink == nil {
		mpv := player.NewMPV(
			player.WithMPVBinary(cfg.Playback.MpvBinary),
			player.WithSocketPath(cfg.SocketPath()),
			player.WithMPVLogger(logger),
		)
		if err := mpv.Start(ctx); err != nil {
			cancel()
			_ = st.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("start mpv: %w", err)
		}
		sink = mpv
	}

	orchestrator := player.New(scheduler, sink, player.Options{
		DownloadDir: cfg.Paths.DownloadDir,
		Volume:      cfg.Playback.Volume,
	}, logger)
	orchestrator.Start(ctx)

	logger.Info("session open",
		logging.String("lock", lockPath),
		logging.String("database", st.Path()),
	)

	return &Session{
		cfg:          cfg,
		logger:       logger,
		lockPath:     lockPath,
		lock:         lock,
		store:        st,
		scheduler:    scheduler,
		sink:         sink,
		orchestrator: orchestrator,
		cancel:       cancel,
	}, nil
}

// Config returns the resolved configuration the session was opened with.
func (s *Session) Config() *config.Config {
	return s.cfg
}

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Store returns the playlist store.
func (s *Session) Store() *store.Store {
	return s.store
}

// Player returns the playback orchestrator.
func (s *Session) Player() *player.Orchestrator {
	return s.orchestrator
}

// Close stops playback, waits out background work, and releases everything
// Open acquired. Safe to call more than once.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.cancel()
	s.orchestrator.Close()
	s.scheduler.Wait()

	if err := s.sink.Close(); err != nil {
		s.logger.Warn("failed to close audio sink", logging.Error(err))
	}

	storeErr := s.store.Close()

	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("failed to release instance lock", logging.Error(err))
	}

	s.logger.Info("session closed")
	return storeErr
}
