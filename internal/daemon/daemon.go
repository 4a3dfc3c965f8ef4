package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"playden/internal/config"
	"playden/internal/deps"
	"playden/internal/logging"
	"playden/internal/media/ffprobe"
	"playden/internal/pipeline"
	"playden/internal/server"
	"playden/internal/store"
)

// Daemon ties the store, worker pool, and HTTP server together and enforces
// single-instance execution through a lock file.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	pool   *pipeline.Pool
	server *server.Server

	lockPath string
	lock     *flock.Flock

	// probe re-inspects recovered videos at startup; swapped in tests.
	probe func(ctx context.Context, binary, path string) (ffprobe.Info, error)

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status reports daemon runtime information.
type Status struct {
	Running      bool
	ActiveJobs   int
	QueuedJobs   int
	Stats        store.StatusCounts
	Bind         string
	DBPath       string
	LockFilePath string
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, pool *pipeline.Pool, srv *server.Server, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || pool == nil || srv == nil {
		return nil, errors.New("daemon requires config, store, pool, and server")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "playden.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    st,
		pool:     pool,
		server:   srv,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		probe:    ffprobe.Probe,
	}, nil
}

// Start acquires the instance lock, recovers interrupted work, and launches
// the worker pool and HTTP server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another playden instance is already running")
	}

	for _, missing := range deps.MissingRequired(deps.CheckBinaries(deps.ForConfig(d.cfg))) {
		d.logger.Warn("required tool unavailable",
			logging.String("tool", missing.Name),
			logging.String("detail", missing.Detail))
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.recover(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		d.cancel = nil
		return err
	}

	d.pool.Start(runCtx)
	if err := d.server.Start(runCtx); err != nil {
		d.pool.Stop()
		cancel()
		_ = d.lock.Unlock()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("bind", d.cfg.Paths.Bind),
		logging.String("lock", d.lockPath))
	return nil
}

// recover resets videos stranded in processing and re-enqueues everything
// pending. A pending source that can no longer be probed is marked failed
// rather than looping forever.
func (d *Daemon) recover(ctx context.Context) error {
	reset, err := d.store.ResetStuckProcessing(ctx)
	if err != nil {
		return fmt.Errorf("reset interrupted videos: %w", err)
	}
	if reset > 0 {
		d.logger.Info("reset interrupted videos", logging.Int64("count", reset))
	}

	pending, err := d.store.VideosByStatus(ctx, store.StatusPending)
	if err != nil {
		return fmt.Errorf("load pending videos: %w", err)
	}
	for _, video := range pending {
		sourcePath := filepath.Join(d.cfg.VideoOutputDir(video.ID), video.Filename)
		info, err := d.probe(ctx, d.cfg.Tools.FFprobe, sourcePath)
		if err != nil {
			d.logger.Warn("pending video no longer probeable",
				logging.String(logging.FieldVideoID, video.ID),
				logging.Error(err))
			if markErr := d.store.MarkFailed(ctx, video.ID, "Failed to read video metadata"); markErr != nil {
				d.logger.Error("mark failed", logging.Error(markErr))
			}
			continue
		}
		d.pool.Enqueue(pipeline.Job{VideoID: video.ID, SourcePath: sourcePath, Info: info})
	}
	if len(pending) > 0 {
		d.logger.Info("requeued pending videos", logging.Int("count", len(pending)))
	}
	return nil
}

// Stop shuts everything down and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.server.Stop()
	d.pool.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and closes the store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Status summarizes current runtime state.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		ActiveJobs:   d.pool.Active(),
		QueuedJobs:   d.pool.QueueDepth(),
		Bind:         d.cfg.Paths.Bind,
		DBPath:       d.cfg.Paths.DBPath,
		LockFilePath: d.lockPath,
		Dependencies: deps.CheckBinaries(deps.ForConfig(d.cfg)),
	}
	if stats, err := d.store.Stats(ctx); err == nil {
		status.Stats = stats
	}
	return status
}
