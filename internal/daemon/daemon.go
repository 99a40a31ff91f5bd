package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"skipper/internal/analysis"
	"skipper/internal/config"
	"skipper/internal/logging"
	"skipper/internal/preflight"
	"skipper/internal/stats"
	"skipper/internal/store"
)

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	CacheDBPath  string
	StatsDBPath  string
	LockFilePath string
}

// Daemon owns the long-lived resources: the cache and stats databases, the
// single-instance lock, and the periodic cache sweep.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	kv     store.KeyValueStore
	cache  *analysis.Cache
	stats  *stats.Repository
	health preflight.HealthChecker

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, kv store.KeyValueStore, cache *analysis.Cache, statsRepo *stats.Repository, health preflight.HealthChecker, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || kv == nil || cache == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, cache, and logger")
	}
	lockPath := cfg.LockFilePath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		kv:       kv,
		cache:    cache,
		stats:    statsRepo,
		health:   health,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the single-instance lock, runs preflight, and launches the
// background sweep loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another skipper daemon instance is already running")
	}

	result := preflight.Run(ctx, d.cfg, d.health, d.logger)
	if !result.Ok() {
		_ = d.lock.Unlock()
		for _, check := range result.Checks {
			if check.Status == preflight.StatusFail {
				return fmt.Errorf("preflight check %s failed: %s", check.Name, check.Detail)
			}
		}
		return errors.New("preflight failed")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.wg.Add(1)
	go d.sweepLoop(runCtx)

	d.running.Store(true)
	d.logger.Info("skipper daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("skipper daemon stopped")
}

// Close stops the daemon and closes its databases.
func (d *Daemon) Close() error {
	d.Stop()
	var errs []error
	if d.kv != nil {
		errs = append(errs, d.kv.Close())
	}
	if d.stats != nil {
		errs = append(errs, d.stats.Close())
	}
	return errors.Join(errs...)
}

// Status reports runtime information for the status command.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		CacheDBPath:  d.cfg.CacheDBPath(),
		StatsDBPath:  d.cfg.StatsDBPath(),
		LockFilePath: d.lockPath,
	}
}

func (d *Daemon) sweepLoop(ctx context.Context) {
	defer d.wg.Done()

	interval := time.Duration(d.cfg.Cache.SweepIntervalHours) * time.Hour
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// One sweep at startup clears anything that expired while stopped.
	d.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.sweep(ctx)
		}
	}
}

func (d *Daemon) sweep(ctx context.Context) {
	removed, err := d.cache.Sweep(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logging.WarnWithContext(d.logger, "cache sweep failed", "cache_sweep_failed",
			logging.String(logging.FieldErrorHint, "check cache database health"),
			logging.String(logging.FieldImpact, "stale analyses linger until the next sweep"),
			logging.Error(err))
		return
	}
	if removed > 0 {
		d.logger.Info("expired cache entries removed", logging.Int("removed", removed))
	}
}
