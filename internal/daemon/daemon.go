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

	"triage/internal/config"
	"triage/internal/logging"
	"triage/internal/timespan"
	"triage/internal/triage"
)

// Daemon coordinates the triage and sort loops and enforces
// single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	triager *triage.Triager

	sortInterval time.Duration
	lockPath     string
	lock         *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a daemon around an already wired triager.
func New(cfg *config.Config, triager *triage.Triager, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || triager == nil || logger == nil {
		return nil, errors.New("daemon requires config, triager, and logger")
	}
	var sortInterval time.Duration
	if cfg.Daemon.SortInterval != "" {
		interval, err := timespan.Parse(cfg.Daemon.SortInterval)
		if err != nil {
			return nil, fmt.Errorf("parse sort_interval: %w", err)
		}
		sortInterval = interval
	}
	return &Daemon{
		cfg:          cfg,
		logger:       logger,
		triager:      triager,
		sortInterval: sortInterval,
		lockPath:     cfg.Daemon.LockPath,
		lock:         flock.New(cfg.Daemon.LockPath),
	}, nil
}

// Start acquires the daemon lock and launches the triage loop, plus the
// sort loop when a sort interval is configured. It returns immediately;
// use Wait to block until the loops exit.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another triage daemon instance is already running")
	}

	ctx, d.cancel = context.WithCancel(ctx)
	d.running.Store(true)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.triageLoop(ctx)
	}()
	if d.sortInterval > 0 {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.sortLoop(ctx)
		}()
	}

	d.logger.Info("triage daemon started", logging.String("lock", d.lockPath))
	return nil
}

// triageLoop runs triage passes until the context ends. A finite source
// drains once per pass and the loop waits before starting the next; an
// infinite source keeps one Run alive until shutdown.
func (d *Daemon) triageLoop(ctx context.Context) {
	for {
		err := d.triager.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			d.logger.Error("triage pass failed", logging.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Minute):
		}
	}
}

func (d *Daemon) sortLoop(ctx context.Context) {
	ticker := time.NewTicker(d.sortInterval)
	defer ticker.Stop()
	for {
		if err := d.triager.Sort(ctx); err != nil && ctx.Err() == nil {
			d.logger.Error("sort pass failed", logging.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Wait blocks until the daemon loops have exited.
func (d *Daemon) Wait() {
	d.wg.Wait()
}

// Stop stops the loops, waits for them to exit, and releases the lock.
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
	d.logger.Info("triage daemon stopped")
}

// LockPath returns the path of the daemon lock file.
func (d *Daemon) LockPath() string {
	return d.lockPath
}
