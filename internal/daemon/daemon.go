package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"tunesort/internal/config"
	"tunesort/internal/logging"
	"tunesort/internal/reconcile"
	"tunesort/internal/services"
)

// LockFileName is created in the log directory while a daemon or a one-off
// cycle holds the library.
const LockFileName = "tunesort.lock"

var (
	// ErrCycleInProgress is returned by RunOnce when a cycle is already running.
	ErrCycleInProgress = errors.New("reconciliation cycle already in progress")
	// ErrAlreadyRunning reports that another process holds the lock.
	ErrAlreadyRunning = errors.New("another tunesort instance is already running")
)

// Runner executes one reconciliation cycle.
type Runner interface {
	Run(ctx context.Context, opts reconcile.Options) (reconcile.Report, error)
}

// Daemon schedules cycles and enforces single-instance execution.
type Daemon struct {
	runner   Runner
	logger   *slog.Logger
	interval time.Duration

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	busy    atomic.Bool
	cycles  atomic.Int64
	cancel  context.CancelFunc
	done    chan struct{}

	mu   sync.Mutex
	last *reconcile.Report
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Cycles       int64
	Interval     time.Duration
	LockFilePath string
	LastReport   *reconcile.Report
}

// New constructs a daemon for cfg. The runner is usually a *reconcile.Cycle.
func New(cfg *config.Config, runner Runner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || runner == nil {
		return nil, errors.New("daemon requires config and runner")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	interval := cfg.Interval()
	if interval <= 0 {
		return nil, services.Wrap(services.ErrConfiguration, "daemon", "new", "interval must be positive", nil)
	}
	lockPath := LockPath(cfg)
	return &Daemon{
		runner:   runner,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		interval: interval,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// LockPath returns the lock file location for cfg.
func LockPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, LockFileName)
}

// AcquireLock takes the library lock without starting a scheduler. Callers
// release it with Unlock.
func AcquireLock(path string) (*flock.Flock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	return lock, nil
}

// Start acquires the lock and launches the scheduling loop. The first cycle
// runs immediately.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.running.Store(true)
	go d.loop(loopCtx, d.done)

	d.logger.Info("tunesort daemon started",
		logging.String("lock", d.lockPath),
		logging.Duration("interval", d.interval),
		logging.String(logging.FieldEventType, "daemon_started"),
	)
	return nil
}

// Stop cancels scheduling, waits for an in-flight cycle to return, and
// releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	<-d.done
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("tunesort daemon stopped", logging.Int64("cycles", d.cycles.Load()))
}

// Serve starts the daemon and blocks until ctx is cancelled.
func (d *Daemon) Serve(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop()
	return nil
}

func (d *Daemon) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

func (d *Daemon) tick(ctx context.Context) {
	if _, err := d.RunOnce(ctx); err != nil {
		if errors.Is(err, ErrCycleInProgress) {
			d.logger.Debug("tick skipped; cycle still running")
			return
		}
		if ctx.Err() != nil {
			return
		}
		if services.IsFatal(err) {
			logging.ErrorWithContext(d.logger, "cycle aborted", "cycle_aborted",
				logging.Error(err),
				logging.Alert("cycle_aborted"),
				logging.String(logging.FieldErrorHint, "check that root_folder and the inbox exist and are readable"),
			)
			return
		}
		logging.WarnWithContext(d.logger, "cycle failed", "cycle_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "the next tick retries"),
		)
	}
}

// RunOnce runs a single cycle unless one is already running.
func (d *Daemon) RunOnce(ctx context.Context) (reconcile.Report, error) {
	if !d.busy.CompareAndSwap(false, true) {
		return reconcile.Report{}, ErrCycleInProgress
	}
	defer d.busy.Store(false)

	report, err := d.runner.Run(ctx, reconcile.Options{})
	d.cycles.Add(1)
	d.mu.Lock()
	d.last = &report
	d.mu.Unlock()
	return report, err
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	last := d.last
	d.mu.Unlock()
	return Status{
		Running:      d.running.Load(),
		Cycles:       d.cycles.Load(),
		Interval:     d.interval,
		LockFilePath: d.lockPath,
		LastReport:   last,
	}
}
