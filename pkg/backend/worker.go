// ABOUTME: Managed worker goroutine for engine I/O loops
// ABOUTME: Pins the loop to an OS thread and joins it once on Stop
package backend

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// threadPlan is the resolved scheduling for one worker thread
type threadPlan struct {
	nice         *int
	niceRequired bool
	affinity     []int
}

// planFor resolves cfg into a plan. With no explicit priority and
// deriveDefault set, the worker runs one nice step above the caller.
func planFor(cfg ThreadConfig, deriveDefault bool, logger *slog.Logger) threadPlan {
	plan := threadPlan{affinity: cfg.Affinity}

	if cfg.Priority != nil {
		nice := *cfg.Priority
		plan.nice = &nice
		plan.niceRequired = true
		return plan
	}
	if !deriveDefault {
		return plan
	}

	caller, err := callerNice()
	if err != nil {
		logger.Debug("cannot read caller priority, keeping default", "err", err)
		return plan
	}
	nice := caller - 1
	plan.nice = &nice
	return plan
}

// worker runs one I/O loop on a dedicated OS thread. killNow is polled by
// the loop once per cycle and set exactly once by the first stop.
type worker struct {
	logger  *slog.Logger
	killNow atomic.Bool

	mu    sync.Mutex
	group *errgroup.Group
}

func newWorker(logger *slog.Logger) *worker {
	return &worker{logger: logger}
}

// cancelled reports whether stop has been requested
func (w *worker) cancelled() bool {
	return w.killNow.Load()
}

func (w *worker) running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.group != nil
}

// start launches loop on a new thread after applying plan. Scheduling
// errors for explicit settings are returned before the loop runs.
func (w *worker) start(plan threadPlan, loop func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.group != nil {
		return fmt.Errorf("%w: worker already running", ErrThreadStartFailed)
	}
	w.killNow.Store(false)

	ready := make(chan error, 1)
	g := new(errgroup.Group)
	g.Go(func() error {
		runtime.LockOSThread()
		modified, err := w.applyPlan(plan)
		if !modified {
			// A thread with changed scheduling is not handed back to the
			// runtime; exiting while locked terminates it.
			defer runtime.UnlockOSThread()
		}

		ready <- err
		if err != nil {
			return nil
		}
		return loop()
	})

	if err := <-ready; err != nil {
		_ = g.Wait()
		return fmt.Errorf("%w: %w", ErrThreadStartFailed, err)
	}

	w.group = g
	return nil
}

// applyPlan runs on the locked worker thread. modified reports whether the
// thread's scheduling was changed, even partially.
func (w *worker) applyPlan(plan threadPlan) (modified bool, err error) {
	if plan.nice != nil {
		if err := setThreadNice(*plan.nice); err != nil {
			if plan.niceRequired {
				return false, fmt.Errorf("set priority %d: %w", *plan.nice, err)
			}
			w.logger.Debug("could not raise worker priority", "nice", *plan.nice, "err", err)
		} else {
			modified = true
		}
	}

	if len(plan.affinity) > 0 {
		if err := setThreadAffinity(plan.affinity); err != nil {
			return modified, fmt.Errorf("set affinity %v: %w", plan.affinity, err)
		}
		modified = true
	}

	return modified, nil
}

// stop sets the cancellation flag. The first caller joins the worker;
// later callers return immediately.
func (w *worker) stop() {
	// Swap under mu so a concurrent start cannot clear the flag before the join
	w.mu.Lock()
	if w.killNow.Swap(true) {
		w.mu.Unlock()
		return
	}
	g := w.group
	w.group = nil
	w.mu.Unlock()

	if g == nil {
		return
	}
	if err := g.Wait(); err != nil {
		w.logger.Warn("worker loop ended with error", "err", err)
	}
}
