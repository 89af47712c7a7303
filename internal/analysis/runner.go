package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/skylens/flightpulse/internal/domain"
	"github.com/skylens/flightpulse/internal/mining"
	"github.com/skylens/flightpulse/internal/pkg/logger"
)

// ErrAlreadyRunning is returned by Trigger while a mining pass is in
// flight. The caller reports it and does not start a second pass.
var ErrAlreadyRunning = errors.New("analysis run already in progress")

// FeatureSource loads the feature rows a mining pass operates on. The
// snapshot is taken once per run; rows written after the load are picked up
// by the next trigger.
type FeatureSource interface {
	ListFeatures(ctx context.Context) ([]domain.FeatureRecord, error)
}

// Options carries the mining thresholds for the runner.
type Options struct {
	Mining  mining.Config
	MinLift float64
	// Timeout bounds the storage snapshot load only; the CPU-bound mining
	// stages run to completion once data is in memory.
	LoadTimeout time.Duration
}

// Runner executes delay-rule mining passes off the request path. At most
// one pass runs at a time, enforced with an atomic flag rather than
// database locking; concurrent triggers are no-ops.
type Runner struct {
	features FeatureSource
	store    *RuleStore
	opts     Options

	inFlight int32

	mu  sync.RWMutex
	run domain.AnalysisRun

	// wg lets tests wait for the background pass to finish.
	wg sync.WaitGroup
}

// NewRunner wires a runner to its data source and rule store.
func NewRunner(features FeatureSource, store *RuleStore, opts Options) *Runner {
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = 2 * time.Minute
	}
	return &Runner{
		features: features,
		store:    store,
		opts:     opts,
		run:      domain.AnalysisRun{Status: domain.RunNotStarted},
	}
}

// Trigger starts a mining pass in the background and returns immediately.
// While a pass is in flight it returns ErrAlreadyRunning without starting
// a second one.
func (r *Runner) Trigger() error {
	if !atomic.CompareAndSwapInt32(&r.inFlight, 0, 1) {
		return ErrAlreadyRunning
	}

	now := time.Now().UTC()
	run := domain.AnalysisRun{
		ID:          uuid.New().String(),
		Status:      domain.RunRunning,
		TriggeredAt: &now,
	}
	r.setRun(run)
	logger.Info("analysis run started", "run_id", run.ID)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer atomic.StoreInt32(&r.inFlight, 0)
		r.execute(run)
	}()
	return nil
}

// Status returns a copy of the last (or current) run state.
func (r *Runner) Status() domain.AnalysisRun {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.run
}

// Wait blocks until any in-flight pass has finished. Test helper.
func (r *Runner) Wait() { r.wg.Wait() }

func (r *Runner) setRun(run domain.AnalysisRun) {
	r.mu.Lock()
	r.run = run
	r.mu.Unlock()
}

// execute performs one full pass: snapshot load, encode, mine, derive,
// filter, persist. Every failure mode, including a panic out of the
// mining stages, lands in the failed state with the prior persisted
// result untouched; nothing propagates to the host process.
func (r *Runner) execute(run domain.AnalysisRun) {
	defer func() {
		if rec := recover(); rec != nil {
			r.finish(run, 0, fmt.Errorf("mining panic: %v", rec))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.opts.LoadTimeout)
	records, err := r.features.ListFeatures(ctx)
	cancel()
	if err != nil {
		r.finish(run, 0, fmt.Errorf("load flight features: %w", err))
		return
	}

	txns, err := mining.Encode(records, domain.FeatureColumns)
	if err != nil {
		r.finish(run, 0, err)
		return
	}

	frequent := mining.MineFrequent(txns, r.opts.Mining)
	rules := mining.FilterDelayRules(mining.GenerateRules(frequent, r.opts.MinLift))

	if err := r.store.Replace(rules); err != nil {
		r.finish(run, 0, fmt.Errorf("persist delay rules: %w", err))
		return
	}
	r.finish(run, len(rules), nil)
}

func (r *Runner) finish(run domain.AnalysisRun, ruleCount int, err error) {
	now := time.Now().UTC()
	run.FinishedAt = &now
	if err != nil {
		run.Status = domain.RunFailed
		run.Error = err.Error()
		logger.Error("analysis run failed", "run_id", run.ID, "error", err)
	} else {
		run.Status = domain.RunSucceeded
		run.RuleCount = ruleCount
		logger.Info("analysis run succeeded", "run_id", run.ID, "rules", ruleCount)
	}
	r.setRun(run)
}
