package simulation

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"schedrisk-mcp/internal/schedule"
)

// Fatal engine errors. Both abort the run before any iteration state is
// allocated.
var (
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrNoTasks          = errors.New("schedule has no tasks")
)

// ScheduleRepository supplies the schedule metadata and its tasks.
type ScheduleRepository interface {
	FindScheduleByID(id string) (*schedule.Schedule, error)
	FindTasksByScheduleID(id string) ([]schedule.Task, error)
}

// BudgetProvider supplies the allocated budget for a project. Failures are
// tolerated: the cost forecast degrades to all-zero.
type BudgetProvider interface {
	FindAllocatedBudget(projectID string) (float64, error)
}

// BaselinePlanner supplies the deterministic critical-path duration used to
// scale costs, plus the currently critical task IDs. Optional; when absent or
// failing, the simulated p50 duration takes its place.
type BaselinePlanner interface {
	Plan(tasks []schedule.Task) (totalDays float64, criticalIDs []string, err error)
}

// Engine runs Monte Carlo schedule risk simulations.
type Engine struct {
	schedules ScheduleRepository
	budgets   BudgetProvider
	planner   BaselinePlanner
	seed      int64
	workers   int
}

// NewEngine wires the engine to its collaborators. budgets and planner may be
// nil.
func NewEngine(schedules ScheduleRepository, budgets BudgetProvider, planner BaselinePlanner) *Engine {
	return &Engine{
		schedules: schedules,
		budgets:   budgets,
		planner:   planner,
		seed:      time.Now().UnixNano(),
		workers:   runtime.NumCPU(),
	}
}

// SetSeed fixes the base random seed for reproducible runs.
func (e *Engine) SetSeed(seed int64) {
	e.seed = seed
}

// SetWorkers overrides the number of parallel iteration workers.
func (e *Engine) SetWorkers(n int) {
	if n > 0 {
		e.workers = n
	}
}

// Run executes one complete simulation for the schedule. It either returns a
// full Result or an error; no partial results.
func (e *Engine) Run(ctx context.Context, scheduleID string, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	sched, err := e.schedules.FindScheduleByID(scheduleID)
	if err != nil {
		return nil, fmt.Errorf("schedule %q: %w", scheduleID, ErrScheduleNotFound)
	}

	tasks, err := e.schedules.FindTasksByScheduleID(scheduleID)
	if err != nil {
		return nil, fmt.Errorf("tasks for schedule %q: %w", scheduleID, ErrScheduleNotFound)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("schedule %q: %w", scheduleID, ErrNoTasks)
	}

	dists := make([]TaskDistribution, len(tasks))
	for i, t := range tasks {
		dists[i] = BuildDistribution(t)
	}

	nw := newNetwork(tasks)
	if nw.cyclic {
		log.Warn().Str("schedule", scheduleID).Msg("Dependency cycle detected; remaining tasks appended in declared order")
	}

	acc, err := e.iterate(ctx, nw, dists, cfg)
	if err != nil {
		return nil, err
	}

	sorted := make([]float64, len(acc.totals))
	copy(sorted, acc.totals)
	sort.Float64s(sorted)

	stats := summarizeDurations(acc.totals, sorted)

	// Deterministic baseline for cost scaling; falls back to the simulated
	// p50 when no planner is wired or it fails.
	baseline := stats.P50
	var currentCritical []string
	if e.planner != nil {
		if planned, critical, perr := e.planner.Plan(tasks); perr == nil && planned > 0 {
			baseline = planned
			currentCritical = critical
		} else if perr != nil {
			log.Debug().Err(perr).Str("schedule", scheduleID).Msg("Baseline planner unavailable, using simulated p50")
		}
	}

	budget := 0.0
	if e.budgets != nil {
		if b, berr := e.budgets.FindAllocatedBudget(sched.ProjectID); berr == nil {
			budget = b
		} else {
			log.Debug().Err(berr).Str("project", sched.ProjectID).Msg("No allocated budget, cost forecast will be zero")
		}
	}

	result := &Result{
		ScheduleID:          scheduleID,
		Model:               cfg.Model,
		Iterations:          cfg.Iterations,
		DurationStats:       stats,
		CompletionDates:     completionDates(sched.StartDate, sorted, cfg.ConfidenceLevels),
		Histogram:           buildHistogram(sorted),
		Sensitivity:         sensitivityRanking(dists, acc.histories, acc.totals),
		CriticalityIndex:    criticalityIndex(dists, acc.criticalHits, cfg.Iterations),
		CostForecast:        forecastCost(stats, baseline, budget),
		CurrentCriticalPath: currentCritical,
	}

	log.Info().
		Str("schedule", scheduleID).
		Int("iterations", cfg.Iterations).
		Str("model", cfg.Model).
		Float64("p50", stats.P50).
		Float64("p90", stats.P90).
		Msg("Simulation complete")

	return result, nil
}

// accumulator holds the per-run iteration outputs. All arrays are pre-sized;
// workers write to index-disjoint slots.
type accumulator struct {
	totals       []float64   // one total duration per iteration
	histories    [][]float64 // per task: one sampled duration per iteration
	criticalHits []int       // per task: critical-path membership count
}

// iterate runs the Monte Carlo loop, split into contiguous chunks across
// workers. Each worker owns an independently seeded Sampler and its own pass
// buffers.
func (e *Engine) iterate(ctx context.Context, nw *network, dists []TaskDistribution, cfg Config) (*accumulator, error) {
	iterations := cfg.Iterations
	taskCount := len(dists)

	acc := &accumulator{
		totals:       make([]float64, iterations),
		histories:    make([][]float64, taskCount),
		criticalHits: make([]int, taskCount),
	}
	for t := range acc.histories {
		acc.histories[t] = make([]float64, iterations)
	}

	workers := e.workers
	if workers < 1 {
		workers = 1
	}
	if workers > iterations {
		workers = iterations
	}

	chunk := (iterations + workers - 1) / workers
	hitsByWorker := make([][]int, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > iterations {
			end = iterations
		}
		if start >= end {
			break
		}

		worker := w
		g.Go(func() error {
			smp := NewSampler(e.seed + int64(worker))
			buf := newPassBuffers(taskCount)
			durations := make([]float64, taskCount)
			hits := make([]int, taskCount)

			for i := start; i < end; i++ {
				// Cooperative cancellation without paying a channel read on
				// every iteration.
				if i&0xFF == 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}
				}

				for t, d := range dists {
					if cfg.Model == ModelTriangular {
						durations[t] = smp.Triangular(d.Optimistic, d.MostLikely, d.Pessimistic)
					} else {
						durations[t] = smp.PERT(d.Optimistic, d.MostLikely, d.Pessimistic)
					}
				}

				acc.totals[i] = nw.simulate(durations, buf)
				for t := range durations {
					acc.histories[t][i] = durations[t]
				}
				for t, crit := range buf.critical {
					if crit {
						hits[t]++
					}
				}
			}

			hitsByWorker[worker] = hits
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, hits := range hitsByWorker {
		for t, h := range hits {
			acc.criticalHits[t] += h
		}
	}
	return acc, nil
}
