// Package engine generates mock schedule fixtures for demos and manual
// testing of the simulation server.
package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"schedrisk-mcp/internal/schedule"
)

// GeneratorConfig controls mock schedule generation.
type GeneratorConfig struct {
	Scenario string // chain, parallel, cyclic, random
	Count    int    // task count for the random scenario
	Seed     int64
	Now      time.Time
}

var priorities = []schedule.Priority{
	schedule.PriorityLow,
	schedule.PriorityMedium,
	schedule.PriorityHigh,
	schedule.PriorityUrgent,
}

// Generate builds one mock schedule with its tasks and a budget figure.
func Generate(cfg GeneratorConfig) (schedule.Schedule, []schedule.Task, float64) {
	sched := schedule.Schedule{
		ID:        fmt.Sprintf("mock-%s", cfg.Scenario),
		ProjectID: fmt.Sprintf("proj-%s", cfg.Scenario),
		Name:      fmt.Sprintf("Mock %s schedule", cfg.Scenario),
		StartDate: cfg.Now.Truncate(24 * time.Hour),
	}

	var tasks []schedule.Task
	switch cfg.Scenario {
	case "parallel":
		tasks = parallelTasks()
	case "cyclic":
		tasks = cyclicTasks()
	case "random":
		tasks = randomTasks(cfg)
	default: // chain
		tasks = chainTasks()
	}

	return sched, tasks, 120000
}

// chainTasks is the canonical A(10) -> B(20) -> C(5) linear chain.
func chainTasks() []schedule.Task {
	return []schedule.Task{
		{ID: "a", Name: "Design", EstimateDays: 10, Priority: schedule.PriorityMedium},
		{ID: "b", Name: "Build", EstimateDays: 20, Priority: schedule.PriorityMedium, PredecessorID: "a"},
		{ID: "c", Name: "Ship", EstimateDays: 5, Priority: schedule.PriorityMedium, PredecessorID: "b"},
	}
}

// parallelTasks fans out from a root and re-joins at the end.
func parallelTasks() []schedule.Task {
	return []schedule.Task{
		{ID: "kickoff", Name: "Kickoff", EstimateDays: 2, Priority: schedule.PriorityHigh},
		{ID: "backend", Name: "Backend", EstimateDays: 15, Priority: schedule.PriorityHigh, PredecessorID: "kickoff"},
		{ID: "frontend", Name: "Frontend", EstimateDays: 12, Priority: schedule.PriorityMedium, PredecessorID: "kickoff"},
		{ID: "infra", Name: "Infrastructure", EstimateDays: 8, Priority: schedule.PriorityLow, PredecessorID: "kickoff"},
		{ID: "launch", Name: "Launch", EstimateDays: 3, Priority: schedule.PriorityUrgent, PredecessorID: "backend"},
	}
}

// cyclicTasks deliberately contains a reference cycle to exercise the
// simulator's fallback ordering.
func cyclicTasks() []schedule.Task {
	return []schedule.Task{
		{ID: "x", Name: "Spec", EstimateDays: 4, Priority: schedule.PriorityMedium, PredecessorID: "z"},
		{ID: "y", Name: "Implement", EstimateDays: 9, Priority: schedule.PriorityMedium, PredecessorID: "x"},
		{ID: "z", Name: "Review", EstimateDays: 3, Priority: schedule.PriorityMedium, PredecessorID: "y"},
		{ID: "docs", Name: "Documentation", EstimateDays: 5, Priority: schedule.PriorityLow},
	}
}

func randomTasks(cfg GeneratorConfig) []schedule.Task {
	count := cfg.Count
	if count < 2 {
		count = 20
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	tasks := make([]schedule.Task, count)
	for i := range tasks {
		tasks[i] = schedule.Task{
			ID:           uuid.NewString(),
			Name:         fmt.Sprintf("Task %d", i+1),
			EstimateDays: float64(1 + rng.Intn(30)),
			Priority:     priorities[rng.Intn(len(priorities))],
		}
		// Link roughly two thirds of the tasks to an earlier one, which keeps
		// the graph acyclic.
		if i > 0 && rng.Float64() < 0.66 {
			tasks[i].PredecessorID = tasks[rng.Intn(i)].ID
		}
	}
	return tasks
}

// Save persists the generated schedule and its budget under dir.
func Save(dir string, sched schedule.Schedule, tasks []schedule.Task, budget float64) error {
	store := schedule.NewStore()
	store.Put(sched, tasks)
	store.SetBudget(sched.ProjectID, budget)

	if err := store.Save(dir, sched.ID); err != nil {
		return err
	}
	return store.SaveBudgets(dir)
}
