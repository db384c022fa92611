// Package cpm runs deterministic critical path method analysis over a
// schedule using each task's most-likely duration. The simulation engine uses
// it to seed the informational "currently critical" task set and the baseline
// duration for cost scaling.
package cpm

import (
	"errors"
	"math"

	"schedrisk-mcp/internal/schedule"
)

// ErrNoTasks is returned when the schedule is empty.
var ErrNoTasks = errors.New("no tasks to analyze")

// TaskSchedule holds the CPM values for a single task, in days.
type TaskSchedule struct {
	TaskID   string  `json:"taskId"`
	ES       float64 `json:"earliestStart"`
	EF       float64 `json:"earliestFinish"`
	LS       float64 `json:"latestStart"`
	LF       float64 `json:"latestFinish"`
	Float    float64 `json:"totalFloat"`
	Critical bool    `json:"critical"`
}

// Result is the outcome of one deterministic analysis.
type Result struct {
	TotalDays    float64                  `json:"totalDays"`
	Order        []string                 `json:"topologicalOrder"`
	Tasks        map[string]*TaskSchedule `json:"tasks"`
	CriticalPath []string                 `json:"criticalPath"`
	Cyclic       bool                     `json:"cyclic,omitempty"`
}

// Analyze performs a forward/backward pass using most-likely durations. A
// dependency cycle does not fail the analysis: the unsortable tasks are
// appended in their declared order, matching the simulator's fallback.
func Analyze(tasks []schedule.Task) (*Result, error) {
	n := len(tasks)
	if n == 0 {
		return nil, ErrNoTasks
	}

	index := make(map[string]int, n)
	for i, t := range tasks {
		index[t.ID] = i
	}

	pred := make([]int, n)
	succ := make([][]int, n)
	inDegree := make([]int, n)
	for i, t := range tasks {
		pred[i] = -1
		if t.PredecessorID == "" {
			continue
		}
		p, ok := index[t.PredecessorID]
		if !ok || p == i {
			continue
		}
		pred[i] = p
		succ[p] = append(succ[p], i)
		inDegree[i]++
	}

	// Kahn's algorithm, seeded in declared order for determinism.
	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]int, 0, n)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)
		for _, s := range succ[node] {
			inDegree[s]--
			if inDegree[s] == 0 {
				queue = append(queue, s)
			}
		}
	}

	cyclic := len(order) != n
	if cyclic {
		seen := make([]bool, n)
		for _, i := range order {
			seen[i] = true
		}
		for i := 0; i < n; i++ {
			if !seen[i] {
				order = append(order, i)
			}
		}
	}

	durations := make([]float64, n)
	for i, t := range tasks {
		durations[i] = mostLikelyDuration(t)
	}

	es := make([]float64, n)
	ef := make([]float64, n)
	ls := make([]float64, n)
	lf := make([]float64, n)

	// Forward pass
	for _, i := range order {
		start := 0.0
		if p := pred[i]; p >= 0 {
			start = ef[p]
		}
		es[i] = start
		ef[i] = start + durations[i]
	}

	total := 0.0
	for i := range ef {
		if ef[i] > total {
			total = ef[i]
		}
	}

	// Backward pass
	for k := len(order) - 1; k >= 0; k-- {
		i := order[k]
		finish := total
		for _, s := range succ[i] {
			if ls[s] < finish {
				finish = ls[s]
			}
		}
		lf[i] = finish
		ls[i] = finish - durations[i]
	}

	result := &Result{
		TotalDays: total,
		Tasks:     make(map[string]*TaskSchedule, n),
		Cyclic:    cyclic,
	}

	for _, i := range order {
		t := tasks[i]
		slack := ls[i] - es[i]
		ts := &TaskSchedule{
			TaskID:   t.ID,
			ES:       es[i],
			EF:       ef[i],
			LS:       ls[i],
			LF:       lf[i],
			Float:    slack,
			Critical: math.Abs(slack) < 1e-9,
		}
		result.Tasks[t.ID] = ts
		result.Order = append(result.Order, t.ID)
		if ts.Critical {
			result.CriticalPath = append(result.CriticalPath, t.ID)
		}
	}

	return result, nil
}

// mostLikelyDuration mirrors the point-estimate rule of the distribution
// builder: declared estimate, else the floored day difference of the planned
// window, else 1 day.
func mostLikelyDuration(t schedule.Task) float64 {
	if t.EstimateDays > 0 {
		return t.EstimateDays
	}
	if t.StartDate != nil && t.EndDate != nil {
		days := math.Floor(t.EndDate.Sub(*t.StartDate).Hours() / 24)
		if days >= 1 {
			return days
		}
	}
	return 1
}

// Planner adapts Analyze to the simulation engine's BaselinePlanner
// interface.
type Planner struct{}

// Plan returns the deterministic total duration and critical task IDs.
func (Planner) Plan(tasks []schedule.Task) (float64, []string, error) {
	res, err := Analyze(tasks)
	if err != nil {
		return 0, nil, err
	}
	return res.TotalDays, res.CriticalPath, nil
}
