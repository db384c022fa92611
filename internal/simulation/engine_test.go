package simulation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"schedrisk-mcp/internal/schedule"
)

type fakeRepo struct {
	sched *schedule.Schedule
	tasks []schedule.Task
}

func (f *fakeRepo) FindScheduleByID(id string) (*schedule.Schedule, error) {
	if f.sched == nil || f.sched.ID != id {
		return nil, fmt.Errorf("schedule %q: %w", id, schedule.ErrNotFound)
	}
	return f.sched, nil
}

func (f *fakeRepo) FindTasksByScheduleID(id string) ([]schedule.Task, error) {
	if f.sched == nil || f.sched.ID != id {
		return nil, fmt.Errorf("schedule %q: %w", id, schedule.ErrNotFound)
	}
	return f.tasks, nil
}

type fakeBudget struct {
	amount float64
	err    error
}

func (f *fakeBudget) FindAllocatedBudget(projectID string) (float64, error) {
	return f.amount, f.err
}

type fakePlanner struct {
	days     float64
	critical []string
}

func (f *fakePlanner) Plan(tasks []schedule.Task) (float64, []string, error) {
	return f.days, f.critical, nil
}

func testStart() time.Time {
	return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
}

func chainRepo() *fakeRepo {
	return &fakeRepo{
		sched: &schedule.Schedule{ID: "s1", ProjectID: "p1", StartDate: testStart()},
		tasks: []schedule.Task{
			{ID: "a", Name: "A", EstimateDays: 10, Priority: schedule.PriorityMedium},
			{ID: "b", Name: "B", EstimateDays: 20, Priority: schedule.PriorityMedium, PredecessorID: "a"},
			{ID: "c", Name: "C", EstimateDays: 5, Priority: schedule.PriorityMedium, PredecessorID: "b"},
		},
	}
}

func seededEngine(repo *fakeRepo) *Engine {
	e := NewEngine(repo, nil, nil)
	e.SetSeed(42)
	return e
}

func assertResultInvariants(t *testing.T, res *Result) {
	t.Helper()

	s := res.DurationStats
	if !(s.Min <= s.P50 && s.P50 <= s.P80 && s.P80 <= s.P90 && s.P90 <= s.Max) {
		t.Errorf("Percentile ordering violated: min %f p50 %f p80 %f p90 %f max %f", s.Min, s.P50, s.P80, s.P90, s.Max)
	}

	total := 0
	for i, b := range res.Histogram {
		total += b.Count
		if i > 0 && b.Min < res.Histogram[i-1].Min {
			t.Errorf("Histogram bin %d min boundary decreased", i)
		}
	}
	if total != res.Iterations {
		t.Errorf("Histogram counts sum to %d, expected %d", total, res.Iterations)
	}
	if last := res.Histogram[len(res.Histogram)-1]; last.CumulativePercent != 100 {
		t.Errorf("Expected final cumulative percent 100, got %f", last.CumulativePercent)
	}

	for i, e := range res.Sensitivity {
		if e.Rank != i+1 {
			t.Errorf("Sensitivity ranks not contiguous at %d: %d", i, e.Rank)
		}
		if e.CorrelationCoefficient < -1 || e.CorrelationCoefficient > 1 {
			t.Errorf("Correlation out of [-1,1]: %f", e.CorrelationCoefficient)
		}
	}
	for _, e := range res.CriticalityIndex {
		if e.CriticalityPercent < 0 || e.CriticalityPercent > 100 {
			t.Errorf("Criticality percent out of [0,100]: %f", e.CriticalityPercent)
		}
	}
}

func TestRun_SingleTask(t *testing.T) {
	repo := &fakeRepo{
		sched: &schedule.Schedule{ID: "s1", ProjectID: "p1", StartDate: testStart()},
		tasks: []schedule.Task{{ID: "only", Name: "Only", EstimateDays: 10, Priority: schedule.PriorityMedium}},
	}
	engine := seededEngine(repo)

	res, err := engine.Run(context.Background(), "s1", Config{Iterations: 2000})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(res.Sensitivity) != 1 || len(res.CriticalityIndex) != 1 {
		t.Fatalf("Expected single-entry sensitivity and criticality, got %d/%d", len(res.Sensitivity), len(res.CriticalityIndex))
	}
	if res.CriticalityIndex[0].CriticalityPercent != 100 {
		t.Errorf("A single task is always critical, got %f%%", res.CriticalityIndex[0].CriticalityPercent)
	}

	// Mean within the PERT spread for a 10-day medium task (7.5 .. 17.5)
	if res.DurationStats.Mean < 7.5 || res.DurationStats.Mean > 17.5 {
		t.Errorf("Expected mean within the PERT spread, got %f", res.DurationStats.Mean)
	}

	assertResultInvariants(t, res)
}

func TestRun_ThreeTaskChain(t *testing.T) {
	engine := seededEngine(chainRepo())

	res, err := engine.Run(context.Background(), "s1", Config{Iterations: 2000})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.DurationStats.Mean < 25 || res.DurationStats.Mean > 65 {
		t.Errorf("Expected chain mean in [25,65], got %f", res.DurationStats.Mean)
	}

	// B carries the most duration uncertainty and should dominate the ranking
	var bRank int
	for _, e := range res.Sensitivity {
		if e.TaskID == "b" {
			bRank = e.Rank
		}
	}
	if bRank == 0 || bRank > 2 {
		t.Errorf("Expected task B at or near the top of the sensitivity list, got rank %d", bRank)
	}

	// Every task on a linear chain is always critical
	for _, e := range res.CriticalityIndex {
		if e.CriticalityPercent != 100 {
			t.Errorf("Expected chain task %s at 100%% criticality, got %f", e.TaskID, e.CriticalityPercent)
		}
	}

	assertResultInvariants(t, res)
}

func TestRun_TriangularModel(t *testing.T) {
	engine := seededEngine(chainRepo())

	res, err := engine.Run(context.Background(), "s1", Config{Iterations: 2000, Model: ModelTriangular})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Model != ModelTriangular {
		t.Errorf("Expected triangular model echoed, got %s", res.Model)
	}
	assertResultInvariants(t, res)
}

func TestRun_PriorityWidensSpread(t *testing.T) {
	runWith := func(p schedule.Priority) float64 {
		repo := &fakeRepo{
			sched: &schedule.Schedule{ID: "s1", ProjectID: "p1", StartDate: testStart()},
			tasks: []schedule.Task{{ID: "t", EstimateDays: 10, Priority: p}},
		}
		engine := seededEngine(repo)
		res, err := engine.Run(context.Background(), "s1", Config{Iterations: 5000})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return res.DurationStats.StdDev
	}

	low := runWith(schedule.PriorityLow)
	urgent := runWith(schedule.PriorityUrgent)

	if urgent < low {
		t.Errorf("Raising priority must not decrease the total-duration stddev: low %f, urgent %f", low, urgent)
	}
}

func TestRun_ZeroTasks(t *testing.T) {
	repo := &fakeRepo{sched: &schedule.Schedule{ID: "s1", ProjectID: "p1", StartDate: testStart()}}
	engine := seededEngine(repo)

	_, err := engine.Run(context.Background(), "s1", Config{})
	if !errors.Is(err, ErrNoTasks) {
		t.Errorf("Expected ErrNoTasks, got %v", err)
	}
}

func TestRun_ScheduleNotFound(t *testing.T) {
	engine := seededEngine(&fakeRepo{})

	_, err := engine.Run(context.Background(), "missing", Config{})
	if !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("Expected ErrScheduleNotFound, got %v", err)
	}
}

func TestRun_ConfigValidation(t *testing.T) {
	engine := seededEngine(chainRepo())

	cases := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"iterations too low", Config{Iterations: 50}, "iterations"},
		{"iterations too high", Config{Iterations: 200000}, "iterations"},
		{"too many levels", Config{ConfidenceLevels: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}}, "confidenceLevels"},
		{"level out of range", Config{ConfidenceLevels: []int{0}}, "confidenceLevels"},
		{"level too high", Config{ConfidenceLevels: []int{100}}, "confidenceLevels"},
		{"unknown model", Config{Model: "weibull"}, "uncertaintyModel"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Run(context.Background(), "s1", tc.cfg)

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Errorf("Expected offending field %q reported, got %v", tc.field, verr.Fields)
			}
		})
	}
}

func TestRun_DefaultsApplied(t *testing.T) {
	engine := seededEngine(chainRepo())
	engine.SetWorkers(2)

	res, err := engine.Run(context.Background(), "s1", Config{Iterations: 200})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Model != ModelPERT {
		t.Errorf("Expected default model pert, got %s", res.Model)
	}
	if len(res.CompletionDates) != 3 {
		t.Fatalf("Expected default 50/80/90 completion dates, got %d", len(res.CompletionDates))
	}
	for i, want := range []int{50, 80, 90} {
		if res.CompletionDates[i].Level != want {
			t.Errorf("Expected level %d at position %d, got %d", want, i, res.CompletionDates[i].Level)
		}
	}
}

func TestRun_CompletionDates(t *testing.T) {
	engine := seededEngine(chainRepo())

	res, err := engine.Run(context.Background(), "s1", Config{Iterations: 500, ConfidenceLevels: []int{10, 90}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(res.CompletionDates) != 2 {
		t.Fatalf("Expected 2 completion dates, got %d", len(res.CompletionDates))
	}

	prev := time.Time{}
	for _, cd := range res.CompletionDates {
		parsed, err := time.Parse("2006-01-02", cd.Date)
		if err != nil {
			t.Fatalf("Completion date %q is not a calendar date: %v", cd.Date, err)
		}
		if parsed.Before(testStart()) {
			t.Errorf("Completion date %s precedes the schedule start", cd.Date)
		}
		if parsed.Before(prev) {
			t.Errorf("Completion dates not monotonic in confidence level")
		}
		prev = parsed
	}
}

func TestRun_CostForecast(t *testing.T) {
	repo := chainRepo()
	engine := NewEngine(repo, &fakeBudget{amount: 70000}, &fakePlanner{days: 35, critical: []string{"a", "b", "c"}})
	engine.SetSeed(42)

	res, err := engine.Run(context.Background(), "s1", Config{Iterations: 1000})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.CostForecast.Budget != 70000 || res.CostForecast.BaselineDays != 35 {
		t.Errorf("Expected budget/baseline echoed, got %+v", res.CostForecast)
	}
	if res.CostForecast.P50 <= 0 {
		t.Errorf("Expected a positive p50 cost, got %f", res.CostForecast.P50)
	}
	if !(res.CostForecast.P50 <= res.CostForecast.P80 && res.CostForecast.P80 <= res.CostForecast.P90) {
		t.Errorf("Cost percentiles not ordered: %+v", res.CostForecast)
	}
	if len(res.CurrentCriticalPath) != 3 {
		t.Errorf("Expected deterministic critical path passed through, got %v", res.CurrentCriticalPath)
	}
}

func TestRun_MissingBudgetIsNotFatal(t *testing.T) {
	repo := chainRepo()
	engine := NewEngine(repo, &fakeBudget{err: errors.New("budget service down")}, nil)
	engine.SetSeed(42)

	res, err := engine.Run(context.Background(), "s1", Config{Iterations: 500})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.CostForecast.P50 != 0 || res.CostForecast.P90 != 0 {
		t.Errorf("Expected all-zero cost forecast without budget, got %+v", res.CostForecast)
	}
}

func TestRun_CyclicSchedule(t *testing.T) {
	repo := &fakeRepo{
		sched: &schedule.Schedule{ID: "s1", ProjectID: "p1", StartDate: testStart()},
		tasks: []schedule.Task{
			{ID: "x", EstimateDays: 4, PredecessorID: "z"},
			{ID: "y", EstimateDays: 9, PredecessorID: "x"},
			{ID: "z", EstimateDays: 3, PredecessorID: "y"},
		},
	}
	engine := seededEngine(repo)

	res, err := engine.Run(context.Background(), "s1", Config{Iterations: 500})
	if err != nil {
		t.Fatalf("Cyclic schedule must not fail: %v", err)
	}
	assertResultInvariants(t, res)

	// The fallback chains the cycle in declared order, so the mean must stay
	// near the sum of the most-likely estimates (16 days) instead of
	// compounding across iterations.
	if res.DurationStats.Mean < 10 || res.DurationStats.Mean > 30 {
		t.Errorf("Expected cyclic mean near the estimate sum, got %f", res.DurationStats.Mean)
	}
	if res.DurationStats.Max > 60 {
		t.Errorf("Expected bounded cyclic max, got %f", res.DurationStats.Max)
	}
}

func TestRun_Cancellation(t *testing.T) {
	engine := seededEngine(chainRepo())
	engine.SetWorkers(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx, "s1", Config{Iterations: 10000})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRun_ParallelMatchesInvariants(t *testing.T) {
	// Many workers over a small iteration count exercises the chunk split
	engine := seededEngine(chainRepo())
	engine.SetWorkers(7)

	res, err := engine.Run(context.Background(), "s1", Config{Iterations: 250})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	assertResultInvariants(t, res)
}
