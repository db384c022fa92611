package simulation

import (
	"testing"

	"schedrisk-mcp/internal/schedule"
)

func chainNetworkTasks() []schedule.Task {
	return []schedule.Task{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B", PredecessorID: "a"},
		{ID: "c", Name: "C", PredecessorID: "b"},
	}
}

func TestNetwork_LinearChain(t *testing.T) {
	nw := newNetwork(chainNetworkTasks())
	buf := newPassBuffers(3)

	total := nw.simulate([]float64{10, 20, 5}, buf)
	if total != 35 {
		t.Errorf("Expected total duration 35, got %f", total)
	}

	// Every task on a linear chain is critical
	for i, crit := range buf.critical {
		if !crit {
			t.Errorf("Expected task %d to be critical", i)
		}
	}

	if buf.es[1] != 10 || buf.ef[1] != 30 {
		t.Errorf("Expected B scheduled at [10,30], got [%f,%f]", buf.es[1], buf.ef[1])
	}
}

func TestNetwork_ParallelBranch(t *testing.T) {
	tasks := []schedule.Task{
		{ID: "root"},
		{ID: "long", PredecessorID: "root"},
		{ID: "short", PredecessorID: "root"},
	}
	nw := newNetwork(tasks)
	buf := newPassBuffers(3)

	total := nw.simulate([]float64{2, 15, 4}, buf)
	if total != 17 {
		t.Errorf("Expected total 17, got %f", total)
	}

	if !buf.critical[0] || !buf.critical[1] {
		t.Errorf("Expected root and long branch to be critical")
	}
	if buf.critical[2] {
		t.Errorf("Expected short branch to have float, got critical")
	}

	// Terminal tasks float to the project end
	if buf.lf[2] != 17 {
		t.Errorf("Expected short branch latest finish 17, got %f", buf.lf[2])
	}
}

func TestNetwork_DanglingPredecessorIgnored(t *testing.T) {
	tasks := []schedule.Task{
		{ID: "a", PredecessorID: "ghost"},
		{ID: "b", PredecessorID: "a"},
	}
	nw := newNetwork(tasks)
	buf := newPassBuffers(2)

	total := nw.simulate([]float64{3, 4}, buf)
	if total != 7 {
		t.Errorf("Expected total 7 with dangling predecessor ignored, got %f", total)
	}
	if nw.cyclic {
		t.Errorf("Dangling reference must not be flagged as a cycle")
	}
}

func TestNetwork_CycleFallback(t *testing.T) {
	tasks := []schedule.Task{
		{ID: "x", PredecessorID: "z"},
		{ID: "y", PredecessorID: "x"},
		{ID: "z", PredecessorID: "y"},
		{ID: "free"},
	}
	nw := newNetwork(tasks)

	if !nw.cyclic {
		t.Fatalf("Expected cycle to be detected")
	}
	if len(nw.order) != len(tasks) {
		t.Fatalf("Expected every task in the order despite the cycle, got %d of %d", len(nw.order), len(tasks))
	}

	// The pass must terminate and produce a finite total
	buf := newPassBuffers(4)
	total := nw.simulate([]float64{4, 9, 3, 5}, buf)
	if total <= 0 {
		t.Errorf("Expected positive total for cyclic schedule, got %f", total)
	}
}

func TestNetwork_CycleFallbackReusedBuffer(t *testing.T) {
	// Fallback-ordered tasks read predecessors that sit later in the order;
	// a reused buffer must not carry one iteration's pass into the next.
	tasks := []schedule.Task{
		{ID: "x", PredecessorID: "z"},
		{ID: "y", PredecessorID: "x"},
		{ID: "z", PredecessorID: "y"},
		{ID: "free"},
	}
	nw := newNetwork(tasks)
	durations := []float64{4, 9, 3, 5}

	buf := newPassBuffers(4)
	first := nw.simulate(durations, buf)
	if first != 16 {
		t.Fatalf("Expected total 16 with unvisited predecessors starting at 0, got %f", first)
	}
	for call := 0; call < 3; call++ {
		if total := nw.simulate(durations, buf); total != first {
			t.Fatalf("Reused buffer changed the total on call %d: %f vs %f", call+2, total, first)
		}
	}
}

func TestNetwork_Deterministic(t *testing.T) {
	nw := newNetwork(chainNetworkTasks())
	durations := []float64{1.5, 2.25, 3.75}

	bufA := newPassBuffers(3)
	bufB := newPassBuffers(3)

	if a, b := nw.simulate(durations, bufA), nw.simulate(durations, bufB); a != b {
		t.Errorf("Same inputs produced different totals: %f vs %f", a, b)
	}
	for i := range bufA.critical {
		if bufA.critical[i] != bufB.critical[i] {
			t.Errorf("Same inputs produced different criticality for task %d", i)
		}
	}
}

func TestNetwork_SelfReferenceIgnored(t *testing.T) {
	tasks := []schedule.Task{{ID: "solo", PredecessorID: "solo"}}
	nw := newNetwork(tasks)

	buf := newPassBuffers(1)
	if total := nw.simulate([]float64{6}, buf); total != 6 {
		t.Errorf("Expected self-reference to be ignored, got total %f", total)
	}
}
