package simulation

import (
	"math"

	"schedrisk-mcp/internal/schedule"
)

// floatTolerance marks a task as critical when its total float is this close
// to zero.
const floatTolerance = 1e-4

// network is the immutable dependency structure of a schedule, built once per
// run. Tasks are addressed by their index in the original task list so the
// per-iteration passes work on flat slices instead of maps.
type network struct {
	tasks  []schedule.Task
	index  map[string]int
	pred   []int   // predecessor index per task, -1 when none or dangling
	succ   [][]int // successor indices per task
	order  []int   // topological order (Kahn), cycle fallback appended
	cyclic bool
}

func newNetwork(tasks []schedule.Task) *network {
	n := len(tasks)
	nw := &network{
		tasks: tasks,
		index: make(map[string]int, n),
		pred:  make([]int, n),
		succ:  make([][]int, n),
	}

	for i, t := range tasks {
		nw.index[t.ID] = i
	}

	// Build the adjacency from the single-predecessor references. Dangling
	// references are ignored.
	inDegree := make([]int, n)
	for i, t := range tasks {
		nw.pred[i] = -1
		if t.PredecessorID == "" {
			continue
		}
		p, ok := nw.index[t.PredecessorID]
		if !ok || p == i {
			continue
		}
		nw.pred[i] = p
		nw.succ[p] = append(nw.succ[p], i)
		inDegree[i]++
	}

	// Kahn's algorithm. The queue is seeded in declared task order so the
	// result is deterministic.
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

		for _, succ := range nw.succ[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	// Cycle fallback: append unsorted tasks in their declared order instead
	// of failing. CPM values for the cyclic subset are approximate, but the
	// simulation always terminates and covers every task.
	if len(order) != n {
		nw.cyclic = true
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

	nw.order = order
	return nw
}

// passBuffers is per-worker scratch for the forward/backward pass, reused
// across iterations to keep the hot loop allocation-free.
type passBuffers struct {
	es, ef   []float64
	ls, lf   []float64
	critical []bool
}

func newPassBuffers(n int) *passBuffers {
	return &passBuffers{
		es:       make([]float64, n),
		ef:       make([]float64, n),
		ls:       make([]float64, n),
		lf:       make([]float64, n),
		critical: make([]bool, n),
	}
}

// simulate runs one deterministic CPM pass with the given sampled durations
// (indexed like tasks) and returns the total project duration. Critical flags
// for this iteration are left in buf.critical.
func (nw *network) simulate(durations []float64, buf *passBuffers) float64 {
	// With the cycle fallback a predecessor can sit later in nw.order and a
	// successor earlier in the reverse walk, so clear the carried values:
	// an unvisited predecessor contributes a start of 0 and an unvisited
	// successor imposes no finish constraint. Otherwise the reused buffers
	// would leak one iteration's pass into the next.
	if nw.cyclic {
		for i := range buf.ef {
			buf.ef[i] = 0
			buf.ls[i] = math.Inf(1)
		}
	}

	// Forward pass: earliest start is the predecessor's earliest finish.
	for _, i := range nw.order {
		es := 0.0
		if p := nw.pred[i]; p >= 0 {
			es = buf.ef[p]
		}
		buf.es[i] = es
		buf.ef[i] = es + durations[i]
	}

	total := 0.0
	for i := range buf.ef {
		if buf.ef[i] > total {
			total = buf.ef[i]
		}
	}

	// Backward pass in reverse topological order. Terminal tasks float to
	// the project end.
	for k := len(nw.order) - 1; k >= 0; k-- {
		i := nw.order[k]
		lf := total
		for _, succ := range nw.succ[i] {
			if buf.ls[succ] < lf {
				lf = buf.ls[succ]
			}
		}
		buf.lf[i] = lf
		buf.ls[i] = lf - durations[i]
	}

	for i := range buf.critical {
		slack := buf.ls[i] - buf.es[i]
		buf.critical[i] = slack < floatTolerance && slack > -floatTolerance
	}

	return total
}
