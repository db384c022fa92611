package schedule

import "time"

// Priority is the task's priority tier. It widens the pessimistic bound of the
// duration distribution: the more urgent a task, the more room we assume for
// it to overrun.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Task is a single entry in a project schedule. Durations are expressed in
// days. A task declares at most one predecessor; an empty PredecessorID means
// the task can start at project kickoff.
type Task struct {
	// ID uniquely identifies the task within its schedule.
	ID string `json:"id"`
	// Name is the human-readable task title.
	Name string `json:"name"`
	// EstimateDays is the declared point estimate. Zero means no estimate was
	// given and the duration is derived from the start/end dates instead.
	EstimateDays float64 `json:"estimateDays,omitempty"`
	// StartDate and EndDate are the planned calendar window. Only consulted
	// when EstimateDays is absent.
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	// Priority selects the pessimistic duration multiplier.
	Priority Priority `json:"priority,omitempty"`
	// PredecessorID references the single task that must finish before this
	// one starts. Dangling references are tolerated and treated as no
	// predecessor.
	PredecessorID string `json:"predecessorId,omitempty"`
}

// Schedule is the metadata of a project schedule. Its tasks are stored
// separately and retrieved via the store.
type Schedule struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Name      string    `json:"name"`
	// StartDate anchors simulated durations to calendar completion dates.
	StartDate time.Time `json:"startDate"`
}
