package simulation

import (
	"math"

	"schedrisk-mcp/internal/schedule"
)

// TaskDistribution is the three-point (optimistic, most-likely, pessimistic)
// duration estimate derived from a task. All values are strictly positive and
// Optimistic <= MostLikely <= Pessimistic.
type TaskDistribution struct {
	TaskID      string  `json:"taskId"`
	TaskName    string  `json:"taskName"`
	Optimistic  float64 `json:"optimistic"`
	MostLikely  float64 `json:"mostLikely"`
	Pessimistic float64 `json:"pessimistic"`
}

// Pessimistic multipliers per priority tier. Higher-priority tasks get a
// wider overrun allowance.
const (
	pessimisticLow     = 1.5
	pessimisticMedium  = 1.75
	pessimisticHigh    = 2.0
	optimisticFraction = 0.75
)

// BuildDistribution converts a task into its duration distribution. It never
// fails: a task without an estimate or dates gets a 1-day most-likely value.
func BuildDistribution(t schedule.Task) TaskDistribution {
	ml := t.EstimateDays
	if ml <= 0 && t.StartDate != nil && t.EndDate != nil {
		days := math.Floor(t.EndDate.Sub(*t.StartDate).Hours() / 24)
		if days < 1 {
			days = 1
		}
		ml = days
	}
	if ml <= 0 {
		ml = 1
	}

	var multiplier float64
	switch t.Priority {
	case schedule.PriorityLow:
		multiplier = pessimisticLow
	case schedule.PriorityHigh, schedule.PriorityUrgent:
		multiplier = pessimisticHigh
	default:
		multiplier = pessimisticMedium
	}

	return TaskDistribution{
		TaskID:      t.ID,
		TaskName:    t.Name,
		Optimistic:  ml * optimisticFraction,
		MostLikely:  ml,
		Pessimistic: ml * multiplier,
	}
}
