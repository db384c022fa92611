package simulation

// DurationStats summarizes the distribution of simulated total durations, in
// days.
type DurationStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	P50    float64 `json:"p50"`
	P80    float64 `json:"p80"`
	P90    float64 `json:"p90"`
}

// CompletionDate is the projected calendar completion for one requested
// confidence level.
type CompletionDate struct {
	Level int     `json:"level"`
	Days  float64 `json:"days"`
	Date  string  `json:"date"`
}

// HistogramBin is one bucket of the total-duration histogram.
type HistogramBin struct {
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
	Count             int     `json:"count"`
	CumulativePercent float64 `json:"cumulativePercent"`
}

// SensitivityEntry ranks how strongly one task's duration uncertainty drives
// the total project duration (Spearman rank correlation).
type SensitivityEntry struct {
	TaskID                 string  `json:"taskId"`
	TaskName               string  `json:"taskName"`
	CorrelationCoefficient float64 `json:"correlationCoefficient"`
	Rank                   int     `json:"rank"`
}

// CriticalityEntry is the fraction of iterations in which a task sat on the
// critical path.
type CriticalityEntry struct {
	TaskID             string  `json:"taskId"`
	TaskName           string  `json:"taskName"`
	CriticalityPercent float64 `json:"criticalityPercent"`
}

// CostForecast scales percentile durations into cost figures against the
// deterministic baseline and the allocated budget. All zero when no budget is
// known.
type CostForecast struct {
	P50          float64 `json:"p50"`
	P80          float64 `json:"p80"`
	P90          float64 `json:"p90"`
	BaselineDays float64 `json:"baselineDays"`
	Budget       float64 `json:"budget"`
}

// Result is the complete outcome of one simulation run. It is never mutated
// after being returned.
type Result struct {
	ScheduleID       string             `json:"scheduleId"`
	Model            string             `json:"uncertaintyModel"`
	Iterations       int                `json:"iterations"`
	DurationStats    DurationStats      `json:"durationStats"`
	CompletionDates  []CompletionDate   `json:"completionDates"`
	Histogram        []HistogramBin     `json:"histogram"`
	Sensitivity      []SensitivityEntry `json:"sensitivity"`
	CriticalityIndex []CriticalityEntry `json:"criticalityIndex"`
	CostForecast     CostForecast       `json:"costForecast"`
	// CurrentCriticalPath is the deterministic critical path computed from
	// most-likely durations, informational only.
	CurrentCriticalPath []string `json:"currentCriticalPath,omitempty"`
}
