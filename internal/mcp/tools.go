package mcp

import (
	"github.com/google/jsonschema-go/jsonschema"

	"schedrisk-mcp/internal/simulation"
)

// toolDescriptor pairs a tool with its JSON Schema input contract.
type toolDescriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

func (s *Server) listTools() interface{} {
	scheduleIDProp := &jsonschema.Schema{
		Type:        "string",
		Description: "ID of the schedule to analyze",
	}

	return map[string]interface{}{
		"tools": []toolDescriptor{
			{
				Name: "run_simulation",
				Description: "Run a Monte Carlo schedule risk simulation to quantify completion-date and cost uncertainty. " +
					"Samples each task's duration from a PERT or triangular distribution, walks the dependency network per iteration, " +
					"and returns duration statistics, completion-date percentiles, a histogram, a sensitivity ranking, a criticality index, and a cost forecast. " +
					"Fails (not partial) when the schedule does not exist, has no tasks, or the configuration is out of bounds.",
				InputSchema: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"schedule_id": scheduleIDProp,
						"iterations": {
							Type:        "integer",
							Description: "Number of iterations (100-100000, default 10000)",
							Minimum:     fptr(simulation.MinIterations),
							Maximum:     fptr(simulation.MaxIterations),
						},
						"confidence_levels": {
							Type:        "array",
							Description: "Requested confidence levels as percentiles in [1,99] (default [50,80,90], at most 10 values)",
							Items: &jsonschema.Schema{
								Type:    "integer",
								Minimum: fptr(1),
								Maximum: fptr(99),
							},
						},
						"uncertainty_model": {
							Type:        "string",
							Description: "Duration uncertainty model (default pert)",
							Enum:        []any{simulation.ModelPERT, simulation.ModelTriangular},
						},
					},
					Required: []string{"schedule_id"},
				},
			},
			{
				Name:        "get_schedule",
				Description: "Get a schedule's metadata and task list, including estimates, priorities and predecessor references.",
				InputSchema: &jsonschema.Schema{
					Type:       "object",
					Properties: map[string]*jsonschema.Schema{"schedule_id": scheduleIDProp},
					Required:   []string{"schedule_id"},
				},
			},
			{
				Name:        "list_schedules",
				Description: "List all schedules known to the server.",
				InputSchema: &jsonschema.Schema{
					Type:       "object",
					Properties: map[string]*jsonschema.Schema{},
				},
			},
			{
				Name: "get_critical_path",
				Description: "Run a deterministic critical path analysis using most-likely durations. " +
					"Returns per-task earliest/latest start and finish, total float, and the current critical path. " +
					"This is the point-estimate view; use run_simulation for the probabilistic one.",
				InputSchema: &jsonschema.Schema{
					Type:       "object",
					Properties: map[string]*jsonschema.Schema{"schedule_id": scheduleIDProp},
					Required:   []string{"schedule_id"},
				},
			},
		},
	}
}

func fptr(v float64) *float64 {
	return &v
}
