package mcp

import (
	"context"
	"fmt"

	"schedrisk-mcp/internal/cpm"
	"schedrisk-mcp/internal/simulation"
	"schedrisk-mcp/internal/visuals"
)

// simulationReport is the run_simulation tool payload: the engine result plus
// optional rendered charts.
type simulationReport struct {
	*simulation.Result
	Charts []string `json:"charts,omitempty"`
}

func (s *Server) handleRunSimulation(args map[string]interface{}) (interface{}, error) {
	scheduleID := asString(args["schedule_id"])
	if scheduleID == "" {
		return nil, fmt.Errorf("schedule_id is required")
	}

	cfg := simulation.Config{}
	if v, ok := args["iterations"].(float64); ok {
		cfg.Iterations = int(v)
	}
	if v, ok := args["uncertainty_model"].(string); ok {
		cfg.Model = v
	}
	if raw, ok := args["confidence_levels"].([]interface{}); ok {
		for _, lvl := range raw {
			if f, ok := lvl.(float64); ok {
				cfg.ConfidenceLevels = append(cfg.ConfidenceLevels, int(f))
			}
		}
	}

	result, err := s.engine.Run(context.Background(), scheduleID, cfg)
	if err != nil {
		return nil, err
	}

	report := simulationReport{Result: result}
	if s.cfg != nil && s.cfg.EnableMermaidCharts {
		report.Charts = append(report.Charts,
			visuals.GenerateHistogramChart(result.Histogram),
			visuals.GenerateCriticalityChart(result.CriticalityIndex),
		)
	}

	return report, nil
}

func (s *Server) handleGetSchedule(scheduleID string) (interface{}, error) {
	if scheduleID == "" {
		return nil, fmt.Errorf("schedule_id is required")
	}

	sched, err := s.store.FindScheduleByID(scheduleID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.FindTasksByScheduleID(scheduleID)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"schedule": sched,
		"tasks":    tasks,
	}, nil
}

func (s *Server) handleListSchedules() (interface{}, error) {
	return map[string]interface{}{
		"schedules": s.store.ListSchedules(),
	}, nil
}

func (s *Server) handleGetCriticalPath(scheduleID string) (interface{}, error) {
	if scheduleID == "" {
		return nil, fmt.Errorf("schedule_id is required")
	}

	tasks, err := s.store.FindTasksByScheduleID(scheduleID)
	if err != nil {
		return nil, err
	}

	res, err := cpm.Analyze(tasks)
	if err != nil {
		return nil, err
	}
	return res, nil
}
