package mcp

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"schedrisk-mcp/internal/cpm"
	"schedrisk-mcp/internal/schedule"
	"schedrisk-mcp/internal/simulation"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	store := schedule.NewStore()
	store.Put(schedule.Schedule{
		ID:        "s1",
		ProjectID: "p1",
		Name:      "Relaunch",
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}, []schedule.Task{
		{ID: "a", Name: "Design", EstimateDays: 10, Priority: schedule.PriorityMedium},
		{ID: "b", Name: "Build", EstimateDays: 20, Priority: schedule.PriorityMedium, PredecessorID: "a"},
	})
	store.SetBudget("p1", 60000)

	engine := simulation.NewEngine(store, store, cpm.Planner{})
	engine.SetSeed(42)

	return NewServer(nil, store, engine)
}

func call(t *testing.T, s *Server, name string, args map[string]interface{}) (interface{}, interface{}) {
	t.Helper()

	params, err := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		t.Fatalf("Failed to marshal params: %v", err)
	}
	return s.callTool(params)
}

func resultText(t *testing.T, result interface{}) string {
	t.Helper()

	m, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("Unexpected result shape: %T", result)
	}
	content := m["content"].([]interface{})
	return content[0].(map[string]interface{})["text"].(string)
}

func TestCallTool_RunSimulation(t *testing.T) {
	s := testServer(t)

	result, errRes := call(t, s, "run_simulation", map[string]interface{}{
		"schedule_id": "s1",
		"iterations":  float64(500),
	})
	if errRes != nil {
		t.Fatalf("Expected success, got error %v", errRes)
	}

	text := resultText(t, result)
	var report struct {
		ScheduleID string `json:"scheduleId"`
		Iterations int    `json:"iterations"`
		Histogram  []struct {
			Count int `json:"count"`
		} `json:"histogram"`
	}
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		t.Fatalf("Result is not valid JSON: %v", err)
	}
	if report.ScheduleID != "s1" || report.Iterations != 500 {
		t.Errorf("Unexpected report header: %+v", report)
	}

	total := 0
	for _, b := range report.Histogram {
		total += b.Count
	}
	if total != 500 {
		t.Errorf("Histogram mass %d does not match iterations", total)
	}
}

func TestCallTool_RunSimulationValidation(t *testing.T) {
	s := testServer(t)

	_, errRes := call(t, s, "run_simulation", map[string]interface{}{
		"schedule_id":       "s1",
		"uncertainty_model": "weibull",
	})
	if errRes == nil {
		t.Fatalf("Expected a validation error")
	}
	msg := errRes.(map[string]interface{})["message"].(string)
	if !strings.Contains(msg, "uncertaintyModel") {
		t.Errorf("Expected the offending field in the message, got %q", msg)
	}
}

func TestCallTool_RunSimulationMissingSchedule(t *testing.T) {
	s := testServer(t)

	_, errRes := call(t, s, "run_simulation", map[string]interface{}{
		"schedule_id": "ghost",
	})
	if errRes == nil {
		t.Fatalf("Expected a not-found error")
	}
}

func TestCallTool_GetSchedule(t *testing.T) {
	s := testServer(t)

	result, errRes := call(t, s, "get_schedule", map[string]interface{}{"schedule_id": "s1"})
	if errRes != nil {
		t.Fatalf("Expected success, got error %v", errRes)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "Design") {
		t.Errorf("Expected task names in the payload, got %q", text)
	}
}

func TestCallTool_ListSchedules(t *testing.T) {
	s := testServer(t)

	result, errRes := call(t, s, "list_schedules", nil)
	if errRes != nil {
		t.Fatalf("Expected success, got error %v", errRes)
	}
	if !strings.Contains(resultText(t, result), "s1") {
		t.Errorf("Expected schedule s1 in the listing")
	}
}

func TestCallTool_GetCriticalPath(t *testing.T) {
	s := testServer(t)

	result, errRes := call(t, s, "get_critical_path", map[string]interface{}{"schedule_id": "s1"})
	if errRes != nil {
		t.Fatalf("Expected success, got error %v", errRes)
	}

	var res cpm.Result
	if err := json.Unmarshal([]byte(resultText(t, result)), &res); err != nil {
		t.Fatalf("Result is not valid JSON: %v", err)
	}
	if res.TotalDays != 30 {
		t.Errorf("Expected deterministic total 30 days, got %f", res.TotalDays)
	}
	if len(res.CriticalPath) != 2 {
		t.Errorf("Expected both chain tasks critical, got %v", res.CriticalPath)
	}
}

func TestCallTool_UnknownTool(t *testing.T) {
	s := testServer(t)

	_, errRes := call(t, s, "does_not_exist", nil)
	if errRes == nil {
		t.Fatalf("Expected an error for unknown tool")
	}
	code := errRes.(map[string]interface{})["code"].(int)
	if code != -32601 {
		t.Errorf("Expected code -32601, got %d", code)
	}
}

func TestListTools_DeclaresRunSimulation(t *testing.T) {
	s := testServer(t)

	payload, err := json.Marshal(s.listTools())
	if err != nil {
		t.Fatalf("tools/list payload does not marshal: %v", err)
	}
	for _, name := range []string{"run_simulation", "get_schedule", "list_schedules", "get_critical_path"} {
		if !strings.Contains(string(payload), name) {
			t.Errorf("Expected tool %q declared", name)
		}
	}
}
