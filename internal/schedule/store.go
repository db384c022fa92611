package schedule

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when a schedule, its tasks, or a project budget
// cannot be resolved.
var ErrNotFound = errors.New("not found")

// record is the JSONL envelope used on disk. Each schedule file starts with a
// single "schedule" record followed by one "task" record per line.
type record struct {
	Kind     string    `json:"kind"`
	Schedule *Schedule `json:"schedule,omitempty"`
	Task     *Task     `json:"task,omitempty"`
}

// budgetRecord is one line of budgets.jsonl.
type budgetRecord struct {
	ProjectID string  `json:"projectId"`
	Allocated float64 `json:"allocated"`
}

// Store provides thread-safe access to schedules, their tasks, and project
// budgets, persisted as JSONL files under a data directory.
type Store struct {
	mu        sync.RWMutex
	schedules map[string]*Schedule
	tasks     map[string][]Task // keyed by schedule ID, insertion order preserved
	budgets   map[string]float64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		schedules: make(map[string]*Schedule),
		tasks:     make(map[string][]Task),
		budgets:   make(map[string]float64),
	}
}

// Put registers a schedule and its tasks, replacing any previous version.
// Tasks without an ID are assigned one.
func (s *Store) Put(sched Schedule, tasks []Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = uuid.NewString()
		}
	}

	cp := sched
	s.schedules[sched.ID] = &cp
	s.tasks[sched.ID] = tasks
}

// SetBudget records the allocated budget for a project.
func (s *Store) SetBudget(projectID string, allocated float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[projectID] = allocated
}

// FindScheduleByID returns the schedule metadata or ErrNotFound.
func (s *Store) FindScheduleByID(id string) (*Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sched, ok := s.schedules[id]
	if !ok {
		return nil, fmt.Errorf("schedule %q: %w", id, ErrNotFound)
	}
	cp := *sched
	return &cp, nil
}

// FindTasksByScheduleID returns a copy of the schedule's tasks in their
// declared order.
func (s *Store) FindTasksByScheduleID(id string) ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.schedules[id]; !ok {
		return nil, fmt.Errorf("schedule %q: %w", id, ErrNotFound)
	}

	tasks := s.tasks[id]
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out, nil
}

// FindAllocatedBudget returns the allocated budget for a project, or
// ErrNotFound when no budget was recorded. Callers treat a missing budget as
// an uninformative (all-zero) cost forecast, not a failure.
func (s *Store) FindAllocatedBudget(projectID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.budgets[projectID]
	if !ok {
		return 0, fmt.Errorf("budget for project %q: %w", projectID, ErrNotFound)
	}
	return b, nil
}

// ListSchedules returns all known schedules sorted by ID.
func (s *Store) ListSchedules() []Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Schedule, 0, len(s.schedules))
	for _, sched := range s.schedules {
		out = append(out, *sched)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDir loads every *.jsonl schedule file in dir plus budgets.jsonl if
// present. A missing directory is not an error (empty store).
func (s *Store) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read schedule dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".jsonl" {
			continue
		}
		if e.Name() == "budgets.jsonl" {
			if err := s.loadBudgets(filepath.Join(dir, e.Name())); err != nil {
				return err
			}
			continue
		}
		if err := s.loadSchedule(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadSchedule(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open schedule file: %w", err)
	}
	defer file.Close()

	var sched *Schedule
	var tasks []Task

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Skipping invalid JSON line in schedule file")
			continue
		}
		switch rec.Kind {
		case "schedule":
			if rec.Schedule != nil {
				sched = rec.Schedule
			}
		case "task":
			if rec.Task != nil {
				tasks = append(tasks, *rec.Task)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading schedule file: %w", err)
	}

	if sched == nil {
		log.Warn().Str("path", path).Msg("Schedule file has no schedule record, ignoring")
		return nil
	}

	s.Put(*sched, tasks)
	log.Info().Str("schedule", sched.ID).Int("tasks", len(tasks)).Msg("Loaded schedule")
	return nil
}

func (s *Store) loadBudgets(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open budgets file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec budgetRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			log.Warn().Err(err).Msg("Skipping invalid JSON line in budgets file")
			continue
		}
		s.SetBudget(rec.ProjectID, rec.Allocated)
	}
	return scanner.Err()
}

// Save persists one schedule (and its tasks) to <dir>/<id>.jsonl via an
// atomic rename.
func (s *Store) Save(dir string, scheduleID string) error {
	s.mu.RLock()
	sched, ok := s.schedules[scheduleID]
	tasks := s.tasks[scheduleID]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("schedule %q: %w", scheduleID, ErrNotFound)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.jsonl", scheduleID))
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp schedule file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)

	if err := encoder.Encode(record{Kind: "schedule", Schedule: sched}); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to encode schedule: %w", err)
	}
	for i := range tasks {
		if err := encoder.Encode(record{Kind: "task", Task: &tasks[i]}); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode task: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename schedule file: %w", err)
	}

	log.Info().Str("schedule", scheduleID).Int("tasks", len(tasks)).Msg("Schedule saved")
	return nil
}

// SaveBudgets persists all known budgets to <dir>/budgets.jsonl.
func (s *Store) SaveBudgets(dir string) error {
	s.mu.RLock()
	recs := make([]budgetRecord, 0, len(s.budgets))
	for id, b := range s.budgets {
		recs = append(recs, budgetRecord{ProjectID: id, Allocated: b})
	}
	s.mu.RUnlock()

	sort.Slice(recs, func(i, j int) bool { return recs[i].ProjectID < recs[j].ProjectID })

	path := filepath.Join(dir, "budgets.jsonl")
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp budgets file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for _, rec := range recs {
		if err := encoder.Encode(rec); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode budget: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	return os.Rename(tmpPath, path)
}
