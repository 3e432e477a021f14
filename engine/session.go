// ABOUTME: Session controller orchestrating load, planning, moves, history, and reports
// ABOUTME: Serializes mutations behind a per-session RWMutex; reports take the read lock

package engine

import (
	"fmt"
	"sync"

	"github.com/markalston/placement-planner/models"
)

// SessionState labels where a planning session is in its lifecycle. The
// label is informational for callers; correctness comes entirely from the
// placement store's actual content.
type SessionState string

const (
	StateEmpty    SessionState = "empty"
	StateSeeded   SessionState = "seeded"
	StatePlanned  SessionState = "planned"
	StateModified SessionState = "modified"
)

// Session is one independent planning session. All public operations are
// synchronous and run to completion; mutations are serialized behind the
// session lock, and Report is served under the read lock so concurrent
// readers proceed while no writer holds it. Sessions share no mutable
// state with each other.
type Session struct {
	id string

	mu      sync.RWMutex
	state   SessionState
	store   *PlacementStore
	calc    *Calculator
	planner *Planner
}

// NewSession creates an empty session with the given threshold table.
func NewSession(id string, thresholds models.ThresholdTable) *Session {
	return &Session{
		id:      id,
		state:   StateEmpty,
		store:   NewPlacementStore(),
		calc:    NewCalculator(thresholds),
		planner: NewPlanner(thresholds),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle label.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Load replaces the entire inventory, clearing all placements and history.
// Every workload and pool is validated before the session is touched, so a
// malformed inventory never seeds a partial session.
func (s *Session) Load(workloads []models.Workload, pools []models.ResourcePool) error {
	for _, w := range workloads {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	for _, p := range pools {
		if err := p.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Reset(workloads, pools); err != nil {
		return err
	}
	s.state = StateSeeded
	return nil
}

// RunAutoPlacement places every unplaced workload. From Planned it fails
// with ErrAlreadyPlanned unless force is set, so one extra flag stands
// between a caller and discarding manual work. A forced run clears all
// existing placements first and re-plans from scratch. The whole run is a
// single history entry, so one undo reverts it completely.
func (s *Session) RunAutoPlacement(force bool) (PlanSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateEmpty:
		return PlanSummary{}, ErrNoInventory
	case StatePlanned:
		if !force {
			return PlanSummary{}, ErrAlreadyPlanned
		}
	}

	var ops []moveOp
	if force {
		for workloadID, poolID := range s.store.Placements() {
			ops = append(ops, moveOp{workloadID: workloadID, from: poolID, to: ""})
		}
		// Stage the clears so the planner sees everything as unplaced,
		// then fold them into the same history entry as the assignments.
		for _, op := range ops {
			s.store.apply(op)
		}
	}

	assignments, summary := s.planner.Plan(s.store)
	for _, a := range assignments {
		from, _ := s.store.PoolFor(a.WorkloadID)
		op := moveOp{workloadID: a.WorkloadID, from: from, to: a.PoolID}
		s.store.apply(op)
		ops = append(ops, op)
	}
	if len(ops) > 0 {
		s.store.push(command{ops: ops})
	}

	s.state = StatePlanned
	return summary, nil
}

// Move validates and applies a manual re-assignment. Capacity pressure is
// advisory: the move proceeds with a warning. Only unknown ids block.
func (s *Session) Move(workloadID, targetPoolID string) (models.ValidationOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateEmpty || s.state == StateSeeded {
		return models.ValidationOutcome{}, ErrNothingPlacedYet
	}

	outcome, err := s.planner.ValidateMove(s.store, workloadID, targetPoolID)
	if err != nil {
		return outcome, err
	}
	if err := s.store.Assign(workloadID, targetPoolID); err != nil {
		return outcome, err
	}
	s.state = StateModified
	return outcome, nil
}

// Undo reverts the most recent mutation. The state label is untouched;
// content may effectively revert Modified back toward Planned.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Undo()
}

// Redo re-applies the most recently undone mutation.
func (s *Session) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Redo()
}

// Report computes the current utilization report and bottleneck list.
func (s *Session) Report() (models.UtilizationReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == StateEmpty || s.state == StateSeeded {
		return models.UtilizationReport{}, ErrNotYetPlanned
	}
	return s.calc.Report(s.store)
}

// Status is a caller-facing snapshot of the session.
type Status struct {
	SessionID     string       `json:"session_id"`
	State         SessionState `json:"state"`
	WorkloadCount int          `json:"workload_count"`
	PoolCount     int          `json:"pool_count"`
	PlacedCount   int          `json:"placed_count"`
	CanUndo       bool         `json:"can_undo"`
	CanRedo       bool         `json:"can_redo"`
}

// Status reports counts and history availability for UI affordances like
// disabling an undo button.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		SessionID:     s.id,
		State:         s.state,
		WorkloadCount: s.store.WorkloadCount(),
		PoolCount:     s.store.PoolCount(),
		PlacedCount:   len(s.store.Placements()),
		CanUndo:       s.store.CanUndo(),
		CanRedo:       s.store.CanRedo(),
	}
}

// UpdatePool edits a pool's capacity or overcommit mid-session. Nothing
// is cached, so the next report recomputes from scratch.
func (s *Session) UpdatePool(pool models.ResourcePool) error {
	if err := pool.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateEmpty {
		return ErrNoInventory
	}
	return s.store.UpdatePool(pool)
}

// UpdateWorkload applies a demand correction. The corrected workload
// comes back unplaced; callers re-run placement or move it manually.
func (s *Session) UpdateWorkload(w models.Workload) error {
	if err := w.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateEmpty {
		return ErrNoInventory
	}
	return s.store.UpdateWorkload(w)
}

// RemoveWorkload drops a workload and purges its placement.
func (s *Session) RemoveWorkload(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateEmpty {
		return ErrNoInventory
	}
	if err := s.store.RemoveWorkload(id); err != nil {
		return fmt.Errorf("removing workload: %w", err)
	}
	return nil
}
