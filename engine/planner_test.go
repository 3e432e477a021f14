// ABOUTME: Tests for first-fit-decreasing placement and move validation
// ABOUTME: Pins fallback behavior, determinism, and the advisory warning policy

package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/markalston/placement-planner/models"
)

func unitRatios() models.OvercommitRatios {
	return models.OvercommitRatios{CPU: 1, Memory: 1, Storage: 1}
}

func plainPool(id string, cpu, mem, stor float64) models.ResourcePool {
	return models.ResourcePool{
		ID:         id,
		Capacity:   models.ResourceVector{CPU: cpu, Memory: mem, Storage: stor},
		Overcommit: unitRatios(),
	}
}

func mustReset(t *testing.T, s *PlacementStore, workloads []models.Workload, pools []models.ResourcePool) {
	t.Helper()
	if err := s.Reset(workloads, pools); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
}

func TestPlanner_ZeroPoolsLeavesEverythingUnplaced(t *testing.T) {
	s := NewPlacementStore()
	mustReset(t, s, []models.Workload{{ID: "vm-a"}, {ID: "vm-b"}}, nil)

	planner := NewPlanner(models.DefaultThresholds())
	assignments, summary := planner.Plan(s)

	if len(assignments) != 0 {
		t.Errorf("Expected no assignments, got %d", len(assignments))
	}
	if summary.Unplaced != 2 || summary.Placed != 0 {
		t.Errorf("Expected 2 unplaced, got %+v", summary)
	}
}

func TestPlanner_LargestFirstThenFirstFit(t *testing.T) {
	s := NewPlacementStore()
	mustReset(t, s,
		[]models.Workload{
			{ID: "small", Demand: models.ResourceVector{CPU: 10, Memory: 10, Storage: 10}},
			{ID: "big", Demand: models.ResourceVector{CPU: 80, Memory: 80, Storage: 80}},
		},
		[]models.ResourcePool{
			plainPool("pool-1", 100, 100, 100),
			plainPool("pool-2", 100, 100, 100),
		},
	)

	planner := NewPlanner(models.DefaultThresholds())
	assignments, summary := planner.Plan(s)

	if len(assignments) != 2 {
		t.Fatalf("Expected 2 assignments, got %d", len(assignments))
	}
	// Largest first, both into pool-1: big then small both fit under 100%.
	if assignments[0].WorkloadID != "big" || assignments[0].PoolID != "pool-1" {
		t.Errorf("Expected big into pool-1 first, got %+v", assignments[0])
	}
	if assignments[1].WorkloadID != "small" || assignments[1].PoolID != "pool-1" {
		t.Errorf("Expected small into pool-1, got %+v", assignments[1])
	}
	if summary.FallbackPlaced != 0 || summary.PoolsUsed != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
}

func TestPlanner_SkipsFullPoolForOneThatFits(t *testing.T) {
	s := NewPlacementStore()
	mustReset(t, s,
		[]models.Workload{
			{ID: "filler", Demand: models.ResourceVector{CPU: 100, Memory: 10, Storage: 10}},
			{ID: "newcomer", Demand: models.ResourceVector{CPU: 20, Memory: 10, Storage: 10}},
		},
		[]models.ResourcePool{
			plainPool("pool-a", 100, 100, 100),
			plainPool("pool-b", 100, 100, 100),
		},
	)
	// pool-a is already at 100% CPU.
	if err := s.Assign("filler", "pool-a"); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	planner := NewPlanner(models.DefaultThresholds())
	assignments, summary := planner.Plan(s)

	if len(assignments) != 1 {
		t.Fatalf("Expected 1 assignment, got %d", len(assignments))
	}
	if assignments[0].PoolID != "pool-b" {
		t.Errorf("Expected newcomer in pool-b, got %s", assignments[0].PoolID)
	}
	if assignments[0].OverCeiling {
		t.Error("Expected a clean fit, not a fallback placement")
	}
	if summary.FallbackPlaced != 0 {
		t.Errorf("Expected no fallback, got %+v", summary)
	}
}

func TestPlanner_FallbackPlacesEverywhereFullWorkload(t *testing.T) {
	s := NewPlacementStore()
	mustReset(t, s,
		[]models.Workload{
			{ID: "vm-huge", Demand: models.ResourceVector{CPU: 150, Memory: 10, Storage: 10}},
		},
		[]models.ResourcePool{
			plainPool("pool-a", 100, 100, 100),
			plainPool("pool-b", 120, 100, 100),
		},
	)

	planner := NewPlanner(models.DefaultThresholds())
	assignments, summary := planner.Plan(s)

	if len(assignments) != 1 {
		t.Fatalf("Expected 1 assignment, got %d", len(assignments))
	}
	// pool-b yields 125% CPU vs pool-a's 150%: smaller max utilization wins.
	if assignments[0].PoolID != "pool-b" {
		t.Errorf("Expected fallback into pool-b, got %s", assignments[0].PoolID)
	}
	if !assignments[0].OverCeiling {
		t.Error("Expected the placement flagged over ceiling")
	}
	if summary.FallbackPlaced != 1 || summary.Unplaced != 0 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
}

func TestPlanner_FallbackTieBreaksByPoolID(t *testing.T) {
	s := NewPlacementStore()
	mustReset(t, s,
		[]models.Workload{
			{ID: "vm-huge", Demand: models.ResourceVector{CPU: 150, Memory: 10, Storage: 10}},
		},
		[]models.ResourcePool{
			plainPool("pool-z", 100, 100, 100),
			plainPool("pool-a", 100, 100, 100),
		},
	)

	planner := NewPlanner(models.DefaultThresholds())
	assignments, _ := planner.Plan(s)

	if assignments[0].PoolID != "pool-a" {
		t.Errorf("Expected tie broken toward pool-a, got %s", assignments[0].PoolID)
	}
}

func TestPlanner_DeterministicAcrossRuns(t *testing.T) {
	build := func() *PlacementStore {
		s := NewPlacementStore()
		mustReset(t, s,
			[]models.Workload{
				{ID: "vm-1", Demand: models.ResourceVector{CPU: 30, Memory: 20, Storage: 50}},
				{ID: "vm-2", Demand: models.ResourceVector{CPU: 30, Memory: 20, Storage: 50}},
				{ID: "vm-3", Demand: models.ResourceVector{CPU: 50, Memory: 60, Storage: 10}},
				{ID: "vm-4", Demand: models.ResourceVector{CPU: 10, Memory: 5, Storage: 5}},
			},
			[]models.ResourcePool{
				plainPool("pool-1", 100, 100, 100),
				plainPool("pool-2", 100, 100, 100),
			},
		)
		return s
	}

	planner := NewPlanner(models.DefaultThresholds())
	first, _ := planner.Plan(build())
	for i := 0; i < 10; i++ {
		again, _ := planner.Plan(build())
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Run %d diverged:\nfirst %+v\nagain %+v", i, first, again)
		}
	}
}

func TestPlanner_EqualScoresOrderByWorkloadID(t *testing.T) {
	s := NewPlacementStore()
	demand := models.ResourceVector{CPU: 40, Memory: 40, Storage: 40}
	mustReset(t, s,
		[]models.Workload{
			{ID: "vm-z", Demand: demand},
			{ID: "vm-a", Demand: demand},
			{ID: "vm-m", Demand: demand},
		},
		[]models.ResourcePool{plainPool("pool-1", 200, 200, 200)},
	)

	planner := NewPlanner(models.DefaultThresholds())
	assignments, _ := planner.Plan(s)

	wantOrder := []string{"vm-a", "vm-m", "vm-z"}
	for i, id := range wantOrder {
		if assignments[i].WorkloadID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, assignments[i].WorkloadID)
		}
	}
}

func TestPlanner_ValidateMove(t *testing.T) {
	s := NewPlacementStore()
	mustReset(t, s,
		[]models.Workload{
			{ID: "vm-light", Demand: models.ResourceVector{CPU: 10, Memory: 10, Storage: 10}},
			{ID: "vm-heavy", Demand: models.ResourceVector{CPU: 140, Memory: 10, Storage: 10}},
		},
		[]models.ResourcePool{plainPool("pool-1", 100, 100, 100)},
	)

	planner := NewPlanner(models.DefaultThresholds())

	t.Run("comfortable move is allowed", func(t *testing.T) {
		outcome, err := planner.ValidateMove(s, "vm-light", "pool-1")
		if err != nil {
			t.Fatalf("ValidateMove failed: %v", err)
		}
		if outcome.Decision != models.DecisionAllowed {
			t.Errorf("Expected allowed, got %s", outcome.Decision)
		}
		if outcome.ProjectedStatus != models.StatusHealthy {
			t.Errorf("Expected healthy projection, got %s", outcome.ProjectedStatus)
		}
	})

	t.Run("over-capacity move warns but is not blocked", func(t *testing.T) {
		outcome, err := planner.ValidateMove(s, "vm-heavy", "pool-1")
		if err != nil {
			t.Fatalf("ValidateMove failed: %v", err)
		}
		if outcome.Decision != models.DecisionAllowedWithWarning {
			t.Errorf("Expected allowed_with_warning, got %s", outcome.Decision)
		}
		if outcome.ProjectedStatus != models.StatusOverCapacity {
			t.Errorf("Expected over_capacity projection, got %s", outcome.ProjectedStatus)
		}
	})

	t.Run("unknown workload blocks", func(t *testing.T) {
		outcome, err := planner.ValidateMove(s, "ghost", "pool-1")
		if !errors.Is(err, ErrUnknownWorkload) {
			t.Errorf("Expected ErrUnknownWorkload, got %v", err)
		}
		if outcome.Decision != models.DecisionBlocked {
			t.Errorf("Expected blocked, got %s", outcome.Decision)
		}
	})

	t.Run("unknown pool blocks", func(t *testing.T) {
		outcome, err := planner.ValidateMove(s, "vm-light", "void")
		if !errors.Is(err, ErrUnknownPool) {
			t.Errorf("Expected ErrUnknownPool, got %v", err)
		}
		if outcome.Decision != models.DecisionBlocked {
			t.Errorf("Expected blocked, got %s", outcome.Decision)
		}
	})
}

func TestPlanner_ValidateMoveOntoOwnPool(t *testing.T) {
	s := NewPlacementStore()
	mustReset(t, s,
		[]models.Workload{{ID: "vm-a", Demand: models.ResourceVector{CPU: 90, Memory: 10, Storage: 10}}},
		[]models.ResourcePool{plainPool("pool-1", 100, 100, 100)},
	)
	if err := s.Assign("vm-a", "pool-1"); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	planner := NewPlanner(models.DefaultThresholds())
	outcome, err := planner.ValidateMove(s, "vm-a", "pool-1")
	if err != nil {
		t.Fatalf("ValidateMove failed: %v", err)
	}
	// The workload's own demand must not be double counted: the projection
	// stays at 90%, not 180%.
	if outcome.ProjectedStatus != models.StatusCritical {
		t.Errorf("Expected critical (90%%), got %s", outcome.ProjectedStatus)
	}
}
