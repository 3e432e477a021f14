// ABOUTME: Tests for the utilization calculator and report assembly
// ABOUTME: Covers empty pools, over-100% figures, and idempotent recomputation

package engine

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/markalston/placement-planner/models"
)

func TestCalculator_ComputePool(t *testing.T) {
	s := NewPlacementStore()
	err := s.Reset(
		[]models.Workload{
			{ID: "vm-a", Demand: models.ResourceVector{CPU: 30, Memory: 40, Storage: 100}},
			{ID: "vm-b", Demand: models.ResourceVector{CPU: 30, Memory: 20, Storage: 100}},
		},
		[]models.ResourcePool{
			{ID: "pool-1", Capacity: models.ResourceVector{CPU: 100, Memory: 100, Storage: 1000}, Overcommit: models.OvercommitRatios{CPU: 1, Memory: 1, Storage: 1}},
		},
	)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	for _, id := range []string{"vm-a", "vm-b"} {
		if err := s.Assign(id, "pool-1"); err != nil {
			t.Fatalf("Assign failed: %v", err)
		}
	}

	calc := NewCalculator(models.DefaultThresholds())
	pu, err := calc.ComputePool(s, "pool-1")
	if err != nil {
		t.Fatalf("ComputePool failed: %v", err)
	}

	if pu.WorkloadCount != 2 {
		t.Errorf("Expected 2 workloads, got %d", pu.WorkloadCount)
	}
	if pu.Used.CPU != 60 || pu.Used.Memory != 60 || pu.Used.Storage != 200 {
		t.Errorf("Unexpected used vector: %+v", pu.Used)
	}
	if pu.UtilizationPct.CPU != 60 {
		t.Errorf("Expected 60%% cpu, got %v", pu.UtilizationPct.CPU)
	}
	if pu.ResourceStatus.CPU != models.StatusModerate {
		t.Errorf("Expected moderate cpu, got %s", pu.ResourceStatus.CPU)
	}
	if pu.ResourceStatus.Storage != models.StatusHealthy {
		t.Errorf("Expected healthy storage, got %s", pu.ResourceStatus.Storage)
	}
	if pu.Status != models.StatusModerate {
		t.Errorf("Expected worst-of moderate, got %s", pu.Status)
	}
}

func TestCalculator_EmptyZeroCapacityPoolIsZeroPct(t *testing.T) {
	s := NewPlacementStore()
	err := s.Reset(nil, []models.ResourcePool{
		{ID: "empty", Overcommit: models.OvercommitRatios{CPU: 1, Memory: 1, Storage: 1}},
	})
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	calc := NewCalculator(models.DefaultThresholds())
	pu, err := calc.ComputePool(s, "empty")
	if err != nil {
		t.Fatalf("ComputePool failed: %v", err)
	}

	if pu.UtilizationPct != (models.ResourceVector{}) {
		t.Errorf("Expected 0%% everywhere, got %+v", pu.UtilizationPct)
	}
	if math.IsNaN(pu.UtilizationPct.CPU) {
		t.Error("Utilization must never be NaN")
	}
	if pu.Status != models.StatusHealthy {
		t.Errorf("Expected healthy, got %s", pu.Status)
	}
}

func TestCalculator_Over100PctIsPreserved(t *testing.T) {
	s := NewPlacementStore()
	err := s.Reset(
		[]models.Workload{{ID: "vm-big", Demand: models.ResourceVector{CPU: 150, Memory: 10, Storage: 10}}},
		[]models.ResourcePool{
			{ID: "small", Capacity: models.ResourceVector{CPU: 100, Memory: 100, Storage: 100}, Overcommit: models.OvercommitRatios{CPU: 1, Memory: 1, Storage: 1}},
		},
	)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if err := s.Assign("vm-big", "small"); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	calc := NewCalculator(models.DefaultThresholds())
	pu, err := calc.ComputePool(s, "small")
	if err != nil {
		t.Fatalf("ComputePool failed: %v", err)
	}

	if pu.UtilizationPct.CPU != 150 {
		t.Errorf("Expected 150%% unclamped, got %v", pu.UtilizationPct.CPU)
	}
	if pu.ResourceStatus.CPU != models.StatusOverCapacity {
		t.Errorf("Expected over_capacity cpu, got %s", pu.ResourceStatus.CPU)
	}
}

func TestCalculator_UnknownPool(t *testing.T) {
	s := NewPlacementStore()
	calc := NewCalculator(models.DefaultThresholds())
	if _, err := calc.ComputePool(s, "void"); !errors.Is(err, ErrUnknownPool) {
		t.Errorf("Expected ErrUnknownPool, got %v", err)
	}
}

func TestCalculator_ReportListsUnplacedAndBottlenecks(t *testing.T) {
	s := NewPlacementStore()
	err := s.Reset(
		[]models.Workload{
			{ID: "vm-hot", Demand: models.ResourceVector{CPU: 85, Memory: 10, Storage: 10}},
			{ID: "vm-idle", Demand: models.ResourceVector{CPU: 1, Memory: 1, Storage: 1}},
		},
		[]models.ResourcePool{
			{ID: "pool-1", Capacity: models.ResourceVector{CPU: 100, Memory: 100, Storage: 100}, Overcommit: models.OvercommitRatios{CPU: 1, Memory: 1, Storage: 1}},
		},
	)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if err := s.Assign("vm-hot", "pool-1"); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	calc := NewCalculator(models.DefaultThresholds())
	report, err := calc.Report(s)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if len(report.Pools) != 1 {
		t.Fatalf("Expected 1 pool, got %d", len(report.Pools))
	}
	if !reflect.DeepEqual(report.Unplaced, []string{"vm-idle"}) {
		t.Errorf("Expected [vm-idle] unplaced, got %v", report.Unplaced)
	}
	if len(report.Bottlenecks) != 1 || report.Bottlenecks[0].Resource != models.ResourceCPU {
		t.Errorf("Expected one cpu bottleneck, got %+v", report.Bottlenecks)
	}
	if len(report.Recommendations) != 1 {
		t.Errorf("Expected one recommendation, got %v", report.Recommendations)
	}
}

func TestCalculator_ReportIdempotentAcrossMoveUndo(t *testing.T) {
	s := NewPlacementStore()
	workloads, pools := testInventory()
	if err := s.Reset(workloads, pools); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if err := s.Assign("vm-a", "pool-1"); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	calc := NewCalculator(models.DefaultThresholds())
	before, err := calc.Report(s)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	// A move followed by its undo must land on the identical report.
	if err := s.Assign("vm-a", "pool-2"); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if err := s.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}

	after, err := calc.Report(s)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Errorf("Report differs after move+undo:\nbefore %+v\nafter  %+v", before, after)
	}
}
