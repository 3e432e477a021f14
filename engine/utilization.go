// ABOUTME: Utilization calculator deriving per-pool usage and health status
// ABOUTME: Pure function of store state; recomputed from scratch on every call

package engine

import (
	"fmt"

	"github.com/markalston/placement-planner/models"
)

// Calculator derives utilization reports from a placement store. It holds
// no state beyond the threshold table, so recomputing after any sequence
// of moves and undos always matches computing from scratch.
type Calculator struct {
	thresholds models.ThresholdTable
}

// NewCalculator creates a calculator with the given threshold table.
func NewCalculator(thresholds models.ThresholdTable) *Calculator {
	return &Calculator{thresholds: thresholds}
}

// ComputePool sums the demand of every workload placed in the pool via the
// store's reverse index and divides by effective capacity. An empty pool
// with zero capacity reports 0% utilization, not NaN.
func (c *Calculator) ComputePool(store *PlacementStore, poolID string) (models.PoolUtilization, error) {
	pool, ok := store.Pool(poolID)
	if !ok {
		return models.PoolUtilization{}, fmt.Errorf("%w: %s", ErrUnknownPool, poolID)
	}

	placed, err := store.PlacementsForPool(poolID)
	if err != nil {
		return models.PoolUtilization{}, err
	}

	var used models.ResourceVector
	for _, workloadID := range placed {
		w, ok := store.Workload(workloadID)
		if !ok {
			// Reset purges stale references; hitting this means the
			// store invariant is broken.
			return models.PoolUtilization{}, fmt.Errorf("%w: %s (stale placement)", ErrUnknownWorkload, workloadID)
		}
		used = used.Add(w.Demand)
	}

	effective := pool.EffectiveCapacity()
	quotient, err := used.Divide(effective)
	if err != nil {
		return models.PoolUtilization{}, fmt.Errorf("pool %s: %w", poolID, err)
	}
	pct := models.ResourceVector{
		CPU:     quotient.CPU * 100,
		Memory:  quotient.Memory * 100,
		Storage: quotient.Storage * 100,
	}

	statuses := models.ResourceStatuses{
		CPU:     c.thresholds.Classify(pct.CPU),
		Memory:  c.thresholds.Classify(pct.Memory),
		Storage: c.thresholds.Classify(pct.Storage),
	}

	return models.PoolUtilization{
		PoolID:            poolID,
		WorkloadCount:     len(placed),
		Used:              used,
		EffectiveCapacity: effective,
		UtilizationPct:    pct,
		ResourceStatus:    statuses,
		Status:            statuses.Worst(),
	}, nil
}

// ComputeAll computes utilization for every pool, in pool load order.
func (c *Calculator) ComputeAll(store *PlacementStore) ([]models.PoolUtilization, error) {
	pools := store.Pools()
	out := make([]models.PoolUtilization, 0, len(pools))
	for _, p := range pools {
		pu, err := c.ComputePool(store, p.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, pu)
	}
	return out, nil
}

// Report assembles the full utilization report: per-pool figures, unplaced
// workload ids, bottleneck findings, and recommendation strings.
func (c *Calculator) Report(store *PlacementStore) (models.UtilizationReport, error) {
	pools, err := c.ComputeAll(store)
	if err != nil {
		return models.UtilizationReport{}, err
	}

	unplaced := make([]string, 0)
	for _, w := range store.UnplacedWorkloads() {
		unplaced = append(unplaced, w.ID)
	}

	bottlenecks := models.DetectBottlenecks(pools, c.thresholds)

	return models.UtilizationReport{
		Pools:           pools,
		Unplaced:        unplaced,
		Bottlenecks:     bottlenecks,
		Recommendations: models.RecommendationStrings(bottlenecks),
	}, nil
}
