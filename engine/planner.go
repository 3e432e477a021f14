// ABOUTME: First-fit-decreasing bin packing across CPU, memory, and storage
// ABOUTME: Best-fit fallback guarantees every workload lands somewhere when pools exist

package engine

import (
	"math"
	"sort"

	"github.com/markalston/placement-planner/models"
)

// Assignment is one planned (workload, pool) edge. OverCeiling marks
// fallback placements that exceed 100% of effective capacity; the
// bottleneck detector will flag them as over capacity.
type Assignment struct {
	WorkloadID  string `json:"workload_id"`
	PoolID      string `json:"pool_id"`
	OverCeiling bool   `json:"over_ceiling,omitempty"`
}

// PlanSummary counts the outcome of one automatic placement run.
type PlanSummary struct {
	TotalWorkloads int `json:"total_workloads"`
	Placed         int `json:"placed"`
	FallbackPlaced int `json:"fallback_placed"`
	Unplaced       int `json:"unplaced"`
	PoolsUsed      int `json:"pools_used"`
}

// Planner produces automatic assignments and validates manual moves.
type Planner struct {
	thresholds models.ThresholdTable
}

// NewPlanner creates a planner with the given threshold table.
func NewPlanner(thresholds models.ThresholdTable) *Planner {
	return &Planner{thresholds: thresholds}
}

// Plan assigns every currently-unplaced workload to a pool. Workloads are
// sorted largest-first by a composite score normalized by the mean
// effective capacity across candidate pools, so no dimension dominates
// when units differ in magnitude. Each workload goes to the first pool, in
// load order, that can take it without any resource exceeding 100% of
// effective capacity. When no pool fits, the pool with the smallest
// maximum resulting utilization wins (ties by pool id), so every workload
// is placed when any pool exists, at the cost of a flagged over-capacity
// pool. Results are not applied; the caller commits them to the store.
func (p *Planner) Plan(store *PlacementStore) ([]Assignment, PlanSummary) {
	unplaced := store.UnplacedWorkloads()
	pools := store.Pools()
	summary := PlanSummary{TotalWorkloads: len(unplaced)}

	if len(pools) == 0 {
		// Nothing to place into is not an error; the report will show
		// every workload as unplaced.
		summary.Unplaced = len(unplaced)
		return nil, summary
	}

	effective := make(map[string]models.ResourceVector, len(pools))
	used := make(map[string]models.ResourceVector, len(pools))
	var capacitySum models.ResourceVector
	for _, pool := range pools {
		eff := pool.EffectiveCapacity()
		effective[pool.ID] = eff
		capacitySum = capacitySum.Add(eff)
		used[pool.ID] = p.currentUsage(store, pool.ID)
	}
	mean := models.ResourceVector{
		CPU:     capacitySum.CPU / float64(len(pools)),
		Memory:  capacitySum.Memory / float64(len(pools)),
		Storage: capacitySum.Storage / float64(len(pools)),
	}

	sorted := make([]models.Workload, len(unplaced))
	copy(sorted, unplaced)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := compositeScore(sorted[i].Demand, mean), compositeScore(sorted[j].Demand, mean)
		if si != sj {
			return si > sj
		}
		return sorted[i].ID < sorted[j].ID
	})

	assignments := make([]Assignment, 0, len(sorted))
	poolsUsed := make(map[string]struct{})

	for _, w := range sorted {
		target, fits := p.firstFit(w.Demand, pools, used, effective)
		if !fits {
			target = p.bestFit(w.Demand, pools, used, effective)
			summary.FallbackPlaced++
		}
		used[target] = used[target].Add(w.Demand)
		poolsUsed[target] = struct{}{}
		assignments = append(assignments, Assignment{
			WorkloadID:  w.ID,
			PoolID:      target,
			OverCeiling: !fits,
		})
		summary.Placed++
	}

	summary.PoolsUsed = len(poolsUsed)
	return assignments, summary
}

// firstFit returns the first pool, in load order, that can absorb the
// demand with every resource at or under 100% of effective capacity.
func (p *Planner) firstFit(demand models.ResourceVector, pools []models.ResourcePool,
	used, effective map[string]models.ResourceVector) (string, bool) {
	for _, pool := range pools {
		after := used[pool.ID].Add(demand)
		eff := effective[pool.ID]
		if after.CPU <= eff.CPU && after.Memory <= eff.Memory && after.Storage <= eff.Storage {
			return pool.ID, true
		}
	}
	return "", false
}

// bestFit returns the pool whose maximum resulting utilization across the
// three resources is smallest. Ties break by pool id for determinism.
func (p *Planner) bestFit(demand models.ResourceVector, pools []models.ResourcePool,
	used, effective map[string]models.ResourceVector) string {
	candidates := make([]string, 0, len(pools))
	for _, pool := range pools {
		candidates = append(candidates, pool.ID)
	}
	sort.Strings(candidates)

	best := candidates[0]
	bestMax := math.Inf(1)
	for _, id := range candidates {
		after := used[id].Add(demand)
		m := maxUtilization(after, effective[id])
		if m < bestMax {
			best = id
			bestMax = m
		}
	}
	return best
}

// ValidateMove classifies a proposed manual move against the hypothetical
// post-move utilization of the target pool. Capacity pressure never
// blocks: intentional over-subscription is a scenario planners must be
// able to model, so anything at High severity or worse is a warning, not
// a refusal. Only unknown ids block, and those also return the matching
// sentinel error.
func (p *Planner) ValidateMove(store *PlacementStore, workloadID, targetPoolID string) (models.ValidationOutcome, error) {
	w, ok := store.Workload(workloadID)
	if !ok {
		return models.ValidationOutcome{
			Decision: models.DecisionBlocked,
			Reason:   "unknown workload " + workloadID,
		}, ErrUnknownWorkload
	}
	pool, ok := store.Pool(targetPoolID)
	if !ok {
		return models.ValidationOutcome{
			Decision: models.DecisionBlocked,
			Reason:   "unknown pool " + targetPoolID,
		}, ErrUnknownPool
	}

	used := p.currentUsage(store, targetPoolID)
	if current, placed := store.PoolFor(workloadID); placed && current == targetPoolID {
		// Moving a workload onto its own pool changes nothing.
		used = used.Subtract(w.Demand)
	}
	after := used.Add(w.Demand)
	eff := pool.EffectiveCapacity()

	status := models.MaxStatus(
		p.thresholds.Classify(percentOf(after.CPU, eff.CPU)),
		models.MaxStatus(
			p.thresholds.Classify(percentOf(after.Memory, eff.Memory)),
			p.thresholds.Classify(percentOf(after.Storage, eff.Storage)),
		),
	)

	decision := models.DecisionAllowed
	if status >= models.StatusHigh {
		decision = models.DecisionAllowedWithWarning
	}
	return models.ValidationOutcome{Decision: decision, ProjectedStatus: status}, nil
}

// currentUsage sums the demand currently placed in a pool.
func (p *Planner) currentUsage(store *PlacementStore, poolID string) models.ResourceVector {
	var used models.ResourceVector
	placed, err := store.PlacementsForPool(poolID)
	if err != nil {
		return used
	}
	for _, id := range placed {
		if w, ok := store.Workload(id); ok {
			used = used.Add(w.Demand)
		}
	}
	return used
}

// compositeScore sizes a workload relative to the mean pool capacity.
// Dimensions with zero mean capacity contribute nothing to the sort.
func compositeScore(demand, mean models.ResourceVector) float64 {
	var score float64
	if mean.CPU > 0 {
		score += demand.CPU / mean.CPU
	}
	if mean.Memory > 0 {
		score += demand.Memory / mean.Memory
	}
	if mean.Storage > 0 {
		score += demand.Storage / mean.Storage
	}
	return score
}

// maxUtilization returns the worst resulting percentage across resources.
// Demand against a zero-capacity dimension compares as infinitely bad so
// best-fit never prefers a pool that cannot hold the workload at all.
func maxUtilization(after, eff models.ResourceVector) float64 {
	worst := 0.0
	for _, c := range []struct{ load, cap float64 }{
		{after.CPU, eff.CPU},
		{after.Memory, eff.Memory},
		{after.Storage, eff.Storage},
	} {
		var pct float64
		switch {
		case c.cap > 0:
			pct = c.load / c.cap * 100
		case c.load > 0:
			pct = math.Inf(1)
		}
		if pct > worst {
			worst = pct
		}
	}
	return worst
}

// percentOf is utilization percent with the zero-denominator convention.
func percentOf(used, capacity float64) float64 {
	if capacity == 0 {
		return 0
	}
	return used / capacity * 100
}
