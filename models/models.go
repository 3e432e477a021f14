// ABOUTME: Core domain types for workloads, resource pools, and reports
// ABOUTME: JSON-serializable structures shared by the engine and the API

package models

import "fmt"

// Workload is a unit of resource demand to be placed, typically a VM.
// Immutable during a planning session; a demand correction is a new
// version and invalidates any placement referencing it.
type Workload struct {
	ID         string         `json:"id"`
	Demand     ResourceVector `json:"demand"`
	PowerState string         `json:"power_state,omitempty"`
}

// Validate checks the demand vector.
func (w Workload) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("%w: workload id is empty", ErrInvalidResourceValue)
	}
	if err := w.Demand.Validate(); err != nil {
		return fmt.Errorf("workload %s: %w", w.ID, err)
	}
	return nil
}

// HAPolicy names how many hosts a pool reserves for failover before
// capacity is handed to workloads.
type HAPolicy string

const (
	HANone     HAPolicy = "none"
	HANPlusOne HAPolicy = "n+1"
	HANPlusTwo HAPolicy = "n+2"
)

// ReservedNodes returns the host count withheld by the policy.
func (p HAPolicy) ReservedNodes() int {
	switch p {
	case HANPlusOne:
		return 1
	case HANPlusTwo:
		return 2
	default:
		return 0
	}
}

// Validate rejects unknown policy names. Empty means HANone.
func (p HAPolicy) Validate() error {
	switch p {
	case "", HANone, HANPlusOne, HANPlusTwo:
		return nil
	default:
		return fmt.Errorf("%w: unknown ha_policy %q", ErrInvalidResourceValue, string(p))
	}
}

// ResourcePool is a placement target (a cluster). Capacity is raw,
// non-overcommitted figures; effective capacity applies the HA reserve
// and then the overcommit ratios.
type ResourcePool struct {
	ID         string           `json:"id"`
	Capacity   ResourceVector   `json:"capacity"`
	Overcommit OvercommitRatios `json:"overcommit"`
	HAPolicy   HAPolicy         `json:"ha_policy,omitempty"`
	NodeCount  int              `json:"node_count,omitempty"`
}

// Validate checks capacity, ratios, and the HA policy.
func (p ResourcePool) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: pool id is empty", ErrInvalidResourceValue)
	}
	if err := p.Capacity.Validate(); err != nil {
		return fmt.Errorf("pool %s: %w", p.ID, err)
	}
	if err := p.Overcommit.Validate(); err != nil {
		return fmt.Errorf("pool %s: %w", p.ID, err)
	}
	if err := p.HAPolicy.Validate(); err != nil {
		return fmt.Errorf("pool %s: %w", p.ID, err)
	}
	if p.NodeCount < 0 {
		return fmt.Errorf("%w: pool %s node_count = %d", ErrInvalidResourceValue, p.ID, p.NodeCount)
	}
	return nil
}

// EffectiveCapacity is raw capacity minus the HA reserve share, scaled by
// the overcommit ratios. With no HA policy (or an unknown node count) the
// reserve term drops out and this is simply capacity x overcommit.
func (p ResourcePool) EffectiveCapacity() ResourceVector {
	usable := p.Capacity
	reserved := p.HAPolicy.ReservedNodes()
	if reserved > 0 && p.NodeCount > reserved {
		usable = usable.mulScalar(1 - float64(reserved)/float64(p.NodeCount))
	} else if reserved > 0 && p.NodeCount > 0 {
		// Policy reserves every host; nothing is usable.
		usable = ResourceVector{}
	}
	return usable.Scale(p.Overcommit)
}

// ResourceStatuses carries the per-resource severity for one pool.
type ResourceStatuses struct {
	CPU     HealthStatus `json:"cpu"`
	Memory  HealthStatus `json:"memory"`
	Storage HealthStatus `json:"storage"`
}

// Worst returns the maximum severity across the three resources.
func (r ResourceStatuses) Worst() HealthStatus {
	return MaxStatus(r.CPU, MaxStatus(r.Memory, r.Storage))
}

// PoolUtilization is the derived view of one pool: summed demand, effective
// capacity, and utilization percentages. Percentages above 100 are
// meaningful (over-subscribed pool) and are never clamped here; only a
// presentation layer may clamp for display.
type PoolUtilization struct {
	PoolID            string           `json:"pool_id"`
	WorkloadCount     int              `json:"workload_count"`
	Used              ResourceVector   `json:"used"`
	EffectiveCapacity ResourceVector   `json:"effective_capacity"`
	UtilizationPct    ResourceVector   `json:"utilization_pct"`
	ResourceStatus    ResourceStatuses `json:"resource_status"`
	Status            HealthStatus     `json:"status"`
}

// UtilizationReport is recomputed on demand, never stored. Pools appear in
// their load order; unplaced workload ids are sorted.
type UtilizationReport struct {
	Pools           []PoolUtilization `json:"pools"`
	Unplaced        []string          `json:"unplaced"`
	Bottlenecks     []Bottleneck      `json:"bottlenecks"`
	Recommendations []string          `json:"recommendations"`
}

// MoveDecision is the outcome class of a manual move validation.
type MoveDecision string

const (
	DecisionAllowed            MoveDecision = "allowed"
	DecisionAllowedWithWarning MoveDecision = "allowed_with_warning"
	DecisionBlocked            MoveDecision = "blocked"
)

// ValidationOutcome classifies a proposed manual move. Capacity concerns
// are advisory only; Blocked is reserved for structural errors (unknown
// workload or pool ids). ProjectedStatus is the worst per-resource status
// of the target pool after the hypothetical move.
type ValidationOutcome struct {
	Decision        MoveDecision `json:"decision"`
	ProjectedStatus HealthStatus `json:"projected_status"`
	Reason          string       `json:"reason,omitempty"`
}

// ErrorResponse represents an API error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    int    `json:"code"`
}
