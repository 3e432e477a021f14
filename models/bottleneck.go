// ABOUTME: Bottleneck detection over per-pool utilization figures
// ABOUTME: Emits worst-first findings with a deterministic 70%-target recommendation

package models

import (
	"fmt"
	"math"
	"sort"
)

// ResourceKind names one resource dimension of a pool.
type ResourceKind string

const (
	ResourceCPU     ResourceKind = "cpu"
	ResourceMemory  ResourceKind = "memory"
	ResourceStorage ResourceKind = "storage"
)

// unit returns the phrase used when recommending extra capacity.
func (k ResourceKind) unit() string {
	switch k {
	case ResourceCPU:
		return "cores"
	case ResourceMemory:
		return "GB memory"
	case ResourceStorage:
		return "GB storage"
	default:
		return "units"
	}
}

// recommendationTargetPct is the utilization a bottleneck recommendation
// aims to restore: suggest enough extra effective capacity to bring the
// resource back down to this level.
const recommendationTargetPct = 0.70

// Bottleneck is a derived finding for one (pool, resource) pair whose
// utilization crossed the High threshold. Not stored; recomputed per report.
type Bottleneck struct {
	PoolID         string       `json:"pool_id"`
	Resource       ResourceKind `json:"resource"`
	Severity       HealthStatus `json:"severity"`
	UtilizationPct float64      `json:"utilization_pct"`
	Message        string       `json:"message"`
	Recommendation string       `json:"recommendation"`
}

// DetectBottlenecks emits a finding for every (pool, resource) pair at
// High severity or worse, sorted by severity descending then utilization
// descending so callers can present worst-first. Ties break by pool id.
func DetectBottlenecks(pools []PoolUtilization, thresholds ThresholdTable) []Bottleneck {
	var findings []Bottleneck
	for _, pu := range pools {
		for _, r := range []struct {
			kind ResourceKind
			pct  float64
			used float64
			eff  float64
		}{
			{ResourceCPU, pu.UtilizationPct.CPU, pu.Used.CPU, pu.EffectiveCapacity.CPU},
			{ResourceMemory, pu.UtilizationPct.Memory, pu.Used.Memory, pu.EffectiveCapacity.Memory},
			{ResourceStorage, pu.UtilizationPct.Storage, pu.Used.Storage, pu.EffectiveCapacity.Storage},
		} {
			severity := thresholds.Classify(r.pct)
			if severity < StatusHigh {
				continue
			}
			findings = append(findings, Bottleneck{
				PoolID:         pu.PoolID,
				Resource:       r.kind,
				Severity:       severity,
				UtilizationPct: r.pct,
				Message: fmt.Sprintf("Pool %s %s at %.1f%% of effective capacity (%s)",
					pu.PoolID, r.kind, r.pct, severity),
				Recommendation: recommendExtraCapacity(pu.PoolID, r.kind, r.used, r.eff),
			})
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return findings[i].Severity > findings[j].Severity
		}
		if findings[i].UtilizationPct != findings[j].UtilizationPct {
			return findings[i].UtilizationPct > findings[j].UtilizationPct
		}
		return findings[i].PoolID < findings[j].PoolID
	})

	return findings
}

// recommendExtraCapacity phrases the deterministic sizing rule: add
// ceil(used - 0.70 x effective) so utilization returns to 70%.
func recommendExtraCapacity(poolID string, kind ResourceKind, used, effective float64) string {
	extra := int(math.Ceil(used - recommendationTargetPct*effective))
	if extra < 1 {
		extra = 1
	}
	return fmt.Sprintf("Add ~%d %s of effective capacity to pool %s to return to 70%% utilization",
		extra, kind.unit(), poolID)
}

// RecommendationStrings flattens findings into the report's human-readable
// recommendation list, preserving worst-first order.
func RecommendationStrings(findings []Bottleneck) []string {
	if len(findings) == 0 {
		return nil
	}
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Recommendation)
	}
	return out
}
