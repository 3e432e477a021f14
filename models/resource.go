// ABOUTME: ResourceVector arithmetic and validation for capacity math
// ABOUTME: Component-wise operations over CPU, memory, and storage figures

package models

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidResourceValue indicates a negative, NaN, or infinite resource figure.
// Raised at load time, before any placement math runs.
var ErrInvalidResourceValue = errors.New("invalid resource value")

// ResourceVector holds one figure per resource dimension.
// Units are caller-normalized: CPU in cores, memory and storage in GB.
// The same shape carries demand, capacity, and utilization percentages.
type ResourceVector struct {
	CPU     float64 `json:"cpu"`
	Memory  float64 `json:"memory"`
	Storage float64 `json:"storage"`
}

// Validate rejects negative and non-finite components.
func (v ResourceVector) Validate() error {
	for _, c := range []struct {
		name  string
		value float64
	}{
		{"cpu", v.CPU},
		{"memory", v.Memory},
		{"storage", v.Storage},
	} {
		if c.value < 0 || math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return fmt.Errorf("%w: %s = %v", ErrInvalidResourceValue, c.name, c.value)
		}
	}
	return nil
}

// Add returns the component-wise sum.
func (v ResourceVector) Add(o ResourceVector) ResourceVector {
	return ResourceVector{
		CPU:     v.CPU + o.CPU,
		Memory:  v.Memory + o.Memory,
		Storage: v.Storage + o.Storage,
	}
}

// Subtract returns the component-wise difference.
func (v ResourceVector) Subtract(o ResourceVector) ResourceVector {
	return ResourceVector{
		CPU:     v.CPU - o.CPU,
		Memory:  v.Memory - o.Memory,
		Storage: v.Storage - o.Storage,
	}
}

// Scale multiplies each component by its overcommit ratio.
func (v ResourceVector) Scale(r OvercommitRatios) ResourceVector {
	return ResourceVector{
		CPU:     v.CPU * r.CPU,
		Memory:  v.Memory * r.Memory,
		Storage: v.Storage * r.Storage,
	}
}

// Divide returns the component-wise quotient. A zero denominator yields
// zero for that component (empty pool with no demand is 0% utilization,
// not NaN). Negative or non-finite inputs are rejected.
func (v ResourceVector) Divide(o ResourceVector) (ResourceVector, error) {
	if err := v.Validate(); err != nil {
		return ResourceVector{}, err
	}
	if err := o.Validate(); err != nil {
		return ResourceVector{}, err
	}
	return ResourceVector{
		CPU:     safeQuotient(v.CPU, o.CPU),
		Memory:  safeQuotient(v.Memory, o.Memory),
		Storage: safeQuotient(v.Storage, o.Storage),
	}, nil
}

// IsZero reports whether all components are exactly zero.
func (v ResourceVector) IsZero() bool {
	return v.CPU == 0 && v.Memory == 0 && v.Storage == 0
}

// mulScalar multiplies every component by f.
func (v ResourceVector) mulScalar(f float64) ResourceVector {
	return ResourceVector{
		CPU:     v.CPU * f,
		Memory:  v.Memory * f,
		Storage: v.Storage * f,
	}
}

func safeQuotient(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// OvercommitRatios are the per-resource multipliers applied to raw capacity
// to obtain effective capacity. All ratios must be >= 1.0; storage is
// conventionally 1.0 since thin-provisioning risk is not modeled.
type OvercommitRatios struct {
	CPU     float64 `json:"cpu_ratio"`
	Memory  float64 `json:"memory_ratio"`
	Storage float64 `json:"storage_ratio"`
}

// DefaultOvercommitRatios returns conservative vSphere-style defaults:
// 4:1 vCPU:pCPU, 1.5:1 memory, no storage oversubscription.
func DefaultOvercommitRatios() OvercommitRatios {
	return OvercommitRatios{CPU: 4.0, Memory: 1.5, Storage: 1.0}
}

// Validate rejects ratios below 1.0 and non-finite values.
func (r OvercommitRatios) Validate() error {
	for _, c := range []struct {
		name  string
		value float64
	}{
		{"cpu_ratio", r.CPU},
		{"memory_ratio", r.Memory},
		{"storage_ratio", r.Storage},
	} {
		if c.value < 1.0 || math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return fmt.Errorf("%w: %s = %v (must be >= 1.0)", ErrInvalidResourceValue, c.name, c.value)
		}
	}
	return nil
}
