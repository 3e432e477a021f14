// ABOUTME: Health status tiers and the threshold table that classifies utilization
// ABOUTME: Boundaries are lower-bound inclusive; exactly 60.0 is Moderate, not Healthy

package models

import (
	"fmt"
	"math"
)

// HealthStatus is a severity tier for a utilization figure. Higher values
// are worse; the zero value is Healthy.
type HealthStatus int

const (
	StatusHealthy HealthStatus = iota
	StatusModerate
	StatusHigh
	StatusCritical
	StatusOverCapacity
)

// String returns the lowercase wire name of the status.
func (s HealthStatus) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusModerate:
		return "moderate"
	case StatusHigh:
		return "high"
	case StatusCritical:
		return "critical"
	case StatusOverCapacity:
		return "over_capacity"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the status as its string name.
func (s HealthStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON parses the string name back into a status.
func (s *HealthStatus) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"healthy"`:
		*s = StatusHealthy
	case `"moderate"`:
		*s = StatusModerate
	case `"high"`:
		*s = StatusHigh
	case `"critical"`:
		*s = StatusCritical
	case `"over_capacity"`:
		*s = StatusOverCapacity
	default:
		return fmt.Errorf("unknown health status %s", string(data))
	}
	return nil
}

// MaxStatus returns the worse of two statuses.
func MaxStatus(a, b HealthStatus) HealthStatus {
	if b > a {
		return b
	}
	return a
}

// ThresholdTable holds the lower bound, in utilization percent, of each
// non-healthy tier. Anything below Moderate is Healthy. Bounds are
// inclusive: a value exactly equal to a bound lands in that tier.
type ThresholdTable struct {
	Moderate     float64 `json:"moderate"`
	High         float64 `json:"high"`
	Critical     float64 `json:"critical"`
	OverCapacity float64 `json:"over_capacity"`
}

// DefaultThresholds returns the standard tier boundaries.
func DefaultThresholds() ThresholdTable {
	return ThresholdTable{
		Moderate:     60,
		High:         80,
		Critical:     90,
		OverCapacity: 95,
	}
}

// Validate rejects non-finite or non-ascending boundaries.
func (t ThresholdTable) Validate() error {
	bounds := []float64{t.Moderate, t.High, t.Critical, t.OverCapacity}
	prev := math.Inf(-1)
	for _, b := range bounds {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return fmt.Errorf("%w: threshold bound %v", ErrInvalidResourceValue, b)
		}
		if b <= prev {
			return fmt.Errorf("%w: threshold bounds must be strictly ascending", ErrInvalidResourceValue)
		}
		prev = b
	}
	return nil
}

// Classify maps a utilization percentage onto its severity tier.
// Percentages above 100 are valid input and classify as OverCapacity.
func (t ThresholdTable) Classify(pct float64) HealthStatus {
	switch {
	case pct >= t.OverCapacity:
		return StatusOverCapacity
	case pct >= t.Critical:
		return StatusCritical
	case pct >= t.High:
		return StatusHigh
	case pct >= t.Moderate:
		return StatusModerate
	default:
		return StatusHealthy
	}
}
