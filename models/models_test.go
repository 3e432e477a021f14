// ABOUTME: Tests for workload and pool validation and effective capacity
// ABOUTME: Covers HA reserve math across policy and node-count combinations

package models

import (
	"math"
	"testing"
)

func TestWorkload_Validate(t *testing.T) {
	tests := []struct {
		name    string
		w       Workload
		wantErr bool
	}{
		{"valid", Workload{ID: "vm-1", Demand: ResourceVector{CPU: 2, Memory: 8, Storage: 40}}, false},
		{"zero demand is valid", Workload{ID: "vm-2"}, false},
		{"empty id", Workload{Demand: ResourceVector{CPU: 1}}, true},
		{"negative demand", Workload{ID: "vm-3", Demand: ResourceVector{CPU: -1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.w.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestResourcePool_Validate(t *testing.T) {
	valid := ResourcePool{
		ID:         "pool-1",
		Capacity:   ResourceVector{CPU: 100, Memory: 400, Storage: 2000},
		Overcommit: DefaultOvercommitRatios(),
	}

	tests := []struct {
		name    string
		mutate  func(p ResourcePool) ResourcePool
		wantErr bool
	}{
		{"valid", func(p ResourcePool) ResourcePool { return p }, false},
		{"empty id", func(p ResourcePool) ResourcePool { p.ID = ""; return p }, true},
		{"negative capacity", func(p ResourcePool) ResourcePool { p.Capacity.Memory = -1; return p }, true},
		{"bad ratio", func(p ResourcePool) ResourcePool { p.Overcommit.CPU = 0.5; return p }, true},
		{"unknown ha policy", func(p ResourcePool) ResourcePool { p.HAPolicy = "n+3"; return p }, true},
		{"negative node count", func(p ResourcePool) ResourcePool { p.NodeCount = -2; return p }, true},
		{"empty ha policy ok", func(p ResourcePool) ResourcePool { p.HAPolicy = ""; return p }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(valid).Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestResourcePool_EffectiveCapacity(t *testing.T) {
	capacity := ResourceVector{CPU: 100, Memory: 200, Storage: 1000}
	ratios := OvercommitRatios{CPU: 4.0, Memory: 1.5, Storage: 1.0}

	tests := []struct {
		name string
		pool ResourcePool
		want ResourceVector
	}{
		{
			name: "no ha policy",
			pool: ResourcePool{ID: "p", Capacity: capacity, Overcommit: ratios},
			want: ResourceVector{CPU: 400, Memory: 300, Storage: 1000},
		},
		{
			name: "n+1 over four nodes withholds a quarter",
			pool: ResourcePool{ID: "p", Capacity: capacity, Overcommit: ratios, HAPolicy: HANPlusOne, NodeCount: 4},
			want: ResourceVector{CPU: 300, Memory: 225, Storage: 750},
		},
		{
			name: "n+2 over four nodes withholds half",
			pool: ResourcePool{ID: "p", Capacity: capacity, Overcommit: ratios, HAPolicy: HANPlusTwo, NodeCount: 4},
			want: ResourceVector{CPU: 200, Memory: 150, Storage: 500},
		},
		{
			name: "reserve swallows every node",
			pool: ResourcePool{ID: "p", Capacity: capacity, Overcommit: ratios, HAPolicy: HANPlusOne, NodeCount: 1},
			want: ResourceVector{},
		},
		{
			name: "ha policy without node count drops the reserve",
			pool: ResourcePool{ID: "p", Capacity: capacity, Overcommit: ratios, HAPolicy: HANPlusOne},
			want: ResourceVector{CPU: 400, Memory: 300, Storage: 1000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.pool.EffectiveCapacity()
			if !vectorsClose(got, tt.want) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func vectorsClose(a, b ResourceVector) bool {
	const eps = 1e-9
	return math.Abs(a.CPU-b.CPU) < eps &&
		math.Abs(a.Memory-b.Memory) < eps &&
		math.Abs(a.Storage-b.Storage) < eps
}
