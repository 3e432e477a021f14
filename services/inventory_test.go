// ABOUTME: Tests for the inventory service using a fake discoverer
// ABOUTME: Covers caching, invalidation, and connect/disconnect sequencing

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/markalston/placement-planner/cache"
	"github.com/markalston/placement-planner/models"
)

type fakeDiscoverer struct {
	inventory   Inventory
	connectErr  error
	discoverErr error

	connects    int
	disconnects int
	discoveries int
}

func (f *fakeDiscoverer) Connect(ctx context.Context) error {
	f.connects++
	return f.connectErr
}

func (f *fakeDiscoverer) Disconnect(ctx context.Context) error {
	f.disconnects++
	return nil
}

func (f *fakeDiscoverer) Discover(ctx context.Context) (Inventory, error) {
	f.discoveries++
	if f.discoverErr != nil {
		return Inventory{}, f.discoverErr
	}
	return f.inventory, nil
}

func testFake() *fakeDiscoverer {
	return &fakeDiscoverer{
		inventory: Inventory{
			Workloads: []models.Workload{
				{ID: "vm-1", Demand: models.ResourceVector{CPU: 2, Memory: 8, Storage: 40}},
			},
			Pools: []models.ResourcePool{
				{ID: "cluster-1", Capacity: models.ResourceVector{CPU: 64, Memory: 256, Storage: 2000}, Overcommit: models.DefaultOvercommitRatios()},
			},
		},
	}
}

func TestInventoryService_FetchDiscoversOnce(t *testing.T) {
	fake := testFake()
	svc := NewInventoryService(fake, cache.New(time.Minute), time.Minute)

	for i := 0; i < 3; i++ {
		inv, err := svc.Fetch(context.Background())
		if err != nil {
			t.Fatalf("Fetch %d failed: %v", i, err)
		}
		if len(inv.Workloads) != 1 || len(inv.Pools) != 1 {
			t.Errorf("Fetch %d: unexpected inventory %+v", i, inv)
		}
	}

	if fake.discoveries != 1 {
		t.Errorf("Expected 1 discovery across cached fetches, got %d", fake.discoveries)
	}
	if fake.connects != fake.disconnects {
		t.Errorf("Connects (%d) and disconnects (%d) must pair up", fake.connects, fake.disconnects)
	}
}

func TestInventoryService_InvalidateForcesRediscovery(t *testing.T) {
	fake := testFake()
	svc := NewInventoryService(fake, cache.New(time.Minute), time.Minute)

	if _, err := svc.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	svc.Invalidate()
	if _, err := svc.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch after invalidate failed: %v", err)
	}

	if fake.discoveries != 2 {
		t.Errorf("Expected 2 discoveries, got %d", fake.discoveries)
	}
}

func TestInventoryService_ConnectFailureSurfaces(t *testing.T) {
	fake := testFake()
	fake.connectErr = errors.New("vcenter unreachable")
	svc := NewInventoryService(fake, cache.New(time.Minute), time.Minute)

	if _, err := svc.Fetch(context.Background()); err == nil {
		t.Error("Expected connect error to surface")
	}
	if fake.discoveries != 0 {
		t.Errorf("Expected no discovery after failed connect, got %d", fake.discoveries)
	}
	if fake.disconnects != 0 {
		t.Errorf("Expected no disconnect after failed connect, got %d", fake.disconnects)
	}
}

func TestInventoryService_DiscoverFailureNotCached(t *testing.T) {
	fake := testFake()
	fake.discoverErr = errors.New("permission denied")
	svc := NewInventoryService(fake, cache.New(time.Minute), time.Minute)

	if _, err := svc.Fetch(context.Background()); err == nil {
		t.Fatal("Expected discovery error to surface")
	}

	// A failure must not poison the cache; clearing the fault recovers.
	fake.discoverErr = nil
	inv, err := svc.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch after recovery failed: %v", err)
	}
	if len(inv.Pools) != 1 {
		t.Errorf("Expected recovered inventory, got %+v", inv)
	}
}
