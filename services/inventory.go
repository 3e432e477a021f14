// ABOUTME: Inventory service wrapping vSphere discovery with caching
// ABOUTME: Singleflight collapses concurrent fetches into one vCenter walk

package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/markalston/placement-planner/cache"
)

const inventoryCacheKey = "inventory:vsphere"

// discoverer is the subset of VSphereClient the service needs; tests
// substitute a fake.
type discoverer interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Discover(ctx context.Context) (Inventory, error)
}

// InventoryService serves inventory snapshots for seeding sessions. A
// vCenter walk over a few hundred VMs takes seconds, so results are
// cached with a TTL and concurrent callers share one in-flight fetch.
type InventoryService struct {
	client discoverer
	cache  *cache.Cache
	ttl    time.Duration
	group  singleflight.Group
}

// NewInventoryService creates the service.
func NewInventoryService(client discoverer, c *cache.Cache, ttl time.Duration) *InventoryService {
	return &InventoryService{client: client, cache: c, ttl: ttl}
}

// Fetch returns the current inventory, from cache when fresh.
func (s *InventoryService) Fetch(ctx context.Context) (Inventory, error) {
	if cached, ok := s.cache.Get(inventoryCacheKey); ok {
		if inv, ok := cached.(Inventory); ok {
			return inv, nil
		}
	}

	result, err, shared := s.group.Do(inventoryCacheKey, func() (interface{}, error) {
		inv, err := s.discover(ctx)
		if err != nil {
			return Inventory{}, err
		}
		s.cache.SetWithTTL(inventoryCacheKey, inv, s.ttl)
		return inv, nil
	})
	if err != nil {
		return Inventory{}, err
	}
	if shared {
		slog.Debug("Inventory fetch shared with concurrent caller")
	}
	return result.(Inventory), nil
}

// Invalidate drops the cached snapshot so the next Fetch rediscovers.
func (s *InventoryService) Invalidate() {
	s.cache.Delete(inventoryCacheKey)
}

func (s *InventoryService) discover(ctx context.Context) (Inventory, error) {
	if err := s.client.Connect(ctx); err != nil {
		return Inventory{}, err
	}
	defer func() {
		if err := s.client.Disconnect(ctx); err != nil {
			slog.Warn("vSphere disconnect failed", "error", err)
		}
	}()
	return s.client.Discover(ctx)
}
