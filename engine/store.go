// ABOUTME: Placement store: single source of truth for workload-to-pool assignment
// ABOUTME: Forward map plus reverse index, with command-pattern undo/redo history

package engine

import (
	"fmt"
	"sort"

	"github.com/markalston/placement-planner/models"
)

// moveOp records one workload's placement changing from one pool to
// another. An empty pool id means unplaced.
type moveOp struct {
	workloadID string
	from       string
	to         string
}

// command is one history entry. A manual move is a single op; an automatic
// plan run is one command holding every op, so a single undo reverts the
// whole run.
type command struct {
	ops []moveOp
}

// PlacementStore holds the current assignment and the inventory it refers
// to. Every mutation is a single logical transaction: validation happens
// before any state changes, so no partial-apply state is observable. The
// store itself is not goroutine-safe; the owning session serializes access.
type PlacementStore struct {
	workloads map[string]models.Workload
	pools     map[string]models.ResourcePool
	poolOrder []string

	forward map[string]string              // workload id -> pool id
	reverse map[string]map[string]struct{} // pool id -> workload ids

	undo []command
	redo []command
}

// NewPlacementStore returns an empty store with no inventory.
func NewPlacementStore() *PlacementStore {
	s := &PlacementStore{}
	s.Reset(nil, nil)
	return s
}

// Reset replaces the entire inventory, clearing all placements and history.
// Workload and pool ids must be unique; pool load order is preserved so the
// planner can iterate candidates in a stable, caller-provided order.
func (s *PlacementStore) Reset(workloads []models.Workload, pools []models.ResourcePool) error {
	ws := make(map[string]models.Workload, len(workloads))
	for _, w := range workloads {
		if _, exists := ws[w.ID]; exists {
			return fmt.Errorf("%w: workload %s", ErrDuplicateID, w.ID)
		}
		ws[w.ID] = w
	}

	ps := make(map[string]models.ResourcePool, len(pools))
	order := make([]string, 0, len(pools))
	for _, p := range pools {
		if _, exists := ps[p.ID]; exists {
			return fmt.Errorf("%w: pool %s", ErrDuplicateID, p.ID)
		}
		ps[p.ID] = p
		order = append(order, p.ID)
	}

	s.workloads = ws
	s.pools = ps
	s.poolOrder = order
	s.forward = make(map[string]string)
	s.reverse = make(map[string]map[string]struct{})
	s.undo = nil
	s.redo = nil
	return nil
}

// Workload looks up a workload by id.
func (s *PlacementStore) Workload(id string) (models.Workload, bool) {
	w, ok := s.workloads[id]
	return w, ok
}

// Pool looks up a pool by id.
func (s *PlacementStore) Pool(id string) (models.ResourcePool, bool) {
	p, ok := s.pools[id]
	return p, ok
}

// Workloads returns all workloads sorted by id.
func (s *PlacementStore) Workloads() []models.Workload {
	out := make([]models.Workload, 0, len(s.workloads))
	for _, w := range s.workloads {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Pools returns all pools in load order.
func (s *PlacementStore) Pools() []models.ResourcePool {
	out := make([]models.ResourcePool, 0, len(s.poolOrder))
	for _, id := range s.poolOrder {
		out = append(out, s.pools[id])
	}
	return out
}

// WorkloadCount returns the number of registered workloads.
func (s *PlacementStore) WorkloadCount() int { return len(s.workloads) }

// PoolCount returns the number of registered pools.
func (s *PlacementStore) PoolCount() int { return len(s.poolOrder) }

// PoolFor returns the pool a workload is placed in, if any.
func (s *PlacementStore) PoolFor(workloadID string) (string, bool) {
	p, ok := s.forward[workloadID]
	return p, ok
}

// Placements returns a copy of the forward map.
func (s *PlacementStore) Placements() map[string]string {
	out := make(map[string]string, len(s.forward))
	for w, p := range s.forward {
		out[w] = p
	}
	return out
}

// PlacementsForPool returns the ids of workloads placed in a pool, sorted
// for determinism. O(k) in the workloads placed in that pool.
func (s *PlacementStore) PlacementsForPool(poolID string) ([]string, error) {
	if _, ok := s.pools[poolID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPool, poolID)
	}
	set := s.reverse[poolID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// UnplacedWorkloads returns workloads without a placement, sorted by id.
func (s *PlacementStore) UnplacedWorkloads() []models.Workload {
	var out []models.Workload
	for id, w := range s.workloads {
		if _, placed := s.forward[id]; !placed {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Assign places a workload into a pool, removing any prior placement
// first. Re-assigning to the same pool is a no-op and records no history.
func (s *PlacementStore) Assign(workloadID, poolID string) error {
	if _, ok := s.workloads[workloadID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWorkload, workloadID)
	}
	if _, ok := s.pools[poolID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPool, poolID)
	}
	current := s.forward[workloadID]
	if current == poolID {
		return nil
	}
	op := moveOp{workloadID: workloadID, from: current, to: poolID}
	s.apply(op)
	s.push(command{ops: []moveOp{op}})
	return nil
}

// Unassign removes a workload's placement. Unassigning an already
// unplaced workload is a no-op, not an error, and records no history.
func (s *PlacementStore) Unassign(workloadID string) error {
	if _, ok := s.workloads[workloadID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWorkload, workloadID)
	}
	current, placed := s.forward[workloadID]
	if !placed {
		return nil
	}
	op := moveOp{workloadID: workloadID, from: current, to: ""}
	s.apply(op)
	s.push(command{ops: []moveOp{op}})
	return nil
}

// applyBatch applies a set of ops as one history entry. Ops referencing
// unknown ids are the caller's bug; they must be validated beforehand.
func (s *PlacementStore) applyBatch(ops []moveOp) {
	if len(ops) == 0 {
		return
	}
	for _, op := range ops {
		s.apply(op)
	}
	s.push(command{ops: ops})
}

// Undo reverts the most recent command and pushes it onto the redo stack.
func (s *PlacementStore) Undo() error {
	if len(s.undo) == 0 {
		return ErrNothingToUndo
	}
	cmd := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	for i := len(cmd.ops) - 1; i >= 0; i-- {
		op := cmd.ops[i]
		s.apply(moveOp{workloadID: op.workloadID, from: op.to, to: op.from})
	}
	s.redo = append(s.redo, cmd)
	return nil
}

// Redo re-applies the most recently undone command.
func (s *PlacementStore) Redo() error {
	if len(s.redo) == 0 {
		return ErrNothingToRedo
	}
	cmd := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	for _, op := range cmd.ops {
		s.apply(op)
	}
	s.undo = append(s.undo, cmd)
	return nil
}

// CanUndo reports whether the undo stack is non-empty.
func (s *PlacementStore) CanUndo() bool { return len(s.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (s *PlacementStore) CanRedo() bool { return len(s.redo) > 0 }

// UpdatePool replaces a pool's definition mid-session. Placements stand;
// utilization is derived on demand so nothing cached needs patching.
func (s *PlacementStore) UpdatePool(pool models.ResourcePool) error {
	if _, ok := s.pools[pool.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPool, pool.ID)
	}
	s.pools[pool.ID] = pool
	return nil
}

// UpdateWorkload replaces a workload's definition (a demand correction is
// a new version). Any placement referencing the old version is removed,
// and history is cleared since its inverse ops describe the old demand.
func (s *PlacementStore) UpdateWorkload(w models.Workload) error {
	if _, ok := s.workloads[w.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWorkload, w.ID)
	}
	s.workloads[w.ID] = w
	if pool, placed := s.forward[w.ID]; placed {
		s.apply(moveOp{workloadID: w.ID, from: pool, to: ""})
	}
	s.undo = nil
	s.redo = nil
	return nil
}

// RemoveWorkload drops a workload from the session, purging its placement
// so no stale reference survives. History is cleared for the same reason
// as UpdateWorkload.
func (s *PlacementStore) RemoveWorkload(id string) error {
	if _, ok := s.workloads[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWorkload, id)
	}
	if pool, placed := s.forward[id]; placed {
		s.apply(moveOp{workloadID: id, from: pool, to: ""})
	}
	delete(s.workloads, id)
	s.undo = nil
	s.redo = nil
	return nil
}

// apply mutates the forward map and reverse index for one op.
func (s *PlacementStore) apply(op moveOp) {
	if op.from != "" {
		delete(s.reverse[op.from], op.workloadID)
		if len(s.reverse[op.from]) == 0 {
			delete(s.reverse, op.from)
		}
		delete(s.forward, op.workloadID)
	}
	if op.to != "" {
		s.forward[op.workloadID] = op.to
		if s.reverse[op.to] == nil {
			s.reverse[op.to] = make(map[string]struct{})
		}
		s.reverse[op.to][op.workloadID] = struct{}{}
	}
}

// push appends a command to the undo stack and discards the redo stack,
// matching standard linear editor history.
func (s *PlacementStore) push(cmd command) {
	s.undo = append(s.undo, cmd)
	s.redo = nil
}
