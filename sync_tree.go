package xtree

import "sync"

// SyncTree serializes access to an XTree: inserts and deletes take an
// exclusive lock, queries a shared one.
type SyncTree struct {
	mu   sync.RWMutex
	tree *XTree
}

var _ SpatialIndex = (*SyncTree)(nil)

// NewSyncTree creates an empty tree guarded by a lock.
func NewSyncTree(dims int, cfg Config) (*SyncTree, error) {
	t, err := New(dims, cfg)
	if err != nil {
		return nil, err
	}
	return &SyncTree{tree: t}, nil
}

// Wrap guards an existing tree. The caller must not use t directly afterwards.
func Wrap(t *XTree) *SyncTree {
	return &SyncTree{tree: t}
}

func (s *SyncTree) Insert(id int, coords []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Insert(id, coords)
}

func (s *SyncTree) Delete(id int, coords []float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Delete(id, coords)
}

func (s *SyncTree) Range(b Box) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Range(b)
}

func (s *SyncTree) NearestNeighbors(q []float64, k int) ([]Neighbor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.NearestNeighbors(q, k)
}

func (s *SyncTree) QueryKNN(queryData []float64, queryRows, k int) ([][]int, [][]float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.QueryKNN(queryData, queryRows, k)
}

func (s *SyncTree) Points() ([]int, []float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Points()
}

func (s *SyncTree) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Stats()
}

func (s *SyncTree) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Validate()
}

func (s *SyncTree) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Len()
}

func (s *SyncTree) NumPoints() int { return s.Len() }

// NumFeatures never changes, so it needs no lock.
func (s *SyncTree) NumFeatures() int { return s.tree.Dims() }
