package lineage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sudhirerahul/meta-creation-agents/core"
)

// InMemoryStore is a process‑local LineageStore. Edges are kept in insertion
// order and indexed by parent and by child.
//
// Concurrency: protected by RWMutex.
type InMemoryStore struct {
	mu       sync.RWMutex
	edges    []core.Edge
	byParent map[string][]int
	byChild  map[string]int
}

// NewInMemoryStore creates a new in-memory lineage store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byParent: make(map[string][]int),
		byChild:  make(map[string]int),
	}
}

// Record appends an edge. A child can only be recorded once, matching the
// runtime's one-factory-per-type rule.
func (s *InMemoryStore) Record(edge core.Edge) error {
	if edge.Parent == "" || edge.Child == "" {
		return fmt.Errorf("lineage edge requires parent and child")
	}
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byChild[edge.Child]; exists {
		return fmt.Errorf("lineage for %q already recorded", edge.Child)
	}
	idx := len(s.edges)
	s.edges = append(s.edges, edge)
	s.byParent[edge.Parent] = append(s.byParent[edge.Parent], idx)
	s.byChild[edge.Child] = idx
	return nil
}

// Children returns the edges whose parent is name, in creation order.
func (s *InMemoryStore) Children(name string) ([]core.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idxs := s.byParent[name]
	res := make([]core.Edge, 0, len(idxs))
	for _, i := range idxs {
		res = append(res, s.edges[i])
	}
	return res, nil
}

// Ancestry walks from name up to its root, nearest edge first.
func (s *InMemoryStore) Ancestry(name string) ([]core.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []core.Edge
	seen := map[string]bool{}
	for cur := name; ; {
		idx, ok := s.byChild[cur]
		if !ok || seen[cur] {
			break
		}
		seen[cur] = true
		e := s.edges[idx]
		res = append(res, e)
		cur = e.Parent
	}
	return res, nil
}

// Roots returns the sorted names that appear as parents but were never
// recorded as children.
func (s *InMemoryStore) Roots() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roots := make([]string, 0)
	for parent := range s.byParent {
		if _, created := s.byChild[parent]; !created {
			roots = append(roots, parent)
		}
	}
	sort.Strings(roots)
	return roots, nil
}

// Edges returns a snapshot of every recorded edge in insertion order.
func (s *InMemoryStore) Edges() []core.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Edge(nil), s.edges...)
}
