package core

import "time"

// SpawnKind distinguishes what a Creator produced.
type SpawnKind string

const (
	// SpawnAgent marks a plain agent.
	SpawnAgent SpawnKind = "agent"
	// SpawnCreator marks a new Creator.
	SpawnCreator SpawnKind = "creator"
)

// Edge links a Creator to a type it registered.
type Edge struct {
	Parent    string    `json:"parent"`
	Child     string    `json:"child"`
	Kind      SpawnKind `json:"kind"`
	Depth     int       `json:"depth"`
	RequestID string    `json:"request_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LineageStore records the family tree of created types.
type LineageStore interface {
	// Record stores an edge. Each child has at most one parent.
	Record(edge Edge) error
	// Children returns the edges whose parent is name, in creation order.
	Children(name string) ([]Edge, error)
	// Ancestry returns the edges from name up to its root, nearest first.
	Ancestry(name string) ([]Edge, error)
	// Roots returns the names that appear as parents but were never created.
	Roots() ([]string, error)
}
