// Package lineage contains concrete LineageStore implementations. The store
// interface and Edge type reside in the core package; select an
// implementation (like the in‑memory store below) at wiring time.
package lineage
