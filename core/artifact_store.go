package core

// ArtifactStore defines the interface for artifact persistence. Implementations
// should be thread-safe and scope artifacts by namespace (a Creator name, or
// "results" for batch outputs). Short method names (Save/Get/List/Delete)
// mirror other store interfaces for consistency.
type ArtifactStore interface {
	Save(namespace, artifactID string, data []byte) error
	Get(namespace, artifactID string) ([]byte, error)
	List(namespace string) ([]string, error)
	Delete(namespace, artifactID string) error
}
