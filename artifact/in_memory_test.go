package artifact

import (
	"fmt"
	"sync"
	"testing"

	"github.com/sudhirerahul/meta-creation-agents/core"
)

// Interface compliance (compile-time assertions)
var _ core.ArtifactStore = (*InMemoryStore)(nil)

func TestInMemoryArtifactStore_SaveGetIsolation(t *testing.T) {
	svc := NewInMemoryStore()
	data := []byte("hello")
	if err := svc.Save("Creator", "agent_a.yaml", data); err != nil {
		t.Fatalf("save: %v", err)
	}
	// mutate original slice
	data[0] = 'H'
	out, err := svc.Get("Creator", "agent_a.yaml")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(out) != "hello" {
		t.Fatalf("expected 'hello', got %q", string(out))
	}
	// mutate returned slice
	out[0] = 'x'
	out2, _ := svc.Get("Creator", "agent_a.yaml")
	if string(out2) != "hello" {
		t.Fatalf("expected isolation, got %q", string(out2))
	}
}

func TestInMemoryArtifactStore_ListAndDelete(t *testing.T) {
	svc := NewInMemoryStore()
	if err := svc.Save("Creator", "b.yaml", []byte("2")); err != nil {
		t.Fatal(err)
	}
	if err := svc.Save("Creator", "a.yaml", []byte("1")); err != nil {
		t.Fatal(err)
	}
	ids, err := svc.List("Creator")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "a.yaml" {
		t.Fatalf("expected sorted ids, got %v", ids)
	}
	if err := svc.Delete("Creator", "a.yaml"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete("Creator", "a.yaml"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Get("other", "a.yaml"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryArtifactStore_Concurrent(t *testing.T) {
	svc := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = svc.Save("results", fmt.Sprintf("agent_%d_result.md", i), []byte("x"))
		}(i)
	}
	wg.Wait()
	ids, _ := svc.List("results")
	if len(ids) != 50 {
		t.Fatalf("expected 50 ids, got %d", len(ids))
	}
}
