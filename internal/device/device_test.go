package device

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func newTestProvider(t *testing.T) (*Provider, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "installation_id")
	p, err := NewProvider(path)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	return p, path
}

func TestIDGeneratesAndPersists(t *testing.T) {
	p, path := newTestProvider(t)

	id, err := p.ID()
	if err != nil {
		t.Fatalf("ID failed: %v", err)
	}
	if id == "" {
		t.Fatal("empty installation id")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("id file not written: %v", err)
	}
	if strings.TrimSpace(string(data)) != id {
		t.Errorf("persisted id %q does not match returned id %q", data, id)
	}
}

func TestIDStableAcrossCalls(t *testing.T) {
	p, _ := newTestProvider(t)

	first, err := p.ID()
	if err != nil {
		t.Fatalf("ID failed: %v", err)
	}
	second, err := p.ID()
	if err != nil {
		t.Fatalf("ID failed: %v", err)
	}
	if first != second {
		t.Errorf("id changed between calls: %q vs %q", first, second)
	}
}

func TestIDReadsExistingFile(t *testing.T) {
	p, path := newTestProvider(t)

	if err := os.WriteFile(path, []byte("existing-id\n"), 0600); err != nil {
		t.Fatalf("failed to seed id file: %v", err)
	}

	id, err := p.ID()
	if err != nil {
		t.Fatalf("ID failed: %v", err)
	}
	if id != "existing-id" {
		t.Errorf("id = %q, want the persisted value", id)
	}
}

func TestIDConcurrentFirstCall(t *testing.T) {
	p, path := newTestProvider(t)

	const goroutines = 10
	ids := make([]string, goroutines)
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := p.ID()
			if err != nil {
				t.Errorf("ID failed: %v", err)
				return
			}
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("concurrent callers saw different ids: %q vs %q", ids[0], ids[i])
		}
	}

	// Exactly one value was persisted.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("id file not written: %v", err)
	}
	if strings.TrimSpace(string(data)) != ids[0] {
		t.Errorf("persisted id %q does not match %q", data, ids[0])
	}
}

func TestClearCacheKeepsPersistedID(t *testing.T) {
	p, path := newTestProvider(t)

	first, err := p.ID()
	if err != nil {
		t.Fatalf("ID failed: %v", err)
	}

	p.ClearCache()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("ClearCache touched persisted storage: %v", err)
	}

	second, err := p.ID()
	if err != nil {
		t.Fatalf("ID failed after ClearCache: %v", err)
	}
	if first != second {
		t.Errorf("id changed after cache clear: %q vs %q", first, second)
	}
}
