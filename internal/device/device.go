// Package device supplies the stable per-installation identifier.
package device

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fitsync/internal/utils"

	"github.com/google/uuid"
)

// idFileName is the file holding the persisted identifier under the
// fitsync data directory
const idFileName = "installation_id"

// Provider lazily creates and memoizes the installation identifier.
// The identifier is generated once per install, persisted, and cached in
// memory for the process lifetime. The mutex makes first-call races safe:
// only one generated value is ever persisted and returned, even when many
// goroutines reach the "absent" branch together.
type Provider struct {
	mu     sync.Mutex
	path   string
	cached string
}

// NewProvider creates a provider persisting at the given path, or at the
// default data-dir location when path is empty
func NewProvider(path string) (*Provider, error) {
	if path == "" {
		p, err := utils.DataPath(idFileName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve installation id path: %w", err)
		}
		path = p
	}
	return &Provider{path: path}, nil
}

// ID returns the installation identifier, generating and persisting it on
// the first call for a fresh install
func (p *Provider) ID() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != "" {
		return p.cached, nil
	}

	data, err := os.ReadFile(p.path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if id != "" {
			p.cached = id
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read installation id: %w", err)
	}

	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(p.path, []byte(id+"\n"), 0600); err != nil {
		return "", fmt.Errorf("failed to persist installation id: %w", err)
	}

	utils.Debugf("[Device] generated installation id %s", id)
	p.cached = id
	return id, nil
}

// ClearCache drops the in-memory copy. It exists for test isolation only
// and never alters persisted storage.
func (p *Provider) ClearCache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = ""
}
