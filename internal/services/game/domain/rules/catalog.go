package rules

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Catalog loads rules once per instance. An empty path serves Default.
type Catalog struct {
	path string

	mu     sync.Mutex
	loaded bool
	rules  Rules
}

// NewCatalog returns a catalog reading overrides from path.
func NewCatalog(path string) *Catalog {
	return &Catalog{path: strings.TrimSpace(path)}
}

// Rules returns the cached table, loading it on first use. Failed loads are
// not cached.
func (c *Catalog) Rules() (Rules, error) {
	if c == nil {
		return Default(), nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.rules, nil
	}
	r, err := c.load()
	if err != nil {
		return Rules{}, err
	}
	c.rules = r
	c.loaded = true
	return r, nil
}

// Reload drops the cached table so the next Rules call reads the file again.
func (c *Catalog) Reload() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.rules = Rules{}
}

func (c *Catalog) load() (Rules, error) {
	if c.path == "" {
		return Default(), nil
	}
	return Load(c.path)
}

// Load reads JSON overrides from path.
func Load(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules %s: %w", path, err)
	}
	return Parse(data)
}
