package gasproviders

import (
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]GasProvider)
)

// Register registers a gas provider.
// This is typically called from an init() function in each provider package.
func Register(p GasProvider) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if p == nil {
		panic("gasproviders: Register provider is nil")
	}
	if _, dup := registry[p.Key()]; dup {
		panic("gasproviders: Register called twice for provider " + p.Key())
	}
	registry[p.Key()] = p
}

// Get returns a gas provider by key.
func Get(key string) (GasProvider, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[key]
	return p, ok
}

// List returns a sorted list of registered gas provider keys.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	var keys []string
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetAll returns all registered gas providers sorted by key.
func GetAll() []GasProvider {
	registryMu.RLock()
	defer registryMu.RUnlock()
	var keys []string
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]GasProvider, 0, len(keys))
	for _, k := range keys {
		out = append(out, registry[k])
	}
	return out
}
