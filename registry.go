package folderstore

import (
	"sort"
	"sync"

	pkgerrors "github.com/pkg/errors"

	"github.com/infodancer/folderstore/errors"
)

// StoreFactory builds a MsgStore of one type from its configuration.
type StoreFactory func(config StoreConfig) (MsgStore, error)

// StoreConfig selects a store type and its on-disk location.
type StoreConfig struct {
	// Type is a registered store type name, such as "maildir".
	Type string

	// BasePath is the directory holding every mailbox.
	BasePath string

	// Options holds type-specific settings. For maildir these are
	// "layout", "maildir_subdir" and "path_template".
	Options map[string]string
}

// Option returns the named option, or "" when it is unset.
func (c StoreConfig) Option(name string) string {
	return c.Options[name]
}

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]StoreFactory)
)

// Register makes a store type available to Open. Store packages call it
// from init. It panics on an empty name, a nil factory or a duplicate name.
func Register(name string, factory StoreFactory) {
	switch {
	case name == "":
		panic("folderstore: Register called with empty name")
	case factory == nil:
		panic("folderstore: Register called with nil factory for " + name)
	}

	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, dup := factories[name]; dup {
		panic("folderstore: Register called twice for " + name)
	}
	factories[name] = factory
}

// Open builds the store described by config. Errors wrap
// ErrStoreNotRegistered or the factory's own error with the store type.
func Open(config StoreConfig) (MsgStore, error) {
	factoriesMu.RLock()
	factory, ok := factories[config.Type]
	factoriesMu.RUnlock()
	if !ok {
		return nil, pkgerrors.Wrapf(errors.ErrStoreNotRegistered, "store type %q", config.Type)
	}

	store, err := factory(config)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "open %s store at %s", config.Type, config.BasePath)
	}
	return store, nil
}

// OpenFile loads a TOML store config from path and opens it.
func OpenFile(path string) (MsgStore, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return Open(config)
}

// RegisteredTypes returns the registered store type names, sorted.
func RegisteredTypes() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
