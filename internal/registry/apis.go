package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Common API registry errors.
var (
	ErrAPINotFound   = errors.New("component api not found")
	ErrAPIRegistered = errors.New("component api already registered")
)

// APIs maps stable names to imperative component operations.
type APIs struct {
	mu  sync.RWMutex
	ops map[string]func()
}

// NewAPIs creates an empty registry.
func NewAPIs() *APIs {
	return &APIs{ops: make(map[string]func())}
}

// Register adds op under name. Registering a taken name fails.
func (r *APIs) Register(name string, op func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ops[name]; ok {
		return fmt.Errorf("%w: %s", ErrAPIRegistered, name)
	}
	r.ops[name] = op
	return nil
}

// Unregister removes name. Removing an unknown name is a no-op.
func (r *APIs) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ops, name)
}

// Call runs the operation registered under name.
func (r *APIs) Call(name string) error {
	r.mu.RLock()
	op, ok := r.ops[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrAPINotFound, name)
	}
	op()
	return nil
}

// Names returns the registered names in sorted order.
func (r *APIs) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
