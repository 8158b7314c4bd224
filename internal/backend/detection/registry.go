package detection

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// DetectorRegistry manages the registration and creation of detectors
type DetectorRegistry struct {
	mu        sync.RWMutex
	factories map[string]DetectorFactory
}

// NewDetectorRegistry creates a new detector registry
func NewDetectorRegistry() *DetectorRegistry {
	return &DetectorRegistry{
		factories: make(map[string]DetectorFactory),
	}
}

// Register adds a detector factory to the registry
func (r *DetectorRegistry) Register(name string, factory DetectorFactory) error {
	if name == "" {
		return fmt.Errorf("detector name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("detector factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("detector %s is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Create instantiates a detector by name with the given parameters
func (r *DetectorRegistry) Create(ctx context.Context, name string, params map[string]any) (Detector, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("unknown detector: %s (registered: %v)", name, r.GetRegisteredNames())
	}

	detector, err := factory(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create detector %s: %w", name, err)
	}

	return detector, nil
}

// IsRegistered checks if a detector with the given name is registered
func (r *DetectorRegistry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[name]
	return exists
}

// GetRegisteredNames returns the sorted names of all registered detectors
func (r *DetectorRegistry) GetRegisteredNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds every built-in detector, registered from init functions.
var DefaultRegistry = NewDetectorRegistry()
