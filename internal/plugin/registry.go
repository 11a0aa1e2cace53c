package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/mlaporte/confset/internal/config"
	"github.com/mlaporte/confset/internal/logger"
	confseterrors "github.com/mlaporte/confset/pkg/errors"
)

// Factory builds a unit processor for a single unit.
type Factory func(unit *config.Unit, log *logger.Logger) (UnitProcessor, error)

// Registry maps unit types to processor factories and acts as the default
// SetProcessor implementation.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	log       *logger.Logger
}

var _ SetProcessor = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		log:       log,
	}
}

// Register adds a factory for the provided unit type.
func (r *Registry) Register(unitType string, factory Factory) error {
	if unitType == "" {
		return confseterrors.NewProcessorError(unitType, fmt.Errorf("unit type is empty"))
	}
	if factory == nil {
		return confseterrors.NewProcessorError(unitType, fmt.Errorf("factory is nil"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[unitType]; exists {
		return confseterrors.NewProcessorError(unitType, fmt.Errorf("factory already registered"))
	}

	r.factories[unitType] = factory
	return nil
}

// Types returns the registered unit types.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for unitType := range r.factories {
		types = append(types, unitType)
	}
	return types
}

// CreateUnitProcessor implements SetProcessor by dispatching on the unit type.
func (r *Registry) CreateUnitProcessor(_ context.Context, unit *config.Unit) (UnitProcessor, error) {
	if unit == nil {
		return nil, confseterrors.NewProcessorError("", fmt.Errorf("unit is nil"))
	}

	r.mu.RLock()
	factory, ok := r.factories[unit.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, confseterrors.NewProcessorError(unit.Type, fmt.Errorf("no factory registered"))
	}

	log := r.log
	if log != nil && unit.ID != "" {
		log = log.WithUnit(unit.ID)
	}

	return factory(unit, log)
}
