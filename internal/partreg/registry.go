package partreg

import (
	"fmt"
	"log/slog"

	"github.com/courseforge/adaptivity/internal/model"
)

// BrokenExpression is one malformed expression found inside a part's
// configuration, with the repaired text offered as the fix.
type BrokenExpression struct {
	PartID       string
	Property     string
	Expression   string
	SuggestedFix string
}

// ValidateConfigFunc inspects one part instance and reports every
// malformed expression in its configuration.
type ValidateConfigFunc func(part model.Part) []BrokenExpression

// Definition describes one part type's engine-relevant capabilities.
type Definition struct {
	// Type is the part-type tag, e.g. "janus-slider".
	Type string

	// CanUseExpression gates the expression validator: only parts whose
	// type advertises it are scanned for malformed expressions.
	CanUseExpression bool

	// ValidateUserConfig is consulted only when CanUseExpression is set.
	// May be nil, in which case the part type is skipped.
	ValidateUserConfig ValidateConfigFunc
}

// Registry holds all registered part-type definitions for a single
// application instance.
type Registry struct {
	definitions map[string]*Definition
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{definitions: make(map[string]*Definition)}
}

// Register adds a part-type definition. Registering the same type twice
// is a programmer error and panics, matching handler registries
// elsewhere in the codebase.
func (r *Registry) Register(def *Definition) {
	if def == nil || def.Type == "" {
		panic("partreg: definition must have a type")
	}
	if _, exists := r.definitions[def.Type]; exists {
		panic(fmt.Sprintf("partreg: part type '%s' already registered", def.Type))
	}
	slog.Debug("Registering part type.", "type", def.Type, "canUseExpression", def.CanUseExpression)
	r.definitions[def.Type] = def
}

// Lookup returns the definition for a part-type tag, or nil when the
// type is unknown. Unknown types are not an error: lessons may carry
// parts this engine has no interest in.
func (r *Registry) Lookup(partType string) *Definition {
	return r.definitions[partType]
}

// Count returns the number of registered part types.
func (r *Registry) Count() int {
	return len(r.definitions)
}
