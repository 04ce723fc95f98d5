package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// RootType is the ancestor of every registered type
const RootType = "*"

var (
	// ErrUnknownType is returned when a definition references an unregistered type
	ErrUnknownType = errors.New("unknown type")

	// ErrDuplicateType is returned when a type name is defined twice
	ErrDuplicateType = errors.New("type already defined")
)

type typeDef struct {
	name      string
	parent    string
	predicate ValuePredicate
}

// Registry holds named type predicates, their subtype relations and the
// dependent operators defined on each type
type Registry struct {
	types map[string]*typeDef

	// operators maps type name -> operator symbol -> operator
	operators map[string]map[string]*DependentOperator

	mu sync.RWMutex
}

// NewRegistry creates a registry with the standard library loaded. It panics
// if a builtin fails to register.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	if err := r.RegisterStandardLibrary(); err != nil {
		panic(err)
	}
	return r
}

// NewEmptyRegistry creates a registry that only knows the root type "*"
func NewEmptyRegistry() *Registry {
	r := &Registry{
		types:     make(map[string]*typeDef),
		operators: make(map[string]map[string]*DependentOperator),
	}
	r.types[RootType] = &typeDef{
		name:      RootType,
		predicate: func(interface{}, []string) bool { return true },
	}
	return r
}

// Define registers a type whose parent is the root type
func (r *Registry) Define(name string, predicate ValuePredicate) error {
	return r.DefineSubtype(RootType, name, predicate)
}

// DefineSubtype registers a type that only admits values its parent admits
func (r *Registry) DefineSubtype(parent, name string, predicate ValuePredicate) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("type name is empty")
	}
	if predicate == nil {
		return fmt.Errorf("type %s: predicate is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, name)
	}
	if _, exists := r.types[parent]; !exists {
		return fmt.Errorf("%w: parent %s of %s", ErrUnknownType, parent, name)
	}

	r.types[name] = &typeDef{
		name:      name,
		parent:    parent,
		predicate: predicate,
	}
	return nil
}

// IsType reports whether name is a registered type
func (r *Registry) IsType(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.types[name]
	return exists
}

// Parent returns the parent of a type. The root type has no parent.
func (r *Registry) Parent(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.types[name]
	if !exists || def.parent == "" {
		return "", false
	}
	return def.parent, true
}

// IsSubtypeOf reports whether child is parent or descends from it
func (r *Registry) IsSubtypeOf(parent, child string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.lineage(child) {
		if name == parent {
			return true
		}
	}
	return false
}

// TypeNames returns all registered type names in sorted order
func (r *Registry) TypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsTypeOf returns the predicate for a node. The node's ancestors are checked
// root first, each with the node's options. Unknown types admit nothing.
func (r *Registry) IsTypeOf(node *TypeNode) Predicate {
	if node == nil {
		return func(interface{}) bool { return false }
	}

	r.mu.RLock()
	chain := r.lineage(node.Type)
	defs := make([]*typeDef, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		defs = append(defs, r.types[chain[i]])
	}
	r.mu.RUnlock()

	if len(defs) == 0 {
		return func(interface{}) bool { return false }
	}

	options := node.Options
	return func(value interface{}) bool {
		for _, def := range defs {
			if !def.predicate(value, options) {
				return false
			}
		}
		return true
	}
}

// lineage returns name followed by its ancestors up to the root. Callers hold mu.
func (r *Registry) lineage(name string) []string {
	var chain []string
	seen := make(map[string]bool)
	for current := name; current != ""; {
		def, exists := r.types[current]
		if !exists || seen[current] {
			break
		}
		seen[current] = true
		chain = append(chain, current)
		current = def.parent
	}
	return chain
}

// DefineDependentOperator registers an operator on a type. Subtypes inherit it
// unless they define the same symbol themselves.
func (r *Registry) DefineDependentOperator(typeName, operator string, operation Operation) error {
	operator = strings.TrimSpace(operator)
	if operator == "" {
		return fmt.Errorf("operator symbol is empty")
	}
	if operation == nil {
		return fmt.Errorf("operator %s on %s: operation is nil", operator, typeName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[typeName]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownType, typeName)
	}

	ops := r.operators[typeName]
	if ops == nil {
		ops = make(map[string]*DependentOperator)
		r.operators[typeName] = ops
	}
	ops[operator] = &DependentOperator{
		Operator:  operator,
		Operation: operation,
	}
	return nil
}

// DependentOperatorOn finds the operator for a type, searching its ancestors
func (r *Registry) DependentOperatorOn(typeName, operator string) (*DependentOperator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.lineage(typeName) {
		if op, ok := r.operators[name][operator]; ok {
			return op, true
		}
	}
	return nil, false
}

// OperatorsOn lists the operator symbols usable on a type, inherited ones included
func (r *Registry) OperatorsOn(typeName string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var symbols []string
	for _, name := range r.lineage(typeName) {
		for symbol := range r.operators[name] {
			if !seen[symbol] {
				seen[symbol] = true
				symbols = append(symbols, symbol)
			}
		}
	}
	sort.Strings(symbols)
	return symbols
}

// GenerateTypeReport generates a human-readable report of registered types
func (r *Registry) GenerateTypeReport() string {
	var report strings.Builder
	report.WriteString("# Type Registry Report\n\n")

	for _, name := range r.TypeNames() {
		parent, _ := r.Parent(name)
		if parent == "" {
			fmt.Fprintf(&report, "- `%s`", name)
		} else {
			fmt.Fprintf(&report, "- `%s` (subtype of `%s`)", name, parent)
		}
		if ops := r.OperatorsOn(name); len(ops) > 0 {
			fmt.Fprintf(&report, ": %s", strings.Join(ops, " "))
		}
		report.WriteString("\n")
	}

	return report.String()
}
