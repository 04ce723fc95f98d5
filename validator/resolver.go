package validator

import (
	"fmt"
)

// resolveTypeBinding builds a binding for a bare type name. Its value is the
// type's predicate so operators such as typeof can call it.
func (v *Validator) resolveTypeBinding(name string) (*Binding, error) {
	if v.parser == nil {
		return nil, fmt.Errorf("no type parser configured")
	}

	node, err := v.parser.ParseType(name)
	if err != nil {
		return nil, fmt.Errorf("parsing type operand %s: %w", name, err)
	}

	v.tracef("resolved type operand %s", name)
	return &Binding{
		Name:     name,
		Value:    v.registry.IsTypeOf(node),
		TypeNode: node,
		Resolved: true,
	}, nil
}

// ResolveTypeBinding exposes type-name resolution for inspection and tests
func (v *Validator) ResolveTypeBinding(name string) (*Binding, error) {
	if v.registry == nil || !v.registry.IsType(name) {
		return nil, fmt.Errorf("unknown type: %s", name)
	}
	return v.resolveTypeBinding(name)
}
