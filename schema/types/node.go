// Package types provides the type registry used by signet signatures
package types

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Predicate reports whether a value belongs to a type
type Predicate func(value interface{}) bool

// ValuePredicate is the registered form of a type check. Options are the
// parameters of a parameterized declaration, e.g. "1" and "5" in bounded<1;5>.
type ValuePredicate func(value interface{}, options []string) bool

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined is passed to predicates in place of an argument that was not supplied.
var Undefined interface{} = undefined{}

// IsUndefined reports whether value is the Undefined sentinel
func IsUndefined(value interface{}) bool {
	_, ok := value.(undefined)
	return ok
}

// Checker decides which predicate tests values for a node
type Checker interface {
	Predicate(registry TypeLookup, node *TypeNode) Predicate
}

// TypeLookup resolves the default predicate of a node from its type tag
type TypeLookup interface {
	IsTypeOf(node *TypeNode) Predicate
}

// RegistryCheck defers to the registry predicate for the node's type tag
type RegistryCheck struct{}

// Predicate implements Checker
func (RegistryCheck) Predicate(registry TypeLookup, node *TypeNode) Predicate {
	if registry == nil {
		return func(interface{}) bool { return false }
	}
	return registry.IsTypeOf(node)
}

// CustomCheck overrides the registry with a fixed predicate
type CustomCheck Predicate

// Predicate implements Checker
func (c CustomCheck) Predicate(TypeLookup, *TypeNode) Predicate {
	return Predicate(c)
}

// TypeNode is one declared parameter of a signature
type TypeNode struct {
	// Name is empty for anonymous parameters
	Name string

	// Type is the registered type identifier
	Type string

	// Optional marks declarations written as [name:type]
	Optional bool

	// Options holds the parameters of a parameterized type
	Options []string

	// Check selects the predicate; nil means RegistryCheck
	Check Checker

	// Pos is the position in the parsed signature, zero for hand-built nodes
	Pos lexer.Position
}

// NewTypeNode creates a required, anonymous node of the given type
func NewTypeNode(typeName string, options ...string) *TypeNode {
	return &TypeNode{
		Type:    typeName,
		Options: options,
	}
}

// Named returns a copy of the node bound to a parameter name
func (n *TypeNode) Named(name string) *TypeNode {
	clone := n.Clone()
	clone.Name = name
	return clone
}

// AsOptional returns an optional copy of the node
func (n *TypeNode) AsOptional() *TypeNode {
	clone := n.Clone()
	clone.Optional = true
	return clone
}

// WithCheck returns a copy of the node that uses pred instead of the registry
func (n *TypeNode) WithCheck(pred Predicate) *TypeNode {
	clone := n.Clone()
	clone.Check = CustomCheck(pred)
	return clone
}

// Checker returns the node's checker, defaulting to the registry
func (n *TypeNode) Checker() Checker {
	if n == nil || n.Check == nil {
		return RegistryCheck{}
	}
	return n.Check
}

// IsAnonymous reports whether the node carries no parameter name
func (n *TypeNode) IsAnonymous() bool {
	return n.Name == ""
}

// Clone creates a copy of this node
func (n *TypeNode) Clone() *TypeNode {
	if n == nil {
		return nil
	}

	clone := *n
	if n.Options != nil {
		clone.Options = append([]string(nil), n.Options...)
	}
	return &clone
}

// String returns the assembled descriptor of the node
func (n *TypeNode) String() string {
	return AssembleType(n)
}

// Constraint is a dependent relation between two operands of a signature,
// e.g. "A < B". Operands may carry a qualifier after ':'.
type Constraint struct {
	Left     string
	Right    string
	Operator string
	Pos      lexer.Position
}

// NewConstraint creates a constraint
func NewConstraint(left, operator, right string) *Constraint {
	return &Constraint{
		Left:     left,
		Right:    right,
		Operator: operator,
	}
}

// String renders the constraint as declared
func (c *Constraint) String() string {
	if c == nil {
		return ""
	}
	return c.Left + " " + c.Operator + " " + c.Right
}

// Operation evaluates a dependent operator on two resolved operands
type Operation func(left, right interface{}, leftNode, rightNode *TypeNode, constraint *Constraint) bool

// DependentOperator is an operator registered on a type
type DependentOperator struct {
	Operator  string
	Operation Operation
}
