package validator

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/effectus/signet/schema/types"
)

// ErrRebind is matched by RebindError with errors.Is
var ErrRebind = errors.New("parameter already bound")

// RebindError reports an attempt to bind a name twice in one environment.
// It signals a misassembled curried chain, not a bad argument.
type RebindError struct {
	Name          string
	EnvironmentID uuid.UUID
}

func (e *RebindError) Error() string {
	return fmt.Sprintf("cannot rebind %q in environment %s", e.Name, e.EnvironmentID)
}

// Is implements errors.Is
func (e *RebindError) Is(target error) bool {
	return target == ErrRebind
}

// Binding is a resolved parameter
type Binding struct {
	Name     string
	Value    interface{}
	TypeNode *types.TypeNode

	// Resolved marks bindings created from a bare type name; Value is then
	// the type's Predicate
	Resolved bool
}

// Describe renders the bound value for failure reports
func (b *Binding) Describe() string {
	if b.Resolved {
		return types.AssembleType(b.TypeNode)
	}
	return describeValue(b.Value)
}

// Environment maps parameter names to bindings. It is append-only: a name,
// once bound, is never replaced or removed.
//
// An environment belongs to one call chain. The caller passes the same
// instance to every stage of a curried chain so bindings accumulate, and must
// not share it between chains or goroutines.
type Environment struct {
	id       uuid.UUID
	bindings map[string]*Binding
	order    []string

	// constraints deferred for lack of a binding, in deferral order
	pending []*types.Constraint
}

// NewEnvironment creates an empty environment
func NewEnvironment() *Environment {
	return &Environment{
		id:       uuid.New(),
		bindings: make(map[string]*Binding),
	}
}

// ID identifies the environment in faults and logs
func (e *Environment) ID() uuid.UUID {
	return e.id
}

// Lookup returns the binding for a name
func (e *Environment) Lookup(name string) (*Binding, bool) {
	b, ok := e.bindings[name]
	return b, ok
}

// Has reports whether name is bound
func (e *Environment) Has(name string) bool {
	_, ok := e.bindings[name]
	return ok
}

// Names returns bound names in binding order
func (e *Environment) Names() []string {
	return append([]string(nil), e.order...)
}

// Len returns the number of bindings
func (e *Environment) Len() int {
	return len(e.order)
}

// Pending returns the constraints still waiting for an operand to be bound
func (e *Environment) Pending() []*types.Constraint {
	return append([]*types.Constraint(nil), e.pending...)
}

// Bind adds a binding, failing with RebindError when the name is taken
func (e *Environment) Bind(b *Binding) error {
	if _, exists := e.bindings[b.Name]; exists {
		return &RebindError{Name: b.Name, EnvironmentID: e.id}
	}
	e.bindings[b.Name] = b
	e.order = append(e.order, b.Name)
	return nil
}

// BuildEnvironment binds each named declaration to the argument at the same
// position. Anonymous declarations and declarations past the end of args are
// not bound.
//
// Pairing is by index and ignores the positional walk: when an optional
// declaration is skipped, later names are still paired with the argument at
// their own index. For "[A:number], B:string" and ("foo") A is bound to "foo"
// and B stays unbound, so a constraint on A sees "foo". When env is nil a new environment is created; otherwise env is
// extended in place and returned.
//
// Every named declaration is checked, bound or not, before anything is
// bound, so a RebindError leaves env unchanged.
func BuildEnvironment(typeList []*types.TypeNode, args []interface{}, env *Environment) (*Environment, error) {
	if env == nil {
		env = NewEnvironment()
	}

	pending := make(map[string]bool)
	for _, node := range typeList {
		if node == nil || node.IsAnonymous() {
			continue
		}
		if env.Has(node.Name) || pending[node.Name] {
			return env, &RebindError{Name: node.Name, EnvironmentID: env.id}
		}
		pending[node.Name] = true
	}

	for i, node := range typeList {
		if node == nil || node.IsAnonymous() || i >= len(args) {
			continue
		}
		if err := env.Bind(&Binding{Name: node.Name, Value: args[i], TypeNode: node}); err != nil {
			return env, err
		}
	}

	return env, nil
}
