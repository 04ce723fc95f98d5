package validator

import (
	"fmt"

	"github.com/effectus/signet/schema/types"
)

// FailureKind tells positional failures from dependent ones
type FailureKind int

const (
	// PositionalFailure is a value that does not match its declared type
	PositionalFailure FailureKind = iota

	// DependentFailure is a violated dependent constraint
	DependentFailure
)

func (k FailureKind) String() string {
	switch k {
	case PositionalFailure:
		return "positional"
	case DependentFailure:
		return "dependent"
	default:
		return "unknown"
	}
}

// Failure is a validation outcome that rejects the arguments. A nil *Failure
// means the arguments were accepted.
//
// For a positional failure Descriptor is the expected type and Value the
// offending argument (types.Undefined when it was missing). For a dependent
// failure Descriptor is the constraint, e.g. "A < B", and Value the string
// "A = 6 and B = 5".
type Failure struct {
	Kind       FailureKind
	Descriptor string
	Value      interface{}
}

// Pair returns the failure as its (descriptor, value) tuple. On the nil
// success sentinel both elements are nil.
func (f *Failure) Pair() [2]interface{} {
	if f == nil {
		return [2]interface{}{}
	}
	return [2]interface{}{f.Descriptor, f.Value}
}

// String renders the failure for humans
func (f *Failure) String() string {
	if f == nil {
		return "ok"
	}
	switch f.Kind {
	case DependentFailure:
		return fmt.Sprintf("constraint %s failed: %v", f.Descriptor, f.Value)
	default:
		return fmt.Sprintf("expected %s but got %s", f.Descriptor, describeValue(f.Value))
	}
}

func positionalFailure(descriptor string, value interface{}) *Failure {
	return &Failure{Kind: PositionalFailure, Descriptor: descriptor, Value: value}
}

func dependentFailure(left, right *Binding, c *types.Constraint) *Failure {
	return &Failure{
		Kind:       DependentFailure,
		Descriptor: fmt.Sprintf("%s %s %s", left.Name, c.Operator, right.Name),
		Value:      fmt.Sprintf("%s = %s and %s = %s", left.Name, left.Describe(), right.Name, right.Describe()),
	}
}

func describeValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case types.Predicate:
		return "<predicate>"
	default:
		return fmt.Sprintf("%v", v)
	}
}
