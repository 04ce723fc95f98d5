package validator

import (
	"strings"

	"github.com/effectus/signet/schema/types"
)

// alwaysFalse stands in for operators the registry does not know
var alwaysFalse = &types.DependentOperator{
	Operation: func(interface{}, interface{}, *types.TypeNode, *types.TypeNode, *types.Constraint) bool {
		return false
	},
}

// checkDependent evaluates constraints in order and returns the first one
// violated. A constraint with an operand that is not bound yet is deferred:
// it counts as satisfied and is returned so a later stage can complete it.
func (v *Validator) checkDependent(env *Environment, constraints []*types.Constraint) (*Failure, []*types.Constraint) {
	var deferred []*types.Constraint
	for _, c := range constraints {
		if c == nil {
			continue
		}

		failure, resolved := v.evaluate(env, c)
		if !resolved {
			deferred = append(deferred, c)
			continue
		}
		if failure != nil {
			return failure, deferred
		}
	}

	return nil, deferred
}

// checkPending evaluates constraints deferred by earlier stages, in the
// order they were deferred. Each one is dropped once both operands resolve,
// whatever its outcome; the rest stay pending.
func (v *Validator) checkPending(env *Environment) *Failure {
	pending := env.pending
	env.pending = nil

	for i, c := range pending {
		failure, resolved := v.evaluate(env, c)
		if !resolved {
			env.pending = append(env.pending, c)
			continue
		}
		if failure != nil {
			env.pending = append(env.pending, pending[i+1:]...)
			return failure
		}
	}

	return nil
}

// evaluate checks one constraint. resolved is false when an operand is not
// bound yet.
func (v *Validator) evaluate(env *Environment, c *types.Constraint) (failure *Failure, resolved bool) {
	left, ok := v.resolveLeft(env, c.Left)
	if !ok {
		v.tracef("deferring %s: %s is not bound in %s", c, operandName(c.Left), env.ID())
		return nil, false
	}

	right, ok := v.resolveRight(env, c.Right)
	if !ok {
		v.tracef("deferring %s: %s is not bound in %s", c, operandName(c.Right), env.ID())
		return nil, false
	}

	op := v.operatorFor(left, c)
	if !op.Operation(left.Value, right.Value, left.TypeNode, right.TypeNode, c) {
		return dependentFailure(left, right, c), true
	}
	return nil, true
}

// operandName drops the qualifier after ':'. Qualifiers are reserved and
// take no part in lookup.
func operandName(operand string) string {
	name, _, _ := strings.Cut(operand, ":")
	return strings.TrimSpace(name)
}

func (v *Validator) resolveLeft(env *Environment, operand string) (*Binding, bool) {
	return env.Lookup(operandName(operand))
}

// resolveRight prefers a bound parameter and falls back to a registered
// type name, so "A typeof int" compares A against the int predicate
func (v *Validator) resolveRight(env *Environment, operand string) (*Binding, bool) {
	name := operandName(operand)
	if binding, ok := env.Lookup(name); ok {
		return binding, true
	}
	if v.registry == nil || !v.registry.IsType(name) {
		return nil, false
	}

	binding, err := v.resolveTypeBinding(name)
	if err != nil {
		v.tracef("cannot resolve type operand %s: %v", name, err)
		return nil, false
	}
	return binding, true
}

// operatorFor looks up the constraint's operator on the left operand's type.
// Unknown operators fail closed.
func (v *Validator) operatorFor(left *Binding, c *types.Constraint) *types.DependentOperator {
	typeName := types.RootType
	if left.TypeNode != nil {
		typeName = left.TypeNode.Type
	}

	if v.registry != nil {
		if op, ok := v.registry.DependentOperatorOn(typeName, c.Operator); ok {
			return op
		}
	}

	v.tracef("no operator %q on type %s, %s fails", c.Operator, typeName, c)
	return alwaysFalse
}
