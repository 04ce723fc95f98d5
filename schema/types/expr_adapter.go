package types

import (
	"fmt"

	exprPkg "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// This file lets types and dependent operators be declared as expr-lang
// boolean expressions instead of Go functions.
//
// Type expressions see `value` and `options`; operator expressions see
// `left`, `right` and `constraint` (the constraint as written).

// DefineExprType registers a subtype of parent whose predicate is an expression
func (r *Registry) DefineExprType(name, parent, expression string) error {
	if parent == "" {
		parent = RootType
	}

	program, err := compileBoolExpr(expression)
	if err != nil {
		return fmt.Errorf("type %s: %w", name, err)
	}

	return r.DefineSubtype(parent, name, func(value interface{}, options []string) bool {
		if options == nil {
			options = []string{}
		}
		return runBoolExpr(program, map[string]interface{}{
			"value":   exprValue(value),
			"options": options,
		})
	})
}

// DefineExprOperator registers a dependent operator whose operation is an expression
func (r *Registry) DefineExprOperator(typeName, operator, expression string) error {
	program, err := compileBoolExpr(expression)
	if err != nil {
		return fmt.Errorf("operator %s on %s: %w", operator, typeName, err)
	}

	return r.DefineDependentOperator(typeName, operator, func(a, b interface{}, _, _ *TypeNode, c *Constraint) bool {
		return runBoolExpr(program, map[string]interface{}{
			"left":       exprValue(a),
			"right":      exprValue(b),
			"constraint": c.String(),
		})
	})
}

// compileBoolExpr compiles without a typed environment; variables are checked at run time
func compileBoolExpr(expression string) (*vm.Program, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression is empty")
	}
	program, err := exprPkg.Compile(expression,
		exprPkg.AllowUndefinedVariables(),
		exprPkg.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid expression syntax: %w", err)
	}
	return program, nil
}

// runBoolExpr evaluates a compiled predicate; runtime errors count as false
func runBoolExpr(program *vm.Program, env map[string]interface{}) bool {
	out, err := exprPkg.Run(program, env)
	if err != nil {
		return false
	}
	result, ok := out.(bool)
	return ok && result
}

// exprValue hides the Undefined sentinel from expressions, which see nil
func exprValue(value interface{}) interface{} {
	if IsUndefined(value) {
		return nil
	}
	return value
}
