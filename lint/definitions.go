package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/expr-lang/expr"
	exprast "github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	"github.com/effectus/signet/schema/types"
)

const (
	CodeInvalidExpression  = "invalid-expression"
	CodeConstantExpression = "constant-expression"
	CodeUnknownVariable    = "unknown-variable"
)

var (
	typeVariables     = []string{"value", "options"}
	operatorVariables = []string{"left", "right", "constraint"}
)

// LintDefinitions checks the expressions of a definitions file. Variables
// outside the documented environment evaluate to nil at runtime, so they are
// reported rather than silently accepted.
func LintDefinitions(path string, defs *types.Definitions, options Options) []Issue {
	if defs == nil {
		return nil
	}

	issues := make([]Issue, 0)
	pos := lexer.Position{Filename: path}

	for i, def := range defs.Types {
		label := fmt.Sprintf("type %q (types[%d])", def.Name, i)
		issues = append(issues, lintExpression(path, pos, label, def.Expr, typeVariables)...)
	}
	for i, def := range defs.Operators {
		label := fmt.Sprintf("operator %q on %q (operators[%d])", def.Operator, def.Type, i)
		issues = append(issues, lintExpression(path, pos, label, def.Expr, operatorVariables)...)
	}

	if options.Strict {
		for i := range issues {
			issues[i].Severity = SeverityError
		}
	}
	return issues
}

func lintExpression(path string, pos lexer.Position, label, expression string, allowed []string) []Issue {
	exprText := strings.TrimSpace(expression)
	if exprText == "" {
		return []Issue{{File: path, Pos: pos, Severity: SeverityError, Code: CodeInvalidExpression, Message: label + " has no expression"}}
	}

	tree, err := parser.Parse(exprText)
	if err != nil {
		return []Issue{{File: path, Pos: pos, Severity: SeverityError, Code: CodeInvalidExpression, Message: fmt.Sprintf("%s: %v", label, err)}}
	}

	visitor := &identifierVisitor{names: make(map[string]struct{}), calls: make(map[string]struct{})}
	node := tree.Node
	exprast.Walk(&node, visitor)

	var issues []Issue
	for _, name := range visitor.unknown(allowed) {
		issues = append(issues, Issue{
			File:     path,
			Pos:      pos,
			Severity: SeverityWarning,
			Code:     CodeUnknownVariable,
			Message:  fmt.Sprintf("%s references %q, only %s are defined", label, name, strings.Join(allowed, ", ")),
		})
	}

	if value, ok := constantBool(exprText, visitor.hasVariables); ok {
		issues = append(issues, Issue{
			File:     path,
			Pos:      pos,
			Severity: SeverityWarning,
			Code:     CodeConstantExpression,
			Message:  fmt.Sprintf("%s is always %t", label, value),
		})
	}

	return issues
}

func constantBool(expression string, hasVariables bool) (bool, bool) {
	if hasVariables {
		return false, false
	}
	result, err := expr.Eval(expression, map[string]interface{}{})
	if err != nil {
		return false, false
	}
	value, ok := result.(bool)
	return value, ok
}

type identifierVisitor struct {
	names        map[string]struct{}
	calls        map[string]struct{}
	hasVariables bool
}

func (v *identifierVisitor) Visit(node *exprast.Node) {
	switch n := (*node).(type) {
	case *exprast.IdentifierNode:
		v.names[n.Value] = struct{}{}
		v.hasVariables = true
	case *exprast.CallNode:
		if ident, ok := n.Callee.(*exprast.IdentifierNode); ok {
			v.calls[ident.Value] = struct{}{}
		}
	case *exprast.VariableDeclaratorNode:
		v.calls[n.Name] = struct{}{}
		v.hasVariables = true
	case *exprast.MemberNode, *exprast.PointerNode:
		v.hasVariables = true
	}
}

// unknown returns identifiers that are neither allowed variables, called
// functions nor let-bound names
func (v *identifierVisitor) unknown(allowed []string) []string {
	known := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		known[name] = struct{}{}
	}

	var names []string
	for name := range v.names {
		if _, ok := known[name]; ok {
			continue
		}
		if _, ok := v.calls[name]; ok {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
