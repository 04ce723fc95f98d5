package lint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/effectus/signet/schema/signature"
	"github.com/effectus/signet/schema/types"
)

const (
	SeverityWarning = "warning"
	SeverityError   = "error"

	CodeParseError          = "parse-error"
	CodeUnknownType         = "unknown-type"
	CodeMissingOperator     = "missing-operator"
	CodeDuplicateName       = "duplicate-name"
	CodeUnboundOperand      = "unbound-operand"
	CodeAmbiguousOptional   = "ambiguous-optional"
	CodeUnresolvedQualifier = "unresolved-qualifier"
)

// Options configures lint behavior.
type Options struct {
	// Strict reports every warning as an error
	Strict bool
}

// DefaultOptions returns the default lint options.
func DefaultOptions() Options {
	return Options{}
}

// Issue represents a linter finding.
type Issue struct {
	File     string
	Pos      lexer.Position
	Severity string
	Code     string
	Message  string
}

func (i Issue) String() string {
	location := i.File
	if location == "" {
		location = i.Pos.Filename
	}
	if i.Pos.Line > 0 {
		location = fmt.Sprintf("%s:%d:%d", location, i.Pos.Line, i.Pos.Column)
	}
	if location != "" {
		location += ": "
	}
	return fmt.Sprintf("%s%s [%s] %s", location, i.Severity, i.Code, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// TypeLookup provides access to registered types and operators.
type TypeLookup interface {
	IsType(name string) bool
	IsSubtypeOf(parent, child string) bool
	DependentOperatorOn(typeName, operator string) (*types.DependentOperator, bool)
}

// LintSource parses a signature and lints it. A parse failure is reported as
// a single issue.
func LintSource(path, source string, registry TypeLookup, options Options) []Issue {
	stages, err := signature.ParseSignature(source)
	if err != nil {
		issue := Issue{
			File:     path,
			Severity: SeverityError,
			Code:     CodeParseError,
			Message:  err.Error(),
		}
		var perr participle.Error
		if errors.As(err, &perr) {
			issue.Pos = perr.Position()
			issue.Message = perr.Message()
		}
		return []Issue{issue}
	}

	issues := LintSignature(signature.Inputs(stages), registry, options)
	for i := range issues {
		issues[i].File = path
	}
	return issues
}

// LintSignature runs lint checks over the input stages of a curried signature.
func LintSignature(stages []*signature.Signature, registry TypeLookup, options Options) []Issue {
	issues := make([]Issue, 0)

	declared := make(map[string]*types.TypeNode)
	for _, stage := range stages {
		if stage == nil {
			continue
		}
		for _, param := range stage.Params {
			issues = append(issues, lintUnknownType(param, registry)...)
			issues = append(issues, lintDuplicateName(param, declared)...)
			if !param.IsAnonymous() {
				if _, seen := declared[param.Name]; !seen {
					declared[param.Name] = param
				}
			}
		}
		issues = append(issues, lintAmbiguousOptional(stage.Params, registry)...)
	}

	for _, stage := range stages {
		if stage == nil {
			continue
		}
		for _, c := range stage.Dependent {
			issues = append(issues, lintConstraint(c, declared, registry)...)
		}
	}

	if options.Strict {
		for i := range issues {
			issues[i].Severity = SeverityError
		}
	}
	return issues
}

func lintUnknownType(param *types.TypeNode, registry TypeLookup) []Issue {
	if registry == nil || registry.IsType(param.Type) {
		return nil
	}
	return []Issue{
		{
			Pos:      param.Pos,
			Severity: SeverityError,
			Code:     CodeUnknownType,
			Message:  fmt.Sprintf("type %q is not registered, %s never matches", param.Type, param),
		},
	}
}

func lintDuplicateName(param *types.TypeNode, declared map[string]*types.TypeNode) []Issue {
	if param.IsAnonymous() {
		return nil
	}
	first, seen := declared[param.Name]
	if !seen {
		return nil
	}
	return []Issue{
		{
			Pos:      param.Pos,
			Severity: SeverityError,
			Code:     CodeDuplicateName,
			Message:  fmt.Sprintf("parameter %q is already declared at %s", param.Name, first.Pos),
		},
	}
}

// lintAmbiguousOptional flags an optional declaration directly followed by a
// required one of an overlapping type: the optional consumes the argument
// and the required declaration then sees the next one.
func lintAmbiguousOptional(params []*types.TypeNode, registry TypeLookup) []Issue {
	if registry == nil {
		return nil
	}

	var issues []Issue
	for i := 0; i+1 < len(params); i++ {
		current, next := params[i], params[i+1]
		if !current.Optional || next.Optional {
			continue
		}
		if !registry.IsSubtypeOf(current.Type, next.Type) && !registry.IsSubtypeOf(next.Type, current.Type) {
			continue
		}
		issues = append(issues, Issue{
			Pos:      current.Pos,
			Severity: SeverityWarning,
			Code:     CodeAmbiguousOptional,
			Message:  fmt.Sprintf("optional %s may consume the argument meant for %s", current, next),
		})
	}
	return issues
}

func lintConstraint(c *types.Constraint, declared map[string]*types.TypeNode, registry TypeLookup) []Issue {
	if c == nil {
		return nil
	}

	var issues []Issue
	for _, operand := range []string{c.Left, c.Right} {
		if _, qualifier, ok := strings.Cut(operand, ":"); ok {
			issues = append(issues, Issue{
				Pos:      c.Pos,
				Severity: SeverityWarning,
				Code:     CodeUnresolvedQualifier,
				Message:  fmt.Sprintf("qualifier %q in %s is ignored", qualifier, c),
			})
		}
	}

	left, leftOK := declared[operandName(c.Left)]
	if !leftOK {
		issues = append(issues, unboundOperand(c, c.Left))
	}

	rightName := operandName(c.Right)
	if _, ok := declared[rightName]; !ok && (registry == nil || !registry.IsType(rightName)) {
		issues = append(issues, unboundOperand(c, c.Right))
	}

	if leftOK && registry != nil && registry.IsType(left.Type) {
		if _, ok := registry.DependentOperatorOn(left.Type, c.Operator); !ok {
			issues = append(issues, Issue{
				Pos:      c.Pos,
				Severity: SeverityError,
				Code:     CodeMissingOperator,
				Message:  fmt.Sprintf("type %q has no operator %q, %s always fails", left.Type, c.Operator, c),
			})
		}
	}

	return issues
}

func unboundOperand(c *types.Constraint, operand string) Issue {
	return Issue{
		Pos:      c.Pos,
		Severity: SeverityWarning,
		Code:     CodeUnboundOperand,
		Message:  fmt.Sprintf("%s is never bound, %s is always deferred", operandName(operand), c),
	}
}

func operandName(operand string) string {
	name, _, _ := strings.Cut(operand, ":")
	return strings.TrimSpace(name)
}
