// Package validator checks argument lists against parsed signatures: the
// positional walk over declarations, the named environment shared by curried
// stages, and dependent constraints between named parameters.
package validator

import (
	"io"
	"log"

	"github.com/effectus/signet/schema/signature"
	"github.com/effectus/signet/schema/types"
)

// TypeRegistry is the registry surface the validator depends on
type TypeRegistry interface {
	IsTypeOf(node *types.TypeNode) types.Predicate
	IsType(name string) bool
	DependentOperatorOn(typeName, operator string) (*types.DependentOperator, bool)
}

// TypeParser turns a bare type name into a node
type TypeParser interface {
	ParseType(name string) (*types.TypeNode, error)
}

// Option configures a Validator
type Option func(*Validator)

// WithAssembler replaces the descriptor assembler used in positional failures
func WithAssembler(assembler types.Assembler) Option {
	return func(v *Validator) {
		v.assembler = assembler
	}
}

// WithTypeParser replaces the parser used to resolve type-name operands
func WithTypeParser(parser TypeParser) Option {
	return func(v *Validator) {
		v.parser = parser
	}
}

// WithLogger sets the logger used for trace output
func WithLogger(logger *log.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithTrace enables trace output
func WithTrace(enabled bool) Option {
	return func(v *Validator) {
		v.trace = enabled
	}
}

// Validator validates argument lists. It holds no per-call state and may be
// shared between goroutines; environments may not.
type Validator struct {
	registry  TypeRegistry
	assembler types.Assembler
	parser    TypeParser
	logger    *log.Logger
	trace     bool
}

// New creates a validator over a type registry
func New(registry TypeRegistry, options ...Option) *Validator {
	v := &Validator{
		registry:  registry,
		assembler: types.DefaultAssembler,
		parser:    signature.Parser{},
		logger:    log.New(io.Discard, "", 0),
	}

	for _, option := range options {
		option(v)
	}

	if v.logger == nil {
		v.logger = log.New(io.Discard, "", 0)
	}
	return v
}

// ValidateType returns the predicate that checks values against node: the
// node's own override when it has one, the registry's otherwise
func (v *Validator) ValidateType(node *types.TypeNode) types.Predicate {
	return node.Checker().Predicate(v.registry, node)
}

// ValidateArguments returns a function that validates one argument list
// against sig.
//
// The environment is extended with the named arguments first, then the
// positional walk runs, then, only if it passed, the dependent constraints
// in declared order, followed by constraints earlier stages deferred to this
// environment. The first failure is returned. A RebindError is returned
// as the error and never as a Failure.
//
// env may be nil for a standalone call. For a curried chain pass the same
// environment to every stage, or use a Chain.
func (v *Validator) ValidateArguments(sig *signature.Signature, env *Environment) func(args []interface{}) (*Failure, error) {
	return func(args []interface{}) (*Failure, error) {
		if sig == nil {
			return nil, nil
		}

		stageEnv, err := BuildEnvironment(sig.Params, args, env)
		if err != nil {
			return nil, err
		}

		if failure := v.validatePositional(sig.Params, args); failure != nil {
			v.tracef("positional failure in %s: %s", sig, failure)
			return failure, nil
		}

		failure, deferred := v.checkDependent(stageEnv, sig.Dependent)
		if failure == nil {
			failure = v.checkPending(stageEnv)
		}
		stageEnv.pending = append(stageEnv.pending, deferred...)

		if failure != nil {
			v.tracef("dependent failure in %s: %s", sig, failure)
			return failure, nil
		}
		return nil, nil
	}
}

// Validate is a shorthand for ValidateArguments(sig, env)(args)
func (v *Validator) Validate(sig *signature.Signature, env *Environment, args ...interface{}) (*Failure, error) {
	return v.ValidateArguments(sig, env)(args)
}

func (v *Validator) tracef(format string, args ...interface{}) {
	if v.trace {
		v.logger.Printf(format, args...)
	}
}
