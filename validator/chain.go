package validator

import (
	"errors"

	"github.com/effectus/signet/schema/signature"
)

// ErrChainExhausted is returned when a chain is applied past its last stage
var ErrChainExhausted = errors.New("all stages of the chain have been applied")

// Chain validates the stages of a curried signature one call at a time,
// threading a single environment through them so constraints declared in an
// early stage are checked once a later stage binds their operands.
//
// A Chain is not safe for concurrent use.
type Chain struct {
	validator *Validator
	stages    []*signature.Signature
	env       *Environment
	next      int
}

// NewChain creates a chain over input stages (see signature.Inputs)
func (v *Validator) NewChain(stages []*signature.Signature) *Chain {
	return v.NewChainWithEnvironment(stages, NewEnvironment())
}

// NewChainWithEnvironment creates a chain that extends an existing environment,
// e.g. one pre-seeded with BuildEnvironment
func (v *Validator) NewChainWithEnvironment(stages []*signature.Signature, env *Environment) *Chain {
	if env == nil {
		env = NewEnvironment()
	}
	return &Chain{
		validator: v,
		stages:    stages,
		env:       env,
	}
}

// Apply validates args against the next stage. The stage is consumed even
// when validation fails.
func (c *Chain) Apply(args ...interface{}) (*Failure, error) {
	if c.Done() {
		return nil, ErrChainExhausted
	}

	stage := c.stages[c.next]
	c.next++
	c.validator.tracef("chain %s: stage %d of %d", c.env.ID(), c.next, len(c.stages))
	return c.validator.ValidateArguments(stage, c.env)(args)
}

// Done reports whether every stage has been applied
func (c *Chain) Done() bool {
	return c.next >= len(c.stages)
}

// Stage returns the index of the next stage to apply
func (c *Chain) Stage() int {
	return c.next
}

// Environment returns the chain's environment
func (c *Chain) Environment() *Environment {
	return c.env
}
