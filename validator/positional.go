package validator

import (
	"github.com/effectus/signet/schema/types"
)

// validatePositional walks declarations and arguments pairwise.
//
// A declaration whose predicate accepts the current argument consumes it.
// A rejected optional declaration is skipped without consuming the argument
// when more declarations follow or there is no argument left; any other
// rejection is the result. Arguments beyond the last declaration are ignored.
func (v *Validator) validatePositional(typeList []*types.TypeNode, args []interface{}) *Failure {
	next := 0

	for i, typeDef := range typeList {
		present := next < len(args)
		argument := types.Undefined
		if present {
			argument = args[next]
		}

		if v.ValidateType(typeDef)(argument) {
			if present {
				next++
			}
			continue
		}

		remaining := len(typeList) - i
		if typeDef.Optional && (remaining > 1 || !present) {
			continue
		}

		return positionalFailure(v.assembler.AssembleType(typeDef), argument)
	}

	return nil
}
