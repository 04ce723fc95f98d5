package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembleType(t *testing.T) {
	tests := []struct {
		name string
		node *TypeNode
		want string
	}{
		{"plain", NewTypeNode("number"), "number"},
		{"named", NewTypeNode("int").Named("A"), "A:int"},
		{"options", NewTypeNode("bounded", "1", "5"), "bounded<1;5>"},
		{"optional", NewTypeNode("int").AsOptional(), "[int]"},
		{"everything", NewTypeNode("bounded", "1", "5").Named("B").AsOptional(), "[B:bounded<1;5>]"},
		{"nil", nil, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AssembleType(tt.node))
		})
	}
}

func TestAssembleParams(t *testing.T) {
	params := []*TypeNode{
		NewTypeNode("int").Named("A"),
		NewTypeNode("int").Named("B").AsOptional(),
	}
	dependent := []*Constraint{NewConstraint("A", "<", "B")}

	assert.Equal(t, "A:int, [B:int] | A < B", AssembleParams(params, dependent))
	assert.Equal(t, "A:int, [B:int]", AssembleParams(params, nil))
	assert.Equal(t, "()", AssembleParams(nil, nil))
	assert.Equal(t, "A:int", DefaultAssembler.AssembleType(params[0]))
}

func TestTypeNodeCopies(t *testing.T) {
	base := NewTypeNode("bounded", "1", "5")
	named := base.Named("A")
	named.Options[0] = "0"

	assert.Equal(t, "1", base.Options[0])
	assert.True(t, base.IsAnonymous())
	assert.False(t, named.IsAnonymous())

	_, isRegistry := base.Checker().(RegistryCheck)
	assert.True(t, isRegistry)

	custom := base.WithCheck(func(v interface{}) bool { return v == "x" })
	pred := custom.Checker().Predicate(nil, custom)
	assert.True(t, pred("x"))
	assert.False(t, pred(3))

	assert.False(t, RegistryCheck{}.Predicate(nil, base)(3))
}
