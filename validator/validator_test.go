package validator

import (
	"bytes"
	"errors"
	"log"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/effectus/signet/schema/signature"
	"github.com/effectus/signet/schema/types"
)

func newTestValidator(t *testing.T, options ...Option) (*Validator, *types.Registry) {
	t.Helper()

	registry := types.NewRegistry()
	require.NoError(t, registry.DefineSubtype("number", "rangedNumber", func(value interface{}, options []string) bool {
		if len(options) < 2 {
			return false
		}
		var f float64
		switch n := value.(type) {
		case int:
			f = float64(n)
		case float64:
			f = n
		default:
			return false
		}
		min, _ := strconv.ParseFloat(options[0], 64)
		max, _ := strconv.ParseFloat(options[1], 64)
		return min <= f && f <= max
	}))

	return New(registry, options...), registry
}

func firstStage(t *testing.T, text string) *signature.Signature {
	t.Helper()
	stages, err := signature.ParseSignature(text)
	require.NoError(t, err)
	return stages[0]
}

func TestValidateType(t *testing.T) {
	v, _ := newTestValidator(t)

	isString := v.ValidateType(types.NewTypeNode("string"))
	assert.True(t, isString("foo"))

	isNumber := v.ValidateType(types.NewTypeNode("number"))
	assert.False(t, isNumber("foo"))

	override := types.NewTypeNode("number").WithCheck(func(value interface{}) bool { return value == "foo" })
	assert.True(t, v.ValidateType(override)("foo"))
	assert.False(t, v.ValidateType(override)(5))
}

func TestValidateArguments(t *testing.T) {
	v, _ := newTestValidator(t)

	tests := []struct {
		name      string
		signature string
		args      []interface{}
		want      *Failure
	}{
		{
			name:      "empty signature",
			signature: "()",
			args:      nil,
		},
		{
			name:      "all arguments valid",
			signature: "string, number => object",
			args:      []interface{}{"foo", 5},
		},
		{
			name:      "value fails",
			signature: "string, number => object",
			args:      []interface{}{"foo", "bar"},
			want:      &Failure{Kind: PositionalFailure, Descriptor: "number", Value: "bar"},
		},
		{
			name:      "only the first failure is reported",
			signature: "string, number, boolean => *",
			args:      []interface{}{5, "bar", "baz"},
			want:      &Failure{Kind: PositionalFailure, Descriptor: "string", Value: 5},
		},
		{
			name:      "optional absent",
			signature: "string, [number] => object",
			args:      []interface{}{"foo"},
		},
		{
			name:      "optional subtype absent",
			signature: "int, [int] => *",
			args:      []interface{}{5},
		},
		{
			name:      "present but wrong trailing optional",
			signature: "string, [number] => object",
			args:      []interface{}{"foo", "bar"},
			want:      &Failure{Kind: PositionalFailure, Descriptor: "[number]", Value: "bar"},
		},
		{
			name:      "present but wrong trailing optional subtype",
			signature: "int, [int] => *",
			args:      []interface{}{5, "foo"},
			want:      &Failure{Kind: PositionalFailure, Descriptor: "[int]", Value: "foo"},
		},
		{
			name:      "extra arguments ignored",
			signature: "int, [int] => *",
			args:      []interface{}{5, 6, "foo", true},
		},
		{
			name:      "interior optional skipped",
			signature: "[number], string => *",
			args:      []interface{}{"foo"},
		},
		{
			name:      "full type string on failure",
			signature: "rangedNumber<1;5> => *",
			args:      []interface{}{-3},
			want:      &Failure{Kind: PositionalFailure, Descriptor: "rangedNumber<1;5>", Value: -3},
		},
		{
			name:      "missing required argument",
			signature: "string, number => *",
			args:      []interface{}{"foo"},
			want:      &Failure{Kind: PositionalFailure, Descriptor: "number", Value: types.Undefined},
		},
		{
			name:      "dependent failure",
			signature: "A:int, B:int | A < B => *",
			args:      []interface{}{6, 5},
			want:      &Failure{Kind: DependentFailure, Descriptor: "A < B", Value: "A = 6 and B = 5"},
		},
		{
			name:      "dependent chain passes",
			signature: "A:int, B:int, C:int | A < B, B < C => *",
			args:      []interface{}{4, 5, 6},
		},
		{
			name:      "first violated constraint wins",
			signature: "A:int, B:int, C:int | A < B, B < C, A > C => *",
			args:      []interface{}{4, 7, 6},
			want:      &Failure{Kind: DependentFailure, Descriptor: "B < C", Value: "B = 7 and C = 6"},
		},
		{
			name:      "positional failure takes precedence",
			signature: "A:int, B:int | A < B => *",
			args:      []interface{}{6, "five"},
			want:      &Failure{Kind: PositionalFailure, Descriptor: "B:int", Value: "five"},
		},
		{
			name:      "qualifiers are stripped",
			signature: "A:int, B:int | A:low < B:high => *",
			args:      []interface{}{6, 5},
			want:      &Failure{Kind: DependentFailure, Descriptor: "A < B", Value: "A = 6 and B = 5"},
		},
		{
			name:      "unknown operator fails closed",
			signature: "A:boolean, B:boolean | A < B => *",
			args:      []interface{}{false, true},
			want:      &Failure{Kind: DependentFailure, Descriptor: "A < B", Value: "A = false and B = true"},
		},
		{
			name:      "typeof against a type name",
			signature: "A:number | A typeof int => *",
			args:      []interface{}{4},
		},
		{
			name:      "typeof against a type name fails",
			signature: "A:number | A typeof int => *",
			args:      []interface{}{4.5},
			want:      &Failure{Kind: DependentFailure, Descriptor: "A typeof int", Value: "A = 4.5 and int = int"},
		},
		{
			name:      "unresolvable operand is deferred",
			signature: "A:int | A < Nope => *",
			args:      []interface{}{4},
		},
		{
			name:      "string length operator",
			signature: "A:string, B:string | A #= B => *",
			args:      []interface{}{"abc", "ab"},
			want:      &Failure{Kind: DependentFailure, Descriptor: "A #= B", Value: "A = abc and B = ab"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failure, err := v.ValidateArguments(firstStage(t, tt.signature), nil)(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, failure)
		})
	}
}

func TestValidateArgumentsEmptyEverything(t *testing.T) {
	v, _ := newTestValidator(t)

	failure, err := v.ValidateArguments(&signature.Signature{}, nil)(nil)
	assert.NoError(t, err)
	assert.Nil(t, failure)

	failure, err = v.ValidateArguments(nil, nil)(nil)
	assert.NoError(t, err)
	assert.Nil(t, failure)

	failure, deferred := v.checkDependent(NewEnvironment(), nil)
	assert.Nil(t, failure)
	assert.Empty(t, deferred)
	assert.Nil(t, v.validatePositional(nil, nil))
}

func TestPositionalOnlyEvaluatesUpToFirstFailure(t *testing.T) {
	v, _ := newTestValidator(t)
	calls := 0
	counting := func(accept bool) *types.TypeNode {
		return types.NewTypeNode("*").WithCheck(func(interface{}) bool {
			calls++
			return accept
		})
	}

	typeList := []*types.TypeNode{counting(true), counting(false), counting(false)}
	failure := v.validatePositional(typeList, []interface{}{1, 2, 3})

	require.NotNil(t, failure)
	assert.Equal(t, 2, failure.Value)
	assert.Equal(t, 2, calls)
}

func TestDependentStopsAtFirstViolation(t *testing.T) {
	registry := types.NewRegistry()
	calls := 0
	require.NoError(t, registry.Define("counted", func(interface{}, []string) bool { return true }))
	require.NoError(t, registry.DefineDependentOperator("counted", "rel", func(interface{}, interface{}, *types.TypeNode, *types.TypeNode, *types.Constraint) bool {
		calls++
		return false
	}))
	v := New(registry)

	sig := firstStage(t, "A:counted, B:counted | A rel B, B rel A")
	failure, err := v.Validate(sig, nil, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, failure)
	assert.Equal(t, "A rel B", failure.Descriptor)
	assert.Equal(t, 1, calls)
}

func TestOperatorReceivesOperands(t *testing.T) {
	registry := types.NewRegistry()
	var gotLeft, gotRight *types.TypeNode
	var gotConstraint *types.Constraint
	require.NoError(t, registry.DefineDependentOperator("int", "near", func(a, b interface{}, l, r *types.TypeNode, c *types.Constraint) bool {
		gotLeft, gotRight, gotConstraint = l, r, c
		return a == 1 && b == 2
	}))
	v := New(registry)

	failure, err := v.Validate(firstStage(t, "A:int, B:int | A near B"), nil, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, failure)
	assert.Equal(t, "A", gotLeft.Name)
	assert.Equal(t, "B", gotRight.Name)
	assert.Equal(t, "near", gotConstraint.Operator)
}

func TestCurriedChainThroughSharedEnvironment(t *testing.T) {
	tests := []struct {
		name  string
		first interface{}
		want  *Failure
	}{
		{name: "deferred constraint holds", first: 4},
		{
			name:  "deferred constraint violated",
			first: 6,
			want:  &Failure{Kind: DependentFailure, Descriptor: "A < B", Value: "A = 6 and B = 5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := newTestValidator(t)
			stages := signature.MustParseSignature("A:int | A < B => B:int => *")
			env := NewEnvironment()

			failure, err := v.ValidateArguments(stages[0], env)([]interface{}{tt.first})
			require.NoError(t, err)
			assert.Nil(t, failure, "constraint with unbound operand must be deferred")
			require.Len(t, env.Pending(), 1)

			failure, err = v.ValidateArguments(stages[1], env)([]interface{}{5})
			require.NoError(t, err)
			assert.Equal(t, tt.want, failure)
			assert.Empty(t, env.Pending())
			assert.Equal(t, []string{"A", "B"}, env.Names())
		})
	}
}

func TestChainCompletesDeferredConstraint(t *testing.T) {
	v, _ := newTestValidator(t)
	stages := signature.Inputs(signature.MustParseSignature("A:int | A < B => B:int => *"))

	chain := v.NewChain(stages)
	failure, err := chain.Apply(4)
	require.NoError(t, err)
	assert.Nil(t, failure)
	failure, err = chain.Apply(5)
	require.NoError(t, err)
	assert.Nil(t, failure)

	chain = v.NewChain(stages)
	failure, err = chain.Apply(6)
	require.NoError(t, err)
	assert.Nil(t, failure)
	failure, err = chain.Apply(5)
	require.NoError(t, err)
	assert.Equal(t, &Failure{Kind: DependentFailure, Descriptor: "A < B", Value: "A = 6 and B = 5"}, failure)
}

func TestDeferredOperandBoundTwoStagesLater(t *testing.T) {
	v, _ := newTestValidator(t)
	stages := signature.Inputs(signature.MustParseSignature("A:int | A < C => B:int => C:int => *"))

	chain := v.NewChain(stages)
	for _, arg := range []int{6, 1} {
		failure, err := chain.Apply(arg)
		require.NoError(t, err)
		assert.Nil(t, failure)
	}
	assert.Len(t, chain.Environment().Pending(), 1, "still waiting for C")

	failure, err := chain.Apply(5)
	require.NoError(t, err)
	assert.Equal(t, &Failure{Kind: DependentFailure, Descriptor: "A < C", Value: "A = 6 and C = 5"}, failure)
	assert.Empty(t, chain.Environment().Pending())
}

func TestPendingCheckedAfterStageConstraints(t *testing.T) {
	v, _ := newTestValidator(t)
	stages := signature.Inputs(signature.MustParseSignature("A:int | A < B => B:int, C:int | B < C => *"))

	chain := v.NewChain(stages)
	_, err := chain.Apply(6)
	require.NoError(t, err)

	// both fail; the stage's own constraint is reported first and the
	// deferred one stays pending
	failure, err := chain.Apply(5, 4)
	require.NoError(t, err)
	assert.Equal(t, &Failure{Kind: DependentFailure, Descriptor: "B < C", Value: "B = 5 and C = 4"}, failure)
	assert.Len(t, chain.Environment().Pending(), 1)
}

func TestEvaluatedPendingConstraintIsDropped(t *testing.T) {
	v, _ := newTestValidator(t)
	stages := signature.Inputs(signature.MustParseSignature("A:int | A < B => B:int => C:int => *"))

	chain := v.NewChain(stages)
	for _, arg := range []int{6, 5} {
		_, err := chain.Apply(arg)
		require.NoError(t, err)
	}

	failure, err := chain.Apply(1)
	require.NoError(t, err)
	assert.Nil(t, failure, "a violated constraint is reported once")
}

func TestInteriorOptionalPairsByIndex(t *testing.T) {
	v, _ := newTestValidator(t)
	env := NewEnvironment()

	failure, err := v.Validate(firstStage(t, "[A:number], B:string"), env, "foo")
	require.NoError(t, err)
	assert.Nil(t, failure)

	a, ok := env.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, "foo", a.Value)
	assert.False(t, env.Has("B"))
}

func TestCurriedConstraintOnLaterStage(t *testing.T) {
	v, _ := newTestValidator(t)
	stages := signature.MustParseSignature("A:int => B:int | A < B => *")

	chain := v.NewChain(signature.Inputs(stages))

	failure, err := chain.Apply(6)
	require.NoError(t, err)
	assert.Nil(t, failure)

	failure, err = chain.Apply(5)
	require.NoError(t, err)
	assert.Equal(t, &Failure{Kind: DependentFailure, Descriptor: "A < B", Value: "A = 6 and B = 5"}, failure)
	assert.True(t, chain.Done())

	_, err = chain.Apply(1)
	assert.ErrorIs(t, err, ErrChainExhausted)
}

func TestChainSuccess(t *testing.T) {
	v, _ := newTestValidator(t)
	chain := v.NewChain(signature.Inputs(signature.MustParseSignature("A:int => B:int | A < B => *")))

	failure, err := chain.Apply(4)
	require.NoError(t, err)
	assert.Nil(t, failure)
	assert.Equal(t, 1, chain.Stage())

	failure, err = chain.Apply(5)
	require.NoError(t, err)
	assert.Nil(t, failure)
	assert.Equal(t, 2, chain.Environment().Len())
}

func TestRebindAcrossStagesIsAFault(t *testing.T) {
	v, _ := newTestValidator(t)
	stages := signature.MustParseSignature("A:int => A:int => *")
	env := NewEnvironment()

	failure, err := v.ValidateArguments(stages[0], env)([]interface{}{4})
	require.NoError(t, err)
	require.Nil(t, failure)

	failure, err = v.ValidateArguments(stages[1], env)([]interface{}{5})
	assert.Nil(t, failure)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRebind))

	var rebind *RebindError
	require.True(t, errors.As(err, &rebind))
	assert.Equal(t, "A", rebind.Name)
	assert.Equal(t, env.ID(), rebind.EnvironmentID)

	binding, ok := env.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, 4, binding.Value, "the first binding must survive")
}

func TestRebindIsReportedBeforeValidation(t *testing.T) {
	v, _ := newTestValidator(t)
	env := NewEnvironment()
	_, err := BuildEnvironment([]*types.TypeNode{types.NewTypeNode("int").Named("A")}, []interface{}{1}, env)
	require.NoError(t, err)

	// the argument is also the wrong type; the fault still wins
	failure, err := v.Validate(firstStage(t, "A:int"), env, "not an int")
	assert.Nil(t, failure)
	assert.ErrorIs(t, err, ErrRebind)
}

func TestTraceLogging(t *testing.T) {
	var buf bytes.Buffer
	v, _ := newTestValidator(t, WithLogger(log.New(&buf, "", 0)), WithTrace(true))

	_, err := v.Validate(firstStage(t, "A:boolean | A < B"), nil, true)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "deferring A < B")

	buf.Reset()
	_, err = v.Validate(firstStage(t, "A:boolean, B:boolean | A < B"), nil, true, false)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `no operator "<" on type boolean`)
}

func TestCustomAssembler(t *testing.T) {
	registry := types.NewRegistry()
	v := New(registry, WithAssembler(types.AssemblerFunc(func(node *types.TypeNode) string {
		return "<" + node.Type + ">"
	})))

	failure, err := v.Validate(firstStage(t, "string"), nil, 5)
	require.NoError(t, err)
	assert.Equal(t, "<string>", failure.Descriptor)
}

func TestResolveTypeBinding(t *testing.T) {
	v, _ := newTestValidator(t)

	binding, err := v.ResolveTypeBinding("int")
	require.NoError(t, err)
	assert.True(t, binding.Resolved)
	assert.Equal(t, "int", binding.TypeNode.Type)
	pred, ok := binding.Value.(types.Predicate)
	require.True(t, ok)
	assert.True(t, pred(3))
	assert.False(t, pred(3.5))
	assert.Equal(t, "int", binding.Describe())

	_, err = v.ResolveTypeBinding("nope")
	assert.Error(t, err)
}

func TestFailureRendering(t *testing.T) {
	positional := &Failure{Kind: PositionalFailure, Descriptor: "number", Value: "bar"}
	assert.Equal(t, [2]interface{}{"number", "bar"}, positional.Pair())
	assert.Equal(t, "expected number but got bar", positional.String())

	dependent := &Failure{Kind: DependentFailure, Descriptor: "A < B", Value: "A = 6 and B = 5"}
	assert.Equal(t, "constraint A < B failed: A = 6 and B = 5", dependent.String())
	assert.Equal(t, "dependent", dependent.Kind.String())

	var ok *Failure
	assert.Equal(t, "ok", ok.String())
	assert.Equal(t, [2]interface{}{nil, nil}, ok.Pair())
}
