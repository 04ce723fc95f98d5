package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/effectus/signet/schema/signature"
	"github.com/effectus/signet/schema/types"
)

func lintText(t *testing.T, text string, options Options) []Issue {
	t.Helper()
	stages, err := signature.ParseSignature(text)
	require.NoError(t, err)
	return LintSignature(signature.Inputs(stages), types.NewRegistry(), options)
}

func TestLintCleanSignature(t *testing.T) {
	issues := lintText(t, "A:int, B:int, [string] | A < B => object", DefaultOptions())
	assert.Empty(t, issues)
}

func TestLintDetectsUnknownType(t *testing.T) {
	issues := lintText(t, "A:money => *", DefaultOptions())

	issue := findIssue(issues, CodeUnknownType)
	require.NotNil(t, issue)
	assert.Equal(t, SeverityError, issue.Severity)
	assert.Contains(t, issue.Message, `"money"`)
	assert.Equal(t, 1, issue.Pos.Line)
}

func TestLintDetectsDuplicateNameAcrossStages(t *testing.T) {
	issues := lintText(t, "A:int => A:int => *", DefaultOptions())

	issue := findIssue(issues, CodeDuplicateName)
	require.NotNil(t, issue)
	assert.Equal(t, SeverityError, issue.Severity)
	assert.Contains(t, issue.Message, `"A"`)
}

func TestLintDetectsMissingOperator(t *testing.T) {
	issues := lintText(t, "A:boolean, B:boolean | A < B => *", DefaultOptions())

	issue := findIssue(issues, CodeMissingOperator)
	require.NotNil(t, issue)
	assert.Equal(t, SeverityError, issue.Severity)
	assert.Contains(t, issue.Message, "A < B always fails")
}

func TestLintInheritedOperatorIsNotMissing(t *testing.T) {
	issues := lintText(t, "A:int, B:number | A <= B, A typeof int => *", DefaultOptions())
	assert.False(t, hasIssue(issues, CodeMissingOperator))
	assert.False(t, hasIssue(issues, CodeUnboundOperand))
}

func TestLintDetectsUnboundOperand(t *testing.T) {
	issues := lintText(t, "A:int | A < B => *", DefaultOptions())

	issue := findIssue(issues, CodeUnboundOperand)
	require.NotNil(t, issue)
	assert.Equal(t, SeverityWarning, issue.Severity)
	assert.Contains(t, issue.Message, "B is never bound")
}

func TestLintOperandBoundInLaterStage(t *testing.T) {
	for _, text := range []string{
		"A:int | A < B => B:int => *",
		"A:int | A < C => B:int => C:int => *",
	} {
		issues := lintText(t, text, DefaultOptions())
		assert.False(t, hasIssue(issues, CodeUnboundOperand), text)
		assert.Empty(t, issues, text)
	}
}

func TestLintDetectsAmbiguousOptional(t *testing.T) {
	issues := lintText(t, "[number], int => *", DefaultOptions())
	assert.True(t, hasIssue(issues, CodeAmbiguousOptional))

	issues = lintText(t, "[string], int => *", DefaultOptions())
	assert.False(t, hasIssue(issues, CodeAmbiguousOptional))
}

func TestLintDetectsQualifier(t *testing.T) {
	issues := lintText(t, "A:int, B:int | A:low < B => *", DefaultOptions())

	issue := findIssue(issues, CodeUnresolvedQualifier)
	require.NotNil(t, issue)
	assert.Contains(t, issue.Message, `"low"`)
}

func TestLintStrictUpgradesWarnings(t *testing.T) {
	issues := lintText(t, "A:int | A < B => *", Options{Strict: true})

	require.NotEmpty(t, issues)
	for _, issue := range issues {
		assert.Equal(t, SeverityError, issue.Severity)
	}
	assert.True(t, HasErrors(issues))
}

func TestLintSource(t *testing.T) {
	registry := types.NewRegistry()

	issues := LintSource("sig.txt", "A:money => *", registry, DefaultOptions())
	require.Len(t, issues, 1)
	assert.Equal(t, "sig.txt", issues[0].File)
	assert.Contains(t, issues[0].String(), "sig.txt:1:")

	issues = LintSource("sig.txt", "A:int,, => *", registry, DefaultOptions())
	require.Len(t, issues, 1)
	assert.Equal(t, CodeParseError, issues[0].Code)
	assert.True(t, HasErrors(issues))
}

func TestLintDefinitions(t *testing.T) {
	defs := &types.Definitions{
		Types: []types.TypeDefinition{
			{Name: "positive", Parent: "number", Expr: "value > 0"},
			{Name: "short", Parent: "string", Expr: "len(value) <= limit"},
			{Name: "never", Expr: "1 > 2"},
			{Name: "broken", Expr: "value >"},
		},
		Operators: []types.OperatorDefinition{
			{Type: "string", Operator: "~=", Expr: "lower(left) == lower(right)"},
			{Type: "number", Operator: "near", Expr: "abs(left - value) < 1"},
		},
	}

	issues := LintDefinitions("defs.yaml", defs, DefaultOptions())

	var codes []string
	for _, issue := range issues {
		codes = append(codes, issue.Code)
		assert.Equal(t, "defs.yaml", issue.File)
	}
	assert.ElementsMatch(t, []string{
		CodeUnknownVariable,
		CodeConstantExpression,
		CodeInvalidExpression,
		CodeUnknownVariable,
	}, codes)

	unknown := findIssue(issues, CodeUnknownVariable)
	require.NotNil(t, unknown)
	assert.Contains(t, unknown.Message, `"limit"`)

	constant := findIssue(issues, CodeConstantExpression)
	require.NotNil(t, constant)
	assert.Contains(t, constant.Message, "always false")
}

func findIssue(issues []Issue, code string) *Issue {
	for i := range issues {
		if issues[i].Code == code {
			return &issues[i]
		}
	}
	return nil
}

func hasIssue(issues []Issue, code string) bool {
	return findIssue(issues, code) != nil
}
