// Package signature parses signature strings such as
// "A:int, [B:int] | A < B => boolean" into type declarations
package signature

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/effectus/signet/schema/types"
)

// Signature is one stage of a parsed signature: its declarations in
// positional order and the dependent constraints written after '|'
type Signature struct {
	Params    []*types.TypeNode
	Dependent []*types.Constraint
	Pos       lexer.Position
}

// String renders the stage back to signature syntax
func (s *Signature) String() string {
	if s == nil {
		return ""
	}
	return types.AssembleParams(s.Params, s.Dependent)
}

// Names returns the parameter names of the stage in declaration order
func (s *Signature) Names() []string {
	names := make([]string, 0, len(s.Params))
	for _, param := range s.Params {
		if !param.IsAnonymous() {
			names = append(names, param.Name)
		}
	}
	return names
}

// signatureAST is the participle grammar root
type signatureAST struct {
	Stages []*stageAST `parser:"@@ ( '=>' @@ )*"`
}

type stageAST struct {
	Pos       lexer.Position
	Unit      bool             `parser:"(  @Unit"`
	Params    []*paramAST      `parser:" | ( @@ ( ',' @@ )* )? )"`
	Dependent []*constraintAST `parser:"( '|' @@ ( ',' @@ )* )?"`
}

type paramAST struct {
	Optional *declAST `parser:"  '[' @@ ']'"`
	Required *declAST `parser:"| @@"`
}

// declAST reads "name:type" as Head ':' Tail and a bare "type" as Head alone
type declAST struct {
	Pos     lexer.Position
	Head    string   `parser:"@( Ident | '*' )"`
	Tail    string   `parser:"( ':' @( Ident | '*' ) )?"`
	Options []string `parser:"( '<' @( Number | Ident | String | '*' ) ( ';' @( Number | Ident | String | '*' ) )* '>' )?"`
}

type constraintAST struct {
	Pos      lexer.Position
	Left     string `parser:"@( Ident ( ':' Ident )? )"`
	Operator string `parser:"@( Operator | Ident )"`
	Right    string `parser:"@( Ident ( ':' Ident )? )"`
}

var (
	signatureLexer = lexer.MustStateful(lexer.Rules{
		"Root": {
			{Name: "whitespace", Pattern: `\s+`, Action: nil},
			{Name: "Arrow", Pattern: `=>`, Action: nil},
			{Name: "Unit", Pattern: `\(\s*\)`, Action: nil},
			{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`, Action: nil},
			{Name: "String", Pattern: `'[^']*'|"[^"]*"`, Action: nil},
			{Name: "Operator", Pattern: `==|!=|<=|>=|#=|#<|#>|=|<|>`, Action: nil},
			{Name: "Ident", Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*`, Action: nil},
			{Name: "Punct", Pattern: `[\[\]|,;:*]`, Action: nil},
		},
	})

	signatureParser = participle.MustBuild[signatureAST](
		participle.Lexer(signatureLexer),
		participle.Elide("whitespace"),
		participle.UseLookahead(3),
	)

	declParser = participle.MustBuild[declAST](
		participle.Lexer(signatureLexer),
		participle.Elide("whitespace"),
		participle.UseLookahead(3),
	)
)

// ParseSignature parses a full signature. The result holds one Signature per
// '=>'-separated stage; the last stage is the output declaration.
func ParseSignature(text string) ([]*Signature, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty signature")
	}

	ast, err := signatureParser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signature '%s': %w", text, err)
	}

	stages := make([]*Signature, len(ast.Stages))
	for i, stage := range ast.Stages {
		stages[i] = stage.toSignature()
	}
	return stages, nil
}

// MustParseSignature is like ParseSignature but panics on error
func MustParseSignature(text string) []*Signature {
	stages, err := ParseSignature(text)
	if err != nil {
		panic(err)
	}
	return stages
}

// ParseType parses a single declaration such as "int", "A:bounded<1;5>" or "[string]"
func ParseType(text string) (*types.TypeNode, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("empty type")
	}

	optional := false
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		optional = true
		trimmed = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	}

	decl, err := declParser.ParseString("", trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse type '%s': %w", text, err)
	}

	node := decl.toTypeNode()
	node.Optional = optional
	return node, nil
}

// Inputs returns the stages that take arguments, dropping the output stage.
// A single-stage signature is returned unchanged.
func Inputs(stages []*Signature) []*Signature {
	if len(stages) <= 1 {
		return stages
	}
	return stages[:len(stages)-1]
}

// Parser implements the type parsing used by the validator
type Parser struct{}

// ParseType implements validator.TypeParser
func (Parser) ParseType(name string) (*types.TypeNode, error) {
	return ParseType(name)
}

func (s *stageAST) toSignature() *Signature {
	sig := &Signature{
		Params:    make([]*types.TypeNode, 0, len(s.Params)),
		Dependent: make([]*types.Constraint, 0, len(s.Dependent)),
		Pos:       s.Pos,
	}
	for _, param := range s.Params {
		if param.Optional != nil {
			node := param.Optional.toTypeNode()
			node.Optional = true
			sig.Params = append(sig.Params, node)
			continue
		}
		sig.Params = append(sig.Params, param.Required.toTypeNode())
	}
	for _, c := range s.Dependent {
		sig.Dependent = append(sig.Dependent, &types.Constraint{
			Left:     c.Left,
			Right:    c.Right,
			Operator: c.Operator,
			Pos:      c.Pos,
		})
	}
	return sig
}

func (d *declAST) toTypeNode() *types.TypeNode {
	node := &types.TypeNode{
		Type: d.Head,
		Pos:  d.Pos,
	}
	if d.Tail != "" {
		node.Name = d.Head
		node.Type = d.Tail
	}
	for _, option := range d.Options {
		node.Options = append(node.Options, unquoteOption(option))
	}
	return node
}

func unquoteOption(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if first != last || (first != '\'' && first != '"') {
		return value
	}
	if first == '"' {
		if unquoted, err := strconv.Unquote(value); err == nil {
			return unquoted
		}
	}
	return value[1 : len(value)-1]
}
