package types

import (
	"strings"
)

// AssembleType renders a node the way it is written in a signature,
// e.g. "[A:bounded<1;5>]"
func AssembleType(node *TypeNode) string {
	if node == nil {
		return "unknown"
	}

	var b strings.Builder
	if node.Optional {
		b.WriteString("[")
	}
	if node.Name != "" {
		b.WriteString(node.Name)
		b.WriteString(":")
	}
	b.WriteString(node.Type)
	if len(node.Options) > 0 {
		b.WriteString("<")
		b.WriteString(strings.Join(node.Options, ";"))
		b.WriteString(">")
	}
	if node.Optional {
		b.WriteString("]")
	}
	return b.String()
}

// AssembleParams renders a parameter list followed by its dependent constraints
func AssembleParams(params []*TypeNode, dependent []*Constraint) string {
	if len(params) == 0 && len(dependent) == 0 {
		return "()"
	}

	parts := make([]string, len(params))
	for i, param := range params {
		parts[i] = AssembleType(param)
	}
	out := strings.Join(parts, ", ")

	if len(dependent) > 0 {
		constraints := make([]string, len(dependent))
		for i, c := range dependent {
			constraints[i] = c.String()
		}
		if out != "" {
			out += " "
		}
		out += "| " + strings.Join(constraints, ", ")
	}
	return out
}

// Assembler renders type descriptors for failure reports
type Assembler interface {
	AssembleType(node *TypeNode) string
}

// AssemblerFunc adapts a function to the Assembler interface
type AssemblerFunc func(node *TypeNode) string

// AssembleType implements Assembler
func (f AssemblerFunc) AssembleType(node *TypeNode) string {
	return f(node)
}

// DefaultAssembler renders nodes with AssembleType
var DefaultAssembler Assembler = AssemblerFunc(AssembleType)
