package types

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Definitions is the file form of user-defined types and operators
//
//	types:
//	  - name: positive
//	    parent: number
//	    expr: value > 0
//	operators:
//	  - type: string
//	    operator: "~="
//	    expr: lower(left) == lower(right)
type Definitions struct {
	Types     []TypeDefinition     `yaml:"types" json:"types"`
	Operators []OperatorDefinition `yaml:"operators" json:"operators"`
}

// TypeDefinition declares a type by expression
type TypeDefinition struct {
	Name        string `yaml:"name" json:"name"`
	Parent      string `yaml:"parent" json:"parent"`
	Expr        string `yaml:"expr" json:"expr"`
	Description string `yaml:"description" json:"description"`
}

// OperatorDefinition declares a dependent operator by expression
type OperatorDefinition struct {
	Type        string `yaml:"type" json:"type"`
	Operator    string `yaml:"operator" json:"operator"`
	Expr        string `yaml:"expr" json:"expr"`
	Description string `yaml:"description" json:"description"`
}

// ParseDefinitions decodes YAML (or JSON) definitions
func ParseDefinitions(data []byte) (*Definitions, error) {
	defs := &Definitions{}
	if err := yaml.Unmarshal(data, defs); err != nil {
		return nil, fmt.Errorf("parsing definitions: %w", err)
	}
	return defs, nil
}

// Apply registers the definitions in order. Types are registered before
// operators so an operator may target a type from the same file.
func (d *Definitions) Apply(r *Registry) error {
	for i, def := range d.Types {
		if def.Name == "" {
			return fmt.Errorf("types[%d]: name is required", i)
		}
		if err := r.DefineExprType(def.Name, def.Parent, def.Expr); err != nil {
			return fmt.Errorf("types[%d]: %w", i, err)
		}
	}
	for i, def := range d.Operators {
		typeName := def.Type
		if typeName == "" {
			typeName = RootType
		}
		if err := r.DefineExprOperator(typeName, def.Operator, def.Expr); err != nil {
			return fmt.Errorf("operators[%d]: %w", i, err)
		}
	}
	return nil
}

// LoadDefinitions parses definitions and registers them
func (r *Registry) LoadDefinitions(data []byte) error {
	defs, err := ParseDefinitions(data)
	if err != nil {
		return err
	}
	return defs.Apply(r)
}

// LoadDefinitionsFile loads definitions from a YAML or JSON file
func (r *Registry) LoadDefinitionsFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading definitions file: %w", err)
	}
	if err := r.LoadDefinitions(data); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	return nil
}
