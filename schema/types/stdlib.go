package types

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// builtinType describes a standard library type
type builtinType struct {
	Name      string
	Parent    string
	Predicate ValuePredicate
}

// builtinOperator describes a standard library dependent operator
type builtinOperator struct {
	Type      string
	Operator  string
	Operation Operation
}

// RegisterStandardLibrary registers the built-in types and operators. Types
// that are already defined are kept, so the call is idempotent.
func (r *Registry) RegisterStandardLibrary() error {
	return r.registerBuiltins(standardTypes(r), standardOperators())
}

func (r *Registry) registerBuiltins(builtins []builtinType, operators []builtinOperator) error {
	for _, def := range builtins {
		if err := r.DefineSubtype(def.Parent, def.Name, def.Predicate); err != nil && !errors.Is(err, ErrDuplicateType) {
			return fmt.Errorf("builtin type %s: %w", def.Name, err)
		}
	}
	for _, op := range operators {
		if err := r.DefineDependentOperator(op.Type, op.Operator, op.Operation); err != nil {
			return fmt.Errorf("builtin operator %s on %s: %w", op.Operator, op.Type, err)
		}
	}
	return nil
}

func standardTypes(r *Registry) []builtinType {
	return []builtinType{
		{
			Name:      "null",
			Parent:    RootType,
			Predicate: func(value interface{}, _ []string) bool { return isNil(value) },
		},
		{
			Name:      "undefined",
			Parent:    RootType,
			Predicate: func(value interface{}, _ []string) bool { return IsUndefined(value) },
		},
		{
			Name:   "boolean",
			Parent: RootType,
			Predicate: func(value interface{}, _ []string) bool {
				_, ok := value.(bool)
				return ok
			},
		},
		{
			Name:   "string",
			Parent: RootType,
			Predicate: func(value interface{}, _ []string) bool {
				_, ok := value.(string)
				return ok
			},
		},
		{
			Name:   "number",
			Parent: RootType,
			Predicate: func(value interface{}, _ []string) bool {
				_, ok := toFloat(value)
				return ok
			},
		},
		{
			Name:   "int",
			Parent: "number",
			Predicate: func(value interface{}, _ []string) bool {
				f, _ := toFloat(value)
				return !math.IsInf(f, 0) && math.Floor(f) == f
			},
		},
		{
			Name:   "bounded",
			Parent: "number",
			Predicate: func(value interface{}, options []string) bool {
				return inBounds(value, options)
			},
		},
		{
			Name:      "object",
			Parent:    RootType,
			Predicate: func(value interface{}, _ []string) bool { return isObject(value) },
		},
		{
			Name:   "array",
			Parent: RootType,
			Predicate: func(value interface{}, options []string) bool {
				kind := kindOf(value)
				if kind != reflect.Slice && kind != reflect.Array {
					return false
				}
				// array<elem> checks every element against elem
				if len(options) == 0 || !r.IsType(options[0]) {
					return true
				}
				elem := r.IsTypeOf(NewTypeNode(options[0], options[1:]...))
				rv := reflect.ValueOf(value)
				for i := 0; i < rv.Len(); i++ {
					if !elem(rv.Index(i).Interface()) {
						return false
					}
				}
				return true
			},
		},
		{
			Name:   "function",
			Parent: RootType,
			Predicate: func(value interface{}, _ []string) bool {
				return kindOf(value) == reflect.Func
			},
		},
	}
}

func standardOperators() []builtinOperator {
	return []builtinOperator{
		{Type: RootType, Operator: "=", Operation: func(a, b interface{}, _, _ *TypeNode, _ *Constraint) bool {
			return valuesEqual(a, b)
		}},
		{Type: RootType, Operator: "!=", Operation: func(a, b interface{}, _, _ *TypeNode, _ *Constraint) bool {
			return !valuesEqual(a, b)
		}},
		{Type: RootType, Operator: "typeof", Operation: func(a, b interface{}, _, _ *TypeNode, _ *Constraint) bool {
			switch pred := b.(type) {
			case Predicate:
				return pred(a)
			case func(interface{}) bool:
				return pred(a)
			default:
				return false
			}
		}},

		{Type: "number", Operator: "<", Operation: compareNumbers(func(c int) bool { return c < 0 })},
		{Type: "number", Operator: "<=", Operation: compareNumbers(func(c int) bool { return c <= 0 })},
		{Type: "number", Operator: ">", Operation: compareNumbers(func(c int) bool { return c > 0 })},
		{Type: "number", Operator: ">=", Operation: compareNumbers(func(c int) bool { return c >= 0 })},
		{Type: "number", Operator: "=", Operation: compareNumbers(func(c int) bool { return c == 0 })},
		{Type: "number", Operator: "!=", Operation: compareNumbers(func(c int) bool { return c != 0 })},

		{Type: "string", Operator: "<", Operation: compareStrings(func(c int) bool { return c < 0 })},
		{Type: "string", Operator: "<=", Operation: compareStrings(func(c int) bool { return c <= 0 })},
		{Type: "string", Operator: ">", Operation: compareStrings(func(c int) bool { return c > 0 })},
		{Type: "string", Operator: ">=", Operation: compareStrings(func(c int) bool { return c >= 0 })},
		{Type: "string", Operator: "#=", Operation: compareLengths(func(c int) bool { return c == 0 })},
		{Type: "string", Operator: "#<", Operation: compareLengths(func(c int) bool { return c < 0 })},
		{Type: "string", Operator: "#>", Operation: compareLengths(func(c int) bool { return c > 0 })},

		{Type: "array", Operator: "#=", Operation: compareLengths(func(c int) bool { return c == 0 })},
		{Type: "array", Operator: "#<", Operation: compareLengths(func(c int) bool { return c < 0 })},
		{Type: "array", Operator: "#>", Operation: compareLengths(func(c int) bool { return c > 0 })},
	}
}

func compareNumbers(accept func(int) bool) Operation {
	return func(a, b interface{}, _, _ *TypeNode, _ *Constraint) bool {
		left, ok := toFloat(a)
		if !ok {
			return false
		}
		right, ok := toFloat(b)
		if !ok {
			return false
		}
		switch {
		case left < right:
			return accept(-1)
		case left > right:
			return accept(1)
		case left == right:
			return accept(0)
		default:
			// NaN compares with nothing
			return false
		}
	}
}

func compareStrings(accept func(int) bool) Operation {
	return func(a, b interface{}, _, _ *TypeNode, _ *Constraint) bool {
		left, ok := a.(string)
		if !ok {
			return false
		}
		right, ok := b.(string)
		if !ok {
			return false
		}
		return accept(strings.Compare(left, right))
	}
}

func compareLengths(accept func(int) bool) Operation {
	return func(a, b interface{}, _, _ *TypeNode, _ *Constraint) bool {
		left, ok := sizeOf(a)
		if !ok {
			return false
		}
		right, ok := sizeOf(b)
		if !ok {
			return false
		}
		switch {
		case left < right:
			return accept(-1)
		case left > right:
			return accept(1)
		default:
			return accept(0)
		}
	}
}

func inBounds(value interface{}, options []string) bool {
	f, ok := toFloat(value)
	if !ok {
		return false
	}
	if len(options) > 0 {
		if lower, err := strconv.ParseFloat(strings.TrimSpace(options[0]), 64); err == nil && f < lower {
			return false
		}
	}
	if len(options) > 1 {
		if upper, err := strconv.ParseFloat(strings.TrimSpace(options[1]), 64); err == nil && f > upper {
			return false
		}
	}
	return true
}

// toFloat converts any Go numeric kind to float64
func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case int16:
		return float64(v), true
	case int8:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint8:
		return float64(v), true
	}
	return 0, false
}

// sizeOf returns the length of strings, slices, arrays and maps
func sizeOf(value interface{}) (int, bool) {
	if s, ok := value.(string); ok {
		return len(s), true
	}
	switch kindOf(value) {
	case reflect.Slice, reflect.Array, reflect.Map:
		return reflect.ValueOf(value).Len(), true
	default:
		return 0, false
	}
}

func kindOf(value interface{}) reflect.Kind {
	if value == nil {
		return reflect.Invalid
	}
	return reflect.TypeOf(value).Kind()
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

func isObject(value interface{}) bool {
	if IsUndefined(value) || isNil(value) {
		return false
	}
	switch kindOf(value) {
	case reflect.Map, reflect.Struct:
		return true
	case reflect.Ptr:
		return reflect.TypeOf(value).Elem().Kind() == reflect.Struct
	default:
		return false
	}
}

func valuesEqual(a, b interface{}) bool {
	if left, ok := toFloat(a); ok {
		if right, ok := toFloat(b); ok {
			return left == right
		}
	}
	return reflect.DeepEqual(a, b)
}
