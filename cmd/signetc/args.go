package main

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// stringList collects a repeatable string flag
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, " ")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// argsSource selects where an argument list is read from
type argsSource struct {
	literal string
	file    string
	path    string
}

// read returns the argument lists selected by the source. A literal or file
// that holds an array of arrays with a non-empty path yields several lists.
func (a argsSource) read() (gjson.Result, error) {
	var raw string
	switch {
	case a.literal != "" && a.file != "":
		return gjson.Result{}, fmt.Errorf("-args and -args-file are mutually exclusive")
	case a.file != "":
		data, err := os.ReadFile(a.file)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("reading args file: %w", err)
		}
		raw = string(data)
	case a.literal != "":
		raw = a.literal
	default:
		raw = "[]"
	}

	if !gjson.Valid(raw) {
		return gjson.Result{}, fmt.Errorf("arguments are not valid JSON")
	}

	result := gjson.Parse(raw)
	if a.path != "" {
		result = result.Get(a.path)
		if !result.Exists() {
			return gjson.Result{}, fmt.Errorf("path %q not found in arguments", a.path)
		}
	}
	return result, nil
}

// parseArgs converts a JSON array into an argument list
func parseArgs(result gjson.Result) ([]interface{}, error) {
	if !result.IsArray() {
		return nil, fmt.Errorf("arguments must be a JSON array, got %s", result.Type)
	}

	items := result.Array()
	args := make([]interface{}, len(items))
	for i, item := range items {
		args[i] = jsonValue(item)
	}
	return args, nil
}

// jsonValue maps a JSON value onto the Go values the registry predicates
// understand. Integral numbers become int so they print without a fraction.
func jsonValue(result gjson.Result) interface{} {
	switch result.Type {
	case gjson.Number:
		f := result.Num
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int(f)
		}
		return f
	case gjson.JSON:
		if result.IsArray() {
			items := result.Array()
			values := make([]interface{}, len(items))
			for i, item := range items {
				values[i] = jsonValue(item)
			}
			return values
		}
		values := make(map[string]interface{})
		result.ForEach(func(key, value gjson.Result) bool {
			values[key.String()] = jsonValue(value)
			return true
		})
		return values
	default:
		return result.Value()
	}
}
