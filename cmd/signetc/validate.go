package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/effectus/signet/internal/config"
	"github.com/effectus/signet/schema/signature"
	"github.com/effectus/signet/schema/types"
	"github.com/effectus/signet/validator"
)

// errRejected is returned when arguments fail validation
var errRejected = errors.New("arguments rejected")

// report is the JSON form of a validation outcome
type report struct {
	OK         bool        `json:"ok"`
	Stage      int         `json:"stage"`
	Kind       string      `json:"kind,omitempty"`
	Descriptor string      `json:"descriptor,omitempty"`
	Value      interface{} `json:"value,omitempty"`
}

func newReport(stage int, failure *validator.Failure) report {
	if failure == nil {
		return report{OK: true, Stage: stage}
	}
	value := failure.Value
	if types.IsUndefined(value) {
		value = "undefined"
	}
	return report{
		Stage:      stage,
		Kind:       failure.Kind.String(),
		Descriptor: failure.Descriptor,
		Value:      value,
	}
}

func writeReport(w io.Writer, format string, r report) error {
	if format == config.FormatJSON {
		encoded, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Fprintln(w, string(encoded))
		return nil
	}

	if r.OK {
		fmt.Fprintf(w, "stage %d: ok\n", r.Stage)
		return nil
	}
	if r.Kind == validator.DependentFailure.String() {
		fmt.Fprintf(w, "stage %d: constraint %s failed: %v\n", r.Stage, r.Descriptor, r.Value)
		return nil
	}
	fmt.Fprintf(w, "stage %d: expected %s but got %v\n", r.Stage, r.Descriptor, r.Value)
	return nil
}

func newValidateCommand() *Command {
	cmd := &Command{
		Name:        "validate",
		Description: "Validate one argument list against a signature stage",
		FlagSet:     flag.NewFlagSet("validate", flag.ExitOnError),
	}

	common := addCommonFlags(cmd.FlagSet)
	sigText := cmd.FlagSet.String("sig", "", "Signature, e.g. \"A:int, B:int | A < B => *\"")
	stage := cmd.FlagSet.Int("stage", 0, "Index of the input stage to validate")
	argsLiteral := cmd.FlagSet.String("args", "", "Arguments as a JSON array")
	argsFile := cmd.FlagSet.String("args-file", "", "File holding the arguments as JSON")
	argsPath := cmd.FlagSet.String("args-path", "", "gjson path selecting the argument array inside the JSON")

	cmd.Run = func(stdout io.Writer) error {
		settings, err := common.settings()
		if err != nil {
			return err
		}

		stages, err := signature.ParseSignature(*sigText)
		if err != nil {
			return err
		}
		inputs := signature.Inputs(stages)
		if *stage < 0 || *stage >= len(inputs) {
			return fmt.Errorf("stage %d out of range, signature has %d input stage(s)", *stage, len(inputs))
		}

		source, err := argsSource{literal: *argsLiteral, file: *argsFile, path: *argsPath}.read()
		if err != nil {
			return err
		}
		args, err := parseArgs(source)
		if err != nil {
			return err
		}

		registry, err := buildRegistry(settings)
		if err != nil {
			return err
		}

		failure, err := buildValidator(registry, settings).Validate(inputs[*stage], nil, args...)
		if err != nil {
			return err
		}
		if err := writeReport(stdout, settings.Format, newReport(*stage, failure)); err != nil {
			return err
		}
		if failure != nil {
			return errRejected
		}
		return nil
	}

	return cmd
}
