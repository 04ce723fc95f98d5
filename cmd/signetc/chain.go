package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/effectus/signet/schema/signature"
)

func newChainCommand() *Command {
	cmd := &Command{
		Name:        "chain",
		Description: "Validate a curried call, one argument list per stage",
		FlagSet:     flag.NewFlagSet("chain", flag.ExitOnError),
	}

	common := addCommonFlags(cmd.FlagSet)
	sigText := cmd.FlagSet.String("sig", "", "Curried signature, e.g. \"A:int => B:int | A < B => *\"")
	var argsLiterals stringList
	cmd.FlagSet.Var(&argsLiterals, "args", "Arguments of the next stage as a JSON array (repeatable)")
	argsFile := cmd.FlagSet.String("args-file", "", "File holding a JSON array of argument arrays")
	argsPath := cmd.FlagSet.String("args-path", "", "gjson path selecting the array of argument arrays")

	cmd.Run = func(stdout io.Writer) error {
		settings, err := common.settings()
		if err != nil {
			return err
		}

		stages, err := signature.ParseSignature(*sigText)
		if err != nil {
			return err
		}

		calls, err := chainCalls(argsLiterals, *argsFile, *argsPath)
		if err != nil {
			return err
		}

		registry, err := buildRegistry(settings)
		if err != nil {
			return err
		}

		chain := buildValidator(registry, settings).NewChain(signature.Inputs(stages))
		for i, args := range calls {
			failure, err := chain.Apply(args...)
			if err != nil {
				return fmt.Errorf("stage %d: %w", i, err)
			}
			if err := writeReport(stdout, settings.Format, newReport(i, failure)); err != nil {
				return err
			}
			if failure != nil {
				return errRejected
			}
		}

		if !chain.Done() {
			fmt.Fprintf(stdout, "partial application: %d of %d stage(s) applied\n", chain.Stage(), len(signature.Inputs(stages)))
		}
		return nil
	}

	return cmd
}

// chainCalls reads one argument list per stage, from repeated -args flags or
// from an array of arrays in a file
func chainCalls(literals []string, file, path string) ([][]interface{}, error) {
	if len(literals) > 0 && file != "" {
		return nil, fmt.Errorf("-args and -args-file are mutually exclusive")
	}

	if file != "" {
		source, err := argsSource{file: file, path: path}.read()
		if err != nil {
			return nil, err
		}
		if !source.IsArray() {
			return nil, fmt.Errorf("argument file must hold an array of argument arrays")
		}
		var calls [][]interface{}
		for _, item := range source.Array() {
			args, err := parseArgs(item)
			if err != nil {
				return nil, err
			}
			calls = append(calls, args)
		}
		return calls, nil
	}

	calls := make([][]interface{}, 0, len(literals))
	for _, literal := range literals {
		source, err := argsSource{literal: literal}.read()
		if err != nil {
			return nil, err
		}
		args, err := parseArgs(source)
		if err != nil {
			return nil, err
		}
		calls = append(calls, args)
	}
	return calls, nil
}
