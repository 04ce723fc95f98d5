package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/effectus/signet/internal/config"
	"github.com/effectus/signet/schema/signature"
	"github.com/effectus/signet/schema/types"
)

type paramInfo struct {
	Name     string   `json:"name,omitempty"`
	Type     string   `json:"type"`
	Optional bool     `json:"optional,omitempty"`
	Options  []string `json:"options,omitempty"`
	Known    bool     `json:"known"`
}

type stageInfo struct {
	Index       int         `json:"index"`
	Output      bool        `json:"output,omitempty"`
	Text        string      `json:"text"`
	Params      []paramInfo `json:"params"`
	Constraints []string    `json:"constraints,omitempty"`
}

func describeStages(stages []*signature.Signature, registry *types.Registry) []stageInfo {
	infos := make([]stageInfo, len(stages))
	for i, stage := range stages {
		info := stageInfo{
			Index:  i,
			Output: len(stages) > 1 && i == len(stages)-1,
			Text:   stage.String(),
			Params: make([]paramInfo, len(stage.Params)),
		}
		for j, param := range stage.Params {
			info.Params[j] = paramInfo{
				Name:     param.Name,
				Type:     param.Type,
				Optional: param.Optional,
				Options:  param.Options,
				Known:    registry.IsType(param.Type),
			}
		}
		for _, c := range stage.Dependent {
			info.Constraints = append(info.Constraints, c.String())
		}
		infos[i] = info
	}
	return infos
}

func writeStages(w io.Writer, format string, infos []stageInfo) error {
	if format == config.FormatJSON {
		encoded, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding signature: %w", err)
		}
		fmt.Fprintln(w, string(encoded))
		return nil
	}

	for _, info := range infos {
		label := "input"
		if info.Output {
			label = "output"
		}
		fmt.Fprintf(w, "stage %d (%s): %s\n", info.Index, label, info.Text)
		for _, param := range info.Params {
			name := param.Name
			if name == "" {
				name = "_"
			}
			var flags []string
			if param.Optional {
				flags = append(flags, "optional")
			}
			if !param.Known {
				flags = append(flags, "unknown type")
			}
			line := fmt.Sprintf("  %s: %s", name, param.Type)
			if len(param.Options) > 0 {
				line += "<" + strings.Join(param.Options, ";") + ">"
			}
			if len(flags) > 0 {
				line += " (" + strings.Join(flags, ", ") + ")"
			}
			fmt.Fprintln(w, line)
		}
		for _, c := range info.Constraints {
			fmt.Fprintf(w, "  | %s\n", c)
		}
	}
	return nil
}

func newDescribeCommand() *Command {
	cmd := &Command{
		Name:        "describe",
		Description: "Show the parsed stages of a signature",
		FlagSet:     flag.NewFlagSet("describe", flag.ExitOnError),
	}

	common := addCommonFlags(cmd.FlagSet)
	sigText := cmd.FlagSet.String("sig", "", "Signature to describe")

	cmd.Run = func(stdout io.Writer) error {
		settings, err := common.settings()
		if err != nil {
			return err
		}
		stages, err := signature.ParseSignature(*sigText)
		if err != nil {
			return err
		}
		registry, err := buildRegistry(settings)
		if err != nil {
			return err
		}
		return writeStages(stdout, settings.Format, describeStages(stages, registry))
	}

	return cmd
}

func newTypesCommand() *Command {
	cmd := &Command{
		Name:        "types",
		Description: "List registered types and their operators",
		FlagSet:     flag.NewFlagSet("types", flag.ExitOnError),
	}

	common := addCommonFlags(cmd.FlagSet)

	cmd.Run = func(stdout io.Writer) error {
		settings, err := common.settings()
		if err != nil {
			return err
		}
		registry, err := buildRegistry(settings)
		if err != nil {
			return err
		}

		if settings.Format == config.FormatJSON {
			type typeInfo struct {
				Name      string   `json:"name"`
				Parent    string   `json:"parent,omitempty"`
				Operators []string `json:"operators,omitempty"`
			}
			var infos []typeInfo
			for _, name := range registry.TypeNames() {
				parent, _ := registry.Parent(name)
				infos = append(infos, typeInfo{Name: name, Parent: parent, Operators: registry.OperatorsOn(name)})
			}
			encoded, err := json.MarshalIndent(infos, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding types: %w", err)
			}
			fmt.Fprintln(stdout, string(encoded))
			return nil
		}

		fmt.Fprint(stdout, registry.GenerateTypeReport())
		return nil
	}

	return cmd
}
