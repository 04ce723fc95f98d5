package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/effectus/signet/internal/config"
	"github.com/effectus/signet/lint"
	"github.com/effectus/signet/schema/types"
)

func newCheckCommand() *Command {
	cmd := &Command{
		Name:        "check",
		Description: "Lint signatures and type definition files",
		FlagSet:     flag.NewFlagSet("check", flag.ExitOnError),
	}

	common := addCommonFlags(cmd.FlagSet)
	failOnWarn := cmd.FlagSet.Bool("fail-on-warn", false, "Return non-zero exit code when warnings are present")

	cmd.Run = func(stdout io.Writer) error {
		settings, err := common.settings()
		if err != nil {
			return err
		}

		options := lint.Options{Strict: settings.Strict}
		issues := make([]lint.Issue, 0)

		for _, file := range settings.Definitions {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading definitions file: %w", err)
			}
			defs, err := types.ParseDefinitions(data)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			issues = append(issues, lint.LintDefinitions(file, defs, options)...)
		}

		registry, err := buildRegistry(settings)
		if err != nil {
			return err
		}

		for _, file := range cmd.FlagSet.Args() {
			fileIssues, err := checkSignatureFile(file, registry, options)
			if err != nil {
				return err
			}
			issues = append(issues, fileIssues...)
		}

		if err := writeIssues(stdout, settings.Format, issues); err != nil {
			return err
		}

		hadWarn := false
		for _, issue := range issues {
			if issue.Severity == lint.SeverityWarning {
				hadWarn = true
			}
		}
		if lint.HasErrors(issues) || (*failOnWarn && hadWarn) {
			return fmt.Errorf("check failed")
		}
		return nil
	}

	return cmd
}

// checkSignatureFile lints a file holding one signature per line. Blank lines
// and lines starting with '#' are skipped.
func checkSignatureFile(path string, registry lint.TypeLookup, options lint.Options) ([]lint.Issue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var issues []lint.Issue
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		for _, issue := range lint.LintSource(path, text, registry, options) {
			issue.Pos.Line = line
			issues = append(issues, issue)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return issues, nil
}

func writeIssues(w io.Writer, format string, issues []lint.Issue) error {
	if format == config.FormatJSON {
		encoded, err := json.MarshalIndent(issues, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding issues: %w", err)
		}
		fmt.Fprintln(w, string(encoded))
		return nil
	}

	for _, issue := range issues {
		fmt.Fprintln(w, issue.String())
	}
	return nil
}
