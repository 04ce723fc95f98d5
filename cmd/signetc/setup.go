package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/effectus/signet/internal/config"
	"github.com/effectus/signet/schema/types"
	"github.com/effectus/signet/validator"
)

// commonFlags are shared by every sub-command
type commonFlags struct {
	fs     *flag.FlagSet
	config *string
	defs   *string
	format *string
	trace  *bool
	strict *bool
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		fs:     fs,
		config: fs.String("config", "", "Config file (defaults to signet.yaml, signet.yml or signet.json in the working directory)"),
		defs:   fs.String("defs", "", "Comma-separated list of type definition files to load"),
		format: fs.String("format", config.FormatText, "Output format: text or json"),
		trace:  fs.Bool("trace", false, "Log validator decisions to stderr"),
		strict: fs.Bool("strict", false, "Report lint warnings as errors"),
	}
}

// settings resolves flags, the config file and the environment. Explicit
// flags win over the environment, which wins over the file.
func (c *commonFlags) settings() (config.Settings, error) {
	setFlags := make(map[string]bool)
	c.fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	settings := config.Defaults()

	path := *c.config
	if path == "" {
		path, _ = config.Discover(".")
	}
	if path != "" {
		file, err := config.Load(path)
		if err != nil {
			return settings, err
		}
		if err := file.Apply(&settings, setFlags); err != nil {
			return settings, fmt.Errorf("%s: %w", path, err)
		}
	}

	config.ApplyEnv(&settings, setFlags)

	if setFlags["defs"] {
		settings.Definitions = splitCommaList(*c.defs)
	}
	definitions, err := config.ExpandDefinitions(settings.Definitions)
	if err != nil {
		return settings, err
	}
	settings.Definitions = definitions

	if setFlags["format"] {
		format, err := config.ParseFormat(*c.format)
		if err != nil {
			return settings, err
		}
		settings.Format = format
	}
	if setFlags["trace"] {
		settings.Trace = *c.trace
	}
	if setFlags["strict"] {
		settings.Strict = *c.strict
	}
	return settings, nil
}

func buildRegistry(settings config.Settings) (*types.Registry, error) {
	registry := types.NewRegistry()
	for _, file := range settings.Definitions {
		if err := registry.LoadDefinitionsFile(file); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func buildValidator(registry *types.Registry, settings config.Settings) *validator.Validator {
	return validator.New(registry,
		validator.WithLogger(log.New(os.Stderr, "signet: ", log.LstdFlags)),
		validator.WithTrace(settings.Trace),
	)
}

func splitCommaList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
