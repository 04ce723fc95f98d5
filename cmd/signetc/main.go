package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
)

// Command represents a sub-command of signetc
type Command struct {
	Name        string
	Description string
	FlagSet     *flag.FlagSet
	Run         func(stdout io.Writer) error
}

var commands = make(map[string]*Command)

func main() {
	defineCommands()

	flag.Usage = usage
	flag.Parse()
	args := flag.Args()

	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		usage()
		os.Exit(1)
	}

	cmd.FlagSet.Parse(args[1:])

	if err := cmd.Run(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defineCommands() {
	for _, cmd := range []*Command{
		newValidateCommand(),
		newChainCommand(),
		newCheckCommand(),
		newDescribeCommand(),
		newTypesCommand(),
	} {
		commands[cmd.Name] = cmd
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: signetc <command> [options]")
	fmt.Fprintln(os.Stderr, "Available commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s\t%s\n", name, commands[name].Description)
	}
}
