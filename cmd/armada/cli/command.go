// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"
)

// Command is one node of the command tree.
type Command struct {
	// Name is what the user types ("ursula", "check").
	Name string

	// Summary is the one-line description in the parent's listing.
	Summary string

	// Description is the longer text at the top of the command's help.
	Description string

	// Usage overrides the synthesized usage line.
	Usage string

	Examples []Example

	// Params returns a pointer to a struct whose tagged fields are bound
	// as flags. Called once per parse. Nil means the command takes no
	// flags.
	Params func() any

	Subcommands []*Command

	// Run executes the command with the positional arguments left after
	// flag parsing. When both Run and Subcommands are set, Run handles
	// arguments that name no subcommand.
	Run func(ctx context.Context, args []string, logger *slog.Logger) error

	// Output receives help text. Nil means stderr.
	Output io.Writer

	parent *Command
}

// Example is a usage example shown in help output.
type Example struct {
	Description string
	Command     string
}

// Execute routes args to the matching subcommand or to Run.
func (c *Command) Execute(ctx context.Context, args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(c.output())
		return nil
	}

	if len(c.Subcommands) > 0 && len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		if sub := c.subcommand(args[0]); sub != nil {
			sub.parent = c
			return sub.Execute(ctx, args[1:])
		}
		if c.Run == nil {
			return c.unknownCommand(args[0])
		}
	}

	if len(c.Subcommands) > 0 && c.Run == nil {
		c.PrintHelp(c.output())
		if len(args) == 0 {
			return fmt.Errorf("subcommand required")
		}
		return fmt.Errorf("subcommand required (got flag %q)", args[0])
	}

	flagSet, err := c.parse(args)
	if err != nil {
		return err
	}

	if c.Run == nil {
		c.PrintHelp(c.output())
		return fmt.Errorf("no action defined for %q", c.fullName())
	}

	level, err := logLevel(flagSet)
	if err != nil {
		return err
	}
	logger := NewLogger(level).With("command", c.fullName())
	return c.Run(ctx, flagSet.Args(), logger)
}

func (c *Command) subcommand(name string) *Command {
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			return sub
		}
	}
	return nil
}

func (c *Command) unknownCommand(name string) error {
	if suggestion := suggestCommand(name, c.Subcommands); suggestion != "" {
		return fmt.Errorf("unknown command %q (did you mean %q?)\n\nRun '%s --help' for usage.",
			name, suggestion, c.fullName())
	}
	return fmt.Errorf("unknown command %q\n\nRun '%s --help' for usage.", name, c.fullName())
}

// parse binds the command's params and parses args. Commands without
// params still get an empty flag set so Args() works uniformly.
func (c *Command) parse(args []string) (*pflag.FlagSet, error) {
	flagSet := c.flagSet()
	flagSet.SetOutput(io.Discard)
	if err := flagSet.Parse(args); err != nil {
		message := err.Error()
		if strings.Contains(message, "unknown flag") || strings.Contains(message, "unknown shorthand") {
			if suggestion := suggestFlag(args, c.flagSet()); suggestion != "" {
				return nil, fmt.Errorf("%s (did you mean %s?)\n\nRun '%s --help' for usage.",
					message, suggestion, c.fullName())
			}
		}
		return nil, fmt.Errorf("%s\n\nRun '%s --help' for usage.", message, c.fullName())
	}
	return flagSet, nil
}

func (c *Command) flagSet() *pflag.FlagSet {
	if c.Params == nil {
		return pflag.NewFlagSet(c.Name, pflag.ContinueOnError)
	}
	return FlagsFromParams(c.Name, c.Params())
}

// PrintHelp writes the command's help to w.
func (c *Command) PrintHelp(w io.Writer) {
	name := c.fullName()
	renderer := lipgloss.NewRenderer(w)
	heading := renderer.NewStyle().Bold(true)
	highlight := renderer.NewStyle().Foreground(lipgloss.Color("6"))

	if c.Description != "" {
		fmt.Fprintf(w, "%s\n\n", c.Description)
	} else if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	fmt.Fprintln(w, heading.Render("Usage:"))
	switch {
	case c.Usage != "":
		fmt.Fprintf(w, "  %s\n", c.Usage)
	case len(c.Subcommands) > 0:
		fmt.Fprintf(w, "  %s <command> [flags]\n", name)
	default:
		fmt.Fprintf(w, "  %s [flags]\n", name)
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\n%s\n", heading.Render("Commands:"))
		width := 0
		for _, sub := range c.Subcommands {
			width = max(width, lipgloss.Width(sub.Name))
		}
		for _, sub := range c.Subcommands {
			padding := strings.Repeat(" ", width-lipgloss.Width(sub.Name)+3)
			fmt.Fprintf(w, "  %s%s%s\n", highlight.Render(sub.Name), padding, sub.Summary)
		}
	}

	if c.Params != nil {
		if defaults := c.flagSet().FlagUsages(); defaults != "" {
			fmt.Fprintf(w, "\n%s\n%s", heading.Render("Flags:"), defaults)
		}
	}

	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\n%s\n", heading.Render("Examples:"))
		for _, example := range c.Examples {
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n", example.Description)
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", name)
	}
}

func (c *Command) output() io.Writer {
	for command := c; command != nil; command = command.parent {
		if command.Output != nil {
			return command.Output
		}
	}
	return os.Stderr
}

// fullName is the command path, e.g. "armada map check".
func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
