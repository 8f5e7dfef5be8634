package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/mfridman/clikit/pkg/suggest"
)

// ExecFunc is the function resolved for a command. It receives the public parameters parsed from
// the command line, and an extension map which is currently always empty. The returned value is
// handed back to the caller unmodified.
type ExecFunc func(ctx context.Context, params map[string]any, extra map[string]any) (any, error)

// Command represents a CLI command or subcommand within the application's command hierarchy.
type Command struct {
	// Name is always a single word representing the command's name. It is used to identify the
	// command in the command hierarchy and in help text.
	Name string

	// Usage provides the command's full usage pattern.
	//
	// Example: "az vm create [flags]"
	Usage string

	// ShortHelp is a brief description of the command's purpose. It is displayed in the help text
	// when the command is shown.
	ShortHelp string

	// UsageFunc is an optional function that can be used to generate a custom usage string for the
	// command.
	UsageFunc func(*Command) string

	// Flags holds the command-specific flag definitions.
	Flags *flag.FlagSet
	// FlagsMetadata is an optional list of flag information to extend the FlagSet with additional
	// metadata, such as the destination key, allowed choices or whether the flag is hidden.
	FlagsMetadata []FlagMetadata

	// SubCommands is a list of nested commands that exist under this command.
	SubCommands []*Command

	// Exec defines the command's execution logic. Commands that only group subcommands leave it
	// nil.
	Exec ExecFunc

	// DisableHelp turns off the built-in -h and --help handling for this command.
	DisableHelp bool

	parent *Command
}

// FlagMetadata holds additional metadata for a flag.
type FlagMetadata struct {
	// Name is the flag's name. Must match the flag name in the flag set.
	Name string

	// Short is an optional single-letter alias sharing the flag's value, e.g. "o" for "output".
	Short string

	// Dest is the key the flag's value is stored under in [Arguments]. Defaults to Name. A Dest
	// starting with an underscore marks the flag as internal.
	Dest string

	// Choices restricts the flag to the given values, when non-empty.
	Choices []string

	// Required indicates whether the flag is required.
	Required bool

	// Hidden flags are parsed but never shown in help text or completion.
	Hidden bool

	// Internal flags are stored in [Arguments.Internal] instead of [Arguments.Public].
	Internal bool
}

func (m FlagMetadata) dest() string {
	if m.Dest != "" {
		return m.Dest
	}
	return m.Name
}

func (m FlagMetadata) internal() bool {
	return m.Internal || strings.HasPrefix(m.dest(), "_")
}

// FlagsFunc is a helper function that creates a new [flag.FlagSet] and applies the given function
// to it. Intended for use in command definitions to simplify flag setup. Example usage:
//
//	cmd.Flags = cli.FlagsFunc(func(f *flag.FlagSet) {
//	    f.Bool("verbose", false, "enable verbose output")
//	    f.String("name", "", "resource name")
//	})
func FlagsFunc(fn func(*flag.FlagSet)) *flag.FlagSet {
	fset := flag.NewFlagSet("", flag.ContinueOnError)
	fn(fset)
	return fset
}

// Inherit copies the flag definitions and metadata of each parent into c. The copies share value
// storage with the parent, so a value set through c is visible through the parent as well. Flags
// already defined on c are left alone.
func (c *Command) Inherit(parents ...*Command) {
	for _, p := range parents {
		if p == nil || p.Flags == nil {
			continue
		}
		if c.Flags == nil {
			c.Flags = flag.NewFlagSet(c.Name, flag.ContinueOnError)
		}
		p.Flags.VisitAll(func(f *flag.Flag) {
			if c.Flags.Lookup(f.Name) != nil {
				return
			}
			c.Flags.Var(f.Value, f.Name, f.Usage)
			if m, ok := p.LookupFlagMetadata(f.Name); ok {
				c.FlagsMetadata = append(c.FlagsMetadata, m)
			}
		})
	}
}

// AddSubCommands attaches the given commands under c. It returns an error if a command with the
// same name already exists.
func (c *Command) AddSubCommands(cmds ...*Command) error {
	for _, sub := range cmds {
		if sub == nil {
			continue
		}
		if existing := c.Find(sub.Name); existing != nil {
			return fmt.Errorf("command %q: duplicate subcommand %q", c.Path(), sub.Name)
		}
		sub.parent = c
		c.SubCommands = append(c.SubCommands, sub)
	}
	return nil
}

// Find searches for a subcommand by name and returns it if found. Returns nil if no subcommand with
// the given name exists.
func (c *Command) Find(name string) *Command {
	for _, sub := range c.SubCommands {
		if strings.EqualFold(sub.Name, name) {
			return sub
		}
	}
	return nil
}

// LookupFlagMetadata returns the metadata registered for the named flag. The name may be either
// the flag's full name or its short alias.
func (c *Command) LookupFlagMetadata(name string) (FlagMetadata, bool) {
	for _, m := range c.FlagsMetadata {
		if m.Name == name {
			return m, true
		}
	}
	for _, m := range c.FlagsMetadata {
		if m.Short != "" && m.Short == name {
			return m, true
		}
	}
	return FlagMetadata{}, false
}

// LookupFlag finds a flag by name or short alias on c or its ancestors, deepest first. It also
// returns the flag's metadata from the command defining it, which is the zero value when none was
// registered.
func (c *Command) LookupFlag(name string) (*flag.Flag, FlagMetadata, bool) {
	for cmd := c; cmd != nil; cmd = cmd.parent {
		if cmd.Flags == nil {
			continue
		}
		if f := cmd.Flags.Lookup(name); f != nil {
			m, _ := cmd.LookupFlagMetadata(f.Name)
			return f, m, true
		}
		if m, ok := cmd.LookupFlagMetadata(name); ok {
			if f := cmd.Flags.Lookup(m.Name); f != nil {
				return f, m, true
			}
		}
	}
	return nil, FlagMetadata{}, false
}

// TakesValue reports whether arg names a known non-boolean flag given without an inline value, so
// the argument following it is the flag's value.
func (c *Command) TakesValue(arg string) bool {
	name := strings.TrimLeft(arg, "-")
	if name == "" || strings.Contains(name, "=") {
		return false
	}
	f, _, ok := c.LookupFlag(name)
	if !ok {
		return false
	}
	if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
		return false
	}
	return true
}

// Path returns the space separated names from the root command down to c.
func (c *Command) Path() string {
	return getCommandPath(c.Lineage())
}

// Lineage returns the commands from the root down to c. Parent links are set by [Parse] and
// [Command.AddSubCommands].
func (c *Command) Lineage() []*Command {
	var chain []*Command
	for cmd := c; cmd != nil; cmd = cmd.parent {
		chain = append([]*Command{cmd}, chain...)
	}
	return chain
}

func (c *Command) formatUnknownCommandError(unknownCmd string) error {
	var known []string
	for _, sub := range c.SubCommands {
		known = append(known, sub.Name)
	}
	suggestions := suggest.FindSimilar(unknownCmd, known, 3)
	if len(suggestions) > 0 {
		return fmt.Errorf("unknown command %q. Did you mean one of these?\n\t%s",
			unknownCmd,
			strings.Join(suggestions, "\n\t"))
	}
	return fmt.Errorf("unknown command %q", unknownCmd)
}

func getCommandPath(commands []*Command) string {
	var commandPath []string
	for _, c := range commands {
		commandPath = append(commandPath, c.Name)
	}
	return strings.Join(commandPath, " ")
}
