package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/mfridman/clikit/pkg/suggest"
	"github.com/mfridman/xflag"
)

// Parse traverses the command hierarchy and parses arguments. It returns an error if parsing fails
// at any point.
//
// Parse should be called with the root command and the arguments to parse, typically os.Args[1:].
// The returned [Arguments] identify the resolved command and carry every flag value, split into
// public and internal values. Pass them to [Run] to invoke the command.
//
// Parsing may be repeated on the same command tree. Flag values are reset to their defaults before
// each parse.
func Parse(root *Command, args []string) (*Arguments, error) {
	if root == nil {
		return nil, errors.New("failed to parse: root command is nil")
	}
	if err := root.Validate(); err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	// First split args at the -- delimiter if present
	var argsToParse []string
	var remainingArgs []string
	for i, arg := range args {
		if arg == "--" {
			argsToParse = args[:i]
			remainingArgs = args[i+1:]
			break
		}
	}
	if argsToParse == nil {
		argsToParse = args
	}

	current := root
	commandChain := []*Command{root}

	// First pass: resolve the command chain. This lets us capture help requests before any flag
	// parsing errors.
	skipValue := false
	for _, arg := range argsToParse {
		if skipValue {
			skipValue = false
			continue
		}
		if isHelpArg(arg) && !current.DisableHelp {
			return nil, &Error{code: ErrShowHelp, err: flag.ErrHelp, command: current}
		}
		// Skip anything that looks like a flag, along with its value when it takes one
		if strings.HasPrefix(arg, "-") {
			skipValue = current.TakesValue(arg)
			continue
		}
		if len(current.SubCommands) > 0 {
			if sub := current.Find(arg); sub != nil {
				current = sub
				commandChain = append(commandChain, sub)
				continue
			}
			return nil, current.formatUnknownCommandError(arg)
		}
		// Positional argument of a leaf command. Keep scanning for help requests.
	}

	combinedFlags := flag.NewFlagSet(root.Name, flag.ContinueOnError)
	combinedFlags.SetOutput(io.Discard)

	// Add flags in reverse order for proper precedence. The deepest command owns a flag name.
	var names []string
	owners := make(map[string]*Command)
	aliases := make(map[string]string)
	var resetErr error
	for i := len(commandChain) - 1; i >= 0; i-- {
		cmd := commandChain[i]
		if cmd.Flags == nil {
			continue
		}
		cmd.Flags.VisitAll(func(f *flag.Flag) {
			if combinedFlags.Lookup(f.Name) != nil {
				return
			}
			if f.Value.String() != f.DefValue {
				if err := f.Value.Set(f.DefValue); err != nil && resetErr == nil {
					resetErr = fmt.Errorf("command %q: failed to reset flag -%s to default %q: %w",
						cmd.Name, f.Name, f.DefValue, err)
				}
			}
			combinedFlags.Var(f.Value, f.Name, f.Usage)
			names = append(names, f.Name)
			owners[f.Name] = cmd
			if m, ok := cmd.LookupFlagMetadata(f.Name); ok && m.Short != "" {
				if combinedFlags.Lookup(m.Short) == nil {
					combinedFlags.Var(f.Value, m.Short, f.Usage)
					aliases[m.Short] = f.Name
				}
			}
		})
	}

	if resetErr != nil {
		return nil, resetErr
	}

	// Let ParseToEnd handle the flag parsing
	if err := xflag.ParseToEnd(combinedFlags, argsToParse); err != nil {
		return nil, fmt.Errorf("command %q: %w", current.Name, err)
	}

	set := make(map[string]bool)
	combinedFlags.Visit(func(f *flag.Flag) {
		name := f.Name
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		set[name] = true
	})

	for _, name := range names {
		if !set[name] {
			continue
		}
		m, ok := owners[name].LookupFlagMetadata(name)
		if !ok || len(m.Choices) == 0 {
			continue
		}
		value := combinedFlags.Lookup(name).Value.String()
		if !slices.Contains(m.Choices, value) {
			return nil, formatInvalidChoiceError(current, name, value, m.Choices)
		}
	}

	var missingFlags []string
	seen := make(map[string]bool)
	for _, cmd := range commandChain {
		for _, m := range cmd.FlagsMetadata {
			if !m.Required || seen[m.Name] {
				continue
			}
			seen[m.Name] = true
			if !set[m.Name] {
				missingFlags = append(missingFlags, m.Name)
			}
		}
	}
	if len(missingFlags) > 0 {
		return nil, fmt.Errorf("command %q: required flag(s) %q not set", current.Name, strings.Join(missingFlags, ", "))
	}

	// Skip past command names in remaining args from flag parsing
	parsed := combinedFlags.Args()
	startIdx := 0
	for _, cmd := range commandChain[1:] {
		if startIdx < len(parsed) && strings.EqualFold(parsed[startIdx], cmd.Name) {
			startIdx++
		}
	}

	// Combine remaining parsed args and everything after delimiter
	var finalArgs []string
	if startIdx < len(parsed) {
		finalArgs = append(finalArgs, parsed[startIdx:]...)
	}
	if len(remainingArgs) > 0 {
		finalArgs = append(finalArgs, remainingArgs...)
	}

	if current.Exec == nil {
		if len(current.SubCommands) > 0 {
			return nil, &Error{
				code:    ErrNoCommand,
				err:     fmt.Errorf("command %q: a subcommand is required", current.Path()),
				command: current,
			}
		}
		return nil, &NoExecError{Command: current}
	}

	result := &Arguments{
		Command:  current,
		Public:   make(map[string]any),
		Internal: make(map[string]any),
		Args:     finalArgs,
	}
	for _, name := range names {
		m, ok := owners[name].LookupFlagMetadata(name)
		if !ok {
			m = FlagMetadata{Name: name}
		}
		value := flagValue(combinedFlags.Lookup(name))
		if m.internal() {
			if set[name] {
				result.Internal[m.dest()] = value
			}
			continue
		}
		result.Public[m.dest()] = value
	}
	return result, nil
}

func isHelpArg(arg string) bool {
	return arg == "-h" || arg == "--h" || arg == "-help" || arg == "--help"
}

func flagValue(f *flag.Flag) any {
	if getter, ok := f.Value.(flag.Getter); ok {
		return getter.Get()
	}
	return f.Value.String()
}

func formatInvalidChoiceError(cmd *Command, name, value string, choices []string) error {
	msg := fmt.Sprintf("command %q: invalid value %q for flag -%s: valid choices are %s",
		cmd.Name, value, name, strings.Join(choices, ", "))
	if suggestions := suggest.FindSimilar(value, choices, 1); len(suggestions) > 0 {
		msg += fmt.Sprintf(". Did you mean %q?", suggestions[0])
	}
	return errors.New(msg)
}

// Validate checks the command tree rooted at c for naming and flag metadata errors, and links every
// subcommand to its parent so [Command.Path] and [Command.Lineage] see the whole chain.
func (c *Command) Validate() error {
	return validateCommands(c, nil)
}

func validateCommands(root *Command, path []string) error {
	if root.Name == "" {
		if len(path) == 0 {
			return errors.New("root command has no name")
		}
		return fmt.Errorf("subcommand in path %q has no name", strings.Join(path, " "))
	}
	// Ensure name has no spaces
	if strings.Contains(root.Name, " ") {
		return fmt.Errorf("command name %q contains spaces", root.Name)
	}
	for _, m := range root.FlagsMetadata {
		if root.Flags == nil || root.Flags.Lookup(m.Name) == nil {
			return fmt.Errorf("command %q: flag metadata %q not found in flag set", root.Name, m.Name)
		}
	}

	// Add current command to path for nested validation
	currentPath := append(path, root.Name)

	// Recursively validate all subcommands
	for _, sub := range root.SubCommands {
		sub.parent = root
		if err := validateCommands(sub, currentPath); err != nil {
			return err
		}
	}
	return nil
}
