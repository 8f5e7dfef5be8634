package cli

import (
	"context"
	"errors"
)

// ParseAndRun parses the command hierarchy and runs the resolved command. A convenience function
// that combines [Parse] and [Run] into a single call.
func ParseAndRun(ctx context.Context, root *Command, args []string) (any, error) {
	parsed, err := Parse(root, args)
	if err != nil {
		return nil, err
	}
	return Run(ctx, parsed)
}

// Run invokes the resolved command's [ExecFunc] with the public parameters and an empty extension
// map. The command's result and error are returned unmodified.
func Run(ctx context.Context, args *Arguments) (any, error) {
	if args == nil || args.Command == nil {
		return nil, errors.New("command has not been parsed")
	}
	if args.Command.Exec == nil {
		return nil, &NoExecError{Command: args.Command}
	}
	return args.Command.Exec(ctx, args.Params(), map[string]any{})
}
