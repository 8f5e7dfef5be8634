package cli

import (
	"fmt"
	"strings"
)

// Arguments is the result of parsing a command line against a command tree.
type Arguments struct {
	// Command is the resolved command. Its Exec field is the function [Run] invokes.
	Command *Command

	// Public holds the value of every non-internal flag known to the resolved command, keyed by
	// destination. Flags that were not supplied carry their default value.
	Public map[string]any

	// Internal holds the values of internal flags which were supplied on the command line. These
	// exist only to carry data to built-in handlers and are never passed to commands.
	Internal map[string]any

	// Args contains the remaining positional arguments after flag parsing.
	Args []string
}

// Params returns a copy of the public parameters, leaving out any key starting with an underscore.
// This is the mapping handed to a command's [ExecFunc].
func (a *Arguments) Params() map[string]any {
	params := make(map[string]any, len(a.Public))
	for key, value := range a.Public {
		if strings.HasPrefix(key, "_") {
			continue
		}
		params[key] = value
	}
	return params
}

// Pop removes an internal value and returns it. The boolean reports whether the key was present.
func (a *Arguments) Pop(key string) (any, bool) {
	value, ok := a.Internal[key]
	if ok {
		delete(a.Internal, key)
	}
	return value, ok
}

// Path returns the full path of the resolved command, e.g. "az vm create".
func (a *Arguments) Path() string {
	if a.Command == nil {
		return ""
	}
	return a.Command.Path()
}

// Get retrieves a parsed value by destination key, with type inference. Public values are searched
// first, then internal ones. Example usage:
//
//	name := Get[string](args, "name")
//	force := Get[bool](args, "force")
//
// If the key isn't found, or holds a value of another type, it panics. A missing key is a
// programming error in the command definition, so it fails loud and early.
func Get[T any](a *Arguments, key string) T {
	value, ok := a.Public[key]
	if !ok {
		value, ok = a.Internal[key]
	}
	if !ok {
		panic(fmt.Errorf("internal error: key %q not found in arguments for command %q", key, a.Path()))
	}
	v, ok := value.(T)
	if !ok {
		panic(fmt.Errorf("internal error: type mismatch for key %q in command %q: registered %T, requested %T",
			key, a.Path(), value, *new(T)))
	}
	return v
}
