// Package complete answers shell completion requests for a command tree.
//
// It speaks the protocol bash uses for `complete -C`: the partial command line is passed in the
// COMP_LINE environment variable, the cursor position in COMP_POINT, and candidates are written to
// stdout one per line. Register a program with:
//
//	complete -C az az
package complete

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode"

	cli "github.com/mfridman/clikit"
)

// ErrCompleted is returned by callers of [Autocomplete] to signal that a completion request was
// answered and the program should stop without running a command.
var ErrCompleted = errors.New("completion request handled")

// Autocomplete answers a completion request if one is present in the environment, reading
// variables through getenv. It reports whether a request was handled. When COMP_LINE is unset it
// does nothing.
func Autocomplete(root *cli.Command, getenv func(string) string, w io.Writer) (bool, error) {
	line := getenv("COMP_LINE")
	if line == "" {
		return false, nil
	}
	if point, err := strconv.Atoi(getenv("COMP_POINT")); err == nil && point >= 0 && point < len(line) {
		line = line[:point]
	}
	words := strings.Fields(line)
	if len(words) > 0 {
		// Drop the program name
		words = words[1:]
	}
	if len(words) == 0 || strings.LastIndexFunc(line, unicode.IsSpace) == len(line)-1 {
		words = append(words, "")
	}
	for _, candidate := range Complete(root, words) {
		if _, err := fmt.Fprintln(w, candidate); err != nil {
			return true, fmt.Errorf("write completion: %w", err)
		}
	}
	return true, nil
}

// Complete returns the candidates for the last element of words, which is the word being typed.
// The preceding words select the command whose subcommands and flags are offered.
func Complete(root *cli.Command, words []string) []string {
	if err := root.Validate(); err != nil {
		return nil
	}
	if len(words) == 0 {
		words = []string{""}
	}
	prefix := words[len(words)-1]

	current := root
	expectValue := false
	var pending string
	for _, w := range words[:len(words)-1] {
		if expectValue {
			expectValue = false
			continue
		}
		if strings.HasPrefix(w, "-") {
			expectValue = current.TakesValue(w)
			pending = strings.TrimLeft(w, "-")
			continue
		}
		if sub := current.Find(w); sub != nil {
			current = sub
		}
	}

	if expectValue {
		_, m, _ := current.LookupFlag(pending)
		return filterPrefix(m.Choices, prefix)
	}
	if strings.HasPrefix(prefix, "-") {
		// An inline value, e.g. --output=j. Bash splits the word at "=", so the bare choices are
		// offered for the part after it.
		if name, value, ok := strings.Cut(prefix, "="); ok {
			_, m, _ := current.LookupFlag(strings.TrimLeft(name, "-"))
			return filterPrefix(m.Choices, value)
		}
		return filterPrefix(visibleFlags(current), prefix)
	}
	var names []string
	for _, sub := range current.SubCommands {
		names = append(names, sub.Name)
	}
	slices.Sort(names)
	return filterPrefix(names, prefix)
}

func visibleFlags(c *cli.Command) []string {
	var flags []string
	seen := make(map[string]bool)
	for _, cmd := range c.Lineage() {
		if cmd.Flags == nil {
			continue
		}
		cmd.Flags.VisitAll(func(f *flag.Flag) {
			if seen[f.Name] {
				return
			}
			seen[f.Name] = true
			m, _ := cmd.LookupFlagMetadata(f.Name)
			if m.Hidden {
				return
			}
			flags = append(flags, "--"+f.Name)
			if m.Short != "" {
				flags = append(flags, "-"+m.Short)
			}
		})
	}
	slices.Sort(flags)
	return flags
}

func filterPrefix(candidates []string, prefix string) []string {
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}
