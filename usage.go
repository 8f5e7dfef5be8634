package cli

import (
	"cmp"
	"flag"
	"fmt"
	"slices"
	"strings"

	"github.com/mfridman/clikit/pkg/textutil"
)

const usageWidth = 80

// DefaultUsage returns the help text for c. Flags defined on c are listed under "Flags", flags
// inherited from its ancestors under "Global Flags". Hidden flags are never listed.
func DefaultUsage(c *Command) string {
	if c == nil {
		return ""
	}
	if c.UsageFunc != nil {
		return c.UsageFunc(c)
	}

	var b strings.Builder

	if c.ShortHelp != "" {
		for _, line := range textutil.Wrap(c.ShortHelp, usageWidth) {
			b.WriteString(line)
			b.WriteRune('\n')
		}
		b.WriteRune('\n')
	}

	b.WriteString("Usage:\n")
	if c.Usage != "" {
		b.WriteString("  " + c.Usage + "\n")
	} else {
		usage := c.Path()
		if c.Flags != nil {
			usage += " [flags]"
		}
		if len(c.SubCommands) > 0 {
			usage += " <command>"
		}
		b.WriteString("  " + usage + "\n")
	}
	b.WriteRune('\n')

	if len(c.SubCommands) > 0 {
		b.WriteString("Available Commands:\n")
		sortedCommands := slices.Clone(c.SubCommands)
		slices.SortFunc(sortedCommands, func(a, b *Command) int {
			return cmp.Compare(a.Name, b.Name)
		})

		maxNameLen := 0
		for _, sub := range sortedCommands {
			maxNameLen = max(maxNameLen, len(sub.Name))
		}
		for _, sub := range sortedCommands {
			if sub.ShortHelp == "" {
				fmt.Fprintf(&b, "  %s\n", sub.Name)
				continue
			}
			writeColumns(&b, sub.Name, sub.ShortHelp, maxNameLen)
		}
		b.WriteRune('\n')
	}

	flags := collectFlags(c)
	if len(flags) > 0 {
		slices.SortFunc(flags, func(a, b flagInfo) int {
			return cmp.Compare(a.name, b.name)
		})

		maxFlagLen := 0
		hasLocal, hasGlobal := false, false
		for _, f := range flags {
			maxFlagLen = max(maxFlagLen, len(f.name))
			if f.global {
				hasGlobal = true
			} else {
				hasLocal = true
			}
		}

		if hasLocal {
			b.WriteString("Flags:\n")
			writeFlagSection(&b, flags, maxFlagLen, false)
			b.WriteRune('\n')
		}
		if hasGlobal {
			b.WriteString("Global Flags:\n")
			writeFlagSection(&b, flags, maxFlagLen, true)
			b.WriteRune('\n')
		}
	}

	if len(c.SubCommands) > 0 {
		fmt.Fprintf(&b, "Use \"%s [command] --help\" for more information about a command.\n", c.Path())
	}

	return strings.TrimRight(b.String(), "\n")
}

// collectFlags gathers the visible flags of c and its ancestors. A flag name is reported once, by
// the deepest command defining it.
func collectFlags(c *Command) []flagInfo {
	var flags []flagInfo
	seen := make(map[string]bool)
	lineage := c.Lineage()
	for i := len(lineage) - 1; i >= 0; i-- {
		cmd := lineage[i]
		if cmd.Flags == nil {
			continue
		}
		isGlobal := cmd != c
		cmd.Flags.VisitAll(func(f *flag.Flag) {
			if seen[f.Name] {
				return
			}
			seen[f.Name] = true
			m, _ := cmd.LookupFlagMetadata(f.Name)
			if m.Hidden {
				return
			}
			name := "-" + f.Name
			if m.Short != "" {
				name = "-" + m.Short + ", " + name
			}
			usage := f.Usage
			if len(m.Choices) > 0 {
				usage += " {" + strings.Join(m.Choices, ",") + "}"
			}
			if m.Required {
				usage += " (required)"
			}
			flags = append(flags, flagInfo{
				name:   name,
				usage:  usage,
				defval: f.DefValue,
				global: isGlobal,
			})
		})
	}
	return flags
}

// writeFlagSection handles the formatting of flag descriptions
func writeFlagSection(b *strings.Builder, flags []flagInfo, maxLen int, global bool) {
	for _, f := range flags {
		if f.global != global {
			continue
		}
		description := f.usage
		if f.defval != "" && f.defval != "false" {
			description += fmt.Sprintf(" (default: %s)", f.defval)
		}
		writeColumns(b, f.name, description, maxLen)
	}
}

func writeColumns(b *strings.Builder, name, text string, maxLen int) {
	nameWidth := maxLen + 4
	lines := textutil.Wrap(text, usageWidth-nameWidth)
	if len(lines) == 0 {
		fmt.Fprintf(b, "  %s\n", name)
		return
	}
	fmt.Fprintf(b, "  %s%s\n", textutil.Pad(name, nameWidth), lines[0])
	for _, line := range lines[1:] {
		fmt.Fprintf(b, "%s%s\n", strings.Repeat(" ", nameWidth+2), line)
	}
}

type flagInfo struct {
	name   string
	usage  string
	defval string
	global bool
}
