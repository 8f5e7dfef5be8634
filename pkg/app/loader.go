package app

import (
	"strings"

	cli "github.com/mfridman/clikit"
)

// CommandLoader adds commands to the top-level parser.
type CommandLoader interface {
	// AddToParser adds the commands under noun to parser. An empty noun means every known command
	// should be added.
	AddToParser(parser *cli.Command, s *Session, noun string) error
}

// CommandLoaderFunc is an adapter to allow the use of ordinary functions as a [CommandLoader].
type CommandLoaderFunc func(parser *cli.Command, s *Session, noun string) error

func (f CommandLoaderFunc) AddToParser(parser *cli.Command, s *Session, noun string) error {
	return f(parser, s, noun)
}

// peekNoun returns the first argument that does not look like a flag, or an empty string when
// every argument is a flag. The value of a flag known to parser to take one is skipped, so
// "-o json vm" yields "vm".
func peekNoun(parser *cli.Command, argv []string) string {
	skipValue := false
	for _, arg := range argv {
		if skipValue {
			skipValue = false
			continue
		}
		if strings.HasPrefix(arg, "-") {
			skipValue = parser.TakesValue(arg)
			continue
		}
		return arg
	}
	return ""
}
