// Package modules provides a [app.CommandLoader] backed by a registry of command modules, each
// owning the commands under one noun.
//
// A module's commands are only materialized when they are needed. When the command line names a
// noun, only that noun's module is loaded, so startup does not pay for building every command.
package modules

import (
	"cmp"
	"fmt"
	"slices"

	cli "github.com/mfridman/clikit"
	"github.com/mfridman/clikit/pkg/app"
)

// Module is a group of commands under a single noun, e.g. "vm".
type Module struct {
	// Noun is the name of the command group.
	Noun string
	// ShortHelp describes the command group in help text.
	ShortHelp string
	// Load builds the commands under the noun. It is called at most once per load.
	Load func(s *app.Session) ([]*cli.Command, error)
}

// Registry is an ordered set of modules. It implements [app.CommandLoader].
type Registry struct {
	modules []Module
}

var _ app.CommandLoader = (*Registry)(nil)

// NewRegistry returns a registry holding the given modules.
func NewRegistry(modules ...Module) (*Registry, error) {
	r := &Registry{}
	if err := r.Add(modules...); err != nil {
		return nil, err
	}
	return r, nil
}

// Add registers modules. It returns an error if a noun is empty or already registered.
func (r *Registry) Add(modules ...Module) error {
	for _, m := range modules {
		if m.Noun == "" {
			return fmt.Errorf("module has no noun")
		}
		if m.Load == nil {
			return fmt.Errorf("module %q has no load function", m.Noun)
		}
		if _, ok := r.find(m.Noun); ok {
			return fmt.Errorf("module %q already registered", m.Noun)
		}
		r.modules = append(r.modules, m)
	}
	return nil
}

// Nouns returns the registered nouns, sorted.
func (r *Registry) Nouns() []string {
	nouns := make([]string, 0, len(r.modules))
	for _, m := range r.modules {
		nouns = append(nouns, m.Noun)
	}
	slices.Sort(nouns)
	return nouns
}

// AddToParser adds the commands for noun to parser. An empty noun, or one no module is registered
// for, adds every module so the parser can report unknown commands with suggestions.
func (r *Registry) AddToParser(parser *cli.Command, s *app.Session, noun string) error {
	if noun != "" {
		if m, ok := r.find(noun); ok {
			return load(parser, s, m)
		}
		s.Log.Debug("no module for noun, loading all commands", "noun", noun)
	}
	sorted := slices.Clone(r.modules)
	slices.SortFunc(sorted, func(a, b Module) int {
		return cmp.Compare(a.Noun, b.Noun)
	})
	for _, m := range sorted {
		if err := load(parser, s, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) find(noun string) (Module, bool) {
	for _, m := range r.modules {
		if m.Noun == noun {
			return m, true
		}
	}
	return Module{}, false
}

func load(parser *cli.Command, s *app.Session, m Module) error {
	cmds, err := m.Load(s)
	if err != nil {
		return fmt.Errorf("module %q: %w", m.Noun, err)
	}
	group := &cli.Command{
		Name:      m.Noun,
		ShortHelp: m.ShortHelp,
	}
	if err := group.AddSubCommands(cmds...); err != nil {
		return err
	}
	return parser.AddSubCommands(group)
}
