package app

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	cli "github.com/mfridman/clikit"
	"github.com/mfridman/clikit/pkg/complete"
	"github.com/mfridman/clikit/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLoader serves two nouns and records every params map its commands receive.
//
//	az
//	├── group
//	│   └── list
//	└── vm
//	    ├── create --name
//	    └── fail
type testLoader struct {
	loaded   []string
	received []map[string]any
	extra    []map[string]any
	err      error
}

func (l *testLoader) exec(result any) cli.ExecFunc {
	return func(ctx context.Context, params, extra map[string]any) (any, error) {
		l.received = append(l.received, params)
		l.extra = append(l.extra, extra)
		return result, nil
	}
}

func (l *testLoader) AddToParser(parser *cli.Command, s *Session, noun string) error {
	groups := map[string]func() *cli.Command{
		"group": func() *cli.Command {
			return &cli.Command{
				Name: "group",
				SubCommands: []*cli.Command{
					{Name: "list", Exec: l.exec([]string{"rg-one", "rg-two"})},
				},
			}
		},
		"vm": func() *cli.Command {
			return &cli.Command{
				Name: "vm",
				SubCommands: []*cli.Command{
					{
						Name:  "create",
						Flags: cli.FlagsFunc(func(f *flag.FlagSet) { f.String("name", "", "vm name") }),
						Exec:  l.exec(map[string]any{"created": true}),
					},
					{
						Name: "fail",
						Exec: func(ctx context.Context, params, extra map[string]any) (any, error) {
							return nil, l.err
						},
					},
				},
			}
		},
	}
	for _, name := range []string{"group", "vm"} {
		if noun != "" && noun != name {
			continue
		}
		l.loaded = append(l.loaded, name)
		if err := parser.AddSubCommands(groups[name]()); err != nil {
			return err
		}
	}
	return nil
}

func noEnv(string) string { return "" }

func newTestApp(t *testing.T, loader CommandLoader, exts ...Extension) *Application {
	t.Helper()
	if exts == nil {
		exts = []Extension{}
	}
	a, err := New(context.Background(), &Options{
		ProgName:   "az",
		Loader:     loader,
		Extensions: exts,
		Getenv:     noEnv,
	})
	require.NoError(t, err)
	return a
}

func subNames(c *cli.Command) []string {
	var names []string
	for _, sub := range c.SubCommands {
		names = append(names, sub.Name)
	}
	return names
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("construction order", func(t *testing.T) {
		t.Parallel()
		var order []string
		ext := ExtensionFunc(func(a *Application) error {
			order = append(order, "register")
			assert.Nil(t, a.GlobalParser)
			assert.Nil(t, a.Parser)
			event.OnGlobalParserCreated(a.Session, func(_ context.Context, parser *cli.Command) error {
				// Built-in flags are registered first
				assert.NotNil(t, parser.Flags.Lookup("subscription"))
				assert.NotNil(t, parser.Flags.Lookup("output"))
				order = append(order, "global")
				return nil
			})
			event.OnCommandParserCreated(a.Session, func(_ context.Context, parser *cli.Command) error {
				assert.NotNil(t, parser.Flags.Lookup("output"), "top-level parser inherits global flags")
				order = append(order, "created")
				return nil
			})
			return nil
		})
		a := newTestApp(t, &testLoader{}, ext)
		assert.Equal(t, []string{"register", "global", "created"}, order)
		assert.Equal(t, "az", a.Parser.Name)
		assert.True(t, a.GlobalParser.DisableHelp)
		assert.False(t, a.Parser.DisableHelp)
		assert.Equal(t, OutputList, a.Session.OutputFormat)
	})
	t.Run("extensions run in order", func(t *testing.T) {
		t.Parallel()
		var order []string
		a := newTestApp(t, &testLoader{},
			ExtensionFunc(func(*Application) error { order = append(order, "one"); return nil }),
			ExtensionFunc(func(*Application) error { order = append(order, "two"); return nil }),
		)
		require.NotNil(t, a)
		assert.Equal(t, []string{"one", "two"}, order)
	})
	t.Run("extension error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		_, err := New(context.Background(), &Options{
			ProgName:   "az",
			Extensions: []Extension{ExtensionFunc(func(*Application) error { return boom })},
			Getenv:     noEnv,
		})
		require.ErrorIs(t, err, boom)
	})
	t.Run("subscriber error aborts construction", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		var created bool
		_, err := New(context.Background(), &Options{
			ProgName: "az",
			Extensions: []Extension{ExtensionFunc(func(a *Application) error {
				event.OnGlobalParserCreated(a.Session, func(context.Context, *cli.Command) error { return boom })
				event.OnCommandParserCreated(a.Session, func(context.Context, *cli.Command) error {
					created = true
					return nil
				})
				return nil
			})},
			Getenv: noEnv,
		})
		require.ErrorIs(t, err, boom)
		assert.False(t, created)
	})
	t.Run("injected session is borrowed", func(t *testing.T) {
		t.Parallel()
		s := NewSession("custom", nil)
		s.OutputFormat = OutputJSON
		a, err := New(context.Background(), &Options{ProgName: "az", Session: s, Extensions: []Extension{}, Getenv: noEnv})
		require.NoError(t, err)
		assert.Same(t, s, a.Session)
		assert.Equal(t, OutputJSON, a.Session.OutputFormat)
		assert.Equal(t, 1, s.Handlers(event.KindGlobalParserCreated))
		assert.Equal(t, 1, s.Handlers(event.KindCommandParserParsed))
	})
	t.Run("registered extensions by default", func(t *testing.T) {
		// Not parallel: the registry is process-wide.
		saved := extensions
		t.Cleanup(func() { extensions = saved })
		var called bool
		RegisterExtension(ExtensionFunc(func(*Application) error { called = true; return nil }))
		_, err := New(context.Background(), &Options{ProgName: "az", Getenv: noEnv})
		require.NoError(t, err)
		assert.True(t, called)
	})
}

func TestGlobalFlags(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, &testLoader{})
	m, ok := a.GlobalParser.LookupFlagMetadata("subscription")
	require.True(t, ok)
	assert.True(t, m.Hidden)
	assert.Equal(t, SubscriptionKey, m.Dest)

	m, ok = a.GlobalParser.LookupFlagMetadata("o")
	require.True(t, ok)
	assert.Equal(t, "output", m.Name)
	assert.Equal(t, []string{"list", "json"}, m.Choices)

	usage := cli.DefaultUsage(a.Parser)
	assert.NotContains(t, usage, "subscription")
	assert.Contains(t, usage, "-o, -output")
	assert.Contains(t, usage, "{list,json}")
}

func TestLoadCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		argv     []string
		expected []string
	}{
		{name: "noun only", argv: []string{"vm", "create", "--name", "x"}, expected: []string{"vm"}},
		{name: "leading flags", argv: []string{"--debug", "group", "list"}, expected: []string{"group"}},
		{name: "leading flag value", argv: []string{"--output", "json", "vm", "create"}, expected: []string{"vm"}},
		{name: "leading short flag value", argv: []string{"-o", "json", "group", "list"}, expected: []string{"group"}},
		{name: "inline flag value", argv: []string{"--output=json", "vm", "create"}, expected: []string{"vm"}},
		{name: "help", argv: []string{"--help"}, expected: []string{"group", "vm"}},
		{name: "empty", argv: nil, expected: []string{"group", "vm"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			loader := &testLoader{}
			a := newTestApp(t, loader)
			var loadedEvent *cli.Command
			event.OnCommandParserLoaded(a.Session, func(_ context.Context, parser *cli.Command) error {
				loadedEvent = parser
				return nil
			})
			require.NoError(t, a.LoadCommands(context.Background(), tt.argv))
			assert.Equal(t, tt.expected, loader.loaded)
			assert.Equal(t, tt.expected, subNames(a.Parser))
			assert.Same(t, a.Parser, loadedEvent)
		})
	}
	t.Run("no loader", func(t *testing.T) {
		t.Parallel()
		a := newTestApp(t, nil)
		assert.Error(t, a.LoadCommands(context.Background(), nil))
	})
	t.Run("loader error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		a := newTestApp(t, CommandLoaderFunc(func(*cli.Command, *Session, string) error { return boom }))
		assert.ErrorIs(t, a.LoadCommands(context.Background(), nil), boom)
	})
	t.Run("completion request", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		env := map[string]string{"COMP_LINE": "az vm c"}
		a, err := New(context.Background(), &Options{
			ProgName:   "az",
			Loader:     &testLoader{},
			Extensions: []Extension{},
			Stdout:     &out,
			Getenv:     func(k string) string { return env[k] },
		})
		require.NoError(t, err)
		err = a.LoadCommands(context.Background(), []string{"az", "c", "vm"})
		require.ErrorIs(t, err, complete.ErrCompleted)
		assert.Equal(t, "create\n", out.String())
	})
}

func TestExecute(t *testing.T) {
	t.Parallel()

	t.Run("output format is consumed", func(t *testing.T) {
		t.Parallel()
		loader := &testLoader{}
		a := newTestApp(t, loader)
		argv := []string{"group", "list", "--output", "json"}
		ctx := context.Background()
		require.NoError(t, a.LoadCommands(ctx, argv))
		result, err := a.Execute(ctx, argv)
		require.NoError(t, err)
		assert.Equal(t, []string{"rg-one", "rg-two"}, result)
		require.Len(t, loader.received, 1)
		assert.NotContains(t, loader.received[0], OutputFormatKey)
		assert.Equal(t, map[string]any{}, loader.extra[0])
		assert.Equal(t, OutputJSON, a.Session.OutputFormat)
	})
	t.Run("short alias", func(t *testing.T) {
		t.Parallel()
		a := newTestApp(t, &testLoader{})
		argv := []string{"-o", "json", "group", "list"}
		ctx := context.Background()
		require.NoError(t, a.LoadCommands(ctx, argv))
		_, err := a.Execute(ctx, argv)
		require.NoError(t, err)
		assert.Equal(t, OutputJSON, a.Session.OutputFormat)
	})
	t.Run("output value before noun", func(t *testing.T) {
		t.Parallel()
		loader := &testLoader{}
		a := newTestApp(t, loader)
		argv := []string{"--output", "json", "vm", "create", "--name", "x"}
		ctx := context.Background()
		require.NoError(t, a.LoadCommands(ctx, argv))
		assert.Equal(t, []string{"vm"}, loader.loaded)
		result, err := a.Execute(ctx, argv)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"created": true}, result)
		assert.Equal(t, OutputJSON, a.Session.OutputFormat)
	})
	t.Run("absent output keeps prior value", func(t *testing.T) {
		t.Parallel()
		a := newTestApp(t, &testLoader{})
		argv := []string{"vm", "create", "--name", "x"}
		ctx := context.Background()
		require.NoError(t, a.LoadCommands(ctx, argv))
		_, err := a.Execute(ctx, argv)
		require.NoError(t, err)
		assert.Equal(t, OutputList, a.Session.OutputFormat)
	})
	t.Run("params exclude private keys", func(t *testing.T) {
		t.Parallel()
		loader := &testLoader{}
		a := newTestApp(t, loader)
		event.OnCommandParserParsed(a.Session, func(_ context.Context, args *cli.Arguments) error {
			args.Public["_secret"] = "hidden"
			args.Public["extra"] = "visible"
			return nil
		})
		argv := []string{"vm", "create", "--name", "x", "--subscription", "sub-1"}
		ctx := context.Background()
		require.NoError(t, a.LoadCommands(ctx, argv))
		_, err := a.Execute(ctx, argv)
		require.NoError(t, err)
		require.Len(t, loader.received, 1)
		assert.Equal(t, map[string]any{"name": "x", "extra": "visible"}, loader.received[0])
		assert.Equal(t, "sub-1", a.Session.SubscriptionID)
	})
	t.Run("invalid output choice", func(t *testing.T) {
		t.Parallel()
		loader := &testLoader{}
		a := newTestApp(t, loader)
		argv := []string{"group", "list", "--output", "jsn"}
		ctx := context.Background()
		require.NoError(t, a.LoadCommands(ctx, argv))
		_, err := a.Execute(ctx, argv)
		require.Error(t, err)
		assert.ErrorContains(t, err, `Did you mean "json"?`)
		assert.Empty(t, loader.received)
	})
	t.Run("handler error is returned unmodified", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		a := newTestApp(t, &testLoader{err: boom})
		argv := []string{"vm", "fail"}
		ctx := context.Background()
		require.NoError(t, a.LoadCommands(ctx, argv))
		_, err := a.Execute(ctx, argv)
		assert.Same(t, boom, err)
	})
	t.Run("parsed subscriber error skips command", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		loader := &testLoader{}
		a := newTestApp(t, loader)
		event.OnCommandParserParsed(a.Session, func(context.Context, *cli.Arguments) error { return boom })
		argv := []string{"group", "list"}
		ctx := context.Background()
		require.NoError(t, a.LoadCommands(ctx, argv))
		_, err := a.Execute(ctx, argv)
		assert.Same(t, boom, err)
		assert.Empty(t, loader.received)
	})
	t.Run("invalid internal output value", func(t *testing.T) {
		t.Parallel()
		a := newTestApp(t, &testLoader{})
		err := a.handleBuiltinArguments(context.Background(), &cli.Arguments{
			Internal: map[string]any{OutputFormatKey: "yaml"},
		})
		assert.ErrorContains(t, err, `unknown output format "yaml"`)
		err = a.handleBuiltinArguments(context.Background(), &cli.Arguments{
			Internal: map[string]any{OutputFormatKey: 42},
		})
		assert.ErrorContains(t, err, "unexpected value of type int")
	})
}

func TestRun(t *testing.T) {
	t.Parallel()

	run := func(t *testing.T, argv []string, env map[string]string) (string, string, error) {
		t.Helper()
		var stdout, stderr bytes.Buffer
		err := Run(context.Background(), argv, &Options{
			ProgName:   "az",
			Loader:     &testLoader{},
			Extensions: []Extension{},
			Stdout:     &stdout,
			Stderr:     &stderr,
			Getenv:     func(k string) string { return env[k] },
		})
		return stdout.String(), stderr.String(), err
	}

	t.Run("list output", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := run(t, []string{"group", "list"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "rg-one\nrg-two\n", stdout)
	})
	t.Run("json output", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := run(t, []string{"vm", "create", "--name", "x", "-o", "json"}, nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"created": true}`, stdout)
	})
	t.Run("help", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := run(t, []string{"--help"}, nil)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Available Commands:")
		assert.Contains(t, stdout, "group")
		assert.Contains(t, stdout, "vm")
		assert.NotContains(t, stdout, "subscription")
	})
	t.Run("help after positional", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := run(t, []string{"vm", "create", "extra", "--help"}, nil)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Usage:\n  az vm create [flags]")
	})
	t.Run("group without subcommand", func(t *testing.T) {
		t.Parallel()
		stdout, stderr, err := run(t, []string{"vm"}, nil)
		require.Error(t, err)
		var cliErr *cli.Error
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, cli.ErrNoCommand, cliErr.Code())
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "Usage:\n  az vm")
	})
	t.Run("unknown flag", func(t *testing.T) {
		t.Parallel()
		_, _, err := run(t, []string{"group", "list", "--nope"}, nil)
		require.Error(t, err)
		assert.ErrorContains(t, err, "flag provided but not defined")
	})
	t.Run("completion", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := run(t, []string{"az", "", "az"}, map[string]string{"COMP_LINE": "az "})
		require.NoError(t, err)
		assert.Equal(t, "group\nvm\n", stdout)
	})
	t.Run("config file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("output: json\n"), 0o644))
		stdout, _, err := run(t, []string{"group", "list"}, map[string]string{"AZ_CONFIG": path})
		require.NoError(t, err)
		assert.JSONEq(t, `["rg-one", "rg-two"]`, stdout)

		// The command line wins over the config file
		stdout, _, err = run(t, []string{"group", "list", "-o", "list"}, map[string]string{"AZ_CONFIG": path})
		require.NoError(t, err)
		assert.Equal(t, "rg-one\nrg-two\n", stdout)
	})
}
