package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/codalotl/checkdeck/internal/backend"
	"github.com/codalotl/checkdeck/internal/noninteractive"
	"github.com/codalotl/checkdeck/internal/output"
	qcli "github.com/codalotl/checkdeck/internal/q/cli"
	"github.com/codalotl/checkdeck/internal/simplelogger"
	"github.com/codalotl/checkdeck/internal/toolset"
	"github.com/codalotl/checkdeck/internal/tui"
	"github.com/google/uuid"
)

var runTUIWithConfig = tui.RunWithConfig

type configState struct {
	once sync.Once
	cfg  Config
	err  error
}

func (s *configState) get() (Config, error) {
	s.once.Do(func() {
		s.cfg, s.err = loadConfig()
	})
	return s.cfg, s.err
}

func newRootCommand() *qcli.Command {
	cfgState := &configState{}

	root := &qcli.Command{
		Name:  "checkdeck",
		Short: "checkdeck watches a Python project and shows checker results in a terminal UI.",
		Args:  qcli.RangeArgs(0, 1),
	}
	rootFlags := root.PersistentFlags()
	backendFlag := rootFlags.String("backend", 'b', "", "Checker service base URL (overrides config backendurl).")
	logFileFlag := rootFlags.String("log-file", 0, "", "Append debug logs to this file.")
	noColorFlag := rootFlags.Bool("no-color", 0, false, "Disable ANSI colors and styling.")

	applyFlags := func(cfg Config) Config {
		if v := strings.TrimSpace(*backendFlag); v != "" {
			cfg.BackendURL = v
		}
		// NO_COLOR is presence-based (https://no-color.org), so it can't go
		// through the cascade's bool coercion.
		if *noColorFlag || os.Getenv("NO_COLOR") != "" {
			cfg.NoColor = true
		}
		return cfg
	}

	runWithConfig := func(next func(c *qcli.Context, cfg Config) error) qcli.RunFunc {
		return func(c *qcli.Context) error {
			if path := strings.TrimSpace(*logFileFlag); path != "" {
				simplelogger.SetPath(path)
			}
			cfg, err := cfgState.get()
			if err != nil {
				return qcli.ExitError{Code: 1, Err: err}
			}
			return next(c, applyFlags(cfg))
		}
	}

	root.Run = runWithConfig(func(c *qcli.Context, cfg Config) error {
		projectRoot, err := resolveProjectDir(c.Args)
		if err != nil {
			return err
		}
		tools, err := toolset.Resolve(cfg.Tools.Enable, cfg.Tools.Disable)
		if err != nil {
			return qcli.ExitError{Code: 1, Err: fmt.Errorf("invalid configuration: tools: %w", err)}
		}

		client := backend.NewClient(cfg.BackendURL)
		if err := validateStartup(client, cfg); err != nil {
			return qcli.ExitError{Code: 1, Err: err}
		}

		return runTUIWithConfig(tui.Config{
			Client:        client,
			Root:          projectRoot,
			Session:       uuid.NewString(),
			Tools:         tools,
			Limits:        output.Limits{MaxLines: cfg.MaxLines, MaxChars: cfg.MaxChars},
			Debounce:      time.Duration(cfg.DebounceMS) * time.Millisecond,
			WatchInterval: time.Duration(cfg.WatchIntervalMS) * time.Millisecond,
			Ignore:        cfg.Ignore,
			NoColor:       cfg.NoColor,
			Version:       Version,
		})
	})

	runCmd := &qcli.Command{
		Name:  "run",
		Short: "Run every enabled checker once, print the results, and exit.",
		Args:  qcli.RangeArgs(0, 1),
	}
	runFlags := runCmd.Flags()
	runTimeout := runFlags.Duration("timeout", 0, 10*time.Minute, "Abort the run after this long.")
	runCmd.Run = runWithConfig(func(c *qcli.Context, cfg Config) error {
		projectRoot, err := resolveProjectDir(c.Args)
		if err != nil {
			return err
		}
		tools, err := toolset.Resolve(cfg.Tools.Enable, cfg.Tools.Disable)
		if err != nil {
			return qcli.ExitError{Code: 1, Err: fmt.Errorf("invalid configuration: tools: %w", err)}
		}

		client := backend.NewClient(cfg.BackendURL)
		if err := validateStartup(client, cfg); err != nil {
			return qcli.ExitError{Code: 1, Err: err}
		}

		ctx := context.Background()
		if *runTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, *runTimeout)
			defer cancel()
		}

		passed, err := noninteractive.Run(ctx, noninteractive.Options{
			Client:  client,
			Root:    projectRoot,
			Session: uuid.NewString(),
			Tools:   tools,
			Limits:  output.Limits{MaxLines: cfg.MaxLines, MaxChars: cfg.MaxChars},
			NoColor: cfg.NoColor,
			Out:     c.Out,
		})
		if err != nil {
			return qcli.ExitError{Code: 1, Err: err}
		}
		if !passed {
			// The report already names the failing checkers.
			return qcli.ExitError{Code: 1, Err: errors.New("")}
		}
		return nil
	})

	versionCmd := &qcli.Command{
		Name:  "version",
		Short: "Print checkdeck version.",
		Args:  qcli.NoArgs,
		Run: func(c *qcli.Context) error {
			return writeStringln(c.Out, Version)
		},
	}

	configCmd := &qcli.Command{
		Name:  "config",
		Short: "Print checkdeck configuration.",
		Args:  qcli.NoArgs,
		Run: runWithConfig(func(c *qcli.Context, cfg Config) error {
			return writeConfigJSON(c.Out, cfg)
		}),
	}

	root.AddCommand(runCmd, versionCmd, configCmd)
	return root
}

func resolveProjectDir(args []string) (string, error) {
	dir := "."
	if len(args) == 1 {
		dir = strings.TrimSpace(args[0])
		if dir == "" {
			dir = "."
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return "", qcli.UsageError{Message: fmt.Sprintf("project directory does not exist: %q", dir)}
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", qcli.UsageError{Message: fmt.Sprintf("not a directory: %q", dir)}
	}
	return abs, nil
}

func writeStringln(w io.Writer, s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := fmt.Fprint(w, s)
	return err
}
