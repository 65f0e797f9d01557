package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

type Options struct {
	// Args is the argv excluding the program name (typically os.Args[1:]).
	Args []string

	// In/Out/Err override standard I/O. If nil, defaults are used.
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Context is passed to a command handler.
//
// Positional args are in Args. Flag values are typically read via variables bound at command construction time (e.g. fs.Bool(...)).
type Context struct {
	context.Context

	Command *Command
	Args    []string

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run executes a command tree as a CLI program and returns a process exit code. Help goes to Out; errors and usage output go to Err.
func Run(ctx context.Context, root *Command, opts Options) int {
	if root == nil {
		panic("cli: Run called with nil root")
	}
	if root.Name == "" {
		panic("cli: Run called with root.Name empty")
	}

	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := opts.Err
	if errOut == nil {
		errOut = os.Stderr
	}

	walk, err := walkArgv(root, opts.Args)
	if walk.helpRequested {
		writeHelp(out, root, walk.selected)
		return 0
	}
	if err != nil {
		printUsageError(root, walk.selected, err, errOut)
		return 2
	}
	selected, args := walk.selected, walk.args

	if selected.Run == nil {
		if len(args) == 0 {
			printUsageError(root, selected, usageErrorf("missing required subcommand"), errOut)
		} else {
			printUsageError(root, selected, usageErrorf("unknown subcommand: %s", args[0]), errOut)
		}
		return 2
	}

	if selected.Args != nil {
		if err := selected.Args(args); err != nil {
			// A bare error from a validator is a usage mistake by definition.
			return exitCode(root, selected, err, errOut, 2)
		}
	}

	c := &Context{
		Context: ctx,
		Command: selected,
		Args:    args,
		In:      in,
		Out:     out,
		Err:     errOut,
	}
	if err := selected.Run(c); err != nil {
		return exitCode(root, selected, err, errOut, 1)
	}
	return 0
}

type walkResult struct {
	selected      *Command
	args          []string
	helpRequested bool
}

// walkArgv selects the deepest command named by argv's leading non-flag tokens and parses flags as it goes, so a parent's persistent flags work on either
// side of the subcommand token. The first token that is neither a flag nor a known child ends selection; it and everything after become positional args.
func walkArgv(root *Command, argv []string) (walkResult, error) {
	res := walkResult{selected: root}
	selectionEnded := false

	for i := 0; i < len(argv); i++ {
		token := argv[i]

		if token == "--" {
			res.args = append(res.args, argv[i+1:]...)
			break
		}

		if token == "-h" || token == "--help" {
			res.helpRequested = true
			return res, nil
		}

		if isFlagToken(token) {
			consumed, err := res.selected.flagScope().parseToken(argv, i)
			if err != nil {
				return res, err
			}
			i += consumed
			continue
		}

		if !selectionEnded {
			if child := res.selected.child(token); child != nil {
				res.selected = child
				continue
			}
			selectionEnded = true
		}
		res.args = append(res.args, token)
	}
	return res, nil
}

// isFlagToken reports whether token starts a flag. "-" alone is a conventional stdin placeholder and stays positional.
func isFlagToken(token string) bool {
	return strings.HasPrefix(token, "-") && token != "-"
}

// exitCode maps a handler or validator error to a process exit code, printing it appropriately: code 2 prints the message plus help, other codes print the
// message alone (when non-empty). Errors without an ExitCoder get fallback.
func exitCode(root, cmd *Command, err error, errOut io.Writer, fallback int) int {
	code := fallback
	var ec ExitCoder
	if errors.As(err, &ec) {
		code = ec.ExitCode()
	}

	switch {
	case code == 0:
		return 0
	case code == 2:
		printUsageError(root, cmd, err, errOut)
		return 2
	default:
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(errOut, msg)
		}
		return code
	}
}

func printUsageError(root, cmd *Command, err error, errOut io.Writer) {
	if err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(errOut, msg)
			fmt.Fprintln(errOut)
		}
	}
	writeHelp(errOut, root, cmd)
}
