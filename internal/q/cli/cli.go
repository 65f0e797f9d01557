// Package cli runs a tree of commands as a CLI program: it selects a command from argv, parses typed flags bound at construction time, validates positional
// args, and maps handler errors to process exit codes (0 success, 1 failure, 2 usage mistake).
//
// Flags may appear anywhere in argv, in --name value, --name=value, -s value, -s=value, and single-dash long (-name value) forms. A parent's PersistentFlags
// apply to every command beneath it. "--" ends both flag parsing and command selection. "-h" and "--help" print help for the command selected so far and
// exit 0.
package cli

import "fmt"

// RunFunc is a command handler.
type RunFunc func(c *Context) error

// ArgsFunc validates positional args. It should return a UsageError (or any ExitCoder with code 2) for user-facing usage mistakes.
type ArgsFunc func(args []string) error

// Command is one node in the command tree. Name is the token that invokes it ("run" in "checkdeck run"). A command with children and no Run is a pure
// group; invoking it without a subcommand is a usage error.
type Command struct {
	Name    string
	Short   string
	Long    string
	Example string

	Args ArgsFunc // optional
	Run  RunFunc  // optional

	parent          *Command
	children        []*Command
	localFlags      *FlagSet
	persistentFlags *FlagSet
}

// AddCommand attaches children under c. It panics on nil children, reattachment, or an empty Name, since those are construction bugs rather than runtime
// conditions.
func (c *Command) AddCommand(children ...*Command) {
	for _, child := range children {
		switch {
		case child == nil:
			panic("cli: AddCommand called with nil child")
		case child.parent != nil:
			panic("cli: AddCommand called with a child already attached to a parent")
		case child.Name == "":
			panic("cli: AddCommand called with a child with empty Name")
		}
		child.parent = c
		c.children = append(c.children, child)
	}
}

// Commands returns a copy of c's direct children.
func (c *Command) Commands() []*Command {
	out := make([]*Command, len(c.children))
	copy(out, c.children)
	return out
}

// Flags returns c's local flags, which apply only when c itself is the selected command.
func (c *Command) Flags() *FlagSet {
	if c.localFlags == nil {
		c.localFlags = newFlagSet()
	}
	return c.localFlags
}

// PersistentFlags returns flags that apply to c and every command beneath it.
func (c *Command) PersistentFlags() *FlagSet {
	if c.persistentFlags == nil {
		c.persistentFlags = newFlagSet()
	}
	return c.persistentFlags
}

func (c *Command) child(token string) *Command {
	for _, child := range c.children {
		if child.Name == token {
			return child
		}
	}
	return nil
}

// lineage returns the path from the root down to c, inclusive.
func (c *Command) lineage() []*Command {
	var path []*Command
	for cur := c; cur != nil; cur = cur.parent {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// NoArgs validates that there are no positional args.
func NoArgs(args []string) error {
	if len(args) == 0 {
		return nil
	}
	return usageErrorf("expected no args, got %d", len(args))
}

// ExactArgs returns an ArgsFunc requiring exactly n args.
func ExactArgs(n int) ArgsFunc {
	return func(args []string) error {
		if len(args) == n {
			return nil
		}
		return usageErrorf("expected %s, got %d", pluralArgs(n), len(args))
	}
}

// MinimumArgs returns an ArgsFunc requiring at least n args.
func MinimumArgs(n int) ArgsFunc {
	return func(args []string) error {
		if len(args) >= n {
			return nil
		}
		return usageErrorf("expected at least %s, got %d", pluralArgs(n), len(args))
	}
}

// RangeArgs returns an ArgsFunc requiring between min and max args, inclusive.
func RangeArgs(min, max int) ArgsFunc {
	return func(args []string) error {
		if len(args) >= min && len(args) <= max {
			return nil
		}
		return usageErrorf("expected %s-%s, got %d", pluralArgs(min), pluralArgs(max), len(args))
	}
}

func pluralArgs(n int) string {
	if n == 1 {
		return "1 arg"
	}
	return fmt.Sprintf("%d args", n)
}

// ExitCoder is an error with an explicit process exit code.
type ExitCoder interface {
	error
	ExitCode() int
}

// UsageError indicates a user-facing mistake. Run prints the message followed by the selected command's help and exits 2.
type UsageError struct {
	Message string
}

func (e UsageError) Error() string { return e.Message }
func (e UsageError) ExitCode() int { return 2 }

func usageErrorf(format string, args ...any) UsageError {
	return UsageError{Message: fmt.Sprintf(format, args...)}
}

// ExitError carries an explicit exit code out of a handler. Run prints Error() when non-empty, so wrapping errors.New("") exits with the code and prints
// nothing (useful when the handler already reported the failure).
type ExitError struct {
	Code int
	Err  error
}

func (e ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e ExitError) Unwrap() error { return e.Err }
func (e ExitError) ExitCode() int { return e.Code }
