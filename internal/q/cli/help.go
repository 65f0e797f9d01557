package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// writeHelp renders help for cmd: a title line, the long description, a usage line, then the sorted subcommands, flags in scope, and example, skipping
// sections that would be empty.
func writeHelp(w io.Writer, root, cmd *Command) {
	title := displayName(root, cmd)
	if cmd.Short != "" {
		fmt.Fprintf(w, "%s - %s\n", title, cmd.Short)
	} else {
		fmt.Fprintf(w, "%s\n", title)
	}

	if cmd.Long != "" {
		fmt.Fprintf(w, "\n%s\n", strings.TrimRight(cmd.Long, "\n"))
	}

	fmt.Fprintf(w, "\nUsage:\n  %s\n", usageLine(root, cmd))

	if len(cmd.children) > 0 {
		fmt.Fprintln(w, "\nCommands:")
		children := cmd.Commands()
		sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
		for _, child := range children {
			if child.Short != "" {
				fmt.Fprintf(w, "  %s\t%s\n", child.Name, child.Short)
			} else {
				fmt.Fprintf(w, "  %s\n", child.Name)
			}
		}
	}

	if defs := cmd.flagScope().sortedFlags(); len(defs) > 0 {
		fmt.Fprintln(w, "\nFlags:")
		for _, def := range defs {
			fmt.Fprintln(w, flagHelpLine(def))
		}
	}

	if cmd.Example != "" {
		fmt.Fprintln(w, "\nExample:")
		for _, line := range strings.Split(strings.TrimRight(cmd.Example, "\n"), "\n") {
			if line == "" {
				fmt.Fprintln(w)
				continue
			}
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

// displayName joins the command path from the root ("checkdeck run").
func displayName(root, cmd *Command) string {
	parts := []string{root.Name}
	if cmd != root {
		for _, node := range cmd.lineage()[1:] {
			parts = append(parts, node.Name)
		}
	}
	return strings.Join(parts, " ")
}

func usageLine(root, cmd *Command) string {
	segments := []string{displayName(root, cmd)}
	if len(cmd.flagScope().byName) > 0 {
		segments = append(segments, "[flags]")
	}
	if len(cmd.children) > 0 {
		if cmd.Run == nil {
			segments = append(segments, "<command>")
		} else {
			segments = append(segments, "[command]")
		}
	}
	if cmd.Run != nil {
		segments = append(segments, "[args]")
	}
	return strings.Join(segments, " ")
}

func flagHelpLine(def *flagDef) string {
	names := fmt.Sprintf("    --%s", def.name)
	if def.shorthand != 0 {
		names = fmt.Sprintf("-%c, --%s", def.shorthand, def.name)
	}
	suffix := ""
	if def.kind != flagBool {
		suffix = fmt.Sprintf(" <%s>", def.kind)
	}
	if usage := strings.TrimSpace(def.usage); usage != "" {
		return fmt.Sprintf("  %s%s\t%s", names, suffix, usage)
	}
	return fmt.Sprintf("  %s%s", names, suffix)
}
