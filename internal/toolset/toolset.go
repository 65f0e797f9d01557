// Package toolset is the registry of checker tools the backend knows how to run.
package toolset

import (
	"fmt"
	"strings"
)

// Tool is one known checker. Enabled is the default enablement in Known and the effective enablement after Resolve. Command is the invocation the backend
// is known to run, shown until the stream reports the real one.
type Tool struct {
	Name    string
	Command string
	Enabled bool
}

// Known returns the tool registry in canonical display order. ruff ships disabled; it only runs when enabled in config.
func Known() []Tool {
	return []Tool{
		{Name: "mypy", Command: "uvx mypy .", Enabled: true},
		{Name: "pyright", Command: "uvx pyright --outputjson .", Enabled: true},
		{Name: "pyrefly", Command: "uvx pyrefly check .", Enabled: true},
		{Name: "ty", Command: "uvx ty check .", Enabled: true},
		{Name: "ruff", Command: "uvx ruff check .", Enabled: false},
	}
}

// Resolve applies config enablement to the registry, preserving canonical order. Enable is applied first, then disable, so a name in both lists ends up
// disabled. Unknown names in either list are an error.
func Resolve(enable, disable []string) ([]Tool, error) {
	tools := Known()

	index := make(map[string]int, len(tools))
	for i, tool := range tools {
		index[tool.Name] = i
	}

	for _, name := range enable {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("unknown tool %q in tools.enable (known: %s)", name, knownNames(tools))
		}
		tools[i].Enabled = true
	}
	for _, name := range disable {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("unknown tool %q in tools.disable (known: %s)", name, knownNames(tools))
		}
		tools[i].Enabled = false
	}

	return tools, nil
}

// EnabledNames returns the names of the enabled tools, in order.
func EnabledNames(tools []Tool) []string {
	var names []string
	for _, tool := range tools {
		if tool.Enabled {
			names = append(names, tool.Name)
		}
	}
	return names
}

func knownNames(tools []Tool) string {
	names := make([]string, len(tools))
	for i, tool := range tools {
		names[i] = tool.Name
	}
	return strings.Join(names, ", ")
}
