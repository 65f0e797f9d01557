package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FlagSet registers typed flags for a command. Each registration returns a pointer the parser writes through, so handlers read flag values from variables
// bound at construction time. Registering a duplicate name or shorthand panics.
type FlagSet struct {
	byName  map[string]*flagDef
	byShort map[rune]*flagDef
}

type flagKind uint8

const (
	flagBool flagKind = iota + 1
	flagString
	flagInt
	flagDuration
)

func (k flagKind) String() string {
	switch k {
	case flagBool:
		return "bool"
	case flagString:
		return "string"
	case flagInt:
		return "int"
	case flagDuration:
		return "duration"
	default:
		return "unknown"
	}
}

type flagDef struct {
	name      string
	shorthand rune
	usage     string
	kind      flagKind

	boolPtr     *bool
	stringPtr   *string
	intPtr      *int
	durationPtr *time.Duration
}

func newFlagSet() *FlagSet {
	return &FlagSet{
		byName:  map[string]*flagDef{},
		byShort: map[rune]*flagDef{},
	}
}

func (fs *FlagSet) Bool(name string, shorthand rune, def bool, usage string) *bool {
	ptr := new(bool)
	*ptr = def
	fs.register(&flagDef{name: name, shorthand: shorthand, usage: usage, kind: flagBool, boolPtr: ptr})
	return ptr
}

func (fs *FlagSet) String(name string, shorthand rune, def string, usage string) *string {
	ptr := new(string)
	*ptr = def
	fs.register(&flagDef{name: name, shorthand: shorthand, usage: usage, kind: flagString, stringPtr: ptr})
	return ptr
}

func (fs *FlagSet) Int(name string, shorthand rune, def int, usage string) *int {
	ptr := new(int)
	*ptr = def
	fs.register(&flagDef{name: name, shorthand: shorthand, usage: usage, kind: flagInt, intPtr: ptr})
	return ptr
}

func (fs *FlagSet) Duration(name string, shorthand rune, def time.Duration, usage string) *time.Duration {
	ptr := new(time.Duration)
	*ptr = def
	fs.register(&flagDef{name: name, shorthand: shorthand, usage: usage, kind: flagDuration, durationPtr: ptr})
	return ptr
}

func (fs *FlagSet) register(def *flagDef) {
	if def.name == "" {
		panic("cli: flag name must be non-empty")
	}
	if _, ok := fs.byName[def.name]; ok {
		panic("cli: duplicate flag: --" + def.name)
	}
	fs.byName[def.name] = def
	if def.shorthand != 0 {
		if _, ok := fs.byShort[def.shorthand]; ok {
			panic(fmt.Sprintf("cli: duplicate shorthand flag: -%c", def.shorthand))
		}
		fs.byShort[def.shorthand] = def
	}
}

// flagScope is the set of flags in effect for a selected command: the persistent flags of every command on its lineage plus its own local flags.
type flagScope struct {
	byName  map[string]*flagDef
	byShort map[rune]*flagDef
}

func (c *Command) flagScope() flagScope {
	scope := flagScope{byName: map[string]*flagDef{}, byShort: map[rune]*flagDef{}}
	for _, cmd := range c.lineage() {
		if cmd.persistentFlags != nil {
			for _, def := range cmd.persistentFlags.byName {
				scope.add(def)
			}
		}
	}
	if c.localFlags != nil {
		for _, def := range c.localFlags.byName {
			scope.add(def)
		}
	}
	return scope
}

func (s flagScope) add(def *flagDef) {
	if existing, ok := s.byName[def.name]; ok && existing != def {
		panic("cli: flag name conflict across command path: --" + def.name)
	}
	s.byName[def.name] = def
	if def.shorthand != 0 {
		if existing, ok := s.byShort[def.shorthand]; ok && existing != def {
			panic(fmt.Sprintf("cli: shorthand conflict across command path: -%c", def.shorthand))
		}
		s.byShort[def.shorthand] = def
	}
}

// parseToken consumes the flag at argv[i] and returns how many extra tokens it used (1 when the value came from the next token). Bool flags take an inline
// =value, consume a next token that parses as a bool, or default to true. Other kinds require a value; "--" never serves as one.
func (s flagScope) parseToken(argv []string, i int) (int, error) {
	token := argv[i]
	def, inline, hasInline := s.resolve(token)
	if def == nil {
		return 0, usageErrorf("unknown flag: %s", token)
	}
	if hasInline {
		return 0, def.set(inline)
	}

	next := ""
	hasNext := i+1 < len(argv)
	if hasNext {
		next = argv[i+1]
	}

	if def.kind == flagBool {
		if hasNext {
			if _, err := strconv.ParseBool(next); err == nil {
				return 1, def.set(next)
			}
		}
		return 0, def.set("true")
	}

	if !hasNext {
		return 0, usageErrorf("flag needs a value: %s", token)
	}
	if next == "--" {
		return 0, usageErrorf("flag needs a value before --: %s", token)
	}
	return 1, def.set(next)
}

// resolve maps a flag token to its definition and any inline "=value". "--name" resolves by name; "-s" by shorthand; "-name" (two or more characters,
// no '=' after the first) also resolves by name.
func (s flagScope) resolve(token string) (def *flagDef, inline string, hasInline bool) {
	body, long := strings.CutPrefix(token, "--")
	if !long {
		body = strings.TrimPrefix(token, "-")
	}
	name, inline, hasInline := strings.Cut(body, "=")

	switch {
	case long:
		def = s.byName[name]
	case len(name) == 1:
		def = s.byShort[rune(name[0])]
	default:
		def = s.byName[name]
	}
	return def, inline, hasInline
}

func (d *flagDef) set(raw string) error {
	var err error
	switch d.kind {
	case flagBool:
		var v bool
		if v, err = strconv.ParseBool(raw); err == nil {
			*d.boolPtr = v
		}
	case flagString:
		*d.stringPtr = raw
	case flagInt:
		var v int
		if v, err = strconv.Atoi(raw); err == nil {
			*d.intPtr = v
		}
	case flagDuration:
		var v time.Duration
		if v, err = time.ParseDuration(raw); err == nil {
			*d.durationPtr = v
		}
	}
	if err != nil {
		return usageErrorf("invalid value for %s: %v", d.display(), err)
	}
	return nil
}

func (d *flagDef) display() string {
	if d.shorthand != 0 {
		return fmt.Sprintf("-%c/--%s", d.shorthand, d.name)
	}
	return "--" + d.name
}

// sortedFlags returns the scope's definitions ordered by name for help output.
func (s flagScope) sortedFlags() []*flagDef {
	defs := make([]*flagDef, 0, len(s.byName))
	for _, def := range s.byName {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].name < defs[j].name })
	return defs
}
