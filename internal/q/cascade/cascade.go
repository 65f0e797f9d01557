// Package cascade loads layered configuration into a struct: defaults first, then JSON files, then environment variables, with later sources overriding earlier ones.
//
// Keys are case-insensitive and may use dots to address nested structs ("tools.enable"). A struct field is addressed by its json tag name when it has one, otherwise by its lowercased
// field name. Unknown keys are ignored, so a config file may carry keys meant for other programs. Scalars are coerced where unambiguous ("500" satisfies an int field, "true" a bool
// field), which keeps environment variables, which are always strings, usable for any scalar key.
//
// A field tagged cascade:",required" must be set by some source. Required validation runs after every source has applied, so a zero value supplied by a default still satisfies it.
package cascade

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
)

// Loader applies configuration sources to a destination struct in registration order, so register sources from lowest to highest priority. The zero value is ready to use; New exists
// for fluent chaining.
type Loader struct {
	sources []source
}

// source defers all reading to load time so a Loader can be built unconditionally and errors surface in one place.
type source struct {
	name string
	load func() (map[string]any, error)
}

func New() *Loader {
	return &Loader{}
}

// WithDefaults registers m as a source. Keys may use dots to address nested fields. The map is read at load time and must not be mutated concurrently.
func (l *Loader) WithDefaults(m map[string]any) *Loader {
	l.sources = append(l.sources, source{name: "defaults", load: func() (map[string]any, error) {
		return nestDotted(m)
	}})
	return l
}

// WithJSONFile registers the JSON file at path, which may start with "~". A missing or unreadable file contributes nothing; a file that exists but does not parse fails the load.
func (l *Loader) WithJSONFile(path string) *Loader {
	expanded := ExpandPath(path)
	l.sources = append(l.sources, source{name: expanded, load: func() (map[string]any, error) {
		return readJSONFile(expanded)
	}})
	return l
}

// WithNearestJSONFile walks upward from startDir (the working directory when empty) to the filesystem root and registers the first readable, non-empty file named fileName. fileName
// must be relative and may include directories. If startDir names a file, the search starts from its directory. If no file is found the loader is unchanged.
func (l *Loader) WithNearestJSONFile(fileName, startDir string) *Loader {
	if filepath.IsAbs(fileName) {
		panic("cascade: fileName must be relative")
	}

	start := startDir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return l
		}
		start = wd
	}
	if fi, err := os.Stat(start); err == nil && !fi.IsDir() {
		start = filepath.Dir(start)
	}

	for dir := start; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, fileName)
		if data, err := os.ReadFile(candidate); err == nil && strings.TrimSpace(string(data)) != "" {
			return l.WithJSONFile(candidate)
		}
		if filepath.Dir(dir) == dir {
			return l
		}
	}
}

// WithEnv registers environment variables as a source. keys maps a configuration key (dots denote nesting) to the variable that supplies it. Unset and empty variables contribute
// nothing; an empty value would otherwise silently override file settings. Values are strings and rely on scalar coercion at assignment.
func (l *Loader) WithEnv(keys map[string]string) *Loader {
	l.sources = append(l.sources, source{name: "environment", load: func() (map[string]any, error) {
		flat := map[string]any{}
		for key, envVar := range keys {
			if envVar == "" {
				continue
			}
			if val := os.Getenv(envVar); val != "" {
				flat[key] = val
			}
		}
		return nestDotted(flat)
	}})
	return l
}

// StrictlyLoad applies every registered source to dest, which must be a non-nil pointer to a struct. A source that exists but cannot be parsed, or a value that cannot be coerced to
// its field's type, fails the load immediately rather than letting a later source paper over it. Errors name the offending source and key path. Fields tagged cascade:",required"
// are validated once all sources have applied.
func (l *Loader) StrictlyLoad(dest any) error {
	v := reflect.ValueOf(dest)
	if dest == nil || v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return errors.New("cascade: dest must be a non-nil pointer to a struct")
	}

	// Every key path some source sets lands here, for required validation.
	present := map[string]bool{}

	for _, src := range l.sources {
		m, err := src.load()
		if err != nil {
			return fmt.Errorf("%s: %w", src.name, err)
		}
		if err := applyMap(v.Elem(), m, "", present); err != nil {
			return fmt.Errorf("%s: %w", src.name, err)
		}
	}
	return validateRequired(v.Elem(), "", present)
}

// ExpandPath expands a leading "~" to the user's home directory and makes the result absolute.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			switch {
			case path == "~":
				path = home
			case strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`):
				path = filepath.Join(home, path[2:])
			}
		}
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return path
}

func readJSONFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, nil
		}
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// nestDotted expands dotted keys into nested objects: {"tools.enable": v} becomes {"tools": {"enable": v}}.
func nestDotted(flat map[string]any) (map[string]any, error) {
	out := map[string]any{}
	for key, val := range flat {
		parts := strings.Split(key, ".")
		cur := out
		for _, part := range parts[:len(parts)-1] {
			next, ok := cur[part]
			if !ok {
				child := map[string]any{}
				cur[part] = child
				cur = child
				continue
			}
			child, ok := next.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("key %q conflicts with another key", key)
			}
			cur = child
		}
		leaf := parts[len(parts)-1]
		existing, exists := cur[leaf]
		if !exists {
			cur[leaf] = val
			continue
		}
		em, eok := existing.(map[string]any)
		vm, vok := val.(map[string]any)
		if !eok || !vok {
			return nil, fmt.Errorf("key %q conflicts with another key", key)
		}
		if err := mergeObjects(em, vm, key); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// mergeObjects copies src into dest, recursing where both sides hold objects, so the outcome does not depend on map iteration order.
func mergeObjects(dest, src map[string]any, key string) error {
	for k, v := range src {
		existing, exists := dest[k]
		if !exists {
			dest[k] = v
			continue
		}
		em, eok := existing.(map[string]any)
		vm, vok := v.(map[string]any)
		if !eok || !vok {
			return fmt.Errorf("key %q conflicts with another key", key)
		}
		if err := mergeObjects(em, vm, key); err != nil {
			return err
		}
	}
	return nil
}

func applyMap(structVal reflect.Value, m map[string]any, basePath string, present map[string]bool) error {
	index := fieldIndex(structVal.Type())
	for key, raw := range m {
		i, ok := index[strings.ToLower(key)]
		if !ok {
			continue
		}
		path := strings.ToLower(key)
		if basePath != "" {
			path = basePath + "." + path
		}
		if err := setValue(structVal.Field(i), raw, path, present); err != nil {
			return err
		}
		present[path] = true
	}
	return nil
}

// fieldIndex maps each exported field's key (json tag name, else lowercased field name) to its index.
func fieldIndex(t reflect.Type) map[string]int {
	index := map[string]int{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		index[fieldKey(f)] = i
	}
	return index
}

func fieldKey(f reflect.StructField) string {
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
		return strings.ToLower(name)
	}
	return strings.ToLower(f.Name)
}

// requiredFromCascadeTag reports whether f carries "required" among the options of its cascade tag, the part after the first comma (ex: `cascade:",required"`).
func requiredFromCascadeTag(f reflect.StructField) bool {
	parts := strings.Split(f.Tag.Get("cascade"), ",")
	for _, p := range parts[1:] {
		if strings.TrimSpace(p) == "required" {
			return true
		}
	}
	return false
}

// validateRequired verifies that every field tagged cascade:",required" appears in present, recursing into structs, non-nil struct pointers, and slices of structs. Paths mirror the
// ones assignment records ("tools.enable", "servers[0].port"), so a zero value set by a default still satisfies a requirement.
func validateRequired(structVal reflect.Value, basePath string, present map[string]bool) error {
	t := structVal.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		path := fieldKey(f)
		if basePath != "" {
			path = basePath + "." + path
		}
		if requiredFromCascadeTag(f) && !present[path] {
			return fmt.Errorf("missing required key: %s", path)
		}

		fv := structVal.Field(i)
		if fv.Kind() == reflect.Pointer && !fv.IsNil() && fv.Elem().Kind() == reflect.Struct {
			fv = fv.Elem()
		}
		switch fv.Kind() {
		case reflect.Struct:
			if err := validateRequired(fv, path, present); err != nil {
				return err
			}
		case reflect.Slice:
			if fv.Type().Elem().Kind() == reflect.Struct {
				for j := 0; j < fv.Len(); j++ {
					if err := validateRequired(fv.Index(j), fmt.Sprintf("%s[%d]", path, j), present); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func setValue(field reflect.Value, raw any, path string, present map[string]bool) error {
	if field.Kind() == reflect.Pointer {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return setValue(field.Elem(), raw, path, present)
	}

	switch field.Kind() {
	case reflect.Struct:
		obj, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected an object, got %T", path, raw)
		}
		return applyMap(field, obj, path, present)

	case reflect.String:
		switch v := raw.(type) {
		case string:
			field.SetString(v)
		case bool:
			field.SetString(strconv.FormatBool(v))
		case float64:
			field.SetString(strconv.FormatFloat(v, 'f', -1, 64))
		case int:
			field.SetString(strconv.Itoa(v))
		default:
			return fmt.Errorf("%s: cannot use %T as string", path, raw)
		}
		return nil

	case reflect.Bool:
		switch v := raw.(type) {
		case bool:
			field.SetBool(v)
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: cannot parse %q as bool", path, v)
			}
			field.SetBool(b)
		default:
			return fmt.Errorf("%s: cannot use %T as bool", path, raw)
		}
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch v := raw.(type) {
		case int:
			field.SetInt(int64(v))
		case float64:
			field.SetInt(int64(v)) // truncates toward zero
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return fmt.Errorf("%s: cannot parse %q as int", path, v)
			}
			field.SetInt(n)
		default:
			return fmt.Errorf("%s: cannot use %T as int", path, raw)
		}
		return nil

	case reflect.Float32, reflect.Float64:
		switch v := raw.(type) {
		case float64:
			field.SetFloat(v)
		case int:
			field.SetFloat(float64(v))
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("%s: cannot parse %q as float", path, v)
			}
			field.SetFloat(f)
		default:
			return fmt.Errorf("%s: cannot use %T as float", path, raw)
		}
		return nil

	case reflect.Slice:
		rv := reflect.ValueOf(raw)
		if rv.Kind() != reflect.Slice {
			return fmt.Errorf("%s: expected an array, got %T", path, raw)
		}
		out := reflect.MakeSlice(field.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if err := setValue(out.Index(i), rv.Index(i).Interface(), fmt.Sprintf("%s[%d]", path, i), present); err != nil {
				return err
			}
		}
		field.Set(out)
		return nil

	default:
		return fmt.Errorf("%s: unsupported field type %s", path, field.Kind())
	}
}
