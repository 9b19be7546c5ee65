package keyvalues

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

func table(target any) (*Table, error) {
	t, ok := target.(*Table)
	if !ok {
		return nil, fmt.Errorf("keyvalues: unsupported target %T", target)
	}
	return t, nil
}

// EnvLoader reads and writes dotenv files: KEY=VALUE lines, `#` comments,
// an optional `export` prefix and single or double quoted values, which may
// span lines. `$VAR` references in unquoted and double quoted values are
// expanded the way gotenv does.
type EnvLoader struct{}

// Load replaces the content of target, which must be a *Table.
func (EnvLoader) Load(_ context.Context, target any, r io.Reader) error {
	t, err := table(target)
	if err != nil {
		return err
	}
	env, err := gotenv.StrictParse(r)
	if err != nil {
		return fmt.Errorf("keyvalues: %w", err)
	}
	t.Replace(env)
	return nil
}

// Save writes target as sorted KEY=VALUE lines, quoting values so that Load
// reads them back unchanged.
func (EnvLoader) Save(_ context.Context, target any, w io.Writer) error {
	t, err := table(target)
	if err != nil {
		return err
	}
	entries := t.Entries()
	bw := bufio.NewWriter(w)
	var keys []string
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if !envKeyRgx.MatchString(k) {
			return fmt.Errorf("keyvalues: key %q cannot be written to a dotenv file", k)
		}
		v, err := quoteEnv(entries[k])
		if err != nil {
			return fmt.Errorf("keyvalues: value of %s: %w", k, err)
		}
		if _, err := fmt.Fprintf(bw, "%s=%s\n", k, v); err != nil {
			return err
		}
	}
	return bw.Flush()
}

var (
	envKeyRgx   = regexp.MustCompile(`^[\w.]+$`)
	envPlainRgx = regexp.MustCompile(`^[\w./:@,+-]*$`)
	envEscaper  = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "\n", `\n`, "\r", `\r`)
)

// quoteEnv renders v in the form gotenv parses back to v. Single quotes keep
// the value literal; double quotes are used when the value needs escapes.
func quoteEnv(v string) (string, error) {
	switch {
	case envPlainRgx.MatchString(v):
		return v, nil
	case strings.HasSuffix(v, `\`):
		return "", errors.New("a trailing backslash cannot be quoted")
	case !strings.ContainsAny(v, "'\r\n"):
		return "'" + v + "'", nil
	case strings.Contains(v, `\n`) || strings.Contains(v, `\r`):
		return "", errors.New("a literal \\n or \\r cannot be combined with quotes or line breaks")
	}
	return `"` + envEscaper.Replace(v) + `"`, nil
}

// YAMLLoader reads a YAML mapping. Nested mappings are flattened into
// dotted keys; scalars are kept in their textual form.
type YAMLLoader struct{}

// Load replaces the content of target, which must be a *Table.
func (YAMLLoader) Load(_ context.Context, target any, r io.Reader) error {
	t, err := table(target)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return fmt.Errorf("keyvalues: invalid YAML: %w", err)
	}
	entries := make(map[string]string)
	flatten("", doc, entries)
	t.Replace(entries)
	return nil
}

// Save writes target as a flat YAML mapping.
func (YAMLLoader) Save(_ context.Context, target any, w io.Writer) error {
	t, err := table(target)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(t.Entries()); err != nil {
		return err
	}
	return enc.Close()
}

// TOMLLoader reads a TOML document. Tables are flattened into dotted keys.
type TOMLLoader struct{}

// Load replaces the content of target, which must be a *Table.
func (TOMLLoader) Load(_ context.Context, target any, r io.Reader) error {
	t, err := table(target)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("keyvalues: invalid TOML: %w", err)
	}
	entries := make(map[string]string)
	flatten("", doc, entries)
	t.Replace(entries)
	return nil
}

// Save writes target as a flat TOML document.
func (TOMLLoader) Save(_ context.Context, target any, w io.Writer) error {
	t, err := table(target)
	if err != nil {
		return err
	}
	return toml.NewEncoder(w).Encode(t.Entries())
}

func flatten(prefix string, v any, out map[string]string) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			flatten(join(prefix, k), child, out)
		}
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = fmt.Sprint(item)
		}
		out[prefix] = strings.Join(parts, ",")
	case nil:
		if prefix != "" {
			out[prefix] = ""
		}
	default:
		out[prefix] = fmt.Sprint(val)
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
