package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve returns a [kong.ConfigurationLoader] for config files written
// as flat YAML mappings of flag names to values:
//
//	log-level: debug
//	output: dist
//	jobs: 4
//
// Keys may use hyphens or underscores; the hyphenated spelling wins
// when both are present. Scalars and sequences apply to the flag of the
// same name, with numbers rendered back to strings because kong parses
// every flag value from text. Nested mappings have no flag to land on
// and are skipped. A file that cannot be read or decoded resolves as
// empty rather than blocking the CLI, and explicit flags always
// override whatever the file provides.
func resolve() kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return settings{}, nil
		}

		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return settings{}, nil
		}

		s := make(settings, len(raw))

		for key, val := range raw {
			if v, ok := settingValue(val); ok {
				s[key] = v
			}
		}

		return s, nil
	}
}

// settings holds the flattened file contents, keyed as written.
type settings map[string]any

// Resolve implements [kong.Resolver], trying the flag's hyphenated name
// first and its underscore spelling second.
func (s settings) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	for _, key := range []string{
		flag.Name,
		strings.ReplaceAll(flag.Name, "-", "_"),
	} {
		if value, ok := s[key]; ok {
			return value, nil
		}
	}

	return nil, nil
}

// Validate implements [kong.Resolver]. Decoding already rejected
// anything malformed, so there is nothing left to check.
func (s settings) Validate(*kong.Application) error { return nil }

// settingValue converts one decoded YAML value into a form kong can
// apply to a flag. Sequences convert element-wise; nested mappings
// report false.
func settingValue(v any) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return nil, false

	case []any:
		items := make([]any, 0, len(t))

		for _, item := range t {
			if iv, ok := settingValue(item); ok {
				items = append(items, iv)
			}
		}

		return items, true

	case int64:
		return strconv.FormatInt(t, 10), true

	case uint64:
		return strconv.FormatUint(t, 10), true

	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true

	default:
		return v, true
	}
}
