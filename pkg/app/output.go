package app

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
)

// OutputFormat controls how command results are written.
type OutputFormat string

const (
	OutputList OutputFormat = "list"
	OutputJSON OutputFormat = "json"
)

// OutputFormats lists every supported output format, in the order shown in help text.
var OutputFormats = []OutputFormat{OutputList, OutputJSON}

func outputChoices() []string {
	choices := make([]string, 0, len(OutputFormats))
	for _, f := range OutputFormats {
		choices = append(choices, string(f))
	}
	return choices
}

// ParseOutputFormat converts s to an [OutputFormat], returning an error for unknown formats.
func ParseOutputFormat(s string) (OutputFormat, error) {
	for _, f := range OutputFormats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q: valid formats are %s", s, strings.Join(outputChoices(), ", "))
}

// Write renders v to w. A nil v writes nothing.
func (f OutputFormat) Write(w io.Writer, v any) error {
	if v == nil {
		return nil
	}
	switch f {
	case OutputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case OutputList, "":
		return writeList(w, v)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

func writeList(w io.Writer, v any) error {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		values := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := fmt.Sprint(iter.Key().Interface())
			keys = append(keys, key)
			values[key] = iter.Value().Interface()
		}
		slices.Sort(keys)
		for _, key := range keys {
			if _, err := fmt.Fprintf(w, "%s: %v\n", key, values[key]); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if _, err := fmt.Fprintln(w, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
	default:
		_, err := fmt.Fprintln(w, v)
		return err
	}
	return nil
}
