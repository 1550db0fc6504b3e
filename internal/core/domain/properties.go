package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Properties is the value map of one CMS node.
type Properties map[string]any

// Has reports whether name is present with a non-nil value.
func (p Properties) Has(name string) bool {
	v, ok := p[name]
	return ok && v != nil
}

// Get returns the raw value.
func (p Properties) Get(name string) (any, bool) {
	v, ok := p[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the value as a string. Multi-valued properties yield
// their first value.
func (p Properties) String(name string) string {
	v, ok := p.Get(name)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []string:
		if len(s) > 0 {
			return s[0]
		}
		return ""
	case []any:
		if len(s) > 0 && s[0] != nil {
			return fmt.Sprint(s[0])
		}
		return ""
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case time.Time:
		return s.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

// StringOr returns the string value, or def when absent or blank.
func (p Properties) StringOr(name, def string) string {
	if s := p.String(name); strings.TrimSpace(s) != "" {
		return s
	}
	return def
}

// Strings returns the value as a string slice. A single value yields a
// one-element slice.
func (p Properties) Strings(name string) []string {
	v, ok := p.Get(name)
	if !ok {
		return nil
	}
	switch s := v.(type) {
	case []string:
		out := make([]string, len(s))
		copy(out, s)
		return out
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if item != nil {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	}
	return []string{p.String(name)}
}

// Bool returns the value as a bool; strings are parsed leniently.
func (p Properties) Bool(name string) bool {
	v, ok := p.Get(name)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.HasPrefix(strings.ToLower(strings.TrimSpace(b)), "true")
	}
	return false
}

// Int returns the value as an integer. Strings and JSON numbers are parsed.
func (p Properties) Int(name string) (int64, bool) {
	v, ok := p.Get(name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	}
	return 0, false
}

// Time returns the value as a time. Strings are parsed as RFC 3339.
func (p Properties) Time(name string) (time.Time, bool) {
	v, ok := p.Get(name)
	if !ok {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}

// Value returns the value in its JSON-friendly form: single strings stay
// strings, multi-valued properties become string slices.
func (p Properties) Value(name string) any {
	v, ok := p.Get(name)
	if !ok {
		return nil
	}
	switch v.(type) {
	case []string, []any:
		return p.Strings(name)
	case time.Time:
		return p.String(name)
	}
	return v
}
