package utils

import (
	"errors"
	"fmt"
	"strings"
)

// ErrKeyNotFound is matched by every *KeyError.
var ErrKeyNotFound = errors.New("key not found")

// KeyError reports the first key of a path that could not be resolved.
type KeyError struct {
	Key  string
	Path []string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key not found: %q (path %s)", e.Key, strings.Join(e.Path, "."))
}

func (e *KeyError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// AccessNestedMap walks m by each key of path in order and returns the value
// reached. An empty path returns m itself.
func AccessNestedMap(m map[string]any, path []string) (any, error) {
	var current any = m

	for _, key := range path {
		node, ok := asMap(current)
		if !ok {
			return nil, &KeyError{Key: key, Path: path}
		}

		value, ok := node[key]
		if !ok {
			return nil, &KeyError{Key: key, Path: path}
		}
		current = value
	}

	return current, nil
}

// SplitPath turns "a.b.c" into a key path. Empty segments are dropped.
func SplitPath(dotted string) []string {
	parts := strings.Split(dotted, ".")
	path := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			path = append(path, p)
		}
	}
	return path
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case map[string]string:
		if m == nil {
			return nil, false
		}
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	default:
		return nil, false
	}
}
