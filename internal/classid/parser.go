package classid

import (
	"fmt"
	"regexp"
	"strings"
)

var segmentRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Parse converts a raw qualified class name into a Name. Every segment must
// be a valid identifier; empty segments (e.g. `A::::B` or a trailing `::`)
// are rejected.
func Parse(raw string) (Name, error) {
	if raw == "" {
		return Name{}, fmt.Errorf("class name cannot be empty")
	}

	segments := strings.Split(raw, Separator)
	for _, segment := range segments {
		if segment == "" {
			return Name{}, fmt.Errorf("class name %q contains empty segment", raw)
		}
		if !segmentRegex.MatchString(segment) {
			return Name{}, fmt.Errorf("invalid class name segment %q in %q", segment, raw)
		}
	}

	last := len(segments) - 1
	return Name{
		Namespace: strings.Join(segments[:last], Separator),
		Class:     segments[last],
	}, nil
}

// MustParse is like Parse but panics on error. Intended for class names
// written as constants in plugin code.
func MustParse(raw string) Name {
	n, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return n
}

// Qualify resolves a possibly namespace-less name. A name that already
// contains a namespace is returned as is; a bare class name is placed into
// the given namespace.
func Qualify(namespace, raw string) (Name, error) {
	n, err := Parse(raw)
	if err != nil {
		return Name{}, err
	}
	if n.Namespace == "" && namespace != "" {
		if _, err := Parse(namespace); err != nil {
			return Name{}, fmt.Errorf("invalid namespace: %w", err)
		}
		n.Namespace = namespace
	}
	return n, nil
}
