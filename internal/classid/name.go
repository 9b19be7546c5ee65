package classid

import "strings"

// String serializes the Name into its canonical `Namespace::ClassName` form.
func (n Name) String() string {
	if n.Namespace == "" {
		return n.Class
	}
	return n.Namespace + Separator + n.Class
}

// Segments returns the namespace segments followed by the class name.
func (n Name) Segments() []string {
	if n.Namespace == "" {
		return []string{n.Class}
	}
	return append(strings.Split(n.Namespace, Separator), n.Class)
}

// Join builds the canonical qualified name for a namespace and class name.
func Join(namespace, class string) string {
	return New(namespace, class).String()
}
