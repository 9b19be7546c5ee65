package classid

// Separator joins namespace segments and the class name.
const Separator = "::"

// Name is the structured representation of a fully qualified class name.
type Name struct {
	// Namespace is the `::` joined namespace, empty for the global namespace.
	Namespace string
	// Class is the unqualified class name.
	Class string
}

// New builds a Name from an already split namespace and class name.
func New(namespace, class string) Name {
	return Name{Namespace: namespace, Class: class}
}

// IsZero reports whether the name is empty.
func (n Name) IsZero() bool {
	return n.Namespace == "" && n.Class == ""
}
