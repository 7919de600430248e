// Package ir defines the intermediate representation the client generator
// works on: structural type descriptors and the route groups and operations
// that reference them. It is independent of the output language.
package ir

// Identity is the stable identity of a named type: its Go package path and
// sanitized name. Two types with the same display name in different packages
// have different identities.
type Identity struct {
	// Name is the sanitized identifier, always matching [A-Za-z_][A-Za-z0-9_]*.
	// Generic instantiations use synthetic names such as "Page_User".
	Name string

	// Package is the fully qualified package path.
	// Empty for builtin types.
	Package string
}

// IsZero returns true if the identity is empty.
func (id Identity) IsZero() bool {
	return id.Name == "" && id.Package == ""
}

// String returns "package.Name", or just the name for builtin types.
func (id Identity) String() string {
	if id.Package == "" {
		return id.Name
	}
	return id.Package + "." + id.Name
}

// Warning represents a non-fatal issue encountered during generation.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string

	// Message is a human-readable description.
	Message string

	// TypeName is the type that triggered the warning, if applicable.
	TypeName string
}
