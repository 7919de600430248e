// Package typescript renders the IR as an Angular client: one injectable
// service per route group, one interface per struct type, the shared
// response envelope and an NgModule wiring the services together.
package typescript

// Config configures the emitted code.
type Config struct {
	// Extension is the file extension of every artifact, without the dot.
	// Default: "ts"
	Extension string

	// IndentSize is the number of spaces per indent level.
	// Default: 2
	IndentSize int

	// UnknownType is the type emitted for Go's any.
	// SHOULD be one of: "any", "unknown". Default: "any"
	UnknownType string
}

// File is one rendered artifact.
type File struct {
	// Path is relative to the output root and /-separated.
	Path string

	// Content is the complete file text.
	Content []byte
}

// Directory holding type-definition artifacts, relative to the output root.
const InterfacesDir = "interfaces"

func (c Config) withDefaults() Config {
	if c.Extension == "" {
		c.Extension = "ts"
	}
	if c.IndentSize <= 0 {
		c.IndentSize = 2
	}
	if c.UnknownType == "" {
		c.UnknownType = "any"
	}
	return c
}
