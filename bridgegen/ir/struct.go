package ir

// StructDescriptor represents a Go struct type.
// It is the only named descriptor and the only one that gets its own
// type-definition artifact.
type StructDescriptor struct {
	// Name is the type's identity.
	Name Identity

	// Fields contains the struct fields in declaration order, embedded
	// structs without a JSON name already flattened in place.
	Fields []FieldDescriptor
}

// Kind returns KindStruct.
func (d *StructDescriptor) Kind() DescriptorKind { return KindStruct }

// TypeName returns the identity of the struct.
func (d *StructDescriptor) TypeName() Identity { return d.Name }

func (d *StructDescriptor) sealed() {}

// FieldDescriptor represents a struct field.
type FieldDescriptor struct {
	// Name is the Go field name.
	Name string

	// JSONName is the wire name from the json tag, or the Go name.
	JSONName string

	// Type is the field's type expression.
	Type TypeDescriptor

	// Optional is set by omitempty or omitzero: the key may be absent.
	Optional bool
}
