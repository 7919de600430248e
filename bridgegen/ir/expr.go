package ir

// ArrayDescriptor represents an ordered collection (slice or fixed-length array).
//
// Nil slices marshal as [] with the JSON codec bridge servers use, so arrays
// are never nullable in generated code; an optional field is the only way to
// express absence.
//
// Note: [N]byte fixed arrays serialize as JSON arrays of numbers, NOT base64.
// Only []byte slices are base64-encoded (represented as PrimitiveBytes).
type ArrayDescriptor struct {
	exprBase

	// Element is the array element type.
	Element TypeDescriptor

	// Length is 0 for slices ([]T), or >0 for fixed-length arrays ([N]T).
	Length int
}

// Kind returns KindArray.
func (d *ArrayDescriptor) Kind() DescriptorKind { return KindArray }

// Slice returns an ArrayDescriptor for a slice type.
func Slice(element TypeDescriptor) *ArrayDescriptor {
	return &ArrayDescriptor{Element: element}
}

// Array returns an ArrayDescriptor for a fixed-length array.
func Array(element TypeDescriptor, length int) *ArrayDescriptor {
	return &ArrayDescriptor{Element: element, Length: length}
}

// MapDescriptor represents a key-value mapping. Keys are always string-like
// or integer types, which JSON encodes as object keys.
type MapDescriptor struct {
	exprBase

	// Key is the map key type.
	Key TypeDescriptor

	// Value is the map value type.
	Value TypeDescriptor
}

// Kind returns KindMap.
func (d *MapDescriptor) Kind() DescriptorKind { return KindMap }

// Map returns a MapDescriptor for a map type.
func Map(key, value TypeDescriptor) *MapDescriptor {
	return &MapDescriptor{Key: key, Value: value}
}

// ReferenceDescriptor represents a reference to a struct descriptor.
type ReferenceDescriptor struct {
	exprBase

	// Target is the referenced type's identity.
	Target Identity
}

// Kind returns KindReference.
func (d *ReferenceDescriptor) Kind() DescriptorKind { return KindReference }

// Ref returns a ReferenceDescriptor for a named type.
func Ref(name string, pkg string) *ReferenceDescriptor {
	return &ReferenceDescriptor{Target: Identity{Name: name, Package: pkg}}
}

// PtrDescriptor represents a Go pointer type (*T), the optional form.
// Generated code renders it as "T | null" unless the field is optional.
type PtrDescriptor struct {
	exprBase

	// Element is the pointed-to type.
	Element TypeDescriptor
}

// Kind returns KindPtr.
func (d *PtrDescriptor) Kind() DescriptorKind { return KindPtr }

// Ptr returns a PtrDescriptor for a pointer type.
func Ptr(element TypeDescriptor) *PtrDescriptor {
	return &PtrDescriptor{Element: element}
}

// References returns the identities referenced by d, in depth-first order.
// A struct descriptor contributes the references of its fields, not itself.
// Duplicates are kept; callers dedupe.
func References(d TypeDescriptor) []Identity {
	var out []Identity
	collectReferences(d, &out)
	return out
}

func collectReferences(d TypeDescriptor, out *[]Identity) {
	switch t := d.(type) {
	case *ReferenceDescriptor:
		*out = append(*out, t.Target)
	case *ArrayDescriptor:
		collectReferences(t.Element, out)
	case *MapDescriptor:
		collectReferences(t.Key, out)
		collectReferences(t.Value, out)
	case *PtrDescriptor:
		collectReferences(t.Element, out)
	case *StructDescriptor:
		for _, f := range t.Fields {
			collectReferences(f.Type, out)
		}
	}
}
