package ir

// DescriptorKind identifies the category of a type descriptor.
type DescriptorKind int

const (
	// KindStruct descriptors get an interface artifact and live in Schema.Types.
	KindStruct DescriptorKind = iota

	// Expression kinds only appear nested in fields, params and results.
	KindPrimitive
	KindArray     // []T or [N]T
	KindMap       // map[K]V, a Record on the client
	KindReference // points at a struct descriptor by identity
	KindPtr       // *T, nullable on the client
)

var kindNames = [...]string{
	KindStruct:    "Struct",
	KindPrimitive: "Primitive",
	KindArray:     "Array",
	KindMap:       "Map",
	KindReference: "Reference",
	KindPtr:       "Ptr",
}

func (k DescriptorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// TypeDescriptor is the base interface for all type descriptors.
type TypeDescriptor interface {
	// Kind returns the descriptor kind for type switching.
	Kind() DescriptorKind

	// TypeName is the identity of a struct descriptor and zero otherwise.
	TypeName() Identity

	sealed()
}

// exprBase provides the zero TypeName of expression descriptors.
type exprBase struct{}

func (exprBase) TypeName() Identity { return Identity{} }
func (exprBase) sealed()            {}
