package ir

// PrimitiveKind identifies the JSON form of a primitive. Go integer and float
// widths all collapse into PrimitiveNumber: the client sees a JSON number.
type PrimitiveKind int

const (
	PrimitiveBool PrimitiveKind = iota
	PrimitiveNumber
	PrimitiveString
	PrimitiveBytes    // []byte, base64 string
	PrimitiveTime     // time.Time, RFC 3339 string
	PrimitiveDuration // time.Duration, nanoseconds
	PrimitiveAny
	PrimitiveEmpty // struct{}, encodes as {}
)

var primitiveNames = [...]string{
	PrimitiveBool:     "Bool",
	PrimitiveNumber:   "Number",
	PrimitiveString:   "String",
	PrimitiveBytes:    "Bytes",
	PrimitiveTime:     "Time",
	PrimitiveDuration: "Duration",
	PrimitiveAny:      "Any",
	PrimitiveEmpty:    "Empty",
}

func (k PrimitiveKind) String() string {
	if k < 0 || int(k) >= len(primitiveNames) {
		return "Unknown"
	}
	return primitiveNames[k]
}

// PrimitiveDescriptor is a type expression with no artifact of its own.
type PrimitiveDescriptor struct {
	exprBase
	PrimitiveKind PrimitiveKind
}

// Kind returns KindPrimitive.
func (d *PrimitiveDescriptor) Kind() DescriptorKind { return KindPrimitive }

func primitive(k PrimitiveKind) *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: k}
}

func Bool() *PrimitiveDescriptor     { return primitive(PrimitiveBool) }
func Number() *PrimitiveDescriptor   { return primitive(PrimitiveNumber) }
func String() *PrimitiveDescriptor   { return primitive(PrimitiveString) }
func Bytes() *PrimitiveDescriptor    { return primitive(PrimitiveBytes) }
func Time() *PrimitiveDescriptor     { return primitive(PrimitiveTime) }
func Duration() *PrimitiveDescriptor { return primitive(PrimitiveDuration) }
func Any() *PrimitiveDescriptor      { return primitive(PrimitiveAny) }
func Empty() *PrimitiveDescriptor    { return primitive(PrimitiveEmpty) }
