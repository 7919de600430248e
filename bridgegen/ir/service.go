package ir

// GroupDescriptor describes the client surface of one route group.
type GroupDescriptor struct {
	// Name is the route group identity.
	Name string

	// BasePath is the prefix shared by all operations.
	BasePath string

	// Operations in declaration order.
	Operations []OperationDescriptor
}

// OperationDescriptor describes one generated client callable.
type OperationDescriptor struct {
	// Name is the callable name.
	Name string

	// Verb is the HTTP method, upper case.
	Verb string

	// Path is the full request path: base path and operation path joined.
	Path string

	// Params are the caller-supplied parameters only, renumbered from 0.
	// Server-injected parameters never appear here.
	Params []ParamDescriptor

	// BodyParams is true when Params travel as a JSON object in the body
	// instead of the query string.
	BodyParams bool

	// Response is the result type expression. Nil means void.
	Response TypeDescriptor
}

// ParamDescriptor is one caller-supplied parameter.
type ParamDescriptor struct {
	// Position is the index in the generated signature.
	Position int

	// Name is the parameter name, used as query key or body key.
	Name string

	// Type is the parameter's type expression.
	Type TypeDescriptor
}
