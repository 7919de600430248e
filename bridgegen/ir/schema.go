package ir

import "strconv"

// Schema is the complete input of an emitter: route groups and every struct
// type they reach.
type Schema struct {
	// Groups in registration order. Groups without operations are not part
	// of the schema.
	Groups []GroupDescriptor

	// Types contains every reachable struct descriptor, deduplicated by
	// identity, in discovery order.
	Types []*StructDescriptor

	// Warnings contains non-fatal issues encountered during schema building.
	Warnings []Warning
}

// AddGroup adds a group descriptor to the schema.
func (s *Schema) AddGroup(g GroupDescriptor) {
	s.Groups = append(s.Groups, g)
}

// AddType adds a struct descriptor to the schema.
func (s *Schema) AddType(t *StructDescriptor) {
	s.Types = append(s.Types, t)
}

// AddWarning adds a warning to the schema.
func (s *Schema) AddWarning(w Warning) {
	s.Warnings = append(s.Warnings, w)
}

// FindType looks up a type by identity. Returns nil if not found.
func (s *Schema) FindType(id Identity) *StructDescriptor {
	for _, t := range s.Types {
		if t.Name == id {
			return t
		}
	}
	return nil
}

// FindGroup looks up a group by name. Returns nil if not found.
func (s *Schema) FindGroup(name string) *GroupDescriptor {
	for i := range s.Groups {
		if s.Groups[i].Name == name {
			return &s.Groups[i]
		}
	}
	return nil
}

// ValidationError represents a schema validation failure.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Code + ": " + e.Message
}

// Validate checks the schema for structural issues: duplicate type
// identities, references to unknown types, duplicate group names, duplicate
// operation names within a group, and non-contiguous parameter positions.
// Returns all validation errors found (not just the first).
func (s *Schema) Validate() []error {
	var errs []error

	known := make(map[Identity]bool, len(s.Types))
	for _, t := range s.Types {
		if known[t.Name] {
			errs = append(errs, &ValidationError{
				Code:    "duplicate_type",
				Message: "duplicate type identity: " + t.Name.String(),
			})
		}
		known[t.Name] = true
	}

	checkRefs := func(d TypeDescriptor, where string) {
		for _, id := range References(d) {
			if !known[id] {
				errs = append(errs, &ValidationError{
					Code:    "missing_reference",
					Message: where + " references unknown type " + id.String(),
				})
			}
		}
	}

	for _, t := range s.Types {
		checkRefs(t, "type "+t.Name.String())
	}

	groups := make(map[string]bool, len(s.Groups))
	for _, g := range s.Groups {
		if groups[g.Name] {
			errs = append(errs, &ValidationError{
				Code:    "duplicate_group",
				Message: "duplicate group name: " + g.Name,
			})
		}
		groups[g.Name] = true

		ops := make(map[string]bool, len(g.Operations))
		for _, op := range g.Operations {
			where := "operation " + g.Name + "." + op.Name
			if ops[op.Name] {
				errs = append(errs, &ValidationError{
					Code:    "duplicate_operation",
					Message: "duplicate operation name in group " + g.Name + ": " + op.Name,
				})
			}
			ops[op.Name] = true

			for i, p := range op.Params {
				if p.Position != i {
					errs = append(errs, &ValidationError{
						Code:    "invalid_position",
						Message: where + " parameter " + p.Name + " has position " + strconv.Itoa(p.Position) + ", want " + strconv.Itoa(i),
					})
				}
				checkRefs(p.Type, where+" parameter "+p.Name)
			}
			if op.Response != nil {
				checkRefs(op.Response, where+" response")
			}
		}
	}

	return errs
}
