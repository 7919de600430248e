package bridgegen

import (
	"errors"
	"fmt"

	"github.com/zwisler-a/bridge"
	"github.com/zwisler-a/bridge/bridgegen/ir"
	"github.com/zwisler-a/bridge/bridgegen/provider"
)

// groupResult is the resolved client surface of one route group.
type groupResult struct {
	Descriptor ir.GroupDescriptor

	// Referenced lists the struct types used directly by the group's
	// signatures, deduplicated, in first-seen order.
	Referenced []ir.Identity
}

// buildGroup resolves the operations of g. Any malformed operation fails the
// whole group; every failure is reported as a *bridge.ConfigError.
func buildGroup(g bridge.RouteGroup, r *provider.Resolver) (groupResult, error) {
	if err := g.Validate(); err != nil {
		return groupResult{}, err
	}

	res := groupResult{Descriptor: ir.GroupDescriptor{
		Name:     g.Name,
		BasePath: bridge.JoinPath(g.BasePath, ""),
	}}
	seen := make(map[ir.Identity]bool)
	reference := func(d ir.TypeDescriptor) {
		for _, id := range ir.References(d) {
			if !seen[id] {
				seen[id] = true
				res.Referenced = append(res.Referenced, id)
			}
		}
	}

	var errs []error
	for _, op := range g.Operations {
		desc, err := buildOperation(g, op, r)
		if err != nil {
			errs = append(errs, &bridge.ConfigError{Group: g.Name, Operation: op.Name, Reason: err.Error()})
			continue
		}
		for _, p := range desc.Params {
			reference(p.Type)
		}
		if desc.Response != nil {
			reference(desc.Response)
		}
		res.Descriptor.Operations = append(res.Descriptor.Operations, desc)
	}
	if len(errs) > 0 {
		return groupResult{}, errors.Join(errs...)
	}
	return res, nil
}

// buildOperation derives the client signature of op: the caller-supplied
// parameters in declaration order, renumbered from zero.
func buildOperation(g bridge.RouteGroup, op bridge.Operation, r *provider.Resolver) (ir.OperationDescriptor, error) {
	desc := ir.OperationDescriptor{
		Name:       op.Name,
		Verb:       string(op.Verb),
		Path:       bridge.JoinPath(g.BasePath, op.Path),
		BodyParams: op.Verb.HasBody(),
	}

	for pos, i := range op.CallerParams() {
		name := op.ParamNames[i]
		t, err := r.ResolveNamed(op.ParamTypes[i], anonymousName(g.Name, op.Name, name), "")
		if err != nil {
			return ir.OperationDescriptor{}, fmt.Errorf("parameter %s: %w", name, err)
		}
		desc.Params = append(desc.Params, ir.ParamDescriptor{Position: pos, Name: name, Type: t})
	}

	if op.Returns != nil {
		t, err := r.ResolveNamed(op.Returns, anonymousName(g.Name, op.Name, "Response"), "")
		if err != nil {
			return ir.OperationDescriptor{}, fmt.Errorf("response: %w", err)
		}
		desc.Response = t
	}
	return desc, nil
}

// anonymousName names an anonymous struct used directly in a signature.
func anonymousName(group, op, part string) string {
	return group + "_" + op + "_" + part
}
