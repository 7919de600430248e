package bridgegen

import (
	"errors"

	"github.com/zwisler-a/bridge"
)

// groupOperations regroups the flat operation list by the identity of the
// owning route group. Group order is order of first encounter; operations keep
// their encounter order within a group. Nothing is sorted.
func groupOperations(ops []bridge.OperationRef) ([]string, map[string][]bridge.Operation) {
	var order []string
	byGroup := make(map[string][]bridge.Operation)
	for _, ref := range ops {
		if _, ok := byGroup[ref.Group]; !ok {
			order = append(order, ref.Group)
		}
		byGroup[ref.Group] = append(byGroup[ref.Group], ref.Operation)
	}
	return order, byGroup
}

// indexRoutes indexes route groups by identity. Identities registered more
// than once are reported and left out of the index.
func indexRoutes(routes []bridge.RouteGroup) (map[string]bridge.RouteGroup, error) {
	var errs []error
	count := make(map[string]int, len(routes))
	for _, g := range routes {
		count[g.Name]++
	}

	byName := make(map[string]bridge.RouteGroup, len(routes))
	for _, g := range routes {
		switch n := count[g.Name]; {
		case n == 1:
			byName[g.Name] = g
		case n > 1:
			errs = append(errs, &bridge.ConfigError{Group: g.Name, Reason: "route group registered more than once"})
			count[g.Name] = -1
		}
	}
	return byName, errors.Join(errs...)
}
