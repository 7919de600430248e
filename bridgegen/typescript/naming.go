package typescript

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/zwisler-a/bridge/bridgegen/ir"
)

// AssignNames picks the display name of every identity.
//
// A name is the sanitized Go name when no other identity shares it or its
// kebab-case file name.
// Identities whose names collide across packages are qualified with trailing
// segments of their package path ("example.com/api/v1".User → V1User), one
// more segment per round, until each is unique or its path is exhausted.
// Names still shared after that, such as APIKey and ApiKey from one package,
// get a numeric suffix in identity order.
// Every qualified identity is reported with a QUALIFIED_NAME warning.
func AssignNames(ids []ir.Identity) (map[ir.Identity]string, []ir.Warning) {
	var uniq []ir.Identity
	seen := make(map[ir.Identity]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}

	// Names are compared by their file name, so "APIKey" and "ApiKey"
	// collide like "User" and "User".
	depth := make(map[ir.Identity]int, len(uniq))
	names := make(map[ir.Identity]string, len(uniq))
	for {
		byFile := make(map[string][]ir.Identity)
		for _, id := range uniq {
			n := qualifiedName(id, depth[id])
			names[id] = n
			byFile[kebabCase(n)] = append(byFile[kebabCase(n)], id)
		}

		grew := false
		for _, id := range uniq {
			if depth[id] < len(packageSegments(id.Package)) && separable(id, byFile[kebabCase(names[id])]) {
				depth[id]++
				grew = true
			}
		}
		if !grew {
			break
		}
	}

	// Paths exhausted: number the remaining duplicates.
	byFile := make(map[string][]ir.Identity)
	for _, id := range uniq {
		k := kebabCase(names[id])
		byFile[k] = append(byFile[k], id)
	}
	taken := make(map[string]bool, len(byFile))
	for k := range byFile {
		taken[k] = true
	}
	for _, id := range uniq {
		k := kebabCase(names[id])
		group := byFile[k]
		if len(group) < 2 {
			continue
		}
		slices.SortFunc(group, func(a, b ir.Identity) int {
			return strings.Compare(a.String(), b.String())
		})
		for _, member := range group[1:] {
			base := names[member]
			n := base
			for i := 2; taken[kebabCase(n)]; i++ {
				n = base + strconv.Itoa(i)
			}
			taken[kebabCase(n)] = true
			names[member] = n
			depth[member] = max(depth[member], 1)
		}
		byFile[k] = group[:1]
	}

	var warnings []ir.Warning
	for _, id := range uniq {
		if depth[id] == 0 {
			continue
		}
		warnings = append(warnings, ir.Warning{
			Code:     "QUALIFIED_NAME",
			Message:  fmt.Sprintf("type %s shares its name with another type, emitted as %s", id, names[id]),
			TypeName: id.Name,
		})
	}
	return names, warnings
}

// separable reports whether qualifying id can tell it apart from the other
// members of its collision group, i.e. one of them lives in another package.
func separable(id ir.Identity, group []ir.Identity) bool {
	if len(group) < 2 {
		return false
	}
	for _, other := range group {
		if other.Package != id.Package {
			return true
		}
	}
	return false
}

func qualifiedName(id ir.Identity, depth int) string {
	name := escapeReservedWord(sanitizeIdentifier(id.Name))
	if depth == 0 {
		return name
	}
	segs := packageSegments(id.Package)
	var b strings.Builder
	for _, s := range segs[len(segs)-depth:] {
		b.WriteString(pascalCase(sanitizeIdentifier(s)))
	}
	b.WriteString(name)
	return b.String()
}

func packageSegments(pkg string) []string {
	var segs []string
	for _, s := range strings.Split(pkg, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
