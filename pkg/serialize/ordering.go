// Package serialize renders a graph.Graph into the two output forms the
// pipeline supports: the verbose keyed document (C9) and the compact
// pipe-delimited positional document (C10). Both share the same
// definition ordering so that switching output_format never reorders
// the underlying data, only its rendering.
package serialize

import (
	"sort"

	"github.com/context-maximiser/scip-transcoder/pkg/graph"
)

// groupRank buckets a Kind into its position in the definition order:
// files, then classes/interfaces, then members, then free functions/types.
func groupRank(k graph.Kind) int {
	switch k {
	case graph.KindFile:
		return 0
	case graph.KindClass, graph.KindInterface:
		return 1
	case graph.KindMethod, graph.KindField:
		return 2
	default:
		return 3
	}
}

// Order returns defs sorted by the output ordering contract: group rank
// first (files, classes/interfaces, members, free functions/types), then
// short id within each group. This is the one true order — two
// invocations on the same index produce byte-identical _defs/records.
func Order(defs []graph.Definition) []graph.Definition {
	out := make([]graph.Definition, len(defs))
	copy(out, defs)

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := groupRank(out[i].Kind), groupRank(out[j].Kind)
		if ri != rj {
			return ri < rj
		}
		return out[i].ID < out[j].ID
	})

	return out
}
