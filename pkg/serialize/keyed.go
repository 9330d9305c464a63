package serialize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/context-maximiser/scip-transcoder/pkg/graph"
)

// MetaVersion is the constant _meta.version string every keyed document
// carries, per the output document contract.
const MetaVersion = "1.3.0"

// KeyedOptions controls Keyed's rendering.
type KeyedOptions struct {
	Name    string // _meta.name; cmd/transcode passes its --name flag ("project" by default)
	Compact bool   // render graph as adjacency map instead of edge-list
}

// Keyed renders g as the verbose keyed document: `_meta`, `_defs`, then
// `graph`, in that order, with _defs in the contract order (see Order).
func Keyed(g graph.Graph, opts KeyedOptions) []byte {
	var b strings.Builder

	b.WriteString("_meta:\n")
	fmt.Fprintf(&b, "  name: %s\n", opts.Name)
	fmt.Fprintf(&b, "  version: %s\n", MetaVersion)

	b.WriteString("_defs:\n")
	for _, d := range Order(g.Definitions) {
		writeDefinition(&b, d)
	}

	b.WriteString("graph:\n")
	if opts.Compact {
		writeAdjacency(&b, graph.BuildAdjacency(g.Edges))
	} else {
		writeEdgeList(&b, g.Edges)
	}

	return []byte(b.String())
}

// writeDefinition emits one _defs entry with fields in the contract
// order — id, n, t, parent_id, sig, doc, logic.pre[] — omitting any
// field that is empty, per "sig/doc/logic fields omitted when absent".
func writeDefinition(b *strings.Builder, d graph.Definition) {
	fmt.Fprintf(b, "  - id: %s\n", d.ID)
	fmt.Fprintf(b, "    n: %s\n", d.Name)
	fmt.Fprintf(b, "    t: %s\n", string(d.Kind))
	if d.ParentID != "" {
		fmt.Fprintf(b, "    parent_id: %s\n", d.ParentID)
	}
	if d.Signature != "" {
		fmt.Fprintf(b, "    sig: %s\n", escapeLine(d.Signature))
	}
	if d.Doc != "" {
		fmt.Fprintf(b, "    doc: %s\n", escapeLine(d.Doc))
	}
	if len(d.Preconditions) > 0 {
		b.WriteString("    logic:\n      pre:\n")
		for _, p := range d.Preconditions {
			fmt.Fprintf(b, "        - %s\n", escapeLine(p))
		}
	}
}

func writeEdgeList(b *strings.Builder, edges []graph.Edge) {
	sorted := make([]graph.Edge, len(edges))
	copy(sorted, edges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Source != sorted[j].Source {
			return sorted[i].Source < sorted[j].Source
		}
		if sorted[i].Target != sorted[j].Target {
			return sorted[i].Target < sorted[j].Target
		}
		return sorted[i].Kind < sorted[j].Kind
	})

	for _, e := range sorted {
		fmt.Fprintf(b, "  - from: %s\n    to: %s\n    type: %s\n", e.Source, e.Target, string(e.Kind))
	}
}

func writeAdjacency(b *strings.Builder, adj graph.Adjacency) {
	sources := make([]string, 0, len(adj))
	for s := range adj {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	for _, s := range sources {
		fmt.Fprintf(b, "  %s:\n", s)
		kinds := adj[s]
		for _, k := range []graph.EdgeKind{graph.EdgeCalls, graph.EdgeReferences, graph.EdgeImports} {
			targets, ok := kinds[k]
			if !ok {
				continue
			}
			fmt.Fprintf(b, "    %s: [%s]\n", string(k), strings.Join(targets, ", "))
		}
	}
}

// escapeLine guards against a doc/sig/logic field containing a literal
// newline, which would otherwise corrupt the line-oriented keyed format.
func escapeLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
