// Package graph defines the output data model of the transcoder: the
// definition nodes, typed reference edges, and the graph that holds them.
package graph

import "sort"

// Kind is the closed set of symbol kinds a definition can carry.
type Kind string

const (
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindMethod    Kind = "method"
	KindFunction  Kind = "function"
	KindField     Kind = "field"
	KindVariable  Kind = "variable"
	KindType      Kind = "type"
	KindEnum      Kind = "enum"
	KindFile      Kind = "file"
	KindUnknown   Kind = "unknown"
)

// EdgeKind is the closed set of reference edge kinds.
type EdgeKind string

const (
	EdgeCalls      EdgeKind = "calls"
	EdgeReferences EdgeKind = "references"
	EdgeImports    EdgeKind = "imports"
)

// Range is a half-open source span, 0-indexed lines and columns to match
// the convention of the SCIP occurrences the ranges are derived from.
type Range struct {
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// Definition is a single symbol definition enriched by the pipeline.
//
// Definitions are created by the classifier, mutated once by the signature
// extractor and logic lifter, and read-only afterwards.
type Definition struct {
	ID            string
	Name          string
	Kind          Kind
	ParentID      string // empty when the definition has no parent
	FilePath      string
	Range         Range
	Signature     string   // empty when extraction failed or was skipped
	Doc           string   // empty when no leading doc comment was found
	Preconditions []string // "must avoid: <expr>", in source order, deduplicated
}

// Edge is a typed reference between two definitions, keyed by short id.
//
// Target may be a definition id present in the same graph, a well-known
// external id, or (only at LOD=High) a synthetic "external:*" id.
type Edge struct {
	Source string
	Target string
	Kind   EdgeKind
}

// Graph is the full output of one pipeline run: an ordered definition set
// and an unordered multiset of edges. Adjacency form is a derived view,
// see Adjacency.
type Graph struct {
	Definitions []Definition
	Edges       []Edge
}

// Adjacency is the compact view of a graph: source id -> edge kind ->
// ordered set of target ids.
type Adjacency map[string]map[EdgeKind][]string

// BuildAdjacency flattens an edge list into source -> kind -> sorted
// target ids, suppressing duplicate (source, target, kind) triples.
func BuildAdjacency(edges []Edge) Adjacency {
	seen := make(map[[3]string]bool, len(edges))
	byKind := make(map[string]map[EdgeKind]map[string]bool)

	for _, e := range edges {
		key := [3]string{e.Source, e.Target, string(e.Kind)}
		if seen[key] {
			continue
		}
		seen[key] = true

		kinds, ok := byKind[e.Source]
		if !ok {
			kinds = make(map[EdgeKind]map[string]bool)
			byKind[e.Source] = kinds
		}
		targets, ok := kinds[e.Kind]
		if !ok {
			targets = make(map[string]bool)
			kinds[e.Kind] = targets
		}
		targets[e.Target] = true
	}

	adj := make(Adjacency, len(byKind))
	for source, kinds := range byKind {
		m := make(map[EdgeKind][]string, len(kinds))
		for kind, targets := range kinds {
			list := make([]string, 0, len(targets))
			for t := range targets {
				list = append(list, t)
			}
			sort.Strings(list)
			m[kind] = list
		}
		adj[source] = m
	}
	return adj
}
