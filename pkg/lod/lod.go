// Package lod implements the level-of-detail filter and adjacency
// compactor (component C8): it drops definitions and edges the active
// LOD excludes, optionally strips "noise" edges under --compact, and can
// flatten the remaining edge list into adjacency form.
package lod

import (
	"strings"

	"github.com/context-maximiser/scip-transcoder/pkg/graph"
)

// Level is the level-of-detail selector.
type Level int

const (
	Low    Level = 0
	Medium Level = 1
	High   Level = 2
)

// keepSet lists the Kinds retained at each level, per the classifier's
// LOD table: Low keeps structural kinds only, Medium adds public
// methods and fields, High keeps everything.
var keepSet = map[Level]map[graph.Kind]bool{
	Low: {
		graph.KindClass: true, graph.KindInterface: true, graph.KindFunction: true,
		graph.KindType: true, graph.KindEnum: true, graph.KindFile: true,
	},
	Medium: {
		graph.KindClass: true, graph.KindInterface: true, graph.KindFunction: true,
		graph.KindType: true, graph.KindEnum: true, graph.KindFile: true,
		graph.KindMethod: true, graph.KindField: true,
	},
	High: {
		graph.KindClass: true, graph.KindInterface: true, graph.KindFunction: true,
		graph.KindType: true, graph.KindEnum: true, graph.KindFile: true,
		graph.KindMethod: true, graph.KindField: true, graph.KindVariable: true,
		graph.KindUnknown: true,
	},
}

// keep reports whether a definition survives LOD filtering. Medium's
// "public methods only" rule is a descriptor-name heuristic: a leading
// underscore marks it private.
func keep(d graph.Definition, level Level) bool {
	if !keepSet[level][d.Kind] {
		return false
	}
	if level == Medium && d.Kind == graph.KindMethod && strings.HasPrefix(d.Name, "_") {
		return false
	}
	return true
}

// isNoiseTarget reports whether a target id denotes compact-mode noise:
// an anonymous block, a parameter local, or a synthetic local symbol id.
func isNoiseTarget(id string) bool {
	return strings.HasPrefix(id, "local_") || strings.HasPrefix(id, "anon_") || strings.HasPrefix(id, "param_")
}

// Options controls Filter's behavior beyond the base LOD level.
type Options struct {
	Level   Level
	Compact bool // also drop noise edges and trivial self-edges
}

// Filter applies LOD filtering and (if Options.Compact) noise removal to
// g, returning a new Graph. Every edge in the result has both endpoints
// present among the result's definitions — a dangling edge is dropped
// even if the LOD table would otherwise retain its source kind, since
// invariant I4 requires every edge's source to be an emitted definition
// and referential integrity (§8 property 3) requires the same of non-
// external targets.
func Filter(g graph.Graph, opts Options) graph.Graph {
	kept := make(map[string]bool, len(g.Definitions))
	defs := make([]graph.Definition, 0, len(g.Definitions))
	for _, d := range g.Definitions {
		if !keep(d, opts.Level) {
			continue
		}
		kept[d.ID] = true
		defs = append(defs, d)
	}

	edges := make([]graph.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if !kept[e.Source] {
			continue
		}

		targetIsDef := kept[e.Target]
		targetIsExternal := strings.HasPrefix(e.Target, "external:")
		if !targetIsDef && !targetIsExternal {
			continue
		}
		if targetIsExternal && opts.Level != High {
			continue
		}

		if opts.Compact {
			if e.Source == e.Target {
				continue
			}
			if isNoiseTarget(e.Target) {
				continue
			}
		}

		edges = append(edges, e)
	}

	return graph.Graph{Definitions: defs, Edges: edges}
}

// Compacted is the output of adjacency compaction: a graph's definitions
// plus its edges in adjacency form rather than a flat list.
type Compacted struct {
	Definitions []graph.Definition
	Adjacency   graph.Adjacency
}

// Compact flattens g's edge list into adjacency form.
func Compact(g graph.Graph) Compacted {
	return Compacted{
		Definitions: g.Definitions,
		Adjacency:   graph.BuildAdjacency(g.Edges),
	}
}
