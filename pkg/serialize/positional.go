package serialize

import (
	"sort"
	"strings"

	"github.com/context-maximiser/scip-transcoder/pkg/graph"
)

// Granularity selects which fields a positional record carries.
type Granularity int

const (
	Default    Granularity = 0 // id | name | kind
	Signatures Granularity = 1 // id | signature-or-name | kind
	Logic      Granularity = 2 // id | signature-or-name | kind | logic:<steps>
)

// maxLogicLength is the hard cap on the whole "logic:" field, §4.10's
// compression hotspot invariant. Truncation keeps whole steps where
// possible and always ends in "...".
const maxLogicLength = 200

// PositionalOptions controls Positional's rendering.
type PositionalOptions struct {
	Granularity Granularity
	Compact     bool
}

// Positional renders g as the pipe-delimited positional document: one
// record per definition (in the shared contract order), followed by the
// graph section rendered as adjacency.
func Positional(g graph.Graph, opts PositionalOptions) []byte {
	var b strings.Builder

	for _, d := range Order(g.Definitions) {
		b.WriteString(record(d, opts.Granularity))
		b.WriteByte('\n')
	}

	adj := graph.BuildAdjacency(g.Edges)
	writePositionalGraph(&b, adj)

	return []byte(b.String())
}

func record(d graph.Definition, gran Granularity) string {
	fields := []string{
		safeField(d.ID),
		safeField(nameOrSignature(d, gran)),
		safeField(string(d.Kind)),
	}

	if gran == Logic {
		if steps := logicField(d); steps != "" {
			fields = append(fields, "logic:"+steps)
		}
	}

	return strings.Join(fields, "|")
}

// nameOrSignature picks field 2: the bare name at Default granularity,
// the compact signature (falling back to the name) at Signatures/Logic.
func nameOrSignature(d graph.Definition, gran Granularity) string {
	if gran == Default {
		return d.Name
	}
	if d.Signature != "" {
		return d.Signature
	}
	return d.Name
}

// logicField renders a definition's preconditions as the Level-2 logic
// step sequence: each "must avoid: <cond>" becomes its complement,
// "check(<cond-that-must-hold>)", joined with ';' and capped at
// maxLogicLength with whole-step-preserving truncation.
func logicField(d graph.Definition) string {
	if len(d.Preconditions) == 0 {
		return ""
	}

	steps := make([]string, 0, len(d.Preconditions))
	for _, p := range d.Preconditions {
		steps = append(steps, complement(p))
	}

	return joinCapped(steps, maxLogicLength)
}

// complement turns "must avoid: <cond>" into "check(<cond>)" with the
// condition negated at the text level (the complement of the condition
// that must NOT hold is the condition that must hold).
func complement(precondition string) string {
	cond := strings.TrimPrefix(precondition, "must avoid: ")
	cond = sanitizeField(cond)

	switch {
	case strings.HasPrefix(cond, "!(") && strings.HasSuffix(cond, ")"):
		return "check(" + cond[2:len(cond)-1] + ")"
	case strings.HasPrefix(cond, "!"):
		return "check(" + cond[1:] + ")"
	default:
		return "check(!(" + cond + "))"
	}
}

// joinCapped joins steps with ';', truncating at limit while keeping
// only whole steps, appending "..." when anything was dropped.
func joinCapped(steps []string, limit int) string {
	joined := strings.Join(steps, ";")
	if len(joined) <= limit {
		return joined
	}

	var kept []string
	total := 0
	for _, s := range steps {
		add := len(s)
		if len(kept) > 0 {
			add++ // separator
		}
		if total+add+3 > limit { // reserve room for "..."
			break
		}
		kept = append(kept, s)
		total += add
	}

	if len(kept) == 0 {
		// not even one step fits; hard-truncate the first step itself.
		r := []rune(steps[0])
		if len(r) <= limit-3 {
			return string(r) + "..."
		}
		return string(r[:limit-3]) + "..."
	}

	return strings.Join(kept, ";") + "..."
}

// safeField enforces the positional safety invariant on an arbitrary
// field: it must never contain '|'.
func safeField(s string) string {
	return sanitizeField(s)
}

// sanitizeField replaces any stray '|' with the word "or", per §4.10's
// positional safety invariant.
func sanitizeField(s string) string {
	return strings.ReplaceAll(s, "|", "or")
}

func writePositionalGraph(b *strings.Builder, adj graph.Adjacency) {
	sources := make([]string, 0, len(adj))
	for s := range adj {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	for _, s := range sources {
		kinds := adj[s]
		var parts []string
		for _, k := range []graph.EdgeKind{graph.EdgeCalls, graph.EdgeReferences, graph.EdgeImports} {
			targets, ok := kinds[k]
			if !ok {
				continue
			}
			parts = append(parts, string(k)+":["+strings.Join(targets, ",")+"]")
		}
		b.WriteString(s)
		b.WriteByte('|')
		b.WriteString(strings.Join(parts, ","))
		b.WriteByte('\n')
	}
}

// FieldCount reports how many '|'-delimited fields a rendered record has;
// a small helper the positional-safety property tests use directly.
func FieldCount(line string) int {
	return strings.Count(line, "|") + 1
}
