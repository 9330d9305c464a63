// Package refs resolves SCIP occurrences into typed edges between
// definitions (component C7): for every non-definition occurrence, it
// finds the enclosing definition (the edge source) and classifies the
// occurrence's role into one of the output edge kinds.
package refs

import (
	"sort"

	"github.com/context-maximiser/scip-transcoder/pkg/classify"
	"github.com/context-maximiser/scip-transcoder/pkg/graph"
	"github.com/context-maximiser/scip-transcoder/pkg/identity"
	"github.com/context-maximiser/scip-transcoder/pkg/scipindex"
)

// Definition is the minimal shape refs needs from a classified
// definition to do containment and edge-target lookups.
type Definition struct {
	ID       string
	Range    scipindex.Range
	Descriptor string
}

// byStartLine sorts definitions within one file by ascending start line;
// Resolve sorts a file's definitions this way before containingDefinition
// scans all of them for each occurrence.
type byStartLine []Definition

func (b byStartLine) Len() int      { return len(b) }
func (b byStartLine) Swap(i, j int) { b[i], b[j] = b[j], b[i] }
func (b byStartLine) Less(i, j int) bool {
	si, _, _, _ := b[i].Range.StartEnd()
	sj, _, _, _ := b[j].Range.StartEnd()
	return si < sj
}

// Kind classifies an occurrence's role relative to the symbol it touches.
type Kind int

const (
	KindReference Kind = iota
	KindCall
	KindImport
)

// Classify maps an occurrence's role bitmask and its target's descriptor
// to an edge kind.
//
// There is no dedicated SCIP "call" role bit (the bitmask only has
// Definition/Import/WriteAccess/ReadAccess/Generated/Test/
// ForwardDefinition): a read-access touch of a callable symbol
// (descriptor contains "(") is classified as a call, since in every
// language this pipeline targets, invoking a function or method reads
// its binding without writing it. Import-role occurrences are always
// imports regardless of descriptor shape. Everything else is a plain
// reference.
func Classify(roles int32, targetDescriptor string) Kind {
	if roles&scipindex.RoleImport != 0 {
		return KindImport
	}
	if roles&scipindex.RoleReadAccess != 0 && classify.IsMethodDescriptor(targetDescriptor) {
		return KindCall
	}
	return KindReference
}

func (k Kind) EdgeKind() graph.EdgeKind {
	switch k {
	case KindCall:
		return graph.EdgeCalls
	case KindImport:
		return graph.EdgeImports
	default:
		return graph.EdgeReferences
	}
}

// containingDefinition returns the innermost definition in defs (sorted
// by start line) whose range contains occRange, or "" if none does.
//
// Containment is inclusive at both ends, so a definition whose range
// equals occRange also matches. "Innermost" is the match with the
// smallest line span; among equal spans the first one scanned wins.
func containingDefinition(defs []Definition, occRange scipindex.Range) (string, bool) {
	oStart, oCol, oEnd, oEndCol := occRange.StartEnd()

	best := ""
	bestFound := false
	bestSpan := -1

	for _, d := range defs {
		dStart, dCol, dEnd, dEndCol := d.Range.StartEnd()
		if !rangeContains(dStart, dCol, dEnd, dEndCol, oStart, oCol, oEnd, oEndCol) {
			continue
		}
		span := (dEnd - dStart)
		if !bestFound || span < bestSpan {
			best = d.ID
			bestFound = true
			bestSpan = span
		}
	}

	return best, bestFound
}

func rangeContains(oStart, oCol, oEnd, oEndCol, iStart, iCol, iEnd, iEndCol int) bool {
	if iStart < oStart || iEnd > oEnd {
		return false
	}
	if iStart == oStart && iCol < oCol {
		return false
	}
	if iEnd == oEnd && iEndCol > oEndCol {
		return false
	}
	return true
}

// Edge is one resolved reference: which definition it was found in
// (Source), which raw SCIP symbol it touches (TargetSymbol), and its
// classified Kind.
type Edge struct {
	Source       string
	TargetSymbol string
	Kind         Kind
}

// Resolve walks every occurrence in doc and, for each non-definition
// occurrence inside one of defs, emits an Edge from the enclosing
// definition to the touched symbol. An occurrence of the enclosing
// definition's own symbol (e.g. a recursive call) yields a self-edge.
// defs must contain every definition declared in this document;
// targetDescriptors supplies the touched symbol's descriptor, keyed by
// raw SCIP symbol string, for edge-kind classification.
//
// Duplicate (source, target, kind) triples are suppressed unconditionally
// here — a function calling the same target twice must still produce one
// edge, independent of --compact.
func Resolve(doc scipindex.Document, defs []Definition, targetDescriptors map[string]string) []Edge {
	sorted := make([]Definition, len(defs))
	copy(sorted, defs)
	sort.Sort(byStartLine(sorted))

	type triple struct {
		source, target string
		kind           Kind
	}
	seen := make(map[triple]bool)

	var edges []Edge
	for _, occ := range doc.Occurrences {
		if occ.IsDefinition() {
			continue
		}

		sourceID, ok := containingDefinition(sorted, occ.Range)
		if !ok {
			continue
		}

		targetDescriptor := targetDescriptors[occ.Symbol]
		kind := Classify(occ.SymbolRoles, targetDescriptor)

		key := triple{sourceID, occ.Symbol, kind}
		if seen[key] {
			continue
		}
		seen[key] = true

		edges = append(edges, Edge{
			Source:       sourceID,
			TargetSymbol: occ.Symbol,
			Kind:         kind,
		})
	}

	return edges
}

// ParsedFor is a convenience wrapper for callers that already have a
// pkg/identity.Parsed for an occurrence's symbol and want the
// corresponding edge kind without re-deriving the descriptor.
func ParsedFor(roles int32, p identity.Parsed) Kind {
	return Classify(roles, p.Descriptor)
}
