// Package classify assigns each SCIP definition a Kind from the pipeline's
// closed output vocabulary (component C3), preferring the index's own
// SymbolInformation.Kind when present and falling back to descriptor
// syntax (the trailing '#', '(', '.' markers SCIP symbol strings use).
package classify

import (
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"

	"github.com/context-maximiser/scip-transcoder/pkg/graph"
	"github.com/context-maximiser/scip-transcoder/pkg/identity"
)

// fromSCIPKind maps the subset of scip.SymbolInformation_Kind this
// pipeline distinguishes, restricted to the kind values every SCIP
// indexer in the wild actually populates. Anything else (Namespace, a
// language-specific kind this table omits, or Kind_UnspecifiedKind)
// falls through to descriptor-based classification.
var fromSCIPKind = map[int32]graph.Kind{
	int32(scippb.SymbolInformation_Class):     graph.KindClass,
	int32(scippb.SymbolInformation_Interface): graph.KindInterface,
	int32(scippb.SymbolInformation_Method):    graph.KindMethod,
	int32(scippb.SymbolInformation_Function):  graph.KindFunction,
	int32(scippb.SymbolInformation_Field):     graph.KindField,
	int32(scippb.SymbolInformation_Variable):  graph.KindVariable,
	int32(scippb.SymbolInformation_Constant):  graph.KindVariable,
	int32(scippb.SymbolInformation_Type):      graph.KindType,
}

// FromDescriptor infers a Kind from a parsed symbol's descriptor suffix
// alone, for symbols whose SymbolInformation.Kind is Kind_UnspecifiedKind
// or absent entirely (common for external symbols).
func FromDescriptor(p identity.Parsed) graph.Kind {
	d := strings.TrimSpace(p.Descriptor)
	d = strings.TrimSuffix(d, "`")

	switch {
	case strings.HasSuffix(d, ")."), strings.Contains(d, "("):
		if p.Package == "" && p.Manager == "" {
			return graph.KindFunction
		}
		return graph.KindMethod
	case strings.HasSuffix(d, "#"):
		return graph.KindClass
	case strings.HasSuffix(d, ":"):
		return graph.KindInterface
	case strings.HasSuffix(d, "."):
		return graph.KindField
	default:
		return graph.KindUnknown
	}
}

// Classify assigns a Kind, preferring scipKind (as supplied by a
// scip.SymbolInformation, or 0/Kind_UnspecifiedKind when none is
// available) and falling back to the descriptor heuristic.
func Classify(p identity.Parsed, scipKind int32) graph.Kind {
	if k, ok := fromSCIPKind[scipKind]; ok {
		return k
	}
	return FromDescriptor(p)
}

// IsMethodDescriptor reports whether a descriptor denotes a callable
// (method or function): SCIP marks these with a trailing "()." or a
// bare "(" for some emitters. Used by pkg/refs to tell a "calls" edge
// from a plain "references" edge when no call-specific role bit exists.
func IsMethodDescriptor(descriptor string) bool {
	return strings.Contains(descriptor, "(")
}

// IsTypeDescriptor reports whether a descriptor denotes a type-like
// symbol (class, interface, struct, enum): SCIP marks these with a
// trailing '#'.
func IsTypeDescriptor(descriptor string) bool {
	return strings.HasSuffix(strings.TrimSuffix(descriptor, "`"), "#")
}
