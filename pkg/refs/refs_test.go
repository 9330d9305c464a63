package refs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/context-maximiser/scip-transcoder/pkg/graph"
	"github.com/context-maximiser/scip-transcoder/pkg/scipindex"
)

func TestClassify_ImportWins(t *testing.T) {
	got := Classify(scipindex.RoleImport|scipindex.RoleReadAccess, "greet().")
	assert.Equal(t, KindImport, got)
}

func TestClassify_ReadAccessOfCallableIsCall(t *testing.T) {
	got := Classify(scipindex.RoleReadAccess, "greet().")
	assert.Equal(t, KindCall, got)
}

func TestClassify_ReadAccessOfFieldIsReference(t *testing.T) {
	got := Classify(scipindex.RoleReadAccess, "name.")
	assert.Equal(t, KindReference, got)
}

func TestKind_EdgeKind(t *testing.T) {
	assert.Equal(t, graph.EdgeCalls, KindCall.EdgeKind())
	assert.Equal(t, graph.EdgeImports, KindImport.EdgeKind())
	assert.Equal(t, graph.EdgeReferences, KindReference.EdgeKind())
}

func TestResolve_FindsInnermostEnclosingDefinition(t *testing.T) {
	defs := []Definition{
		{ID: "User_aaaa", Range: scipindex.Range{1, 0, 10, 1}, Descriptor: "User#"},
		{ID: "greet_bbbb", Range: scipindex.Range{3, 1, 5, 2}, Descriptor: "greet()."},
	}
	doc := scipindex.Document{
		Occurrences: []scipindex.Occurrence{
			{Symbol: "User#", Range: scipindex.Range{1, 0, 10, 1}, SymbolRoles: scipindex.RoleDefinition},
			{Symbol: "greet().", Range: scipindex.Range{3, 1, 5, 2}, SymbolRoles: scipindex.RoleDefinition},
			{Symbol: "fmt.Println().", Range: scipindex.Range{4, 2, 4, 20}, SymbolRoles: scipindex.RoleReadAccess},
		},
	}
	targetDescriptors := map[string]string{"fmt.Println().": "Println()."}

	edges := Resolve(doc, defs, targetDescriptors)
	require.Len(t, edges, 1)
	assert.Equal(t, "greet_bbbb", edges[0].Source)
	assert.Equal(t, "fmt.Println().", edges[0].TargetSymbol)
	assert.Equal(t, KindCall, edges[0].Kind)
}

func TestResolve_SkipsDefiningOccurrences(t *testing.T) {
	defs := []Definition{
		{ID: "greet_bbbb", Range: scipindex.Range{1, 0, 3, 1}, Descriptor: "greet()."},
	}
	doc := scipindex.Document{
		Occurrences: []scipindex.Occurrence{
			{Symbol: "greet().", Range: scipindex.Range{1, 0, 3, 1}, SymbolRoles: scipindex.RoleDefinition},
		},
	}
	edges := Resolve(doc, defs, nil)
	assert.Empty(t, edges)
}

func TestResolve_DedupsRepeatedCallsToSameTarget(t *testing.T) {
	defs := []Definition{
		{ID: "greet_bbbb", Range: scipindex.Range{1, 0, 6, 1}, Descriptor: "greet()."},
	}
	doc := scipindex.Document{
		Occurrences: []scipindex.Occurrence{
			{Symbol: "greet().", Range: scipindex.Range{1, 0, 6, 1}, SymbolRoles: scipindex.RoleDefinition},
			{Symbol: "fmt.Println().", Range: scipindex.Range{2, 2, 2, 20}, SymbolRoles: scipindex.RoleReadAccess},
			{Symbol: "fmt.Println().", Range: scipindex.Range{3, 2, 3, 20}, SymbolRoles: scipindex.RoleReadAccess},
		},
	}
	targetDescriptors := map[string]string{"fmt.Println().": "Println()."}

	edges := Resolve(doc, defs, targetDescriptors)
	require.Len(t, edges, 1, "repeated calls to the same target must collapse to one edge")
	assert.Equal(t, "fmt.Println().", edges[0].TargetSymbol)
}

func TestResolve_SameTargetDifferentKindProducesTwoEdges(t *testing.T) {
	defs := []Definition{
		{ID: "greet_bbbb", Range: scipindex.Range{1, 0, 6, 1}, Descriptor: "greet()."},
	}
	doc := scipindex.Document{
		Occurrences: []scipindex.Occurrence{
			{Symbol: "greet().", Range: scipindex.Range{1, 0, 6, 1}, SymbolRoles: scipindex.RoleDefinition},
			{Symbol: "x.", Range: scipindex.Range{2, 2, 2, 10}, SymbolRoles: scipindex.RoleReadAccess},
			{Symbol: "x.", Range: scipindex.Range{3, 2, 3, 10}, SymbolRoles: scipindex.RoleImport},
		},
	}
	edges := Resolve(doc, defs, nil)
	require.Len(t, edges, 2)
}

func TestResolve_OccurrenceOutsideAnyDefinitionIsDropped(t *testing.T) {
	defs := []Definition{
		{ID: "greet_bbbb", Range: scipindex.Range{5, 0, 7, 1}, Descriptor: "greet()."},
	}
	doc := scipindex.Document{
		Occurrences: []scipindex.Occurrence{
			{Symbol: "fmt.Println().", Range: scipindex.Range{1, 0, 1, 10}, SymbolRoles: scipindex.RoleReadAccess},
		},
	}
	edges := Resolve(doc, defs, nil)
	assert.Empty(t, edges)
}
