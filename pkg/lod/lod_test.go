package lod

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/context-maximiser/scip-transcoder/pkg/graph"
)

func sampleGraph() graph.Graph {
	return graph.Graph{
		Definitions: []graph.Definition{
			{ID: "file_a1b2", Kind: graph.KindFile, Name: "a.go"},
			{ID: "User_c3d4", Kind: graph.KindClass, Name: "User"},
			{ID: "greet_e5f6", Kind: graph.KindMethod, Name: "greet"},
			{ID: "_private_g7h8", Kind: graph.KindMethod, Name: "_private"},
			{ID: "name_i9j0", Kind: graph.KindField, Name: "name"},
			{ID: "count_k1l2", Kind: graph.KindVariable, Name: "count"},
		},
		Edges: []graph.Edge{
			{Source: "greet_e5f6", Target: "User_c3d4", Kind: graph.EdgeReferences},
			{Source: "greet_e5f6", Target: "greet_e5f6", Kind: graph.EdgeCalls},
			{Source: "greet_e5f6", Target: "external:fmt.Println", Kind: graph.EdgeCalls},
			{Source: "greet_e5f6", Target: "local_tmp", Kind: graph.EdgeReferences},
			{Source: "greet_e5f6", Target: "ghost_missing", Kind: graph.EdgeReferences},
		},
	}
}

func TestFilter_Low_KeepsStructuralOnly(t *testing.T) {
	out := Filter(sampleGraph(), Options{Level: Low})

	var kinds []graph.Kind
	for _, d := range out.Definitions {
		kinds = append(kinds, d.Kind)
	}
	assert.Contains(t, kinds, graph.KindFile)
	assert.Contains(t, kinds, graph.KindClass)
	assert.NotContains(t, kinds, graph.KindMethod)
	assert.NotContains(t, kinds, graph.KindField)
	assert.NotContains(t, kinds, graph.KindVariable)

	// No surviving source for any edge (greet_e5f6 is dropped at Low).
	assert.Empty(t, out.Edges)
}

func TestFilter_Medium_DropsPrivateMethodsKeepsPublic(t *testing.T) {
	g := graph.Graph{
		Definitions: []graph.Definition{
			{ID: "greet_e5f6", Kind: graph.KindMethod, Name: "greet"},
			{ID: "_private_g7h8", Kind: graph.KindMethod, Name: "_private"},
		},
	}
	out := Filter(g, Options{Level: Medium})
	ids := map[string]bool{}
	for _, d := range out.Definitions {
		ids[d.ID] = true
	}
	assert.True(t, ids["greet_e5f6"])
	assert.False(t, ids["_private_g7h8"])
}

func TestFilter_DropsDanglingEdges(t *testing.T) {
	out := Filter(sampleGraph(), Options{Level: Medium})
	for _, e := range out.Edges {
		assert.NotEqual(t, "ghost_missing", e.Target)
	}
}

func TestFilter_ExternalTargetsOnlyAtHigh(t *testing.T) {
	medium := Filter(sampleGraph(), Options{Level: Medium})
	for _, e := range medium.Edges {
		assert.NotContains(t, e.Target, "external:")
	}

	high := Filter(sampleGraph(), Options{Level: High})
	var sawExternal bool
	for _, e := range high.Edges {
		if e.Target == "external:fmt.Println" {
			sawExternal = true
		}
	}
	assert.True(t, sawExternal)
}

func TestFilter_CompactDropsSelfEdgesAndNoiseTargets(t *testing.T) {
	out := Filter(sampleGraph(), Options{Level: High, Compact: true})
	for _, e := range out.Edges {
		assert.NotEqual(t, e.Source, e.Target)
		assert.False(t, isNoiseTarget(e.Target))
	}
}

func TestCompact_BuildsAdjacency(t *testing.T) {
	g := graph.Graph{
		Definitions: []graph.Definition{{ID: "a", Kind: graph.KindFunction}},
		Edges: []graph.Edge{
			{Source: "a", Target: "b", Kind: graph.EdgeCalls},
			{Source: "a", Target: "b", Kind: graph.EdgeCalls},
		},
	}
	compacted := Compact(g)
	assert.Equal(t, []string{"b"}, compacted.Adjacency["a"][graph.EdgeCalls])
}
