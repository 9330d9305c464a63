package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FourAndFiveFieldForms(t *testing.T) {
	p := Parse("scip-typescript npm left-pad 1.3.0 `index.ts`/leftPad().")
	require.Equal(t, "scip-typescript", p.Scheme)
	require.Equal(t, "npm", p.Manager)
	require.Equal(t, "left-pad", p.Package)
	require.Equal(t, "1.3.0", p.Version)
	require.Equal(t, "`index.ts`/leftPad().", p.Descriptor)

	p2 := Parse("scip-go gomod github.com/x/y function().")
	require.Equal(t, "scip-go", p2.Scheme)
	require.Equal(t, "", p2.Version)
	require.Equal(t, "function().", p2.Descriptor)
}

func TestParse_Local(t *testing.T) {
	p := Parse("local 3")
	assert.True(t, p.Local())
	assert.Equal(t, "3", p.Descriptor)
}

func TestSimpleName(t *testing.T) {
	cases := map[string]string{
		"greet().":     "greet",
		"User#":        "User",
		"name.":        "name",
		"pkg/greet().": "greet",
	}
	for descriptor, want := range cases {
		p := Parsed{Descriptor: descriptor}
		assert.Equal(t, want, p.SimpleName(), descriptor)
	}
}

func TestMinter_Deterministic(t *testing.T) {
	raws := []string{"scip-go gomod x greet().", "scip-go gomod x User#"}

	m1 := NewMinter()
	m1.MintAll(raws)
	m2 := NewMinter()
	m2.MintAll(raws)

	for _, raw := range raws {
		id1, _ := m1.Lookup(raw)
		id2, _ := m2.Lookup(raw)
		assert.Equal(t, id1, id2)
	}
}

func TestMinter_CollisionGetsNumericSuffix(t *testing.T) {
	m := NewMinter()
	base := sanitizeBase(Parse("scip-go gomod x y#").SimpleName()) + "_" + hash4("scip-go gomod x y#")
	m.used[base] = true // simulate a prior symbol already occupying this id

	got := m.mint("scip-go gomod x y#")
	assert.Equal(t, base+"_2", got)
}

func TestMinter_MintAllOrderIndependentOfInputOrder(t *testing.T) {
	raws := []string{"b raw two", "a raw one", "c raw three"}
	shuffled := []string{"c raw three", "a raw one", "b raw two"}

	m1 := NewMinter()
	m1.MintAll(raws)
	m2 := NewMinter()
	m2.MintAll(shuffled)

	for _, raw := range raws {
		id1, _ := m1.Lookup(raw)
		id2, _ := m2.Lookup(raw)
		assert.Equal(t, id1, id2)
	}
}
