package scipindex

import (
	"testing"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func TestDecode_MissingMetadataIsUnsupportedSchema(t *testing.T) {
	data, err := proto.Marshal(&scippb.Index{})
	require.NoError(t, err)

	_, err = Decode(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metadata")
}

func TestDecode_MalformedBytesFail(t *testing.T) {
	_, err := Decode([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
}

func TestDecode_RoundTripsDocumentsAndSymbols(t *testing.T) {
	raw := &scippb.Index{
		Metadata: &scippb.Metadata{ProjectRoot: "file:///proj"},
		Documents: []*scippb.Document{
			{
				RelativePath: "main.go",
				Language:     "go",
				Symbols: []*scippb.SymbolInformation{
					{Symbol: "scip-go gomod x greet().", Kind: scippb.SymbolInformation_Function},
				},
				Occurrences: []*scippb.Occurrence{
					{
						Symbol:      "scip-go gomod x greet().",
						Range:       []int32{0, 0, 1, 1},
						SymbolRoles: int32(scippb.SymbolRole_Definition),
					},
				},
			},
		},
	}
	data, err := proto.Marshal(raw)
	require.NoError(t, err)

	idx, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, idx.Documents, 1)
	assert.Equal(t, "main.go", idx.Documents[0].RelativePath)
	assert.True(t, idx.Documents[0].Occurrences[0].IsDefinition())
}

func TestRange_StartEnd(t *testing.T) {
	threeField := Range{5, 2, 10}
	sl, sc, el, ec := threeField.StartEnd()
	assert.Equal(t, 5, sl)
	assert.Equal(t, 2, sc)
	assert.Equal(t, 5, el)
	assert.Equal(t, 10, ec)

	fourField := Range{5, 2, 8, 4}
	sl, sc, el, ec = fourField.StartEnd()
	assert.Equal(t, 5, sl)
	assert.Equal(t, 2, sc)
	assert.Equal(t, 8, el)
	assert.Equal(t, 4, ec)
}

func TestAllExternalStrings_Deduplicates(t *testing.T) {
	idx := &Index{
		Documents: []Document{
			{
				Symbols:     []Symbol{{Symbol: "a"}},
				Occurrences: []Occurrence{{Symbol: "a"}, {Symbol: "b"}},
			},
		},
		ExternalSymbols: []Symbol{{Symbol: "b"}, {Symbol: "c"}},
	}
	got := idx.AllExternalStrings()
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
