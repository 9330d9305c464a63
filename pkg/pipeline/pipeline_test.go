package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/context-maximiser/scip-transcoder/pkg/graph"
	"github.com/context-maximiser/scip-transcoder/pkg/lod"
	"github.com/context-maximiser/scip-transcoder/pkg/scipindex"
)

const greeterSource = `package greeter

func Greet(name string) string {
	if name == "" {
		return ""
	}
	return "hi " + name
}
`

func buildIndex(root string) *scipindex.Index {
	return &scipindex.Index{
		ProjectRoot: root,
		Documents: []scipindex.Document{
			{
				RelativePath: "greeter.go",
				Language:     "go",
				Symbols: []scipindex.Symbol{
					{Symbol: "scip-go gomod example 1.0.0 Greet().", DisplayName: "Greet", Kind: int32(scippb.SymbolInformation_Function)},
				},
				Occurrences: []scipindex.Occurrence{
					{
						Symbol:      "scip-go gomod example 1.0.0 Greet().",
						Range:       scipindex.Range{2, 5, 2, 10},
						SymbolRoles: scipindex.RoleDefinition,
					},
				},
			},
		},
	}
}

func TestRun_ProducesFileAndFunctionDefinitions(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "greeter.go"), []byte(greeterSource), 0o644))

	idx := buildIndex(root)
	cfg := Default()
	cfg.Root = root

	res, err := Run(context.Background(), idx, cfg, nil)
	require.NoError(t, err)
	require.NotEmpty(t, res.Graph.Definitions)

	var sawFile, sawFunc bool
	for _, d := range res.Graph.Definitions {
		if d.Kind == graph.KindFile {
			sawFile = true
		}
		if d.Kind == graph.KindFunction {
			sawFunc = true
			assert.Equal(t, "Greet", d.Name)
			assert.Equal(t, "function Greet(name str): str", d.Signature)
			require.Len(t, d.Preconditions, 1)
			assert.Equal(t, `must avoid: name == ""`, d.Preconditions[0])
		}
	}
	assert.True(t, sawFile)
	assert.True(t, sawFunc)
	assert.Positive(t, res.InputBytes)
}

func TestRun_InvalidConfigFailsFast(t *testing.T) {
	idx := buildIndex(t.TempDir())
	cfg := Default()
	cfg.OutputFormat = "bogus"

	_, err := Run(context.Background(), idx, cfg, nil)
	require.Error(t, err)
}

func TestRun_MissingSourceFileRecordsDiagnosticNotFatal(t *testing.T) {
	root := t.TempDir() // greeter.go deliberately not written
	idx := buildIndex(root)
	cfg := Default()
	cfg.Root = root

	res, err := Run(context.Background(), idx, cfg, nil)
	require.NoError(t, err)
	require.NotEmpty(t, res.Diagnostics)
	assert.Equal(t, "greeter.go", res.Diagnostics[0].Path)
}

func TestSerializeAndReport_RoundTrip(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "greeter.go"), []byte(greeterSource), 0o644))

	idx := buildIndex(root)
	cfg := Default()
	cfg.Root = root
	cfg.LOD = lod.High

	res, err := Run(context.Background(), idx, cfg, nil)
	require.NoError(t, err)

	out := Serialize(res, cfg)
	require.NotEmpty(t, out)
	assert.Contains(t, string(out), "Greet")

	report := Report(res, out)
	assert.Positive(t, report.InputTokens)
	assert.Positive(t, report.OutputTokens)
}

func TestRun_DeterministicAcrossRuns(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "greeter.go"), []byte(greeterSource), 0o644))

	idx := buildIndex(root)
	cfg := Default()
	cfg.Root = root

	res1, err := Run(context.Background(), idx, cfg, nil)
	require.NoError(t, err)
	res2, err := Run(context.Background(), idx, cfg, nil)
	require.NoError(t, err)

	out1 := Serialize(res1, cfg)
	out2 := Serialize(res2, cfg)
	assert.Equal(t, out1, out2)
}
