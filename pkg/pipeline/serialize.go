package pipeline

import (
	"github.com/context-maximiser/scip-transcoder/pkg/graph"
	"github.com/context-maximiser/scip-transcoder/pkg/serialize"
)

func serializeKeyed(g graph.Graph, cfg Config) []byte {
	return serialize.Keyed(g, serialize.KeyedOptions{
		Name:    cfg.ProjectName,
		Compact: cfg.Compact,
	})
}

func serializeAdhoc(g graph.Graph, cfg Config) []byte {
	return serialize.Positional(g, serialize.PositionalOptions{
		Granularity: cfg.AdhocGranularity,
		Compact:     cfg.Compact,
	})
}
