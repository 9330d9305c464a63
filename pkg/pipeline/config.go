package pipeline

import (
	"github.com/context-maximiser/scip-transcoder/pkg/fsfilter"
	"github.com/context-maximiser/scip-transcoder/pkg/lod"
	"github.com/context-maximiser/scip-transcoder/pkg/serialize"
	"github.com/context-maximiser/scip-transcoder/pkg/xerrors"
)

// OutputFormat selects between the two serializers.
type OutputFormat string

const (
	FormatKeyed OutputFormat = "keyed"
	FormatAdhoc OutputFormat = "adhoc"
)

// Config is the configuration record the driver accepts, per the
// external interfaces' enumerated options. Zero value is NOT a valid
// Config — use Default() and override from there, so every field's
// documented default is applied consistently regardless of which layer
// (CLI flag, config file) last touched it.
type Config struct {
	LOD                  lod.Level
	Compact              bool
	OutputFormat         OutputFormat
	AdhocGranularity     serialize.Granularity
	IgnoreFrameworkNoise bool
	Root                 string
	ProjectName          string
	Predicate            fsfilter.Predicate // nil means "include everything"
}

// Default returns the configuration record's documented defaults:
// lod=1, compact=false, output_format=keyed, adhoc_granularity=default.
func Default() Config {
	return Config{
		LOD:              lod.Medium,
		Compact:          false,
		OutputFormat:     FormatKeyed,
		AdhocGranularity: serialize.Default,
		ProjectName:      "project",
	}
}

// Validate checks for configuration conflicts the driver must reject
// fatally before doing any work, per ConfigConflict in the error table.
func (c Config) Validate() error {
	if c.OutputFormat != FormatKeyed && c.OutputFormat != FormatAdhoc {
		return xerrors.New(xerrors.ConfigConflict, "pipeline.Config.Validate",
			"output_format must be one of: keyed, adhoc")
	}
	if c.LOD < 0 || c.LOD > 2 {
		return xerrors.New(xerrors.ConfigConflict, "pipeline.Config.Validate",
			"lod must be one of: 0, 1, 2")
	}
	return nil
}
