package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/context-maximiser/scip-transcoder/pkg/fsfilter"
	"github.com/context-maximiser/scip-transcoder/pkg/lod"
	"github.com/context-maximiser/scip-transcoder/pkg/pipeline"
	"github.com/context-maximiser/scip-transcoder/pkg/plog"
	"github.com/context-maximiser/scip-transcoder/pkg/scipindex"
	"github.com/context-maximiser/scip-transcoder/pkg/serialize"
	"github.com/context-maximiser/scip-transcoder/pkg/xerrors"
)

var (
	cfgFile string
	verbose bool

	flagIndexPath   string
	flagRoot        string
	flagLOD         int
	flagCompact     bool
	flagFormat      string
	flagGranularity string
	flagOutput      string
	flagInclude     []string
	flagExclude     []string
	flagGitignore   bool
	flagProjectName string
	flagMetricsOnly bool
)

var rootCmd = &cobra.Command{
	Use:   "transcode",
	Short: "Semantic code transcoder",
	Long: `transcode decodes a SCIP code index and the source files it covers into
a compact semantic graph: symbol definitions with signatures and lifted
preconditions, and typed reference edges between them, suitable as
context for large language models.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Decode a SCIP index and emit the semantic graph",
	RunE:  runTranscode,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .transcoder.yaml in the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	runCmd.Flags().StringVar(&flagIndexPath, "index", "", "path to the SCIP index file (required)")
	runCmd.Flags().StringVar(&flagRoot, "root", "", "project root for relative paths (default: index metadata's project_root)")
	runCmd.Flags().IntVar(&flagLOD, "lod", 1, "level of detail: 0 (low), 1 (medium), 2 (high)")
	runCmd.Flags().BoolVar(&flagCompact, "compact", false, "drop noise edges and render the graph as adjacency")
	runCmd.Flags().StringVar(&flagFormat, "output-format", "keyed", "output format: keyed | adhoc")
	runCmd.Flags().StringVar(&flagGranularity, "adhoc-granularity", "default", "positional granularity: default | signatures | logic")
	runCmd.Flags().StringVar(&flagOutput, "out", "-", "output path, or - for stdout")
	runCmd.Flags().StringSliceVar(&flagInclude, "include", nil, "glob patterns of files to include")
	runCmd.Flags().StringSliceVar(&flagExclude, "exclude", nil, "glob patterns of files to exclude")
	runCmd.Flags().BoolVar(&flagGitignore, "use-gitignore", false, "honor the project root's .gitignore")
	runCmd.Flags().StringVar(&flagProjectName, "name", "project", "project name recorded in _meta")
	runCmd.Flags().BoolVar(&flagMetricsOnly, "metrics-only", false, "skip the serialized graph; report only input/output token estimates")
	_ = runCmd.MarkFlagRequired("index")

	viper.BindPFlag("lod", runCmd.Flags().Lookup("lod"))
	viper.BindPFlag("compact", runCmd.Flags().Lookup("compact"))
	viper.BindPFlag("output_format", runCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("adhoc_granularity", runCmd.Flags().Lookup("adhoc-granularity"))
	viper.BindPFlag("include_globs", runCmd.Flags().Lookup("include"))
	viper.BindPFlag("exclude_globs", runCmd.Flags().Lookup("exclude"))
	viper.BindPFlag("use_gitignore", runCmd.Flags().Lookup("use-gitignore"))
	viper.BindPFlag("root", runCmd.Flags().Lookup("root"))

	rootCmd.AddCommand(runCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".transcoder")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	var xe *xerrors.Error
	if ok := asXerrors(err, &xe); ok {
		if code := xe.Code.ExitCode(); code != 0 {
			return code
		}
	}
	return 1
}

func asXerrors(err error, target **xerrors.Error) bool {
	for err != nil {
		if xe, ok := err.(*xerrors.Error); ok {
			*target = xe
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

func runTranscode(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := plog.New(plog.Config{Format: plog.Text, Level: level})

	idx, err := scipindex.DecodeFile(flagIndexPath)
	if err != nil {
		return err
	}

	root := viper.GetString("root")
	if root == "" {
		root = idx.ProjectRoot
	}

	predicate, err := fsfilter.Build(fsfilter.Options{
		IncludeGlobs: viper.GetStringSlice("include_globs"),
		ExcludeGlobs: viper.GetStringSlice("exclude_globs"),
		UseGitignore: viper.GetBool("use_gitignore"),
		Root:         root,
	})
	if err != nil {
		return err
	}

	cfg := pipeline.Default()
	cfg.LOD = lod.Level(viper.GetInt("lod"))
	cfg.Compact = viper.GetBool("compact")
	cfg.Root = root
	cfg.ProjectName = flagProjectName
	cfg.Predicate = predicate

	switch viper.GetString("output_format") {
	case "adhoc":
		cfg.OutputFormat = pipeline.FormatAdhoc
	default:
		cfg.OutputFormat = pipeline.FormatKeyed
	}

	switch viper.GetString("adhoc_granularity") {
	case "signatures":
		cfg.AdhocGranularity = serialize.Signatures
	case "logic":
		cfg.AdhocGranularity = serialize.Logic
	default:
		cfg.AdhocGranularity = serialize.Default
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	res, err := pipeline.Run(context.Background(), idx, cfg, logger)
	if err != nil {
		return err
	}

	for _, d := range res.Diagnostics {
		logger.Warn("enrichment degraded", "path", d.Path, "code", d.Code, "message", d.Message)
	}

	if flagMetricsOnly {
		report := pipeline.Report(res, nil)
		fmt.Printf("input_tokens=%d output_tokens=0 ratio=n/a diagnostics=%d\n",
			report.InputTokens, len(report.Diagnostics))
		return nil
	}

	output := pipeline.Serialize(res, cfg)

	if err := writeOutput(flagOutput, output); err != nil {
		return xerrors.Wrap(xerrors.OutputWrite, "main.runTranscode", err).WithPath(flagOutput)
	}

	report := pipeline.Report(res, output)
	logger.Info("transcode complete",
		"input_tokens", report.InputTokens,
		"output_tokens", report.OutputTokens,
		"ratio", report.Ratio,
		"diagnostics", len(report.Diagnostics),
	)

	return nil
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
