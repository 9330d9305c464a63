// Package pipeline implements the driver (component C12): it sequences
// C1-C3, fans enrichment (C4-C6) out across a worker pool partitioned by
// source file, resolves references (C7) single-threaded, then leaves LOD
// filtering (C8) and serialization (C9/C10) to the caller so one decoded
// run can be rendered at several LOD levels or formats without redoing
// the expensive parts.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/context-maximiser/scip-transcoder/pkg/classify"
	"github.com/context-maximiser/scip-transcoder/pkg/graph"
	"github.com/context-maximiser/scip-transcoder/pkg/identity"
	"github.com/context-maximiser/scip-transcoder/pkg/logiclift"
	"github.com/context-maximiser/scip-transcoder/pkg/lod"
	"github.com/context-maximiser/scip-transcoder/pkg/metrics"
	"github.com/context-maximiser/scip-transcoder/pkg/refs"
	"github.com/context-maximiser/scip-transcoder/pkg/scipindex"
	"github.com/context-maximiser/scip-transcoder/pkg/signature"
	"github.com/context-maximiser/scip-transcoder/pkg/sourcecache"
	"github.com/context-maximiser/scip-transcoder/pkg/xerrors"
)

// Result is a completed pipeline run: the unfiltered graph (every
// definition and edge C1-C7 produced, before LOD filtering) plus its
// input-side metrics. Edges to symbols with no local definition are in
// it, as "external:*" targets, only when Run was given LOD High.
// Serialize applies LOD filtering and renders the chosen output format.
type Result struct {
	Graph       graph.Graph
	InputBytes  int
	Diagnostics []metrics.Diagnostic
}

// Run executes C1 (already decoded into idx) through C7: minting ids,
// classifying definitions, enriching them in parallel, and resolving
// reference edges.
func Run(ctx context.Context, idx *scipindex.Index, cfg Config, logger *slog.Logger) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	root := cfg.Root
	if root == "" {
		root = idx.ProjectRoot
	}

	minter := identity.NewMinter()
	minter.MintAll(idx.AllExternalStrings())

	fileIDs := mintFileIDs(minter, idx.Documents, cfg.Predicate)

	defs, descriptorBySymbol := classifyDefinitions(idx, minter, fileIDs, cfg)

	cache := sourcecache.New(root)
	diagnostics := enrich(ctx, defs, idx.Documents, cache, logger)

	if cfg.IgnoreFrameworkNoise {
		defs = stripFrameworkNoise(defs, idx.Documents, cache)
	}

	edges := resolveEdges(idx, defs, descriptorBySymbol, minter, cfg.LOD)

	inputBytes := sumSourceBytes(cache, idx.Documents, cfg.Predicate)

	return Result{
		Graph:       graph.Graph{Definitions: defs, Edges: edges},
		InputBytes:  inputBytes,
		Diagnostics: diagnostics,
	}, nil
}

// mintFileIDs creates one synthetic KindFile definition id per included
// document, keyed by relative path, using a document-scoped raw string
// that can never collide with a real SCIP symbol string.
func mintFileIDs(minter *identity.Minter, docs []scipindex.Document, predicate func(string) bool) map[string]string {
	ids := make(map[string]string, len(docs))
	for _, doc := range docs {
		if predicate != nil && !predicate(doc.RelativePath) {
			continue
		}
		ids[doc.RelativePath] = minter.ShortID("$file$ " + doc.RelativePath)
	}
	return ids
}

func classifyDefinitions(idx *scipindex.Index, minter *identity.Minter, fileIDs map[string]string, cfg Config) ([]graph.Definition, map[string]string) {
	descriptorBySymbol := make(map[string]string)
	var defs []graph.Definition

	for _, doc := range idx.Documents {
		if cfg.Predicate != nil && !cfg.Predicate(doc.RelativePath) {
			continue
		}

		fileID, hasFile := fileIDs[doc.RelativePath]
		if hasFile {
			defs = append(defs, graph.Definition{
				ID:       fileID,
				Name:     filepath.Base(doc.RelativePath),
				Kind:     graph.KindFile,
				FilePath: doc.RelativePath,
			})
		}

		defRanges := definitionRanges(doc)

		for _, sym := range doc.Symbols {
			parsed := identity.Parse(sym.Symbol)
			descriptorBySymbol[sym.Symbol] = parsed.Descriptor

			id := minter.ShortID(sym.Symbol)
			kind := classify.Classify(parsed, sym.Kind)

			parentID := ""
			if parentRaw, ok := identity.ParentRaw(parsed); ok {
				if pid, found := minter.Lookup(parentRaw); found {
					parentID = pid
				}
			}
			if parentID == "" {
				parentID = fileID
			}

			rng := defRanges[sym.Symbol]
			name := sym.DisplayName
			if name == "" {
				name = parsed.SimpleName()
			}

			defs = append(defs, graph.Definition{
				ID:       id,
				Name:     name,
				Kind:     kind,
				ParentID: parentID,
				FilePath: doc.RelativePath,
				Range: graph.Range{
					StartLine: rng.startLine, StartColumn: rng.startCol,
					EndLine: rng.endLine, EndColumn: rng.endCol,
				},
				Doc: strings.TrimSpace(strings.Join(sym.Documentation, " ")),
			})
		}
	}

	return defs, descriptorBySymbol
}

type occRange struct{ startLine, startCol, endLine, endCol int }

// definitionRanges maps every symbol defined in doc to its defining
// occurrence's range (first one found, in document order).
func definitionRanges(doc scipindex.Document) map[string]occRange {
	out := make(map[string]occRange)
	for _, occ := range doc.Occurrences {
		if !occ.IsDefinition() {
			continue
		}
		if _, exists := out[occ.Symbol]; exists {
			continue
		}
		sl, sc, el, ec := occ.Range.StartEnd()
		out[occ.Symbol] = occRange{sl, sc, el, ec}
	}
	return out
}

// enrich runs C4-C6 over every non-file definition, partitioned by file
// path so each worker's source-cache hits are maximized: definitions are
// data-parallel, and no worker observes another's output, per the
// concurrency model.
func enrich(ctx context.Context, defs []graph.Definition, docs []scipindex.Document, cache *sourcecache.Cache, logger *slog.Logger) []metrics.Diagnostic {
	langByPath := make(map[string]string, len(docs))
	for _, d := range docs {
		langByPath[d.RelativePath] = d.Language
	}

	byFile := make(map[string][]int)
	for i, d := range defs {
		if d.Kind == graph.KindFile {
			continue
		}
		byFile[d.FilePath] = append(byFile[d.FilePath], i)
	}

	paths := make([]string, 0, len(byFile))
	for p := range byFile {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var mu sync.Mutex
	var diagnostics []metrics.Diagnostic

	g, _ := errgroup.WithContext(ctx)
	for _, path := range paths {
		path := path
		indices := byFile[path]
		g.Go(func() error {
			lang := langByPath[path]
			source, tree, err := cache.Get(path, lang)
			if err != nil {
				logger.Warn("enrichment source unavailable", "path", path, "error", err)
				mu.Lock()
				diagnostics = append(diagnostics, diagnosticFor(path, err))
				mu.Unlock()
				return nil
			}
			var root *sitter.Node
			if tree != nil {
				root = tree.RootNode()
			}

			for _, idx := range indices {
				enrichOne(&defs[idx], root, source, lang)
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(diagnostics, func(i, j int) bool { return diagnostics[i].Path < diagnostics[j].Path })
	return diagnostics
}

// stripFrameworkNoise applies the ignore_framework_noise filter: classes
// whose body is a single dependency-injection constructor are dropped,
// and recognized decorator prefixes are stripped from every surviving
// signature. Parent-less children of a dropped class fall back to its
// file as their parent, same as any definition with an unresolved parent.
func stripFrameworkNoise(defs []graph.Definition, docs []scipindex.Document, cache *sourcecache.Cache) []graph.Definition {
	langByPath := make(map[string]string, len(docs))
	fileIDByPath := make(map[string]string, len(docs))
	for _, d := range docs {
		langByPath[d.RelativePath] = d.Language
	}
	for _, d := range defs {
		if d.Kind == graph.KindFile {
			fileIDByPath[d.FilePath] = d.ID
		}
	}

	dropped := make(map[string]bool)
	for i := range defs {
		d := &defs[i]
		lang := langByPath[d.FilePath]

		if d.Signature != "" {
			d.Signature = classify.StripAnnotations(lang, d.Signature)
		}

		if d.Kind != graph.KindClass {
			continue
		}

		source, tree, err := cache.Get(d.FilePath, lang)
		if err != nil || tree == nil {
			continue
		}
		body := findBody(tree.RootNode(), uint32(d.Range.StartLine))
		if classify.ClassBodyIsDIOnly(body, source) {
			dropped[d.ID] = true
		}
	}

	if len(dropped) == 0 {
		return defs
	}

	out := make([]graph.Definition, 0, len(defs))
	for _, d := range defs {
		if dropped[d.ID] {
			continue
		}
		if dropped[d.ParentID] {
			d.ParentID = fileIDByPath[d.FilePath]
		}
		out = append(out, d)
	}
	return out
}

func diagnosticFor(path string, err error) metrics.Diagnostic {
	code := "IO_READ"
	if xe, ok := err.(*xerrors.Error); ok {
		code = string(xe.Code)
	}
	return metrics.Diagnostic{Path: path, Code: code, Message: err.Error()}
}

func enrichOne(d *graph.Definition, root *sitter.Node, source []byte, lang string) {
	if root != nil {
		if node := findEnclosingNode(root, uint32(d.Range.StartLine)); node != nil {
			d.Signature = signature.Format(d.Kind, node, source)
		}
	}

	if d.Kind != graph.KindFunction && d.Kind != graph.KindMethod {
		return
	}
	if root == nil {
		return
	}

	body := findBody(root, uint32(d.Range.StartLine))
	if body == nil {
		return
	}
	d.Preconditions = logiclift.Lift(body, source, lang)
}

// findBody searches the parse tree for the named node starting at
// startLine (0-indexed, matching SCIP's convention) that has a "body"
// field, and returns that field. This generically locates a function or
// method's block across every grammar this pipeline supports, since
// each names its body field "body".
func findBody(n *sitter.Node, startLine uint32) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.IsNamed() && n.StartPoint().Row == startLine {
		if body := n.ChildByFieldName("body"); body != nil {
			return body
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := findBody(n.Child(i), startLine); found != nil {
			return found
		}
	}
	return nil
}

// findEnclosingNode returns the largest named node that starts exactly
// at startLine: the declaration itself (function_declaration,
// class_declaration, type_alias_declaration, enum_declaration, ...)
// rather than one of its interior tokens, so the signature formatter can
// inspect its name/parameters/return-type/heritage fields directly.
func findEnclosingNode(n *sitter.Node, startLine uint32) *sitter.Node {
	var best *sitter.Node
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.IsNamed() && n.StartPoint().Row == startLine {
			if best == nil || (n.EndByte()-n.StartByte()) > (best.EndByte()-best.StartByte()) {
				best = n
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(n)
	return best
}

// resolveEdges runs C7: walks every document's occurrences, resolving
// each to a typed edge between the enclosing definition and the touched
// symbol's short id. A touched symbol with no surviving local definition
// is dropped unless level is High, in which case it is promoted to a
// synthetic "external:<short-id>" node (the id is still derived from the
// same sanitize+hash rule as every other short id).
func resolveEdges(idx *scipindex.Index, defs []graph.Definition, descriptorBySymbol map[string]string, minter *identity.Minter, level lod.Level) []graph.Edge {
	defByID := make(map[string]bool, len(defs))
	defsByFile := make(map[string][]refs.Definition)
	for _, d := range defs {
		defByID[d.ID] = true
		if d.Kind == graph.KindFile {
			continue
		}
		defsByFile[d.FilePath] = append(defsByFile[d.FilePath], refs.Definition{
			ID: d.ID,
			Range: scipindex.Range{
				int32(d.Range.StartLine), int32(d.Range.StartColumn),
				int32(d.Range.EndLine), int32(d.Range.EndColumn),
			},
		})
	}

	var edges []graph.Edge
	for _, doc := range idx.Documents {
		resolved := refs.Resolve(doc, defsByFile[doc.RelativePath], descriptorBySymbol)

		for _, e := range resolved {
			targetID, ok := minter.Lookup(e.TargetSymbol)
			if !ok {
				continue // never minted: not a real symbol reference
			}

			if !defByID[targetID] {
				if level != lod.High {
					continue
				}
				targetID = "external:" + targetID
			}

			edges = append(edges, graph.Edge{Source: e.Source, Target: targetID, Kind: e.Kind.EdgeKind()})
		}
	}

	return edges
}

func sumSourceBytes(cache *sourcecache.Cache, docs []scipindex.Document, predicate func(string) bool) int {
	total := 0
	for _, doc := range docs {
		if predicate != nil && !predicate(doc.RelativePath) {
			continue
		}
		source, _, err := cache.Get(doc.RelativePath, doc.Language)
		if err != nil {
			continue
		}
		total += len(source)
	}
	return total
}

// Serialize applies LOD filtering (and --compact noise removal) to a
// Result's graph, then renders it with the configured output format.
// Call once per desired (level, format) pair; Run need not be repeated.
// A Result from a run below LOD High has no "external:*" edges, so
// serializing it at High yields none either.
func Serialize(res Result, cfg Config) []byte {
	filtered := lod.Filter(res.Graph, lod.Options{Level: cfg.LOD, Compact: cfg.Compact})

	if cfg.OutputFormat == FormatAdhoc {
		return serializeAdhoc(filtered, cfg)
	}
	return serializeKeyed(filtered, cfg)
}

// Report computes the metrics.Report for a Run result and its rendered
// output bytes, carrying forward the diagnostics enrichment collected.
func Report(res Result, output []byte) metrics.Report {
	r := metrics.Compute(res.InputBytes, len(output))
	r.Diagnostics = res.Diagnostics
	return r
}
