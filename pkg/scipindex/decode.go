// Package scipindex decodes a SCIP protobuf index into the in-memory
// document set the rest of the pipeline operates on (component C1 of the
// transcoding pipeline). It performs no semantic validation: malformed
// framing or a missing required field is the only thing that fails here.
package scipindex

import (
	"fmt"
	"os"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"github.com/context-maximiser/scip-transcoder/pkg/xerrors"
)

// Role bits, mirrored from the SCIP protocol's SymbolRole bitmask so
// downstream packages do not need to import the protobuf package directly.
const (
	RoleDefinition        int32 = 1
	RoleImport            int32 = 2
	RoleWriteAccess       int32 = 4
	RoleReadAccess        int32 = 8
	RoleGenerated         int32 = 16
	RoleTest              int32 = 32
	RoleForwardDefinition int32 = 64
)

// Range is a SCIP occurrence range: either [startLine, startCol, endCol]
// for a single-line span, or [startLine, startCol, endLine, endCol].
type Range []int32

// StartEnd normalizes Range to explicit (startLine, startCol, endLine, endCol).
func (r Range) StartEnd() (startLine, startCol, endLine, endCol int) {
	if len(r) < 3 {
		return 0, 0, 0, 0
	}
	startLine = int(r[0])
	startCol = int(r[1])
	if len(r) == 3 {
		endLine = startLine
		endCol = int(r[2])
	} else {
		endLine = int(r[2])
		endCol = int(r[3])
	}
	return
}

// Symbol is a SCIP SymbolInformation: a definition local to one document,
// or (in Index.ExternalSymbols) a definition outside the indexed project.
type Symbol struct {
	Symbol          string
	DisplayName     string
	Documentation   []string
	Kind            int32
	EnclosingSymbol string
}

// Occurrence is one textual touch of a symbol within a document.
type Occurrence struct {
	Symbol                string
	Range                 Range
	EnclosingRange        Range
	SymbolRoles           int32
	SyntaxKind            int32
	OverrideDocumentation []string
}

// IsDefinition reports whether this occurrence defines its symbol.
func (o Occurrence) IsDefinition() bool {
	return o.SymbolRoles&RoleDefinition != 0
}

// Document is one source file's worth of symbols and occurrences.
type Document struct {
	RelativePath string
	Language     string
	Symbols      []Symbol
	Occurrences  []Occurrence
}

// Index is the decoded, in-memory form of a SCIP index: every document,
// plus the external symbols the index references but does not define.
type Index struct {
	ProjectRoot      string
	TextEncoding     string
	Documents        []Document
	ExternalSymbols  []Symbol
}

// Decode parses a SCIP index from raw protobuf bytes.
//
// Fails with xerrors.MalformedIndex on framing/varint/tag errors, and
// xerrors.UnsupportedSchema when Metadata is absent (the one field this
// spec treats as required — everything else degrades gracefully).
func Decode(data []byte) (*Index, error) {
	var raw scippb.Index
	if err := proto.Unmarshal(data, &raw); err != nil {
		return nil, xerrors.Wrap(xerrors.MalformedIndex, "scipindex.Decode", err)
	}

	if raw.Metadata == nil {
		return nil, xerrors.New(xerrors.UnsupportedSchema, "scipindex.Decode",
			"index is missing required field: metadata")
	}

	idx := &Index{
		ProjectRoot:     raw.Metadata.ProjectRoot,
		TextEncoding:    raw.Metadata.TextDocumentEncoding.String(),
		Documents:       make([]Document, 0, len(raw.Documents)),
		ExternalSymbols: make([]Symbol, 0, len(raw.ExternalSymbols)),
	}

	for _, doc := range raw.Documents {
		idx.Documents = append(idx.Documents, convertDocument(doc))
	}
	for _, sym := range raw.ExternalSymbols {
		idx.ExternalSymbols = append(idx.ExternalSymbols, convertSymbol(sym))
	}

	return idx, nil
}

// DecodeFile reads and decodes a SCIP index file from disk.
func DecodeFile(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.MalformedIndex, "scipindex.DecodeFile", err).WithPath(path)
	}
	idx, err := Decode(data)
	if err != nil {
		if xe, ok := err.(*xerrors.Error); ok {
			xe.WithPath(path)
		}
		return nil, fmt.Errorf("%w", err)
	}
	return idx, nil
}

func convertDocument(doc *scippb.Document) Document {
	symbols := make([]Symbol, len(doc.Symbols))
	for i, s := range doc.Symbols {
		symbols[i] = convertSymbol(s)
	}

	occs := make([]Occurrence, len(doc.Occurrences))
	for i, o := range doc.Occurrences {
		occs[i] = Occurrence{
			Symbol:                o.Symbol,
			Range:                 Range(o.Range),
			EnclosingRange:        Range(o.EnclosingRange),
			SymbolRoles:           o.SymbolRoles,
			SyntaxKind:            int32(o.SyntaxKind),
			OverrideDocumentation: o.OverrideDocumentation,
		}
	}

	return Document{
		RelativePath: doc.RelativePath,
		Language:     doc.Language,
		Symbols:      symbols,
		Occurrences:  occs,
	}
}

func convertSymbol(s *scippb.SymbolInformation) Symbol {
	return Symbol{
		Symbol:          s.Symbol,
		DisplayName:     s.DisplayName,
		Documentation:   s.Documentation,
		Kind:            int32(s.Kind),
		EnclosingSymbol: s.EnclosingSymbol,
	}
}

// AllExternalStrings collects every distinct symbol string the index
// mentions: document-local symbols, occurrence targets, and external
// symbols. This is the input set the identifier minter (C2) assigns
// short ids to.
func (idx *Index) AllExternalStrings() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	for _, doc := range idx.Documents {
		for _, s := range doc.Symbols {
			add(s.Symbol)
		}
		for _, o := range doc.Occurrences {
			add(o.Symbol)
		}
	}
	for _, s := range idx.ExternalSymbols {
		add(s.Symbol)
	}

	return out
}
