// Package identity parses raw SCIP symbol strings and mints the short,
// stable identifiers the rest of the pipeline and its output format use
// in place of SCIP's long-form symbol strings (component C2).
package identity

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Parsed is a SCIP symbol string split into its component parts.
//
// A SCIP symbol is "<scheme> <manager> <package> [<version>] <descriptor>",
// space separated into 4 fields (no version) or 5 (versioned).
type Parsed struct {
	Scheme     string
	Manager    string
	Package    string
	Version    string // empty when the symbol string omitted it
	Descriptor string
	Raw        string
}

// Local reports whether the symbol is local to a document (scheme "local").
func (p Parsed) Local() bool {
	return p.Scheme == "local"
}

// Parse splits a raw SCIP symbol string into its component fields.
//
// Malformed strings (fewer than 4 space-separated fields) are not an
// error: they are returned with Descriptor set to the whole raw string,
// so minting can still proceed deterministically.
func Parse(raw string) Parsed {
	if strings.HasPrefix(raw, "local ") {
		return Parsed{Scheme: "local", Descriptor: strings.TrimPrefix(raw, "local "), Raw: raw}
	}

	parts := strings.SplitN(raw, " ", 5)
	switch len(parts) {
	case 5:
		return Parsed{Scheme: parts[0], Manager: parts[1], Package: parts[2], Version: parts[3], Descriptor: parts[4], Raw: raw}
	case 4:
		return Parsed{Scheme: parts[0], Manager: parts[1], Package: parts[2], Descriptor: parts[3], Raw: raw}
	default:
		return Parsed{Descriptor: raw, Raw: raw}
	}
}

// SimpleName extracts the human-readable tail of a descriptor, stripping
// the SCIP suffix markers that denote the symbol's syntactic role:
// '#' (type), '(' / ')' (method/function), '.' (term/field), '/' (namespace).
func (p Parsed) SimpleName() string {
	d := p.Descriptor
	d = strings.TrimSuffix(d, ".")
	d = strings.TrimSuffix(d, "#")
	d = strings.TrimSuffix(d, "()")
	if strings.HasSuffix(d, ".") {
		d = d[:len(d)-1]
	}

	if idx := strings.LastIndexAny(d, "/."); idx >= 0 && idx < len(d)-1 {
		d = d[idx+1:]
	}

	d = strings.Trim(d, "`")
	if paren := strings.Index(d, "("); paren >= 0 {
		d = d[:paren]
	}
	return d
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// sanitizeBase turns an arbitrary simple name into the lowercase,
// underscore-joined base used in short ids: runs of non-alphanumeric
// characters collapse to a single underscore, leading/trailing ones are
// trimmed, and an empty result (files, pure locals) falls back to "def".
func sanitizeBase(name string) string {
	s := nonAlnum.ReplaceAllString(name, "_")
	s = strings.Trim(s, "_")
	s = strings.ToLower(s)
	if s == "" {
		s = "def"
	}
	return s
}

// hash4 returns the low 16 bits of the symbol's xxhash64, as 4 lowercase
// hex digits. Collisions are resolved by Minter with a numeric suffix, not
// by widening this hash — the short id stays short even under collision.
func hash4(raw string) string {
	h := xxhash.Sum64String(raw)
	return fmt.Sprintf("%04x", uint16(h))
}

// Minter assigns short ids to SCIP symbol strings, deterministically and
// collision-free: <sanitized-base>_<4-hex-hash>, with a numeric suffix
// (_2, _3, ...) appended on collision, in ascending order of an input's
// position in the canonical sort of all symbols being minted.
type Minter struct {
	assigned map[string]string // raw symbol -> short id
	used     map[string]bool   // short id -> taken
}

// NewMinter creates an empty Minter.
func NewMinter() *Minter {
	return &Minter{
		assigned: make(map[string]string),
		used:     make(map[string]bool),
	}
}

// MintAll assigns short ids to every raw symbol string, in the
// deterministic order required for byte-identical output across runs:
// symbols are sorted lexicographically by their raw SCIP string before
// minting, so collision-suffix assignment never depends on map iteration
// or input discovery order.
func (m *Minter) MintAll(raws []string) {
	sorted := make([]string, len(raws))
	copy(sorted, raws)
	sort.Strings(sorted)

	for _, raw := range sorted {
		m.mint(raw)
	}
}

func (m *Minter) mint(raw string) string {
	if id, ok := m.assigned[raw]; ok {
		return id
	}

	base := sanitizeBase(Parse(raw).SimpleName())
	candidate := base + "_" + hash4(raw)

	if !m.used[candidate] {
		m.used[candidate] = true
		m.assigned[raw] = candidate
		return candidate
	}

	for n := 2; ; n++ {
		withSuffix := fmt.Sprintf("%s_%d", candidate, n)
		if !m.used[withSuffix] {
			m.used[withSuffix] = true
			m.assigned[raw] = withSuffix
			return withSuffix
		}
	}
}

// ShortID returns the short id for a raw SCIP symbol string, minting one
// on demand (with no collision-ordering guarantee) if MintAll was never
// called for it. Pipeline code should always call MintAll first.
func (m *Minter) ShortID(raw string) string {
	if id, ok := m.assigned[raw]; ok {
		return id
	}
	return m.mint(raw)
}

// Lookup returns the short id already assigned to raw, if any.
func (m *Minter) Lookup(raw string) (string, bool) {
	id, ok := m.assigned[raw]
	return id, ok
}
