// Package signature renders a definition's one-line signature from its
// minimal enclosing syntax node (component C5): function/method get an
// abbreviated-parameter single-line form, class/interface get their name
// plus verbatim inheritance clause, type aliases and enums get their own
// compact forms, and everything else falls back to the first non-blank
// line of the declaration.
package signature

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/context-maximiser/scip-transcoder/pkg/graph"
)

// maxLength is the hard cap on a rendered signature's length, matching
// the corpus convention of truncating source-derived preview text rather
// than letting a multi-line declaration bloat the output.
const maxLength = 200

// Format renders kind's signature from node, the minimal syntactic
// construct enclosing the definition (as located by the caller in the
// cached parse tree). A nil node — no parse tree, or the construct
// could not be found — yields "", which callers treat as
// xerrors.SignatureUnavailable and simply omit the field.
func Format(kind graph.Kind, node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	var sig string
	switch kind {
	case graph.KindFunction:
		sig = formatCallable(node, source, "function ")
	case graph.KindMethod:
		sig = formatCallable(node, source, "")
	case graph.KindClass, graph.KindInterface:
		sig = formatClassLike(node, source)
	case graph.KindType:
		sig = formatTypeAlias(node, source)
	case graph.KindEnum:
		sig = formatEnum(node, source)
	default:
		sig = firstLine(node, source)
	}

	sig = strings.TrimSpace(sig)
	if sig == "" {
		return ""
	}
	return truncate(sig)
}

// formatCallable renders "<prefix><name>(<params>): <ret>", omitting the
// return clause when the grammar exposes no return-type field. A leading
// ':' in the return-type text (TypeScript's type_annotation node carries
// its own colon) is dropped so the clause has exactly one.
func formatCallable(node *sitter.Node, source []byte, prefix string) string {
	name := fieldText(node, source, "name")
	if name == "" {
		name = firstIdentifier(node, source)
	}

	params := ""
	if p := node.ChildByFieldName("parameters"); p != nil {
		params = formatParamList(p, source)
	}

	sig := prefix + name + "(" + params + ")"

	ret := firstField(node, source, "return_type", "result", "type")
	ret = strings.TrimSpace(strings.TrimPrefix(ret, ":"))
	if ret != "" {
		sig += ": " + compactType(ret)
	}
	return sig
}

// formatParamList compacts a parameter-list node's text: each top-level
// parameter's type (the text after its first top-level ':') has its
// union alternatives collapsed to the first one and its primitive names
// abbreviated, per spec.md's signature rules.
func formatParamList(paramsNode *sitter.Node, source []byte) string {
	text := strings.TrimSpace(nodeText(paramsNode, source))
	text = strings.TrimPrefix(text, "(")
	text = strings.TrimSuffix(text, ")")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	parts := splitTopLevel(text, ',')
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if c := compactParam(p); c != "" {
			out = append(out, c)
		}
	}
	return strings.Join(out, ", ")
}

func compactParam(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	idx := strings.Index(p, ":")
	if idx < 0 {
		return abbreviate(p)
	}
	name := strings.TrimSpace(p[:idx])
	typ := strings.TrimSpace(p[idx+1:])
	return name + ": " + compactType(typ)
}

// compactType applies the mandatory union-collapse (first alternative
// only, keeping '|' reserved for the positional serializer) followed by
// primitive-name abbreviation.
func compactType(t string) string {
	return abbreviate(collapseUnion(t))
}

func collapseUnion(t string) string {
	alts := splitTopLevel(t, '|')
	return strings.TrimSpace(alts[0])
}

var abbreviations = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`\bstring\b`), "str"},
	{regexp.MustCompile(`\bnumber\b`), "num"},
	{regexp.MustCompile(`\bboolean\b`), "bool"},
}

func abbreviate(t string) string {
	for _, a := range abbreviations {
		t = a.pattern.ReplaceAllString(t, a.repl)
	}
	return t
}

// splitTopLevel splits s on sep, ignoring any sep nested inside
// (), [], {} or <> — enough to keep a generic type's commas, or a
// union's own nested array/generic forms, from being split apart.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			if depth > 0 {
				depth--
			}
		default:
			if s[i] == sep && depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// formatClassLike renders "<name>" plus a verbatim inheritance clause
// (extends/implements/heritage), when the grammar exposes one as a
// direct child of the class/interface node.
func formatClassLike(node *sitter.Node, source []byte) string {
	name := fieldText(node, source, "name")
	if name == "" {
		name = firstIdentifier(node, source)
	}
	if heritage := findHeritage(node, source); heritage != "" {
		return name + " " + heritage
	}
	return name
}

func findHeritage(node *sitter.Node, source []byte) string {
	n := int(node.ChildCount())
	for i := 0; i < n; i++ {
		c := node.Child(i)
		if c == nil || !c.IsNamed() {
			continue
		}
		t := c.Type()
		if strings.Contains(t, "heritage") || strings.Contains(t, "extends") ||
			strings.Contains(t, "implements") || strings.Contains(t, "superclass") ||
			strings.Contains(t, "base_class") {
			if txt := strings.TrimSpace(nodeText(c, source)); txt != "" {
				return txt
			}
		}
	}
	return ""
}

// formatTypeAlias renders "<name> = <rhs-compacted>".
func formatTypeAlias(node *sitter.Node, source []byte) string {
	name := fieldText(node, source, "name")
	if name == "" {
		return firstLine(node, source)
	}
	value := fieldText(node, source, "value")
	if value == "" {
		return name
	}
	return name + " = " + compactType(value)
}

// formatEnum renders "<name> { <member1>, <member2>, … }", dropping any
// explicit value assigned to a member (only the member name is kept).
func formatEnum(node *sitter.Node, source []byte) string {
	name := fieldText(node, source, "name")
	if name == "" {
		name = firstIdentifier(node, source)
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return name
	}

	var members []string
	n := int(body.ChildCount())
	for i := 0; i < n; i++ {
		c := body.Child(i)
		if c == nil || !c.IsNamed() {
			continue
		}
		text := strings.TrimSpace(nodeText(c, source))
		if text == "" {
			continue
		}
		if idx := strings.Index(text, "="); idx >= 0 {
			text = strings.TrimSpace(text[:idx])
		}
		members = append(members, text)
	}
	if len(members) == 0 {
		return name
	}
	return name + " { " + strings.Join(members, ", ") + " }"
}

// firstLine returns the first non-blank trimmed line of node's own text,
// the variable/field signature rule and the catch-all fallback for any
// construct the per-kind formatters above don't specifically recognize.
func firstLine(node *sitter.Node, source []byte) string {
	text := nodeText(node, source)
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func fieldText(node *sitter.Node, source []byte, field string) string {
	c := node.ChildByFieldName(field)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(nodeText(c, source))
}

// firstField returns the text of the first of fields that node actually
// has, trying each in turn — grammars disagree on what a callable's
// return-type field is named.
func firstField(node *sitter.Node, source []byte, fields ...string) string {
	for _, f := range fields {
		if t := fieldText(node, source, f); t != "" {
			return t
		}
	}
	return ""
}

func firstIdentifier(node *sitter.Node, source []byte) string {
	n := int(node.ChildCount())
	for i := 0; i < n; i++ {
		c := node.Child(i)
		if c != nil && c.IsNamed() && strings.Contains(c.Type(), "identifier") {
			return strings.TrimSpace(nodeText(c, source))
		}
	}
	return ""
}

func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(source) || start > end {
		return ""
	}
	return string(source[start:end])
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	return string(runes[:maxLength-3]) + "..."
}
