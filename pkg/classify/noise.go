package classify

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// metaDescriptors recognizes leading annotation/decorator tokens, keyed
// by language, that mark a definition as framework plumbing (dependency
// injection, ORM wiring) rather than application logic. Data, not code,
// per the framework noise filter's design: a new language's decorator
// syntax is a new table entry, not a new code path.
var metaDescriptors = map[string][]string{
	"typescript": {"@Injectable", "@Component", "@Module", "@Controller", "@Inject"},
	"tsx":        {"@Injectable", "@Component", "@Module", "@Controller", "@Inject"},
	"javascript": {"@Injectable", "@Component"},
	"java":       {"@Autowired", "@Component", "@Service", "@Repository", "@Inject"},
	"kotlin":     {"@Inject", "@Autowired", "@Component"},
	"python":     {"@inject"},
}

// HasRecognizedAnnotation reports whether text begins with one of lang's
// recognized meta descriptors.
func HasRecognizedAnnotation(lang, text string) bool {
	trimmed := strings.TrimSpace(text)
	for _, prefix := range metaDescriptors[lang] {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// StripAnnotations removes a leading recognized annotation token from
// sig, when present, so ignore_framework_noise can rewrite a signature
// without the decorator cluttering it.
func StripAnnotations(lang, sig string) string {
	trimmed := strings.TrimSpace(sig)
	for _, prefix := range metaDescriptors[lang] {
		if strings.HasPrefix(trimmed, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
		}
	}
	return sig
}

// ClassBodyIsDIOnly reports whether a class body's only member is a
// single constructor-like method whose own body does nothing but assign
// parameters straight to same-named fields — the dependency-injection
// constructor shape the framework noise filter suppresses.
func ClassBodyIsDIOnly(classBody *sitter.Node, source []byte) bool {
	if classBody == nil {
		return false
	}

	var methods []*sitter.Node
	n := int(classBody.ChildCount())
	for i := 0; i < n; i++ {
		c := classBody.Child(i)
		if c == nil || !c.IsNamed() {
			continue
		}
		t := c.Type()
		if strings.Contains(t, "method") || strings.Contains(t, "constructor") {
			methods = append(methods, c)
		}
	}
	if len(methods) != 1 {
		return false
	}

	return IsDependencyInjectionConstructor(methods[0].ChildByFieldName("body"), source)
}

// IsDependencyInjectionConstructor reports whether every statement in
// body is a same-named field assignment (`this.x = x;`, `self.x = x`).
// An empty body is not a match — there must be at least one assignment.
func IsDependencyInjectionConstructor(body *sitter.Node, source []byte) bool {
	if body == nil {
		return false
	}

	found := false
	n := int(body.ChildCount())
	for i := 0; i < n; i++ {
		stmt := body.Child(i)
		if stmt == nil || !stmt.IsNamed() {
			continue
		}
		found = true
		if !isSelfFieldAssignment(stmt.Content(source)) {
			return false
		}
	}
	return found
}

func isSelfFieldAssignment(text string) bool {
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), ";"))
	parts := strings.SplitN(text, "=", 2)
	if len(parts) != 2 {
		return false
	}
	lhs := strings.TrimSpace(parts[0])
	rhs := strings.TrimSpace(parts[1])
	lhs = strings.TrimPrefix(lhs, "this.")
	lhs = strings.TrimPrefix(lhs, "self.")
	return lhs != "" && lhs == rhs
}
