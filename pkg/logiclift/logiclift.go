// Package logiclift mines guard-clause preconditions out of a
// definition's body (component C6): an "if <cond> { <early exit> }" at
// the top of a function, with no corresponding else, is read as "this
// definition's contract requires cond to not hold" and surfaced as a
// precondition of the form "must avoid: <cond>".
package logiclift

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// langRules names the guard-clause shapes for one language: the if-node
// type, the field name holding the condition, the field name holding the
// consequence block, and the statement types inside that block that
// count as an "early exit" (return/throw/panic, not a plain assignment).
type langRules struct {
	ifType         string
	conditionField string
	consequence    string // field name on the if-node for its body
	exitTypes      map[string]bool
	elseField      string // field name for an else-branch; guard excluded if present
}

var rulesByLanguage = map[string]langRules{
	"go": {
		ifType: "if_statement", conditionField: "condition", consequence: "consequence",
		exitTypes: map[string]bool{"return_statement": true, "expression_statement": false},
		elseField: "alternative",
	},
	"typescript": {
		ifType: "if_statement", conditionField: "condition", consequence: "consequence",
		exitTypes: map[string]bool{"return_statement": true, "throw_statement": true},
		elseField: "alternative",
	},
	"tsx": {
		ifType: "if_statement", conditionField: "condition", consequence: "consequence",
		exitTypes: map[string]bool{"return_statement": true, "throw_statement": true},
		elseField: "alternative",
	},
	"javascript": {
		ifType: "if_statement", conditionField: "condition", consequence: "consequence",
		exitTypes: map[string]bool{"return_statement": true, "throw_statement": true},
		elseField: "alternative",
	},
	"python": {
		ifType: "if_statement", conditionField: "condition", consequence: "consequence",
		exitTypes: map[string]bool{"return_statement": true, "raise_statement": true},
		elseField: "alternative",
	},
	"rust": {
		ifType: "if_expression", conditionField: "condition", consequence: "consequence",
		exitTypes: map[string]bool{"return_expression": true, "macro_invocation": true},
		elseField: "alternative",
	},
	"java": {
		ifType: "if_statement", conditionField: "condition", consequence: "consequence",
		exitTypes: map[string]bool{"return_statement": true, "throw_statement": true},
		elseField: "alternative",
	},
	"kotlin": {
		ifType: "if_expression", conditionField: "condition", consequence: "consequence",
		exitTypes: map[string]bool{"jump_expression": true},
		elseField: "alternative",
	},
}

// maxConditionLength bounds a single mined condition's text length; the
// 200-char hard cap on the whole "logic:" field (positional serializer)
// is enforced later, during serialization, once all preconditions for a
// definition are joined.
const maxConditionLength = 160

// Lift walks bodyNode (a definition's top-level body/block) and returns
// its guard-clause preconditions in source order, each rendered as
// "must avoid: <condition text>". Only guards found before the first
// non-guard statement are considered "preconditions" — once the body
// does real work, a later if-return is ordinary control flow, not a
// contract. Guards are deduplicated by condition text.
func Lift(bodyNode *sitter.Node, source []byte, lang string) []string {
	if bodyNode == nil {
		return nil
	}
	rules, ok := rulesByLanguage[lang]
	if !ok {
		return nil
	}

	var out []string
	seen := make(map[string]bool)

	n := int(bodyNode.ChildCount())
	for i := 0; i < n; i++ {
		child := bodyNode.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}

		if child.Type() != rules.ifType {
			break // first non-guard statement ends the precondition window
		}

		cond := childByField(child, rules.conditionField)
		cons := childByField(child, rules.consequence)
		if cond == nil || cons == nil {
			break
		}
		if rules.elseField != "" && childByField(child, rules.elseField) != nil {
			break // an if/else at the top isn't a guard clause
		}
		if !isEarlyExit(cons, rules) {
			break
		}

		text := nodeText(cond, source)
		text = normalizeCondition(text)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, "must avoid: "+text)
	}

	return out
}

func isEarlyExit(consequence *sitter.Node, rules langRules) bool {
	if rules.exitTypes[consequence.Type()] {
		return true
	}
	// block consequence: true only when every statement in it is an exit,
	// and there is at least one statement (an empty block is not a guard).
	count := int(consequence.ChildCount())
	found := false
	for i := 0; i < count; i++ {
		c := consequence.Child(i)
		if c == nil || !c.IsNamed() {
			continue
		}
		found = true
		if !rules.exitTypes[c.Type()] {
			return false
		}
	}
	return found
}

func childByField(n *sitter.Node, field string) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(field)
}

func nodeText(n *sitter.Node, source []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(source) || start > end {
		return ""
	}
	return string(source[start:end])
}

func normalizeCondition(s string) string {
	fields := strings.Fields(s)
	joined := strings.Join(fields, " ")
	if len(joined) > maxConditionLength {
		r := []rune(joined)
		joined = string(r[:maxConditionLength-3]) + "..."
	}
	return joined
}

// Complement produces the positional serializer's inverse "check(<cond>)"
// logic step from a "must avoid: <cond>" precondition, by negating the
// mined condition at the text level: wrapping it in "!(...)", or
// stripping a leading "!" when the condition is already a negation.
func Complement(precondition string) string {
	cond := strings.TrimPrefix(precondition, "must avoid: ")
	if cond == precondition {
		return precondition
	}
	if strings.HasPrefix(cond, "!(") && strings.HasSuffix(cond, ")") {
		return "check(" + cond[2:len(cond)-1] + ")"
	}
	if strings.HasPrefix(cond, "!") {
		return "check(" + cond[1:] + ")"
	}
	return "check(!(" + cond + "))"
}
