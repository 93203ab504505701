package cssom

import (
	"strings"

	"github.com/npillmayer/shadowdom/dom/style"
)

// StyleSheet is an interface to abstract away a stylesheet-implementation.
// In order to de-couple implementations of CSS-stylesheets from the
// selector index and the invalidation machinery, we introduce an interface
// for CSS stylesheets. Clients for the styling engine will have to
// provide a concrete implementation of this interface (e.g., see
// package douceuradapter).
//
// See interface Rule.
type StyleSheet interface {
	AppendRules(StyleSheet) // append rules from another stylesheet
	Empty() bool            // does this stylesheet contain any rules?
	Rules() []Rule          // all the top-level rules of a stylesheet
}

// Rule is the type stylesheets consists of.
//
// See interface StyleSheet.
type Rule interface {
	Type() RuleKind              // style rule or kind of at-rule
	AtKeyword() string           // lower-case name of an at-rule without '@', or ""
	Selector() string            // the prelude / selectors of the rule
	Properties() []string        // property keys, e.g. "margin-top"
	Value(string) style.Property // property value for key, e.g. "15px"
	IsImportant(string) bool     // is property key marked as important?
	Nested() []Rule              // rules embedded in an at-rule, e.g. in @media
}

// RuleKind classifies rules.
type RuleKind uint8

// Kinds of rules. Every at-rule not listed is of kind OtherAtRule.
const (
	StyleRule RuleKind = iota
	MediaRule
	FontFaceRule
	SupportsRule
	ViewportRule
	ImportRule
	KeyframesRule
	PageRule
	NamespaceRule
	OtherAtRule
)

var ruleKindNames = [...]string{"style", "@media", "@font-face", "@supports",
	"@viewport", "@import", "@keyframes", "@page", "@namespace", "@other"}

func (k RuleKind) String() string {
	if int(k) < len(ruleKindNames) {
		return ruleKindNames[k]
	}
	return "?"
}

// AtRuleKind returns the kind of an at-rule, given its keyword.
// The keyword may or may not include the leading '@'. Vendor prefixed
// keyframes ("-webkit-keyframes") count as keyframes.
func AtRuleKind(keyword string) RuleKind {
	kw := strings.ToLower(strings.TrimPrefix(keyword, "@"))
	switch {
	case kw == "media":
		return MediaRule
	case kw == "font-face":
		return FontFaceRule
	case kw == "supports":
		return SupportsRule
	case kw == "viewport" || strings.HasSuffix(kw, "-viewport"):
		return ViewportRule
	case kw == "import":
		return ImportRule
	case kw == "keyframes" || strings.HasSuffix(kw, "-keyframes"):
		return KeyframesRule
	case kw == "page":
		return PageRule
	case kw == "namespace":
		return NamespaceRule
	}
	tracer().Debugf("unclassified at-rule @%s", kw)
	return OtherAtRule
}

// AffectsWholeDocument is true for kinds of rules whose insertion may change
// the style of any element, independent of selectors. Unknown at-rules are
// treated as affecting everything.
func (k RuleKind) AffectsWholeDocument() bool {
	switch k {
	case StyleRule, KeyframesRule, PageRule, NamespaceRule:
		return false
	}
	return true
}
