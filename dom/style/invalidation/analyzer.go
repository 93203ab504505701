package invalidation

import (
	"github.com/npillmayer/shadowdom/dom"
	"github.com/npillmayer/shadowdom/dom/style/cssom"
	"github.com/npillmayer/shadowdom/dom/style/selector"
)

// AnalysisResult tells which elements have to be dirtied after a
// stylesheet has been inserted into the document.
type AnalysisResult struct {
	FullInvalidation bool       // the whole document needs style recalculation
	ScopedToOwner    bool       // only the subtree of Scope needs recalculation
	Scope            dom.Handle // scoping node of the stylesheet's owner
	IDs              []string   // elements with one of these ids need recalculation
	Classes          []string   // elements with one of these classes need recalculation
}

// Analyzer decides which part of a document a newly inserted stylesheet
// may affect.
type Analyzer struct {
	doc *dom.Document
}

// NewAnalyzer creates an analyzer for a document.
func NewAnalyzer(doc *dom.Document) *Analyzer {
	return &Analyzer{doc: doc}
}

// AnalyzeStyleSheet inspects the rules of a stylesheet. Owner is the
// element the stylesheet originates from (usually a <style> element), or
// Null for stylesheets not attached to an element.
//
// A stylesheet owned by an element of a shadow tree, or by a <style scoped>
// element, only affects the subtree of its scoping node: the shadow host or
// the parent of the <style> element. Otherwise, if every selector of every
// style rule can be reduced to an id or a class which every matching
// element or one of its ancestors must carry, the result lists these ids
// and classes. Every other stylesheet requires full invalidation, as does
// any at-rule which may affect the whole document.
func (a *Analyzer) AnalyzeStyleSheet(sheet cssom.StyleSheet, owner dom.Handle) AnalysisResult {
	var res AnalysisResult
	if sheet == nil || sheet.Empty() {
		return res
	}
	if scope := a.scopingNode(owner); scope != dom.Null {
		res.ScopedToOwner = true
		res.Scope = scope
		return res
	}
	var ids, classes stringSet
	if !collectScopes(sheet.Rules(), &ids, &classes) {
		res.FullInvalidation = true
		return res
	}
	res.IDs, res.Classes = ids.sorted(), classes.sorted()
	return res
}

func (a *Analyzer) scopingNode(owner dom.Handle) dom.Handle {
	doc := a.doc
	if owner == dom.Null {
		return dom.Null
	}
	if host := doc.ScopeHost(owner); host != dom.Null {
		return host
	}
	if _, scoped := doc.Attribute(owner, "scoped"); scoped {
		return doc.ParentOrShadowHostElement(owner)
	}
	return dom.Null
}

func collectScopes(rules []cssom.Rule, ids, classes *stringSet) bool {
	for _, r := range rules {
		kind := r.Type()
		if kind != cssom.StyleRule {
			if kind.AffectsWholeDocument() {
				tracer().Debugf("%v rule forces full invalidation", kind)
				return false
			}
			continue
		}
		list, err := selector.Compile(r.Selector())
		if err != nil {
			return false
		}
		for _, alt := range list.Alternatives {
			if !selectorScope(alt, ids, classes) {
				tracer().Debugf("selector %v has no id or class scope", alt)
				return false
			}
		}
	}
	return true
}

// selectorScope finds the widest scope of a selector: the leftmost id, or
// if there is none, the leftmost class. Selectors referring to a shadow
// host have no scope.
func selectorScope(c *selector.Complex, ids, classes *stringSet) bool {
	var id, class string
	for i := len(c.Compounds) - 1; i >= 0; i-- {
		cmp := c.Compounds[i]
		if _, ok := cmp.Host(); ok {
			return false
		}
		if ii := cmp.IDs(); len(ii) > 0 {
			id = ii[0]
		} else if cc := cmp.Classes(); len(cc) > 0 && id == "" {
			class = cc[0]
		}
	}
	switch {
	case id != "":
		ids.add(id)
	case class != "":
		classes.add(class)
	default:
		return false
	}
	return true
}

// Apply dirties the elements named by an analysis result and returns the
// number of nodes marked.
func (a *Analyzer) Apply(res AnalysisResult) int {
	doc := a.doc
	switch {
	case res.ScopedToOwner:
		doc.SetNeedsStyleRecalc(res.Scope, dom.SubtreeStyleChange)
		return 1
	case res.FullInvalidation:
		doc.SetNeedsStyleRecalc(doc.Root(), dom.SubtreeStyleChange)
		return 1
	case len(res.IDs) == 0 && len(res.Classes) == 0:
		return 0
	}
	var ids, classes stringSet
	for _, id := range res.IDs {
		ids.add(id)
	}
	for _, c := range res.Classes {
		classes.add(c)
	}
	count := 0
	var scan func(n dom.Handle)
	scan = func(n dom.Handle) {
		for c := doc.FirstChild(n); c != dom.Null; c = doc.NextSibling(c) {
			if !doc.IsElement(c) {
				continue
			}
			if inScope(doc, c, ids, classes) {
				doc.SetNeedsStyleRecalc(c, dom.SubtreeStyleChange)
				count++
				continue // the subtree is dirty already
			}
			scan(c)
		}
	}
	scan(doc.Root())
	tracer().Debugf("stylesheet dirtied %d subtrees", count)
	return count
}

func inScope(doc *dom.Document, el dom.Handle, ids, classes stringSet) bool {
	if id := doc.ID(el); id != "" && ids.has(id) {
		return true
	}
	for _, c := range doc.Classes(el) {
		if classes.has(c) {
			return true
		}
	}
	return false
}

// StyleSheetAdded analyzes a stylesheet and applies the result.
func (a *Analyzer) StyleSheetAdded(sheet cssom.StyleSheet, owner dom.Handle) AnalysisResult {
	res := a.AnalyzeStyleSheet(sheet, owner)
	a.Apply(res)
	return res
}
