package shadow

import (
	"github.com/npillmayer/shadowdom/dom"
)

// EnsureSelectFeatures returns the select feature set of a host, i.e. the
// ids, classes and attribute names used by the filters of insertion points
// in the host's youngest shadow tree and in all shadow trees nested within
// it. Stale feature sets are recomputed.
func (e *Engine) EnsureSelectFeatures(host dom.Handle) *dom.SelectFeatures {
	return e.ensureSelectFeatures(host, make(map[dom.Handle]bool))
}

func (e *Engine) ensureSelectFeatures(host dom.Handle, seen map[dom.Handle]bool) *dom.SelectFeatures {
	doc := e.doc
	sf := doc.SelectFeatures(host)
	if sf == nil || !doc.NeedsSelectFeatureSet(host) {
		return sf
	}
	if seen[host] {
		tracer().Errorf("host %d reached twice while collecting select features", host)
		return sf
	}
	seen[host] = true
	sf.Clear()
	root := doc.YoungestShadowRoot(host)
	for _, iph := range doc.InsertionPoints(root) {
		if ip := doc.InsertionPoint(iph); ip.IsValid() {
			sf.Collect(ip.Filter())
		}
	}
	for _, child := range doc.ChildShadowRoots(root) {
		sf.Merge(e.ensureSelectFeatures(doc.ShadowHost(child), seen))
	}
	doc.SetNeedsSelectFeatureSet(host, false)
	return sf
}

// DidChangeAttribute has to be called after an attribute of an element has
// changed. If the element is a light child of a host and the attribute is
// used by any filter of the host's shadow trees, the host needs
// redistribution. It reports whether this is the case.
func (e *Engine) DidChangeAttribute(el dom.Handle, name string, oldValue, newValue string) bool {
	doc := e.doc
	if doc.IsInsertionPoint(el) && name == "select" {
		e.DidChangeFilter(el)
		return true
	}
	host := doc.Parent(el)
	if !doc.IsShadowHost(host) {
		return false
	}
	sf := e.EnsureSelectFeatures(host)
	affected := false
	switch name {
	case "id":
		affected = sf.HasID(oldValue) || sf.HasID(newValue)
	case "class":
		for _, c := range ClassChanges(oldValue, newValue) {
			if sf.HasClass(c) {
				affected = true
				break
			}
		}
	}
	affected = affected || sf.HasAttribute(name)
	if affected {
		tracer().Debugf("attribute %s of node %d affects distribution of host %d", name, el, host)
		doc.SetNeedsDistributionRecalc(host)
	}
	return affected
}

// DidChangeFilter has to be called after the select filter of an insertion
// point has changed. The host of the insertion point's tree needs
// redistribution, and the select feature sets of all enclosing hosts are
// stale.
func (e *Engine) DidChangeFilter(iph dom.Handle) {
	doc := e.doc
	host := doc.ScopeHost(iph)
	if host == dom.Null {
		return
	}
	doc.SetNeedsDistributionRecalc(host)
	doc.WillAffectSelector(iph)
}

// ClassChanges returns the classes contained in exactly one of two class
// attribute values.
func ClassChanges(oldValue, newValue string) []string {
	return dom.SymmetricDifference(dom.SplitClasses(oldValue), dom.SplitClasses(newValue))
}
