package event

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/shadowdom/dom"
	"github.com/npillmayer/shadowdom/dom/composed"
	"github.com/npillmayer/shadowdom/dom/shadow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nestedHTML = `<html><body>
<div id="a">
  <template shadowroot="open">
    <h1 id="title">T</h1>
    <div id="b"><content id="ipa"></content>
      <template shadowroot="open">
        <content id="ipb1" select=".x"></content><content id="ipb2"></content>
      </template>
    </div>
    <footer id="foot"></footer>
  </template>
  <span id="n1" class="x">1</span><span id="n2">2</span>
</div>
</body></html>`

type fixture struct {
	doc    *dom.Document
	walker *composed.Walker
	ids    map[string]dom.Handle
}

func setup(t *testing.T) *fixture {
	doc, err := dom.ParseString(nestedHTML)
	require.NoError(t, err)
	shadow.NewEngine(doc).DistributeAll()
	f := &fixture{doc: doc, walker: composed.NewWalker(doc), ids: map[string]dom.Handle{}}
	for _, h := range doc.ShadowIncludingElements(doc.Root()) {
		if id := doc.ID(h); id != "" {
			f.ids[id] = h
		}
	}
	return f
}

// name returns the id of a node, "#root-of-<host>" for shadow roots, or
// the tag name.
func (f *fixture) name(h dom.Handle) string {
	doc := f.doc
	switch {
	case h == dom.Null:
		return "null"
	case doc.IsShadowRoot(h):
		return "#root-of-" + f.name(doc.ShadowHost(h))
	case doc.ID(h) != "":
		return doc.ID(h)
	case doc.IsElement(h):
		return doc.TagName(h)
	}
	return doc.Kind(h).String()
}

func (f *fixture) names(hh []dom.Handle) []string {
	s := make([]string, len(hh))
	for i, h := range hh {
		s[i] = f.name(h)
	}
	return s
}

func (f *fixture) targets(p *Path) (targets, related []string) {
	for _, e := range p.Entries() {
		targets = append(targets, f.name(e.Target))
		related = append(related, f.name(e.RelatedTarget))
	}
	return
}

func TestPathThroughInsertionPoints(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.event")
	defer teardown()
	//
	f := setup(t)
	p := NewPath(f.walker, f.ids["n1"], &Event{Type: "click"})
	assert.Equal(t, []string{"n1", "ipa", "ipb1", "#root-of-b", "b", "#root-of-a", "a",
		"body", "html", "#document"}, f.names(p.Nodes()))
	targets, _ := f.targets(p)
	for i, tg := range targets {
		assert.Equal(t, "n1", tg, "entry %d", i)
	}
	require.Len(t, p.Contexts(), 3)
}

func TestRetargeting(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.event")
	defer teardown()
	//
	f := setup(t)
	p := NewPath(f.walker, f.ids["title"], nil)
	assert.Equal(t, []string{"title", "#root-of-a", "a", "body", "html", "#document"}, f.names(p.Nodes()))
	targets, related := f.targets(p)
	assert.Equal(t, []string{"title", "title", "a", "a", "a", "a"}, targets)
	assert.Equal(t, []string{"null", "null", "null", "null", "null", "null"}, related)
}

func TestScopedEventsStopAtShadowRoot(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.event")
	defer teardown()
	//
	f := setup(t)
	p := NewPath(f.walker, f.ids["title"], &Event{Type: "load"})
	assert.Equal(t, []string{"title", "#root-of-a"}, f.names(p.Nodes()))
	// a distributed light node's event is not scoped to the shadow tree
	p = NewPath(f.walker, f.ids["n1"], &Event{Type: "load"})
	assert.Equal(t, 10, p.Len())
	d := NewDispatcher(f.walker, []string{"custom"})
	assert.False(t, d.IsScoped("load"))
	p = d.Path(f.ids["title"], &Event{Type: "custom"})
	assert.Equal(t, 2, p.Len())
}

func TestRelatedTargetShrinksPath(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.event")
	defer teardown()
	//
	f := setup(t)
	p := NewPath(f.walker, f.ids["title"], &Event{Type: "mouseover", RelatedTarget: f.ids["foot"]})
	assert.Equal(t, []string{"title", "#root-of-a"}, f.names(p.Nodes()))
	_, related := f.targets(p)
	assert.Equal(t, []string{"foot", "foot"}, related)
	// leaving the shadow tree for a light node
	p = NewPath(f.walker, f.ids["title"], &Event{Type: "mouseover", RelatedTarget: f.ids["n2"]})
	assert.Equal(t, 6, p.Len())
	targets, related := f.targets(p)
	assert.Equal(t, []string{"title", "title", "a", "a", "a", "a"}, targets)
	assert.Equal(t, []string{"n2", "n2", "n2", "n2", "n2", "n2"}, related)
	// identical target and related target
	p = NewPath(f.walker, f.ids["title"], &Event{Type: "mouseover", RelatedTarget: f.ids["title"]})
	assert.Equal(t, []string{"title", "#root-of-a"}, f.names(p.Nodes()))
}

func TestTreeScopeOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.event")
	defer teardown()
	//
	f := setup(t)
	p := NewPath(f.walker, f.ids["n1"], nil)
	byScope := map[dom.Handle]*TreeScopeContext{}
	for _, c := range p.Contexts() {
		byScope[c.Scope()] = c
	}
	docCtx := byScope[f.doc.Root()]
	ra := byScope[f.doc.YoungestShadowRoot(f.ids["a"])]
	rb := byScope[f.doc.YoungestShadowRoot(f.ids["b"])]
	require.NotNil(t, docCtx)
	require.NotNil(t, ra)
	require.NotNil(t, rb)
	assert.True(t, docCtx.IsInclusiveAncestorOf(ra))
	assert.True(t, docCtx.IsInclusiveAncestorOf(rb))
	assert.True(t, ra.IsInclusiveAncestorOf(rb))
	assert.True(t, rb.IsInclusiveAncestorOf(rb))
	assert.False(t, rb.IsInclusiveAncestorOf(ra))
	assert.Equal(t, ra, rb.Parent())
	// the document sees only its own nodes
	assert.Equal(t, []string{"n1", "a", "body", "html", "#document"}, f.names(p.ComposedPath(p.Len()-1)))
	assert.Equal(t, p.Nodes(), p.ComposedPath(2), "the innermost scope sees everything")
}
