package dom

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hostHTML = `<html><body>
<div id="host">
  <template shadowroot="open">
    <p id="header"></p>
    <content id="p1" select=".x"><span id="fallback">fb</span></content>
    <content id="p2"></content>
    <div><content id="nested-parent"><content id="nested"></content></content></div>
  </template>
  <span id="n1" class="x">one</span>
  <span id="n2">two</span>
</div>
</body></html>`

func mustParse(t *testing.T, s string) *Document {
	doc, err := ParseString(s)
	require.NoError(t, err, "cannot parse test document")
	return doc
}

func findInShadow(doc *Document, root Handle, id string) Handle {
	for _, h := range doc.Elements(root) {
		if doc.ID(h) == id {
			return h
		}
	}
	return Null
}

func TestBuildShadowTree(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.dom")
	defer teardown()
	//
	doc := mustParse(t, hostHTML)
	host := doc.ElementByID("host")
	require.NotEqual(t, Null, host)
	require.True(t, doc.IsShadowHost(host))
	root := doc.YoungestShadowRoot(host)
	assert.Equal(t, host, doc.ShadowHost(root))
	children := doc.Children(host)
	require.Len(t, children, 2, "host has 2 light children")
	p1 := findInShadow(doc, root, "p1")
	assert.Equal(t, root, doc.TreeScope(p1))
	assert.True(t, doc.IsInShadowTree(p1))
	assert.Equal(t, doc.Root(), doc.TreeScope(children[0]), "#n1 lives in the document tree")
	assert.Equal(t, host, doc.ParentOrShadowHost(root))
	assert.True(t, doc.NeedsDistributionRecalc(host), "new host needs distribution")
	assert.True(t, doc.HasFlag(doc.Parent(host), ChildNeedsDistributionRecalc))
}

func TestInsertionPoints(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.dom")
	defer teardown()
	//
	doc := mustParse(t, hostHTML)
	root := doc.YoungestShadowRoot(doc.ElementByID("host"))
	require.Len(t, doc.InsertionPoints(root), 4)
	require.Len(t, doc.ActiveInsertionPoints(root), 3)
	nested := findInShadow(doc, root, "nested")
	assert.False(t, doc.IsActiveInsertionPoint(nested), "nested insertion point is inactive")
	p1 := doc.InsertionPoint(findInShadow(doc, root, "p1"))
	assert.NotNil(t, p1.Filter())
	assert.True(t, p1.IsValid())
	_ = doc.SetAttribute(findInShadow(doc, root, "p1"), "select", "a:hover")
	assert.False(t, p1.IsValid(), ":hover filter is invalid")
}

func TestShadowInsertionPointElection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.dom")
	defer teardown()
	//
	doc := NewDocument()
	host := doc.CreateElement("div")
	_ = doc.AppendChild(doc.Root(), host)
	root, err := doc.AttachShadow(host)
	require.NoError(t, err)
	s1 := doc.CreateElement("shadow")
	c := doc.CreateElement("content")
	s2 := doc.CreateElement("shadow")
	for _, h := range []Handle{s1, c, s2} {
		_ = doc.AppendChild(root, h)
	}
	assert.Equal(t, []Handle{c, s2}, doc.ActiveInsertionPoints(root))
}

func TestShadowHostCycle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.dom")
	defer teardown()
	//
	doc := NewDocument()
	host := doc.CreateElement("div")
	_ = doc.AppendChild(doc.Root(), host)
	root, _ := doc.AttachShadow(host)
	inner := doc.CreateElement("span")
	_ = doc.AppendChild(root, inner)
	_ = doc.RemoveChild(doc.Root(), host)
	assert.ErrorIs(t, doc.AppendChild(inner, host), ErrShadowHostCycle)
}

func TestStyleRecalcFlags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.dom")
	defer teardown()
	//
	doc := mustParse(t, hostHTML)
	host := doc.ElementByID("host")
	root := doc.YoungestShadowRoot(host)
	header := findInShadow(doc, root, "header")
	doc.SetNeedsStyleRecalc(header, LocalStyleChange)
	doc.SetNeedsStyleRecalc(header, NoStyleChange)
	assert.Equal(t, LocalStyleChange, doc.StyleChangeType(header), "style change is never downgraded")
	assert.True(t, doc.HasFlag(root, ChildNeedsStyleRecalc))
	assert.True(t, doc.HasFlag(host, ChildNeedsStyleRecalc), "flag propagates across the shadow boundary")
	doc.SetNeedsStyleInvalidation(header)
	assert.True(t, doc.ChildNeedsStyleInvalidation(doc.Root()))
	assert.Equal(t, "", doc.ComputedLanguage(header))
	_ = doc.SetAttribute(host, "lang", "de-CH")
	assert.Equal(t, "de-CH", doc.ComputedLanguage(header))
}

func TestAttributes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.dom")
	defer teardown()
	//
	doc := NewDocument()
	el := doc.CreateElement("P", Attr{"ID", "a"}, Attr{"class", "x  y"})
	assert.Equal(t, "p", doc.TagName(el))
	assert.Equal(t, "a", doc.ID(el))
	assert.True(t, doc.HasClass(el, "y"))
	assert.Len(t, doc.Classes(el), 2)
	removed, _ := doc.RemoveAttribute(el, "class")
	assert.True(t, removed)
	assert.Empty(t, doc.Classes(el))
	txt := doc.CreateText("x")
	assert.ErrorIs(t, doc.SetAttribute(txt, "a", "b"), ErrNotAnElement)
}
