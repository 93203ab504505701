package composed

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/shadowdom/dom"
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
        <content id="ipb1" select=".x"></content><hr id="rule"><content id="ipb2"></content>
      </template>
    </div>
    <content id="empty" select=".none"></content>
    <footer id="foot"></footer>
  </template>
  <span id="n1" class="x">1</span><span id="n2">2</span>
</div>
</body></html>`

func setup(t *testing.T, html string) (*dom.Document, map[string]dom.Handle) {
	doc, err := dom.ParseString(html)
	require.NoError(t, err)
	shadow.NewEngine(doc).DistributeAll()
	ids := map[string]dom.Handle{}
	for _, h := range doc.ShadowIncludingElements(doc.Root()) {
		if id := doc.ID(h); id != "" {
			ids[id] = h
		}
	}
	return doc, ids
}

func names(doc *dom.Document, hh []dom.Handle) []string {
	s := make([]string, len(hh))
	for i, h := range hh {
		if id := doc.ID(h); id != "" {
			s[i] = id
		} else {
			s[i] = doc.Node(h).Kind.String()
		}
	}
	return s
}

func TestComposedChildren(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.composed")
	defer teardown()
	//
	doc, ids := setup(t, nestedHTML)
	w := NewWalker(doc)
	assert.Equal(t, []string{"title", "b", "foot"}, names(doc, w.Children(ids["a"])))
	assert.Equal(t, []string{"n1", "rule", "n2"}, names(doc, w.Children(ids["b"])))
	assert.Equal(t, ids["n1"], w.FirstChild(ids["b"]))
	assert.Equal(t, ids["n2"], w.LastChild(ids["b"]))
	assert.Equal(t, ids["foot"], w.LastChild(ids["a"]))
	assert.Equal(t, dom.Null, w.FirstChild(ids["ipb1"]), "insertion points have no composed children")
}

func TestComposedSiblings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.composed")
	defer teardown()
	//
	doc, ids := setup(t, nestedHTML)
	w := NewWalker(doc)
	assert.Equal(t, ids["rule"], w.NextSibling(ids["n1"]))
	assert.Equal(t, ids["n2"], w.NextSibling(ids["rule"]))
	assert.Equal(t, dom.Null, w.NextSibling(ids["n2"]))
	assert.Equal(t, ids["rule"], w.PreviousSibling(ids["n2"]))
	assert.Equal(t, ids["n1"], w.PreviousSibling(ids["rule"]))
	assert.Equal(t, ids["foot"], w.NextSibling(ids["b"]), "empty insertion point is skipped")
	assert.Equal(t, ids["b"], w.PreviousSibling(ids["foot"]))
}

func TestComposedParent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.composed")
	defer teardown()
	//
	doc, ids := setup(t, nestedHTML)
	w := NewWalker(doc)
	assert.Equal(t, ids["b"], w.Parent(ids["n1"]), "re-distributed node")
	assert.Equal(t, ids["b"], w.Parent(ids["rule"]))
	assert.Equal(t, ids["a"], w.Parent(ids["b"]))
	assert.Equal(t, ids["a"], w.Parent(doc.YoungestShadowRoot(ids["a"])))
	assert.Equal(t, doc.Root(), w.Parent(doc.Parent(doc.Parent(ids["a"]))), "<html>")
	assert.Equal(t, dom.Null, w.Parent(doc.Root()))
	for _, n := range w.Children(ids["b"]) {
		assert.Equal(t, ids["b"], w.ParentElement(n))
	}
}

func TestUndistributedNodesAreNotComposed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.composed")
	defer teardown()
	//
	doc, ids := setup(t, `<html><body><div id="host">
<template shadowroot="open"><content id="ip" select=".x"><em id="fb"></em></content></template>
<span id="n1" class="x"></span><span id="n2"></span>
</div></body></html>`)
	w := NewWalker(doc)
	assert.Equal(t, []string{"n1"}, names(doc, w.Children(ids["host"])))
	assert.Equal(t, dom.Null, w.Parent(ids["n2"]))
	assert.Equal(t, dom.Null, w.Parent(ids["fb"]), "fallback is not rendered")
	assert.Equal(t, dom.Null, w.NextSibling(ids["n2"]))
	var visited []string
	w.Traverse(doc.Root(), func(n dom.Handle, depth int) bool {
		if id := doc.ID(n); id != "" {
			visited = append(visited, id)
		}
		return true
	})
	assert.Equal(t, []string{"host", "n1"}, visited)
}

func TestFallbackIsComposed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.composed")
	defer teardown()
	//
	doc, ids := setup(t, `<html><body><div id="host">
<template shadowroot="open"><content id="ip" select=".x"><em id="fb1"></em><em id="fb2"></em></content></template>
<span id="n2"></span>
</div></body></html>`)
	w := NewWalker(doc)
	assert.Equal(t, []string{"fb1", "fb2"}, names(doc, w.Children(ids["host"])))
	assert.Equal(t, ids["host"], w.Parent(ids["fb2"]))
	assert.Equal(t, ids["fb2"], w.NextSibling(ids["fb1"]))
}

func TestShadowIncludingChildren(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.composed")
	defer teardown()
	//
	doc, ids := setup(t, nestedHTML)
	w := NewWalker(doc)
	children := w.ShadowIncludingChildren(ids["a"])
	require.Len(t, children, 3)
	assert.True(t, doc.IsShadowRoot(children[0]))
	assert.Equal(t, []string{"n1", "n2"}, names(doc, children[1:]))
}
