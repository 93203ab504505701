package shadow

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/shadowdom/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	doc        *dom.Document
	host, root dom.Handle
	p1, p2     dom.Handle
	n1, n2, n3 dom.Handle
}

// host with insertion points P1 (select=".x") and P2 (no filter), light
// children [n1.x, n2, n3.x]
func newFixture(t *testing.T) *fixture {
	f := &fixture{doc: dom.NewDocument()}
	doc := f.doc
	f.host = doc.CreateElement("div", dom.Attr{Key: "id", Val: "host"})
	require.NoError(t, doc.AppendChild(doc.Root(), f.host))
	var err error
	f.root, err = doc.AttachShadow(f.host)
	require.NoError(t, err)
	f.p1 = doc.CreateElement("content", dom.Attr{Key: "select", Val: ".x"})
	f.p2 = doc.CreateElement("content")
	require.NoError(t, doc.AppendChild(f.root, f.p1))
	require.NoError(t, doc.AppendChild(f.root, f.p2))
	f.n1 = doc.CreateElement("span", dom.Attr{Key: "class", Val: "x"})
	f.n2 = doc.CreateElement("span")
	f.n3 = doc.CreateElement("span", dom.Attr{Key: "class", Val: "x"})
	for _, n := range []dom.Handle{f.n1, f.n2, f.n3} {
		require.NoError(t, doc.AppendChild(f.host, n))
	}
	return f
}

func (f *fixture) dist(ip dom.Handle) []dom.Handle {
	return f.doc.InsertionPoint(ip).Distribution().Nodes()
}

func TestDistributeWithFilter(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.shadow")
	defer teardown()
	//
	f := newFixture(t)
	e := NewEngine(f.doc)
	stats := e.DistributeAll()
	assert.Equal(t, 1, stats.Hosts)
	assert.Equal(t, []dom.Handle{f.n1, f.n3}, f.dist(f.p1))
	assert.Equal(t, []dom.Handle{f.n2}, f.dist(f.p2))
	assert.Equal(t, 3, stats.Attached)
	assert.False(t, f.doc.NeedsDistributionRecalc(f.host))
	assert.Equal(t, []dom.Handle{f.p1}, f.doc.DestinationInsertionPoints(f.n3))
	assert.Equal(t, f.p2, f.doc.FinalDestinationInsertionPoint(f.n2))
}

func TestRedistributionIsIdempotent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.shadow")
	defer teardown()
	//
	f := newFixture(t)
	e := NewEngine(f.doc)
	e.DistributeAll()
	stats := e.DistributeAll()
	assert.Equal(t, Stats{}, stats, "nothing is stale")
	results := e.Distribute(f.host)
	require.Len(t, results, 2)
	for ip, r := range results {
		assert.Zero(t, r.Operations(), "insertion point %d", ip)
	}
	assert.Equal(t, []dom.Handle{f.n1, f.n3}, f.dist(f.p1))
}

func TestReorderedChildren(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.shadow")
	defer teardown()
	//
	f := newFixture(t)
	doc := f.doc
	e := NewEngine(doc)
	e.DistributeAll()
	// [n2, n1, n3]: distributions stay the same
	require.NoError(t, doc.RemoveChild(f.host, f.n2))
	require.NoError(t, doc.InsertBefore(f.host, f.n2, f.n1))
	assert.True(t, doc.NeedsDistributionRecalc(f.host))
	stats := e.DistributeAll()
	assert.Equal(t, 1, stats.Hosts)
	assert.Zero(t, stats.Attached+stats.Detached)
	assert.Equal(t, []dom.Handle{f.n1, f.n3}, f.dist(f.p1))
	assert.Equal(t, []dom.Handle{f.n2}, f.dist(f.p2))
	// [n3, n2, n1]: P1 is reversed, P2 untouched
	require.NoError(t, doc.RemoveChild(f.host, f.n3))
	require.NoError(t, doc.InsertBefore(f.host, f.n3, f.n2))
	results := e.Distribute(f.host)
	assert.Equal(t, []dom.Handle{f.n3, f.n1}, f.dist(f.p1))
	assert.Equal(t, 4, results[f.p1].Operations())
	assert.Zero(t, results[f.p2].Operations())
}

func TestNoNodeInTwoInsertionPoints(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.shadow")
	defer teardown()
	//
	f := newFixture(t)
	doc := f.doc
	p3 := doc.CreateElement("content", dom.Attr{Key: "select", Val: "span"})
	sh := doc.CreateElement("shadow")
	require.NoError(t, doc.AppendChild(f.root, p3))
	require.NoError(t, doc.AppendChild(f.root, sh))
	txt := doc.CreateText("tail")
	require.NoError(t, doc.AppendChild(f.host, txt))
	NewEngine(doc).DistributeAll()
	count := map[dom.Handle]int{}
	for _, ip := range doc.ActiveInsertionPoints(f.root) {
		for _, n := range f.dist(ip) {
			count[n]++
		}
	}
	for _, n := range []dom.Handle{f.n1, f.n2, f.n3, txt} {
		assert.Equal(t, 1, count[n], "node %d", n)
	}
	assert.Empty(t, f.dist(p3), "everything consumed before p3")
	assert.Empty(t, f.dist(sh))
}

func TestFallbackAndInvalidFilter(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.shadow")
	defer teardown()
	//
	f := newFixture(t)
	doc := f.doc
	fb := doc.CreateElement("em")
	require.NoError(t, doc.AppendChild(f.p1, fb))
	e := NewEngine(doc)
	require.NoError(t, doc.SetAttribute(f.p1, "select", ".none"))
	assert.True(t, e.DidChangeAttribute(f.p1, "select", ".x", ".none"))
	e.DistributeAll()
	assert.Equal(t, []dom.Handle{fb}, f.dist(f.p1), "fallback content")
	assert.Equal(t, []dom.Handle{f.n1, f.n2, f.n3}, f.dist(f.p2))
	assert.Equal(t, f.p1, doc.FinalDestinationInsertionPoint(fb))
	//
	require.NoError(t, doc.SetAttribute(f.p1, "select", "span:hover"))
	e.DidChangeFilter(f.p1)
	e.DistributeAll()
	assert.False(t, doc.InsertionPoint(f.p1).IsValid())
	assert.Equal(t, []dom.Handle{fb}, f.dist(f.p1), "invalid filter selects nothing")
}

func TestAttributeChangeOfLightChild(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.shadow")
	defer teardown()
	//
	f := newFixture(t)
	doc := f.doc
	e := NewEngine(doc)
	e.DistributeAll()
	assert.True(t, e.EnsureSelectFeatures(f.host).HasClass("x"))
	require.NoError(t, doc.SetAttribute(f.n2, "class", "y"))
	assert.False(t, e.DidChangeAttribute(f.n2, "class", "", "y"))
	assert.False(t, doc.NeedsDistributionRecalc(f.host))
	require.NoError(t, doc.SetAttribute(f.n2, "class", "y x"))
	assert.True(t, e.DidChangeAttribute(f.n2, "class", "y", "y x"))
	e.DistributeAll()
	assert.Equal(t, []dom.Handle{f.n1, f.n2, f.n3}, f.dist(f.p1))
	assert.Empty(t, f.dist(f.p2))
}

const nestedHTML = `<html><body>
<div id="a">
  <template shadowroot="open">
    <div id="b"><content id="ipa"></content>
      <template shadowroot="open">
        <content id="ipb1" select=".x"></content><content id="ipb2"></content>
      </template>
    </div>
  </template>
  <span id="n1" class="x">1</span><span id="n2">2</span>
</div>
</body></html>`

func findAll(doc *dom.Document) map[string]dom.Handle {
	ids := map[string]dom.Handle{}
	for _, h := range doc.ShadowIncludingElements(doc.Root()) {
		if id := doc.ID(h); id != "" {
			ids[id] = h
		}
	}
	return ids
}

func TestReprojection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.shadow")
	defer teardown()
	//
	doc, err := dom.ParseString(nestedHTML)
	require.NoError(t, err)
	ids := findAll(doc)
	e := NewEngine(doc)
	stats := e.DistributeAll()
	assert.Equal(t, 2, stats.Hosts)
	dist := func(id string) []dom.Handle {
		return doc.InsertionPoint(ids[id]).Distribution().Nodes()
	}
	assert.Equal(t, []dom.Handle{ids["n1"], ids["n2"]}, dist("ipa"))
	assert.Equal(t, []dom.Handle{ids["n1"]}, dist("ipb1"))
	assert.Equal(t, []dom.Handle{ids["n2"]}, dist("ipb2"))
	assert.Equal(t, []dom.Handle{ids["ipa"], ids["ipb1"]}, doc.DestinationInsertionPoints(ids["n1"]))
	assert.True(t, e.EnsureSelectFeatures(ids["a"]).HasClass("x"), "features of nested trees")
	// a class change on a light child of the outer host reaches the inner host
	require.NoError(t, doc.SetAttribute(ids["n2"], "class", "x"))
	assert.True(t, e.DidChangeAttribute(ids["n2"], "class", "", "x"))
	e.DistributeAll()
	assert.Equal(t, []dom.Handle{ids["n1"], ids["n2"]}, dist("ipb1"))
	assert.Empty(t, dist("ipb2"))
}

func TestDiff(t *testing.T) {
	h := func(hh ...dom.Handle) *dom.Distribution {
		d := dom.NewDistribution(hh)
		return &d
	}
	r := Diff(h(1, 2, 3, 4), h(1, 5, 3, 4))
	assert.Equal(t, []dom.Handle{2}, r.Detached)
	assert.Equal(t, []dom.Handle{5}, r.Attached)
	r = Diff(h(1, 2), h(1, 2, 3))
	assert.Empty(t, r.Detached)
	assert.Equal(t, []dom.Handle{3}, r.Attached)
	r = Diff(h(1, 2, 3), h(3))
	assert.Equal(t, []dom.Handle{1, 2}, r.Detached)
	assert.Empty(t, r.Attached)
	assert.Zero(t, Diff(h(7, 8), h(7, 8)).Operations())
	assert.Zero(t, Diff(h(), h()).Operations())
}
