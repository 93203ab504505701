package styledtree

import (
	"fmt"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/shadowdom/dom"
	"github.com/npillmayer/shadowdom/dom/composed"
	"github.com/npillmayer/shadowdom/dom/shadow"
	"github.com/npillmayer/shadowdom/dom/style"
	"github.com/npillmayer/shadowdom/dom/style/cssom/douceuradapter"
	"github.com/npillmayer/shadowdom/dom/style/matcher"
	"github.com/npillmayer/shadowdom/dom/style/ruleset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sets is a rule source consulting a number of rule sets in order.
type sets struct {
	doc  *dom.Document
	ch   *matcher.Checker
	list []*ruleset.RuleSet
}

func (s *sets) MatchingRules(el dom.Handle) []*ruleset.Rule {
	var rules []*ruleset.Rule
	for _, rs := range s.list {
		rules = append(rules, rs.MatchingRules(s.ch, s.doc, el)...)
	}
	return rules
}

func (s *sets) add(scope dom.Handle, css string) {
	rs := ruleset.New(scope)
	rs.AddStyleSheet(douceuradapter.MustParse(css))
	s.list = append(s.list, rs)
}

func setup(t *testing.T, html string) (*Store, *sets, map[string]dom.Handle) {
	doc, err := dom.ParseString(html)
	require.NoError(t, err)
	shadow.NewEngine(doc).DistributeAll()
	src := &sets{doc: doc, ch: matcher.New(doc, matcher.ModeQuerying)}
	ids := map[string]dom.Handle{}
	for _, h := range doc.ShadowIncludingElements(doc.Root()) {
		if id := doc.ID(h); id != "" {
			ids[id] = h
		}
	}
	if list, ok := ids["list"]; ok {
		items := 0
		for li := doc.FirstChild(list); li != dom.Null; li = doc.NextElementSibling(li) {
			items++
			ids[fmt.Sprintf("i%d", items)] = li
		}
	}
	return NewStore(composed.NewWalker(doc), src), src, ids
}

const listHTML = `<html><body>
<ul id="list">
  <li class="i">1</li><li class="i">2</li><li class="i last">3</li>
</ul>
<p id="x" class="b">x</p>
</body></html>`

func TestCascadeOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.styledtree")
	defer teardown()
	//
	store, src, ids := setup(t, listHTML)
	src.add(dom.Null, `
.b { color: green }
p { color: red; margin: 1px 2px }
#x { padding-left: 3px }
p { padding-left: 4px !important }
li.i { color: navy }
li { color: olive }`)
	pmap := store.Compute(ids["x"])
	require.NotNil(t, pmap)
	assert.Equal(t, style.Property("green"), store.Property(ids["x"], "color"), "class beats tag")
	assert.Equal(t, style.Property("2px"), store.Property(ids["x"], "margin-left"))
	assert.Equal(t, style.Property("1px"), store.Property(ids["x"], "margin-bottom"))
	assert.Equal(t, style.Property("4px"), store.Property(ids["x"], "padding-left"), "important beats id")
	store.Compute(ids["i1"])
	assert.Equal(t, style.Property("navy"), store.Property(ids["i1"], "color"))
}

func TestCascadeSourceOrderAcrossBuckets(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.styledtree")
	defer teardown()
	//
	store, src, ids := setup(t, listHTML)
	src.add(dom.Null, `p[id] { color: blue } p.b { color: red }`)
	store.Compute(ids["x"])
	assert.Equal(t, style.Property("red"), store.Property(ids["x"], "color"),
		"later rule of equal specificity wins, whatever its bucket")
}

func TestInitialAndInheritValues(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.styledtree")
	defer teardown()
	//
	store, src, ids := setup(t, listHTML)
	body := store.walker.ParentElement(ids["x"])
	require.NotEqual(t, dom.Null, body)
	src.add(dom.Null, `
body { color: red; padding-left: 7px; margin-top: 9px }
#x { color: initial; margin-top: initial; padding-left: inherit }
li { color: inherit }`)
	for _, h := range []dom.Handle{body, ids["x"], ids["list"], ids["i1"]} {
		store.Compute(h)
	}
	assert.Equal(t, style.Property("black"), store.Property(ids["x"], "color"), "initial is not inherited")
	assert.Equal(t, style.Property("0"), store.Property(ids["x"], "margin-top"))
	assert.Equal(t, style.Property("7px"), store.Property(ids["x"], "padding-left"))
	assert.Equal(t, style.Property("red"), store.Property(ids["i1"], "color"), "inherit walks up to body")
}

const shadowHTML = `<html><body>
<div id="host">
  <template shadowroot="open">
    <div id="wrap" class="wrap"><content id="ip"></content></div>
  </template>
  <span id="light">light</span>
</div>
</body></html>`

func TestInheritanceFollowsComposedTree(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.styledtree")
	defer teardown()
	//
	store, src, ids := setup(t, shadowHTML)
	root := store.doc.YoungestShadowRoot(ids["host"])
	src.add(dom.Null, `#host { color: red; margin-top: 5px } span { margin-left: inherit }`)
	src.add(root, `.wrap { color: teal }`)
	for _, id := range []string{"host", "wrap", "ip", "light"} {
		store.Compute(ids[id])
	}
	assert.Equal(t, style.Property("red"), store.Property(ids["host"], "color"))
	assert.Equal(t, style.Property("teal"), store.Property(ids["wrap"], "color"))
	assert.Equal(t, style.Property("teal"), store.Property(ids["light"], "color"),
		"distributed node inherits from the insertion point's parent")
	assert.Equal(t, style.Property("inline"), store.Property(ids["light"], "display"))
	assert.Equal(t, style.Property("0"), store.Property(ids["wrap"], "margin-top"), "margin is not inherited")
	assert.Equal(t, style.Property("0"), store.Property(ids["light"], "margin-left"))
	html := store.doc.FirstChild(store.doc.Root())
	assert.Equal(t, style.Property("black"), store.Property(html, "color"), "initial value")
}

func TestShareStyle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.styledtree")
	defer teardown()
	//
	store, src, ids := setup(t, listHTML)
	src.add(dom.Null, `li { color: olive } .last { color: maroon }`)
	assert.False(t, store.ShareStyle(ids["i2"]), "sibling has no style yet")
	store.Compute(ids["i1"])
	assert.True(t, store.ShareStyle(ids["i2"]))
	assert.True(t, store.Styles(ids["i1"]).Equals(store.Styles(ids["i2"])))
	assert.False(t, store.ShareStyle(ids["i3"]), "classes differ")
	store.doc.SetHovered(ids["i1"], true)
	assert.False(t, store.ShareStyle(ids["i2"]), "interaction state differs")
	store.doc.SetHovered(ids["i1"], false)
	store.doc.SetNeedsStyleRecalc(ids["i1"], dom.LocalStyleChange)
	assert.False(t, store.ShareStyle(ids["i2"]), "sibling needs a recalc")
}

func TestRecalcStyle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.styledtree")
	defer teardown()
	//
	store, src, ids := setup(t, listHTML)
	src.add(dom.Null, `li { color: olive }`)
	doc := store.doc
	doc.SetNeedsStyleRecalc(ids["list"], dom.SubtreeStyleChange)
	assert.Equal(t, 4, store.RecalcStyle(doc.Root()))
	assert.False(t, doc.NeedsStyleRecalc(ids["i3"]))
	assert.False(t, doc.HasFlag(doc.Root(), dom.ChildNeedsStyleRecalc))
	assert.Equal(t, style.Property("olive"), store.Property(ids["i3"], "color"))
	doc.SetNeedsStyleRecalc(ids["x"], dom.LocalStyleChange)
	assert.Equal(t, 1, store.RecalcStyle(doc.Root()))
	assert.Equal(t, 0, store.RecalcStyle(doc.Root()))
	assert.Equal(t, 5, store.Len())
}
