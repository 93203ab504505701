package ruleset

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/shadowdom/dom"
	"github.com/npillmayer/shadowdom/dom/style/cssom/douceuradapter"
	"github.com/npillmayer/shadowdom/dom/style/matcher"
	"github.com/npillmayer/shadowdom/dom/style/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectors(rules []*Rule) []string {
	s := make([]string, len(rules))
	for i, r := range rules {
		s[i] = r.String()
	}
	return s
}

func TestMatchingRulesOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.ruleset")
	defer teardown()
	//
	doc, err := dom.ParseString(`<html><body><div id="a" class="b"></div></body></html>`)
	require.NoError(t, err)
	el := doc.ElementByID("a")
	rs := New(dom.Null)
	n := rs.AddStyleSheet(douceuradapter.MustParse(`div { color: red } .b { color: green } #a { color: blue }`))
	require.Equal(t, 3, n)
	rules := rs.MatchingRules(matcher.New(doc, matcher.ModeQuerying), doc, el)
	assert.Equal(t, []string{"#a", ".b", "div"}, selectors(rules))
	assert.Equal(t, IDBucket, rules[0].Bucket)
	assert.Equal(t, ClassBucket, rules[1].Bucket)
	assert.Equal(t, TagBucket, rules[2].Bucket)
	assert.Equal(t, "blue", rules[0].Decl.Value("color").String())
}

func TestBucketChoice(t *testing.T) {
	cases := []struct {
		sel    string
		bucket Bucket
		key    string
	}{
		{":host(.x)", HostBucket, ""},
		{"div :host", HostBucket, ""},
		{"p.x#y", IDBucket, "y"},
		{"p.x.z", ClassBucket, "x"},
		{"div > p", TagBucket, "p"},
		{"p *", UniversalBucket, ""},
		{"[href]", UniversalBucket, ""},
		{":host span", TagBucket, "span"},
	}
	for _, c := range cases {
		list := selector.MustCompile(c.sel)
		b, k := chooseBucket(list.Alternatives[0].Rightmost())
		assert.Equal(t, c.bucket, b, c.sel)
		assert.Equal(t, c.key, k, c.sel)
	}
}

const indexHTML = `<html><body>
<div id="main" class="x y">
  <p class="x">one <span class="y z">two</span></p>
  <p lang="de" class="z">three</p>
  <ul><li class="x">a</li><li id="last">b</li></ul>
</div>
<section><p>four</p></section>
</body></html>`

const indexCSS = `
* { margin: 0 }
p { color: black }
.x { color: red }
.y, .z { color: green }
#main .x { color: blue }
div > p.x { color: navy }
section p, li:last-child { color: gray }
.x.y { border: none }
[lang|=de] { font-style: italic }
:not(p) > span { display: inline }
@media print { p { display: none } }
@media screen { .z { color: olive } }
@font-face { font-family: x }
`

func TestIndexEqualsBruteForce(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.ruleset")
	defer teardown()
	//
	doc, err := dom.ParseString(indexHTML)
	require.NoError(t, err)
	rs := New(dom.Null)
	rs.AddStyleSheet(douceuradapter.MustParse(indexCSS))
	ch := matcher.New(doc, matcher.ModeQuerying)
	for _, el := range doc.Elements(doc.Root()) {
		indexed := rs.MatchingRules(ch, doc, el)
		brute := rs.BruteForceMatchingRules(ch, doc, el)
		assert.Equal(t, selectors(brute), selectors(indexed), "element <%s>", doc.TagName(el))
	}
}

func TestCompactionIsStable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.ruleset")
	defer teardown()
	//
	doc, err := dom.ParseString(indexHTML)
	require.NoError(t, err)
	ch := matcher.New(doc, matcher.ModeQuerying)
	main := doc.ElementByID("main")
	rs := New(dom.Null)
	rs.AddStyleSheet(douceuradapter.MustParse(`.x { a: 1 } div { a: 2 }`))
	first := rs.MatchingRules(ch, doc, main)
	assert.Equal(t, []string{".x", "div"}, selectors(first))
	rs.AddStyleSheet(douceuradapter.MustParse(`.y { a: 3 } .x { a: 4 }`))
	second := rs.MatchingRules(ch, doc, main)
	assert.Equal(t, []string{".x", ".y", ".x", "div"}, selectors(second))
	for i := 1; i < 3; i++ {
		assert.Less(t, second[i-1].Position, second[i].Position)
	}
	// first result is untouched by recompaction
	assert.Equal(t, []string{".x", "div"}, selectors(first))
}

func TestMediaRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.ruleset")
	defer teardown()
	//
	css := `@media print { p { a: 1 } } @media screen, print { p { a: 2 } } @media all { p { a: 3 } }`
	rs := New(dom.Null)
	assert.Equal(t, 2, rs.AddStyleSheet(douceuradapter.MustParse(css)))
	rs = New(dom.Null)
	rs.SetMediaEvaluator(MediaType("print"))
	assert.Equal(t, 3, rs.AddStyleSheet(douceuradapter.MustParse(css)))
	assert.False(t, MediaType("screen")("screen and (min-width: 100px)"))
}

func TestShadowScopedRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.ruleset")
	defer teardown()
	//
	doc, err := dom.ParseString(`<html><body><div id="host" class="dark">
  <template shadowroot="open"><span id="inner">x</span></template>
  <span id="light">y</span>
</div></body></html>`)
	require.NoError(t, err)
	host := doc.ElementByID("host")
	root := doc.YoungestShadowRoot(host)
	ch := matcher.New(doc, matcher.ModeQuerying)
	rs := New(root)
	rs.AddStyleSheet(douceuradapter.MustParse(`:host(.dark) { a: 1 } span { a: 2 } :host span { a: 3 }`))
	assert.True(t, rs.HasHostRules())
	assert.Equal(t, []string{":host(.dark)"}, selectors(rs.MatchingRules(ch, doc, host)))
	inner := doc.Elements(root)[0]
	assert.Equal(t, []string{"span", ":host span"}, selectors(rs.MatchingRules(ch, doc, inner)))
	assert.Empty(t, rs.MatchingRules(ch, doc, doc.ElementByID("light")))
	assert.True(t, rs.Features().HasClass("dark"))
}
