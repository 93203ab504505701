package matcher

import (
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/shadowdom/dom"
	"github.com/npillmayer/shadowdom/dom/style/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lightHTML = `<html><head></head><body>
<div id="a" class="b c" title="x y">
  <p lang="en-US" class="c">Hello <span>World</span></p>
  <p></p>
  <ul><li>1</li><li class="last">2</li></ul>
  <a href="http://example.org/doc.pdf">doc</a>
</div>
<div class="c"><span class="only">only child</span></div>
</body></html>`

// Cascadia is an independent implementation of the same selectors on the
// light DOM; the checker has to agree with it on every element.
func TestMatchAgainstCascadia(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.matcher")
	defer teardown()
	//
	doc, err := dom.ParseString(lightHTML)
	require.NoError(t, err)
	selectors := []string{
		"div", "#a", ".b", "div.c", "div p", "div > p", "body > div#a .c",
		"html span", "[lang|=en]", "[title~=y]", "[href^=http]", "[href$='.pdf']",
		"[href*=example]", "li:first-child", "li:last-child", "span:only-child",
		"p:empty", ":not(.c)", "div:not(#a) span", ":root", "ul li.last",
		"*", "p *",
	}
	ch := New(doc, ModeQuerying)
	elements := doc.Elements(doc.Root())
	require.NotEmpty(t, elements)
	for _, text := range selectors {
		list, err := selector.Compile(text)
		require.NoError(t, err, text)
		oracle := cascadia.MustCompile(text)
		for _, el := range elements {
			want := oracle.Match(doc.Source(el))
			got := ch.MatchList(list, el, dom.Null)
			assert.Equal(t, want, got, "selector %q on <%s id=%q class=%v>",
				text, doc.TagName(el), doc.ID(el), doc.Classes(el))
		}
	}
}

const shadowHTML = `<html><body>
<div id="outer">
<div id="host" class="dark">
  <template shadowroot="open">
    <div id="wrap"><span id="inner" class="x">in shadow</span></div>
    <content></content>
  </template>
  <span id="light" class="x">light</span>
</div>
</div>
</body></html>`

func shadowFixture(t *testing.T) (*dom.Document, dom.Handle, dom.Handle) {
	doc, err := dom.ParseString(shadowHTML)
	require.NoError(t, err)
	host := doc.ElementByID("host")
	require.True(t, doc.IsShadowHost(host))
	return doc, host, doc.YoungestShadowRoot(host)
}

func byID(doc *dom.Document, root dom.Handle, id string) dom.Handle {
	for _, h := range doc.Elements(root) {
		if doc.ID(h) == id {
			return h
		}
	}
	return dom.Null
}

func match(t *testing.T, ch *Checker, text string, el, scope dom.Handle) bool {
	list, err := selector.Compile(text)
	require.NoError(t, err, text)
	return ch.MatchList(list, el, scope)
}

func TestHostMatchesOnlyTheHost(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.matcher")
	defer teardown()
	//
	doc, host, root := shadowFixture(t)
	ch := New(doc, ModeQuerying)
	assert.True(t, match(t, ch, ":host", host, root))
	assert.True(t, match(t, ch, ":host()", host, root))
	assert.True(t, match(t, ch, ":host(.dark)", host, root))
	assert.False(t, match(t, ch, ":host(.light)", host, root))
	assert.True(t, match(t, ch, ":host(#outer > .dark)", host, root))
	for _, el := range append(doc.Elements(root), doc.Elements(doc.Root())...) {
		if el == host {
			continue
		}
		assert.False(t, match(t, ch, ":host", el, root), "element %d is not the host", el)
	}
	// :host outside of a shadow scope
	assert.False(t, match(t, ch, ":host", host, dom.Null))
}

func TestShadowScopeContainment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.matcher")
	defer teardown()
	//
	doc, host, root := shadowFixture(t)
	inner := byID(doc, root, "inner")
	light := doc.ElementByID("light")
	ch := New(doc, ModeQuerying)
	assert.True(t, match(t, ch, ".x", inner, root))
	assert.True(t, match(t, ch, "#wrap > span", inner, root))
	assert.True(t, match(t, ch, ":host(.dark) span", inner, root))
	assert.True(t, match(t, ch, ":host > div span", inner, root))
	// document rules do not reach into the shadow tree
	assert.False(t, match(t, ch, ".x", inner, dom.Null))
	// shadow rules do not reach out of the shadow tree
	assert.False(t, match(t, ch, ".x", light, root))
	assert.False(t, match(t, ch, "#outer span", inner, root))
	assert.False(t, match(t, ch, "div span", host, root))
	// from inside, the host is matched by :host only
	assert.False(t, match(t, ch, "div", host, root))
	assert.True(t, match(t, ch, "#outer .x", light, dom.Null))
}

func TestDynamicPseudoClassesRecordAffectedBy(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.matcher")
	defer teardown()
	//
	doc, err := dom.ParseString(lightHTML)
	require.NoError(t, err)
	a := doc.ElementByID("a")
	assert.False(t, match(t, New(doc, ModeQuerying), "div:hover", a, dom.Null))
	assert.False(t, doc.HasFlag(a, dom.AffectedByHover), "querying must not record")
	styling := New(doc, ModeStyling)
	assert.False(t, match(t, styling, "div:hover", a, dom.Null))
	assert.True(t, doc.HasFlag(a, dom.AffectedByHover))
	doc.SetHovered(a, true)
	assert.True(t, match(t, styling, "div:hover", a, dom.Null))
	assert.False(t, match(t, styling, "#a:focus", a, dom.Null))
	assert.True(t, doc.HasFlag(a, dom.AffectedByFocus))
	first := doc.FirstChild(a)
	assert.True(t, match(t, styling, "p:first-child", first, dom.Null))
	assert.True(t, doc.HasFlag(a, dom.ChildrenAffectedByStructure))
}

func TestLanguageAndUnknownPseudoClasses(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.matcher")
	defer teardown()
	//
	doc, err := dom.ParseString(lightHTML)
	require.NoError(t, err)
	ch := New(doc, ModeQuerying)
	p := doc.FirstChild(doc.ElementByID("a"))
	span := doc.Elements(p)[0]
	assert.Equal(t, "span", doc.TagName(span))
	assert.True(t, match(t, ch, "span:lang(en)", span, dom.Null))
	assert.True(t, match(t, ch, ":lang(EN-us)", p, dom.Null))
	assert.False(t, match(t, ch, ":lang(e)", p, dom.Null))
	assert.False(t, match(t, ch, ":lang(de)", p, dom.Null))
	assert.False(t, match(t, ch, "p:checked", p, dom.Null))
	assert.True(t, match(t, ch, "p:not(:checked)", p, dom.Null))
	assert.True(t, match(t, ch, "[title='X Y' i]", doc.ElementByID("a"), dom.Null))
	assert.False(t, match(t, ch, "[title='X Y']", doc.ElementByID("a"), dom.Null))
}

func TestMatchesLanguage(t *testing.T) {
	cases := []struct {
		lang, rng string
		ok        bool
	}{
		{"de", "de", true},
		{"de-CH", "de", true},
		{"deu", "de", false},
		{"en", "en-US", false},
		{"", "en", false},
		{"fr", "*", true},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, MatchesLanguage(c.lang, c.rng), "MatchesLanguage(%q, %q)", c.lang, c.rng)
	}
}
