/*
Package domdbg implements helpers to debug a DOM tree.

There are text dumps of the light tree (including shadow trees) and of the
composed tree, and a GraphViz rendering of a document together with
computed styles.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>


*/
package domdbg

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
	"text/template"

	"github.com/npillmayer/shadowdom/dom"
	"github.com/npillmayer/shadowdom/dom/composed"
	"github.com/npillmayer/shadowdom/dom/style"
	tp "github.com/xlab/treeprint"
)

// Label returns a short description of a node: tag name with id and classes
// for elements, quoted text for text nodes, and the node name otherwise.
func Label(doc *dom.Document, h dom.Handle) string {
	switch doc.Kind(h) {
	case dom.ElementNode:
		var sb strings.Builder
		sb.WriteString(doc.TagName(h))
		if id := doc.ID(h); id != "" {
			sb.WriteString("#" + id)
		}
		for _, c := range doc.Classes(h) {
			sb.WriteString("." + c)
		}
		if ip := doc.InsertionPoint(h); ip != nil && ip.Select() != "" {
			sb.WriteString(fmt.Sprintf("[select=%q]", ip.Select()))
		}
		return sb.String()
	case dom.TextNode:
		return fmt.Sprintf("%q", shorten(doc.Text(h), 16))
	}
	return doc.Kind(h).String()
}

func shorten(s string, max int) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > max {
		return string(r[:max]) + "…"
	}
	return s
}

// LightTree dumps the node tree rooted at h, together with all shadow trees
// attached within it. Shadow roots are listed before the light children of
// their host.
func LightTree(doc *dom.Document, h dom.Handle) string {
	p := tp.New()
	p.SetValue(Label(doc, h))
	var add func(tp.Tree, dom.Handle)
	add = func(branch tp.Tree, n dom.Handle) {
		roots := doc.ShadowRoots(n)
		children := make([]dom.Handle, 0, len(roots)+doc.ChildCount(n))
		children = append(append(children, roots...), doc.Children(n)...)
		for _, c := range children {
			if doc.ChildCount(c) == 0 && !doc.IsShadowHost(c) {
				branch.AddNode(Label(doc, c))
				continue
			}
			add(branch.AddBranch(Label(doc, c)), c)
		}
	}
	add(p, h)
	return p.String()
}

// ComposedTree dumps the composed tree rooted at h.
func ComposedTree(walker *composed.Walker, h dom.Handle) string {
	doc := walker.Document()
	p := tp.New()
	p.SetValue(Label(doc, h))
	var add func(tp.Tree, dom.Handle)
	add = func(branch tp.Tree, n dom.Handle) {
		for _, c := range walker.Children(n) {
			if walker.FirstChild(c) == dom.Null {
				branch.AddNode(Label(doc, c))
				continue
			}
			add(branch.AddBranch(Label(doc, c)), c)
		}
	}
	add(p, h)
	return p.String()
}

// Distributions writes the distribution of every insertion point of the
// document, one line per insertion point.
func Distributions(doc *dom.Document, w io.Writer) {
	for _, h := range doc.ShadowIncludingElements(doc.Root()) {
		ip := doc.InsertionPoint(h)
		if ip == nil {
			continue
		}
		state := "inactive"
		if doc.IsActiveInsertionPoint(h) {
			state = "active"
		}
		nodes := ip.Distribution().Nodes()
		labels := make([]string, len(nodes))
		for i, n := range nodes {
			labels[i] = Label(doc, n)
		}
		fmt.Fprintf(w, "%s in host %s (%s): [%s]\n", Label(doc, h),
			Label(doc, doc.ScopeHost(h)), state, strings.Join(labels, " "))
	}
}

// --- GraphViz --------------------------------------------------------------

// Styler gives access to the computed styles of elements.
type Styler interface {
	Styles(el dom.Handle) *style.PropertyMap
}

// Parameters for GraphViz drawing.
type graphParamsType struct {
	Fontname       string
	StyleGroups    []string
	NodeTmpl       *template.Template
	EdgeTmpl       *template.Template
	StylegroupTmpl *template.Template
	PgedgeTmpl     *template.Template
	PgpgTmpl       *template.Template
}

var defaultGroups = []string{
	style.PGMargins,
	style.PGPadding,
	style.PGBorder,
	style.PGColor,
}

type graph struct {
	doc     *dom.Document
	styler  Styler
	w       io.Writer
	dict    map[dom.Handle]string
	gparams *graphParamsType
}

// ToGraphViz outputs a diagram for a DOM tree. The diagram is in
// GraphViz (DOT) format. Clients have to provide the root node of
// the DOM, a Writer, and an optional list of style parameter groups.
// If styler is non-nil, the diagram will include all styles belonging to
// one of the parameter groups, and elements are filled with their
// background color.
//
// If the client does not provide a list of style groups, the following
// default will be used:
//
//     - Margins
//     - Padding
//     - Border
//     - Color
//
func ToGraphViz(root *dom.W3CNode, styler Styler, w io.Writer, styleGroups []string) {
	tmpl, err := template.New("dom").Parse(graphHeadTmpl)
	if err != nil {
		panic(err)
	}
	gparams := graphParamsType{Fontname: "Helvetica"}
	gparams.NodeTmpl = template.Must(template.New("domnode").Parse(domNodeTmpl))
	gparams.EdgeTmpl = template.Must(template.New("domedge").Parse(domEdgeTmpl))
	gparams.StylegroupTmpl = template.Must(template.New("stylegroup").Parse(styleGroupTmpl))
	gparams.PgedgeTmpl = template.Must(template.New("pgedge").Parse(pgEdgeTmpl))
	gparams.PgpgTmpl = template.Must(template.New("pgpgedge").Parse(pgpgEdgeTmpl))
	gparams.StyleGroups = styleGroups
	if styleGroups == nil {
		gparams.StyleGroups = defaultGroups
	}
	if err = tmpl.Execute(w, gparams); err != nil {
		panic(err)
	}
	g := &graph{
		doc:     root.Document(),
		styler:  styler,
		w:       w,
		dict:    make(map[dom.Handle]string, 1024),
		gparams: &gparams,
	}
	g.nodes(root.Handle())
	w.Write([]byte("}\n"))
}

// Dotty is a helper for testing. Given a DOM node and a testing.T, it will
// create a Graphiviz image of the DOM tree under `root` and write it to
// a file in the current folder, choosing a unique file name.
// The image is in SVG format.
//
// If an error occurs, t.Error(…) will be set, causing the test to fail.
//
func Dotty(root *dom.W3CNode, styler Styler, t *testing.T) {
	tmpfile, err := os.CreateTemp(".", "dom.*.dot")
	if err != nil {
		t.Error(err)
		return
	}
	defer func() {
		tmpfile.Close()
		os.Remove(tmpfile.Name()) // clean up
	}()
	t.Logf("writing DOM digraph to %s\n", tmpfile.Name())
	ToGraphViz(root, styler, tmpfile, nil)
	outOption := fmt.Sprintf("-o%s.svg", tmpfile.Name())
	cmd := exec.Command("dot", "-Tsvg", outOption, tmpfile.Name())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	t.Logf("writing DOM tree image to %s.svg\n", tmpfile.Name())
	if err := cmd.Run(); err != nil {
		t.Error(err.Error())
	}
}

type node struct {
	Name  string
	Label string
	Kind  string
	Fill  string
}

type edge struct {
	N1, N2 string
	Style  string
}

func (g *graph) name(h dom.Handle) string {
	name := g.dict[h]
	if name == "" {
		name = fmt.Sprintf("node%05d", len(g.dict)+1)
		g.dict[h] = name
	}
	return name
}

func (g *graph) nodes(h dom.Handle) {
	g.domNode(h)
	for _, r := range g.doc.ShadowRoots(h) {
		g.nodes(r)
		g.domEdge(h, r, "dashed")
	}
	for c := g.doc.FirstChild(h); c != dom.Null; c = g.doc.NextSibling(c) {
		g.nodes(c)
		g.domEdge(h, c, "solid")
	}
}

func (g *graph) domNode(h dom.Handle) {
	n := node{Name: g.name(h), Label: fmt.Sprintf("%q", Label(g.doc, h)), Fill: "lightblue3"}
	switch g.doc.Kind(h) {
	case dom.TextNode:
		n.Kind, n.Fill = "text", "grey95"
	case dom.ShadowRootNode:
		n.Kind, n.Fill = "root", "darkseagreen2"
	default:
		n.Kind = "element"
	}
	if g.styler != nil && g.doc.IsElement(h) {
		if c := style.ColorString(g.background(h)); c != "none" {
			n.Fill = "\"" + c + "\""
		}
	}
	if err := g.gparams.NodeTmpl.Execute(g.w, &n); err != nil {
		panic(err)
	}
	g.domStyles(h)
}

func (g *graph) background(h dom.Handle) color.Color {
	p, _ := g.styler.Styles(h).Property("background-color")
	return p.Color()
}

func (g *graph) domStyles(h dom.Handle) {
	if g.styler == nil || !g.doc.IsElement(h) {
		return
	}
	pmap := g.styler.Styles(h)
	var prev *style.PropertyGroup
	for _, s := range g.gparams.StyleGroups {
		pg := pmap.Group(s)
		if pg == nil {
			continue
		}
		if err := g.gparams.StylegroupTmpl.Execute(g.w, pg); err != nil {
			panic(err)
		}
		if prev == nil {
			g.pgEdge(h, pg)
		} else {
			g.pgpgEdge(prev, pg)
		}
		prev = pg
	}
}

func (g *graph) domEdge(n1, n2 dom.Handle, line string) {
	e := edge{g.name(n1), g.name(n2), line}
	if err := g.gparams.EdgeTmpl.Execute(g.w, e); err != nil {
		panic(err)
	}
}

type pgedge struct {
	Name      string
	PropGroup *style.PropertyGroup
}

func (g *graph) pgEdge(h dom.Handle, pg *style.PropertyGroup) {
	if err := g.gparams.PgedgeTmpl.Execute(g.w, pgedge{g.name(h), pg}); err != nil {
		panic(err)
	}
}

func (g *graph) pgpgEdge(pg1 *style.PropertyGroup, pg2 *style.PropertyGroup) {
	if err := g.gparams.PgpgTmpl.Execute(g.w, []*style.PropertyGroup{pg1, pg2}); err != nil {
		panic(err)
	}
}

// --- Templates --------------------------------------------------------

const graphHeadTmpl = `digraph g {
  graph [labelloc="t" label="" splines=true overlap=false rankdir = "LR"];
  graph [fontname = "{{ .Fontname }}" fontsize=14] ;
   node [fontname = "{{ .Fontname }}" fontsize=14] ;
   edge [fontname = "{{ .Fontname }}" fontsize=14] ;
`

const domNodeTmpl = `{{ if eq .Kind "text" }}
{{ .Name }}	[ label={{ .Label }} shape=box style=filled fillcolor={{ .Fill }} fontname="Courier" fontsize=11.0 ] ;
{{ else if eq .Kind "root" }}
{{ .Name }}	[ label={{ .Label }} shape=hexagon style=filled fillcolor={{ .Fill }} ] ;
{{ else }}
{{ .Name }}	[ label={{ .Label }} shape=ellipse style=filled fillcolor={{ .Fill }} ] ;
{{ end }}
`

const styleGroupTmpl = `{{ printf "pg%p" . }} [ style="filled" penwidth=1 fillcolor="ivory3" shape="Mrecord" fontsize=12
    label=<<table border="0" cellborder="0" cellpadding="2" cellspacing="0" bgcolor="ivory3">
      <tr><td bgcolor="azure4" align="center" colspan="2"><font color="white">{{ .Name }}</font></td></tr>
      {{ range .Properties }}
      <tr><td align="right">{{ .Key }}:</td><td>{{ .Value }}</td></tr>
      {{ else }}
      <tr><td colspan="2">no styles</td></tr>
      {{ end }}
    </table>> ] ;
`

const domEdgeTmpl = `{{ .N1 }} -> {{ .N2 }} [weight=1 style={{ .Style }}] ;
`

const pgEdgeTmpl = `{{ .Name }} -> {{ printf "pg%p" .PropGroup }} [dir=none weight=1 style="dashed"] ;
`

const pgpgEdgeTmpl = `{{ index . 0 | printf "pg%p"  }} -> {{ index . 1 | printf "pg%p" }} [dir=none weight=1 style="dashed"] ;
`
