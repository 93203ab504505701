package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parse parses an HTML document and builds a Document from it.
// See FromHTML.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return FromHTML(root)
}

// ParseString is a convenience variant of Parse.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// FromHTML builds a Document from an HTML parse tree.
//
// A <template> element carrying a "shadowroot" attribute is not built as an
// element. Instead, a shadow root is attached to the template's parent
// element, and the template's children become the shadow tree. Several
// such templates attach several shadow roots, the last one being the
// youngest.
//
// Comments, doctype nodes and whitespace-only text nodes are dropped.
func FromHTML(root *html.Node) (*Document, error) {
	doc := NewDocument()
	if root.Type != html.DocumentNode {
		if err := doc.build(root, doc.root); err != nil {
			return nil, err
		}
	} else {
		doc.Node(doc.root).source = root
		doc.sources[root] = doc.root
		if err := doc.buildChildren(root, doc.root); err != nil {
			return nil, err
		}
	}
	tracer().Debugf("built document with %d nodes", doc.Size())
	return doc, nil
}

func (doc *Document) build(hn *html.Node, parent Handle) error {
	var h Handle
	switch hn.Type {
	case html.ElementNode:
		if hn.Data == "template" && hasAttr(hn, "shadowroot") && doc.IsElement(parent) {
			root, err := doc.AttachShadow(parent)
			if err != nil {
				return err
			}
			doc.Node(root).source = hn
			doc.sources[hn] = root
			return doc.buildChildren(hn, root)
		}
		attrs := make([]Attr, 0, len(hn.Attr))
		for _, a := range hn.Attr {
			attrs = append(attrs, Attr{Key: a.Key, Val: a.Val})
		}
		h = doc.CreateElement(hn.Data, attrs...)
	case html.TextNode:
		if strings.TrimSpace(hn.Data) == "" {
			return nil
		}
		h = doc.CreateText(hn.Data)
	default:
		return nil
	}
	doc.Node(h).source = hn
	doc.sources[hn] = h
	if err := doc.AppendChild(parent, h); err != nil {
		return err
	}
	return doc.buildChildren(hn, h)
}

func (doc *Document) buildChildren(hn *html.Node, parent Handle) error {
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if err := doc.build(c, parent); err != nil {
			return err
		}
	}
	return nil
}

func hasAttr(hn *html.Node, key string) bool {
	for _, a := range hn.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
