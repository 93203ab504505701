package style

// Values "default" have the following semantics:
// Treat this as an inherent UA default, which should not be instantiated in
// memory, but rather will be treated implicitely by consumers.
var nonInherited = map[string]string{
	"position":            "static",
	"float":               "none",
	"background-color":    "default",
	"border-top-color":    "default",
	"border-left-color":   "default",
	"border-right-color":  "default",
	"border-bottom-color": "default",
}

var isDimension = map[string]string{
	"width":                      "auto",
	"height":                     "auto",
	"min-width":                  "none",
	"min-height":                 "none",
	"max-width":                  "none",
	"max-height":                 "none",
	"margin-top":                 "0",
	"margin-left":                "0",
	"margin-right":               "0",
	"margin-bottom":              "0",
	"padding-top":                "0",
	"padding-left":               "0",
	"padding-right":              "0",
	"padding-bottom":             "0",
	"border-top-width":           "medium",
	"border-left-width":          "medium",
	"border-right-width":         "medium",
	"border-bottom-width":        "medium",
	"border-top-left-radius":     "0",
	"border-top-right-radius":    "0",
	"border-bottom-left-radius":  "0",
	"border-bottom-right-radius": "0",
}

// UserAgentDefault returns the user-agent default property for an element
// with a given tag name. An empty tag name denotes a non-element node.
func UserAgentDefault(tag string, key string) Property {
	if key == "display" {
		return DisplayForTag(tag)
	}
	if dim, ok := isDimension[key]; ok {
		return Property(dim)
	}
	if p, ok := nonInherited[key]; ok {
		return Property(p)
	}
	return NullStyle
}

// DisplayForTag returns the default `display` CSS property for an HTML
// element, given its tag name. Insertion points and template elements are
// not displayed.
func DisplayForTag(tag string) Property {
	switch tag {
	case "":
		return "none"
	case "head", "script", "style", "template", "title", "meta", "link", "content", "shadow":
		return "none"
	case "html", "address", "article", "aside", "blockquote", "body", "div", "dl",
		"fieldset", "figure", "footer", "form", "h1", "h2", "h3", "h4", "h5", "h6",
		"header", "hr", "main", "nav", "ol", "p", "pre", "section", "table", "ul":
		return "block"
	case "li":
		return "list-item"
	case "a", "b", "code", "em", "i", "img", "label", "small", "span", "strong", "sub", "sup":
		return "inline"
	}
	tracer().Debugf("unknown HTML element %s will be set to display: inline", tag)
	return "inline"
}

// InitialValues creates a property map holding the initial values for CSS
// properties, i.e. the user-agent defaults for the document root.
// Additional properties go to the extension group "X".
func InitialValues(additionalProps []KeyValue) *PropertyMap {
	m := NewPropertyMap()
	root := NewPropertyGroup("Root")
	group := func(name string, kv ...string) {
		g := NewPropertyGroup(name)
		for i := 0; i+1 < len(kv); i += 2 {
			g.Set(kv[i], Property(kv[i+1]))
		}
		g.Parent = root
		m.AddAllFromGroup(g, true)
	}
	x := NewPropertyGroup(PGX)
	for _, kv := range additionalProps {
		x.Set(kv.Key, kv.Value)
	}
	x.Parent = root
	m.AddAllFromGroup(x, true)
	group(PGMargins, "margin-top", "0", "margin-left", "0", "margin-right", "0", "margin-bottom", "0")
	group(PGPadding, "padding-top", "0", "padding-left", "0", "padding-right", "0", "padding-bottom", "0")
	group(PGBorder,
		"border-top-color", "black", "border-left-color", "black",
		"border-right-color", "black", "border-bottom-color", "black",
		"border-top-width", "medium", "border-left-width", "medium",
		"border-right-width", "medium", "border-bottom-width", "medium",
		"border-top-style", "none", "border-left-style", "none",
		"border-right-style", "none", "border-bottom-style", "none")
	group(PGDimension, "width", "auto", "height", "auto", "min-width", "none",
		"min-height", "none", "max-width", "none", "max-height", "none")
	group(PGDisplay, "display", "block", "float", "none", "visibility", "visible", "position", "static")
	group(PGColor, "color", "black", "background-color", "transparent")
	group(PGText, "direction", "ltr", "white-space", "normal", "word-spacing", "normal",
		"letter-spacing", "normal", "word-break", "normal", "word-wrap", "normal")
	return m
}
