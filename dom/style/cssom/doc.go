/*
Package cssom abstracts stylesheets for the styling engine.

CSSOM is the "CSS Object Model", similar to the DOM for HTML. The engine
never depends on a concrete CSS parser. Instead, stylesheets are accessed
through the interfaces StyleSheet and Rule. A concrete implementation
based on github.com/aymerick/douceur may be found in sub-package
douceuradapter.

Rules are either style rules (a prelude of selectors plus a declaration
block) or at-rules. At-rules are classified by kind, as some of them
(e.g., @media or @font-face) influence the styling of a document as a
whole, while others (e.g., @keyframes) never do.

The styling component is difficult to document/describe without
diagrams. Think about documenting with https://github.com/robertkrimen/godocdown.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package cssom

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'shadowdom.cssom'.
func tracer() tracing.Trace {
	return tracing.Select("shadowdom.cssom")
}
