/*
Package event computes event paths across shadow boundaries.

An event dispatched to a node travels from the node up to the document.
Nodes distributed to insertion points travel through the insertion points
first; shadow roots pass the event on to their host. Every node on the
path sees an adjusted target: the nearest node of its own tree scope (or
of an enclosing one) the original target is visible as. Related targets,
e.g. the node a mouse pointer leaves for a mouseover event, are adjusted
in the same way, and the path is cut off where both adjusted targets
coincide.

Tree scopes touched by a path form a tree of their own. Every scope gets a
pre-order and a post-order number within that tree, which turns the
question whether one scope encloses another into two integer comparisons.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package event

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'shadowdom.event'.
func tracer() tracing.Trace {
	return tracing.Select("shadowdom.event")
}
