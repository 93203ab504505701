/*
Package styledtree holds the computed styles of the elements of a document.

Overview

A Store keeps one style.PropertyMap per element. Property maps are computed
from the rules matching an element: declarations are applied in cascade
order and declarations marked !important override normal ones. Inherited
properties cascade along the composed tree, i.e. a node distributed to an
insertion point inherits from the insertion point's composed parent, not
from its host.

The store is the receiver of recalculation requests of the invalidation
scheduler, and it clears the style change flags of elements it has
recalculated.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package styledtree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'shadowdom.styledtree'.
func tracer() tracing.Trace {
	return tracing.Select("shadowdom.styledtree")
}
