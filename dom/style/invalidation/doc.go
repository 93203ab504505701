/*
Package invalidation keeps style recalculation incremental.

A mutation of the document (a class change, an attribute change, a change
of hover state) usually affects the style of very few elements. Instead of
recalculating the style of the whole document, the mutation schedules an
invalidation set on the changed element. An invalidation set describes
which descendants of the element may be affected: elements with certain
ids, classes, tag names or attributes, or, as a last resort, all of them.

Invalidation sets are derived from the selectors of the rule sets in effect
(see FeatureSet). Scheduled sets are evaluated lazily in a single
depth-first pass over the document (see Scheduler.Invalidate), which turns
them into style change flags of individual elements.

Newly inserted stylesheets are analyzed by an Analyzer. Stylesheets whose
rules are all confined to elements with certain ids or classes only dirty
the subtrees of those elements.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package invalidation

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'shadowdom.invalidation'.
func tracer() tracing.Trace {
	return tracing.Select("shadowdom.invalidation")
}
