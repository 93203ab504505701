/*
Package dom implements the document tree the shadow DOM machinery works on.

Status

Early draft, the API may change frequently. Please stay patient.

Overview

A Document owns every node of a page: the document node itself, elements,
text and comment nodes, and shadow roots. Nodes live in an arena (package
tree) and are addressed by handles. Parent, child and sibling links are
handles as well, so there are no owning pointers between nodes and no
reference cycles.

Every tree in a document has a root: the document node for the light tree,
a shadow root for each shadow tree. A shadow root is not a child of its
host; the host refers to its shadow roots, and the shadow root refers back
to its host. The root of the tree a node belongs to is called its tree scope.

Shadow hosts may carry more than one shadow root. Roots are kept youngest
first, and only the youngest root takes part in composition. Elements
named "content" and "shadow" are insertion points. Insertion points inside
a shadow tree receive a Distribution of the host's children. Computing
distributions is the job of package shadow; this package stores them.

The document also stores per-node bookkeeping for style recalculation:
the kind of pending style change, "child needs …" propagation flags and
"affected by" flags recorded by the selector matcher.

Tree Implementation

Styling of HTML/CSS involves a lot of operations on different trees.
We implement the document tree on top of a general purpose tree type
(package tree), which offers an arena of nodes with a payload.
The payload of a document node is a *Node.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package dom

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'shadowdom.dom'.
func tracer() tracing.Trace {
	return tracing.Select("shadowdom.dom")
}
