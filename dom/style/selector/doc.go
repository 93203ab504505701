/*
Package selector holds compiled CSS selectors.

Overview

A selector list like

    div.note > p, :host(.dark) #title

is compiled into a List of Complex selectors. Every Complex selector is a
chain of Compound selectors, connected by combinators. A Compound selector
is a sequence of Simple selectors which all have to match the same node.

Simple selectors form a closed set of variants: Tag, Universal, ID, Class,
Attribute and PseudoClass. Clients switch over the concrete type:

    switch s := simple.(type) {
    case selector.Class:
        ...
    case selector.PseudoClass:
        ...
    }

Compiled lists are immutable and are shared by reference between style rules
and insertion point filters.

Only descendant and child combinators are supported. Sibling combinators and
pseudo-elements are rejected with ErrUnsupported.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package selector

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'shadowdom.selector'.
func tracer() tracing.Trace {
	return tracing.Select("shadowdom.selector")
}
