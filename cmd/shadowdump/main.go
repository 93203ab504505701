/*
Command shadowdump loads an HTML document with declarative shadow roots,
distributes and styles it, and prints what the engine sees.

Usage:

    shadowdump [--config file] [--css file]... <command> <document.html> [args]

Commands are

    tree        print the light tree or the composed tree
    dist        print the distribution of every insertion point
    rules       print the rules matching the elements selected by a selector
    invalidate  change an attribute or a state and report the work done
    path        print the event path for an event fired at an element
    dot         write the styled composed tree in GraphViz format

<style> elements of the document are applied to the tree scope they are
found in. Stylesheets given with --css apply to the document.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "shadowdump: %v\n", err)
		os.Exit(1)
	}
}
