package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/npillmayer/shadowdom/dom"
	"github.com/npillmayer/shadowdom/dom/domdbg"
	"github.com/npillmayer/shadowdom/dom/event"
	"github.com/npillmayer/shadowdom/dom/style/cssom"
	"github.com/npillmayer/shadowdom/engine"
	"github.com/spf13/cobra"
)

func newTreeCommand(opts *rootOptions) *cobra.Command {
	var light bool
	cmd := &cobra.Command{
		Use:   "tree <document>",
		Short: "Print the composed tree of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(args[0])
			if err != nil {
				return err
			}
			doc := e.Document()
			if light {
				fmt.Fprint(cmd.OutOrStdout(), domdbg.LightTree(doc, doc.Root()))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), domdbg.ComposedTree(e.Walker(), doc.Root()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&light, "light", false, "print the light tree including shadow roots")
	return cmd
}

func newDistCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dist <document>",
		Short: "Print the distribution of every insertion point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(args[0])
			if err != nil {
				return err
			}
			domdbg.Distributions(e.Document(), cmd.OutOrStdout())
			return nil
		},
	}
}

func newRulesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules <document> <selector>",
		Short: "Print the rules matching the selected elements",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(args[0])
			if err != nil {
				return err
			}
			els, err := e.QuerySelectorAll(args[1])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, el := range els {
				fmt.Fprintln(w, domdbg.Label(e.Document(), el))
				for _, r := range e.MatchingRules(el) {
					fmt.Fprintf(w, "    %-32s %v  { %s}\n", r.Selector, r.Selector.Specificity(), declarations(r.Decl))
				}
			}
			return nil
		},
	}
}

func declarations(decl cssom.Rule) string {
	if decl == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range decl.Properties() {
		fmt.Fprintf(&b, "%s: %s; ", p, decl.Value(p))
	}
	return b.String()
}

type mutations struct {
	class                string
	set                  []string
	remove               []string
	hover, focus, active bool
}

func (m mutations) apply(e *engine.Engine, el dom.Handle) error {
	if m.class != "" {
		if err := e.SetAttribute(el, "class", m.class); err != nil {
			return err
		}
	}
	for _, kv := range m.set {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("attribute setting %q is not of form name=value", kv)
		}
		if err := e.SetAttribute(el, name, value); err != nil {
			return err
		}
	}
	for _, name := range m.remove {
		if _, err := e.RemoveAttribute(el, name); err != nil {
			return err
		}
	}
	if m.hover {
		e.SetHovered(el, true)
	}
	if m.focus {
		e.SetFocused(el, true)
	}
	if m.active {
		e.SetActive(el, true)
	}
	return nil
}

func newInvalidateCommand(opts *rootOptions) *cobra.Command {
	var m mutations
	cmd := &cobra.Command{
		Use:   "invalidate <document> <selector>",
		Short: "Change the selected elements and report the restyling work",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(args[0])
			if err != nil {
				return err
			}
			els, err := e.QuerySelectorAll(args[1])
			if err != nil {
				return err
			}
			for _, el := range els {
				if err := m.apply(e, el); err != nil {
					return err
				}
			}
			s := e.UpdateStyle()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "elements changed:     %d\n", len(els))
			fmt.Fprintf(w, "hosts distributed:    %d (%d attached, %d detached)\n",
				s.Distribution.Hosts, s.Distribution.Attached, s.Distribution.Detached)
			fmt.Fprintf(w, "nodes visited:        %d\n", s.Invalidation.Visited)
			fmt.Fprintf(w, "nodes invalidated:    %d\n", s.Invalidation.Dirtied)
			fmt.Fprintf(w, "elements restyled:    %d\n", s.Recalculated)
			return nil
		},
	}
	cmd.Flags().StringVar(&m.class, "class", "", "set the class attribute")
	cmd.Flags().StringArrayVar(&m.set, "set", nil, "set an attribute, name=value (repeatable)")
	cmd.Flags().StringArrayVar(&m.remove, "remove", nil, "remove an attribute (repeatable)")
	cmd.Flags().BoolVar(&m.hover, "hover", false, "set the hover state")
	cmd.Flags().BoolVar(&m.focus, "focus", false, "set the focus state")
	cmd.Flags().BoolVar(&m.active, "active", false, "set the active state")
	return cmd
}

func newPathCommand(opts *rootOptions) *cobra.Command {
	var typ, related string
	cmd := &cobra.Command{
		Use:   "path <document> <selector>",
		Short: "Print the event path for an event fired at the first selected element",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(args[0])
			if err != nil {
				return err
			}
			target, err := first(e, args[1])
			if err != nil {
				return err
			}
			ev := &event.Event{Type: typ}
			if related != "" {
				if ev.RelatedTarget, err = first(e, related); err != nil {
					return err
				}
			}
			doc := e.Document()
			w := cmd.OutOrStdout()
			for _, entry := range e.ComposedPath(target, ev).Entries() {
				fmt.Fprintf(w, "%-30s target=%s", domdbg.Label(doc, entry.Node), domdbg.Label(doc, entry.Target))
				if entry.RelatedTarget != dom.Null {
					fmt.Fprintf(w, " related=%s", domdbg.Label(doc, entry.RelatedTarget))
				}
				fmt.Fprintln(w)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "event", "click", "event type")
	cmd.Flags().StringVar(&related, "related", "", "selector for the related target")
	return cmd
}

func first(e *engine.Engine, sel string) (dom.Handle, error) {
	els, err := e.QuerySelectorAll(sel)
	if err != nil {
		return dom.Null, err
	}
	if len(els) == 0 {
		return dom.Null, fmt.Errorf("no element matches %q", sel)
	}
	return els[0], nil
}

func newDotCommand(opts *rootOptions) *cobra.Command {
	var output string
	var groups []string
	cmd := &cobra.Command{
		Use:   "dot <document>",
		Short: "Write the styled tree in GraphViz DOT format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(args[0])
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			doc := e.Document()
			domdbg.ToGraphViz(doc.W3C(doc.Root()), e, w, groups)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringSliceVar(&groups, "groups", nil, "property groups to draw")
	return cmd
}
