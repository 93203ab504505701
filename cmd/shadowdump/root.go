package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/npillmayer/shadowdom/config"
	"github.com/npillmayer/shadowdom/dom"
	"github.com/npillmayer/shadowdom/dom/style/cssom/douceuradapter"
	"github.com/npillmayer/shadowdom/engine"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// rootOptions holds the global flags of all commands.
type rootOptions struct {
	configPath string
	css        []string
	trace      string // trace level of the root tracer; empty to use the configuration
	conf       schuko.Configuration
}

func (o *rootOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.configPath, "config", "c", "", "YAML configuration file")
	fs.StringArrayVar(&o.css, "css", nil, "stylesheet to apply to the document (repeatable)")
	fs.StringVar(&o.trace, "trace", "", "trace level (Debug|Info|Error)")
}

// configure loads the configuration and sets up tracing.
func (o *rootOptions) configure() error {
	conf := config.Default()
	if o.configPath != "" {
		var err error
		if conf, err = config.Load(o.configPath); err != nil {
			return err
		}
	}
	if o.trace != "" {
		conf.Set(config.KeyTraceRoot, o.trace)
	}
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	if err := trace2go.ConfigureRoot(conf, config.TracePrefix, trace2go.ReplaceTracers(true)); err != nil {
		return fmt.Errorf("cannot configure tracing: %w", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	o.conf = conf
	return nil
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "shadowdump",
		Short: "Inspect distribution, styling and events of shadow trees",
		Long: `shadowdump reads an HTML document with declarative shadow roots
(<template shadowroot>), distributes light children to insertion points,
styles the composed tree and prints the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.configure()
		},
	}
	opts.addFlags(cmd.PersistentFlags())
	cmd.AddCommand(newTreeCommand(opts))
	cmd.AddCommand(newDistCommand(opts))
	cmd.AddCommand(newRulesCommand(opts))
	cmd.AddCommand(newInvalidateCommand(opts))
	cmd.AddCommand(newPathCommand(opts))
	cmd.AddCommand(newDotCommand(opts))
	return cmd
}

// load parses a document, adds all stylesheets and brings the styles up to
// date.
func (o *rootOptions) load(path string) (*engine.Engine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := dom.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	e := engine.New(doc, config.OptionsFrom(o.conf))
	for _, el := range doc.ShadowIncludingElements(doc.Root()) {
		if doc.TagName(el) != "style" {
			continue
		}
		if err := addStyleSheet(e, styleText(doc, el), el); err != nil {
			return nil, fmt.Errorf("<style> in %s: %w", path, err)
		}
	}
	for _, css := range o.css {
		text, err := os.ReadFile(css)
		if err != nil {
			return nil, err
		}
		if err := addStyleSheet(e, string(text), dom.Null); err != nil {
			return nil, fmt.Errorf("%s: %w", css, err)
		}
	}
	e.UpdateStyle()
	return e, nil
}

func styleText(doc *dom.Document, el dom.Handle) string {
	var b strings.Builder
	for _, c := range doc.Children(el) {
		if doc.Kind(c) == dom.TextNode {
			b.WriteString(doc.Text(c))
		}
	}
	return b.String()
}

func addStyleSheet(e *engine.Engine, text string, owner dom.Handle) error {
	sheet, err := douceuradapter.Parse(text)
	if err != nil {
		return err
	}
	_, err = e.AddStyleSheet(sheet, owner)
	return err
}
