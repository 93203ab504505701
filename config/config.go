/*
Package config loads the configuration of the shadow DOM engine.

Configuration files are YAML. Nested keys are addressed with '.', e.g.

    engine:
      fastpath: true
      media: print
      scoped-events: [load, error]
    trace:
      root: Error
      shadowdom.invalidation: Debug

is read as keys "engine.fastpath", "engine.media", etc. Lists are flattened
into comma separated strings. Configurations implement
schuko.Configuration and may therefore be used to configure tracing.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/schukonf/koanfadapter"
	"github.com/npillmayer/schuko/tracing"
	"gopkg.in/yaml.v3"
)

// tracer traces with key 'shadowdom.config'.
func tracer() tracing.Trace {
	return tracing.Select("shadowdom.config")
}

// Configuration keys.
const (
	KeyFastPath     = "engine.fastpath"
	KeyMedia        = "engine.media"
	KeyScopedEvents = "engine.scoped-events"
	KeyTraceAdapter = "tracing.adapter"
	KeyTraceRoot    = "trace.root"
	TracePrefix     = "trace"
)

var defaults = map[string]interface{}{
	KeyTraceAdapter: "go",
	KeyTraceRoot:    "Error",
	KeyFastPath:     true,
	KeyMedia:        "screen",
}

// Default returns a configuration holding default values only.
func Default() *koanfadapter.KConf {
	conf := koanfadapter.New(nil, "", nil)
	conf.InitDefaults()
	k := conf.Koanf()
	if err := k.Load(confmap.Provider(defaults, k.Delim()), nil); err != nil {
		tracer().Errorf("cannot load configuration defaults: %v", err)
	}
	return conf
}

// Load reads a YAML configuration file. Values not set in the file have
// their default value.
func Load(path string) (*koanfadapter.KConf, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read reads a YAML configuration. Values not set have their default value.
func Read(r io.Reader) (*koanfadapter.KConf, error) {
	var values map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, fmt.Errorf("cannot decode configuration: %w", err)
	}
	conf := Default()
	k := conf.Koanf()
	if err := k.Load(confmap.Provider(flatten("", values, nil), k.Delim()), nil); err != nil {
		return nil, err
	}
	tracer().Debugf("configuration loaded with %d keys", len(k.Keys()))
	return conf, nil
}

// flatten turns nested maps into dotted keys and lists into comma
// separated strings.
func flatten(prefix string, values map[string]interface{}, into map[string]interface{}) map[string]interface{} {
	if into == nil {
		into = make(map[string]interface{}, len(values))
	}
	for key, v := range values {
		if prefix != "" {
			key = prefix + "." + key
		}
		switch x := v.(type) {
		case map[string]interface{}:
			flatten(key, x, into)
		case []interface{}:
			items := make([]string, len(x))
			for i, item := range x {
				items[i] = fmt.Sprintf("%v", item)
			}
			into[key] = strings.Join(items, ",")
		default:
			into[key] = v
		}
	}
	return into
}

// Options are the settings of the engine.
type Options struct {
	FastPath     bool     // use the stylesheet fast path for invalidation
	Media        string   // media type to evaluate @media rules with
	ScopedEvents []string // events which do not leave a shadow tree; nil for the default list
}

// DefaultOptions returns the options for a default configuration.
func DefaultOptions() Options {
	return Options{FastPath: true, Media: "screen"}
}

// OptionsFrom reads the engine options from a configuration. Keys not set
// have their default value.
func OptionsFrom(conf schuko.Configuration) Options {
	opts := DefaultOptions()
	if conf == nil {
		return opts
	}
	if conf.IsSet(KeyFastPath) {
		opts.FastPath = conf.GetBool(KeyFastPath)
	}
	if m := conf.GetString(KeyMedia); m != "" {
		opts.Media = strings.ToLower(m)
	}
	if conf.IsSet(KeyScopedEvents) {
		opts.ScopedEvents = splitList(conf.GetString(KeyScopedEvents))
	}
	return opts
}

func splitList(s string) []string {
	s = strings.Trim(s, "[]")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
	list := make([]string, 0, len(fields))
	for _, f := range fields {
		list = append(list, strings.ToLower(f))
	}
	return list
}
