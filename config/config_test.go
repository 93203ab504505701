package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.config")
	defer teardown()
	//
	conf := Default()
	assert.Equal(t, "go", conf.GetString(KeyTraceAdapter))
	assert.True(t, conf.GetBool(KeyFastPath))
	opts := OptionsFrom(conf)
	assert.Equal(t, DefaultOptions(), opts)
	assert.Nil(t, opts.ScopedEvents)
	assert.Equal(t, DefaultOptions(), OptionsFrom(nil))
}

const yamlConf = `
engine:
  fastpath: false
  media: Print
  scoped-events: [load, Error]
trace:
  shadowdom.invalidation: Debug
`

func TestReadYAML(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.config")
	defer teardown()
	//
	conf, err := Read(strings.NewReader(yamlConf))
	require.NoError(t, err)
	assert.Equal(t, "Debug", conf.GetString("trace.shadowdom.invalidation"))
	assert.Equal(t, "Error", conf.GetString(KeyTraceRoot), "default is kept")
	opts := OptionsFrom(conf)
	assert.False(t, opts.FastPath)
	assert.Equal(t, "print", opts.Media)
	assert.Equal(t, []string{"load", "error"}, opts.ScopedEvents)
	_, err = Read(strings.NewReader("engine: [unbalanced"))
	assert.Error(t, err)
	conf, err = Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.True(t, OptionsFrom(conf).FastPath)
}

func TestLoadFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shadowdom.config")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "shadowdump.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlConf), 0o600))
	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "print", OptionsFrom(conf).Media)
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestOptionsFromTestConfig(t *testing.T) {
	conf := testconfig.Conf{
		KeyFastPath:     "false",
		KeyScopedEvents: "custom, load",
	}
	opts := OptionsFrom(conf)
	assert.False(t, opts.FastPath)
	assert.Equal(t, "screen", opts.Media)
	assert.Equal(t, []string{"custom", "load"}, opts.ScopedEvents)
}
