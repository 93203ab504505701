package style

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyMapAddAndSet(t *testing.T) {
	var pmap PropertyMap // zero value must be usable
	pmap.Add("margin-top", "1EM")
	pmap.Add("margin-top", "2em")
	p, _ := pmap.Property("margin-top")
	assert.Equal(t, Property("1em"), p, "Add does not overwrite")
	pmap.Set("margin-top", "2em")
	p, _ = pmap.Property("margin-top")
	assert.Equal(t, Property("2em"), p)
	pmap.Set("funny-margin", "big")
	assert.NotNil(t, pmap.Group(PGX), "unknown property goes to group X")
	assert.Equal(t, 2, pmap.Size())
}

func TestPropertyMapCloneEquals(t *testing.T) {
	pmap := NewPropertyMap()
	pmap.Set("color", "red")
	pmap.Set("padding-left", "3px")
	c := pmap.Clone()
	require.True(t, pmap.Equals(c))
	c.Set("color", "blue")
	assert.False(t, pmap.Equals(c))
	p, _ := pmap.Property("color")
	assert.Equal(t, Property("red"), p, "original is unaffected")
	var none *PropertyMap
	assert.True(t, none.Equals(NewPropertyMap()), "nil map equals an empty map")
}

func TestAddAllFromGroup(t *testing.T) {
	g := NewPropertyGroup(PGMargins)
	g.Set("margin-top", "1px")
	g.Set("margin-left", "2px")
	pmap := NewPropertyMap()
	pmap.Set("margin-top", "5px")
	pmap.AddAllFromGroup(g, false)
	p, _ := pmap.Property("margin-top")
	assert.Equal(t, Property("5px"), p, "existing value is kept")
	p, _ = pmap.Property("margin-left")
	assert.Equal(t, Property("2px"), p)
	pmap.AddAllFromGroup(g, true)
	p, _ = pmap.Property("margin-top")
	assert.Equal(t, Property("1px"), p, "existing value is overwritten")
	var none *PropertyMap
	assert.NotNil(t, none.AddAllFromGroup(g, true).Group(PGMargins))
}

func TestCascade(t *testing.T) {
	parent := NewPropertyGroup(PGColor)
	parent.Set("color", "navy")
	child := NewPropertyGroup(PGColor)
	child.Parent = parent
	child.Set("background-color", "white")
	assert.Same(t, child, child.Cascade("background-color"))
	assert.Same(t, parent, child.Cascade("color"))
	assert.Nil(t, child.Cascade("border-top-color"))
	var none *PropertyGroup
	assert.Nil(t, none.Cascade("color"))
	assert.True(t, Property("initial").IsInitial())
	assert.False(t, Property("inherit").IsInitial())
}

func TestSplitCompoundProperty(t *testing.T) {
	kv, err := SplitCompoundProperty("padding", "1px 2px 3px")
	require.NoError(t, err)
	assert.Equal(t, []KeyValue{
		{"padding-top", "1px"}, {"padding-right", "2px"},
		{"padding-bottom", "3px"}, {"padding-left", "2px"},
	}, kv)
	kv, _ = SplitCompoundProperty("border-radius", "4px")
	assert.Equal(t, "border-top-left-radius", kv[0].Key)
	_, err = SplitCompoundProperty("margin", "1 2 3 4 5")
	assert.Error(t, err, "5 values are too many")
	_, err = SplitCompoundProperty("color", "red")
	assert.Error(t, err, "color is not a compound property")
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, Property("none"), UserAgentDefault("content", "display"), "insertion points are not displayed")
	assert.Equal(t, Property("auto"), UserAgentDefault("div", "width"))
	init := InitialValues([]KeyValue{{"x-custom", "1"}})
	p, _ := init.Property("direction")
	assert.Equal(t, Property("ltr"), p)
	p, _ = init.Property("x-custom")
	assert.Equal(t, Property("1"), p, "extension property")
	assert.NotNil(t, init.Group(PGColor).Cascade("color"))
	assert.Nil(t, init.Group(PGX).Cascade("x-unknown"), "cascade ends at the root group")
}

func TestColors(t *testing.T) {
	assert.Equal(t, color.RGBA{0xff, 0, 0, 0xff}, Property("#f00").Color())
	assert.Equal(t, "#008080", ColorString(Property("teal").Color()))
	assert.Nil(t, Property("transparent").Color())
	assert.Equal(t, "none", ColorString(nil))
}
