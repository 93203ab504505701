/*
Package style holds computed style properties of elements.

Properties are kept as raw strings, segmented into property groups (margins,
padding, border, …). A property map is the computed style of a single
element. Property maps are compared and cloned when elements share styles.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package style

import (
	"fmt"
	"sort"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'shadowdom.style'.
func tracer() tracing.Trace {
	return tracing.Select("shadowdom.style")
}

// Property is a raw value for a CSS property. For example, with
//
//     color: black
//
// a property value of "black" is set.
type Property string

// NullStyle is an empty property value.
const NullStyle Property = ""

func (p Property) String() string {
	return string(p)
}

// IsInitial denotes if a property is of inheritence-type "initial".
func (p Property) IsInitial() bool {
	return p == "initial"
}

// IsInherit denotes if a property is of inheritence-type "inherit".
func (p Property) IsInherit() bool {
	return p == "inherit"
}

// IsEmpty checks wether a property is empty, i.e. the null-string.
func (p Property) IsEmpty() bool {
	return p == ""
}

// KeyValue is a container for a style property.
type KeyValue struct {
	Key   string
	Value Property
}

// --- CSS Property Groups ----------------------------------------------

// PropertyGroup is a collection of propertes sharing a common topic.
// The mapping of property keys to groups is done by GroupNameFromPropertyKey.
type PropertyGroup struct {
	name      string
	Parent    *PropertyGroup
	propsDict map[string]Property
}

// NewPropertyGroup creates a new empty property group, given its name.
func NewPropertyGroup(groupname string) *PropertyGroup {
	return &PropertyGroup{name: groupname}
}

// Name returns the name of the property group.
func (pg *PropertyGroup) Name() string {
	return pg.name
}

func (pg *PropertyGroup) String() string {
	var sb strings.Builder
	sb.WriteString("[" + pg.name + "] =\n")
	for _, kv := range pg.Properties() {
		sb.WriteString(fmt.Sprintf("  %s = %s\n", kv.Key, kv.Value))
	}
	return sb.String()
}

// Properties returns all properties of a group, sorted by key.
func (pg *PropertyGroup) Properties() []KeyValue {
	r := make([]KeyValue, 0, len(pg.propsDict))
	for k, v := range pg.propsDict {
		r = append(r, KeyValue{k, v})
	}
	sort.Slice(r, func(i, j int) bool { return r[i].Key < r[j].Key })
	return r
}

// IsSet is a predicate wether a non-empty property is set within this group.
func (pg *PropertyGroup) IsSet(key string) bool {
	v, ok := pg.propsDict[key]
	return ok && !v.IsEmpty()
}

// Get a property's value.
func (pg *PropertyGroup) Get(key string) (Property, bool) {
	p, ok := pg.propsDict[key]
	return p, ok
}

// Set a property's value. Overwrites an existing value, if present.
// Style property values are always converted to lower case.
func (pg *PropertyGroup) Set(key string, p Property) {
	if pg.propsDict == nil {
		pg.propsDict = make(map[string]Property)
	}
	pg.propsDict[key] = Property(strings.ToLower(string(p)))
}

// Add a property's value, if it is not already set.
func (pg *PropertyGroup) Add(key string, p Property) {
	if _, exists := pg.propsDict[key]; !exists {
		pg.Set(key, p)
	}
}

// Cascade finds the ancesting PropertyGroup containing the given
// property-key, or nil.
func (pg *PropertyGroup) Cascade(key string) *PropertyGroup {
	it := pg
	for it != nil && !it.IsSet(key) {
		it = it.Parent
	}
	return it
}

func (pg *PropertyGroup) clone() *PropertyGroup {
	c := &PropertyGroup{name: pg.name, Parent: pg.Parent}
	if pg.propsDict != nil {
		c.propsDict = make(map[string]Property, len(pg.propsDict))
		for k, v := range pg.propsDict {
			c.propsDict[k] = v
		}
	}
	return c
}

func (pg *PropertyGroup) equals(other *PropertyGroup) bool {
	if len(pg.propsDict) != len(other.propsDict) {
		return false
	}
	for k, v := range pg.propsDict {
		if w, ok := other.propsDict[k]; !ok || v != w {
			return false
		}
	}
	return true
}

// GroupNameFromPropertyKey returns the style property group name for a
// style property.
// Example:
//    GroupNameFromPropertyKey("margin-top") => "Margins"
//
// Unknown style property keys will return a group name of "X".
func GroupNameFromPropertyKey(key string) string {
	if groupname, found := groupNameFromPropertyKey[key]; found {
		return groupname
	}
	return PGX
}

// Symbolic names for string literals, denoting PropertyGroups.
const (
	PGMargins   = "Margins"
	PGPadding   = "Padding"
	PGBorder    = "Border"
	PGDimension = "Dimension"
	PGDisplay   = "Display"
	PGColor     = "Color"
	PGText      = "Text"
	PGX         = "X"
)

var groupNameFromPropertyKey = map[string]string{
	"margin-top":                 PGMargins,
	"margin-left":                PGMargins,
	"margin-right":               PGMargins,
	"margin-bottom":              PGMargins,
	"padding-top":                PGPadding,
	"padding-left":               PGPadding,
	"padding-right":              PGPadding,
	"padding-bottom":             PGPadding,
	"border-top-color":           PGBorder,
	"border-left-color":          PGBorder,
	"border-right-color":         PGBorder,
	"border-bottom-color":        PGBorder,
	"border-top-width":           PGBorder,
	"border-left-width":          PGBorder,
	"border-right-width":         PGBorder,
	"border-bottom-width":        PGBorder,
	"border-top-style":           PGBorder,
	"border-left-style":          PGBorder,
	"border-right-style":         PGBorder,
	"border-bottom-style":        PGBorder,
	"border-top-left-radius":     PGBorder,
	"border-top-right-radius":    PGBorder,
	"border-bottom-left-radius":  PGBorder,
	"border-bottom-right-radius": PGBorder,
	"width":                      PGDimension,
	"height":                     PGDimension,
	"min-width":                  PGDimension,
	"min-height":                 PGDimension,
	"max-width":                  PGDimension,
	"max-height":                 PGDimension,
	"display":                    PGDisplay,
	"float":                      PGDisplay,
	"visibility":                 PGDisplay,
	"position":                   PGDisplay,
	"color":                      PGColor,
	"background-color":           PGColor,
	"direction":                  PGText,
	"white-space":                PGText,
	"word-spacing":               PGText,
	"letter-spacing":             PGText,
	"word-break":                 PGText,
	"word-wrap":                  PGText,
	"font-family":                PGText,
	"font-size":                  PGText,
	"font-weight":                PGText,
}

// IsCascading returns wether the standard behaviour for a propery is to be
// inherited or not.
func IsCascading(key string) bool {
	if strings.HasPrefix(key, "list-style") || strings.HasPrefix(key, "font-") {
		return true
	}
	switch key {
	case "color", "cursor", "direction", "letter-spacing", "line-height", "quotes",
		"visibility", "white-space", "word-spacing", "word-break", "word-wrap":
		return true
	}
	return false
}

// SplitCompoundProperty splits up a shortcut property into its individual
// components.
// Example:
//    SplitCompoundProperty("padding", "3px 4px")
// will return
//    "padding-top"    => "3px"
//    "padding-right"  => "4px"
//    "padding-bottom" => "3px"
//    "padding-left"   => "4px"
func SplitCompoundProperty(key string, value Property) ([]KeyValue, error) {
	fields := strings.Fields(value.String())
	switch key {
	case "margin":
		return splitCompound4("margin", "", fourDirs, fields)
	case "padding":
		return splitCompound4("padding", "", fourDirs, fields)
	case "border-color":
		return splitCompound4("border", "color", fourDirs, fields)
	case "border-width":
		return splitCompound4("border", "width", fourDirs, fields)
	case "border-style":
		return splitCompound4("border", "style", fourDirs, fields)
	case "border-radius":
		return splitCompound4("border", "radius", fourCorners, fields)
	}
	return nil, fmt.Errorf("not recognized as compound property: %s", key)
}

// IsCompoundProperty is a predicate for shortcut properties known to
// SplitCompoundProperty.
func IsCompoundProperty(key string) bool {
	switch key {
	case "margin", "padding", "border-color", "border-width", "border-style", "border-radius":
		return true
	}
	return false
}

// 1 value: all four; 2 values: vertical, horizontal; 3 values: top,
// horizontal, bottom; 4 values: clockwise from top.
func splitCompound4(pre string, suf string, dirs [4]string, fields []string) ([]KeyValue, error) {
	var v [4]string
	switch len(fields) {
	case 1:
		v = [4]string{fields[0], fields[0], fields[0], fields[0]}
	case 2:
		v = [4]string{fields[0], fields[1], fields[0], fields[1]}
	case 3:
		v = [4]string{fields[0], fields[1], fields[2], fields[1]}
	case 4:
		copy(v[:], fields)
	default:
		return nil, fmt.Errorf("expecting 1-4 values for %s", propertyKey(pre, suf, ""))
	}
	r := make([]KeyValue, 4)
	for i := range r {
		r[i] = KeyValue{propertyKey(pre, suf, dirs[i]), Property(v[i])}
	}
	return r, nil
}

var fourDirs = [4]string{"top", "right", "bottom", "left"}
var fourCorners = [4]string{"top-left", "top-right", "bottom-right", "bottom-left"}

func propertyKey(prefix string, suffix string, tag string) string {
	switch {
	case tag == "":
		return strings.TrimSuffix(prefix+"-"+suffix, "-")
	case suffix == "":
		return prefix + "-" + tag
	}
	return prefix + "-" + tag + "-" + suffix
}

// --- Property Map -----------------------------------------------------

// PropertyMap holds CSS properties. nil is a legal (empty) property map.
// A property map is the computed style of an element; it contains zero or
// more property groups.
type PropertyMap struct {
	m map[string]*PropertyGroup
}

// NewPropertyMap returns a new empty property map.
func NewPropertyMap() *PropertyMap {
	return &PropertyMap{m: make(map[string]*PropertyGroup)}
}

func (pmap *PropertyMap) String() string {
	var sb strings.Builder
	sb.WriteString("Property Map = {\n")
	for _, name := range pmap.GroupNames() {
		sb.WriteString(pmap.m[name].String())
	}
	sb.WriteString("}")
	return sb.String()
}

// Size returns the number of property groups.
func (pmap *PropertyMap) Size() int {
	if pmap == nil {
		return 0
	}
	return len(pmap.m)
}

// GroupNames returns the names of all groups, sorted.
func (pmap *PropertyMap) GroupNames() []string {
	if pmap == nil {
		return nil
	}
	names := make([]string, 0, len(pmap.m))
	for name := range pmap.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Group returns the property group for a group name or nil.
func (pmap *PropertyMap) Group(groupname string) *PropertyGroup {
	if pmap == nil {
		return nil
	}
	return pmap.m[groupname]
}

// Property returns a style property value, together with an indicator
// wether it has been found in the properties map.
// No cascading is performed.
func (pmap *PropertyMap) Property(key string) (Property, bool) {
	group := pmap.Group(GroupNameFromPropertyKey(key))
	if group == nil {
		return NullStyle, false
	}
	return group.Get(key)
}

// AddAllFromGroup transfers all style properties from a property group
// to a property map. If overwrite is set, existing style property values
// will be overwritten, otherwise only new values are set.
func (pmap *PropertyMap) AddAllFromGroup(group *PropertyGroup, overwrite bool) *PropertyMap {
	if pmap == nil {
		pmap = NewPropertyMap()
	}
	if pmap.m == nil {
		pmap.m = make(map[string]*PropertyGroup)
	}
	g := pmap.Group(group.name)
	if g == nil {
		pmap.m[group.name] = group
		return pmap
	}
	for k, v := range group.propsDict {
		if overwrite {
			g.Set(k, v)
		} else {
			g.Add(k, v)
		}
	}
	return pmap
}

// Set sets a property of this property map, overwriting an existing value,
// e.g.,
//
//    pm.Set("margin-top", "1em")
//
func (pmap *PropertyMap) Set(key string, value Property) {
	pmap.group(key).Set(key, value)
}

// Add adds a property to this property map, if it is not already set.
func (pmap *PropertyMap) Add(key string, value Property) {
	pmap.group(key).Add(key, value)
}

func (pmap *PropertyMap) group(key string) *PropertyGroup {
	if pmap.m == nil {
		pmap.m = make(map[string]*PropertyGroup)
	}
	groupname := GroupNameFromPropertyKey(key)
	group, found := pmap.m[groupname]
	if !found {
		group = NewPropertyGroup(groupname)
		pmap.m[groupname] = group
	}
	return group
}

// Clone creates a deep copy of a property map. Groups of the copy link to
// the same parent groups as the original.
func (pmap *PropertyMap) Clone() *PropertyMap {
	if pmap == nil {
		return nil
	}
	c := NewPropertyMap()
	for name, g := range pmap.m {
		c.m[name] = g.clone()
	}
	return c
}

// Equals is a predicate: do two property maps hold the same properties?
// Parent links of groups are not considered.
func (pmap *PropertyMap) Equals(other *PropertyMap) bool {
	if pmap.Size() != other.Size() {
		return false
	}
	for name, g := range pmap.m {
		o := other.Group(name)
		if o == nil || !g.equals(o) {
			return false
		}
	}
	return true
}
