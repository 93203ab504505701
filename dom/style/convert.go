package style

import (
	"fmt"
	"image/color"
	"strconv"
)

var namedColors = map[Property]color.RGBA{
	"black":  {0, 0, 0, 0xff},
	"white":  {0xff, 0xff, 0xff, 0xff},
	"red":    {0xff, 0, 0, 0xff},
	"green":  {0, 0x80, 0, 0xff},
	"lime":   {0, 0xff, 0, 0xff},
	"blue":   {0, 0, 0xff, 0xff},
	"yellow": {0xff, 0xff, 0, 0xff},
	"orange": {0xff, 0xa5, 0, 0xff},
	"purple": {0x80, 0, 0x80, 0xff},
	"gray":   {0x80, 0x80, 0x80, 0xff},
	"grey":   {0x80, 0x80, 0x80, 0xff},
	"silver": {0xc0, 0xc0, 0xc0, 0xff},
	"navy":   {0, 0, 0x80, 0xff},
	"teal":   {0, 0x80, 0x80, 0xff},
}

// Color interprets a property as a color. Named colors and hex notation
// (#rgb and #rrggbb) are understood. It returns nil for "default",
// "transparent", and for values which are not colors.
func (p Property) Color() color.Color {
	if c, ok := namedColors[p]; ok {
		return c
	}
	s := string(p)
	if len(s) == 0 || s[0] != '#' {
		return nil
	}
	s = s[1:]
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return nil
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}
}

// ColorString returns a color in hex notation #rrggbb, usable for CSS and
// for GraphViz. A nil color is returned as "none".
func ColorString(c color.Color) string {
	if c == nil {
		return "none"
	}
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
