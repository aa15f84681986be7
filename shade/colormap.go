package shade

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// A Colormap is a sequence of colors, interpolated linearly in RGB space
type Colormap []color.RGBA

// Fire runs from black through red and yellow to white
var Fire = mustParseColormap("#000000", "#4b0000", "#8a0000", "#c51a00", "#ef4c00", "#ff7f00", "#ffae1a", "#ffd85c", "#fff3a8", "#ffffff")

// Viridis is the perceptually uniform matplotlib colormap
var Viridis = mustParseColormap("#440154", "#482878", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725")

// Gray runs from black to white
var Gray = mustParseColormap("#000000", "#ffffff")

// Blues runs from near-white to dark blue
var Blues = mustParseColormap("#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b")

// ColormapByName returns a named Colormap: fire, viridis, gray or blues
func ColormapByName(name string) (Colormap, error) {
	switch strings.ToLower(name) {
	case "fire", "":
		return Fire, nil
	case "viridis":
		return Viridis, nil
	case "gray", "grey":
		return Gray, nil
	case "blues":
		return Blues, nil
	default:
		return nil, fmt.Errorf("unknown colormap %q", name)
	}
}

// ParseColormap builds a Colormap from hex colors (#rrggbb)
func ParseColormap(hexes ...string) (Colormap, error) {
	if len(hexes) < 2 {
		return nil, fmt.Errorf("a colormap needs at least two colors")
	}
	cmap := make(Colormap, len(hexes))
	for i, h := range hexes {
		c, err := parseHex(h)
		if err != nil {
			return nil, err
		}
		cmap[i] = c
	}
	return cmap, nil
}

func mustParseColormap(hexes ...string) Colormap {
	cmap, err := ParseColormap(hexes...)
	if err != nil {
		panic(err)
	}
	return cmap
}

// ParseColor parses a #rrggbb color
func ParseColor(h string) (color.RGBA, error) {
	return parseHex(h)
}

func parseHex(h string) (color.RGBA, error) {
	h = strings.TrimPrefix(h, "#")
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("%q is not a #rrggbb color", h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%q is not a #rrggbb color: %w", h, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// At returns the color at position t in [0, 1]
func (cm Colormap) At(t float64) color.RGBA {
	if t <= 0 || math.IsNaN(t) {
		return cm[0]
	}
	if t >= 1 {
		return cm[len(cm)-1]
	}
	pos := t * float64(len(cm)-1)
	i := int(pos)
	frac := pos - float64(i)
	a, b := cm[i], cm[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*frac))
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 0xff}
}
