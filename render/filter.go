package render

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorFilter transforms a single pixel colour. Filters run before alpha
// compositing and must not retain the input.
type ColorFilter func(color.Color) color.Color

// Chain composes filters left to right, skipping nil entries. It returns
// nil when no non-nil filter remains, so callers can assign the result
// directly to Options.Filter.
func Chain(filters ...ColorFilter) ColorFilter {
	active := make([]ColorFilter, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			active = append(active, f)
		}
	}
	if len(active) == 0 {
		return nil
	}
	if len(active) == 1 {
		return active[0]
	}
	return func(c color.Color) color.Color {
		for _, f := range active {
			c = f(c)
		}
		return c
	}
}

// Grayscale converts pixels to their perceptual luminance.
func Grayscale() ColorFilter {
	return func(c color.Color) color.Color {
		r, g, b, a := c.RGBA()
		y := uint16(0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b))
		return color.RGBA64{R: y, G: y, B: y, A: uint16(a)}
	}
}

// Sepia applies the classic warm-brown matrix.
func Sepia() ColorFilter {
	return func(c color.Color) color.Color {
		r, g, b, a := c.RGBA()
		rf, gf, bf := float64(r), float64(g), float64(b)
		return color.RGBA64{
			R: clamp16(0.393*rf + 0.769*gf + 0.189*bf),
			G: clamp16(0.349*rf + 0.686*gf + 0.168*bf),
			B: clamp16(0.272*rf + 0.534*gf + 0.131*bf),
			A: uint16(a),
		}
	}
}

// Invert flips each channel.
func Invert() ColorFilter {
	return func(c color.Color) color.Color {
		r, g, b, a := c.RGBA()
		return color.RGBA64{
			R: uint16(0xffff - r),
			G: uint16(0xffff - g),
			B: uint16(0xffff - b),
			A: uint16(a),
		}
	}
}

// Tint blends every pixel towards the given colour in Lab space.
// Strength is clamped to [0, 1]; 0 leaves the image untouched.
func Tint(tint color.Color, strength float64) ColorFilter {
	if strength <= 0 {
		return nil
	}
	if strength > 1 {
		strength = 1
	}
	target, ok := colorful.MakeColor(tint)
	if !ok {
		return nil
	}
	return func(c color.Color) color.Color {
		src, ok := colorful.MakeColor(c)
		if !ok {
			return c
		}
		_, _, _, a := c.RGBA()
		blended := src.BlendLab(target, strength).Clamped()
		r, g, b := blended.RGB255()
		return color.RGBA64{
			R: uint16(r) * 0x101,
			G: uint16(g) * 0x101,
			B: uint16(b) * 0x101,
			A: uint16(a),
		}
	}
}

func clamp16(v float64) uint16 {
	if v > 0xffff {
		return 0xffff
	}
	if v < 0 {
		return 0
	}
	return uint16(v)
}
