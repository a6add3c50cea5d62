// Package render rasterises decoded images into styled terminal cells.
//
// The default mode draws two vertical pixels per cell using the upper
// half-block glyph, with the top pixel as the foreground colour and the
// bottom pixel as the background colour. An ASCII mode substitutes a
// luminance ramp for terminals without unicode support.
package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xdraw "golang.org/x/image/draw"
)

// ScaleMode controls how an image maps onto the target cell box.
type ScaleMode string

const (
	// ScaleFit scales the image to fit entirely inside the box,
	// preserving aspect ratio.
	ScaleFit ScaleMode = "fit"
	// ScaleFill scales the image to cover the box, preserving aspect
	// ratio and cropping the overflow around the centre.
	ScaleFill ScaleMode = "fill"
	// ScaleStretch distorts the image to exactly the box dimensions.
	ScaleStretch ScaleMode = "stretch"
	// ScaleOriginal performs no scaling and centre-crops to the box.
	ScaleOriginal ScaleMode = "original"
)

// Quality selects the interpolator used when scaling.
type Quality string

const (
	QualityLow  Quality = "low"
	QualityHigh Quality = "high"
)

const halfBlock = "▀"

// asciiRamp orders glyphs from dark to bright for the ASCII fallback.
const asciiRamp = " .:-=+*#%@"

// Options configures a rasterisation pass.
type Options struct {
	// Width and Height are the target box in terminal cells. Both must be
	// positive for Render to produce output.
	Width  int
	Height int

	Scale   ScaleMode
	Quality Quality

	// AlignX and AlignY position the drawn image inside the box when it
	// does not cover it (lipgloss positions, 0 = start, 0.5 = centre,
	// 1 = end). The zero value anchors top-left.
	AlignX lipgloss.Position
	AlignY lipgloss.Position

	// Alpha multiplies pixel opacity before compositing; values outside
	// (0, 1] are treated as fully opaque.
	Alpha float64

	// Filter transforms each pixel colour before compositing, if set.
	Filter ColorFilter

	// Background is the colour translucent pixels composite over.
	// Nil means black.
	Background color.Color

	// ASCII switches to the luminance-ramp renderer.
	ASCII bool
}

// AspectHeight returns the number of terminal rows that preserve the image
// aspect ratio at the given cell width, assuming half-block rendering
// (two pixels per row). The result is always at least 1 for a non-empty
// image.
func AspectHeight(bounds image.Rectangle, width int) int {
	iw, ih := bounds.Dx(), bounds.Dy()
	if iw <= 0 || ih <= 0 || width <= 0 {
		return 0
	}
	rows := (ih*width + iw - 1) / (iw * 2)
	if rows < 1 {
		rows = 1
	}
	return rows
}

// Render rasterises img into a lipgloss-styled string occupying
// o.Width x o.Height terminal cells. It returns "" when img is nil or the
// box is empty.
func Render(img image.Image, o Options) string {
	if img == nil || o.Width <= 0 || o.Height <= 0 {
		return ""
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return ""
	}

	// Two pixel rows per cell row keeps the terminal cell aspect correct
	// for both renderers; ASCII averages the vertical pair.
	boxW, boxH := o.Width, o.Height*2
	scaled := scaleToBox(img, boxW, boxH, o.Scale, interpolator(o.Quality))
	if scaled == nil {
		return ""
	}
	composited := composite(scaled, o)

	var content string
	if o.ASCII {
		content = rasteriseASCII(composited)
	} else {
		content = rasteriseHalfBlocks(composited)
	}

	return lipgloss.Place(o.Width, o.Height, o.AlignX, o.AlignY, content)
}

func interpolator(q Quality) xdraw.Interpolator {
	if q == QualityHigh {
		return xdraw.CatmullRom
	}
	return xdraw.ApproxBiLinear
}

// scaleToBox produces an RGBA image no larger than boxW x boxH pixels
// according to the scale mode.
func scaleToBox(img image.Image, boxW, boxH int, mode ScaleMode, interp xdraw.Interpolator) *image.RGBA {
	bounds := img.Bounds()
	iw, ih := bounds.Dx(), bounds.Dy()

	switch mode {
	case ScaleStretch:
		dst := image.NewRGBA(image.Rect(0, 0, boxW, boxH))
		interp.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
		return dst

	case ScaleOriginal:
		cw, ch := iw, ih
		if cw > boxW {
			cw = boxW
		}
		if ch > boxH {
			ch = boxH
		}
		ox := bounds.Min.X + (iw-cw)/2
		oy := bounds.Min.Y + (ih-ch)/2
		dst := image.NewRGBA(image.Rect(0, 0, cw, ch))
		xdraw.Draw(dst, dst.Bounds(), img, image.Pt(ox, oy), xdraw.Src)
		return dst

	case ScaleFill:
		// Scale to cover, then centre-crop.
		sw, sh := coverSize(iw, ih, boxW, boxH)
		full := image.NewRGBA(image.Rect(0, 0, sw, sh))
		interp.Scale(full, full.Bounds(), img, bounds, xdraw.Src, nil)
		dst := image.NewRGBA(image.Rect(0, 0, boxW, boxH))
		xdraw.Draw(dst, dst.Bounds(), full, image.Pt((sw-boxW)/2, (sh-boxH)/2), xdraw.Src)
		return dst

	default: // ScaleFit and unspecified
		sw, sh := containSize(iw, ih, boxW, boxH)
		dst := image.NewRGBA(image.Rect(0, 0, sw, sh))
		interp.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
		return dst
	}
}

// containSize scales (iw, ih) to the largest size that fits inside
// (boxW, boxH) while preserving aspect ratio.
func containSize(iw, ih, boxW, boxH int) (int, int) {
	w := boxW
	h := ih * boxW / iw
	if h > boxH {
		h = boxH
		w = iw * boxH / ih
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// coverSize scales (iw, ih) to the smallest size that covers (boxW, boxH)
// while preserving aspect ratio.
func coverSize(iw, ih, boxW, boxH int) (int, int) {
	w := boxW
	h := (ih*boxW + iw - 1) / iw
	if h < boxH {
		h = boxH
		w = (iw*boxH + ih - 1) / ih
	}
	if w < boxW {
		w = boxW
	}
	return w, h
}

// composite applies the colour filter and alpha blend over the background,
// returning an opaque image.
func composite(src *image.RGBA, o Options) *image.RGBA {
	alpha := o.Alpha
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	bg := o.Background
	if bg == nil {
		bg = color.Black
	}
	br, bgreen, bb, _ := bg.RGBA()

	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			var c color.Color = src.RGBAAt(x, y)
			if o.Filter != nil {
				c = o.Filter(c)
			}
			r, g, b, a := c.RGBA()
			af := float64(a) / 0xffff * alpha
			blend := func(fg, bgc uint32) uint8 {
				return uint8((float64(fg)*af + float64(bgc)*(1-af)) / 0xffff * 0xff)
			}
			dst.SetRGBA(x, y, color.RGBA{
				R: blend(r, br),
				G: blend(g, bgreen),
				B: blend(b, bb),
				A: 0xff,
			})
		}
	}
	return dst
}

// rasteriseHalfBlocks draws two pixel rows per cell row, merging runs of
// identical colour pairs into a single styled segment.
func rasteriseHalfBlocks(img *image.RGBA) string {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	rows := (h + 1) / 2

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		var (
			runFg, runBg string
			runLen       int
		)
		flush := func() {
			if runLen == 0 {
				return
			}
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(runFg)).
				Background(lipgloss.Color(runBg))
			sb.WriteString(style.Render(strings.Repeat(halfBlock, runLen)))
			runLen = 0
		}
		for x := 0; x < w; x++ {
			top := img.RGBAAt(bounds.Min.X+x, bounds.Min.Y+row*2)
			bottom := top
			if row*2+1 < h {
				bottom = img.RGBAAt(bounds.Min.X+x, bounds.Min.Y+row*2+1)
			}
			fg, bg := hexColor(top), hexColor(bottom)
			if runLen > 0 && (fg != runFg || bg != runBg) {
				flush()
			}
			runFg, runBg = fg, bg
			runLen++
		}
		flush()
	}
	return sb.String()
}

// rasteriseASCII maps the average luminance of each vertical pixel pair to
// a ramp glyph.
func rasteriseASCII(img *image.RGBA) string {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	rows := (h + 1) / 2
	ramp := []byte(asciiRamp)

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < w; x++ {
			top := img.RGBAAt(bounds.Min.X+x, bounds.Min.Y+row*2)
			lum := luminance(top)
			if row*2+1 < h {
				lum = (lum + luminance(img.RGBAAt(bounds.Min.X+x, bounds.Min.Y+row*2+1))) / 2
			}
			idx := int(lum * float64(len(ramp)-1))
			sb.WriteByte(ramp[idx])
		}
	}
	return sb.String()
}

func luminance(c color.RGBA) float64 {
	return (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
