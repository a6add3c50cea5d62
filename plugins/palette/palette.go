// Package palette extracts dominant colours from successfully loaded
// images.
//
// Extraction runs on the success event: the bitmap is downscaled,
// pixels are pooled into coarse RGB buckets, and the most populated
// buckets are merged by perceptual (Lab) distance into a small set of
// swatches.
package palette

import (
	"image"
	"image/color"
	"sort"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/NCSOPHAL/landscapist"
)

const (
	// DefaultSize is the number of swatches extracted when none is
	// configured.
	DefaultSize = 6

	// sampleEdge bounds the longest edge of the downscaled sample.
	sampleEdge = 64

	// mergeDistance is the Lab distance under which two buckets are
	// considered the same colour.
	mergeDistance = 0.15
)

// Swatch is one dominant colour and the number of sampled pixels that
// contributed to it.
type Swatch struct {
	Color      color.RGBA
	Population int
}

// Hex returns the swatch colour as an #rrggbb string.
func (s Swatch) Hex() string {
	c, _ := colorful.MakeColor(s.Color)
	return c.Hex()
}

// Plugin computes a colour palette for every successful load.
type Plugin struct {
	size     int
	onChange func([]Swatch)

	mu       sync.Mutex
	swatches []Swatch
}

var _ landscapist.SuccessObserver = (*Plugin)(nil)

// Option configures a palette Plugin.
type Option func(*Plugin)

// WithSize sets the maximum number of swatches to extract.
func WithSize(n int) Option {
	return func(p *Plugin) {
		if n > 0 {
			p.size = n
		}
	}
}

// WithListener registers a callback invoked with the fresh swatches
// after each extraction.
func WithListener(fn func([]Swatch)) Option {
	return func(p *Plugin) {
		p.onChange = fn
	}
}

// New builds a palette plugin from the given options.
func New(opts ...Option) *Plugin {
	p := &Plugin{size: DefaultSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Plugin) Name() string {
	return "palette"
}

// OnSuccess extracts the palette from the event bitmap, falling back to
// the payload image when no bitmap was derived.
func (p *Plugin) OnSuccess(e landscapist.Event) {
	var img image.Image
	if e.Bitmap != nil {
		img = e.Bitmap
	} else if st, ok := e.State.(landscapist.Success); ok {
		img = st.Payload.Image
	}
	if img == nil {
		return
	}

	swatches := extract(img, p.size)

	p.mu.Lock()
	p.swatches = swatches
	p.mu.Unlock()

	if p.onChange != nil {
		p.onChange(swatches)
	}
}

// Swatches returns the palette of the most recent successful load,
// ordered most dominant first.
func (p *Plugin) Swatches() []Swatch {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Swatch, len(p.swatches))
	copy(out, p.swatches)
	return out
}

// Dominant returns the single most dominant colour, if a palette has
// been extracted.
func (p *Plugin) Dominant() (color.RGBA, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.swatches) == 0 {
		return color.RGBA{}, false
	}
	return p.swatches[0].Color, true
}

type bucket struct {
	key   uint16
	count int
	r     uint64
	g     uint64
	b     uint64
}

func extract(img image.Image, size int) []Swatch {
	img = downscale(img)
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil
	}

	// Pool pixels into 4-bit-per-channel buckets, accumulating true
	// channel sums so each bucket averages to a real colour.
	buckets := make(map[uint16]*bucket)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a < 0x8000 {
				continue
			}
			key := uint16(r>>12)<<8 | uint16(g>>12)<<4 | uint16(b>>12)
			bk := buckets[key]
			if bk == nil {
				bk = &bucket{key: key}
				buckets[key] = bk
			}
			bk.count++
			bk.r += uint64(r >> 8)
			bk.g += uint64(g >> 8)
			bk.b += uint64(b >> 8)
		}
	}
	if len(buckets) == 0 {
		return nil
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, bk := range buckets {
		ordered = append(ordered, bk)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].key < ordered[j].key
	})

	// Fold perceptually close buckets into the swatch they resemble,
	// keeping at most size distinct colours.
	swatches := make([]Swatch, 0, size)
	labs := make([]colorful.Color, 0, size)
	for _, bk := range ordered {
		avg := color.RGBA{
			R: uint8(bk.r / uint64(bk.count)),
			G: uint8(bk.g / uint64(bk.count)),
			B: uint8(bk.b / uint64(bk.count)),
			A: 0xff,
		}
		lab, _ := colorful.MakeColor(avg)

		merged := false
		for i := range swatches {
			if labs[i].DistanceLab(lab) < mergeDistance {
				swatches[i].Population += bk.count
				merged = true
				break
			}
		}
		if merged || len(swatches) >= size {
			continue
		}
		swatches = append(swatches, Swatch{Color: avg, Population: bk.count})
		labs = append(labs, lab)
	}

	// Merging can outgrow an earlier swatch; restore dominance order.
	sort.SliceStable(swatches, func(i, j int) bool {
		return swatches[i].Population > swatches[j].Population
	})
	return swatches
}

func downscale(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= sampleEdge && h <= sampleEdge {
		return img
	}

	scale := float64(sampleEdge) / float64(max(w, h))
	sw, sh := max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))
	small := image.NewRGBA(image.Rect(0, 0, sw, sh))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, bounds, draw.Src, nil)
	return small
}
