package landscapist

import (
	"image/color"

	"github.com/charmbracelet/lipgloss"

	"github.com/NCSOPHAL/landscapist/render"
)

// Options controls how a loaded image is presented inside the component
// box. The zero value is usable; DefaultOptions fills in the presentation
// defaults most callers want.
type Options struct {
	// Width and Height are the component box in terminal cells. Zero
	// values defer to the enclosing window size delivered by the runtime.
	Width  int
	Height int

	Scale   render.ScaleMode
	Quality render.Quality

	AlignX lipgloss.Position
	AlignY lipgloss.Position

	// Alpha multiplies image opacity; values outside (0, 1] mean opaque.
	Alpha float64

	// Filter transforms pixel colours before compositing.
	Filter render.ColorFilter

	// Background is composited behind translucent pixels. Nil means black.
	Background color.Color

	// Alt is the accessibility description attached to the rendered
	// view. Screen-reader oriented terminals read it from the view
	// metadata line when set.
	Alt string

	// Animate plays multi-frame payloads. Single-frame payloads ignore it.
	Animate bool

	// ASCII selects the luminance-ramp renderer instead of half blocks.
	ASCII bool
}

// DefaultOptions returns the presentation defaults: centred fit scaling
// with animation enabled.
func DefaultOptions() Options {
	return Options{
		Scale:   render.ScaleFit,
		Quality: render.QualityLow,
		AlignX:  lipgloss.Center,
		AlignY:  lipgloss.Center,
		Animate: true,
	}
}

// renderOptions projects the presentation options onto a render pass for
// the given box.
func (o Options) renderOptions(width, height int) render.Options {
	return render.Options{
		Width:      width,
		Height:     height,
		Scale:      o.Scale,
		Quality:    o.Quality,
		AlignX:     o.AlignX,
		AlignY:     o.AlignY,
		Alpha:      o.Alpha,
		Filter:     o.Filter,
		Background: o.Background,
		ASCII:      o.ASCII,
	}
}
