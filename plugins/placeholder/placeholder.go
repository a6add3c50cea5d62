// Package placeholder substitutes user-supplied art for the default
// loading view, and optionally for the failure view.
//
// The plugin is a decorator: it measures the view produced by the
// component and renders the placeholder into the same box, so it
// composes with custom renderers and other decorators.
package placeholder

import (
	"image"

	"github.com/charmbracelet/lipgloss"

	"github.com/NCSOPHAL/landscapist"
	"github.com/NCSOPHAL/landscapist/render"
)

var textStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("245")). // Gray
	Italic(true)

// Plugin replaces the loading (and optionally failure) view with a
// placeholder image or text.
type Plugin struct {
	image     image.Image
	text      string
	onFailure bool
	alpha     float64
}

var _ landscapist.Decorator = (*Plugin)(nil)

// Option configures a placeholder Plugin.
type Option func(*Plugin)

// WithImage sets the placeholder artwork.
func WithImage(img image.Image) Option {
	return func(p *Plugin) {
		p.image = img
	}
}

// WithText sets a placeholder caption, used when no image is configured.
func WithText(text string) Option {
	return func(p *Plugin) {
		p.text = text
	}
}

// OnFailure extends the placeholder to the failure state as well.
func OnFailure() Option {
	return func(p *Plugin) {
		p.onFailure = true
	}
}

// WithAlpha dims the placeholder artwork. Values outside (0, 1] render
// fully opaque.
func WithAlpha(alpha float64) Option {
	return func(p *Plugin) {
		p.alpha = alpha
	}
}

// New builds a placeholder plugin from the given options.
func New(opts ...Option) *Plugin {
	p := &Plugin{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Plugin) Name() string {
	return "placeholder"
}

// Decorate swaps the rendered view for the placeholder while the image
// is loading. All other states pass through untouched.
func (p *Plugin) Decorate(st landscapist.State, view string) string {
	switch st.(type) {
	case landscapist.Loading:
	case landscapist.Failure:
		if !p.onFailure {
			return view
		}
	default:
		return view
	}

	width, height := lipgloss.Width(view), lipgloss.Height(view)
	if width <= 0 || height <= 0 {
		return view
	}

	if p.image != nil {
		return render.Render(p.image, render.Options{
			Width:  width,
			Height: height,
			Scale:  render.ScaleFit,
			AlignX: lipgloss.Center,
			AlignY: lipgloss.Center,
			Alpha:  p.alpha,
		})
	}
	if p.text != "" {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, textStyle.Render(p.text))
	}
	return view
}
