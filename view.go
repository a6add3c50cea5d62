package landscapist

import (
	"image"

	"github.com/charmbracelet/lipgloss"

	"github.com/NCSOPHAL/landscapist/render"
)

// ViewContext carries the cell box and presentation options a state
// renderer draws into. Spinner holds the current spinner glyph and is
// only meaningful while loading.
type ViewContext struct {
	Width   int
	Height  int
	Options Options
	Spinner string
}

// Renderer overrides replace the default view for a single state. Each
// receives the full box; the component applies plugin decoration to the
// returned string afterwards.
type (
	NoneRenderer    func(vc ViewContext) string
	LoadingRenderer func(vc ViewContext) string
	SuccessRenderer func(vc ViewContext, p Payload) string
	FailureRenderer func(vc ViewContext, err error, partial image.Image) string
)

func defaultNoneView(vc ViewContext) string {
	return lipgloss.Place(vc.Width, vc.Height, lipgloss.Center, lipgloss.Center,
		emptyStyle.Render(""))
}

func defaultLoadingView(vc ViewContext) string {
	label := loadingStyle.Render("Loading")
	if vc.Spinner != "" {
		label = spinnerStyle.Render(vc.Spinner) + " " + label
	}
	return lipgloss.Place(vc.Width, vc.Height, lipgloss.Center, lipgloss.Center, label)
}

func defaultSuccessView(vc ViewContext, p Payload) string {
	w, h := vc.Width, vc.Height
	alt := vc.Options.Alt
	if alt != "" && h > 1 {
		h--
	}
	view := render.Render(p.Image, vc.Options.renderOptions(w, h))
	if alt != "" && vc.Height > 1 {
		view = lipgloss.JoinVertical(lipgloss.Left, view,
			altStyle.MaxWidth(w).Render(alt))
	}
	return view
}

func defaultFailureView(vc ViewContext, err error, partial image.Image) string {
	msg := "load failed"
	if err != nil {
		msg = err.Error()
	}
	if partial != nil && vc.Height > 1 {
		opts := vc.Options.renderOptions(vc.Width, vc.Height-1)
		// Dim the partial so it reads as incomplete.
		opts.Alpha = 0.4
		view := render.Render(partial, opts)
		return lipgloss.JoinVertical(lipgloss.Left, view,
			failureDetailStyle.MaxWidth(vc.Width).Render(msg))
	}
	label := failureTitleStyle.Render("✗") + " " + failureDetailStyle.Render(msg)
	return lipgloss.Place(vc.Width, vc.Height, lipgloss.Center, lipgloss.Center, label)
}
