package landscapist

import (
	"image"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Fallback box used before any window size is known.
const (
	defaultBoxWidth  = 40
	defaultBoxHeight = 10
)

// Model is a bubbletea component that loads one image and presents its
// lifecycle: a spinner while loading, the rasterised image on success,
// an error view on failure. Embed it in a parent model and forward
// messages through Update; the component drops messages that belong to
// superseded requests.
type Model struct {
	loader  Loader
	request Request
	fp      string

	opts      Options
	component *ImageComponent
	listener  func(State)
	preview   image.Image

	noneView    NoneRenderer
	loadingView LoadingRenderer
	successView SuccessRenderer
	failureView FailureRenderer

	state  State
	sub    *Subscription
	gen    uint64
	closed bool

	width  int
	height int

	spin     spinner.Model
	frameIdx int
}

// Option configures a Model at construction.
type Option func(*Model)

// WithOptions replaces the presentation options.
func WithOptions(o Options) Option {
	return func(m *Model) { m.opts = o }
}

// WithListener registers a callback invoked on every state transition the
// component observes. It is never invoked after Close.
func WithListener(fn func(State)) Option {
	return func(m *Model) { m.listener = fn }
}

// WithImageComponent attaches a shared plugin set.
func WithImageComponent(c *ImageComponent) Option {
	return func(m *Model) { m.component = c }
}

// WithPlugins attaches plugins, creating a plugin set if none is present.
func WithPlugins(ps ...Plugin) Option {
	return func(m *Model) {
		if m.component == nil {
			m.component = NewImageComponent(ps...)
			return
		}
		for _, p := range ps {
			m.component.Add(p)
		}
	}
}

// WithPreview puts the component in preview mode: img is presented with
// the success presentation options and the loader is never invoked.
func WithPreview(img image.Image) Option {
	return func(m *Model) { m.preview = img }
}

// WithNoneRenderer overrides the empty-state view.
func WithNoneRenderer(fn NoneRenderer) Option {
	return func(m *Model) { m.noneView = fn }
}

// WithLoadingRenderer overrides the loading view.
func WithLoadingRenderer(fn LoadingRenderer) Option {
	return func(m *Model) { m.loadingView = fn }
}

// WithSuccessRenderer overrides the success view.
func WithSuccessRenderer(fn SuccessRenderer) Option {
	return func(m *Model) { m.successView = fn }
}

// WithFailureRenderer overrides the failure view.
func WithFailureRenderer(fn FailureRenderer) Option {
	return func(m *Model) { m.failureView = fn }
}

// New builds a component that loads source through l.
func New(l Loader, source string, opts ...Option) Model {
	return NewFromRequest(l, NewRequest(source), opts...)
}

// NewFromRequest builds a component for a prepared request.
func NewFromRequest(l Loader, req Request, opts ...Option) Model {
	m := Model{
		loader:  l,
		request: req,
		fp:      req.Fingerprint(),
		opts:    DefaultOptions(),
		state:   None{},
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.preview == nil && !m.request.Empty() {
		// Prime the presentation so the first frame never flashes empty.
		m.state = Loading{}
	}
	return m
}

// Init starts the load unless the component is in preview mode or has no
// source.
func (m Model) Init() tea.Cmd {
	if m.preview != nil || m.closed || m.request.Empty() {
		return nil
	}
	return subscribeCmd(m.gen, m.loader, m.request)
}

// Update advances the component. Messages carrying a stale generation are
// dropped without side effects.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case subscribedMsg:
		if msg.gen != m.gen || m.closed {
			msg.sub.Cancel()
			return m, nil
		}
		m.sub = msg.sub
		return m, tea.Batch(
			waitForStateCmd(m.gen, msg.sub.States()),
			m.spin.Tick,
		)

	case StateMsg:
		if msg.Gen != m.gen || m.closed {
			return m, nil
		}
		return m.applyState(msg.State)

	case streamClosedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.sub = nil
		return m, nil

	case frameTickMsg:
		if msg.gen != m.gen || m.closed {
			return m, nil
		}
		return m.advanceFrame(msg.idx)

	case spinner.TickMsg:
		if !m.IsLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// applyState folds a stream emission into the model and dispatches it to
// plugins and the listener.
func (m Model) applyState(st State) (Model, tea.Cmd) {
	m.state = st
	m.component.notify(eventFor(m.request, st))
	if m.listener != nil {
		m.listener(st)
	}

	switch st := st.(type) {
	case Loading:
		if m.sub == nil {
			return m, nil
		}
		return m, waitForStateCmd(m.gen, m.sub.States())
	case Success:
		m.frameIdx = 0
		if m.opts.Animate && st.Payload.Animated() {
			return m, frameTickCmd(m.gen, 1, st.Payload.Frames[0].Delay)
		}
		return m, nil
	default:
		return m, nil
	}
}

// advanceFrame moves the animation to idx and schedules the next tick.
func (m Model) advanceFrame(idx int) (Model, tea.Cmd) {
	success, ok := m.state.(Success)
	if !ok || !m.opts.Animate || !success.Payload.Animated() {
		return m, nil
	}
	frames := success.Payload.Frames
	m.frameIdx = idx % len(frames)
	return m, frameTickCmd(m.gen, m.frameIdx+1, frames[m.frameIdx].Delay)
}

// SetSource swaps the component to a new source. Setting the identical
// source is a no-op; a different source cancels the in-flight load and
// restarts the lifecycle.
func (m Model) SetSource(source string) (Model, tea.Cmd) {
	return m.SetRequest(NewRequest(source))
}

// SetRequest swaps the component to a new request. Requests with the same
// identity as the current one do not restart the load.
func (m Model) SetRequest(req Request) (Model, tea.Cmd) {
	if m.closed {
		return m, nil
	}
	fp := req.Fingerprint()
	if fp == m.fp {
		return m, nil
	}

	if m.sub != nil {
		m.sub.Cancel()
		m.sub = nil
	}
	m.gen++
	m.request = req
	m.fp = fp
	m.frameIdx = 0

	if m.preview != nil {
		return m, nil
	}
	if req.Empty() {
		m.state = None{}
		return m, nil
	}
	m.state = Loading{}
	return m, subscribeCmd(m.gen, m.loader, m.request)
}

// Refresh restarts the load for the current request, bypassing caches.
// Unlike SetRequest it ignores the identity check, so it serves as a
// user-driven reload.
func (m Model) Refresh() (Model, tea.Cmd) {
	if m.closed || m.preview != nil || m.request.Empty() {
		return m, nil
	}

	if m.sub != nil {
		m.sub.Cancel()
		m.sub = nil
	}
	m.gen++
	m.frameIdx = 0
	m.state = Loading{}
	return m, subscribeCmd(m.gen, m.loader, m.request.WithRefresh(true))
}

// SetSize fixes the component box, overriding window-size tracking.
func (m Model) SetSize(width, height int) Model {
	m.opts.Width = width
	m.opts.Height = height
	return m
}

// Close cancels any in-flight load and detaches the component. The
// listener and plugins are never invoked afterwards, and further
// SetRequest calls are no-ops.
func (m Model) Close() Model {
	if m.sub != nil {
		m.sub.Cancel()
		m.sub = nil
	}
	m.gen++
	m.closed = true
	return m
}

// State returns the current presentation state.
func (m Model) State() State {
	return m.state
}

// Request returns the active request.
func (m Model) Request() Request {
	return m.request
}

// IsLoading reports whether a load is in flight.
func (m Model) IsLoading() bool {
	_, ok := m.state.(Loading)
	return ok
}

// View renders the current state into the component box.
func (m Model) View() string {
	w, h := m.box()
	if w <= 0 || h <= 0 {
		return ""
	}
	vc := ViewContext{Width: w, Height: h, Options: m.opts, Spinner: m.spin.View()}

	var view string
	switch {
	case m.preview != nil:
		view = m.renderSuccess(vc, Payload{Image: m.preview, From: DataSourceDirect})
	default:
		switch st := m.state.(type) {
		case Loading:
			if m.loadingView != nil {
				view = m.loadingView(vc)
			} else {
				view = defaultLoadingView(vc)
			}
		case Success:
			view = m.renderSuccess(vc, m.currentFrame(st.Payload))
		case Failure:
			if m.failureView != nil {
				view = m.failureView(vc, st.Err, st.Partial)
			} else {
				view = defaultFailureView(vc, st.Err, st.Partial)
			}
		default:
			if m.noneView != nil {
				view = m.noneView(vc)
			} else {
				view = defaultNoneView(vc)
			}
		}
	}

	return m.component.decorate(m.state, view)
}

func (m Model) renderSuccess(vc ViewContext, p Payload) string {
	if m.successView != nil {
		return m.successView(vc, p)
	}
	return defaultSuccessView(vc, p)
}

// currentFrame substitutes the active animation frame into the payload.
func (m Model) currentFrame(p Payload) Payload {
	if !m.opts.Animate || !p.Animated() {
		return p
	}
	idx := m.frameIdx
	if idx < 0 || idx >= len(p.Frames) {
		idx = 0
	}
	p.Image = p.Frames[idx].Image
	return p
}

// box resolves the presentation box from options, window size, then the
// fallback defaults.
func (m Model) box() (int, int) {
	w, h := m.opts.Width, m.opts.Height
	if w <= 0 {
		w = m.width
	}
	if h <= 0 {
		h = m.height
	}
	if w <= 0 {
		w = defaultBoxWidth
	}
	if h <= 0 {
		h = defaultBoxHeight
	}
	return w, h
}
