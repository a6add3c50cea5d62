package landscapist

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectMsgs executes a command tree and returns every produced message.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collectMsgs(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func stateMsgFrom(t *testing.T, cmd tea.Cmd) StateMsg {
	t.Helper()
	for _, msg := range collectMsgs(cmd) {
		if sm, ok := msg.(StateMsg); ok {
			return sm
		}
	}
	t.Fatal("no StateMsg produced")
	return StateMsg{}
}

func boxOptions(w, h int) Options {
	o := DefaultOptions()
	o.Width = w
	o.Height = h
	return o
}

func TestNew_EmptySource(t *testing.T) {
	t.Parallel()

	m := New(instantLoader(), "", WithOptions(boxOptions(8, 4)))
	assert.IsType(t, None{}, m.State())
	assert.Nil(t, m.Init())

	lines := strings.Split(m.View(), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, 8, lipgloss.Width(lines[0]))
}

func TestNew_PrimesLoading(t *testing.T) {
	t.Parallel()

	m := New(instantLoader(), "https://example.com/a.png")
	assert.True(t, m.IsLoading(), "a component with a source starts in loading")
	assert.NotNil(t, m.Init())
}

func TestComponent_FullLifecycle(t *testing.T) {
	t.Parallel()

	var transitions []string
	m := New(instantLoader(), "https://example.com/a.png",
		WithOptions(boxOptions(8, 4)),
		WithListener(func(st State) { transitions = append(transitions, StateName(st)) }),
	)

	cmd := m.Init()
	require.NotNil(t, cmd)
	msg := cmd()
	subMsg, ok := msg.(subscribedMsg)
	require.True(t, ok)

	m, cmd = m.Update(subMsg)
	require.NotNil(t, m.sub)
	require.NotNil(t, cmd)

	loading := stateMsgFrom(t, cmd)
	require.IsType(t, Loading{}, loading.State)

	m, cmd = m.Update(loading)
	require.NotNil(t, cmd)

	terminal := stateMsgFrom(t, cmd)
	require.IsType(t, Success{}, terminal.State)

	m, _ = m.Update(terminal)
	success, ok := m.State().(Success)
	require.True(t, ok)
	assert.Equal(t, FormatPNG, success.Payload.Format)
	assert.Equal(t, []string{"loading", "success"}, transitions)

	view := m.View()
	lines := strings.Split(view, "\n")
	require.Len(t, lines, 4)
	for _, line := range lines {
		assert.Equal(t, 8, lipgloss.Width(line))
	}
}

func TestUpdate_StaleStateMsgDropped(t *testing.T) {
	t.Parallel()

	m := New(instantLoader(), "https://example.com/a.png")
	m, cmd := m.Update(StateMsg{Gen: 99, State: Failure{Err: errors.New("boom")}})

	assert.Nil(t, cmd)
	assert.True(t, m.IsLoading(), "messages from other generations change nothing")
}

func TestUpdate_StaleSubscriptionCancelled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	m := New(instantLoader(), "https://example.com/a.png")
	sub := Subscribe(context.Background(), blockingLoader(release), NewRequest("x"))

	m, cmd := m.Update(subscribedMsg{gen: 99, sub: sub})
	assert.Nil(t, cmd)
	assert.Nil(t, m.sub)

	states := drainStates(sub)
	require.Len(t, states, 1, "the orphaned subscription is cancelled, not leaked")
	assert.IsType(t, Loading{}, states[0])
}

func TestSetRequest_SameIdentityNoRestart(t *testing.T) {
	t.Parallel()

	m := New(instantLoader(), "https://example.com/a.png")
	gen := m.gen

	m, cmd := m.SetRequest(NewRequest("https://example.com/a.png").WithRefresh(true))
	assert.Nil(t, cmd, "same identity never restarts the load")
	assert.Equal(t, gen, m.gen)
}

func TestRefresh_RestartsCurrentRequest(t *testing.T) {
	t.Parallel()

	var sawRefresh bool
	l := LoaderFunc(func(ctx context.Context, req Request) (*Payload, error) {
		sawRefresh = req.Refresh()
		return stubPayload(), nil
	})

	m := New(l, "https://example.com/a.png")
	m, cmd := m.Refresh()
	require.NotNil(t, cmd)
	assert.Equal(t, uint64(1), m.gen)
	assert.True(t, m.IsLoading())

	subMsg, ok := cmd().(subscribedMsg)
	require.True(t, ok)
	m, cmd = m.Update(subMsg)

	m, cmd = m.Update(stateMsgFrom(t, cmd))
	m, _ = m.Update(stateMsgFrom(t, cmd))

	require.IsType(t, Success{}, m.State())
	assert.True(t, sawRefresh, "a reload bypasses the caches")
	assert.Equal(t, "https://example.com/a.png", m.Request().URL(),
		"the request identity is unchanged")
}

func TestRefresh_NoOpWhenClosedOrPreview(t *testing.T) {
	t.Parallel()

	m := New(instantLoader(), "https://example.com/a.png").Close()
	m, cmd := m.Refresh()
	assert.Nil(t, cmd)

	p := New(instantLoader(), "https://example.com/a.png",
		WithPreview(image.NewRGBA(image.Rect(0, 0, 2, 2))))
	p, cmd = p.Refresh()
	assert.Nil(t, cmd)
}

func TestSetSource_NewIdentityRestarts(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	m := New(blockingLoader(release), "https://example.com/a.png")
	sub := Subscribe(context.Background(), blockingLoader(release), m.Request())
	m, cmd := m.Update(subscribedMsg{gen: m.gen, sub: sub})
	require.NotNil(t, cmd)

	m, cmd = m.SetSource("https://example.com/b.png")
	require.NotNil(t, cmd)
	assert.True(t, m.IsLoading())
	assert.Equal(t, uint64(1), m.gen)
	assert.Equal(t, "https://example.com/b.png", m.Request().URL())

	states := drainStates(sub)
	require.Len(t, states, 1, "the superseded load is cancelled without a terminal state")
	assert.IsType(t, Loading{}, states[0])
}

func TestSetSource_EmptyGoesNone(t *testing.T) {
	t.Parallel()

	m := New(instantLoader(), "https://example.com/a.png")
	m, cmd := m.SetSource("")

	assert.Nil(t, cmd)
	assert.IsType(t, None{}, m.State())
}

func TestClose_CancelsAndDetaches(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	var transitions []string
	m := New(blockingLoader(release), "https://example.com/a.png",
		WithListener(func(st State) { transitions = append(transitions, StateName(st)) }),
	)
	sub := Subscribe(context.Background(), blockingLoader(release), m.Request())
	m, _ = m.Update(subscribedMsg{gen: m.gen, sub: sub})

	m = m.Close()
	assert.Nil(t, m.sub)

	states := drainStates(sub)
	assert.Len(t, states, 1, "close cancels the in-flight load")

	// Late messages for the old generation are dropped silently.
	m, cmd := m.Update(StateMsg{Gen: 0, State: Success{}})
	assert.Nil(t, cmd)
	assert.Empty(t, transitions, "the listener is never invoked after close")

	m, cmd = m.SetSource("https://example.com/b.png")
	assert.Nil(t, cmd, "a closed component never restarts")
	_ = m
}

func TestPreview_NeverLoads(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	m := New(instantLoader(), "https://example.com/a.png",
		WithOptions(boxOptions(8, 4)),
		WithPreview(img),
	)

	assert.Nil(t, m.Init(), "preview mode never invokes the loader")
	assert.IsType(t, None{}, m.State())
	assert.Contains(t, m.View(), "▀", "preview renders the placeholder image")
}

func TestUpdate_WindowSizeMsg(t *testing.T) {
	t.Parallel()

	m := New(instantLoader(), "https://example.com/a.png")
	m, _ = m.Update(tea.WindowSizeMsg{Width: 30, Height: 12})

	assert.Equal(t, 30, m.width)
	assert.Equal(t, 12, m.height)

	lines := strings.Split(m.View(), "\n")
	assert.Len(t, lines, 12, "an unconstrained box follows the window size")
}

func TestUpdate_SpinnerTickMsg(t *testing.T) {
	t.Parallel()

	m := New(instantLoader(), "https://example.com/a.png")
	_, cmd := m.Update(spinner.TickMsg{})
	assert.NotNil(t, cmd, "the spinner keeps ticking while loading")

	m.state = Success{}
	_, cmd = m.Update(spinner.TickMsg{})
	assert.Nil(t, cmd, "the spinner stops once a terminal state arrives")
}

func TestView_LoadingShowsLabel(t *testing.T) {
	t.Parallel()

	m := New(instantLoader(), "https://example.com/a.png", WithOptions(boxOptions(20, 3)))
	assert.Contains(t, m.View(), "Loading")
}

func TestView_FailureShowsMessage(t *testing.T) {
	t.Parallel()

	m := New(instantLoader(), "https://example.com/a.png", WithOptions(boxOptions(40, 3)))
	m.state = Failure{Err: errors.New("status 404")}
	assert.Contains(t, m.View(), "status 404")
}

func TestView_AltDescription(t *testing.T) {
	t.Parallel()

	opts := boxOptions(20, 4)
	opts.Alt = "a small cat"
	m := New(instantLoader(), "https://example.com/a.png", WithOptions(opts))
	m.state = Success{Payload: *stubPayload()}

	assert.Contains(t, m.View(), "a small cat")
}

func TestUpdate_FrameTickAdvances(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	payload := Payload{
		Image: img,
		Frames: []Frame{
			{Image: img, Delay: 20 * time.Millisecond},
			{Image: img, Delay: 20 * time.Millisecond},
		},
	}

	m := New(instantLoader(), "https://example.com/a.gif")
	m.state = Success{Payload: payload}

	m, cmd := m.Update(frameTickMsg{gen: m.gen, idx: 1})
	assert.Equal(t, 1, m.frameIdx)
	assert.NotNil(t, cmd, "animation schedules the next frame")

	m, _ = m.Update(frameTickMsg{gen: m.gen, idx: 2})
	assert.Equal(t, 0, m.frameIdx, "frame index wraps around")

	m, cmd = m.Update(frameTickMsg{gen: 42, idx: 1})
	assert.Nil(t, cmd, "stale frame ticks are dropped")
	assert.Equal(t, 0, m.frameIdx)
}

func TestUpdate_FrameTickIgnoredForStillImages(t *testing.T) {
	t.Parallel()

	m := New(instantLoader(), "https://example.com/a.png")
	m.state = Success{Payload: *stubPayload()}

	m, cmd := m.Update(frameTickMsg{gen: m.gen, idx: 1})
	assert.Nil(t, cmd)
	assert.Equal(t, 0, m.frameIdx)
}

func TestUpdate_NotifiesPlugins(t *testing.T) {
	t.Parallel()

	p := &recordPlugin{name: "p"}
	m := New(instantLoader(), "https://example.com/a.png", WithPlugins(p))

	m, _ = m.Update(StateMsg{Gen: m.gen, State: Success{Payload: *stubPayload()}})
	require.Equal(t, []string{"p:success"}, p.events)

	m, _ = m.Update(StateMsg{Gen: m.gen, State: Failure{Err: errors.New("boom")}})
	assert.Equal(t, []string{"p:success", "p:failure"}, p.events)
}

func TestView_DecoratorsApply(t *testing.T) {
	t.Parallel()

	m := New(instantLoader(), "https://example.com/a.png",
		WithOptions(boxOptions(6, 2)),
		WithPlugins(&suffixDecorator{name: "d", suffix: "[deco]"}),
	)
	assert.True(t, strings.HasSuffix(m.View(), "[deco]"))
}
