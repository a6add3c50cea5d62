package landscapist

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// defaultFrameDelay substitutes for frames that carry no delay of their
// own, matching the common browser treatment of zero-delay GIFs.
const defaultFrameDelay = 100 * time.Millisecond

// subscribeCmd opens the state stream for a request generation
func subscribeCmd(gen uint64, l Loader, req Request) tea.Cmd {
	return func() tea.Msg {
		return subscribedMsg{gen: gen, sub: Subscribe(context.Background(), l, req)}
	}
}

// waitForStateCmd blocks on the stream and relays the next emission
func waitForStateCmd(gen uint64, states <-chan State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-states
		if !ok {
			return streamClosedMsg{gen: gen}
		}
		return StateMsg{Gen: gen, State: st}
	}
}

// frameTickCmd schedules the advance to frame idx after delay
func frameTickCmd(gen uint64, idx int, delay time.Duration) tea.Cmd {
	if delay <= 0 {
		delay = defaultFrameDelay
	}
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return frameTickMsg{gen: gen, idx: idx}
	})
}
