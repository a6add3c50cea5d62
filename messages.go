package landscapist

// Stream Messages

// StateMsg carries a presentation state emitted by the active
// subscription. Gen identifies the request generation the emission
// belongs to; the component drops messages from superseded generations.
type StateMsg struct {
	Gen   uint64
	State State
}

// subscribedMsg delivers the subscription created for a generation.
type subscribedMsg struct {
	gen uint64
	sub *Subscription
}

// streamClosedMsg indicates the subscription channel closed.
type streamClosedMsg struct {
	gen uint64
}

// Animation Messages

// frameTickMsg advances a multi-frame payload to the given frame index.
type frameTickMsg struct {
	gen uint64
	idx int
}
