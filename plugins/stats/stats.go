// Package stats accumulates load metrics from component events: state
// counters, per-source and per-format tallies, and load durations.
package stats

import (
	"sync"
	"time"

	"github.com/NCSOPHAL/landscapist"
)

// Snapshot is an immutable point-in-time copy of the collected metrics.
type Snapshot struct {
	Loads     int64
	Successes int64
	Failures  int64
	InFlight  int

	BySource map[landscapist.DataSource]int64
	ByFormat map[landscapist.Format]int64

	AvgLoad time.Duration
	MinLoad time.Duration
	MaxLoad time.Duration
}

// Plugin counts loads, successes and failures and tracks how long each
// load took. Safe for concurrent use.
type Plugin struct {
	mu sync.Mutex

	loads     int64
	successes int64
	failures  int64

	bySource map[landscapist.DataSource]int64
	byFormat map[landscapist.Format]int64

	timed     int64
	totalLoad time.Duration
	minLoad   time.Duration
	maxLoad   time.Duration

	started map[string]time.Time
	now     func() time.Time
}

var (
	_ landscapist.LoadingObserver = (*Plugin)(nil)
	_ landscapist.SuccessObserver = (*Plugin)(nil)
	_ landscapist.FailureObserver = (*Plugin)(nil)
)

// New creates an empty stats plugin.
func New() *Plugin {
	return &Plugin{
		bySource: make(map[landscapist.DataSource]int64),
		byFormat: make(map[landscapist.Format]int64),
		started:  make(map[string]time.Time),
		now:      time.Now,
	}
}

func (p *Plugin) Name() string {
	return "stats"
}

// OnLoading counts the load and stamps its start time.
func (p *Plugin) OnLoading(e landscapist.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads++
	p.started[e.Request.Fingerprint()] = p.now()
}

// OnSuccess counts the success and records where the payload came from
// and how long the load took.
func (p *Plugin) OnSuccess(e landscapist.Event) {
	st, ok := e.State.(landscapist.Success)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.successes++
	if ok {
		p.bySource[st.Payload.From]++
		p.byFormat[st.Payload.Format]++
	}

	// Prefer the loader's own measurement; fall back to the wall clock
	// between the loading and success events.
	d := time.Duration(0)
	if ok && st.Payload.Elapsed > 0 {
		d = st.Payload.Elapsed
	} else if start, found := p.started[e.Request.Fingerprint()]; found {
		d = p.now().Sub(start)
	}
	delete(p.started, e.Request.Fingerprint())
	p.record(d)
}

// OnFailure counts the failure and records the time spent before it.
func (p *Plugin) OnFailure(e landscapist.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures++

	fp := e.Request.Fingerprint()
	if start, found := p.started[fp]; found {
		p.record(p.now().Sub(start))
		delete(p.started, fp)
	}
}

func (p *Plugin) record(d time.Duration) {
	if d <= 0 {
		return
	}
	p.timed++
	p.totalLoad += d
	if p.minLoad == 0 || d < p.minLoad {
		p.minLoad = d
	}
	if d > p.maxLoad {
		p.maxLoad = d
	}
}

// Snapshot returns a copy of the current metrics.
func (p *Plugin) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := Snapshot{
		Loads:     p.loads,
		Successes: p.successes,
		Failures:  p.failures,
		InFlight:  len(p.started),
		BySource:  make(map[landscapist.DataSource]int64, len(p.bySource)),
		ByFormat:  make(map[landscapist.Format]int64, len(p.byFormat)),
		MinLoad:   p.minLoad,
		MaxLoad:   p.maxLoad,
	}
	for k, v := range p.bySource {
		snap.BySource[k] = v
	}
	for k, v := range p.byFormat {
		snap.ByFormat[k] = v
	}
	if p.timed > 0 {
		snap.AvgLoad = p.totalLoad / time.Duration(p.timed)
	}
	return snap
}

// Reset clears all counters and timings.
func (p *Plugin) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads, p.successes, p.failures, p.timed = 0, 0, 0, 0
	p.totalLoad, p.minLoad, p.maxLoad = 0, 0, 0
	p.bySource = make(map[landscapist.DataSource]int64)
	p.byFormat = make(map[landscapist.Format]int64)
	p.started = make(map[string]time.Time)
}
