package sim

import "time"

// Engine tracks the running and paused flags of the outer loop and measures
// the wall-clock time between successive updates.
type Engine struct {
	now     func() time.Time
	running bool
	paused  bool
	last    time.Time
	delta   float64
	elapsed float64
}

type EngineOption func(*Engine)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Initialize() {
	e.running = true
	e.last = e.now()
	e.delta = 0
	e.elapsed = 0
}

// Update measures the time since the previous update and returns it as the
// step to simulate. While paused the clock still advances but the returned
// delta is zero, so resuming does not produce one huge step.
func (e *Engine) Update() float64 {
	cur := e.now()
	d := cur.Sub(e.last).Seconds()
	e.last = cur
	if e.paused {
		e.delta = 0
		return 0
	}
	e.delta = d
	e.elapsed += d
	return d
}

func (e *Engine) Pause()       { e.paused = true }
func (e *Engine) Resume()      { e.paused = false }
func (e *Engine) TogglePause() { e.paused = !e.paused }
func (e *Engine) Shutdown()    { e.running = false }

func (e *Engine) Running() bool      { return e.running }
func (e *Engine) Paused() bool       { return e.paused }
func (e *Engine) DeltaTime() float64 { return e.delta }

// Elapsed is the simulated time handed out by Update, excluding pauses.
func (e *Engine) Elapsed() float64 { return e.elapsed }
