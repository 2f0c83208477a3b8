package autocompile

import (
	"sync"
	"time"

	"github.com/npillmayer/fontbridge/bridge"
)

// DefaultDelay is the delay between the last edit and compilation.
const DefaultDelay = time.Second

// Done receives the outcome of an automatic compilation.
type Done func(ttf []byte, err error)

// Scheduler debounces compilation requests for the cached font of a bridge.
type Scheduler struct {
	mx      sync.Mutex
	b       *bridge.Bridge
	delay   time.Duration
	payload interface{}
	done    Done
	timer   *time.Timer
	gen     uint64 // incremented by every Touch and Stop
	stopped bool
}

// New creates a scheduler compiling the cached font of b with the options of
// payload. A delay of zero or less selects DefaultDelay. done must not be nil.
func New(b *bridge.Bridge, delay time.Duration, payload interface{}, done Done) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Scheduler{b: b, delay: delay, payload: payload, done: done}
}

// Delay returns the debounce delay.
func (s *Scheduler) Delay() time.Duration {
	return s.delay
}

// SetPayload replaces the options for subsequent compilations.
func (s *Scheduler) SetPayload(payload interface{}) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.payload = payload
}

// Touch (re-)starts the timer. A stopped scheduler ignores it.
func (s *Scheduler) Touch() {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.stopped {
		return
	}
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
	}
	gen := s.gen
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
}

// Pending is true while a compilation is scheduled but not yet started.
func (s *Scheduler) Pending() bool {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.timer != nil
}

// Stop cancels a pending compilation. After Stop, Touch has no effect and
// results of a compilation already running are dropped.
func (s *Scheduler) Stop() {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.stopped = true
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) fire(gen uint64) {
	s.mx.Lock()
	if gen != s.gen {
		s.mx.Unlock()
		return
	}
	s.timer = nil
	payload := s.payload
	s.mx.Unlock()
	tracer().Debugf("auto-compiling cached font")
	ttf, err := s.b.CompileCached(payload)
	s.mx.Lock()
	current := gen == s.gen
	s.mx.Unlock()
	if !current {
		tracer().Debugf("auto-compilation overtaken by a later edit")
		return
	}
	if err != nil {
		tracer().Errorf("auto-compilation failed: %v", err)
	} else {
		tracer().Infof("auto-compiled font, %d bytes", len(ttf))
	}
	s.done(ttf, err)
}
