// Package probe waits for a host element to appear, retrying with bounded
// exponential backoff on the event loop.
package probe

import (
	"log/slog"
	"time"

	"github.com/hazyhaar/quickscroll/dom"
	"github.com/hazyhaar/quickscroll/internal/loop"
)

// Config tunes the backoff.
type Config struct {
	// BaseDelay is the first retry delay; retry n waits BaseDelay * 2^n.
	// Default: 500ms.
	BaseDelay time.Duration
	// MaxRetries caps scheduled retries after the immediate attempt.
	// Default: 10.
	MaxRetries int
	Logger     *slog.Logger
}

func (c *Config) defaults() {
	if c.BaseDelay <= 0 {
		c.BaseDelay = 500 * time.Millisecond
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 10
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Target describes what to wait for.
type Target struct {
	// Name labels log lines.
	Name string
	// Find returns the element or nil.
	Find func() dom.Element
	// Accept consumes a found element. Returning false keeps the sequence
	// retrying on the same schedule.
	Accept func(dom.Element) bool
	// Exhausted runs once when every retry failed. May be nil.
	Exhausted func()
}

// Prober schedules probing sequences on a loop.
type Prober struct {
	cfg  Config
	loop *loop.Loop
}

// New creates a Prober.
func New(l *loop.Loop, cfg Config) *Prober {
	cfg.defaults()
	return &Prober{cfg: cfg, loop: l}
}

// Sequence is one running probe.
type Sequence struct {
	p        *Prober
	target   Target
	attempts int
	done     bool
	found    bool
}

// WaitFor attempts immediately and keeps retrying until Accept takes an
// element or retries run out. Must be called on the loop. Failure is never
// reported to the caller beyond the Exhausted hook and a log line.
func (p *Prober) WaitFor(target Target) *Sequence {
	s := &Sequence{p: p, target: target}
	s.attempt()
	return s
}

// Stop abandons the sequence. Timers already scheduled fire into a no-op.
func (s *Sequence) Stop() { s.done = true }

// Attempts returns how many times Find ran.
func (s *Sequence) Attempts() int { return s.attempts }

// Done reports whether the sequence has finished or been stopped.
func (s *Sequence) Done() bool { return s.done }

// Found reports whether Accept took an element.
func (s *Sequence) Found() bool { return s.found }

func (s *Sequence) attempt() {
	if s.done {
		return
	}
	retry := s.attempts
	s.attempts++
	log := s.p.cfg.Logger

	el := s.target.Find()
	if el != nil {
		if s.target.Accept(el) {
			s.done = true
			s.found = true
			return
		}
		log.Info("probe: element found but already handled",
			"target", s.target.Name, "attempt", retry+1)
	}

	if retry >= s.p.cfg.MaxRetries {
		s.done = true
		log.Warn("probe: giving up", "target", s.target.Name, "attempts", s.attempts)
		if s.target.Exhausted != nil {
			s.target.Exhausted()
		}
		return
	}

	delay := s.p.cfg.BaseDelay << retry
	if el == nil {
		log.Info("probe: element not found, retrying",
			"target", s.target.Name, "delay", delay, "retry", retry+1, "max", s.p.cfg.MaxRetries)
	}
	s.p.loop.After(delay, s.attempt)
}
