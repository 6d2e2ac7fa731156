package store

import (
	"slices"
	"time"
)

// Default reveal schedule.
const (
	DefaultRevealBase    = 100 * time.Millisecond
	DefaultRevealStagger = 100 * time.Millisecond
)

// Reveal flips one flag of one generation of the visible slice.
type Reveal struct {
	Gen   uint64
	Index int
}

// Animator drives the staggered entrance of the visible items. Every time the
// identity of the visible slice changes, all flags go back to false and item i
// is revealed after base + i*stagger. Pending timers of a superseded slice are
// stopped before the new ones are scheduled, and a late Reveal from an older
// generation is rejected by Apply.
//
// Timers fire on their own goroutines and only hand a Reveal to notify; the
// owner applies it on its own goroutine. With a nil notify the animator
// reveals everything immediately.
type Animator struct {
	clock   Clock
	base    time.Duration
	stagger time.Duration
	notify  func(Reveal)

	gen      uint64
	ids      []string
	shown    bool
	revealed []bool
	timers   []Timer
}

// NewAnimator creates an animator. Zero durations use the defaults and a nil
// clock uses RealClock.
func NewAnimator(clock Clock, base, stagger time.Duration, notify func(Reveal)) *Animator {
	if clock == nil {
		clock = RealClock{}
	}
	if base <= 0 {
		base = DefaultRevealBase
	}
	if stagger <= 0 {
		stagger = DefaultRevealStagger
	}
	return &Animator{clock: clock, base: base, stagger: stagger, notify: notify}
}

// Show sets the visible slice by its id sequence. It reports whether the
// identity changed (and a new schedule started).
func (a *Animator) Show(ids []string) bool {
	if a.shown && slices.Equal(ids, a.ids) {
		return false
	}

	a.stopTimers()
	a.gen++
	a.shown = true
	a.ids = slices.Clone(ids)
	a.revealed = make([]bool, len(ids))

	if a.notify == nil {
		for i := range a.revealed {
			a.revealed[i] = true
		}
		return true
	}

	gen := a.gen
	notify := a.notify
	a.timers = make([]Timer, 0, len(ids))
	for i := range ids {
		index := i
		delay := a.base + time.Duration(i)*a.stagger
		a.timers = append(a.timers, a.clock.AfterFunc(delay, func() {
			notify(Reveal{Gen: gen, Index: index})
		}))
	}
	return true
}

// Apply sets the flag named by r when r belongs to the current generation.
func (a *Animator) Apply(r Reveal) bool {
	if r.Gen != a.gen || r.Index < 0 || r.Index >= len(a.revealed) {
		return false
	}
	if a.revealed[r.Index] {
		return false
	}
	a.revealed[r.Index] = true
	return true
}

// Revealed returns a copy of the flags, one per visible item.
func (a *Animator) Revealed() []bool {
	return slices.Clone(a.revealed)
}

// IsRevealed reports the flag at index i; out of range is false.
func (a *Animator) IsRevealed(i int) bool {
	return i >= 0 && i < len(a.revealed) && a.revealed[i]
}

// Generation returns the generation of the current slice.
func (a *Animator) Generation() uint64 {
	return a.gen
}

// Stop cancels every pending reveal and invalidates the current generation.
// The next Show starts a fresh schedule.
func (a *Animator) Stop() {
	a.stopTimers()
	a.gen++
	a.shown = false
}

func (a *Animator) stopTimers() {
	for _, t := range a.timers {
		t.Stop()
	}
	a.timers = nil
}
