// Package overlay defines how highlight rectangles reach a renderer.
package overlay

import (
	"sync"

	"github.com/dudu/facehighlight/internal/geometry"
)

// Renderer displays the face highlight
type Renderer interface {
	Show(rect geometry.Rect)
	Hide()
}

// FrameAware renderers are told when a new frame starts
type FrameAware interface {
	NextFrame()
}

// Dispatch maps every feature into display space and shows it. A frame
// without features hides the highlight exactly once. It returns the number
// of rectangles shown.
func Dispatch(features []geometry.FaceFeature, aperture, viewport geometry.Size, r Renderer) int {
	if len(features) == 0 {
		r.Hide()
		return 0
	}

	for _, f := range features {
		r.Show(geometry.MapFeature(f, aperture, viewport))
	}
	return len(features)
}

// Multi fans events out to several renderers
type Multi []Renderer

// Show forwards to every renderer
func (m Multi) Show(rect geometry.Rect) {
	for _, r := range m {
		r.Show(rect)
	}
}

// Hide forwards to every renderer
func (m Multi) Hide() {
	for _, r := range m {
		r.Hide()
	}
}

// NextFrame forwards to every frame-aware renderer
func (m Multi) NextFrame() {
	for _, r := range m {
		if fa, ok := r.(FrameAware); ok {
			fa.NextFrame()
		}
	}
}

// Action is the kind of renderer instruction
type Action string

const (
	ActionShow Action = "show"
	ActionHide Action = "hide"
)

// Event is a single renderer instruction
type Event struct {
	Action Action
	Rect   geometry.Rect
}

// Recorder keeps every instruction it receives
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Show records a show event
func (r *Recorder) Show(rect geometry.Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Action: ActionShow, Rect: rect})
}

// Hide records a hide event
func (r *Recorder) Hide() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Action: ActionHide})
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many events of the given action were recorded
func (r *Recorder) Count(action Action) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Action == action {
			n++
		}
	}
	return n
}

// Reset drops all recorded events
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
