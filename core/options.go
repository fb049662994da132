package core

import "time"

const (
	// DefaultSelectionSyncTimeout is the debounce window for handle
	// repositioning during bursts of selection changes.
	DefaultSelectionSyncTimeout = 300 * time.Millisecond

	// DefaultSamplerInterval is the period of the drag sampler that drives
	// live selection updates and edge auto-scroll.
	DefaultSamplerInterval = 100 * time.Millisecond

	// wordTapWindow is the maximum spacing between two taps on a handle's
	// caret sub-element for the second tap to expand to word boundaries.
	wordTapWindow = 200 * time.Millisecond
)

// Scheduler provides the controller's timers. The default implementation
// runs on the standard library; tests substitute a manual one so debounce
// and sampler behavior is deterministic.
type Scheduler interface {
	// AfterFunc runs fn once after d. The returned func cancels the timer;
	// cancelation after firing is a no-op.
	AfterFunc(d time.Duration, fn func()) (cancel func())

	// Every runs fn repeatedly with period d until canceled.
	Every(d time.Duration, fn func()) (cancel func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

func (timerScheduler) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}

// ToolContext is handed to a custom tool selector. It exposes everything a
// caller needs to rebuild the menu: the widget, the default tools keyed by
// name, and the menu open/close callbacks.
type ToolContext struct {
	Widget    Widget
	Defaults  map[ToolName]Tool
	OpenMenu  func()
	CloseMenu func()
}

// Options is the configuration bag accepted by Attach. The zero value is
// usable; unset fields fall back to defaults.
type Options struct {
	// Tools selects the menu's tool sequence. A nil func, or one returning
	// an empty sequence, keeps the unmodified defaults.
	Tools func(ToolContext) []Tool

	// SelectionSyncTimeout is the debounce window of the transform sync.
	SelectionSyncTimeout time.Duration

	// SamplerInterval is the drag sampler period.
	SamplerInterval time.Duration

	// ToolActionErrorHandler receives errors thrown by tool actions.
	// The default logs and swallows.
	ToolActionErrorHandler func(name ToolName, err error)

	// Clipboard backs the copy/cut/paste default tools. When nil those
	// tools report ErrNoClipboard through the error handler.
	Clipboard Clipboard

	// MenuSize measures the menu box for a tool sequence. Hosts that
	// render the menu themselves should supply their real measurement so
	// viewport clamping matches what is drawn.
	MenuSize func(tools []Tool) Point

	// ViewportBounds reports the host's visual viewport, used as a second
	// clamp for menu placement on hosts whose viewport is smaller than the
	// widget container. Nil when no such facility exists.
	ViewportBounds func() (Rect, bool)

	// Clock and Scheduler exist for tests.
	Clock     func() time.Time
	Scheduler Scheduler
}

func (o Options) withDefaults() Options {
	if o.SelectionSyncTimeout <= 0 {
		o.SelectionSyncTimeout = DefaultSelectionSyncTimeout
	}
	if o.SamplerInterval <= 0 {
		o.SamplerInterval = DefaultSamplerInterval
	}
	if o.ToolActionErrorHandler == nil {
		o.ToolActionErrorHandler = logToolError
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Scheduler == nil {
		o.Scheduler = timerScheduler{}
	}
	return o
}
