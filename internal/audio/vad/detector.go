// Package vad implements energy-based voice activity detection with
// hysteresis, in the spirit of the pure-Go RMS detectors used by embedded
// voice clients.
package vad

import (
	"sync"
	"time"

	"github.com/TicoDavid/RAGbox.co-sub003/internal/audio"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/platform/config"
)

// Detector decides per frame whether the user is speaking. Raw RMS drives the
// decision; the exponentially smoothed level exists only for UI meters.
// Safe for concurrent use: the capture loop drives Process while other
// goroutines read Level and Speaking.
type Detector struct {
	cfg config.VADConfig
	now func() time.Time

	mu           sync.Mutex
	speaking     bool
	speechStart  time.Time
	silenceStart time.Time
	pendingStop  bool
	level        float64

	onSpeakingChanged func(bool)
}

// Option configures a Detector.
type Option func(*Detector)

// WithClock overrides the time source, used by tests to drive debounce windows.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) { d.now = now }
}

// New creates a Detector. The config is immutable for the detector lifetime;
// changing it requires restarting capture with a fresh detector.
func New(cfg config.VADConfig, opts ...Option) *Detector {
	d := &Detector{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OnSpeakingChanged registers a callback fired exactly once per transition,
// never per frame.
func (d *Detector) OnSpeakingChanged(fn func(speaking bool)) {
	d.mu.Lock()
	d.onSpeakingChanged = fn
	d.mu.Unlock()
}

// Process consumes one frame and reports whether it should be forwarded to
// the transport. Forwarding is the bandwidth/privacy gate: only frames seen
// while speaking leave the client. The frame that completes the silence
// debounce is still forwarded; the stop transition is held until FlushPending
// so the trailing audio reaches the transport ahead of the stop signal. The
// start transition fires inside Process, before the first forwarded frame.
func (d *Detector) Process(frame audio.Frame) bool {
	rms := frame.RMS()

	d.mu.Lock()
	alpha := d.cfg.SmoothingFactor
	d.level = d.level*(1-alpha) + rms*alpha
	now := d.now()

	forward := false
	emitStart := false
	if rms > d.cfg.Threshold {
		d.silenceStart = time.Time{}
		if !d.speaking {
			if d.speechStart.IsZero() {
				d.speechStart = now
			}
			if now.Sub(d.speechStart) >= d.cfg.MinSpeech {
				d.speaking = true
				emitStart = true
			}
		}
		forward = d.speaking
	} else {
		d.speechStart = time.Time{}
		if d.speaking {
			if d.silenceStart.IsZero() {
				d.silenceStart = now
			}
			if now.Sub(d.silenceStart) >= d.cfg.Silence {
				d.speaking = false
				d.silenceStart = time.Time{}
				// Trailing frame still goes out ahead of the stop signal.
				d.pendingStop = true
			}
			forward = true
		}
	}
	fn := d.onSpeakingChanged
	d.mu.Unlock()

	// The callback runs outside the lock; it reaches back into the session.
	if emitStart && fn != nil {
		fn(true)
	}
	return forward
}

// FlushPending fires a deferred stop transition. The capture loop calls it
// after the sink has consumed the frame that completed the silence debounce.
func (d *Detector) FlushPending() {
	d.mu.Lock()
	fire := d.pendingStop
	d.pendingStop = false
	fn := d.onSpeakingChanged
	d.mu.Unlock()

	if fire && fn != nil {
		fn(false)
	}
}

// Speaking reports the current hysteresis state.
func (d *Detector) Speaking() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.speaking
}

// Level returns the smoothed energy envelope for visualization.
func (d *Detector) Level() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.level
}

// Reset clears all detection state without touching the configuration.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.speaking = false
	d.speechStart = time.Time{}
	d.silenceStart = time.Time{}
	d.pendingStop = false
	d.level = 0
}
