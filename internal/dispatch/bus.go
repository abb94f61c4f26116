// Package dispatch routes engine events to the dashboard shell through an
// explicit subscription surface instead of a window-global event bus.
package dispatch

import (
	evbus "github.com/asaskevich/EventBus"

	"github.com/TicoDavid/RAGbox.co-sub003/internal/voice/protocol"
)

const (
	topicUIAction    = "voice:ui_action"
	topicStateChange = "voice:state"
	topicAudioLevel  = "voice:audio_level"
	topicTranscript  = "voice:transcript"
)

// Bus is a thin facade over EventBus scoped to one engine instance. No
// globals: each session owns its bus.
type Bus struct {
	bus evbus.Bus
}

// NewBus creates an isolated event bus.
func NewBus() *Bus {
	return &Bus{bus: evbus.New()}
}

// PublishAction routes a peer-issued UI action to subscribers.
func (b *Bus) PublishAction(action protocol.UIAction) {
	b.bus.Publish(topicUIAction, action)
}

// SubscribeActions registers a UI-action observer.
func (b *Bus) SubscribeActions(fn func(protocol.UIAction)) error {
	return b.bus.Subscribe(topicUIAction, fn)
}

// UnsubscribeActions removes a previously registered observer.
func (b *Bus) UnsubscribeActions(fn func(protocol.UIAction)) error {
	return b.bus.Unsubscribe(topicUIAction, fn)
}

// PublishState broadcasts a session state transition.
func (b *Bus) PublishState(state string) {
	b.bus.Publish(topicStateChange, state)
}

// SubscribeState registers a state observer.
func (b *Bus) SubscribeState(fn func(string)) error {
	return b.bus.Subscribe(topicStateChange, fn)
}

// PublishLevel broadcasts the smoothed microphone level for UI meters.
func (b *Bus) PublishLevel(level float64) {
	b.bus.Publish(topicAudioLevel, level)
}

// SubscribeLevel registers an audio-level observer.
func (b *Bus) SubscribeLevel(fn func(float64)) error {
	return b.bus.Subscribe(topicAudioLevel, fn)
}

// PublishTranscriptChanged signals that the transcript read model advanced.
func (b *Bus) PublishTranscriptChanged() {
	b.bus.Publish(topicTranscript)
}

// SubscribeTranscriptChanged registers a transcript-change observer.
func (b *Bus) SubscribeTranscriptChanged(fn func()) error {
	return b.bus.Subscribe(topicTranscript, fn)
}
