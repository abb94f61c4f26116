package voice

import "strings"

// AgentVoiceState is the dashboard-visible lifecycle state of a voice
// session. The peer asserts states over the control plane; locally driven
// transitions (connecting, listening via capture gating) fill the gaps.
type AgentVoiceState string

const (
	StateDisconnected AgentVoiceState = "disconnected"
	StateConnecting   AgentVoiceState = "connecting"
	StateIdle         AgentVoiceState = "idle"
	StateListening    AgentVoiceState = "listening"
	StateProcessing   AgentVoiceState = "processing"
	StateSpeaking     AgentVoiceState = "speaking"
	StateExecuting    AgentVoiceState = "executing"
	StateError        AgentVoiceState = "error"
)

func (s AgentVoiceState) String() string {
	return string(s)
}

// Live reports whether audio may flow in this state. Disconnected,
// connecting and error sessions move no audio in either direction.
func (s AgentVoiceState) Live() bool {
	switch s {
	case StateDisconnected, StateConnecting, StateError:
		return false
	}
	return true
}

// ParseState maps a peer-asserted state string onto the enum. Unknown values
// are rejected rather than guessed at.
func ParseState(raw string) (AgentVoiceState, bool) {
	switch s := AgentVoiceState(strings.ToLower(strings.TrimSpace(raw))); s {
	case StateDisconnected, StateConnecting, StateIdle, StateListening,
		StateProcessing, StateSpeaking, StateExecuting, StateError:
		return s, true
	}
	return "", false
}
