package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		raw  string
		want AgentVoiceState
		ok   bool
	}{
		{"idle", StateIdle, true},
		{"listening", StateListening, true},
		{"SPEAKING", StateSpeaking, true},
		{" executing ", StateExecuting, true},
		{"processing", StateProcessing, true},
		{"error", StateError, true},
		{"", "", false},
		{"humming", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseState(tt.raw)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestState_Live(t *testing.T) {
	assert.False(t, StateDisconnected.Live())
	assert.False(t, StateConnecting.Live())
	assert.False(t, StateError.Live())
	assert.True(t, StateIdle.Live())
	assert.True(t, StateListening.Live())
	assert.True(t, StateSpeaking.Live())
}
