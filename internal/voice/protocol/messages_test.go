package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeControl(t *testing.T) {
	data, err := EncodeControl(TypeBargeIn)

	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"barge_in"}`, string(data))
}

func TestDecode_State(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"state","state":"speaking"}`))

	require.NoError(t, err)
	state, ok := msg.(StateMessage)
	require.True(t, ok)
	assert.Equal(t, "speaking", state.State)
}

func TestDecode_TranscriptVariants(t *testing.T) {
	tests := []struct {
		typ  string
		text string
	}{
		{TypeASRPartial, "hel"},
		{TypeASRFinal, "hello world"},
		{TypeAgentTextPartial, "I found"},
		{TypeAgentTextFinal, "I found three documents."},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			raw := `{"type":"` + tt.typ + `","text":"` + tt.text + `"}`
			msg, err := Decode([]byte(raw))

			require.NoError(t, err)
			tr, ok := msg.(TranscriptMessage)
			require.True(t, ok)
			assert.Equal(t, tt.typ, tr.Type)
			assert.Equal(t, tt.text, tr.Text)
		})
	}
}

func TestDecode_ToolCall(t *testing.T) {
	raw := `{"type":"tool_call","call":{"id":"t1","name":"search_documents","parameters":{"query":"lease"}}}`

	msg, err := Decode([]byte(raw))

	require.NoError(t, err)
	call, ok := msg.(ToolCallMessage)
	require.True(t, ok)
	assert.Equal(t, "t1", call.Call.ID)
	assert.Equal(t, "search_documents", call.Call.Name)
	assert.Equal(t, "lease", call.Call.Parameters["query"])
}

func TestDecode_ToolResult(t *testing.T) {
	raw := `{"type":"tool_result","result":{"toolCallId":"t1","name":"search_documents","success":true,"result":{"count":3}}}`

	msg, err := Decode([]byte(raw))

	require.NoError(t, err)
	result, ok := msg.(ToolResultMessage)
	require.True(t, ok)
	assert.Equal(t, "t1", result.Result.ToolCallID)
	assert.True(t, result.Result.Success)
}

func TestDecode_UIAction(t *testing.T) {
	raw := `{"type":"ui_action","action":{"type":"open_document","payload":{"id":"doc-42"}}}`

	msg, err := Decode([]byte(raw))

	require.NoError(t, err)
	action, ok := msg.(UIActionMessage)
	require.True(t, ok)
	assert.Equal(t, ActionOpenDocument, action.Action.Type)
	assert.Equal(t, "doc-42", action.Action.Payload["id"])
}

func TestDecode_Config(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"config","ttsSampleRate":48000,"ttsFormat":"mp3"}`))

	require.NoError(t, err)
	cfg, ok := msg.(ConfigMessage)
	require.True(t, ok)
	assert.Equal(t, 48000, cfg.TTSSampleRate)
	assert.Equal(t, "mp3", cfg.TTSFormat)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"invalid json", `{"type":`},
		{"missing type", `{"state":"idle"}`},
		{"unknown type", `{"type":"telemetry"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}
