package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TicoDavid/RAGbox.co-sub003/internal/voice/protocol"
)

func TestTracker_PartialThenFinalYieldsOneEntry(t *testing.T) {
	tr := NewTracker()

	tr.ApplyPartial(SpeakerUser, "h")
	tr.ApplyPartial(SpeakerUser, "hello")
	tr.ApplyFinal(SpeakerUser, "hello world")

	entries := tr.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "hello world", entries[0].Text)
	assert.True(t, entries[0].IsFinal)
	assert.Equal(t, SpeakerUser, entries[0].Speaker)
}

func TestTracker_FinalWithoutPartialsCreatesEntry(t *testing.T) {
	tr := NewTracker()

	tr.ApplyFinal(SpeakerAgent, "done")

	entries := tr.Entries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsFinal)
}

func TestTracker_NewUtteranceAfterFinalAppends(t *testing.T) {
	tr := NewTracker()

	tr.ApplyPartial(SpeakerUser, "first")
	tr.ApplyFinal(SpeakerUser, "first")
	tr.ApplyPartial(SpeakerUser, "second")

	entries := tr.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Text)
	assert.Equal(t, "second", entries[1].Text)
	assert.False(t, entries[1].IsFinal)
}

func TestTracker_SpeakersTrackedIndependently(t *testing.T) {
	tr := NewTracker()

	tr.ApplyPartial(SpeakerUser, "question")
	tr.ApplyPartial(SpeakerAgent, "answer")
	tr.ApplyFinal(SpeakerAgent, "answer!")
	tr.ApplyFinal(SpeakerUser, "question?")

	entries := tr.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "question?", entries[0].Text)
	assert.Equal(t, "answer!", entries[1].Text)
}

func TestTracker_ToolCallLifecycle(t *testing.T) {
	tr := NewTracker()

	tr.AddToolCall(protocol.ToolCall{
		ID:         "t1",
		Name:       "search_documents",
		Parameters: map[string]any{"query": "lease"},
	})

	current := tr.CurrentToolCall()
	require.NotNil(t, current)
	assert.Equal(t, ToolExecuting, current.Status)

	resolved, ok := tr.ResolveToolCall(protocol.ToolResult{
		ToolCallID: "t1",
		Success:    true,
		Result:     map[string]any{"count": 3},
	})

	assert.True(t, ok)
	require.NotNil(t, resolved.ToolCall)
	assert.Equal(t, ToolSuccess, resolved.ToolCall.Status)
	assert.Nil(t, tr.CurrentToolCall())

	entries := tr.Entries()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].ToolCall)
	assert.Equal(t, ToolSuccess, entries[0].ToolCall.Status)
}

func TestTracker_ToolResultMatchedByIDNotPosition(t *testing.T) {
	tr := NewTracker()

	tr.AddToolCall(protocol.ToolCall{ID: "t1", Name: "search_documents"})
	tr.AddToolCall(protocol.ToolCall{ID: "t2", Name: "open_document"})

	// Result for the first call arrives after the second call was announced.
	_, ok := tr.ResolveToolCall(protocol.ToolResult{ToolCallID: "t1", Success: true})
	require.True(t, ok)

	entries := tr.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, ToolSuccess, entries[0].ToolCall.Status)
	assert.Equal(t, ToolExecuting, entries[1].ToolCall.Status)
}

func TestTracker_ToolResultFailure(t *testing.T) {
	tr := NewTracker()

	tr.AddToolCall(protocol.ToolCall{ID: "t1", Name: "generate_summary"})
	tr.ResolveToolCall(protocol.ToolResult{ToolCallID: "t1", Success: false, Error: "timeout"})

	entries := tr.Entries()
	require.NotNil(t, entries[0].ToolCall)
	assert.Equal(t, ToolError, entries[0].ToolCall.Status)
	assert.Equal(t, "timeout", entries[0].ToolCall.Error)
}

func TestTracker_UnknownToolResultIgnored(t *testing.T) {
	tr := NewTracker()

	_, ok := tr.ResolveToolCall(protocol.ToolResult{ToolCallID: "ghost"})

	assert.False(t, ok)
	assert.Empty(t, tr.Entries())
}

func TestTracker_EntriesAreCopies(t *testing.T) {
	tr := NewTracker()
	tr.ApplyPartial(SpeakerUser, "original")

	entries := tr.Entries()
	entries[0].Text = "mutated"

	assert.Equal(t, "original", tr.Entries()[0].Text)
}

func TestTracker_Clear(t *testing.T) {
	tr := NewTracker()
	tr.ApplyFinal(SpeakerUser, "something")
	tr.AddToolCall(protocol.ToolCall{ID: "t1"})

	tr.Clear()

	assert.Empty(t, tr.Entries())
	assert.Nil(t, tr.CurrentToolCall())
}
