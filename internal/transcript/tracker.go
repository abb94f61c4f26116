// Package transcript accumulates streaming utterances and tool-call
// lifecycle records for the dashboard's conversation panel.
package transcript

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TicoDavid/RAGbox.co-sub003/internal/voice/protocol"
)

// Speaker identifies who produced a transcript entry.
type Speaker string

const (
	SpeakerUser   Speaker = "user"
	SpeakerAgent  Speaker = "agent"
	SpeakerSystem Speaker = "system"
)

// ToolCallStatus tracks a tool invocation through its lifecycle.
type ToolCallStatus string

const (
	ToolPending   ToolCallStatus = "pending"
	ToolExecuting ToolCallStatus = "executing"
	ToolSuccess   ToolCallStatus = "success"
	ToolError     ToolCallStatus = "error"
)

// ToolCallInfo mirrors one announced tool invocation. It reaches a terminal
// status exactly once, when the matching result arrives.
type ToolCallInfo struct {
	ID         string
	Name       string
	Parameters map[string]any
	Status     ToolCallStatus
	Result     any
	Error      string
}

// Entry is one transcript line. Partial entries are mutated in place until
// finalized, after which they are append-only history.
type Entry struct {
	ID        string
	Speaker   Speaker
	Text      string
	IsFinal   bool
	Timestamp time.Time
	ToolCall  *ToolCallInfo
}

// Tracker is the transcript read model. Externally append-only; internally
// only the most recent unfinished entry per speaker is mutable.
type Tracker struct {
	mu      sync.Mutex
	entries []*Entry
	byCall  map[string]*Entry
	current string // id of the in-flight tool call, if any
	now     func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		byCall: make(map[string]*Entry),
		now:    time.Now,
	}
}

// ApplyPartial replaces the text of the speaker's unfinished entry, creating
// the entry on the first partial of an utterance.
func (t *Tracker) ApplyPartial(speaker Speaker, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry := t.lastUnfinished(speaker); entry != nil {
		entry.Text = text
		return
	}
	t.entries = append(t.entries, &Entry{
		ID:        uuid.NewString(),
		Speaker:   speaker,
		Text:      text,
		Timestamp: t.now(),
	})
}

// ApplyFinal finalizes the speaker's unfinished entry with the definitive
// text, creating one if the peer skipped partials entirely. Returns a copy of
// the finalized entry for persistence.
func (t *Tracker) ApplyFinal(speaker Speaker, text string) Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry := t.lastUnfinished(speaker); entry != nil {
		entry.Text = text
		entry.IsFinal = true
		return *entry
	}
	entry := &Entry{
		ID:        uuid.NewString(),
		Speaker:   speaker,
		Text:      text,
		IsFinal:   true,
		Timestamp: t.now(),
	}
	t.entries = append(t.entries, entry)
	return *entry
}

// AddToolCall appends a system entry for an announced invocation and marks it
// as the current one.
func (t *Tracker) AddToolCall(call protocol.ToolCall) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry := &Entry{
		ID:        uuid.NewString(),
		Speaker:   SpeakerSystem,
		Text:      call.Name,
		IsFinal:   true,
		Timestamp: t.now(),
		ToolCall: &ToolCallInfo{
			ID:         call.ID,
			Name:       call.Name,
			Parameters: call.Parameters,
			Status:     ToolExecuting,
		},
	}
	t.entries = append(t.entries, entry)
	t.byCall[call.ID] = entry
	t.current = call.ID
}

// ResolveToolCall updates the entry created for the call id, never by
// position. Unknown ids are ignored: a result may race a reconnect. Returns a
// copy of the updated entry when one matched.
func (t *Tracker) ResolveToolCall(result protocol.ToolResult) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.byCall[result.ToolCallID]
	if !ok || entry.ToolCall == nil {
		return Entry{}, false
	}
	if result.Success {
		entry.ToolCall.Status = ToolSuccess
		entry.ToolCall.Result = result.Result
	} else {
		entry.ToolCall.Status = ToolError
		entry.ToolCall.Error = result.Error
	}
	if t.current == result.ToolCallID {
		t.current = ""
	}
	copied := *entry
	tc := *entry.ToolCall
	copied.ToolCall = &tc
	return copied, true
}

// CurrentToolCall returns a copy of the in-flight invocation, or nil.
func (t *Tracker) CurrentToolCall() *ToolCallInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.byCall[t.current]
	if !ok || entry.ToolCall == nil {
		return nil
	}
	info := *entry.ToolCall
	return &info
}

// Entries returns a stable snapshot of the transcript.
func (t *Tracker) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		copied := *e
		if e.ToolCall != nil {
			tc := *e.ToolCall
			copied.ToolCall = &tc
		}
		out = append(out, copied)
	}
	return out
}

// Clear drops all accumulated entries, e.g. when the user resets the panel.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
	t.byCall = make(map[string]*Entry)
	t.current = ""
}

func (t *Tracker) lastUnfinished(speaker Speaker) *Entry {
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Speaker == speaker {
			if t.entries[i].IsFinal {
				return nil
			}
			return t.entries[i]
		}
	}
	return nil
}
