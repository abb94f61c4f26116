// Package protocol defines the JSON control-plane messages multiplexed with
// raw PCM over the voice agent channel, and the codec for them.
package protocol

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// Outbound control message types.
const (
	TypeStart   = "start"
	TypeStop    = "stop"
	TypeBargeIn = "barge_in"
)

// Inbound message types.
const (
	TypeState            = "state"
	TypeASRPartial       = "asr_partial"
	TypeASRFinal         = "asr_final"
	TypeAgentTextPartial = "agent_text_partial"
	TypeAgentTextFinal   = "agent_text_final"
	TypeToolCall         = "tool_call"
	TypeToolResult       = "tool_result"
	TypeUIAction         = "ui_action"
	TypeConfig           = "config"
	TypeError            = "error"
)

// Control is an outbound turn-control message: start, stop or barge_in.
type Control struct {
	Type string `json:"type"`
}

// StateMessage carries a peer-asserted session state.
type StateMessage struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

// TranscriptMessage is a streaming ASR or agent-text fragment.
type TranscriptMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolCall identifies one tool invocation announced by the peer.
type ToolCall struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

// ToolCallMessage announces a tool invocation.
type ToolCallMessage struct {
	Type string   `json:"type"`
	Call ToolCall `json:"call"`
}

// ToolResult resolves a previously announced tool call, matched by id.
type ToolResult struct {
	ToolCallID string `json:"toolCallId"`
	Name       string `json:"name"`
	Success    bool   `json:"success"`
	Result     any    `json:"result,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ToolResultMessage carries a tool call outcome.
type ToolResultMessage struct {
	Type   string     `json:"type"`
	Result ToolResult `json:"result"`
}

// UIAction is a tagged payload routed to the dashboard; the engine never
// interprets action semantics beyond routing.
type UIAction struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// UI action kinds dispatched to the dashboard shell.
const (
	ActionNavigate        = "navigate"
	ActionOpenDocument    = "open_document"
	ActionTogglePrivilege = "toggle_privilege"
	ActionShowToast       = "show_toast"
	ActionOpenPanel       = "open_panel"
	ActionScrollTo        = "scroll_to"
	ActionSelectDocuments = "select_documents"
)

// UIActionMessage wraps a dispatched UI action.
type UIActionMessage struct {
	Type   string   `json:"type"`
	Action UIAction `json:"action"`
}

// ConfigMessage lets the peer override playback parameters mid-session.
type ConfigMessage struct {
	Type          string `json:"type"`
	TTSSampleRate int    `json:"ttsSampleRate,omitempty"`
	TTSFormat     string `json:"ttsFormat,omitempty"`
}

// ErrorMessage carries a peer-reported failure.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// EncodeControl serializes a turn-control message.
func EncodeControl(typ string) ([]byte, error) {
	return sonic.Marshal(Control{Type: typ})
}

// Decode parses one inbound text frame into its typed message. A decode error
// condemns only that frame; the session logs and moves on.
func Decode(data []byte) (any, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := sonic.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode message envelope: %w", err)
	}
	typ := strings.TrimSpace(envelope.Type)
	if typ == "" {
		return nil, fmt.Errorf("message missing type")
	}

	switch typ {
	case TypeState:
		var msg StateMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("decode state: %w", err)
		}
		return msg, nil
	case TypeASRPartial, TypeASRFinal, TypeAgentTextPartial, TypeAgentTextFinal:
		var msg TranscriptMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return msg, nil
	case TypeToolCall:
		var msg ToolCallMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("decode tool_call: %w", err)
		}
		return msg, nil
	case TypeToolResult:
		var msg ToolResultMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("decode tool_result: %w", err)
		}
		return msg, nil
	case TypeUIAction:
		var msg UIActionMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("decode ui_action: %w", err)
		}
		return msg, nil
	case TypeConfig:
		var msg ConfigMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
		return msg, nil
	case TypeError:
		var msg ErrorMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("decode error: %w", err)
		}
		return msg, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", typ)
	}
}

// Encode serializes any typed message for the wire.
func Encode(v any) ([]byte, error) {
	return sonic.Marshal(v)
}
