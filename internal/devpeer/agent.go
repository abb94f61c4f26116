package devpeer

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/TicoDavid/RAGbox.co-sub003/internal/audio"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/platform/logging"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/voice/protocol"
)

const speechSampleRate = 24000

// scriptLine is one canned conversational turn.
type scriptLine struct {
	asr   string
	reply string
	tool  string
}

var script = []scriptLine{
	{
		asr:   "where is the lease agreement",
		reply: "I found the lease agreement. Opening it now.",
		tool:  "search_documents",
	},
	{
		asr:   "summarize it for me",
		reply: "The lease runs twelve months starting October first.",
		tool:  "generate_summary",
	},
	{
		asr:   "thanks",
		reply: "You're welcome.",
	},
}

// scriptedAgent answers each completed turn with a canned ASR line, an
// optional tool call, agent text and a short burst of synthesized speech.
type scriptedAgent struct {
	conn   *websocket.Conn
	logger *logging.Logger

	writeMu     sync.Mutex
	turn        int
	interrupted atomic.Bool
}

func newScriptedAgent(conn *websocket.Conn, logger *logging.Logger) *scriptedAgent {
	return &scriptedAgent{conn: conn, logger: logger}
}

func (a *scriptedAgent) run() {
	defer a.conn.Close()
	for {
		typ, data, err := a.conn.ReadMessage()
		if err != nil {
			return
		}
		if typ != websocket.TextMessage {
			// Inbound speech frames; a real agent would feed them to ASR.
			continue
		}

		var ctl protocol.Control
		if err := sonic.Unmarshal(data, &ctl); err != nil {
			continue
		}
		switch ctl.Type {
		case protocol.TypeStart:
			a.sendState("listening")
		case protocol.TypeStop:
			a.interrupted.Store(false)
			line := script[a.turn%len(script)]
			a.turn++
			go a.respond(line)
		case protocol.TypeBargeIn:
			a.interrupted.Store(true)
			a.sendState("idle")
		}
	}
}

func (a *scriptedAgent) respond(line scriptLine) {
	a.sendJSON(protocol.TranscriptMessage{Type: protocol.TypeASRFinal, Text: line.asr})
	a.sendState("processing")

	if line.tool != "" {
		id := uuid.NewString()
		a.sendJSON(protocol.ToolCallMessage{
			Type: protocol.TypeToolCall,
			Call: protocol.ToolCall{
				ID:         id,
				Name:       line.tool,
				Parameters: map[string]any{"query": line.asr},
			},
		})
		time.Sleep(80 * time.Millisecond)
		a.sendJSON(protocol.ToolResultMessage{
			Type: protocol.TypeToolResult,
			Result: protocol.ToolResult{
				ToolCallID: id,
				Name:       line.tool,
				Success:    true,
				Result:     map[string]any{"count": 1},
			},
		})
		if line.tool == "search_documents" {
			a.sendJSON(protocol.UIActionMessage{
				Type: protocol.TypeUIAction,
				Action: protocol.UIAction{
					Type:    protocol.ActionOpenDocument,
					Payload: map[string]any{"id": "doc-1"},
				},
			})
		}
	}
	if a.interrupted.Load() {
		return
	}

	half := len(line.reply) / 2
	a.sendJSON(protocol.TranscriptMessage{Type: protocol.TypeAgentTextPartial, Text: line.reply[:half]})
	a.sendJSON(protocol.TranscriptMessage{Type: protocol.TypeAgentTextFinal, Text: line.reply})
	a.sendState("speaking")

	for i := 0; i < 5 && !a.interrupted.Load(); i++ {
		a.sendBinary(tonePCM(440, 40*time.Millisecond))
		time.Sleep(40 * time.Millisecond)
	}
	if !a.interrupted.Load() {
		a.sendState("idle")
	}
}

func (a *scriptedAgent) sendState(state string) {
	a.sendJSON(protocol.StateMessage{Type: protocol.TypeState, State: state})
}

func (a *scriptedAgent) sendJSON(msg any) {
	data, err := protocol.Encode(msg)
	if err != nil {
		return
	}
	a.writeMu.Lock()
	err = a.conn.WriteMessage(websocket.TextMessage, data)
	a.writeMu.Unlock()
	if err != nil && a.logger != nil {
		a.logger.Debug("[Peer] write failed: %v", err)
	}
}

func (a *scriptedAgent) sendBinary(data []byte) {
	a.writeMu.Lock()
	_ = a.conn.WriteMessage(websocket.BinaryMessage, data)
	a.writeMu.Unlock()
}

// tonePCM synthesizes a sine burst as s16le at the speech sample rate.
func tonePCM(freq float64, d time.Duration) []byte {
	n := int(float64(speechSampleRate) * d.Seconds())
	samples := make([]int16, n)
	for i := range samples {
		v := math.Sin(2 * math.Pi * freq * float64(i) / speechSampleRate)
		samples[i] = int16(v * 8000)
	}
	return audio.Frame{Samples: samples, SampleRate: speechSampleRate}.Encode()
}
