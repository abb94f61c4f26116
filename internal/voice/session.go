// Package voice owns the duplex channel to the remote voice agent: connection
// lifecycle, turn control, inbound message dispatch and reconnection.
package voice

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/TicoDavid/RAGbox.co-sub003/internal/audio"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/audio/capture"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/audio/playback"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/audio/vad"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/dispatch"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/platform/config"
	platerr "github.com/TicoDavid/RAGbox.co-sub003/internal/platform/errors"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/platform/logging"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/transcript"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/voice/protocol"
)

// CloseAuthRejected is the application close code the peer sends when the
// session token is invalid or expired. Never retried, like 1008.
const CloseAuthRejected = 4001

// Archiver persists finalized transcript entries. Optional; a nil archiver
// keeps the transcript in memory only.
type Archiver interface {
	SaveEntry(entry transcript.Entry) error
}

// Options wires a Session's collaborators. Config, Source and Speaker are
// required; the rest default to fresh instances.
type Options struct {
	Config  *config.Config
	Logger  *logging.Logger
	Source  capture.Source
	Speaker playback.Writer
	Bus     *dispatch.Bus
	Tracker *transcript.Tracker
	Archive Archiver

	// Dialer and HTTPClient exist for tests and proxies; nil uses defaults.
	Dialer     *websocket.Dialer
	HTTPClient *http.Client
}

// Session is the engine core. It owns the only reference to the websocket
// connection; everything else reaches the channel through its methods.
type Session struct {
	cfg       *config.Config
	logger    *logging.Logger
	bus       *dispatch.Bus
	tracker   *transcript.Tracker
	archive   Archiver
	source    capture.Source
	speaker   playback.Writer
	bootstrap *Bootstrap
	dialer    *websocket.Dialer

	reconnector *Reconnector

	// writeMu serializes websocket writes; the connection allows only one
	// concurrent writer.
	writeMu sync.Mutex

	mu         sync.Mutex
	conn       *websocket.Conn
	sessionID  string
	state      AgentVoiceState
	connecting bool
	userClosed bool
	vadEnabled bool
	privileged bool
	pipeline   *capture.Pipeline
	detector   *vad.Detector
	queue      *playback.Queue
	lastErr    error
}

// NewSession builds a session in the disconnected state. Nothing touches the
// network until Connect.
func NewSession(opts Options) (*Session, error) {
	if opts.Config == nil {
		return nil, platerr.New(platerr.KindConfig, "session", "config is required")
	}
	if opts.Source == nil {
		return nil, platerr.New(platerr.KindConfig, "session", "audio source is required")
	}
	if opts.Speaker == nil {
		return nil, platerr.New(platerr.KindConfig, "session", "audio speaker is required")
	}

	bus := opts.Bus
	if bus == nil {
		bus = dispatch.NewBus()
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = transcript.NewTracker()
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		}
	}

	s := &Session{
		cfg:        opts.Config,
		logger:     opts.Logger,
		bus:        bus,
		tracker:    tracker,
		archive:    opts.Archive,
		source:     opts.Source,
		speaker:    opts.Speaker,
		bootstrap:  NewBootstrap(opts.Config.Session, opts.HTTPClient),
		dialer:     dialer,
		state:      StateDisconnected,
		privileged: opts.Config.Session.Privileged,
		queue: playback.NewQueue(opts.Speaker, opts.Config.Audio.TTSFormat,
			opts.Config.Audio.PlaybackSampleRate, opts.Logger),
	}
	s.reconnector = newReconnector(opts.Config.Reconnect, opts.Logger, s)
	return s, nil
}

// Connect establishes the voice channel: bootstrap for a tokenized URL, then
// dial. Resolves only once the websocket is open. Idempotent when already
// connected; a concurrent connect in flight is an error, not a queue.
func (s *Session) Connect(ctx context.Context) error {
	return s.connect(ctx, false)
}

// connect is the shared dial path. A retrying connect keeps the session in
// the connecting state on failure; the error state is reserved for terminal
// outcomes (user-visible failures and an exhausted retry budget).
func (s *Session) connect(ctx context.Context, retrying bool) error {
	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		return nil
	}
	if s.connecting {
		s.mu.Unlock()
		return platerr.New(platerr.KindTransport, "session", "connect already in progress")
	}
	s.connecting = true
	s.userClosed = false
	privileged := s.privileged
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.connecting = false
		s.mu.Unlock()
	}()

	s.setState(StateConnecting)

	ticket, err := s.bootstrap.FetchTicket(ctx, privileged)
	if err != nil {
		s.recordFailure(err, retrying)
		return err
	}
	if ttl := ticket.TTL(); ttl > 0 {
		s.debugf("[Session] ticket valid for %s", ttl.Round(time.Second))
	}

	dialCtx := ctx
	if s.cfg.Session.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, s.cfg.Session.ConnectTimeout)
		defer cancel()
	}
	conn, resp, err := s.dialer.DialContext(dialCtx, ticket.URL, nil)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			err = platerr.Wrap(platerr.KindAuth, "session", "voice channel rejected credentials", err)
		} else {
			err = platerr.Wrap(platerr.KindTransport, "session", "dial voice channel", err)
		}
		s.recordFailure(err, retrying)
		return err
	}

	s.mu.Lock()
	if s.userClosed {
		// Disconnect raced the dial; honor it.
		s.mu.Unlock()
		conn.Close()
		return platerr.New(platerr.KindTransport, "session", "session closed during connect")
	}
	s.conn = conn
	s.sessionID = uuid.NewString()
	id := s.sessionID
	s.mu.Unlock()

	s.setState(StateIdle)
	s.infof("[Session] %s connected", shortID(id))
	go s.readLoop(conn)
	return nil
}

// Disconnect tears the session down: capture and playback halt before the
// network handle goes away, pending reconnect timers are cancelled.
// Idempotent.
func (s *Session) Disconnect() {
	s.reconnector.Cancel()

	s.mu.Lock()
	s.userClosed = true
	pipeline := s.pipeline
	s.pipeline = nil
	s.detector = nil
	s.vadEnabled = false
	conn := s.conn
	s.conn = nil
	queue := s.queue
	s.mu.Unlock()

	if pipeline != nil {
		pipeline.Stop()
	}
	if queue != nil {
		queue.Stop()
	}
	if conn != nil {
		deadline := time.Now().Add(time.Second)
		s.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client disconnect"), deadline)
		s.writeMu.Unlock()
		_ = conn.Close()
		s.infof("[Session] disconnected")
	}
	s.setState(StateDisconnected)
}

// StartListening opens a push-to-talk turn: start control frame, then raw
// capture until StopListening. Connects first if needed.
func (s *Session) StartListening(ctx context.Context) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	vadActive := s.vadEnabled
	s.mu.Unlock()
	if vadActive {
		// Push-to-talk takes over; hands-free capture yields the device.
		s.DisableVAD()
	}

	s.mu.Lock()
	if s.pipeline != nil && s.pipeline.Running() {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	pipeline, err := capture.New(capture.Options{
		Mode:       capture.ModeManual,
		Source:     s.source,
		Sink:       s.sendAudio,
		SampleRate: s.cfg.Audio.CaptureSampleRate,
		Logger:     s.logger,
		OnError:    s.onDeviceError,
	})
	if err != nil {
		return err
	}
	if err := s.sendControl(protocol.TypeStart); err != nil {
		return err
	}
	if err := pipeline.Start(ctx); err != nil {
		_ = s.sendControl(protocol.TypeStop)
		return err
	}

	s.mu.Lock()
	s.pipeline = pipeline
	s.mu.Unlock()
	s.setState(StateListening)
	return nil
}

// StopListening closes the push-to-talk turn: capture stops, the stop control
// frame tells the peer the utterance is complete. No-op outside manual mode.
func (s *Session) StopListening() {
	s.mu.Lock()
	pipeline := s.pipeline
	if pipeline == nil || pipeline.Mode() != capture.ModeManual {
		s.mu.Unlock()
		return
	}
	s.pipeline = nil
	s.mu.Unlock()

	pipeline.Stop()
	if err := s.sendControl(protocol.TypeStop); err != nil {
		s.warnf("[Session] stop signal not delivered: %v", err)
	}
	s.setState(StateProcessing)
}

// EnableVAD switches to hands-free capture: the detector gates frames and
// brackets turns with start/stop on its own. Connects first if needed; any
// manual pipeline yields the device before the switch.
func (s *Session) EnableVAD(ctx context.Context) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	if s.vadEnabled {
		s.mu.Unlock()
		return nil
	}
	old := s.pipeline
	s.pipeline = nil
	s.mu.Unlock()
	if old != nil {
		old.Stop()
	}

	det := vad.New(s.cfg.VAD)
	det.OnSpeakingChanged(s.onSpeakingChanged)

	pipeline, err := capture.New(capture.Options{
		Mode:       capture.ModeVAD,
		Source:     s.source,
		Sink:       s.vadSink(det),
		Detector:   det,
		SampleRate: s.cfg.Audio.CaptureSampleRate,
		Logger:     s.logger,
		OnError:    s.onDeviceError,
	})
	if err != nil {
		return err
	}
	if err := pipeline.Start(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.pipeline = pipeline
	s.detector = det
	s.vadEnabled = true
	s.mu.Unlock()
	s.infof("[VAD] hands-free capture enabled")
	return nil
}

// DisableVAD stops hands-free capture. An open turn is closed with a stop
// signal so the peer does not wait on a vanished speaker.
func (s *Session) DisableVAD() {
	s.mu.Lock()
	if !s.vadEnabled {
		s.mu.Unlock()
		return
	}
	s.vadEnabled = false
	pipeline := s.pipeline
	s.pipeline = nil
	det := s.detector
	s.detector = nil
	s.mu.Unlock()

	if pipeline != nil {
		pipeline.Stop()
	}
	// Read the turn state only once the capture loop is down.
	if det != nil && det.Speaking() {
		_ = s.sendControl(protocol.TypeStop)
	}
	s.infof("[VAD] hands-free capture disabled")
}

// BargeIn interrupts agent speech: local playback clears immediately, the
// peer is told to abandon the in-flight response.
func (s *Session) BargeIn() {
	s.mu.Lock()
	queue := s.queue
	vadActive := s.vadEnabled
	s.mu.Unlock()

	if queue != nil {
		queue.Stop()
	}
	if err := s.sendControl(protocol.TypeBargeIn); err != nil {
		s.warnf("[Session] barge-in signal not delivered: %v", err)
	}
	if vadActive {
		s.setState(StateListening)
	} else {
		s.setState(StateIdle)
	}
}

// SetPrivilegeMode records the dashboard's privilege flag for subsequent
// session bootstraps. The engine never flips it on its own.
func (s *Session) SetPrivilegeMode(enabled bool) {
	s.mu.Lock()
	changed := s.privileged != enabled
	s.privileged = enabled
	s.mu.Unlock()
	if changed {
		s.infof("[Session] privilege mode: %t", enabled)
	}
}

// Privileged reports the current privilege flag.
func (s *Session) Privileged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.privileged
}

// State returns the current session state.
func (s *Session) State() AgentVoiceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsConnected reports whether the voice channel is open.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// IsVADActive reports whether hands-free capture is running.
func (s *Session) IsVADActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vadEnabled
}

// AudioLevel returns the smoothed microphone level, 0 outside VAD mode.
func (s *Session) AudioLevel() float64 {
	s.mu.Lock()
	det := s.detector
	s.mu.Unlock()
	if det == nil {
		return 0
	}
	return det.Level()
}

// PlaybackSampleRate reports the rate the playback queue decodes to.
func (s *Session) PlaybackSampleRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.SampleRate()
}

// Transcript returns a snapshot of the conversation.
func (s *Session) Transcript() []transcript.Entry {
	return s.tracker.Entries()
}

// Tracker exposes the transcript read model.
func (s *Session) Tracker() *transcript.Tracker {
	return s.tracker
}

// OnUIAction registers a dashboard observer for peer-issued UI actions. The
// engine routes actions without interpreting them.
func (s *Session) OnUIAction(fn func(protocol.UIAction)) error {
	return s.bus.SubscribeActions(fn)
}

// Bus exposes the event surface the dashboard subscribes on.
func (s *Session) Bus() *dispatch.Bus {
	return s.bus
}

// LastError returns the most recent terminal failure, if any.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) readLoop(conn *websocket.Conn) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			s.handleClosure(conn, err)
			return
		}
		switch msgType {
		case websocket.BinaryMessage:
			s.handleAudio(data)
		case websocket.TextMessage:
			s.handleText(data)
		}
	}
}

func (s *Session) handleAudio(data []byte) {
	s.mu.Lock()
	queue := s.queue
	s.mu.Unlock()
	if queue == nil {
		return
	}
	// Undecodable chunks are logged and skipped inside the queue.
	_ = queue.Play(data)
}

func (s *Session) handleText(data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		// One bad frame never takes the session down.
		s.warnf("[Session] dropping malformed frame: %v", err)
		return
	}

	switch m := msg.(type) {
	case protocol.StateMessage:
		st, ok := ParseState(m.State)
		if !ok {
			s.warnf("[Session] ignoring unknown peer state %q", m.State)
			return
		}
		s.applyPeerState(st)
	case protocol.TranscriptMessage:
		s.handleTranscript(m)
	case protocol.ToolCallMessage:
		s.tracker.AddToolCall(m.Call)
		s.bus.PublishTranscriptChanged()
		s.infof("[Session] tool call %s: %s", m.Call.ID, m.Call.Name)
		s.setState(StateExecuting)
	case protocol.ToolResultMessage:
		entry, ok := s.tracker.ResolveToolCall(m.Result)
		if !ok {
			s.debugf("[Session] result for unknown tool call %s", m.Result.ToolCallID)
			return
		}
		s.bus.PublishTranscriptChanged()
		s.archiveSave(entry)
		if s.State() == StateExecuting {
			s.setState(StateProcessing)
		}
	case protocol.UIActionMessage:
		s.debugf("[Session] ui action: %s", m.Action.Type)
		s.bus.PublishAction(m.Action)
	case protocol.ConfigMessage:
		s.applyPeerConfig(m)
	case protocol.ErrorMessage:
		s.errorf("[Session] peer error: %s", m.Message)
		s.recordErr(platerr.New(platerr.KindProtocol, "session", m.Message))
		s.setState(StateError)
	}
}

func (s *Session) handleTranscript(m protocol.TranscriptMessage) {
	switch m.Type {
	case protocol.TypeASRPartial:
		s.tracker.ApplyPartial(transcript.SpeakerUser, m.Text)
	case protocol.TypeASRFinal:
		s.archiveSave(s.tracker.ApplyFinal(transcript.SpeakerUser, m.Text))
	case protocol.TypeAgentTextPartial:
		s.tracker.ApplyPartial(transcript.SpeakerAgent, m.Text)
	case protocol.TypeAgentTextFinal:
		s.archiveSave(s.tracker.ApplyFinal(transcript.SpeakerAgent, m.Text))
	}
	s.bus.PublishTranscriptChanged()
}

// applyPeerState reconciles a peer-asserted state with local capture gating.
// While VAD drives listening/idle locally, only agent-side states pass
// through, and a transient idle folds in only when a turn is winding down.
func (s *Session) applyPeerState(peer AgentVoiceState) {
	s.mu.Lock()
	fold := s.vadEnabled || s.cfg.Session.FoldIdleAlways
	current := s.state
	s.mu.Unlock()

	if !fold {
		s.setState(peer)
		return
	}
	switch peer {
	case StateSpeaking, StateProcessing, StateExecuting, StateError:
		s.setState(peer)
	case StateIdle:
		switch current {
		case StateSpeaking, StateProcessing, StateExecuting:
			s.setState(StateIdle)
		}
	}
}

// applyPeerConfig rebuilds the playback queue at the peer-requested format
// and sample rate. The rate is fixed per queue; anything buffered at the old
// rate is discarded.
func (s *Session) applyPeerConfig(m protocol.ConfigMessage) {
	s.mu.Lock()
	format := s.queue.Format()
	rate := s.queue.SampleRate()
	if m.TTSFormat != "" {
		format = m.TTSFormat
	}
	if m.TTSSampleRate > 0 {
		rate = m.TTSSampleRate
	}
	if format == s.queue.Format() && rate == s.queue.SampleRate() {
		s.mu.Unlock()
		return
	}
	old := s.queue
	s.queue = playback.NewQueue(s.speaker, format, rate, s.logger)
	s.mu.Unlock()

	old.Stop()
	s.infof("[Session] playback reconfigured: %s @ %dHz", format, rate)
}

// handleClosure runs when the read loop dies. User-initiated closes were
// already torn down by Disconnect; everything else decides between a clean
// stop, an auth failure and a retryable drop.
func (s *Session) handleClosure(conn *websocket.Conn, err error) {
	s.mu.Lock()
	if s.conn != conn {
		// A stale loop from a connection Disconnect already tore down.
		s.mu.Unlock()
		return
	}
	s.conn = nil
	userClosed := s.userClosed
	vadWas := s.vadEnabled
	s.vadEnabled = false
	pipeline := s.pipeline
	s.pipeline = nil
	s.detector = nil
	queue := s.queue
	s.mu.Unlock()

	_ = conn.Close()
	if pipeline != nil {
		pipeline.Stop()
	}
	if queue != nil {
		queue.Stop()
	}

	if userClosed {
		s.setState(StateDisconnected)
		return
	}

	switch code := closeCode(err); {
	case code == websocket.CloseNormalClosure:
		s.infof("[Session] peer closed the channel")
		s.setState(StateDisconnected)
	case code == CloseAuthRejected || code == websocket.ClosePolicyViolation:
		s.errorf("[Session] channel closed: credentials rejected (code %d)", code)
		s.recordErr(platerr.New(platerr.KindAuth, "session", "session token rejected"))
		s.setState(StateError)
	default:
		s.warnf("[Session] channel dropped: %v", err)
		policy := s.closurePolicy(vadWas)
		if policy == ReconnectOff {
			s.recordErr(platerr.Wrap(platerr.KindTransport, "session", "voice channel lost", err))
			s.setState(StateError)
			return
		}
		s.setState(StateConnecting)
		s.reconnector.Schedule(policy)
	}
}

// closurePolicy captures, at closure time, how much of the session to
// restore. Enabling VAD after the drop must not resurrect it.
func (s *Session) closurePolicy(vadWas bool) ReconnectPolicy {
	if !s.cfg.Reconnect.Enabled {
		return ReconnectOff
	}
	if vadWas {
		return ReconnectChannelAndVAD
	}
	return ReconnectChannelOnly
}

// onSpeakingChanged turns detector transitions into turn control. Start goes
// out before the first speech frame; stop after the trailing frame flush.
func (s *Session) onSpeakingChanged(speaking bool) {
	if speaking {
		if err := s.sendControl(protocol.TypeStart); err != nil {
			s.warnf("[VAD] start signal not delivered: %v", err)
		}
		s.setState(StateListening)
		return
	}
	if err := s.sendControl(protocol.TypeStop); err != nil {
		s.warnf("[VAD] stop signal not delivered: %v", err)
	}
	s.setState(StateProcessing)
}

func (s *Session) vadSink(det *vad.Detector) capture.Sink {
	return func(frame audio.Frame) {
		s.sendAudio(frame)
		s.bus.PublishLevel(det.Level())
	}
}

// sendAudio ships one PCM frame. Deliberately fire-and-forget: a frame that
// races the channel closing is dropped, never an error surfaced to capture.
func (s *Session) sendAudio(frame audio.Frame) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}

	s.writeMu.Lock()
	err := conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
	s.writeMu.Unlock()
	if err != nil {
		s.debugf("[Session] audio frame dropped: %v", err)
	}
}

func (s *Session) sendControl(typ string) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return platerr.New(platerr.KindTransport, "session", "voice channel is not open")
	}

	data, err := protocol.EncodeControl(typ)
	if err != nil {
		return platerr.Wrap(platerr.KindProtocol, "session", "encode "+typ, err)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return platerr.Wrap(platerr.KindTransport, "session", "send "+typ, err)
	}
	return nil
}

// onDeviceError surfaces a capture device failure. The channel stays open;
// the user decides whether to retry with another input.
func (s *Session) onDeviceError(err error) {
	s.mu.Lock()
	s.pipeline = nil
	s.detector = nil
	s.vadEnabled = false
	s.mu.Unlock()

	s.errorf("[Session] input device failed: %v", err)
	s.recordErr(err)
	s.setState(StateError)
}

// abandonReconnect is the reconnector's terminal give-up path.
func (s *Session) abandonReconnect(err error) {
	s.recordErr(err)
	s.setState(StateError)
}

func (s *Session) archiveSave(entry transcript.Entry) {
	if s.archive == nil {
		return
	}
	if err := s.archive.SaveEntry(entry); err != nil {
		s.warnf("[Archive] save failed: %v", err)
	}
}

func (s *Session) setState(next AgentVoiceState) {
	s.mu.Lock()
	if s.state == next {
		s.mu.Unlock()
		return
	}
	prev := s.state
	s.state = next
	s.mu.Unlock()

	s.debugf("[Session] state %s -> %s", prev, next)
	s.bus.PublishState(next.String())
}

func (s *Session) recordErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// recordFailure captures a connect failure. Mid-budget retry failures stay in
// the connecting state so the dashboard does not flicker error while the
// reconnector is still working; abandonReconnect handles the terminal case.
func (s *Session) recordFailure(err error, retrying bool) {
	s.recordErr(err)
	if !retrying {
		s.setState(StateError)
	}
}

func (s *Session) debugf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(format, args...)
	}
}

func (s *Session) infof(format string, args ...any) {
	if s.logger != nil {
		s.logger.Info(format, args...)
	}
}

func (s *Session) warnf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(format, args...)
	}
}

func (s *Session) errorf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Error(format, args...)
	}
}

func closeCode(err error) int {
	if ce, ok := err.(*websocket.CloseError); ok {
		return ce.Code
	}
	return -1
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
