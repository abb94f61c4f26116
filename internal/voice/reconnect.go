package voice

import (
	"context"
	"sync"
	"time"

	"github.com/TicoDavid/RAGbox.co-sub003/internal/platform/config"
	platerr "github.com/TicoDavid/RAGbox.co-sub003/internal/platform/errors"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/platform/logging"
)

// ReconnectPolicy is captured when a channel drops and decides how much of
// the session a successful retry restores.
type ReconnectPolicy int

const (
	// ReconnectOff disables retries entirely.
	ReconnectOff ReconnectPolicy = iota
	// ReconnectChannelOnly restores the websocket, nothing else.
	ReconnectChannelOnly
	// ReconnectChannelAndVAD restores the websocket and re-enables
	// hands-free capture, because it was active when the channel dropped.
	ReconnectChannelAndVAD
)

func (p ReconnectPolicy) String() string {
	switch p {
	case ReconnectChannelOnly:
		return "channel"
	case ReconnectChannelAndVAD:
		return "channel+vad"
	default:
		return "off"
	}
}

const (
	defaultRetryInterval  = 3 * time.Second
	defaultConnectTimeout = 10 * time.Second
)

// Reconnector retries a dropped channel on a flat interval until the attempt
// budget runs out. It never runs on user-initiated closes or auth rejections;
// the session decides that before scheduling.
type Reconnector struct {
	cfg     config.ReconnectConfig
	logger  *logging.Logger
	session *Session

	mu        sync.Mutex
	timer     *time.Timer
	attempts  int
	cancelled bool
}

func newReconnector(cfg config.ReconnectConfig, logger *logging.Logger, session *Session) *Reconnector {
	return &Reconnector{
		cfg:     cfg,
		logger:  logger,
		session: session,
	}
}

// Schedule arms the first retry for the captured policy. Retries re-arm
// themselves on failure until the budget is spent or Cancel runs.
func (r *Reconnector) Schedule(policy ReconnectPolicy) {
	if policy == ReconnectOff {
		return
	}
	r.mu.Lock()
	r.cancelled = false
	r.attempts = 0
	r.mu.Unlock()
	r.arm(policy)
}

// Cancel stops any pending retry. Called on explicit disconnect so a timer
// cannot resurrect a session the user just closed.
func (r *Reconnector) Cancel() {
	r.mu.Lock()
	r.cancelled = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.attempts = 0
	r.mu.Unlock()
}

// Attempts reports how many retries the current closure has consumed.
func (r *Reconnector) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

func (r *Reconnector) arm(policy ReconnectPolicy) {
	r.mu.Lock()
	if r.cancelled {
		r.mu.Unlock()
		return
	}
	if r.cfg.MaxAttempts > 0 && r.attempts >= r.cfg.MaxAttempts {
		attempts := r.attempts
		r.mu.Unlock()
		if r.logger != nil {
			r.logger.Error("[Reconnect] giving up after %d attempts", attempts)
		}
		r.session.abandonReconnect(platerr.New(platerr.KindTransport, "reconnect",
			"retry budget exhausted"))
		return
	}
	r.attempts++
	attempt := r.attempts
	interval := r.cfg.Interval
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	r.timer = time.AfterFunc(interval, func() { r.attempt(policy, attempt) })
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.Info("[Reconnect] attempt %d/%d in %s (%s)",
			attempt, r.cfg.MaxAttempts, interval, policy)
	}
}

func (r *Reconnector) attempt(policy ReconnectPolicy, n int) {
	r.mu.Lock()
	if r.cancelled {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	timeout := r.session.cfg.Session.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := r.session.connect(ctx, true); err != nil {
		if platerr.IsKind(err, platerr.KindAuth) {
			if r.logger != nil {
				r.logger.Error("[Reconnect] credentials rejected; stopping retries")
			}
			r.session.abandonReconnect(err)
			return
		}
		if r.logger != nil {
			r.logger.Warn("[Reconnect] attempt %d failed: %v", n, err)
		}
		r.arm(policy)
		return
	}

	r.mu.Lock()
	r.attempts = 0
	r.mu.Unlock()
	if r.logger != nil {
		r.logger.Info("[Reconnect] channel restored")
	}

	if policy == ReconnectChannelAndVAD {
		vadCtx, vadCancel := context.WithTimeout(context.Background(), timeout)
		defer vadCancel()
		if err := r.session.EnableVAD(vadCtx); err != nil && r.logger != nil {
			r.logger.Error("[Reconnect] hands-free capture not restored: %v", err)
		}
	}
}
