// Package capture acquires the host audio input and feeds PCM frames either
// directly to the transport (manual push-to-talk) or through the voice
// activity detector (hands-free gating).
package capture

import (
	"context"
	"errors"
	"sync"

	"github.com/TicoDavid/RAGbox.co-sub003/internal/audio"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/audio/vad"
	platerr "github.com/TicoDavid/RAGbox.co-sub003/internal/platform/errors"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/platform/logging"
)

// Mode selects how captured frames are forwarded.
type Mode int

const (
	// ModeManual forwards every captured frame; start/stop bracket a turn.
	ModeManual Mode = iota
	// ModeVAD forwards frames only while the detector reports speech.
	ModeVAD
)

func (m Mode) String() string {
	if m == ModeVAD {
		return "vad"
	}
	return "manual"
}

// Source is an exclusive audio input resource. Acquire may suspend while the
// host waits on a user permission grant. Read blocks until one frame of
// floating-point samples is available.
type Source interface {
	Acquire(ctx context.Context) error
	Read(ctx context.Context) ([]float32, error)
	Release() error
}

// Sink receives converted PCM frames. Implementations must not block; the
// session's transport send already no-ops when the channel is down.
type Sink func(audio.Frame)

// Pipeline owns the capture loop for one mode. At most one pipeline may run
// against a source at a time; mode switches tear the old pipeline down first.
type Pipeline struct {
	mode       Mode
	source     Source
	sink       Sink
	detector   *vad.Detector
	sampleRate int
	logger     *logging.Logger
	onError    func(error)

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Options configures a Pipeline.
type Options struct {
	Mode       Mode
	Source     Source
	Sink       Sink
	Detector   *vad.Detector // required for ModeVAD
	SampleRate int
	Logger     *logging.Logger
	OnError    func(error) // device failure surface; no retry here
}

// New builds a pipeline. The detector is mandatory in VAD mode.
func New(opts Options) (*Pipeline, error) {
	if opts.Source == nil {
		return nil, platerr.New(platerr.KindAudio, "capture", "source is required")
	}
	if opts.Sink == nil {
		return nil, platerr.New(platerr.KindAudio, "capture", "sink is required")
	}
	if opts.Mode == ModeVAD && opts.Detector == nil {
		return nil, platerr.New(platerr.KindAudio, "capture", "vad mode requires a detector")
	}
	return &Pipeline{
		mode:       opts.Mode,
		source:     opts.Source,
		sink:       opts.Sink,
		detector:   opts.Detector,
		sampleRate: opts.SampleRate,
		logger:     opts.Logger,
		onError:    opts.OnError,
	}, nil
}

// Mode reports which forwarding mode the pipeline runs in.
func (p *Pipeline) Mode() Mode {
	return p.mode
}

// Detector exposes the VAD for level metering; nil in manual mode.
func (p *Pipeline) Detector() *vad.Detector {
	return p.detector
}

// Start acquires the input resource and begins the capture loop. The context
// bounds acquisition only; once running, the loop lives until Stop. It fails
// if the pipeline is already running or the device cannot be acquired.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return platerr.New(platerr.KindAudio, "capture", "pipeline already running")
	}

	if err := p.source.Acquire(ctx); err != nil {
		p.mu.Unlock()
		return platerr.Wrap(platerr.KindAudio, "capture", "acquire input device", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	done := p.done
	p.mu.Unlock()

	if p.logger != nil {
		p.logger.Info("[Capture] started (%s, %dHz)", p.mode, p.sampleRate)
	}

	go p.loop(loopCtx, cancel, done)
	return nil
}

// Stop halts the loop and releases the device. Idempotent.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	cancel()
	<-done
}

// Running reports whether the capture loop is active.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Pipeline) loop(ctx context.Context, cancel context.CancelFunc, done chan struct{}) {
	// The context and input device are released on every exit path, read
	// errors included.
	defer close(done)
	defer func() {
		cancel()
		if err := p.source.Release(); err != nil && p.logger != nil {
			p.logger.Warn("[Capture] release failed: %v", err)
		}
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	for {
		samples, err := p.source.Read(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			if p.logger != nil {
				p.logger.Error("[Capture] read failed: %v", err)
			}
			if p.onError != nil {
				p.onError(platerr.Wrap(platerr.KindAudio, "capture", "read input device", err))
			}
			return
		}
		if len(samples) == 0 {
			continue
		}

		frame := audio.FromFloat32(samples, p.sampleRate)
		switch p.mode {
		case ModeVAD:
			if p.detector.Process(frame) {
				p.sink(frame)
			}
			p.detector.FlushPending()
		default:
			p.sink(frame)
		}
	}
}
