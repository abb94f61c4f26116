package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TicoDavid/RAGbox.co-sub003/internal/audio"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/audio/vad"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/platform/config"
)

// scriptedSource replays canned frames and tracks acquire/release pairing.
type scriptedSource struct {
	mu         sync.Mutex
	frames     [][]float32
	idx        int
	acquired   bool
	released   bool
	acquireErr error
	readErr    error
	lastCtx    context.Context
}

func (s *scriptedSource) Acquire(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquireErr != nil {
		return s.acquireErr
	}
	s.acquired = true
	return nil
}

func (s *scriptedSource) Read(ctx context.Context) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCtx = ctx
	if s.readErr != nil {
		return nil, s.readErr
	}
	if s.idx >= len(s.frames) {
		s.mu.Unlock()
		<-ctx.Done()
		s.mu.Lock()
		return nil, ctx.Err()
	}
	frame := s.frames[s.idx]
	s.idx++
	return frame, nil
}

func (s *scriptedSource) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
	return nil
}

func (s *scriptedSource) wasReleased() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

func constFrame(amp float32, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = amp
	}
	return out
}

type frameCollector struct {
	mu     sync.Mutex
	frames []audio.Frame
}

func (c *frameCollector) sink(f audio.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
}

func (c *frameCollector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestManualPipeline_ForwardsEveryFrame(t *testing.T) {
	source := &scriptedSource{frames: [][]float32{
		constFrame(0.5, 512),
		constFrame(0.0, 512),
		constFrame(0.2, 512),
	}}
	collector := &frameCollector{}

	p, err := New(Options{
		Mode:       ModeManual,
		Source:     source,
		Sink:       collector.sink,
		SampleRate: 16000,
	})
	require.NoError(t, err)

	require.NoError(t, p.Start(context.Background()))
	waitFor(t, func() bool { return collector.count() == 3 })
	p.Stop()

	assert.True(t, source.wasReleased())
	assert.False(t, p.Running())
}

func TestVADPipeline_GatesSilence(t *testing.T) {
	// All-silence input must never reach the sink in VAD mode.
	frames := make([][]float32, 20)
	for i := range frames {
		frames[i] = constFrame(0.001, 512)
	}
	source := &scriptedSource{frames: frames}
	collector := &frameCollector{}

	detector := vad.New(config.VADConfig{
		Threshold:       0.015,
		Silence:         time.Second,
		MinSpeech:       100 * time.Millisecond,
		SmoothingFactor: 0.2,
	})

	p, err := New(Options{
		Mode:       ModeVAD,
		Source:     source,
		Sink:       collector.sink,
		Detector:   detector,
		SampleRate: 16000,
	})
	require.NoError(t, err)

	require.NoError(t, p.Start(context.Background()))
	waitFor(t, func() bool {
		source.mu.Lock()
		defer source.mu.Unlock()
		return source.idx == len(frames)
	})
	p.Stop()

	assert.Zero(t, collector.count())
	assert.True(t, source.wasReleased())
}

func TestPipeline_VADModeRequiresDetector(t *testing.T) {
	_, err := New(Options{
		Mode:   ModeVAD,
		Source: &scriptedSource{},
		Sink:   func(audio.Frame) {},
	})

	assert.Error(t, err)
}

func TestPipeline_AcquireFailureSurfaces(t *testing.T) {
	source := &scriptedSource{acquireErr: errors.New("permission denied")}

	p, err := New(Options{
		Mode:       ModeManual,
		Source:     source,
		Sink:       func(audio.Frame) {},
		SampleRate: 16000,
	})
	require.NoError(t, err)

	err = p.Start(context.Background())

	assert.Error(t, err)
	assert.False(t, p.Running())
}

func TestPipeline_ReadErrorReleasesAndReports(t *testing.T) {
	source := &scriptedSource{readErr: errors.New("device unplugged")}

	errCh := make(chan error, 1)
	p, err := New(Options{
		Mode:       ModeManual,
		Source:     source,
		Sink:       func(audio.Frame) {},
		SampleRate: 16000,
		OnError:    func(e error) { errCh <- e },
	})
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))

	select {
	case e := <-errCh:
		assert.Error(t, e)
	case <-time.After(2 * time.Second):
		t.Fatal("expected device error")
	}
	waitFor(t, source.wasReleased)

	// The loop context must not outlive the failed loop.
	waitFor(t, func() bool {
		source.mu.Lock()
		defer source.mu.Unlock()
		return source.lastCtx != nil && source.lastCtx.Err() != nil
	})
}

func TestPipeline_DoubleStartRejected(t *testing.T) {
	source := &scriptedSource{}
	p, err := New(Options{
		Mode:       ModeManual,
		Source:     source,
		Sink:       func(audio.Frame) {},
		SampleRate: 16000,
	})
	require.NoError(t, err)

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	assert.Error(t, p.Start(context.Background()))
}

func TestPipeline_StopIdempotent(t *testing.T) {
	source := &scriptedSource{}
	p, err := New(Options{
		Mode:       ModeManual,
		Source:     source,
		Sink:       func(audio.Frame) {},
		SampleRate: 16000,
	})
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))

	p.Stop()
	p.Stop()

	assert.True(t, source.wasReleased())
}
