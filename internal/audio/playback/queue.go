// Package playback drains synthesized speech to the host speaker: a FIFO of
// decoded buffers played gaplessly, interruptible for barge-in.
package playback

import (
	"context"
	"sync"
	"time"

	"github.com/TicoDavid/RAGbox.co-sub003/internal/audio"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/platform/logging"
)

// Writer plays one decoded buffer to completion. Write must honor context
// cancellation so an in-flight buffer can be halted.
type Writer interface {
	Write(ctx context.Context, frame audio.Frame) error
}

// Queue holds decoded audio buffers for gapless sequential playback. The
// sample rate is fixed at construction; a peer-initiated rate change tears
// the queue down and rebuilds it.
type Queue struct {
	writer     Writer
	format     string
	sampleRate int
	logger     *logging.Logger

	mu      sync.Mutex
	pending []audio.Frame
	playing bool
	cancel  context.CancelFunc
	idle    chan struct{}
}

// NewQueue builds a playback queue for the given transport format ("pcm" or
// "mp3") and playback sample rate.
func NewQueue(writer Writer, format string, sampleRate int, logger *logging.Logger) *Queue {
	return &Queue{
		writer:     writer,
		format:     format,
		sampleRate: sampleRate,
		logger:     logger,
	}
}

// SampleRate reports the rate the queue decodes to.
func (q *Queue) SampleRate() int {
	return q.sampleRate
}

// Format reports the transport payload format the queue decodes.
func (q *Queue) Format() string {
	return q.format
}

// Play decodes a transport payload and enqueues it, starting the drain if
// playback is idle. Malformed payloads are skipped, never fatal.
func (q *Queue) Play(payload []byte) error {
	frame, err := DecodePayload(payload, q.format, q.sampleRate)
	if err != nil {
		if q.logger != nil {
			q.logger.Warn("[Playback] skipping undecodable chunk: %v", err)
		}
		return err
	}
	if len(frame.Samples) == 0 {
		return nil
	}

	q.mu.Lock()
	q.pending = append(q.pending, frame)
	if !q.playing {
		q.playing = true
		q.idle = make(chan struct{})
		go q.drain(q.idle)
	}
	q.mu.Unlock()
	return nil
}

// Stop is the barge-in path: clears everything queued and halts the buffer
// currently being written. Safe to call when nothing is playing.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.pending = nil
	cancel := q.cancel
	q.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Playing reports whether a drain is in progress.
func (q *Queue) Playing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing
}

// Wait blocks until the drain goes idle. Used by teardown and tests.
func (q *Queue) Wait() {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()
	if idle != nil {
		<-idle
	}
}

func (q *Queue) drain(idle chan struct{}) {
	defer close(idle)
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.playing = false
			q.cancel = nil
			q.mu.Unlock()
			return
		}
		frame := q.pending[0]
		q.pending = q.pending[1:]
		ctx, cancel := context.WithCancel(context.Background())
		q.cancel = cancel
		q.mu.Unlock()

		err := q.writer.Write(ctx, frame)
		cancel()
		if err != nil && ctx.Err() == nil && q.logger != nil {
			q.logger.Warn("[Playback] write failed: %v", err)
		}
	}
}

// NullWriter paces writes at real-time speed without touching a device.
// Useful for demos and environments without audio output.
type NullWriter struct{}

func (NullWriter) Write(ctx context.Context, frame audio.Frame) error {
	d := time.Duration(frame.Duration() * float64(time.Millisecond))
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
