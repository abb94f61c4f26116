// Package audio holds the PCM frame model shared by the capture, VAD and
// playback pipelines.
package audio

import (
	"encoding/binary"
	"math"
)

// Frame is an immutable, ordered chunk of linear PCM samples produced by
// capture at a fixed cadence and consumed exactly once downstream.
type Frame struct {
	Samples    []int16
	SampleRate int
}

// Duration returns the wall time the frame covers in milliseconds.
func (f Frame) Duration() float64 {
	if f.SampleRate <= 0 {
		return 0
	}
	return float64(len(f.Samples)) / float64(f.SampleRate) * 1000
}

// RMS computes root-mean-square energy normalized to [0, 1].
func (f Frame) RMS() float64 {
	if len(f.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range f.Samples {
		v := float64(s) / 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(f.Samples)))
}

// FromFloat32 converts floating-point samples to int16 PCM, clamping to the
// representable range rather than wrapping around.
func FromFloat32(samples []float32, sampleRate int) Frame {
	out := make([]int16, len(samples))
	for i, s := range samples {
		scaled := s * 32767
		switch {
		case scaled > 32767:
			out[i] = 32767
		case scaled < -32768:
			out[i] = -32768
		default:
			out[i] = int16(scaled)
		}
	}
	return Frame{Samples: out, SampleRate: sampleRate}
}

// Encode serializes samples as little-endian pcm_s16le for the transport.
func (f Frame) Encode() []byte {
	out := make([]byte, len(f.Samples)*2)
	for i, s := range f.Samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// DecodePCM parses little-endian pcm_s16le bytes. Odd-length payloads are
// truncated to the nearest sample boundary instead of failing.
func DecodePCM(data []byte, sampleRate int) Frame {
	n := len(data) / 2
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return Frame{Samples: samples, SampleRate: sampleRate}
}
