package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromFloat32_Clamping(t *testing.T) {
	frame := FromFloat32([]float32{0, 0.5, 1.0, 1.5, -1.5, -1.0}, 16000)

	assert.Equal(t, int16(0), frame.Samples[0])
	assert.Equal(t, int16(16383), frame.Samples[1])
	assert.Equal(t, int16(32767), frame.Samples[2])
	assert.Equal(t, int16(32767), frame.Samples[3], "overrange must clamp, not wrap")
	assert.Equal(t, int16(-32768), frame.Samples[4])
	assert.Equal(t, int16(-32767), frame.Samples[5])
}

func TestFrame_RMS(t *testing.T) {
	silence := Frame{Samples: make([]int16, 100), SampleRate: 16000}
	assert.Equal(t, 0.0, silence.RMS())

	loud := make([]int16, 100)
	for i := range loud {
		loud[i] = 16384
	}
	rms := Frame{Samples: loud, SampleRate: 16000}.RMS()
	assert.InDelta(t, 0.5, rms, 0.001)
}

func TestFrame_RMS_Sine(t *testing.T) {
	samples := make([]int16, 1600)
	for i := range samples {
		samples[i] = int16(10000 * math.Sin(2*math.Pi*float64(i)/100))
	}
	rms := Frame{Samples: samples, SampleRate: 16000}.RMS()

	// Sine RMS is amplitude/sqrt(2).
	assert.InDelta(t, 10000.0/32768.0/math.Sqrt2, rms, 0.005)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	frame := Frame{Samples: []int16{0, 1, -1, 32767, -32768}, SampleRate: 24000}

	decoded := DecodePCM(frame.Encode(), 24000)

	assert.Equal(t, frame.Samples, decoded.Samples)
	assert.Equal(t, 24000, decoded.SampleRate)
}

func TestDecodePCM_OddLength(t *testing.T) {
	decoded := DecodePCM([]byte{0x01, 0x02, 0x03}, 16000)

	assert.Len(t, decoded.Samples, 1, "trailing odd byte is dropped")
}

func TestFrame_Duration(t *testing.T) {
	frame := Frame{Samples: make([]int16, 4096), SampleRate: 48000}

	assert.InDelta(t, 85.33, frame.Duration(), 0.01)
}
