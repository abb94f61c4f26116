package playback

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"github.com/TicoDavid/RAGbox.co-sub003/internal/audio"
	platerr "github.com/TicoDavid/RAGbox.co-sub003/internal/platform/errors"
)

// DecodePayload converts a transport audio payload into a playback frame.
// PCM payloads with odd length are truncated to the nearest sample boundary;
// mp3 payloads are fully decoded and downmixed to mono.
func DecodePayload(payload []byte, format string, sampleRate int) (audio.Frame, error) {
	switch format {
	case "", "pcm", "pcm_s16le":
		return audio.DecodePCM(payload, sampleRate), nil
	case "mp3":
		return decodeMP3(payload)
	default:
		return audio.Frame{}, platerr.New(platerr.KindAudio, "playback", "unsupported audio format "+format)
	}
}

// decodeMP3 decodes a complete mp3 chunk. go-mp3 always emits 16-bit
// little-endian stereo; the two channels are averaged down to mono.
func decodeMP3(payload []byte) (audio.Frame, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(payload))
	if err != nil {
		return audio.Frame{}, platerr.Wrap(platerr.KindAudio, "playback", "open mp3 chunk", err)
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return audio.Frame{}, platerr.Wrap(platerr.KindAudio, "playback", "decode mp3 chunk", err)
	}

	// 4 bytes per stereo sample pair.
	n := len(raw) / 4
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		left := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		right := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		samples[i] = int16((int32(left) + int32(right)) / 2)
	}

	return audio.Frame{Samples: samples, SampleRate: decoder.SampleRate()}, nil
}
