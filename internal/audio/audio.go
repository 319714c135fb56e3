// Package audio post-processes the WAV output of the synthesis engine:
// volume gain, peak normalization, and pitch/speed adjustment through
// sample-rate scaling. Only 16-bit PCM is handled, which is what Piper
// emits.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Params controls post-processing of synthesized audio.
type Params struct {
	// Pitch shift in semitones. Applied by scaling the sample rate, so
	// duration changes inversely with pitch.
	Pitch float64
	// Speed percentage; 100 leaves playback speed unchanged.
	Speed int
	// Bass and Treble gains in dB are accepted for interface
	// compatibility but not applied; shelf equalization belongs in the
	// synthesis engine, not this wrapper.
	Bass   float64
	Treble float64
	// Gain is a volume adjustment in dB.
	Gain float64
	// Normalize scales the waveform so its peak sits just under full
	// scale.
	Normalize bool
}

// DefaultParams matches the defaults of the HTTP query surface.
func DefaultParams() Params {
	return Params{Speed: 100, Normalize: true}
}

// normalizeHeadroomDB keeps the normalized peak slightly below full
// scale.
const normalizeHeadroomDB = 0.1

var (
	ErrNotWave           = errors.New("data is not a RIFF WAVE stream")
	ErrUnsupportedFormat = errors.New("only 16-bit PCM audio is supported")
)

type waveData struct {
	sampleRate uint32
	channels   uint16
	samples    []int16
}

// Process applies params to a WAV byte stream and returns a new WAV
// byte stream.
func Process(wav []byte, params Params) ([]byte, error) {
	if params.Speed <= 0 {
		return nil, fmt.Errorf("speed must be a positive percentage, got %d", params.Speed)
	}

	w, err := decode(wav)
	if err != nil {
		return nil, err
	}

	if params.Gain != 0 {
		applyGain(w.samples, params.Gain)
	}

	if params.Normalize {
		normalize(w.samples)
	}

	rate := float64(w.sampleRate)
	if params.Pitch != 0 {
		rate *= math.Pow(2, params.Pitch/12)
	}
	if params.Speed != 100 {
		rate *= float64(params.Speed) / 100
	}
	w.sampleRate = uint32(math.Round(rate))

	return encode(w), nil
}

func decode(wav []byte) (*waveData, error) {
	if len(wav) < 12 || string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, ErrNotWave
	}

	w := waveData{}
	sawFmt := false

	// Walk the RIFF chunks; only "fmt " and "data" matter here.
	offset := 12
	for offset+8 <= len(wav) {
		chunkID := string(wav[offset : offset+4])
		chunkLen := int(binary.LittleEndian.Uint32(wav[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkLen > len(wav) {
			return nil, fmt.Errorf("%w: truncated %q chunk", ErrNotWave, chunkID)
		}

		switch chunkID {
		case "fmt ":
			if chunkLen < 16 {
				return nil, fmt.Errorf("%w: short fmt chunk", ErrNotWave)
			}
			audioFormat := binary.LittleEndian.Uint16(wav[body : body+2])
			w.channels = binary.LittleEndian.Uint16(wav[body+2 : body+4])
			w.sampleRate = binary.LittleEndian.Uint32(wav[body+4 : body+8])
			bitsPerSample := binary.LittleEndian.Uint16(wav[body+14 : body+16])
			if audioFormat != 1 || bitsPerSample != 16 {
				return nil, ErrUnsupportedFormat
			}
			sawFmt = true
		case "data":
			w.samples = make([]int16, chunkLen/2)
			for i := range w.samples {
				w.samples[i] = int16(binary.LittleEndian.Uint16(wav[body+2*i : body+2*i+2]))
			}
		}

		// Chunks are word aligned.
		offset = body + chunkLen + chunkLen%2
	}

	if !sawFmt || w.samples == nil {
		return nil, fmt.Errorf("%w: missing fmt or data chunk", ErrNotWave)
	}

	return &w, nil
}

func encode(w *waveData) []byte {
	dataLen := 2 * len(w.samples)
	out := make([]byte, 44+dataLen)

	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+dataLen))
	copy(out[8:12], "WAVE")

	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], w.channels)
	binary.LittleEndian.PutUint32(out[24:28], w.sampleRate)
	byteRate := w.sampleRate * uint32(w.channels) * 2
	binary.LittleEndian.PutUint32(out[28:32], byteRate)
	binary.LittleEndian.PutUint16(out[32:34], w.channels*2)
	binary.LittleEndian.PutUint16(out[34:36], 16)

	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(dataLen))
	for i, s := range w.samples {
		binary.LittleEndian.PutUint16(out[44+2*i:46+2*i], uint16(s))
	}

	return out
}

func applyGain(samples []int16, gainDB float64) {
	factor := math.Pow(10, gainDB/20)
	for i, s := range samples {
		samples[i] = clamp(float64(s) * factor)
	}
}

func normalize(samples []int16) {
	var peak float64
	for _, s := range samples {
		if v := math.Abs(float64(s)); v > peak {
			peak = v
		}
	}
	if peak == 0 {
		return
	}

	target := math.Pow(10, -normalizeHeadroomDB/20) * math.MaxInt16
	factor := target / peak
	for i, s := range samples {
		samples[i] = clamp(float64(s) * factor)
	}
}

func clamp(v float64) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
