package audio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

var (
	ErrUnsupportedWAV = errors.New("unsupported wav format")
	ErrInvalidWAV     = errors.New("invalid wav file")
)

const (
	formatPCM   = 1
	formatFloat = 3
)

// Info describes a WAV file and the level of its samples.
type Info struct {
	Format        uint16
	Channels      int
	SampleRate    int
	BitsPerSample int
	Samples       int64
	Duration      time.Duration
	RMSdBFS       float64
	PeakdBFS      float64
}

// IsNormalized reports whether the file is the mono 16 kHz waveform whisper expects.
func (i Info) IsNormalized() bool {
	return i.Channels == 1 && i.SampleRate == 16000
}

// Silent applies the gate: RMS at or below threshold and peak within 6 dB of it.
func (i Info) Silent(thresholdDBFS float64) bool {
	if i.Samples == 0 {
		return true
	}
	if math.IsInf(i.RMSdBFS, -1) && math.IsInf(i.PeakdBFS, -1) {
		return true
	}
	return i.RMSdBFS <= thresholdDBFS && i.PeakdBFS <= thresholdDBFS+6
}

type fmtChunk struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	return inspect(f)
}

func inspect(r io.Reader) (Info, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Info{}, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
		}
		return Info{}, fmt.Errorf("read wav header: %w", err)
	}
	if string(riff[:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Info{}, ErrInvalidWAV
	}

	var (
		format  *fmtChunk
		level   levels
		hasData bool
	)

	for !hasData {
		var header [8]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return Info{}, fmt.Errorf("read wav chunk header: %w", err)
		}

		id := string(header[:4])
		size := int64(binary.LittleEndian.Uint32(header[4:8]))
		padded := size + size%2

		switch id {
		case "fmt ":
			if size < 16 {
				return Info{}, ErrInvalidWAV
			}
			body := make([]byte, padded)
			if _, err := io.ReadFull(r, body); err != nil {
				return Info{}, fmt.Errorf("read wav fmt chunk: %w", err)
			}
			var chunk fmtChunk
			if err := binary.Read(bytes.NewReader(body[:16]), binary.LittleEndian, &chunk); err != nil {
				return Info{}, fmt.Errorf("decode wav fmt chunk: %w", err)
			}
			format = &chunk
		case "data":
			if format == nil {
				return Info{}, ErrInvalidWAV
			}
			if err := validateFormat(format.AudioFormat, format.BitsPerSample); err != nil {
				return Info{}, err
			}
			measured, err := measureSamples(io.LimitReader(r, size), format.AudioFormat, format.BitsPerSample)
			if err != nil {
				return Info{}, err
			}
			level = measured
			hasData = true
		default:
			if _, err := io.CopyN(io.Discard, r, padded); err != nil {
				return Info{}, fmt.Errorf("skip wav chunk %s: %w", id, err)
			}
		}
	}

	if format == nil || !hasData {
		return Info{}, ErrInvalidWAV
	}

	info := Info{
		Format:        format.AudioFormat,
		Channels:      int(format.Channels),
		SampleRate:    int(format.SampleRate),
		BitsPerSample: int(format.BitsPerSample),
	}

	samples := level.samples
	info.Samples = samples

	if info.Channels > 0 && info.SampleRate > 0 {
		frames := samples / int64(info.Channels)
		info.Duration = time.Duration(frames) * time.Second / time.Duration(info.SampleRate)
	}

	if samples == 0 {
		info.RMSdBFS = math.Inf(-1)
		info.PeakdBFS = math.Inf(-1)
		return info, nil
	}

	info.RMSdBFS = amplitudeToDBFS(math.Sqrt(level.sumSquares / float64(samples)))
	info.PeakdBFS = amplitudeToDBFS(level.peak)
	return info, nil
}

func validateFormat(audioFormat, bitsPerSample uint16) error {
	switch {
	case audioFormat == formatPCM && (bitsPerSample == 8 || bitsPerSample == 16 || bitsPerSample == 24 || bitsPerSample == 32):
		return nil
	case audioFormat == formatFloat && (bitsPerSample == 32 || bitsPerSample == 64):
		return nil
	default:
		return ErrUnsupportedWAV
	}
}

type levels struct {
	peak       float64
	sumSquares float64
	samples    int64
}

// measureSamples reads the data chunk block by block. A chunk shorter than its
// declared size ends at EOF, which is how piped WAV output with a placeholder
// size looks.
func measureSamples(r io.Reader, audioFormat, bitsPerSample uint16) (levels, error) {
	width := int(bitsPerSample / 8)
	if width <= 0 {
		return levels{}, ErrUnsupportedWAV
	}

	var (
		out levels
		buf = make([]byte, width*4096)
		br  = bufio.NewReaderSize(r, len(buf))
	)
	for {
		n, err := io.ReadFull(br, buf)
		for i := 0; i+width <= n; i += width {
			value, decodeErr := decodeSample(buf[i:i+width], audioFormat, bitsPerSample)
			if decodeErr != nil {
				return levels{}, decodeErr
			}
			out.peak = math.Max(out.peak, math.Abs(value))
			out.sumSquares += value * value
			out.samples++
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return out, nil
		default:
			return levels{}, fmt.Errorf("read wav data: %w", err)
		}
	}
}

func decodeSample(sample []byte, audioFormat, bitsPerSample uint16) (float64, error) {
	if audioFormat == formatFloat {
		switch bitsPerSample {
		case 32:
			return float64(math.Float32frombits(binary.LittleEndian.Uint32(sample))), nil
		case 64:
			return math.Float64frombits(binary.LittleEndian.Uint64(sample)), nil
		}
		return 0, ErrUnsupportedWAV
	}

	switch bitsPerSample {
	case 8:
		return (float64(sample[0]) - 128.0) / 128.0, nil
	case 16:
		return float64(int16(binary.LittleEndian.Uint16(sample))) / 32768.0, nil
	case 24:
		v := int32(sample[0]) | int32(sample[1])<<8 | int32(sample[2])<<16
		if v&0x800000 != 0 {
			v |= ^0xFFFFFF
		}
		return float64(v) / 8388608.0, nil
	case 32:
		return float64(int32(binary.LittleEndian.Uint32(sample))) / 2147483648.0, nil
	}
	return 0, ErrUnsupportedWAV
}

func amplitudeToDBFS(amplitude float64) float64 {
	if amplitude <= 0 {
		return math.Inf(-1)
	}
	return 20.0 * math.Log10(amplitude)
}
