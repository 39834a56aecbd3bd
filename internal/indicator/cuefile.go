package indicator

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/go-audio/wav"
)

// maxCueDuration caps decoded cue files so a misconfigured song cannot block
// later cues.
const maxCueDuration = 3 * cueSampleRate

// decodeCueFile decodes a wav or mp3 file into mono PCM at cueSampleRate.
func decodeCueFile(path string) ([]int16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cue file: %w", err)
	}
	defer f.Close()

	var (
		streamer beep.Streamer
		rate     beep.SampleRate
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, rate, err = decodeWAV(f)
	case ".mp3":
		var format beep.Format
		streamer, format, err = mp3.Decode(f)
		rate = format.SampleRate
	default:
		return nil, fmt.Errorf("unsupported cue file type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("decode cue file %s: %w", path, err)
	}

	if rate != cueSampleRate {
		streamer = beep.Resample(4, rate, cueSampleRate, streamer)
	}
	return drainMono(streamer)
}

// decodeWAV reads integer PCM into frames scaled to [-1, 1]. Mono input is
// duplicated to both channels.
func decodeWAV(r io.ReadSeeker) (beep.Streamer, beep.SampleRate, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, errors.New("not a pcm wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}

	channels := buf.Format.NumChannels
	offset, scale := sampleRange(buf.SourceBitDepth)
	frames := make([][2]float64, 0, len(buf.Data)/channels)
	for i := 0; i+channels <= len(buf.Data); i += channels {
		left := (float64(buf.Data[i]) - offset) / scale
		right := left
		if channels > 1 {
			right = (float64(buf.Data[i+1]) - offset) / scale
		}
		frames = append(frames, [2]float64{left, right})
	}
	return &frameStreamer{frames: frames}, beep.SampleRate(buf.Format.SampleRate), nil
}

// sampleRange returns the zero offset and full-scale magnitude for a bit
// depth. 8-bit wav samples are unsigned.
func sampleRange(bitDepth int) (offset, scale float64) {
	if bitDepth == 8 {
		return 128, 128
	}
	return 0, float64(int64(1) << (bitDepth - 1))
}

type frameStreamer struct {
	frames [][2]float64
}

func (s *frameStreamer) Stream(samples [][2]float64) (int, bool) {
	if len(s.frames) == 0 {
		return 0, false
	}
	n := copy(samples, s.frames)
	s.frames = s.frames[n:]
	return n, true
}

func (s *frameStreamer) Err() error { return nil }

func drainMono(s beep.Streamer) ([]int16, error) {
	buf := make([][2]float64, 512)
	var pcm []int16
	for len(pcm) < maxCueDuration {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			mono := (frame[0] + frame[1]) / 2
			pcm = append(pcm, int16(math.Round(math.Max(-1, math.Min(1, mono))*32767)))
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("stream cue file: %w", err)
	}
	if len(pcm) == 0 {
		return nil, errors.New("cue file contains no audio")
	}
	return pcm[:min(len(pcm), maxCueDuration)], nil
}

func expandUserPath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw != "~" && !strings.HasPrefix(raw, "~/") {
		return raw
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return raw
	}
	return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(raw, "~"), "/"))
}
