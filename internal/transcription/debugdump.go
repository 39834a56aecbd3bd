package transcription

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/rbright/vox/internal/audio"
)

// createDebugFile creates a timestamped artifact under $XDG_STATE_HOME/vox/debug.
func createDebugFile(prefix string, extension string) (*os.File, error) {
	stateDir, err := resolveStateDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(stateDir, "vox", "debug")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create debug dir: %w", err)
	}

	name := fmt.Sprintf("%s-%s.%s", prefix, time.Now().Format("20060102-150405.000"), extension)
	path := filepath.Join(dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open debug file %q: %w", path, err)
	}
	return file, nil
}

func resolveStateDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return xdg, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for state: %w", err)
	}
	return filepath.Join(home, ".local", "state"), nil
}

// writeDebugWAV stores little-endian s16 mono PCM as a WAV file.
func writeDebugWAV(pcm []byte) error {
	if len(pcm) < 2 {
		return nil
	}

	samples := make([]int16, len(pcm)/2)
	if err := binary.Read(bytes.NewReader(pcm[:len(samples)*2]), binary.LittleEndian, samples); err != nil {
		return fmt.Errorf("decode pcm: %w", err)
	}
	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(v)
	}

	file, err := createDebugFile("audio", "wav")
	if err != nil {
		return err
	}
	defer file.Close()

	enc := wav.NewEncoder(file, audio.SampleRate, 16, audio.Channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: audio.Channels, SampleRate: audio.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return enc.Close()
}
