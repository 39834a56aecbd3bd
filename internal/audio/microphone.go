package audio

import (
	"context"
	"log/slog"

	"github.com/rbright/vox/internal/config"
)

// Microphone resolves the configured source on demand and opens captures on it.
type Microphone struct {
	cfg     config.AudioConfig
	keepRaw bool
	logger  *slog.Logger

	selectDevice func(ctx context.Context, input, fallback string) (Selection, error)
	startCapture func(ctx context.Context, device Device, keepRaw bool) (*Capture, error)
}

// NewMicrophone builds a Microphone. keepRaw retains each recording for debug dumps.
func NewMicrophone(cfg config.AudioConfig, keepRaw bool, logger *slog.Logger) *Microphone {
	return &Microphone{
		cfg:          cfg,
		keepRaw:      keepRaw,
		logger:       logger,
		selectDevice: SelectDevice,
		startCapture: StartCapture,
	}
}

// Authorize reports whether recording is currently possible. The error wraps
// ErrServerUnavailable or ErrNoUsableInput.
func (m *Microphone) Authorize(ctx context.Context) error {
	_, err := m.selectDevice(ctx, m.cfg.Input, m.cfg.Fallback)
	return err
}

// Open selects a device and starts capturing from it.
func (m *Microphone) Open(ctx context.Context) (*Capture, error) {
	selection, err := m.selectDevice(ctx, m.cfg.Input, m.cfg.Fallback)
	if err != nil {
		return nil, err
	}
	if selection.Warning != "" && m.logger != nil {
		m.logger.Warn(selection.Warning)
	}

	capture, err := m.startCapture(ctx, selection.Device, m.keepRaw)
	if err != nil {
		return nil, err
	}
	if m.logger != nil {
		m.logger.Debug("audio capture started", "device", selection.Device.String())
	}
	return capture, nil
}
