// Package audio discovers PulseAudio input sources and captures 16 kHz mono PCM.
package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

var (
	// ErrServerUnavailable means no PulseAudio-compatible server answered.
	ErrServerUnavailable = errors.New("pulse server unavailable")
	// ErrNoUsableInput means the server answered but no configured source can record.
	ErrNoUsableInput = errors.New("no usable audio input")
)

// Device describes one Pulse input source.
type Device struct {
	ID          string
	Description string
	State       string
	Available   bool
	Muted       bool
	Default     bool
}

func (d Device) usable() bool {
	return d.Available && !d.Muted
}

// String renders "Description (id)" for logs.
func (d Device) String() string {
	switch {
	case d.Description == "":
		return d.ID
	case d.ID == "":
		return d.Description
	default:
		return fmt.Sprintf("%s (%s)", d.Description, d.ID)
	}
}

// Selection is the resolved capture source plus fallback context.
type Selection struct {
	Device   Device
	Warning  string
	Fallback bool
}

func newClient() (*pulse.Client, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("vox"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServerUnavailable, err)
	}
	return client, nil
}

// ListDevices returns Pulse input sources with default/availability metadata.
func ListDevices(_ context.Context) ([]Device, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("read default source: %w", err)
	}

	var infos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &infos); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		if info == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          info.SourceName,
			Description: info.Device,
			State:       sourceState(info.State),
			Available:   activePortAvailable(info),
			Muted:       info.Mute,
			Default:     info.SourceName == defaultSource.ID(),
		})
	}
	return devices, nil
}

// SelectDevice resolves input/fallback preferences against live devices.
func SelectDevice(ctx context.Context, input string, fallback string) (Selection, error) {
	devices, err := ListDevices(ctx)
	if err != nil {
		return Selection{}, err
	}
	return selectFrom(devices, input, fallback)
}

// selectFrom picks the preferred source, falling back once when it is muted or
// unavailable. "default" or an empty preference means the server default.
func selectFrom(devices []Device, input string, fallback string) (Selection, error) {
	if len(devices) == 0 {
		return Selection{}, fmt.Errorf("%w: no audio input devices found", ErrNoUsableInput)
	}

	primary, err := lookup(devices, input)
	if err != nil {
		return Selection{}, fmt.Errorf("%w: audio.input: %w", ErrNoUsableInput, err)
	}
	if primary.usable() {
		return Selection{Device: primary}, nil
	}

	reason := "unavailable"
	if primary.Muted {
		reason = "muted"
	}

	alternate, err := lookup(devices, fallback)
	if err != nil {
		return Selection{}, fmt.Errorf("%w: input %q is %s and audio.fallback: %w", ErrNoUsableInput, primary.ID, reason, err)
	}
	if alternate.Muted {
		return Selection{}, fmt.Errorf("%w: audio fallback device %q is muted", ErrNoUsableInput, alternate.ID)
	}
	if !alternate.Available {
		return Selection{}, fmt.Errorf("%w: audio fallback device %q is not available", ErrNoUsableInput, alternate.ID)
	}

	return Selection{
		Device:   alternate,
		Warning:  fmt.Sprintf("audio.input %q is %s; falling back to %q", primary.ID, reason, alternate.ID),
		Fallback: alternate.ID != primary.ID,
	}, nil
}

func lookup(devices []Device, term string) (Device, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || term == "default" {
		for _, dev := range devices {
			if dev.Default {
				return dev, nil
			}
		}
		return Device{}, errors.New("default audio source is unavailable")
	}

	for _, dev := range devices {
		if strings.Contains(strings.ToLower(dev.ID), term) || strings.Contains(strings.ToLower(dev.Description), term) {
			return dev, nil
		}
	}
	return Device{}, fmt.Errorf("%q did not match any device", term)
}

func sourceState(state uint32) string {
	switch state {
	case 0:
		return "running"
	case 1:
		return "idle"
	case 2:
		return "suspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

// activePortAvailable treats sources without ports, or whose active port reports
// unknown (0) or yes (2), as available.
func activePortAvailable(info *pulseproto.GetSourceInfoReply) bool {
	for _, port := range info.Ports {
		if port.Name == info.ActivePortName {
			return port.Available == 0 || port.Available == 2
		}
	}
	return true
}
