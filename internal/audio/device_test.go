package audio

import (
	"context"
	"errors"
	"reflect"
	"testing"

	pulseproto "github.com/jfreymuth/pulse/proto"
	"github.com/stretchr/testify/require"
)

func TestSelectFromUsesDefault(t *testing.T) {
	devices := []Device{
		{ID: "alsa_input.usb-elgato", Description: "Elgato Wave 3", Available: true, Default: true},
		{ID: "bluez_input.sony", Description: "Sony WH-1000XM5", Available: true},
	}

	selection, err := selectFrom(devices, "default", "default")
	require.NoError(t, err)
	require.Equal(t, "alsa_input.usb-elgato", selection.Device.ID)
	require.Empty(t, selection.Warning)
	require.False(t, selection.Fallback)
}

func TestSelectFromMatchesDescription(t *testing.T) {
	devices := []Device{
		{ID: "alsa_input.usb-elgato", Description: "Elgato Wave 3", Available: true, Default: true},
		{ID: "bluez_input.sony", Description: "Sony WH-1000XM5", Available: true},
	}

	selection, err := selectFrom(devices, "WH-1000", "")
	require.NoError(t, err)
	require.Equal(t, "bluez_input.sony", selection.Device.ID)
}

func TestSelectFromMutedPrimaryFallsBack(t *testing.T) {
	devices := []Device{
		{ID: "elgato", Description: "Elgato Wave 3", Available: true, Muted: true, Default: true},
		{ID: "sony", Description: "Sony WH-1000XM5", Available: true},
	}

	selection, err := selectFrom(devices, "elgato", "sony")
	require.NoError(t, err)
	require.Equal(t, "sony", selection.Device.ID)
	require.Contains(t, selection.Warning, "muted")
	require.True(t, selection.Fallback)
}

func TestSelectFromFailures(t *testing.T) {
	tests := []struct {
		name     string
		devices  []Device
		input    string
		fallback string
		wantErr  string
	}{
		{name: "no devices", wantErr: "no audio input devices"},
		{
			name:    "unknown input",
			devices: []Device{{ID: "elgato", Available: true, Default: true}},
			input:   "missing", fallback: "default",
			wantErr: "did not match",
		},
		{
			name:    "muted default with default fallback",
			devices: []Device{{ID: "elgato", Available: true, Muted: true, Default: true}},
			input:   "default", fallback: "default",
			wantErr: "muted",
		},
		{
			name: "fallback unavailable",
			devices: []Device{
				{ID: "elgato", Available: false, Default: true},
				{ID: "sony", Available: false},
			},
			input: "default", fallback: "sony",
			wantErr: "not available",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := selectFrom(tc.devices, tc.input, tc.fallback)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrNoUsableInput))
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestActivePortAvailable(t *testing.T) {
	require.True(t, activePortAvailable(&pulseproto.GetSourceInfoReply{}))

	info := &pulseproto.GetSourceInfoReply{ActivePortName: "analog-input-mic"}
	setPorts(t, info, map[string]uint32{"analog-input-line": 2, "analog-input-mic": 1})
	require.False(t, activePortAvailable(info))

	setPorts(t, info, map[string]uint32{"analog-input-mic": 0})
	require.True(t, activePortAvailable(info))
}

func TestListDevicesReportsUnavailableServer(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/vox-missing-pulse-server")
	_, err := ListDevices(context.Background())
	require.ErrorIs(t, err, ErrServerUnavailable)
}

func TestDeviceString(t *testing.T) {
	require.Equal(t, "Elgato (alsa_input.wave3)", Device{Description: "Elgato", ID: "alsa_input.wave3"}.String())
	require.Equal(t, "Elgato", Device{Description: "Elgato"}.String())
	require.Equal(t, "alsa_input.wave3", Device{ID: "alsa_input.wave3"}.String())
}

func TestSourceState(t *testing.T) {
	require.Equal(t, "running", sourceState(0))
	require.Equal(t, "suspended", sourceState(2))
	require.Equal(t, "unknown(9)", sourceState(9))
}

// setPorts fills the anonymous port struct slice on a source info reply.
func setPorts(t *testing.T, info *pulseproto.GetSourceInfoReply, ports map[string]uint32) {
	t.Helper()

	slice := reflect.MakeSlice(reflect.TypeOf(info.Ports), 0, len(ports))
	for name, available := range ports {
		item := reflect.New(slice.Type().Elem()).Elem()
		item.FieldByName("Name").SetString(name)
		item.FieldByName("Available").SetUint(uint64(available))
		slice = reflect.Append(slice, item)
	}
	reflect.ValueOf(info).Elem().FieldByName("Ports").Set(slice)
}
