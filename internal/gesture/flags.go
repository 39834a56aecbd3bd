// Package gesture turns global modifier-key state into push-to-talk edges.
package gesture

import (
	"fmt"
	"strings"
)

// Flags is the full modifier set carried by one keyboard event. Bit positions
// follow libuiohook's modifier mask.
type Flags uint16

const (
	ShiftL Flags = 1 << iota
	CtrlL
	SuperL
	AltL
	ShiftR
	CtrlR
	SuperR
	AltR
)

const (
	Shift = ShiftL | ShiftR
	Ctrl  = CtrlL | CtrlR
	Super = SuperL | SuperR
	Alt   = AltL | AltR
)

var keyNames = map[string]Flags{
	"shift":   Shift,
	"shift_l": ShiftL,
	"shift_r": ShiftR,
	"ctrl":    Ctrl,
	"ctrl_l":  CtrlL,
	"ctrl_r":  CtrlR,
	"super":   Super,
	"super_l": SuperL,
	"super_r": SuperR,
	"alt":     Alt,
	"alt_l":   AltL,
	"alt_r":   AltR,
}

// Binding selects which flags count as the trigger and which as the AI modifier.
type Binding struct {
	Trigger  Flags
	Modifier Flags
}

// ParseKey resolves a key name such as "ctrl_r" or "shift" to its flag mask.
func ParseKey(name string) (Flags, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "_")
	flags, ok := keyNames[key]
	if !ok {
		return 0, fmt.Errorf("unknown modifier key %q", name)
	}
	return flags, nil
}

// ParseBinding resolves trigger and modifier names. The two masks must not overlap.
func ParseBinding(trigger, modifier string) (Binding, error) {
	t, err := ParseKey(trigger)
	if err != nil {
		return Binding{}, fmt.Errorf("trigger: %w", err)
	}
	m, err := ParseKey(modifier)
	if err != nil {
		return Binding{}, fmt.Errorf("modifier: %w", err)
	}
	if t&m != 0 {
		return Binding{}, fmt.Errorf("trigger %q overlaps modifier %q", trigger, modifier)
	}
	return Binding{Trigger: t, Modifier: m}, nil
}
