// Package hook feeds system-wide modifier state into the gesture tracker.
// Building it requires cgo and the X11 headers.
package hook

import (
	"context"
	"log/slog"
	"time"

	gohook "github.com/robotn/gohook"

	"github.com/rbright/vox/internal/gesture"
)

// libuiohook virtual keycodes for the modifier keys.
var modifierKeycodes = map[uint16]gesture.Flags{
	0x002A: gesture.ShiftL,
	0x0036: gesture.ShiftR,
	0x001D: gesture.CtrlL,
	0x0E1D: gesture.CtrlR,
	0x0E5B: gesture.SuperL,
	0x0E5C: gesture.SuperR,
	0x0038: gesture.AltL,
	0x0E38: gesture.AltR,
}

const hookReadyTimeout = 2 * time.Second

// Source reads system-wide keyboard events and reports the modifier set
// after each key event.
type Source struct {
	logger *slog.Logger
	start  func() chan gohook.Event
	end    func()
}

func New(logger *slog.Logger) *Source {
	return &Source{logger: logger, start: gohook.Start, end: gohook.End}
}

// Run forwards flag sets to sink until ctx is cancelled. A hook that never
// reports ready leaves the daemon running without gesture input.
func (s *Source) Run(ctx context.Context, sink func(gesture.Flags)) {
	events := s.start()
	defer s.end()

	ready := time.NewTimer(hookReadyTimeout)
	defer ready.Stop()

	var last gesture.Flags
	for {
		select {
		case <-ctx.Done():
			return
		case <-ready.C:
			s.warn("global keyboard hook did not report ready; push-to-talk is inactive until it does")
		case ev, ok := <-events:
			if !ok {
				s.warn("global keyboard hook closed")
				return
			}
			switch ev.Kind {
			case gohook.HookEnabled:
				ready.Stop()
				if s.logger != nil {
					s.logger.Info("global keyboard hook ready")
				}
			case gohook.KeyDown, gohook.KeyHold, gohook.KeyUp:
				flags := flagsFor(ev)
				if flags == last {
					continue
				}
				last = flags
				sink(flags)
			}
		}
	}
}

// flagsFor merges the event mask with the event's own key, since some
// backends report the mask before applying the current press or release.
func flagsFor(ev gohook.Event) gesture.Flags {
	flags := gesture.Flags(ev.Mask) & (gesture.Shift | gesture.Ctrl | gesture.Super | gesture.Alt)
	bit, ok := modifierKeycodes[ev.Keycode]
	if !ok {
		return flags
	}
	if ev.Kind == gohook.KeyUp {
		return flags &^ bit
	}
	return flags | bit
}

func (s *Source) warn(msg string) {
	if s.logger != nil {
		s.logger.Warn(msg)
	}
}
