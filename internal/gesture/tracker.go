package gesture

type EdgeKind int

const (
	TriggerPressed EdgeKind = iota + 1
	TriggerReleased
)

func (k EdgeKind) String() string {
	switch k {
	case TriggerPressed:
		return "trigger_pressed"
	case TriggerReleased:
		return "trigger_released"
	default:
		return "unknown"
	}
}

// Edge is a trigger transition. ModifierHeld is only meaningful on press.
type Edge struct {
	Kind         EdgeKind
	ModifierHeld bool
}

// State is the last derived trigger/modifier pair.
type State struct {
	TriggerHeld  bool
	ModifierHeld bool
}

// Tracker derives trigger edges from successive flag sets. It is not safe for
// concurrent use; the owner serializes Observe calls.
type Tracker struct {
	binding Binding
	state   State
}

func NewTracker(binding Binding) *Tracker {
	return &Tracker{binding: binding}
}

// Observe records flags and reports an edge when the trigger changed.
// Modifier-only changes update state without producing an edge.
func (t *Tracker) Observe(flags Flags) (Edge, bool) {
	next := State{
		TriggerHeld:  flags&t.binding.Trigger != 0,
		ModifierHeld: flags&t.binding.Modifier != 0,
	}
	prev := t.state
	t.state = next

	switch {
	case next.TriggerHeld && !prev.TriggerHeld:
		return Edge{Kind: TriggerPressed, ModifierHeld: next.ModifierHeld}, true
	case !next.TriggerHeld && prev.TriggerHeld:
		return Edge{Kind: TriggerReleased}, true
	default:
		return Edge{}, false
	}
}

func (t *Tracker) State() State {
	return t.state
}

// Rebind swaps key bindings. The next Observe derives state under the new binding.
func (t *Tracker) Rebind(binding Binding) {
	t.binding = binding
}
