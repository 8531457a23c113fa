package domain

import (
	"fmt"
	"strings"
)

// Mode selects how a command's condition conjunction becomes a run decision.
type Mode int

const (
	// ModeUnset is the zero value and is rejected at registration.
	ModeUnset Mode = iota
	// LevelTrue runs the command on every tick its conditions hold.
	LevelTrue
	// LevelFalse runs the command on every tick its conditions do not hold.
	LevelFalse
	// EdgeTrue runs the command once each time its conditions become true.
	EdgeTrue
	// EdgeFalse runs the command once each time its conditions become false.
	EdgeFalse
)

var modeNames = map[Mode]string{
	LevelTrue:  "level_true",
	LevelFalse: "level_false",
	EdgeTrue:   "edge_true",
	EdgeFalse:  "edge_false",
}

var modeAliases = map[string]Mode{
	"level_true":  LevelTrue,
	"level_false": LevelFalse,
	"edge_true":   EdgeTrue,
	"edge_false":  EdgeFalse,
	"while_true":  LevelTrue,
	"while_false": LevelFalse,
	"on_true":     EdgeTrue,
	"on_false":    EdgeFalse,
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Valid reports whether m is one of the four trigger modes.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode accepts the canonical names and the while_/on_ aliases.
func ParseMode(s string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if m, ok := modeAliases[key]; ok {
		return m, nil
	}
	return ModeUnset, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// TriggerMode is the per-command state machine behind a Mode.
// Level modes are stateless; edge modes keep a one-bit latch that is cleared
// as soon as the conjunction enters the opposite branch.
//
// A TriggerMode is a value: every registered command gets its own copy.
type TriggerMode struct {
	mode  Mode
	latch bool
}

// NewTriggerMode returns a fresh, unlatched trigger for m.
func NewTriggerMode(m Mode) TriggerMode {
	return TriggerMode{mode: m}
}

// Mode returns the variant of the trigger.
func (t *TriggerMode) Mode() Mode { return t.mode }

// OnTrueTick is called on a tick where the conjunction holds.
func (t *TriggerMode) OnTrueTick() bool {
	switch t.mode {
	case LevelTrue:
		return true
	case EdgeTrue:
		fired := t.latch
		t.latch = true
		return !fired
	case EdgeFalse:
		t.latch = false
		return false
	default:
		return false
	}
}

// OnFalseTick is called on a tick where the conjunction does not hold.
func (t *TriggerMode) OnFalseTick() bool {
	switch t.mode {
	case LevelFalse:
		return true
	case EdgeTrue:
		t.latch = false
		return false
	case EdgeFalse:
		fired := t.latch
		t.latch = true
		return !fired
	default:
		return false
	}
}

// Decide dispatches to OnTrueTick or OnFalseTick.
func (t *TriggerMode) Decide(active bool) bool {
	if active {
		return t.OnTrueTick()
	}
	return t.OnFalseTick()
}
