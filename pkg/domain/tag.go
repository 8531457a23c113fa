package domain

import (
	"fmt"
	"strings"
)

// Tag names a side effect attached to a command. Tags observe the raw
// condition conjunction every tick, independently of the trigger decision.
// The runtime creates fresh tag state for every command a tag is declared on.
type Tag int

const (
	// TagUnset is the zero value and is rejected at registration.
	TagUnset Tag = iota
	// PauseDefault suspends the scheduler's default behavior while the
	// owning command's conditions hold and restores it when they stop holding.
	PauseDefault
)

var tagNames = map[Tag]string{
	PauseDefault: "pause_default",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tag(%d)", int(t))
}

// Valid reports whether t is a known tag.
func (t Tag) Valid() bool {
	_, ok := tagNames[t]
	return ok
}

// ParseTag accepts "pause_default" (also "pause-default", "pause_default_command").
func ParseTag(s string) (Tag, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	switch key {
	case "pause_default", "pause_default_command":
		return PauseDefault, nil
	}
	return TagUnset, fmt.Errorf("%w: %q", ErrInvalidTag, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTag, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(text []byte) error {
	parsed, err := ParseTag(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
