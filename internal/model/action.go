package model

import "fmt"

// Action is the kind of state-changing action an audit record describes.
type Action uint8

const (
	// ActionCreated records flag creation.
	ActionCreated Action = iota + 1

	// ActionEnabled records a manual enable.
	ActionEnabled

	// ActionDisabled records a manual disable.
	ActionDisabled

	// ActionAutoDisabled records a disable caused by a dependency being disabled.
	ActionAutoDisabled
)

// Actions lists every valid action in declaration order.
var Actions = []Action{ActionCreated, ActionEnabled, ActionDisabled, ActionAutoDisabled}

// String returns the wire form of the action.
func (a Action) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionEnabled:
		return "enabled"
	case ActionDisabled:
		return "disabled"
	case ActionAutoDisabled:
		return "auto-disabled"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}

// Valid reports whether a is one of the declared actions.
func (a Action) Valid() bool {
	switch a {
	case ActionCreated, ActionEnabled, ActionDisabled, ActionAutoDisabled:
		return true
	default:
		return false
	}
}

// ParseAction converts the wire form back into an Action.
func ParseAction(s string) (Action, error) {
	for _, a := range Actions {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown audit action %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid audit action %d", uint8(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
