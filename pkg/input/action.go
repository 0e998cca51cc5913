// Package input normalizes the booth's physical buttons and the web
// surface's injected presses into one action stream for the session
// controller.
package input

import "fmt"

// Action is a normalized operator input. The four buttons plus the
// synthesized cancel from a long Enter hold.
type Action int

const (
	ActionNext Action = iota
	ActionPrev
	ActionShutter
	ActionEnter
	ActionCancel
)

var actionNames = map[Action]string{
	ActionNext:    "next",
	ActionPrev:    "prev",
	ActionShutter: "shutter",
	ActionEnter:   "enter",
	ActionCancel:  "cancel",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unknown"
}

// ParseAction maps a wire name (the web API's input field) to an Action.
func ParseAction(s string) (Action, error) {
	for a, n := range actionNames {
		if n == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("input: unknown action %q", s)
}
