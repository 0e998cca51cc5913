package session

// State is a screen of the session flow. Attract is both the initial state
// and where every session eventually returns.
type State int

const (
	StateAttract State = iota
	StateTemplate
	StateCountdown
	StateCapturing
	StateQuickReview
	StateSelection
	StateReview
	StatePrinting
)

var stateNames = map[State]string{
	StateAttract:     "attract",
	StateTemplate:    "template",
	StateCountdown:   "countdown",
	StateCapturing:   "capturing",
	StateQuickReview: "quick_review",
	StateSelection:   "selection",
	StateReview:      "review",
	StatePrinting:    "printing",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}
