package summarize

// State enumerates the steps of the verified summarization protocol for one
// file. Drafts are regenerated each round; verification runs once, on the
// first round only, and its output is reused by every later densification.
type State int

const (
	// StateDraft requests a fresh summary draft from the model.
	StateDraft State = iota
	// StateVerified holds probing questions and independent answers about
	// the first draft.
	StateVerified
	// StateDensified has folded draft, questions and answers into the next
	// round's generation prompt.
	StateDensified
	// StateAccepted marks the final round's draft as the candidate result.
	StateAccepted
	// StateFailed marks an unrecoverable model or parse failure.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDraft:
		return "draft"
	case StateVerified:
		return "verified"
	case StateDensified:
		return "densified"
	case StateAccepted:
		return "accepted"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Transition returns the protocol state that follows from after the round'th
// draft. rounds is the total round budget; the draft produced in the last
// round is accepted without another densification.
func Transition(from State, round, rounds int) State {
	switch from {
	case StateDraft:
		if round >= rounds-1 {
			return StateAccepted
		}
		if round == 0 {
			return StateVerified
		}
		return StateDensified
	case StateVerified:
		return StateDensified
	case StateDensified:
		return StateDraft
	}
	return from
}
