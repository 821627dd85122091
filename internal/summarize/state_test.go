package summarize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionProtocolOrder(t *testing.T) {
	const rounds = 3

	// Round 0: draft, then the one-time verification, then densify.
	assert.Equal(t, StateVerified, Transition(StateDraft, 0, rounds))
	assert.Equal(t, StateDensified, Transition(StateVerified, 0, rounds))
	assert.Equal(t, StateDraft, Transition(StateDensified, 0, rounds))

	// Round 1: verification is skipped.
	assert.Equal(t, StateDensified, Transition(StateDraft, 1, rounds))
	assert.Equal(t, StateDraft, Transition(StateDensified, 1, rounds))

	// Final round's draft is accepted outright.
	assert.Equal(t, StateAccepted, Transition(StateDraft, 2, rounds))
}

func TestTransitionSingleRoundSkipsVerification(t *testing.T) {
	assert.Equal(t, StateAccepted, Transition(StateDraft, 0, 1))
}

func TestTransitionTerminalStatesAreStable(t *testing.T) {
	assert.Equal(t, StateAccepted, Transition(StateAccepted, 5, 3))
	assert.Equal(t, StateFailed, Transition(StateFailed, 5, 3))
}
