package casefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	t.Run("pending review", func(t *testing.T) {
		next, err := Transition(StatusPending, ActionReview)
		assert.NoError(t, err)
		assert.Equal(t, StatusReviewed, next)
	})

	t.Run("reviewed approve", func(t *testing.T) {
		next, err := Transition(StatusReviewed, ActionApprove)
		assert.NoError(t, err)
		assert.Equal(t, StatusApproved, next)
	})

	t.Run("pending approve skips reviewed", func(t *testing.T) {
		_, err := Transition(StatusPending, ActionApprove)
		assert.ErrorIs(t, err, ErrTransitionNotAllowed)
	})

	t.Run("approved is terminal", func(t *testing.T) {
		for _, action := range []Action{ActionReview, ActionApprove} {
			_, err := Transition(StatusApproved, action)
			assert.ErrorIs(t, err, ErrTransitionNotAllowed)
		}
	})

	t.Run("no backward transitions", func(t *testing.T) {
		assert.False(t, CanTransition(StatusReviewed, StatusPending))
		assert.False(t, CanTransition(StatusApproved, StatusReviewed))
		assert.False(t, CanTransition(StatusApproved, StatusPending))
	})
}

func TestRoleGating(t *testing.T) {
	assert.True(t, RoleCanPerform(RoleRegional, ActionReview))
	assert.False(t, RoleCanPerform(RoleRegional, ActionApprove))
	assert.True(t, RoleCanPerform(RoleAdmin, ActionApprove))
	assert.True(t, RoleCanPerform(RoleManager, ActionApprove))
	assert.False(t, RoleCanPerform(RoleOfficer, ActionReview))
	assert.False(t, RoleCanPerform(RoleOfficer, ActionApprove))

	// role strings are matched case-insensitively
	assert.True(t, RoleCanPerform("manager", ActionReview))
}

func TestAuthorize(t *testing.T) {
	next, err := Authorize(RoleRegional, StatusPending, ActionReview)
	assert.NoError(t, err)
	assert.Equal(t, StatusReviewed, next)

	_, err = Authorize(RoleRegional, StatusReviewed, ActionApprove)
	assert.ErrorIs(t, err, ErrRoleNotPermitted)

	_, err = Authorize(RoleAdmin, StatusApproved, ActionApprove)
	assert.ErrorIs(t, err, ErrTransitionNotAllowed)
}

func TestParseStatus(t *testing.T) {
	status, ok := ParseStatus(" Pending ")
	assert.True(t, ok)
	assert.Equal(t, StatusPending, status)

	_, ok = ParseStatus("archived")
	assert.False(t, ok)
}

func TestActionFor(t *testing.T) {
	action, err := ActionFor(StatusReviewed)
	assert.NoError(t, err)
	assert.Equal(t, ActionReview, action)

	action, err = ActionFor(StatusApproved)
	assert.NoError(t, err)
	assert.Equal(t, ActionApprove, action)

	_, err = ActionFor(StatusPending)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
