package casefile

import (
	"errors"
	"strings"
)

// Status is the review status shared by claims and legal cases. Transitions
// are forward-only: pending → reviewed → approved. Approved is terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusReviewed Status = "reviewed"
	StatusApproved Status = "approved"
)

// Action is a requested status transition.
type Action string

const (
	ActionReview  Action = "review"
	ActionApprove Action = "approve"
)

// Role names shared across the system. REGIONAL users may review but not
// approve; OFFICER is read-only.
const (
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleRegional = "REGIONAL"
	RoleOfficer  = "OFFICER"
)

// ValidRole reports whether a role name is one of the four role classes.
func ValidRole(role string) bool {
	switch strings.ToUpper(strings.TrimSpace(role)) {
	case RoleAdmin, RoleManager, RoleRegional, RoleOfficer:
		return true
	default:
		return false
	}
}

var (
	ErrInvalidStatus        = errors.New("invalid_record_status")
	ErrInvalidAction        = errors.New("invalid_action")
	ErrTransitionNotAllowed = errors.New("transition_not_allowed")
	ErrRoleNotPermitted     = errors.New("role_not_permitted")
)

// ParseStatus reads a wire status case-insensitively.
func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, true
	case StatusReviewed:
		return StatusReviewed, true
	case StatusApproved:
		return StatusApproved, true
	default:
		return "", false
	}
}

// ParseAction reads a bulk action tag.
func ParseAction(raw string) (Action, bool) {
	switch Action(strings.ToLower(strings.TrimSpace(raw))) {
	case ActionReview:
		return ActionReview, true
	case ActionApprove:
		return ActionApprove, true
	default:
		return "", false
	}
}

// Target returns the status an action drives a record toward.
func (a Action) Target() (Status, error) {
	switch a {
	case ActionReview:
		return StatusReviewed, nil
	case ActionApprove:
		return StatusApproved, nil
	default:
		return "", ErrInvalidAction
	}
}

// ActionFor maps a requested target status back to the transition that
// produces it. There is no action for pending: records are born pending.
func ActionFor(target Status) (Action, error) {
	switch target {
	case StatusReviewed:
		return ActionReview, nil
	case StatusApproved:
		return ActionApprove, nil
	default:
		return "", ErrInvalidStatus
	}
}

// CanTransition reports whether from→to is an allowed forward step. Skipping
// reviewed and any movement out of approved are rejected.
func CanTransition(from, to Status) bool {
	switch {
	case from == StatusPending && to == StatusReviewed:
		return true
	case from == StatusReviewed && to == StatusApproved:
		return true
	default:
		return false
	}
}

// Transition applies an action to a current status.
func Transition(from Status, action Action) (Status, error) {
	to, err := action.Target()
	if err != nil {
		return "", err
	}
	if !CanTransition(from, to) {
		return "", ErrTransitionNotAllowed
	}
	return to, nil
}

var actionRoles = map[Action][]string{
	ActionReview:  {RoleAdmin, RoleManager, RoleRegional},
	ActionApprove: {RoleAdmin, RoleManager},
}

// RoleCanPerform reports whether a role class may request the action.
func RoleCanPerform(role string, action Action) bool {
	role = strings.ToUpper(strings.TrimSpace(role))
	for _, allowed := range actionRoles[action] {
		if role == allowed {
			return true
		}
	}
	return false
}

// Authorize combines the role gate and the state machine in one check.
func Authorize(role string, from Status, action Action) (Status, error) {
	if !RoleCanPerform(role, action) {
		return "", ErrRoleNotPermitted
	}
	return Transition(from, action)
}
