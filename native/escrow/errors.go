package escrow

import "errors"

var (
	// ErrProjectNotFound marks lookups for project ids that were never issued.
	ErrProjectNotFound = errors.New("escrow: project not found")
	// ErrInvalidMilestones covers invalid creation parameters: a non-positive
	// goal, an empty or oversized accepted-asset list, or a deadline that is
	// not in the future. The name is kept from the protocol error taxonomy.
	ErrInvalidMilestones = errors.New("escrow: invalid project parameters")
	// ErrGoalMismatch is returned when a submitted proof does not match the
	// stored commitment.
	ErrGoalMismatch = errors.New("escrow: proof does not match commitment")
	// ErrTokenNotAccepted marks deposits or removals naming an asset outside
	// the project's accepted list.
	ErrTokenNotAccepted = errors.New("escrow: token not accepted")
	// ErrZeroAmount rejects deposits of zero or negative amounts.
	ErrZeroAmount = errors.New("escrow: amount must be positive")
	// ErrTooManyTokens rejects whitelisting beyond the accepted-asset cap.
	ErrTooManyTokens = errors.New("escrow: accepted asset list full")
	// ErrTokenAlreadyAccepted rejects whitelisting an asset twice.
	ErrTokenAlreadyAccepted = errors.New("escrow: token already accepted")
	// ErrInvalidTransition marks operations invoked in a lifecycle state that
	// does not permit them.
	ErrInvalidTransition = errors.New("escrow: invalid status transition")
	// ErrDeadlineNotReached rejects expiry before the project deadline.
	ErrDeadlineNotReached = errors.New("escrow: deadline not reached")
	// ErrInsufficientBalance is returned by transfer capability
	// implementations when custody cannot cover a movement.
	ErrInsufficientBalance = errors.New("escrow: insufficient balance")

	// Reserved for milestone-based release extensions.
	ErrMilestoneNotFound        = errors.New("escrow: milestone not found")
	ErrMilestoneAlreadyReleased = errors.New("escrow: milestone already released")
)
