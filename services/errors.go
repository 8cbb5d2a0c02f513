// services/errors.go - Engine Error Taxonomy
package services

import "errors"

var (
	// ErrUserNotFound aborts the whole call; nothing can be evaluated without the user row.
	ErrUserNotFound = errors.New("user not found")

	ErrAchievementNotFound = errors.New("achievement not found")
	ErrMissionNotFound     = errors.New("mission not found")

	// ErrNotClaimable is returned when claiming a reward whose unlock/completion
	// precondition is not met yet.
	ErrNotClaimable = errors.New("reward not claimable")

	// ErrAlreadyClaimed is returned when the reward was already granted. Exactly one
	// of any set of concurrent claim calls succeeds; the rest get this.
	ErrAlreadyClaimed = errors.New("reward already claimed")
)
