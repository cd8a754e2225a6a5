package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	ErrAlreadyClaimed   = errors.New("already claimed")
	ErrAlreadyPurchased = errors.New("already purchased")
	ErrInsufficientXP   = errors.New("insufficient xp")
	ErrNotYetComplete   = errors.New("not yet complete")
)
