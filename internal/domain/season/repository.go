package season

import "context"

// Repository describes season persistence needs from use cases.
type Repository interface {
	// GetActive returns the single active season, if any.
	GetActive(ctx context.Context) (Season, bool, error)
	GetByID(ctx context.Context, seasonID string) (Season, bool, error)
	List(ctx context.Context) ([]Season, error)
}
