package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/league"
)

type Notification struct {
	ActorID    string      `json:"actor_id"`
	Kind       string      `json:"kind"`
	Message    string      `json:"message"`
	Previous   league.Tier `json:"previous_tier,omitempty"`
	Next       league.Tier `json:"next_tier,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Notifier delivers user-facing notices. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Notification) error {
	return nil
}

func NewNoopNotifier() Notifier {
	return noopNotifier{}
}
