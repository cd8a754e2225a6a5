package season

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Season is a competitive ranking epoch. EndsAt nil means open-ended.
type Season struct {
	ID       string
	Name     string
	StartsAt time.Time
	EndsAt   *time.Time
	Status   Status
}

func (s Season) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("season id is required")
	}
	if s.StartsAt.IsZero() {
		return fmt.Errorf("season start is required")
	}
	if s.EndsAt != nil && !s.EndsAt.After(s.StartsAt) {
		return fmt.Errorf("season end must be after start")
	}
	switch s.Status {
	case StatusActive, StatusClosed:
	default:
		return fmt.Errorf("invalid season status %q", s.Status)
	}
	return nil
}

// Contains reports whether t falls in [StartsAt, EndsAt).
func (s Season) Contains(t time.Time) bool {
	if t.Before(s.StartsAt) {
		return false
	}
	if s.EndsAt != nil && !t.Before(*s.EndsAt) {
		return false
	}
	return true
}

func (s Season) IsActive() bool {
	return s.Status == StatusActive
}
