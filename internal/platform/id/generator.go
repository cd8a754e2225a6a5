package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator issues random (v4) UUIDs. It is the default for stored rows.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return value.String(), nil
}

// Batch pre-generates n ids and returns a function that hands them out in
// order. Calling it more than n times panics.
func Batch(gen Generator, n int) (func() string, error) {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		value, err := gen.NewID()
		if err != nil {
			return nil, err
		}
		ids = append(ids, value)
	}
	next := 0
	return func() string {
		value := ids[next]
		next++
		return value
	}, nil
}
