package generator

import (
	"github.com/google/uuid"
)

// Generator is an interface that defines a method to generate a new value of type T.
type Generator[T any] interface {
	Next() (T, error)
}

// RunIDGenerator produces identifiers for bridge runs. Each ID is a random
// UUID prefixed with the pipeline direction, e.g. "uplink-3f0c...".
type RunIDGenerator struct {
	Direction string
}

func (g RunIDGenerator) Next() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	if g.Direction == "" {
		return id.String(), nil
	}
	return g.Direction + "-" + id.String(), nil
}

var _ Generator[string] = RunIDGenerator{}
