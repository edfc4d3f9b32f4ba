// Package uuid provides a small id generator that allows mocking.
package uuid

import "github.com/google/uuid"

// Generator is an interface for generating entity ids
type Generator interface {
	New() string
}

// googleGenerator implements Generator using Google's UUID package
type googleGenerator struct{}

// NewGenerator creates a Generator backed by google/uuid
func NewGenerator() Generator {
	return &googleGenerator{}
}

// New generates a new UUID string
func (g *googleGenerator) New() string {
	return uuid.New().String()
}
