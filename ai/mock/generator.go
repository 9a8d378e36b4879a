package mock

import (
	"context"
	"fmt"
	"hash/fnv"
)

// MockStoryGenerator is a test double for ai.StoryGenerator.
// It allows custom behavior injection via function fields.
type MockStoryGenerator struct {
	// GenerateStoryFunc is called by GenerateStory if set.
	// If nil, uses default deterministic behavior.
	GenerateStoryFunc func(ctx context.Context, prompt string) (string, error)

	callCount int
}

// NewMockStoryGenerator creates a mock story generator with default behavior.
// Note: Returns concrete type to allow test assertions and behavior injection.
func NewMockStoryGenerator() *MockStoryGenerator {
	return &MockStoryGenerator{}
}

// GenerateStory produces a deterministic placeholder narrative keyed on the
// prompt hash, so repeated runs over the same input are stable.
func (m *MockStoryGenerator) GenerateStory(ctx context.Context, prompt string) (string, error) {
	m.callCount++

	if m.GenerateStoryFunc != nil {
		return m.GenerateStoryFunc(ctx, prompt)
	}

	h := fnv.New32a()
	h.Write([]byte(prompt))
	return fmt.Sprintf("A short environmental story (%08x).", h.Sum32()), nil
}

// CallCount returns the number of times GenerateStory was called.
func (m *MockStoryGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockStoryGenerator) Reset() {
	m.callCount = 0
	m.GenerateStoryFunc = nil
}
