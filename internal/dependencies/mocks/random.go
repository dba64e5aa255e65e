package mocks

import (
	"fmt"

	"github.com/quizroom/quizroom-go/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// IntnResults is a queue of results to return from Intn
	IntnResults []int
	intnIndex   int

	// StringResults is a queue of results to return from String
	StringResults []string
	stringIndex   int

	// IDResults is a queue of results to return from NewID
	IDResults []string
	idIndex   int
	idSerial  int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	if r.intnIndex >= len(r.IntnResults) {
		return 0
	}
	result := r.IntnResults[r.intnIndex]
	r.intnIndex++
	return result
}

// String returns the next queued result, or empty string if none remaining
func (r *MockRandom) String(length int, alphabet string) string {
	if r.stringIndex >= len(r.StringResults) {
		return ""
	}
	result := r.StringResults[r.stringIndex]
	r.stringIndex++
	return result
}

// NewID returns the next queued ID. When the queue is exhausted it falls
// back to a deterministic serial so joins never collide.
func (r *MockRandom) NewID() string {
	if r.idIndex < len(r.IDResults) {
		result := r.IDResults[r.idIndex]
		r.idIndex++
		return result
	}
	r.idSerial++
	return fmt.Sprintf("mock-id-%d", r.idSerial)
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.IntnResults = append(r.IntnResults, values...)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.StringResults = append(r.StringResults, values...)
}

// QueueID adds values to the NewID result queue
func (r *MockRandom) QueueID(values ...string) {
	r.IDResults = append(r.IDResults, values...)
}
