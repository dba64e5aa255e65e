// Package scoring computes points for submitted answers. It is pure:
// everything it needs arrives as arguments, so it can be tested in
// isolation from room state.
package scoring

import (
	"math"
	"time"
)

const (
	// BasePoints is awarded for any correct answer
	BasePoints = 10

	// MaxBonus caps the speed bonus
	MaxBonus = 5
)

// Result describes the outcome of scoring one submission
type Result struct {
	Correct bool
	Bonus   int
	Points  int // BasePoints + Bonus for a correct answer, 0 otherwise
}

// Service evaluates answer submissions
type Service struct{}

// New creates a new scoring Service
func New() *Service {
	return &Service{}
}

// Evaluate scores a submission against the expected answer. Correctness
// is exact string equality. A correct answer earns BasePoints plus a
// speed bonus of floor(timeRemaining/timeLimit*MaxBonus), clamped to
// zero for submissions after the deadline.
func (s *Service) Evaluate(correctAnswer, answer string, startTime time.Time, timeLimit int, now time.Time) Result {
	if answer != correctAnswer {
		return Result{}
	}

	timeTaken := now.Sub(startTime).Seconds()
	timeRemaining := float64(timeLimit) - timeTaken

	bonus := int(math.Floor(timeRemaining / float64(timeLimit) * MaxBonus))
	if bonus < 0 {
		bonus = 0
	}

	return Result{
		Correct: true,
		Bonus:   bonus,
		Points:  BasePoints + bonus,
	}
}
