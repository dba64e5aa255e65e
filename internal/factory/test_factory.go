package factory

import (
	"time"

	"github.com/quizroom/quizroom-go/internal/broadcast"
	"github.com/quizroom/quizroom-go/internal/dependencies/mocks"
	"github.com/quizroom/quizroom-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom

	// HubGateway is the concrete gateway for subscribing in tests
	HubGateway *broadcast.HubGateway
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	logger := testutil.NopLogger()
	gateway := broadcast.NewHubGateway(logger)
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(gateway, mockClock, mockRandom, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		HubGateway: gateway,
	}
}
