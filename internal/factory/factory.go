package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/quizroom/quizroom-go/internal/broadcast"
	"github.com/quizroom/quizroom-go/internal/dependencies/clock"
	"github.com/quizroom/quizroom-go/internal/dependencies/random"
	"github.com/quizroom/quizroom-go/internal/services/room"
	"github.com/quizroom/quizroom-go/internal/services/scoring"
)

// Broadcast type constants
const (
	BroadcastTypeHub   = "hub"
	BroadcastTypeRedis = "redis"
)

// App contains all wired application components
type App struct {
	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Event transport
	Gateway broadcast.Gateway

	// Services
	ScoringService *scoring.Service
	RoomStore      *room.Store
	RoomController *room.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// BroadcastType selects the event transport ("hub" or "redis")
	// If empty, defaults to "hub"
	BroadcastType string
	// RedisConfig holds Redis connection settings (required if BroadcastType is "redis")
	RedisConfig *broadcast.RedisConfig
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create event transport based on type
	broadcastType := cfg.BroadcastType
	if broadcastType == "" {
		broadcastType = BroadcastTypeHub
	}

	var gateway broadcast.Gateway
	switch broadcastType {
	case BroadcastTypeHub:
		gateway = broadcast.NewHubGateway(logger)
	case BroadcastTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when BroadcastType is redis")
		}
		redisGateway, err := broadcast.NewRedisGateway(*cfg.RedisConfig, logger)
		if err != nil {
			return nil, err
		}
		gateway = redisGateway
	default:
		return nil, errors.New("invalid BroadcastType: must be 'hub' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(gateway, clk, rnd, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(gateway broadcast.Gateway, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	scoringService := scoring.New()
	roomStore := room.NewStore()
	roomController := room.NewController(roomStore, scoringService, gateway, clk, rnd, logger)

	return &App{
		Clock:          clk,
		Random:         rnd,
		Gateway:        gateway,
		ScoringService: scoringService,
		RoomStore:      roomStore,
		RoomController: roomController,
	}
}
