// Package room implements the quiz room lifecycle: a registry of live
// rooms, the waiting -> started -> ended state machine, answer scoring
// and the session timer that hard-ends a room when its time limit runs
// out.
package room

import (
	"context"
	"log/slog"
	"time"

	"github.com/quizroom/quizroom-go/internal/broadcast"
	"github.com/quizroom/quizroom-go/internal/dependencies/clock"
	"github.com/quizroom/quizroom-go/internal/dependencies/random"
	"github.com/quizroom/quizroom-go/internal/model"
	"github.com/quizroom/quizroom-go/internal/services/scoring"
)

const (
	// CodeLength is the length of generated room codes
	CodeLength = 6
	// CodeAlphabet is the characters used in room codes (avoids
	// confusable chars; 32^6 combinations)
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Controller manages the room state machine
type Controller struct {
	store   *Store
	scoring *scoring.Service
	gateway broadcast.Gateway
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a new room Controller
func NewController(
	store *Store,
	scoringService *scoring.Service,
	gateway broadcast.Gateway,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		store:   store,
		scoring: scoringService,
		gateway: gateway,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "room")),
	}
}

// CreateRoom validates the quiz definition, generates a fresh unique
// code and registers a new room in the waiting state.
func (c *Controller) CreateRoom(ctx context.Context, questions []model.Question, timeLimit int) (model.RoomCode, error) {
	if len(questions) == 0 {
		return "", model.ErrNoQuestions
	}
	if timeLimit <= 0 {
		return "", model.ErrInvalidTimeLimit
	}

	r := &liveRoom{state: &model.Room{
		Questions: questions,
		TimeLimit: timeLimit,
		Status:    model.RoomStatusWaiting,
		CreatedAt: c.clock.Now(),
	}}

	// add is atomic on the code, so concurrent creators can never claim
	// the same one
	for {
		r.state.Code = model.RoomCode(c.random.String(CodeLength, CodeAlphabet))
		if c.store.add(r) {
			break
		}
	}

	c.logger.InfoContext(ctx, "room created",
		slog.String("room", string(r.state.Code)),
		slog.Int("questions", len(questions)),
		slog.Int("time_limit", timeLimit),
	)

	return r.state.Code, nil
}

// GetRoom returns a point-in-time copy of the room state
func (c *Controller) GetRoom(_ context.Context, code model.RoomCode) (*model.Room, error) {
	r, err := c.store.get(code)
	if err != nil {
		return nil, err
	}
	return r.snapshot(), nil
}

// Join adds a player to a waiting room and announces them to the room's
// subscribers. Rooms that have started (or ended) no longer accept
// players.
func (c *Controller) Join(ctx context.Context, code model.RoomCode, playerName string, isHost bool) (model.PlayerID, error) {
	r, err := c.store.get(code)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Status != model.RoomStatusWaiting {
		return "", model.ErrRoomAlreadyStarted
	}

	id := model.PlayerID(c.random.NewID())
	r.state.Players = append(r.state.Players, model.Player{
		ID:       id,
		Name:     playerName,
		IsHost:   isHost,
		JoinedAt: c.clock.Now(),
	})

	c.publish(ctx, code, model.EventUserJoined, model.UserJoinedPayload{
		PlayerName: playerName,
	})

	c.logger.InfoContext(ctx, "player joined",
		slog.String("room", string(code)),
		slog.String("player", playerName),
		slog.Bool("is_host", isHost),
		slog.Int("players", len(r.state.Players)),
	)

	return id, nil
}

// Start begins the timed session: fixes start and end times, publishes
// the game-started snapshot and schedules the session timer. Starting
// twice is an error, so a room can never have two competing timers.
func (c *Controller) Start(ctx context.Context, code model.RoomCode) error {
	r, err := c.store.get(code)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state.Status {
	case model.RoomStatusStarted:
		return model.ErrRoomAlreadyStarted
	case model.RoomStatusEnded:
		return model.ErrRoomEnded
	}

	now := c.clock.Now()
	duration := time.Duration(r.state.TimeLimit) * time.Second
	r.state.Status = model.RoomStatusStarted
	r.state.StartTime = now
	r.state.EndTime = now.Add(duration)

	c.publish(ctx, code, model.EventGameStarted, model.GameStartedPayload{
		Questions:   r.state.Questions,
		Leaderboard: r.state.Roster(),
		TimeLimit:   r.state.TimeLimit,
	})

	c.logger.InfoContext(ctx, "game started",
		slog.String("room", string(code)),
		slog.Int("players", len(r.state.Players)),
		slog.Time("ends_at", r.state.EndTime),
	)

	// The wait channel is claimed here, not in the goroutine, so the
	// deadline is fixed at the moment the game starts
	go c.runSessionTimer(r, c.clock.After(duration))

	return nil
}

// SubmitAnswer scores one answer for a player in a started room,
// publishes the refreshed leaderboard and ends the game if everyone has
// finished or the deadline has passed. It returns the player's updated
// total score.
func (c *Controller) SubmitAnswer(ctx context.Context, code model.RoomCode, playerID model.PlayerID, questionIndex int, answer string) (int, error) {
	r, err := c.store.get(code)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state.Status {
	case model.RoomStatusWaiting:
		return 0, model.ErrGameNotStarted
	case model.RoomStatusEnded:
		// Terminal state: the final leaderboard never changes
		return 0, model.ErrRoomEnded
	}

	player := r.state.Player(playerID)
	if player == nil {
		return 0, model.ErrPlayerNotFound
	}
	if questionIndex < 0 || questionIndex >= len(r.state.Questions) {
		return 0, model.ErrInvalidQuestionIndex
	}
	if player.Completed {
		return 0, model.ErrPlayerCompleted
	}

	now := c.clock.Now()
	result := c.scoring.Evaluate(
		r.state.Questions[questionIndex].CorrectAnswer,
		answer,
		r.state.StartTime,
		r.state.TimeLimit,
		now,
	)

	player.Score += result.Points
	player.Progress++
	if player.Progress >= len(r.state.Questions) {
		player.Completed = true
	}

	leaderboard := r.state.ComputeLeaderboard()
	c.publish(ctx, code, model.EventLeaderboardUpdated, model.LeaderboardUpdatedPayload{
		Leaderboard: leaderboard,
	})

	c.logger.InfoContext(ctx, "answer submitted",
		slog.String("room", string(code)),
		slog.String("player", player.Name),
		slog.Int("question", questionIndex),
		slog.Bool("correct", result.Correct),
		slog.Int("score", player.Score),
	)

	if r.state.AllCompleted() || !now.Before(r.state.EndTime) {
		c.endLocked(ctx, r.state, leaderboard)
	}

	return player.Score, nil
}

// runSessionTimer waits out the room's time limit and then force-ends
// the game. If submissions ended the game first, the fire is a no-op.
func (c *Controller) runSessionTimer(r *liveRoom, fire <-chan time.Time) {
	<-fire

	ctx := context.Background()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Status != model.RoomStatusStarted {
		return
	}
	c.endLocked(ctx, r.state, r.state.ComputeLeaderboard())
}

// endLocked performs the ended transition: freezes the final leaderboard
// and publishes game-ended. Callers hold the room mutex and have checked
// the status, so the transition and its event happen exactly once.
func (c *Controller) endLocked(ctx context.Context, state *model.Room, leaderboard []model.LeaderboardEntry) {
	state.Status = model.RoomStatusEnded
	state.Leaderboard = leaderboard

	c.publish(ctx, state.Code, model.EventGameEnded, model.GameEndedPayload{
		Leaderboard: leaderboard,
	})

	c.logger.InfoContext(ctx, "game ended",
		slog.String("room", string(state.Code)),
		slog.Int("players", len(state.Players)),
	)
}

// publish sends an event through the gateway; a failed publish is logged
// but never fails the operation that produced it
func (c *Controller) publish(ctx context.Context, code model.RoomCode, event string, payload any) {
	if err := c.gateway.Publish(ctx, code, event, payload); err != nil {
		c.logger.ErrorContext(ctx, "broadcast failed",
			slog.String("room", string(code)),
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}
