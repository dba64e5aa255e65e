package room

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/quizroom/quizroom-go/internal/broadcast"
	"github.com/quizroom/quizroom-go/internal/dependencies/mocks"
	"github.com/quizroom/quizroom-go/internal/model"
	"github.com/quizroom/quizroom-go/internal/services/scoring"
	"github.com/quizroom/quizroom-go/internal/testutil"
)

// recorderGateway captures published events per room
type recorderGateway struct {
	mu     sync.Mutex
	events map[model.RoomCode][]broadcast.Envelope
}

var _ broadcast.Gateway = (*recorderGateway)(nil)

func newRecorderGateway() *recorderGateway {
	return &recorderGateway{events: make(map[model.RoomCode][]broadcast.Envelope)}
}

func (g *recorderGateway) Publish(_ context.Context, code model.RoomCode, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events[code] = append(g.events[code], broadcast.Envelope{Event: event, Data: data})
	return nil
}

func (g *recorderGateway) Subscribe(_ context.Context, _ model.RoomCode) (*broadcast.Subscription, error) {
	ch := make(chan broadcast.Envelope)
	return broadcast.NewSubscription(ch, func() {}), nil
}

func (g *recorderGateway) names(code model.RoomCode) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var names []string
	for _, env := range g.events[code] {
		names = append(names, env.Event)
	}
	return names
}

func (g *recorderGateway) count(code model.RoomCode, event string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, env := range g.events[code] {
		if env.Event == event {
			n++
		}
	}
	return n
}

// last returns the most recent envelope for the event, or nil
func (g *recorderGateway) last(code model.RoomCode, event string) *broadcast.Envelope {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := len(g.events[code]) - 1; i >= 0; i-- {
		if g.events[code][i].Event == event {
			env := g.events[code][i]
			return &env
		}
	}
	return nil
}

type ControllerSuite struct {
	suite.Suite
	store      *Store
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	gateway    *recorderGateway
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.store = NewStore()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.gateway = newRecorderGateway()
	s.controller = NewController(s.store, scoring.New(), s.gateway, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ControllerSuite) questions(n int) []model.Question {
	qs := make([]model.Question, 0, n)
	for i := 0; i < n; i++ {
		qs = append(qs, model.Question{Prompt: "2+2?", CorrectAnswer: "4"})
	}
	return qs
}

// createRoom makes a room with the given code, n questions and a 60s limit
func (s *ControllerSuite) createRoom(code string, n int) model.RoomCode {
	s.random.QueueString(code)
	created, err := s.controller.CreateRoom(s.ctx, s.questions(n), 60)
	s.Require().NoError(err)
	s.Require().Equal(model.RoomCode(code), created)
	return created
}

// CreateRoom tests

func (s *ControllerSuite) TestCreateRoomInitialState() {
	code := s.createRoom("ABC123", 2)

	room, err := s.controller.GetRoom(s.ctx, code)
	s.Require().NoError(err)
	s.Equal(model.RoomStatusWaiting, room.Status)
	s.Len(room.Questions, 2)
	s.Equal(60, room.TimeLimit)
	s.Empty(room.Players)
	s.Empty(room.Leaderboard)
	s.True(room.StartTime.IsZero())
}

func (s *ControllerSuite) TestCreateRoomRejectsEmptyQuestions() {
	_, err := s.controller.CreateRoom(s.ctx, nil, 60)
	s.ErrorIs(err, model.ErrNoQuestions)
}

func (s *ControllerSuite) TestCreateRoomRejectsNonPositiveTimeLimit() {
	_, err := s.controller.CreateRoom(s.ctx, s.questions(1), 0)
	s.ErrorIs(err, model.ErrInvalidTimeLimit)

	_, err = s.controller.CreateRoom(s.ctx, s.questions(1), -5)
	s.ErrorIs(err, model.ErrInvalidTimeLimit)
}

func (s *ControllerSuite) TestCreateRoomRetriesOnCodeCollision() {
	s.createRoom("ABC123", 1)

	s.random.QueueString("ABC123", "XYZ789")
	code, err := s.controller.CreateRoom(s.ctx, s.questions(1), 60)
	s.Require().NoError(err)
	s.Equal(model.RoomCode("XYZ789"), code)
	s.Equal(2, s.store.Len())
}

func (s *ControllerSuite) TestGetRoomUnknownCode() {
	_, err := s.controller.GetRoom(s.ctx, "NOPE42")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestGetRoomReturnsDetachedCopy() {
	code := s.createRoom("ABC123", 1)

	room, err := s.controller.GetRoom(s.ctx, code)
	s.Require().NoError(err)
	room.Status = model.RoomStatusEnded

	fresh, err := s.controller.GetRoom(s.ctx, code)
	s.Require().NoError(err)
	s.Equal(model.RoomStatusWaiting, fresh.Status)
}

// Join tests

func (s *ControllerSuite) TestJoinAddsPlayerAndPublishes() {
	code := s.createRoom("ABC123", 1)

	s.random.QueueID("player-1")
	id, err := s.controller.Join(s.ctx, code, "Alice", true)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), id)

	room, _ := s.controller.GetRoom(s.ctx, code)
	s.Require().Len(room.Players, 1)
	s.Equal("Alice", room.Players[0].Name)
	s.True(room.Players[0].IsHost)
	s.Equal(0, room.Players[0].Score)
	s.False(room.Players[0].Completed)

	env := s.gateway.last(code, model.EventUserJoined)
	s.Require().NotNil(env)
	var payload model.UserJoinedPayload
	s.Require().NoError(json.Unmarshal(env.Data, &payload))
	s.Equal("Alice", payload.PlayerName)
}

func (s *ControllerSuite) TestJoinUnknownRoom() {
	_, err := s.controller.Join(s.ctx, "NOPE42", "Alice", false)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestJoinStartedRoomFailsWithoutMutation() {
	code := s.createRoom("ABC123", 1)
	s.join(code, "Alice")
	s.Require().NoError(s.controller.Start(s.ctx, code))

	_, err := s.controller.Join(s.ctx, code, "Late", false)
	s.ErrorIs(err, model.ErrRoomAlreadyStarted)

	room, _ := s.controller.GetRoom(s.ctx, code)
	s.Len(room.Players, 1)
}

func (s *ControllerSuite) TestJoinEndedRoomFails() {
	code := s.createRoom("ABC123", 1)
	alice := s.join(code, "Alice")
	s.Require().NoError(s.controller.Start(s.ctx, code))
	_, err := s.controller.SubmitAnswer(s.ctx, code, alice, 0, "4")
	s.Require().NoError(err)

	room, _ := s.controller.GetRoom(s.ctx, code)
	s.Require().Equal(model.RoomStatusEnded, room.Status)

	_, err = s.controller.Join(s.ctx, code, "Late", false)
	s.ErrorIs(err, model.ErrRoomAlreadyStarted)
}

func (s *ControllerSuite) TestJoinAssignsDistinctIDs() {
	code := s.createRoom("ABC123", 1)

	a := s.join(code, "Alice")
	b := s.join(code, "Bob")
	s.NotEqual(a, b)
}

func (s *ControllerSuite) join(code model.RoomCode, name string) model.PlayerID {
	id, err := s.controller.Join(s.ctx, code, name, false)
	s.Require().NoError(err)
	return id
}

// Start tests

func (s *ControllerSuite) TestStartFixesTimesAndPublishesRoster() {
	code := s.createRoom("ABC123", 2)
	s.random.QueueID("host-1", "player-2")
	_, err := s.controller.Join(s.ctx, code, "Alice", true)
	s.Require().NoError(err)
	s.join(code, "Bob")

	now := s.clock.Now()
	s.Require().NoError(s.controller.Start(s.ctx, code))

	room, _ := s.controller.GetRoom(s.ctx, code)
	s.Equal(model.RoomStatusStarted, room.Status)
	s.Equal(now, room.StartTime)
	s.Equal(now.Add(60*time.Second), room.EndTime)

	env := s.gateway.last(code, model.EventGameStarted)
	s.Require().NotNil(env)
	var payload model.GameStartedPayload
	s.Require().NoError(json.Unmarshal(env.Data, &payload))
	s.Len(payload.Questions, 2)
	s.Equal(60, payload.TimeLimit)
	// Roster is join order with zero scores, not a ranked leaderboard
	s.Equal([]model.RosterEntry{
		{Name: "Alice", Score: 0, IsHost: true},
		{Name: "Bob", Score: 0, IsHost: false},
	}, payload.Leaderboard)
}

func (s *ControllerSuite) TestStartUnknownRoom() {
	s.ErrorIs(s.controller.Start(s.ctx, "NOPE42"), model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestStartTwiceFails() {
	code := s.createRoom("ABC123", 1)
	s.join(code, "Alice")
	s.Require().NoError(s.controller.Start(s.ctx, code))

	s.ErrorIs(s.controller.Start(s.ctx, code), model.ErrRoomAlreadyStarted)
	s.Equal(1, s.gateway.count(code, model.EventGameStarted))
}

func (s *ControllerSuite) TestStartEndedRoomFails() {
	code := s.createRoom("ABC123", 1)
	alice := s.join(code, "Alice")
	s.Require().NoError(s.controller.Start(s.ctx, code))
	_, err := s.controller.SubmitAnswer(s.ctx, code, alice, 0, "4")
	s.Require().NoError(err)

	s.ErrorIs(s.controller.Start(s.ctx, code), model.ErrRoomEnded)
}

// SubmitAnswer tests

func (s *ControllerSuite) TestSubmitBeforeStartFails() {
	code := s.createRoom("ABC123", 1)
	alice := s.join(code, "Alice")

	_, err := s.controller.SubmitAnswer(s.ctx, code, alice, 0, "4")
	s.ErrorIs(err, model.ErrGameNotStarted)
}

func (s *ControllerSuite) TestSubmitInstantCorrectAnswerScoresFullBonus() {
	code := s.createRoom("ABC123", 2)
	alice := s.join(code, "Alice")
	s.join(code, "Bob")
	s.Require().NoError(s.controller.Start(s.ctx, code))

	score, err := s.controller.SubmitAnswer(s.ctx, code, alice, 0, "4")
	s.Require().NoError(err)
	s.Equal(15, score)

	room, _ := s.controller.GetRoom(s.ctx, code)
	p := room.Player(alice)
	s.Equal(15, p.Score)
	s.Equal(1, p.Progress)
	s.False(p.Completed)
}

func (s *ControllerSuite) TestSubmitIncorrectAnswerScoresZeroButCountsProgress() {
	code := s.createRoom("ABC123", 2)
	alice := s.join(code, "Alice")
	s.join(code, "Bob")
	s.Require().NoError(s.controller.Start(s.ctx, code))

	score, err := s.controller.SubmitAnswer(s.ctx, code, alice, 0, "5")
	s.Require().NoError(err)
	s.Equal(0, score)

	room, _ := s.controller.GetRoom(s.ctx, code)
	s.Equal(1, room.Player(alice).Progress)

	// The leaderboard is republished even for a wrong answer
	s.Equal(1, s.gateway.count(code, model.EventLeaderboardUpdated))
}

func (s *ControllerSuite) TestSubmitAtDeadlineScoresBaseOnlyAndEndsGame() {
	code := s.createRoom("ABC123", 2)
	alice := s.join(code, "Alice")
	s.join(code, "Bob")
	s.Require().NoError(s.controller.Start(s.ctx, code))

	s.clock.Advance(60 * time.Second)

	// The timer fired at the same deadline; whichever path wins, the
	// room must end exactly once
	score, err := s.controller.SubmitAnswer(s.ctx, code, alice, 0, "4")
	if err != nil {
		s.ErrorIs(err, model.ErrRoomEnded)
	} else {
		s.Equal(10, score)
	}

	s.Require().Eventually(func() bool {
		room, roomErr := s.controller.GetRoom(s.ctx, code)
		return roomErr == nil && room.Status == model.RoomStatusEnded
	}, 2*time.Second, 10*time.Millisecond)
	s.Equal(1, s.gateway.count(code, model.EventGameEnded))
}

func (s *ControllerSuite) TestSubmitUnknownPlayer() {
	code := s.createRoom("ABC123", 1)
	s.join(code, "Alice")
	s.Require().NoError(s.controller.Start(s.ctx, code))

	_, err := s.controller.SubmitAnswer(s.ctx, code, "ghost", 0, "4")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ControllerSuite) TestSubmitQuestionIndexOutOfRange() {
	code := s.createRoom("ABC123", 2)
	alice := s.join(code, "Alice")
	s.join(code, "Bob")
	s.Require().NoError(s.controller.Start(s.ctx, code))

	_, err := s.controller.SubmitAnswer(s.ctx, code, alice, -1, "4")
	s.ErrorIs(err, model.ErrInvalidQuestionIndex)

	_, err = s.controller.SubmitAnswer(s.ctx, code, alice, 2, "4")
	s.ErrorIs(err, model.ErrInvalidQuestionIndex)

	// Failed submissions leave the player untouched
	room, _ := s.controller.GetRoom(s.ctx, code)
	s.Equal(0, room.Player(alice).Progress)
	s.Equal(0, room.Player(alice).Score)
}

func (s *ControllerSuite) TestCompletedPlayerCannotSubmitAgain() {
	code := s.createRoom("ABC123", 1)
	alice := s.join(code, "Alice")
	s.join(code, "Bob")
	s.Require().NoError(s.controller.Start(s.ctx, code))

	_, err := s.controller.SubmitAnswer(s.ctx, code, alice, 0, "4")
	s.Require().NoError(err)

	_, err = s.controller.SubmitAnswer(s.ctx, code, alice, 0, "4")
	s.ErrorIs(err, model.ErrPlayerCompleted)

	room, _ := s.controller.GetRoom(s.ctx, code)
	s.Equal(15, room.Player(alice).Score)
	s.Equal(1, room.Player(alice).Progress)
}

func (s *ControllerSuite) TestLeaderboardUpdatedIsRankedDescending() {
	code := s.createRoom("ABC123", 2)
	alice := s.join(code, "Alice")
	bob := s.join(code, "Bob")
	carol := s.join(code, "Carol")
	_ = bob
	s.Require().NoError(s.controller.Start(s.ctx, code))

	// Alice: two correct (30); Carol: one correct (15); Bob: nothing
	_, err := s.controller.SubmitAnswer(s.ctx, code, alice, 0, "4")
	s.Require().NoError(err)
	_, err = s.controller.SubmitAnswer(s.ctx, code, alice, 1, "4")
	s.Require().NoError(err)
	_, err = s.controller.SubmitAnswer(s.ctx, code, carol, 0, "4")
	s.Require().NoError(err)

	env := s.gateway.last(code, model.EventLeaderboardUpdated)
	s.Require().NotNil(env)
	var payload model.LeaderboardUpdatedPayload
	s.Require().NoError(json.Unmarshal(env.Data, &payload))
	s.Equal([]model.LeaderboardEntry{
		{Name: "Alice", Score: 30},
		{Name: "Carol", Score: 15},
		{Name: "Bob", Score: 0},
	}, payload.Leaderboard)
}

// End-of-game tests

func (s *ControllerSuite) TestAllPlayersCompletedEndsGame() {
	code := s.createRoom("ABC123", 1)
	alice := s.join(code, "Alice")
	bob := s.join(code, "Bob")
	s.Require().NoError(s.controller.Start(s.ctx, code))

	_, err := s.controller.SubmitAnswer(s.ctx, code, alice, 0, "4")
	s.Require().NoError(err)
	s.Equal(0, s.gateway.count(code, model.EventGameEnded))

	_, err = s.controller.SubmitAnswer(s.ctx, code, bob, 0, "5")
	s.Require().NoError(err)

	room, _ := s.controller.GetRoom(s.ctx, code)
	s.Equal(model.RoomStatusEnded, room.Status)
	s.Equal(1, s.gateway.count(code, model.EventGameEnded))

	env := s.gateway.last(code, model.EventGameEnded)
	var payload model.GameEndedPayload
	s.Require().NoError(json.Unmarshal(env.Data, &payload))
	s.Equal([]model.LeaderboardEntry{
		{Name: "Alice", Score: 15},
		{Name: "Bob", Score: 0},
	}, payload.Leaderboard)
	s.Equal(payload.Leaderboard, room.Leaderboard)
}

func (s *ControllerSuite) TestSubmitAfterEndIsRejectedAndChangesNothing() {
	code := s.createRoom("ABC123", 1)
	alice := s.join(code, "Alice")
	s.Require().NoError(s.controller.Start(s.ctx, code))

	_, err := s.controller.SubmitAnswer(s.ctx, code, alice, 0, "4")
	s.Require().NoError(err)

	room, _ := s.controller.GetRoom(s.ctx, code)
	s.Require().Equal(model.RoomStatusEnded, room.Status)
	final := room.Leaderboard

	_, err = s.controller.SubmitAnswer(s.ctx, code, alice, 0, "4")
	s.ErrorIs(err, model.ErrRoomEnded)

	after, _ := s.controller.GetRoom(s.ctx, code)
	s.Equal(final, after.Leaderboard)
	s.Equal(1, s.gateway.count(code, model.EventGameEnded))
}

// Session timer tests

func (s *ControllerSuite) TestTimerEndsGameWithoutActivity() {
	code := s.createRoom("ABC123", 1)
	s.join(code, "Alice")
	s.join(code, "Bob")
	s.Require().NoError(s.controller.Start(s.ctx, code))

	s.clock.Advance(60 * time.Second)

	s.Require().Eventually(func() bool {
		room, err := s.controller.GetRoom(s.ctx, code)
		return err == nil && room.Status == model.RoomStatusEnded
	}, 2*time.Second, 10*time.Millisecond)

	s.Equal(1, s.gateway.count(code, model.EventGameEnded))

	env := s.gateway.last(code, model.EventGameEnded)
	var payload model.GameEndedPayload
	s.Require().NoError(json.Unmarshal(env.Data, &payload))
	s.Len(payload.Leaderboard, 2)
}

func (s *ControllerSuite) TestTimerDoesNotFireEarly() {
	code := s.createRoom("ABC123", 1)
	s.join(code, "Alice")
	s.Require().NoError(s.controller.Start(s.ctx, code))

	s.clock.Advance(59 * time.Second)
	time.Sleep(50 * time.Millisecond)

	room, _ := s.controller.GetRoom(s.ctx, code)
	s.Equal(model.RoomStatusStarted, room.Status)
	s.Equal(0, s.gateway.count(code, model.EventGameEnded))
}

func (s *ControllerSuite) TestStaleTimerFireAfterEarlyEndIsNoop() {
	code := s.createRoom("ABC123", 1)
	alice := s.join(code, "Alice")
	s.Require().NoError(s.controller.Start(s.ctx, code))

	// Game ends early via completion
	_, err := s.controller.SubmitAnswer(s.ctx, code, alice, 0, "4")
	s.Require().NoError(err)
	s.Equal(1, s.gateway.count(code, model.EventGameEnded))

	// The pending timer now fires against an already-ended room
	s.clock.Advance(60 * time.Second)
	time.Sleep(50 * time.Millisecond)

	s.Equal(1, s.gateway.count(code, model.EventGameEnded))

	room, _ := s.controller.GetRoom(s.ctx, code)
	s.Equal([]model.LeaderboardEntry{{Name: "Alice", Score: 15}}, room.Leaderboard)
}

func (s *ControllerSuite) TestConcurrentSubmissionsEndGameExactlyOnce() {
	const players = 8
	const questions = 5

	code := s.createRoom("ABC123", questions)
	ids := make([]model.PlayerID, 0, players)
	for i := 0; i < players; i++ {
		ids = append(ids, s.join(code, "Player"))
	}
	s.Require().NoError(s.controller.Start(s.ctx, code))

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id model.PlayerID) {
			defer wg.Done()
			for q := 0; q < questions; q++ {
				_, err := s.controller.SubmitAnswer(s.ctx, code, id, q, "4")
				s.NoError(err)
			}
		}(id)
	}
	wg.Wait()

	room, _ := s.controller.GetRoom(s.ctx, code)
	s.Equal(model.RoomStatusEnded, room.Status)
	for i := range room.Players {
		s.True(room.Players[i].Completed)
		s.Equal(questions*15, room.Players[i].Score)
	}
	s.Equal(1, s.gateway.count(code, model.EventGameEnded))
	s.Equal(players*questions, s.gateway.count(code, model.EventLeaderboardUpdated))
}
