// internal/game/session.go
package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DisconnectPolicy decides what happens to a player's eligibility while
// their connection is gone.
type DisconnectPolicy string

const (
	// DisconnectAutoPass keeps the seat and passes on the player's behalf
	// whenever they hold eligibility.
	DisconnectAutoPass DisconnectPolicy = "auto_pass"
	// DisconnectRemove eliminates the player from the running game.
	DisconnectRemove DisconnectPolicy = "remove"
	// DisconnectStall leaves the game waiting until they reconnect.
	DisconnectStall DisconnectPolicy = "stall"
)

// ParseDisconnectPolicy resolves a policy name, defaulting to auto_pass.
func ParseDisconnectPolicy(s string) DisconnectPolicy {
	switch DisconnectPolicy(s) {
	case DisconnectRemove:
		return DisconnectRemove
	case DisconnectStall:
		return DisconnectStall
	}
	return DisconnectAutoPass
}

// Seat is one joined player, in join order. The first seat owns the game.
type Seat struct {
	PlayerID  uuid.UUID
	Character *Character
	Connected bool
}

// ActionRecord is one applied mutation, for the audit feed.
type ActionRecord struct {
	GameID  uuid.UUID              `json:"gameId"`
	Index   int                    `json:"index"`
	Actor   uuid.UUID              `json:"actor"`
	Action  string                 `json:"action"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	At      time.Time              `json:"at"`
}

// ActionRecorder receives every applied mutation. Implementations must be
// safe for concurrent use; a nil recorder disables the feed.
type ActionRecorder interface {
	RecordAction(ctx context.Context, rec ActionRecord)
}

// PlayerResult is one player's final standing.
type PlayerResult struct {
	PlayerID       uuid.UUID
	Character      Character
	Gold           int
	Fortitude      int
	AlcoholContent int
	Alive          bool
}

// GameSummary describes a finished game.
type GameSummary struct {
	GameID   uuid.UUID
	GameName string
	Winner   *uuid.UUID
	Players  []PlayerResult
}

// Session is one game table: the seats around it and, once started, the
// running engine. All exported methods are safe for concurrent use; reads
// take the lock shared, mutations exclusive.
type Session struct {
	mu   sync.RWMutex
	id   uuid.UUID
	name string

	seats  []*Seat
	eng    *engine
	rng    *rand.Rand
	policy DisconnectPolicy

	// version increases by exactly one per applied mutation.
	version     uint64
	actionCount int
	endFired    bool

	recorder ActionRecorder
	log      *logrus.Entry

	// OnGameEnd fires once per started game, outside the session lock.
	OnGameEnd func(summary GameSummary)
}

// NewSession creates an empty table.
func NewSession(id uuid.UUID, name string, policy DisconnectPolicy, recorder ActionRecorder, logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.New()
	}
	return &Session{
		id:       id,
		name:     name,
		policy:   policy,
		recorder: recorder,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      logger.WithField("game_id", id),
	}
}

func (s *Session) ID() uuid.UUID { return s.id }
func (s *Session) Name() string  { return s.name }

// Version returns the current state version.
func (s *Session) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// PlayerCount returns the number of seats.
func (s *Session) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seats)
}

// IsEmpty reports whether every seat has been vacated.
func (s *Session) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seats) == 0
}

// HasPlayer reports whether the player is seated here.
func (s *Session) HasPlayer(player uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seat(player) != nil
}

func (s *Session) seat(player uuid.UUID) *Seat {
	for _, seat := range s.seats {
		if seat.PlayerID == player {
			return seat
		}
	}
	return nil
}

func (s *Session) isRunning() bool {
	return s.eng != nil && s.eng.running()
}

// mutate serializes a command, bumps the version on success, and delivers
// the audit record and end-of-game callback outside the lock.
func (s *Session) mutate(actor uuid.UUID, action string, payload map[string]interface{}, fn func() error) error {
	s.mu.Lock()
	err := fn()
	var rec *ActionRecord
	var summary *GameSummary
	if err == nil {
		if s.eng != nil && s.policy == DisconnectAutoPass {
			s.eng.autoPassSkipped()
		}
		s.version++
		s.actionCount++
		if s.recorder != nil {
			rec = &ActionRecord{
				GameID:  s.id,
				Index:   s.actionCount,
				Actor:   actor,
				Action:  action,
				Payload: payload,
				At:      time.Now().UTC(),
			}
		}
		summary = s.takeEndSummary()
	}
	s.mu.Unlock()

	if rec != nil {
		s.recorder.RecordAction(context.Background(), *rec)
	}
	if summary != nil && s.OnGameEnd != nil {
		s.OnGameEnd(*summary)
	}
	return err
}

// takeEndSummary builds the finished-game summary exactly once per started
// game. Caller holds the lock.
func (s *Session) takeEndSummary() *GameSummary {
	if s.eng == nil || !s.eng.finished || s.endFired {
		return nil
	}
	s.endFired = true
	summary := &GameSummary{GameID: s.id, GameName: s.name}
	if s.eng.hasWinner {
		w := s.eng.winner
		summary.Winner = &w
	}
	for _, id := range s.eng.roster.order {
		p := s.eng.roster.player(id)
		summary.Players = append(summary.Players, PlayerResult{
			PlayerID:       id,
			Character:      p.character,
			Gold:           p.gold,
			Fortitude:      p.fortitude,
			AlcoholContent: p.alcoholContent,
			Alive:          p.Alive(),
		})
	}
	return summary
}

// Join seats a new player. Games cannot be joined once running.
func (s *Session) Join(player uuid.UUID) error {
	return s.mutate(player, "join", nil, func() error {
		if s.isRunning() {
			return NewError(CodeGameAlreadyRunning, "cannot join a running game")
		}
		if s.seat(player) != nil {
			return NewError(CodeAlreadyInGame, "player is already in this game")
		}
		s.seats = append(s.seats, &Seat{PlayerID: player, Connected: true})
		return nil
	})
}

// Leave vacates the player's seat. Leaving a running game eliminates the
// player from it.
func (s *Session) Leave(player uuid.UUID) error {
	return s.mutate(player, "leave", nil, func() error {
		if s.seat(player) == nil {
			return NewError(CodeGameNotFound, "player is not in this game")
		}
		if s.isRunning() {
			s.eng.removePlayer(player)
		}
		kept := s.seats[:0]
		for _, seat := range s.seats {
			if seat.PlayerID != player {
				kept = append(kept, seat)
			}
		}
		s.seats = kept
		return nil
	})
}

// SelectCharacter picks (or re-picks, between games) the player's
// character. Two seats can never hold the same character.
func (s *Session) SelectCharacter(player uuid.UUID, character Character) error {
	return s.mutate(player, "selectCharacter", map[string]interface{}{"character": string(character)}, func() error {
		seat := s.seat(player)
		if seat == nil {
			return NewError(CodeGameNotFound, "player is not in this game")
		}
		if s.isRunning() {
			return NewError(CodeInvalidPhase, "cannot change characters while the game is running")
		}
		for _, other := range s.seats {
			if other.PlayerID != player && other.Character != nil && *other.Character == character {
				return NewError(CodeCharacterTaken, "character %q is already taken", character)
			}
		}
		seat.Character = &character
		return nil
	})
}

// Start begins the game. Only the owner (first seat) may start, everyone
// must have picked a character, and at least two seats must be filled.
func (s *Session) Start(player uuid.UUID) error {
	return s.mutate(player, "startGame", nil, func() error {
		if len(s.seats) == 0 || s.seats[0].PlayerID != player {
			return NewError(CodeNotGameOwner, "only the game owner can start the game")
		}
		if s.isRunning() {
			return NewError(CodeGameAlreadyRunning, "game is already running")
		}
		if len(s.seats) < 2 {
			return NewError(CodeNotReady, "need at least two players")
		}
		seats := make([]Seat, 0, len(s.seats))
		for _, seat := range s.seats {
			if seat.Character == nil {
				return NewError(CodeNotReady, "not all players have selected a character")
			}
			seats = append(seats, *seat)
		}
		s.eng = newEngine(seats, s.rng)
		s.endFired = false
		if s.policy == DisconnectAutoPass {
			for _, seat := range s.seats {
				s.eng.roster.skipped[seat.PlayerID] = !seat.Connected
			}
		}
		s.log.WithField("players", len(seats)).Info("game started")
		return nil
	})
}

// PlayCard plays the card at the given hand index, with an optional target.
func (s *Session) PlayCard(player uuid.UUID, index int, target *uuid.UUID) error {
	payload := map[string]interface{}{"index": index}
	if target != nil {
		payload["target"] = target.String()
	}
	return s.mutate(player, "playCard", payload, func() error {
		if err := s.requireRunning(player); err != nil {
			return err
		}
		return s.eng.playCard(player, index, target)
	})
}

// DiscardCards discards the cards at the given hand indices (possibly none)
// and draws back to the hand limit.
func (s *Session) DiscardCards(player uuid.UUID, indices []int) error {
	return s.mutate(player, "discardCards", map[string]interface{}{"indices": indices}, func() error {
		if err := s.requireRunning(player); err != nil {
			return err
		}
		return s.eng.discardCardsAndDraw(player, indices)
	})
}

// OrderDrink sends a drink from the target's own drink-me pile their way.
func (s *Session) OrderDrink(player, target uuid.UUID) error {
	return s.mutate(player, "orderDrink", map[string]interface{}{"target": target.String()}, func() error {
		if err := s.requireRunning(player); err != nil {
			return err
		}
		return s.eng.orderDrink(player, target)
	})
}

// Pass passes on whatever the player currently holds eligibility for.
func (s *Session) Pass(player uuid.UUID) error {
	return s.mutate(player, "pass", nil, func() error {
		if err := s.requireRunning(player); err != nil {
			return err
		}
		return s.eng.pass(player)
	})
}

func (s *Session) requireRunning(player uuid.UUID) error {
	if s.seat(player) == nil {
		return NewError(CodeGameNotFound, "player is not in this game")
	}
	if !s.isRunning() {
		return NewError(CodeInvalidPhase, "game is not running")
	}
	return nil
}

// SetConnected records a transport-level connect or disconnect and applies
// the session's disconnect policy.
func (s *Session) SetConnected(player uuid.UUID, connected bool) {
	_ = s.mutate(player, "setConnected", map[string]interface{}{"connected": connected}, func() error {
		seat := s.seat(player)
		if seat == nil {
			return NewError(CodeGameNotFound, "player is not in this game")
		}
		seat.Connected = connected
		if s.eng == nil || !s.eng.running() {
			return nil
		}
		switch s.policy {
		case DisconnectAutoPass:
			s.eng.roster.skipped[player] = !connected
		case DisconnectRemove:
			if !connected {
				s.eng.removePlayer(player)
			}
		}
		return nil
	})
}
