// internal/game/registry.go
package game

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Registry owns every live session plus the signed-in player directory.
// Its lock only guards the maps; it is never held across a call into a
// session, so sessions stay independent of each other.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	byPlayer map[uuid.UUID]uuid.UUID
	names    map[uuid.UUID]string

	policy   DisconnectPolicy
	recorder ActionRecorder
	log      *logrus.Logger

	// OnGameEnd is installed on every created session.
	OnGameEnd func(summary GameSummary)
}

// NewRegistry creates an empty registry. recorder may be nil.
func NewRegistry(policy DisconnectPolicy, recorder ActionRecorder, logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.New()
	}
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		byPlayer: make(map[uuid.UUID]uuid.UUID),
		names:    make(map[uuid.UUID]string),
		policy:   policy,
		recorder: recorder,
		log:      logger,
	}
}

// SignIn registers a display name and mints the player's identifier.
func (r *Registry) SignIn(displayName string) (uuid.UUID, error) {
	if displayName == "" {
		return uuid.Nil, NewError(CodeNotSignedIn, "display name must not be empty")
	}
	id := uuid.New()
	r.mu.Lock()
	r.names[id] = displayName
	r.mu.Unlock()
	r.log.WithFields(logrus.Fields{"player_id": id, "display_name": displayName}).Info("player signed in")
	return id, nil
}

// SignOut forgets the player, leaving their game first if they are in one.
func (r *Registry) SignOut(player uuid.UUID) {
	_ = r.LeaveGame(player)
	r.mu.Lock()
	delete(r.names, player)
	r.mu.Unlock()
}

// DisplayName looks a player up in the directory.
func (r *Registry) DisplayName(player uuid.UUID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.names[player]
	return name, ok
}

func (r *Registry) requireSignedInLocked(player uuid.UUID) error {
	if _, ok := r.names[player]; !ok {
		return NewError(CodeNotSignedIn, "player is not signed in")
	}
	return nil
}

// CreateGame opens a new table with the player as its owner.
func (r *Registry) CreateGame(player uuid.UUID, name string) (*Session, error) {
	r.mu.Lock()
	if err := r.requireSignedInLocked(player); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	if _, ok := r.byPlayer[player]; ok {
		r.mu.Unlock()
		return nil, NewError(CodeAlreadyInGame, "player is already in a game")
	}
	id := uuid.New()
	s := NewSession(id, name, r.policy, r.recorder, r.log)
	s.OnGameEnd = r.OnGameEnd
	r.sessions[id] = s
	r.byPlayer[player] = id
	r.mu.Unlock()

	// A freshly created session always has room for its owner.
	_ = s.Join(player)
	return s, nil
}

// JoinGame seats the player at an existing table.
func (r *Registry) JoinGame(player, gameID uuid.UUID) (*Session, error) {
	r.mu.Lock()
	if err := r.requireSignedInLocked(player); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	if _, ok := r.byPlayer[player]; ok {
		r.mu.Unlock()
		return nil, NewError(CodeAlreadyInGame, "player is already in a game")
	}
	s, ok := r.sessions[gameID]
	if !ok {
		r.mu.Unlock()
		return nil, NewError(CodeGameNotFound, "no game with id %s", gameID)
	}
	r.byPlayer[player] = gameID
	r.mu.Unlock()

	if err := s.Join(player); err != nil {
		r.mu.Lock()
		delete(r.byPlayer, player)
		r.mu.Unlock()
		return nil, err
	}
	return s, nil
}

// LeaveGame removes the player from their current game, dropping the
// session entirely once its last seat empties.
func (r *Registry) LeaveGame(player uuid.UUID) error {
	r.mu.Lock()
	gameID, ok := r.byPlayer[player]
	if !ok {
		r.mu.Unlock()
		return NewError(CodeGameNotFound, "player is not in a game")
	}
	s, ok := r.sessions[gameID]
	if !ok {
		delete(r.byPlayer, player)
		r.mu.Unlock()
		return NewError(CodeGameNotFound, "player is not in a game")
	}
	r.mu.Unlock()

	_ = s.Leave(player)
	empty := s.IsEmpty()

	r.mu.Lock()
	delete(r.byPlayer, player)
	if empty {
		delete(r.sessions, gameID)
	}
	r.mu.Unlock()
	return nil
}

// SessionFor returns the player's current session.
func (r *Registry) SessionFor(player uuid.UUID) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	gameID, ok := r.byPlayer[player]
	if !ok {
		return nil, NewError(CodeGameNotFound, "player is not in a game")
	}
	s, ok := r.sessions[gameID]
	if !ok {
		// The session was dropped while this player's join was in flight;
		// clear the stale membership so they can seat themselves again.
		delete(r.byPlayer, player)
		return nil, NewError(CodeGameNotFound, "player is not in a game")
	}
	return s, nil
}

// ViewFor projects the player's current game for them.
func (r *Registry) ViewFor(player uuid.UUID) (*GameView, error) {
	r.mu.Lock()
	if err := r.requireSignedInLocked(player); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	gameID, ok := r.byPlayer[player]
	if !ok {
		r.mu.Unlock()
		return nil, NewError(CodeGameNotFound, "player is not in a game")
	}
	s, ok := r.sessions[gameID]
	if !ok {
		delete(r.byPlayer, player)
		r.mu.Unlock()
		return nil, NewError(CodeGameNotFound, "player is not in a game")
	}
	names := make(map[uuid.UUID]string, len(r.names))
	for id, name := range r.names {
		names[id] = name
	}
	r.mu.Unlock()

	return s.View(player, names), nil
}

// ListGames lists every live session, sorted by name for stable output.
func (r *Registry) ListGames() []ListedGameView {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	views := make([]ListedGameView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, s.ListedView())
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].GameName != views[j].GameName {
			return views[i].GameName < views[j].GameName
		}
		return views[i].GameUUID.String() < views[j].GameUUID.String()
	})
	return views
}
