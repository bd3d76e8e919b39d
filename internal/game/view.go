// internal/game/view.go
//
// View projection is pure: it takes the session read lock, mutates nothing,
// and redacts everything a player must not see. Hidden information never
// leaves the core: hands are only in the requester's own view, pile
// contents and order are reduced to sizes.
package game

import "github.com/google/uuid"

// HandCardView is one card in the requester's own hand.
type HandCardView struct {
	CardName   string `json:"cardName"`
	IsPlayable bool   `json:"isPlayable"`
}

// PlayerDataView is the public state of one player.
type PlayerDataView struct {
	PlayerUUID      uuid.UUID `json:"playerUuid"`
	DrawPileSize    int       `json:"drawPileSize"`
	DiscardPileSize int       `json:"discardPileSize"`
	DrinkMePileSize int       `json:"drinkMePileSize"`
	AlcoholContent  int       `json:"alcoholContent"`
	Fortitude       int       `json:"fortitude"`
	Gold            int       `json:"gold"`
	IsDead          bool      `json:"isDead"`
}

// RootItemView names the root of an interrupt entry.
type RootItemView struct {
	Name string `json:"name"`
	// ItemType is "card" or "drink".
	ItemType string `json:"itemType"`
}

// InterruptEntryView is one pending entry, oldest first.
type InterruptEntryView struct {
	RootItem           RootItemView `json:"rootItem"`
	InterruptCardNames []string     `json:"interruptCardNames"`
}

// InterruptsView is the pending interrupt stack.
type InterruptsView struct {
	Entries                    []InterruptEntryView `json:"entries"`
	CurrentInterruptPlayerUUID uuid.UUID            `json:"currentInterruptPlayerUuid"`
}

// DrinkEventView is the in-flight drink event, if any.
type DrinkEventView struct {
	EventName            string      `json:"eventName"`
	RemainingPlayerUUIDs []uuid.UUID `json:"remainingPlayerUuids,omitempty"`
}

// GameView is everything one player may know about the session.
type GameView struct {
	GameName              string            `json:"gameName"`
	SelfPlayerUUID        uuid.UUID         `json:"selfPlayerUuid"`
	CurrentTurnPlayerUUID *uuid.UUID        `json:"currentTurnPlayerUuid,omitempty"`
	CurrentTurnPhase      TurnPhase         `json:"currentTurnPhase"`
	CanPass               bool              `json:"canPass"`
	Hand                  []HandCardView    `json:"hand"`
	PlayerData            []PlayerDataView  `json:"playerData"`
	PlayerDisplayNames    map[string]string `json:"playerDisplayNames"`
	Interrupts            *InterruptsView   `json:"interrupts,omitempty"`
	DrinkEvent            *DrinkEventView   `json:"drinkEvent,omitempty"`
	IsRunning             bool              `json:"isRunning"`
	WinnerUUID            *uuid.UUID        `json:"winnerUuid,omitempty"`
	StateVersion          uint64            `json:"stateVersion"`
}

// ListedGameView is one row in the game list.
type ListedGameView struct {
	GameName    string    `json:"gameName"`
	GameUUID    uuid.UUID `json:"gameUuid"`
	PlayerCount int       `json:"playerCount"`
}

// View projects the session for one player. displayNames maps player ids to
// the names the registry knows them by.
func (s *Session) View(player uuid.UUID, displayNames map[uuid.UUID]string) *GameView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := &GameView{
		GameName:           s.name,
		SelfPlayerUUID:     player,
		CurrentTurnPhase:   s.lobbyPhase(),
		IsRunning:          s.isRunning(),
		StateVersion:       s.version,
		PlayerDisplayNames: make(map[string]string, len(s.seats)),
	}
	for _, seat := range s.seats {
		if name, ok := displayNames[seat.PlayerID]; ok {
			v.PlayerDisplayNames[seat.PlayerID.String()] = name
		}
	}

	e := s.eng
	if e == nil {
		return v
	}
	if e.hasWinner {
		w := e.winner
		v.WinnerUUID = &w
	}
	if !e.running() {
		return v
	}

	turnPlayer := e.turn.playerTurn
	v.CurrentTurnPlayerUUID = &turnPlayer
	v.CurrentTurnPhase = e.turn.phase
	v.CanPass = e.canPass(player)

	if pl := e.roster.player(player); pl != nil {
		v.Hand = make([]HandCardView, len(pl.hand))
		for i, card := range pl.hand {
			v.Hand[i] = HandCardView{
				CardName:   card.Name(),
				IsPlayable: e.isCardPlayable(card, player),
			}
		}
	}

	for _, id := range e.roster.order {
		pl := e.roster.player(id)
		v.PlayerData = append(v.PlayerData, PlayerDataView{
			PlayerUUID:      id,
			DrawPileSize:    pl.deck.DrawSize(),
			DiscardPileSize: pl.deck.DiscardSize(),
			DrinkMePileSize: pl.drinkMe.DrawSize(),
			AlcoholContent:  pl.alcoholContent,
			Fortitude:       pl.fortitude,
			Gold:            pl.gold,
			IsDead:          !pl.Alive(),
		})
	}

	if e.interrupts.inProgress() {
		iv := &InterruptsView{CurrentInterruptPlayerUUID: e.interrupts.top().turn}
		for _, en := range e.interrupts.entries {
			item := RootItemView{ItemType: "card"}
			if en.rootCard != nil {
				item.Name = en.rootCard.Name()
			} else {
				item.Name = en.rootDrink.displayName()
				item.ItemType = "drink"
			}
			entryView := InterruptEntryView{RootItem: item}
			for _, r := range en.currentSession().reactions {
				entryView.InterruptCardNames = append(entryView.InterruptCardNames, r.card.Name())
			}
			iv.Entries = append(iv.Entries, entryView)
		}
		v.Interrupts = iv
	}

	if e.drinkEvent != nil {
		dv := &DrinkEventView{EventName: string(e.drinkEvent.name)}
		if e.drinkEvent.name == DrinkEventDrinkingContest {
			dv.RemainingPlayerUUIDs = append([]uuid.UUID(nil), e.drinkEvent.remaining...)
		}
		v.DrinkEvent = dv
	}
	return v
}

// lobbyPhase is the reported phase while no engine is running: character
// selection until every seat has picked, then awaiting the owner's start.
func (s *Session) lobbyPhase() TurnPhase {
	if len(s.seats) == 0 {
		return PhaseCharacterSelection
	}
	for _, seat := range s.seats {
		if seat.Character == nil {
			return PhaseCharacterSelection
		}
	}
	return PhaseAwaitingTurnStart
}

// ListedView is the session's row in the public game list.
func (s *Session) ListedView() ListedGameView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ListedGameView{
		GameName:    s.name,
		GameUUID:    s.id,
		PlayerCount: len(s.seats),
	}
}
