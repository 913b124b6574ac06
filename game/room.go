package game

import (
	"strings"

	"go_jotto_server/words"
)

// Phase is a room's state-machine state.
type Phase int

const (
	PhaseWaitingForOpponent Phase = iota
	PhaseWordSelection
	PhasePlaying
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseWaitingForOpponent:
		return "waitingForOpponent"
	case PhaseWordSelection:
		return "wordSelection"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	}
	return "unknown"
}

// MaxPlayers is the room capacity.
const MaxPlayers = 2

// Oracle validates and scores words for a room.
type Oracle interface {
	IsValidWord(candidate string) bool
	CommonLetterCount(a, b string) int
}

type Player struct {
	ID     string
	Secret string
}

// Guess is one entry of a room's move history.
type Guess struct {
	By          string
	Word        string
	CommonCount int
}

// Room is one game between at most two connections. It is not safe for
// concurrent use; the Registry serializes access.
type Room struct {
	Code        string
	phase       Phase
	players     []*Player
	currentTurn string
	guesses     []Guess
	abandoned   bool
	winner      string
	oracle      Oracle
}

func newRoom(code string, oracle Oracle) *Room {
	return &Room{
		Code:    code,
		phase:   PhaseWaitingForOpponent,
		players: make([]*Player, 0, MaxPlayers),
		oracle:  oracle,
	}
}

// Join adds id to the room. The second join moves the room to word selection.
// Acknowledging the joiner is left to the caller.
func (r *Room) Join(id string) ([]Notification, error) {
	if r.phase != PhaseWaitingForOpponent || len(r.players) >= MaxPlayers {
		return nil, ErrRoomUnavailable
	}
	if r.player(id) != nil {
		return nil, ErrAlreadyInRoom
	}
	r.players = append(r.players, &Player{ID: id})

	if len(r.players) < MaxPlayers {
		return nil, nil
	}
	r.phase = PhaseWordSelection
	return []Notification{toPlayers(r.PlayerIDs(), EventWaitingForWords, nil)}, nil
}

// SubmitWord records id's secret. Once both secrets are in, play starts
// with the first joiner on turn.
func (r *Room) SubmitWord(id, word string) ([]Notification, error) {
	if r.phase != PhaseWordSelection {
		return nil, ErrWrongPhase
	}
	p := r.player(id)
	if p == nil {
		return nil, ErrNotInRoom
	}
	if p.Secret != "" {
		return nil, ErrSecretAlreadySet
	}
	if !r.acceptable(word) {
		return nil, ErrInvalidWord
	}
	p.Secret = strings.ToLower(strings.TrimSpace(word))

	out := []Notification{toPlayer(id, EventWordAccepted, nil)}
	if r.opponent(id).Secret == "" {
		return append(out, toPlayer(id, EventWaitingForOpponent, nil)), nil
	}

	r.phase = PhasePlaying
	r.currentTurn = r.players[0].ID
	return append(out, toPlayers(r.PlayerIDs(), EventGameStart, GameStart{FirstPlayer: r.currentTurn})), nil
}

// Guess scores word against the opponent's secret. Only the player on turn
// may guess; a correct guess finishes the room.
func (r *Room) Guess(id, word string) ([]Notification, error) {
	if r.phase != PhasePlaying {
		return nil, ErrWrongPhase
	}
	if r.player(id) == nil {
		return nil, ErrNotInRoom
	}
	if id != r.currentTurn {
		return nil, ErrNotYourTurn
	}
	if !r.acceptable(word) {
		return nil, ErrInvalidWord
	}

	guess := strings.ToLower(strings.TrimSpace(word))
	opp := r.opponent(id)
	common := r.oracle.CommonLetterCount(opp.Secret, guess)
	r.guesses = append(r.guesses, Guess{By: id, Word: guess, CommonCount: common})

	if guess == opp.Secret {
		r.phase = PhaseFinished
		r.winner = id
		r.currentTurn = ""
		return []Notification{toPlayers(r.PlayerIDs(), EventGameOver, GameOver{Winner: id, Word: opp.Secret})}, nil
	}

	r.currentTurn = opp.ID
	return []Notification{toPlayers(r.PlayerIDs(), EventGuessResult, GuessResult{
		Player:      id,
		Word:        guess,
		CommonCount: common,
		NextTurn:    opp.ID,
	})}, nil
}

// Leave removes id. Any departure ends the room; a remaining player is told
// their opponent left.
func (r *Room) Leave(id string) ([]Notification, error) {
	idx := -1
	for i, p := range r.players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotInRoom
	}
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	r.currentTurn = ""
	if r.phase != PhaseFinished {
		r.phase = PhaseFinished
		r.abandoned = true
	}

	if len(r.players) == 0 {
		return nil, nil
	}
	return []Notification{toPlayers(r.PlayerIDs(), EventPlayerDisconnected, PlayerDisconnected{ConnectionID: id})}, nil
}

func (r *Room) acceptable(word string) bool {
	w := strings.TrimSpace(word)
	return words.WellFormed(w) && r.oracle.IsValidWord(w)
}

func (r *Room) player(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// opponent assumes the room is full and id is one of its players.
func (r *Room) opponent(id string) *Player {
	for _, p := range r.players {
		if p.ID != id {
			return p
		}
	}
	return nil
}

func (r *Room) Phase() Phase        { return r.phase }
func (r *Room) CurrentTurn() string { return r.currentTurn }
func (r *Room) PlayerCount() int    { return len(r.players) }
func (r *Room) Abandoned() bool     { return r.abandoned }
func (r *Room) Winner() string      { return r.winner }

// Closed reports whether the room should be dropped from the registry.
func (r *Room) Closed() bool {
	return r.phase == PhaseFinished || len(r.players) == 0
}

// Has reports whether id is one of the room's players.
func (r *Room) Has(id string) bool {
	return r.player(id) != nil
}

// PlayerIDs returns connection IDs in join order.
func (r *Room) PlayerIDs() []string {
	ids := make([]string, len(r.players))
	for i, p := range r.players {
		ids[i] = p.ID
	}
	return ids
}

// Guesses returns a copy of the move history.
func (r *Room) Guesses() []Guess {
	return append([]Guess(nil), r.guesses...)
}

func (r *Room) Summary() RoomSummary {
	return RoomSummary{Code: r.Code, PlayerCount: len(r.players)}
}

// Snapshot is a read-only copy of a room's state.
type Snapshot struct {
	Code        string
	Phase       Phase
	Players     []Player
	CurrentTurn string
	Guesses     []Guess
	Winner      string
	Abandoned   bool
}

func (r *Room) Snapshot() Snapshot {
	players := make([]Player, len(r.players))
	for i, p := range r.players {
		players[i] = *p
	}
	return Snapshot{
		Code:        r.Code,
		Phase:       r.phase,
		Players:     players,
		CurrentTurn: r.currentTurn,
		Guesses:     r.Guesses(),
		Winner:      r.winner,
		Abandoned:   r.abandoned,
	}
}
