package game

import (
	"sync"
)

// Registry owns every live room. All room mutation goes through Update so
// that a room is never acted on after it has been removed.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	order   []string
	oracle  Oracle
	newCode CodeGenerator
}

// Result describes the effect of an Update.
type Result struct {
	Notifications []Notification
	// Removed is set when the update closed the room and it was dropped.
	Removed bool
	// Players are the room's remaining connection IDs after the update.
	Players []string
}

func NewRegistry(oracle Oracle, codes CodeGenerator) *Registry {
	if codes == nil {
		codes = RandomCodes(DefaultCodeLength)
	}
	return &Registry{
		rooms:   make(map[string]*Room),
		oracle:  oracle,
		newCode: codes,
	}
}

// Create inserts an empty room under a fresh code and returns the code.
func (g *Registry) Create() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	code := NormalizeCode(g.newCode())
	for _, taken := g.rooms[code]; taken; _, taken = g.rooms[code] {
		code = NormalizeCode(g.newCode())
	}
	g.rooms[code] = newRoom(code, g.oracle)
	g.order = append(g.order, code)
	return code
}

// Update runs fn against the room under the registry lock. A room that is
// closed afterwards is removed before Update returns.
func (g *Registry) Update(code string, fn func(r *Room) ([]Notification, error)) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[NormalizeCode(code)]
	if !ok {
		return Result{}, ErrRoomNotFound
	}
	out, err := fn(r)
	if err != nil {
		return Result{}, err
	}
	res := Result{Notifications: out, Players: r.PlayerIDs()}
	if r.Closed() {
		g.remove(r.Code)
		res.Removed = true
	}
	return res, nil
}

// Get returns a snapshot of the room stored under code.
func (g *Registry) Get(code string) (Snapshot, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	r, ok := g.rooms[NormalizeCode(code)]
	if !ok {
		return Snapshot{}, false
	}
	return r.Snapshot(), true
}

// Remove drops the room and reports whether it existed.
func (g *Registry) Remove(code string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.remove(NormalizeCode(code))
}

func (g *Registry) remove(code string) bool {
	if _, ok := g.rooms[code]; !ok {
		return false
	}
	delete(g.rooms, code)
	for i, c := range g.order {
		if c == code {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return true
}

// ListJoinable returns rooms that still have a free seat, oldest first.
func (g *Registry) ListJoinable() []RoomSummary {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]RoomSummary, 0, len(g.order))
	for _, code := range g.order {
		r := g.rooms[code]
		if r.PlayerCount() < MaxPlayers && r.Phase() == PhaseWaitingForOpponent {
			out = append(out, r.Summary())
		}
	}
	return out
}

// Len returns the number of live rooms.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
