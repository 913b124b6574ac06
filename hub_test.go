package main

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go_jotto_server/game"
	"go_jotto_server/words"
)

var testWords = []string{"apple", "beach", "chair", "dance", "eagle", "flame", "grape"}

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type fakeClient struct {
	id     string
	frames chan frame
	full   bool

	once   sync.Once
	closed chan struct{}
}

func newFakeClient(id string) *fakeClient {
	return &fakeClient{id: id, frames: make(chan frame, 128), closed: make(chan struct{})}
}

func (c *fakeClient) ID() string { return c.id }

func (c *fakeClient) Send(msg []byte) bool {
	if c.full {
		return false
	}
	var f frame
	if err := json.Unmarshal(msg, &f); err != nil {
		panic(err)
	}
	select {
	case c.frames <- f:
		return true
	default:
		return false
	}
}

func (c *fakeClient) Close() { c.once.Do(func() { close(c.closed) }) }

// until returns every frame up to and including the first one of type typ.
func (c *fakeClient) until(t *testing.T, typ string) []frame {
	t.Helper()
	var seen []frame
	timeout := time.After(2 * time.Second)
	for {
		select {
		case f := <-c.frames:
			seen = append(seen, f)
			if f.Type == typ {
				return seen
			}
		case <-timeout:
			t.Fatalf("%s: timed out waiting for %q, got %v", c.id, typ, types(seen))
			return nil
		}
	}
}

func (c *fakeClient) expect(t *testing.T, typ string, payload any) {
	t.Helper()
	seen := c.until(t, typ)
	if payload != nil {
		require.NoError(t, json.Unmarshal(seen[len(seen)-1].Payload, payload))
	}
}

func types(fs []frame) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Type)
	}
	return out
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(room, message string) { m.Called(room, message) }
func (m *mockPublisher) Close(room string)            { m.Called(room) }
func (m *mockPublisher) Shutdown()                    { m.Called() }

type hubFixture struct {
	hub      *Hub
	registry *game.Registry
	pub      *mockPublisher
}

func startHub(t *testing.T) hubFixture {
	t.Helper()
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Maybe()
	pub.On("Close", mock.Anything).Maybe()

	registry := game.NewRegistry(words.New(testWords), game.RandomCodes(game.DefaultCodeLength))
	hub := NewHub(registry, pub)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hubFixture{hub: hub, registry: registry, pub: pub}
}

func (f hubFixture) connect(t *testing.T, id string) *fakeClient {
	t.Helper()
	c := newFakeClient(id)
	require.True(t, f.hub.Register(c))
	c.expect(t, game.EventAvailableRooms, nil)
	return c
}

// pair sets up a room with host and guest both joined and returns its code.
func (f hubFixture) pair(t *testing.T, host, guest *fakeClient) string {
	t.Helper()
	f.hub.Dispatch(host.id, ClientMessage{Type: msgCreateRoom})
	var created game.RoomCode
	host.expect(t, game.EventRoomCreated, &created)

	f.hub.Dispatch(guest.id, ClientMessage{Type: msgJoinRoom, Code: created.Code})
	guest.expect(t, game.EventRoomJoined, nil)
	host.expect(t, game.EventWaitingForWords, nil)
	guest.expect(t, game.EventWaitingForWords, nil)
	return created.Code
}

// playing advances a paired room to the guessing phase with host on turn.
func (f hubFixture) playing(t *testing.T, host, guest *fakeClient, hostWord, guestWord string) string {
	t.Helper()
	code := f.pair(t, host, guest)
	f.hub.Dispatch(host.id, ClientMessage{Type: msgSubmitWord, Word: hostWord})
	host.expect(t, game.EventWaitingForOpponent, nil)
	f.hub.Dispatch(guest.id, ClientMessage{Type: msgSubmitWord, Word: guestWord})

	var start game.GameStart
	host.expect(t, game.EventGameStart, &start)
	guest.expect(t, game.EventGameStart, nil)
	require.Equal(t, host.id, start.FirstPlayer)
	return code
}

func TestHub_RegisterSendsAvailableRooms(t *testing.T) {
	f := startHub(t)
	c := newFakeClient("c1")
	require.True(t, f.hub.Register(c))

	var rooms []game.RoomSummary
	c.expect(t, game.EventAvailableRooms, &rooms)
	assert.Empty(t, rooms)
}

func TestHub_CreateAndJoin(t *testing.T) {
	f := startHub(t)
	host, guest := f.connect(t, "host"), f.connect(t, "guest")

	f.hub.Dispatch(host.id, ClientMessage{Type: msgCreateRoom})
	var created game.RoomCode
	host.expect(t, game.EventRoomCreated, &created)
	assert.Len(t, created.Code, game.DefaultCodeLength)

	var rooms []game.RoomSummary
	guest.expect(t, game.EventAvailableRooms, &rooms)
	require.Len(t, rooms, 1)
	assert.Equal(t, game.RoomSummary{Code: created.Code, PlayerCount: 1}, rooms[0])

	// Codes are case-insensitive and may arrive under the alias field.
	f.hub.Dispatch(guest.id, ClientMessage{Type: msgJoinRoom, RoomCode: "  " + created.Code + " "})
	var joined game.RoomCode
	guest.expect(t, game.EventRoomJoined, &joined)
	assert.Equal(t, created.Code, joined.Code)
	host.expect(t, game.EventWaitingForWords, nil)
	guest.expect(t, game.EventWaitingForWords, nil)

	guest.expect(t, game.EventAvailableRooms, &rooms)
	assert.Empty(t, rooms)

	snap, ok := f.registry.Get(created.Code)
	require.True(t, ok)
	assert.Equal(t, game.PhaseWordSelection, snap.Phase)
}

func TestHub_JoinRejections(t *testing.T) {
	f := startHub(t)
	host, guest, third := f.connect(t, "host"), f.connect(t, "guest"), f.connect(t, "third")
	code := f.pair(t, host, guest)

	var msg game.Message
	f.hub.Dispatch(third.id, ClientMessage{Type: msgJoinRoom, Code: code})
	third.expect(t, game.EventJoinError, &msg)
	assert.Equal(t, game.ErrRoomUnavailable.Error(), msg.Message)

	f.hub.Dispatch(third.id, ClientMessage{Type: msgJoinRoom, Code: "NOPE00"})
	third.expect(t, game.EventJoinError, &msg)
	assert.Equal(t, game.ErrRoomUnavailable.Error(), msg.Message)

	f.hub.Dispatch(host.id, ClientMessage{Type: msgCreateRoom})
	host.expect(t, game.EventJoinError, &msg)
	assert.Equal(t, game.ErrAlreadyInRoom.Error(), msg.Message)
	assert.Equal(t, 1, f.registry.Len())
}

func TestHub_FullGame(t *testing.T) {
	f := startHub(t)
	host, guest := f.connect(t, "host"), f.connect(t, "guest")
	code := f.playing(t, host, guest, "apple", "chair")

	var res game.GuessResult
	f.hub.Dispatch(host.id, ClientMessage{Type: msgMakeGuess, Guess: "beach"})
	guest.expect(t, game.EventGuessResult, &res)
	assert.Equal(t, game.GuessResult{Player: host.id, Word: "beach", CommonCount: 3, NextTurn: guest.id}, res)
	host.expect(t, game.EventGuessResult, nil)

	f.hub.Dispatch(guest.id, ClientMessage{Type: msgMakeGuess, Guess: "GRAPE"})
	host.expect(t, game.EventGuessResult, &res)
	assert.Equal(t, game.GuessResult{Player: guest.id, Word: "grape", CommonCount: 3, NextTurn: host.id}, res)
	guest.expect(t, game.EventGuessResult, nil)

	f.hub.Dispatch(host.id, ClientMessage{Type: msgMakeGuess, Guess: "chair"})
	var over game.GameOver
	for _, c := range []*fakeClient{host, guest} {
		c.expect(t, game.EventGameOver, &over)
		assert.Equal(t, game.GameOver{Winner: host.id, Word: "chair"}, over)
	}

	var rooms []game.RoomSummary
	guest.expect(t, game.EventAvailableRooms, &rooms)
	assert.Empty(t, rooms)
	assert.Equal(t, 0, f.registry.Len())
	f.pub.AssertCalled(t, "Close", code)
	f.pub.AssertCalled(t, "Publish", code, "GAME OVER! host found the word chair")

	// Memberships are released, so the winner can host again.
	f.hub.Dispatch(host.id, ClientMessage{Type: msgCreateRoom})
	host.expect(t, game.EventRoomCreated, nil)
}

func TestHub_GuessRejections(t *testing.T) {
	f := startHub(t)
	host, guest := f.connect(t, "host"), f.connect(t, "guest")
	f.pair(t, host, guest)

	var msg game.Message
	f.hub.Dispatch(host.id, ClientMessage{Type: msgMakeGuess, Guess: "apple"})
	host.expect(t, game.EventGuessRejected, &msg)
	assert.Equal(t, game.ErrWrongPhase.Error(), msg.Message)

	f.hub.Dispatch(host.id, ClientMessage{Type: msgSubmitWord, Word: "apple"})
	host.expect(t, game.EventWaitingForOpponent, nil)
	f.hub.Dispatch(guest.id, ClientMessage{Type: msgSubmitWord, Word: "chair"})
	guest.expect(t, game.EventGameStart, nil)

	f.hub.Dispatch(guest.id, ClientMessage{Type: msgMakeGuess, Guess: "apple"})
	guest.expect(t, game.EventGuessRejected, &msg)
	assert.Equal(t, game.ErrNotYourTurn.Error(), msg.Message)

	f.hub.Dispatch(host.id, ClientMessage{Type: msgMakeGuess, Guess: "zzzzz"})
	host.expect(t, game.EventGuessRejected, &msg)
	assert.Equal(t, game.ErrInvalidWord.Error(), msg.Message)

	f.hub.Dispatch(host.id, ClientMessage{Type: msgMakeGuess, Code: "NOPE00", Guess: "chair"})
	host.expect(t, game.EventGuessRejected, &msg)
	assert.Equal(t, errGameNotFound.Error(), msg.Message)

	// Still host's turn after every rejection.
	f.hub.Dispatch(host.id, ClientMessage{Type: msgMakeGuess, Guess: "beach"})
	host.expect(t, game.EventGuessResult, nil)
}

func TestHub_SubmitWordErrors(t *testing.T) {
	f := startHub(t)
	host, guest := f.connect(t, "host"), f.connect(t, "guest")
	f.pair(t, host, guest)

	var msg game.Message
	f.hub.Dispatch(host.id, ClientMessage{Type: msgSubmitWord, Word: "zzzzz"})
	host.expect(t, game.EventInvalidWord, &msg)
	assert.Equal(t, game.ErrInvalidWord.Error(), msg.Message)

	f.hub.Dispatch(host.id, ClientMessage{Type: msgSubmitWord, Word: "apple"})
	host.expect(t, game.EventWordAccepted, nil)

	f.hub.Dispatch(host.id, ClientMessage{Type: msgSubmitWord, Word: "beach"})
	host.expect(t, game.EventError, &msg)
	assert.Equal(t, game.ErrSecretAlreadySet.Error(), msg.Message)

	loner := f.connect(t, "loner")
	f.hub.Dispatch(loner.id, ClientMessage{Type: msgSubmitWord, Word: "apple"})
	loner.expect(t, game.EventError, &msg)
	assert.Equal(t, errGameNotFound.Error(), msg.Message)
}

func TestHub_DisconnectEndsRoom(t *testing.T) {
	f := startHub(t)
	host, guest := f.connect(t, "host"), f.connect(t, "guest")
	code := f.playing(t, host, guest, "apple", "chair")

	f.hub.Unregister(guest.id)
	<-guest.closed

	seen := host.until(t, game.EventAvailableRooms)
	var disconnects int
	for _, fr := range seen {
		if fr.Type == game.EventPlayerDisconnected {
			disconnects++
			var p game.PlayerDisconnected
			require.NoError(t, json.Unmarshal(fr.Payload, &p))
			assert.Equal(t, guest.id, p.ConnectionID)
		}
	}
	assert.Equal(t, 1, disconnects)
	assert.Equal(t, 0, f.registry.Len())
	f.pub.AssertCalled(t, "Close", code)

	// A second unregister for the same connection is a no-op.
	f.hub.Unregister(guest.id)
	f.hub.Dispatch(host.id, ClientMessage{Type: msgGetAvailableRooms})
	assert.NotContains(t, types(host.until(t, game.EventAvailableRooms)), game.EventPlayerDisconnected)
}

func TestHub_LeaveRoom(t *testing.T) {
	f := startHub(t)
	host, guest := f.connect(t, "host"), f.connect(t, "guest")
	f.pair(t, host, guest)

	f.hub.Dispatch(host.id, ClientMessage{Type: msgLeaveRoom})
	guest.expect(t, game.EventPlayerDisconnected, nil)
	guest.expect(t, game.EventAvailableRooms, nil)
	assert.Equal(t, 0, f.registry.Len())

	f.hub.Dispatch(guest.id, ClientMessage{Type: msgCreateRoom})
	guest.expect(t, game.EventRoomCreated, nil)
}

func TestHub_LoneHostDisconnectRemovesRoom(t *testing.T) {
	f := startHub(t)
	host, watcher := f.connect(t, "host"), f.connect(t, "watcher")

	f.hub.Dispatch(host.id, ClientMessage{Type: msgCreateRoom})
	host.expect(t, game.EventRoomCreated, nil)
	watcher.expect(t, game.EventAvailableRooms, nil)

	f.hub.Unregister(host.id)
	var rooms []game.RoomSummary
	watcher.expect(t, game.EventAvailableRooms, &rooms)
	assert.Empty(t, rooms)
	assert.Equal(t, 0, f.registry.Len())
}

func TestHub_UnknownAndRejectedMessages(t *testing.T) {
	f := startHub(t)
	c := f.connect(t, "c1")

	var msg game.Message
	f.hub.Dispatch(c.id, ClientMessage{Type: "dance"})
	c.expect(t, game.EventError, &msg)
	assert.Equal(t, errUnknownMessage.Error(), msg.Message)

	f.hub.Reject(c.id, errRateLimited)
	c.expect(t, game.EventError, &msg)
	assert.Equal(t, errRateLimited.Error(), msg.Message)
}

func TestHub_SlowClientDropped(t *testing.T) {
	f := startHub(t)
	slow := newFakeClient("slow")
	slow.full = true
	require.True(t, f.hub.Register(slow))

	select {
	case <-slow.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("slow client was not dropped")
	}
}

func TestHub_StopClosesClients(t *testing.T) {
	registry := game.NewRegistry(words.New(testWords), nil)
	hub := NewHub(registry, nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	c := newFakeClient("c1")
	require.True(t, hub.Register(c))
	cancel()
	<-stopped
	<-c.closed

	assert.False(t, hub.Register(newFakeClient("late")))
	hub.Dispatch("c1", ClientMessage{Type: msgCreateRoom})
	hub.Unregister("c1")
}
