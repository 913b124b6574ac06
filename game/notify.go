package game

// Audience selects which connections receive a Notification.
type Audience int

const (
	// ToPlayers addresses the connection IDs listed in Notification.To.
	ToPlayers Audience = iota
	// ToEveryone addresses every live connection.
	ToEveryone
)

// Outbound event names.
const (
	EventAvailableRooms     = "availableRooms"
	EventRoomCreated        = "roomCreated"
	EventRoomJoined         = "roomJoined"
	EventJoinError          = "joinError"
	EventWaitingForWords    = "waitingForWords"
	EventWordAccepted       = "wordAccepted"
	EventWaitingForOpponent = "waitingForOpponent"
	EventInvalidWord        = "invalidWord"
	EventGameStart          = "gameStart"
	EventGuessResult        = "guessResult"
	EventGuessRejected      = "guessRejected"
	EventGameOver           = "gameOver"
	EventPlayerDisconnected = "playerDisconnected"
	EventError              = "error"
)

// Notification is one outbound message produced by the state machine.
// It carries no transport details; the gateway decides how to deliver it.
type Notification struct {
	Audience Audience
	To       []string
	Event    string
	Payload  any
}

// RoomCode is the payload of roomCreated and roomJoined.
type RoomCode struct {
	Code string `json:"code"`
}

// Message is the payload of every rejection.
type Message struct {
	Message string `json:"message"`
}

type GameStart struct {
	FirstPlayer string `json:"firstPlayer"`
}

type GuessResult struct {
	Player      string `json:"player"`
	Word        string `json:"word"`
	CommonCount int    `json:"commonCount"`
	NextTurn    string `json:"nextTurn"`
}

type GameOver struct {
	Winner string `json:"winner"`
	Word   string `json:"word"`
}

type PlayerDisconnected struct {
	ConnectionID string `json:"connectionId"`
}

// RoomSummary is one entry of the availableRooms listing.
type RoomSummary struct {
	Code        string `json:"code"`
	PlayerCount int    `json:"playerCount"`
}

func toPlayer(id, event string, payload any) Notification {
	return Notification{Audience: ToPlayers, To: []string{id}, Event: event, Payload: payload}
}

func toPlayers(ids []string, event string, payload any) Notification {
	return Notification{Audience: ToPlayers, To: ids, Event: event, Payload: payload}
}

// Rejection builds the notification sent back to the requester when an
// action fails with err.
func Rejection(requester, event string, err error) Notification {
	return toPlayer(requester, event, Message{Message: err.Error()})
}
