package main

import "strings"

// Inbound event names.
const (
	msgCreateRoom        = "createRoom"
	msgJoinRoom          = "joinRoom"
	msgSubmitWord        = "submitWord"
	msgMakeGuess         = "makeGuess"
	msgGetAvailableRooms = "getAvailableRooms"
	msgLeaveRoom         = "leaveRoom"
)

// ClientMessage is every inbound frame. Fields unused by an event are empty.
type ClientMessage struct {
	Type     string `json:"type"`
	Code     string `json:"code"`
	RoomCode string `json:"roomCode"`
	Word     string `json:"word"`
	Guess    string `json:"guess"`
}

// Room returns the room the message addresses, preferring code over
// the roomCode alias.
func (m ClientMessage) Room() string {
	if strings.TrimSpace(m.Code) != "" {
		return m.Code
	}
	return m.RoomCode
}

// ServerMessage is every outbound frame.
type ServerMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}
