package game

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomUnavailable  = errors.New("room not found or full")
	ErrAlreadyInRoom    = errors.New("already in a room")
	ErrNotInRoom        = errors.New("not a player in this room")
	ErrWrongPhase       = errors.New("action not allowed in the current phase")
	ErrInvalidWord      = errors.New("the word is not in the dictionary, please choose another word")
	ErrSecretAlreadySet = errors.New("secret word already submitted")
	ErrNotYourTurn      = errors.New("it is not your turn")
)
