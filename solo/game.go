// Package solo runs single-player practice games against a random secret.
//
// A game accepts dictionary guesses until the secret is found or the guess
// cap is reached. Each guess is scored with the common-letter count.
package solo

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"go_jotto_server/words"
)

// DefaultMaxGuesses caps a practice game.
const DefaultMaxGuesses = 99

const (
	StatePlaying = "playing"
	StateWon     = "won"
	StateLost    = "lost"
)

var (
	ErrGameFinished = errors.New("game finished")
	ErrInvalidGuess = errors.New("please enter a 5-letter word")
	ErrUnknownWord  = errors.New("not in word list")
	ErrNotFound     = errors.New("game not found")
)

// Oracle is the subset of the word oracle a practice game needs.
type Oracle interface {
	IsValidWord(candidate string) bool
	RandomSecret() string
}

type Guess struct {
	Word        string `json:"word"`
	CommonCount int    `json:"commonCount"`
}

// Game is one practice session.
type Game struct {
	ID         string
	Secret     string
	MaxGuesses int
	Guesses    []Guess
	Finished   bool
	Won        bool
}

// New starts a game. An empty secret picks one from oracle.
func New(oracle Oracle, secret string, maxGuesses int) *Game {
	if secret == "" {
		secret = oracle.RandomSecret()
	}
	if maxGuesses <= 0 {
		maxGuesses = DefaultMaxGuesses
	}
	return &Game{
		ID:         uuid.NewString(),
		Secret:     strings.ToLower(secret),
		MaxGuesses: maxGuesses,
	}
}

// ApplyGuess validates and scores guess, returning the scored guess and the
// resulting state.
func (g *Game) ApplyGuess(oracle Oracle, guess string) (Guess, string, error) {
	if g.Finished {
		return Guess{}, g.State(), ErrGameFinished
	}
	guess = strings.ToLower(strings.TrimSpace(guess))
	if !words.WellFormed(guess) {
		return Guess{}, g.State(), ErrInvalidGuess
	}
	if !oracle.IsValidWord(guess) {
		return Guess{}, g.State(), ErrUnknownWord
	}

	scored := Guess{Word: guess, CommonCount: words.CommonLetterCount(g.Secret, guess)}
	g.Guesses = append(g.Guesses, scored)

	if guess == g.Secret {
		g.Finished, g.Won = true, true
	} else if len(g.Guesses) >= g.MaxGuesses {
		g.Finished = true
	}
	return scored, g.State(), nil
}

// State reports playing, won or lost.
func (g *Game) State() string {
	if g.Finished {
		if g.Won {
			return StateWon
		}
		return StateLost
	}
	return StatePlaying
}
