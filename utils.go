package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go_jotto_server/game"
)

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func roomCreatedLine(id string) string {
	return fmt.Sprintf("Room created by %s", id)
}

func playerJoinedLine(id string) string {
	return fmt.Sprintf("Player %s joined", id)
}

func playerLeftLine(id string) string {
	return fmt.Sprintf("Player %s left. This game has ended.", id)
}

// describe renders a room notification as a transcript line. Notifications
// that reveal nothing about the game's progress return "".
func describe(n game.Notification) string {
	switch p := n.Payload.(type) {
	case game.GameStart:
		return fmt.Sprintf("Game start! %s guesses first", p.FirstPlayer)
	case game.GuessResult:
		return fmt.Sprintf("%s guessed %s (%d in common). %s to play", p.Player, p.Word, p.CommonCount, p.NextTurn)
	case game.GameOver:
		return fmt.Sprintf("GAME OVER! %s found the word %s", p.Winner, p.Word)
	}
	if n.Event == game.EventWordAccepted && len(n.To) == 1 {
		return fmt.Sprintf("%s chose a secret word", n.To[0])
	}
	return ""
}
