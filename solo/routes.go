package solo

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Handler serves the practice endpoints.
type Handler struct {
	store      Store
	oracle     Oracle
	maxGuesses int
	mu         sync.Mutex // serializes get-apply-save per request
}

func NewHandler(store Store, oracle Oracle, maxGuesses int) *Handler {
	return &Handler{store: store, oracle: oracle, maxGuesses: maxGuesses}
}

// Mount registers POST /new and POST /guess on r.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/new", h.handleNew)
	r.Post("/guess", h.handleGuess)
}

type newGameRes struct {
	GameID     string `json:"gameId"`
	MaxGuesses int    `json:"maxGuesses"`
}

func (h *Handler) handleNew(w http.ResponseWriter, r *http.Request) {
	g := New(h.oracle, "", h.maxGuesses)
	if err := h.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save practice game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	log.Debug().Str("gameId", g.ID).Msg("practice game started")
	writeJSON(w, http.StatusOK, newGameRes{GameID: g.ID, MaxGuesses: g.MaxGuesses})
}

type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

type guessRes struct {
	Word        string `json:"word"`
	CommonCount int    `json:"commonCount"`
	Guesses     int    `json:"guesses"`
	State       string `json:"state"`
	Secret      string `json:"secret,omitempty"`
}

func (h *Handler) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	g, err := h.store.Get(r.Context(), req.GameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	scored, state, err := g.ApplyGuess(h.oracle, req.Guess)
	switch {
	case errors.Is(err, ErrGameFinished):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := guessRes{Word: scored.Word, CommonCount: scored.CommonCount, Guesses: len(g.Guesses), State: state}
	if g.Finished {
		res.Secret = g.Secret
		if err := h.store.Delete(r.Context(), g.ID); err != nil {
			log.Warn().Err(err).Str("gameId", g.ID).Msg("delete finished practice game")
		}
	} else if err := h.store.Save(r.Context(), g); err != nil {
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
