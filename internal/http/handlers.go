package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"kakeibo/internal/core"
	"kakeibo/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// getScoreboard returns the cached scoreboard, recomputing on miss.
func (s *Server) getScoreboard(r *http.Request) (services.Scoreboard, error) {
	if sb, ok := s.scoreboardCache.Get(scoreboardCacheKey); ok {
		slog.DebugContext(r.Context(), "Scoreboard cache hit")
		return sb, nil
	}
	sb, err := s.svc.Scoreboard(r.Context())
	if err != nil {
		return services.Scoreboard{}, err
	}
	s.scoreboardCache.Set(scoreboardCacheKey, sb)
	return sb, nil
}

func (s *Server) handleScoreboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sb, err := s.getScoreboard(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Scoreboard load error", "error", err)
		writeError(w, http.StatusBadGateway, "scoreboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, sb)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sb, err := s.getScoreboard(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Series load error", "error", err)
		writeError(w, http.StatusBadGateway, "series unavailable")
		return
	}
	series := sb.Series
	if series == nil {
		series = []core.SeriesPoint{}
	}
	writeJSON(w, http.StatusOK, series)
}

type commitResponse struct {
	Date        core.DateKey     `json:"date"`
	Participant core.Participant `json:"participant"`
	AmountCents int64            `json:"amount_cents"`
	Description string           `json:"description"`
}

func (s *Server) handleCommitExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	date := core.DateKey(strings.TrimSpace(r.Form.Get("date")))
	if date == "" {
		date = core.DateKeyOf(time.Now())
	}

	participant := core.Participant(strings.TrimSpace(r.Form.Get("participant")))
	if participant == "" {
		participant = s.ident.Participant()
		if participant == "" {
			writeError(w, http.StatusUnprocessableEntity, "no participant chosen")
			return
		}
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(r.Form.Get("amount")))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	entry := core.Entry{
		Amount:      core.Money{Cents: cents},
		Description: sanitizeInput(r.Form.Get("description")),
		RecordedAt:  time.Now().UnixMilli(),
	}

	err = s.svc.CommitExpense(r.Context(), date, participant, entry, s.ident.WriterID())
	switch {
	case err == nil:
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrUnknownParticipant):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	default:
		slog.ErrorContext(r.Context(), "Commit error", "error", err, "day", string(date), "participant", string(participant))
		writeError(w, http.StatusBadGateway, "commit failed")
		return
	}

	s.scoreboardCache.Delete(scoreboardCacheKey)
	writeJSON(w, http.StatusCreated, commitResponse{
		Date:        date,
		Participant: participant,
		AmountCents: entry.Amount.Cents,
		Description: entry.Description,
	})
}

type participantResponse struct {
	Participant core.Participant `json:"participant"`
	WriterID    string           `json:"writer_id"`
}

func (s *Server) handleParticipant(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, participantResponse{
			Participant: s.ident.Participant(),
			WriterID:    s.ident.WriterID(),
		})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request")
			return
		}
		p := core.Participant(strings.TrimSpace(r.Form.Get("participant")))
		if !s.svc.Rules().Knows(p) {
			writeError(w, http.StatusUnprocessableEntity, "unknown participant")
			return
		}
		if err := s.ident.ChooseParticipant(p); err != nil {
			slog.ErrorContext(r.Context(), "Persist participant choice error", "error", err)
			writeError(w, http.StatusInternalServerError, "could not persist choice")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// sanitizeInput trims whitespace and strips control characters except tab,
// newline, and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
