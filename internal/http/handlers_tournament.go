package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/kingside/internal/auth"
	"github.com/mauv0809/kingside/internal/currency"
	"github.com/mauv0809/kingside/internal/pubsub"
	"github.com/mauv0809/kingside/internal/tournament"
)

// tournamentView is a tournament as the API shows it, with its derived
// status and paid participant count.
type tournamentView struct {
	tournament.Tournament
	EffectiveStatus  tournament.Status `json:"effective_status"`
	ParticipantCount int               `json:"participant_count"`
}

func (s *Server) ListTournamentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := tournament.ListFilter{
			Status: tournament.Status(r.URL.Query().Get("status")),
			HostID: r.URL.Query().Get("host"),
		}
		if filter.Status != "" && !filter.Status.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		tournaments, err := s.Tournaments.List(r.Context(), filter)
		if err != nil {
			log.Error("Failed to list tournaments", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		counts, err := s.Tournaments.PaidCounts(r.Context())
		if err != nil {
			log.Error("Failed to count participants", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		now := time.Now()
		views := make([]tournamentView, 0, len(tournaments))
		for _, t := range tournaments {
			views = append(views, tournamentView{
				Tournament:       t,
				EffectiveStatus:  t.EffectiveStatus(now),
				ParticipantCount: counts[t.ID],
			})
		}
		writeJSON(w, http.StatusOK, views)
	}
}

// CreateTournamentHandler creates a tournament hosted by the caller.
func (s *Server) CreateTournamentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTournamentRequest
		if err := s.decodeAndValidate(r, &req); err != nil {
			s.writeRequestError(w, err)
			return
		}
		if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
			writeValidationError(w, &ValidationError{Fields: map[string]string{"endDate": "before startDate"}})
			return
		}

		hostID, _ := auth.ProfileFromContext(r.Context())
		t := &tournament.Tournament{
			Title:           strings.TrimSpace(req.Title),
			Description:     req.Description,
			HostID:          hostID,
			EntryFee:        req.EntryFee,
			Currency:        req.Currency,
			MaxParticipants: req.MaxParticipants,
			StartDate:       req.StartDate,
			EndDate:         req.EndDate,
			Platform:        req.Platform,
			ExternalLink:    req.ExternalLink,
			Status:          tournament.Status(req.Status),
		}
		if t.Currency == "" {
			t.Currency = currency.DefaultCode
		}
		if t.Status == "" {
			t.Status = tournament.StatusDraft
		}
		if err := s.Tournaments.Create(r.Context(), t); err != nil {
			log.Error("Failed to create tournament", "hostID", hostID, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		log.Info("Tournament created", "tournamentID", t.ID, "hostID", hostID, "status", t.Status)
		writeJSON(w, http.StatusCreated, t)
	}
}

func (s *Server) GetTournamentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := s.loadTournament(w, r)
		if !ok {
			return
		}
		count, err := s.Tournaments.CountPaidParticipants(r.Context(), t.ID)
		if err != nil {
			log.Error("Failed to count participants", "tournamentID", t.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, tournamentView{
			Tournament:       *t,
			EffectiveStatus:  t.EffectiveStatus(time.Now()),
			ParticipantCount: count,
		})
	}
}

// PublishTournamentHandler opens a draft tournament for joining.
func (s *Server) PublishTournamentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := s.loadTournament(w, r)
		if !ok {
			return
		}
		if !callerIs(r, t.HostID) {
			writeError(w, http.StatusUnauthorized, "Only the host can change this tournament")
			return
		}
		err := s.Tournaments.UpdateStatus(r.Context(), t.ID, tournament.StatusDraft, tournament.StatusPublished)
		if errors.Is(err, tournament.ErrStatusConflict) {
			writeError(w, http.StatusBadRequest, "Only draft tournaments can be published")
			return
		}
		if err != nil {
			log.Error("Failed to publish tournament", "tournamentID", t.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if s.pubsub != nil {
			if err := s.pubsub.SendMessage(pubsub.EventTournamentStatusChanged, pubsub.TournamentStatusChanged{
				TournamentID: t.ID,
				From:         string(tournament.StatusDraft),
				To:           string(tournament.StatusPublished),
			}); err != nil {
				log.Warn("Failed to publish status change", "tournamentID", t.ID, "error", err)
			}
		}
		t.Status = tournament.StatusPublished
		writeJSON(w, http.StatusOK, t)
	}
}

// CancelTournamentHandler cancels a tournament and refunds its paid participants.
func (s *Server) CancelTournamentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hostID, _ := auth.ProfileFromContext(r.Context())
		tournamentID := chi.URLParam(r, "id")
		res, err := s.Join.Cancel(r.Context(), tournamentID, hostID)
		if err != nil {
			status, message := joinErrorStatus(err)
			if status == http.StatusInternalServerError {
				log.Error("Cancel failed", "tournamentID", tournamentID, "error", err)
			}
			writeError(w, status, message)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// ParticipantCountHandler returns the number of paid participants.
func (s *Server) ParticipantCountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		count, err := s.Tournaments.CountPaidParticipants(r.Context(), id)
		if err != nil {
			log.Error("Failed to count participants", "tournamentID", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": count})
	}
}

// PrizePoolHandler returns the prize pool in minor units and formatted.
func (s *Server) PrizePoolHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := s.loadTournament(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"prizePool": t.PrizePool,
			"currency":  t.Currency,
			"formatted": currency.Format(t.PrizePool, t.Currency),
		})
	}
}

func (s *Server) loadTournament(w http.ResponseWriter, r *http.Request) (*tournament.Tournament, bool) {
	id := chi.URLParam(r, "id")
	t, err := s.Tournaments.Get(r.Context(), id)
	if errors.Is(err, tournament.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Tournament not found")
		return nil, false
	}
	if err != nil {
		log.Error("Failed to load tournament", "tournamentID", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	return t, true
}
