package http

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/kingside/internal/auth"
	"github.com/mauv0809/kingside/internal/join"
	"github.com/mauv0809/kingside/internal/tournament"
)

// JoinTournamentHandler admits the caller into a tournament, paying from the
// wallet or with a verified card payment.
func (s *Server) JoinTournamentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinRequest
		if err := s.decodeAndValidate(r, &req); err != nil {
			s.writeRequestError(w, err)
			return
		}
		if !callerIs(r, req.ProfileID) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		method, err := join.ParseMethod(req.PaymentMethod)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, response{Message: err.Error()})
			return
		}

		res, err := s.Join.Join(r.Context(), join.Request{
			TournamentID: req.TournamentID,
			ProfileID:    req.ProfileID,
			Method:       method,
			Reference:    req.PaystackReference,
		})
		if err != nil {
			status, message := joinErrorStatus(err)
			if status == http.StatusInternalServerError {
				log.Error("Join failed", "tournamentID", req.TournamentID, "profileID", req.ProfileID, "error", err)
			}
			writeJSON(w, status, response{Message: message})
			return
		}

		if res.AlreadyJoined {
			writeJSON(w, http.StatusOK, response{Success: true, Message: join.ErrAlreadyJoined.Error(), Data: res})
			return
		}
		writeJSON(w, http.StatusOK, response{Success: true, Message: "Successfully joined tournament", Data: res})
	}
}

// LeaveTournamentHandler removes the caller from a tournament and refunds the
// entry fee to their wallet.
func (s *Server) LeaveTournamentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, _ := auth.ProfileFromContext(r.Context())
		tournamentID := chi.URLParam(r, "id")

		res, err := s.Join.Leave(r.Context(), tournamentID, profileID)
		if err != nil {
			status, message := joinErrorStatus(err)
			if status == http.StatusInternalServerError {
				log.Error("Leave failed", "tournamentID", tournamentID, "profileID", profileID, "error", err)
			}
			writeError(w, status, message)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// joinErrorStatus maps a join or leave failure to an HTTP status and a
// message that is safe to show to the user.
func joinErrorStatus(err error) (int, string) {
	var compensated *join.CompensatedError
	if errors.As(err, &compensated) {
		if errors.Is(err, join.ErrAlreadyJoined) || errors.Is(err, join.ErrTournamentFull) {
			return http.StatusBadRequest, compensated.Error()
		}
		return http.StatusInternalServerError, (&join.CompensatedError{
			Err:      join.ErrPersistenceFailed,
			Credited: compensated.Credited,
		}).Error()
	}

	switch {
	case errors.Is(err, join.ErrTournamentNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, join.ErrAlreadyJoined),
		errors.Is(err, join.ErrTournamentStarted),
		errors.Is(err, join.ErrTournamentFull),
		errors.Is(err, join.ErrInsufficientBalance),
		errors.Is(err, join.ErrAmountMismatch),
		errors.Is(err, join.ErrGatewayVerificationFailed),
		errors.Is(err, join.ErrInvalidPaymentMethod),
		errors.Is(err, join.ErrReferenceRequired),
		errors.Is(err, join.ErrNotParticipant):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, join.ErrNotHost):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, tournament.ErrStatusConflict):
		return http.StatusBadRequest, "Tournament can no longer be changed"
	case errors.Is(err, join.ErrPersistenceFailed):
		return http.StatusInternalServerError, join.ErrPersistenceFailed.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
