package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/kingside/internal/withdrawal"
)

const defaultHistoryLimit = 20

// WithdrawHandler sends wallet funds to the caller's bank account.
func (s *Server) WithdrawHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req WithdrawRequest
		if err := s.decodeAndValidate(r, &req); err != nil {
			s.writeRequestError(w, err)
			return
		}
		if !callerIs(r, req.ProfileID) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		res, err := s.Withdrawals.Withdraw(r.Context(), withdrawal.Request{
			ProfileID:     req.ProfileID,
			Amount:        req.Amount,
			BankCode:      req.BankCode,
			AccountNumber: req.AccountNumber,
			AccountName:   req.AccountName,
		})
		if err != nil {
			var persistence *withdrawal.PersistenceError
			switch {
			case errors.As(err, &persistence):
				log.Error("Withdrawal sent but not recorded", "profileID", req.ProfileID, "transferCode", persistence.TransferCode, "error", err)
				writeJSON(w, http.StatusInternalServerError, response{
					Message: "Withdrawal initiated but failed to update balance. Please contact support.",
					Data:    map[string]string{"transferCode": persistence.TransferCode},
				})
			case errors.Is(err, withdrawal.ErrBelowMinimum),
				errors.Is(err, withdrawal.ErrInsufficientBalance),
				errors.Is(err, withdrawal.ErrGateway):
				writeJSON(w, http.StatusBadRequest, response{Message: err.Error()})
			default:
				log.Error("Withdrawal failed", "profileID", req.ProfileID, "error", err)
				writeJSON(w, http.StatusInternalServerError, response{Message: "Internal server error"})
			}
			return
		}
		writeJSON(w, http.StatusOK, response{Success: true, Message: "Withdrawal initiated successfully", Data: res})
	}
}

func (s *Server) ListBanksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		banks, err := s.Withdrawals.ListBanks(r.Context())
		if err != nil {
			log.Error("Failed to list banks", "error", err)
			writeJSON(w, http.StatusBadRequest, response{Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, response{Success: true, Data: banks})
	}
}

func (s *Server) VerifyAccountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VerifyAccountRequest
		if err := s.decodeAndValidate(r, &req); err != nil {
			s.writeRequestError(w, err)
			return
		}
		acct, err := s.Withdrawals.VerifyAccount(r.Context(), req.AccountNumber, req.BankCode)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, response{Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, response{Success: true, Data: acct})
	}
}

// WalletSummaryHandler returns the caller's balance and recent history.
func (s *Server) WalletSummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID := chi.URLParam(r, "profileId")
		if !callerIs(r, profileID) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		limit := defaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}
		summary, err := s.Withdrawals.Summary(r.Context(), profileID, limit)
		if err != nil {
			log.Error("Failed to load wallet", "profileID", profileID, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, response{Success: true, Data: summary})
	}
}
