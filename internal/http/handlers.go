package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/kingside/internal/paystack"
	"github.com/mauv0809/kingside/internal/pubsub"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// PaymentWebhookHandler receives signed Paystack events and settles the
// withdrawals they refer to.
func (s *Server) PaymentWebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		event, err := paystack.ParseWebhook(s.Cfg.Paystack.SecretKey, body, r.Header.Get(paystack.SignatureHeader))
		if errors.Is(err, paystack.ErrInvalidSignature) {
			log.Warn("Rejected webhook with bad signature")
			http.Error(w, "Invalid signature", http.StatusUnauthorized)
			return
		}
		if err != nil {
			log.Error("Failed to decode webhook", "error", err)
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		log.Info("Received payment webhook", "event", event.Event)

		if err := s.Withdrawals.HandleTransferEvent(r.Context(), event); err != nil {
			log.Error("Failed to handle webhook", "event", event.Event, "error", err)
			http.Error(w, "Failed to process event", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// CompensationPushHandler applies the compensation named in a Pub/Sub push
// message. A non-2xx response makes Pub/Sub redeliver.
func (s *Server) CompensationPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		rawData, err := pubsub.DecodePush(bodyBytes)
		if err != nil {
			log.Error("Failed to decode push message", "error", err)
			http.Error(w, "Invalid push message", http.StatusBadRequest)
			return
		}
		var msg pubsub.CompensationRequested
		if err := pubsub.Decode(rawData, &msg); err != nil || msg.CompensationID == "" {
			http.Error(w, "Invalid compensation message", http.StatusBadRequest)
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would apply compensation", "compensationID", msg.CompensationID)
			w.Write([]byte("OK"))
			return
		}
		if err := s.Processor.ApplyCompensation(r.Context(), msg.CompensationID); err != nil {
			http.Error(w, "Compensation not applied", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// ProcessTournamentsHandler persists start and end transitions for
// tournaments whose dates have passed.
func (s *Server) ProcessTournamentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := s.Processor.ProcessTournaments(r.Context(), time.Now(), isDryRunFromContext(r))
		if err != nil {
			http.Error(w, "Failed to process tournaments", http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, "Processed %d tournament transitions", n)
	}
}

func (s *Server) ProcessCompensationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := s.Processor.ProcessCompensations(r.Context(), isDryRunFromContext(r))
		if err != nil {
			http.Error(w, "Failed to process compensations", http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, "Applied %d compensations", n)
	}
}

func (s *Server) FlagStaleWithdrawalsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := s.Processor.FlagStaleWithdrawals(r.Context(), time.Now(), isDryRunFromContext(r))
		if err != nil {
			http.Error(w, "Failed to check withdrawals", http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, "Flagged %d stale withdrawals", n)
	}
}

// writeRequestError reports a body that failed decoding or validation.
func (s *Server) writeRequestError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		writeValidationError(w, verr)
		return
	}
	log.Error("Failed to validate request", "error", err)
	writeError(w, http.StatusBadRequest, "Invalid request")
}
