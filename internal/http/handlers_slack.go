package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/kingside/internal/compensation"
	"github.com/mauv0809/kingside/internal/tournament"
	"github.com/slack-go/slack"
)

const slackListLimit = 50

// respondWithSlackMsg returns a writer for the result of a notifier Format call.
func respondWithSlackMsg(w http.ResponseWriter) func(msg any, err error) {
	return func(msg any, err error) {
		if err != nil {
			log.Error("Failed to format Slack response", "error", err)
			http.Error(w, "Failed to format response", http.StatusInternalServerError)
			return
		}
		slackMsg, ok := msg.(slack.Message)
		if !ok {
			log.Error("Failed to cast message to slack.Message")
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(slackMsg); err != nil {
			log.Error("Failed to encode slack message to JSON", "error", err)
		}
	}
}

// OperatorCommandHandler answers the /kingside slash command used by
// operators to inspect tournaments and money movements that need attention.
func (s *Server) OperatorCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := slack.SlashCommandParse(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		args := strings.Fields(cmd.Text)
		log.Info("Received operator command", "user", cmd.UserName, "text", cmd.Text)
		if len(args) == 0 {
			respondWithSlackMsg(w)(s.Notifier.FormatCommandHelpResponse(""))
			return
		}

		switch strings.ToLower(args[0]) {
		case "tournament":
			if len(args) < 2 {
				respondWithSlackMsg(w)(s.Notifier.FormatCommandHelpResponse("A tournament id is required."))
				return
			}
			t, err := s.Tournaments.Get(r.Context(), args[1])
			if errors.Is(err, tournament.ErrNotFound) {
				respondWithSlackMsg(w)(s.Notifier.FormatCommandHelpResponse(fmt.Sprintf("Tournament `%s` not found.", args[1])))
				return
			}
			if err != nil {
				log.Error("Failed to load tournament", "tournamentID", args[1], "error", err)
				http.Error(w, "Failed to load tournament", http.StatusInternalServerError)
				return
			}
			count, err := s.Tournaments.CountPaidParticipants(r.Context(), t.ID)
			if err != nil {
				log.Error("Failed to count participants", "tournamentID", t.ID, "error", err)
				http.Error(w, "Failed to load tournament", http.StatusInternalServerError)
				return
			}
			respondWithSlackMsg(w)(s.Notifier.FormatTournamentResponse(t, count))
		case "withdrawals":
			pending, err := s.Withdrawals.Pending(r.Context(), slackListLimit)
			if err != nil {
				log.Error("Failed to list pending withdrawals", "error", err)
				http.Error(w, "Failed to list withdrawals", http.StatusInternalServerError)
				return
			}
			respondWithSlackMsg(w)(s.Notifier.FormatPendingWithdrawalsResponse(pending))
		case "compensations":
			failed, err := compensation.New(s.DB).ListByStatus(r.Context(), compensation.StatusFailed, slackListLimit)
			if err != nil {
				log.Error("Failed to list failed compensations", "error", err)
				http.Error(w, "Failed to list compensations", http.StatusInternalServerError)
				return
			}
			respondWithSlackMsg(w)(s.Notifier.FormatFailedCompensationsResponse(failed))
		default:
			respondWithSlackMsg(w)(s.Notifier.FormatCommandHelpResponse(fmt.Sprintf("Unknown command `%s`.", args[0])))
		}
	}
}
