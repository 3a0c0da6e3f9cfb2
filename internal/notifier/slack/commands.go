package slack

import (
	"fmt"
	"strings"

	"github.com/mauv0809/kingside/internal/compensation"
	"github.com/mauv0809/kingside/internal/currency"
	"github.com/mauv0809/kingside/internal/tournament"
	"github.com/mauv0809/kingside/internal/withdrawal"
	"github.com/slack-go/slack"
)

// maxListed caps how many rows a slash command reply shows.
const maxListed = 10

// FormatTournamentResponse formats a tournament summary for a slash command response.
func (s *Notifier) FormatTournamentResponse(t *tournament.Tournament, participants int) (any, error) {
	return s.formatTournament(t, participants), nil
}

// FormatPendingWithdrawalsResponse formats unsettled withdrawals for a slash command response.
func (s *Notifier) FormatPendingWithdrawalsResponse(ws []withdrawal.Withdrawal) (any, error) {
	return s.formatPendingWithdrawals(ws), nil
}

// FormatFailedCompensationsResponse formats compensations awaiting manual action.
func (s *Notifier) FormatFailedCompensationsResponse(cs []compensation.Compensation) (any, error) {
	return s.formatFailedCompensations(cs), nil
}

// FormatCommandHelpResponse lists the available subcommands, prefixed by message.
func (s *Notifier) FormatCommandHelpResponse(message string) (any, error) {
	text := "*Usage*\n" +
		"• `/kingside tournament <id>` show status, participants and prize pool\n" +
		"• `/kingside withdrawals` list withdrawals still pending\n" +
		"• `/kingside compensations` list compensations that need manual action"
	if message != "" {
		text = message + "\n\n" + text
	}
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	), nil
}

func (s *Notifier) formatTournament(t *tournament.Tournament, participants int) slack.Message {
	capacity := "Unlimited"
	if t.MaxParticipants != nil {
		capacity = fmt.Sprintf("%d", *t.MaxParticipants)
	}
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", "♟️ "+t.Title, true, false)),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			markdownField("Status", string(t.Status)),
			markdownField("Participants", fmt.Sprintf("%d / %s", participants, capacity)),
			markdownField("Prize pool", currency.Format(t.PrizePool, t.Currency)),
			markdownField("Entry fee", entryFee(t)),
		}, nil),
	}
	if t.StartDate != nil {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject("plain_text", "Starts "+t.StartDate.In(s.loc).Format(timeLayout), true, false)))
	}
	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatPendingWithdrawals(ws []withdrawal.Withdrawal) slack.Message {
	header := slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", "⏳ Pending withdrawals", true, false))
	if len(ws) == 0 {
		return slack.NewBlockMessage(header,
			slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", "No withdrawals are waiting on the gateway.", false, false), nil, nil))
	}

	var lines []string
	for i, w := range ws {
		if i == maxListed {
			lines = append(lines, fmt.Sprintf("_…and %d more_", len(ws)-maxListed))
			break
		}
		lines = append(lines, fmt.Sprintf("• `%s` %s for %s, since %s",
			w.TransferCode, currency.Format(w.Amount, currency.DefaultCode), w.ProfileID, w.CreatedAt.In(s.loc).Format(timeLayout)))
	}
	return slack.NewBlockMessage(header,
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", strings.Join(lines, "\n"), false, false), nil, nil))
}

func (s *Notifier) formatFailedCompensations(cs []compensation.Compensation) slack.Message {
	header := slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", "⚠️ Failed compensations", true, false))
	if len(cs) == 0 {
		return slack.NewBlockMessage(header,
			slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", "Nothing needs manual reconciliation.", false, false), nil, nil))
	}

	var lines []string
	for i, c := range cs {
		if i == maxListed {
			lines = append(lines, fmt.Sprintf("_…and %d more_", len(cs)-maxListed))
			break
		}
		lines = append(lines, fmt.Sprintf("• `%s` %s %s for %s (%d attempts)",
			c.ID, c.Kind, currency.Format(c.Amount, currency.DefaultCode), c.ProfileID, c.Attempts))
	}
	return slack.NewBlockMessage(header,
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", strings.Join(lines, "\n"), false, false), nil, nil))
}
