package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/kingside/internal/compensation"
	"github.com/mauv0809/kingside/internal/currency"
	"github.com/mauv0809/kingside/internal/metrics"
	"github.com/mauv0809/kingside/internal/notifier"
	"github.com/mauv0809/kingside/internal/tournament"
	"github.com/mauv0809/kingside/internal/withdrawal"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

const timeLayout = "Mon 02 Jan 2006, 15:04"

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
	loc       *time.Location
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	return NewNotifierWithAPI(slack.New(token), channelID, metrics)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	loc, err := time.LoadLocation("Africa/Lagos")
	if err != nil {
		loc = time.FixedZone("WAT", 60*60)
	}
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
		loc:       loc,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendTournamentStatusChange(t *tournament.Tournament, from tournament.Status, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatStatusChange(t, from), dryRun)
	return err
}

func (s *Notifier) SendCompensationFailed(c *compensation.Compensation, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatCompensationFailed(c), dryRun)
	return err
}

func (s *Notifier) SendStaleWithdrawal(w *withdrawal.Withdrawal, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatStaleWithdrawal(w), dryRun)
	return err
}

// formatStatusChange creates the message for a persisted tournament transition.
func (s *Notifier) formatStatusChange(t *tournament.Tournament, from tournament.Status) slack.Message {
	var header string
	switch t.Status {
	case tournament.StatusOngoing:
		header = "♟️ Tournament started"
	case tournament.StatusCompleted:
		header = "🏁 Tournament completed"
	case tournament.StatusCancelled:
		header = "🚫 Tournament cancelled"
	default:
		header = "Tournament updated"
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", header, true, false)),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			markdownField("Tournament", t.Title),
			markdownField("Status", fmt.Sprintf("%s → %s", from, t.Status)),
			markdownField("Prize pool", currency.Format(t.PrizePool, t.Currency)),
			markdownField("Entry fee", entryFee(t)),
		}, nil),
	}

	var contextElements []slack.MixedElement
	if t.StartDate != nil {
		contextElements = append(contextElements,
			slack.NewTextBlockObject("plain_text", "Starts "+t.StartDate.In(s.loc).Format(timeLayout), true, false))
	}
	if t.EndDate != nil {
		contextElements = append(contextElements,
			slack.NewTextBlockObject("plain_text", "Ends "+t.EndDate.In(s.loc).Format(timeLayout), true, false))
	}
	if len(contextElements) > 0 {
		blocks = append(blocks, slack.NewContextBlock("", contextElements...))
	}
	return slack.NewBlockMessage(blocks...)
}

// formatCompensationFailed creates the message for a compensation that needs
// manual reconciliation.
func (s *Notifier) formatCompensationFailed(c *compensation.Compensation) slack.Message {
	fields := []*slack.TextBlockObject{
		markdownField("Kind", string(c.Kind)),
		markdownField("Profile", c.ProfileID),
		markdownField("Amount", currency.Format(c.Amount, currency.DefaultCode)),
		markdownField("Attempts", fmt.Sprintf("%d", c.Attempts)),
	}
	if c.TournamentID != "" {
		fields = append(fields, markdownField("Tournament", c.TournamentID))
	}
	if c.WithdrawalID != "" {
		fields = append(fields, markdownField("Withdrawal", c.WithdrawalID))
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", "⚠️ Compensation failed", true, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", c.Reason, false, false), nil, nil),
		slack.NewSectionBlock(nil, fields, nil),
	}
	if c.LastError != "" {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject("mrkdwn", "Last error: `"+c.LastError+"`", false, false)))
	}
	return slack.NewBlockMessage(blocks...)
}

// formatStaleWithdrawal creates the message for a transfer still pending.
func (s *Notifier) formatStaleWithdrawal(w *withdrawal.Withdrawal) slack.Message {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", "⏳ Withdrawal not settled", true, false)),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			markdownField("Profile", w.ProfileID),
			markdownField("Amount", currency.Format(w.Amount, currency.DefaultCode)),
			markdownField("Transfer", w.TransferCode),
			markdownField("Account", fmt.Sprintf("%s (%s)", w.AccountName, w.BankCode)),
		}, nil),
		slack.NewContextBlock("",
			slack.NewTextBlockObject("plain_text", "Initiated "+w.CreatedAt.In(s.loc).Format(timeLayout), true, false)),
	}
	return slack.NewBlockMessage(blocks...)
}

func markdownField(label, value string) *slack.TextBlockObject {
	return slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("*%s*\n%s", label, value), false, false)
}

func entryFee(t *tournament.Tournament) string {
	if t.IsFree() {
		return "Free"
	}
	return currency.Format(t.EntryFee, t.Currency)
}
