package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/kingside/internal/compensation"
	"github.com/mauv0809/kingside/internal/metrics"
	"github.com/mauv0809/kingside/internal/tournament"
	"github.com/mauv0809/kingside/internal/withdrawal"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, ts, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
	assert.Equal(t, "dry-run-thread-ts", ts)
	assert.Equal(t, 0, metrics.SlackNotifSent())
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	_, _, err := notifier.sendMessage(slackapi.NewBlockMessage(), false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 1, metrics.SlackNotifFailed())
}

func TestSendCompensationFailed_CallsSender(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "C123", "ts123", nil
		},
	}
	notifier := NewNotifierWithAPI(api, "C123", metrics.NewMock())

	err := notifier.SendCompensationFailed(&compensation.Compensation{
		Kind: compensation.KindRefund, ProfileID: "p1", Amount: 5000, Reason: "left tournament", Attempts: 5,
	}, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called via SendCompensationFailed")
}

func TestFormatStatusChange(t *testing.T) {
	start := time.Date(2025, 7, 9, 18, 0, 0, 0, time.UTC)
	tr := &tournament.Tournament{
		Title:     "Lagos Blitz",
		EntryFee:  5000,
		Currency:  "NGN",
		PrizePool: 15000,
		Status:    tournament.StatusOngoing,
		StartDate: &start,
	}
	n := NewNotifierWithAPI(nil, "C123", metrics.NewMock())

	msg := n.formatStatusChange(tr, tournament.StatusPublished)
	require.Len(t, msg.Blocks.BlockSet, 3)

	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok)
	assert.Contains(t, header.Text.Text, "Tournament started")

	section, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	require.Len(t, section.Fields, 4)
	assert.Equal(t, "*Tournament*\nLagos Blitz", section.Fields[0].Text)
	assert.Equal(t, "*Status*\npublished → ongoing", section.Fields[1].Text)
	assert.Equal(t, "*Prize pool*\n150.00 NGN", section.Fields[2].Text)
	assert.Equal(t, "*Entry fee*\n50.00 NGN", section.Fields[3].Text)

	contextBlock, ok := msg.Blocks.BlockSet[2].(*slackapi.ContextBlock)
	require.True(t, ok)
	require.Len(t, contextBlock.ContextElements.Elements, 1)
}

func TestFormatStatusChange_FreeWithoutDates(t *testing.T) {
	tr := &tournament.Tournament{Title: "Casual", Status: tournament.StatusCompleted}
	n := NewNotifierWithAPI(nil, "C123", metrics.NewMock())

	msg := n.formatStatusChange(tr, tournament.StatusOngoing)

	require.Len(t, msg.Blocks.BlockSet, 2)
	section := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	assert.Equal(t, "*Entry fee*\nFree", section.Fields[3].Text)
}

func TestFormatCompensationFailed(t *testing.T) {
	n := NewNotifierWithAPI(nil, "C123", metrics.NewMock())
	c := &compensation.Compensation{
		Kind:         compensation.KindWithdrawalReversal,
		ProfileID:    "p1",
		WithdrawalID: "w1",
		Amount:       20000,
		Reason:       "transfer failed",
		Attempts:     5,
		LastError:    "database is locked",
	}

	msg := n.formatCompensationFailed(c)

	require.Len(t, msg.Blocks.BlockSet, 4)
	fields := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock).Fields
	require.Len(t, fields, 5)
	assert.Equal(t, "*Amount*\n200.00 NGN", fields[2].Text)
	assert.Equal(t, "*Withdrawal*\nw1", fields[4].Text)
}

func TestFormatStaleWithdrawal(t *testing.T) {
	n := NewNotifierWithAPI(nil, "C123", metrics.NewMock())
	w := &withdrawal.Withdrawal{
		ProfileID:    "p1",
		Amount:       25000,
		TransferCode: "TRF_1",
		AccountName:  "Ada Lovelace",
		BankCode:     "058",
		CreatedAt:    time.Date(2025, 7, 9, 8, 0, 0, 0, time.UTC),
	}

	msg := n.formatStaleWithdrawal(w)

	require.Len(t, msg.Blocks.BlockSet, 3)
	fields := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock).Fields
	assert.Equal(t, "*Transfer*\nTRF_1", fields[2].Text)
	assert.Equal(t, "*Account*\nAda Lovelace (058)", fields[3].Text)
}
