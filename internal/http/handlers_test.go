package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/kingside/internal/auth"
	"github.com/mauv0809/kingside/internal/compensation"
	"github.com/mauv0809/kingside/internal/config"
	"github.com/mauv0809/kingside/internal/database"
	"github.com/mauv0809/kingside/internal/join"
	"github.com/mauv0809/kingside/internal/lock"
	"github.com/mauv0809/kingside/internal/metrics"
	"github.com/mauv0809/kingside/internal/notifier"
	slacknotifier "github.com/mauv0809/kingside/internal/notifier/slack"
	"github.com/mauv0809/kingside/internal/paystack"
	"github.com/mauv0809/kingside/internal/processor"
	"github.com/mauv0809/kingside/internal/pubsub"
	"github.com/mauv0809/kingside/internal/tournament"
	"github.com/mauv0809/kingside/internal/wallet"
	"github.com/mauv0809/kingside/internal/withdrawal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	testJWTSecret          = "test-jwt-secret"
	testPaystackSecret     = "sk_test_secret"
	testSlackSigningSecret = "test-signing-secret"
)

type testServer struct {
	*Server
	gateway *paystack.MockClient
	pubsub  *pubsub.MockPubSubClient
}

// setupTestServer wires a server over an in-memory database and mock gateway.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(dbTeardown)

	cfg := config.Config{
		Paystack:           config.PaystackConfig{SecretKey: testPaystackSecret},
		Slack:              config.SlackConfig{SigningSecret: testSlackSigningSecret},
		CORSAllowedOrigins: []string{"*"},
	}
	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	gateway := paystack.NewMockClient()
	ps := pubsub.NewMock("TEST")
	locker := lock.NewLocal()
	applier := compensation.NewApplier(db, metricsSvc)

	proc := processor.New(processor.Stores{
		Tournaments:   tournament.New(db),
		Compensations: compensation.New(db),
		Withdrawals:   withdrawal.NewStore(db),
	}, applier, notifier.NewMock(), metricsSvc, ps)

	server := NewServer(cfg, Dependencies{
		DB:             db,
		Join:           join.New(db, gateway, locker, applier, ps, metricsSvc),
		Withdrawals:    withdrawal.New(db, gateway, locker, applier, ps, metricsSvc, withdrawal.DefaultMinAmount),
		Processor:      proc,
		Auth:           auth.NewVerifier(testJWTSecret),
		Metrics:        metricsSvc,
		MetricsHandler: metrics.NewMetricsHandler(reg),
		Notifier:       slacknotifier.NewNotifierWithAPI(nil, "C123", metricsSvc),
		PubSub:         ps,
	})
	return &testServer{Server: server, gateway: gateway, pubsub: ps}
}

func (s *testServer) do(t *testing.T, method, target, profileID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if profileID != "" {
		token, err := s.Auth.Issue(profileID, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) tournament(t *testing.T, fee int64) *tournament.Tournament {
	t.Helper()
	start := time.Now().Add(2 * time.Hour)
	tr := &tournament.Tournament{
		Title:     "Lagos Blitz",
		HostID:    "host-1",
		EntryFee:  fee,
		Status:    tournament.StatusPublished,
		StartDate: &start,
	}
	require.NoError(t, s.Tournaments.Create(context.Background(), tr))
	return tr
}

func (s *testServer) fund(t *testing.T, profileID string, amount int64) {
	t.Helper()
	_, err := wallet.New(s.DB).Credit(context.Background(), wallet.Entry{
		ProfileID: profileID, Amount: amount, Type: wallet.TxDeposit, Description: "Deposit",
	})
	require.NoError(t, err)
}

func (s *testServer) balance(t *testing.T, profileID string) int64 {
	t.Helper()
	b, err := wallet.New(s.DB).Balance(context.Background(), profileID)
	require.NoError(t, err)
	return b
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestHealthCheckHandler(t *testing.T) {
	server := setupTestServer(t)

	rr := server.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestJoinTournamentHandler_Wallet(t *testing.T) {
	server := setupTestServer(t)
	tr := server.tournament(t, 5000)
	server.fund(t, "p1", 8000)

	body := map[string]string{"tournamentId": tr.ID, "profileId": "p1", "paymentMethod": "wallet"}
	rr := server.do(t, http.MethodPost, "/api/verify-paystack", "p1", body)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decode(t, rr)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Successfully joined tournament", resp["message"])
	assert.Equal(t, int64(3000), server.balance(t, "p1"))

	t.Run("repeat join is reported as already joined", func(t *testing.T) {
		rr := server.do(t, http.MethodPost, "/api/verify-paystack", "p1", body)
		require.Equal(t, http.StatusOK, rr.Code)
		resp := decode(t, rr)
		assert.Equal(t, true, resp["success"])
		assert.Equal(t, "Already joined this tournament", resp["message"])
		assert.Equal(t, int64(3000), server.balance(t, "p1"))
	})
}

func TestJoinTournamentHandler_Rejections(t *testing.T) {
	server := setupTestServer(t)
	tr := server.tournament(t, 5000)
	server.fund(t, "p1", 1000)

	tests := []struct {
		name    string
		caller  string
		body    any
		status  int
		message string
	}{
		{
			name:   "missing token",
			body:   map[string]string{"tournamentId": tr.ID, "profileId": "p1", "paymentMethod": "wallet"},
			status: http.StatusUnauthorized,
		},
		{
			name:   "caller is not the profile",
			caller: "p2",
			body:   map[string]string{"tournamentId": tr.ID, "profileId": "p1", "paymentMethod": "wallet"},
			status: http.StatusUnauthorized,
		},
		{
			name:   "unknown payment method",
			caller: "p1",
			body:   map[string]string{"tournamentId": tr.ID, "profileId": "p1", "paymentMethod": "card"},
			status: http.StatusBadRequest,
		},
		{
			name:   "malformed body",
			caller: "p1",
			body:   "{not json",
			status: http.StatusBadRequest,
		},
		{
			name:    "unknown tournament",
			caller:  "p1",
			body:    map[string]string{"tournamentId": "missing", "profileId": "p1", "paymentMethod": "wallet"},
			status:  http.StatusNotFound,
			message: "Tournament not found",
		},
		{
			name:    "insufficient balance",
			caller:  "p1",
			body:    map[string]string{"tournamentId": tr.ID, "profileId": "p1", "paymentMethod": "wallet"},
			status:  http.StatusBadRequest,
			message: "Insufficient wallet balance",
		},
		{
			name:    "gateway without reference",
			caller:  "p1",
			body:    map[string]string{"tournamentId": tr.ID, "profileId": "p1", "paymentMethod": "paystack"},
			status:  http.StatusBadRequest,
			message: "Paystack reference required",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := server.do(t, http.MethodPost, "/api/verify-paystack", tc.caller, tc.body)
			assert.Equal(t, tc.status, rr.Code, rr.Body.String())
			if tc.message != "" {
				resp := decode(t, rr)
				assert.Equal(t, false, resp["success"])
				assert.Contains(t, resp["message"], tc.message)
			}
		})
	}
	assert.Equal(t, int64(1000), server.balance(t, "p1"))
}

func TestJoinTournamentHandler_GatewayAmountMismatch(t *testing.T) {
	server := setupTestServer(t)
	tr := server.tournament(t, 5000)
	server.gateway.VerifyTransactionFunc = func(ctx context.Context, reference string) (*paystack.Verification, error) {
		return &paystack.Verification{Reference: reference, Status: paystack.TransactionSuccess, Amount: 4000}, nil
	}

	body := map[string]string{"tournamentId": tr.ID, "profileId": "p1", "paymentMethod": "paystack", "paystackReference": "ref-1"}
	rr := server.do(t, http.MethodPost, "/api/verify-paystack", "p1", body)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	count, err := server.Tournaments.CountPaidParticipants(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestJoinErrorStatus_CompensatedJoins(t *testing.T) {
	full := &join.CompensatedError{Err: join.ErrTournamentFull, Credited: true}
	code, msg := joinErrorStatus(full)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Tournament is full. Your payment was credited to your wallet", msg)

	failed := &join.CompensatedError{Err: fmt.Errorf("%w: disk", join.ErrPersistenceFailed)}
	code, msg = joinErrorStatus(failed)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Failed to complete registration. Your payment will be credited to your wallet", msg)
}

func TestLeaveTournamentHandler(t *testing.T) {
	server := setupTestServer(t)
	tr := server.tournament(t, 5000)
	server.fund(t, "p1", 5000)

	rr := server.do(t, http.MethodPost, "/api/verify-paystack", "p1",
		map[string]string{"tournamentId": tr.ID, "profileId": "p1", "paymentMethod": "wallet"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, int64(0), server.balance(t, "p1"))

	rr = server.do(t, http.MethodPost, "/api/tournaments/"+tr.ID+"/leave", "p1", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decode(t, rr)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(5000), resp["refunded"])
	assert.Equal(t, int64(5000), server.balance(t, "p1"))

	rr = server.do(t, http.MethodPost, "/api/tournaments/"+tr.ID+"/leave", "p1", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "You are not registered for this tournament", decode(t, rr)["error"])
}

func TestTournamentLifecycleHandlers(t *testing.T) {
	server := setupTestServer(t)
	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)

	rr := server.do(t, http.MethodPost, "/api/tournaments/create", "host-1", map[string]any{
		"title":           "Sunday Rapid",
		"entryFee":        5000,
		"maxParticipants": 16,
		"startDate":       start,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode(t, rr)
	id := created["id"].(string)
	assert.Equal(t, "draft", created["status"])
	assert.Equal(t, "host-1", created["host_id"])
	assert.Equal(t, "NGN", created["currency"])

	t.Run("only the host can publish", func(t *testing.T) {
		rr := server.do(t, http.MethodPost, "/api/tournaments/"+id+"/publish", "intruder", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("host publishes once", func(t *testing.T) {
		rr := server.do(t, http.MethodPost, "/api/tournaments/"+id+"/publish", "host-1", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "published", decode(t, rr)["status"])
		assert.Len(t, server.pubsub.Published(pubsub.EventTournamentStatusChanged), 1)

		rr = server.do(t, http.MethodPost, "/api/tournaments/"+id+"/publish", "host-1", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("get includes derived fields", func(t *testing.T) {
		rr := server.do(t, http.MethodGet, "/api/tournaments/"+id, "", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		got := decode(t, rr)
		assert.Equal(t, "published", got["effective_status"])
		assert.Equal(t, float64(0), got["participant_count"])
	})

	t.Run("list filters by status", func(t *testing.T) {
		rr := server.do(t, http.MethodGet, "/api/tournaments/?status=published", "", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var list []map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
		assert.Len(t, list, 1)

		rr = server.do(t, http.MethodGet, "/api/tournaments/?status=bogus", "", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		rr := server.do(t, http.MethodPost, "/api/tournaments/create", "host-1", map[string]any{
			"title":     "Backwards",
			"startDate": start,
			"endDate":   start.Add(-time.Hour),
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "endDate")
	})

	t.Run("cancel refunds paid participants", func(t *testing.T) {
		server.fund(t, "p1", 5000)
		rr := server.do(t, http.MethodPost, "/api/verify-paystack", "p1",
			map[string]string{"tournamentId": id, "profileId": "p1", "paymentMethod": "wallet"})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		rr = server.do(t, http.MethodPost, "/api/tournaments/"+id+"/cancel", "p1", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		rr = server.do(t, http.MethodPost, "/api/tournaments/"+id+"/cancel", "host-1", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, float64(1), decode(t, rr)["refunds"])
		assert.Equal(t, int64(5000), server.balance(t, "p1"))
	})
}

func TestParticipantCountAndPrizePoolHandlers(t *testing.T) {
	server := setupTestServer(t)
	tr := server.tournament(t, 5000)
	server.fund(t, "p1", 5000)
	rr := server.do(t, http.MethodPost, "/api/verify-paystack", "p1",
		map[string]string{"tournamentId": tr.ID, "profileId": "p1", "paymentMethod": "wallet"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = server.do(t, http.MethodGet, "/api/tournament-participants/"+tr.ID, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(1), decode(t, rr)["count"])

	rr = server.do(t, http.MethodGet, "/api/tournaments", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, float64(1), list[0]["participant_count"])

	rr = server.do(t, http.MethodGet, "/api/tournament-prize/"+tr.ID, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	prize := decode(t, rr)
	assert.Equal(t, float64(5000), prize["prizePool"])
	assert.Equal(t, "NGN", prize["currency"])

	rr = server.do(t, http.MethodGet, "/api/tournament-prize/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestWithdrawAndWebhookHandlers(t *testing.T) {
	server := setupTestServer(t)
	server.fund(t, "p1", 50000)

	withdraw := map[string]any{
		"profileId":     "p1",
		"amount":        20000,
		"bankCode":      "058",
		"accountNumber": "0123456789",
		"accountName":   "Ada Obi",
	}

	t.Run("invalid account number", func(t *testing.T) {
		bad := map[string]any{"profileId": "p1", "amount": 20000, "bankCode": "058", "accountNumber": "12", "accountName": "Ada"}
		rr := server.do(t, http.MethodPost, "/api/wallet/withdraw", "p1", bad)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "accountNumber")
		assert.Zero(t, server.gateway.TotalCalls())
	})

	t.Run("below minimum", func(t *testing.T) {
		small := map[string]any{"profileId": "p1", "amount": 500, "bankCode": "058", "accountNumber": "0123456789", "accountName": "Ada"}
		rr := server.do(t, http.MethodPost, "/api/wallet/withdraw", "p1", small)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Zero(t, server.gateway.TotalCalls())
	})

	rr := server.do(t, http.MethodPost, "/api/wallet/withdraw", "p1", withdraw)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	data := decode(t, rr)["data"].(map[string]any)
	transferCode := data["transferCode"].(string)
	assert.Equal(t, int64(30000), server.balance(t, "p1"))

	payload := []byte(fmt.Sprintf(`{"event":"transfer.failed","data":{"transfer_code":%q,"status":"failed"}}`, transferCode))

	t.Run("bad signature is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload))
		req.Header.Set(paystack.SignatureHeader, strings.Repeat("0", 128))
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, int64(30000), server.balance(t, "p1"))
	})

	t.Run("failed transfer credits the wallet back", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload))
		req.Header.Set(paystack.SignatureHeader, paystack.Sign(testPaystackSecret, payload))
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, int64(50000), server.balance(t, "p1"))
	})

	t.Run("wallet summary is private", func(t *testing.T) {
		rr := server.do(t, http.MethodGet, "/api/wallet/p1", "p2", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		rr = server.do(t, http.MethodGet, "/api/wallet/p1", "p1", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		summary := decode(t, rr)["data"].(map[string]any)
		assert.Equal(t, float64(50000), summary["balance"])
		assert.Len(t, summary["withdrawals"], 1)
	})
}

func TestCompensationPushHandler(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()
	c := &compensation.Compensation{Kind: compensation.KindRefund, ProfileID: "p1", Amount: 5000, Reason: "left"}
	require.NoError(t, compensation.New(server.DB).Create(ctx, c))

	push := func(t *testing.T, msg any) *httptest.ResponseRecorder {
		t.Helper()
		raw, err := msgpack.Marshal(msg)
		require.NoError(t, err)
		var envelope pubsub.PushMessage
		envelope.Subscription = "compensations"
		envelope.Message.Data = base64.StdEncoding.EncodeToString(raw)
		return server.do(t, http.MethodPost, "/pubsub/compensations", "", envelope)
	}

	rr := push(t, pubsub.CompensationRequested{CompensationID: c.ID})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, int64(5000), server.balance(t, "p1"))

	// Redelivery is a no-op.
	rr = push(t, pubsub.CompensationRequested{CompensationID: c.ID})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(5000), server.balance(t, "p1"))

	rr = push(t, pubsub.CompensationRequested{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = server.do(t, http.MethodPost, "/pubsub/compensations", "", "not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProcessTournamentsHandler(t *testing.T) {
	server := setupTestServer(t)
	tr := server.tournament(t, 0)
	past := time.Now().Add(-time.Minute)
	_, err := server.DB.Exec("UPDATE tournaments SET start_date = ? WHERE id = ?", past.Unix(), tr.ID)
	require.NoError(t, err)

	rr := server.do(t, http.MethodPost, "/process?dry_run=true", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Processed 1 tournament transitions", rr.Body.String())
	got, err := server.Tournaments.Get(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tournament.StatusPublished, got.Status)

	rr = server.do(t, http.MethodPost, "/process", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got, err = server.Tournaments.Get(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tournament.StatusOngoing, got.Status)
}

func TestMetricsHandler(t *testing.T) {
	server := setupTestServer(t)
	server.Metrics.IncJoin("wallet", "success")

	rr := server.do(t, http.MethodGet, "/metrics", "", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "join")
}

// createSlackCommandRequest creates an http.Request suitable for testing Slack slash commands,
// including the necessary signature and timestamp headers for verification.
func createSlackCommandRequest(t *testing.T, text, signingSecret string) *http.Request {
	t.Helper()
	form := url.Values{
		"command":   {"/kingside"},
		"text":      {text},
		"user_name": {"ops"},
	}
	body := form.Encode()
	req := httptest.NewRequest(http.MethodPost, "/slack/command/kingside", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte("v0:" + timestamp + ":" + body))
	req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(h.Sum(nil)))
	return req
}

func TestOperatorCommandHandler(t *testing.T) {
	server := setupTestServer(t)
	tr := server.tournament(t, 5000)
	server.fund(t, "p1", 50000)
	_, err := server.Withdrawals.Withdraw(context.Background(), withdrawal.Request{
		ProfileID: "p1", Amount: 20000, BankCode: "058", AccountNumber: "0123456789", AccountName: "Ada Obi",
	})
	require.NoError(t, err)

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("bad signature is rejected", func(t *testing.T) {
		rr := serve(createSlackCommandRequest(t, "withdrawals", "wrong-secret"))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing headers are rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/slack/command/kingside", strings.NewReader("text=withdrawals"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		assert.Equal(t, http.StatusUnauthorized, serve(req).Code)
	})

	tests := []struct {
		name     string
		text     string
		contains []string
	}{
		{"tournament", "tournament " + tr.ID, []string{"Lagos Blitz", "0 / Unlimited", "50.00 NGN"}},
		{"unknown tournament", "tournament missing", []string{"Tournament `missing` not found."}},
		{"pending withdrawals", "withdrawals", []string{"TRF_", "200.00 NGN for p1"}},
		{"no failed compensations", "compensations", []string{"Nothing needs manual reconciliation."}},
		{"help", "", []string{"/kingside tournament"}},
		{"unknown subcommand", "leaderboard", []string{"Unknown command `leaderboard`."}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(createSlackCommandRequest(t, tc.text, testSlackSigningSecret))
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			for _, want := range tc.contains {
				assert.Contains(t, rr.Body.String(), want)
			}
		})
	}
}
