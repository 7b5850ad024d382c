package httpadapter

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundraiser/internal/adapter/memory"
	"fundraiser/internal/adapter/usecase"
	"fundraiser/internal/core/domain"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	denom := domain.Denomination{Decimals: 2}
	svc := usecase.NewFundraiserUseCase(memory.NewStore(), logger)
	return NewHandler(svc, NewHub(denom, logger), denom, logger)
}

func do(t *testing.T, h *Handler, method, path, account, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if account != "" {
		req.Header.Set(AccountHeader, account)
	}
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestCampaignFlow(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/v1/campaigns", "0xOwner", `{"uri":"https://www.google.com","required_amt":"10"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, uint64(1), decode[map[string]uint64](t, rec)["id"])

	rec = do(t, h, http.MethodPost, "/api/v1/campaigns/1/donations", "0xdonor", `{"value":"5"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c := decode[campaignResponse](t, rec)
	assert.Equal(t, uint64(500), c.CurrAmt)
	assert.Equal(t, "5.00", c.CurrDisplay)
	assert.Equal(t, "0xowner", c.Owner)

	rec = do(t, h, http.MethodPost, "/api/v1/campaigns/1/donations", "0xdonor", `{"value":"6"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/campaigns/1/withdrawals", "0xdonor", `{"amount":"2"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/campaigns/1/withdrawals", "0xowner", `{"amount":"2"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c = decode[campaignResponse](t, rec)
	assert.Equal(t, "8.00", c.RequiredDisplay)
	assert.Equal(t, "3.00", c.CurrDisplay)

	rec = do(t, h, http.MethodPost, "/api/v1/campaigns/1/end", "0xowner", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[campaignResponse](t, rec).Completed)

	rec = do(t, h, http.MethodPost, "/api/v1/campaigns/1/extend", "0xowner", `{"amount":"1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/accounts/0xowner", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	acc := decode[accountResponse](t, rec)
	assert.Equal(t, uint64(500), acc.Balance)
	assert.Equal(t, "5.00", acc.BalanceDisplay)
	assert.Equal(t, uint64(1), acc.Certificates)

	rec = do(t, h, http.MethodGet, "/api/v1/campaigns/last-id", "", "")
	assert.Equal(t, uint64(1), decode[map[string]uint64](t, rec)["last_token_id"])

	rec = do(t, h, http.MethodGet, "/api/v1/events?after=1&limit=10", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[[]eventResponse](t, rec)
	require.Len(t, events, 3)
	assert.Equal(t, "Donate", events[0].Kind)
	assert.Equal(t, "Withdraw", events[1].Kind)
	assert.Equal(t, "EndCampaign", events[2].Kind)
	assert.Equal(t, "3.00", events[2].AmountDisplay)
}

func TestRequestValidation(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name    string
		method  string
		path    string
		account string
		body    string
		want    int
	}{
		{name: "missing account", method: http.MethodPost, path: "/api/v1/campaigns", body: `{"uri":"u","required_amt":"1"}`, want: http.StatusUnauthorized},
		{name: "bad amount", method: http.MethodPost, path: "/api/v1/campaigns", account: "0xa", body: `{"uri":"u","required_amt":"1.001"}`, want: http.StatusBadRequest},
		{name: "bad json", method: http.MethodPost, path: "/api/v1/campaigns", account: "0xa", body: `{`, want: http.StatusBadRequest},
		{name: "bad id", method: http.MethodPost, path: "/api/v1/campaigns/x/end", account: "0xa", want: http.StatusBadRequest},
		{name: "unknown campaign", method: http.MethodPost, path: "/api/v1/campaigns/9/donations", account: "0xa", body: `{"value":"1"}`, want: http.StatusNotFound},
		{name: "existence checked before zero value", method: http.MethodPost, path: "/api/v1/campaigns/9/donations", account: "0xa", body: `{"value":"0"}`, want: http.StatusNotFound},
		{name: "unknown certificate", method: http.MethodGet, path: "/api/v1/tokens/9", want: http.StatusNotFound},
		{name: "bad events cursor", method: http.MethodGet, path: "/api/v1/events?after=-1", want: http.StatusBadRequest},
		{name: "foreign settings", method: http.MethodPut, path: "/api/v1/accounts/0xb/settings", account: "0xa", body: `{"accepts_funds":false}`, want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.account, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestGetUnknownCampaign(t *testing.T) {
	h := newTestHandler(t)
	rec := do(t, h, http.MethodGet, "/api/v1/campaigns/5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	c := decode[campaignResponse](t, rec)
	assert.False(t, c.Exists)
	assert.Equal(t, uint64(5), c.ID)
	assert.Zero(t, c.RequiredAmt)
}

func TestTransferAndRejectedPayout(t *testing.T) {
	h := newTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/v1/campaigns", "0xa", `{"uri":"u","required_amt":"10"}`).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/v1/campaigns/1/donations", "0xd", `{"value":"4"}`).Code)

	rec := do(t, h, http.MethodPost, "/api/v1/tokens/1/transfer", "0xa", `{"to":"0xB"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "0xb", decode[certificateResponse](t, rec).Owner)

	rec = do(t, h, http.MethodPut, "/api/v1/accounts/0xb/settings", "0xb", `{"accepts_funds":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decode[accountResponse](t, rec).AcceptsFunds)

	rec = do(t, h, http.MethodPost, "/api/v1/campaigns/1/end", "0xb", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/campaigns/1", "", "")
	assert.False(t, decode[campaignResponse](t, rec).Completed)

	rec = do(t, h, http.MethodGet, "/api/v1/escrow", "", "")
	assert.Equal(t, float64(400), decode[map[string]any](t, rec)["balance"])

	rec = do(t, h, http.MethodGet, "/api/v1/collection", "", "")
	assert.Equal(t, map[string]string{"name": "Fundraiser Collection", "symbol": "FRC"}, decode[map[string]string](t, rec))
}

func TestEventStream(t *testing.T) {
	h := newTestHandler(t)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	err = h.hub.Publish(context.Background(), []domain.Event{{
		Seq: 1, ID: "e-1", Kind: domain.EventDonate, CampaignID: 1, Actor: "0xd", Amount: 250,
	}})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got eventResponse
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, int64(1), got.Seq)
	assert.Equal(t, "Donate", got.Kind)
	assert.Equal(t, "2.50", got.AmountDisplay)
}
