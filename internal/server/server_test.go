package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bravilogy/bittrex-bot/internal/api"
	"github.com/Bravilogy/bittrex-bot/internal/portfolio"
)

type fakePortfolio struct {
	openOrders func(ctx context.Context) ([]portfolio.EnrichedOrder, error)
	balances   func(ctx context.Context) ([]portfolio.EnrichedBalance, error)
}

func (f *fakePortfolio) OpenOrdersWithPrices(ctx context.Context) ([]portfolio.EnrichedOrder, error) {
	return f.openOrders(ctx)
}

func (f *fakePortfolio) BalancesWithPrices(ctx context.Context) ([]portfolio.EnrichedBalance, error) {
	return f.balances(ctx)
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func doGet(t *testing.T, p Portfolio, path string) *httptest.ResponseRecorder {
	t.Helper()
	srv := New(":0", p, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestOpenOrdersRouteWrapsDataEnvelope(t *testing.T) {
	p := &fakePortfolio{
		openOrders: func(ctx context.Context) ([]portfolio.EnrichedOrder, error) {
			return []portfolio.EnrichedOrder{
				{
					OpenOrder: api.OpenOrder{OrderUUID: "order-1", Exchange: "BTC-ETH", Opened: "3 days ago"},
					Price:     0.05,
				},
			}, nil
		},
	}

	rec := doGet(t, p, "/api/open-orders")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "order-1", body.Data[0]["OrderUuid"])
	assert.Equal(t, 0.05, body.Data[0]["Price"])
	assert.Equal(t, "3 days ago", body.Data[0]["Opened"])
}

func TestBalancesRouteWrapsDataEnvelope(t *testing.T) {
	p := &fakePortfolio{
		balances: func(ctx context.Context) ([]portfolio.EnrichedBalance, error) {
			return []portfolio.EnrichedBalance{
				{
					Balance:      api.Balance{Currency: "ETH", Available: 0.5},
					CurrentPrice: 0.05,
				},
			}, nil
		},
	}

	rec := doGet(t, p, "/api/balances")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "ETH", body.Data[0]["Currency"])
	assert.Equal(t, 0.05, body.Data[0]["CurrentPrice"])
}

func TestPipelineFailureAnswersBadGateway(t *testing.T) {
	p := &fakePortfolio{
		openOrders: func(ctx context.Context) ([]portfolio.EnrichedOrder, error) {
			return nil, errors.New("failed to fetch ticker for BTC-ETH: connection reset")
		},
	}

	rec := doGet(t, p, "/api/open-orders")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "connection reset")
}

func TestHealthz(t *testing.T) {
	rec := doGet(t, &fakePortfolio{}, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
