package portfolio

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bravilogy/bittrex-bot/internal/api"
)

type fakeExchange struct {
	openOrders   func(ctx context.Context, market string) ([]api.OpenOrder, error)
	balances     func(ctx context.Context) ([]api.Balance, error)
	orderHistory func(ctx context.Context, market string) ([]api.HistoricOrder, error)
	ticker       func(ctx context.Context, market string) (*api.Ticker, error)
}

func (f *fakeExchange) GetOpenOrders(ctx context.Context, market string) ([]api.OpenOrder, error) {
	return f.openOrders(ctx, market)
}

func (f *fakeExchange) GetBalances(ctx context.Context) ([]api.Balance, error) {
	return f.balances(ctx)
}

func (f *fakeExchange) GetOrderHistory(ctx context.Context, market string) ([]api.HistoricOrder, error) {
	return f.orderHistory(ctx, market)
}

func (f *fakeExchange) GetTicker(ctx context.Context, market string) (*api.Ticker, error) {
	return f.ticker(ctx, market)
}

func newTestService(exchange Exchange) *Service {
	s := NewService(exchange, nil)
	// Three days after the fixture orders were opened.
	s.now = func() time.Time {
		return time.Date(2017, 12, 4, 10, 0, 0, 0, time.UTC)
	}
	return s
}

func TestOpenOrdersWithPricesMergesTickerAndRelativeTime(t *testing.T) {
	tickers := map[string]float64{
		"BTC-ETH": 0.05,
		"BTC-LTC": 0.002,
	}
	exchange := &fakeExchange{
		openOrders: func(ctx context.Context, market string) ([]api.OpenOrder, error) {
			assert.Empty(t, market, "open orders must be fetched unfiltered")
			return []api.OpenOrder{
				{OrderUUID: "order-1", Exchange: "BTC-ETH", Quantity: 2, Opened: "2017-12-01T10:00:00.00"},
				{OrderUUID: "order-2", Exchange: "BTC-LTC", Quantity: 5, Opened: "2017-12-01T10:00:00.00"},
			}, nil
		},
		ticker: func(ctx context.Context, market string) (*api.Ticker, error) {
			last, ok := tickers[market]
			if !ok {
				return nil, errors.New("unexpected market " + market)
			}
			return &api.Ticker{Last: last}, nil
		},
	}

	orders, err := newTestService(exchange).OpenOrdersWithPrices(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)

	// Output order matches the open-orders list regardless of which ticker
	// lookup finished first.
	assert.Equal(t, "order-1", orders[0].OrderUUID)
	assert.Equal(t, 0.05, orders[0].Price)
	assert.Equal(t, "order-2", orders[1].OrderUUID)
	assert.Equal(t, 0.002, orders[1].Price)

	for _, order := range orders {
		assert.Equal(t, "3 days ago", order.Opened)
		assert.NotZero(t, order.Quantity, "original fields survive enrichment")
	}
}

func TestOpenOrdersWithPricesFailsWholeViewOnSingleTickerFailure(t *testing.T) {
	var tickerCalls atomic.Int32
	exchange := &fakeExchange{
		openOrders: func(ctx context.Context, market string) ([]api.OpenOrder, error) {
			return []api.OpenOrder{
				{OrderUUID: "order-1", Exchange: "BTC-ETH"},
				{OrderUUID: "order-2", Exchange: "BTC-LTC"},
			}, nil
		},
		ticker: func(ctx context.Context, market string) (*api.Ticker, error) {
			tickerCalls.Add(1)
			if market == "BTC-LTC" {
				return nil, errors.New("connection reset")
			}
			return &api.Ticker{Last: 0.05}, nil
		},
	}

	orders, err := newTestService(exchange).OpenOrdersWithPrices(context.Background())
	require.Error(t, err)
	assert.Nil(t, orders, "no partial result on failure")
	assert.Contains(t, err.Error(), "BTC-LTC")
	assert.LessOrEqual(t, tickerCalls.Load(), int32(2), "no retries")
}

func TestOpenOrdersWithPricesEmptyList(t *testing.T) {
	exchange := &fakeExchange{
		openOrders: func(ctx context.Context, market string) ([]api.OpenOrder, error) {
			return nil, nil
		},
	}

	orders, err := newTestService(exchange).OpenOrdersWithPrices(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestBalancesWithPricesFiltersAndEnriches(t *testing.T) {
	exchange := &fakeExchange{
		balances: func(ctx context.Context) ([]api.Balance, error) {
			return []api.Balance{
				{Currency: "BTC", Available: 1},
				{Currency: "ETH", Available: 0.5, Balance: 0.7},
				{Currency: "XRP", Available: 0.000001},
			}, nil
		},
		orderHistory: func(ctx context.Context, market string) ([]api.HistoricOrder, error) {
			assert.Equal(t, "BTC-ETH", market)
			return []api.HistoricOrder{
				{OrderUUID: "recent", Exchange: market},
				{OrderUUID: "older", Exchange: market},
			}, nil
		},
		ticker: func(ctx context.Context, market string) (*api.Ticker, error) {
			assert.Equal(t, "BTC-ETH", market)
			return &api.Ticker{Last: 0.05}, nil
		},
	}

	balances, err := newTestService(exchange).BalancesWithPrices(context.Background())
	require.NoError(t, err)

	// BTC is excluded by currency, XRP by the dust threshold.
	require.Len(t, balances, 1)
	assert.Equal(t, "ETH", balances[0].Currency)
	assert.Equal(t, 0.7, balances[0].Balance.Balance)
	assert.Equal(t, 0.05, balances[0].CurrentPrice)
	require.NotNil(t, balances[0].LastOrder)
	assert.Equal(t, "recent", balances[0].LastOrder.OrderUUID)
}

func TestBalancesWithPricesNoHistory(t *testing.T) {
	exchange := &fakeExchange{
		balances: func(ctx context.Context) ([]api.Balance, error) {
			return []api.Balance{{Currency: "ETH", Available: 0.5}}, nil
		},
		orderHistory: func(ctx context.Context, market string) ([]api.HistoricOrder, error) {
			return nil, nil
		},
		ticker: func(ctx context.Context, market string) (*api.Ticker, error) {
			return &api.Ticker{Last: 0.05}, nil
		},
	}

	balances, err := newTestService(exchange).BalancesWithPrices(context.Background())
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Nil(t, balances[0].LastOrder)
}

func TestBalancesWithPricesFailsWholeViewOnRowFailure(t *testing.T) {
	exchange := &fakeExchange{
		balances: func(ctx context.Context) ([]api.Balance, error) {
			return []api.Balance{
				{Currency: "ETH", Available: 0.5},
				{Currency: "LTC", Available: 2},
			}, nil
		},
		orderHistory: func(ctx context.Context, market string) ([]api.HistoricOrder, error) {
			if market == "BTC-LTC" {
				return nil, errors.New("timeout")
			}
			return nil, nil
		},
		ticker: func(ctx context.Context, market string) (*api.Ticker, error) {
			return &api.Ticker{Last: 0.05}, nil
		},
	}

	balances, err := newTestService(exchange).BalancesWithPrices(context.Background())
	require.Error(t, err)
	assert.Nil(t, balances)
}

func TestHumanizeOpenedLeavesUnparseableValues(t *testing.T) {
	s := newTestService(&fakeExchange{})
	assert.Equal(t, "not-a-timestamp", s.humanizeOpened("not-a-timestamp"))
}
