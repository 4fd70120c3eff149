// Package portfolio composes exchange calls into enriched read views: open
// orders and account balances, each merged with the current market price.
// Every view re-fetches on every call; nothing is cached.
package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Bravilogy/bittrex-bot/internal/api"
)

// Balances worth under this are dust and dropped from the balances view.
const minAvailable = 0.00001

const openedLayout = "2006-01-02T15:04:05"

// Exchange is the slice of the API client the pipeline consumes.
type Exchange interface {
	GetOpenOrders(ctx context.Context, market string) ([]api.OpenOrder, error)
	GetBalances(ctx context.Context) ([]api.Balance, error)
	GetOrderHistory(ctx context.Context, market string) ([]api.HistoricOrder, error)
	GetTicker(ctx context.Context, market string) (*api.Ticker, error)
}

// EnrichedOrder is an open order with the market's last trade price merged in
// and Opened rewritten as a relative time. Price shadows the order's own
// spent-so-far field, matching the shape the views have always served.
type EnrichedOrder struct {
	api.OpenOrder
	Price float64 `json:"Price"`
}

// EnrichedBalance is a balance with the BTC market's last trade price and the
// most recent order for that market merged in.
type EnrichedBalance struct {
	api.Balance
	CurrentPrice float64            `json:"CurrentPrice"`
	LastOrder    *api.HistoricOrder `json:"LastOrder,omitempty"`
}

// Service computes the enriched views.
type Service struct {
	exchange Exchange
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewService creates a Service over the given exchange client.
func NewService(exchange Exchange, logger logrus.FieldLogger) *Service {
	return &Service{
		exchange: exchange,
		logger:   logger,
		now:      time.Now,
	}
}

// OpenOrdersWithPrices fetches all open orders and, concurrently per order,
// the ticker for the order's market. Output order matches the open-orders
// list. The first ticker failure cancels the remaining lookups and fails the
// whole view; no partial result is returned.
func (s *Service) OpenOrdersWithPrices(ctx context.Context) ([]EnrichedOrder, error) {
	orders, err := s.exchange.GetOpenOrders(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open orders: %w", err)
	}

	enriched := make([]EnrichedOrder, len(orders))
	g, ctx := errgroup.WithContext(ctx)
	for i, order := range orders {
		i, order := i, order
		g.Go(func() error {
			ticker, err := s.exchange.GetTicker(ctx, order.Exchange)
			if err != nil {
				return fmt.Errorf("failed to fetch ticker for %s: %w", order.Exchange, err)
			}
			order.Opened = s.humanizeOpened(order.Opened)
			enriched[i] = EnrichedOrder{OpenOrder: order, Price: ticker.Last}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return enriched, nil
}

// BalancesWithPrices fetches all balances, drops BTC itself and dust
// positions, and enriches each remaining balance with the most recent order
// and the current price of its BTC market. Rows are enriched concurrently;
// the first failure fails the whole view.
func (s *Service) BalancesWithPrices(ctx context.Context) ([]EnrichedBalance, error) {
	balances, err := s.exchange.GetBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balances: %w", err)
	}

	var tradable []api.Balance
	for _, balance := range balances {
		if balance.Currency == "BTC" || balance.Available <= minAvailable {
			continue
		}
		tradable = append(tradable, balance)
	}

	enriched := make([]EnrichedBalance, len(tradable))
	g, ctx := errgroup.WithContext(ctx)
	for i, balance := range tradable {
		i, balance := i, balance
		g.Go(func() error {
			market := "BTC-" + balance.Currency

			history, err := s.exchange.GetOrderHistory(ctx, market)
			if err != nil {
				return fmt.Errorf("failed to fetch order history for %s: %w", market, err)
			}
			ticker, err := s.exchange.GetTicker(ctx, market)
			if err != nil {
				return fmt.Errorf("failed to fetch ticker for %s: %w", market, err)
			}

			row := EnrichedBalance{Balance: balance, CurrentPrice: ticker.Last}
			if len(history) > 0 {
				row.LastOrder = &history[0]
			}
			enriched[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return enriched, nil
}

// humanizeOpened rewrites an exchange timestamp as a relative time. The
// exchange reports zone-less UTC timestamps; unparseable values pass through
// untouched.
func (s *Service) humanizeOpened(opened string) string {
	t, err := time.Parse(openedLayout, opened)
	if err != nil {
		if s.logger != nil {
			s.logger.WithField("opened", opened).Warn("could not parse order open time")
		}
		return opened
	}
	return humanize.RelTime(t, s.now(), "ago", "from now")
}
