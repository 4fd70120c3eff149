package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/Bravilogy/bittrex-bot/internal/api"
	"github.com/Bravilogy/bittrex-bot/internal/config"
	"github.com/Bravilogy/bittrex-bot/internal/monitor"
	"github.com/Bravilogy/bittrex-bot/internal/portfolio"
	"github.com/Bravilogy/bittrex-bot/internal/server"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	app := &cli.App{
		Name:    "bittrex",
		Usage:   "Bittrex portfolio service and exchange CLI",
		Version: fmt.Sprintf("%s (build: %s, commit: %s)", Version, BuildTime, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file path",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "log level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "server",
				Usage:  "run the HTTP facade",
				Action: cmdServer,
			},
			{
				Name:   "portfolio",
				Usage:  "print both enriched portfolio views",
				Action: cmdPortfolio,
			},
			{
				Name:   "markets",
				Usage:  "list all markets",
				Action: cmdMarkets,
			},
			{
				Name:   "currencies",
				Usage:  "list all supported currencies",
				Action: cmdCurrencies,
			},
			{
				Name:   "ticker",
				Usage:  "show the current quote for a market",
				Flags:  []cli.Flag{marketFlag(true)},
				Action: cmdTicker,
			},
			{
				Name:   "summary",
				Usage:  "show 24h market summaries (all markets, or one with --market)",
				Flags:  []cli.Flag{marketFlag(false)},
				Action: cmdSummary,
			},
			{
				Name:  "orderbook",
				Usage: "show a market's order book",
				Flags: []cli.Flag{
					marketFlag(true),
					&cli.StringFlag{
						Name:  "type",
						Value: "both",
						Usage: "book side (buy, sell, both)",
					},
					&cli.IntFlag{
						Name:  "depth",
						Value: 20,
						Usage: "book depth",
					},
				},
				Action: cmdOrderBook,
			},
			{
				Name:   "market-history",
				Usage:  "show recent fills for a market",
				Flags:  []cli.Flag{marketFlag(true)},
				Action: cmdMarketHistory,
			},
			{
				Name:   "balances",
				Usage:  "show account balances",
				Action: cmdBalances,
			},
			{
				Name:   "balance",
				Usage:  "show the balance for one currency",
				Flags:  []cli.Flag{currencyFlag(true)},
				Action: cmdBalance,
			},
			{
				Name:   "deposit-address",
				Usage:  "show the deposit address for a currency",
				Flags:  []cli.Flag{currencyFlag(true)},
				Action: cmdDepositAddress,
			},
			{
				Name:  "withdraw",
				Usage: "request a withdrawal",
				Flags: []cli.Flag{
					currencyFlag(true),
					&cli.Float64Flag{
						Name:     "quantity",
						Aliases:  []string{"q"},
						Usage:    "amount to withdraw",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "address",
						Usage:    "destination address",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "payment-id",
						Usage: "optional payment id",
					},
				},
				Action: cmdWithdraw,
			},
			{
				Name:   "withdrawal-history",
				Usage:  "show past withdrawals",
				Flags:  []cli.Flag{currencyFlag(false)},
				Action: cmdWithdrawalHistory,
			},
			{
				Name:   "deposit-history",
				Usage:  "show past deposits",
				Flags:  []cli.Flag{currencyFlag(false)},
				Action: cmdDepositHistory,
			},
			{
				Name:   "open-orders",
				Usage:  "list open orders",
				Flags:  []cli.Flag{marketFlag(false)},
				Action: cmdOpenOrders,
			},
			{
				Name:   "order",
				Usage:  "show a single order",
				Flags:  []cli.Flag{uuidFlag()},
				Action: cmdOrder,
			},
			{
				Name:   "order-history",
				Usage:  "show settled orders",
				Flags:  []cli.Flag{marketFlag(false)},
				Action: cmdOrderHistory,
			},
			{
				Name:   "buy",
				Usage:  "place a buy limit order",
				Flags:  limitOrderFlags(),
				Action: cmdBuyLimit,
			},
			{
				Name:   "sell",
				Usage:  "place a sell limit order",
				Flags:  limitOrderFlags(),
				Action: cmdSellLimit,
			},
			{
				Name:   "cancel",
				Usage:  "cancel an open order",
				Flags:  []cli.Flag{uuidFlag()},
				Action: cmdCancel,
			},
		},
		Before: func(c *cli.Context) error {
			// .env is best-effort; real env vars win either way.
			_ = godotenv.Load()

			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if c.String("log-level") != "" {
				cfg.Log.Level = c.String("log-level")
			}

			c.App.Metadata["config"] = cfg
			c.App.Metadata["logger"] = monitor.NewLogger(cfg.Log.Level, cfg.Log.Output)
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func marketFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "market",
		Aliases:  []string{"m"},
		Usage:    "market name, e.g. BTC-ETH",
		Required: required,
	}
}

func currencyFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "currency",
		Usage:    "currency symbol, e.g. ETH",
		Required: required,
	}
}

func uuidFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "uuid",
		Usage:    "order uuid",
		Required: true,
	}
}

func limitOrderFlags() []cli.Flag {
	return []cli.Flag{
		marketFlag(true),
		&cli.Float64Flag{
			Name:     "quantity",
			Aliases:  []string{"q"},
			Usage:    "order quantity",
			Required: true,
		},
		&cli.Float64Flag{
			Name:     "rate",
			Aliases:  []string{"r"},
			Usage:    "limit rate",
			Required: true,
		},
	}
}

func getConfig(c *cli.Context) *config.Config {
	return c.App.Metadata["config"].(*config.Config)
}

func getLogger(c *cli.Context) *monitor.Logger {
	return c.App.Metadata["logger"].(*monitor.Logger)
}

func getClient(c *cli.Context) *api.Client {
	cfg := getConfig(c)
	return api.New(
		cfg.Bittrex.APIKey,
		cfg.Bittrex.APISecret,
		api.WithHost(cfg.Bittrex.APIHost),
		api.WithVersion(cfg.Bittrex.APIVersion),
		api.WithLogger(getLogger(c)),
	)
}

func printJSON(data interface{}) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

func cmdServer(c *cli.Context) error {
	cfg := getConfig(c)
	logger := getLogger(c)

	service := portfolio.NewService(getClient(c), logger)
	srv := server.New(cfg.Server.Addr, service, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stopCh:
		logger.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func cmdPortfolio(c *cli.Context) error {
	service := portfolio.NewService(getClient(c), getLogger(c))

	orders, err := service.OpenOrdersWithPrices(c.Context)
	if err != nil {
		return fmt.Errorf("failed to compute open orders view: %w", err)
	}
	fmt.Println("Open orders:")
	printJSON(orders)

	balances, err := service.BalancesWithPrices(c.Context)
	if err != nil {
		return fmt.Errorf("failed to compute balances view: %w", err)
	}
	fmt.Println("Balances:")
	printJSON(balances)
	return nil
}

func cmdMarkets(c *cli.Context) error {
	markets, err := getClient(c).GetMarkets(c.Context)
	if err != nil {
		return fmt.Errorf("failed to get markets: %w", err)
	}
	printJSON(markets)
	return nil
}

func cmdCurrencies(c *cli.Context) error {
	currencies, err := getClient(c).GetCurrencies(c.Context)
	if err != nil {
		return fmt.Errorf("failed to get currencies: %w", err)
	}
	printJSON(currencies)
	return nil
}

func cmdTicker(c *cli.Context) error {
	ticker, err := getClient(c).GetTicker(c.Context, c.String("market"))
	if err != nil {
		return fmt.Errorf("failed to get ticker: %w", err)
	}
	printJSON(ticker)
	return nil
}

func cmdSummary(c *cli.Context) error {
	client := getClient(c)
	if market := c.String("market"); market != "" {
		summary, err := client.GetMarketSummary(c.Context, market)
		if err != nil {
			return fmt.Errorf("failed to get market summary: %w", err)
		}
		printJSON(summary)
		return nil
	}
	summaries, err := client.GetMarketSummaries(c.Context)
	if err != nil {
		return fmt.Errorf("failed to get market summaries: %w", err)
	}
	printJSON(summaries)
	return nil
}

func cmdOrderBook(c *cli.Context) error {
	book, err := getClient(c).GetOrderBook(c.Context, c.String("market"), c.String("type"), c.Int("depth"))
	if err != nil {
		return fmt.Errorf("failed to get order book: %w", err)
	}
	printJSON(book)
	return nil
}

func cmdMarketHistory(c *cli.Context) error {
	events, err := getClient(c).GetMarketHistory(c.Context, c.String("market"))
	if err != nil {
		return fmt.Errorf("failed to get market history: %w", err)
	}
	printJSON(events)
	return nil
}

func cmdBalances(c *cli.Context) error {
	balances, err := getClient(c).GetBalances(c.Context)
	if err != nil {
		return fmt.Errorf("failed to get balances: %w", err)
	}
	printJSON(balances)
	return nil
}

func cmdBalance(c *cli.Context) error {
	balance, err := getClient(c).GetBalance(c.Context, c.String("currency"))
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}
	printJSON(balance)
	return nil
}

func cmdDepositAddress(c *cli.Context) error {
	address, err := getClient(c).GetDepositAddress(c.Context, c.String("currency"))
	if err != nil {
		return fmt.Errorf("failed to get deposit address: %w", err)
	}
	printJSON(address)
	return nil
}

func cmdWithdraw(c *cli.Context) error {
	receipt, err := getClient(c).Withdraw(c.Context, c.String("currency"), c.Float64("quantity"), c.String("address"), c.String("payment-id"))
	if err != nil {
		return fmt.Errorf("failed to request withdrawal: %w", err)
	}
	printJSON(receipt)
	return nil
}

func cmdWithdrawalHistory(c *cli.Context) error {
	transactions, err := getClient(c).GetWithdrawalHistory(c.Context, c.String("currency"))
	if err != nil {
		return fmt.Errorf("failed to get withdrawal history: %w", err)
	}
	printJSON(transactions)
	return nil
}

func cmdDepositHistory(c *cli.Context) error {
	transactions, err := getClient(c).GetDepositHistory(c.Context, c.String("currency"))
	if err != nil {
		return fmt.Errorf("failed to get deposit history: %w", err)
	}
	printJSON(transactions)
	return nil
}

func cmdOpenOrders(c *cli.Context) error {
	orders, err := getClient(c).GetOpenOrders(c.Context, c.String("market"))
	if err != nil {
		return fmt.Errorf("failed to get open orders: %w", err)
	}
	printJSON(orders)
	return nil
}

func cmdOrder(c *cli.Context) error {
	order, err := getClient(c).GetOrder(c.Context, c.String("uuid"))
	if err != nil {
		return fmt.Errorf("failed to get order: %w", err)
	}
	printJSON(order)
	return nil
}

func cmdOrderHistory(c *cli.Context) error {
	orders, err := getClient(c).GetOrderHistory(c.Context, c.String("market"))
	if err != nil {
		return fmt.Errorf("failed to get order history: %w", err)
	}
	printJSON(orders)
	return nil
}

func cmdBuyLimit(c *cli.Context) error {
	receipt, err := getClient(c).BuyLimit(c.Context, c.String("market"), c.Float64("quantity"), c.Float64("rate"))
	if err != nil {
		return fmt.Errorf("failed to place buy limit order: %w", err)
	}
	printJSON(receipt)
	return nil
}

func cmdSellLimit(c *cli.Context) error {
	receipt, err := getClient(c).SellLimit(c.Context, c.String("market"), c.Float64("quantity"), c.Float64("rate"))
	if err != nil {
		return fmt.Errorf("failed to place sell limit order: %w", err)
	}
	printJSON(receipt)
	return nil
}

func cmdCancel(c *cli.Context) error {
	if err := getClient(c).CancelOrder(c.Context, c.String("uuid")); err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	fmt.Println("Order canceled")
	return nil
}
