package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultProtocol = "https"
	defaultHost     = "bittrex.com"
	defaultVersion  = "v1.1"
)

// Public endpoints
const (
	publicGetMarkets         = "/public/getmarkets"
	publicGetCurrencies      = "/public/getcurrencies"
	publicGetTicker          = "/public/getticker"
	publicGetMarketSummaries = "/public/getmarketsummaries"
	publicGetMarketSummary   = "/public/getmarketsummary"
	publicGetOrderBook       = "/public/getorderbook"
	publicGetMarketHistory   = "/public/getmarkethistory"
)

// Market endpoints
const (
	marketBuyLimit      = "/market/buylimit"
	marketSellLimit     = "/market/selllimit"
	marketCancel        = "/market/cancel"
	marketGetOpenOrders = "/market/getopenorders"
)

// Account endpoints
const (
	accountGetBalances          = "/account/getbalances"
	accountGetBalance           = "/account/getbalance"
	accountGetDepositAddress    = "/account/getdepositaddress"
	accountWithdraw             = "/account/withdraw"
	accountGetOrder             = "/account/getorder"
	accountGetOrderHistory      = "/account/getorderhistory"
	accountGetWithdrawalHistory = "/account/getwithdrawalhistory"
	accountGetDepositHistory    = "/account/getdeposithistory"
)

// Precondition errors. The messages are part of the client's contract and
// surface verbatim to callers.
var (
	ErrMarketKeyRequired     = errors.New("API key is required for market requests")
	ErrMarketSecretRequired  = errors.New("API secret is required for market requests")
	ErrAccountKeyRequired    = errors.New("API key is required for account requests")
	ErrAccountSecretRequired = errors.New("API secret is required for account requests")
	ErrMarketRequired        = errors.New("Market is required")
	ErrQuantityRequired      = errors.New("Quantity is required")
	ErrRateRequired          = errors.New("Rate is required")
	ErrUUIDRequired          = errors.New("UUID is required")
	ErrCurrencyRequired      = errors.New("Currency is required")
	ErrAddressRequired       = errors.New("Address is required")
)

// Client talks to the exchange's v1.1 REST API. Public operations work
// without credentials; market and account operations require both an API key
// and secret and are rejected before any I/O when either is missing.
//
// A Client is safe for concurrent use.
type Client struct {
	apiKey     string
	apiSecret  string
	protocol   string
	host       string
	version    string
	httpClient *http.Client
	logger     logrus.FieldLogger
	lastNonce  atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithHost overrides the API host.
func WithHost(host string) Option {
	return func(c *Client) { c.host = host }
}

// WithProtocol overrides the URL scheme. Mainly useful against local test
// servers; the real exchange is https only.
func WithProtocol(protocol string) Option {
	return func(c *Client) { c.protocol = protocol }
}

// WithVersion overrides the API version segment.
func WithVersion(version string) Option {
	return func(c *Client) { c.version = version }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger enables debug dumps of outgoing requests and their responses.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client. Empty credentials are allowed and restrict the client
// to the public tier.
func New(apiKey, apiSecret string, opts ...Option) *Client {
	c := &Client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		protocol:  defaultProtocol,
		host:      defaultHost,
		version:   defaultVersion,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) hasCredentials() bool {
	return c.apiKey != "" && c.apiSecret != ""
}

// LastNonce reports the most recently issued nonce. Diagnostic only — the
// exchange is what actually rejects reused or out-of-order nonces.
func (c *Client) LastNonce() int64 {
	return c.lastNonce.Load()
}

func (c *Client) nonce() int64 {
	n := Nonce()
	c.lastNonce.Store(n)
	return n
}

// buildURL assembles the full request URL, appending nonce and apikey when
// credentials are present. The returned string is exactly what gets signed
// and sent; nothing may touch the query after this point.
func (c *Client) buildURL(path string, params Params) string {
	if c.hasCredentials() {
		params = params.
			Add("nonce", strconv.FormatInt(c.nonce(), 10)).
			Add("apikey", c.apiKey)
	}
	u := c.protocol + "://" + c.host + "/api/" + c.version + path
	if query := params.Encode(); query != "" {
		u += "?" + query
	}
	return u
}

// DoRequest issues a single GET against the given endpoint path and returns
// the raw payload: parsed JSON when the body is valid JSON, the body verbatim
// otherwise. When credentials are present the request carries nonce and
// apikey query parameters and an apisign header over the complete URL.
// Transport failures are returned with the cause wrapped; the exchange's own
// success flag is not inspected at this layer.
func (c *Client) DoRequest(ctx context.Context, path string, params Params) (*Payload, error) {
	requestURL := c.buildURL(path, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.hasCredentials() {
		req.Header.Set("apisign", Sign(c.apiSecret, requestURL))
	}

	if c.logger != nil {
		c.logger.Debug(DebugRequest(req))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	if c.logger != nil {
		if info, derr := DebugResponse(resp); derr == nil {
			c.logger.Debug(info)
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if json.Valid(body) {
		return &Payload{JSON: body}, nil
	}
	return &Payload{Text: string(body)}, nil
}

// do runs a request and decodes the standard {success, message, result}
// envelope, unmarshalling result into the given value. A success:false
// envelope becomes an *ExchangeError.
func (c *Client) do(ctx context.Context, path string, params Params, result interface{}) error {
	payload, err := c.DoRequest(ctx, path, params)
	if err != nil {
		return err
	}
	if !payload.IsJSON() {
		return fmt.Errorf("unexpected non-JSON response: %s", payload.Text)
	}

	var envelope response
	if err := json.Unmarshal(payload.JSON, &envelope); err != nil {
		return fmt.Errorf("failed to decode response envelope: %w", err)
	}
	if !envelope.Success {
		return &ExchangeError{Message: envelope.Message}
	}
	if result != nil && len(envelope.Result) > 0 && string(envelope.Result) != "null" {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("failed to decode result: %w", err)
		}
	}
	return nil
}

func (c *Client) checkMarketCredentials() error {
	if c.apiKey == "" {
		return ErrMarketKeyRequired
	}
	if c.apiSecret == "" {
		return ErrMarketSecretRequired
	}
	return nil
}

func (c *Client) checkAccountCredentials() error {
	if c.apiKey == "" {
		return ErrAccountKeyRequired
	}
	if c.apiSecret == "" {
		return ErrAccountSecretRequired
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// GetMarkets lists all markets.
func (c *Client) GetMarkets(ctx context.Context) ([]Market, error) {
	var markets []Market
	if err := c.do(ctx, publicGetMarkets, nil, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}

// GetCurrencies lists all supported currencies.
func (c *Client) GetCurrencies(ctx context.Context) ([]Currency, error) {
	var currencies []Currency
	if err := c.do(ctx, publicGetCurrencies, nil, &currencies); err != nil {
		return nil, err
	}
	return currencies, nil
}

// GetTicker returns the current quote for a market.
func (c *Client) GetTicker(ctx context.Context, market string) (*Ticker, error) {
	if market == "" {
		return nil, ErrMarketRequired
	}
	var ticker Ticker
	if err := c.do(ctx, publicGetTicker, Params{}.Add("market", market), &ticker); err != nil {
		return nil, err
	}
	return &ticker, nil
}

// GetMarketSummaries returns 24h rollups for every market.
func (c *Client) GetMarketSummaries(ctx context.Context) ([]MarketSummary, error) {
	var summaries []MarketSummary
	if err := c.do(ctx, publicGetMarketSummaries, nil, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// GetMarketSummary returns the 24h rollup for one market. The exchange wraps
// the single summary in a one-element array.
func (c *Client) GetMarketSummary(ctx context.Context, market string) (*MarketSummary, error) {
	if market == "" {
		return nil, ErrMarketRequired
	}
	var summaries []MarketSummary
	if err := c.do(ctx, publicGetMarketSummary, Params{}.Add("market", market), &summaries); err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("no summary returned for market %s", market)
	}
	return &summaries[0], nil
}

// GetOrderBook returns a market's order book. bookType defaults to "both" and
// depth to 20 when left zero.
func (c *Client) GetOrderBook(ctx context.Context, market, bookType string, depth int) (*OrderBook, error) {
	if market == "" {
		return nil, ErrMarketRequired
	}
	if bookType == "" {
		bookType = "both"
	}
	if depth == 0 {
		depth = 20
	}
	params := Params{}.
		Add("market", market).
		Add("type", bookType).
		Add("depth", strconv.Itoa(depth))

	if bookType != "both" {
		// Single-sided requests return a bare entry array instead of the
		// two-sided object.
		var entries []OrderBookEntry
		if err := c.do(ctx, publicGetOrderBook, params, &entries); err != nil {
			return nil, err
		}
		book := &OrderBook{}
		if bookType == "buy" {
			book.Buy = entries
		} else {
			book.Sell = entries
		}
		return book, nil
	}

	var book OrderBook
	if err := c.do(ctx, publicGetOrderBook, params, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// GetMarketHistory returns recent fills for a market.
func (c *Client) GetMarketHistory(ctx context.Context, market string) ([]TradeEvent, error) {
	if market == "" {
		return nil, ErrMarketRequired
	}
	var events []TradeEvent
	if err := c.do(ctx, publicGetMarketHistory, Params{}.Add("market", market), &events); err != nil {
		return nil, err
	}
	return events, nil
}

// BuyLimit places a buy limit order.
func (c *Client) BuyLimit(ctx context.Context, market string, quantity, rate float64) (*OrderReceipt, error) {
	return c.placeLimit(ctx, marketBuyLimit, market, quantity, rate)
}

// SellLimit places a sell limit order.
func (c *Client) SellLimit(ctx context.Context, market string, quantity, rate float64) (*OrderReceipt, error) {
	return c.placeLimit(ctx, marketSellLimit, market, quantity, rate)
}

func (c *Client) placeLimit(ctx context.Context, path, market string, quantity, rate float64) (*OrderReceipt, error) {
	if err := c.checkMarketCredentials(); err != nil {
		return nil, err
	}
	if market == "" {
		return nil, ErrMarketRequired
	}
	if quantity == 0 {
		return nil, ErrQuantityRequired
	}
	if rate == 0 {
		return nil, ErrRateRequired
	}
	params := Params{}.
		Add("market", market).
		Add("quantity", formatFloat(quantity)).
		Add("rate", formatFloat(rate))

	var receipt OrderReceipt
	if err := c.do(ctx, path, params, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// CancelOrder cancels an open order by uuid.
func (c *Client) CancelOrder(ctx context.Context, uuid string) error {
	if err := c.checkMarketCredentials(); err != nil {
		return err
	}
	if uuid == "" {
		return ErrUUIDRequired
	}
	return c.do(ctx, marketCancel, Params{}.Add("uuid", uuid), nil)
}

// GetOpenOrders lists open orders, optionally filtered by market.
func (c *Client) GetOpenOrders(ctx context.Context, market string) ([]OpenOrder, error) {
	if err := c.checkMarketCredentials(); err != nil {
		return nil, err
	}
	var params Params
	if market != "" {
		params = params.Add("market", market)
	}
	var orders []OpenOrder
	if err := c.do(ctx, marketGetOpenOrders, params, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetBalances returns every balance on the account.
func (c *Client) GetBalances(ctx context.Context) ([]Balance, error) {
	if err := c.checkAccountCredentials(); err != nil {
		return nil, err
	}
	var balances []Balance
	if err := c.do(ctx, accountGetBalances, nil, &balances); err != nil {
		return nil, err
	}
	return balances, nil
}

// GetBalance returns the balance for one currency.
func (c *Client) GetBalance(ctx context.Context, currency string) (*Balance, error) {
	if err := c.checkAccountCredentials(); err != nil {
		return nil, err
	}
	if currency == "" {
		return nil, ErrCurrencyRequired
	}
	var balance Balance
	if err := c.do(ctx, accountGetBalance, Params{}.Add("currency", currency), &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

// GetDepositAddress returns (or generates) the deposit address for a currency.
func (c *Client) GetDepositAddress(ctx context.Context, currency string) (*DepositAddress, error) {
	if err := c.checkAccountCredentials(); err != nil {
		return nil, err
	}
	if currency == "" {
		return nil, ErrCurrencyRequired
	}
	var address DepositAddress
	if err := c.do(ctx, accountGetDepositAddress, Params{}.Add("currency", currency), &address); err != nil {
		return nil, err
	}
	return &address, nil
}

// Withdraw requests a withdrawal. paymentID is optional and only relevant for
// currencies that use one.
func (c *Client) Withdraw(ctx context.Context, currency string, quantity float64, address, paymentID string) (*OrderReceipt, error) {
	if err := c.checkAccountCredentials(); err != nil {
		return nil, err
	}
	if currency == "" {
		return nil, ErrCurrencyRequired
	}
	if quantity == 0 {
		return nil, ErrQuantityRequired
	}
	if address == "" {
		return nil, ErrAddressRequired
	}
	params := Params{}.
		Add("currency", currency).
		Add("quantity", formatFloat(quantity)).
		Add("address", address)
	if paymentID != "" {
		params = params.Add("paymentid", paymentID)
	}

	var receipt OrderReceipt
	if err := c.do(ctx, accountWithdraw, params, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// GetOrder returns a single order by uuid.
func (c *Client) GetOrder(ctx context.Context, uuid string) (*Order, error) {
	if err := c.checkAccountCredentials(); err != nil {
		return nil, err
	}
	if uuid == "" {
		return nil, ErrUUIDRequired
	}
	var order Order
	if err := c.do(ctx, accountGetOrder, Params{}.Add("uuid", uuid), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderHistory returns settled orders, most recent first, optionally
// filtered by market.
func (c *Client) GetOrderHistory(ctx context.Context, market string) ([]HistoricOrder, error) {
	if err := c.checkAccountCredentials(); err != nil {
		return nil, err
	}
	var params Params
	if market != "" {
		params = params.Add("market", market)
	}
	var orders []HistoricOrder
	if err := c.do(ctx, accountGetOrderHistory, params, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetWithdrawalHistory returns past withdrawals, optionally filtered by
// currency.
func (c *Client) GetWithdrawalHistory(ctx context.Context, currency string) ([]Transaction, error) {
	return c.transactionHistory(ctx, accountGetWithdrawalHistory, currency)
}

// GetDepositHistory returns past deposits, optionally filtered by currency.
func (c *Client) GetDepositHistory(ctx context.Context, currency string) ([]Transaction, error) {
	return c.transactionHistory(ctx, accountGetDepositHistory, currency)
}

func (c *Client) transactionHistory(ctx context.Context, path, currency string) ([]Transaction, error) {
	if err := c.checkAccountCredentials(); err != nil {
		return nil, err
	}
	var params Params
	if currency != "" {
		params = params.Add("currency", currency)
	}
	var transactions []Transaction
	if err := c.do(ctx, path, params, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}
