package api

import (
	"encoding/json"
	"fmt"
)

// response is the envelope every v1.1 endpoint wraps its payload in.
type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// ExchangeError is a logical failure reported by the exchange itself — an
// HTTP-level success carrying {"success": false}. Transport errors are
// returned as ordinary wrapped errors instead.
type ExchangeError struct {
	Message string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("exchange reported failure: %s", e.Message)
}

// Payload is the raw outcome of a request: the body as JSON when it parses,
// or the body verbatim when it does not. Exactly one of the two is set.
type Payload struct {
	JSON json.RawMessage
	Text string
}

// IsJSON reports whether the body parsed as JSON.
func (p *Payload) IsJSON() bool {
	return p.JSON != nil
}

// Market describes one listed market pair.
type Market struct {
	MarketCurrency string  `json:"MarketCurrency"`
	BaseCurrency   string  `json:"BaseCurrency"`
	MarketName     string  `json:"MarketName"`
	MinTradeSize   float64 `json:"MinTradeSize"`
	IsActive       bool    `json:"IsActive"`
	Created        string  `json:"Created"`
}

// Currency describes one supported currency.
type Currency struct {
	Currency        string  `json:"Currency"`
	CurrencyLong    string  `json:"CurrencyLong"`
	MinConfirmation int     `json:"MinConfirmation"`
	TxFee           float64 `json:"TxFee"`
	IsActive        bool    `json:"IsActive"`
	CoinType        string  `json:"CoinType"`
}

// Ticker carries the current quote for a market. The aggregation views only
// consume Last.
type Ticker struct {
	Bid  float64 `json:"Bid"`
	Ask  float64 `json:"Ask"`
	Last float64 `json:"Last"`
}

// MarketSummary is a 24h rollup for one market.
type MarketSummary struct {
	MarketName     string  `json:"MarketName"`
	High           float64 `json:"High"`
	Low            float64 `json:"Low"`
	Volume         float64 `json:"Volume"`
	Last           float64 `json:"Last"`
	BaseVolume     float64 `json:"BaseVolume"`
	TimeStamp      string  `json:"TimeStamp"`
	Bid            float64 `json:"Bid"`
	Ask            float64 `json:"Ask"`
	OpenBuyOrders  int     `json:"OpenBuyOrders"`
	OpenSellOrders int     `json:"OpenSellOrders"`
	PrevDay        float64 `json:"PrevDay"`
	Created        string  `json:"Created"`
}

// OrderBookEntry is one price level in an order book.
type OrderBookEntry struct {
	Quantity float64 `json:"Quantity"`
	Rate     float64 `json:"Rate"`
}

// OrderBook holds both sides of a market's book. One side is empty when the
// book was requested for a single side.
type OrderBook struct {
	Buy  []OrderBookEntry `json:"buy"`
	Sell []OrderBookEntry `json:"sell"`
}

// TradeEvent is one fill from a market's public trade history.
type TradeEvent struct {
	ID        int64   `json:"Id"`
	TimeStamp string  `json:"TimeStamp"`
	Quantity  float64 `json:"Quantity"`
	Price     float64 `json:"Price"`
	Total     float64 `json:"Total"`
	FillType  string  `json:"FillType"`
	OrderType string  `json:"OrderType"`
}

// OpenOrder is one row from /market/getopenorders.
type OpenOrder struct {
	UUID              *string  `json:"Uuid"`
	OrderUUID         string   `json:"OrderUuid"`
	Exchange          string   `json:"Exchange"`
	OrderType         string   `json:"OrderType"`
	Quantity          float64  `json:"Quantity"`
	QuantityRemaining float64  `json:"QuantityRemaining"`
	Limit             float64  `json:"Limit"`
	CommissionPaid    float64  `json:"CommissionPaid"`
	Price             float64  `json:"Price"`
	PricePerUnit      *float64 `json:"PricePerUnit"`
	Opened            string   `json:"Opened"`
	Closed            *string  `json:"Closed"`
	CancelInitiated   bool     `json:"CancelInitiated"`
	ImmediateOrCancel bool     `json:"ImmediateOrCancel"`
	IsConditional     bool     `json:"IsConditional"`
	Condition         string   `json:"Condition"`
	ConditionTarget   *float64 `json:"ConditionTarget"`
}

// Balance is one row from /account/getbalances.
type Balance struct {
	Currency      string  `json:"Currency"`
	Balance       float64 `json:"Balance"`
	Available     float64 `json:"Available"`
	Pending       float64 `json:"Pending"`
	CryptoAddress string  `json:"CryptoAddress"`
	Requested     bool    `json:"Requested"`
	UUID          *string `json:"Uuid"`
}

// DepositAddress is the result of /account/getdepositaddress.
type DepositAddress struct {
	Currency string `json:"Currency"`
	Address  string `json:"Address"`
}

// OrderReceipt acknowledges an order placement or withdrawal request.
type OrderReceipt struct {
	UUID string `json:"uuid"`
}

// Order is the full record returned by /account/getorder.
type Order struct {
	AccountID                  *string  `json:"AccountId"`
	OrderUUID                  string   `json:"OrderUuid"`
	Exchange                   string   `json:"Exchange"`
	Type                       string   `json:"Type"`
	Quantity                   float64  `json:"Quantity"`
	QuantityRemaining          float64  `json:"QuantityRemaining"`
	Limit                      float64  `json:"Limit"`
	Reserved                   float64  `json:"Reserved"`
	ReserveRemaining           float64  `json:"ReserveRemaining"`
	CommissionReserved         float64  `json:"CommissionReserved"`
	CommissionReserveRemaining float64  `json:"CommissionReserveRemaining"`
	CommissionPaid             float64  `json:"CommissionPaid"`
	Price                      float64  `json:"Price"`
	PricePerUnit               *float64 `json:"PricePerUnit"`
	Opened                     string   `json:"Opened"`
	Closed                     *string  `json:"Closed"`
	IsOpen                     bool     `json:"IsOpen"`
	Sentinel                   string   `json:"Sentinel"`
	CancelInitiated            bool     `json:"CancelInitiated"`
	ImmediateOrCancel          bool     `json:"ImmediateOrCancel"`
	IsConditional              bool     `json:"IsConditional"`
	Condition                  string   `json:"Condition"`
	ConditionTarget            *float64 `json:"ConditionTarget"`
}

// HistoricOrder is one row from /account/getorderhistory, most recent first.
type HistoricOrder struct {
	OrderUUID         string   `json:"OrderUuid"`
	Exchange          string   `json:"Exchange"`
	TimeStamp         string   `json:"TimeStamp"`
	OrderType         string   `json:"OrderType"`
	Limit             float64  `json:"Limit"`
	Quantity          float64  `json:"Quantity"`
	QuantityRemaining float64  `json:"QuantityRemaining"`
	Commission        float64  `json:"Commission"`
	Price             float64  `json:"Price"`
	PricePerUnit      *float64 `json:"PricePerUnit"`
	IsConditional     bool     `json:"IsConditional"`
	Condition         string   `json:"Condition"`
	ConditionTarget   *float64 `json:"ConditionTarget"`
	ImmediateOrCancel bool     `json:"ImmediateOrCancel"`
}

// Transaction is one row from the withdrawal or deposit history.
type Transaction struct {
	PaymentUUID    string  `json:"PaymentUuid"`
	Currency       string  `json:"Currency"`
	Amount         float64 `json:"Amount"`
	Address        string  `json:"Address"`
	Opened         string  `json:"Opened"`
	Authorized     bool    `json:"Authorized"`
	PendingPayment bool    `json:"PendingPayment"`
	TxCost         float64 `json:"TxCost"`
	TxID           string  `json:"TxId"`
	Canceled       bool    `json:"Canceled"`
	InvalidAddress bool    `json:"InvalidAddress"`
}
