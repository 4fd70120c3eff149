package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsEncodePreservesInsertionOrder(t *testing.T) {
	params := Params{}.
		Add("zebra", "1").
		Add("apple", "2").
		Add("nonce", "1700000000")

	// url.Values would sort these; the wire format must not.
	assert.Equal(t, "zebra=1&apple=2&nonce=1700000000", params.Encode())
}

func TestParamsEncodeEscapesValues(t *testing.T) {
	params := Params{}.Add("address", "1A1zP1 eP+5Q").Add("memo", "a&b=c")
	assert.Equal(t, "address=1A1zP1+eP%2B5Q&memo=a%26b%3Dc", params.Encode())
}

func TestParamsEncodeEmpty(t *testing.T) {
	assert.Equal(t, "", Params{}.Encode())
	assert.Equal(t, "", Params(nil).Encode())
}

func TestParamsAddDoesNotDeduplicate(t *testing.T) {
	params := Params{}.Add("market", "BTC-ETH").Add("market", "BTC-LTC")
	assert.Equal(t, "market=BTC-ETH&market=BTC-LTC", params.Encode())
}
