package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignKnownVectors(t *testing.T) {
	cases := []struct {
		name   string
		secret string
		url    string
		want   string
	}{
		{
			name:   "private url with nonce and apikey",
			secret: "0123456789abcdef",
			url:    "https://bittrex.com/api/v1.1/account/getbalances?nonce=1483228800&apikey=key",
			want:   "07b863931d11a005f1acaa7c56ada015057d670d08288942a6d9002ac390c5ba35756ba43d094ddc39e458c7220b0c6ee2319fee3f105a7c0700c25efc75ea4d",
		},
		{
			name:   "bare public url",
			secret: "topsecret",
			url:    "https://bittrex.com/api/v1.1/public/getmarkets",
			want:   "86c27741272eb003cc15f08558d1df366e7a7477f847f276daa7c66971ce7a3a31af8f2c4032eb773ca422a1620faa0fb3e8c4060042cce667060e04b0fd1a01",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Sign(tc.secret, tc.url))
		})
	}
}

func TestSignIsDeterministic(t *testing.T) {
	url := "https://bittrex.com/api/v1.1/market/getopenorders?nonce=1700000000&apikey=abc"
	assert.Equal(t, Sign("s3cret", url), Sign("s3cret", url))
}

func TestSignDependsOnEveryQueryParameter(t *testing.T) {
	base := "https://bittrex.com/api/v1.1/public/getticker?market=BTC-ETH"
	assert.NotEqual(t, Sign("s", base), Sign("s", base+"&nonce=1"))
}

func TestNonceTracksWallClockSeconds(t *testing.T) {
	before := time.Now().Unix()
	n := Nonce()
	after := time.Now().Unix()

	assert.GreaterOrEqual(t, n, before)
	assert.LessOrEqual(t, n, after)
}

func TestNonceNeverDecreases(t *testing.T) {
	first := Nonce()
	for i := 0; i < 100; i++ {
		assert.GreaterOrEqual(t, Nonce(), first)
	}
}
