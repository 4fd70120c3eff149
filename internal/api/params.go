package api

import (
	"net/url"
	"strings"
)

// Param is a single query-string pair.
type Param struct {
	Key   string
	Value string
}

// Params is an insertion-ordered query parameter list. The apisign signature
// covers the request URL exactly as sent, so parameters have to encode in the
// order they were assembled; url.Values is unusable here because Encode sorts
// its keys.
type Params []Param

// Add appends a pair and returns the extended list.
func (p Params) Add(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

// Encode renders the list as a URL-escaped query string in insertion order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}
