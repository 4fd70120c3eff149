package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// DebugRequest renders an outgoing request for debug logging. The apikey
// query value and the apisign header are truncated so full credentials never
// reach the logs.
func DebugRequest(req *http.Request) string {
	u := *req.URL
	q := u.Query()
	if q.Has("apikey") {
		q.Set("apikey", mask(q.Get("apikey")))
		u.RawQuery = q.Encode()
	}

	var info string
	info += fmt.Sprintf("Method: %s\n", req.Method)
	info += fmt.Sprintf("URL: %s\n", u.String())
	info += "Headers:\n"
	for k, v := range req.Header {
		if k == "Apisign" && len(v) > 0 {
			info += fmt.Sprintf("  %s: %s\n", k, mask(v[0]))
			continue
		}
		info += fmt.Sprintf("  %s: %v\n", k, v)
	}
	return info
}

// DebugResponse renders a response for debug logging, restoring the body so
// it can still be read afterwards.
func DebugResponse(resp *http.Response) (string, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	resp.Body = io.NopCloser(bytes.NewBuffer(body))

	info := fmt.Sprintf("Status: %d %s\n", resp.StatusCode, resp.Status)
	info += fmt.Sprintf("Body: %s\n", string(body))
	return info, nil
}

func mask(s string) string {
	if len(s) > 10 {
		return s[:10] + "..."
	}
	return s
}
