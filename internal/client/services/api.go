// Package services contains the dashboard's application services. They
// speak to the API exclusively through the authenticated gateway and keep
// the session store in sync with login and logout.
package services

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/cryptobulldev/userdash/internal/client/client"
	"github.com/cryptobulldev/userdash/internal/netx"
)

// api issues JSON calls relative to a base URL.
type api struct {
	base string
	gw   client.Doer
}

func newAPI(baseURL string, gw client.Doer) api {
	return api{base: strings.TrimRight(baseURL, "/"), gw: gw}
}

// call sends body (if any) and decodes a 2xx response into out (if any).
// Non-2xx responses become *client.StatusError.
func (a api) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := a.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := netx.NewJSONRequest(ctx, method, target, body)
	if err != nil {
		return err
	}

	resp, err := a.gw.Do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return client.NewStatusError(resp)
	}
	if resp.StatusCode == http.StatusNoContent {
		out = nil
	}
	return netx.DecodeResponse(resp, out)
}
