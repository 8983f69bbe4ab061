package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cryptobulldev/userdash/internal/client/session"
	"github.com/cryptobulldev/userdash/internal/netx"
)

// Refresher exchanges a refresh credential for a new pair in one round
// trip. Errors must match ErrRefreshRejected when the credential itself was
// refused, and ErrUnavailable for anything that may succeed on retry.
type Refresher interface {
	Refresh(ctx context.Context, refresh string) (session.Pair, error)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// HTTPRefresher calls POST <base>/auth/refresh. It uses its own client, not
// the gateway, so a refresh can never trigger another refresh.
type HTTPRefresher struct {
	endpoint string
	hc       *http.Client
}

// NewHTTPRefresher targets baseURL + "/auth/refresh". A nil hc means
// http.DefaultClient.
func NewHTTPRefresher(baseURL string, hc *http.Client) *HTTPRefresher {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPRefresher{endpoint: strings.TrimRight(baseURL, "/") + "/auth/refresh", hc: hc}
}

// Refresh returns the new pair. A response without a refresh credential
// yields a pair with an empty Refresh; the session keeps the one it has.
func (r *HTTPRefresher) Refresh(ctx context.Context, refresh string) (session.Pair, error) {
	req, err := netx.NewJSONRequest(ctx, http.MethodPost, r.endpoint, refreshRequest{RefreshToken: refresh})
	if err != nil {
		return session.Pair{}, err
	}

	resp, err := r.hc.Do(req)
	if err != nil {
		return session.Pair{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500,
		resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode == http.StatusTooManyRequests:
		return session.Pair{}, fmt.Errorf("%w: %w", ErrUnavailable, NewStatusError(resp))
	case resp.StatusCode >= 400:
		return session.Pair{}, fmt.Errorf("%w: %w", ErrRefreshRejected, NewStatusError(resp))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return session.Pair{}, fmt.Errorf("%w: unexpected status %d", ErrRefreshRejected, resp.StatusCode)
	}

	var out refreshResponse
	if err := netx.DecodeResponse(resp, &out); err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return session.Pair{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return session.Pair{}, fmt.Errorf("%w: decode response: %w", ErrRefreshRejected, err)
	}
	if out.AccessToken == "" {
		return session.Pair{}, fmt.Errorf("%w: response has no access token", ErrRefreshRejected)
	}

	return session.Pair{Access: out.AccessToken, Refresh: out.RefreshToken}, nil
}
