package client

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cryptobulldev/userdash/internal/client/session"
	"github.com/cryptobulldev/userdash/internal/common"
	"github.com/cryptobulldev/userdash/internal/logging"
)

// Doer is the transport the gateway sends through. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Gateway sends API requests on behalf of the session. It attaches the
// current access credential and, when a request comes back 401, obtains a
// fresh credential through the coordinator and resends the request once.
type Gateway struct {
	hc      Doer
	store   *session.Store
	coord   *Coordinator
	metrics *Metrics
	log     logging.Logger
}

type GatewayOption func(*Gateway)

func WithGatewayMetrics(m *Metrics) GatewayOption {
	return func(g *Gateway) { g.metrics = m }
}

func WithGatewayLogger(l logging.Logger) GatewayOption {
	return func(g *Gateway) { g.log = l }
}

// NewGateway wires the gateway to store and coord. A nil hc means
// http.DefaultClient.
func NewGateway(hc Doer, store *session.Store, coord *Coordinator, opts ...GatewayOption) *Gateway {
	if hc == nil {
		hc = http.DefaultClient
	}
	g := &Gateway{hc: hc, store: store, coord: coord, log: logging.Nop()}
	for _, o := range opts {
		o(g)
	}
	g.log = g.log.With("module", "gateway")
	return g
}

// Do sends req and returns the response unchanged unless it is a 401.
//
// A 401 triggers at most one resend. If the session already holds a newer
// credential than the one sent, that credential is used without refreshing.
// A 401 that cannot be recovered is returned as a *StatusError matching
// ErrUnauthorized, with the response body already consumed. Transport
// errors match ErrUnavailable.
func (g *Gateway) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	body, err := readBody(req)
	if err != nil {
		return nil, fmt.Errorf("buffer request body: %w", err)
	}

	requestID := req.Header.Get(common.RequestIDHeaderName)
	if requestID == "" {
		requestID = newRequestID()
	}

	stale := g.store.Get().Access()
	resp, err := g.send(req, body, stale, requestID)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	original := NewStatusError(resp)

	reason := RetryReused
	fresh := g.store.Get().Access()
	if fresh == "" || fresh == stale {
		reason = RetryRefreshed
		fresh, err = g.coord.Obtain(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			g.metrics.authFailure()
			g.log.Info(ctx, "request unauthorized, refresh failed",
				"request_id", requestID, "method", req.Method, "path", req.URL.Path, "error", err)
			original.Cause = err
			return nil, original
		}
	}

	g.metrics.retry(reason)
	g.log.Debug(ctx, "resending request", "request_id", requestID, "reason", reason)

	resp, err = g.send(req, body, fresh, requestID)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		g.metrics.authFailure()
		g.log.Info(ctx, "request unauthorized after retry",
			"request_id", requestID, "method", req.Method, "path", req.URL.Path)
		return nil, NewStatusError(resp)
	}
	return resp, nil
}

// send issues one attempt. The original request is never mutated.
func (g *Gateway) send(orig *http.Request, body []byte, access, requestID string) (*http.Response, error) {
	req := orig.Clone(orig.Context())
	if body != nil {
		req.Body = io.NopCloser(bytes.NewReader(body))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		req.ContentLength = int64(len(body))
	}

	if access != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+access)
	} else {
		req.Header.Del(common.AuthorizationHeaderName)
	}
	req.Header.Set(common.RequestIDHeaderName, requestID)

	resp, err := g.hc.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return resp, nil
}

// readBody buffers req's body so it can be replayed. It returns nil for
// requests without one.
func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer func() { _ = req.Body.Close() }()
	return io.ReadAll(req.Body)
}

func newRequestID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), rand.Reader)
	if err != nil {
		return ""
	}
	return id.String()
}
