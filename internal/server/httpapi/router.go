package httpapi

import (
	"net/http"

	"github.com/cryptobulldev/userdash/internal/logging"
)

// NewRouter returns the full middleware chain around the API routes.
// metrics may be nil.
func NewRouter(h *Handler, prefix string, metrics *Metrics, log logging.Logger) http.Handler {
	mux := http.NewServeMux()
	h.Register(mux, prefix)

	var handler http.Handler = mux
	if metrics != nil {
		handler = metrics.Wrap(handler)
	}
	handler = WithRecover(handler, log)
	handler = WithRequestLogging(handler, log)
	return WithRequestID(handler)
}
