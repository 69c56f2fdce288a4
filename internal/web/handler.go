package web

import (
	"context"
	"net/http"

	"github.com/prometheus/common/expfmt"

	"github.com/tomato-exporter/tomato-exporter/internal/expo"
)

// Gatherer runs one scrape cycle and returns the series to expose.
type Gatherer interface {
	Gather(ctx context.Context) []expo.Series
}

// Handler serves the metrics document over HTTP.
type Handler struct {
	gatherer Gatherer
	mux      *http.ServeMux
}

// New creates a Handler exposing the gatherer's document at /<slug>.
// Every other path returns 404, and non-GET requests on the metrics path
// return 405.
func New(g Gatherer, slug string) http.Handler {
	h := &Handler{gatherer: g, mux: http.NewServeMux()}
	h.mux.HandleFunc("/"+slug, h.metrics)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// metrics runs a full scrape cycle per request. The device is polled live;
// nothing is cached between scrapes.
func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	doc := expo.Render(h.gatherer.Gather(r.Context()))
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	w.Write([]byte(doc)) //nolint:errcheck
}
