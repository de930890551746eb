// Package server exposes the run trigger and diagnostics over HTTP.
//
// Routes:
//
//	GET /api/send-offer  → run once and report the outcome
//	GET /api/test-shopee → fetch a single offer to check credentials
//	GET /healthz         → liveness
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"pet-offers-bot/runner"
	"pet-offers-bot/shopee"
)

const serviceName = "pet-offers-bot"

// Runner performs one offer run.
type Runner interface {
	Run(ctx context.Context) (*runner.Result, error)
}

// OfferFetcher queries the catalog directly.
type OfferFetcher interface {
	FetchOffers(ctx context.Context, q shopee.Query) (*shopee.Page, error)
}

// Server holds the handler dependencies.
type Server struct {
	runner     Runner
	fetcher    OfferFetcher
	version    string
	runTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the version reported by /healthz.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithRunTimeout bounds a triggered run.
func WithRunTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.runTimeout = d
	}
}

// New creates a Server.
func New(r Runner, fetcher OfferFetcher, opts ...Option) *Server {
	s := &Server{
		runner:     r,
		fetcher:    fetcher,
		version:    "dev",
		runTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/send-offer", s.handleSendOffer)
	mux.HandleFunc("GET /api/test-shopee", s.handleTestShopee)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

type errorResponse struct {
	Error         string `json:"error"`
	Details       string `json:"details,omitempty"`
	TotalRequests *int   `json:"totalRequests,omitempty"`
	RunID         string `json:"runId,omitempty"`
}

func (s *Server) handleSendOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.runTimeout)
	defer cancel()

	res, err := s.runner.Run(ctx)
	if err != nil {
		slog.Error("send-offer failed", "error", err)
		resp := errorResponse{Error: "Erro ao enviar oferta", Details: err.Error()}
		if res != nil {
			resp.TotalRequests = &res.TotalRequests
			resp.RunID = res.RunID
		}
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

type testOfferResponse struct {
	ProductName string        `json:"productName"`
	PriceMin    float64       `json:"priceMin"`
	PriceMax    float64       `json:"priceMax"`
	OfferLink   string        `json:"offerLink"`
	ImageURL    string        `json:"imageUrl"`
	Raw         *shopee.Offer `json:"raw"`
}

func (s *Server) handleTestShopee(w http.ResponseWriter, r *http.Request) {
	page, err := s.fetcher.FetchOffers(r.Context(), shopee.Query{
		CategoryID: shopee.DiagnosticCategory,
		SortType:   shopee.SortCommissionDesc,
		IsAMSOffer: true,
		Limit:      1,
	})
	if err != nil {
		slog.Error("test-shopee failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Erro ao chamar Shopee", Details: err.Error()})
		return
	}
	if len(page.Offers) == 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Nenhuma oferta encontrada"})
		return
	}

	o := page.Offers[0]
	writeJSON(w, http.StatusOK, testOfferResponse{
		ProductName: o.ProductName,
		PriceMin:    float64(o.PriceMin),
		PriceMax:    float64(o.PriceMax),
		OfferLink:   o.OfferLink,
		ImageURL:    o.ImageURL,
		Raw:         &o,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
		"version": s.version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}
