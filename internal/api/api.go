// Package api serves the stored codes and news over http.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"starrail-backend/internal/codes"
	"starrail-backend/internal/components/assert"
	"starrail-backend/internal/components/telemetry"
	"starrail-backend/internal/news"
	"starrail-backend/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("starrail.internal.api")

// StoreAPI is everything the api reads from and writes to.
//
// note: fault injection point
type StoreAPI interface {
	ListActiveCodes(ctx context.Context) ([]codes.CodeRecord, error)
	ListInactiveCodes(ctx context.Context) ([]codes.CodeRecord, error)
	ListArticles(ctx context.Context, typ news.Type, lang string, limit int64) ([]news.Article, error)
	RecordError(ctx context.Context, entry store.ErrorEntry) (int64, error)
}

var _ StoreAPI = store.Store{}

type Options struct {
	// RateLimit is the amount of requests a single client may make per
	// RateWindow, defaults to 60 per minute.
	RateLimit  int
	RateWindow time.Duration
	// ArticleLimit caps the amount of articles returned per request,
	// defaults to 50.
	ArticleLimit int64
	// AllowedOrigins defaults to every origin.
	AllowedOrigins []string
}

type Server struct {
	store        StoreAPI
	tel          telemetry.API
	articleLimit int64
}

// NewRouter wires the middleware chain and every route under /starrail.
func NewRouter(st StoreAPI, tel telemetry.API, opts Options) http.Handler {
	assert.NotNil(st)
	assert.NotNil(tel)

	if opts.RateLimit == 0 {
		opts.RateLimit = 60
	}
	if opts.RateWindow == 0 {
		opts.RateWindow = time.Minute
	}
	if opts.ArticleLimit == 0 {
		opts.ArticleLimit = 50
	}
	if opts.AllowedOrigins == nil {
		opts.AllowedOrigins = []string{"*"}
	}

	s := Server{
		store:        st,
		tel:          telemetry.NewScopedAPI("api", tel),
		articleLimit: opts.ArticleLimit,
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(requestID)
	r.Use(tracing)
	r.Use(logRequests)
	r.Use(s.recoverer)
	r.Use(rateLimit(newLimiterCache(opts.RateLimit, opts.RateWindow)))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found", "route not found: "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed", r.Method+" is not allowed on "+r.URL.Path)
	})

	r.Get("/starrail", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/starrail/", http.StatusMovedPermanently)
	})
	r.Get("/starrail/", s.index)
	r.Get("/starrail/code", s.codes)
	r.Get("/starrail/news", s.newsIndex)
	r.Get("/starrail/news/{type}", s.news)

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Warn("failed to write response", "err", err)
	}
}

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, name, message string) {
	writeJSON(w, status, errorResponse{
		StatusCode: status,
		Error:      name,
		Message:    message,
	})
}

// fail answers with a 500 and keeps a record of the failure.
func (s Server) fail(w http.ResponseWriter, r *http.Request, name string, err error) {
	s.persist(r, name, err.Error(), "")
	writeError(w, http.StatusInternalServerError, "Internal Server Error", name)
}

func (s Server) persist(r *http.Request, name, message, stack string) {
	s.tel.ReportBroken(report_api_request, name, message, r.URL.Path, requestIDFrom(r.Context()))
	_, err := s.store.RecordError(context.WithoutCancel(r.Context()), store.ErrorEntry{
		Name:    name,
		Message: message + " (request " + requestIDFrom(r.Context()) + ")",
		Stack:   stack,
	})
	if err != nil {
		s.tel.ReportBroken(report_api_error_log, err)
	}
}

const (
	report_api_request   = "request"
	report_api_error_log = "error_log"
)
