package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tcfw/sentinel/internal/metrics"
	"github.com/tcfw/sentinel/internal/sentinel"
)

const (
	apiPrefix = "/v1"
)

type APIHandler interface {
	Setup(*Api) error
	Routes(chi.Router)
}

var (
	reg = []APIHandler{}
)

type BaseHandler struct {
	a *Api
}

func (b *BaseHandler) Setup(a *Api) error {
	b.a = a
	return nil
}

type Api struct {
	s *sentinel.Service
	r chi.Router

	srv *http.Server
}

type Option func(*options)

type options struct {
	gatherer    prometheus.Gatherer
	corsOrigins []string
}

// WithMetrics mounts /metrics for the given gatherer
func WithMetrics(g prometheus.Gatherer) Option {
	return func(o *options) {
		o.gatherer = g
	}
}

func WithCORS(origins []string) Option {
	return func(o *options) {
		o.corsOrigins = origins
	}
}

func NewAPI(s *sentinel.Service, opts ...Option) (*Api, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	a := &Api{
		s: s,
		r: chi.NewRouter(),
	}

	a.r.Use(middleware.RequestID)
	a.r.Use(middleware.Recoverer)
	if len(o.corsOrigins) != 0 {
		a.r.Use(cors.Handler(cors.Options{
			AllowedOrigins: o.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		}))
	}

	if o.gatherer != nil {
		a.r.Method(http.MethodGet, "/metrics", metrics.Handler(o.gatherer))
	}

	handlers := []APIHandler{&txHandler{}, &chainHandler{}}
	handlers = append(handlers, reg...)

	var setupErr error
	a.r.Route(apiPrefix, func(r chi.Router) {
		for _, h := range handlers {
			if err := h.Setup(a); err != nil {
				setupErr = errors.Wrap(err, "registering handler")
				return
			}
			h.Routes(r)
		}
	})
	if setupErr != nil {
		return nil, setupErr
	}

	return a, nil
}

func (a *Api) Handler() http.Handler {
	return a.r
}

func (a *Api) ListenAndServe(addr string) error {
	a.srv = &http.Server{
		Addr:              addr,
		Handler:           a.r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (a *Api) Shutdown(ctx context.Context) error {
	if a.srv == nil {
		return nil
	}

	return a.srv.Shutdown(ctx)
}
