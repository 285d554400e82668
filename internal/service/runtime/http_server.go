package runtime

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/brightleaf-health/epi-preprocessor/internal/service/config"
	epihttp "github.com/brightleaf-health/epi-preprocessor/internal/service/epi/adapters/http"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/logging"
)

// NewHTTPServer assembles the outer router around the API handler:
// request IDs, request logging, panic recovery, timeouts and API key auth.
func NewHTTPServer(cfg config.Config, server *epihttp.Server) (*http.Server, error) {
	api, err := epihttp.Router(server)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(logging.RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(apiKeyAuth(cfg.APIKey))
	r.Mount("/", api)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv, nil
}

// apiKeyAuth validates the X-API-Key header when a key is configured.
// With no key set, all requests pass (handy for local dev). The health
// probe stays open either way.
func apiKeyAuth(expected string) func(http.Handler) http.Handler {
	const hdr = "X-API-Key"
	return func(next http.Handler) http.Handler {
		if expected == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}
			if r.Header.Get(hdr) != expected {
				w.Header().Set("WWW-Authenticate", fmt.Sprintf(`ApiKey header="%s"`, hdr))
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
