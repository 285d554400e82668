package http

import (
	"context"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/go-chi/chi/v5"
	oapimw "github.com/oapi-codegen/nethttp-middleware"

	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/adapters/http/openapi"
)

// Router wires every API operation behind OpenAPI request validation.
func Router(srv *Server) (http.Handler, error) {
	swagger, err := openapi.GetSwagger()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	// Requests are checked against the embedded contract before they reach
	// a handler. API key auth happens upstream in the runtime server.
	r.Use(oapimw.OapiRequestValidatorWithOptions(swagger, &oapimw.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: func(ctx context.Context, input *openapi3filter.AuthenticationInput) error {
				return nil
			},
		},
	}))

	r.Post("/v1/epi/html/extract", srv.ExtractAllContent)
	r.Post("/v1/epi/html/get", srv.GetHTMLContent)
	r.Post("/v1/epi/html/update", srv.UpdateHTMLContent)
	r.Post("/v1/epi/sections/update", srv.UpdateSectionHTML)
	r.Post("/v1/epi/links/list", srv.ListElementLinks)
	r.Post("/v1/epi/links/add", srv.AddElementLink)
	r.Post("/v1/epi/links/remove", srv.RemoveElementLink)
	r.Post("/v1/epi/markdown", srv.ExportMarkdown)
	r.Post("/v1/html/analyze", srv.AnalyzeHTML)
	r.Post("/v1/html/elements", srv.FindElements)
	r.Post("/v1/html/replace", srv.ReplaceHTMLSpan)
	r.Post("/v1/html/wrap", srv.WrapHTML)
	r.Get("/health", srv.GetHealthStatus)

	return r, nil
}
