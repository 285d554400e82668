package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/brightleaf-health/epi-preprocessor/internal/htmlkit"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/app"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/app/commands"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/app/queries"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/domain"
)

type Server struct {
	cmdBus   app.CommandBus
	queryBus app.QueryBus
}

func NewServer(cmdBus app.CommandBus, queryBus app.QueryBus) *Server {
	return &Server{
		cmdBus:   cmdBus,
		queryBus: queryBus,
	}
}

type bundleRequest struct {
	Bundle json.RawMessage `json:"bundle"`
}

type updateHTMLRequest struct {
	Bundle json.RawMessage `json:"bundle"`
	HTML   string          `json:"html"`
}

type updateSectionRequest struct {
	Bundle       json.RawMessage `json:"bundle"`
	SectionTitle string          `json:"sectionTitle"`
	HTML         string          `json:"html"`
}

type addLinkRequest struct {
	Bundle json.RawMessage        `json:"bundle"`
	Link   domain.HTMLElementLink `json:"link"`
}

type removeLinkRequest struct {
	Bundle       json.RawMessage `json:"bundle"`
	ElementClass string          `json:"elementClass"`
}

type htmlRequest struct {
	HTML string `json:"html"`
}

type replaceSpanRequest struct {
	HTML        string `json:"html"`
	StartMarker string `json:"startMarker"`
	EndMarker   string `json:"endMarker"`
	Replacement string `json:"replacement"`
}

type wrapRequest struct {
	HTML       string            `json:"html"`
	Tag        string            `json:"tag"`
	Classes    []string          `json:"classes"`
	Attributes map[string]string `json:"attributes"`
}

type htmlResponse struct {
	HTML string `json:"html"`
}

type linksResponse struct {
	Links []domain.HTMLElementLink `json:"links"`
}

type elementsResponse struct {
	Elements []htmlkit.Element `json:"elements"`
}

type analyzeResponse struct {
	Summary  htmlkit.StructureSummary  `json:"summary"`
	Text     string                    `json:"text"`
	Sections []htmlkit.FragmentSection `json:"sections"`
	Issues   []string                  `json:"issues"`
}

// ExtractAllContent returns every narrative in the bundle's Composition.
func (s *Server) ExtractAllContent(w http.ResponseWriter, r *http.Request) {
	var in bundleRequest
	if !s.decode(w, r, &in) {
		return
	}
	result, err := s.queryBus.ExtractAllContent(r.Context(), queries.ExtractAllContentQuery{Bundle: in.Bundle})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result.Report)
}

// GetHTMLContent returns the Composition's own narrative.
func (s *Server) GetHTMLContent(w http.ResponseWriter, r *http.Request) {
	var in bundleRequest
	if !s.decode(w, r, &in) {
		return
	}
	result, err := s.queryBus.HTMLContent(r.Context(), queries.HTMLContentQuery{Bundle: in.Bundle})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, htmlResponse{HTML: result.HTML})
}

// UpdateHTMLContent rewrites the Composition narrative and returns the
// modified bundle.
func (s *Server) UpdateHTMLContent(w http.ResponseWriter, r *http.Request) {
	var in updateHTMLRequest
	if !s.decode(w, r, &in) {
		return
	}
	result, err := s.cmdBus.UpdateHTMLContent(r.Context(), commands.UpdateHTMLContentCommand{
		Bundle: in.Bundle,
		HTML:   in.HTML,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeBundle(w, result.Bundle)
}

// UpdateSectionHTML rewrites one section narrative, by exact title. The
// recursive query parameter extends the search below the top level.
func (s *Server) UpdateSectionHTML(w http.ResponseWriter, r *http.Request) {
	var recursive *bool
	if err := runtime.BindQueryParameter("form", true, false, "recursive", r.URL.Query(), &recursive); err != nil {
		s.writeOutcome(w, http.StatusBadRequest, fmt.Errorf("recursive: %w", err))
		return
	}
	var in updateSectionRequest
	if !s.decode(w, r, &in) {
		return
	}
	result, err := s.cmdBus.UpdateSectionHTML(r.Context(), commands.UpdateSectionHTMLCommand{
		Bundle:       in.Bundle,
		SectionTitle: in.SectionTitle,
		HTML:         in.HTML,
		Recursive:    recursive != nil && *recursive,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeBundle(w, result.Bundle)
}

// ListElementLinks lists the element links of the Composition. With the
// class query parameter it narrows to that single link.
func (s *Server) ListElementLinks(w http.ResponseWriter, r *http.Request) {
	var class *string
	if err := runtime.BindQueryParameter("form", true, false, "class", r.URL.Query(), &class); err != nil {
		s.writeOutcome(w, http.StatusBadRequest, fmt.Errorf("class: %w", err))
		return
	}
	var in bundleRequest
	if !s.decode(w, r, &in) {
		return
	}
	if class != nil && *class != "" {
		result, err := s.queryBus.GetElementLink(r.Context(), queries.GetElementLinkQuery{
			Bundle:       in.Bundle,
			ElementClass: *class,
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, linksResponse{Links: []domain.HTMLElementLink{result.Link}})
		return
	}
	result, err := s.queryBus.ListElementLinks(r.Context(), queries.ListElementLinksQuery{Bundle: in.Bundle})
	if err != nil {
		s.writeError(w, err)
		return
	}
	links := result.Links
	if links == nil {
		links = []domain.HTMLElementLink{}
	}
	s.writeJSON(w, http.StatusOK, linksResponse{Links: links})
}

// AddElementLink attaches a link for a class. The replace query parameter
// turns the conflict on an existing class into an in-place update.
func (s *Server) AddElementLink(w http.ResponseWriter, r *http.Request) {
	var replace *bool
	if err := runtime.BindQueryParameter("form", true, false, "replace", r.URL.Query(), &replace); err != nil {
		s.writeOutcome(w, http.StatusBadRequest, fmt.Errorf("replace: %w", err))
		return
	}
	var in addLinkRequest
	if !s.decode(w, r, &in) {
		return
	}
	result, err := s.cmdBus.AddElementLink(r.Context(), commands.AddElementLinkCommand{
		Bundle:  in.Bundle,
		Link:    in.Link,
		Replace: replace != nil && *replace,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeBundle(w, result.Bundle)
}

// RemoveElementLink detaches the link for a class.
func (s *Server) RemoveElementLink(w http.ResponseWriter, r *http.Request) {
	var in removeLinkRequest
	if !s.decode(w, r, &in) {
		return
	}
	result, err := s.cmdBus.RemoveElementLink(r.Context(), commands.RemoveElementLinkCommand{
		Bundle:       in.Bundle,
		ElementClass: in.ElementClass,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeBundle(w, result.Bundle)
}

// ExportMarkdown converts every narrative in the bundle to markdown.
func (s *Server) ExportMarkdown(w http.ResponseWriter, r *http.Request) {
	var in bundleRequest
	if !s.decode(w, r, &in) {
		return
	}
	result, err := s.queryBus.ExportMarkdown(r.Context(), queries.ExportMarkdownQuery{Bundle: in.Bundle})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result.Report)
}

// AnalyzeHTML reports the structure, text and validation findings of a
// bare narrative fragment.
func (s *Server) AnalyzeHTML(w http.ResponseWriter, r *http.Request) {
	var in htmlRequest
	if !s.decode(w, r, &in) {
		return
	}
	result, err := s.queryBus.AnalyzeHTML(r.Context(), queries.AnalyzeHTMLQuery{HTML: in.HTML})
	if err != nil {
		s.writeError(w, err)
		return
	}
	issues := result.Issues
	if issues == nil {
		issues = []string{}
	}
	s.writeJSON(w, http.StatusOK, analyzeResponse{
		Summary:  result.Summary,
		Text:     result.Text,
		Sections: result.Sections,
		Issues:   issues,
	})
}

// FindElements selects elements of a fragment by class token or tag name.
func (s *Server) FindElements(w http.ResponseWriter, r *http.Request) {
	var class, tag *string
	if err := runtime.BindQueryParameter("form", true, false, "class", r.URL.Query(), &class); err != nil {
		s.writeOutcome(w, http.StatusBadRequest, fmt.Errorf("class: %w", err))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "tag", r.URL.Query(), &tag); err != nil {
		s.writeOutcome(w, http.StatusBadRequest, fmt.Errorf("tag: %w", err))
		return
	}
	var in htmlRequest
	if !s.decode(w, r, &in) {
		return
	}
	q := queries.FindElementsQuery{HTML: in.HTML}
	if class != nil {
		q.Class = *class
	}
	if tag != nil {
		q.Tag = *tag
	}
	result, err := s.queryBus.FindElements(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	elements := result.Elements
	if elements == nil {
		elements = []htmlkit.Element{}
	}
	s.writeJSON(w, http.StatusOK, elementsResponse{Elements: elements})
}

// ReplaceHTMLSpan swaps the marked span of a fragment, markers included.
func (s *Server) ReplaceHTMLSpan(w http.ResponseWriter, r *http.Request) {
	var in replaceSpanRequest
	if !s.decode(w, r, &in) {
		return
	}
	result, err := s.cmdBus.ReplaceHTMLSpan(r.Context(), commands.ReplaceHTMLSpanCommand{
		HTML:        in.HTML,
		StartMarker: in.StartMarker,
		EndMarker:   in.EndMarker,
		Replacement: in.Replacement,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, htmlResponse{HTML: result.HTML})
}

// WrapHTML encloses a fragment in a new element.
func (s *Server) WrapHTML(w http.ResponseWriter, r *http.Request) {
	var in wrapRequest
	if !s.decode(w, r, &in) {
		return
	}
	result, err := s.cmdBus.WrapHTML(r.Context(), commands.WrapHTMLCommand{
		HTML:       in.HTML,
		Tag:        in.Tag,
		Classes:    in.Classes,
		Attributes: in.Attributes,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, htmlResponse{HTML: result.HTML})
}

func (s *Server) GetHealthStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeOutcome(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidBundle):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingContent),
		errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrMarkerNotFound),
		errors.Is(err, domain.ErrDepthExceeded),
		errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusUnprocessableEntity
	}
	s.writeOutcome(w, status, err)
}

// writeOutcome renders the failure as a FHIR OperationOutcome.
func (s *Server) writeOutcome(w http.ResponseWriter, status int, err error) {
	type issue struct {
		Severity    string `json:"severity"`
		Code        string `json:"code"`
		Diagnostics string `json:"diagnostics,omitempty"`
	}
	outcome := struct {
		ResourceType string  `json:"resourceType"`
		Issue        []issue `json:"issue"`
	}{
		ResourceType: "OperationOutcome",
		Issue: []issue{{
			Severity:    "error",
			Code:        outcomeCode(err),
			Diagnostics: err.Error(),
		}},
	}
	s.writeJSON(w, status, outcome)
}

func outcomeCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidBundle), errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrMissingContent), errors.Is(err, domain.ErrNotFound):
		return "not-found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrMarkerNotFound), errors.Is(err, domain.ErrDepthExceeded):
		return "processing"
	default:
		return "exception"
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeBundle emits an already serialized bundle without re-encoding it.
func (s *Server) writeBundle(w http.ResponseWriter, bundle json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(bundle)
}
