package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightleaf-health/epi-preprocessor/internal/htmlkit"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/adapters/fhir"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/app"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/app/commands"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/app/queries"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/domain"
)

const apiBundle = `{
  "resourceType": "Bundle",
  "id": "epi-api",
  "type": "document",
  "identifier": {"system": "https://brightleaf.example/epi", "value": "api-fixture"},
  "entry": [
    {
      "fullUrl": "urn:uuid:comp-api",
      "resource": {
        "resourceType": "Composition",
        "id": "comp-api",
        "status": "final",
        "title": "Test leaflet",
        "text": {"status": "generated", "div": "<div xmlns=\"http://www.w3.org/1999/xhtml\"><p>Leaflet body</p></div>"},
        "extension": [
          {
            "url": "http://hl7.eu/fhir/ig/gravitate-health/StructureDefinition/HtmlElementLink",
            "extension": [
              {"url": "elementClass", "valueString": "warning-box"},
              {"url": "concept", "valueCoding": {"system": "http://snomed.info/sct", "code": "182856006", "display": "Drug warning"}}
            ]
          }
        ],
        "section": [
          {
            "title": "Dosage",
            "text": {"status": "generated", "div": "<div xmlns=\"http://www.w3.org/1999/xhtml\"><p>Take one tablet.</p></div>"},
            "section": [
              {"title": "Overdose", "text": {"status": "generated", "div": "<div xmlns=\"http://www.w3.org/1999/xhtml\"><p>Call a doctor.</p></div>"}}
            ]
          }
        ]
      }
    }
  ]
}`

type apiOutcome struct {
	ResourceType string `json:"resourceType"`
	Issue        []struct {
		Severity    string `json:"severity"`
		Code        string `json:"code"`
		Diagnostics string `json:"diagnostics"`
	} `json:"issue"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	kit := htmlkit.New()
	contentManager := fhir.NewContentManager(kit, 0)
	linkManager := fhir.NewLinkManager()

	cmdBus := app.NewCommandBus(
		commands.NewUpdateHTMLContentHandler(contentManager),
		commands.NewUpdateSectionHTMLHandler(contentManager),
		commands.NewReplaceHTMLSpanHandler(),
		commands.NewWrapHTMLHandler(),
		commands.NewAddElementLinkHandler(linkManager),
		commands.NewRemoveElementLinkHandler(linkManager),
	)
	queryBus := app.NewQueryBus(
		queries.NewHTMLContentQueryHandler(contentManager),
		queries.NewExtractAllContentQueryHandler(contentManager),
		queries.NewExportMarkdownQueryHandler(contentManager),
		queries.NewListElementLinksQueryHandler(linkManager),
		queries.NewGetElementLinkQueryHandler(linkManager),
		queries.NewAnalyzeHTMLQueryHandler(kit),
		queries.NewFindElementsQueryHandler(kit),
	)

	h, err := Router(NewServer(cmdBus, queryBus))
	require.NoError(t, err)
	return h
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeOutcome(t *testing.T, rec *httptest.ResponseRecorder) apiOutcome {
	t.Helper()

	var out apiOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, "OperationOutcome", out.ResourceType)
	require.NotEmpty(t, out.Issue)
	return out
}

func bundleBody(extra map[string]any) map[string]any {
	body := map[string]any{"bundle": json.RawMessage(apiBundle)}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestExtractAllContent(t *testing.T) {
	h := newTestRouter(t)

	rec := post(t, h, "/v1/epi/html/extract", bundleBody(nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var report domain.ContentReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Contains(t, report.CompositionHTML, "Leaflet body")
	assert.Equal(t, 2, report.TotalSections)
	assert.Equal(t, 1, report.MaxNestingLevel)
	assert.Equal(t, "Dosage", report.Sections[0].Title)
	assert.Equal(t, "Overdose", report.Sections[1].Title)
}

func TestGetHTMLContent(t *testing.T) {
	h := newTestRouter(t)

	rec := post(t, h, "/v1/epi/html/get", bundleBody(nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp htmlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.HTML, "Leaflet body")
}

func TestUpdateHTMLContentReturnsModifiedBundle(t *testing.T) {
	h := newTestRouter(t)
	newDiv := `<div xmlns="http://www.w3.org/1999/xhtml"><p>Rewritten</p></div>`

	rec := post(t, h, "/v1/epi/html/update", bundleBody(map[string]any{"html": newDiv}))
	require.Equal(t, http.StatusOK, rec.Code)

	epi, err := fhir.ParseBundle(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, newDiv, epi.Composition().Text.Div)

	// Fields the handlers never model ride through untouched.
	assert.Contains(t, rec.Body.String(), `"api-fixture"`)
}

func TestUpdateHTMLContentRejectsBadFragment(t *testing.T) {
	h := newTestRouter(t)

	rec := post(t, h, "/v1/epi/html/update", bundleBody(map[string]any{"html": "<div><p>unclosed"}))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	out := decodeOutcome(t, rec)
	assert.Equal(t, "invalid", out.Issue[0].Code)
}

func TestUpdateSectionHTML(t *testing.T) {
	h := newTestRouter(t)
	newDiv := `<div xmlns="http://www.w3.org/1999/xhtml"><p>Seek help at once.</p></div>`
	body := bundleBody(map[string]any{"sectionTitle": "Overdose", "html": newDiv})

	// The nested section is invisible without recursive.
	rec := post(t, h, "/v1/epi/sections/update", body)
	require.Equal(t, http.StatusNotFound, rec.Code)
	out := decodeOutcome(t, rec)
	assert.Equal(t, "not-found", out.Issue[0].Code)

	rec = post(t, h, "/v1/epi/sections/update?recursive=true", body)
	require.Equal(t, http.StatusOK, rec.Code)

	epi, err := fhir.ParseBundle(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, newDiv, epi.Composition().Section[0].Section[0].Text.Div)
}

func TestListElementLinks(t *testing.T) {
	h := newTestRouter(t)

	rec := post(t, h, "/v1/epi/links/list", bundleBody(nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp linksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Links, 1)
	assert.Equal(t, "warning-box", resp.Links[0].ElementClass)

	rec = post(t, h, "/v1/epi/links/list?class=warning-box", bundleBody(nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = post(t, h, "/v1/epi/links/list?class=no-such", bundleBody(nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddElementLink(t *testing.T) {
	h := newTestRouter(t)
	link := map[string]any{
		"elementClass": "storage-note",
		"concept":      map[string]any{"system": "http://snomed.info/sct", "code": "278296007", "display": "Storage"},
	}

	rec := post(t, h, "/v1/epi/links/add", bundleBody(map[string]any{"link": link}))
	require.Equal(t, http.StatusOK, rec.Code)

	epi, err := fhir.ParseBundle(rec.Body.Bytes())
	require.NoError(t, err)
	links := fhir.NewLinkManager().List(epi.Composition())
	require.Len(t, links, 2)
	assert.Equal(t, "storage-note", links[1].ElementClass)
}

func TestAddElementLinkConflict(t *testing.T) {
	h := newTestRouter(t)
	link := map[string]any{
		"elementClass": "warning-box",
		"concept":      map[string]any{"code": "999"},
	}

	rec := post(t, h, "/v1/epi/links/add", bundleBody(map[string]any{"link": link}))
	require.Equal(t, http.StatusConflict, rec.Code)
	out := decodeOutcome(t, rec)
	assert.Equal(t, "conflict", out.Issue[0].Code)

	// replace turns the conflict into an in-place update.
	rec = post(t, h, "/v1/epi/links/add?replace=true", bundleBody(map[string]any{"link": link}))
	require.Equal(t, http.StatusOK, rec.Code)

	epi, err := fhir.ParseBundle(rec.Body.Bytes())
	require.NoError(t, err)
	got, err := fhir.NewLinkManager().Get(epi.Composition(), "warning-box")
	require.NoError(t, err)
	assert.Equal(t, "999", got.Concept.Code)
}

func TestAddElementLinkRejectsEmptyCode(t *testing.T) {
	h := newTestRouter(t)
	link := map[string]any{
		"elementClass": "storage-note",
		"concept":      map[string]any{"code": ""},
	}

	rec := post(t, h, "/v1/epi/links/add", bundleBody(map[string]any{"link": link}))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	out := decodeOutcome(t, rec)
	assert.Equal(t, "invalid", out.Issue[0].Code)
}

func TestRemoveElementLink(t *testing.T) {
	h := newTestRouter(t)

	rec := post(t, h, "/v1/epi/links/remove", bundleBody(map[string]any{"elementClass": "warning-box"}))
	require.Equal(t, http.StatusOK, rec.Code)

	epi, err := fhir.ParseBundle(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Empty(t, fhir.NewLinkManager().List(epi.Composition()))

	rec = post(t, h, "/v1/epi/links/remove", bundleBody(map[string]any{"elementClass": "no-such"}))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportMarkdown(t *testing.T) {
	h := newTestRouter(t)

	rec := post(t, h, "/v1/epi/markdown", bundleBody(nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var report domain.MarkdownReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Contains(t, report.CompositionMarkdown, "Leaflet body")
	require.Len(t, report.Sections, 2)
	assert.Contains(t, report.Sections[0].Markdown, "Take one tablet.")
}

func TestAnalyzeHTML(t *testing.T) {
	h := newTestRouter(t)
	fragment := `<div xmlns="http://www.w3.org/1999/xhtml"><p class="warning-box">Careful</p></div>`

	rec := post(t, h, "/v1/html/analyze", map[string]any{"html": fragment})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Summary.TotalElements)
	assert.Equal(t, 1, resp.Summary.ClassCounts["warning-box"])
	assert.Equal(t, "Careful", resp.Text)
	assert.Empty(t, resp.Issues)
	assert.Contains(t, rec.Body.String(), `"issues":[]`)
}

func TestFindElements(t *testing.T) {
	h := newTestRouter(t)
	fragment := `<div><p class="warning-box">a</p><p>b</p></div>`

	rec := post(t, h, "/v1/html/elements?class=warning-box", map[string]any{"html": fragment})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp elementsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Elements, 1)
	assert.Equal(t, "p", resp.Elements[0].Tag)

	rec = post(t, h, "/v1/html/elements?tag=p", map[string]any{"html": fragment})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Elements, 2)
}

func TestFindElementsRequiresClassOrTag(t *testing.T) {
	h := newTestRouter(t)

	rec := post(t, h, "/v1/html/elements", map[string]any{"html": "<p>x</p>"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	out := decodeOutcome(t, rec)
	assert.Equal(t, "invalid", out.Issue[0].Code)
}

func TestReplaceHTMLSpan(t *testing.T) {
	h := newTestRouter(t)

	rec := post(t, h, "/v1/html/replace", map[string]any{
		"html":        "<p>a</p><!-- S --><p>b</p><!-- E --><p>c</p>",
		"startMarker": "<!-- S -->",
		"endMarker":   "<!-- E -->",
		"replacement": "<p>z</p>",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp htmlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "<p>a</p><p>z</p><p>c</p>", resp.HTML)
}

func TestReplaceHTMLSpanMarkerMissing(t *testing.T) {
	h := newTestRouter(t)

	rec := post(t, h, "/v1/html/replace", map[string]any{
		"html":        "<p>a</p>",
		"startMarker": "<!-- S -->",
		"endMarker":   "<!-- E -->",
		"replacement": "<p>z</p>",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	out := decodeOutcome(t, rec)
	assert.Equal(t, "processing", out.Issue[0].Code)
}

func TestWrapHTML(t *testing.T) {
	h := newTestRouter(t)

	rec := post(t, h, "/v1/html/wrap", map[string]any{
		"html":    "<p>inner</p>",
		"classes": []string{"box"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp htmlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, `<div class="box"><p>inner</p></div>`, resp.HTML)
}

func TestInvalidBundleRejected(t *testing.T) {
	h := newTestRouter(t)

	rec := post(t, h, "/v1/epi/html/extract", map[string]any{
		"bundle": map[string]any{"resourceType": "Bundle", "type": "document"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	out := decodeOutcome(t, rec)
	assert.Equal(t, "invalid", out.Issue[0].Code)
	assert.Contains(t, out.Issue[0].Diagnostics, "Composition")
}

func TestContractRejectsIncompleteBody(t *testing.T) {
	h := newTestRouter(t)

	// html is required by the contract; the handler never runs.
	rec := post(t, h, "/v1/epi/html/update", bundleBody(nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContractRejectsUnknownPath(t *testing.T) {
	h := newTestRouter(t)

	rec := post(t, h, "/v1/epi/nope", map[string]any{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
