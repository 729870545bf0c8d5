package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qudratrading/mawared/internal/domain"
	"github.com/qudratrading/mawared/internal/usecase"
)

type fakeSource struct {
	categories []domain.CategoryRecord
	products   []domain.ProductRecord
	details    map[string]*domain.ProductDetailRecord
	err        error
}

func (f *fakeSource) ListCategories(ctx context.Context) ([]domain.CategoryRecord, error) {
	return f.categories, f.err
}

func (f *fakeSource) ListProducts(ctx context.Context) ([]domain.ProductRecord, error) {
	return f.products, f.err
}

func (f *fakeSource) GetProductBySlug(ctx context.Context, slug string) (*domain.ProductDetailRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.details[slug]; ok {
		return d, nil
	}
	return nil, domain.ErrNotFound
}

type stubLeadRepo struct {
	recent []domain.Lead
}

func (r *stubLeadRepo) Save(ctx context.Context, l *domain.Lead) error { return nil }

func (r *stubLeadRepo) ListRecent(ctx context.Context, limit int) ([]domain.Lead, error) {
	return r.recent, nil
}

type noopMailer struct{}

func (noopMailer) Send(m domain.Mail) error { return nil }

func testTemplates(t *testing.T) *template.Template {
	t.Helper()
	const src = `
{{define "home.html"}}home {{.Locale}} products={{len .Products}}{{end}}
{{define "products.html"}}products {{.Locale}} total={{.Total}}{{end}}
{{define "product.html"}}product {{.Product.Slug}}{{end}}
{{define "about.html"}}about {{.Locale}}{{end}}
{{define "services.html"}}services{{end}}
{{define "privacy.html"}}privacy{{end}}
{{define "terms.html"}}terms{{end}}
{{define "notfound.html"}}missing{{end}}
{{define "error.html"}}unavailable{{end}}
`
	return template.Must(template.New("t").Parse(src))
}

func testServer(t *testing.T, src domain.ContentSource, repo domain.LeadRepo) http.Handler {
	t.Helper()
	catalog := &usecase.CatalogUC{Source: src}
	leads := usecase.NewLeadUC(repo, noopMailer{})
	return New(testTemplates(t), catalog, leads, repo)
}

func sampleSource() *fakeSource {
	return &fakeSource{
		categories: []domain.CategoryRecord{
			{ID: "c1", Slug: "pumps", Title: domain.LocalizedText{EN: "Pumps", AR: "مضخات"}},
		},
		products: []domain.ProductRecord{
			{ID: "p1", Slug: "gate-valve-dn50", Title: domain.LocalizedText{EN: "Gate Valve DN50"}, CategoryPath: []string{"pumps"}},
		},
		details: map[string]*domain.ProductDetailRecord{
			"gate-valve-dn50": {
				ProductRecord: domain.ProductRecord{ID: "p1", Slug: "gate-valve-dn50", Title: domain.LocalizedText{EN: "Gate Valve DN50"}},
				SKU:           "GV-50",
			},
		},
	}
}

func TestPagesRenderPerLocale(t *testing.T) {
	h := testServer(t, sampleSource(), nil)

	tests := []struct {
		path string
		want string
	}{
		{"/", "home en"},
		{"/ar/", "home ar"},
		{"/products", "products en total=1"},
		{"/ar/products", "products ar"},
		{"/product/gate-valve-dn50", "product gate-valve-dn50"},
		{"/about", "about en"},
		{"/ar/about", "about ar"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestProductPageNotFound(t *testing.T) {
	h := testServer(t, sampleSource(), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/product/no-such-thing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing")
}

func TestPagesDegradeWhenSourceIsDown(t *testing.T) {
	h := testServer(t, &fakeSource{err: errors.New("cms down")}, nil)
	for _, path := range []string{"/", "/products", "/product/gate-valve-dn50"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestAPICatalog(t *testing.T) {
	h := testServer(t, sampleSource(), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/catalog?locale=ar", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var data domain.CatalogData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	require.Len(t, data.CategoryTree, 1)
	assert.Equal(t, "مضخات", data.CategoryTree[0].Title)
	assert.Len(t, data.Products, 1)
}

func TestAPICatalogAppliesFilters(t *testing.T) {
	h := testServer(t, sampleSource(), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/catalog?search=submersible", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var data domain.CatalogData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Empty(t, data.Products)
}

func TestAPIProductBySlug(t *testing.T) {
	h := testServer(t, sampleSource(), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/gate-valve-dn50", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var p domain.ProductDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "GV-50", p.SKU)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/no-such-thing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIProductOutageIsNotA404(t *testing.T) {
	h := testServer(t, &fakeSource{err: errors.New("cms down")}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/gate-valve-dn50", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAPILeads(t *testing.T) {
	repo := &stubLeadRepo{}
	h := testServer(t, sampleSource(), repo)

	body, _ := json.Marshal(map[string]string{
		"formType": "quote",
		"name":     "Khalid",
		"email":    "khalid@example.com",
		"message":  "Need a quote.",
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/leads?locale=ar", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "received", resp["status"])
	assert.NotEmpty(t, resp["id"])
}

func TestAPILeadsRejectsInvalid(t *testing.T) {
	h := testServer(t, sampleSource(), nil)
	body, _ := json.Marshal(map[string]string{"formType": "quote", "email": "nope"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/leads", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAPILeadsRejectsBadJSONAndMethod(t *testing.T) {
	h := testServer(t, sampleSource(), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/leads", bytes.NewReader([]byte("{"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAPILeadsRecentTokenGate(t *testing.T) {
	t.Setenv("OPS_TOKEN", "sekret")
	repo := &stubLeadRepo{recent: []domain.Lead{{ID: uuid.New(), Email: "khalid@example.com"}}}
	h := testServer(t, sampleSource(), repo)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads/recent", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/leads/recent", nil)
	req.Header.Set("X-Ops-Token", "sekret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Leads []domain.Lead `json:"leads"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Leads, 1)
	assert.Equal(t, "khalid@example.com", resp.Leads[0].Email)
}

func TestAPILeadsRecentDisabledWithoutToken(t *testing.T) {
	t.Setenv("OPS_TOKEN", "")
	h := testServer(t, sampleSource(), &stubLeadRepo{})
	req := httptest.NewRequest(http.MethodGet, "/api/leads/recent", nil)
	req.Header.Set("X-Ops-Token", "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCatalogExport(t *testing.T) {
	h := testServer(t, sampleSource(), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/catalog/export.xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, rec.Body.Len())
}

func TestRobotsAndSitemap(t *testing.T) {
	h := testServer(t, sampleSource(), nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/robots.txt", nil)
	req.Host = "example.com"
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sitemap: http://example.com/sitemap.xml")

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	req.Host = "example.com"
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http://example.com/product/gate-valve-dn50")
	assert.Contains(t, rec.Body.String(), "http://example.com/ar/products")
}

func TestUnknownPageIs404(t *testing.T) {
	h := testServer(t, sampleSource(), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no/such/page", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing")
}
