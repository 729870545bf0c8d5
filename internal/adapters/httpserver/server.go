package httpserver

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qudratrading/mawared/internal/adapters/export"
	"github.com/qudratrading/mawared/internal/domain"
	"github.com/qudratrading/mawared/internal/filter"
	"github.com/qudratrading/mawared/internal/usecase"
)

type Server struct {
	mux      *http.ServeMux
	tmpl     *template.Template
	catalog  *usecase.CatalogUC
	leads    *usecase.LeadUC
	leadRepo domain.LeadRepo

	opsToken string
}

type localeHandler func(w http.ResponseWriter, r *http.Request, loc domain.Locale)

func New(t *template.Template, catalog *usecase.CatalogUC, leads *usecase.LeadUC, leadRepo domain.LeadRepo) http.Handler {
	s := &Server{
		mux:      http.NewServeMux(),
		tmpl:     t,
		catalog:  catalog,
		leads:    leads,
		leadRepo: leadRepo,
		opsToken: os.Getenv("OPS_TOKEN"),
	}
	s.routes()
	return s.mux
}

func (s *Server) routes() {
	s.mux.Handle("/public/", http.StripPrefix("/public/", http.FileServer(http.Dir("public"))))

	// SEO endpoints
	s.mux.HandleFunc("/robots.txt", s.handleRobots)
	s.mux.HandleFunc("/sitemap.xml", s.handleSitemap)

	// pages, English at the root and Arabic under /ar
	s.pageRoutes("", domain.LocaleEN)
	s.pageRoutes("/ar", domain.LocaleAR)

	s.mux.HandleFunc("/api/catalog", s.apiCatalog)
	s.mux.HandleFunc("/api/catalog/export.xlsx", s.apiCatalogExport)
	s.mux.HandleFunc("/api/products/", s.apiProductBySlug)
	s.mux.HandleFunc("/api/leads", s.apiLeads)
	s.mux.HandleFunc("/api/leads/recent", s.apiLeadsRecent)
}

func (s *Server) pageRoutes(prefix string, loc domain.Locale) {
	s.mux.HandleFunc(prefix+"/", s.withLocale(loc, s.handleHome))
	s.mux.HandleFunc(prefix+"/products", s.withLocale(loc, s.handleProducts))
	s.mux.HandleFunc(prefix+"/product/", s.withLocale(loc, s.handleProduct))
	s.mux.HandleFunc(prefix+"/about", s.staticPage(loc, "about.html"))
	s.mux.HandleFunc(prefix+"/services", s.staticPage(loc, "services.html"))
	s.mux.HandleFunc(prefix+"/legal/privacy", s.staticPage(loc, "privacy.html"))
	s.mux.HandleFunc(prefix+"/legal/terms", s.staticPage(loc, "terms.html"))
}

func (s *Server) withLocale(loc domain.Locale, h localeHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(w, r, loc)
	}
}

func prefixFor(loc domain.Locale) string {
	if loc == domain.LocaleAR {
		return "/ar"
	}
	return ""
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request, loc domain.Locale) {
	if r.URL.Path != prefixFor(loc)+"/" {
		s.renderNotFound(w, loc)
		return
	}
	data, err := s.catalog.FetchCatalogData(r.Context(), loc)
	if err != nil {
		s.renderError(w, loc, err)
		return
	}
	featured := data.Products
	if len(featured) > 8 {
		featured = featured[:8]
	}
	s.render(w, "home.html", s.pageData(loc, map[string]any{
		"Categories": data.CategoryTree,
		"Products":   featured,
	}))
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request, loc domain.Locale) {
	state := filter.Parse(r.URL.Query())
	data, err := s.catalog.FetchCatalogData(r.Context(), loc)
	if err != nil {
		s.renderError(w, loc, err)
		return
	}
	list := filter.Apply(data.Products, state)

	canonical := prefixFor(loc) + "/products"
	if q := state.Encode(); q != "" {
		canonical += "?" + q
	}
	s.render(w, "products.html", s.pageData(loc, map[string]any{
		"Products":       list,
		"Total":          len(list),
		"Categories":     data.CategoryTree,
		"FeatureFilters": data.FeatureFilters,
		"BrandFilters":   data.BrandFilters,
		"State":          state,
		"Query":          state.Encode(),
		"CanonicalPath":  canonical,
	}))
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request, loc domain.Locale) {
	slug := strings.TrimPrefix(r.URL.Path, prefixFor(loc)+"/product/")
	if slug == "" || strings.Contains(slug, "/") {
		s.renderNotFound(w, loc)
		return
	}
	p, err := s.catalog.FetchProductDetail(r.Context(), slug, loc)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.renderNotFound(w, loc)
			return
		}
		s.renderError(w, loc, err)
		return
	}
	s.render(w, "product.html", s.pageData(loc, map[string]any{
		"Product":         p,
		"Title":           p.SEOTitle,
		"MetaDescription": p.SEODescription,
		"CanonicalPath":   prefixFor(loc) + "/product/" + p.Slug,
	}))
}

func (s *Server) staticPage(loc domain.Locale, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, name, s.pageData(loc, map[string]any{}))
	}
}

// --- SEO ---

func (s *Server) canonicalBase(r *http.Request) string {
	if base := strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"); base != "" {
		return base
	}
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

type sitemapSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	data, err := s.catalog.FetchCatalogData(r.Context(), domain.LocaleEN)
	if err != nil {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	base := s.canonicalBase(r)
	set := sitemapSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, prefix := range []string{"", "/ar"} {
		for _, p := range []string{"/", "/products", "/about", "/services"} {
			set.URLs = append(set.URLs, sitemapURL{Loc: base + prefix + p})
		}
		for _, p := range data.Products {
			set.URLs = append(set.URLs, sitemapURL{Loc: base + prefix + "/product/" + p.Slug})
		}
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(set)
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "User-agent: *\nAllow: /\nSitemap: %s/sitemap.xml\n", s.canonicalBase(r))
}

// --- JSON API ---

func (s *Server) apiCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method"})
		return
	}
	loc := domain.ParseLocale(r.URL.Query().Get("locale"))
	data, err := s.catalog.FetchCatalogData(r.Context(), loc)
	if err != nil {
		log.Error().Err(err).Msg("api catalog")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "catalog unavailable"})
		return
	}
	state := filter.Parse(r.URL.Query())
	if !state.IsDefault() {
		data.Products = filter.Apply(data.Products, state)
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) apiProductBySlug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method"})
		return
	}
	slug := strings.TrimPrefix(r.URL.Path, "/api/products/")
	loc := domain.ParseLocale(r.URL.Query().Get("locale"))
	p, err := s.catalog.FetchProductDetail(r.Context(), slug, loc)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		log.Error().Err(err).Str("slug", slug).Msg("api product")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "catalog unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) apiCatalogExport(w http.ResponseWriter, r *http.Request) {
	loc := domain.ParseLocale(r.URL.Query().Get("locale"))
	data, err := s.catalog.FetchCatalogData(r.Context(), loc)
	if err != nil {
		log.Error().Err(err).Msg("catalog export")
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	f, err := export.CatalogWorkbook(data.Products)
	if err != nil {
		log.Error().Err(err).Msg("catalog workbook")
		http.Error(w, "export", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="catalog.xlsx"`)
	if err := f.Write(w); err != nil {
		log.Error().Err(err).Msg("catalog workbook write")
	}
}

func (s *Server) apiLeads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method"})
		return
	}
	var req usecase.LeadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body"})
		return
	}
	loc := domain.ParseLocale(r.URL.Query().Get("locale"))
	l, err := s.leads.Submit(r.Context(), req, loc)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidLead) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "validation"})
			return
		}
		log.Error().Err(err).Msg("lead submit")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lead"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": l.ID.String(), "status": "received"})
}

func (s *Server) apiLeadsRecent(w http.ResponseWriter, r *http.Request) {
	if s.opsToken == "" || r.Header.Get("X-Ops-Token") != s.opsToken {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	repo, ok := s.leadRepo.(interface {
		ListRecent(ctx context.Context, limit int) ([]domain.Lead, error)
	})
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"leads": []domain.Lead{}})
		return
	}
	leads, err := repo.ListRecent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("leads recent")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "leads"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

// --- rendering ---

func (s *Server) pageData(loc domain.Locale, data map[string]any) map[string]any {
	data["Locale"] = string(loc)
	data["Prefix"] = prefixFor(loc)
	if loc == domain.LocaleAR {
		data["Dir"] = "rtl"
	} else {
		data["Dir"] = "ltr"
	}
	return data
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	if m, ok := data.(map[string]any); ok {
		if _, exists := m["Year"]; !exists {
			m["Year"] = time.Now().Year()
		}
		data = m
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("tpl", name).Msg("render")
		http.Error(w, "tpl", 500)
	}
}

func (s *Server) renderNotFound(w http.ResponseWriter, loc domain.Locale) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if err := s.tmpl.ExecuteTemplate(w, "notfound.html", s.pageData(loc, map[string]any{"Year": time.Now().Year()})); err != nil {
		log.Error().Err(err).Msg("render notfound")
	}
}

func (s *Server) renderError(w http.ResponseWriter, loc domain.Locale, cause error) {
	log.Error().Err(cause).Msg("page render failed")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	if err := s.tmpl.ExecuteTemplate(w, "error.html", s.pageData(loc, map[string]any{"Year": time.Now().Year()})); err != nil {
		log.Error().Err(err).Msg("render error page")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
