package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/qudratrading/mawared/internal/domain"
	"github.com/qudratrading/mawared/internal/richtext"
)

// PlaceholderImage is served when neither a product nor any category on its
// trail carries a hero image.
const PlaceholderImage = "/public/assets/img/product-placeholder.svg"

const seoDescriptionMax = 160

type CatalogUC struct {
	Source domain.ContentSource
}

// FetchCatalogData loads all categories and active products, normalizes them
// into a single locale and returns the tree, the sorted product list and the
// filter vocabularies. Either fetch failing fails the whole call.
func (uc *CatalogUC) FetchCatalogData(ctx context.Context, loc domain.Locale) (*domain.CatalogData, error) {
	var (
		catRecs  []domain.CategoryRecord
		prodRecs []domain.ProductRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := uc.Source.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		catRecs = recs
		return nil
	})
	g.Go(func() error {
		recs, err := uc.Source.ListProducts(gctx)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		prodRecs = recs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tax := newTaxonomy(catRecs, loc)

	features := map[string]struct{}{}
	brands := map[string]struct{}{}
	counts := map[string]int{}

	products := make([]domain.Product, 0, len(prodRecs))
	for _, rec := range prodRecs {
		p, ok := normalizeProduct(tax, rec, loc)
		if !ok {
			continue
		}
		for _, f := range p.Features {
			features[f] = struct{}{}
		}
		for _, s := range p.Specifications {
			for _, v := range s.Values {
				features[v] = struct{}{}
			}
		}
		if p.Brand != "" {
			brands[p.Brand] = struct{}{}
		}
		// set semantics per product, even when a trail revisits a slug
		seen := map[string]struct{}{}
		for _, slug := range p.CategorySlugs {
			if _, ok := seen[slug]; ok {
				continue
			}
			seen[slug] = struct{}{}
			counts[slug]++
		}
		products = append(products, p)
	}

	col := newCollator(loc)
	sort.SliceStable(products, func(i, j int) bool {
		if c := col.CompareString(products[i].Title, products[j].Title); c != 0 {
			return c < 0
		}
		return products[i].Slug < products[j].Slug
	})
	for i := range products {
		products[i].Position = i
	}

	tree := tax.tree(counts, col)

	return &domain.CatalogData{
		CategoryTree:   tree,
		Products:       products,
		FeatureFilters: sortedKeys(features),
		BrandFilters:   sortedKeys(brands),
	}, nil
}

// FetchProductDetail loads one product by slug together with the category set.
// A missing slug returns domain.ErrNotFound; fetch failures propagate as-is.
func (uc *CatalogUC) FetchProductDetail(ctx context.Context, slug string, loc domain.Locale) (*domain.ProductDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, domain.ErrNotFound
	}

	var (
		rec     *domain.ProductDetailRecord
		catRecs []domain.CategoryRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := uc.Source.GetProductBySlug(gctx, slug)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get product %q: %w", slug, err)
		}
		rec = r
		return nil
	})
	g.Go(func() error {
		recs, err := uc.Source.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		catRecs = recs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}

	tax := newTaxonomy(catRecs, loc)
	base, ok := normalizeProduct(tax, rec.ProductRecord, loc)
	if !ok {
		return nil, domain.ErrNotFound
	}

	d := &domain.ProductDetail{Product: base, SKU: strings.TrimSpace(rec.SKU)}

	blocks := rec.Body.EN
	if loc == domain.LocaleAR && len(rec.Body.AR) > 0 {
		blocks = rec.Body.AR
	} else if loc != domain.LocaleAR && len(blocks) == 0 {
		blocks = rec.Body.AR
	}
	for _, b := range blocks {
		if b = strings.TrimSpace(b); b != "" {
			d.Body = append(d.Body, b)
		}
	}

	for _, a := range rec.Resources {
		title := a.Title.Resolve(loc)
		url := strings.TrimSpace(a.URL)
		if title == "" && url == "" {
			continue
		}
		d.Resources = append(d.Resources, domain.ResourceAsset{
			Title:    title,
			URL:      url,
			Filename: strings.TrimSpace(a.Filename),
			Ext:      strings.TrimSpace(a.Ext),
			Size:     a.Size,
			MIMEType: strings.TrimSpace(a.MIMEType),
		})
	}

	seenURL := map[string]struct{}{}
	addImage := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" {
			return
		}
		if _, ok := seenURL[u]; ok {
			return
		}
		seenURL[u] = struct{}{}
		d.Gallery = append(d.Gallery, u)
	}
	addImage(rec.ImageURL)
	for _, u := range rec.Gallery {
		addImage(u)
	}

	d.SEOTitle = rec.SEOTitle.Resolve(loc)
	if d.SEOTitle == "" {
		d.SEOTitle = d.Title
	}
	d.SEODescription = rec.SEODescription.Resolve(loc)
	if d.SEODescription == "" && len(d.Body) > 0 {
		d.SEODescription = richtext.Excerpt(d.Body[0], seoDescriptionMax)
	}
	if d.SEODescription == "" {
		d.SEODescription = d.Description
	}
	return d, nil
}

// taxonomy indexes the category records of one fetch and memoizes ancestor
// chains. Local to a single invocation, never shared.
type taxonomy struct {
	loc    domain.Locale
	order  []string
	byID   map[string]*catEntry
	bySlug map[string]*catEntry
	paths  map[string][]domain.PathEntry
}

type catEntry struct {
	rec      domain.CategoryRecord
	title    string
	children []*catEntry
	root     bool
}

func newTaxonomy(recs []domain.CategoryRecord, loc domain.Locale) *taxonomy {
	t := &taxonomy{
		loc:    loc,
		byID:   map[string]*catEntry{},
		bySlug: map[string]*catEntry{},
		paths:  map[string][]domain.PathEntry{},
	}
	for _, rec := range recs {
		rec.ID = strings.TrimSpace(rec.ID)
		rec.Slug = strings.TrimSpace(rec.Slug)
		rec.ParentID = strings.TrimSpace(rec.ParentID)
		title := rec.Title.Resolve(loc)
		if rec.ID == "" || rec.Slug == "" || title == "" {
			log.Debug().Str("id", rec.ID).Str("slug", rec.Slug).Msg("catalog: dropped incomplete category record")
			continue
		}
		if _, dup := t.byID[rec.ID]; dup {
			continue
		}
		e := &catEntry{rec: rec, title: title}
		t.byID[rec.ID] = e
		if _, dup := t.bySlug[rec.Slug]; !dup {
			t.bySlug[rec.Slug] = e
		}
		t.order = append(t.order, rec.ID)
	}
	for _, id := range t.order {
		e := t.byID[id]
		if e.rec.ParentID == "" {
			e.root = true
			continue
		}
		parent, ok := t.byID[e.rec.ParentID]
		if !ok || parent == e {
			// unresolved parent: tolerated, the entry stays out of the tree
			continue
		}
		parent.children = append(parent.children, e)
	}
	return t
}

// path returns the ancestor chain root..self for a category id, memoized.
// The walk stops at a null parent, an unresolvable parent, or a repeated id
// (malformed cyclic input).
func (t *taxonomy) path(id string) []domain.PathEntry {
	if p, ok := t.paths[id]; ok {
		return p
	}
	var chain []*catEntry
	visited := map[string]struct{}{}
	for cur := t.byID[id]; cur != nil; {
		if _, ok := visited[cur.rec.ID]; ok {
			break
		}
		visited[cur.rec.ID] = struct{}{}
		chain = append(chain, cur)
		if cur.rec.ParentID == "" {
			break
		}
		cur = t.byID[cur.rec.ParentID]
	}
	path := make([]domain.PathEntry, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		path = append(path, domain.PathEntry{Slug: chain[i].rec.Slug, Title: chain[i].title})
	}
	t.paths[id] = path
	return path
}

// tree materializes the root nodes with recursively sorted children, ancestor
// paths and product counts.
func (t *taxonomy) tree(counts map[string]int, col *collate.Collator) []*domain.CategoryNode {
	var build func(e *catEntry) *domain.CategoryNode
	build = func(e *catEntry) *domain.CategoryNode {
		n := &domain.CategoryNode{
			ID:           e.rec.ID,
			Slug:         e.rec.Slug,
			Title:        e.title,
			Summary:      e.rec.Summary.Resolve(t.loc),
			ImageURL:     strings.TrimSpace(e.rec.ImageURL),
			Path:         t.path(e.rec.ID),
			Children:     []*domain.CategoryNode{},
			ProductCount: counts[e.rec.Slug],
		}
		for _, c := range sortEntries(e.children, col) {
			n.Children = append(n.Children, build(c))
		}
		return n
	}
	var roots []*catEntry
	for _, id := range t.order {
		if e := t.byID[id]; e.root {
			roots = append(roots, e)
		}
	}
	out := make([]*domain.CategoryNode, 0, len(roots))
	for _, e := range sortEntries(roots, col) {
		out = append(out, build(e))
	}
	return out
}

// sortEntries orders siblings by explicit order number ascending (missing
// order last), then by localized title.
func sortEntries(in []*catEntry, col *collate.Collator) []*catEntry {
	out := make([]*catEntry, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := out[i].rec.Order, out[j].rec.Order
		switch {
		case oi != nil && oj != nil && *oi != *oj:
			return *oi < *oj
		case oi != nil && oj == nil:
			return true
		case oi == nil && oj != nil:
			return false
		}
		if c := col.CompareString(out[i].title, out[j].title); c != 0 {
			return c < 0
		}
		return out[i].rec.Slug < out[j].rec.Slug
	})
	return out
}

func normalizeProduct(tax *taxonomy, rec domain.ProductRecord, loc domain.Locale) (domain.Product, bool) {
	id := strings.TrimSpace(rec.ID)
	slug := strings.TrimSpace(rec.Slug)
	title := rec.Title.Resolve(loc)
	if id == "" || slug == "" || title == "" {
		log.Debug().Str("id", id).Str("slug", slug).Msg("catalog: dropped incomplete product record")
		return domain.Product{}, false
	}

	p := domain.Product{
		ID:          id,
		Slug:        slug,
		Title:       title,
		Description: rec.Description.Resolve(loc),
		Brand:       rec.Brand.Resolve(loc),
	}

	for _, f := range rec.Features {
		if f = strings.TrimSpace(f); f != "" {
			p.Features = append(p.Features, f)
		}
	}
	for _, s := range rec.Specifications {
		key := strings.TrimSpace(s.Key)
		if key == "" {
			continue
		}
		spec := domain.Specification{Key: key}
		for _, v := range s.Values {
			if v = strings.TrimSpace(v); v != "" {
				spec.Values = append(spec.Values, v)
			}
		}
		p.Specifications = append(p.Specifications, spec)
	}

	p.Trail = resolveTrail(tax, rec.CategoryPath)
	p.CategorySlugs = make([]string, 0, len(p.Trail))
	for _, e := range p.Trail {
		p.CategorySlugs = append(p.CategorySlugs, e.Slug)
	}

	p.StockStatus, p.Variants, p.TotalStock = deriveStock(rec)
	p.ImageURL = resolveImage(tax, rec.ImageURL, p.Trail)
	p.SearchText = buildSearchText(p)
	return p, true
}

// resolveTrail rebuilds the category trail from the taxonomy when the stored
// path's leaf is known, self-healing stale intermediate entries. Otherwise the
// stored path is kept as given, with titles looked up per reference.
func resolveTrail(tax *taxonomy, stored []string) []domain.PathEntry {
	refs := make([]string, 0, len(stored))
	for _, s := range stored {
		if s = strings.TrimSpace(s); s != "" {
			refs = append(refs, s)
		}
	}
	if len(refs) == 0 {
		return nil
	}
	if leaf, ok := tax.bySlug[refs[len(refs)-1]]; ok {
		return tax.path(leaf.rec.ID)
	}
	trail := make([]domain.PathEntry, 0, len(refs))
	for _, ref := range refs {
		title := ref
		if e, ok := tax.bySlug[ref]; ok {
			title = e.title
		}
		trail = append(trail, domain.PathEntry{Slug: ref, Title: title})
	}
	return trail
}

// deriveStock: with variants the summed variant stock wins over any stored
// status; without variants the stored status is used, defaulting to in stock.
func deriveStock(rec domain.ProductRecord) (domain.StockStatus, []domain.SizeVariant, *int) {
	var variants []domain.SizeVariant
	for _, v := range rec.Variants {
		label := strings.TrimSpace(v.Label)
		if label == "" {
			continue
		}
		stock := 0
		if v.Stock != nil && *v.Stock > 0 {
			stock = *v.Stock
		}
		variants = append(variants, domain.SizeVariant{Label: label, Stock: stock})
	}
	if len(variants) > 0 {
		total := 0
		for _, v := range variants {
			total += v.Stock
		}
		status := domain.StockStatusOut
		if total > 0 {
			status = domain.StockStatusIn
		}
		return status, variants, &total
	}
	if strings.TrimSpace(rec.StockStatus) == string(domain.StockStatusOut) {
		return domain.StockStatusOut, nil, nil
	}
	return domain.StockStatusIn, nil, nil
}

// resolveImage prefers the product's own image, then the nearest trail
// category with an image searched leaf first, then the placeholder.
func resolveImage(tax *taxonomy, own string, trail []domain.PathEntry) string {
	if u := strings.TrimSpace(own); u != "" {
		return u
	}
	for i := len(trail) - 1; i >= 0; i-- {
		if e, ok := tax.bySlug[trail[i].Slug]; ok {
			if u := strings.TrimSpace(e.rec.ImageURL); u != "" {
				return u
			}
		}
	}
	return PlaceholderImage
}

func buildSearchText(p domain.Product) string {
	parts := []string{p.Title, p.Brand}
	parts = append(parts, p.Features...)
	for _, s := range p.Specifications {
		parts = append(parts, s.Values...)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func newCollator(loc domain.Locale) *collate.Collator {
	if loc == domain.LocaleAR {
		return collate.New(language.Arabic)
	}
	return collate.New(language.English)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
