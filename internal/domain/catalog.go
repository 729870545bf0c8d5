package domain

type StockStatus string

const (
	StockStatusIn  StockStatus = "in_stock"
	StockStatusOut StockStatus = "out_of_stock"
)

// PathEntry is one step of a category trail, root first.
type PathEntry struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// CategoryNode is a category resolved to a single locale and linked into the
// taxonomy tree. Built fresh per fetch, never persisted.
type CategoryNode struct {
	ID           string          `json:"id"`
	Slug         string          `json:"slug"`
	Title        string          `json:"title"`
	Summary      string          `json:"summary,omitempty"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	Path         []PathEntry     `json:"path"`
	Children     []*CategoryNode `json:"children"`
	ProductCount int             `json:"productCount"`
}

type Specification struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

type SizeVariant struct {
	Label string `json:"label"`
	Stock int    `json:"stock"`
}

type Product struct {
	ID             string          `json:"id"`
	Slug           string          `json:"slug"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Brand          string          `json:"brand,omitempty"`
	ImageURL       string          `json:"imageUrl"`
	Features       []string        `json:"features"`
	Specifications []Specification `json:"specifications"`
	Trail          []PathEntry     `json:"trail"`
	CategorySlugs  []string        `json:"categorySlugs"`
	StockStatus    StockStatus     `json:"stockStatus"`
	Variants       []SizeVariant   `json:"variants,omitempty"`
	TotalStock     *int            `json:"totalStock,omitempty"`
	Position       int             `json:"position"`
	SearchText     string          `json:"-"`
}

type ResourceAsset struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
	Ext      string `json:"ext,omitempty"`
	Size     int64  `json:"size,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
}

// ProductDetail extends Product with the fields only the detail page needs.
type ProductDetail struct {
	Product
	SKU            string          `json:"sku,omitempty"`
	Body           []string        `json:"body"`
	Gallery        []string        `json:"gallery"`
	Resources      []ResourceAsset `json:"resources"`
	SEOTitle       string          `json:"seoTitle,omitempty"`
	SEODescription string          `json:"seoDescription,omitempty"`
}

// CatalogData is the full normalized catalog for one locale.
type CatalogData struct {
	CategoryTree   []*CategoryNode `json:"categoryTree"`
	Products       []Product       `json:"products"`
	FeatureFilters []string        `json:"featureFilters"`
	BrandFilters   []string        `json:"brandFilters"`
}
