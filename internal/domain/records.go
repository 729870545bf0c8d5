package domain

// Raw record shapes as returned by the content source. Fields may be blank or
// inconsistent (in-progress CMS drafts); the normalizer decides what survives.

type CategoryRecord struct {
	ID       string        `json:"id"`
	Slug     string        `json:"slug"`
	Title    LocalizedText `json:"title"`
	Summary  LocalizedText `json:"summary"`
	Order    *int          `json:"order"`
	ImageURL string        `json:"imageUrl"`
	ParentID string        `json:"parentId"`
}

type SpecificationRecord struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

type VariantRecord struct {
	Label string `json:"label"`
	Stock *int   `json:"stock"`
}

type ProductRecord struct {
	ID             string                `json:"id"`
	Slug           string                `json:"slug"`
	Title          LocalizedText         `json:"title"`
	Description    LocalizedText         `json:"description"`
	Brand          LocalizedText         `json:"brand"`
	ImageURL       string                `json:"imageUrl"`
	Features       []string              `json:"features"`
	Specifications []SpecificationRecord `json:"specifications"`
	StockStatus    string                `json:"stockStatus"`
	Variants       []VariantRecord       `json:"variants"`
	CategoryPath   []string              `json:"categoryPath"`
}

type AssetRecord struct {
	Title    LocalizedText `json:"title"`
	URL      string        `json:"url"`
	Filename string        `json:"filename"`
	Ext      string        `json:"ext"`
	Size     int64         `json:"size"`
	MIMEType string        `json:"mimeType"`
}

// BodyBlocks holds the rich-text body per language as ordered HTML fragments.
type BodyBlocks struct {
	EN []string `json:"en"`
	AR []string `json:"ar"`
}

type ProductDetailRecord struct {
	ProductRecord
	SKU            string        `json:"sku"`
	Body           BodyBlocks    `json:"body"`
	Gallery        []string      `json:"gallery"`
	Resources      []AssetRecord `json:"resources"`
	SEOTitle       LocalizedText `json:"seoTitle"`
	SEODescription LocalizedText `json:"seoDescription"`
}
