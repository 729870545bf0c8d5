// Package export renders downloadable catalog documents.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/qudratrading/mawared/internal/domain"
)

const sheetName = "Catalog"

// CatalogWorkbook builds an XLSX listing of the normalized product list in
// its canonical order.
func CatalogWorkbook(products []domain.Product) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	headers := []string{"#", "SKU / Slug", "Title", "Brand", "Category", "Features", "Stock"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}

	for row, p := range products {
		stock := string(p.StockStatus)
		if p.TotalStock != nil {
			stock = fmt.Sprintf("%d", *p.TotalStock)
		}
		category := ""
		if len(p.Trail) > 0 {
			parts := make([]string, 0, len(p.Trail))
			for _, e := range p.Trail {
				parts = append(parts, e.Title)
			}
			category = strings.Join(parts, " / ")
		}
		values := []any{
			p.Position + 1,
			p.Slug,
			p.Title,
			p.Brand,
			category,
			strings.Join(p.Features, ", "),
			stock,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}
