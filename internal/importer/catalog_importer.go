// Package importer loads catalog data from XLSX workbooks.
//
// The first sheet is read. Row 1 is a header naming the columns; the
// recognised headers are title, description, price, discounted_price, stock,
// category, sku, size, color, variant_stock and price_diff. Consecutive rows
// sharing a title describe one product, each extra row adding a variant.
package importer

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shhiivvaam/ecommerce-backend/internal/app/service"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// RowError describes a spreadsheet row that was not imported.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type Report struct {
	Products   int        `json:"products"`
	Variants   int        `json:"variants"`
	Categories int        `json:"categories"`
	Skipped    []RowError `json:"skipped,omitempty"`
}

type CatalogImporter struct {
	products   service.ProductService
	categories service.CategoryService
}

func NewCatalogImporter(products service.ProductService, categories service.CategoryService) *CatalogImporter {
	return &CatalogImporter{products: products, categories: categories}
}

// ImportFile opens the workbook at path and imports it.
func (i *CatalogImporter) ImportFile(ctx context.Context, path string) (*Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()
	return i.importWorkbook(ctx, f)
}

// Import reads a workbook from r and imports it.
func (i *CatalogImporter) Import(ctx context.Context, r io.Reader) (*Report, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read XLSX data: %w", err)
	}
	defer f.Close()
	return i.importWorkbook(ctx, f)
}

type pendingProduct struct {
	row          int
	input        service.ProductInput
	categoryName string
}

func (i *CatalogImporter) importWorkbook(ctx context.Context, f *excelize.File) (*Report, error) {
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	columns := headerIndex(rows[0])
	if _, ok := columns["title"]; !ok {
		return nil, fmt.Errorf("header row has no title column")
	}
	if _, ok := columns["price"]; !ok {
		return nil, fmt.Errorf("header row has no price column")
	}

	report := &Report{}
	categoryIDs, err := i.existingCategories()
	if err != nil {
		return nil, err
	}

	var current *pendingProduct
	flush := func() {
		if current == nil {
			return
		}
		i.createProduct(ctx, current, categoryIDs, report)
		current = nil
	}

	for idx, raw := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rowNum := idx + 2
		row := rowReader{cells: raw, columns: columns}

		title := row.get("title")
		if title == "" {
			if row.empty() {
				continue
			}
			report.Skipped = append(report.Skipped, RowError{Row: rowNum, Reason: "title is required"})
			continue
		}

		variant, hasVariant, err := row.variant()
		if err != nil {
			report.Skipped = append(report.Skipped, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}

		if current != nil && strings.EqualFold(current.input.Title, title) {
			if hasVariant {
				current.input.Variants = append(current.input.Variants, variant)
			}
			continue
		}

		flush()
		input, err := row.product(title)
		if err != nil {
			report.Skipped = append(report.Skipped, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}
		if hasVariant {
			input.Variants = append(input.Variants, variant)
		}
		current = &pendingProduct{row: rowNum, input: input, categoryName: row.get("category")}
	}
	flush()

	logger.Info("Catalog import finished", map[string]interface{}{
		"sheet":      sheetName,
		"products":   report.Products,
		"variants":   report.Variants,
		"categories": report.Categories,
		"skipped":    len(report.Skipped),
	})
	return report, nil
}

func (i *CatalogImporter) existingCategories() (map[string]uint, error) {
	categories, err := i.categories.ListCategories()
	if err != nil {
		return nil, err
	}
	ids := make(map[string]uint, len(categories))
	for _, c := range categories {
		ids[strings.ToLower(c.Name)] = c.ID
	}
	return ids, nil
}

func (i *CatalogImporter) createProduct(ctx context.Context, p *pendingProduct, categoryIDs map[string]uint, report *Report) {
	if p.categoryName != "" {
		key := strings.ToLower(p.categoryName)
		id, ok := categoryIDs[key]
		if !ok {
			category, err := i.categories.CreateCategory(service.CategoryInput{Name: p.categoryName})
			if err != nil {
				report.Skipped = append(report.Skipped, RowError{Row: p.row, Reason: err.Error()})
				return
			}
			id = category.ID
			categoryIDs[key] = id
			report.Categories++
		}
		p.input.CategoryID = &id
	}

	product, err := i.products.CreateProduct(ctx, p.input)
	if err != nil {
		report.Skipped = append(report.Skipped, RowError{Row: p.row, Reason: err.Error()})
		return
	}
	report.Products++
	report.Variants += len(product.Variants)
}

func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for idx, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.ReplaceAll(key, " ", "_")
		if key != "" {
			columns[key] = idx
		}
	}
	return columns
}

type rowReader struct {
	cells   []string
	columns map[string]int
}

func (r rowReader) get(column string) string {
	idx, ok := r.columns[column]
	if !ok || idx >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[idx])
}

func (r rowReader) empty() bool {
	for _, cell := range r.cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func (r rowReader) product(title string) (service.ProductInput, error) {
	input := service.ProductInput{
		Title:       title,
		Description: r.get("description"),
	}

	price, err := decimal.NewFromString(r.get("price"))
	if err != nil {
		return input, fmt.Errorf("invalid price %q", r.get("price"))
	}
	input.Price = price

	if raw := r.get("discounted_price"); raw != "" {
		discounted, err := decimal.NewFromString(raw)
		if err != nil {
			return input, fmt.Errorf("invalid discounted_price %q", raw)
		}
		input.DiscountedPrice = &discounted
	}

	if input.Stock, err = r.integer("stock"); err != nil {
		return input, err
	}
	return input, nil
}

func (r rowReader) variant() (service.VariantInput, bool, error) {
	var v service.VariantInput
	size, color, sku := r.get("size"), r.get("color"), r.get("sku")
	if size == "" && color == "" && sku == "" {
		return v, false, nil
	}
	if size != "" {
		v.Size = &size
	}
	if color != "" {
		v.Color = &color
	}
	if sku != "" {
		v.SKU = &sku
	}

	stock, err := r.integer("variant_stock")
	if err != nil {
		return v, false, err
	}
	v.Stock = stock

	if raw := r.get("price_diff"); raw != "" {
		diff, err := decimal.NewFromString(raw)
		if err != nil {
			return v, false, fmt.Errorf("invalid price_diff %q", raw)
		}
		v.PriceDiff = diff
	}
	return v, true, nil
}

func (r rowReader) integer(column string) (int, error) {
	raw := r.get(column)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", column, raw)
	}
	return n, nil
}
