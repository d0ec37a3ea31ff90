package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"catalog-backend/internal/domains/product"
)

const (
	exportSheet    = "Products"
	exportPageSize = 100
)

var exportHeaders = []string{
	"ID", "Name", "Slug", "SKU", "Category ID", "Brand ID",
	"Price", "Compare At Price", "On Sale", "Active", "Options", "Images", "Created At",
}

func (s *productService) Export(ctx context.Context, filter *product.ProductFilter) (*excelize.File, error) {
	if filter == nil {
		filter = &product.ProductFilter{}
	}
	page := *filter
	page.Limit = exportPageSize
	page.Offset = 0

	var rows []product.Product
	for len(rows) < product.MaxExportRows {
		batch, _, err := s.repo.List(ctx, &page)
		if err != nil {
			return nil, wrap("export products", err)
		}
		rows = append(rows, batch...)
		if len(batch) < page.Limit {
			break
		}
		page.Offset += page.Limit
	}
	if len(rows) > product.MaxExportRows {
		rows = rows[:product.MaxExportRows]
	}

	f, err := buildProductsWorkbook(rows)
	if err != nil {
		return nil, wrap("build product workbook", err)
	}
	return f, nil
}

func buildProductsWorkbook(products []product.Product) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		_ = f.SetCellStyle(exportSheet, "A1", last, style)
	}

	for i := range products {
		p := &products[i]
		row := []interface{}{
			p.ID.String(),
			p.Name,
			p.Slug,
			p.SKU,
			optionalID(p.CategoryID),
			optionalID(p.BrandID),
			p.Price.InexactFloat64(),
			nil,
			p.IsOnSale(),
			p.IsActive,
			len(p.OptionIDs),
			strings.Join(p.Images, "|"),
			p.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if p.CompareAtPrice != nil {
			row[7] = p.CompareAtPrice.InexactFloat64()
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f, nil
}

func optionalID(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}
