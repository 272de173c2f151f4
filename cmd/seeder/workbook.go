// cmd/seeder/workbook.go
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
)

// Sheet names expected in the seed workbook. Missing sheets are skipped.
const (
	sheetCenters      = "Centers"
	sheetProducts     = "Products"
	sheetResellers    = "Resellers"
	sheetOpeningStock = "Opening Stock"
)

// OpeningStock is one row of the opening stock sheet
type OpeningStock struct {
	CenterID uuid.UUID
	SKU      string
	Quantity int
	Serials  []string
}

// SeedData is the parsed content of a seed workbook
type SeedData struct {
	Centers   []*domain.Center
	Products  []*domain.Product
	Resellers []*domain.Reseller
	Stock     []OpeningStock
}

// ProductBySKU returns the seeded product with sku, or nil
func (d *SeedData) ProductBySKU(sku string) *domain.Product {
	for _, p := range d.Products {
		if strings.EqualFold(p.SKU, sku) {
			return p
		}
	}
	return nil
}

func loadWorkbook(path string) (*SeedData, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed workbook: %w", err)
	}
	return parseWorkbook(file)
}

func parseWorkbook(file *xlsx.File) (*SeedData, error) {
	data := &SeedData{}

	steps := []struct {
		sheet string
		parse func(row int, get func(int) string) error
	}{
		{sheetCenters, func(row int, get func(int) string) error {
			id, err := parseID(get(0))
			if err != nil {
				return err
			}
			kind := domain.CenterType(strings.ToLower(get(2)))
			if !kind.IsValid() {
				return fmt.Errorf("unknown center type %q", get(2))
			}
			data.Centers = append(data.Centers, &domain.Center{ID: id, Name: get(1), Type: kind, Active: true})
			return nil
		}},
		{sheetProducts, func(row int, get func(int) string) error {
			id, err := parseID(get(0))
			if err != nil {
				return err
			}
			if get(1) == "" {
				return fmt.Errorf("sku is required")
			}
			data.Products = append(data.Products, &domain.Product{
				ID: id, SKU: get(1), Name: get(2), Serialized: isYes(get(3)), Enabled: true,
			})
			return nil
		}},
		{sheetResellers, func(row int, get func(int) string) error {
			id, err := parseID(get(0))
			if err != nil {
				return err
			}
			outlet, err := uuid.Parse(get(2))
			if err != nil {
				return fmt.Errorf("invalid outlet center id %q", get(2))
			}
			data.Resellers = append(data.Resellers, &domain.Reseller{ID: id, Name: get(1), OutletCenterID: outlet, Active: true})
			return nil
		}},
		{sheetOpeningStock, func(row int, get func(int) string) error {
			center, err := uuid.Parse(get(0))
			if err != nil {
				return fmt.Errorf("invalid center id %q", get(0))
			}
			qty, err := strconv.Atoi(get(2))
			if err != nil || qty <= 0 {
				return fmt.Errorf("invalid quantity %q", get(2))
			}
			data.Stock = append(data.Stock, OpeningStock{CenterID: center, SKU: get(1), Quantity: qty, Serials: splitSerials(get(3))})
			return nil
		}},
	}

	for _, step := range steps {
		sheet, ok := file.Sheet[step.sheet]
		if !ok {
			continue
		}
		if err := forEachDataRow(sheet, step.parse); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", step.sheet, err)
		}
	}

	if err := data.validate(); err != nil {
		return nil, err
	}
	return data, nil
}

func (d *SeedData) validate() error {
	for _, s := range d.Stock {
		p := d.ProductBySKU(s.SKU)
		if p == nil {
			return fmt.Errorf("opening stock references unknown sku %q", s.SKU)
		}
		if p.Serialized && len(s.Serials) != s.Quantity {
			return fmt.Errorf("sku %s at %s: %d serials for quantity %d", s.SKU, s.CenterID, len(s.Serials), s.Quantity)
		}
		if !p.Serialized && len(s.Serials) > 0 {
			return fmt.Errorf("sku %s is not serialized", s.SKU)
		}
	}
	return nil
}

// forEachDataRow calls fn for every non-empty row after the header
func forEachDataRow(sheet *xlsx.Sheet, fn func(row int, get func(int) string) error) error {
	rowIdx := 0
	return sheet.ForEachRow(func(r *xlsx.Row) error {
		rowIdx++
		// Skip header
		if rowIdx == 1 {
			return nil
		}

		get := func(i int) string {
			c := r.GetCell(i)
			if c == nil {
				return ""
			}
			if s, err := c.FormattedValue(); err == nil {
				return strings.TrimSpace(s)
			}
			return strings.TrimSpace(c.String())
		}
		if get(0) == "" {
			return nil
		}
		if err := fn(rowIdx, get); err != nil {
			return fmt.Errorf("row %d: %w", rowIdx, err)
		}
		return nil
	})
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func isYes(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

func splitSerials(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
