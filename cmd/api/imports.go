package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"parfum/internal/domain/catalog"
	"parfum/internal/spreadsheet"
)

// exportProductsHandler streams the full catalog as an xlsx workbook.
func (app *application) exportProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	products, err := app.store.Catalog.ListAllProducts(ctx)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("list products: %w", err))
		return
	}

	categoryNames := map[int64]string{}
	brandNames := map[int64]string{}

	rows := make([]spreadsheet.ProductRow, 0, len(products))
	for _, p := range products {
		row := spreadsheet.ProductRow{
			Name:          p.Name.Primary,
			Description:   p.Description.Primary,
			PriceCents:    p.PriceCents,
			DiscountCents: p.DiscountCents,
			Audience:      string(p.Audience),
			InStock:       p.InStock,
			Active:        p.IsActive,
		}
		if p.Name.Secondary != nil {
			row.SecondaryName = *p.Name.Secondary
		}
		if p.CategoryID != nil {
			name, ok := categoryNames[*p.CategoryID]
			if !ok {
				if c, err := app.store.Catalog.GetCategoryByID(ctx, *p.CategoryID); err == nil {
					name = c.Name
				}
				categoryNames[*p.CategoryID] = name
			}
			row.Category = name
		}
		if p.BrandID != nil {
			name, ok := brandNames[*p.BrandID]
			if !ok {
				if b, err := app.store.Catalog.GetBrandByID(ctx, *p.BrandID); err == nil {
					name = b.Name
				}
				brandNames[*p.BrandID] = name
			}
			row.Brand = name
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	if err := spreadsheet.WriteProducts(&buf, rows); err != nil {
		app.internalServerError(w, r, fmt.Errorf("write workbook: %w", err))
		return
	}

	filename := fmt.Sprintf("products_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		app.logger.Errorw("write export response", "err", err)
	}
}

// importProductsHandler bulk-upserts products from an uploaded workbook.
// Rows are matched to existing products by primary name; matches are
// updated in place, the rest are created as new entries.
func (app *application) importProductsHandler(w http.ResponseWriter, r *http.Request) {
	const maxBytes = 10 * 1024 * 1024 // 10MB
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to parse form: %w", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, _, err := r.FormFile("file")
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("workbook file is required"))
		return
	}
	defer file.Close()

	rows, err := spreadsheet.ParseProducts(file)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("parse workbook: %w", err))
		return
	}
	if len(rows) == 0 {
		app.badRequestResponse(w, r, fmt.Errorf("workbook has no product rows"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	var created, updated, failed int
	var rowErrors []string

	for i, row := range rows {
		audience := catalog.Audience(row.Audience)
		if row.Audience == "" {
			audience = catalog.AudienceUnisex
		}
		if !audience.Valid() {
			failed++
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: invalid audience %q", i+2, row.Audience))
			continue
		}

		existing, err := app.store.Catalog.GetProductByName(ctx, row.Name)
		switch {
		case err == nil:
			if existing.HasVariants {
				// derived price and stock stay under variant control
				failed++
				rowErrors = append(rowErrors, fmt.Sprintf("row %d: %q has variants, price and stock not imported", i+2, row.Name))
				continue
			}
			existing.Name.Secondary = optString(row.SecondaryName)
			existing.Description.Primary = row.Description
			existing.PriceCents = row.PriceCents
			existing.DiscountCents = row.DiscountCents
			existing.InStock = row.InStock
			existing.IsActive = row.Active
			existing.Audience = audience
			app.attachTaxonomy(ctx, existing, row)
			if err := app.store.Catalog.UpdateProduct(ctx, existing); err != nil {
				failed++
				rowErrors = append(rowErrors, fmt.Sprintf("row %d: update: %v", i+2, err))
				continue
			}
			updated++

		case errors.Is(err, catalog.ErrProductNotFound):
			p := &catalog.Product{
				Name:          catalog.LocalizedText{Primary: row.Name, Secondary: optString(row.SecondaryName)},
				Description:   catalog.LocalizedText{Primary: row.Description},
				Slug:          generateSlug(row.Name),
				PriceCents:    row.PriceCents,
				DiscountCents: row.DiscountCents,
				InStock:       row.InStock,
				IsActive:      row.Active,
				Audience:      audience,
			}
			app.attachTaxonomy(ctx, p, row)
			if _, err := app.store.Catalog.CreateProduct(ctx, p); err != nil {
				failed++
				rowErrors = append(rowErrors, fmt.Sprintf("row %d: create: %v", i+2, err))
				continue
			}
			created++

		default:
			failed++
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: lookup: %v", i+2, err))
		}
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"created": created,
		"updated": updated,
		"failed":  failed,
		"errors":  rowErrors,
	})
}

// attachTaxonomy resolves the workbook's category and brand names to ids.
// Unknown names are left unset rather than failing the row.
func (app *application) attachTaxonomy(ctx context.Context, p *catalog.Product, row spreadsheet.ProductRow) {
	if name := strings.TrimSpace(row.Category); name != "" {
		if c, err := app.store.Catalog.GetCategoryBySlug(ctx, generateSlug(name)); err == nil {
			p.CategoryID = &c.ID
		}
	}
	if name := strings.TrimSpace(row.Brand); name != "" {
		if b, err := app.store.Catalog.GetBrandBySlug(ctx, generateSlug(name)); err == nil {
			p.BrandID = &b.ID
		}
	}
}
