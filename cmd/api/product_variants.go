package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"parfum/internal/domain/catalog"
)

func (app *application) listVariantsByProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := pathID(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	variants, err := app.store.Catalog.ListVariantsByProduct(ctx, productID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{"variants": variants})
}

type CreateVariantRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=100"`
	PriceCents    int64  `json:"price_cents" validate:"min=0"`
	DiscountCents int64  `json:"discount_cents" validate:"min=0"`
	InStock       bool   `json:"in_stock"`
	IsActive      bool   `json:"is_active"`
}

// createVariantHandler adds a size to a product. The product's cached
// price and stock are recomputed from the new variant set in the same
// transaction, so the storefront never sees a stale rollup.
func (app *application) createVariantHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	productID, err := pathID(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var in CreateVariantRequest
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, err := app.store.Catalog.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	v := &catalog.Variant{
		ProductID:     productID,
		Name:          in.Name,
		PriceCents:    in.PriceCents,
		DiscountCents: in.DiscountCents,
		InStock:       in.InStock,
		IsActive:      in.IsActive,
	}

	created, err := app.store.Catalog.CreateVariant(ctx, v)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, created)
}

func (app *application) updateVariantHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	variantID, err := pathID(r, "variantID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var in struct {
		Name          *string `json:"name"`
		PriceCents    *int64  `json:"price_cents"`
		DiscountCents *int64  `json:"discount_cents"`
		InStock       *bool   `json:"in_stock"`
		IsActive      *bool   `json:"is_active"`
	}
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v, err := app.store.Catalog.GetVariantByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, catalog.ErrVariantNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if in.Name != nil {
		v.Name = *in.Name
	}
	if in.PriceCents != nil {
		v.PriceCents = *in.PriceCents
	}
	if in.DiscountCents != nil {
		v.DiscountCents = *in.DiscountCents
	}
	if in.InStock != nil {
		v.InStock = *in.InStock
	}
	if in.IsActive != nil {
		v.IsActive = *in.IsActive
	}

	if err := app.store.Catalog.UpdateVariant(ctx, v); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, v)
}

func (app *application) deleteVariantHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	variantID, err := pathID(r, "variantID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Catalog.DeleteVariant(ctx, variantID); err != nil {
		if errors.Is(err, catalog.ErrVariantNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("variant %d deleted", variantID)})
}
