package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"parfum/internal/domain/carts"
	"parfum/internal/domain/catalog"

	"github.com/google/uuid"
)

const cartTokenHeader = "X-Cart-Token"

// cartToken returns the guest cart token from the request, minting a new
// one when absent. The token is always echoed in the response header so
// the storefront can persist it.
func (app *application) cartToken(w http.ResponseWriter, r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get(cartTokenHeader))
	if token == "" || uuid.Validate(token) != nil {
		token = uuid.NewString()
	}
	w.Header().Set(cartTokenHeader, token)
	return token
}

// renderCart writes the current cart view, substituting an empty one when
// no active cart exists for the token yet.
func (app *application) renderCart(w http.ResponseWriter, r *http.Request, token string, status int) {
	view, err := app.store.Carts.GetView(r.Context(), token)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("get cart: %w", err))
		return
	}
	if view == nil {
		view = &carts.View{Cart: carts.Cart{Token: token, Status: "active"}, Items: []carts.Line{}}
	}
	app.jsonResponse(w, status, view)
}

func (app *application) getCartHandler(w http.ResponseWriter, r *http.Request) {
	token := app.cartToken(w, r)

	// An active session keeps its cart alive.
	if err := app.store.Carts.BumpTTL(r.Context(), token); err != nil {
		app.logger.Warnw("cart ttl bump failed", "err", err)
	}

	app.renderCart(w, r, token, http.StatusOK)
}

type AddCartItemRequest struct {
	ProductID int64  `json:"product_id" validate:"required,min=1"`
	VariantID *int64 `json:"variant_id"`
	Quantity  int    `json:"quantity" validate:"min=1,max=10000"`
}

// addCartItemHandler puts a product (or one of its variants) into the
// guest cart. The unit price is resolved here, once, and stored on the
// line; later catalog price changes do not touch lines already in carts.
func (app *application) addCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	token := app.cartToken(w, r)

	var in AddCartItemRequest
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	product, err := app.store.Catalog.GetProductByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}
	if !product.IsActive {
		app.notFoundResponse(w, r, fmt.Errorf("product not found"))
		return
	}

	line := carts.Line{
		ProductID: product.ID,
		Name:      product.Name.Primary,
		Quantity:  in.Quantity,
	}
	if len(product.ImageURLs) > 0 {
		line.ImageURL = &product.ImageURLs[0]
	}

	if product.HasVariants {
		if in.VariantID == nil {
			app.badRequestResponse(w, r, fmt.Errorf("variant_id is required for this product"))
			return
		}
		variant, err := app.store.Catalog.GetVariantByID(ctx, *in.VariantID)
		if err != nil {
			if errors.Is(err, catalog.ErrVariantNotFound) {
				app.notFoundResponse(w, r, err)
				return
			}
			app.internalServerError(w, r, err)
			return
		}
		if variant.ProductID != product.ID {
			app.badRequestResponse(w, r, fmt.Errorf("variant does not belong to product"))
			return
		}
		if !variant.Purchasable() {
			app.badRequestResponse(w, r, fmt.Errorf("variant is not available"))
			return
		}
		line.VariantID = &variant.ID
		line.VariantLabel = &variant.Name
		line.UnitPriceCents = variant.SelectedUnitPriceCents()
	} else {
		if !product.InStock {
			app.badRequestResponse(w, r, fmt.Errorf("product is out of stock"))
			return
		}
		line.UnitPriceCents = catalog.EffectiveUnitPriceCents(product.PriceCents, product.DiscountCents)
	}

	if err := app.store.Carts.AddItem(ctx, token, line); err != nil {
		app.internalServerError(w, r, fmt.Errorf("add cart item: %w", err))
		return
	}

	app.renderCart(w, r, token, http.StatusCreated)
}

type UpdateCartItemRequest struct {
	ProductID int64  `json:"product_id" validate:"required,min=1"`
	VariantID *int64 `json:"variant_id"`
	Quantity  int    `json:"quantity" validate:"min=0,max=10000"`
}

// updateCartItemHandler sets a line's quantity. Zero removes the line.
func (app *application) updateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	token := app.cartToken(w, r)

	var in UpdateCartItemRequest
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Carts.UpdateItemQty(ctx, token, in.ProductID, in.VariantID, in.Quantity); err != nil {
		if errors.Is(err, carts.ErrItemNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, fmt.Errorf("update cart item: %w", err))
		return
	}

	app.renderCart(w, r, token, http.StatusOK)
}

// DELETE /v1/cart/items?product_id={id}&variant_id={id}
func (app *application) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	token := app.cartToken(w, r)

	var in struct {
		ProductID int64  `json:"product_id" validate:"required,min=1"`
		VariantID *int64 `json:"variant_id"`
	}
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Carts.RemoveItem(ctx, token, in.ProductID, in.VariantID); err != nil {
		if errors.Is(err, carts.ErrItemNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, fmt.Errorf("remove cart item: %w", err))
		return
	}

	app.renderCart(w, r, token, http.StatusOK)
}

func (app *application) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	token := app.cartToken(w, r)

	if err := app.store.Carts.Clear(ctx, token); err != nil {
		app.internalServerError(w, r, fmt.Errorf("clear cart: %w", err))
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}
