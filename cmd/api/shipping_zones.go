package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"parfum/internal/domain/shipping"
	"parfum/internal/params"
)

// shippingQuoteHandler godoc
//
//	@Summary		Quote shipping
//	@Description	Resolve the per-unit rate for a destination and compute the fee for a quantity. Wholesale quantities ship free and are flagged.
//	@Tags			Storefront
//	@Produce		json
//	@Param			country		query		string	true	"Destination country"
//	@Param			city		query		string	false	"Destination city"
//	@Param			quantity	query		int		true	"Total units"
//	@Success		200			{object}	shipping.Quote
//	@Failure		400			{object}	error
//	@Router			/shipping/quote [get]
func (app *application) shippingQuoteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	country := strings.TrimSpace(r.URL.Query().Get("country"))
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if country == "" {
		app.badRequestResponse(w, r, fmt.Errorf("country is required"))
		return
	}

	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || quantity < 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid quantity"))
		return
	}

	rate, err := app.store.Shipping.Lookup(ctx, country, city)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("lookup shipping rate: %w", err))
		return
	}

	quote := shipping.Fee(rate, quantity)

	app.jsonResponse(w, http.StatusOK, quote)
}

// ---------- Admin: Shipping zones ----------

func (app *application) listShippingZonesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pg := params.ParsePagination(r.URL.Query())

	zones, total, err := app.store.Shipping.List(ctx, pg.Limit, pg.Offset)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("list shipping zones: %w", err))
		return
	}
	pg.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"zones":      zones,
		"pagination": pg,
	})
}

type CreateShippingZoneRequest struct {
	Country    string  `json:"country" validate:"required,min=2,max=100"`
	City       *string `json:"city"`
	Continent  *string `json:"continent"`
	PriceCents int64   `json:"price_cents" validate:"min=0"`
	Details    *string `json:"details"`
}

func (app *application) createShippingZoneHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	var in CreateShippingZoneRequest
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	z := &shipping.Zone{
		Country:    strings.TrimSpace(in.Country),
		City:       in.City,
		Continent:  in.Continent,
		PriceCents: in.PriceCents,
		Details:    in.Details,
	}

	created, err := app.store.Shipping.Create(ctx, z)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("create shipping zone: %w", err))
		return
	}

	app.jsonResponse(w, http.StatusCreated, created)
}

func (app *application) updateShippingZoneHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	zoneID, err := pathID(r, "zoneID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var in struct {
		Country    *string `json:"country"`
		City       *string `json:"city"`
		Continent  *string `json:"continent"`
		PriceCents *int64  `json:"price_cents"`
		Details    *string `json:"details"`
	}
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	z, err := app.store.Shipping.GetByID(ctx, zoneID)
	if err != nil {
		if errors.Is(err, shipping.ErrZoneNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if in.Country != nil {
		z.Country = strings.TrimSpace(*in.Country)
	}
	if in.City != nil {
		z.City = optString(*in.City)
	}
	if in.Continent != nil {
		z.Continent = optString(*in.Continent)
	}
	if in.PriceCents != nil {
		if *in.PriceCents < 0 {
			app.badRequestResponse(w, r, fmt.Errorf("price_cents must not be negative"))
			return
		}
		z.PriceCents = *in.PriceCents
	}
	if in.Details != nil {
		z.Details = optString(*in.Details)
	}

	if err := app.store.Shipping.Update(ctx, z); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, z)
}

func (app *application) deleteShippingZoneHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	zoneID, err := pathID(r, "zoneID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Shipping.Delete(ctx, zoneID); err != nil {
		if errors.Is(err, shipping.ErrZoneNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "shipping zone deleted"})
}
