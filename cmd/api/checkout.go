package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"parfum/internal/domain/orders"
	"parfum/internal/domain/shipping"
	"parfum/internal/domain/storage"
	"parfum/internal/mailer"
)

type CheckoutRequest struct {
	CustomerName  string  `json:"customer_name" validate:"required,min=2,max=200"`
	CustomerEmail string  `json:"customer_email" validate:"required,email"`
	CustomerPhone string  `json:"customer_phone" validate:"required,intlphone"`
	AddressLine1  string  `json:"address_line1" validate:"required,min=3,max=300"`
	City          string  `json:"city" validate:"required,min=1,max=100"`
	Country       string  `json:"country" validate:"required,min=2,max=100"`
	PostalCode    *string `json:"postal_code"`
}

// checkoutHandler turns the guest cart into an order.
//
// The order row, its items and the cart conversion commit in one
// transaction; a failure in any of them leaves no partial order behind.
// Everything after the commit (sales counters, the confirmation email,
// cloud cleanup) is best effort and never fails the checkout.
func (app *application) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	token := app.cartToken(w, r)

	var in CheckoutRequest
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	view, err := app.store.Carts.GetView(ctx, token)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("load cart: %w", err))
		return
	}
	if view == nil || len(view.Items) == 0 {
		app.badRequestResponse(w, r, fmt.Errorf("cart is empty"))
		return
	}

	rate, err := app.store.Shipping.Lookup(ctx, in.Country, in.City)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("lookup shipping rate: %w", err))
		return
	}
	quote := shipping.Fee(rate, view.ItemCount)
	if !rate.Resolved && !quote.Wholesale {
		app.logger.Warnw("no shipping rate for destination, order proceeds unquoted",
			"country", in.Country, "city", in.City)
	}

	order := &orders.Order{
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		AddressLine1:  in.AddressLine1,
		City:          in.City,
		Country:       in.Country,
		PostalCode:    in.PostalCode,
		SubtotalCents: view.SubtotalCents,
		ShippingCents: quote.FeeCents,
		TotalCents:    view.SubtotalCents + quote.FeeCents,
		Status:        orders.StatusPending,
	}

	items := make([]orders.OrderItem, 0, len(view.Items))
	for _, l := range view.Items {
		productID := l.ProductID
		items = append(items, orders.OrderItem{
			ProductID:      &productID,
			VariantID:      l.VariantID,
			Name:           l.Name,
			VariantLabel:   l.VariantLabel,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			TotalCents:     l.LineTotalCents(),
		})
	}

	var created *orders.Order
	err = app.store.WithSalesTx(ctx, func(s *storage.SalesTx) error {
		var txErr error
		created, txErr = s.Orders.Create(ctx, order, items)
		if txErr != nil {
			return txErr
		}
		return s.Carts.Convert(ctx, view.Cart.ID)
	})
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("place order: %w", err))
		return
	}

	// Post-commit: sales counters are cosmetic, log and move on.
	for _, l := range view.Items {
		if err := app.store.Catalog.IncrementSalesCount(ctx, l.ProductID, l.Quantity); err != nil {
			app.logger.Errorw("increment sales count failed", "product_id", l.ProductID, "err", err)
		}
	}

	app.sendOrderConfirmation(created, quote.Wholesale)

	app.jsonResponse(w, http.StatusCreated, map[string]any{
		"order":                created,
		"shipping":             quote,
		"shipping_unresolved":  !rate.Resolved,
		"confirmation_pending": true,
	})
}

func (app *application) sendOrderConfirmation(o *orders.Order, wholesale bool) {
	go func() {
		data := struct {
			OrderNumber  string
			CustomerName string
			Total        string
			Wholesale    bool
		}{
			OrderNumber:  o.OrderNumber,
			CustomerName: o.CustomerName,
			Total:        fmt.Sprintf("$%d.%02d", o.TotalCents/100, o.TotalCents%100),
			Wholesale:    wholesale,
		}

		status, err := app.mailer.Send(mailer.OrderConfirmationTemplate, o.CustomerName, o.CustomerEmail, data)
		if err != nil {
			app.logger.Errorw("order confirmation email failed", "order", o.OrderNumber, "err", err)
			return
		}
		app.logger.Infow("order confirmation email sent", "order", o.OrderNumber, "status", status)
	}()
}
