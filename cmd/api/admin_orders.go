package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"parfum/internal/domain/orders"
	"parfum/internal/invoice"
	"parfum/internal/mailer"
	"parfum/internal/params"
)

// adminListOrdersHandler godoc
//
//	@Summary		List orders (admin)
//	@Description	List all orders for the back office. Supports optional status filter and pagination.
//	@Tags			Admin-Orders
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status"	Enums(pending,shipped,delivered,cancelled)
//	@Param			page	query		int		false	"Page number (default: 1)"
//	@Param			limit	query		int		false	"Items per page (default: 20, max: 50)"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	error
//	@Router			/admin/orders [get]
//	@Security		ApiKeyAuth
func (app *application) adminListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	p := params.ParsePagination(r.URL.Query())

	// "accepted" survives as a legacy alias in old dashboard links.
	if status == "accepted" {
		status = string(orders.StatusShipped)
	}
	if status != "" && !orders.Status(status).Valid() {
		app.badRequestResponse(w, r, fmt.Errorf("invalid status %q", status))
		return
	}

	ordersList, total, err := app.store.Orders.ListAll(ctx, status, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"orders":     ordersList,
		"pagination": p,
		"status":     status,
	})
}

func (app *application) adminGetOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	orderID, err := pathID(r, "orderID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	detail, err := app.store.Orders.GetDetail(ctx, orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, detail)
}

type AdminUpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (app *application) adminUpdateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	orderID, err := pathID(r, "orderID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var in AdminUpdateOrderStatusRequest
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	next := orders.Status(strings.TrimSpace(in.Status))
	if next == "accepted" {
		next = orders.StatusShipped
	}
	if !next.Valid() {
		app.badRequestResponse(w, r, fmt.Errorf("invalid status %q", in.Status))
		return
	}

	updated, err := app.store.Orders.UpdateStatus(ctx, orderID, next)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, orders.ErrAlreadyCancelled), errors.Is(err, orders.ErrInvalidTransition):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"message": "status updated",
		"order":   updated,
	})
}

// adminAcceptOrderHandler marks an order shipped and notifies the
// customer. The email is best effort.
func (app *application) adminAcceptOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	orderID, err := pathID(r, "orderID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	updated, err := app.store.Orders.Accept(ctx, orderID)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, orders.ErrAlreadyCancelled), errors.Is(err, orders.ErrInvalidTransition):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	go func(o *orders.Order) {
		data := struct {
			OrderNumber  string
			CustomerName string
		}{
			OrderNumber:  o.OrderNumber,
			CustomerName: o.CustomerName,
		}
		if _, err := app.mailer.Send(mailer.OrderAcceptedTemplate, o.CustomerName, o.CustomerEmail, data); err != nil {
			app.logger.Errorw("order accepted email failed", "order", o.OrderNumber, "err", err)
		}
	}(updated)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"message": "order accepted",
		"order":   updated,
	})
}

func (app *application) adminCancelOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	orderID, err := pathID(r, "orderID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Orders.Cancel(ctx, orderID); err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, orders.ErrAlreadyCancelled), errors.Is(err, orders.ErrInvalidTransition):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "order cancelled"})
}

type AdminVerifyOrderRequest struct {
	IsVerified bool `json:"is_verified"`
}

// adminVerifyOrderHandler toggles the ghost-order flag set after a
// customer confirms the order by phone.
func (app *application) adminVerifyOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	orderID, err := pathID(r, "orderID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var in AdminVerifyOrderRequest
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Orders.SetVerified(ctx, orderID, in.IsVerified); err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"message":     "verification updated",
		"is_verified": in.IsVerified,
	})
}

// adminDeleteOrderHandler removes an order and its items, then re-checks
// that the row is really gone before reporting success.
func (app *application) adminDeleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	orderID, err := pathID(r, "orderID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Orders.Delete(ctx, orderID); err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, orders.ErrDeleteNotConfirmed):
			app.internalServerError(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "order deleted"})
}

// adminOrderInvoiceHandler streams the order invoice as a PDF download.
func (app *application) adminOrderInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	orderID, err := pathID(r, "orderID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	detail, err := app.store.Orders.GetDetail(ctx, orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	pdf, err := invoice.Render(&detail.Order, detail.Items)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("render invoice: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="invoice_%s.pdf"`, detail.Order.OrderNumber))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		app.logger.Errorw("write invoice response", "order", detail.Order.OrderNumber, "err", err)
	}
}
