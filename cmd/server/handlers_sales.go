package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/controlcenter/internal/billing"
	"github.com/Simplici0/controlcenter/internal/catalog"
	"github.com/Simplici0/controlcenter/internal/orders"
)

// decisionNotifier answers the automatic consumption prompt with the choice
// the client sent along with the request and keeps what it was told.
type decisionNotifier struct {
	accept   bool
	prompt   string
	warnings []string
}

func (n *decisionNotifier) Confirm(_ context.Context, message string) bool {
	n.prompt = message
	return n.accept
}

func (n *decisionNotifier) Warn(_ context.Context, message string) {
	n.warnings = append(n.warnings, message)
}

type createOrderRequest struct {
	orders.Input
	AutoConsume bool `json:"autoConsume"`
}

type createOrderResponse struct {
	orders.Created
	Prompt   string   `json:"prompt,omitempty"`
	Warnings []string `json:"warnings"`
}

func (s *server) handleOrdersList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.orders.List(r.Context())))
}

func (s *server) handleOrdersCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	n := &decisionNotifier{accept: req.AutoConsume}
	created, err := s.orders.Create(r.Context(), req.Input, n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createOrderResponse{Created: created, Prompt: n.prompt, Warnings: orEmpty(n.warnings)})
}

func (s *server) handleOrdersUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in orders.Input
	if !decodeRequest(w, r, &in) {
		return
	}
	view, err := s.orders.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *server) handleOrdersDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.orders.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type invoiceOrderRequest struct {
	Phone string `json:"phone" validate:"max=40"`
}

func (s *server) handleOrderInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req invoiceOrderRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	inv, err := s.billing.InvoiceOrder(r.Context(), id, req.Phone)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *server) handleProductsList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.catalog.List(r.Context())))
}

func (s *server) handleProductsCreate(w http.ResponseWriter, r *http.Request) {
	var in catalog.Input
	if !decodeRequest(w, r, &in) {
		return
	}
	p, err := s.catalog.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *server) handleProductsUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in catalog.Input
	if !decodeRequest(w, r, &in) {
		return
	}
	p, err := s.catalog.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleProductsDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.catalog.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleInvoicesList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.billing.Invoices(r.Context())))
}

func (s *server) handleInvoicesCreate(w http.ResponseWriter, r *http.Request) {
	var in billing.InvoiceInput
	if !decodeRequest(w, r, &in) {
		return
	}
	inv, err := s.billing.CreateInvoice(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *server) handleInvoiceGet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := s.billing.Invoice(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *server) handleInvoiceText(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := s.billing.Invoice(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(billing.RenderText(inv, s.settings.Get(r.Context()))))
}

func (s *server) handleInvoicePDF(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := s.billing.Invoice(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Render fully before writing so a failure can still become a JSON error.
	var buf bytes.Buffer
	if err := billing.RenderPDF(&buf, inv, s.settings.Get(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="factura-%d.pdf"`, inv.Number))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.billing.Quotes(r.Context())))
}

func (s *server) handleQuotesCreate(w http.ResponseWriter, r *http.Request) {
	var in billing.QuoteInput
	if !decodeRequest(w, r, &in) {
		return
	}
	q, err := s.billing.CreateQuote(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (s *server) handleQuoteConvert(w http.ResponseWriter, r *http.Request) {
	// Converted orders start as Pending, so no consumption is proposed.
	view, err := s.billing.ConvertQuote(r.Context(), chi.URLParam(r, "id"), &decisionNotifier{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}
