package main

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/Simplici0/controlcenter/internal/apperror"
	"github.com/Simplici0/controlcenter/internal/ledger"
	"github.com/Simplici0/controlcenter/internal/pricing"
)

func (s *server) handleMaterialsList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.ledger.Materials(r.Context())))
}

func (s *server) handleMaterialsCreate(w http.ResponseWriter, r *http.Request) {
	var in ledger.MaterialInput
	if !decodeRequest(w, r, &in) {
		return
	}
	view, err := s.ledger.CreateMaterial(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *server) handleMaterialsUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in ledger.MaterialInput
	if !decodeRequest(w, r, &in) {
		return
	}
	view, err := s.ledger.UpdateMaterial(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *server) handleMaterialsDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteMaterial(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var in pricing.Input
	if !decodeRequest(w, r, &in) {
		return
	}
	res, err := s.calc.Calculate(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) lastCalculation() (pricing.Result, error) {
	res, ok := s.calc.Last()
	if !ok {
		return pricing.Result{}, &apperror.InvalidInputError{Reason: "no calculation has been made yet"}
	}
	return res, nil
}

func (s *server) handleLastCalculation(w http.ResponseWriter, r *http.Request) {
	res, ok := s.calc.Last()
	if !ok {
		writeError(w, r, &apperror.NotFoundError{Resource: "calculation", ID: "last"})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handlePromoteToProduct(w http.ResponseWriter, r *http.Request) {
	res, err := s.lastCalculation()
	if err != nil {
		writeError(w, r, err)
		return
	}
	product, err := s.catalog.PromoteCalculation(r.Context(), res)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

type promoteOrderRequest struct {
	Customer string `json:"customer" validate:"required,max=120"`
}

func (s *server) handlePromoteToOrder(w http.ResponseWriter, r *http.Request) {
	var req promoteOrderRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	res, err := s.lastCalculation()
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.orders.PromoteCalculation(r.Context(), res, req.Customer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// consumptionFilter reads the optional materialId and days query parameters.
func consumptionFilter(r *http.Request) (ledger.Filter, error) {
	var f ledger.Filter
	q := r.URL.Query()
	if raw := q.Get("materialId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, &apperror.InvalidInputError{Reason: "invalid materialId " + strconv.Quote(raw)}
		}
		f.MaterialID = &id
	}
	if raw := q.Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			return f, &apperror.InvalidInputError{Reason: "invalid days " + strconv.Quote(raw)}
		}
		f.WindowDays = &days
	}
	return f, nil
}

func (s *server) handleConsumptionList(w http.ResponseWriter, r *http.Request) {
	f, err := consumptionFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := slices.AppendSeq(make([]ledger.ConsumptionView, 0), s.ledger.ListConsumption(r.Context(), f))
	writeJSON(w, http.StatusOK, views)
}

func (s *server) handleConsumptionRecord(w http.ResponseWriter, r *http.Request) {
	var in ledger.ConsumptionInput
	if !decodeRequest(w, r, &in) {
		return
	}
	event, err := s.ledger.RecordConsumption(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (s *server) handleConsumptionSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.MonthlySummary(r.Context()))
}
