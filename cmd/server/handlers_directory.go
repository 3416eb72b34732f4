package main

import (
	"net/http"

	"github.com/Simplici0/controlcenter/internal/customers"
	"github.com/Simplici0/controlcenter/internal/equipment"
	"github.com/Simplici0/controlcenter/internal/suppliers"
)

func (s *server) handleCustomersList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.customers.List(r.Context())))
}

func (s *server) handleCustomersSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.customers.Summary(r.Context()))
}

func (s *server) handleCustomerGet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.customers.Find(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *server) handleCustomersCreate(w http.ResponseWriter, r *http.Request) {
	var in customers.Input
	if !decodeRequest(w, r, &in) {
		return
	}
	view, err := s.customers.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *server) handleCustomersUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in customers.Input
	if !decodeRequest(w, r, &in) {
		return
	}
	view, err := s.customers.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *server) handleCustomersDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.customers.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleSuppliersList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.suppliers.List(r.Context())))
}

func (s *server) handleSuppliersCreate(w http.ResponseWriter, r *http.Request) {
	var in suppliers.Input
	if !decodeRequest(w, r, &in) {
		return
	}
	view, err := s.suppliers.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *server) handleSuppliersUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in suppliers.Input
	if !decodeRequest(w, r, &in) {
		return
	}
	view, err := s.suppliers.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *server) handleSuppliersDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.suppliers.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handlePurchasesList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.suppliers.Purchases(r.Context())))
}

func (s *server) handlePurchasesCreate(w http.ResponseWriter, r *http.Request) {
	var in suppliers.PurchaseInput
	if !decodeRequest(w, r, &in) {
		return
	}
	view, err := s.suppliers.RecordPurchase(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *server) handleEquipmentList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.equipment.List(r.Context())))
}

func (s *server) handleEquipmentDue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.equipment.Due(r.Context())))
}

func (s *server) handleEquipmentCreate(w http.ResponseWriter, r *http.Request) {
	var in equipment.Input
	if !decodeRequest(w, r, &in) {
		return
	}
	e, err := s.equipment.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *server) handleEquipmentUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in equipment.Input
	if !decodeRequest(w, r, &in) {
		return
	}
	e, err := s.equipment.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *server) handleEquipmentDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.equipment.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleMaintenancesList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.equipment.Maintenances(r.Context())))
}

func (s *server) handleMaintenancesCreate(w http.ResponseWriter, r *http.Request) {
	var in equipment.MaintenanceInput
	if !decodeRequest(w, r, &in) {
		return
	}
	view, err := s.equipment.RecordMaintenance(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}
