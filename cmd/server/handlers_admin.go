package main

import (
	"net/http"

	"github.com/Simplici0/controlcenter/internal/finance"
	"github.com/Simplici0/controlcenter/internal/settings"
)

func (s *server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings.Get(r.Context()))
}

func (s *server) handleSettingsSave(w http.ResponseWriter, r *http.Request) {
	var in settings.Input
	if !decodeRequest(w, r, &in) {
		return
	}
	saved, err := s.settings.Save(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboard.Stats(r.Context()))
}

func (s *server) handleFinanceList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.finance.Entries(r.Context())))
}

func (s *server) handleFinanceIncome(w http.ResponseWriter, r *http.Request) {
	var in finance.EntryInput
	if !decodeRequest(w, r, &in) {
		return
	}
	entry, err := s.finance.AddIncome(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *server) handleFinanceExpense(w http.ResponseWriter, r *http.Request) {
	var in finance.EntryInput
	if !decodeRequest(w, r, &in) {
		return
	}
	entry, err := s.finance.AddExpense(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *server) handleFinanceSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.finance.MonthlyBalance(r.Context()))
}
