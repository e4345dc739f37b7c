package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"wealthflow/internal/core"
	"wealthflow/internal/services"
)

type stateResponse struct {
	Transactions []core.Transaction `json:"transactions"`
	SavingsGoals []core.SavingsGoal `json:"savingsGoals"`
	Settings     core.AppSettings   `json:"settings"`
	Summary      core.Summary       `json:"summary"`
	Revision     int64              `json:"revision"`
}

func (s *Server) apiGetState(w http.ResponseWriter, r *http.Request) {
	state := s.finance.Snapshot()
	writeJSON(w, http.StatusOK, stateResponse{
		Transactions: nonNil(state.Transactions),
		SavingsGoals: nonNil(state.Goals),
		Settings:     state.Settings,
		Summary:      core.Summarize(state, s.finance.Now()),
		Revision:     s.finance.Revision(),
	})
}

func (s *Server) apiListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.finance.Snapshot().Transactions))
}

func (s *Server) apiCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseAPIBody(w, r)
	if !ok {
		return
	}
	change, err := s.createTransaction(r.Context(), p)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	for _, t := range s.finance.Snapshot().Transactions {
		if t.ID == change.Ref {
			writeJSON(w, http.StatusCreated, t)
			return
		}
	}
	// Deleted between dispatch and lookup.
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) apiDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if _, err := s.dispatch(r.Context(), services.DeleteTransaction{ID: mux.Vars(r)["id"]}); err != nil {
		s.writeAPIError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiListGoals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.finance.Snapshot().Goals))
}

func (s *Server) apiCreateGoal(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseAPIBody(w, r)
	if !ok {
		return
	}
	change, err := s.dispatch(r.Context(), services.AddGoal{Draft: core.GoalDraft{
		Name:    p.Get("name"),
		Target:  p.Get("targetAmount"),
		Current: p.Get("currentAmount"),
	}})
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	if g, ok := s.findGoal(change.Ref); ok {
		writeJSON(w, http.StatusCreated, g)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// apiUpdateGoal applies {"delta": n}; negative deltas withdraw.
func (s *Server) apiUpdateGoal(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseAPIBody(w, r)
	if !ok {
		return
	}
	delta, err := core.ParseDelta(p.Get("delta"))
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	id := mux.Vars(r)["id"]
	if _, err := s.dispatch(r.Context(), services.UpdateGoalAmount{ID: id, Delta: delta}); err != nil {
		s.writeAPIError(w, err)
		return
	}
	g, _ := s.findGoal(id)
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) apiDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if _, err := s.dispatch(r.Context(), services.DeleteGoal{ID: mux.Vars(r)["id"]}); err != nil {
		s.writeAPIError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.finance.Snapshot().Settings)
}

// apiUpdateSettings keeps the current value of any field the body omits.
func (s *Server) apiUpdateSettings(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseAPIBody(w, r)
	if !ok {
		return
	}
	current := s.finance.Snapshot().Settings
	update := services.UpdateSettings{
		Currency:   current.Currency,
		DailyLimit: current.DailyLimit.String(),
	}
	if p.Has("currency") {
		update.Currency = p.Get("currency")
	}
	if p.Has("dailyLimit") {
		update.DailyLimit = p.Get("dailyLimit")
	}
	if _, err := s.dispatch(r.Context(), update); err != nil {
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.finance.Snapshot().Settings)
}

func (s *Server) apiGetInsight(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.insights.Current())
}

// apiRefreshInsight waits for the advisor and returns the new status.
func (s *Server) apiRefreshInsight(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.insights.Refresh(r.Context()))
}

func (s *Server) apiSuggestCategory(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseAPIBody(w, r)
	if !ok {
		return
	}
	sug, err := s.suggestCategory(r, p)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sug)
}

func (s *Server) parseAPIBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		writeJSONError(w, status, "invalid request body")
		return nil, false
	}
	return p, true
}

func (s *Server) writeAPIError(w http.ResponseWriter, err error) {
	writeJSONError(w, statusForError(err), err.Error())
}

func (s *Server) findGoal(id string) (core.SavingsGoal, bool) {
	for _, g := range s.finance.Snapshot().Goals {
		if g.ID == id {
			return g, true
		}
	}
	return core.SavingsGoal{}, false
}

// nonNil makes empty collections encode as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
