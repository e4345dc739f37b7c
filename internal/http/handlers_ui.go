package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gorilla/mux"

	"wealthflow/internal/core"
	applog "wealthflow/internal/log"
	"wealthflow/internal/services"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "index.html", s.buildPage(newFormID()))
}

// handlePartial renders one named template with fresh data.
func (s *Server) handlePartial(name string, data func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, name, data())
	}
}

func (s *Server) summaryData() any {
	return buildSummary(s.finance.Snapshot(), s.finance.Now())
}

func (s *Server) transactionsData() any {
	return buildTransactions(s.finance.Snapshot())
}

func (s *Server) goalsData() any {
	return buildGoals(s.finance.Snapshot())
}

func (s *Server) chartData() any {
	return buildChart(s.finance.Snapshot())
}

func (s *Server) insightData() any {
	return s.insightView()
}

// render executes into a buffer so a template error never leaves a half
// written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.structured.LogError(r.Context(), "Template execution failed", err,
			applog.ComponentTemplate, applog.OpRender, applog.NewFields().WithRequestID(requestID(r)))
		InternalServerError("Could not render page").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(userMessage(err)).Write(w)
		return
	}

	change, err := s.createTransaction(r.Context(), p)
	if err != nil {
		s.writeHTMLError(w, r, err)
		return
	}

	NewHTMXResponse().
		TriggerLedgerChanged(change.Revision).
		TriggerFormReset().
		TriggerSuccessNotification("Transaction added").
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	change, err := s.dispatch(r.Context(), services.DeleteTransaction{ID: mux.Vars(r)["id"]})
	if err != nil {
		s.writeHTMLError(w, r, err)
		return
	}
	// The row removes itself through hx-swap="outerHTML" with an empty body.
	NewHTMXResponse().TriggerLedgerChanged(change.Revision).Write(w)
}

// handleSuggestCategory answers with a re-rendered category <select>. 204
// means "leave the form alone": income, empty description, or a suggestion
// already in flight for this form.
func (s *Server) handleSuggestCategory(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(userMessage(err)).Write(w)
		return
	}

	sug, err := s.suggestCategory(r, p)
	if err != nil || !sug.Suggested {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.render(w, r, "category-select", struct {
		Categories []string
		Selected   string
	}{categoriesWith(sug.Category), sug.Category})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(userMessage(err)).Write(w)
		return
	}

	change, err := s.dispatch(r.Context(), services.AddGoal{Draft: core.GoalDraft{
		Name:    p.Get("name"),
		Target:  p.Get("target"),
		Current: p.Get("current"),
	}})
	if err != nil {
		s.writeHTMLError(w, r, err)
		return
	}

	NewHTMXResponse().
		TriggerGoalsChanged(change.Revision).
		TriggerFormReset().
		TriggerSuccessNotification("Goal created").
		Write(w)
}

func (s *Server) handleDepositGoal(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(userMessage(err)).Write(w)
		return
	}

	delta, err := core.ParseDelta(p.Get("amount"))
	if err != nil {
		s.writeHTMLError(w, r, err)
		return
	}
	change, err := s.dispatch(r.Context(), services.UpdateGoalAmount{ID: mux.Vars(r)["id"], Delta: delta})
	if err != nil {
		s.writeHTMLError(w, r, err)
		return
	}
	NewHTMXResponse().TriggerGoalsChanged(change.Revision).Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	change, err := s.dispatch(r.Context(), services.DeleteGoal{ID: mux.Vars(r)["id"]})
	if err != nil {
		s.writeHTMLError(w, r, err)
		return
	}
	NewHTMXResponse().TriggerGoalsChanged(change.Revision).Write(w)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(userMessage(err)).Write(w)
		return
	}

	change, err := s.dispatch(r.Context(), services.UpdateSettings{
		Currency:   p.Get("currency"),
		DailyLimit: p.Get("dailyLimit"),
	})
	if err != nil {
		s.writeHTMLError(w, r, err)
		return
	}
	NewHTMXResponse().
		TriggerSettingsChanged(change.Revision).
		TriggerSuccessNotification("Settings saved").
		Write(w)
}

// handleRefreshInsight queues a refresh and returns the card in its loading
// state; the card polls until the new insight is in.
func (s *Server) handleRefreshInsight(w http.ResponseWriter, r *http.Request) {
	s.insights.RequestRefresh()
	view := s.insightView()
	view.Status.Loading = true
	s.render(w, r, "insight", view)
}

// createTransaction is shared by the HTML form and the JSON API.
func (s *Server) createTransaction(ctx context.Context, p *RequestBodyParser) (services.Change, error) {
	typ, err := parseTransactionType(p.Get("type"))
	if err != nil {
		return services.Change{}, err
	}
	return s.dispatch(ctx, services.AddTransaction{Draft: core.TransactionDraft{
		Type:        typ,
		Amount:      p.Get("amount"),
		Description: p.Get("description"),
		Category:    p.Get("category"),
	}})
}

func (s *Server) suggestCategory(r *http.Request, p *RequestBodyParser) (services.Suggestion, error) {
	formID := p.Get("formId")
	if formID == "" {
		formID = p.Get("form_id")
	}
	if formID == "" {
		formID = s.detector.ExtractClientIP(r)
	}

	typ, err := parseTransactionType(p.Get("type"))
	if err != nil {
		return services.Suggestion{}, err
	}

	sug, err := s.categories.Suggest(r.Context(), formID, typ, p.Get("description"))
	if err != nil {
		if errors.Is(err, services.ErrSuggestionBusy) {
			applog.FromContext(r.Context()).DebugContext(r.Context(), "Suggestion already in flight", "form", formID)
		}
		return sug, err
	}
	if sug.Suggested {
		atomic.AddInt64(&s.metrics.suggestions, 1)
	}
	return sug, nil
}

// dispatch runs an action and keeps the mutation counters.
func (s *Server) dispatch(ctx context.Context, action services.Action) (services.Change, error) {
	change, err := s.finance.Dispatch(ctx, action)
	if err != nil {
		if change.Err != nil {
			atomic.AddInt64(&s.metrics.rejected, 1)
		}
		return change, err
	}
	atomic.AddInt64(&s.metrics.mutations, 1)
	s.structured.LogMutation(ctx, change.Kind, change.Ref, change.Keys, change.Revision)
	return change, nil
}

func (s *Server) writeHTMLError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= 500 {
		s.structured.LogError(r.Context(), "Request failed", err, applog.ComponentLedger, applog.OpUpdate,
			applog.NewFields().WithRequestID(requestID(r)))
	}
	ErrorResponse(status, userMessage(err)).
		TriggerErrorNotification(userMessage(err)).
		Write(w)
}

// categoriesWith returns the standard labels plus extra when the advisor
// answered with a label outside them.
func categoriesWith(extra string) []string {
	names := categoryNames()
	for _, n := range names {
		if strings.EqualFold(n, extra) {
			return names
		}
	}
	return append(names, extra)
}

func toneClass(t core.Tone) string {
	switch t {
	case core.TonePositive:
		return "tone-positive"
	case core.ToneWarning:
		return "tone-warning"
	default:
		return "tone-neutral"
	}
}
