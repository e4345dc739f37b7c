package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		BodyHTML("<p>test</p>").
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "<p>test</p>" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "<p>test</p>")
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Errorf("HX-Trigger should not be set without triggers")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerLedgerChanged(7).
		TriggerFormReset().
		TriggerSuccessNotification("Transaction added").
		Write(w)

	var triggers map[string]json.RawMessage
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	for _, name := range []string{EventLedgerChanged, EventFormReset, EventNotification} {
		if _, ok := triggers[name]; !ok {
			t.Errorf("HX-Trigger missing %q", name)
		}
	}
	if string(triggers[EventLedgerChanged]) != `{"revision":7}` {
		t.Errorf("unexpected ledger payload %s", triggers[EventLedgerChanged])
	}
	if !strings.Contains(string(triggers[EventNotification]), `"type":"success"`) {
		t.Errorf("unexpected notification payload %s", triggers[EventNotification])
	}
}

func TestErrorResponse_EscapesMessage(t *testing.T) {
	tests := []struct {
		name    string
		builder *HTMXResponseBuilder
		status  int
	}{
		{"bad request", BadRequestError("<b>x</b>"), http.StatusBadRequest},
		{"unprocessable", ErrorResponse(http.StatusUnprocessableEntity, "<b>x</b>"), http.StatusUnprocessableEntity},
		{"not found", ErrorResponse(http.StatusNotFound, "<b>x</b>"), http.StatusNotFound},
		{"internal", InternalServerError("<b>x</b>"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.status {
				t.Errorf("Status code = %d, want %d", w.Code, tt.status)
			}
			if !strings.Contains(w.Body.String(), "&lt;b&gt;x&lt;/b&gt;") {
				t.Errorf("message not escaped: %s", w.Body.String())
			}
			if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
				t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
			}
		})
	}
}
