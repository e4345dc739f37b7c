package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		wantJSON    bool
		want        map[string]string
	}{
		{
			name:        "form",
			body:        "type=expense&amount=12%2C50&description=+Lunch+",
			contentType: "application/x-www-form-urlencoded",
			want:        map[string]string{"type": "expense", "amount": "12,50", "description": "Lunch"},
		},
		{
			name:        "json with numbers",
			body:        `{"type":"income","amount":1250.5,"description":"Salary"}`,
			contentType: "application/json",
			wantJSON:    true,
			want:        map[string]string{"type": "income", "amount": "1250.5", "description": "Salary"},
		},
		{
			name:        "json keeps large numbers exact",
			body:        `{"amount":12345678901234567.89,"delta":-0.1}`,
			contentType: "application/json",
			wantJSON:    true,
			want:        map[string]string{"amount": "12345678901234567.89", "delta": "-0.1"},
		},
		{
			name:     "json without content type",
			body:     ` {"delta":"-25"}`,
			wantJSON: true,
			want:     map[string]string{"delta": "-25", "missing": ""},
		},
		{
			name: "control characters removed",
			body: "description=a%00b%07c",
			want: map[string]string{"description": "abc"},
		},
		{
			name: "empty body",
			body: "",
			want: map[string]string{"anything": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			p := NewRequestBodyParser(req)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if isJSON := p.jsonData != nil; isJSON != tt.wantJSON {
				t.Errorf("decoded as JSON = %v, want %v", isJSON, tt.wantJSON)
			}
			for key, want := range tt.want {
				if got := p.Get(key); got != want {
					t.Errorf("Get(%q) = %q, want %q", key, got, want)
				}
			}
		})
	}
}

func TestRequestBodyParser_Errors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"broken":`))
	if err := NewRequestBodyParser(req).Parse(); err == nil {
		t.Fatalf("expected JSON error")
	}

	big := strings.NewReader("description=" + strings.Repeat("x", maxBodyBytes))
	req = httptest.NewRequest(http.MethodPost, "/", big)
	if err := NewRequestBodyParser(req).Parse(); err != errBodyTooLarge {
		t.Fatalf("expected errBodyTooLarge, got %v", err)
	}
}

func TestRequestBodyParser_Has(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"currency":""}`))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !p.Has("currency") || p.Has("dailyLimit") {
		t.Fatalf("Has() mismatch")
	}
}
