package security

import (
	"fmt"
	"net/http"
	"strings"
)

// HeadersConfig holds the response headers applied to every request.
type HeadersConfig struct {
	// PageCSP covers the dashboard and its partials; APICSP covers paths
	// under APIPrefix, which never load subresources.
	PageCSP   string
	APICSP    string
	APIPrefix string

	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	FrameOptions        string
	ReferrerPolicy      string
	PermissionsPolicy   string
	CrossOriginOpener   string
	CrossOriginEmbedder string
	CrossOriginResource string

	// NoStoreDynamic marks API and HTMX responses uncacheable, since they
	// reflect the ledger at request time.
	NoStoreDynamic bool
}

// DefaultHeadersConfig allows htmx from unpkg and inline goal colours.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		PageCSP: strings.Join([]string{
			"default-src 'self'",
			"script-src 'self' https://unpkg.com",
			"style-src 'self' 'unsafe-inline'",
			"img-src 'self' data:",
			"connect-src 'self'",
			"object-src 'none'",
			"frame-ancestors 'none'",
			"base-uri 'self'",
			"form-action 'self'",
		}, "; "),
		APICSP:    "default-src 'none'; frame-ancestors 'none'",
		APIPrefix: "/api/",

		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,

		FrameOptions:      "DENY",
		ReferrerPolicy:    "strict-origin-when-cross-origin",
		PermissionsPolicy: "geolocation=(), microphone=(), camera=(), payment=()",
		CrossOriginOpener: "same-origin",
		// htmx is loaded cross-origin, which require-corp would block.
		CrossOriginEmbedder: "",
		CrossOriginResource: "same-origin",
		NoStoreDynamic:      true,
	}
}

// HeadersMiddleware applies security headers to responses.
type HeadersMiddleware struct {
	config HeadersConfig
	common map[string]string
	hsts   string
}

// NewHeadersMiddleware precomputes the header set from config.
func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	common := map[string]string{
		"X-Content-Type-Options": "nosniff",
	}
	for name, value := range map[string]string{
		"X-Frame-Options":              config.FrameOptions,
		"Referrer-Policy":              config.ReferrerPolicy,
		"Permissions-Policy":           config.PermissionsPolicy,
		"Cross-Origin-Opener-Policy":   config.CrossOriginOpener,
		"Cross-Origin-Embedder-Policy": config.CrossOriginEmbedder,
		"Cross-Origin-Resource-Policy": config.CrossOriginResource,
	} {
		if value != "" {
			common[name] = value
		}
	}

	var hsts string
	if config.HSTSMaxAge > 0 {
		hsts = fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
	}
	return &HeadersMiddleware{config: config, common: common, hsts: hsts}
}

func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		for name, value := range h.common {
			headers.Set(name, value)
		}

		api := h.config.APIPrefix != "" && strings.HasPrefix(r.URL.Path, h.config.APIPrefix)
		if csp := h.csp(api); csp != "" {
			headers.Set("Content-Security-Policy", csp)
		}
		if h.config.NoStoreDynamic && (api || r.Header.Get("HX-Request") == "true") {
			headers.Set("Cache-Control", "no-store")
		}
		// HSTS is ignored by browsers over plain HTTP.
		if r.TLS != nil && h.hsts != "" {
			headers.Set("Strict-Transport-Security", h.hsts)
		}

		next.ServeHTTP(w, r)
	})
}

func (h *HeadersMiddleware) csp(api bool) string {
	if api && h.config.APICSP != "" {
		return h.config.APICSP
	}
	return h.config.PageCSP
}

// StaticAssetMiddleware lets browsers cache embedded assets for maxAge seconds.
// The assets ship inside the binary, so they only change on redeploy.
func StaticAssetMiddleware(maxAge int) func(http.Handler) http.Handler {
	value := "no-cache"
	if maxAge > 0 {
		value = fmt.Sprintf("public, max-age=%d", maxAge)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", value)
			next.ServeHTTP(w, r)
		})
	}
}
