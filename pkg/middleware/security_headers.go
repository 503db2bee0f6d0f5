package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// SecurityHeadersConfig holds the header values. Empty fields fall back to
// the defaults. HSTSMaxAge of zero omits Strict-Transport-Security.
type SecurityHeadersConfig struct {
	ContentSecurityPolicy string
	ReferrerPolicy        string
	HSTSMaxAge            int
}

// DefaultSecurityHeadersConfig returns headers suited to a JSON and TwiML API
// that never serves documents.
func DefaultSecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "no-referrer",
	}
}

// SecurityHeaders sets the configured headers on every response
func SecurityHeaders(cfg SecurityHeadersConfig) echo.MiddlewareFunc {
	defaults := DefaultSecurityHeadersConfig()
	if cfg.ContentSecurityPolicy == "" {
		cfg.ContentSecurityPolicy = defaults.ContentSecurityPolicy
	}
	if cfg.ReferrerPolicy == "" {
		cfg.ReferrerPolicy = defaults.ReferrerPolicy
	}
	hsts := ""
	if cfg.HSTSMaxAge > 0 {
		hsts = fmt.Sprintf("max-age=%d; includeSubDomains", cfg.HSTSMaxAge)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
			h.Set("Referrer-Policy", cfg.ReferrerPolicy)
			h.Set(echo.HeaderXContentTypeOptions, "nosniff")
			if hsts != "" {
				h.Set(echo.HeaderStrictTransportSecurity, hsts)
			}
			return next(c)
		}
	}
}
