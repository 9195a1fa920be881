package middleware // middleware provides shared request processing for the portal

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// GateConfig parameterizes the route gate.
type GateConfig struct {
	CookieName    string   // cookie carrying the access token
	Locales       []string // supported locale prefixes
	DefaultLocale string   // used when the path carries no locale
}

// RouteGate is the coarse navigation-time gate.  It looks only at the
// presence of the access-token cookie: requests without one are sent to
// the locale-prefixed login page, already-authenticated visits to the
// auth pages are sent to the dashboard, and everything else passes.
//
// API paths, the portal's own endpoints, health checks and asset requests
// (any path containing a dot) always pass through.  The gate never
// validates the token; the backend rejects a bad one on the first real
// call.
func RouteGate(cfg GateConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if passThrough(path) {
				return next(c)
			}

			token := ""
			if cookie, err := c.Cookie(cfg.CookieName); err == nil {
				token = cookie.Value
			}
			authPage := strings.Contains(path, "/login") || strings.Contains(path, "/register")
			locale := pathLocale(path, cfg)

			if token == "" && !authPage {
				return c.Redirect(http.StatusTemporaryRedirect, "/"+locale+"/login")
			}
			if token != "" && authPage {
				return c.Redirect(http.StatusTemporaryRedirect, "/"+locale+"/dashboard")
			}
			return next(c)
		}
	}
}

func passThrough(path string) bool {
	if strings.HasPrefix(path, "/api") || strings.HasPrefix(path, "/portal") || path == "/healthz" {
		return true
	}
	// Asset requests (favicon.ico, app.css, ...) carry a dot.
	return strings.Contains(path, ".")
}

// pathLocale extracts the leading locale segment, falling back to the
// configured default when the path has none or an unsupported one.
func pathLocale(path string, cfg GateConfig) string {
	seg := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)[0]
	for _, l := range cfg.Locales {
		if seg == l {
			return l
		}
	}
	return cfg.DefaultLocale
}
