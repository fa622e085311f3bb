package router

import (
	"fmt"
	"strings"

	"github.com/gazon-app/waitlist/pkg/utils"
)

const (
	defaultMaxBodyBytes = 1 << 20
	defaultHSTSMaxAge   = 31536000
)

// httpPolicy holds the transport settings taken from the environment at startup.
type httpPolicy struct {
	trustedProxies []string

	corsAnyOrigin bool
	corsOrigins   map[string]struct{}

	maxBodyBytes int64

	hstsEnabled bool
	hstsHeader  string
}

func loadHTTPPolicy() httpPolicy {
	p := httpPolicy{
		trustedProxies: parseTrustedProxies(utils.GetEnvTrimmed("TRUSTED_PROXIES")),
		corsOrigins:    make(map[string]struct{}),
		maxBodyBytes:   int64(utils.GetEnvPositiveInt("MAX_REQUEST_BODY_BYTES", defaultMaxBodyBytes)),
	}

	for _, origin := range splitList(utils.GetEnvTrimmed("CORS_ALLOWED_ORIGIN")) {
		if origin == "*" {
			p.corsAnyOrigin = true
			continue
		}
		p.corsOrigins[origin] = struct{}{}
	}

	// Production gets HSTS unless HSTS_ENABLED says otherwise.
	appEnv := strings.ToLower(utils.GetEnvTrimmed("APP_ENV"))
	p.hstsEnabled = utils.GetEnvBool("HSTS_ENABLED", appEnv == "production" || appEnv == "prod")
	p.hstsHeader = fmt.Sprintf("max-age=%d", utils.GetEnvPositiveInt("HSTS_MAX_AGE", defaultHSTSMaxAge))
	if utils.GetEnvBool("HSTS_INCLUDE_SUBDOMAINS", true) {
		p.hstsHeader += "; includeSubDomains"
	}

	return p
}

func (p httpPolicy) corsConfigured() bool {
	return p.corsAnyOrigin || len(p.corsOrigins) > 0
}

func (p httpPolicy) originAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	if p.corsAnyOrigin {
		return true
	}
	_, ok := p.corsOrigins[origin]
	return ok
}

// parseTrustedProxies returns nil for an empty value so ClientIP falls back to
// RemoteAddr. "*" trusts every address and is meant for local setups.
func parseTrustedProxies(raw string) []string {
	if raw == "*" {
		return []string{"0.0.0.0/0", "::/0"}
	}
	return splitList(raw)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
