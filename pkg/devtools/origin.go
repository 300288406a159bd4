package devtools

import (
	"net/http"
	"net/url"
	"strings"
)

// OriginChecker allows requests without an origin, requests from localhost,
// and requests whose origin is listed in allow. An empty allow list accepts
// every origin.
func OriginChecker(allow []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(allow))
	for _, origin := range allow {
		if origin != "" {
			allowed[normalizeOrigin(origin)] = true
		}
	}

	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := requestOrigin(r)
		if origin == "" || isLocalhost(origin) {
			return true
		}
		return allowed[origin]
	}
}

func requestOrigin(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" {
		return normalizeOrigin(origin)
	}

	if referer := r.Header.Get("Referer"); referer != "" {
		if u, err := url.Parse(referer); err == nil {
			return normalizeOrigin(u.Scheme + "://" + u.Host)
		}
	}

	return ""
}

func normalizeOrigin(origin string) string {
	origin = strings.ToLower(origin)
	origin = strings.TrimSuffix(origin, "/")
	return origin
}

func isLocalhost(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
