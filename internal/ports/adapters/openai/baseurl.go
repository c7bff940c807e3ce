package openai

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

const DefaultEndpoint = "http://localhost:1234"

var loopbackHosts = map[string]struct{}{
	"localhost": {},
	"127.0.0.1": {},
	"::1":       {},
}

func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultEndpoint
	}
	return strings.TrimRight(baseURL, "/")
}

// JoinURL appends apiPath to the endpoint. An empty path means DefaultAPIPath.
func JoinURL(endpoint, apiPath string) string {
	apiPath = strings.TrimSpace(apiPath)
	if apiPath == "" {
		apiPath = DefaultAPIPath
	}
	if !strings.HasPrefix(apiPath, "/") {
		apiPath = "/" + apiPath
	}
	return normalizeBaseURL(endpoint) + apiPath
}

// ValidateBaseURL checks the recognizer endpoint. Plain http is accepted only
// for loopback hosts or hosts listed in allowedHosts. A non-empty allowedHosts
// restricts https hosts too.
func ValidateBaseURL(baseURL string, allowedHosts []string) error {
	baseURL = normalizeBaseURL(baseURL)

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid OCR_API_ENDPOINT: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid OCR_API_ENDPOINT %q: absolute URL with host is required", baseURL)
	}
	if u.User != nil {
		return fmt.Errorf("invalid OCR_API_ENDPOINT %q: userinfo is not allowed", baseURL)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("invalid OCR_API_ENDPOINT %q: query and fragment are not allowed", baseURL)
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("invalid OCR_API_ENDPOINT %q: host is required", baseURL)
	}

	allowed := normalizeAllowedHosts(allowedHosts)
	_, listed := allowed[host]

	switch scheme {
	case "https":
		if len(allowed) > 0 && !listed {
			return fmt.Errorf("invalid OCR_API_ENDPOINT %q: host %q is not in OCR_ALLOWED_HOSTS", baseURL, host)
		}
	case "http":
		if !isLoopback(host) && !listed {
			return fmt.Errorf("invalid OCR_API_ENDPOINT %q: http is only allowed for loopback or OCR_ALLOWED_HOSTS", baseURL)
		}
	default:
		return fmt.Errorf("invalid OCR_API_ENDPOINT %q: http or https is required", baseURL)
	}
	return nil
}

func isLoopback(host string) bool {
	if _, ok := loopbackHosts[host]; ok {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func normalizeAllowedHosts(allowedHosts []string) map[string]struct{} {
	out := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		v := strings.ToLower(strings.TrimSpace(h))
		v = strings.TrimPrefix(v, "http://")
		v = strings.TrimPrefix(v, "https://")
		v = strings.Trim(v, "/")
		if v == "" {
			continue
		}
		if host, _, err := net.SplitHostPort(v); err == nil {
			v = host
		}
		out[v] = struct{}{}
	}
	return out
}
