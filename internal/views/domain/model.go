package domain

import (
	"errors"
	"net/http"
	"strings"
)

const UnknownIP = "unknown"

var ErrProjectNotFound = errors.New("project not found")

// Result is the outcome of recording a view.
type Result struct {
	Views   int64 `json:"views"`
	Counted bool  `json:"counted"`
}

// ClientIP resolves the caller address from proxy headers:
// CF-Connecting-IP, then X-Real-IP, then the first X-Forwarded-For entry.
func ClientIP(h http.Header) string {
	if ip := strings.TrimSpace(h.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(h.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if xff := h.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return UnknownIP
}
