package netprovider

import (
	"net/http"
	"strings"
)

// Method is the HTTP verb of a Request.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
)

// ParseMethod maps a case-insensitive verb onto the Method enumeration.
// An empty string yields MethodGet.
func ParseMethod(s string) (Method, bool) {
	switch m := Method(strings.ToUpper(strings.TrimSpace(s))); m {
	case "":
		return MethodGet, true
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return m, true
	default:
		return "", false
	}
}

// Request describes a single call relative to the provider's base URL.
type Request struct {
	// Path is appended to the base URL as one or more path components.
	Path   string
	Method Method
	// Body is JSON-encoded by the transport when non-nil.
	Body any
}

func (r Request) method() string {
	if r.Method == "" {
		return string(MethodGet)
	}
	return string(r.Method)
}
