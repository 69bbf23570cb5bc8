// Package inertiatest provides request builders for protocol-level tests.
package inertiatest

import (
	"cmp"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/pagefold/inertia/internal/inertiaheader"
)

// RequestConfig describes the Inertia protocol headers attached to a test request.
type RequestConfig struct {
	Version          string
	PartialComponent string
	ErrorBag         string
	Whitelist        []string
	Blacklist        []string
	ResetProps       []string
	Inertia          bool
}

// NewRequest creates a new request with an empty body and a matching recorder.
func NewRequest(
	method string,
	target string,
	config *RequestConfig,
) (*http.Request, *httptest.ResponseRecorder) {
	r := httptest.NewRequest(method, target, nil)

	//nolint:exhaustruct
	config = cmp.Or(config, &RequestConfig{})

	if config.Inertia {
		r.Header.Set(inertiaheader.HeaderXInertia, "true")
	}

	if config.Version != "" {
		r.Header.Set(inertiaheader.HeaderXInertiaVersion, config.Version)
	}

	if len(config.Whitelist) > 0 {
		r.Header.Set(inertiaheader.HeaderXInertiaPartialData, strings.Join(config.Whitelist, ","))
	}

	if len(config.Blacklist) > 0 {
		r.Header.Set(inertiaheader.HeaderXInertiaPartialExcept, strings.Join(config.Blacklist, ","))
	}

	if len(config.ResetProps) > 0 {
		r.Header.Set(inertiaheader.HeaderXInertiaReset, strings.Join(config.ResetProps, ","))
	}

	if config.PartialComponent != "" {
		r.Header.Set(inertiaheader.HeaderXInertiaPartialComponent, config.PartialComponent)
	}

	if config.ErrorBag != "" {
		r.Header.Set(inertiaheader.HeaderXInertiaErrorBag, config.ErrorBag)
	}

	return r, httptest.NewRecorder()
}
