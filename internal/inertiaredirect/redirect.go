// Package inertiaredirect implements the plain (non-conflict) redirect rules
// of the Inertia.js protocol.
package inertiaredirect

import (
	"net/http"

	"go.inout.gg/foundations/debug"
)

//nolint:gochecknoglobals
var d = debug.Debuglog("inertia/redirect")

// Redirect redirects the client to the specified URL.
//
// GET requests redirect with 302, every other method with 303 so the client
// follows up with a GET visit. See https://inertiajs.com/redirects
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	statusCode := http.StatusSeeOther
	if r.Method == http.MethodGet {
		statusCode = http.StatusFound
	}

	d("Redirecting to %s with status code %d", url, statusCode)

	http.Redirect(w, r, url, statusCode)
}
