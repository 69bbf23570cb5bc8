// Package inertiaheader lists the HTTP headers of the Inertia.js protocol.
package inertiaheader

const (
	HeaderXInertia                 = "X-Inertia"                   // client/server, protocol marker
	HeaderXInertiaVersion          = "X-Inertia-Version"           // client, last-known asset version
	HeaderXInertiaLocation         = "X-Inertia-Location"          // server, location echo for 409 visits
	HeaderXInertiaPartialData      = "X-Inertia-Partial-Data"      // client, key allowlist
	HeaderXInertiaPartialExcept    = "X-Inertia-Partial-Except"    // client, key blocklist
	HeaderXInertiaPartialComponent = "X-Inertia-Partial-Component" // client, partial reload target
	HeaderXInertiaReset            = "X-Inertia-Reset"             // client, force replace over merge
	HeaderXInertiaErrorBag         = "X-Inertia-Error-Bag"         // client, error namespace

	// HeaderXInertiaForceLocation marks an outgoing redirect that must be
	// surfaced as a protocol location visit (409) even when the target is
	// local. The middleware consumes and strips it before flushing.
	HeaderXInertiaForceLocation = "X-Inertia-Force-Location"

	HeaderVary        = "Vary"
	HeaderLocation    = "Location"
	HeaderContentType = "Content-Type"
	HeaderReferer     = "Referer"
)

const (
	ContentTypeHTML = "text/html"
	ContentTypeJSON = "application/json"
)
