// Package inertia implements the server side of the Inertia.js protocol.
//
// The package turns request-scoped props into the JSON page object the
// Inertia client expects, honoring partial reloads, merge and deferred
// loading hints, asset-version checks, and key-casing policy. It exposes a
// Renderer producing protocol-compliant responses and a Middleware handling
// the request-side protocol rules on top of the standard "net/http" and
// "html/template" packages.
//
// For detailed protocol documentation, visit https://inertiajs.com/the-protocol
package inertia

import "go.inout.gg/foundations/debug"

//nolint:gochecknoglobals
var d = debug.Debuglog("inertia")
