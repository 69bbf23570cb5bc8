package inertia

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"

	"go.inout.gg/foundations/debug"
	"go.inout.gg/foundations/must"

	"github.com/pagefold/inertia/internal/inertiaheader"
)

type ctxKey struct{}

//nolint:gochecknoglobals
var kCtxKey = ctxKey{}

// https://inertiajs.com/redirects#303-response-code
//
//nolint:gochecknoglobals
var seeOtherMethods = []string{http.MethodPatch, http.MethodPut, http.MethodDelete}

//nolint:gochecknoglobals
var seeOtherStatuses = []int{http.StatusMovedPermanently, http.StatusFound}

var DefaultEmptyResponseHandler = func(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "Empty response", http.StatusNoContent)
}

var DefaultVersionMismatchHandler = func(w http.ResponseWriter, r *http.Request) {
	Location(w, r, r.RequestURI)
}

// MiddlewareConfig configures the behavior of the Inertia.js middleware.
type MiddlewareConfig struct {
	// EmptyResponseHandler is called when a handler produces no response body.
	//
	// If nil, defaults to returning HTTP 204 No Content with an error message.
	EmptyResponseHandler http.HandlerFunc

	// VersionMismatchHandler is called when the client's asset version doesn't match the server's.
	//
	// If nil, defaults to a 409 location visit to the current URL so the
	// client reloads the page with fresh assets.
	VersionMismatchHandler http.HandlerFunc
}

func (m *MiddlewareConfig) defaults() {
	if m.EmptyResponseHandler == nil {
		m.EmptyResponseHandler = DefaultEmptyResponseHandler
	}

	if m.VersionMismatchHandler == nil {
		m.VersionMismatchHandler = DefaultVersionMismatchHandler
	}

	debug.Assert(m.EmptyResponseHandler != nil, "EmptyResponseHandler must be set")
	debug.Assert(m.VersionMismatchHandler != nil, "VersionMismatchHandler must be set")
}

// NewMiddleware creates an HTTP middleware that enables Inertia.js protocol handling.
//
// For every request it installs the renderer and a shared prop store on the
// request context, stamps the Vary header and pops pending flash data off its
// cookie. Non-Inertia requests pass through otherwise untouched (full page
// load).
//
// For Inertia requests it applies the protocol rules:
//   - a GET request carrying a stale X-Inertia-Version is answered with a
//     409 location visit to the current URL, carrying pending flash data
//     forward so it survives the forced reload;
//   - 301/302 redirects in response to PUT, PATCH or DELETE become 303 so
//     the follow-up request is a GET;
//   - redirects to external hosts, and redirects marked with ForceLocation,
//     become 409 responses with the target echoed in X-Inertia-Location.
//
// Once the middleware is set up, Render can be used to create Inertia responses.
func NewMiddleware(renderer *Renderer, opts ...func(*MiddlewareConfig)) func(http.Handler) http.Handler {
	var config MiddlewareConfig
	for _, opt := range opts {
		opt(&config)
	}

	config.defaults()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			r = WithStore(r.WithContext(context.WithValue(r.Context(), kCtxKey, renderer)))

			h.Set(inertiaheader.HeaderVary, inertiaheader.HeaderXInertia)

			// Flash data is one-shot: pop it for full page loads too, or the
			// cookie survives and the same flash renders twice.
			r = popFlash(w, r)

			if !isInertiaRequest(r) {
				next.ServeHTTP(w, r)
				return
			}

			// The version check is GET-only: a stale non-GET request must
			// still reach its handler so the mutation is not lost.
			clientVersion := r.Header.Get(inertiaheader.HeaderXInertiaVersion)
			if r.Method == http.MethodGet && clientVersion != renderer.Version() {
				if fl := FlashFromRequest(r); len(fl) > 0 {
					if err := SetFlash(w, fl); err != nil {
						d("failed to carry flash data over version mismatch: %v", err)
					}
				}

				config.VersionMismatchHandler(w, r)

				return
			}

			rww := newResponseWriter(w)
			next.ServeHTTP(rww, r)

			rewriteRedirect(rww, r)

			if rww.Empty() {
				config.EmptyResponseHandler(w, r)
				return
			}

			rww.flush()
		})
	}
}

// rewriteRedirect applies the protocol's redirect rules to a buffered
// response before it is flushed.
func rewriteRedirect(w *responseWriter, r *http.Request) {
	h := w.Header()

	forced := h.Get(inertiaheader.HeaderXInertiaForceLocation) != ""
	h.Del(inertiaheader.HeaderXInertiaForceLocation)

	if w.statusCode < 300 || w.statusCode > 399 {
		return
	}

	location := h.Get(inertiaheader.HeaderLocation)
	if location == "" {
		return
	}

	if forced || isExternalURL(r, location) {
		d("rewriting redirect to %s as a 409 location visit", location)

		h.Del(inertiaheader.HeaderLocation)
		h.Del(inertiaheader.HeaderVary)
		h.Del(inertiaheader.HeaderXInertia)
		h.Set(inertiaheader.HeaderXInertiaLocation, location)
		w.discardBody()
		w.WriteHeader(http.StatusConflict)

		return
	}

	if slices.Contains(seeOtherStatuses, w.statusCode) &&
		slices.Contains(seeOtherMethods, r.Method) {
		w.WriteHeader(http.StatusSeeOther)
	}
}

// isExternalURL reports whether location points outside the serving host.
func isExternalURL(r *http.Request, location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}

	return u.Host != "" && u.Host != r.Host
}

// responseWriter buffers the handler's response so the middleware can
// rewrite the status and headers after the handler returns.
type responseWriter struct {
	http.ResponseWriter
	body       bytes.Buffer
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w} //nolint:exhaustruct
}

// WriteHeader records the status code. The last recorded code wins; nothing
// reaches the wire until flush.
func (w *responseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}

	return w.body.Write(b) //nolint:wrapcheck
}

// Empty reports whether the handler produced neither a status nor a body.
func (w *responseWriter) Empty() bool {
	return w.statusCode == 0 && w.body.Len() == 0
}

func (w *responseWriter) discardBody() { w.body.Reset() }

// flush sends the buffered response to the underlying writer.
func (w *responseWriter) flush() {
	w.ResponseWriter.WriteHeader(cmp.Or(w.statusCode, http.StatusOK))
	_, _ = w.body.WriteTo(w.ResponseWriter)
}

// RenderContext contains all configuration and data for rendering an Inertia.js page response.
// It includes props, validation errors, history management options, and performance settings.
type RenderContext struct {
	// T is custom data passed to the HTML template via html/template.
	T any

	// Props are the properties sent to the page component. They overlay the
	// request's shared prop store with render-time precedence.
	Props []Prop

	// ErrorBag specifies the validation error bag name for scoped error handling.
	// When empty, the bag declared by the X-Inertia-Error-Bag header applies.
	ErrorBag string

	// ValidationErrorer contains validation errors to be sent to the client.
	ValidationErrorer []ValidationErrorer

	// EncryptHistory instructs the client to encrypt the history state for this page.
	EncryptHistory bool

	// ClearHistory instructs the client to clear the history stack.
	ClearHistory bool

	// Concurrency sets the maximum number of concurrent prop resolutions for this page.
	// If 0, uses the renderer's default. Negative values lift the limit,
	// allowing unbounded concurrent resolution.
	Concurrency int
}

// NewRenderContext creates a RenderContext configured with the provided options.
// Options are applied in order and can be combined to build up the desired page state.
func NewRenderContext(opts ...Option) RenderContext {
	var ctx RenderContext
	for _, opt := range opts {
		opt(&ctx)
	}

	return ctx
}

// AddValidationErrorer appends validation errors to the context.
// Multiple calls accumulate errors into a single error bag.
func (ctx *RenderContext) AddValidationErrorer(err ValidationErrorer) {
	if ctx.ValidationErrorer == nil {
		ctx.ValidationErrorer = make([]ValidationErrorer, 0, 1)
	}

	ctx.ValidationErrorer = append(ctx.ValidationErrorer, err)
}

// Option is a function that configures a RenderContext.
type Option func(*RenderContext)

// WithClearHistory instructs the client to clear its history stack when rendering this page.
func WithClearHistory() Option {
	return func(opt *RenderContext) { opt.ClearHistory = true }
}

// WithEncryptHistory instructs the client to encrypt the history state.
func WithEncryptHistory() Option {
	return func(opt *RenderContext) { opt.EncryptHistory = true }
}

// WithProps adds properties to the page component.
// Multiple calls append additional props to the existing set.
func WithProps(props Proper) Option {
	return func(renderCtx *RenderContext) {
		if props == nil {
			return
		}

		if renderCtx.Props == nil {
			renderCtx.Props = make([]Prop, 0, props.Len())
		}

		renderCtx.Props = append(renderCtx.Props, props.Props()...)
	}
}

// WithValidationErrors adds validation errors to be displayed on the page.
// Multiple calls append errors to the same or different error bags.
//
// The errorBag parameter allows scoping errors to specific forms on the same page.
func WithValidationErrors(errorers ValidationErrorer, errorBag string) Option {
	return func(renderCtx *RenderContext) {
		if errorers == nil {
			return
		}

		renderCtx.AddValidationErrorer(errorers)
		renderCtx.ErrorBag = errorBag
	}
}

// WithConcurrency sets the maximum number of props that can be resolved concurrently for this page.
// This only affects props marked as concurrent.
//
// A value of 0 uses the renderer's default concurrency level.
// Negative values lift the limit, allowing unbounded concurrent resolution.
func WithConcurrency(concurrency int) Option {
	return func(renderCtx *RenderContext) {
		renderCtx.Concurrency = concurrency
	}
}

// Render sends an Inertia.js page response with the specified component and context.
// It automatically detects whether to send JSON (for Inertia requests) or HTML (for full page loads).
//
// This function requires the Inertia middleware to be installed in the request chain.
// Returns an error if the middleware is not found or if rendering fails.
func Render(w http.ResponseWriter, r *http.Request, componentName string, rCtx RenderContext) error {
	render, ok := r.Context().Value(kCtxKey).(*Renderer)
	if !ok {
		return errors.New(
			"inertia: renderer not found in request context - did you forget to use the middleware?",
		)
	}

	if err := render.Render(w, r, componentName, rCtx); err != nil {
		return err
	}

	return nil
}

// MustRender is like Render, but panics if an error occurs.
func MustRender(w http.ResponseWriter, req *http.Request, name string, r RenderContext) {
	must.Must1(Render(w, req, name, r))
}
