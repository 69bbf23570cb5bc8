package inertia

import (
	"bytes"
	"cmp"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"runtime"
	"strings"

	"github.com/go-json-experiment/json"
	"go.inout.gg/foundations/debug"
	"go.inout.gg/foundations/must"

	"github.com/pagefold/inertia/internal/inertiabase"
	"github.com/pagefold/inertia/internal/inertiaheader"
	"github.com/pagefold/inertia/internal/inertiaredirect"
)

const (
	// DefaultRootViewID is the default root HTML element ID to which
	// the Inertia.js app is mounted.
	DefaultRootViewID = "app"

	// DefaultAppID keys the version cache when no application identity is
	// configured.
	DefaultAppID = "inertia"
)

// DefaultConcurrency is the default concurrency level for resolution of
// props marked as concurrently resolvable.
var DefaultConcurrency = runtime.GOMAXPROCS(0) //nolint:gochecknoglobals

// Page represents an Inertia.js page that is sent to the client.
type Page = inertiabase.Page

// Config configures the Renderer behavior and capabilities.
type Config struct {
	// SSRClient enables server-side rendering of Inertia pages.
	//
	// If nil, only client-side rendering is used.
	SSRClient SSRClient

	// SSRFallback selects the failure policy for the SSR collaborator:
	// when true, an SSR failure is logged and the response falls back to
	// client-side rendering; when false, the failure aborts the response.
	SSRFallback bool

	// Logger receives operational messages (currently only SSR fallback
	// warnings). Defaults to slog.Default().
	Logger *slog.Logger

	// RootViewAttrs are HTML attributes applied to the root element.
	RootViewAttrs map[string]string

	// Version identifies the current asset version (e.g., build hash).
	//
	// Version sources take precedence in this order: Version (static
	// string), VersionFunc, automatic detection from build manifests found
	// in VersionFS, DefaultVersion.
	Version string

	// VersionFunc computes the asset version. The result is memoized in the
	// version cache until InvalidateVersion is called.
	VersionFunc VersionFunc

	// VersionFS is the file system probed for known build manifests when no
	// explicit version source is configured.
	VersionFS fs.FS

	// VersionCache overrides the process-wide version cache.
	VersionCache *VersionCache

	// AppID identifies the serving application in the version cache.
	// Defaults to DefaultAppID.
	AppID string

	// RootViewID is the HTML element ID where the Inertia app mounts.
	//
	// Defaults to "app" if not specified.
	RootViewID string

	// JSONMarshalOptions configures JSON serialization for page props and data.
	JSONMarshalOptions []json.Options

	// Concurrency sets the default maximum number of props that can be resolved concurrently.
	// It only affects props marked as concurrent.
	//
	// Defaults to runtime.GOMAXPROCS(0).
	Concurrency int

	// CamelizeKeys converts prop keys from snake_case to lowerCamelCase at
	// every nesting level of the resolved prop tree. Keys wrapped with
	// Preserve (or props marked PreserveKey) are exempt.
	CamelizeKeys bool
}

func (c *Config) defaults() {
	c.RootViewID = cmp.Or(c.RootViewID, DefaultRootViewID)
	c.AppID = cmp.Or(c.AppID, DefaultAppID)
	c.Concurrency = cmp.Or(c.Concurrency, DefaultConcurrency)

	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	if c.VersionCache == nil {
		c.VersionCache = defaultVersionCache
	}

	debug.Assert(c.RootViewID != "", "RootViewID must be non-empty string")
}

// Renderer handles Inertia.js page responses, supporting both client-side and server-side rendering.
// It manages HTML template rendering, JSON serialization, prop resolution and
// asset-version computation.
//
// Create a Renderer using New or FromFS constructor functions.
type Renderer struct {
	ssrClient          SSRClient
	logger             *slog.Logger
	versionCache       *VersionCache
	versionFn          VersionFunc
	version            string
	t                  *template.Template
	jsonMarshalOptions []json.Options
	rootViewID         string
	appID              string
	rootViewAttrs      []pair[[]byte, []byte]
	concurrency        int
	policy             keyPolicy
	ssrFallback        bool
}

// New creates a Renderer with the provided HTML template and configuration.
//
// If config is nil, default values are used:
//   - RootViewID: "app"
//   - Concurrency: GOMAXPROCS(0)
//   - Version: DefaultVersion
func New(t *template.Template, config *Config) *Renderer {
	if config == nil {
		//nolint:exhaustruct
		config = &Config{}
	}

	config.defaults()

	attrs := make([]pair[[]byte, []byte], 0, len(config.RootViewAttrs))
	for key, value := range config.RootViewAttrs {
		attrs = append(attrs, pair[[]byte, []byte]{[]byte(key), []byte(value)})
	}

	r := &Renderer{
		t:                  t,
		ssrClient:          config.SSRClient,
		ssrFallback:        config.SSRFallback,
		logger:             config.Logger,
		jsonMarshalOptions: config.JSONMarshalOptions,
		versionCache:       config.VersionCache,
		version:            config.Version,
		versionFn:          versionSource(config),
		appID:              config.AppID,
		rootViewID:         config.RootViewID,
		rootViewAttrs:      attrs,
		concurrency:        config.Concurrency,
		policy:             keyPolicy{camelize: config.CamelizeKeys},
	}

	debug.Assert(r.t != nil, "expected t to be defined")
	debug.Assert(r.rootViewID != "", "expected RootViewID to be defined")

	return r
}

// versionSource picks the computed version source by configured precedence:
// callable > manifest detection > fixed fallback. A static Version string
// takes precedence over all of them and bypasses the cache entirely.
func versionSource(config *Config) VersionFunc {
	switch {
	case config.VersionFunc != nil:
		return config.VersionFunc
	case config.VersionFS != nil:
		return ManifestVersion(config.VersionFS)
	default:
		return StaticVersion(DefaultVersion)
	}
}

// FromFS creates a Renderer by loading an HTML template from a file system.
//
// If config is nil, default values are used.
func FromFS(fsys fs.FS, path string, config *Config) (*Renderer, error) {
	debug.Assert(fsys != nil, "expected fsys to be defined")
	debug.Assert(path != "", "expected path to be defined")

	t := template.New("inertia")

	t, err := t.ParseFS(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("inertia: failed to parse templates: %w", err)
	}

	return New(t, config), nil
}

// MustFromFS is like FromFS, but panics if an error occurs.
func MustFromFS(fsys fs.FS, path string, config *Config) *Renderer {
	return must.Must(FromFS(fsys, path, config))
}

// Version returns the current asset version used for client version
// validation. The value is memoized per application until
// InvalidateVersion is called.
func (r *Renderer) Version() string {
	if r.version != "" {
		return r.version
	}

	v, err := r.versionCache.Get(r.appID, r.versionFn)
	if err != nil {
		d("failed to compute asset version, using fallback: %v", err)
		return DefaultVersion
	}

	return v
}

// InvalidateVersion drops the memoized asset version so that the next
// request recomputes it. Call it after a new frontend build is deployed.
func (r *Renderer) InvalidateVersion() {
	r.versionCache.Invalidate(r.appID)
}

// Render sends an Inertia page response, automatically choosing the format:
//   - JSON for Inertia requests (XHR navigation)
//   - HTML for initial page loads or non-Inertia requests
//
// The renderCtx configures props, validation errors, and other page-specific settings.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, renderCtx RenderContext) error {
	renderCtx.Concurrency = max(cmp.Or(renderCtx.Concurrency, r.concurrency), 0)

	page, err := r.newPage(req, name, renderCtx)
	if err != nil {
		return err
	}

	if isInertiaRequest(req) {
		d("Received inertia request, sending JSON response: %s",
			req.Header.Get(inertiaheader.HeaderReferer))

		w.Header().Set(inertiaheader.HeaderXInertia, "true")
		w.Header().Set(inertiaheader.HeaderContentType, inertiaheader.ContentTypeJSON)
		w.WriteHeader(http.StatusOK)

		if err := json.MarshalWrite(w, page, r.jsonMarshalOptions...); err != nil {
			return fmt.Errorf("inertia: failed to encode JSON response: %w", err)
		}

		return nil
	}

	data := TemplateData{T: renderCtx.T, InertiaHead: "", InertiaBody: ""}

	if err := r.renderView(req, page, &data); err != nil {
		return err
	}

	w.Header().Set(inertiaheader.HeaderContentType, inertiaheader.ContentTypeHTML)
	w.WriteHeader(http.StatusOK)

	if err := r.t.Execute(w, &data); err != nil {
		return fmt.Errorf("inertia: failed to execute HTML template: %w", err)
	}

	return nil
}

// renderView fills data with SSR markup when an SSR client is configured,
// falling back to the client-side root element per the configured policy.
func (r *Renderer) renderView(req *http.Request, page *Page, data *TemplateData) error {
	if r.ssrClient != nil {
		ssrData, err := r.ssrClient.Render(req.Context(), page)
		if err == nil {
			data.InertiaHead = template.HTML(ssrData.Head) //nolint:gosec
			data.InertiaBody = template.HTML(ssrData.Body) //nolint:gosec

			return nil
		}

		if !r.ssrFallback {
			return fmt.Errorf("inertia: failed to render SSR data: %w", err)
		}

		r.logger.Warn("inertia: SSR failed, falling back to client-side rendering",
			slog.String("component", page.Component),
			slog.Any("error", err))
	}

	body, err := r.makeRootView(page)
	if err != nil {
		return fmt.Errorf("inertia: failed to create an HTML container: %w", err)
	}

	data.InertiaBody = body

	return nil
}

func (r *Renderer) newPage(req *http.Request, componentName string, renderCtx RenderContext) (*Page, error) {
	rawProps := SharedProps(req).overlay(renderCtx.Props)
	rawProps = append(rawProps, r.makeValidationErrors(req, renderCtx))

	partial := partialFromRequest(req, componentName)
	mergeKeys, deepMergeKeys := classifyMerge(rawProps, resetKeysFromRequest(req), r.policy)

	rawProps, deferredGroups := groupDeferred(rawProps, r.policy)
	if partial != nil {
		// The client learned about deferred groups on the initial
		// response; a partial reload never re-advertises them.
		deferredGroups = nil
	}

	props, err := resolveProps(req.Context(), rawProps, partial, r.policy, renderCtx.Concurrency)
	if err != nil {
		return nil, err
	}

	// Ambient flash data rides along unless the page defines its own.
	if _, ok := props["flash"]; !ok {
		if fl := FlashFromRequest(req); len(fl) > 0 {
			props["flash"] = fl
		}
	}

	return &Page{
		Component:      componentName,
		Props:          props,
		DeferredProps:  deferredGroups,
		MergeProps:     mergeKeys,
		DeepMergeProps: deepMergeKeys,
		URL:            req.RequestURI,
		Version:        r.Version(),
		ClearHistory:   renderCtx.ClearHistory,
		EncryptHistory: renderCtx.EncryptHistory,
	}, nil
}

// makeRootView creates a root view element with the given page data.
func (r *Renderer) makeRootView(page *Page) (template.HTML, error) {
	var w strings.Builder

	w.WriteString(`<div id="`)
	w.WriteString(r.rootViewID)
	w.WriteString(`" data-page="`)

	pageBytes, err := json.Marshal(page, r.jsonMarshalOptions...)
	if err != nil {
		return "", fmt.Errorf("inertia: an error occurred while rendering page: %w", err)
	}

	template.HTMLEscape(&w, pageBytes)
	w.WriteString(`" `)

	for _, kv := range r.rootViewAttrs {
		// Skip the data-page attribute as it's already set.
		if bytes.Equal(kv.key, []byte("data-page")) {
			continue
		}

		_, _ = w.Write(kv.key)
		w.WriteString(`="`)
		template.HTMLEscape(&w, kv.value)
		w.WriteString(`" `)
	}

	w.WriteString(`></div>`)

	//nolint:gosec
	return template.HTML(w.String()), nil
}

// makeValidationErrors builds the errors prop. It is an always prop: partial
// reloads never filter it out. When an error bag is active (explicitly or
// via the X-Inertia-Error-Bag header), errors nest under the bag name.
func (r *Renderer) makeValidationErrors(req *http.Request, renderCtx RenderContext) Prop {
	m := make(map[string]string)

	for _, errorer := range renderCtx.ValidationErrorer {
		for _, err := range errorer.ValidationErrors() {
			m[err.Field()] = err.Error()
		}
	}

	errorBag := cmp.Or(renderCtx.ErrorBag, ErrorBagFromRequest(req))
	if errorBag != DefaultErrorBag {
		return NewAlways(errorBag, map[string]map[string]string{"errors": m})
	}

	return NewAlways("errors", m)
}

// TemplateData contains the data passed to the HTML template during rendering.
type TemplateData struct {
	// T is custom application data available to the template.
	T any

	// InertiaHead contains SSR-generated head elements (title, meta tags, etc.).
	InertiaHead template.HTML

	// InertiaBody contains the rendered page content.
	InertiaBody template.HTML
}

// Location redirects to a URL outside of the Inertia app.
//
// For Inertia requests, it uses a 409 Conflict response with the
// X-Inertia-Location header. For regular requests, it performs a standard
// HTTP redirect.
func Location(w http.ResponseWriter, r *http.Request, url string) {
	if isInertiaRequest(r) {
		h := w.Header()

		h.Del(inertiaheader.HeaderVary)
		h.Del(inertiaheader.HeaderXInertia)
		h.Set(inertiaheader.HeaderXInertiaLocation, url) // redirect URL
		w.WriteHeader(http.StatusConflict)               // 409 Conflict

		return
	}

	inertiaredirect.Redirect(w, r, url)
}

// ForceLocation marks the pending redirect as a forced protocol redirect:
// the middleware rewrites it to a 409 location visit even when the target is
// local. Call it before issuing the redirect:
//
//	inertia.ForceLocation(w)
//	http.Redirect(w, r, "/login", http.StatusFound)
func ForceLocation(w http.ResponseWriter) {
	w.Header().Set(inertiaheader.HeaderXInertiaForceLocation, "true")
}

// Redirect sends a redirect response to the Inertia app page.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	inertiaredirect.Redirect(w, r, url)
}

// ErrorBagFromRequest extracts the error bag name from the X-Inertia-Error-Bag header.
//
// Returns the default error bag (empty string) if the header is not present.
// Used to scope validation errors to specific forms on a page.
func ErrorBagFromRequest(r *http.Request) string {
	errorBag := r.Header.Get(inertiaheader.HeaderXInertiaErrorBag)
	if errorBag == "" {
		return DefaultErrorBag
	}

	return errorBag
}

// isInertiaRequest checks if the request is made by Inertia.js.
func isInertiaRequest(req *http.Request) bool {
	return req.Header.Get(inertiaheader.HeaderXInertia) == "true"
}

// pair is a key-value pair.
type pair[K any, V any] struct {
	key   K
	value V
}
