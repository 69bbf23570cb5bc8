package inertia

import (
	"net/http"
	"strings"

	"github.com/pagefold/inertia/internal/inertiaheader"
)

// partialReload is the parsed partial-reload request for the component being
// rendered. A nil *partialReload means the render is a full (initial)
// request.
type partialReload struct {
	only   map[string]struct{}
	except map[string]struct{}
}

// partialFromRequest parses the partial-reload headers. It returns nil
// unless the request's declared target component equals the component being
// rendered; a partial reload aimed at another component applies no filter.
func partialFromRequest(req *http.Request, componentName string) *partialReload {
	if req.Header.Get(inertiaheader.HeaderXInertiaPartialComponent) != componentName {
		return nil
	}

	return &partialReload{
		only:   toKeySet(extractHeaderValueList(req.Header.Get(inertiaheader.HeaderXInertiaPartialData))),
		except: toKeySet(extractHeaderValueList(req.Header.Get(inertiaheader.HeaderXInertiaPartialExcept))),
	}
}

// resetKeysFromRequest parses the X-Inertia-Reset header into the set of
// wire-form keys whose merge semantics are suppressed for this response.
func resetKeysFromRequest(req *http.Request) map[string]struct{} {
	return toKeySet(extractHeaderValueList(req.Header.Get(inertiaheader.HeaderXInertiaReset)))
}

// keepProp reports whether a prop survives partial-reload filtering.
//
// Always props are never filtered out. The only list is checked before the
// except list when both are present. Optional props (including deferred
// props downgraded for the initial payload) are dropped unless the active
// filter explicitly requests them. Keys compare on their wire form.
func keepProp(p Prop, f *partialReload, policy keyPolicy) bool {
	if p.kind == kindAlways {
		return true
	}

	if f != nil {
		key := policy.transform(p.key, p.rawKey)

		if len(f.only) > 0 {
			_, ok := f.only[key]
			return ok
		}

		if len(f.except) > 0 {
			_, ok := f.except[key]
			return !ok
		}
	}

	return p.kind != kindOptional
}

// extractHeaderValueList extracts a list of values from a comma-separated header value.
func extractHeaderValueList(h string) []string {
	if h == "" {
		return nil
	}

	fields := strings.Split(h, ",")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}

	return fields
}

func toKeySet(keys []string) map[string]struct{} {
	if len(keys) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}

		set[k] = struct{}{}
	}

	return set
}
