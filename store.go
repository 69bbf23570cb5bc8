package inertia

import (
	"context"
	"net/http"
)

type storeCtx struct{}

//nolint:gochecknoglobals
var kStoreCtx = storeCtx{}

// Store accumulates named props contributed over the lifetime of a request,
// before a single terminal Render call consumes them.
//
// The store is an ordered mapping: keys keep their first-seen position and a
// later Put for the same key overwrites the value in place (last writer
// wins). Props supplied at render time overlay stored props of the same key.
//
// A Store is request-scoped and not safe for concurrent use; request
// handling for a single request is single-threaded by contract.
type Store struct {
	index map[string]int
	props []Prop
}

// NewStore creates an empty prop store.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Put adds props to the store, overwriting previously stored props with the
// same key in place.
func (s *Store) Put(props ...Prop) {
	for _, p := range props {
		if i, ok := s.index[p.key]; ok {
			s.props[i] = p
			continue
		}

		s.index[p.key] = len(s.props)
		s.props = append(s.props, p)
	}
}

// Len returns the number of distinct keys in the store.
func (s *Store) Len() int { return len(s.props) }

// Props returns the stored props in insertion order.
func (s *Store) Props() []Prop {
	out := make([]Prop, len(s.props))
	copy(out, s.props)

	return out
}

// overlay returns the stored props with extra laid on top: an extra prop
// replaces a stored prop of the same key, keeping the stored position;
// new keys append in order.
func (s *Store) overlay(extra []Prop) []Prop {
	merged := NewStore()
	if s != nil {
		merged.Put(s.props...)
	}

	merged.Put(extra...)

	return merged.props
}

// WithStore installs a fresh prop store on the request context.
//
// The middleware does this automatically; call it directly only when
// rendering without the middleware.
func WithStore(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), kStoreCtx, NewStore()))
}

// SharedProps returns the request's prop store, or nil when no store has
// been installed.
//
// Handlers and middlewares use it to contribute props ahead of the render
// call:
//
//	inertia.SharedProps(r).Put(inertia.NewProp("current_user", user, nil))
func SharedProps(r *http.Request) *Store {
	s, _ := r.Context().Value(kStoreCtx).(*Store)
	return s
}
