package inertia

import (
	"cmp"
	"context"
)

var (
	_ Proper = (Props)(nil)
	_ Proper = (*Prop)(nil)
)

const DefaultDeferredGroup = "default"

// propKind is the delivery kind of a prop. Exactly one kind applies to a
// prop; kinds are switched exhaustively wherever props are filtered.
type propKind uint8

const (
	kindRegular  propKind = iota // included on initial renders and partial reloads
	kindOptional                 // included only when explicitly requested
	kindAlways                   // included regardless of partial filters
	kindDeferred                 // excluded initially, fetched later by group
)

// mergeKind is the client-side merge strategy declared by a prop. Orthogonal
// to propKind: a deferred prop may still declare how it merges once loaded.
type mergeKind uint8

const (
	mergeNone mergeKind = iota
	mergeShallow
	mergeDeep
)

// Key is a prop or map key carrying an optional case-preservation override.
//
// Use Preserve to exempt a key from the renderer's key-case transformation.
// Nested maps keyed by Key (map[Key]any) honor the override at any depth.
type Key struct {
	name     string
	preserve bool
}

// Preserve wraps a key so that it is sent to the client verbatim, bypassing
// the key-case transformation at every nesting level.
func Preserve(name string) Key { return Key{name: name, preserve: true} }

// NewKey wraps a key subject to the regular key-case transformation.
func NewKey(name string) Key { return Key{name: name} }

// String returns the raw (untransformed) key name.
func (k Key) String() string { return k.name }

// Prop represents a single property passed to an Inertia page component.
// Props control data visibility, lazy loading, merging behavior, and
// resolution timing.
//
// Create props using constructor functions:
//   - NewProp: standard prop, included on initial render
//   - NewAlways: always included, ignores partial reload filters
//   - NewOptional: lazy-loaded, only resolved when explicitly requested
//   - NewDeferred: lazy-loaded in groups after the initial render
//
// Attach props to a page using WithProps, or share them across handlers via
// the request-scoped Store.
type Prop struct {
	val        any
	valFn      Lazy // optional, deferred
	key        string
	group      string // deferred
	kind       propKind
	merge      mergeKind
	concurrent bool // deferred
	rawKey     bool // exempt from key-case transform
}

type (
	// Lazy represents a prop value that is resolved on-demand rather than eagerly.
	// Used for optional and deferred props to avoid unnecessary computation.
	//
	// Value is invoked at most once per request, and never for props removed
	// by partial-reload filtering.
	Lazy interface {
		// Value resolves and returns the prop's value.
		// The returned value must be JSON-serializable.
		Value(context.Context) (any, error)
	}

	// LazyFunc is a function adapter that implements the Lazy interface.
	LazyFunc func(context.Context) (any, error)
)

// Value calls `fn()`.
func (fn LazyFunc) Value(ctx context.Context) (any, error) { return fn(ctx) }

// PropOptions configures standard prop behavior.
type PropOptions struct {
	// Merge instructs the client to merge this prop's value into its existing
	// state instead of replacing it.
	Merge bool

	// DeepMerge is like Merge, but merges nested structures recursively.
	// Takes precedence over Merge when both are set.
	DeepMerge bool

	// PreserveKey exempts the prop key from key-case transformation.
	PreserveKey bool
}

func (o *PropOptions) mergeKind() mergeKind {
	switch {
	case o == nil:
		return mergeNone
	case o.DeepMerge:
		return mergeDeep
	case o.Merge:
		return mergeShallow
	default:
		return mergeNone
	}
}

// NewProp creates a standard prop included on initial page loads and partial reloads.
// If opts is nil, default options are used (replace on reload, transformed key).
func NewProp(key string, val any, opts *PropOptions) Prop {
	//nolint:exhaustruct
	prop := Prop{
		kind:  kindRegular,
		key:   key,
		val:   val,
		merge: opts.mergeKind(),
	}

	if opts != nil {
		prop.rawKey = opts.PreserveKey
	}

	return prop
}

// NewAlways creates a prop that is always included in responses.
// Unlike regular props, it ignores partial reload filters
// (X-Inertia-Partial-Data/Except headers). Use for critical data that must
// always be present, such as authentication state or validation errors.
func NewAlways(key string, value any) Prop {
	//nolint:exhaustruct
	return Prop{
		kind: kindAlways,
		key:  key,
		val:  value,
	}
}

// NewOptional creates a lazily-evaluated prop included only during partial
// reloads that explicitly request it. The value function is never called
// otherwise.
func NewOptional(key string, fn Lazy) Prop {
	//nolint:exhaustruct
	return Prop{
		kind:  kindOptional,
		key:   key,
		valFn: fn,
	}
}

// DeferredOptions configures the behavior of deferred props.
type DeferredOptions struct {
	// Group assigns this prop to a named deferred group.
	// Props in the same group are fetched together by the client.
	// Defaults to DefaultDeferredGroup if not specified.
	Group string

	// Merge declares the merge strategy applied once the prop is loaded.
	Merge bool

	// DeepMerge is like Merge, but merges nested structures recursively.
	DeepMerge bool

	// Concurrent enables parallel resolution for this prop.
	// When true, this prop can be resolved concurrently with other concurrent
	// props within the same request, up to the configured concurrency limit.
	Concurrent bool

	// PreserveKey exempts the prop key from key-case transformation.
	PreserveKey bool
}

// NewDeferred creates a deferred prop that is fetched by the client after the
// initial render. Deferred props reduce initial page load time by deferring
// expensive computations.
//
// On the initial response the prop behaves like an optional prop (absent
// unless explicitly requested) while its key is advertised in the page
// object's deferred-group listing.
func NewDeferred(key string, fn Lazy, opts *DeferredOptions) Prop {
	//nolint:exhaustruct
	prop := Prop{
		kind:  kindDeferred,
		key:   key,
		valFn: fn,
		group: DefaultDeferredGroup,
	}

	if opts != nil {
		prop.group = cmp.Or(opts.Group, DefaultDeferredGroup)
		prop.concurrent = opts.Concurrent
		prop.rawKey = opts.PreserveKey

		switch {
		case opts.DeepMerge:
			prop.merge = mergeDeep
		case opts.Merge:
			prop.merge = mergeShallow
		}
	}

	return prop
}

// Preserved returns a copy of the prop whose key is sent to the client
// verbatim, bypassing key-case transformation.
func (p Prop) Preserved() Prop {
	p.rawKey = true
	return p
}

// Key returns the raw (untransformed) prop key.
func (p Prop) Key() string { return p.key }

func (p Prop) Props() []Prop { return []Prop{p} }
func (p Prop) Len() int      { return 1 }

// value returns the prop value, invoking the lazy producer if one is set.
func (p Prop) value(ctx context.Context) (any, error) {
	if p.valFn != nil {
		v, err := p.valFn.Value(ctx)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		return v, nil
	}

	return p.val, nil
}

// Proper represents a collection of props that can be attached to a render context.
// Implemented by both individual Prop and Props slice types.
type Proper interface {
	// Props returns the underlying prop slice.
	Props() []Prop

	// Len returns the number of props in the collection.
	Len() int
}

// Props is a collection of props.
type Props []Prop

func (p Props) Len() int      { return len(p) }
func (p Props) Props() []Prop { return p }
