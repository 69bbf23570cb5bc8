package inertia

import (
	"cmp"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

const (
	TagInertia      = "inertia"
	TagInertiaGroup = "inertiagroup"
)

const (
	propTypeOptional = "optional"
	propTypeDeferred = "deferred"
	propTypeAlways   = "always"
)

const (
	propDiscard    = "-"
	propOmitEmpty  = "omitempty"
	propMergeable  = "mergeable"
	propDeepMerge  = "deepmerge"
	propConcurrent = "concurrent"
	propPreserve   = "preserve"
)

var lazyType = reflect.TypeFor[Lazy]() //nolint:gochecknoglobals

// propFlags are the comma-separated modifiers following the name and type
// components of an inertia tag.
type propFlags struct {
	mergeable  bool
	deepMerge  bool
	concurrent bool
	preserve   bool
	omitEmpty  bool
}

// ParseStruct converts a struct into a Props collection using struct tags.
// It expects a struct pointer with JSON-encodable fields.
//
// Only fields tagged with "inertia" are included; untagged fields are ignored.
//
// Tag format: `inertia:"name[,type][,flag...]"`
//
// Tag components:
//   - name: Prop name sent to client (required). Use "-" to skip the field.
//   - type: One of "optional", "deferred", "always", or empty (regular prop)
//   - flags, in any order after the type:
//     "mergeable" enables merge behavior, "deepmerge" enables recursive
//     merge behavior, "concurrent" enables parallel resolution (deferred
//     props only), "preserve" exempts the key from case transformation,
//     and "omitempty" skips zero-value fields.
//
// Prop types:
//   - (empty): Regular prop, included on initial and partial renders
//   - "optional": Lazy prop, resolved only when explicitly requested
//   - "deferred": Lazy prop, loaded after initial render in named groups
//   - "always": Always included, ignores partial reload filters
//
// Deferred prop grouping:
//
//	Use `inertiagroup:"groupname"` to assign deferred props to named groups.
//	Props in the same group are resolved together. Defaults to "default" group.
//	Returns an error if inertiagroup is used on non-deferred props.
//
// Field value requirements:
//   - Optional/deferred fields must be Lazy or LazyFunc type
//   - Regular/always fields can be any JSON-serializable type
//
// Example:
//
//	type PageProps struct {
//	    UserID    int      `inertia:"user_id,always"`
//	    Posts     []Post   `inertia:"posts"`
//	    Analytics LazyFunc `inertia:"analytics,deferred,concurrent" inertiagroup:"metrics"`
//	    Optional  LazyFunc `inertia:"extra,optional,omitempty"`
//	}
func ParseStruct(v any) (Props, error) {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr {
		return nil, errors.New("inertia: ParseStruct expects a struct pointer")
	}

	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return nil, errors.New("inertia: ParseStruct expects a struct pointer")
	}

	typ := val.Type()
	numFields := typ.NumField()
	props := make(Props, 0, numFields)

	for i := range numFields {
		field := typ.Field(i)
		fieldVal := val.Field(i)

		if !field.IsExported() {
			continue
		}

		inertiaTag := field.Tag.Get(TagInertia)
		if inertiaTag == "" {
			continue
		}

		fieldName, fieldType, flags := parseTag(inertiaTag, field.Name)

		if fieldName == propDiscard {
			continue
		}

		if flags.omitEmpty && fieldVal.IsZero() {
			continue
		}

		if !fieldVal.CanInterface() {
			continue
		}

		inertiaGroup := field.Tag.Get(TagInertiaGroup)
		if inertiaGroup != "" && fieldType != propTypeDeferred {
			return nil, errors.New("inertia: cannot use group tag on non-deferred field")
		}

		prop, err := makeStructProp(fieldName, fieldType, inertiaGroup, flags, fieldVal)
		if err != nil {
			return nil, err
		}

		props = append(props, prop)
	}

	return props, nil
}

// parseTag splits an inertia tag into name, type and flags.
func parseTag(tag string, fallbackName string) (string, string, propFlags) {
	var flags propFlags

	parts := strings.Split(tag, ",")
	name := cmp.Or(parts[0], fallbackName)

	fieldType := ""
	rest := parts[1:]

	if len(rest) > 0 {
		switch rest[0] {
		case propTypeOptional, propTypeDeferred, propTypeAlways:
			fieldType = rest[0]
			rest = rest[1:]
		}
	}

	for _, flag := range rest {
		switch flag {
		case propMergeable:
			flags.mergeable = true
		case propDeepMerge:
			flags.deepMerge = true
		case propConcurrent:
			flags.concurrent = true
		case propPreserve:
			flags.preserve = true
		case propOmitEmpty:
			flags.omitEmpty = true
		}
	}

	return name, fieldType, flags
}

func makeStructProp(
	name string,
	fieldType string,
	group string,
	flags propFlags,
	fieldVal reflect.Value,
) (Prop, error) {
	var prop Prop

	switch fieldType {
	case propTypeOptional:
		fn, err := toLazy(fieldVal)
		if err != nil {
			return prop, err
		}

		prop = NewOptional(name, fn)
		if flags.preserve {
			prop = prop.Preserved()
		}

	case propTypeDeferred:
		fn, err := toLazy(fieldVal)
		if err != nil {
			return prop, err
		}

		prop = NewDeferred(name, fn, &DeferredOptions{
			Merge:       flags.mergeable,
			DeepMerge:   flags.deepMerge,
			Group:       cmp.Or(group, DefaultDeferredGroup),
			Concurrent:  flags.concurrent,
			PreserveKey: flags.preserve,
		})

	case propTypeAlways:
		prop = NewAlways(name, fieldVal.Interface())
		if flags.preserve {
			prop = prop.Preserved()
		}

	case "":
		prop = NewProp(name, fieldVal.Interface(), &PropOptions{
			Merge:       flags.mergeable,
			DeepMerge:   flags.deepMerge,
			PreserveKey: flags.preserve,
		})

	default:
		return prop, fmt.Errorf("inertia: unknown field type %q", fieldType)
	}

	return prop, nil
}

// toLazy converts a reflect.Value to a Lazy if the value is Lazy convertible.
func toLazy(v reflect.Value) (Lazy, error) {
	val := v.Interface()
	if v.Kind() == reflect.Interface && v.Type().Implements(lazyType) {
		lazy, ok := val.(Lazy)
		if !ok {
			return nil, errors.New("inertia: invalid lazy value")
		}

		return lazy, nil
	}

	if v.Kind() == reflect.Func {
		lazyFn, ok := val.(LazyFunc)
		if !ok {
			return nil, errors.New("inertia: invalid lazy function")
		}

		return lazyFn, nil
	}

	return nil, errors.New("inertia: invalid lazy value")
}
