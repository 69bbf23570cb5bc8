package inertia

import "github.com/iancoleman/strcase"

// keyPolicy controls how prop keys are converted to their wire form.
//
// The same policy is applied to every nesting level of resolved prop trees:
// transformation is a property of the whole tree walk, not only of top-level
// keys. Preserved keys bypass the transform at any depth.
type keyPolicy struct {
	camelize bool
}

// transform converts key to its wire form. raw marks a preserved key.
//
// Transformation is idempotent: lowerCamel input stays untouched.
func (p keyPolicy) transform(key string, raw bool) string {
	if raw || !p.camelize {
		return key
	}

	return strcase.ToLowerCamel(key)
}

func (p keyPolicy) transformKey(k Key) string {
	return p.transform(k.name, k.preserve)
}
