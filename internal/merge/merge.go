// Package merge implements the deep-merge rule used to fold a priority-
// ordered list of configuration sources into a single effective tree:
// objects merge key by key, recursing into common object keys; arrays
// and scalars are replaced wholesale by the overlay.
package merge

import "github.com/cburgosro9303/vortex-config/internal/configvalue"

// Merge returns a new Value formed by layering overlay on top of base.
// Neither argument is mutated.
func Merge(base, overlay *configvalue.Value) *configvalue.Value {
	if base.IsNull() || overlay.IsNull() || base.Kind != configvalue.KindObject || overlay.Kind != configvalue.KindObject {
		// Type mismatch, non-object, or null on either side: overlay wins
		// outright, including overlay being null itself — a higher-precedence
		// source setting a key to null must override a lower one, not be
		// silently absorbed into the base.
		return overlay.Clone()
	}

	result := configvalue.NewObject()
	for _, k := range base.Object.Keys() {
		v, _ := base.Object.Get(k)
		result.Object.Set(k, v.Clone())
	}
	for _, k := range overlay.Object.Keys() {
		ov, _ := overlay.Object.Get(k)
		if bv, ok := result.Object.Get(k); ok {
			result.Object.Set(k, Merge(bv, ov))
		} else {
			result.Object.Set(k, ov.Clone())
		}
	}
	return result
}

// MergeAll folds values left to right: values[0] is the base, each
// subsequent value is merged as an overlay on the accumulated result.
func MergeAll(values []*configvalue.Value) *configvalue.Value {
	if len(values) == 0 {
		return configvalue.NewObject()
	}
	acc := values[0].Clone()
	for _, v := range values[1:] {
		acc = Merge(acc, v)
	}
	return acc
}
