package inertia

import (
	"context"
	"fmt"

	"github.com/alitto/pond/v2"
)

// resolveProps filters the prop set against the active partial reload,
// evaluates the surviving props and returns the wire-form props map.
//
// Lazy producers run at most once, and never for filtered-out props; this is
// the load-bearing laziness contract. Props marked concurrent resolve on a
// bounded pond pool, everything else sequentially. Any producer failure
// aborts the whole resolution: no partial page object is ever produced.
func resolveProps(
	ctx context.Context,
	props []Prop,
	f *partialReload,
	policy keyPolicy,
	concurrency int,
) (map[string]any, error) {
	m := make(map[string]any, len(props))
	concurrentProps := make([]Prop, 0, len(props))

	for _, prop := range props {
		if !keepProp(prop, f, policy) {
			continue
		}

		if prop.concurrent {
			concurrentProps = append(concurrentProps, prop)
			continue
		}

		val, err := resolveProp(ctx, prop, policy)
		if err != nil {
			return nil, err
		}

		m[policy.transform(prop.key, prop.rawKey)] = val
	}

	if len(concurrentProps) > 0 {
		pool := pond.NewResultPool[any](concurrency)
		group := pool.NewGroupContext(ctx)

		for _, prop := range concurrentProps {
			group.SubmitErr(func() (any, error) {
				return resolveProp(ctx, prop, policy)
			})
		}

		result, err := group.Wait()
		if err != nil {
			return nil, fmt.Errorf("inertia: failed to resolve concurrent props: %w", err)
		}

		for i, prop := range concurrentProps {
			m[policy.transform(prop.key, prop.rawKey)] = result[i]
		}
	}

	return m, nil
}

func resolveProp(ctx context.Context, prop Prop, policy keyPolicy) (any, error) {
	val, err := prop.value(ctx)
	if err != nil {
		return nil, fmt.Errorf("inertia: failed to resolve prop %s: %w", prop.key, err)
	}

	val, err = resolveValue(ctx, val, policy)
	if err != nil {
		return nil, fmt.Errorf("inertia: failed to resolve prop %s: %w", prop.key, err)
	}

	return val, nil
}

// resolveValue recursively evaluates a prop value tree, depth-first.
//
// Maps are rewritten with wire-form keys (map[Key]any honors per-key
// preservation), slices resolve element-wise in order, nested Lazy values
// are invoked and their result resolved in turn. Anything else is a leaf and
// passes through for JSON serialization.
//
// Key collisions after transformation are not detected; the last processed
// key wins in map-iteration order. Callers should avoid colliding keys.
func resolveValue(ctx context.Context, v any, policy keyPolicy) (any, error) {
	switch val := v.(type) {
	case Lazy:
		inner, err := val.Value(ctx)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		return resolveValue(ctx, inner, policy)

	case map[string]any:
		out := make(map[string]any, len(val))

		for k, nested := range val {
			resolved, err := resolveValue(ctx, nested, policy)
			if err != nil {
				return nil, err
			}

			out[policy.transform(k, false)] = resolved
		}

		return out, nil

	case map[Key]any:
		out := make(map[string]any, len(val))

		for k, nested := range val {
			resolved, err := resolveValue(ctx, nested, policy)
			if err != nil {
				return nil, err
			}

			out[policy.transformKey(k)] = resolved
		}

		return out, nil

	case []any:
		out := make([]any, len(val))

		for i, el := range val {
			resolved, err := resolveValue(ctx, el, policy)
			if err != nil {
				return nil, err
			}

			out[i] = resolved
		}

		return out, nil

	default:
		return v, nil
	}
}
