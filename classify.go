package inertia

// classifyMerge walks the merged prop set once (before filtering) and
// collects the wire-form keys of merge- and deep-merge-tagged props in
// first-seen order.
//
// Keys present in the reset set have their merge tag suppressed: the prop's
// value still renders, but the key never enters either list. Reset wins over
// merge unconditionally.
func classifyMerge(props []Prop, reset map[string]struct{}, policy keyPolicy) (mergeKeys, deepMergeKeys []string) {
	for _, p := range props {
		if p.merge == mergeNone {
			continue
		}

		key := policy.transform(p.key, p.rawKey)
		if _, ok := reset[key]; ok {
			continue
		}

		switch p.merge {
		case mergeShallow:
			mergeKeys = append(mergeKeys, key)
		case mergeDeep:
			deepMergeKeys = append(deepMergeKeys, key)
		case mergeNone:
		}
	}

	return mergeKeys, deepMergeKeys
}

// groupDeferred walks the prop set once, downgrading defer-tagged props to
// optional-equivalent lazy props for the initial payload and recording each
// key under its named group.
//
// The downgraded prop keeps its lazy producer, merge strategy and key
// policy, so a later partial reload that requests the key resolves it like
// any optional prop. Group key lists are in declaration order; the Inertia
// client treats group membership as a set.
//
// The returned group map uses wire-form keys, since the client echoes them
// back in the partial reload that services the group.
func groupDeferred(props []Prop, policy keyPolicy) ([]Prop, map[string][]string) {
	var groups map[string][]string

	out := make([]Prop, len(props))

	for i, p := range props {
		if p.kind != kindDeferred {
			out[i] = p
			continue
		}

		if groups == nil {
			groups = make(map[string][]string)
		}

		groups[p.group] = append(groups[p.group], policy.transform(p.key, p.rawKey))

		p.kind = kindOptional
		out[i] = p
	}

	return out, groups
}
