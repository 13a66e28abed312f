package power

import "sort"

// Order returns ds with internal batteries moved to the end, keeping the
// relative order of everything else. Descriptions are applied in order and
// the last one wins, so this makes the internal battery take precedence over
// accessories such as UPSs or battery packs.
func Order(ds []Description) []Description {
	ret := make([]Description, len(ds))
	copy(ret, ds)
	sort.SliceStable(ret, func(i, j int) bool {
		return !isInternal(ret[i]) && isInternal(ret[j])
	})
	return ret
}

func isInternal(d Description) bool {
	t, _ := d[KeyType].(string)
	return t == TypeInternalBattery
}
