package selection

import (
	"sort"
	"strconv"
)

// splitStoreID separates a store id into its prefix and trailing
// number, e.g. "B-12" → ("B-", 12). Ids without a numeric suffix sort
// lexicographically as a whole.
func splitStoreID(id string) (string, int, bool) {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == len(id) {
		return id, 0, false
	}
	n, err := strconv.Atoi(id[i:])
	if err != nil {
		return id, 0, false
	}
	return id[:i], n, true
}

// storeLess orders store ids with numeric-aware comparison so "S2"
// comes before "S10".
func storeLess(a, b string) bool {
	ap, an, aok := splitStoreID(a)
	bp, bn, bok := splitStoreID(b)
	if aok && bok && ap == bp {
		return an < bn
	}
	if ap != bp {
		return ap < bp
	}
	return a < b
}

// sortStores returns a copy of ids in ascending store-number order.
func sortStores(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return storeLess(out[i], out[j]) })
	return out
}
