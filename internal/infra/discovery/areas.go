package discovery

import (
	"sort"
	"strings"

	"github.com/vietddude/dispatcher/internal/core/domain"
)

// AreaPrefix derives the area name from a location alias. Aliases are
// "<area>-<store>"; an alias without a dash is its own area.
func AreaPrefix(alias string) string {
	alias = strings.TrimSpace(alias)
	if i := strings.Index(alias, "-"); i >= 0 {
		return strings.TrimSpace(alias[:i])
	}
	return alias
}

// GroupAreas buckets locations into areas by alias prefix. Only areas
// named in wanted are kept; an empty wanted list keeps everything.
// Store lists come back in the service's reporting order; selection
// policies apply their own numeric ordering.
func GroupAreas(locations []Location, wanted []string) []domain.Area {
	keep := make(map[string]bool, len(wanted))
	for _, w := range wanted {
		keep[w] = true
	}

	grouped := make(map[string][]string)
	for _, loc := range locations {
		if loc.ID == "" {
			continue
		}
		area := AreaPrefix(loc.Alias)
		if area == "" {
			continue
		}
		if len(keep) > 0 && !keep[area] {
			continue
		}
		grouped[area] = append(grouped[area], loc.ID)
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	areas := make([]domain.Area, 0, len(names))
	for _, name := range names {
		areas = append(areas, domain.Area{Name: name, Stores: grouped[name]})
	}
	return areas
}
