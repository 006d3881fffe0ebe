package overpass

import (
	"sort"
	"strings"
)

// DietCount pairs a diet name with the number of POIs offering it.
type DietCount struct {
	Diet  string `json:"diet"`
	Count int    `json:"count"`
}

// ExtractDiets aggregates diet labels across a POI collection, typically
// restaurants. Labels come from two sources per POI: the semicolon-delimited
// cuisine tag, and diet:*=yes tags (diet:vegan=yes contributes "vegan").
// Within one POI the sources are deduplicated, so a POI increments each
// distinct diet at most once. Results are sorted by descending count; ties
// keep first-seen order.
func ExtractDiets(pois []POI) []DietCount {
	counts := make(map[string]int)
	var order []string

	for i := range pois {
		for _, diet := range poiDiets(&pois[i]) {
			if _, seen := counts[diet]; !seen {
				order = append(order, diet)
			}
			counts[diet]++
		}
	}

	result := make([]DietCount, 0, len(order))
	for _, diet := range order {
		result = append(result, DietCount{Diet: diet, Count: counts[diet]})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	return result
}

// poiDiets builds the per-POI diet label list, deduplicated and in a
// deterministic order: cuisine tokens in split order, then diet:* names in
// sorted key order.
func poiDiets(poi *POI) []string {
	seen := make(map[string]struct{})
	var diets []string

	add := func(diet string) {
		if _, ok := seen[diet]; ok {
			return
		}
		seen[diet] = struct{}{}
		diets = append(diets, diet)
	}

	if cuisine := poi.Tag("cuisine"); cuisine != "" {
		for _, token := range strings.Split(cuisine, ";") {
			token = strings.ToLower(strings.TrimSpace(token))
			if token != "" {
				add(token)
			}
		}
	}

	var dietKeys []string
	for key, value := range poi.Tags {
		if strings.HasPrefix(key, "diet") && value == "yes" {
			dietKeys = append(dietKeys, key)
		}
	}
	sort.Strings(dietKeys)
	for _, key := range dietKeys {
		if _, name, ok := strings.Cut(key, ":"); ok && name != "" {
			add(name)
		}
	}

	return diets
}
