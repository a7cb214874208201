package jikan

import "strings"

// BestMatch picks the most relevant result for a query. An exact
// case-insensitive title match wins, then a title containing the query,
// then the first result.
func BestMatch(results []Media, query string) (Media, bool) {
	if len(results) == 0 {
		return Media{}, false
	}
	q := strings.ToLower(query)
	for _, item := range results {
		if strings.ToLower(item.Title) == q {
			return item, true
		}
	}
	for _, item := range results {
		if strings.Contains(strings.ToLower(item.Title), q) {
			return item, true
		}
	}
	return results[0], true
}
