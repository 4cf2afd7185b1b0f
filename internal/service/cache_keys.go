package service

import "strings"

func cacheKeyEventDetails(id string) string {
	return "event:details:" + id
}

// list cache only covers the unfiltered and per-location first results;
// the key normalizes the filter so "Lon" and "lon" share an entry.
func cacheKeyEventList(locationContains string) string {
	return "event:list:loc=" + strings.ToLower(strings.TrimSpace(locationContains))
}
