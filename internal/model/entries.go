package model

import (
	"sort"
	"strings"
)

// SortOrder controls the ordering of list entries
type SortOrder int

const (
	SortAscending SortOrder = iota
	SortDescending
)

// ListEntry is one row of a list pane: the document id and its display title
type ListEntry struct {
	ID    string
	Title string
}

// EntriesFromTitles converts an id→title map into entries ordered by id
func EntriesFromTitles(titles map[string]string, order SortOrder) []ListEntry {
	entries := make([]ListEntry, 0, len(titles))
	for id, title := range titles {
		entries = append(entries, ListEntry{ID: id, Title: title})
	}
	SortEntries(entries, order)
	return entries
}

// SortEntries sorts entries in place by id using natural ordering
func SortEntries(entries []ListEntry, order SortOrder) {
	sort.SliceStable(entries, func(i, j int) bool {
		c := CompareIDs(entries[i].ID, entries[j].ID)
		if order == SortDescending {
			return c > 0
		}
		return c < 0
	})
}

// FilterTitles returns the entries whose title contains keyword, ignoring case,
// ordered descending by id. An empty keyword matches everything.
func FilterTitles(titles map[string]string, keyword string) []ListEntry {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	matched := make(map[string]string)
	for id, title := range titles {
		if strings.Contains(strings.ToLower(title), needle) {
			matched[id] = title
		}
	}
	return EntriesFromTitles(matched, SortDescending)
}

// CompareIDs compares document ids so that digit runs compare numerically
// ("2024-9" < "2024-10", "94-1" < "2021-1"). Returns -1, 0 or 1.
func CompareIDs(a, b string) int {
	for a != "" && b != "" {
		ca, restA := nextChunk(a)
		cb, restB := nextChunk(b)

		if isDigits(ca) && isDigits(cb) {
			if c := compareNumeric(ca, cb); c != 0 {
				return c
			}
		} else if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		a, b = restA, restB
	}

	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func nextChunk(s string) (string, string) {
	digit := s[0] >= '0' && s[0] <= '9'
	i := 1
	for i < len(s) && (s[i] >= '0' && s[i] <= '9') == digit {
		i++
	}
	return s[:i], s[i:]
}

func isDigits(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
