package domain

import "strings"

const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortViews  = "views"
	SortAZ     = "az"
	SortZA     = "za"

	DefaultLimit = 24
	MaxLimit     = 100
)

// Filter narrows the gallery. Empty fields do not filter.
type Filter struct {
	Query       string
	TypologyID  string
	LocationID  string
	TagIDs      []string
	SoftwareIDs []string
	Sort        string
	Limit       int
	Offset      int
}

// Normalize applies defaults and drops "all" selectors.
func (f Filter) Normalize() Filter {
	f.Query = strings.TrimSpace(f.Query)
	f.TypologyID = dropAll(f.TypologyID)
	f.LocationID = dropAll(f.LocationID)

	switch f.Sort {
	case SortNewest, SortOldest, SortViews, SortAZ, SortZA:
	default:
		f.Sort = SortNewest
	}

	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// SplitIDs parses a comma-separated id list, skipping blanks.
func SplitIDs(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func dropAll(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return ""
	}
	return s
}
