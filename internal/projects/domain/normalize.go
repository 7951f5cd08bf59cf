package domain

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	reSlugStrip    = regexp.MustCompile(`[^\w\s-]`)
	reSlugCollapse = regexp.MustCompile(`[\s_-]+`)
)

// GenerateSlug builds "<kebab-title>-<unix millis>".
func GenerateSlug(title string, now time.Time) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = reSlugStrip.ReplaceAllString(s, "")
	s = reSlugCollapse.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return s + "-" + strconv.FormatInt(now.UnixMilli(), 10)
}

// AuthorName picks the owner's full name, then the manual author, then the default.
func AuthorName(ownerFullName, manualAuthor *string) string {
	if v := deref(ownerFullName); v != "" {
		return v
	}
	if v := deref(manualAuthor); v != "" {
		return v
	}
	return DefaultAuthorName
}

// OrDefault returns *s, or def when s is nil or blank.
func OrDefault(s *string, def string) string {
	if v := deref(s); v != "" {
		return v
	}
	return def
}

// SortImages orders by position ascending with null positions last; ties fall back to id.
func SortImages(images []Image) {
	sort.SliceStable(images, func(i, j int) bool {
		a, b := images[i], images[j]
		switch {
		case a.Position == nil && b.Position == nil:
			return a.ID < b.ID
		case a.Position == nil:
			return false
		case b.Position == nil:
			return true
		case *a.Position != *b.Position:
			return *a.Position < *b.Position
		default:
			return a.ID < b.ID
		}
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
