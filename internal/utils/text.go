package utils

import (
	"regexp"
	"strings"
)

var imageURLPattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png)(\?.*)?$`)

// IsImageURL reports whether the URL points at a supported image type.
// Profile and cover images are accepted by URL only; validation is limited to
// the file extension.
func IsImageURL(url string) bool {
	return imageURLPattern.MatchString(url)
}

// GenreSlug converts a display genre to the catalog's subject identifier
// ("Science Fiction" -> "science_fiction").
func GenreSlug(genre string) string {
	slug := strings.ToLower(strings.TrimSpace(genre))
	return strings.Join(strings.Fields(slug), "_")
}

// GenresOverlap reports whether any genre appears in both lists,
// case-insensitively.
func GenresOverlap(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}

	set := make(map[string]struct{}, len(a))
	for _, genre := range a {
		set[strings.ToLower(genre)] = struct{}{}
	}

	for _, genre := range b {
		if _, ok := set[strings.ToLower(genre)]; ok {
			return true
		}
	}

	return false
}

// NormalizeWorkKey strips the catalog's "/works/" prefix from a work key.
func NormalizeWorkKey(key string) string {
	return strings.TrimPrefix(key, "/works/")
}
