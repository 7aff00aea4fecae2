package catalog

import (
	"fmt"

	"github.com/gosimple/slug"
)

// Slugify builds the URL-safe form of a product name or category.
func Slugify(s string) string {
	return slug.Make(s)
}

// SlugCandidate returns the n-th candidate for base: base itself, then base-2, base-3...
func SlugCandidate(base string, n int) string {
	if n <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
