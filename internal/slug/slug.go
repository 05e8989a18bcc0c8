// Package slug derives URL-safe identifiers from display names.
//
// Two allocation policies coexist, mirroring the callers' needs:
// category and subcategory names are globally unique, so a collision is
// a Conflict surfaced by the caller; product names may repeat, so
// Allocate disambiguates with a millisecond timestamp suffix instead of
// failing the request.
package slug

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make normalizes a display name: trim, lowercase, diacritics stripped
// to ASCII, every run of non-alphanumeric characters collapsed to one
// hyphen.
func Make(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if out, _, err := transform.String(deaccent, s); err == nil {
		s = out
	}

	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ExistsFunc reports whether a slug is already taken.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Allocate returns a storable slug for name, appending the current Unix
// millisecond timestamp when the base slug is taken. The underlying
// unique constraint remains the final arbiter under concurrency.
func Allocate(ctx context.Context, name string, exists ExistsFunc) (string, error) {
	base := Make(name)
	taken, err := exists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	return base + "-" + strconv.FormatInt(time.Now().UnixMilli(), 10), nil
}
