package lexicon

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars  = regexp.MustCompile(`[^\pL\pN]+`)
	nonTokenChars = regexp.MustCompile(`[^\pL\pN\s]+`)
)

// Slugify reduces a term to its comparable form: lower-case with everything
// except letters and digits stripped out.
func Slugify(orig string) string {
	return strings.ToLower(nonSlugChars.ReplaceAllString(orig, ""))
}

// TokenizeText splits free-form text into lower-case word tokens. Combining
// marks are stripped after NFD decomposition, so accent-decorated evasion
// ("bádwörd") folds down to the bare letters before comparison.
func TokenizeText(text string) []string {
	split := strings.ToLower(nonTokenChars.ReplaceAllString(text, " "))
	// the chained transformer carries state, so it cannot be shared across calls
	normFunc := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(normFunc, split)
	if err != nil {
		slog.Warn("unicode normalization error", "err", err)
		out = split
	}
	return strings.Fields(out)
}
