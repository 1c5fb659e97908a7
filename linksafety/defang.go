package linksafety

import (
	"strings"

	"github.com/haven-social/guardian/util"
)

// Defang rewrites a URL into a non-clickable display form (http -> hxxp,
// "." -> "[.]", "://" -> "[://]") so operators can safely read flagged links.
// The transformation is reversible via Refang.
func Defang(raw string) string {
	s := raw
	if strings.HasPrefix(strings.ToLower(s), "http") {
		s = "hxxp" + s[4:]
	}
	s = strings.Replace(s, "://", "[://]", 1)
	s = strings.ReplaceAll(s, ".", "[.]")
	return s
}

// DefangText rewrites every URL discovered in a text block into its defanged
// form, leaving the rest of the text untouched. Used for the safe display
// copy stored alongside queued content.
func DefangText(text string) string {
	for _, raw := range util.DedupeStrings(util.ExtractTextURLs(text)) {
		text = strings.ReplaceAll(text, raw, Defang(raw))
	}
	return text
}

// Refang is the exact inverse of Defang, for code paths which need the
// literal URL back (eg, re-submitting a queued URL for analysis).
func Refang(defanged string) string {
	s := strings.ReplaceAll(defanged, "[.]", ".")
	s = strings.Replace(s, "[://]", "://", 1)
	if strings.HasPrefix(strings.ToLower(s), "hxxp") {
		s = "http" + s[4:]
	}
	return s
}
