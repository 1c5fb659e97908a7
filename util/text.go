package util

import (
	"fmt"
	"regexp"

	"github.com/spaolacci/murmur3"
)

// DedupeStrings drops repeated values, preserving first-seen order.
func DedupeStrings(in []string) []string {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		if !seen[v] {
			out = append(out, v)
			seen[v] = true
		}
	}
	return out
}

// HashOfString returns a short hex fingerprint of s (murmur3, default seed).
// Used to correlate queue entries with their content; not collision-resistant
// against an adversary.
func HashOfString(s string) string {
	val := murmur3.Sum64([]byte(s))
	return fmt.Sprintf("%016x", val)
}

// matches scheme-ful URLs and bare domains alike; requires an interior dot so
// plain words do not qualify, and never ends on a trailing period
var urlRegex = regexp.MustCompile(`(?:(?:https?|ftp):\/\/)?[\w/\-?=%.]+\.[\w/\-&?=%.]*[\w/\-&?=%]+`)

// ExtractTextURLs returns every URL-shaped substring of raw, in order of
// appearance, duplicates included.
func ExtractTextURLs(raw string) []string {
	return urlRegex.FindAllString(raw, -1)
}
