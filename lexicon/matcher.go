package lexicon

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haven-social/guardian/util"
)

// match strategy which produced a hit
const (
	MatchExact      = "exact"
	MatchObfuscated = "obfuscated"
	MatchLeet       = "leet"
	MatchDomain     = "domain"
)

// Match records which lexicon entry was hit, and how. The strategy name is for
// the audit trail only; it is never shown to the content author.
type Match struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

// common letter -> symbol substitutions seen in leet-speak evasion
var leetClasses = map[rune]string{
	'a': `[a@4]`,
	'e': `[e3]`,
	'i': `[i1!|]`,
	'o': `[o0]`,
	's': `[s$5]`,
	't': `[t7+]`,
	'l': `[l1|]`,
	'b': `[b8]`,
	'g': `[g9]`,
}

// separators commonly inserted between characters to dodge substring filters
const obfuscationSeps = `[\s.*_\-]*`

type termPatterns struct {
	spaced *regexp.Regexp
	leet   *regexp.Regexp
}

// Matcher tests text against admin-managed blocklists, with fuzzy strategies
// that defeat character stretching, separator insertion, and leet-speak
// substitution. Generated patterns are expensive to build, so compiled forms
// are cached per term; the cache key is the term itself, so a lexicon update
// naturally hits fresh entries.
//
// Safe for concurrent use.
type Matcher struct {
	logger   *slog.Logger
	compiled *lru.Cache[string, *termPatterns]
}

func NewMatcher(logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[string, *termPatterns](8192)
	if err != nil {
		// only possible with a non-positive size
		panic(err)
	}
	return &Matcher{
		logger:   logger,
		compiled: cache,
	}
}

// Lower-cases text and collapses any run of three or more identical runes down
// to a single rune. Defeats "FFFUUUCCCKKK"-style character stretching while
// leaving legitimate double letters ("foo", "ball") alone; doubled characters
// are handled by the repetition patterns instead.
func collapseRepeats(text string) string {
	runes := []rune(strings.ToLower(text))
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		if j-i >= 3 {
			b.WriteRune(runes[i])
		} else {
			for k := i; k < j; k++ {
				b.WriteRune(runes[k])
			}
		}
		i = j
	}
	return b.String()
}

func (m *Matcher) patternsFor(term string) (*termPatterns, error) {
	if pats, ok := m.compiled.Get(term); ok {
		return pats, nil
	}

	var spacedParts, leetParts []string
	for _, r := range term {
		if r == ' ' {
			spacedParts = append(spacedParts, `\s+`)
			leetParts = append(leetParts, `\s+`)
			continue
		}
		quoted := regexp.QuoteMeta(string(r))
		spacedParts = append(spacedParts, "(?:"+quoted+")+")
		if class, ok := leetClasses[r]; ok {
			leetParts = append(leetParts, class+"+")
		} else {
			leetParts = append(leetParts, "(?:"+quoted+")+")
		}
	}

	spaced, err := regexp.Compile("(?i)" + strings.Join(spacedParts, obfuscationSeps))
	if err != nil {
		return nil, fmt.Errorf("compiling obfuscation pattern for term: %w", err)
	}
	leet, err := regexp.Compile("(?i)" + strings.Join(leetParts, obfuscationSeps))
	if err != nil {
		return nil, fmt.Errorf("compiling leet pattern for term: %w", err)
	}

	pats := &termPatterns{spaced: spaced, leet: leet}
	m.compiled.Add(term, pats)
	return pats, nil
}

// MatchText checks text against the given term entries. Strategies run in
// order (exact, obfuscated, leet) and short-circuit on the first hit per term.
// Malformed entries are skipped with a warning; they never abort the pass.
func (m *Matcher) MatchText(text string, terms []Entry) []Match {
	var out []Match
	if text == "" || len(terms) == 0 {
		return out
	}

	collapsed := collapseRepeats(text)
	// the fuzzy patterns absorb character stretching via their own repetition
	// quantifiers, so they run on the uncollapsed text; collapsing first would
	// fold doubled letters out of terms like "ball"
	lowered := strings.ToLower(text)
	tokens := TokenizeText(collapsed)

	for _, entry := range terms {
		term := strings.ToLower(strings.TrimSpace(entry.Value))
		if term == "" {
			continue
		}

		if entry.Pattern {
			if strings.Contains(collapsed, term) {
				out = append(out, Match{Value: entry.Value, Type: MatchExact})
				continue
			}
		} else if slices.Contains(tokens, Slugify(term)) {
			out = append(out, Match{Value: entry.Value, Type: MatchExact})
			continue
		}

		pats, err := m.patternsFor(term)
		if err != nil {
			m.logger.Warn("skipping malformed lexicon entry", "err", err)
			continue
		}
		if pats.spaced.MatchString(lowered) {
			out = append(out, Match{Value: entry.Value, Type: MatchObfuscated})
			continue
		}
		if pats.leet.MatchString(lowered) {
			out = append(out, Match{Value: entry.Value, Type: MatchLeet})
		}
	}
	return out
}

// MatchDomains extracts URLs from text and checks each against the blocked
// domain list. An entry with a leading "." is a fragment pattern and matches
// anywhere in the URL string; any other entry matches the URL host exactly, as
// a parent-domain suffix, or as a host substring.
func (m *Matcher) MatchDomains(text string, domains []string) []Match {
	var out []Match
	if text == "" || len(domains) == 0 {
		return out
	}

	urls := util.DedupeStrings(util.ExtractTextURLs(text))
	seen := make(map[string]bool)

	for _, raw := range urls {
		rawLower := strings.ToLower(raw)
		host := hostOf(rawLower)

		for _, d := range domains {
			d = strings.ToLower(strings.TrimSpace(d))
			if d == "" || seen[d] {
				continue
			}
			if strings.HasPrefix(d, ".") {
				if strings.Contains(rawLower, d) {
					out = append(out, Match{Value: d, Type: MatchDomain})
					seen[d] = true
				}
				continue
			}
			if host == d || strings.HasSuffix(host, "."+d) || strings.Contains(host, d) {
				out = append(out, Match{Value: d, Type: MatchDomain})
				seen[d] = true
			}
		}
	}
	return out
}

func hostOf(raw string) string {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
