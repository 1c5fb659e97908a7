package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchTextExact(t *testing.T) {
	assert := assert.New(t)
	m := NewMatcher(nil)

	terms := []Entry{
		{Value: "badword"},
		{Value: "free-nitro", Pattern: true},
	}

	hits := m.MatchText("this contains badword in the middle", terms)
	if assert.Len(hits, 1) {
		assert.Equal("badword", hits[0].Value)
		assert.Equal(MatchExact, hits[0].Type)
	}

	hits = m.MatchText("claim your free-nitro today", terms)
	if assert.Len(hits, 1) {
		assert.Equal("free-nitro", hits[0].Value)
	}

	assert.Empty(m.MatchText("a perfectly ordinary sentence", terms))
}

func TestMatchTextStretching(t *testing.T) {
	assert := assert.New(t)
	m := NewMatcher(nil)
	terms := []Entry{{Value: "badword"}}

	// every character tripled
	hits := m.MatchText("bbbaaadddwwwooorrrddd", terms)
	if assert.Len(hits, 1) {
		assert.Equal("badword", hits[0].Value)
	}

	// upper-case stretching
	hits = m.MatchText("BBBAAADDDWWWOOORRRDDD!!!", terms)
	assert.Len(hits, 1)

	// unrelated string of similar length
	assert.Empty(m.MatchText("cccdddeeefffggghhhiiijjj", terms))
}

func TestMatchTextStretchingDoubledLetters(t *testing.T) {
	assert := assert.New(t)
	m := NewMatcher(nil)

	// terms with legitimate double letters must survive stretching; the run
	// collapse alone would fold "llll" down past the double
	terms := []Entry{{Value: "ball"}}
	for _, text := range []string{
		"bbbaaallllll",
		"baaallll",
		"b-a-l-l",
	} {
		assert.Len(m.MatchText(text, terms), 1, "text=%q", text)
	}

	hits := m.MatchText("bbbooooobbbsss", []Entry{{Value: "boobs"}})
	assert.Len(hits, 1)

	assert.Empty(m.MatchText("bal", terms))
}

func TestMatchTextSeparators(t *testing.T) {
	assert := assert.New(t)
	m := NewMatcher(nil)
	terms := []Entry{{Value: "badword"}}

	for _, text := range []string{
		"b.a.d.w.o.r.d",
		"b a d w o r d",
		"b*a*d*w*o*r*d",
		"b_a_d-w-o_r_d",
	} {
		hits := m.MatchText(text, terms)
		if assert.Len(hits, 1, "text=%q", text) {
			assert.Equal(MatchObfuscated, hits[0].Type)
		}
	}
}

func TestMatchTextLeet(t *testing.T) {
	assert := assert.New(t)
	m := NewMatcher(nil)
	terms := []Entry{{Value: "hateful"}}

	hits := m.MatchText("such a h@73fu1 message", terms)
	if assert.Len(hits, 1) {
		assert.Equal("hateful", hits[0].Value)
		assert.Equal(MatchLeet, hits[0].Type)
	}

	assert.Empty(m.MatchText("such a grateful message", []Entry{{Value: "spite"}}))
}

func TestMatchTextMultiWordTerm(t *testing.T) {
	assert := assert.New(t)
	m := NewMatcher(nil)
	terms := []Entry{{Value: "free nitro"}}

	assert.Len(m.MatchText("get your free nitro here", terms), 1)
	assert.Empty(m.MatchText("nitro is free of charge", terms))
}

func TestMatchTextMalformedEntry(t *testing.T) {
	assert := assert.New(t)
	m := NewMatcher(nil)

	// regex metacharacters in entries must be escaped, not crash the pass
	terms := []Entry{
		{Value: "c++(evil)"},
		{Value: "badword"},
	}
	hits := m.MatchText("c++(evil) and badword here", terms)
	assert.Len(hits, 2)
}

func TestMatchDomains(t *testing.T) {
	assert := assert.New(t)
	m := NewMatcher(nil)

	domains := []string{"scam.example", ".free-nitro"}

	// full domain: exact host
	hits := m.MatchDomains("go to https://scam.example/offer now", domains)
	if assert.Len(hits, 1) {
		assert.Equal("scam.example", hits[0].Value)
		assert.Equal(MatchDomain, hits[0].Type)
	}

	// full domain: subdomain suffix
	hits = m.MatchDomains("go to https://login.scam.example/offer now", domains)
	assert.Len(hits, 1)

	// pattern entry matches anywhere in the URL, not just the host
	hits = m.MatchDomains("grab https://example.com/get.free-nitro/now", domains)
	if assert.Len(hits, 1) {
		assert.Equal(".free-nitro", hits[0].Value)
	}

	assert.Empty(m.MatchDomains("see https://example.com/about", domains))
}

func TestCollapseRepeats(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("fuck", collapseRepeats("FFFUUUCCCKKK"))
	assert.Equal("ball", collapseRepeats("ball"))
	assert.Equal("bal", collapseRepeats("balll"))
	assert.Equal("", collapseRepeats(""))
}
