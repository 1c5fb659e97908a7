package lexicon

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Entry is a single admin-managed blocklist term.
//
// When Pattern is true the term matches as a substring anywhere in the text;
// otherwise it must match a full token. Domain entries live in Lexicon.Domains
// and have their own pattern convention: a leading "." marks a fragment which
// matches anywhere in a URL, anything else matches against the URL host.
type Entry struct {
	Value   string `json:"value"`
	Pattern bool   `json:"pattern,omitempty"`
}

// Lexicon is the full set of admin-editable blocklists for one workflow.
type Lexicon struct {
	Terms   []Entry  `json:"terms"`
	Domains []string `json:"domains"`
}

// Loads a lexicon from a local JSON file. Used for seeding and for operators
// running without a database.
func LoadFromFileJSON(p string) (*Lexicon, error) {

	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	var lex Lexicon
	if err := json.Unmarshal(raw, &lex); err != nil {
		return nil, fmt.Errorf("parsing lexicon JSON: %w", err)
	}
	return &lex, nil
}
