package domain

import (
	"slices"
	"strings"
)

// SynonymResolver bridges alternate spellings of place names for search.
// The default is a fixed dictionary; a gazetteer service can stand in.
type SynonymResolver interface {
	// Expand returns token followed by every spelling equivalent to it:
	// its canonical form if token is an alias, its aliases if token is canonical.
	Expand(token string) []string

	// AliasesIn returns the aliases of every canonical form contained in text.
	AliasesIn(text string) []string
}

// defaultSynonyms maps historical transliterations to the current spelling.
var defaultSynonyms = map[string]string{
	"kiev":           "kyiv",
	"kiew":           "kyiv",
	"kharkov":        "kharkiv",
	"odessa":         "odesa",
	"nikolaev":       "mykolaiv",
	"artemivsk":      "bakhmut",
	"dnepropetrovsk": "dnipro",
	"lvov":           "lviv",
}

// Dictionary is a lookup-table SynonymResolver. All entries are lower case.
type Dictionary struct {
	canonical map[string]string   // alias -> canonical
	aliases   map[string][]string // canonical -> sorted aliases
	forms     []string            // sorted canonical forms
}

// NewDictionary builds a dictionary from alias -> canonical pairs. Keys and
// values are lower-cased; empty entries and self-mappings are ignored.
func NewDictionary(aliasToCanonical map[string]string) *Dictionary {
	d := &Dictionary{
		canonical: make(map[string]string, len(aliasToCanonical)),
		aliases:   make(map[string][]string),
	}
	for alias, canon := range aliasToCanonical {
		alias = strings.ToLower(strings.TrimSpace(alias))
		canon = strings.ToLower(strings.TrimSpace(canon))
		if alias == "" || canon == "" || alias == canon {
			continue
		}
		d.canonical[alias] = canon
		d.aliases[canon] = append(d.aliases[canon], alias)
	}
	for canon, list := range d.aliases {
		slices.Sort(list)
		d.forms = append(d.forms, canon)
	}
	slices.Sort(d.forms)
	return d
}

// DefaultDictionary returns the built-in place-name dictionary.
func DefaultDictionary() *Dictionary {
	return NewDictionary(defaultSynonyms)
}

// Len reports the number of aliases.
func (d *Dictionary) Len() int {
	return len(d.canonical)
}

func (d *Dictionary) Expand(token string) []string {
	out := []string{token}
	key := strings.ToLower(token)
	if canon, ok := d.canonical[key]; ok {
		out = appendUnique(out, canon)
	}
	for _, alias := range d.aliases[key] {
		out = appendUnique(out, alias)
	}
	return out
}

func (d *Dictionary) AliasesIn(text string) []string {
	text = strings.ToLower(text)
	var out []string
	for _, canon := range d.forms {
		if strings.Contains(text, canon) {
			for _, alias := range d.aliases[canon] {
				out = appendUnique(out, alias)
			}
		}
	}
	return out
}

func appendUnique(list []string, s string) []string {
	if slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}
