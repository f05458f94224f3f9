package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// ActorClassifier infers an actor code from free text when a record carries
// none. It returns "" when it cannot decide.
type ActorClassifier interface {
	ClassifyActor(title, description, location string) string
}

// ActorField selects which text an ActorRule matches against.
type ActorField string

const (
	ActorFieldText     ActorField = "text"     // description + title
	ActorFieldLocation ActorField = "location" // location string only
)

// ActorRule assigns Code when Pattern matches the selected field.
type ActorRule struct {
	Code    string
	Field   ActorField
	Pattern *regexp.Regexp
}

// NewActorRule compiles a case-insensitive rule.
func NewActorRule(code string, field ActorField, pattern string) (ActorRule, error) {
	re, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		return ActorRule{}, fmt.Errorf("compile actor rule %s: %w", code, err)
	}
	if field == "" {
		field = ActorFieldText
	}
	return ActorRule{Code: strings.ToUpper(code), Field: field, Pattern: re}, nil
}

// KeywordActorClassifier evaluates rules in order; the first match wins.
type KeywordActorClassifier struct {
	rules []ActorRule
}

// NewKeywordActorClassifier wraps an ordered rule list.
func NewKeywordActorClassifier(rules []ActorRule) *KeywordActorClassifier {
	return &KeywordActorClassifier{rules: rules}
}

// DefaultActorRules mirrors the upstream pipeline's keyword heuristics:
// explicit actor and weapon-system keywords first, then the location of the
// strike (strikes inside Russia or occupied areas point to UKR, strikes deep
// in Ukraine point to RUS).
func DefaultActorRules() []ActorRule {
	return []ActorRule{
		mustActorRule("RUS", ActorFieldText, `\b(russ[oaie]|russian|rf|fed\.? russa|mosca|moscow|wagner|dpr|lpr|vks)\b`),
		mustActorRule("RUS", ActorFieldText, `\b(shahed|geran|iskander|kalibr|kinzhal|kh-\d+|fab-\d+|s-300|s-400)\b`),
		mustActorRule("UKR", ActorFieldText, `\b(ucrain[oaie]|ukrain[a-z]*|zsu|uaf|kiev troops|forze di kiev)\b`),
		mustActorRule("UKR", ActorFieldText, `\b(himars|atacms|storm shadow|scalp|magura|sea baby|neptune)\b`),
		mustActorRule("UKR", ActorFieldLocation, `belgorod|kursk|voronezh|rostov|crimea|sevastopol|kerch|mosc[oa]|krasnodar|bryansk|lipetsk|novorossiysk`),
		mustActorRule("RUS", ActorFieldLocation, `kyiv|kiev|kharkiv|kharkov|odesa|odessa|lviv|lvov|dnipro|zaporizhzhia|vinnytsia|sumy|poltava|chernihiv|kryvyi rih`),
	}
}

func mustActorRule(code string, field ActorField, pattern string) ActorRule {
	r, err := NewActorRule(code, field, pattern)
	if err != nil {
		panic(err)
	}
	return r
}

func (c *KeywordActorClassifier) ClassifyActor(title, description, location string) string {
	text := description + " " + title
	for _, r := range c.rules {
		subject := text
		if r.Field == ActorFieldLocation {
			subject = location
		}
		if r.Pattern.MatchString(subject) {
			return r.Code
		}
	}
	return ""
}
