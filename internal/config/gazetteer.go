package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/couchcryptid/conflict-dashboard/internal/domain"
	"gopkg.in/yaml.v3"
)

// Gazetteer is the optional YAML file that replaces the built-in place-name
// synonyms and actor keyword rules.
//
//	synonyms:
//	  kiev: kyiv
//	  kharkov: kharkiv
//	actors:
//	  - code: RUS
//	    when: ['\bshahed\b', 'iskander']
//	  - code: UKR
//	    field: location
//	    when: ['belgorod', 'kursk']
type Gazetteer struct {
	Synonyms map[string]string `yaml:"synonyms"`
	Actors   []ActorRuleConfig `yaml:"actors"`
}

// ActorRuleConfig assigns Code when any pattern in When matches Field.
type ActorRuleConfig struct {
	Code  string   `yaml:"code"`
	Field string   `yaml:"field"` // text (default) or location
	When  []string `yaml:"when"`
}

// LoadGazetteer reads and validates a gazetteer file.
func LoadGazetteer(path string) (*Gazetteer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gazetteer: %w", err)
	}
	var g Gazetteer
	if err := yaml.Unmarshal(b, &g); err != nil {
		return nil, fmt.Errorf("parse gazetteer %s: %w", path, err)
	}
	for i, a := range g.Actors {
		if a.Code == "" {
			return nil, fmt.Errorf("gazetteer actor rule %d: code is required", i)
		}
		if len(a.When) == 0 {
			return nil, fmt.Errorf("gazetteer actor rule %d (%s): when is required", i, a.Code)
		}
		switch domain.ActorField(a.Field) {
		case "", domain.ActorFieldText, domain.ActorFieldLocation:
		default:
			return nil, fmt.Errorf("gazetteer actor rule %d (%s): unknown field %q", i, a.Code, a.Field)
		}
	}
	return &g, nil
}

// Dictionary returns the synonym dictionary, or the built-in one when the
// file defines no synonyms.
func (g *Gazetteer) Dictionary() *domain.Dictionary {
	if g == nil || len(g.Synonyms) == 0 {
		return domain.DefaultDictionary()
	}
	return domain.NewDictionary(g.Synonyms)
}

// ActorClassifier compiles the actor rules in file order, or returns the
// built-in rules when the file defines none.
func (g *Gazetteer) ActorClassifier() (*domain.KeywordActorClassifier, error) {
	if g == nil || len(g.Actors) == 0 {
		return domain.NewKeywordActorClassifier(domain.DefaultActorRules()), nil
	}

	var rules []domain.ActorRule
	var errs []error
	for _, a := range g.Actors {
		for _, pattern := range a.When {
			r, err := domain.NewActorRule(a.Code, domain.ActorField(a.Field), pattern)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			rules = append(rules, r)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return domain.NewKeywordActorClassifier(rules), nil
}
