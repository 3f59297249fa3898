package rule

import (
	"sort"

	"github.com/darmiel/verdict/internal/core"
)

// Set is a collection of rules keyed by id.
type Set struct {
	rules map[string]*Rule
}

func NewSet(rules ...*Rule) (*Set, error) {
	s := &Set{rules: make(map[string]*Rule, len(rules))}
	for _, r := range rules {
		if err := s.Add(r); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Set) Add(r *Rule) error {
	if _, exists := s.rules[r.ID()]; exists {
		return &core.DuplicateRuleError{RuleID: r.ID()}
	}
	s.rules[r.ID()] = r
	return nil
}

func (s *Set) Get(id string) (*Rule, bool) {
	r, ok := s.rules[id]
	return r, ok
}

func (s *Set) Len() int {
	return len(s.rules)
}

// All returns every rule sorted by id.
func (s *Set) All() []*Rule {
	out := make([]*Rule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID() < out[j].ID()
	})
	return out
}

// Family returns the rules of one family sorted by id.
func (s *Set) Family(family string) []*Rule {
	var out []*Rule
	for _, r := range s.All() {
		if r.meta.Family == family {
			out = append(out, r)
		}
	}
	return out
}

// Defs returns the declarative form of every rule, sorted by id.
func (s *Set) Defs() []Def {
	all := s.All()
	out := make([]Def, len(all))
	for i, r := range all {
		out[i] = Describe(r)
	}
	return out
}
