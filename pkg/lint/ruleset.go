package lint

import (
	"iter"
	"slices"

	"github.com/leapstack-labs/leaplint/pkg/core"
)

// RuleSet is an ordered collection of rules keyed by canonical name.
//
// A RuleSet is never modified after construction; set operations return
// new sets. The zero value and nil are valid empty sets.
type RuleSet struct {
	names []string        // insertion order
	rules map[string]Rule // keyed by canonical name
}

// NewRuleSet builds a set from rules in order. A later rule replaces an
// earlier one of the same name in that name's original position.
func NewRuleSet(rules ...Rule) (*RuleSet, error) {
	s := &RuleSet{rules: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		name := CanonicalName(r)
		if name == "" || name == AllSentinel {
			return nil, &ReservedNameError{Name: name}
		}
		s.put(name, r)
	}
	return s, nil
}

// MustRuleSet is like NewRuleSet but panics on an invalid rule name.
// Intended for static rule lists.
func MustRuleSet(rules ...Rule) *RuleSet {
	s, err := NewRuleSet(rules...)
	if err != nil {
		panic(err)
	}
	return s
}

func newSized(n int) *RuleSet {
	return &RuleSet{names: make([]string, 0, n), rules: make(map[string]Rule, n)}
}

func (s *RuleSet) put(name string, r Rule) {
	if _, ok := s.rules[name]; !ok {
		s.names = append(s.names, name)
	}
	s.rules[name] = r
}

func (s *RuleSet) clone() *RuleSet {
	c := newSized(s.Len())
	for name, r := range s.All() {
		c.put(name, r)
	}
	return c
}

// Len returns the number of rules.
func (s *RuleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Contains reports whether a rule with the given name is in the set.
// The name is canonicalized first.
func (s *RuleSet) Contains(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Get returns the rule registered under name.
func (s *RuleSet) Get(name string) (Rule, bool) {
	return s.lookup(Canonicalize(name))
}

// Names returns the canonical names in insertion order.
func (s *RuleSet) Names() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.names)
}

// All iterates over (name, rule) pairs in insertion order.
func (s *RuleSet) All() iter.Seq2[string, Rule] {
	return func(yield func(string, Rule) bool) {
		if s == nil {
			return
		}
		for _, name := range s.names {
			if !yield(name, s.rules[name]) {
				return
			}
		}
	}
}

// IsSubset reports whether every name in s is also in other.
func (s *RuleSet) IsSubset(other *RuleSet) bool {
	for name := range s.All() {
		if !other.has(name) {
			return false
		}
	}
	return true
}

func (s *RuleSet) has(name string) bool {
	_, ok := s.lookup(name)
	return ok
}

// lookup finds a rule by canonical name.
func (s *RuleSet) lookup(name string) (Rule, bool) {
	if s == nil {
		return nil, false
	}
	r, ok := s.rules[name]
	return r, ok
}

// Union returns the rules in s or any of others, folding left to right.
// For a name present on both sides of a step, the right-hand rule is kept.
func (s *RuleSet) Union(others ...*RuleSet) *RuleSet {
	out := s.clone()
	for _, o := range others {
		for name, r := range o.All() {
			out.put(name, r)
		}
	}
	return out
}

// Intersection returns the rules present in s and every one of others,
// folding left to right. Each step keeps the right-hand rule.
func (s *RuleSet) Intersection(others ...*RuleSet) *RuleSet {
	out := s.clone()
	for _, o := range others {
		next := newSized(min(out.Len(), o.Len()))
		for _, name := range out.names {
			if r, ok := o.lookup(name); ok {
				next.put(name, r)
			}
		}
		out = next
	}
	return out
}

// Difference returns the rules in s that are in none of others.
func (s *RuleSet) Difference(others ...*RuleSet) *RuleSet {
	out := newSized(s.Len())
	for name, r := range s.All() {
		excluded := false
		for _, o := range others {
			if o.has(name) {
				excluded = true
				break
			}
		}
		if !excluded {
			out.put(name, r)
		}
	}
	return out
}

// Check runs every rule against the model and returns the violations in
// set order. Violations get their rule name set, and the rule summary
// as explanation when they carry none.
func (s *RuleSet) Check(m *core.Model) []Violation {
	var violations []Violation
	for name, r := range s.All() {
		v := r.Check(m)
		if v == nil {
			continue
		}
		out := *v
		out.Rule = name
		if out.Explanation == "" {
			out.Explanation = r.Summary()
		}
		violations = append(violations, out)
	}
	return violations
}
