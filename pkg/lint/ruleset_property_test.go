package lint_test

import (
	"fmt"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/leapstack-labs/leaplint/pkg/lint"
)

// fromIDs builds a set over a small name space so generated sets overlap.
func fromIDs(ids []int, tag string) *lint.RuleSet {
	rules := make([]lint.Rule, 0, len(ids))
	for _, id := range ids {
		rules = append(rules, fixed(fmt.Sprintf("r%d", id), tag, false))
	}
	return lint.MustRuleSet(rules...)
}

// sameSet compares names and payload tags.
func sameSet(a, b *lint.RuleSet) bool {
	if !slices.Equal(a.Names(), b.Names()) {
		return false
	}
	for name, r := range a.All() {
		other, _ := b.Get(name)
		if r.Summary() != other.Summary() {
			return false
		}
	}
	return true
}

func idSets() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, 7))
}

func TestRuleSetProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("gather ALL returns the registry", prop.ForAll(
		func(ids []int) bool {
			registry := fromIDs(ids, "r")
			got, err := lint.Gather(registry, lint.All())
			return err == nil && sameSet(got, registry)
		},
		idSets(),
	))

	properties.Property("union is idempotent", prop.ForAll(
		func(a, b []int) bool {
			A, B := fromIDs(a, "a"), fromIDs(b, "b")
			return sameSet(A.Union(B).Union(B), A.Union(B))
		},
		idSets(), idSets(),
	))

	properties.Property("difference with self is empty", prop.ForAll(
		func(a []int) bool {
			A := fromIDs(a, "a")
			return A.Difference(A).Len() == 0
		},
		idSets(),
	))

	properties.Property("(A ∪ B) − B ⊆ A", prop.ForAll(
		func(a, b []int) bool {
			A, B := fromIDs(a, "a"), fromIDs(b, "b")
			return A.Union(B).Difference(B).IsSubset(A)
		},
		idSets(), idSets(),
	))

	properties.Property("shared names take the right-hand payload", prop.ForAll(
		func(a, b []int) bool {
			A, B := fromIDs(a, "a"), fromIDs(b, "b")
			ab, ba := A.Union(B), B.Union(A)
			for _, name := range A.Intersection(B).Names() {
				if summaryAt(ab, name) != "b" || summaryAt(ba, name) != "a" {
					return false
				}
			}
			return true
		},
		idSets(), idSets(),
	))

	properties.Property("intersection keeps the right-hand payload", prop.ForAll(
		func(a, b []int) bool {
			A, B := fromIDs(a, "a"), fromIDs(b, "b")
			for _, r := range A.Intersection(B).All() {
				if r.Summary() != "b" {
					return false
				}
			}
			return true
		},
		idSets(), idSets(),
	))

	properties.Property("operations leave operands unchanged", prop.ForAll(
		func(a, b []int) bool {
			A, B := fromIDs(a, "a"), fromIDs(b, "b")
			before := A.Names()
			_ = A.Union(B)
			_ = A.Intersection(B)
			_ = A.Difference(B)
			return slices.Equal(before, A.Names())
		},
		idSets(), idSets(),
	))

	properties.TestingRun(t)
}

func summaryAt(s *lint.RuleSet, name string) string {
	r, ok := s.Get(name)
	if !ok {
		return ""
	}
	return r.Summary()
}
