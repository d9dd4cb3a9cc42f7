package loader

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/leaplint/pkg/lint"
	"github.com/leapstack-labs/leaplint/pkg/token"
)

// ignorePattern matches "leaplint:ignore [names]" at the start of a comment.
// A bare pragma ignores every rule.
var ignorePattern = regexp.MustCompile(`(?i)^leaplint:ignore(?:\s+(.*))?$`)

// IgnoredByPragmas collects the rule names named by ignore pragmas. Names
// are separated by commas or spaces.
func IgnoredByPragmas(comments []*token.Comment) []string {
	var names []string
	for _, c := range comments {
		m := ignorePattern.FindStringSubmatch(c.Body())
		if m == nil {
			continue
		}
		list := strings.TrimSpace(m[1])
		if list == "" {
			return []string{"ALL"}
		}
		parsed := lint.Names(strings.FieldsFunc(list, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})...)
		if parsed.IsAll() {
			return []string{"ALL"}
		}
		names = append(names, parsed.Names()...)
	}
	return names
}

// ruleListNames flattens a configured list into names, ALL included.
func ruleListNames(l lint.RuleList) []string {
	if l.IsAll() {
		return []string{"ALL"}
	}
	return l.Names()
}
