package lint

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// AllSentinel selects every available rule. It is reserved as a rule name.
const AllSentinel = "all"

// RuleList is a configured list of rule names.
//
// It has three states: omitted (the zero value), ALL, or an explicit list,
// which may be empty. Omitted lets defaults apply; an explicit empty list
// selects nothing.
type RuleList struct {
	set   bool
	all   bool
	names []string
}

// All returns the ALL list.
func All() RuleList {
	return RuleList{set: true, all: true}
}

// Names returns an explicit list. A name equal to ALL makes it the ALL list.
func Names(names ...string) RuleList {
	l := RuleList{set: true, names: make([]string, 0, len(names))}
	for _, n := range names {
		c := Canonicalize(n)
		if c == "" {
			continue
		}
		if c == AllSentinel {
			return All()
		}
		l.names = append(l.names, c)
	}
	return l
}

// IsSet reports whether the list was configured at all.
func (l RuleList) IsSet() bool { return l.set }

// IsAll reports whether the list is the ALL sentinel.
func (l RuleList) IsAll() bool { return l.all }

// IsEmpty reports whether the list selects no rule explicitly.
func (l RuleList) IsEmpty() bool { return !l.all && len(l.names) == 0 }

// Names returns the canonical names of an explicit list.
func (l RuleList) Names() []string {
	return slices.Clone(l.names)
}

// String renders the list as configured.
func (l RuleList) String() string {
	switch {
	case !l.set:
		return "<default>"
	case l.all:
		return "ALL"
	default:
		return "[" + strings.Join(l.names, ", ") + "]"
	}
}

// ParseRuleList converts a raw configuration value into a RuleList.
// nil is omitted; a string is "ALL" or comma-separated names; a list holds
// names.
func ParseRuleList(v any) (RuleList, error) {
	switch val := v.(type) {
	case nil:
		return RuleList{}, nil
	case RuleList:
		return val, nil
	case string:
		return ParseRuleNames(val), nil
	case []string:
		return Names(val...), nil
	case []any:
		names := make([]string, 0, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return RuleList{}, fmt.Errorf("rule list item %d: expected string, got %T", i, item)
			}
			names = append(names, s)
		}
		return Names(names...), nil
	default:
		return RuleList{}, fmt.Errorf("rule list: expected \"ALL\", a string or a list of strings, got %T", v)
	}
}

// ParseRuleNames parses "ALL" or a comma-separated list of names.
func ParseRuleNames(s string) RuleList {
	return Names(strings.Split(s, ",")...)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *RuleList) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseRuleList(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*l = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (l RuleList) MarshalYAML() (any, error) {
	switch {
	case !l.set:
		return nil, nil
	case l.all:
		return "ALL", nil
	default:
		return l.Names(), nil
	}
}

// Gather resolves a rule list against a registry. ALL returns the registry
// itself; an omitted or empty list returns an empty set; any name missing
// from the registry fails with an UnknownRuleError naming it.
func Gather(registry *RuleSet, list RuleList) (*RuleSet, error) {
	if list.IsAll() {
		if registry == nil {
			return &RuleSet{}, nil
		}
		return registry, nil
	}

	out := newSized(len(list.names))
	var unknown []string
	for _, name := range list.names {
		r, ok := registry.Get(name)
		if !ok {
			unknown = appendUniqueName(unknown, name)
			continue
		}
		out.put(name, r)
	}
	if len(unknown) > 0 {
		return nil, &UnknownRuleError{Names: unknown}
	}
	return out, nil
}

func appendUniqueName(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(names, name)
}

// IsZero reports whether the list was omitted.
func (l RuleList) IsZero() bool { return !l.set }
