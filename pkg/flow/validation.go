package flow

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const otherPrefix = "Other:"

// Sanitization limits applied to client input before validation.
const (
	MaxTextLength = 10000
	MaxListItems  = 100
	MaxItemLength = 500
)

// Validate checks an answer against the question's type and constraints. It
// returns nil or a *ValidationError naming the violated rule.
func Validate(n *Node, a Answer) error {
	if a == nil || a.Empty() {
		if n.Required {
			return requiredError(n)
		}
		return nil
	}
	if a.InputType() != n.InputType {
		return invalid(n, "Invalid answer format for %s question", n.InputType)
	}

	switch v := a.(type) {
	case TextAnswer:
		return validateText(n, v)
	case ChoiceAnswer:
		return validateSingleChoice(n, v)
	case MultiChoiceAnswer:
		return validateMultiChoice(n, v)
	case FieldsAnswer:
		return validateMultiField(n, v)
	case RankingAnswer:
		return validateRanking(n, v)
	case ScaleAnswer:
		return validateScale(n, v)
	}
	return invalid(n, "Unsupported input type %q", n.InputType)
}

func requiredError(n *Node) error {
	switch n.InputType {
	case InputMultiChoice, InputRanking:
		return invalid(n, "Please select at least one option")
	case InputMultiField, InputScale:
		return invalid(n, "Please fill in all fields")
	}
	return invalid(n, "This field is required")
}

func validateText(n *Node, a TextAnswer) error {
	v := n.Validation
	length := utf8.RuneCountInString(a.Value)
	if v.MinLength != nil && length < *v.MinLength {
		return invalid(n, "Minimum %d characters required", *v.MinLength)
	}
	if v.MaxLength != nil && length > *v.MaxLength {
		return invalid(n, "Maximum %d characters allowed", *v.MaxLength)
	}
	if n.pattern != nil && !n.pattern.MatchString(a.Value) {
		if v.PatternMessage != "" {
			return invalid(n, "%s", v.PatternMessage)
		}
		return invalid(n, "Invalid format")
	}
	return nil
}

func validateSingleChoice(n *Node, a ChoiceAnswer) error {
	if !contains(n.Options, a.Value) {
		return invalid(n, "Invalid option selected")
	}
	return nil
}

func validateMultiChoice(n *Node, a MultiChoiceAnswer) error {
	for _, item := range a.Values {
		if !contains(n.Options, item) && !strings.HasPrefix(item, otherPrefix) {
			return invalid(n, "Invalid option: %s", item)
		}
	}
	v := n.Validation
	if v.MinSelections != nil && len(a.Values) < *v.MinSelections {
		return invalid(n, "Please select at least %d option(s)", *v.MinSelections)
	}
	if v.MaxSelections != nil && len(a.Values) > *v.MaxSelections {
		return invalid(n, "Please select at most %d option(s)", *v.MaxSelections)
	}
	return nil
}

func validateMultiField(n *Node, a FieldsAnswer) error {
	for _, name := range n.FieldNames() {
		if _, ok := a.Values[name]; !ok {
			return invalid(n, "Missing field: %s", name)
		}
	}
	for _, key := range sortedKeys(a.Values) {
		if !contains(n.FieldNames(), key) {
			return invalid(n, "Unknown field: %s", key)
		}
	}
	var empty []string
	for _, name := range n.FieldNames() {
		if strings.TrimSpace(a.Values[name]) == "" {
			empty = append(empty, name)
		}
	}
	if len(empty) > 0 {
		return invalid(n, "Please fill in: %s", strings.Join(empty, ", "))
	}
	return nil
}

func validateRanking(n *Node, a RankingAnswer) error {
	seen := make(map[string]bool, len(a.Items))
	for _, item := range a.Items {
		if seen[item] {
			return invalid(n, "Duplicate items in ranking")
		}
		seen[item] = true
	}
	if len(a.Items) != len(n.Options) {
		return invalid(n, "Ranking must include all options exactly once")
	}
	for _, opt := range n.Options {
		if !seen[opt] {
			return invalid(n, "Ranking must include all options exactly once")
		}
	}
	return nil
}

func validateScale(n *Node, a ScaleAnswer) error {
	for _, f := range n.Fields {
		value, ok := a.Values[f.Name]
		if !ok {
			return invalid(n, "Missing rating for: %s", f.displayName())
		}
		lo, hi := f.Bounds()
		if value < lo || value > hi {
			return invalid(n, "Rating for %s must be between %g and %g", f.displayName(), lo, hi)
		}
	}
	for _, key := range sortedKeys(a.Values) {
		if !contains(n.FieldNames(), key) {
			return invalid(n, "Unknown field: %s", key)
		}
	}
	return nil
}

// Sanitize trims and caps free-form client input. It never rejects anything;
// validation runs afterwards on the result.
func Sanitize(a Answer) Answer {
	switch v := a.(type) {
	case TextAnswer:
		return TextAnswer{Value: cleanString(v.Value, MaxTextLength)}
	case ChoiceAnswer:
		return ChoiceAnswer{Value: cleanString(v.Value, MaxItemLength)}
	case MultiChoiceAnswer:
		return MultiChoiceAnswer{Values: cleanList(v.Values)}
	case RankingAnswer:
		return RankingAnswer{Items: cleanList(v.Items)}
	case FieldsAnswer:
		out := make(map[string]string, len(v.Values))
		for k, val := range v.Values {
			out[cleanString(k, MaxItemLength)] = cleanString(val, MaxTextLength)
		}
		return FieldsAnswer{Values: out}
	}
	return a
}

func cleanString(s string, limit int) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > limit {
		s = string([]rune(s)[:limit])
	}
	return s
}

func cleanList(items []string) []string {
	if len(items) > MaxListItems {
		items = items[:MaxListItems]
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = cleanString(item, MaxItemLength)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
