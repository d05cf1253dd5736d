package flow

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const listSeparator = ", "

// Encode serializes an answer to the text stored with it. A nil answer encodes
// to the empty string.
func Encode(a Answer) (string, error) {
	switch v := a.(type) {
	case nil:
		return "", nil
	case TextAnswer:
		return v.Value, nil
	case ChoiceAnswer:
		return v.Value, nil
	case MultiChoiceAnswer:
		return strings.Join(v.Values, listSeparator), nil
	case RankingAnswer:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = fmt.Sprintf("%d. %s", i+1, item)
		}
		return strings.Join(parts, listSeparator), nil
	case FieldsAnswer:
		return canonicalJSON(v.Values)
	case ScaleAnswer:
		return canonicalJSON(v.Values)
	}
	return "", fmt.Errorf("encode: unsupported answer type %T", a)
}

// Payload returns the structured JSON form of the answer, kept alongside the
// stored text for reporting.
func Payload(a Answer) ([]byte, error) {
	switch v := a.(type) {
	case nil:
		return []byte("null"), nil
	case TextAnswer:
		return json.Marshal(v.Value)
	case ChoiceAnswer:
		return json.Marshal(v.Value)
	case MultiChoiceAnswer:
		return json.Marshal(v.Values)
	case RankingAnswer:
		return json.Marshal(v.Items)
	case FieldsAnswer:
		return json.Marshal(v.Values)
	case ScaleAnswer:
		return json.Marshal(v.Values)
	}
	return nil, fmt.Errorf("payload: unsupported answer type %T", a)
}

// encoding/json writes map keys in sorted order, which makes the output canonical.
func canonicalJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseStored is the best-effort reverse of Encode for reporting. It returns a
// []string for list types, a map for mapping types and the text unchanged for
// everything else or whenever parsing fails.
func ParseStored(inputType InputType, text string) interface{} {
	if text == "" {
		return text
	}
	switch inputType {
	case InputMultiChoice:
		return strings.Split(text, listSeparator)
	case InputRanking:
		items, ok := parseRanking(text)
		if !ok {
			return text
		}
		return items
	case InputMultiField, InputScale:
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(text), &m); err != nil {
			return text
		}
		return m
	}
	return text
}

// parseRanking splits "1. X, 2. Y" into its items. Every entry must carry its
// 1-based position prefix.
func parseRanking(text string) ([]string, bool) {
	parts := strings.Split(text, listSeparator)
	items := make([]string, 0, len(parts))
	for i, p := range parts {
		num, item, ok := strings.Cut(p, ". ")
		if !ok {
			return nil, false
		}
		pos, err := strconv.Atoi(strings.TrimSpace(num))
		if err != nil || pos != i+1 {
			return nil, false
		}
		items = append(items, item)
	}
	return items, true
}

// FormatForDisplay renders a stored answer for exports and admin views.
func FormatForDisplay(inputType InputType, text string) string {
	if text == "" {
		return "No answer provided"
	}
	if inputType != InputMultiField && inputType != InputScale {
		return text
	}
	m, ok := ParseStored(inputType, text).(map[string]interface{})
	if !ok {
		return text
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, m[k]))
	}
	return strings.Join(parts, " | ")
}
