package flow

import (
	"strconv"
	"strings"
)

// Evaluate resolves a conditional node against the stored answers of a session,
// keyed by question id. It has no side effects. Questions that have not been
// answered yet simply make their predicates false.
func Evaluate(n *Node, answers map[string]string) string {
	if n.Condition != nil && check(*n.Condition, answers) {
		return n.IfTrue
	}
	return n.IfFalse
}

func check(c Condition, answers map[string]string) bool {
	answer, ok := answers[c.QuestionID]
	if !ok {
		return false
	}

	switch c.CheckType {
	case CheckHasAnswer:
		return answer != ""
	case CheckContains:
		return answer != "" && strings.Contains(answer, c.Value)
	case CheckFirstRank:
		first, ok := firstRanked(answer)
		return ok && strings.Contains(first, c.Value)
	default:
		return false
	}
}

// firstRanked extracts X from a ranking serialized as "1. X, 2. Y, ...".
func firstRanked(answer string) (string, bool) {
	head, _, _ := strings.Cut(answer, listSeparator)
	num, item, ok := strings.Cut(head, ". ")
	if !ok {
		return "", false
	}
	if pos, err := strconv.Atoi(strings.TrimSpace(num)); err != nil || pos != 1 {
		return "", false
	}
	return item, true
}
