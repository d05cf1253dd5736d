package flow

import "testing"

func TestEvaluate(t *testing.T) {
	cond := func(check CheckType, q, value string) *Node {
		return &Node{
			ID:        "branch",
			Kind:      KindConditional,
			Condition: &Condition{CheckType: check, QuestionID: q, Value: value},
			IfTrue:    "yes",
			IfFalse:   "no",
		}
	}

	tests := []struct {
		name    string
		node    *Node
		answers map[string]string
		want    string
	}{
		{"has_answer present", cond(CheckHasAnswer, "q1", ""), map[string]string{"q1": "hello"}, "yes"},
		{"has_answer empty", cond(CheckHasAnswer, "q1", ""), map[string]string{"q1": ""}, "no"},
		{"has_answer absent", cond(CheckHasAnswer, "q1", ""), map[string]string{}, "no"},
		{"contains substring", cond(CheckContains, "q1", "Shopify"), map[string]string{"q1": "Square, Shopify, Other: Wix"}, "yes"},
		{"contains missing", cond(CheckContains, "q1", "Shopify"), map[string]string{"q1": "Square"}, "no"},
		{"contains unanswered later question", cond(CheckContains, "q9", "x"), map[string]string{"q1": "x"}, "no"},
		{"first_rank match", cond(CheckFirstRank, "rank", "Growth"), map[string]string{"rank": "1. Growth, 2. Cost"}, "yes"},
		{"first_rank second place", cond(CheckFirstRank, "rank", "Cost"), map[string]string{"rank": "1. Growth, 2. Cost"}, "no"},
		{"first_rank malformed", cond(CheckFirstRank, "rank", "Growth"), map[string]string{"rank": "Growth, Cost"}, "no"},
		{"first_rank wrong position", cond(CheckFirstRank, "rank", "Growth"), map[string]string{"rank": "2. Growth"}, "no"},
		{"unknown check type", cond(CheckType("shopify_connected"), "q1", ""), map[string]string{"q1": "yes"}, "no"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.node, tt.answers)
			if got != tt.want {
				t.Errorf("Evaluate() = %q, want %q", got, tt.want)
			}
			// same inputs, same branch
			if again := Evaluate(tt.node, tt.answers); again != got {
				t.Errorf("Evaluate() not deterministic: %q then %q", got, again)
			}
		})
	}
}
