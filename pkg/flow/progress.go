package flow

import "fmt"

// Progress is derived from the stored answers and never persisted.
type Progress struct {
	Current    int `json:"current"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// ProgressFor counts the distinct question-kind nodes among answeredIDs.
func (g *Graph) ProgressFor(answeredIDs []string) Progress {
	seen := make(map[string]bool, len(answeredIDs))
	for _, id := range answeredIDs {
		if _, ok := g.Question(id); ok {
			seen[id] = true
		}
	}
	return NewProgress(len(seen), g.totalQuestions)
}

// NewProgress computes floor(100*answered/total), bounded to [0, 100].
func NewProgress(answered, total int) Progress {
	pct := 0
	if total > 0 {
		pct = 100 * answered / total
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return Progress{Current: answered, Total: total, Percentage: pct}
}

// Resolve walks from a question to the next question or end node, hopping
// through conditionals. The number of hops is bounded by the node count so a
// cyclic configuration fails with ErrFlowConfig instead of looping.
func (g *Graph) Resolve(from *Node, answers map[string]string) (*Node, error) {
	nextID := from.NextID()
	for hops := 0; ; hops++ {
		if hops > len(g.nodes) {
			return nil, fmt.Errorf("%w: conditional resolution from %q exceeded %d hops", ErrFlowConfig, from.ID, len(g.nodes))
		}
		node, ok := g.byID[nextID]
		if !ok {
			return nil, fmt.Errorf("%w: node %q does not exist", ErrFlowConfig, nextID)
		}
		if !node.IsConditional() {
			return node, nil
		}
		nextID = Evaluate(node, answers)
	}
}

// CompletionMessage returns the end node's message or the default one.
func (n *Node) CompletionMessage() string {
	if n.Message != "" {
		return n.Message
	}
	return DefaultCompletionMessage
}
