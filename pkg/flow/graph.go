// Package flow interprets the questionnaire graph: question, conditional and end
// nodes, the answers collected for them, and the rules that move a session
// from one question to the next.
package flow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

type NodeKind string

const (
	KindQuestion    NodeKind = "question"
	KindConditional NodeKind = "conditional"
	KindEnd         NodeKind = "end"
)

type InputType string

const (
	InputText         InputType = "text"
	InputSingleChoice InputType = "single_choice"
	InputMultiChoice  InputType = "multi_choice"
	InputMultiField   InputType = "multi_field"
	InputRanking      InputType = "ranking"
	InputScale        InputType = "scale"
)

// EndNodeID is the implicit target of a question that declares no next node.
const EndNodeID = "end"

// DefaultCompletionMessage is used when the flow reaches an end without a message.
const DefaultCompletionMessage = "Thank you for completing the questionnaire!"

// Field is one entry of a multi_field or scale question.
type Field struct {
	Name        string   `json:"name" yaml:"name"`
	Label       string   `json:"label" yaml:"label"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Min         *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Bounds returns the scale range of the field, defaulting to 1..10.
func (f Field) Bounds() (float64, float64) {
	lo, hi := 1.0, 10.0
	if f.Min != nil {
		lo = *f.Min
	}
	if f.Max != nil {
		hi = *f.Max
	}
	return lo, hi
}

func (f Field) displayName() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Validation holds the optional type-specific constraints of a question.
type Validation struct {
	MinLength      *int   `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength      *int   `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Pattern        string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	PatternMessage string `json:"pattern_message,omitempty" yaml:"pattern_message,omitempty"`
	MinSelections  *int   `json:"min_selections,omitempty" yaml:"min_selections,omitempty"`
	MaxSelections  *int   `json:"max_selections,omitempty" yaml:"max_selections,omitempty"`
}

type CheckType string

const (
	CheckHasAnswer CheckType = "has_answer"
	CheckContains  CheckType = "contains"
	CheckFirstRank CheckType = "first_rank"
)

// Condition is the predicate of a conditional node.
type Condition struct {
	CheckType  CheckType `json:"check_type" yaml:"check_type"`
	QuestionID string    `json:"question_id" yaml:"question_id"`
	Value      string    `json:"value,omitempty" yaml:"value,omitempty"`
}

// Node is a vertex of the flow graph. Which fields are meaningful depends on Kind.
type Node struct {
	ID   string   `json:"id" yaml:"id"`
	Kind NodeKind `json:"type" yaml:"type"`

	// question
	Text        string     `json:"text,omitempty" yaml:"text,omitempty"`
	InputType   InputType  `json:"input_type,omitempty" yaml:"input_type,omitempty"`
	Options     []string   `json:"options,omitempty" yaml:"options,omitempty"`
	Fields      []Field    `json:"fields,omitempty" yaml:"fields,omitempty"`
	Required    bool       `json:"required,omitempty" yaml:"required,omitempty"`
	HelpText    string     `json:"help_text,omitempty" yaml:"help_text,omitempty"`
	Placeholder string     `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	AllowOther  bool       `json:"allow_other,omitempty" yaml:"allow_other,omitempty"`
	Validation  Validation `json:"validation,omitempty" yaml:"validation,omitempty"`
	Next        string     `json:"next,omitempty" yaml:"next,omitempty"`

	// conditional
	Condition *Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
	IfTrue    string     `json:"if_true,omitempty" yaml:"if_true,omitempty"`
	IfFalse   string     `json:"if_false,omitempty" yaml:"if_false,omitempty"`

	// end
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	pattern *regexp.Regexp
}

func (n *Node) IsQuestion() bool    { return n.Kind == KindQuestion }
func (n *Node) IsConditional() bool { return n.Kind == KindConditional }
func (n *Node) IsEnd() bool         { return n.Kind == KindEnd }

// NextID returns the node a question moves to, falling back to the implicit end.
func (n *Node) NextID() string {
	if n.Next == "" {
		return EndNodeID
	}
	return n.Next
}

// FieldNames returns the declared field names in order.
func (n *Node) FieldNames() []string {
	names := make([]string, 0, len(n.Fields))
	for _, f := range n.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Config is the raw flow document.
type Config struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
}

// Graph is the parsed, validated flow. It is never mutated after Build returns.
type Graph struct {
	nodes          []*Node
	byID           map[string]*Node
	totalQuestions int
}

// LoadFile reads a flow document from disk. Files ending in .yaml or .yml are
// parsed as YAML, anything else as JSON.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flow config %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("parse %s: %v", path, err)}
	}
	return Build(cfg)
}

// Parse builds a graph from a JSON flow document.
func Parse(data []byte) (*Graph, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("parse flow config: %v", err)}
	}
	return Build(cfg)
}

// Build validates cfg and returns the immutable graph. Any structural problem is
// reported as a *ConfigError.
func Build(cfg Config) (*Graph, error) {
	if len(cfg.Nodes) == 0 {
		return nil, &ConfigError{Reason: "flow has no nodes"}
	}

	g := &Graph{
		nodes: make([]*Node, 0, len(cfg.Nodes)),
		byID:  make(map[string]*Node, len(cfg.Nodes)),
	}

	hasEnd := false
	for i := range cfg.Nodes {
		n := cfg.Nodes[i]
		if n.ID == "" {
			return nil, &ConfigError{Reason: fmt.Sprintf("node at index %d has no id", i)}
		}
		if _, dup := g.byID[n.ID]; dup {
			return nil, &ConfigError{NodeID: n.ID, Reason: "duplicate node id"}
		}
		if err := prepareNode(&n); err != nil {
			return nil, err
		}
		switch n.Kind {
		case KindQuestion:
			g.totalQuestions++
		case KindEnd:
			hasEnd = true
		}
		g.nodes = append(g.nodes, &n)
		g.byID[n.ID] = &n
	}

	if !hasEnd {
		return nil, &ConfigError{Reason: "flow has no end node"}
	}
	if !g.nodes[0].IsQuestion() {
		return nil, &ConfigError{NodeID: g.nodes[0].ID, Reason: "first node must be a question"}
	}

	for _, n := range g.nodes {
		switch n.Kind {
		case KindQuestion:
			if err := g.checkRef(n.ID, "next", n.NextID()); err != nil {
				return nil, err
			}
		case KindConditional:
			if err := g.checkRef(n.ID, "if_true", n.IfTrue); err != nil {
				return nil, err
			}
			if err := g.checkRef(n.ID, "if_false", n.IfFalse); err != nil {
				return nil, err
			}
			if ref, ok := g.byID[n.Condition.QuestionID]; !ok || !ref.IsQuestion() {
				return nil, &ConfigError{NodeID: n.ID, Reason: fmt.Sprintf("condition references unknown question %q", n.Condition.QuestionID)}
			}
		}
	}

	return g, nil
}

func prepareNode(n *Node) error {
	switch n.Kind {
	case KindQuestion:
		if n.InputType == "" {
			n.InputType = InputText
		}
		switch n.InputType {
		case InputText:
		case InputSingleChoice, InputMultiChoice, InputRanking:
			if len(n.Options) == 0 {
				return &ConfigError{NodeID: n.ID, Reason: fmt.Sprintf("%s question declares no options", n.InputType)}
			}
		case InputMultiField, InputScale:
			if len(n.Fields) == 0 {
				return &ConfigError{NodeID: n.ID, Reason: fmt.Sprintf("%s question declares no fields", n.InputType)}
			}
			seen := make(map[string]bool, len(n.Fields))
			for _, f := range n.Fields {
				if f.Name == "" || seen[f.Name] {
					return &ConfigError{NodeID: n.ID, Reason: fmt.Sprintf("invalid or duplicate field name %q", f.Name)}
				}
				seen[f.Name] = true
			}
		default:
			return &ConfigError{NodeID: n.ID, Reason: fmt.Sprintf("unknown input type %q", n.InputType)}
		}
		if n.Validation.Pattern != "" {
			re, err := regexp.Compile("^(?:" + n.Validation.Pattern + ")")
			if err != nil {
				return &ConfigError{NodeID: n.ID, Reason: fmt.Sprintf("invalid pattern: %v", err)}
			}
			n.pattern = re
		}
	case KindConditional:
		if n.Condition == nil {
			return &ConfigError{NodeID: n.ID, Reason: "conditional node has no condition"}
		}
	case KindEnd:
	default:
		return &ConfigError{NodeID: n.ID, Reason: fmt.Sprintf("unknown node type %q", n.Kind)}
	}
	return nil
}

func (g *Graph) checkRef(from, attr, to string) error {
	if to == "" {
		return &ConfigError{NodeID: from, Reason: fmt.Sprintf("%s is empty", attr)}
	}
	if _, ok := g.byID[to]; !ok {
		return &ConfigError{NodeID: from, Reason: fmt.Sprintf("%s references unknown node %q", attr, to)}
	}
	return nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Question returns the node only when it is question-kind.
func (g *Graph) Question(id string) (*Node, bool) {
	n, ok := g.byID[id]
	if !ok || !n.IsQuestion() {
		return nil, false
	}
	return n, true
}

// First returns the entry question of the flow.
func (g *Graph) First() *Node {
	return g.nodes[0]
}

// TotalQuestions counts question-kind nodes.
func (g *Graph) TotalQuestions() int {
	return g.totalQuestions
}

// Len is the total node count and bounds conditional resolution.
func (g *Graph) Len() int {
	return len(g.nodes)
}
